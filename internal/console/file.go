package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/slatehart/logdeck/internal/ringbuf"
)

// FileOptions configure a FileRepository.
type FileOptions struct {
	// CacheSize bounds the in-memory window of newest entries.
	CacheSize int
	// FlushEvery flushes the pending write buffer once it holds this
	// many records.
	FlushEvery int
	// FlushInterval flushes the pending buffer once this much time has
	// passed since the last flush, even if FlushEvery was not reached.
	FlushInterval time.Duration
	// CheckpointEvery persists the index sidecar every N additions. On
	// crash the recovered total may lag by at most N.
	CheckpointEvery int
	Logger          *slog.Logger
}

const (
	defaultFileCacheSize   = 2000
	defaultFlushEvery      = 32
	defaultFlushInterval   = 2 * time.Second
	defaultCheckpointEvery = 100
	logFilePerm            = 0o644
)

// indexFile is the sidecar checkpoint, a flat TOML document next to the
// log so total_added can be recovered without rescanning on restart.
type indexFile struct {
	TotalAdded uint64 `toml:"total_added"`
	LastUpdate int64  `toml:"last_update"`
}

// FileRepository combines a bounded in-memory window with an
// append-only on-disk log and a periodically checkpointed index.
// Records are buffered and flushed in batches to amortize I/O; a write
// failure disables persistence for the session instead of interrupting
// ingestion.
type FileRepository struct {
	path      string
	indexPath string
	opts      FileOptions
	logger    *slog.Logger

	ring  *ringbuf.Ring[*Entry]
	total uint64

	file            *os.File
	pending         []*Entry
	lastFlush       time.Time
	sinceCheckpoint int
	disabled        bool

	now func() time.Time
}

// OpenFileRepository opens (or creates) the log at path, replays it to
// rebuild the retained window and recovers total_added from the index
// sidecar. Corrupt lines are skipped with a warning, never fatal.
func OpenFileRepository(path string, opts FileOptions) (*FileRepository, error) {
	if opts.CacheSize < 1 {
		opts.CacheSize = defaultFileCacheSize
	}
	if opts.FlushEvery < 1 {
		opts.FlushEvery = defaultFlushEvery
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = defaultFlushInterval
	}
	if opts.CheckpointEvery < 1 {
		opts.CheckpointEvery = defaultCheckpointEvery
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := &FileRepository{
		path:      path,
		indexPath: path + ".index",
		opts:      opts,
		logger:    logger.With("component", "file_repository"),
		ring:      ringbuf.New[*Entry](opts.CacheSize),
		now:       time.Now,
	}

	decoded, err := r.load()
	if err != nil {
		return nil, err
	}

	idx := r.loadIndex()
	r.total = idx.TotalAdded
	if decoded > r.total {
		// The index may lag the log by up to one checkpoint interval;
		// the log itself is authoritative when it holds more.
		r.total = decoded
	}
	for i, e := range r.ring.Slice() {
		e.seq = r.total - uint64(r.ring.Len()) + uint64(i)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePerm)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	r.file = f
	r.lastFlush = r.now()
	return r, nil
}

// load replays the on-disk log, retaining only the newest CacheSize
// records, and returns how many records decoded successfully.
func (r *FileRepository) load() (uint64, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open log for replay: %w", err)
	}
	defer f.Close()

	var decoded uint64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		entry, err := decodeLine(line)
		if err != nil {
			r.logger.Warn("skipping corrupt record", "line", lineNo, "error", err)
			continue
		}
		r.ring.Push(entry)
		decoded++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("replay log: %w", err)
	}
	return decoded, nil
}

func (r *FileRepository) loadIndex() indexFile {
	var idx indexFile
	raw, err := os.ReadFile(r.indexPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("read index failed", "error", err)
		}
		return idx
	}
	if err := toml.Unmarshal(raw, &idx); err != nil {
		r.logger.Warn("parse index failed", "error", err)
		return indexFile{}
	}
	return idx
}

func (r *FileRepository) Add(entry *Entry) bool {
	entry.seq = r.total
	r.total++
	r.ring.Push(entry)

	if r.disabled {
		return true
	}
	r.pending = append(r.pending, entry)
	if len(r.pending) >= r.opts.FlushEvery || r.now().Sub(r.lastFlush) >= r.opts.FlushInterval {
		r.flush()
	}
	r.sinceCheckpoint++
	if r.sinceCheckpoint >= r.opts.CheckpointEvery {
		r.saveIndex()
	}
	return true
}

// flush writes the pending buffer to the file handle. A failed write
// disables persistence for the session; ingestion continues in memory.
func (r *FileRepository) flush() {
	r.lastFlush = r.now()
	if r.disabled || len(r.pending) == 0 {
		return
	}
	var b strings.Builder
	for _, e := range r.pending {
		b.WriteString(encodeLine(e))
		b.WriteByte('\n')
	}
	r.pending = r.pending[:0]
	if _, err := r.file.WriteString(b.String()); err != nil {
		r.logger.Error("write failed, disabling persistence", "error", err)
		r.disable()
	}
}

// saveIndex checkpoints {total_added, last_update} to the sidecar. The
// pending buffer is flushed and synced first so the recorded total
// never exceeds the records durably written.
func (r *FileRepository) saveIndex() {
	r.sinceCheckpoint = 0
	if r.disabled {
		return
	}
	r.flush()
	if r.disabled {
		return
	}
	if err := r.file.Sync(); err != nil {
		r.logger.Warn("sync before checkpoint failed", "error", err)
		return
	}
	raw, err := toml.Marshal(indexFile{TotalAdded: r.total, LastUpdate: r.now().UnixMilli()})
	if err != nil {
		r.logger.Warn("marshal index failed", "error", err)
		return
	}
	if err := os.WriteFile(r.indexPath, raw, logFilePerm); err != nil {
		r.logger.Warn("write index failed", "error", err)
	}
}

func (r *FileRepository) disable() {
	r.disabled = true
	r.pending = nil
}

func (r *FileRepository) Get(i int) (*Entry, bool) { return r.ring.At(i) }

func (r *FileRepository) Count() int { return r.ring.Len() }

func (r *FileRepository) TotalAdded() uint64 { return r.total }

func (r *FileRepository) All() []*Entry { return r.ring.Slice() }

func (r *FileRepository) Query(filter *Filter) []*Entry {
	out := make([]*Entry, 0)
	for i := 0; i < r.ring.Len(); i++ {
		e, _ := r.ring.At(i)
		if filter == nil || filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func (r *FileRepository) NewEntries(sinceTotal uint64) []*Entry {
	return windowNewEntries(r.total, r.ring.Len(), sinceTotal, r.ring.At)
}

func (r *FileRepository) Clear() bool {
	r.ring.Clear()
	r.total = 0
	r.pending = nil
	if r.disabled {
		return true
	}
	if err := r.file.Truncate(0); err != nil {
		r.logger.Error("truncate failed, disabling persistence", "error", err)
		r.disable()
		return true
	}
	r.saveIndex()
	return true
}

func (r *FileRepository) Contains(entry *Entry) bool {
	return windowContains(r.total, r.ring.Len(), entry)
}

// Close flushes pending writes and the index unconditionally.
func (r *FileRepository) Close() error {
	r.flush()
	r.saveIndex()
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}
