// Package console implements an in-process log console: a bounded
// store of structured log entries with live-filtered, searchable views
// that never block the host's render tick.
//
// # Architecture
//
// Control flow, ingestion to display:
//
//	caller → spam gate → Store.AddEntry → Repository.Add
//	       → StateManager marks dirty
//	host tick → Engine.Tick → consults StateManager
//	          → immediate / chunked / incremental pass → display list
//
// Storage is polymorphic over the Repository interface:
// MemoryRepository wraps a fixed-capacity ring; FileRepository adds an
// append-only on-disk log with batched writes and a checkpointed index
// sidecar, while keeping the same bounded in-memory window.
//
// # Scheduling model
//
// Everything runs on one logical thread of control, cooperatively.
// "Background" work (chunked filtering, incremental search) is a
// resumable task with an explicit saved cursor that yields after a
// bounded amount of work per tick; cancellation is cooperative via a
// monotonic version counter. No locks are used because there is no
// parallelism; a task's cursor is a stream position rather than a
// window index, so it stays valid when the ring evicts entries between
// resumptions.
//
// # Error policy
//
// Validation failures are returned to the caller and never persisted.
// I/O failures degrade the affected feature (persistence disables
// itself) without interrupting ingestion or filtering. Failures inside
// filter evaluation are recovered and surfaced as a log entry in the
// console's own category, since the console is itself the primary
// error-reporting surface for its host. Nothing here is fatal to the
// process.
package console
