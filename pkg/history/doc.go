// Package history keeps a journal of reader status overlays.
//
// Each time an access event sets a reader's status, and each time the
// dwell time clears it again, a Recorder appends an Entry to a Store.
// Two stores are provided: MemoryStore, a bounded ring for screens without
// a database, and PostgresStore, which writes to the reader_status_history
// table through pgx, database/sql (lib/pq) or sqlx.
package history
