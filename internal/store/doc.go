// Package store persists the set of known slave bot identities.
//
// # Registry
//
// Registry is a durable, append-only set:
//
//	InsertIfAbsent(ctx, identity) // insert or ignore
//	ListAll(ctx)                  // every identity, ascending
//
// There is no update and no delete. The set is written when the master bot
// accepts a spawn command and read once at startup to rebuild the fleet.
//
// # Backends
//
//   - SQLiteRegistry: modernc.org/sqlite, table slaves(username TEXT PRIMARY KEY),
//     written with INSERT OR IGNORE. The default.
//   - RedisRegistry: a single Redis set (SADD/SMEMBERS), for fleets that
//     share state across hosts.
//   - MockRegistry: in-memory, for tests.
//
// # Thread Safety
//
// All backends are safe for concurrent use. The SQLite backend holds a
// single connection so writes are serialized by database/sql.
package store
