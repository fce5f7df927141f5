// Package checkpoint persists per-account crawl progress between runs.
//
// A Checkpoint is stored as a JSON object under the key
// "<platform>:<uid>:his" in a key-value Store:
//   - RedisStore: the default, shared by every crawler pointed at the same db
//   - FileStore: one JSON file per key, written atomically
//   - MemoryStore: process-local, for tests and dry runs
//
// Repository owns the key scheme and the encoding. It distinguishes an absent
// key (zero checkpoint) from a stored value that cannot be decoded (a typed
// checkpoint error); the latter is never silently reset.
package checkpoint
