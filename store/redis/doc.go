// Package redis stores conversation checkpoints in Redis.
//
// Every checkpoint lives under <prefix>checkpoint:<id> as JSON and each thread
// keeps a sorted set <prefix>thread:<thread id>:checkpoints scored by version,
// so List returns checkpoints in the order they were written. A TTL, when set,
// applies to both keys.
package redis
