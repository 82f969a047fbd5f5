// Package mutex serializes stages that name the same resource lock, across
// concurrent runs. Locks are advisory and keyed by name; two stages naming
// different keys never contend.
//
// Two backends are provided: LocalLocker for runs inside one process, and
// RedisLocker for runs spread across machines (distributed runners sharing
// a build cache). Acquisition order among waiters is best-effort; there is
// no fairness or anti-starvation guarantee, matching the first-come
// semantics of the underlying primitives.
package mutex
