// Package redislock implements lock.Locker on Redis so that identical
// normalize/denormalize requests are serialized across processes.
//
// A key is held with SET NX PX and a random owner token; waiters poll at
// RetryInterval. Release runs a compare-and-delete script so an expired lock
// taken over by another owner is never deleted. TTL must exceed the longest
// expected engine call.
package redislock
