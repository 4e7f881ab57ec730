// Package sweep implements the interleaved deletion scheduler.
//
// Two work queues (post removal, like removal) draw from the same account but
// are rate limited independently by the remote API. The scheduler advances
// whichever class is eligible, reacts to rate-limit signals per class without
// stalling the other, and records every completed item in a durable ledger so
// a killed process can resume without repeating or skipping work.
package sweep
