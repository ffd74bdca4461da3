// Package racecheck lets tests opt out of the race detector where the
// lock-free turn channel defeats it.
package racecheck

import "testing"

// SkipLockFree skips tb when built with -race. Tests that move values
// through lfq SPSC queues call it.
// The race detector tracks per-variable happens-before and cannot see the
// queue's cross-variable ordering (store-release on data, load-acquire on
// index), so it reports false positives.
func SkipLockFree(tb testing.TB) {
	tb.Helper()
	if Enabled {
		tb.Skip("skip: SPSC uses cross-variable memory ordering")
	}
}
