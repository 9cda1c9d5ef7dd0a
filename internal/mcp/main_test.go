package mcp

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain guards the tool handlers against goroutine leaks. Unlike the
// teacher's internal/mcp, which disables this because its background
// indexer workers outlive the test process, this package's handlers run
// synchronously to completion and Run (the stdio transport's blocking
// serve loop) is never invoked by these tests, so no background goroutine
// should ever be left behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
