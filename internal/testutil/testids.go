package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
)

var counter atomic.Int64

// UniqueKey returns a blackboard key unique to the process, traceable to
// the calling test. Use it for tests touching the default store, which is
// shared by every test in the package.
func UniqueKey(tb testing.TB, prefix string) string {
	tb.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", ".", "_").Replace(tb.Name())
	return fmt.Sprintf("%s_%s_%d", prefix, name, counter.Add(1))
}
