package test

import (
	"fmt"
	"testing"
)

func AssertEqual(t *testing.T, observed interface{}, expected interface{}) {
	t.Helper()
	if observed != expected {
		t.Fatalf("%v != %v", observed, expected)
	}
}

func AssertEqualWithDiff(t *testing.T, observed interface{}, expected interface{}) {
	t.Helper()
	if observed != expected {
		stringA := fmt.Sprintf("%v", observed)
		stringB := fmt.Sprintf("%v", expected)
		t.Fatal("\n" + Diff(stringB, stringA, false))
	}
}

func AssertNoPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	fn()
}

// Returns the value passed to panic, or nil if fn returned normally
func CapturePanic(fn func()) (value interface{}) {
	defer func() {
		value = recover()
	}()
	fn()
	return
}
