package util

import (
	"errors"
	"testing"
	"time"
)

// TestPerrorErrorsDrainsAndCloses verifies that ranging over Errors()
// terminates once the buffered errors are consumed: Append is
// asynchronous, so the test waits for the listener to buffer both errors
// before draining.
func TestPerrorErrorsDrainsAndCloses(t *testing.T) {
	pe := NewPerror(2)
	defer pe.Stop()

	pe.Append(errors.New("first"))
	pe.Append(errors.New("second"))
	for pe.Len() < 2 {
		time.Sleep(time.Millisecond)
	}

	n := 0
	for range pe.Errors() {
		n++
	}
	if n != 2 {
		t.Errorf("expected to drain 2 buffered errors, got %d", n)
	}
}

// TestPerrorIgnoresNil verifies that <nil> errors are not buffered.
func TestPerrorIgnoresNil(t *testing.T) {
	pe := NewPerror(1)
	defer pe.Stop()

	pe.Append(nil)
	pe.Append(errors.New("real"))
	for pe.Len() < 1 {
		time.Sleep(time.Millisecond)
	}
	if pe.Len() != 1 {
		t.Errorf("expected only the non-nil error to be buffered, got %d", pe.Len())
	}
}
