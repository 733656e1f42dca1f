package replay

import (
	"io"
	"strings"
	"testing"
)

func TestLineSource_ScanAndRewind(t *testing.T) {
	src := NewSource(strings.NewReader("one\ntwo\n"))

	var lines []string
	for src.Scan() {
		lines = append(lines, src.Text())
	}
	if err := src.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Fatalf("lines = %v", lines)
	}

	if err := src.Rewind(); err != nil {
		t.Fatalf("Rewind() failed: %v", err)
	}
	if !src.Scan() || src.Text() != "one" {
		t.Errorf("after rewind got %q, want %q", src.Text(), "one")
	}
}

func TestLineSource_RewindNotSeekable(t *testing.T) {
	// A bare reader (like stdin through a pipe) cannot be rewound.
	src := NewSource(io.LimitReader(strings.NewReader("one\n"), 4))

	for src.Scan() {
	}
	if err := src.Rewind(); err == nil {
		t.Error("Rewind() should fail for a non-seekable reader")
	}
}
