package replay

import (
	"bufio"
	"fmt"
	"io"
)

// Source yields input lines and can be rewound to the beginning for looped
// replay.
type Source interface {
	Scan() bool
	Text() string
	Err() error
	Rewind() error
}

// lineSource reads lines from an arbitrary reader. Rewind works when the
// underlying reader is seekable (a file); for a pipe or stdin it fails, so
// looped replay requires a real file.
type lineSource struct {
	r  io.Reader
	sc *bufio.Scanner
}

// NewSource wraps r in a line-oriented, rewindable source.
func NewSource(r io.Reader) Source {
	return &lineSource{r: r, sc: bufio.NewScanner(r)}
}

func (s *lineSource) Scan() bool   { return s.sc.Scan() }
func (s *lineSource) Text() string { return s.sc.Text() }
func (s *lineSource) Err() error   { return s.sc.Err() }

func (s *lineSource) Rewind() error {
	seeker, ok := s.r.(io.Seeker)
	if !ok {
		return fmt.Errorf("input is not seekable, cannot loop")
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind input: %w", err)
	}
	s.sc = bufio.NewScanner(s.r)
	return nil
}
