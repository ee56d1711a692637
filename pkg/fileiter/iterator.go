package fileiter

import (
	"bufio"
	"io"
	"slices"

	"github.com/nxadm/tail"
)

// Iterator yields log lines one at a time. A nil line with a nil error
// means the source is exhausted.
type Iterator interface {
	Next() ([]byte, error)
}

type scannerIterator struct {
	scanner *bufio.Scanner
}

// NewWithScanner reads lines from r. Returned lines are owned by the
// caller; loaders buffer them for format detection.
func NewWithScanner(r io.Reader) Iterator {
	// Prepare a large buffer for long query strings and UAs
	const bufSz = 1024 * 1024
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, bufSz), bufSz)
	return &scannerIterator{scanner: scanner}
}

func (s *scannerIterator) Next() ([]byte, error) {
	if s.scanner.Scan() {
		return slices.Clone(s.scanner.Bytes()), nil
	}
	return nil, s.scanner.Err()
}

type tailIterator struct {
	tail *tail.Tail
}

func (t tailIterator) Next() ([]byte, error) {
	line, ok := <-t.tail.Lines
	if !ok {
		return nil, t.tail.Err()
	}
	return []byte(line.Text), nil
}

func NewWithTail(tail *tail.Tail) Iterator {
	return &tailIterator{tail: tail}
}
