package util

import (
	"strconv"

	"github.com/dustin/go-humanize"
)

// SizeFlag accepts either a plain byte count or a humanized size
// ("10MB") on the command line.
type SizeFlag uint64

func (s SizeFlag) String() string {
	return humanize.IBytes(uint64(s))
}

func (s *SizeFlag) Set(value string) error {
	// A plain number is a byte count, no unit parsing needed.
	if size, err := strconv.ParseUint(value, 10, 64); err == nil {
		*s = SizeFlag(size)
		return nil
	}
	size, err := humanize.ParseBytes(value)
	if err != nil {
		return err
	}
	*s = SizeFlag(size)
	return nil
}

func (s SizeFlag) Type() string {
	return "size"
}
