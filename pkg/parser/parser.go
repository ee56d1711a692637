package parser

import (
	"errors"
	"fmt"
	"time"
)

// Format identifies one of the supported access log grammars.
type Format int

const (
	FormatUnknown Format = iota
	FormatCommon
	FormatCombined
)

func (f Format) String() string {
	switch f {
	case FormatCommon:
		return "common"
	case FormatCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// LogRecord is one successfully parsed log line. It is only constructed
// once every required field has parsed; callers never see partial records.
type LogRecord struct {
	Client    string    `json:"client"`
	Time      time.Time `json:"time"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Protocol  string    `json:"protocol"`
	Status    int       `json:"status"`
	Size      uint64    `json:"size"`
	Referer   string    `json:"referer,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// ErrMalformed marks lines that fail required-field parsing. Malformed
// lines are counted, not propagated, so parse errors wrap this sentinel
// with the failed step for logging.
var ErrMalformed = errors.New("malformed log line")

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

type Parser interface {
	Parse(line []byte) (LogRecord, error)
}

type ParserFunc func(line []byte) (LogRecord, error)

func (f ParserFunc) Parse(line []byte) (LogRecord, error) {
	return f(line)
}

type NewFunc func() Parser

type ParserMeta struct {
	Name        string
	Description string
	Hidden      bool
	F           NewFunc
}

var registry = make(map[string]ParserMeta)

func RegisterParser(meta ParserMeta) {
	registry[meta.Name] = meta
}

func GetParser(name string) (Parser, error) {
	meta, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q", name)
	}
	return meta.F(), nil
}

func All() []ParserMeta {
	ret := make([]ParserMeta, 0, len(registry))
	for _, meta := range registry {
		ret = append(ret, meta)
	}
	return ret
}

// ParserFor returns the line parser for a detected format.
func ParserFor(f Format) Parser {
	if f == FormatCombined {
		return ParserFunc(ParseCombined)
	}
	return ParserFunc(ParseCommon)
}
