// Package loader reads access log files into parsed records: format
// detection once per file, then line-by-line parsing with malformed
// lines counted instead of raised.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/kaede/loglens/pkg/fileiter"
	"github.com/kaede/loglens/pkg/parser"
	"github.com/kaede/loglens/pkg/util"
)

// ErrMixedFormats is a non-fatal warning: files in one load disagree on
// format. Records from both are still aggregated together.
var ErrMixedFormats = errors.New("mixed log formats across files")

// Result is the outcome of loading a single file.
type Result struct {
	Name      string
	Format    parser.Format
	Records   []parser.LogRecord
	Malformed int
}

// FileError ties a load failure to the file it came from, so a multi-file
// load can report partial failures without dropping the rest.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// MultiResult holds per-file results in argument order plus the errors
// and warnings collected along the way.
type MultiResult struct {
	Files    []*Result
	Errors   []FileError
	Warnings []error
}

// Records concatenates all file records, preserving file order and line
// order within each file.
func (m *MultiResult) Records() []parser.LogRecord {
	var records []parser.LogRecord
	for _, f := range m.Files {
		records = append(records, f.Records...)
	}
	return records
}

func (m *MultiResult) Malformed() int {
	total := 0
	for _, f := range m.Files {
		total += f.Malformed
	}
	return total
}

func (m *MultiResult) Mixed() bool {
	for _, w := range m.Warnings {
		if errors.Is(w, ErrMixedFormats) {
			return true
		}
	}
	return false
}

type Loader struct {
	// SampleSize is how many non-blank lines format detection inspects;
	// zero means parser.DefaultSampleSize.
	SampleSize int
	// MaxRecords caps the number of records kept per load call;
	// zero means no cap.
	MaxRecords int
	// Progress, if set, is called once per file attempted by LoadFiles.
	Progress func(filename string)
}

// LoadReader buffers all lines of one file, detects its format, then
// parses every line. A file with no non-blank lines yields a valid empty
// Result; a file whose content matches no grammar returns
// parser.ErrUnknownFormat.
func (l Loader) LoadReader(name string, r io.Reader) (*Result, error) {
	return l.loadReader(name, r, l.MaxRecords)
}

func (l Loader) loadReader(name string, r io.Reader, maxRecords int) (*Result, error) {
	iter := fileiter.NewWithScanner(r)
	var lines [][]byte
	blank := true
	for {
		line, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if line == nil {
			break
		}
		lines = append(lines, line)
		if blank && len(bytes.TrimSpace(line)) > 0 {
			blank = false
		}
	}

	res := &Result{Name: name, Format: parser.FormatUnknown}
	if blank {
		// Empty file: zero traffic, not a detection failure.
		return res, nil
	}

	format, err := parser.DetectFormat(lines, l.SampleSize)
	if err != nil {
		return nil, err
	}
	res.Format = format

	p := parser.ParserFor(format)
	for _, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if !utf8.Valid(line) {
			res.Malformed++
			continue
		}
		record, err := p.Parse(line)
		if err != nil {
			res.Malformed++
			continue
		}
		res.Records = append(res.Records, record)
		if maxRecords > 0 && len(res.Records) >= maxRecords {
			break
		}
	}
	return res, nil
}

// LoadFile opens filename (decompressing rotated .gz/.xz/.zst logs) and
// loads it.
func (l Loader) LoadFile(filename string) (*Result, error) {
	f, err := util.OpenFile(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.LoadReader(filename, f)
}

// LoadFiles loads every file, keeping going past per-file failures.
// Format disagreement across files is recorded as an ErrMixedFormats
// warning; it does not block aggregation.
func (l Loader) LoadFiles(filenames []string) *MultiResult {
	m := &MultiResult{}
	remaining := l.MaxRecords
	for _, filename := range filenames {
		if l.MaxRecords > 0 && remaining <= 0 {
			break
		}
		if l.Progress != nil {
			l.Progress(filename)
		}
		f, err := util.OpenFile(filename)
		if err != nil {
			m.Errors = append(m.Errors, FileError{Name: filename, Err: err})
			continue
		}
		res, err := l.loadReader(filename, f, remaining)
		f.Close()
		if err != nil {
			m.Errors = append(m.Errors, FileError{Name: filename, Err: err})
			continue
		}
		m.Files = append(m.Files, res)
		if l.MaxRecords > 0 {
			remaining -= len(res.Records)
		}
	}
	m.checkMixed()
	return m
}

// LoadReaders is LoadFiles for already-open sources, in caller order.
func (l Loader) LoadReaders(names []string, readers []io.Reader) *MultiResult {
	m := &MultiResult{}
	remaining := l.MaxRecords
	for i, r := range readers {
		if l.MaxRecords > 0 && remaining <= 0 {
			break
		}
		name := ""
		if i < len(names) {
			name = names[i]
		}
		res, err := l.loadReader(name, r, remaining)
		if err != nil {
			m.Errors = append(m.Errors, FileError{Name: name, Err: err})
			continue
		}
		m.Files = append(m.Files, res)
		if l.MaxRecords > 0 {
			remaining -= len(res.Records)
		}
	}
	m.checkMixed()
	return m
}

func (m *MultiResult) checkMixed() {
	seen := parser.FormatUnknown
	for _, f := range m.Files {
		if f.Format == parser.FormatUnknown {
			continue
		}
		if seen == parser.FormatUnknown {
			seen = f.Format
		} else if f.Format != seen {
			m.Warnings = append(m.Warnings, ErrMixedFormats)
			return
		}
	}
}
