// Package csvparser reads uploaded CSV files with a fixed two-column
// schema: a header naming the Name and Value columns (either order)
// followed by data rows of exactly two fields.
package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	ColumnName  = "Name"
	ColumnValue = "Value"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Record is a parsed data row.
type Record struct {
	Name  string
	Value string
}

// Reader yields Records one at a time. It is not safe for concurrent use
// and cannot be rewound; after Read returns an error (including io.EOF)
// every later call returns the same error.
type Reader struct {
	src *bufio.Reader
	csv *csv.Reader

	started  bool
	nameIdx  int
	valueIdx int
	err      error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{src: bufio.NewReader(r)}
}

// Read returns the next record, io.EOF once the input is exhausted, or a
// *ParseError.
func (r *Reader) Read() (Record, error) {
	if r.err != nil {
		return Record{}, r.err
	}
	rec, err := r.next()
	if err != nil {
		r.err = err
		return Record{}, err
	}
	return rec, nil
}

// ReadAll consumes the input and returns every record. On failure no
// records are returned.
func (r *Reader) ReadAll() ([]Record, error) {
	var out []Record
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func (r *Reader) next() (Record, error) {
	if !r.started {
		if err := r.readHeader(); err != nil {
			return Record{}, err
		}
		r.started = true
	}

	fields, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return Record{}, io.EOF
	}
	if err != nil {
		return Record{}, wrapCSVErr(err)
	}

	line, _ := r.csv.FieldPos(0)
	if len(fields) != 2 {
		return Record{}, malformedErr(line, fmt.Errorf("expected 2 fields, got %d", len(fields)))
	}

	name, value := fields[r.nameIdx], fields[r.valueIdx]
	if name == "" || value == "" {
		return Record{}, malformedErr(line, errEmptyField)
	}
	if strings.IndexByte(name, 0) >= 0 || strings.IndexByte(value, 0) >= 0 {
		return Record{}, malformedErr(line, errNULByte)
	}
	return Record{Name: sanitizeUTF8(name), Value: sanitizeUTF8(value)}, nil
}

// sanitizeUTF8 replaces invalid byte sequences (e.g. Latin-1 exports)
// with U+FFFD so every Record holds valid UTF-8.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

func (r *Reader) readHeader() error {
	if b, err := r.src.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = r.src.Discard(len(utf8BOM))
	}

	r.csv = csv.NewReader(r.src)
	r.csv.FieldsPerRecord = -1
	r.csv.ReuseRecord = true

	header, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		// zero bytes: nothing to ingest
		return io.EOF
	}
	if err != nil {
		return wrapCSVErr(err)
	}

	if len(header) != 2 {
		return schemaErr(1, fmt.Errorf("expected columns %q and %q, got %q", ColumnName, ColumnValue, header))
	}

	switch {
	case header[0] == ColumnName && header[1] == ColumnValue:
		r.nameIdx, r.valueIdx = 0, 1
	case header[0] == ColumnValue && header[1] == ColumnName:
		r.nameIdx, r.valueIdx = 1, 0
	default:
		return schemaErr(1, fmt.Errorf("expected columns %q and %q, got %q", ColumnName, ColumnValue, header))
	}
	return nil
}

// wrapCSVErr classifies tokenizer failures as malformed input. Errors from
// the underlying stream are returned as they are.
func wrapCSVErr(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return malformedErr(pe.Line, pe.Err)
	}
	return err
}
