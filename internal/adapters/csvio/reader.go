// Package csvio reads race-result CSV files into raw rows and writes
// normalized records back out as CSV or Parquet.
package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/ritmo/internal/domain/model"
)

const bom = "\ufeff"

// Table is a parsed CSV file.
type Table struct {
	Headers []string
	Rows    []model.RawRow
}

// Option configures Read.
type Option func(*reader)

type reader struct {
	comma rune
}

// WithComma forces the field delimiter instead of detecting it from the
// header line.
func WithComma(c rune) Option {
	return func(r *reader) { r.comma = c }
}

// detectComma picks ';' when the header line has more semicolons than
// commas, as spreadsheet exports in Spanish locales do.
func detectComma(header string) rune {
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

// Read parses a whole CSV document. The first record is the header row.
// Rows may be shorter or longer than the header; line numbers are 1-based
// and count the header.
func Read(src io.Reader, opts ...Option) (Table, error) {
	cfg := reader{}
	for _, opt := range opts {
		opt(&cfg)
	}

	br := bufio.NewReader(src)
	if cfg.comma == 0 {
		peek, _ := br.Peek(4096)
		first, _, _ := bytes.Cut(peek, []byte("\n"))
		cfg.comma = detectComma(string(first))
	}

	cr := csv.NewReader(br)
	cr.Comma = cfg.comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	headers, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, ErrNoHeaders
	}
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], bom)
	}
	if blank(headers) {
		return Table{}, ErrNoHeaders
	}

	t := Table{Headers: headers}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		line, _ := cr.FieldPos(0)
		t.Rows = append(t.Rows, model.RawRow{Headers: headers, Values: rec, Line: line})
	}
	return t, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
