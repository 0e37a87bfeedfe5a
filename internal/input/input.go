// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package input reads raw gene identifiers from CSV/TSV sheets and plain
// text lists. It keeps the source rows so exports can reproduce the
// original layout.
package input

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownColumn is returned when the requested gene column is absent.
var ErrUnknownColumn = errors.New("unknown column")

// Sheet is a parsed input file.
type Sheet struct {
	// Header holds the column names; nil for plain lists.
	Header []string

	// Rows holds the data rows, each padded to len(Header).
	Rows [][]string

	// Column is the index of the gene column.
	Column int
}

// Genes returns the raw gene tokens from the gene column, in row order.
func (s *Sheet) Genes() []string {
	out := make([]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		if s.Column < len(row) {
			out = append(out, row[s.Column])
		}
	}
	return out
}

// ColumnName returns the header of the gene column, or "Gene" for lists.
func (s *Sheet) ColumnName() string {
	if s.Column < len(s.Header) {
		return s.Header[s.Column]
	}
	return "Gene"
}

// ReadFile reads path as a sheet. Files ending in .csv or .tsv are parsed
// as delimited text with a header row; anything else is a plain list.
func ReadFile(path, column string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input %s: %w", path, err)
	}
	defer f.Close()

	var s *Sheet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		s, err = ReadCSV(f, ',', column)
	case ".tsv":
		s, err = ReadCSV(f, '\t', column)
	default:
		s, err = ReadList(f)
	}
	if err != nil {
		return nil, fmt.Errorf("reading input %s: %w", path, err)
	}
	return s, nil
}

// ReadCSV parses delimited text whose first row is a header. column
// selects the gene column by name (case-insensitive) or 1-based number;
// empty selects the first column.
func ReadCSV(r io.Reader, delim rune, column string) (*Sheet, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Sheet{Header: []string{}, Rows: [][]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col, err := columnIndex(header, column)
	if err != nil {
		return nil, err
	}

	s := &Sheet{Header: header, Rows: [][]string{}, Column: col}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

func columnIndex(header []string, column string) (int, error) {
	column = strings.TrimSpace(column)
	if column == "" {
		return 0, nil
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			return i, nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(column, "%d", &n); err == nil && fmt.Sprint(n) == column && n >= 1 && n <= len(header) {
		return n - 1, nil
	}
	return 0, fmt.Errorf("%w %q (have %s)", ErrUnknownColumn, column, strings.Join(header, ", "))
}

// ReadList parses one or more identifiers per line, separated by commas or
// whitespace. Lines starting with # are comments.
func ReadList(r io.Reader) (*Sheet, error) {
	s := &Sheet{Rows: [][]string{}}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, tok := range strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		}) {
			s.Rows = append(s.Rows, []string{tok})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading list: %w", err)
	}
	return s, nil
}
