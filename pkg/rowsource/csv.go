// Package rowsource abstracts an uploaded tabular file as an incremental
// sequence of (line number, field map) records, so consumers never hold the
// whole input in memory.
package rowsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one parsed record of the input.
type Row struct {
	Line   int
	Fields map[string]string
}

// Source supplies rows one at a time. Next returns io.EOF when the input is
// exhausted; any other error means the stream itself is broken.
type Source interface {
	// Size reports the total input size in bytes, or -1 when unknown.
	Size() int64
	Next() (Row, error)
}

// CSVSource adapts a CSV stream with a header row into a Source. Data rows
// are numbered starting at 2, matching how people count lines in the file.
type CSVSource struct {
	reader  *csv.Reader
	size    int64
	headers []string
	line    int
}

// NewCSV wraps a CSV stream. size is the byte size reported by the upload,
// or -1 when not known in advance.
func NewCSV(r io.Reader, size int64) *CSVSource {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return &CSVSource{reader: reader, size: size, line: 1}
}

// Size implements Source.
func (s *CSVSource) Size() int64 {
	return s.size
}

// Next implements Source.
func (s *CSVSource) Next() (Row, error) {
	if s.headers == nil {
		header, err := s.reader.Read()
		if err == io.EOF {
			return Row{}, io.EOF
		}
		if err != nil {
			return Row{}, fmt.Errorf("rowsource: read header: %w", err)
		}
		s.headers = make([]string, len(header))
		for i, h := range header {
			s.headers[i] = strings.TrimSpace(h)
		}
	}

	record, err := s.reader.Read()
	if err == io.EOF {
		return Row{}, io.EOF
	}
	if err != nil {
		return Row{}, fmt.Errorf("rowsource: read row: %w", err)
	}

	s.line++
	fields := make(map[string]string, len(s.headers))
	for i, header := range s.headers {
		if i < len(record) {
			fields[header] = strings.TrimSpace(record[i])
		} else {
			fields[header] = ""
		}
	}

	return Row{Line: s.line, Fields: fields}, nil
}
