package core

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Field is one cell of an export record.
type Field struct {
	Key   string
	Value string
}

// Record is an ordered list of cells. Column order is the field order.
type Record []Field

// Get returns the value stored under key.
func (r Record) Get(key string) (string, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Keys returns the field names in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// WriteCSV writes records with a header made of the first record's keys.
// Later records are aligned to that header by key. Cells containing commas,
// quotes or line breaks are quoted with doubled inner quotes.
func WriteCSV(w io.Writer, records []Record) error {
	if len(records) == 0 {
		return ErrEmptyExport
	}

	cw := csv.NewWriter(w)
	header := records[0].Keys()
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(header))
	for i, rec := range records {
		for j, key := range header {
			row[j], _ = rec.Get(key)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// EncodeCSV is WriteCSV into a string.
func EncodeCSV(records []Record) (string, error) {
	var b strings.Builder
	if err := WriteCSV(&b, records); err != nil {
		return "", err
	}
	return b.String(), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM drops a leading UTF-8 byte order mark, as written by spreadsheet
// tools on Windows.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// ReadCSV parses CSV text back into records keyed by its header row.
func ReadCSV(r io.Reader) ([]Record, error) {
	rows, err := csv.NewReader(skipBOM(r)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	out := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for i, key := range header {
			rec[i] = Field{Key: key, Value: row[i]}
		}
		out = append(out, rec)
	}
	return out, nil
}
