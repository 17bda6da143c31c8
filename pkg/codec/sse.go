package codec

import (
	"bufio"
	"io"
	"strings"

	"github.com/rhuss/anfrage/pkg/api"
)

// maxRecordSize bounds a single SSE line; argument deltas for large tool
// inputs can run long.
const maxRecordSize = 1 << 20

// RecordScanner decodes a byte stream into discrete event records. It
// understands the minimal framing the backend emits: optional "event" and
// "id" fields, one or more "data" lines joined with newlines, records
// separated by blank lines. Comment lines (leading colon) are skipped.
type RecordScanner struct {
	s *bufio.Scanner
}

// NewRecordScanner wraps the reader for record-at-a-time consumption.
func NewRecordScanner(r io.Reader) *RecordScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	return &RecordScanner{s: s}
}

// Next returns the next record. ok is false when the stream is exhausted;
// check Err afterwards.
func (rs *RecordScanner) Next() (rec api.EventRecord, ok bool) {
	var data []string
	seen := false

	for rs.s.Scan() {
		line := rs.s.Text()

		if line == "" {
			if seen {
				rec.Data = strings.Join(data, "\n")
				return rec, true
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := splitField(line)
		switch field {
		case "event":
			rec.Event = value
			seen = true
		case "id":
			rec.ID = value
			seen = true
		case "data":
			data = append(data, value)
			seen = true
		}
	}

	// Flush a record left open at EOF.
	if seen {
		rec.Data = strings.Join(data, "\n")
		return rec, true
	}
	return api.EventRecord{}, false
}

// Err returns the first read error encountered, if any.
func (rs *RecordScanner) Err() error {
	return rs.s.Err()
}

// splitField separates "field: value", trimming the single optional space
// after the colon.
func splitField(line string) (field, value string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}
