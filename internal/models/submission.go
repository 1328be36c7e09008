package models

import "time"

// TimestampLayout is ISO 8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type FieldValue struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Submission is a validated payload laid out in its tab's column order.
type Submission struct {
	Kind       string       `json:"kind"`
	Tab        string       `json:"tab"`
	ReceivedAt time.Time    `json:"receivedAt"`
	Fields     []FieldValue `json:"fields"`
}

// Row renders the submission as spreadsheet cells, timestamp first.
func (s *Submission) Row() []string {
	row := make([]string, 0, len(s.Fields)+1)
	row = append(row, s.ReceivedAt.UTC().Format(TimestampLayout))
	for _, f := range s.Fields {
		row = append(row, f.Value)
	}
	return row
}
