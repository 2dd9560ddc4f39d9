package models

import (
	"strings"
	"time"
)

// TimestampLayout is the wire format of CreatedAt: UTC, millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp is a point in time serialized with TimestampLayout.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}

type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   Timestamp `json:"createdAt" swaggertype:"string" example:"2024-01-01T00:00:00.000Z"`
}

// TodoPatch carries a partial update. Nil fields are left untouched.
type TodoPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TodoFilter narrows List. A nil Completed matches every record.
type TodoFilter struct {
	Completed *bool
}

func (f TodoFilter) Match(t Todo) bool {
	return f.Completed == nil || t.Completed == *f.Completed
}
