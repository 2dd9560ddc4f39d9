package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestTimestampJSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 3, 9, 14, 5, 7, 123456789, time.FixedZone("X", 3600)))

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2024-03-09T13:05:07.123Z"` {
		t.Fatalf("unexpected encoding: %s", data)
	}

	var back Timestamp
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(ts.Time) {
		t.Errorf("expected %v, got %v", ts.Time, back.Time)
	}
}

func TestTodoFilterMatch(t *testing.T) {
	done := true
	open := false
	tests := []struct {
		name   string
		filter TodoFilter
		todo   Todo
		want   bool
	}{
		{"no filter matches open", TodoFilter{}, Todo{Completed: false}, true},
		{"no filter matches done", TodoFilter{}, Todo{Completed: true}, true},
		{"done filter skips open", TodoFilter{Completed: &done}, Todo{Completed: false}, false},
		{"done filter matches done", TodoFilter{Completed: &done}, Todo{Completed: true}, true},
		{"open filter matches open", TodoFilter{Completed: &open}, Todo{Completed: false}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(tt.todo); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTodoCreatedAtDocumentedAsString(t *testing.T) {
	field, _ := reflect.TypeOf(Todo{}).FieldByName("CreatedAt")
	if got := field.Tag.Get("swaggertype"); got != "string" {
		t.Errorf("expected swaggertype string, got %q", got)
	}

	example := field.Tag.Get("example")
	ts, err := time.Parse(TimestampLayout, example)
	if err != nil {
		t.Fatalf("example %q does not match the wire layout: %v", example, err)
	}
	if NewTimestamp(ts).String() != example {
		t.Errorf("example %q does not round-trip", example)
	}
}
