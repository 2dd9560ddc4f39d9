package models

import "time"

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// TodoEvent describes a single change to the collection.
type TodoEvent struct {
	Action string    `json:"action"`
	TodoID string    `json:"todoId"`
	Title  string    `json:"title,omitempty"`
	At     time.Time `json:"at"`
}
