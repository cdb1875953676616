// Package audit appends an immutable trail of completed mutating operations.
// Recording is best effort: a failed append is logged and discarded, never
// surfaced to the caller of the operation it describes. Consumers of the
// trail must treat it as not guaranteed complete.
package audit

import (
	"context"
	"time"
)

// Action classifies a recorded mutation.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Entry is an immutable record of a completed mutating operation. Entries are
// only ever appended; nothing in this package mutates or deletes them.
type Entry struct {
	ID         string    `json:"id"`
	Action     Action    `json:"action"`
	EntityName string    `json:"entity_name"`
	EntityID   string    `json:"entity_id,omitempty"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store appends entries durably. The recorder needs no read API.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
}

// Identifiable is the opt-in capability for subject types whose identifier
// should land in the trail. Subjects without it produce entries with an
// empty entity id.
type Identifiable interface {
	AuditID() string
}
