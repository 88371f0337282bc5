// Package history owns the persisted outcomes of outbound request
// executions. Every operation is scoped by the owning user: a record that
// belongs to someone else is indistinguishable from one that does not exist.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ListLimit caps how many records a single listing returns.
const ListLimit = 50

var ErrNotFound = errors.New("history: request not found")

// Record is the audit record of one outbound request execution.
//
// StatusCode 0 means no HTTP response was received (transport failure);
// StatusCode and ResponseTimeMs are immutable after creation.
type Record struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	Method         string          `json:"method"`
	URL            string          `json:"url"`
	Headers        json.RawMessage `json:"headers"`
	Body           json.RawMessage `json:"body"`
	StatusCode     int             `json:"status_code"`
	ResponseTimeMs int             `json:"response_time_ms"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Mutation is the set of fields a user may edit after creation.
type Mutation struct {
	Method  string
	URL     string
	Headers json.RawMessage
	Body    json.RawMessage
}

// Store persists audit records.
type Store interface {
	// Insert creates the record and fills in ID and CreatedAt.
	Insert(ctx context.Context, rec *Record) error
	// List returns the owner's records newest-first, capped at ListLimit.
	List(ctx context.Context, ownerID int64) ([]Record, error)
	// Update replaces the mutable fields. ErrNotFound when no record
	// matches both id and owner.
	Update(ctx context.Context, id, ownerID int64, mut Mutation) (*Record, error)
	// Delete removes the record, with the same not-found semantics.
	Delete(ctx context.Context, id, ownerID int64) error
}
