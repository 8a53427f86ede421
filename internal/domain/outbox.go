package domain

import "time"

type EntityType string

const (
	EntityTypeProduct EntityType = "Product"
)

type OutboxOperation string

const (
	OperationUpsert OutboxOperation = "UPSERT"
)

// OutboxItem records a pending push to the remote store. It is written in the
// same transaction as the local mutation it represents and removed only after
// the resolver has confirmed the remote application (or confirmed the local
// entity is gone). Multiple items may reference the same entity; the resolver
// tolerates stale items.
type OutboxItem struct {
	ID            string          `json:"id"`
	EntityType    EntityType      `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	Operation     OutboxOperation `json:"operation"`
	CreatedAt     time.Time       `json:"created_at"`
	AttemptCount  int64           `json:"attempt_count"`
	LastAttemptAt *time.Time      `json:"last_attempt_at"`
	Error         *string         `json:"error"`
}
