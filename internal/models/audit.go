package models

import "time"

// AuditLog represents one append-only audit trail row.
type AuditLog struct {
	AuditID     string            `json:"auditID"` // Primary Key (UUID)
	ActorUserID string            `json:"actorUserID"`
	Action      string            `json:"action"`
	EntityType  string            `json:"entityType"`
	EntityID    string            `json:"entityID"`
	Message     string            `json:"message"`
	After       map[string]string `json:"after"` // stored as JSONB
	CreatedAt   time.Time         `json:"createdAt"`
}
