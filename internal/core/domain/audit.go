package domain

import "time"

// AuditLog is one append-only record of a state-changing accounting action.
type AuditLog struct {
	AuditID     string            `json:"auditID"`
	ActorUserID string            `json:"actorUserID"`
	Action      string            `json:"action"` // e.g. "turnover.cash.recorded"
	EntityType  string            `json:"entityType"`
	EntityID    string            `json:"entityID"`
	Message     string            `json:"message"`
	After       map[string]string `json:"after"` // state snapshot after the action
	CreatedAt   time.Time         `json:"createdAt"`
}
