package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route and retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers account provisioning and deprovisioning.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers credential changes.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine profile edits.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventAttorneyCreated         AuditEvent = "attorney_created"
	EventAttorneyUpdated         AuditEvent = "attorney_updated"
	EventAttorneyPasswordUpdated AuditEvent = "attorney_password_updated"
	EventAttorneyDeactivated     AuditEvent = "attorney_deactivated"
	EventAttorneyReactivated     AuditEvent = "attorney_reactivated"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAttorneyCreated:         CategoryCompliance,
	EventAttorneyDeactivated:     CategoryCompliance,
	EventAttorneyReactivated:     CategoryCompliance,
	EventAttorneyPasswordUpdated: CategorySecurity,
	EventAttorneyUpdated:         CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic after a lifecycle mutation commits.
type Event struct {
	Action     AuditEvent    `json:"action"`
	Category   EventCategory `json:"category"`
	Timestamp  time.Time     `json:"timestamp"`
	AttorneyID string        `json:"attorney_id"`
	UID        string        `json:"uid,omitempty"`
	Email      string        `json:"email,omitempty"`
	// Enrichment from the request context.
	RequestID string `json:"request_id,omitempty"`
	ActorRole string `json:"actor_role,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
	Mobile    bool   `json:"mobile,omitempty"`
}
