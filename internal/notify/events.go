package notify

import "time"

type EventType string

const (
	EventMilestoneCompleted EventType = "milestone_completed"
	EventVendorAssigned     EventType = "vendor_assigned"
	EventCommissionEarned   EventType = "commission_earned"
	EventIncentiveAchieved  EventType = "incentive_achieved"
)

// Event is the fire-and-forget payload handed to the notification sink.
// Identifiers are strings so the sink never depends on domain packages.
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	CustomerID string         `json:"customer_id,omitempty"`
	PartnerID  string         `json:"partner_id,omitempty"`
	VendorID   string         `json:"vendor_id,omitempty"`
	Message    string         `json:"message"`
	Context    map[string]any `json:"context,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
