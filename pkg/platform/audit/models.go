package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention and routing.
type EventCategory string

const (
	// CategoryAccess covers gate decisions: check-ins, check-outs, pass
	// redemptions, parcel hand-overs and rejected scans or OTPs.
	CategoryAccess EventCategory = "access"

	// CategoryApproval covers resident decisions on visit requests.
	CategoryApproval EventCategory = "approval"

	// CategoryOperations covers routine record creation and staff attendance.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject names the record acted on, e.g. "visit:12" or "guard:3".
	Subject   string
	Action    string
	FlatNo    string
	Decision  string
	Reason    string
	RequestID string
	// ActorID tracks who performed the action (a guard id, or "resident").
	ActorID  string
	ClientIP string
	Terminal string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

type AuditEvent string

const (
	// Visit request events
	EventVisitRequested      AuditEvent = "visit_requested"
	EventVisitScheduled      AuditEvent = "visit_scheduled"
	EventVisitApproved       AuditEvent = "visit_approved"
	EventVisitDeclined       AuditEvent = "visit_declined"
	EventVisitCheckedIn      AuditEvent = "visit_checked_in"
	EventVisitRevalidated    AuditEvent = "visit_revalidated"
	EventVisitCheckedOut     AuditEvent = "visit_checked_out"
	EventVisitRejectedAtGate AuditEvent = "visit_rejected_at_gate"

	// QR pass events
	EventPassIssued     AuditEvent = "pass_issued"
	EventPassRedeemed   AuditEvent = "pass_redeemed"
	EventPassCheckedOut AuditEvent = "pass_checked_out"
	EventPassRejected   AuditEvent = "pass_rejected"

	// Guard attendance events
	EventGuardCheckedIn  AuditEvent = "guard_checked_in"
	EventGuardCheckedOut AuditEvent = "guard_checked_out"

	// Package events
	EventPackageRegistered  AuditEvent = "package_registered"
	EventPackageUpdated     AuditEvent = "package_updated"
	EventPackageDelivered   AuditEvent = "package_delivered"
	EventPackageStatusSet   AuditEvent = "package_status_set"
	EventPackageOTPRejected AuditEvent = "package_otp_rejected"

	// Complaint events
	EventComplaintFiled         AuditEvent = "complaint_filed"
	EventComplaintUpdated       AuditEvent = "complaint_updated"
	EventComplaintAssigned      AuditEvent = "complaint_assigned"
	EventComplaintStatusChanged AuditEvent = "complaint_status_changed"

	// Directory events
	EventResidentAdded   AuditEvent = "resident_added"
	EventResidentUpdated AuditEvent = "resident_updated"
	EventGuardAdded      AuditEvent = "guard_added"
	EventGuardUpdated    AuditEvent = "guard_updated"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventVisitCheckedIn:      CategoryAccess,
	EventVisitRevalidated:    CategoryAccess,
	EventVisitCheckedOut:     CategoryAccess,
	EventVisitRejectedAtGate: CategoryAccess,
	EventPassRedeemed:        CategoryAccess,
	EventPassCheckedOut:      CategoryAccess,
	EventPassRejected:        CategoryAccess,
	EventPackageDelivered:    CategoryAccess,
	EventPackageStatusSet:    CategoryAccess,
	EventPackageOTPRejected:  CategoryAccess,

	EventVisitApproved: CategoryApproval,
	EventVisitDeclined: CategoryApproval,

	EventVisitRequested:  CategoryOperations,
	EventVisitScheduled:  CategoryOperations,
	EventPassIssued:      CategoryOperations,
	EventGuardCheckedIn:  CategoryOperations,
	EventGuardCheckedOut: CategoryOperations,
	EventResidentAdded:   CategoryOperations,
	EventResidentUpdated: CategoryOperations,
	EventGuardAdded:      CategoryOperations,
	EventGuardUpdated:    CategoryOperations,

	EventPackageRegistered:      CategoryOperations,
	EventPackageUpdated:         CategoryOperations,
	EventComplaintFiled:         CategoryOperations,
	EventComplaintUpdated:       CategoryOperations,
	EventComplaintAssigned:      CategoryOperations,
	EventComplaintStatusChanged: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
