package models

import (
	"strings"
	"time"

	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
)

// Status tracks a complaint from filing to closure. A complaint is PENDING
// until someone is assigned, OPEN once assigned, and closed when RESOLVED or
// REJECTED.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusRejected   Status = "REJECTED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusOpen, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

func (s Status) IsClosed() bool {
	return s == StatusResolved || s == StatusRejected
}

// ParseStatus accepts "In Progress", "in_progress" and the like.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", "_")))
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown complaint status")
	}
	return s, nil
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority defaults a blank priority to MEDIUM.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(raw)))
	switch p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "priority must be LOW, MEDIUM or HIGH")
}

// Complaint is a resident's maintenance or security issue.
type Complaint struct {
	ID           id.ComplaintID `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Category     string         `json:"category"`
	Priority     Priority       `json:"priority"`
	Status       Status         `json:"status"`
	ResidentName string         `json:"residentName"`
	FlatNo       string         `json:"flatNo"`
	AssignedTo   string         `json:"assignedTo,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    *time.Time     `json:"updatedAt"`
}

type Details struct {
	Title        string
	Description  string
	Category     string
	Priority     Priority
	ResidentName string
	FlatNo       string
}

func NewComplaint(d Details, now time.Time) (*Complaint, error) {
	c := &Complaint{
		Title:        strings.TrimSpace(d.Title),
		Description:  strings.TrimSpace(d.Description),
		Category:     strings.TrimSpace(d.Category),
		Priority:     d.Priority,
		Status:       StatusPending,
		ResidentName: strings.TrimSpace(d.ResidentName),
		FlatNo:       strings.TrimSpace(d.FlatNo),
		CreatedAt:    now,
	}
	if c.Title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "complaint title is required")
	}
	if c.FlatNo == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "flat number is required")
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	return c, nil
}

// Edit is a partial update from the resident. Nil fields are left alone.
type Edit struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *Priority
}

// CanEdit refuses edits to closed complaints and blank titles.
func (c *Complaint) CanEdit(e Edit) error {
	if c.Status.IsClosed() {
		return dErrors.New(dErrors.CodeInvalidState, "complaint is closed")
	}
	if e.Title != nil && strings.TrimSpace(*e.Title) == "" {
		return dErrors.New(dErrors.CodeValidation, "complaint title is required")
	}
	return nil
}

func (c *Complaint) ApplyEdit(e Edit, now time.Time) {
	if e.Title != nil {
		c.Title = strings.TrimSpace(*e.Title)
	}
	if e.Description != nil {
		c.Description = strings.TrimSpace(*e.Description)
	}
	if e.Category != nil {
		c.Category = strings.TrimSpace(*e.Category)
	}
	if e.Priority != nil {
		c.Priority = *e.Priority
	}
	c.UpdatedAt = &now
}

// CanAssign allows (re)assignment until the complaint is closed.
func (c *Complaint) CanAssign(assignee string) error {
	if strings.TrimSpace(assignee) == "" {
		return dErrors.New(dErrors.CodeValidation, "assignee is required")
	}
	if c.Status.IsClosed() {
		return dErrors.New(dErrors.CodeInvalidState, "complaint is closed")
	}
	return nil
}

// ApplyAssign opens a pending complaint. Later assignments keep the status.
func (c *Complaint) ApplyAssign(assignee string, now time.Time) {
	c.AssignedTo = strings.TrimSpace(assignee)
	if c.Status == StatusPending {
		c.Status = StatusOpen
	}
	c.UpdatedAt = &now
}

// CanMoveTo guards admin status changes. Nothing moves back to PENDING, and
// an unassigned complaint can only be rejected.
func (c *Complaint) CanMoveTo(target Status) error {
	if !target.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown complaint status")
	}
	if target == StatusPending {
		return dErrors.New(dErrors.CodeInvalidState, "a complaint cannot return to PENDING")
	}
	if c.Status == StatusPending && target != StatusRejected {
		return dErrors.New(dErrors.CodeInvalidState, "complaint must be assigned first")
	}
	return nil
}

func (c *Complaint) ApplyStatus(target Status, now time.Time) {
	c.Status = target
	c.UpdatedAt = &now
}

// Query selects complaints. Zero fields do not constrain.
type Query struct {
	FlatNo   string
	Status   Status
	Priority Priority
}

func (q Query) Matches(c *Complaint) bool {
	if q.FlatNo != "" && c.FlatNo != q.FlatNo {
		return false
	}
	if q.Status != "" && c.Status != q.Status {
		return false
	}
	if q.Priority != "" && c.Priority != q.Priority {
		return false
	}
	return true
}
