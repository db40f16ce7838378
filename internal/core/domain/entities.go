package domain

import "time"

// Role represents officer role in the system
type Role string

const (
	RoleOfficer Role = "OFFICER"
	RoleAdmin   Role = "ADMIN"
)

// MembershipStatus is the persisted per-semester status of a member in an organization
type MembershipStatus string

const (
	StatusActive          MembershipStatus = "Active"
	StatusCarryoverActive MembershipStatus = "CarryoverActive"
	StatusGeneral         MembershipStatus = "General"
	StatusExempt          MembershipStatus = "Exempt"
	StatusAlumni          MembershipStatus = "Alumni"
)

// Valid reports whether s is one of the known membership statuses
func (s MembershipStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCarryoverActive, StatusGeneral, StatusExempt, StatusAlumni:
		return true
	}
	return false
}

// VerdictStatus is the evaluator's active/inactive outcome
type VerdictStatus string

const (
	VerdictActive   VerdictStatus = "active"
	VerdictInactive VerdictStatus = "inactive"
)

// RuleType governs whether an event type yields points or pass/fail criteria
type RuleType string

const (
	RuleTypePoints   RuleType = "Points"
	RuleTypeCriteria RuleType = "Criteria"
)

// RuleCriteria is the closed set of rule kinds the evaluator understands
type RuleCriteria string

const (
	CriteriaAttendance        RuleCriteria = "attendance"
	CriteriaOneOff            RuleCriteria = "one off"
	CriteriaMinimumPercentage RuleCriteria = "minimum threshold percentage"
	CriteriaMinimumHours      RuleCriteria = "minimum threshold hours"
)

// RequirementMode describes what the active requirement counts
type RequirementMode string

const (
	RequirementPoints   RequirementMode = "points"
	RequirementCriteria RequirementMode = "criteria"
)

// AttendanceRecord is one observed event attendance for a member
type AttendanceRecord struct {
	EventType string
	EventDate time.Time
	Hours     *float64
}

// Rule is one scoring clause attached to an event type
type Rule struct {
	ID            uint
	Criteria      RuleCriteria
	CriteriaValue *float64
	PointValue    float64
}

// EventTypeConfig is one organization-defined category of event for one semester
type EventTypeConfig struct {
	ID              uint
	Name            string
	RuleType        RuleType
	OccurrenceTotal *int
	MaxPoints       *float64
	Rules           []Rule
}

// RuleConfig is the full rule configuration of an organization for one semester
type RuleConfig struct {
	EventTypes []EventTypeConfig
}

// ActiveRequirement is the organization's threshold for active membership
type ActiveRequirement struct {
	Value float64
	Mode  RequirementMode
}

// BreakdownEntry is the points earned from one event type
type BreakdownEntry struct {
	EventType string  `json:"eventType"`
	Points    float64 `json:"points"`
	Capped    bool    `json:"capped,omitempty"`
	Uncapped  float64 `json:"uncapped,omitempty"`
}

// StatusVerdict is the evaluator output for one member
type StatusVerdict struct {
	Status      VerdictStatus    `json:"status"`
	TotalPoints float64          `json:"totalPoints"`
	CriteriaMet int              `json:"criteriaMet,omitempty"`
	Breakdown   []BreakdownEntry `json:"breakdown"`
}

// IsActive reports whether the verdict is active
func (v *StatusVerdict) IsActive() bool {
	return v != nil && v.Status == VerdictActive
}

// BreakdownMap returns the breakdown keyed by event type name
func (v *StatusVerdict) BreakdownMap() map[string]float64 {
	m := make(map[string]float64, len(v.Breakdown))
	for _, e := range v.Breakdown {
		m[e.EventType] += e.Points
	}
	return m
}

// Semester identifies an academic term
type Semester struct {
	ID        uint
	TermCode  string
	Name      string
	StartDate time.Time
	EndDate   time.Time
}
