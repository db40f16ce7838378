package models

import (
	"time"

	"club-membership/internal/core/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================
// Auth Tables
// ============================================================

// User represents officer accounts
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrganizationID *uint          `gorm:"index" json:"organization_id"`
	Username       string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email          string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password       string         `gorm:"size:255;not null" json:"-"`
	Role           string         `gorm:"size:20;default:'OFFICER'" json:"role"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	LastLoginAt    *time.Time     `json:"last_login_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID             uint       `json:"id"`
	OrganizationID *uint      `json:"organization_id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	IsActive       bool       `json:"is_active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		IsActive:       u.IsActive,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Master Tables
// ============================================================

// Organization is a club
type Organization struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Organization) TableName() string {
	return "organizations"
}

// Semester is an academic term; ordering between semesters is by StartDate
type Semester struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TermCode  string    `gorm:"size:20;uniqueIndex;not null" json:"term_code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	StartDate time.Time `gorm:"type:date;not null;index" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`
}

func (Semester) TableName() string {
	return "semesters"
}

func (s *Semester) ToDomain() domain.Semester {
	return domain.Semester{
		ID:        s.ID,
		TermCode:  s.TermCode,
		Name:      s.Name,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
	}
}

// Member is a person who can belong to organizations
type Member struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	FirstName          string    `gorm:"size:100;not null" json:"first_name"`
	LastName           string    `gorm:"size:100;not null" json:"last_name"`
	Email              string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	GraduationSemester string    `gorm:"size:20;index" json:"graduation_semester"` // TermCode
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}

// FullName returns "First Last"
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// ============================================================
// Membership Tables
// ============================================================

// OrganizationMember is one member's status in one organization for one semester
type OrganizationMember struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;uniqueIndex:idx_org_member_semester" json:"organization_id"`
	MemberID       uint      `gorm:"not null;uniqueIndex:idx_org_member_semester" json:"member_id"`
	SemesterID     uint      `gorm:"not null;uniqueIndex:idx_org_member_semester;index" json:"semester_id"`
	RoleID         uint      `gorm:"default:0" json:"role_id"`
	Status         string    `gorm:"size:20;not null;default:'General';index" json:"status"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Member   *Member   `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Semester *Semester `gorm:"foreignKey:SemesterID" json:"semester,omitempty"`
}

func (OrganizationMember) TableName() string {
	return "organization_members"
}

// MembershipStatus returns the typed status
func (om *OrganizationMember) MembershipStatus() domain.MembershipStatus {
	return domain.MembershipStatus(om.Status)
}

// Exemption is a manual override keeping a member Exempt for Duration semesters
type Exemption struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	OrganizationID  uint       `gorm:"not null;index:idx_exemption_org_member" json:"organization_id"`
	MemberID        uint       `gorm:"not null;index:idx_exemption_org_member" json:"member_id"`
	StartSemesterID uint       `gorm:"not null" json:"start_semester_id"`
	Duration        int        `gorm:"not null;default:1" json:"duration"`
	Reason          string     `gorm:"type:text" json:"reason"`
	GrantedBy       uint       `json:"granted_by"`
	EndedAt         *time.Time `gorm:"index" json:"ended_at"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	StartSemester *Semester `gorm:"foreignKey:StartSemesterID" json:"start_semester,omitempty"`
	Member        *Member   `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Exemption) TableName() string {
	return "exemptions"
}

// ============================================================
// Rule Tables
// ============================================================

// EventType is an organization-defined category of event for one semester
type EventType struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrganizationID  uint      `gorm:"not null;uniqueIndex:idx_event_type_name" json:"organization_id"`
	SemesterID      uint      `gorm:"not null;uniqueIndex:idx_event_type_name" json:"semester_id"`
	Name            string    `gorm:"size:100;not null;uniqueIndex:idx_event_type_name" json:"name"`
	RuleType        string    `gorm:"size:20;not null;default:'Points'" json:"rule_type"`
	OccurrenceTotal *int      `json:"occurrence_total"`
	MaxPoints       *float64  `gorm:"type:decimal(10,2)" json:"max_points"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Rules []Rule `gorm:"foreignKey:EventTypeID;constraint:OnDelete:CASCADE" json:"rules"`
}

func (EventType) TableName() string {
	return "event_types"
}

// ToDomain converts the event type and its preloaded rules
func (et *EventType) ToDomain() domain.EventTypeConfig {
	cfg := domain.EventTypeConfig{
		ID:              et.ID,
		Name:            et.Name,
		RuleType:        domain.RuleType(et.RuleType),
		OccurrenceTotal: et.OccurrenceTotal,
		MaxPoints:       et.MaxPoints,
		Rules:           make([]domain.Rule, 0, len(et.Rules)),
	}
	for _, r := range et.Rules {
		cfg.Rules = append(cfg.Rules, r.ToDomain())
	}
	return cfg
}

// Rule is one scoring clause of an event type
type Rule struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EventTypeID   uint      `gorm:"not null;index" json:"event_type_id"`
	Criteria      string    `gorm:"size:50;not null" json:"criteria"`
	CriteriaValue *float64  `gorm:"type:decimal(10,4)" json:"criteria_value"`
	PointValue    float64   `gorm:"type:decimal(10,2);not null" json:"point_value"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Rule) TableName() string {
	return "rules"
}

func (r *Rule) ToDomain() domain.Rule {
	return domain.Rule{
		ID:            r.ID,
		Criteria:      domain.RuleCriteria(r.Criteria),
		CriteriaValue: r.CriteriaValue,
		PointValue:    r.PointValue,
	}
}

// ActiveRequirement is the organization's active threshold for a semester
type ActiveRequirement struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	OrganizationID    uint      `gorm:"not null;uniqueIndex:idx_requirement_org_semester" json:"organization_id"`
	SemesterID        uint      `gorm:"not null;uniqueIndex:idx_requirement_org_semester" json:"semester_id"`
	ActiveRequirement float64   `gorm:"type:decimal(10,2);not null" json:"active_requirement"`
	Description       string    `gorm:"size:20;not null;default:'points'" json:"description"` // points | criteria
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ActiveRequirement) TableName() string {
	return "active_requirements"
}

func (ar *ActiveRequirement) ToDomain() domain.ActiveRequirement {
	return domain.ActiveRequirement{
		Value: ar.ActiveRequirement,
		Mode:  domain.RequirementMode(ar.Description),
	}
}

// ============================================================
// Attendance Tables
// ============================================================

// Event is one scheduled occurrence of an event type
type Event struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	SemesterID     uint      `gorm:"not null;index" json:"semester_id"`
	EventTypeID    uint      `gorm:"not null;index" json:"event_type_id"`
	Name           string    `gorm:"size:150;not null" json:"name"`
	EventDate      time.Time `gorm:"not null" json:"event_date"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	EventType *EventType `gorm:"foreignKey:EventTypeID" json:"event_type,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

// Attendance is one member's check-in at one event
type Attendance struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MemberID    uint      `gorm:"not null;uniqueIndex:idx_attendance_member_event" json:"member_id"`
	EventID     uint      `gorm:"not null;uniqueIndex:idx_attendance_member_event;index" json:"event_id"`
	CheckInTime time.Time `gorm:"not null" json:"check_in_time"`
	Hours       *float64  `gorm:"type:decimal(6,2)" json:"hours"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

func (Attendance) TableName() string {
	return "attendance"
}

// ============================================================
// History Tables
// ============================================================

// StatusTransition records one status write made by a status run
type StatusTransition struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RunID          string    `gorm:"size:36;not null;index" json:"run_id"`
	RunType        string    `gorm:"size:20;not null" json:"run_type"`
	OrganizationID uint      `gorm:"not null;index:idx_transition_org_member" json:"organization_id"`
	MemberID       uint      `gorm:"not null;index:idx_transition_org_member" json:"member_id"`
	SemesterID     uint      `gorm:"not null" json:"semester_id"`
	FromStatus     string    `gorm:"size:20" json:"from_status"`
	ToStatus       string    `gorm:"size:20;not null" json:"to_status"`
	Reason         string    `gorm:"size:255" json:"reason"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (StatusTransition) TableName() string {
	return "status_transitions"
}

// Run types
const (
	RunTypeReEvaluate = "REEVALUATE"
	RunTypeFinalize   = "FINALIZE"
	RunTypeExemption  = "EXEMPTION"
)

// StatusReport is the latest evaluated verdict of a member for a semester
type StatusReport struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrganizationID uint           `gorm:"not null;uniqueIndex:idx_report_org_member_semester" json:"organization_id"`
	MemberID       uint           `gorm:"not null;uniqueIndex:idx_report_org_member_semester" json:"member_id"`
	SemesterID     uint           `gorm:"not null;uniqueIndex:idx_report_org_member_semester" json:"semester_id"`
	Verdict        string         `gorm:"size:10;not null" json:"verdict"`
	TotalPoints    float64        `gorm:"type:decimal(10,2);not null" json:"total_points"`
	CriteriaMet    int            `gorm:"default:0" json:"criteria_met"`
	Breakdown      datatypes.JSON `gorm:"type:json" json:"breakdown"`
	RunID          string         `gorm:"size:36" json:"run_id"`
	EvaluatedAt    time.Time      `gorm:"not null" json:"evaluated_at"`
}

func (StatusReport) TableName() string {
	return "status_reports"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth
		&User{},
		&RefreshToken{},
		// Master
		&Organization{},
		&Semester{},
		&Member{},
		// Membership
		&OrganizationMember{},
		&Exemption{},
		// Rules
		&EventType{},
		&Rule{},
		&ActiveRequirement{},
		// Attendance
		&Event{},
		&Attendance{},
		// History
		&StatusTransition{},
		&StatusReport{},
	)
}
