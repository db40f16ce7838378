package repositories

import (
	"context"
	"time"

	"club-membership/internal/adapters/persistence/models"
)

// Transactor runs a function inside one database transaction.
// Repositories called with the ctx handed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserFilter narrows a user listing; zero values match everything
type UserFilter struct {
	OrganizationID *uint
	Role           string
	ActiveOnly     bool
}

// UserRepository defines officer account repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// TouchLogin stamps the last successful login without touching other columns
	TouchLogin(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter UserFilter, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	// GetByTokenHash returns the token whether or not it was revoked
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	// Rotate revokes the spent token and stores its successor in one transaction
	Rotate(ctx context.Context, spentID uint, next *models.RefreshToken) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) (int64, error)
	// RevokeExcess keeps the newest keep live sessions of a user and revokes the rest
	RevokeExcess(ctx context.Context, userID uint, keep int) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// OrganizationRepository defines organization repository interface
type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id uint) (*models.Organization, error)
	GetByName(ctx context.Context, name string) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
}

// SemesterRepository defines semester repository interface
type SemesterRepository interface {
	Create(ctx context.Context, semester *models.Semester) error
	GetByID(ctx context.Context, id uint) (*models.Semester, error)
	GetByTermCode(ctx context.Context, termCode string) (*models.Semester, error)
	// GetNext returns the first semester starting after the given one
	GetNext(ctx context.Context, current *models.Semester) (*models.Semester, error)
	// ListFrom returns up to limit semesters starting with the given one, ordered by start date
	ListFrom(ctx context.Context, start *models.Semester, limit int) ([]*models.Semester, error)
	List(ctx context.Context) ([]*models.Semester, error)
}

// MemberRepository defines member repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	// Search matches the query literally; an empty query lists members alphabetically
	Search(ctx context.Context, query string, limit int) ([]*models.Member, error)
}

// MembershipRepository defines organization membership repository interface
type MembershipRepository interface {
	// ListBySemester returns every membership row of an organization for a semester, member preloaded
	ListBySemester(ctx context.Context, orgID, semesterID uint) ([]*models.OrganizationMember, error)
	List(ctx context.Context, orgID, semesterID uint, status string, offset, limit int) ([]*models.OrganizationMember, int64, error)
	Get(ctx context.Context, orgID, memberID, semesterID uint) (*models.OrganizationMember, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	// UpsertStatus inserts the row or overwrites the status of the existing one
	UpsertStatus(ctx context.Context, row *models.OrganizationMember) error
	// DeleteAfter removes the member's rows for semesters starting after the given date
	DeleteAfter(ctx context.Context, orgID, memberID uint, after time.Time) (int64, error)
	CountByStatus(ctx context.Context, orgID, semesterID uint) (map[string]int64, error)
}

// RuleRepository defines event type, rule and requirement repository interface
type RuleRepository interface {
	// ListEventTypes returns the organization's event types for a semester with their rules
	ListEventTypes(ctx context.Context, orgID, semesterID uint) ([]*models.EventType, error)
	GetEventType(ctx context.Context, id uint) (*models.EventType, error)
	CreateEventType(ctx context.Context, eventType *models.EventType) error
	UpdateEventType(ctx context.Context, eventType *models.EventType) error
	DeleteEventType(ctx context.Context, id uint) error

	GetRule(ctx context.Context, id uint) (*models.Rule, error)
	CreateRule(ctx context.Context, rule *models.Rule) error
	UpdateRule(ctx context.Context, rule *models.Rule) error
	DeleteRule(ctx context.Context, id uint) error

	GetRequirement(ctx context.Context, orgID, semesterID uint) (*models.ActiveRequirement, error)
	UpsertRequirement(ctx context.Context, req *models.ActiveRequirement) error
}

// AttendanceRecordRow is one attended event joined with its event type name
type AttendanceRecordRow struct {
	EventType string
	EventDate time.Time
	Hours     *float64
}

// AttendanceRepository defines event and attendance repository interface
type AttendanceRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	ListEvents(ctx context.Context, orgID, semesterID uint) ([]*models.Event, error)
	// Upsert inserts the check-in or overwrites time and hours for the same member+event
	Upsert(ctx context.Context, attendance *models.Attendance) error
	// ListRecords returns the member's attendance within an organization's semester
	ListRecords(ctx context.Context, orgID, memberID, semesterID uint) ([]AttendanceRecordRow, error)
}

// ExemptionRepository defines exemption repository interface
type ExemptionRepository interface {
	Create(ctx context.Context, exemption *models.Exemption) error
	GetByID(ctx context.Context, id uint) (*models.Exemption, error)
	// GetOpen returns the member's exemption that has not been ended
	GetOpen(ctx context.Context, orgID, memberID uint) (*models.Exemption, error)
	End(ctx context.Context, id uint, at time.Time) error
	ListOpen(ctx context.Context) ([]*models.Exemption, error)
	ListByOrganization(ctx context.Context, orgID uint) ([]*models.Exemption, error)
}

// StatusHistoryRepository defines status transition and report repository interface
type StatusHistoryRepository interface {
	RecordTransition(ctx context.Context, transition *models.StatusTransition) error
	ListTransitions(ctx context.Context, orgID, memberID uint) ([]*models.StatusTransition, error)
	// SaveReport keeps one report per org+member+semester, replacing the previous one
	SaveReport(ctx context.Context, report *models.StatusReport) error
	GetReport(ctx context.Context, orgID, memberID, semesterID uint) (*models.StatusReport, error)
	ListReports(ctx context.Context, orgID, semesterID uint) ([]*models.StatusReport, error)
}
