package handlers

import (
	"errors"
	"strings"
	"time"

	"club-membership/internal/adapters/http/middleware"
	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/core/domain"
	"club-membership/internal/pkg/response"
	"club-membership/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MasterHandler handles master data endpoints
type MasterHandler struct {
	orgRepo        repositories.OrganizationRepository
	semesterRepo   repositories.SemesterRepository
	memberRepo     repositories.MemberRepository
	membershipRepo repositories.MembershipRepository
}

// NewMasterHandler creates a new master handler
func NewMasterHandler(
	orgRepo repositories.OrganizationRepository,
	semesterRepo repositories.SemesterRepository,
	memberRepo repositories.MemberRepository,
	membershipRepo repositories.MembershipRepository,
) *MasterHandler {
	return &MasterHandler{
		orgRepo:        orgRepo,
		semesterRepo:   semesterRepo,
		memberRepo:     memberRepo,
		membershipRepo: membershipRepo,
	}
}

// ============================================================
// Semester
// ============================================================

// ListSemesters lists all semesters by start date
// @Summary List semesters
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /master/semesters [get]
func (h *MasterHandler) ListSemesters(c *fiber.Ctx) error {
	semesters, err := h.semesterRepo.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list semesters")
	}

	return response.Success(c, "Semesters retrieved successfully", fiber.Map{
		"semesters": semesters,
	})
}

// CreateSemesterRequest represents create semester request
type CreateSemesterRequest struct {
	TermCode  string `json:"term_code" validate:"required,max=20"`
	Name      string `json:"name" validate:"required,max=100"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// CreateSemester creates a new semester
// @Summary Create semester
// @Description Create a new semester (Admin only)
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateSemesterRequest true "Semester data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /master/semesters [post]
func (h *MasterHandler) CreateSemester(c *fiber.Ctx) error {
	var req CreateSemesterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	if !end.After(start) {
		return response.BadRequest(c, "end_date must be after start_date")
	}

	semester := &models.Semester{
		TermCode:  strings.TrimSpace(req.TermCode),
		Name:      strings.TrimSpace(req.Name),
		StartDate: start,
		EndDate:   end,
	}
	if err := h.semesterRepo.Create(c.Context(), semester); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "Term code already exists")
		}
		return response.InternalServerError(c, "Failed to create semester")
	}

	return response.Created(c, "Semester created successfully", fiber.Map{
		"semester": semester,
	})
}

// ============================================================
// Organization
// ============================================================

// ListOrganizations lists organizations visible to the caller
// @Summary List organizations
// @Description Admins see every organization, officers only their own
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /master/organizations [get]
func (h *MasterHandler) ListOrganizations(c *fiber.Ctx) error {
	orgs, err := h.orgRepo.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list organizations")
	}

	visible := make([]*models.Organization, 0, len(orgs))
	for _, org := range orgs {
		if middleware.CanAccessOrg(c, org.ID) {
			visible = append(visible, org)
		}
	}

	return response.Success(c, "Organizations retrieved successfully", fiber.Map{
		"organizations": visible,
	})
}

// CreateOrganizationRequest represents create organization request
type CreateOrganizationRequest struct {
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description"`
}

// CreateOrganization creates a new organization
// @Summary Create organization
// @Description Create a new organization (Admin only)
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateOrganizationRequest true "Organization data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /master/organizations [post]
func (h *MasterHandler) CreateOrganization(c *fiber.Ctx) error {
	var req CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	org := &models.Organization{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := h.orgRepo.Create(c.Context(), org); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "Organization name already exists")
		}
		return response.InternalServerError(c, "Failed to create organization")
	}

	return response.Created(c, "Organization created successfully", fiber.Map{
		"organization": org,
	})
}

// ============================================================
// Member
// ============================================================

// SearchMembers searches members by name or email
// @Summary Search members
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param q query string false "Name or email fragment"
// @Success 200 {object} response.Response
// @Router /master/members [get]
func (h *MasterHandler) SearchMembers(c *fiber.Ctx) error {
	members, err := h.memberRepo.Search(c.Context(), strings.TrimSpace(c.Query("q")), 50)
	if err != nil {
		return response.InternalServerError(c, "Failed to search members")
	}

	return response.Success(c, "Members retrieved successfully", fiber.Map{
		"members": members,
	})
}

// CreateMemberRequest represents create member request
type CreateMemberRequest struct {
	FirstName          string `json:"first_name" validate:"required,max=100"`
	LastName           string `json:"last_name" validate:"required,max=100"`
	Email              string `json:"email" validate:"required,email"`
	GraduationSemester string `json:"graduation_semester" validate:"max=20"`
}

// UpdateMemberRequest represents update member request; omitted fields are kept
type UpdateMemberRequest struct {
	FirstName          *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName           *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	GraduationSemester *string `json:"graduation_semester" validate:"omitempty,max=20"`
}

// checkTermCode rejects a graduation semester that names no known semester
func (h *MasterHandler) checkTermCode(c *fiber.Ctx, termCode string) error {
	if termCode == "" {
		return nil
	}
	if _, err := h.semesterRepo.GetByTermCode(c.Context(), termCode); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrSemesterNotFound
		}
		return err
	}
	return nil
}

// CreateMember creates a new member
// @Summary Create member
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateMemberRequest true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /master/members [post]
func (h *MasterHandler) CreateMember(c *fiber.Ctx) error {
	var req CreateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	member := &models.Member{
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		GraduationSemester: strings.TrimSpace(req.GraduationSemester),
	}
	if err := h.checkTermCode(c, member.GraduationSemester); err != nil {
		if errors.Is(err, domain.ErrSemesterNotFound) {
			return response.BadRequest(c, "Unknown graduation semester")
		}
		return response.InternalServerError(c, "Failed to create member")
	}
	if err := h.memberRepo.Create(c.Context(), member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "Email already exists")
		}
		return response.InternalServerError(c, "Failed to create member")
	}

	return response.Created(c, "Member created successfully", fiber.Map{
		"member": member,
	})
}

// UpdateMember edits a member's name or graduation semester
// @Summary Update member
// @Description A graduation semester equal to the finalized semester moves the member to Alumni
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body UpdateMemberRequest true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /master/members/{id} [patch]
func (h *MasterHandler) UpdateMember(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req UpdateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	member, err := h.memberRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to update member")
	}

	if req.FirstName != nil {
		member.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		member.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.GraduationSemester != nil {
		member.GraduationSemester = strings.TrimSpace(*req.GraduationSemester)
		if err := h.checkTermCode(c, member.GraduationSemester); err != nil {
			if errors.Is(err, domain.ErrSemesterNotFound) {
				return response.BadRequest(c, "Unknown graduation semester")
			}
			return response.InternalServerError(c, "Failed to update member")
		}
	}

	if err := h.memberRepo.Update(c.Context(), member); err != nil {
		return response.InternalServerError(c, "Failed to update member")
	}

	return response.Success(c, "Member updated successfully", fiber.Map{
		"member": member,
	})
}

// EnrollMemberRequest represents enroll member request
type EnrollMemberRequest struct {
	MemberID uint `json:"member_id" validate:"required"`
}

// EnrollMember adds a member to the organization's roster for a semester as General
// @Summary Enroll member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param semesterID path int true "Semester ID"
// @Param body body EnrollMemberRequest true "Member"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /orgs/{orgID}/semesters/{semesterID}/members [post]
func (h *MasterHandler) EnrollMember(c *fiber.Ctx) error {
	orgID, _ := paramID(c, "orgID")
	semesterID, err := paramID(c, "semesterID")
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}

	var req EnrollMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	if _, err := h.semesterRepo.GetByID(c.Context(), semesterID); err != nil {
		return response.NotFound(c, "Semester not found")
	}
	if _, err := h.memberRepo.GetByID(c.Context(), req.MemberID); err != nil {
		return response.NotFound(c, "Member not found")
	}

	existing, err := h.membershipRepo.Get(c.Context(), orgID, req.MemberID, semesterID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.InternalServerError(c, "Failed to enroll member")
	}
	if existing != nil {
		return response.Conflict(c, "Member is already on this semester's roster")
	}

	row := &models.OrganizationMember{
		OrganizationID: orgID,
		MemberID:       req.MemberID,
		SemesterID:     semesterID,
		Status:         string(domain.StatusGeneral),
	}
	if err := h.membershipRepo.UpsertStatus(c.Context(), row); err != nil {
		return response.InternalServerError(c, "Failed to enroll member")
	}

	return response.Created(c, "Member enrolled successfully", fiber.Map{
		"membership": row,
	})
}
