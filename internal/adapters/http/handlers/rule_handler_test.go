package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"club-membership/internal/adapters/http/middleware"
	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/core/services"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ruleFixture struct {
	app       *fiber.App
	semester  *models.Semester
	foreignET *models.EventType
}

func newRuleFixture(t *testing.T) *ruleFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	for _, name := range []string{"Robotics Club", "Debate Society"} {
		require.NoError(t, db.Create(&models.Organization{Name: name}).Error)
	}
	start := time.Date(2024, 8, 26, 0, 0, 0, 0, time.UTC)
	sem := &models.Semester{TermCode: "F24", Name: "Fall 2024", StartDate: start, EndDate: start.AddDate(0, 4, 0)}
	require.NoError(t, db.Create(sem).Error)

	// belongs to the second organization
	foreign := &models.EventType{OrganizationID: 2, SemesterID: sem.ID, Name: "Tournament", RuleType: "Points",
		Rules: []models.Rule{{Criteria: "attendance", PointValue: 3}}}
	require.NoError(t, db.Create(foreign).Error)

	svc := services.NewRuleConfigService(repositories.NewRuleRepository(db), repositories.NewSemesterRepository(db))
	h := NewRuleHandler(svc)

	app := newTestApp()
	orgs := app.Group("/orgs/:orgID", middleware.AuthMiddleware(testConfig()), middleware.OfficerOrAdmin(), middleware.OrgScope())
	orgs.Get("/semesters/:semesterID/event-types", h.ListEventTypes)
	orgs.Post("/semesters/:semesterID/event-types", h.CreateEventType)
	orgs.Get("/semesters/:semesterID/requirement", h.GetRequirement)
	orgs.Put("/semesters/:semesterID/requirement", h.SetRequirement)
	orgs.Put("/event-types/:id", h.UpdateEventType)
	orgs.Delete("/event-types/:id", h.DeleteEventType)
	orgs.Post("/event-types/:id/rules", h.CreateRule)
	orgs.Put("/rules/:id", h.UpdateRule)
	orgs.Delete("/rules/:id", h.DeleteRule)

	return &ruleFixture{app: app, semester: sem, foreignET: foreign}
}

func TestRuleHandler_CreateAndListEventType(t *testing.T) {
	f := newRuleFixture(t)
	tok := officerToken(t, 1)
	base := fmt.Sprintf("/orgs/1/semesters/%d/event-types", f.semester.ID)

	status, body := do(t, f.app, http.MethodPost, base, tok,
		`{"name":"Meeting","ruleType":"Points","maxPoints":10,"rules":[{"criteria":"attendance","pointValue":2}]}`)
	require.Equal(t, http.StatusCreated, status, body)

	status, body = do(t, f.app, http.MethodGet, base, tok, "")
	require.Equal(t, http.StatusOK, status)
	eventTypes := body["data"].(map[string]interface{})["event_types"].([]interface{})
	require.Len(t, eventTypes, 1)
	et := eventTypes[0].(map[string]interface{})
	assert.Equal(t, "Meeting", et["name"])
	assert.Equal(t, float64(1), et["organization_id"])
	assert.Len(t, et["rules"], 1)
}

func TestRuleHandler_ValidationErrors(t *testing.T) {
	f := newRuleFixture(t)
	base := fmt.Sprintf("/orgs/1/semesters/%d/event-types", f.semester.ID)

	status, body := do(t, f.app, http.MethodPost, base, officerToken(t, 1),
		`{"name":"Meeting","ruleType":"Bonus"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, "oneof", fields["ruleType"])

	status, _ = do(t, f.app, http.MethodPost, base, officerToken(t, 1),
		`{"name":"Workshop","ruleType":"Points","rules":[{"criteria":"minimum threshold percentage","criteriaValue":0.5,"pointValue":2}]}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, f.app, http.MethodPost, "/orgs/1/semesters/999/event-types", officerToken(t, 1),
		`{"name":"Meeting","ruleType":"Points"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRuleHandler_ForeignEventTypeIsNotFound(t *testing.T) {
	f := newRuleFixture(t)
	tok := officerToken(t, 1)

	status, _ := do(t, f.app, http.MethodPut, fmt.Sprintf("/orgs/1/event-types/%d", f.foreignET.ID), tok,
		fmt.Sprintf(`{"semesterID":%d,"name":"Hijacked","ruleType":"Points"}`, f.semester.ID))
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, f.app, http.MethodDelete, fmt.Sprintf("/orgs/1/event-types/%d", f.foreignET.ID), tok, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, f.app, http.MethodPost, fmt.Sprintf("/orgs/1/event-types/%d/rules", f.foreignET.ID), tok,
		`{"criteria":"one off","pointValue":5}`)
	assert.Equal(t, http.StatusNotFound, status)

	ruleID := f.foreignET.Rules[0].ID
	status, _ = do(t, f.app, http.MethodDelete, fmt.Sprintf("/orgs/1/rules/%d", ruleID), tok, "")
	assert.Equal(t, http.StatusNotFound, status)

	// the owner can still remove it
	status, _ = do(t, f.app, http.MethodDelete, fmt.Sprintf("/orgs/2/rules/%d", ruleID), officerToken(t, 2), "")
	assert.Equal(t, http.StatusOK, status)
}

func TestRuleHandler_Requirement(t *testing.T) {
	f := newRuleFixture(t)
	tok := officerToken(t, 1)
	path := fmt.Sprintf("/orgs/1/semesters/%d/requirement", f.semester.ID)

	status, _ := do(t, f.app, http.MethodGet, path, tok, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, f.app, http.MethodPut, path, tok, `{"activeRequirement":12,"description":"points"}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, f.app, http.MethodPut, path, tok, `{"activeRequirement":2,"description":"criteria"}`)
	require.Equal(t, http.StatusOK, status)

	status, body := do(t, f.app, http.MethodGet, path, tok, "")
	require.Equal(t, http.StatusOK, status)
	req := body["data"].(map[string]interface{})["requirement"].(map[string]interface{})
	assert.Equal(t, float64(2), req["active_requirement"])
	assert.Equal(t, "criteria", req["description"])
}
