package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

var errInjected = errors.New("injected failure")

type recordKey struct{ org, member, semester uint }

// fakeStore is an in-memory stand-in for the database behind every repository
type fakeStore struct {
	mu sync.Mutex

	nextID       uint
	semesters    []*models.Semester
	members      map[uint]*models.Member
	memberships  []*models.OrganizationMember
	eventTypes   []*models.EventType
	requirements map[[2]uint]*models.ActiveRequirement
	records      map[recordKey][]repositories.AttendanceRecordRow
	events       []*models.Event
	attendance   map[[2]uint]*models.Attendance
	exemptions   []*models.Exemption
	transitions  []*models.StatusTransition
	reports      map[recordKey]*models.StatusReport
	users        []*models.User
	tokens       []*models.RefreshToken

	// UpsertStatus fails for this member when set
	failUpsertMember uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:       1000,
		members:      map[uint]*models.Member{},
		requirements: map[[2]uint]*models.ActiveRequirement{},
		records:      map[recordKey][]repositories.AttendanceRecordRow{},
		attendance:   map[[2]uint]*models.Attendance{},
		reports:      map[recordKey]*models.StatusReport{},
	}
}

func (s *fakeStore) id() uint {
	s.nextID++
	return s.nextID
}

// ---- seeding helpers ----

func (s *fakeStore) addSemester(id uint, term string, start time.Time) *models.Semester {
	sem := &models.Semester{ID: id, TermCode: term, Name: term, StartDate: start, EndDate: start.AddDate(0, 4, 0)}
	s.semesters = append(s.semesters, sem)
	return sem
}

func (s *fakeStore) addMember(id uint, name, graduation string) {
	s.members[id] = &models.Member{ID: id, FirstName: name, LastName: "Test", Email: strings.ToLower(name) + "@example.edu", GraduationSemester: graduation}
}

func (s *fakeStore) addMembership(org, member, semester uint, status string) {
	s.memberships = append(s.memberships, &models.OrganizationMember{
		ID: s.id(), OrganizationID: org, MemberID: member, SemesterID: semester, RoleID: 1, Status: status,
	})
}

func (s *fakeStore) addRecords(org, member, semester uint, eventType string, n int) {
	k := recordKey{org, member, semester}
	for i := 0; i < n; i++ {
		s.records[k] = append(s.records[k], repositories.AttendanceRecordRow{
			EventType: eventType,
			EventDate: time.Date(2024, 9, 1+i, 18, 0, 0, 0, time.UTC),
		})
	}
}

func (s *fakeStore) status(org, member, semester uint) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.memberships {
		if m.OrganizationID == org && m.MemberID == member && m.SemesterID == semester {
			return m.Status, true
		}
	}
	return "", false
}

func (s *fakeStore) semesterByID(id uint) *models.Semester {
	for _, sem := range s.semesters {
		if sem.ID == id {
			return sem
		}
	}
	return nil
}

// ---- transactor ----

type fakeTx struct{ s *fakeStore }

// WithinTransaction restores the mutable tables when fn fails
func (t fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.s.mu.Lock()
	memberships := make([]*models.OrganizationMember, len(t.s.memberships))
	for i, m := range t.s.memberships {
		c := *m
		memberships[i] = &c
	}
	transitions := len(t.s.transitions)
	reports := make(map[recordKey]*models.StatusReport, len(t.s.reports))
	for k, r := range t.s.reports {
		c := *r
		reports[k] = &c
	}
	exemptions := make([]*models.Exemption, len(t.s.exemptions))
	for i, e := range t.s.exemptions {
		c := *e
		exemptions[i] = &c
	}
	t.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.s.mu.Lock()
		t.s.memberships = memberships
		t.s.transitions = t.s.transitions[:transitions]
		t.s.reports = reports
		t.s.exemptions = exemptions
		t.s.mu.Unlock()
		return err
	}
	return nil
}

// ---- semesters ----

type fakeSemesterRepo struct{ s *fakeStore }

func (r fakeSemesterRepo) Create(_ context.Context, semester *models.Semester) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	semester.ID = r.s.id()
	c := *semester
	r.s.semesters = append(r.s.semesters, &c)
	return nil
}

func (r fakeSemesterRepo) GetByID(_ context.Context, id uint) (*models.Semester, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sem := r.s.semesterByID(id); sem != nil {
		c := *sem
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeSemesterRepo) GetByTermCode(_ context.Context, termCode string) (*models.Semester, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sem := range r.s.semesters {
		if sem.TermCode == termCode {
			c := *sem
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeSemesterRepo) sorted() []*models.Semester {
	out := make([]*models.Semester, len(r.s.semesters))
	copy(out, r.s.semesters)
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (r fakeSemesterRepo) GetNext(_ context.Context, current *models.Semester) (*models.Semester, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sem := range r.sorted() {
		if sem.StartDate.After(current.StartDate) {
			c := *sem
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeSemesterRepo) ListFrom(_ context.Context, start *models.Semester, limit int) ([]*models.Semester, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Semester
	for _, sem := range r.sorted() {
		if !sem.StartDate.Before(start.StartDate) && len(out) < limit {
			c := *sem
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r fakeSemesterRepo) List(_ context.Context) ([]*models.Semester, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(), nil
}

// ---- members ----

type fakeMemberRepo struct{ s *fakeStore }

func (r fakeMemberRepo) Create(_ context.Context, member *models.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	member.ID = r.s.id()
	c := *member
	r.s.members[member.ID] = &c
	return nil
}

func (r fakeMemberRepo) GetByID(_ context.Context, id uint) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.members[id]; ok {
		c := *m
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeMemberRepo) GetByEmail(_ context.Context, email string) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.Email == email {
			c := *m
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeMemberRepo) Update(_ context.Context, member *models.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[member.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.FirstName, m.LastName, m.GraduationSemester = member.FirstName, member.LastName, member.GraduationSemester
	return nil
}

func (r fakeMemberRepo) Search(_ context.Context, query string, limit int) ([]*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Member
	for _, m := range r.s.members {
		if strings.Contains(m.FullName(), query) && len(out) < limit {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

// ---- memberships ----

type fakeMembershipRepo struct{ s *fakeStore }

func (r fakeMembershipRepo) withMember(m *models.OrganizationMember) *models.OrganizationMember {
	c := *m
	if member, ok := r.s.members[m.MemberID]; ok {
		mc := *member
		c.Member = &mc
	}
	return &c
}

func (r fakeMembershipRepo) ListBySemester(_ context.Context, orgID, semesterID uint) ([]*models.OrganizationMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.OrganizationMember
	for _, m := range r.s.memberships {
		if m.OrganizationID == orgID && m.SemesterID == semesterID {
			out = append(out, r.withMember(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeMembershipRepo) List(ctx context.Context, orgID, semesterID uint, status string, offset, limit int) ([]*models.OrganizationMember, int64, error) {
	all, _ := r.ListBySemester(ctx, orgID, semesterID)
	var filtered []*models.OrganizationMember
	for _, m := range all {
		if status == "" || m.Status == status {
			filtered = append(filtered, m)
		}
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return []*models.OrganizationMember{}, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (r fakeMembershipRepo) Get(_ context.Context, orgID, memberID, semesterID uint) (*models.OrganizationMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.memberships {
		if m.OrganizationID == orgID && m.MemberID == memberID && m.SemesterID == semesterID {
			return r.withMember(m), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeMembershipRepo) UpdateStatus(_ context.Context, id uint, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.memberships {
		if m.ID == id {
			m.Status = status
			return nil
		}
	}
	return nil
}

func (r fakeMembershipRepo) UpsertStatus(_ context.Context, row *models.OrganizationMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failUpsertMember != 0 && r.s.failUpsertMember == row.MemberID {
		return errInjected
	}
	for _, m := range r.s.memberships {
		if m.OrganizationID == row.OrganizationID && m.MemberID == row.MemberID && m.SemesterID == row.SemesterID {
			m.Status = row.Status
			return nil
		}
	}
	c := *row
	c.ID = r.s.id()
	c.Member = nil
	r.s.memberships = append(r.s.memberships, &c)
	return nil
}

func (r fakeMembershipRepo) DeleteAfter(_ context.Context, orgID, memberID uint, after time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var kept []*models.OrganizationMember
	var deleted int64
	for _, m := range r.s.memberships {
		sem := r.s.semesterByID(m.SemesterID)
		if m.OrganizationID == orgID && m.MemberID == memberID && sem != nil && sem.StartDate.After(after) {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	r.s.memberships = kept
	return deleted, nil
}

func (r fakeMembershipRepo) CountByStatus(_ context.Context, orgID, semesterID uint) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int64{}
	for _, m := range r.s.memberships {
		if m.OrganizationID == orgID && m.SemesterID == semesterID {
			counts[m.Status]++
		}
	}
	return counts, nil
}

// ---- rules ----

type fakeRuleRepo struct{ s *fakeStore }

func (r fakeRuleRepo) ListEventTypes(_ context.Context, orgID, semesterID uint) ([]*models.EventType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.EventType
	for _, et := range r.s.eventTypes {
		if et.OrganizationID == orgID && et.SemesterID == semesterID {
			c := *et
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r fakeRuleRepo) GetEventType(_ context.Context, id uint) (*models.EventType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, et := range r.s.eventTypes {
		if et.ID == id {
			c := *et
			c.Rules = append([]models.Rule(nil), et.Rules...)
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeRuleRepo) CreateEventType(_ context.Context, eventType *models.EventType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, et := range r.s.eventTypes {
		if et.OrganizationID == eventType.OrganizationID && et.SemesterID == eventType.SemesterID && et.Name == eventType.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	eventType.ID = r.s.id()
	for i := range eventType.Rules {
		eventType.Rules[i].ID = r.s.id()
		eventType.Rules[i].EventTypeID = eventType.ID
	}
	c := *eventType
	c.Rules = append([]models.Rule(nil), eventType.Rules...)
	r.s.eventTypes = append(r.s.eventTypes, &c)
	return nil
}

func (r fakeRuleRepo) UpdateEventType(_ context.Context, eventType *models.EventType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, et := range r.s.eventTypes {
		if et.ID == eventType.ID {
			rules := et.Rules
			*et = *eventType
			et.Rules = rules
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r fakeRuleRepo) DeleteEventType(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, et := range r.s.eventTypes {
		if et.ID == id {
			r.s.eventTypes = append(r.s.eventTypes[:i], r.s.eventTypes[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r fakeRuleRepo) findRule(id uint) (*models.EventType, int) {
	for _, et := range r.s.eventTypes {
		for i := range et.Rules {
			if et.Rules[i].ID == id {
				return et, i
			}
		}
	}
	return nil, -1
}

func (r fakeRuleRepo) GetRule(_ context.Context, id uint) (*models.Rule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if et, i := r.findRule(id); et != nil {
		c := et.Rules[i]
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeRuleRepo) CreateRule(_ context.Context, rule *models.Rule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, et := range r.s.eventTypes {
		if et.ID == rule.EventTypeID {
			rule.ID = r.s.id()
			et.Rules = append(et.Rules, *rule)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r fakeRuleRepo) UpdateRule(_ context.Context, rule *models.Rule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if et, i := r.findRule(rule.ID); et != nil {
		et.Rules[i] = *rule
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r fakeRuleRepo) DeleteRule(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if et, i := r.findRule(id); et != nil {
		et.Rules = append(et.Rules[:i], et.Rules[i+1:]...)
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r fakeRuleRepo) GetRequirement(_ context.Context, orgID, semesterID uint) (*models.ActiveRequirement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if req, ok := r.s.requirements[[2]uint{orgID, semesterID}]; ok {
		c := *req
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeRuleRepo) UpsertRequirement(_ context.Context, req *models.ActiveRequirement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := [2]uint{req.OrganizationID, req.SemesterID}
	if existing, ok := r.s.requirements[k]; ok {
		existing.ActiveRequirement = req.ActiveRequirement
		existing.Description = req.Description
		return nil
	}
	c := *req
	c.ID = r.s.id()
	r.s.requirements[k] = &c
	return nil
}

// ---- attendance ----

type fakeAttendanceRepo struct{ s *fakeStore }

func (r fakeAttendanceRepo) CreateEvent(_ context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event.ID = r.s.id()
	c := *event
	r.s.events = append(r.s.events, &c)
	return nil
}

func (r fakeAttendanceRepo) GetEvent(_ context.Context, id uint) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.events {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeAttendanceRepo) ListEvents(_ context.Context, orgID, semesterID uint) ([]*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Event
	for _, e := range r.s.events {
		if e.OrganizationID == orgID && e.SemesterID == semesterID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r fakeAttendanceRepo) Upsert(_ context.Context, attendance *models.Attendance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := [2]uint{attendance.MemberID, attendance.EventID}
	if existing, ok := r.s.attendance[k]; ok {
		existing.CheckInTime = attendance.CheckInTime
		existing.Hours = attendance.Hours
		return nil
	}
	attendance.ID = r.s.id()
	c := *attendance
	r.s.attendance[k] = &c
	return nil
}

func (r fakeAttendanceRepo) ListRecords(_ context.Context, orgID, memberID, semesterID uint) ([]repositories.AttendanceRecordRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]repositories.AttendanceRecordRow(nil), r.s.records[recordKey{orgID, memberID, semesterID}]...), nil
}

// ---- exemptions ----

type fakeExemptionRepo struct{ s *fakeStore }

func (r fakeExemptionRepo) Create(_ context.Context, exemption *models.Exemption) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	exemption.ID = r.s.id()
	c := *exemption
	r.s.exemptions = append(r.s.exemptions, &c)
	return nil
}

func (r fakeExemptionRepo) GetByID(_ context.Context, id uint) (*models.Exemption, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.exemptions {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeExemptionRepo) GetOpen(_ context.Context, orgID, memberID uint) (*models.Exemption, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.exemptions) - 1; i >= 0; i-- {
		e := r.s.exemptions[i]
		if e.OrganizationID == orgID && e.MemberID == memberID && e.EndedAt == nil {
			c := *e
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeExemptionRepo) End(_ context.Context, id uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.exemptions {
		if e.ID == id {
			e.EndedAt = &at
		}
	}
	return nil
}

func (r fakeExemptionRepo) ListOpen(_ context.Context) ([]*models.Exemption, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Exemption
	for _, e := range r.s.exemptions {
		if e.EndedAt == nil {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r fakeExemptionRepo) ListByOrganization(_ context.Context, orgID uint) ([]*models.Exemption, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Exemption
	for _, e := range r.s.exemptions {
		if e.OrganizationID == orgID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

// ---- history ----

type fakeHistoryRepo struct{ s *fakeStore }

func (r fakeHistoryRepo) RecordTransition(_ context.Context, transition *models.StatusTransition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	transition.ID = r.s.id()
	c := *transition
	r.s.transitions = append(r.s.transitions, &c)
	return nil
}

func (r fakeHistoryRepo) ListTransitions(_ context.Context, orgID, memberID uint) ([]*models.StatusTransition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.StatusTransition
	for i := len(r.s.transitions) - 1; i >= 0; i-- {
		t := r.s.transitions[i]
		if t.OrganizationID == orgID && t.MemberID == memberID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r fakeHistoryRepo) SaveReport(_ context.Context, report *models.StatusReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *report
	r.s.reports[recordKey{report.OrganizationID, report.MemberID, report.SemesterID}] = &c
	return nil
}

func (r fakeHistoryRepo) GetReport(_ context.Context, orgID, memberID, semesterID uint) (*models.StatusReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rep, ok := r.s.reports[recordKey{orgID, memberID, semesterID}]; ok {
		c := *rep
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeHistoryRepo) ListReports(_ context.Context, orgID, semesterID uint) ([]*models.StatusReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.StatusReport
	for _, rep := range r.s.reports {
		if rep.OrganizationID == orgID && rep.SemesterID == semesterID {
			c := *rep
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].MemberID < out[j].MemberID
	})
	return out, nil
}

// ---- users and tokens ----

type fakeUserRepo struct{ s *fakeStore }

func (r fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = r.s.id()
	c := *user
	r.s.users = append(r.s.users, &c)
	return nil
}

func (r fakeUserRepo) find(pred func(u *models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if pred(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, u := range r.s.users {
		if u.ID == user.ID {
			c := *user
			r.s.users[i] = &c
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r fakeUserRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, u := range r.s.users {
		if u.ID == id {
			r.s.users = append(r.s.users[:i], r.s.users[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r fakeUserRepo) TouchLogin(_ context.Context, id uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID == id {
			u.LastLoginAt = &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r fakeUserRepo) List(_ context.Context, filter repositories.UserFilter, offset, limit int) ([]*models.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []*models.User
	for _, u := range r.s.users {
		if filter.OrganizationID != nil && (u.OrganizationID == nil || *u.OrganizationID != *filter.OrganizationID) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.ActiveOnly && !u.IsActive {
			continue
		}
		matched = append(matched, u)
	}
	var out []*models.User
	for i := offset; i < len(matched) && len(out) < limit; i++ {
		c := *matched[i]
		out = append(out, &c)
	}
	return out, int64(len(matched)), nil
}

func (r fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := r.find(func(u *models.User) bool { return u.Email == email })
	return err == nil, nil
}

type fakeRefreshTokenRepo struct{ s *fakeStore }

func (r fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token.ID = r.s.id()
	c := *token
	r.s.tokens = append(r.s.tokens, &c)
	return nil
}

func (r fakeRefreshTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.TokenHash == tokenHash {
			c := *t
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeRefreshTokenRepo) revokeWhere(pred func(t *models.RefreshToken) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	var n int64
	for _, t := range r.s.tokens {
		if t.RevokedAt == nil && pred(t) {
			t.RevokedAt = &now
			n++
		}
	}
	return n
}

func (r fakeRefreshTokenRepo) Rotate(ctx context.Context, spentID uint, next *models.RefreshToken) error {
	if r.revokeWhere(func(t *models.RefreshToken) bool { return t.ID == spentID }) == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.Create(ctx, next)
}

func (r fakeRefreshTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	r.revokeWhere(func(t *models.RefreshToken) bool { return t.TokenHash == tokenHash })
	return nil
}

func (r fakeRefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) (int64, error) {
	return r.revokeWhere(func(t *models.RefreshToken) bool { return t.UserID == userID }), nil
}

// RevokeExcess relies on tokens being appended in creation order
func (r fakeRefreshTokenRepo) RevokeExcess(_ context.Context, userID uint, keep int) (int64, error) {
	r.s.mu.Lock()
	var live []*models.RefreshToken
	for _, t := range r.s.tokens {
		if t.UserID == userID && t.RevokedAt == nil && !t.IsExpired() {
			live = append(live, t)
		}
	}
	r.s.mu.Unlock()

	if len(live) <= keep {
		return 0, nil
	}
	excess := live[:len(live)-keep]
	return r.revokeWhere(func(t *models.RefreshToken) bool {
		for _, e := range excess {
			if e == t {
				return true
			}
		}
		return false
	}), nil
}

func (r fakeRefreshTokenRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var kept []*models.RefreshToken
	var n int64
	for _, t := range r.s.tokens {
		if t.ExpiresAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	r.s.tokens = kept
	return n, nil
}

// ---- wiring ----

type testServices struct {
	store      *fakeStore
	status     *StatusService
	semesters  *SemesterService
	exemptions *ExemptionService
	rules      *RuleConfigService
	attendance *AttendanceService
	summary    *SummaryService
}

func newTestServices(store *fakeStore, policy EvaluationPolicy) *testServices {
	status := NewStatusService(
		fakeRuleRepo{store}, fakeAttendanceRepo{store}, fakeMembershipRepo{store}, fakeHistoryRepo{store},
		NewRuleEvaluator(policy),
	)
	return &testServices{
		store:  store,
		status: status,
		semesters: NewSemesterService(
			fakeTx{store}, fakeSemesterRepo{store}, fakeMembershipRepo{store}, fakeHistoryRepo{store}, status,
		),
		exemptions: NewExemptionService(
			fakeTx{store}, fakeExemptionRepo{store}, fakeSemesterRepo{store}, fakeMemberRepo{store},
			fakeMembershipRepo{store}, fakeHistoryRepo{store},
		),
		rules:      NewRuleConfigService(fakeRuleRepo{store}, fakeSemesterRepo{store}),
		attendance: NewAttendanceService(fakeAttendanceRepo{store}, fakeRuleRepo{store}, fakeMemberRepo{store}),
		summary:    NewSummaryService(fakeMembershipRepo{store}, fakeHistoryRepo{store}),
	}
}

var (
	_ repositories.Transactor              = fakeTx{}
	_ repositories.SemesterRepository      = fakeSemesterRepo{}
	_ repositories.MemberRepository        = fakeMemberRepo{}
	_ repositories.MembershipRepository    = fakeMembershipRepo{}
	_ repositories.RuleRepository          = fakeRuleRepo{}
	_ repositories.AttendanceRepository    = fakeAttendanceRepo{}
	_ repositories.ExemptionRepository     = fakeExemptionRepo{}
	_ repositories.StatusHistoryRepository = fakeHistoryRepo{}
	_ repositories.UserRepository          = fakeUserRepo{}
	_ repositories.RefreshTokenRepository  = fakeRefreshTokenRepo{}
)
