package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dentica/dentica/internal/platform/apperr"
)

// -- Mock Repositories --

type mockWeeklyRepo struct {
	items map[uuid.UUID]*Weekly
}

func newMockWeeklyRepo() *mockWeeklyRepo {
	return &mockWeeklyRepo{items: make(map[uuid.UUID]*Weekly)}
}

func (m *mockWeeklyRepo) Create(_ context.Context, w *Weekly) error {
	w.ID = uuid.New()
	w.CreatedAt = time.Now()
	w.UpdatedAt = time.Now()
	m.items[w.ID] = w
	return nil
}

func (m *mockWeeklyRepo) GetByID(_ context.Context, id uuid.UUID) (*Weekly, error) {
	w, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("weekly availability not found")
	}
	return w, nil
}

func (m *mockWeeklyRepo) Update(_ context.Context, w *Weekly) error {
	m.items[w.ID] = w
	return nil
}

func (m *mockWeeklyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockWeeklyRepo) ListByDentist(_ context.Context, dentistID uuid.UUID, limit, offset int) ([]*Weekly, int, error) {
	var result []*Weekly
	for _, w := range m.items {
		if w.DentistID == dentistID {
			result = append(result, w)
		}
	}
	return result, len(result), nil
}

func (m *mockWeeklyRepo) ListForDay(_ context.Context, dentistID uuid.UUID, day DayOfWeek) ([]*Weekly, error) {
	var result []*Weekly
	for _, w := range m.items {
		if w.DentistID == dentistID && w.DayOfWeek == day {
			result = append(result, w)
		}
	}
	return result, nil
}

func (m *mockWeeklyRepo) ListForDayAndBranch(_ context.Context, dentistID uuid.UUID, day DayOfWeek, branchID uuid.UUID) ([]*Weekly, error) {
	var result []*Weekly
	for _, w := range m.items {
		if w.DentistID == dentistID && w.DayOfWeek == day && w.BranchID == branchID {
			result = append(result, w)
		}
	}
	return result, nil
}

type mockSpecificRepo struct {
	items map[uuid.UUID]*Specific
}

func newMockSpecificRepo() *mockSpecificRepo {
	return &mockSpecificRepo{items: make(map[uuid.UUID]*Specific)}
}

func (m *mockSpecificRepo) Create(_ context.Context, s *Specific) error {
	s.ID = uuid.New()
	m.items[s.ID] = s
	return nil
}

func (m *mockSpecificRepo) GetByID(_ context.Context, id uuid.UUID) (*Specific, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("specific availability not found")
	}
	return s, nil
}

func (m *mockSpecificRepo) Update(_ context.Context, s *Specific) error {
	m.items[s.ID] = s
	return nil
}

func (m *mockSpecificRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockSpecificRepo) ListByDentist(_ context.Context, dentistID uuid.UUID, limit, offset int) ([]*Specific, int, error) {
	var result []*Specific
	for _, s := range m.items {
		if s.DentistID == dentistID {
			result = append(result, s)
		}
	}
	return result, len(result), nil
}

func (m *mockSpecificRepo) ListOverlapping(_ context.Context, dentistID uuid.UUID, from, to time.Time) ([]*Specific, error) {
	var result []*Specific
	for _, s := range m.items {
		if s.DentistID == dentistID && s.StartDateTime.Before(to) && s.EndDateTime.After(from) {
			result = append(result, s)
		}
	}
	return result, nil
}

type mockLeaveRepo struct {
	items map[uuid.UUID]*Leave
}

func newMockLeaveRepo() *mockLeaveRepo {
	return &mockLeaveRepo{items: make(map[uuid.UUID]*Leave)}
}

func (m *mockLeaveRepo) Create(_ context.Context, l *Leave) error {
	l.ID = uuid.New()
	m.items[l.ID] = l
	return nil
}

func (m *mockLeaveRepo) GetByID(_ context.Context, id uuid.UUID) (*Leave, error) {
	l, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("leave not found")
	}
	return l, nil
}

func (m *mockLeaveRepo) Update(_ context.Context, l *Leave) error {
	m.items[l.ID] = l
	return nil
}

func (m *mockLeaveRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockLeaveRepo) ListByDentist(_ context.Context, dentistID uuid.UUID, limit, offset int) ([]*Leave, int, error) {
	var result []*Leave
	for _, l := range m.items {
		if l.DentistID == dentistID {
			result = append(result, l)
		}
	}
	return result, len(result), nil
}

func (m *mockLeaveRepo) ListOverlapping(_ context.Context, dentistID uuid.UUID, from, to time.Time) ([]*Leave, error) {
	var result []*Leave
	for _, l := range m.items {
		if l.DentistID == dentistID && l.StartDateTime.Before(to) && l.EndDateTime.After(from) {
			result = append(result, l)
		}
	}
	return result, nil
}

type mockRefs struct {
	dentists map[uuid.UUID]bool
	branches map[uuid.UUID]bool
}

func newMockRefs() *mockRefs {
	return &mockRefs{dentists: make(map[uuid.UUID]bool), branches: make(map[uuid.UUID]bool)}
}

func (m *mockRefs) DentistExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.dentists[id], nil
}

func (m *mockRefs) BranchExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.branches[id], nil
}

func newTestService() (*Service, *mockRefs, uuid.UUID, uuid.UUID) {
	refs := newMockRefs()
	dentistID := uuid.New()
	branchID := uuid.New()
	refs.dentists[dentistID] = true
	refs.branches[branchID] = true
	svc := NewService(newMockWeeklyRepo(), newMockSpecificRepo(), newMockLeaveRepo(), refs, nil)
	return svc, refs, dentistID, branchID
}

func strptr(s string) *string { return &s }

func weeklyFixture(dentistID, branchID uuid.UUID) *Weekly {
	return &Weekly{
		DentistID:         dentistID,
		DayOfWeek:         Monday,
		StandardStartTime: "09:00",
		StandardEndTime:   "17:00",
		BranchID:          branchID,
	}
}

// -- Weekly validation --

func TestCreateWeekly(t *testing.T) {
	svc, _, dentistID, branchID := newTestService()
	w := weeklyFixture(dentistID, branchID)
	if err := svc.CreateWeekly(context.Background(), w); err != nil {
		t.Fatalf("CreateWeekly: %v", err)
	}
	if w.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
}

func TestCreateWeeklyRejectsInvertedWindow(t *testing.T) {
	svc, _, dentistID, branchID := newTestService()
	w := weeklyFixture(dentistID, branchID)
	w.StandardStartTime = "17:00"
	w.StandardEndTime = "09:00"
	err := svc.CreateWeekly(context.Background(), w)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateWeeklyRejectsBadDay(t *testing.T) {
	svc, _, dentistID, branchID := newTestService()
	w := weeklyFixture(dentistID, branchID)
	w.DayOfWeek = "funday"
	if err := svc.CreateWeekly(context.Background(), w); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateWeeklyBreakRules(t *testing.T) {
	cases := []struct {
		name       string
		breakStart *string
		breakEnd   *string
		ok         bool
	}{
		{"valid break", strptr("12:00"), strptr("13:00"), true},
		{"inverted break", strptr("13:00"), strptr("12:00"), false},
		{"break before hours", strptr("08:00"), strptr("09:30"), false},
		{"break after hours", strptr("16:30"), strptr("18:00"), false},
		{"half break", strptr("12:00"), nil, false},
		{"no break", nil, nil, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc, _, dentistID, branchID := newTestService()
			w := weeklyFixture(dentistID, branchID)
			w.BreakStartTime = c.breakStart
			w.BreakEndTime = c.breakEnd
			err := svc.CreateWeekly(context.Background(), w)
			if c.ok && err != nil {
				t.Errorf("expected success, got %v", err)
			}
			if !c.ok && !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateWeeklyRejectsOverlap(t *testing.T) {
	svc, _, dentistID, branchID := newTestService()
	first := weeklyFixture(dentistID, branchID)
	if err := svc.CreateWeekly(context.Background(), first); err != nil {
		t.Fatalf("first CreateWeekly: %v", err)
	}

	overlapping := weeklyFixture(dentistID, branchID)
	overlapping.StandardStartTime = "16:00"
	overlapping.StandardEndTime = "20:00"
	err := svc.CreateWeekly(context.Background(), overlapping)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateWeeklyAllowsTouchingWindows(t *testing.T) {
	svc, _, dentistID, branchID := newTestService()
	first := weeklyFixture(dentistID, branchID)
	first.StandardEndTime = "12:00"
	if err := svc.CreateWeekly(context.Background(), first); err != nil {
		t.Fatalf("first CreateWeekly: %v", err)
	}

	adjacent := weeklyFixture(dentistID, branchID)
	adjacent.StandardStartTime = "12:00"
	adjacent.StandardEndTime = "17:00"
	if err := svc.CreateWeekly(context.Background(), adjacent); err != nil {
		t.Fatalf("back-to-back windows should not conflict: %v", err)
	}
}

func TestCreateWeeklyAllowsOverlapAcrossDaysAndBranches(t *testing.T) {
	svc, refs, dentistID, branchID := newTestService()
	otherBranch := uuid.New()
	refs.branches[otherBranch] = true

	first := weeklyFixture(dentistID, branchID)
	if err := svc.CreateWeekly(context.Background(), first); err != nil {
		t.Fatalf("first CreateWeekly: %v", err)
	}

	otherDay := weeklyFixture(dentistID, branchID)
	otherDay.DayOfWeek = Tuesday
	if err := svc.CreateWeekly(context.Background(), otherDay); err != nil {
		t.Errorf("same hours on another day should not conflict: %v", err)
	}

	elsewhere := weeklyFixture(dentistID, otherBranch)
	if err := svc.CreateWeekly(context.Background(), elsewhere); err != nil {
		t.Errorf("same hours at another branch should not conflict: %v", err)
	}
}

func TestUpdateWeeklyExcludesOwnRow(t *testing.T) {
	svc, _, dentistID, branchID := newTestService()
	w := weeklyFixture(dentistID, branchID)
	if err := svc.CreateWeekly(context.Background(), w); err != nil {
		t.Fatalf("CreateWeekly: %v", err)
	}

	// Shrinking the same record overlaps its stored self; the check must
	// skip the row being updated.
	w.StandardEndTime = "16:00"
	if err := svc.UpdateWeekly(context.Background(), w); err != nil {
		t.Fatalf("UpdateWeekly: %v", err)
	}
}

func TestCreateWeeklyUnknownReferences(t *testing.T) {
	svc, _, dentistID, branchID := newTestService()

	unknownDentist := weeklyFixture(uuid.New(), branchID)
	if err := svc.CreateWeekly(context.Background(), unknownDentist); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found for unknown dentist, got %v", err)
	}

	unknownBranch := weeklyFixture(dentistID, uuid.New())
	if err := svc.CreateWeekly(context.Background(), unknownBranch); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found for unknown branch, got %v", err)
	}
}

// -- Specific and Leave --

func TestCreateSpecific(t *testing.T) {
	svc, _, dentistID, _ := newTestService()
	start := time.Date(2025, 3, 15, 5, 0, 0, 0, time.UTC)
	sp := &Specific{DentistID: dentistID, StartDateTime: start, EndDateTime: start.Add(2 * time.Hour)}
	if err := svc.CreateSpecific(context.Background(), sp); err != nil {
		t.Fatalf("CreateSpecific: %v", err)
	}
}

func TestCreateSpecificRejectsInvertedWindow(t *testing.T) {
	svc, _, dentistID, _ := newTestService()
	start := time.Date(2025, 3, 15, 5, 0, 0, 0, time.UTC)
	sp := &Specific{DentistID: dentistID, StartDateTime: start, EndDateTime: start}
	if err := svc.CreateSpecific(context.Background(), sp); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateSpecificAllowsOverlap(t *testing.T) {
	svc, _, dentistID, _ := newTestService()
	start := time.Date(2025, 3, 15, 5, 0, 0, 0, time.UTC)
	a := &Specific{DentistID: dentistID, StartDateTime: start, EndDateTime: start.Add(2 * time.Hour)}
	b := &Specific{DentistID: dentistID, StartDateTime: start.Add(time.Hour), EndDateTime: start.Add(3 * time.Hour)}
	if err := svc.CreateSpecific(context.Background(), a); err != nil {
		t.Fatalf("CreateSpecific: %v", err)
	}
	if err := svc.CreateSpecific(context.Background(), b); err != nil {
		t.Errorf("overlapping specific windows are permitted, got %v", err)
	}
}

func TestCreateLeaveValidation(t *testing.T) {
	svc, _, dentistID, _ := newTestService()
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	ok := &Leave{DentistID: dentistID, StartDateTime: start, EndDateTime: start.Add(48 * time.Hour)}
	if err := svc.CreateLeave(context.Background(), ok); err != nil {
		t.Fatalf("CreateLeave: %v", err)
	}

	inverted := &Leave{DentistID: dentistID, StartDateTime: start.Add(time.Hour), EndDateTime: start}
	if err := svc.CreateLeave(context.Background(), inverted); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	unknown := &Leave{DentistID: uuid.New(), StartDateTime: start, EndDateTime: start.Add(time.Hour)}
	if err := svc.CreateLeave(context.Background(), unknown); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeleteWeeklyUnknownID(t *testing.T) {
	svc, _, _, _ := newTestService()
	if err := svc.DeleteWeekly(context.Background(), uuid.New()); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
