package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/internal/repository"
	"github.com/noah-isme/booking-api/pkg/jobs"
)

var (
	ownerClaims    = &models.JWTClaims{UserID: "owner-1", Role: models.RoleOwner}
	strangerClaims = &models.JWTClaims{UserID: "owner-2", Role: models.RoleOwner}
	adminClaims    = &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	customerClaims = &models.JWTClaims{UserID: "customer-1", Role: models.RoleUser}
)

// monday 9-12, 60 minute slots, two seats; tuesday closed; other days unset.
func standardWeek() models.WeeklySchedule {
	return models.WeeklySchedule{
		models.Monday:  {IsActive: true, OpenTime: "09:00", CloseTime: "12:00", SlotDurationMinutes: 60, CapacityPerSlot: 2},
		models.Tuesday: {IsActive: false},
	}
}

func fullWeek() models.WeeklySchedule {
	week := models.WeeklySchedule{}
	for _, w := range models.Weekdays {
		week[w] = models.DaySchedule{IsActive: false}
	}
	week[models.Monday] = models.DaySchedule{IsActive: true, OpenTime: "09:00", CloseTime: "12:00", SlotDurationMinutes: 60, CapacityPerSlot: 2}
	return week
}

type stubBusinesses struct {
	mu      sync.Mutex
	items   map[string]*models.Business
	updated int
}

func newStubBusinesses(items ...*models.Business) *stubBusinesses {
	s := &stubBusinesses{items: map[string]*models.Business{}}
	for _, b := range items {
		s.items[b.ID] = b
	}
	return s
}

func (s *stubBusinesses) Create(ctx context.Context, b *models.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = fmt.Sprintf("biz-%d", len(s.items)+1)
	}
	s.items[b.ID] = b
	return nil
}

func (s *stubBusinesses) Update(ctx context.Context, b *models.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated++
	cp := *b
	s.items[b.ID] = &cp
	return nil
}

func (s *stubBusinesses) FindByID(ctx context.Context, id string) (*models.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (s *stubBusinesses) ListByOwner(ctx context.Context, ownerID string) ([]models.Business, error) {
	out := []models.Business{}
	for _, b := range s.items {
		if b.OwnerID == ownerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *stubBusinesses) ListPublished(ctx context.Context) ([]models.Business, error) {
	out := []models.Business{}
	for _, b := range s.items {
		if b.Published() {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type stubSchedules struct {
	weeks    map[string]models.WeeklySchedule
	gets     int
	replaced int
}

func newStubSchedules() *stubSchedules {
	return &stubSchedules{weeks: map[string]models.WeeklySchedule{}}
}

func (s *stubSchedules) Get(ctx context.Context, businessID string) (models.WeeklySchedule, error) {
	s.gets++
	week := models.WeeklySchedule{}
	for k, v := range s.weeks[businessID] {
		week[k] = v
	}
	return week, nil
}

func (s *stubSchedules) Replace(ctx context.Context, businessID string, week models.WeeklySchedule) error {
	s.replaced++
	s.weeks[businessID] = week
	return nil
}

type stubEmployees struct {
	items map[string]*models.Employee
}

func newStubEmployees(items ...*models.Employee) *stubEmployees {
	s := &stubEmployees{items: map[string]*models.Employee{}}
	for _, e := range items {
		s.items[e.ID] = e
	}
	return s
}

func (s *stubEmployees) Create(ctx context.Context, e *models.Employee) error {
	e.ID = fmt.Sprintf("emp-%d", len(s.items)+1)
	s.items[e.ID] = e
	return nil
}

func (s *stubEmployees) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	e, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (s *stubEmployees) ListActiveByBusiness(ctx context.Context, businessID string) ([]models.Employee, error) {
	out := []models.Employee{}
	for _, e := range s.items {
		if e.BusinessID == businessID && e.Active {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *stubEmployees) UpdateAllowedSlots(ctx context.Context, id string, allowed models.AllowedSlots) error {
	s.items[id].AllowedSlots = allowed
	return nil
}

func (s *stubEmployees) Deactivate(ctx context.Context, id string) error {
	s.items[id].Active = false
	return nil
}

// stubLedger enforces capacities in memory the way the SQL ledger does.
type stubLedger struct {
	mu       sync.Mutex
	items    map[string]*models.Appointment
	counters map[string]int
	seq      int
	failWith error
}

func newStubLedger() *stubLedger {
	return &stubLedger{items: map[string]*models.Appointment{}, counters: map[string]int{}}
}

func (l *stubLedger) Reserve(ctx context.Context, appt *models.Appointment, capacity int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return l.failWith
	}
	bizKey := appt.BusinessID + "|" + appt.SlotDate + "|" + appt.SlotTime
	if l.counters[bizKey] >= capacity {
		return repository.ErrSlotFull
	}
	empKey := ""
	if appt.EmployeeID != nil {
		empKey = *appt.EmployeeID + "|" + appt.SlotDate + "|" + appt.SlotTime
		if l.counters[empKey] >= 1 {
			return repository.ErrSlotFull
		}
		l.counters[empKey]++
	}
	l.counters[bizKey]++
	l.seq++
	appt.ID = fmt.Sprintf("appt-%d", l.seq)
	appt.Status = models.StatusConfirmed
	cp := *appt
	l.items[appt.ID] = &cp
	return nil
}

func (l *stubLedger) Cancel(ctx context.Context, id string, at time.Time) (*models.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	appt, ok := l.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if appt.Status != models.StatusConfirmed {
		return nil, repository.ErrNotConfirmed
	}
	appt.Status = models.StatusCancelled
	appt.CancelledAt = &at
	l.counters[appt.BusinessID+"|"+appt.SlotDate+"|"+appt.SlotTime]--
	if appt.EmployeeID != nil {
		l.counters[*appt.EmployeeID+"|"+appt.SlotDate+"|"+appt.SlotTime]--
	}
	cp := *appt
	return &cp, nil
}

func (l *stubLedger) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	appt, ok := l.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *appt
	return &cp, nil
}

func (l *stubLedger) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	out := []models.Appointment{}
	for _, a := range l.items {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (l *stubLedger) ListByBusiness(ctx context.Context, businessID, date string) ([]models.AppointmentWithUser, error) {
	out := []models.AppointmentWithUser{}
	for _, a := range l.items {
		if a.BusinessID == businessID && (date == "" || a.SlotDate == date) {
			out = append(out, models.AppointmentWithUser{Appointment: *a, User: models.UserSummary{ID: a.UserID}})
		}
	}
	return out, nil
}

func (l *stubLedger) CountConfirmedBySlot(ctx context.Context, businessID, date, employeeID string) (map[string]int, error) {
	out := map[string]int{}
	for _, a := range l.items {
		if a.BusinessID != businessID || a.SlotDate != date || a.Status != models.StatusConfirmed {
			continue
		}
		if employeeID != "" && a.EmployeeKey() != employeeID {
			continue
		}
		out[a.SlotTime]++
	}
	return out, nil
}

type stubQueue struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *stubQueue) Enqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *stubQueue) types() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, j.Type)
	}
	return out
}
