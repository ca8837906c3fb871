// Package storetest provides an in-memory store.Store for tests. It mirrors
// the guarantees of the real stores: transactions are all-or-nothing and the
// active slot key and session-notes appointment id are unique.
package storetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"
)

// Memory is safe for concurrent use. Transactions are serialized.
type Memory struct {
	mu            sync.Mutex
	users         map[string]models.User
	appointments  map[string]models.Appointment
	notifications map[string]models.Notification
	sessionNotes  map[string]models.SessionNotes

	// FailNotifications makes InsertNotifications return this error.
	FailNotifications error
	// Writes counts successful write calls, committed or not.
	Writes int
}

var _ store.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]models.User),
		appointments:  make(map[string]models.Appointment),
		notifications: make(map[string]models.Notification),
		sessionNotes:  make(map[string]models.SessionNotes),
	}
}

// PutUser stores a user as-is, assigning an id when missing.
func (m *Memory) PutUser(u models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = models.NewID()
	}
	m.users[u.ID] = cloneUser(u)
	return u
}

// PutAppointment stores an appointment as-is, bypassing uniqueness checks.
func (m *Memory) PutAppointment(a models.Appointment) models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = models.NewID()
	}
	m.appointments[a.ID] = cloneAppointment(a)
	return a
}

// Notifications returns every stored notification for userID, oldest first.
func (m *Memory) Notifications(userID string) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Counts returns the number of appointments, notifications and session notes.
func (m *Memory) Counts() (appointments, notifications, notes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.appointments), len(m.notifications), len(m.sessionNotes)
}

func (m *Memory) Close(ctx context.Context) error { return nil }

func (m *Memory) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(ctx, &memTx{m: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

// ---- users ----

func (m *Memory) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = models.NewID()
	}
	m.users[user.ID] = cloneUser(*user)
	m.Writes++
	return nil
}

func (m *Memory) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (m *Memory) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0)
	for _, u := range m.users {
		if role == "" || u.Role == role {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) UpdateUserProfile(ctx context.Context, id, firstName, lastName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.FirstName, u.LastName = firstName, lastName
	u.UpdatedAt = models.Timestamp(time.Now())
	m.users[id] = u
	m.Writes++
	return nil
}

func (m *Memory) SetAvailability(ctx context.Context, counselorID string, slots []models.AvailabilitySlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[counselorID]
	if !ok || u.Role != models.RoleCounselor {
		return store.ErrNotFound
	}
	profile := models.CounselorProfile{}
	if u.CounselorProfile != nil {
		profile = *u.CounselorProfile
	}
	profile.Availability = append([]models.AvailabilitySlot(nil), slots...)
	u.CounselorProfile = &profile
	u.UpdatedAt = models.Timestamp(time.Now())
	m.users[counselorID] = u
	m.Writes++
	return nil
}

// ---- appointments ----

func (m *Memory) FindAppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a = cloneAppointment(a)
	return &a, nil
}

func (m *Memory) HasActiveAppointment(ctx context.Context, counselorID, date, slotTime string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.appointments {
		if a.CounselorID == counselorID && a.Date == date && a.Time == slotTime && a.Status.HoldsSlot() {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) ListAppointments(ctx context.Context, filter store.AppointmentFilter) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Appointment, 0)
	for _, a := range m.appointments {
		if filter.StudentID != "" && a.StudentID != filter.StudentID {
			continue
		}
		if filter.CounselorID != "" && a.CounselorID != filter.CounselorID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, cloneAppointment(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ---- notifications & notes ----

func (m *Memory) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Notification, 0)
	for _, n := range m.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) MarkNotificationRead(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return store.ErrNotFound
	}
	n.Read = true
	m.notifications[id] = n
	m.Writes++
	return nil
}

func (m *Memory) FindSessionNotes(ctx context.Context, appointmentID string) (*models.SessionNotes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.sessionNotes {
		if n.AppointmentID == appointmentID {
			return &n, nil
		}
	}
	return nil, store.ErrNotFound
}

// ---- transactions ----

// memTx runs with m.mu held by RunInTransaction.
type memTx struct {
	m *Memory
}

// FindAppointmentForUpdate needs no locking: the transaction holds m.mu.
func (t *memTx) FindAppointmentForUpdate(ctx context.Context, id string) (*models.Appointment, error) {
	a, ok := t.m.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a = cloneAppointment(a)
	return &a, nil
}

func (t *memTx) InsertAppointment(ctx context.Context, appt *models.Appointment) error {
	if _, ok := t.m.appointments[appt.ID]; ok {
		return store.ErrDuplicate
	}
	if appt.SlotKey != nil && t.m.slotTaken(*appt.SlotKey, appt.ID) {
		return store.ErrDuplicate
	}
	t.m.appointments[appt.ID] = cloneAppointment(*appt)
	t.m.Writes++
	return nil
}

func (t *memTx) UpdateAppointment(ctx context.Context, id string, u store.AppointmentUpdate) error {
	a, ok := t.m.appointments[id]
	if !ok {
		return store.ErrNotFound
	}
	if u.SlotKey != nil && t.m.slotTaken(*u.SlotKey, id) {
		return store.ErrDuplicate
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.Date != nil {
		a.Date = *u.Date
	}
	if u.Time != nil {
		a.Time = *u.Time
	}
	a.SlotKey = copyString(u.SlotKey)
	if u.StatusEntry != nil {
		a.StatusHistory = append(a.StatusHistory, *u.StatusEntry)
	}
	if u.RescheduleEntry != nil {
		a.RescheduleHistory = append(a.RescheduleHistory, *u.RescheduleEntry)
	}
	a.UpdatedAt = u.UpdatedAt
	t.m.appointments[id] = a
	t.m.Writes++
	return nil
}

func (t *memTx) AppendAppointmentSummary(ctx context.Context, studentID string, summary models.AppointmentSummary) error {
	u, ok := t.m.users[studentID]
	if !ok {
		return store.ErrNotFound
	}
	u.AppointmentHistory = append(u.AppointmentHistory, summary)
	u.UpdatedAt = summary.CreatedAt
	t.m.users[studentID] = u
	t.m.Writes++
	return nil
}

func (t *memTx) IncrementMetric(ctx context.Context, counselorID string, metric models.Metric) error {
	u, ok := t.m.users[counselorID]
	if !ok || u.Role != models.RoleCounselor {
		return store.ErrNotFound
	}
	switch metric {
	case models.MetricTotalSessions:
		u.PerformanceMetrics.TotalSessions++
	case models.MetricNoShowCount:
		u.PerformanceMetrics.NoShowCount++
	default:
		return errors.New("storetest: unknown metric " + string(metric))
	}
	t.m.users[counselorID] = u
	t.m.Writes++
	return nil
}

func (t *memTx) InsertNotifications(ctx context.Context, notifications []models.Notification) error {
	if t.m.FailNotifications != nil {
		return t.m.FailNotifications
	}
	for _, n := range notifications {
		if _, ok := t.m.notifications[n.ID]; ok {
			return store.ErrDuplicate
		}
		t.m.notifications[n.ID] = n
		t.m.Writes++
	}
	return nil
}

func (t *memTx) InsertSessionNotes(ctx context.Context, notes *models.SessionNotes) error {
	for _, n := range t.m.sessionNotes {
		if n.AppointmentID == notes.AppointmentID {
			return store.ErrDuplicate
		}
	}
	t.m.sessionNotes[notes.ID] = *notes
	t.m.Writes++
	return nil
}

// ---- internals ----

func (m *Memory) slotTaken(key, exceptID string) bool {
	for id, a := range m.appointments {
		if id != exceptID && a.SlotKey != nil && *a.SlotKey == key {
			return true
		}
	}
	return false
}

type snapshot struct {
	users         map[string]models.User
	appointments  map[string]models.Appointment
	notifications map[string]models.Notification
	sessionNotes  map[string]models.SessionNotes
}

func (m *Memory) snapshot() snapshot {
	s := snapshot{
		users:         make(map[string]models.User, len(m.users)),
		appointments:  make(map[string]models.Appointment, len(m.appointments)),
		notifications: make(map[string]models.Notification, len(m.notifications)),
		sessionNotes:  make(map[string]models.SessionNotes, len(m.sessionNotes)),
	}
	for k, v := range m.users {
		s.users[k] = cloneUser(v)
	}
	for k, v := range m.appointments {
		s.appointments[k] = cloneAppointment(v)
	}
	for k, v := range m.notifications {
		s.notifications[k] = v
	}
	for k, v := range m.sessionNotes {
		s.sessionNotes[k] = v
	}
	return s
}

func (m *Memory) restore(s snapshot) {
	m.users = s.users
	m.appointments = s.appointments
	m.notifications = s.notifications
	m.sessionNotes = s.sessionNotes
}

func cloneUser(u models.User) models.User {
	u.AppointmentHistory = append([]models.AppointmentSummary(nil), u.AppointmentHistory...)
	if u.CounselorProfile != nil {
		p := *u.CounselorProfile
		if p.Availability != nil {
			p.Availability = append(make([]models.AvailabilitySlot, 0, len(p.Availability)), p.Availability...)
		}
		if p.Specializations != nil {
			p.Specializations = append(make([]string, 0, len(p.Specializations)), p.Specializations...)
		}
		u.CounselorProfile = &p
	}
	if u.StudentProfile != nil {
		p := *u.StudentProfile
		u.StudentProfile = &p
	}
	return u
}

func cloneAppointment(a models.Appointment) models.Appointment {
	a.StatusHistory = append([]models.StatusChange(nil), a.StatusHistory...)
	a.RescheduleHistory = append([]models.RescheduleEntry(nil), a.RescheduleHistory...)
	a.SlotKey = copyString(a.SlotKey)
	if a.Recurring != nil {
		r := *a.Recurring
		a.Recurring = &r
	}
	return a
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
