package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"
)

// Run exercises the store.Store contract. newStore must return an empty store.
// Callers: the Memory tests and the database integration tests.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"users", testUsers},
		{"slot key uniqueness", testSlotKey},
		{"appointment updates", testAppointmentUpdates},
		{"locked reads", testLockedReads},
		{"rollback", testRollback},
		{"notifications", testNotifications},
		{"session notes", testSessionNotes},
		{"metrics", testMetrics},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

var stamp = models.Timestamp(time.Date(2025, 3, 1, 9, 30, 15, 123456789, time.UTC))

func mustCreateUser(t *testing.T, s store.Store, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, FirstName: "Test", LastName: email, Role: role}
	u.ID = models.NewID()
	u.CreatedAt, u.UpdatedAt = stamp, stamp
	if role == models.RoleCounselor {
		u.CounselorProfile = &models.CounselorProfile{
			Specializations: []string{"anxiety"},
			Availability:    []models.AvailabilitySlot{},
		}
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func newAppointment(studentID, counselorID, date, clock string, status models.AppointmentStatus) *models.Appointment {
	a := &models.Appointment{
		StudentID:       studentID,
		CounselorID:     counselorID,
		Date:            date,
		Time:            clock,
		Duration:        "60",
		ContactMethod:   "video",
		AppointmentType: "follow-up",
		Priority:        models.PriorityNormal,
		Status:          status,
		Reason:          "Conformance test appointment.",
		StatusHistory:   []models.StatusChange{{Status: status, ChangedBy: studentID, ChangedAt: stamp}},
	}
	a.ID = models.NewID()
	a.CreatedAt, a.UpdatedAt = stamp, stamp
	a.SlotKey = a.SlotKeyFor(status)
	return a
}

func insert(ctx context.Context, s store.Store, a *models.Appointment) error {
	return s.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.InsertAppointment(ctx, a)
	})
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	counselor := mustCreateUser(t, s, "counselor@uni.test", models.RoleCounselor)
	mustCreateUser(t, s, "student@uni.test", models.RoleStudent)

	dup := &models.User{Email: "student@uni.test", Role: models.RoleStudent}
	dup.ID = models.NewID()
	if err := s.CreateUser(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate email: err = %v, want ErrDuplicate", err)
	}

	got, err := s.FindUserByEmail(ctx, "counselor@uni.test")
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
	if got.ID != counselor.ID || !got.CreatedAt.Equal(stamp) {
		t.Errorf("FindUserByEmail = %s created %v, want %s created %v", got.ID, got.CreatedAt, counselor.ID, stamp)
	}
	if _, err := s.FindUserByID(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindUserByID(missing): err = %v, want ErrNotFound", err)
	}

	counselors, err := s.ListUsers(ctx, models.RoleCounselor)
	if err != nil || len(counselors) != 1 {
		t.Fatalf("ListUsers(counselor) = %d users, %v; want 1", len(counselors), err)
	}
	all, err := s.ListUsers(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("ListUsers() = %d users, %v; want 2", len(all), err)
	}

	if err := s.UpdateUserProfile(ctx, counselor.ID, "Carla", "Mendes"); err != nil {
		t.Fatalf("UpdateUserProfile: %v", err)
	}
	slots := []models.AvailabilitySlot{{DayOfWeek: "monday", StartTime: "09:00", EndTime: "17:00", IsAvailable: true}}
	if err := s.SetAvailability(ctx, counselor.ID, slots); err != nil {
		t.Fatalf("SetAvailability: %v", err)
	}
	got, _ = s.FindUserByID(ctx, counselor.ID)
	if got.FirstName != "Carla" || len(got.Availability()) != 1 || len(got.CounselorProfile.Specializations) != 1 {
		t.Errorf("after updates: %+v", got)
	}

	student, _ := s.FindUserByEmail(ctx, "student@uni.test")
	if err := s.SetAvailability(ctx, student.ID, slots); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SetAvailability(student): err = %v, want ErrNotFound", err)
	}
}

func testSlotKey(t *testing.T, s store.Store) {
	ctx := context.Background()
	counselor := mustCreateUser(t, s, "c@uni.test", models.RoleCounselor)
	a := mustCreateUser(t, s, "a@uni.test", models.RoleStudent)
	b := mustCreateUser(t, s, "b@uni.test", models.RoleStudent)

	first := newAppointment(a.ID, counselor.ID, "2025-03-10", "14:00", models.StatusPending)
	if err := insert(ctx, s, first); err != nil {
		t.Fatalf("insert first: %v", err)
	}
	taken, err := s.HasActiveAppointment(ctx, counselor.ID, "2025-03-10", "14:00")
	if err != nil || !taken {
		t.Fatalf("HasActiveAppointment = %v, %v; want true", taken, err)
	}

	second := newAppointment(b.ID, counselor.ID, "2025-03-10", "14:00", models.StatusPending)
	if err := insert(ctx, s, second); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("insert on a held slot: err = %v, want ErrDuplicate", err)
	}

	// Rows without a slot key never collide.
	for i := 0; i < 2; i++ {
		cancelled := newAppointment(b.ID, counselor.ID, "2025-03-10", "14:00", models.StatusCancelled)
		if err := insert(ctx, s, cancelled); err != nil {
			t.Fatalf("insert cancelled #%d: %v", i, err)
		}
	}

	status := models.StatusCancelled
	err = s.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateAppointment(ctx, first.ID, store.AppointmentUpdate{Status: &status, UpdatedAt: stamp})
	})
	if err != nil {
		t.Fatalf("cancel first: %v", err)
	}
	if taken, _ := s.HasActiveAppointment(ctx, counselor.ID, "2025-03-10", "14:00"); taken {
		t.Error("slot still reported taken after cancellation")
	}
	if err := insert(ctx, s, second); err != nil {
		t.Fatalf("insert after the slot was released: %v", err)
	}
}

func testAppointmentUpdates(t *testing.T, s store.Store) {
	ctx := context.Background()
	counselor := mustCreateUser(t, s, "c@uni.test", models.RoleCounselor)
	student := mustCreateUser(t, s, "s@uni.test", models.RoleStudent)
	appt := newAppointment(student.ID, counselor.ID, "2025-03-10", "14:00", models.StatusPending)
	if err := insert(ctx, s, appt); err != nil {
		t.Fatalf("insert: %v", err)
	}

	later := stamp.Add(time.Minute)
	status, date, clock := models.StatusRescheduled, "2025-03-12", "10:00"
	err := s.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateAppointment(ctx, appt.ID, store.AppointmentUpdate{
			Status:      &status,
			Date:        &date,
			Time:        &clock,
			StatusEntry: &models.StatusChange{Status: status, ChangedBy: student.ID, ChangedAt: later},
			RescheduleEntry: &models.RescheduleEntry{
				OldDate: appt.Date, OldTime: appt.Time, NewDate: date, NewTime: clock,
				Reason: "Exam moved", RescheduledBy: student.ID, RescheduledAt: later,
			},
			UpdatedAt: later,
		})
	})
	if err != nil {
		t.Fatalf("UpdateAppointment: %v", err)
	}

	got, err := s.FindAppointmentByID(ctx, appt.ID)
	if err != nil {
		t.Fatalf("FindAppointmentByID: %v", err)
	}
	if got.Status != status || got.Date != date || got.Time != clock || got.SlotKey != nil {
		t.Errorf("after update: status=%s date=%s time=%s slotKey=%v", got.Status, got.Date, got.Time, got.SlotKey)
	}
	if len(got.StatusHistory) != 2 || len(got.RescheduleHistory) != 1 {
		t.Errorf("histories = %d status, %d reschedule; want 2 and 1", len(got.StatusHistory), len(got.RescheduleHistory))
	}
	if !got.UpdatedAt.Equal(later) || !got.StatusHistory[1].ChangedAt.Equal(later) {
		t.Errorf("timestamps = %v / %v, want %v", got.UpdatedAt, got.StatusHistory[1].ChangedAt, later)
	}

	err = s.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateAppointment(ctx, "missing", store.AppointmentUpdate{UpdatedAt: later})
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update missing: err = %v, want ErrNotFound", err)
	}

	list, err := s.ListAppointments(ctx, store.AppointmentFilter{StudentID: student.ID, Status: status})
	if err != nil || len(list) != 1 {
		t.Errorf("ListAppointments = %d, %v; want 1", len(list), err)
	}
	list, _ = s.ListAppointments(ctx, store.AppointmentFilter{CounselorID: "someone-else"})
	if len(list) != 0 {
		t.Errorf("ListAppointments(other counselor) = %d, want 0", len(list))
	}
}

func testLockedReads(t *testing.T, s store.Store) {
	ctx := context.Background()
	counselor := mustCreateUser(t, s, "c@uni.test", models.RoleCounselor)
	student := mustCreateUser(t, s, "s@uni.test", models.RoleStudent)
	appt := newAppointment(student.ID, counselor.ID, "2025-03-10", "14:00", models.StatusPending)
	if err := insert(ctx, s, appt); err != nil {
		t.Fatalf("insert: %v", err)
	}

	confirmed, cancelled := models.StatusConfirmed, models.StatusCancelled
	err := s.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		got, err := tx.FindAppointmentForUpdate(ctx, appt.ID)
		if err != nil {
			return err
		}
		if got.Status != models.StatusPending || got.SlotKey == nil || *got.SlotKey != *appt.SlotKey {
			t.Errorf("locked read = %s with slot key %v, want the pending appointment", got.Status, got.SlotKey)
		}
		if _, err := tx.FindAppointmentForUpdate(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("locked read of missing: err = %v, want ErrNotFound", err)
		}
		// Two updates in one transaction both apply after a single locked read.
		if err := tx.UpdateAppointment(ctx, appt.ID, store.AppointmentUpdate{
			Status:    &confirmed,
			SlotKey:   got.SlotKeyFor(confirmed),
			UpdatedAt: stamp.Add(time.Minute),
		}); err != nil {
			return err
		}
		return tx.UpdateAppointment(ctx, appt.ID, store.AppointmentUpdate{
			Status:    &cancelled,
			UpdatedAt: stamp.Add(2 * time.Minute),
		})
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	got, err := s.FindAppointmentByID(ctx, appt.ID)
	if err != nil {
		t.Fatalf("FindAppointmentByID: %v", err)
	}
	if got.Status != cancelled || got.SlotKey != nil {
		t.Errorf("after locked updates: status=%s slotKey=%v, want cancelled without a key", got.Status, got.SlotKey)
	}
}

func testRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	counselor := mustCreateUser(t, s, "c@uni.test", models.RoleCounselor)
	student := mustCreateUser(t, s, "s@uni.test", models.RoleStudent)
	appt := newAppointment(student.ID, counselor.ID, "2025-03-10", "14:00", models.StatusPending)

	boom := errors.New("abort")
	err := s.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertAppointment(ctx, appt); err != nil {
			return err
		}
		summary := models.AppointmentSummary{AppointmentID: appt.ID, CounselorID: counselor.ID, Status: appt.Status, CreatedAt: stamp}
		if err := tx.AppendAppointmentSummary(ctx, student.ID, summary); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTransaction: err = %v, want %v", err, boom)
	}

	if _, err := s.FindAppointmentByID(ctx, appt.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("appointment visible after rollback: err = %v", err)
	}
	got, _ := s.FindUserByID(ctx, student.ID)
	if len(got.AppointmentHistory) != 0 {
		t.Errorf("student history = %+v after rollback, want empty", got.AppointmentHistory)
	}
}

func testNotifications(t *testing.T, s store.Store) {
	ctx := context.Background()
	user := mustCreateUser(t, s, "c@uni.test", models.RoleCounselor)

	older := models.Notification{ID: models.NewID(), UserID: user.ID, Type: models.NotificationNewRequest,
		Title: "older", Payload: map[string]string{"appointmentId": "a1"}, CreatedAt: stamp}
	newer := models.Notification{ID: models.NewID(), UserID: user.ID, Type: models.NotificationUrgentRequest,
		Title: "newer", Urgent: true, CreatedAt: stamp.Add(time.Second)}
	err := s.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.InsertNotifications(ctx, []models.Notification{older, newer})
	})
	if err != nil {
		t.Fatalf("InsertNotifications: %v", err)
	}

	list, err := s.ListNotifications(ctx, user.ID, false)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListNotifications = %d, %v; want 2", len(list), err)
	}
	if list[0].ID != newer.ID || !list[0].Urgent || list[1].Payload["appointmentId"] != "a1" {
		t.Errorf("ListNotifications order or fields wrong: %+v", list)
	}

	if err := s.MarkNotificationRead(ctx, older.ID, "someone-else"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("MarkNotificationRead(other user): err = %v, want ErrNotFound", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.MarkNotificationRead(ctx, older.ID, user.ID); err != nil {
			t.Fatalf("MarkNotificationRead #%d: %v", i, err)
		}
	}
	unread, _ := s.ListNotifications(ctx, user.ID, true)
	if len(unread) != 1 || unread[0].ID != newer.ID {
		t.Errorf("unread = %+v, want only the newer notification", unread)
	}
}

func testSessionNotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	notes := &models.SessionNotes{ID: models.NewID(), AppointmentID: "appt-1", CounselorID: "c", StudentID: "s",
		Summary: "Conformance summary.", RiskLevel: models.RiskLow, CreatedAt: stamp}
	save := func(n *models.SessionNotes) error {
		return s.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
			return tx.InsertSessionNotes(ctx, n)
		})
	}
	if err := save(notes); err != nil {
		t.Fatalf("InsertSessionNotes: %v", err)
	}
	again := *notes
	again.ID = models.NewID()
	if err := save(&again); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("second notes: err = %v, want ErrDuplicate", err)
	}

	got, err := s.FindSessionNotes(ctx, "appt-1")
	if err != nil || got.ID != notes.ID {
		t.Errorf("FindSessionNotes = %+v, %v", got, err)
	}
	if _, err := s.FindSessionNotes(ctx, "appt-2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindSessionNotes(missing): err = %v, want ErrNotFound", err)
	}
}

func testMetrics(t *testing.T, s store.Store) {
	ctx := context.Background()
	counselor := mustCreateUser(t, s, "c@uni.test", models.RoleCounselor)
	student := mustCreateUser(t, s, "s@uni.test", models.RoleStudent)

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, m := range []models.Metric{models.MetricTotalSessions, models.MetricTotalSessions, models.MetricNoShowCount} {
			if err := tx.IncrementMetric(ctx, counselor.ID, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("IncrementMetric: %v", err)
	}
	got, _ := s.FindUserByID(ctx, counselor.ID)
	if got.PerformanceMetrics.TotalSessions != 2 || got.PerformanceMetrics.NoShowCount != 1 {
		t.Errorf("metrics = %+v, want 2 sessions and 1 no-show", got.PerformanceMetrics)
	}

	err = s.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.IncrementMetric(ctx, student.ID, models.MetricTotalSessions)
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("IncrementMetric(student): err = %v, want ErrNotFound", err)
	}
}
