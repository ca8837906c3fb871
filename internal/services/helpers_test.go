package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/notify"
	"counseling-app-server/internal/store/storetest"

	"go.uber.org/zap"
)

// fixedNow is a Saturday shortly before the appointments booked in these tests.
var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	sent chan notify.UrgentRequest
	err  error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan notify.UrgentRequest, 4)}
}

func (r *recordingNotifier) NotifyUrgentRequest(_ context.Context, req notify.UrgentRequest) error {
	r.sent <- req
	return r.err
}

type fixture struct {
	mem       *storetest.Memory
	svc       *AppointmentService
	notifier  *recordingNotifier
	student   models.User
	counselor models.User
	admin     models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := storetest.NewMemory()
	notifier := newRecordingNotifier()

	f := &fixture{
		mem:      mem,
		notifier: notifier,
		svc: NewAppointmentService(mem, zap.NewNop(),
			WithClock(func() time.Time { return fixedNow }),
			WithNotifier(notifier)),
	}
	f.counselor = mem.PutUser(models.User{
		Email:     "carla@uni.test",
		FirstName: "Carla",
		LastName:  "Mendes",
		Role:      models.RoleCounselor,
		CounselorProfile: &models.CounselorProfile{
			Specializations: []string{"anxiety"},
			Availability: []models.AvailabilitySlot{
				{DayOfWeek: "monday", StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
				{DayOfWeek: "wednesday", StartTime: "13:00", EndTime: "16:00", IsAvailable: true},
			},
		},
	})
	f.student = f.addStudent("sam")
	f.admin = mem.PutUser(models.User{Email: "admin@uni.test", FirstName: "Ada", Role: models.RoleAdmin})
	return f
}

func (f *fixture) addStudent(name string) models.User {
	return f.mem.PutUser(models.User{
		Email:          name + "@uni.test",
		FirstName:      name,
		LastName:       "Student",
		Role:           models.RoleStudent,
		StudentProfile: &models.StudentProfile{StudentNumber: "S-" + name, Program: "CS", YearOfStudy: 2},
	})
}

func actorOf(u models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// bookingRequest is the follow-up request for Monday 2025-03-10 at 14:00.
func (f *fixture) bookingRequest() CreateAppointmentRequest {
	return CreateAppointmentRequest{
		CounselorID:     f.counselor.ID,
		Date:            "2025-03-10",
		Time:            "14:00",
		Duration:        "60",
		AppointmentType: "follow-up",
		Priority:        models.PriorityNormal,
		Reason:          "Continuing our discussion about exam stress management techniques.",
	}
}

// seedAppointment stores an appointment in the given status at date/clock.
func (f *fixture) seedAppointment(student models.User, status models.AppointmentStatus, date, clock string) models.Appointment {
	appt := models.Appointment{
		StudentID:       student.ID,
		CounselorID:     f.counselor.ID,
		Date:            date,
		Time:            clock,
		Duration:        "60",
		ContactMethod:   "video",
		AppointmentType: "anxiety",
		Priority:        models.PriorityNormal,
		Status:          status,
		Reason:          "Seeded appointment for testing purposes.",
		StatusHistory: []models.StatusChange{{
			Status:    status,
			ChangedBy: student.ID,
			ChangedAt: models.Timestamp(fixedNow.Add(-time.Hour)),
		}},
	}
	appt.ID = models.NewID()
	appt.CreatedAt = models.Timestamp(fixedNow.Add(-time.Hour))
	appt.UpdatedAt = appt.CreatedAt
	appt.SlotKey = appt.SlotKeyFor(status)
	return f.mem.PutAppointment(appt)
}

func assertKind(t *testing.T, err error, want AppointmentError) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %q", err, want)
	}
}

func (f *fixture) mustGet(t *testing.T, id string) *models.Appointment {
	t.Helper()
	appt, err := f.mem.FindAppointmentByID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindAppointmentByID(%s): %v", id, err)
	}
	return appt
}

func (f *fixture) mustUser(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.mem.FindUserByID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindUserByID(%s): %v", id, err)
	}
	return u
}

func studentName(i int) string { return fmt.Sprintf("student%02d", i) }
