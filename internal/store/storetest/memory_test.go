package storetest

import (
	"context"
	"errors"
	"testing"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"
)

func TestMemoryConformance(t *testing.T) {
	Run(t, func(t *testing.T) store.Store { return NewMemory() })
}

func TestMemoryFailNotificationsRollsBack(t *testing.T) {
	m := NewMemory()
	m.FailNotifications = errors.New("disk full")
	appt := newAppointment("s", "c", "2025-03-10", "14:00", models.StatusPending)

	err := m.RunInTransaction(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertAppointment(ctx, appt); err != nil {
			return err
		}
		return tx.InsertNotifications(ctx, []models.Notification{{ID: models.NewID(), UserID: "c"}})
	})
	if !errors.Is(err, m.FailNotifications) {
		t.Fatalf("err = %v, want %v", err, m.FailNotifications)
	}
	if appointments, notifications, _ := m.Counts(); appointments != 0 || notifications != 0 {
		t.Errorf("Counts() = %d appointments, %d notifications after rollback; want 0, 0", appointments, notifications)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	u := m.PutUser(models.User{Email: "c@uni.test", Role: models.RoleCounselor,
		CounselorProfile: &models.CounselorProfile{Availability: []models.AvailabilitySlot{{DayOfWeek: "monday"}}}})

	got, err := m.FindUserByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("FindUserByID: %v", err)
	}
	got.CounselorProfile.Availability[0].DayOfWeek = "friday"

	again, _ := m.FindUserByID(context.Background(), u.ID)
	if again.Availability()[0].DayOfWeek != "monday" {
		t.Error("mutating a returned user changed the stored copy")
	}
}
