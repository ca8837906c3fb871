package mongostore

import (
	"context"
	"time"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// txn issues reads and writes with the session context handed out by
// WithTransaction. seen holds the updatedAt of every appointment read through
// FindAppointmentForUpdate; updates to those appointments only match that version.
type txn struct {
	s    *Store
	seen map[string]time.Time
}

func newTxn(s *Store) *txn {
	return &txn{s: s, seen: make(map[string]time.Time)}
}

func (t *txn) FindAppointmentForUpdate(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := findOne[models.Appointment](ctx, t.s.appointments, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	t.seen[id] = appt.UpdatedAt
	return appt, nil
}

func (t *txn) InsertAppointment(ctx context.Context, appt *models.Appointment) error {
	if _, err := t.s.appointments.InsertOne(ctx, appt); err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (t *txn) UpdateAppointment(ctx context.Context, id string, u store.AppointmentUpdate) error {
	set := bson.M{"updatedAt": u.UpdatedAt}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Date != nil {
		set["date"] = *u.Date
	}
	if u.Time != nil {
		set["time"] = *u.Time
	}

	update := bson.M{}
	if u.SlotKey != nil {
		set["slotKey"] = *u.SlotKey
	} else {
		update["$unset"] = bson.M{"slotKey": ""}
	}
	update["$set"] = set

	push := bson.M{}
	if u.StatusEntry != nil {
		push["statusHistory"] = *u.StatusEntry
	}
	if u.RescheduleEntry != nil {
		push["rescheduleHistory"] = *u.RescheduleEntry
	}
	if len(push) > 0 {
		update["$push"] = push
	}

	filter := bson.M{"_id": id}
	version, guarded := t.seen[id]
	if guarded {
		filter["updatedAt"] = version
	}

	res, err := t.s.appointments.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapWriteError(err)
	}
	if res.MatchedCount == 0 {
		if guarded {
			return store.ErrStale
		}
		return store.ErrNotFound
	}
	if guarded {
		t.seen[id] = u.UpdatedAt
	}
	return nil
}

func (t *txn) AppendAppointmentSummary(ctx context.Context, studentID string, summary models.AppointmentSummary) error {
	return t.updateUser(ctx, bson.M{"_id": studentID}, bson.M{
		"$push": bson.M{"appointmentHistory": summary},
		"$set":  bson.M{"updatedAt": summary.CreatedAt},
	})
}

func (t *txn) IncrementMetric(ctx context.Context, counselorID string, metric models.Metric) error {
	return t.updateUser(ctx,
		bson.M{"_id": counselorID, "role": models.RoleCounselor},
		bson.M{"$inc": bson.M{"performanceMetrics." + string(metric): 1}},
	)
}

func (t *txn) InsertNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	docs := make([]interface{}, len(notifications))
	for i := range notifications {
		docs[i] = notifications[i]
	}
	_, err := t.s.notifications.InsertMany(ctx, docs)
	return err
}

func (t *txn) InsertSessionNotes(ctx context.Context, notes *models.SessionNotes) error {
	if _, err := t.s.sessionNotes.InsertOne(ctx, notes); err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (t *txn) updateUser(ctx context.Context, filter, update bson.M) error {
	res, err := t.s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
