package mongostore

import (
	"context"
	"fmt"

	"counseling-app-server/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes creates the indexes the store relies on. uniq_active_slot is
// what keeps two slot-holding appointments off the same counselor slot.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	sets := []struct {
		col    *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.users, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_email"),
			},
			{
				Keys:    bson.D{{Key: "role", Value: 1}},
				Options: options.Index().SetName("role"),
			},
		}},
		{s.appointments, []mongo.IndexModel{
			{
				Keys: bson.D{{Key: "slotKey", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("uniq_active_slot").
					SetPartialFilterExpression(bson.M{"slotKey": bson.M{"$exists": true}}),
			},
			{
				Keys: bson.D{
					{Key: "counselorId", Value: 1},
					{Key: "date", Value: 1},
					{Key: "time", Value: 1},
				},
				Options: options.Index().SetName("counselor_slot"),
			},
			{
				Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetName("student_date"),
			},
		}},
		{s.notifications, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("user_created"),
			},
		}},
		{s.sessionNotes, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "appointmentId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_appointment"),
			},
		}},
	}

	for _, set := range sets {
		if _, err := set.col.Indexes().CreateMany(ctx, set.models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", set.col.Name(), err)
		}
	}
	return nil
}

// activeStatuses lists the statuses that hold a slot.
var activeStatuses = bson.A{models.StatusPending, models.StatusConfirmed}
