// Package mongostore implements store.Store on MongoDB. Multi-document writes
// run in session transactions, so the server must be a replica set.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

type Store struct {
	client        *mongo.Client
	users         *mongo.Collection
	appointments  *mongo.Collection
	notifications *mongo.Collection
	sessionNotes  *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Connect dials uri, verifies the primary is reachable and makes sure the
// indexes exist.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connection error: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := New(client, dbName)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New wraps an existing client.
func New(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		client:        client,
		users:         db.Collection(store.CollectionUsers),
		appointments:  db.Collection(store.CollectionAppointments),
		notifications: db.Collection(store.CollectionNotifications),
		sessionNotes:  db.Collection(store.CollectionSessionNotes),
	}
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// RunInTransaction runs fn inside a session transaction. The driver retries
// fn on transient transaction errors, so fn must be safe to run again.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc context.Context) (interface{}, error) {
		return nil, fn(sc, newTxn(s))
	})
	return err
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"_id": id})
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"email": email})
}

func (s *Store) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	opts := options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}, {Key: "_id", Value: 1}})
	return findMany[models.User](ctx, s.users, filter, opts)
}

func (s *Store) UpdateUserProfile(ctx context.Context, id, firstName, lastName string) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"firstName": firstName,
			"lastName":  lastName,
			"updatedAt": models.Timestamp(time.Now()),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SetAvailability(ctx context.Context, counselorID string, slots []models.AvailabilitySlot) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": counselorID, "role": models.RoleCounselor},
		bson.M{"$set": bson.M{
			"counselorProfile.availability": slots,
			"updatedAt":                     models.Timestamp(time.Now()),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ---- appointments ----

func (s *Store) FindAppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	return findOne[models.Appointment](ctx, s.appointments, bson.M{"_id": id})
}

func (s *Store) HasActiveAppointment(ctx context.Context, counselorID, date, slotTime string) (bool, error) {
	n, err := s.appointments.CountDocuments(ctx, bson.M{
		"counselorId": counselorID,
		"date":        date,
		"time":        slotTime,
		"status":      bson.M{"$in": activeStatuses},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ListAppointments(ctx context.Context, filter store.AppointmentFilter) ([]models.Appointment, error) {
	q := bson.M{}
	if filter.StudentID != "" {
		q["studentId"] = filter.StudentID
	}
	if filter.CounselorID != "" {
		q["counselorId"] = filter.CounselorID
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}, {Key: "_id", Value: 1}})
	return findMany[models.Appointment](ctx, s.appointments, q, opts)
}

// ---- notifications & notes ----

func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	q := bson.M{"userId": userID}
	if unreadOnly {
		q["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return findMany[models.Notification](ctx, s.notifications, q, opts)
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	res, err := s.notifications.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) FindSessionNotes(ctx context.Context, appointmentID string) (*models.SessionNotes, error) {
	return findOne[models.SessionNotes](ctx, s.sessionNotes, bson.M{"appointmentId": appointmentID})
}

// ---- helpers ----

func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := col.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func findMany[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts *options.FindOptionsBuilder) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}
