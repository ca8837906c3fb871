package services

import (
	"context"
	"fmt"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"
	"counseling-app-server/internal/utils"

	"go.uber.org/zap"
)

// CounselorService exposes the counselor directory and weekly availability.
type CounselorService struct {
	store store.Store
	log   *zap.Logger
}

func NewCounselorService(st store.Store, log *zap.Logger) *CounselorService {
	return &CounselorService{store: st, log: log}
}

// ListCounselors returns every counselor, sanitized.
func (s *CounselorService) ListCounselors(ctx context.Context) ([]models.UserSanitized, error) {
	users, err := s.store.ListUsers(ctx, models.RoleCounselor)
	if err != nil {
		return nil, fmt.Errorf("%w: listing counselors: %v", ErrTransactionFailure, err)
	}
	out := make([]models.UserSanitized, 0, len(users))
	for i := range users {
		out = append(out, users[i].Sanitize())
	}
	return out, nil
}

// GetCounselor returns one counselor; other roles are reported as not found.
func (s *CounselorService) GetCounselor(ctx context.Context, id string) (*models.UserSanitized, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "counselor")
	}
	if user.Role != models.RoleCounselor {
		return nil, notFound("counselor")
	}
	sanitized := user.Sanitize()
	return &sanitized, nil
}

// SetAvailability replaces the counselor's weekly slots. Counselors may only
// edit their own schedule.
func (s *CounselorService) SetAvailability(ctx context.Context, actor Actor, counselorID string, req SetAvailabilityRequest) (*models.UserSanitized, error) {
	if !actor.IsAdmin() && (actor.Role != models.RoleCounselor || actor.ID != counselorID) {
		return nil, permissionDenied("counselors can only change their own availability")
	}
	if err := utils.Validate(req); err != nil {
		return nil, validationError(err)
	}

	slots := req.Slots
	if slots == nil {
		slots = []models.AvailabilitySlot{}
	}
	if err := s.store.SetAvailability(ctx, counselorID, slots); err != nil {
		return nil, lookupError(err, "counselor")
	}

	s.log.Info("Counselor availability updated",
		zap.String("counselor_id", counselorID),
		zap.String("updated_by", actor.ID),
		zap.Int("slots", len(slots)))
	return s.GetCounselor(ctx, counselorID)
}
