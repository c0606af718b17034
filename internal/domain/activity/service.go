package activity

import (
	"context"

	"billsplit/internal/realtime"
)

// Broadcaster relays an advisory live copy of a recorded event to the
// rooms of every interested participant.
type Broadcaster interface {
	PushToUsers(userIDs []int64, event realtime.Event)
}

type Service struct {
	repo        *Repository
	broadcaster Broadcaster
}

func NewService(repo *Repository, broadcaster Broadcaster) *Service {
	return &Service{repo: repo, broadcaster: broadcaster}
}

// List returns a filtered page plus the total under the same predicate.
func (s *Service) List(ctx context.Context, userID int64, f Filters) ([]Activity, int64, error) {
	items, err := s.repo.List(ctx, userID, f)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, userID, f)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (s *Service) Count(ctx context.Context, userID int64, f Filters) (int64, error) {
	return s.repo.Count(ctx, userID, f)
}

// Record appends an event to the owner's feed, then echoes it live to the
// sibling participants' rooms. The echo is advisory only: peers get no
// feed row here, their own rows are recorded by their own triggers.
func (s *Service) Record(ctx context.Context, userID int64, t Type, meta map[string]any, participants []int64) (*Activity, error) {
	a := &Activity{
		UserID: userID,
		Type:   t,
	}
	if err := a.SetMetadata(meta); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	if len(participants) > 0 {
		s.broadcaster.PushToUsers(participants, realtime.ActivityRecordedEvent(ResponseFromEntity(a)))
	}

	return a, nil
}
