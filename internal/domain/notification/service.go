package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"billsplit/internal/realtime"
)

// Broadcaster fans live events out to a user's connected devices. Pushes
// are advisory; a failure here never reaches the REST caller.
type Broadcaster interface {
	PushToUser(userID int64, event realtime.Event)
	PushUnreadCount(userID int64, count int64)
}

// Service orchestrates the store and the live channel: every committed
// write that inserts a notification or changes read-state is followed by
// the matching push plus a freshly computed unread counter.
type Service struct {
	repo        *Repository
	broadcaster Broadcaster
}

func NewService(repo *Repository, broadcaster Broadcaster) *Service {
	return &Service{repo: repo, broadcaster: broadcaster}
}

// List returns a page plus the total under the same predicate, so the
// handler can compute hasMore = offset + len(items) < total.
func (s *Service) List(ctx context.Context, userID int64, limit, offset int, unreadOnly bool) ([]Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.repo.List(ctx, userID, limit, offset, unreadOnly)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, userID, unreadOnly)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (s *Service) Counts(ctx context.Context, userID int64) (Counts, error) {
	return s.repo.Counts(ctx, userID)
}

// Create persists the notification and pushes it live. A dedupe collision
// is suppressed silently: the recipient was already notified.
func (s *Service) Create(ctx context.Context, n *Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	s.broadcaster.PushToUser(n.UserID, realtime.NewNotificationEvent(n.UserID, ResponseFromEntity(n)))
	s.pushFreshUnread(ctx, n.UserID)
	return nil
}

func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) (*Notification, error) {
	n, changed, err := s.repo.MarkAsRead(ctx, id, userID, time.Now())
	if err != nil {
		return nil, err
	}

	if changed {
		s.broadcaster.PushToUser(userID, realtime.NotificationReadEvent(userID, id))
		s.pushFreshUnread(ctx, userID)
	}
	return n, nil
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	affected, err := s.repo.MarkAllAsRead(ctx, userID, time.Now())
	if err != nil {
		return err
	}

	if affected > 0 {
		s.broadcaster.PushToUser(userID, realtime.AllNotificationsReadEvent(userID))
		s.pushFreshUnread(ctx, userID)
	}
	return nil
}

// Delete neither inserts nor changes read-state, so it broadcasts nothing;
// clients pick the removal up from the authoritative REST listing.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// pushFreshUnread recomputes the unread counter from the store and pushes
// it. Never a locally incremented value: concurrent mutations would drift.
// The mutation already committed, so a failed read only costs the push.
func (s *Service) pushFreshUnread(ctx context.Context, userID int64) {
	unread, err := s.repo.Count(ctx, userID, true)
	if err != nil {
		log.Printf("unread_count_push_skipped user_id=%d err=%v", userID, err)
		return
	}
	s.broadcaster.PushUnreadCount(userID, unread)
}

/* Domain triggers. Called by the expense/settlement services through the
   internal API; each persists a record and fires the live contract. */

func (s *Service) NotifyExpenseAdded(ctx context.Context, recipientID int64, actorName, description string, amountCents, groupID, expenseID int64) error {
	n := &Notification{
		UserID: recipientID,
		Type:   TypeExpenseAdded,
		Title:  "New expense",
		Body:   fmt.Sprintf("%s added %q", actorName, description),
	}
	if err := n.SetData(map[string]any{
		"expense_id":   expenseID,
		"group_id":     groupID,
		"amount_cents": amountCents,
	}); err != nil {
		return err
	}
	return s.Create(ctx, n)
}

func (s *Service) NotifyPaymentReminder(ctx context.Context, debtorID int64, creditorName string, amountCents, groupID int64, dedupeKey string) error {
	n := &Notification{
		UserID: debtorID,
		Type:   TypePaymentReminder,
		Title:  "Payment reminder",
		Body:   fmt.Sprintf("You owe %s %.2f", creditorName, float64(amountCents)/100),
	}
	if dedupeKey != "" {
		n.DedupeKey = &dedupeKey
	}
	if err := n.SetData(map[string]any{
		"group_id":     groupID,
		"amount_cents": amountCents,
	}); err != nil {
		return err
	}

	err := s.Create(ctx, n)
	if err == ErrDuplicateNotification {
		// Reminder already delivered; suppressing is the whole point of
		// the dedupe key.
		log.Printf("reminder_deduplicated user_id=%d key=%s", debtorID, dedupeKey)
		return nil
	}
	return err
}

// NotifySettlementRecorded informs both sides of a settled debt.
func (s *Service) NotifySettlementRecorded(ctx context.Context, payerID, payeeID, amountCents, groupID int64) error {
	payer := &Notification{
		UserID: payerID,
		Type:   TypeDebtUpdate,
		Title:  "Debt updated",
		Body:   fmt.Sprintf("Your payment of %.2f was recorded", float64(amountCents)/100),
	}
	payee := &Notification{
		UserID: payeeID,
		Type:   TypeSettlement,
		Title:  "Payment received",
		Body:   fmt.Sprintf("A payment of %.2f settled a debt to you", float64(amountCents)/100),
	}

	data := map[string]any{
		"group_id":     groupID,
		"payer_id":     payerID,
		"payee_id":     payeeID,
		"amount_cents": amountCents,
	}
	for _, n := range []*Notification{payer, payee} {
		if err := n.SetData(data); err != nil {
			return err
		}
		if err := s.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) NotifyGroupInvite(ctx context.Context, inviteeID int64, inviterName, groupName string, groupID int64) error {
	n := &Notification{
		UserID: inviteeID,
		Type:   TypeGroupInvite,
		Title:  "Group invitation",
		Body:   fmt.Sprintf("%s added you to %q", inviterName, groupName),
	}
	if err := n.SetData(map[string]any{"group_id": groupID}); err != nil {
		return err
	}
	return s.Create(ctx, n)
}
