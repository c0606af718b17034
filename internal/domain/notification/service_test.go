package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"billsplit/internal/realtime"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

type fakeBroadcaster struct {
	events []realtime.Event
	counts []int64
}

func (f *fakeBroadcaster) PushToUser(userID int64, ev realtime.Event) {
	f.events = append(f.events, ev)
}

func (f *fakeBroadcaster) PushUnreadCount(userID int64, count int64) {
	f.counts = append(f.counts, count)
}

func setupTestService(t *testing.T) (*Service, *fakeBroadcaster) {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&Notification{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	fake := &fakeBroadcaster{}
	return NewService(NewRepository(db), fake), fake
}

func createUnread(t *testing.T, svc *Service, userID int64) *Notification {
	t.Helper()
	n := &Notification{
		UserID: userID,
		Type:   TypeExpenseAdded,
		Title:  "New expense",
	}
	if err := svc.Create(context.Background(), n); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return n
}

func TestCountsAfterMarkAllAsRead(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	var last *Notification
	for i := 0; i < 3; i++ {
		last = createUnread(t, svc, 1)
	}
	first, err := svc.MarkAsRead(ctx, last.ID, 1)
	if err != nil {
		t.Fatalf("MarkAsRead returned error: %v", err)
	}
	if !first.ReadAt.Valid {
		t.Fatal("expected read_at to be set")
	}

	counts, err := svc.Counts(ctx, 1)
	if err != nil {
		t.Fatalf("Counts returned error: %v", err)
	}
	if counts.Total != 3 || counts.Unread != 2 {
		t.Fatalf("expected {3 2}, got {%d %d}", counts.Total, counts.Unread)
	}

	if err := svc.MarkAllAsRead(ctx, 1); err != nil {
		t.Fatalf("MarkAllAsRead returned error: %v", err)
	}

	counts, err = svc.Counts(ctx, 1)
	if err != nil {
		t.Fatalf("Counts returned error: %v", err)
	}
	if counts.Total != 3 || counts.Unread != 0 {
		t.Fatalf("expected {3 0}, got {%d %d}", counts.Total, counts.Unread)
	}
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	svc, fake := setupTestService(t)
	ctx := context.Background()

	n := createUnread(t, svc, 1)
	pushesBefore := len(fake.events)

	first, err := svc.MarkAsRead(ctx, n.ID, 1)
	if err != nil {
		t.Fatalf("MarkAsRead returned error: %v", err)
	}
	second, err := svc.MarkAsRead(ctx, n.ID, 1)
	if err != nil {
		t.Fatalf("second MarkAsRead returned error: %v", err)
	}

	if !first.ReadAt.Valid || !second.ReadAt.Valid {
		t.Fatal("expected read_at to be set on both results")
	}
	if !first.ReadAt.Time.Equal(second.ReadAt.Time) {
		t.Fatalf("expected identical read_at, got %v and %v", first.ReadAt.Time, second.ReadAt.Time)
	}

	// Only the first call changed state, so only the first call pushed.
	if got := len(fake.events) - pushesBefore; got != 1 {
		t.Fatalf("expected 1 read push, got %d", got)
	}
}

func TestMarkAsReadKeepsFirstTimestamp(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	n := createUnread(t, svc, 1)

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	got, changed, err := svc.repo.MarkAsRead(ctx, n.ID, 1, first)
	if err != nil {
		t.Fatalf("MarkAsRead returned error: %v", err)
	}
	if !changed || !got.ReadAt.Valid || !got.ReadAt.Time.Equal(first) {
		t.Fatalf("expected read_at %v, got changed=%v read_at=%v", first, changed, got.ReadAt)
	}

	// A later attempt must not move the timestamp: read_at is monotonic.
	got, changed, err = svc.repo.MarkAsRead(ctx, n.ID, 1, later)
	if err != nil {
		t.Fatalf("second MarkAsRead returned error: %v", err)
	}
	if changed {
		t.Fatal("already-read notification reported as changed")
	}
	if !got.ReadAt.Time.Equal(first) {
		t.Fatalf("read_at moved from %v to %v", first, got.ReadAt.Time)
	}
}

func TestMarkAsReadConcurrentSingleWinner(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	n := createUnread(t, svc, 1)

	sqlDB, err := svc.repo.DB().DB()
	if err != nil {
		t.Fatalf("failed to unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// The read_at guard lives in the UPDATE itself, so of several racing
	// markers exactly one changes the row and all observe the same stamp.
	const workers = 8
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	changes := make(chan bool, workers)
	stamps := make(chan time.Time, workers)
	for i := 0; i < workers; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, changed, err := svc.repo.MarkAsRead(ctx, n.ID, 1, at)
			if err != nil {
				t.Errorf("MarkAsRead returned error: %v", err)
				return
			}
			if !got.ReadAt.Valid {
				t.Error("expected read_at set")
				return
			}
			changes <- changed
			stamps <- got.ReadAt.Time
		}()
	}
	wg.Wait()
	close(changes)
	close(stamps)

	winners := 0
	for changed := range changes {
		if changed {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}

	var stamp time.Time
	for at := range stamps {
		if stamp.IsZero() {
			stamp = at
			continue
		}
		if !at.Equal(stamp) {
			t.Fatalf("observed diverging read_at stamps %v and %v", stamp, at)
		}
	}
}

func TestMarkAsReadChecksOwnership(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	n := createUnread(t, svc, 1)

	_, err := svc.MarkAsRead(ctx, n.ID, 2)
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}

	counts, err := svc.Counts(ctx, 1)
	if err != nil {
		t.Fatalf("Counts returned error: %v", err)
	}
	if counts.Unread != 1 {
		t.Fatalf("expected owner's notification untouched, unread=%d", counts.Unread)
	}
}

func TestDeleteAdjustsCounts(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	unread := createUnread(t, svc, 1)
	read := createUnread(t, svc, 1)
	if _, err := svc.MarkAsRead(ctx, read.ID, 1); err != nil {
		t.Fatalf("MarkAsRead returned error: %v", err)
	}

	if err := svc.Delete(ctx, unread.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	counts, _ := svc.Counts(ctx, 1)
	if counts.Total != 1 || counts.Unread != 0 {
		t.Fatalf("deleting unread should drop both counters, got {%d %d}", counts.Total, counts.Unread)
	}

	if err := svc.Delete(ctx, read.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	counts, _ = svc.Counts(ctx, 1)
	if counts.Total != 0 || counts.Unread != 0 {
		t.Fatalf("deleting read should drop total only, got {%d %d}", counts.Total, counts.Unread)
	}

	// Deleting a missing id is not an error, by policy.
	if err := svc.Delete(ctx, 12345); err != nil {
		t.Fatalf("delete of missing id returned error: %v", err)
	}
}

func TestUnreadNeverExceedsTotal(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	check := func(step string) {
		t.Helper()
		counts, err := svc.Counts(ctx, 1)
		if err != nil {
			t.Fatalf("%s: Counts returned error: %v", step, err)
		}
		if counts.Unread > counts.Total {
			t.Fatalf("%s: unread %d exceeds total %d", step, counts.Unread, counts.Total)
		}
	}

	a := createUnread(t, svc, 1)
	check("after first create")
	b := createUnread(t, svc, 1)
	check("after second create")
	if _, err := svc.MarkAsRead(ctx, a.ID, 1); err != nil {
		t.Fatalf("MarkAsRead returned error: %v", err)
	}
	check("after mark one")
	if err := svc.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	check("after delete unread")
	if err := svc.MarkAllAsRead(ctx, 1); err != nil {
		t.Fatalf("MarkAllAsRead returned error: %v", err)
	}
	check("after mark all")
}

func TestListPaginationAndUnreadFilter(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, createUnread(t, svc, 1).ID)
	}
	for _, id := range ids[:2] {
		if _, err := svc.MarkAsRead(ctx, id, 1); err != nil {
			t.Fatalf("MarkAsRead returned error: %v", err)
		}
	}

	items, total, err := svc.List(ctx, 1, 2, 0, false)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 2 || total != 5 {
		t.Fatalf("expected page of 2 with total 5, got %d and %d", len(items), total)
	}
	if items[0].ID < items[1].ID {
		t.Fatalf("expected newest first, got ids %d then %d", items[0].ID, items[1].ID)
	}

	unreadItems, unreadTotal, err := svc.List(ctx, 1, 10, 0, true)
	if err != nil {
		t.Fatalf("List unreadOnly returned error: %v", err)
	}
	if len(unreadItems) != 3 || unreadTotal != 3 {
		t.Fatalf("expected 3 unread, got %d items total %d", len(unreadItems), unreadTotal)
	}
	for _, n := range unreadItems {
		if n.ReadAt.Valid {
			t.Fatalf("unreadOnly returned read notification %d", n.ID)
		}
	}

	// Offset past the end is an empty page, not an error.
	empty, _, err := svc.List(ctx, 1, 10, 100, false)
	if err != nil {
		t.Fatalf("List with large offset returned error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %d items", len(empty))
	}
}

func TestCreatePushesLiveEvents(t *testing.T) {
	svc, fake := setupTestService(t)

	n := createUnread(t, svc, 7)

	if len(fake.events) != 1 {
		t.Fatalf("expected 1 event push, got %d", len(fake.events))
	}
	ev := fake.events[0]
	if ev.Type != realtime.EventNewNotification || ev.UserID != 7 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Notification == nil {
		t.Fatal("expected notification record in push")
	}
	if len(fake.counts) != 1 || fake.counts[0] != 1 {
		t.Fatalf("expected unread count push of 1, got %v", fake.counts)
	}
	_ = n
}

func TestMarkAllAsReadPushesOnlyWhenChanged(t *testing.T) {
	svc, fake := setupTestService(t)
	ctx := context.Background()

	createUnread(t, svc, 1)
	before := len(fake.events)

	if err := svc.MarkAllAsRead(ctx, 1); err != nil {
		t.Fatalf("MarkAllAsRead returned error: %v", err)
	}
	if len(fake.events) != before+1 {
		t.Fatalf("expected all-read push, got %d new events", len(fake.events)-before)
	}
	if fake.events[len(fake.events)-1].Type != realtime.EventAllNotificationsRead {
		t.Fatalf("expected %s event, got %s", realtime.EventAllNotificationsRead, fake.events[len(fake.events)-1].Type)
	}

	// Nothing unread left: the second call is a silent no-op.
	if err := svc.MarkAllAsRead(ctx, 1); err != nil {
		t.Fatalf("second MarkAllAsRead returned error: %v", err)
	}
	if len(fake.events) != before+1 {
		t.Fatal("idempotent mark-all should not push again")
	}
}

func TestPaymentReminderDeduplicates(t *testing.T) {
	svc, fake := setupTestService(t)
	ctx := context.Background()

	if err := svc.NotifyPaymentReminder(ctx, 1, "Bob", 5000, 10, "reminder-10-1"); err != nil {
		t.Fatalf("first reminder returned error: %v", err)
	}
	if err := svc.NotifyPaymentReminder(ctx, 1, "Bob", 5000, 10, "reminder-10-1"); err != nil {
		t.Fatalf("duplicate reminder should be suppressed, got %v", err)
	}

	counts, err := svc.Counts(ctx, 1)
	if err != nil {
		t.Fatalf("Counts returned error: %v", err)
	}
	if counts.Total != 1 {
		t.Fatalf("expected a single stored reminder, got %d", counts.Total)
	}
	if len(fake.events) != 1 {
		t.Fatalf("expected a single push, got %d", len(fake.events))
	}
}

func TestSettlementNotifiesBothParties(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if err := svc.NotifySettlementRecorded(ctx, 1, 2, 9000, 10); err != nil {
		t.Fatalf("NotifySettlementRecorded returned error: %v", err)
	}

	for _, userID := range []int64{1, 2} {
		counts, err := svc.Counts(ctx, userID)
		if err != nil {
			t.Fatalf("Counts returned error: %v", err)
		}
		if counts.Total != 1 || counts.Unread != 1 {
			t.Fatalf("user %d: expected one unread notification, got {%d %d}", userID, counts.Total, counts.Unread)
		}
	}
}
