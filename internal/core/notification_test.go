package core_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"invoizo/internal/core"
	"invoizo/internal/logging"
	"invoizo/internal/store"
	"invoizo/internal/timeutil"
)

var pollNow = time.Date(2024, 7, 31, 12, 0, 0, 0, timeutil.IST)

func notificationFixture(t *testing.T) store.Store {
	t.Helper()
	s := store.NewMemoryStore()
	seed(t, s, store.KeyCustomers, []core.Customer{{ID: "001", Name: "Ravi"}, {ID: "002", Name: "Meena"}})
	seed(t, s, store.KeySuppliers, []core.Supplier{{ID: "001", Name: "Acme"}})
	seed(t, s, store.KeySalesBills, []core.SalesBill{
		{ID: "overdue", Date: "2024-07-01", PaymentType: core.PaymentCredit, CustCode: "001", Total: amt("150000")},
		{ID: "soon", Date: "2024-07-05", PaymentType: core.PaymentCredit, CustCode: "002", Total: amt("800")},
		{ID: "recent", Date: "2024-07-10", PaymentType: core.PaymentCredit, CustCode: "002", Total: amt("500")},
		{ID: "cash", Date: "2024-06-01", PaymentType: core.PaymentCash, CustCode: "001", Total: amt("500")},
		{ID: "orphan", Date: "2024-06-01", PaymentType: core.PaymentCredit, CustCode: "999", Total: amt("500")},
	})
	seed(t, s, store.KeyPurchaseBills, []core.PurchaseBill{
		{ID: "p-due", Date: "2024-07-24", SupplierCode: "001", Total: amt("1000")},
		{ID: "p-new", Date: "2024-07-25", SupplierCode: "001", Total: amt("1000")},
	})
	seed(t, s, store.KeyBookEntries, []core.BookEntry{
		{Date: "2024-07-20", AcCode: "SUPP-001", Debit: amt("400"), SupplierCode: "001"},
	})
	return s
}

func TestCheckOverdue_Thresholds(t *testing.T) {
	s := notificationFixture(t)
	svc := core.NewNotificationService(s)

	created, err := svc.CheckOverdue(context.Background(), pollNow)
	if err != nil {
		t.Fatalf("CheckOverdue: %v", err)
	}

	byPrefix := map[string]core.Notification{}
	for _, n := range created {
		byPrefix[n.ID[:strings.LastIndex(n.ID, "_")]] = n
	}
	if len(created) != 3 {
		t.Fatalf("want 3 notifications, got %d: %+v", len(created), created)
	}

	overdue, ok := byPrefix["payment_due_overdue"]
	if !ok {
		t.Fatal("missing overdue notification")
	}
	if overdue.Title != "Payment Overdue" || overdue.Message != "Payment of ₹1,50,000 from Ravi is overdue by 0 days" {
		t.Errorf("overdue: %q / %q", overdue.Title, overdue.Message)
	}

	soon, ok := byPrefix["payment_reminder_soon"]
	if !ok {
		t.Fatal("missing due-soon notification")
	}
	if soon.Message != "Payment of ₹800 from Meena is due in 4 days" {
		t.Errorf("due soon: %q", soon.Message)
	}

	sup, ok := byPrefix["supplier_payment_p-due"]
	if !ok {
		t.Fatal("missing supplier notification")
	}
	if sup.Message != "Payment of ₹600 to Acme is pending for 7 days" {
		t.Errorf("supplier: %q", sup.Message)
	}
	if sup.Data == nil || sup.Data.SupplierID != "001" || sup.Type != core.NotifyPaymentDue {
		t.Errorf("supplier data: %+v", sup.Data)
	}
}

func TestCheckOverdue_DoesNotRepeatUnread(t *testing.T) {
	ctx := context.Background()
	svc := core.NewNotificationService(notificationFixture(t))

	if _, err := svc.CheckOverdue(ctx, pollNow); err != nil {
		t.Fatalf("first CheckOverdue: %v", err)
	}
	again, err := svc.CheckOverdue(ctx, pollNow.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("second CheckOverdue: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("unread notifications should not repeat, got %d", len(again))
	}

	if err := svc.MarkAllRead(ctx); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	third, err := svc.CheckOverdue(ctx, pollNow.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("third CheckOverdue: %v", err)
	}
	if len(third) != 3 {
		t.Errorf("read notifications may be raised again, got %d", len(third))
	}
}

func TestNotifications_ReadAndClear(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	seed(t, s, store.KeyNotifications, []core.Notification{
		{ID: "a", Date: "2024-07-01T10:00:00Z"},
		{ID: "b", Date: "2024-07-03T10:00:00Z"},
		{ID: "c", Date: "2024-07-02T10:00:00Z", Read: true},
	})
	svc := core.NewNotificationService(s)

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list[0].ID != "b" || list[2].ID != "a" {
		t.Errorf("want newest first, got %s,%s,%s", list[0].ID, list[1].ID, list[2].ID)
	}

	if n, _ := svc.UnreadCount(ctx); n != 2 {
		t.Errorf("unread: want 2, got %d", n)
	}
	if err := svc.MarkRead(ctx, "a"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if n, _ := svc.UnreadCount(ctx); n != 1 {
		t.Errorf("unread after MarkRead: want 1, got %d", n)
	}
	if err := svc.MarkRead(ctx, "zzz"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("MarkRead unknown: want ErrNotFound, got %v", err)
	}

	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if list, _ := svc.List(ctx); len(list) != 0 {
		t.Errorf("want empty after Clear, got %d", len(list))
	}
}

type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	attempts int
}

func (l *fakeLocker) TryLock(_ context.Context, _ string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts++
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func(context.Context) error {
		l.mu.Lock()
		l.held = false
		l.mu.Unlock()
		return nil
	}, true, nil
}

func TestNotificationPoller_TickRespectsLock(t *testing.T) {
	ctx := context.Background()
	s := notificationFixture(t)
	locker := &fakeLocker{}

	var got []core.Notification
	p := &core.NotificationPoller{
		Notifications: core.NewNotificationService(s),
		Reports:       core.NewReportingService(s),
		Locker:        locker,
		Logger:        logging.Discard(),
		OnCheck:       func(created []core.Notification) { got = append(got, created...) },
		Now:           func() time.Time { return pollNow },
	}

	locker.held = true
	p.Tick(ctx)
	if len(got) != 0 {
		t.Fatalf("tick without the lock should do nothing, got %d", len(got))
	}

	locker.held = false
	p.Tick(ctx)
	if len(got) != 3 {
		t.Errorf("want 3 notifications, got %d", len(got))
	}
	if locker.held {
		t.Error("lock should be released after the tick")
	}
	if last := load[string](t, s, store.KeyLastAuditDate); last == "" {
		t.Error("tick should run the first scheduled audit")
	}
}

func TestNotificationPoller_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &core.NotificationPoller{
		Notifications: core.NewNotificationService(store.NewMemoryStore()),
		Interval:      time.Millisecond,
		Logger:        logging.Discard(),
	}
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
