package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"invoizo/internal/store"
	"invoizo/internal/timeutil"
)

const (
	customerOverdueDays  = 30
	customerReminderDays = 25
	supplierDueDays      = 7
)

// NotificationService keeps the notification feed. CheckOverdue is the only
// producer; the rest are reader/acknowledge operations.
type NotificationService interface {
	// CheckOverdue appends payment notifications for unsettled bills and
	// returns the ones it created.
	CheckOverdue(ctx context.Context, now time.Time) ([]Notification, error)
	List(ctx context.Context) ([]Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Clear(ctx context.Context) error
}

type notificationService struct {
	store store.Store
}

// NewNotificationService constructs a NotificationService over the keyed store.
func NewNotificationService(s store.Store) NotificationService {
	return &notificationService{store: s}
}

func (s *notificationService) CheckOverdue(ctx context.Context, now time.Time) ([]Notification, error) {
	var created []Notification
	err := s.store.Update(ctx, func(tx store.Tx) error {
		d, err := loadDataset(ctx, tx)
		if err != nil {
			return err
		}
		var existing []Notification
		if err := store.Load(ctx, tx, store.KeyNotifications, &existing); err != nil {
			return err
		}

		created = overdueNotifications(d, existing, now)
		if len(created) == 0 {
			return nil
		}
		return store.Save(ctx, tx, store.KeyNotifications, append(existing, created...))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check overdue payments: %w", err)
	}
	return created, nil
}

// overdueNotifications builds the new feed items. A bill that already has an
// unread notification of the same kind is not notified again.
func overdueNotifications(d *dataset, existing []Notification, now time.Time) []Notification {
	pending := map[string]bool{}
	for _, n := range existing {
		if !n.Read {
			pending[notificationSubject(n.ID)] = true
		}
	}
	stamp := now.UTC().Format(time.RFC3339)
	nano := now.UnixNano()

	paidBy := map[string]decimal.Decimal{}
	for _, e := range d.entries {
		if e.CustCode != "" {
			paidBy["C:"+e.CustCode] = paidBy["C:"+e.CustCode].Add(e.Credit.Decimal)
		}
		if e.SupplierCode != "" {
			paidBy["S:"+e.SupplierCode] = paidBy["S:"+e.SupplierCode].Add(e.Debit.Decimal)
		}
	}

	var out []Notification
	add := func(kind, billID string, n Notification) {
		subject := kind + "_" + billID
		if pending[subject] {
			return
		}
		pending[subject] = true
		n.ID = fmt.Sprintf("%s_%d", subject, nano)
		n.Type = NotifyPaymentDue
		n.Date = stamp
		out = append(out, n)
	}

	for _, b := range d.activeSales() {
		if b.PaymentType != PaymentCredit {
			continue
		}
		c, ok := d.customer(b.CustCode)
		if !ok {
			continue
		}
		billed, err := timeutil.ParseDate(b.Date)
		if err != nil {
			continue
		}
		days := timeutil.DaysBetween(billed, now)
		remaining := Amt(b.Total.Sub(paidBy["C:"+c.ID]))
		if !remaining.IsPositive() {
			continue
		}
		data := &NotificationData{Amount: &remaining, CustomerID: c.ID, CustomerName: c.Name, DueDate: b.Date}
		switch {
		case days >= customerOverdueDays:
			add("payment_due", b.ID, Notification{
				Title:   "Payment Overdue",
				Message: fmt.Sprintf("Payment of ₹%s from %s is overdue by %d days", FormatINR(remaining), c.Name, days-customerOverdueDays),
				Data:    data,
			})
		case days >= customerReminderDays:
			add("payment_reminder", b.ID, Notification{
				Title:   "Payment Due Soon",
				Message: fmt.Sprintf("Payment of ₹%s from %s is due in %d days", FormatINR(remaining), c.Name, customerOverdueDays-days),
				Data:    data,
			})
		}
	}

	for _, b := range d.purchaseBills {
		sup, ok := d.supplier(b.SupplierCode)
		if !ok {
			continue
		}
		billed, err := timeutil.ParseDate(b.Date)
		if err != nil {
			continue
		}
		days := timeutil.DaysBetween(billed, now)
		remaining := Amt(b.Total.Sub(paidBy["S:"+sup.ID]))
		if !remaining.IsPositive() || days < supplierDueDays {
			continue
		}
		add("supplier_payment", b.ID, Notification{
			Title:   "Supplier Payment Due",
			Message: fmt.Sprintf("Payment of ₹%s to %s is pending for %d days", FormatINR(remaining), sup.Name, days),
			Data:    &NotificationData{Amount: &remaining, SupplierID: sup.ID, SupplierName: sup.Name, DueDate: b.Date},
		})
	}
	return out
}

// notificationSubject strips the trailing _<unixnano> from an id.
func notificationSubject(id string) string {
	if i := strings.LastIndex(id, "_"); i > 0 {
		return id[:i]
	}
	return id
}

func (s *notificationService) List(ctx context.Context) ([]Notification, error) {
	var ns []Notification
	if err := store.Load(ctx, s.store, store.KeyNotifications, &ns); err != nil {
		return nil, err
	}
	out := make([]Notification, len(ns))
	copy(out, ns)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *notificationService) UnreadCount(ctx context.Context) (int, error) {
	var ns []Notification
	if err := store.Load(ctx, s.store, store.KeyNotifications, &ns); err != nil {
		return 0, err
	}
	n := 0
	for _, x := range ns {
		if !x.Read {
			n++
		}
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var ns []Notification
		if err := store.Load(ctx, tx, store.KeyNotifications, &ns); err != nil {
			return err
		}
		i := indexOf(ns, func(n Notification) bool { return n.ID == id })
		if i < 0 {
			return notFoundf("Notification not found")
		}
		ns[i].Read = true
		return store.Save(ctx, tx, store.KeyNotifications, ns)
	})
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context) error {
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var ns []Notification
		if err := store.Load(ctx, tx, store.KeyNotifications, &ns); err != nil {
			return err
		}
		for i := range ns {
			ns[i].Read = true
		}
		return store.Save(ctx, tx, store.KeyNotifications, ns)
	})
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *notificationService) Clear(ctx context.Context) error {
	if err := store.Save(ctx, s.store, store.KeyNotifications, []Notification{}); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}

// ── Poller ────────────────────────────────────────────────────────────────────

// Locker grants a short-lived exclusive lease. release is nil when ok is false.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// NotificationPoller runs CheckOverdue and the scheduled audit on a ticker.
// With a Locker only the replica holding the lease does the work on a tick.
type NotificationPoller struct {
	Notifications NotificationService
	Reports       ReportingService
	Locker        Locker
	Interval      time.Duration
	Logger        logrus.FieldLogger

	// OnCheck, if set, receives the notifications created on each tick.
	OnCheck func(created []Notification)
	// Now overrides the clock; nil means timeutil.Now.
	Now func() time.Time
}

const pollerLockKey = "notification-poller"

// Run blocks until ctx is cancelled. The first check runs immediately.
func (p *NotificationPoller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	p.Logger.WithField("interval", interval.String()).Info("notification poller started")

	p.Tick(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Logger.Info("notification poller stopped")
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick performs one poll. Errors are logged, not returned, so one bad tick
// does not stop the loop.
func (p *NotificationPoller) Tick(ctx context.Context) {
	if p.Locker != nil {
		release, ok, err := p.Locker.TryLock(ctx, pollerLockKey, time.Minute)
		if err != nil {
			p.Logger.WithError(err).Warn("notification poller: lock failed")
			return
		}
		if !ok {
			p.Logger.Debug("notification poller: another instance holds the lock")
			return
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				p.Logger.WithError(err).Warn("notification poller: release failed")
			}
		}()
	}

	now := timeutil.Now()
	if p.Now != nil {
		now = p.Now()
	}

	created, err := p.Notifications.CheckOverdue(ctx, now)
	if err != nil {
		p.Logger.WithError(err).Error("notification poller: overdue check failed")
	} else {
		if len(created) > 0 {
			p.Logger.WithField("count", len(created)).Info("notifications generated")
		}
		if p.OnCheck != nil {
			p.OnCheck(created)
		}
	}

	if p.Reports == nil {
		return
	}
	metrics, ran, err := p.Reports.RunScheduledAudit(ctx, now)
	if err != nil {
		p.Logger.WithError(err).Error("notification poller: scheduled audit failed")
		return
	}
	if ran {
		p.Logger.WithFields(logrus.Fields{
			"period":       metrics.Period,
			"lowStock":     metrics.Inventory.LowStockItems,
			"pendingBills": metrics.Purchases.PendingBills,
		}).Info("scheduled audit completed")
	}
}
