package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ParcelForge/dispatchbox/internal/models"
)

type Repository interface {
	ListOrdersByInterval(ctx context.Context, interval string) ([]*models.CustomerOrder, error)
}

type Sender interface {
	SendOrder(ctx context.Context, publicOrderID string) (bool, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// Dispatcher periodically re-sends recurring orders to their providers.
// Monthly orders are scanned first, then weekly ones; each order is
// eligible once the configured interval has elapsed since last_sent_at.
type Dispatcher struct {
	repo   Repository
	sender Sender
	rl     RateLimiter

	scanInterval                time.Duration
	rateLimitPerMinute          int64
	rateLimitDHLPerMinute       int64
	rateLimitRoyalMailPerMinute int64

	triggerCh chan struct{}
	now       func() time.Time

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalScanned        atomic.Int64
	totalSent           atomic.Int64
	totalErrors         atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(repo Repository, sender Sender, rl RateLimiter) *Dispatcher {
	return &Dispatcher{
		repo:               repo,
		sender:             sender,
		rl:                 rl,
		scanInterval:       24 * time.Hour,
		rateLimitPerMinute: 60,
		triggerCh:          make(chan struct{}, 1),
		now:                func() time.Time { return time.Now().UTC() },
		startedAtUnixNano:  time.Now().UTC().UnixNano(),
	}
}

func (d *Dispatcher) WithSettings(scanInterval time.Duration, rlPerMin int64) *Dispatcher {
	if scanInterval > 0 {
		d.scanInterval = scanInterval
	}
	if rlPerMin > 0 {
		d.rateLimitPerMinute = rlPerMin
	}
	return d
}

func (d *Dispatcher) WithProviderRateLimits(dhlPerMin, royalMailPerMin int) *Dispatcher {
	if dhlPerMin > 0 {
		d.rateLimitDHLPerMinute = int64(dhlPerMin)
	}
	if royalMailPerMin > 0 {
		d.rateLimitRoyalMailPerMinute = int64(royalMailPerMin)
	}
	return d
}

// WithClock overrides the time source, for tests.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Trigger forces an immediate scan cycle (best-effort, non-blocking).
func (d *Dispatcher) Trigger() {
	d.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case d.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt     time.Time  `json:"startedAt"`
	LastCycleAt   *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt *time.Time `json:"lastTriggerAt,omitempty"`
	TotalScanned  int64      `json:"totalScanned"`
	TotalSent     int64      `json:"totalSent"`
	TotalErrors   int64      `json:"totalErrors"`
	LastError     string     `json:"lastError,omitempty"`
}

func (d *Dispatcher) Stats() Stats {
	st := Stats{
		StartedAt:    time.Unix(0, d.startedAtUnixNano).UTC(),
		TotalScanned: d.totalScanned.Load(),
		TotalSent:    d.totalSent.Load(),
		TotalErrors:  d.totalErrors.Load(),
	}
	if n := d.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := d.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	d.lastErrorMu.Lock()
	st.LastError = d.lastError
	d.lastErrorMu.Unlock()
	return st
}

func (d *Dispatcher) Run(ctx context.Context) error {
	t := time.NewTicker(d.scanInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			d.runOnce(ctx)
		case <-d.triggerCh:
			d.runOnce(ctx)
		}
	}
}

func (d *Dispatcher) runOnce(ctx context.Context) {
	now := d.now()
	d.lastCycleUnixNano.Store(now.UnixNano())

	for _, interval := range []string{models.ShippingIntervalMonthly, models.ShippingIntervalWeekly} {
		orders, err := d.repo.ListOrdersByInterval(ctx, interval)
		if err != nil {
			slog.Error("list recurring orders", "interval", interval, "error", err.Error())
			d.recordError(err)
			continue
		}
		d.totalScanned.Add(int64(len(orders)))

		for _, o := range orders {
			if !dueForResend(o, interval, now) {
				continue
			}
			if err := d.sendOne(ctx, o); err != nil {
				d.recordError(err)
				slog.Error("re-send order", "order_id", o.OrderID, "error", err.Error())
			}
		}
	}
}

func (d *Dispatcher) sendOne(ctx context.Context, o *models.CustomerOrder) error {
	if d.rl != nil && d.rateLimitPerMinute > 0 {
		limit := d.rateLimitPerMinute
		switch o.ShippingProvider {
		case models.ShippingProviderDHL:
			if d.rateLimitDHLPerMinute > 0 {
				limit = d.rateLimitDHLPerMinute
			}
		case models.ShippingProviderRoyalMail:
			if d.rateLimitRoyalMailPerMinute > 0 {
				limit = d.rateLimitRoyalMailPerMinute
			}
		}

		minuteKey := fmt.Sprintf("rl:provider:%s:%s", o.ShippingProvider, d.now().Format("200601021504"))
		allowed, n, err := d.rl.Allow(ctx, minuteKey, limit, 70*time.Second)
		if err != nil {
			return err
		}
		if !allowed {
			slog.Warn("rate limit exceeded", "provider", o.ShippingProvider, "count", n)
			time.Sleep(500 * time.Millisecond)
		}
	}

	ok, err := d.sender.SendOrder(ctx, o.OrderID)
	if err != nil {
		return err
	}
	if ok {
		d.totalSent.Add(1)
	}
	return nil
}

func (d *Dispatcher) recordError(err error) {
	d.totalErrors.Add(1)
	d.lastErrorMu.Lock()
	d.lastError = err.Error()
	d.lastErrorMu.Unlock()
}

// dueForResend decides interval eligibility. Orders that were never sent
// carry a null last_sent_at and are skipped: the first send goes through
// the API, the schedule only repeats it.
func dueForResend(o *models.CustomerOrder, interval string, now time.Time) bool {
	if o.LastSentAt == nil {
		return false
	}
	switch interval {
	case models.ShippingIntervalMonthly:
		return !addMonthClamped(*o.LastSentAt).After(now)
	case models.ShippingIntervalWeekly:
		return !o.LastSentAt.AddDate(0, 0, 7).After(now)
	}
	return false
}

// addMonthClamped advances t by one month, clamping to the last day of the
// target month instead of AddDate's overflow (Jan 31 + 1 month is Feb 28,
// not Mar 3).
func addMonthClamped(t time.Time) time.Time {
	y, m, d := t.Date()
	lastDay := time.Date(y, m+2, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(y, m+1, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
