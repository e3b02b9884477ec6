// Package monitor is the passive anomaly monitor. It consumes purchase
// outcomes after they commit, keeps rolling counters in Redis, and files
// durable review tasks when a threshold is crossed. It observes and records;
// it never blocks, gates or reverses a purchase.
package monitor

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
	"github.com/terrep263/lakedirectory-sub002/internal/repository"
	"github.com/terrep263/lakedirectory-sub002/internal/service"
	"github.com/terrep263/lakedirectory-sub002/pkg/config"
	"github.com/terrep263/lakedirectory-sub002/pkg/logger"
)

// handleTimeout bounds the Redis and database work for one event.
const handleTimeout = 5 * time.Second

// Counter is a rolling-window counter. Incr bumps the key and returns the
// count inside the current window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Config holds monitor thresholds and buffering. A zero threshold disables
// that check.
type Config struct {
	Enabled                   bool
	BufferSize                int
	UserPurchasesPerHour      int
	DealPurchasesPerMinute    int
	UserFailedPaymentsPerHour int
}

// FromAppConfig maps the application monitor section onto the monitor's own
// config.
func FromAppConfig(cfg *config.MonitorConfig) Config {
	return Config{
		Enabled:                   cfg.Enabled,
		BufferSize:                cfg.BufferSize,
		UserPurchasesPerHour:      cfg.UserPurchasesPerHour,
		DealPurchasesPerMinute:    cfg.DealPurchasesPerMinute,
		UserFailedPaymentsPerHour: cfg.UserFailedPaymentsPerHour,
	}
}

type eventKind int

const (
	eventCompleted eventKind = iota
	eventFailed
)

type event struct {
	kind      eventKind
	completed service.PurchaseEvent
	failed    service.PurchaseFailureEvent
}

// Monitor implements service.PurchaseObserver. Events are handed off through
// a buffered channel; when the buffer is full the event is dropped and
// counted, never waited on.
type Monitor struct {
	cfg     Config
	counter Counter
	tasks   repository.ReviewTaskRepository
	log     *logger.Logger

	events  chan event
	quit    chan struct{}
	done    chan struct{}
	stopped atomic.Bool
	dropped atomic.Int64
}

// New creates a Monitor. Start must be called before events are consumed.
func New(cfg Config, counter Counter, tasks repository.ReviewTaskRepository, log *logger.Logger) *Monitor {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	return &Monitor{
		cfg:     cfg,
		counter: counter,
		tasks:   tasks,
		log:     log,
		events:  make(chan event, cfg.BufferSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the consumer goroutine.
func (m *Monitor) Start() {
	go m.run()
}

// Stop drains buffered events and waits for the consumer to exit. The events
// channel is never closed: producers may still race a send against Stop, and
// a send on a closed channel would panic. Events enqueued after Stop are
// counted as dropped.
func (m *Monitor) Stop() {
	if m.stopped.Swap(true) {
		return
	}
	close(m.quit)
	<-m.done
}

// Dropped reports how many events were discarded because the buffer was full.
func (m *Monitor) Dropped() int64 {
	return m.dropped.Load()
}

// PurchaseCompleted enqueues a committed purchase for threshold checks.
func (m *Monitor) PurchaseCompleted(ev service.PurchaseEvent) {
	if !m.cfg.Enabled {
		return
	}
	m.enqueue(event{kind: eventCompleted, completed: ev})
}

// PurchaseFailed enqueues a post-payment allocation failure.
func (m *Monitor) PurchaseFailed(ev service.PurchaseFailureEvent) {
	if !m.cfg.Enabled {
		return
	}
	m.enqueue(event{kind: eventFailed, failed: ev})
}

func (m *Monitor) enqueue(ev event) {
	if m.stopped.Load() {
		m.dropped.Add(1)
		return
	}
	select {
	case m.events <- ev:
	default:
		m.dropped.Add(1)
	}
}

func (m *Monitor) run() {
	defer close(m.done)
	for {
		select {
		case ev := <-m.events:
			m.handle(ev)
		case <-m.quit:
			// Drain whatever is already buffered, then exit.
			for {
				select {
				case ev := <-m.events:
					m.handle(ev)
				default:
					return
				}
			}
		}
	}
}

func (m *Monitor) handle(ev event) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()
	switch ev.kind {
	case eventCompleted:
		m.handleCompleted(ctx, ev.completed)
	case eventFailed:
		m.handleFailed(ctx, ev.failed)
	}
}

func (m *Monitor) handleCompleted(ctx context.Context, ev service.PurchaseEvent) {
	m.checkRate(ctx, rateCheck{
		countyID:  ev.CountyID,
		kind:      domain.ReviewTaskUserPurchaseRate,
		subjectID: ev.UserID,
		key:       "monitor:user_purchases:" + ev.CountyID + ":" + ev.UserID,
		window:    time.Hour,
		threshold: m.cfg.UserPurchasesPerHour,
	})
	m.checkRate(ctx, rateCheck{
		countyID:  ev.CountyID,
		kind:      domain.ReviewTaskDealPurchaseRate,
		subjectID: ev.DealID,
		key:       "monitor:deal_purchases:" + ev.CountyID + ":" + ev.DealID,
		window:    time.Minute,
		threshold: m.cfg.DealPurchasesPerMinute,
	})
}

func (m *Monitor) handleFailed(ctx context.Context, ev service.PurchaseFailureEvent) {
	// Every post-payment failure leaves a durable trace, independent of any
	// rate threshold.
	m.fileTask(ctx, ev.CountyID, domain.ReviewTaskPurchaseFailure, ev.PaymentIntentID, map[string]interface{}{
		"deal_id": ev.DealID,
		"user_id": ev.UserID,
		"reason":  ev.Reason,
	})

	m.checkRate(ctx, rateCheck{
		countyID:  ev.CountyID,
		kind:      domain.ReviewTaskFailedPaymentRate,
		subjectID: ev.UserID,
		key:       "monitor:failed_payments:" + ev.CountyID + ":" + ev.UserID,
		window:    time.Hour,
		threshold: m.cfg.UserFailedPaymentsPerHour,
	})
}

type rateCheck struct {
	countyID  string
	kind      domain.ReviewTaskKind
	subjectID string
	key       string
	window    time.Duration
	threshold int
}

// checkRate bumps the rolling counter and files a task on the first event
// past the threshold. Counting past it again inside the same window stays
// silent so one anomaly yields one task.
func (m *Monitor) checkRate(ctx context.Context, check rateCheck) {
	if check.threshold <= 0 {
		return
	}

	count, err := m.counter.Incr(ctx, check.key, check.window)
	if err != nil {
		m.log.Warn("monitor counter failed",
			zap.String("key", check.key),
			zap.Error(err))
		return
	}
	if count != int64(check.threshold)+1 {
		return
	}

	m.fileTask(ctx, check.countyID, check.kind, check.subjectID, map[string]interface{}{
		"count":     count,
		"threshold": check.threshold,
		"window":    check.window.String(),
	})
}

func (m *Monitor) fileTask(ctx context.Context, countyID string, kind domain.ReviewTaskKind, subjectID string, details map[string]interface{}) {
	task, err := domain.NewReviewTask(countyID, kind, subjectID, details)
	if err != nil {
		m.log.Warn("monitor could not build review task",
			zap.String("kind", string(kind)),
			zap.Error(err))
		return
	}
	if err := m.tasks.Create(ctx, task); err != nil {
		m.log.Error("monitor could not persist review task",
			zap.String("kind", string(kind)),
			zap.String("county_id", countyID),
			zap.Error(err))
		return
	}
	m.log.Info("review task filed",
		zap.String("kind", string(kind)),
		zap.String("county_id", countyID),
		zap.String("subject_id", subjectID))
}
