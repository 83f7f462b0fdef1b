// Package watch owns the persistent change subscription: it keeps exactly one
// subscription alive against the reservation store, feeds delivered batches to
// the change handler, and re-establishes the feed after transport errors.
package watch

import (
	"context"
	"sync"
	"time"

	apperrors "driverpro-notifier/internal/common/errors"
	"driverpro-notifier/internal/common/logger"
	"driverpro-notifier/internal/common/metrics"
	"driverpro-notifier/internal/common/observability"
	"driverpro-notifier/internal/models"
	"driverpro-notifier/internal/store"
)

// State of the subscription loop.
type State string

const (
	StateDisconnected State = "disconnected"
	StateSubscribing  State = "subscribing"
	StateListening    State = "listening"
	StateStopped      State = "stopped"
)

// ChangeProcessor handles one changed reservation. Errors are per-record and
// already classified.
type ChangeProcessor interface {
	Handle(ctx context.Context, reservationID string, res models.Reservation) error
}

// Subscriber is the subscription half of the store capability.
type Subscriber interface {
	Subscribe(ctx context.Context, filter store.Filter, resumeToken []byte) (store.Subscription, error)
}

// Manager runs the Disconnected → Subscribing → Listening loop indefinitely.
// A subscription-level error tears the feed down and schedules a brand-new
// subscription after a fixed delay; only Unsubscribe ends the loop.
type Manager struct {
	store          Subscriber
	handler        ChangeProcessor
	checkpoints    store.CheckpointStore // nil disables resume checkpoints
	reconnectDelay time.Duration
	logger         logger.Logger
	obs            *observability.Observability

	mu     sync.Mutex
	sub    store.Subscription
	state  State
	closed bool
	quit   chan struct{}
}

func NewManager(
	sub Subscriber,
	handler ChangeProcessor,
	checkpoints store.CheckpointStore,
	reconnectDelay time.Duration,
	obs *observability.Observability,
	log logger.Logger,
) *Manager {
	return &Manager{
		store:          sub,
		handler:        handler,
		checkpoints:    checkpoints,
		reconnectDelay: reconnectDelay,
		obs:            obs,
		logger:         log.WithFields(map[string]interface{}{"component": "subscription-manager"}),
		state:          StateDisconnected,
		quit:           make(chan struct{}),
	}
}

// watchFilter narrows the subscription to reservations whose current status
// carries a notification template. Earlier-lifecycle statuses are invisible
// to this service entirely.
func watchFilter() store.Filter {
	return store.Filter{
		Field:    "status",
		Operator: "in",
		Values:   models.WatchedStatuses,
	}
}

// Run drives the subscription loop until ctx is cancelled or Unsubscribe is
// called. It never returns on subscription errors.
func (m *Manager) Run(ctx context.Context) {
	defer m.setState(StateStopped)

	for {
		if ctx.Err() != nil || m.isClosed() {
			return
		}

		m.setState(StateSubscribing)

		token := m.loadCheckpoint(ctx)
		sub, err := m.store.Subscribe(ctx, watchFilter(), token)
		if err != nil {
			subErr := apperrors.NewSubscriptionError(err)
			m.logger.Error("failed to open subscription", map[string]interface{}{
				"errorCode": string(subErr.Code),
				"details":   subErr.Details,
				"resumed":   len(token) > 0,
			})
			// A stale resume token makes every attempt fail; drop it so the
			// next attempt starts a fresh stream.
			if len(token) > 0 {
				m.clearCheckpoint(ctx)
			}
			m.setState(StateDisconnected)
			if !m.waitReconnect(ctx) {
				return
			}
			metrics.Resubscriptions.Inc()
			continue
		}

		if !m.adopt(sub) {
			// Unsubscribe won the race; release the fresh handle and stop.
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = sub.Close(closeCtx)
			cancel()
			return
		}

		m.setState(StateListening)
		m.logger.Info("subscription established", map[string]interface{}{
			"filter":  "status in confirmed,cancelled",
			"resumed": len(token) > 0,
		})

		subErr := m.listen(ctx, sub)
		m.release(sub)
		m.setState(StateDisconnected)

		if ctx.Err() != nil || m.isClosed() {
			return
		}

		if subErr != nil {
			stdErr := apperrors.NewSubscriptionError(subErr)
			m.logger.Error("subscription failed, scheduling reconnect", map[string]interface{}{
				"errorCode": string(stdErr.Code),
				"details":   stdErr.Details,
				"delayMs":   m.reconnectDelay.Milliseconds(),
			})
		} else {
			m.logger.Warn("subscription ended without error, scheduling reconnect", map[string]interface{}{
				"delayMs": m.reconnectDelay.Milliseconds(),
			})
		}

		if !m.waitReconnect(ctx) {
			return
		}
		metrics.Resubscriptions.Inc()
	}
}

// listen consumes batches until the feed ends. Returns the subscription-level
// error, or nil on a clean close.
func (m *Manager) listen(ctx context.Context, sub store.Subscription) error {
	for {
		select {
		case batch, ok := <-sub.Changes():
			if !ok {
				// The error, if any, was queued before the feed closed.
				select {
				case err := <-sub.Err():
					return err
				default:
					return nil
				}
			}
			m.processBatch(ctx, batch)
		case err := <-sub.Err():
			return err
		case <-ctx.Done():
			return nil
		case <-m.quit:
			return nil
		}
	}
}

// processBatch handles events in delivered order. A per-record failure is
// logged with the reservation id and never stops the rest of the batch.
func (m *Manager) processBatch(ctx context.Context, batch store.ChangeBatch) {
	for _, ev := range batch.Events {
		metrics.ChangeEventsTotal.WithLabelValues(string(ev.Kind)).Inc()

		if ev.Kind != store.ChangeModified {
			continue
		}

		start := time.Now()
		err := m.handler.Handle(ctx, ev.DocumentID, ev.Reservation)
		duration := time.Since(start)
		metrics.EventDuration.Observe(duration.Seconds())

		if err != nil {
			code := apperrors.CodeOf(err)
			metrics.RecordFailures.WithLabelValues(string(code)).Inc()
			m.obs.RecordEventProcessed(ctx, "failed")
			m.obs.RecordEventDuration(ctx, duration, "failed")
			m.logger.Error("record skipped", map[string]interface{}{
				"reservationId": ev.DocumentID,
				"errorCode":     string(code),
				"error":         err.Error(),
			})
			continue
		}

		m.obs.RecordEventProcessed(ctx, "sent")
		m.obs.RecordEventDuration(ctx, duration, "sent")
	}

	m.saveCheckpoint(ctx, batch.ResumeToken)
}

// Unsubscribe releases the current subscription and prevents any new one from
// being established. Idempotent: safe to call when nothing is active.
func (m *Manager) Unsubscribe() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	sub := m.sub
	m.sub = nil
	close(m.quit)
	m.mu.Unlock()

	if sub != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sub.Close(ctx); err != nil {
			m.logger.Warn("subscription close failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

// State reports the current loop state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// adopt installs sub as the single owned handle. Returns false when
// Unsubscribe already happened, in which case the caller must release sub.
func (m *Manager) adopt(sub store.Subscription) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.sub = sub
	return true
}

// release drops the handle after the feed ended, unless Unsubscribe already
// took ownership of closing it.
func (m *Manager) release(sub store.Subscription) {
	m.mu.Lock()
	owned := m.sub == sub
	if owned {
		m.sub = nil
	}
	closed := m.closed
	m.mu.Unlock()

	if owned && !closed {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sub.Close(ctx)
	}
}

// waitReconnect sleeps for the fixed reconnect delay. Returns false when the
// manager should stop instead of resubscribing.
func (m *Manager) waitReconnect(ctx context.Context) bool {
	timer := time.NewTimer(m.reconnectDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-m.quit:
		return false
	}
}

func (m *Manager) loadCheckpoint(ctx context.Context) []byte {
	if m.checkpoints == nil {
		return nil
	}
	token, err := m.checkpoints.Load(ctx)
	if err != nil {
		m.logger.Warn("checkpoint load failed, starting fresh", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return token
}

func (m *Manager) saveCheckpoint(ctx context.Context, token []byte) {
	if m.checkpoints == nil || len(token) == 0 {
		return
	}
	if err := m.checkpoints.Save(ctx, token); err != nil {
		m.logger.Warn("checkpoint save failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (m *Manager) clearCheckpoint(ctx context.Context) {
	if m.checkpoints == nil {
		return
	}
	if err := m.checkpoints.Clear(ctx); err != nil {
		m.logger.Warn("checkpoint clear failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
