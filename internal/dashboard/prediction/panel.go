// Package prediction owns the "latest prediction" slot of the dashboard
// and drives the idle → loading → success|error → idle cycle of a submit.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fraudlens/internal/logging"
	"fraudlens/internal/models"

	"go.uber.org/zap"
)

var (
	ErrClosed         = errors.New("prediction panel closed")
	ErrSubmitInFlight = errors.New("a prediction is already in flight")
)

// Predictor performs the remote classification.
type Predictor interface {
	Predict(ctx context.Context, features models.TransactionFeatures) (*models.PredictionResult, error)
}

// StatsRefresher is refreshed after every successful prediction.
type StatsRefresher interface {
	Refresh(ctx context.Context)
}

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is a transient message shown to the operator.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// State is a snapshot of the panel.
type State struct {
	Latest  *models.PredictionResult
	Loading bool
}

type Panel struct {
	predictor Predictor
	stats     StatsRefresher
	notifier  Notifier
	logger    *zap.Logger

	mu        sync.Mutex
	latest    *models.PredictionResult
	loading   bool
	closed    bool
	listeners []func(State)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPanel creates a panel. stats, notifier and logger are optional.
func NewPanel(predictor Predictor, stats StatsRefresher, notifier Notifier, logger *zap.Logger) *Panel {
	logger = logging.OrNop(logger)
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Panel{
		predictor: predictor,
		stats:     stats,
		notifier:  notifier,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// OnChange registers fn to receive every state transition.
func (p *Panel) OnChange(fn func(State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// State returns the current snapshot.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

func (p *Panel) snapshot() State {
	s := State{Loading: p.loading}
	if p.latest != nil {
		latest := *p.latest
		s.Latest = &latest
	}
	return s
}

// transition applies fn under the lock and notifies listeners with the
// resulting state. fn may refuse the change by returning an error.
func (p *Panel) transition(fn func() error) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if err := fn(); err != nil {
		p.mu.Unlock()
		return err
	}
	s := p.snapshot()
	listeners := append(([]func(State))(nil), p.listeners...)
	p.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
	return nil
}

// Submit sends features to the predictor. On success the result replaces
// the latest prediction and stats are refreshed in the background; on
// failure the latest prediction is left unchanged and an error
// notification is emitted. Either way loading goes true then false once.
func (p *Panel) Submit(ctx context.Context, features models.TransactionFeatures) error {
	err := p.transition(func() error {
		if p.loading {
			return ErrSubmitInFlight
		}
		p.loading = true
		return nil
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	result, err := p.predictor.Predict(ctx, features)
	if err != nil {
		if cerr := p.transition(func() error {
			p.loading = false
			return nil
		}); cerr != nil {
			return cerr
		}
		p.logger.Warn("prediction failed", zap.Error(err))
		p.notifier.Notify(Notification{
			Level:   LevelError,
			Title:   "Prediction failed",
			Message: "Backend not reachable. Make sure the API server is running.",
		})
		return fmt.Errorf("prediction failed: %w", err)
	}

	refresh := false
	err = p.transition(func() error {
		p.latest = result
		p.loading = false
		if p.stats != nil {
			p.wg.Add(1)
			refresh = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	if refresh {
		go func() {
			defer p.wg.Done()
			p.stats.Refresh(p.ctx)
		}()
	}
	return nil
}

// Close cancels in-flight work and waits for background refreshes. Late
// responses are discarded.
func (p *Panel) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
