package autoplan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdog/taskdog/internal/observability/notify"
	"github.com/taskdog/taskdog/internal/service"
	"github.com/taskdog/taskdog/internal/service/failurenotifier"
)

type stubOptimizer struct {
	mu     sync.Mutex
	calls  int
	result *service.OptimizeResult
	err    error
}

func (s *stubOptimizer) Run(_ context.Context, _ service.OptimizeRequest) (*service.OptimizeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.result, s.err
}

func (s *stubOptimizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type memorySink struct {
	mu     sync.Mutex
	counts map[string]int64
	tags   map[string]map[string]string
	gauges map[string]float64
}

func newMemorySink() *memorySink {
	return &memorySink{
		counts: make(map[string]int64),
		tags:   make(map[string]map[string]string),
		gauges: make(map[string]float64),
	}
}

func (m *memorySink) Count(name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name] += value
	m.tags[name] = tags
}

func (m *memorySink) Gauge(name string, value float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

func (m *memorySink) Timing(name string, _ time.Duration, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name+".samples"]++
	m.tags[name] = tags
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRunner_RequiresOptimizer(t *testing.T) {
	_, err := NewRunner(RunnerOptions{})
	require.Error(t, err)
}

func TestNewRunner_DefaultsInterval(t *testing.T) {
	r, err := NewRunner(RunnerOptions{Optimizer: &stubOptimizer{}, Logger: testLogger()})
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, r.interval)
}

func TestRunner_TickEmitsSuccessMetrics(t *testing.T) {
	sink := newMemorySink()
	opt := &stubOptimizer{result: &service.OptimizeResult{
		Algorithm:      "greedy",
		ScheduledCount: 3,
	}}

	r, err := NewRunner(RunnerOptions{
		Optimizer: opt,
		Interval:  time.Hour,
		Logger:    testLogger(),
		Metrics:   sink,
	})
	require.NoError(t, err)

	r.tick(context.Background())

	assert.Equal(t, int64(1), sink.counts["autoplan.tick"])
	assert.Equal(t, "success", sink.tags["autoplan.tick"]["result"])
	assert.Equal(t, int64(3), sink.counts["autoplan.tasks_scheduled"])
	assert.NotZero(t, sink.gauges["autoplan.last_success_epoch"])
}

func TestRunner_TickEmitsNoopWhenNothingScheduled(t *testing.T) {
	sink := newMemorySink()
	opt := &stubOptimizer{result: &service.OptimizeResult{Algorithm: "greedy"}}

	r, err := NewRunner(RunnerOptions{
		Optimizer: opt,
		Interval:  time.Hour,
		Logger:    testLogger(),
		Metrics:   sink,
	})
	require.NoError(t, err)

	r.tick(context.Background())

	assert.Equal(t, "noop", sink.tags["autoplan.tick"]["result"])
	assert.Zero(t, sink.counts["autoplan.tasks_scheduled"])
}

func TestRunner_TickSurvivesOptimizeError(t *testing.T) {
	sink := newMemorySink()
	opt := &stubOptimizer{err: errors.New("no candidates lock")}

	r, err := NewRunner(RunnerOptions{
		Optimizer: opt,
		Interval:  time.Hour,
		Logger:    testLogger(),
		Metrics:   sink,
	})
	require.NoError(t, err)

	r.tick(context.Background())

	assert.Equal(t, "error", sink.tags["autoplan.tick"]["result"])
	_, hasGauge := sink.gauges["autoplan.last_success_epoch"]
	assert.False(t, hasGauge)
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	opt := &stubOptimizer{result: &service.OptimizeResult{Algorithm: "greedy"}}
	r, err := NewRunner(RunnerOptions{
		Optimizer: opt,
		Interval:  5 * time.Millisecond,
		Logger:    testLogger(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return opt.callCount() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case runErr := <-done:
		require.NoError(t, runErr)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}

func TestRunner_TickNotifiesOnFailure(t *testing.T) {
	var (
		mu       sync.Mutex
		payloads []notify.FailurePayload
	)
	notifier := failurenotifier.NewService(failurenotifier.Options{
		Logger: testLogger(),
		Sinks: []failurenotifier.SinkRegistration{{
			Name: "capture",
			Sink: notify.SinkFunc(func(_ context.Context, p notify.FailurePayload) error {
				mu.Lock()
				defer mu.Unlock()
				payloads = append(payloads, p)
				return nil
			}),
		}},
	})

	opt := &stubOptimizer{err: errors.New("db unavailable")}
	r, err := NewRunner(RunnerOptions{
		Optimizer: opt,
		Logger:    testLogger(),
		Notifier:  notifier,
	})
	require.NoError(t, err)

	r.tick(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, payloads, 1)
	assert.Equal(t, "autoplan", payloads[0].Component)
	assert.Equal(t, "optimize_schedule", payloads[0].Operation)
	assert.Contains(t, payloads[0].Error, "db unavailable")
}
