package mocks

import (
	"context"

	"github.com/phrazzld/user-api/internal/store"
)

// MockTxRunner implements store.TxRunner by invoking the function with a
// nil transaction. The mock stores ignore WithTx, so services under test
// run their transactional body directly.
type MockTxRunner struct {
	// RunFn overrides the pass-through behavior when set.
	RunFn func(ctx context.Context, fn store.TxFn) error

	// BeginCalls counts the transactions that were started.
	BeginCalls int
}

// Ensure MockTxRunner implements store.TxRunner interface
var _ store.TxRunner = (*MockTxRunner)(nil)

// RunInTransaction implements the TxRunner interface.
func (m *MockTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	m.BeginCalls++

	if m.RunFn != nil {
		return m.RunFn(ctx, fn)
	}

	return fn(ctx, nil)
}

// MockMetricsSink implements metrics.Sink, recording every increment.
type MockMetricsSink struct {
	Counts map[string]int
}

// NewMockMetricsSink creates an empty metrics sink recorder.
func NewMockMetricsSink() *MockMetricsSink {
	return &MockMetricsSink{Counts: make(map[string]int)}
}

// IncrementCounter implements the metrics.Sink interface.
func (m *MockMetricsSink) IncrementCounter(ctx context.Context, name string) {
	m.Counts[name]++
}
