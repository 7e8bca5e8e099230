package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abcd5251/PawXAI/internal/domain"
)

type mockReportGenerator struct {
	callCount atomic.Int32
	err       error
}

func (m *mockReportGenerator) Report(_ context.Context, _, _ string) (domain.PortfolioReport, error) {
	m.callCount.Add(1)
	return domain.PortfolioReport{TokenCount: 1}, m.err
}

type mockHook struct {
	callCount   atomic.Int32
	lastReports atomic.Int32
}

func (m *mockHook) Export(_ context.Context, reports []domain.AddressPortfolio) error {
	m.callCount.Add(1)
	m.lastReports.Store(int32(len(reports)))
	return nil
}

func TestReportWorkerRunsAndShutdown(t *testing.T) {
	mock := &mockReportGenerator{}
	w := NewReportWorker(mock, "8453", []string{"0xaaa", "0xbbb"}, 50*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := mock.callCount.Load(); got < 2 {
		t.Errorf("call count = %d, want >= 2 (one per address at startup)", got)
	}
}

func TestReportWorkerInvokesHook(t *testing.T) {
	mock := &mockReportGenerator{}
	hook := &mockHook{}
	w := NewReportWorker(mock, "8453", []string{"0xaaa"}, time.Hour, hook)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := hook.callCount.Load(); got < 1 {
		t.Errorf("hook call count = %d, want >= 1", got)
	}
	if got := hook.lastReports.Load(); got != 1 {
		t.Errorf("hook reports = %d, want 1", got)
	}
}

func TestReportWorkerSkipsHookWhenAllFail(t *testing.T) {
	mock := &mockReportGenerator{err: errors.New("upstream down")}
	hook := &mockHook{}
	w := NewReportWorker(mock, "8453", []string{"0xaaa"}, time.Hour, hook)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := hook.callCount.Load(); got != 0 {
		t.Errorf("hook call count = %d, want 0", got)
	}
}

func TestReportWorkerNoAddressesReturnsImmediately(t *testing.T) {
	mock := &mockReportGenerator{}
	w := NewReportWorker(mock, "8453", nil, time.Hour, nil)

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return without watch addresses")
	}
	if got := mock.callCount.Load(); got != 0 {
		t.Errorf("call count = %d, want 0", got)
	}
}
