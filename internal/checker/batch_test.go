package checker_test

import (
	"context"
	"encoding/json"
	"finder/internal/checker"
	"finder/pkg/domain"
	"finder/pkg/metrics"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCheckManyRespectsConcurrencyLimit(t *testing.T) {
	const (
		limit = 3
		total = 10
	)

	var (
		inFlight    atomic.Int32
		maxInFlight atomic.Int32
		release     = make(chan struct{})
	)

	opts := testOptions()
	opts.ConcurrencyLimit = limit
	opts.CheckContent = false
	opts.Timeout = 10 * time.Second

	c := newChecker(t, opts, rtFunc(func(req *http.Request) (*http.Response, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}

		select {
		case <-release:
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}

		return response(req, http.StatusOK, ""), nil
	}))

	urls := make([]string, 0, total)
	for i := range total {
		urls = append(urls, fmt.Sprintf("site%d.example.com", i))
	}

	done := make(chan struct{})
	var (
		results []domain.CheckResult
		stats   checker.Stats
		err     error
	)
	go func() {
		defer close(done)
		results, stats, err = c.CheckMany(context.Background(), urls, nil)
	}()

	require.Eventually(t, func() bool { return inFlight.Load() == limit }, 5*time.Second, 5*time.Millisecond)
	// the gate must hold the remaining probes back while the first ones block
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(limit), inFlight.Load())

	close(release)
	<-done

	require.NoError(t, err)
	require.Len(t, results, total)
	require.Equal(t, total, stats.TotalChecked)
	require.LessOrEqual(t, maxInFlight.Load(), int32(limit))
}

func TestCheckManyProgressAndStats(t *testing.T) {
	opts := testOptions()
	opts.ConcurrencyLimit = 4
	opts.CheckContent = false

	c := newChecker(t, opts, rtFunc(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Host {
		case "dead1.example.com":
			return nil, &net.DNSError{Err: "no such host", Name: req.URL.Host, IsNotFound: true}
		case "dead2.example.com":
			return response(req, http.StatusServiceUnavailable, ""), nil
		case "dead3.example.com":
			return response(req, http.StatusNotFound, ""), nil
		}

		return response(req, http.StatusOK, ""), nil
	}))

	urls := []string{
		"ok1.example.com", "", "dead1.example.com", "  ", "ok2.example.com",
		"dead2.example.com", "ok3.example.com", "dead3.example.com",
	}

	var calls []int
	results, stats, err := c.CheckMany(context.Background(), urls, func(completed, total int) {
		require.Equal(t, 6, total)
		calls = append(calls, completed)
	})
	require.NoError(t, err)
	require.Len(t, results, 6)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, calls)

	dead := 0
	for _, r := range results {
		if r.Status != domain.StatusOK && r.Status != domain.StatusNoWebsite {
			dead++
		}
	}
	require.Equal(t, 3, dead)
	require.Equal(t, checker.Stats{TotalChecked: 6, TotalDead: 3}, stats)
	require.InDelta(t, 50.0, stats.DeadPercentage(), 1e-9)
}

func TestCheckManyDeliversInCompletionOrder(t *testing.T) {
	opts := testOptions()
	opts.CheckContent = false

	c := newChecker(t, opts, rtFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == "slow.example.com" {
			time.Sleep(200 * time.Millisecond)
		}

		return response(req, http.StatusOK, ""), nil
	}))

	results, _, err := c.CheckMany(context.Background(), []string{"slow.example.com", "fast.example.com"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "https://fast.example.com", results[0].URL)
	require.Equal(t, "https://slow.example.com", results[1].URL)
}

func TestCheckManyCustomDeadStatuses(t *testing.T) {
	opts := testOptions()
	opts.CheckContent = false
	opts.DeadStatuses = domain.NewStatusSet(domain.StatusNoDNS)

	c := newChecker(t, opts, rtFunc(func(req *http.Request) (*http.Response, error) {
		return response(req, http.StatusInternalServerError, ""), nil
	}))

	_, stats, err := c.CheckMany(context.Background(), []string{"a.example.com", "b.example.com"}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalChecked)
	require.Zero(t, stats.TotalDead)
}

func TestCheckManyEmptyInput(t *testing.T) {
	c := newChecker(t, testOptions(), rtFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("no request expected")

		return nil, nil
	}))

	called := false
	results, stats, err := c.CheckMany(context.Background(), []string{"", " \t"}, func(int, int) { called = true })
	require.NoError(t, err)
	require.Empty(t, results)
	require.Zero(t, stats.TotalChecked)
	require.False(t, called)
}

func TestCheckStreamCancellation(t *testing.T) {
	opts := testOptions()
	opts.ConcurrencyLimit = 2
	opts.CheckContent = false
	opts.Timeout = 10 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newChecker(t, opts, rtFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == "fast.example.com" {
			return response(req, http.StatusOK, ""), nil
		}
		<-req.Context().Done()

		return nil, req.Context().Err()
	}))

	var (
		mu      sync.Mutex
		emitted []domain.CheckResult
	)
	stats, err := c.CheckStream(ctx, []string{"fast.example.com", "hang1.example.com", "hang2.example.com"},
		func(completed, _ int) {
			if completed == 1 {
				cancel()
			}
		},
		func(res domain.CheckResult) {
			mu.Lock()
			emitted = append(emitted, res)
			mu.Unlock()
		})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, stats.TotalChecked)
	require.Len(t, emitted, 1)
	require.Equal(t, "https://fast.example.com", emitted[0].URL)
}

func TestCheckManyRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewChecker(reg)
	require.NoError(t, err)

	opts := testOptions()
	opts.CheckContent = false

	c, err := checker.New(opts, checker.Deps{
		Transport: rtFunc(func(req *http.Request) (*http.Response, error) {
			return response(req, http.StatusBadGateway, ""), nil
		}),
		Metrics: m,
	})
	require.NoError(t, err)

	_, _, err = c.CheckMany(context.Background(), []string{"a.example.com", "b.example.com"}, nil)
	require.NoError(t, err)

	require.InDelta(t, 2, testutil.ToFloat64(m.Probes().WithLabelValues(string(domain.StatusHTTPError5xx))), 0)
	require.InDelta(t, 0, testutil.ToFloat64(m.InFlight()), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.DeadRatio()), 0)
}

func TestStatsJSON(t *testing.T) {
	data, err := json.Marshal(checker.Stats{TotalChecked: 4, TotalDead: 1})
	require.NoError(t, err)
	require.JSONEq(t, `{"totalChecked":4,"totalDead":1,"deadPercentage":25}`, string(data))
}
