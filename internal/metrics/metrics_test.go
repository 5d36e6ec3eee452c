package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestExportRepositoryRecords(t *testing.T) {
	m := NewExportRepository("mainnet")
	start := time.Now().Add(-time.Second)

	if inc := delta(t, exportRepositoryRequestsTotal.WithLabelValues("insert_unspent_outputs", "mainnet", "success"), func() {
		m.Observe("insert_unspent_outputs", nil, start)
	}); inc != 1 {
		t.Fatalf("expected success counter increment, got %v", inc)
	}

	if inc := delta(t, exportRepositoryRequestsTotal.WithLabelValues("insert_unspent_outputs", "mainnet", "error"), func() {
		m.Observe("insert_unspent_outputs", errors.New("boom"), start)
	}); inc != 1 {
		t.Fatalf("expected error counter increment, got %v", inc)
	}
}

func TestExportRepositoryDefaultsNetwork(t *testing.T) {
	m := NewExportRepository("")
	start := time.Now().Add(-time.Millisecond)

	if inc := delta(t, exportRepositoryRequestsTotal.WithLabelValues("insert_address_summaries", "unknown", "success"), func() {
		m.Observe("insert_address_summaries", nil, start)
	}); inc != 1 {
		t.Fatalf("expected unknown-network counter increment, got %v", inc)
	}
}

func TestQueryAPIRecords(t *testing.T) {
	m := NewQueryAPI("mainnet")
	start := time.Now().Add(-100 * time.Millisecond)

	if inc := delta(t, queryAPIRequestsTotal.WithLabelValues("/v1/blocks", "mainnet", "200"), func() {
		m.Observe("/v1/blocks", 200, start)
	}); inc != 1 {
		t.Fatalf("expected request counter increment, got %v", inc)
	}

	if inc := delta(t, queryAPIRequestsTotal.WithLabelValues("/v1/blocks", "mainnet", "404"), func() {
		m.Observe("/v1/blocks", 404, start)
	}); inc != 1 {
		t.Fatalf("expected 404 counter increment, got %v", inc)
	}
}
