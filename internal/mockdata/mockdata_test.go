package mockdata_test

import (
	"context"
	"testing"
	"time"

	"github.com/queryai/queryai/internal/mockdata"
)

func TestMatchKeywords(t *testing.T) {
	cases := []struct {
		hint string
		want mockdata.Dataset
	}{
		{"SELECT * FROM users", mockdata.DatasetUsers},
		{"show me all USERS in New York", mockdata.DatasetUsers},
		{"list recent orders", mockdata.DatasetOrders},
		{"SELECT * FROM Orders WHERE status = 'pending'", mockdata.DatasetOrders},
		{"monthly revenue report", mockdata.DatasetRevenue},
		{"total SALES by month", mockdata.DatasetRevenue},
		{"hello world", mockdata.DatasetUsers}, // default
		{"", mockdata.DatasetUsers},
	}
	for _, c := range cases {
		if got := mockdata.Match(c.hint); got != c.want {
			t.Errorf("Match(%q) = %q, want %q", c.hint, got, c.want)
		}
	}
}

func TestRespondRowCounts(t *testing.T) {
	cases := []struct {
		hint string
		rows int
	}{
		{"users by city", 8},
		{"pending orders", 6},
		{"revenue per month", 6},
		{"something unmatched", 8},
	}
	for _, c := range cases {
		rows := mockdata.Respond(c.hint)
		if len(rows) != c.rows {
			t.Errorf("Respond(%q) returned %d rows, want %d", c.hint, len(rows), c.rows)
		}
	}
}

func TestRespondDeterministic(t *testing.T) {
	a := mockdata.Respond("orders")
	b := mockdata.Respond("ORDERS please")
	if len(a) != len(b) {
		t.Fatalf("same dataset returned different lengths: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i]["id"] != b[i]["id"] {
			t.Errorf("row %d: id %v != %v", i, a[i]["id"], b[i]["id"])
		}
	}
}

func TestJitterExecutorHonorsCancellation(t *testing.T) {
	e := mockdata.NewJitterExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := e.Execute(ctx, "users")
	if err == nil {
		t.Fatal("cancelled context should abort execution")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("cancelled execute took %v, expected immediate return", elapsed)
	}
}

func TestJitterExecutorDelayWindow(t *testing.T) {
	e := &mockdata.JitterExecutor{MinDelay: 10 * time.Millisecond, MaxDelay: 20 * time.Millisecond}
	start := time.Now()
	rows, err := e.Execute(context.Background(), "orders")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("execute returned after %v, want >= 10ms", elapsed)
	}
	if len(rows) != 6 {
		t.Errorf("got %d rows, want 6", len(rows))
	}
}

func TestInstantExecutor(t *testing.T) {
	rows, err := mockdata.Instant{}.Execute(context.Background(), "revenue")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(rows) != 6 {
		t.Errorf("got %d rows, want 6", len(rows))
	}
}
