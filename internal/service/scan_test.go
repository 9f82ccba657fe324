package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/you/go-flightscan/internal/providers"
)

func newTestScanService(p providers.FlightProvider, concurrency int) *ScanService {
	return NewScanService(p, 5*time.Second, concurrency, 10)
}

func TestScanRange_FailureIsolation(t *testing.T) {
	prov := &ProviderMock{
		name:      "mock",
		offers:    []providers.FlightOffer{priced("$300")},
		failDates: map[string]string{"2025-09-11": "connection reset"},
	}
	svc := newTestScanService(prov, 1)

	report, err := svc.ScanRange(context.Background(), ScanParams{
		Origin: "JFK", Destination: "MIA",
		StartDate: "2025-09-10", EndDate: "2025-09-12",
		MinStayDays: valToPtr(1),
	})
	require.NoError(t, err)

	// pairs: (10,11), (10,12), (11,12) -- only the last one fails
	require.Len(t, report.Results, 3)
	require.Nil(t, report.Results[0].Err)
	require.Nil(t, report.Results[1].Err)
	require.NotNil(t, report.Results[2].Err)
	require.Equal(t, KindProviderFailure, report.Results[2].Err.Kind)
	require.Empty(t, report.Results[2].Offers)

	require.Equal(t, []string{"ProviderFailure: connection reset"}, report.UniqueErrors)
}

func TestScanRange_ErrorDedup(t *testing.T) {
	prov := &ProviderMock{
		name: "mock",
		failDates: map[string]string{
			"2025-09-10": "upstream unavailable",
			"2025-09-11": "upstream unavailable",
		},
	}
	svc := newTestScanService(prov, 1)

	report, err := svc.ScanRange(context.Background(), ScanParams{
		Origin: "JFK", Destination: "MIA",
		StartDate: "2025-09-10", EndDate: "2025-09-12",
		MinStayDays: valToPtr(1),
	})
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	for i, r := range report.Results {
		if r.Err == nil {
			t.Fatalf("result %d: expected error", i)
		}
	}
	// identical rendered messages collapse to one entry
	require.Equal(t, []string{"ProviderFailure: upstream unavailable"}, report.UniqueErrors)
}

func TestScanRange_InvalidDateFormat(t *testing.T) {
	var calls int32
	prov := &ProviderMock{name: "mock", callCount: &calls}
	svc := newTestScanService(prov, 1)

	_, err := svc.ScanRange(context.Background(), ScanParams{
		Origin: "JFK", Destination: "MIA",
		StartDate: "2025-13-01", EndDate: "2025-09-12",
	})
	require.Error(t, err)

	var ei ErrorInfo
	require.ErrorAs(t, err, &ei)
	require.Equal(t, KindInvalidDateFormat, ei.Kind)
	// no enumeration, no provider calls
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestScanRange_InvalidRange(t *testing.T) {
	var calls int32
	prov := &ProviderMock{name: "mock", callCount: &calls}
	svc := newTestScanService(prov, 1)

	_, err := svc.ScanRange(context.Background(), ScanParams{
		Origin: "JFK", Destination: "MIA",
		StartDate: "2025-09-12", EndDate: "2025-09-10",
	})
	require.Error(t, err)

	var ei ErrorInfo
	require.ErrorAs(t, err, &ei)
	require.Equal(t, KindInvalidRange, ei.Kind)
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestScanRange_EmptyEnumeration(t *testing.T) {
	var calls int32
	prov := &ProviderMock{name: "mock", callCount: &calls}
	svc := newTestScanService(prov, 1)

	report, err := svc.ScanRange(context.Background(), ScanParams{
		Origin: "JFK", Destination: "MIA",
		StartDate: "2025-09-10", EndDate: "2025-09-12",
		MinStayDays: valToPtr(30),
	})
	require.NoError(t, err)
	require.Empty(t, report.Results)
	require.Empty(t, report.UniqueErrors)
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestScanRange_OffersProcessedPerPair(t *testing.T) {
	prov := &ProviderMock{
		name:   "mock",
		offers: []providers.FlightOffer{priced("$500"), priced("$200")},
	}
	svc := newTestScanService(prov, 1)

	report, err := svc.ScanRange(context.Background(), ScanParams{
		Origin: "JFK", Destination: "MIA",
		StartDate: "2025-09-10", EndDate: "2025-09-11",
		QueryOptions: QueryOptions{SortCheapest: true, Limit: valToPtr(1)},
	})
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	for i, r := range report.Results {
		require.Nil(t, r.Err)
		if len(r.Offers) != 1 || *r.Offers[0].Price != "$200" {
			t.Fatalf("result %d: expected the single cheapest offer, got %+v", i, r.Offers)
		}
	}
}

func TestScanRange_LegsBuiltOutboundThenInbound(t *testing.T) {
	prov := &ProviderMock{name: "mock"}
	svc := newTestScanService(prov, 1)

	_, err := svc.ScanRange(context.Background(), ScanParams{
		Origin: "DEN", Destination: "LAX",
		StartDate: "2025-09-10", EndDate: "2025-09-10",
	})
	require.NoError(t, err)

	queried := prov.queriedLegs()
	require.Len(t, queried, 1)
	require.Len(t, queried[0], 2)
	require.Equal(t, providers.FlightLeg{Date: "2025-09-10", FromAirport: "DEN", ToAirport: "LAX"}, queried[0][0])
	require.Equal(t, providers.FlightLeg{Date: "2025-09-10", FromAirport: "LAX", ToAirport: "DEN"}, queried[0][1])
}

func TestScanRange_ConcurrentKeepsEnumerationOrder(t *testing.T) {
	var calls int32
	prov := &ProviderMock{
		name:      "mock",
		offers:    []providers.FlightOffer{priced("$150")},
		delay:     5 * time.Millisecond,
		callCount: &calls,
	}
	svc := newTestScanService(prov, 4)

	report, err := svc.ScanRange(context.Background(), ScanParams{
		Origin: "JFK", Destination: "MIA",
		StartDate: "2025-09-01", EndDate: "2025-09-05",
	})
	require.NoError(t, err)

	// 5 days, no stay bounds -> 15 pairs, all attempted exactly once
	require.Len(t, report.Results, 15)
	require.Equal(t, int32(15), atomic.LoadInt32(&calls))

	for i := 1; i < len(report.Results); i++ {
		prev, cur := report.Results[i-1].Pair, report.Results[i].Pair
		if cur.Depart.Before(prev.Depart) {
			t.Fatalf("result order broken at %d", i)
		}
		if cur.Depart.Equal(prev.Depart) && !cur.Return.After(prev.Return) {
			t.Fatalf("result order broken at %d", i)
		}
	}
}

func TestScanRange_TimeoutIsIsolated(t *testing.T) {
	prov := &ProviderMock{
		name:  "mock",
		delay: 200 * time.Millisecond,
	}
	svc := NewScanService(prov, 20*time.Millisecond, 1, 10)

	report, err := svc.ScanRange(context.Background(), ScanParams{
		Origin: "JFK", Destination: "MIA",
		StartDate: "2025-09-10", EndDate: "2025-09-10",
	})
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	require.NotNil(t, report.Results[0].Err)
	require.Equal(t, KindTimeout, report.Results[0].Err.Kind)
}

func TestScanRange_ProgressCadence(t *testing.T) {
	prov := &ProviderMock{name: "mock"}
	svc := NewScanService(prov, 5*time.Second, 1, 2)

	var mu sync.Mutex
	var seen []int
	progress := func(pair DatePair, checked, total int) {
		mu.Lock()
		seen = append(seen, checked)
		mu.Unlock()
		require.Equal(t, 6, total)
	}

	_, err := svc.ScanRange(context.Background(), ScanParams{
		Origin: "JFK", Destination: "MIA",
		StartDate: "2025-09-01", EndDate: "2025-09-03",
		Progress: progress,
	})
	require.NoError(t, err)

	// 6 pairs, cadence 2 -> fired on the 2nd, 4th and 6th attempt
	require.Equal(t, []int{2, 4, 6}, seen)
}

func TestOnDate(t *testing.T) {
	prov := &ProviderMock{
		name:   "mock",
		offers: []providers.FlightOffer{priced("$500"), priced("$200")},
	}
	svc := newTestScanService(prov, 1)

	offers, err := svc.OnDate(context.Background(), "SFO", "JFK", "2025-07-20",
		QueryOptions{SortCheapest: true})
	require.NoError(t, err)
	require.Len(t, offers, 2)
	require.Equal(t, "$200", *offers[0].Price)

	queried := prov.queriedLegs()
	require.Len(t, queried, 1)
	require.Len(t, queried[0], 1) // one-way builds a single leg
}

func TestOnDate_InvalidDate(t *testing.T) {
	var calls int32
	prov := &ProviderMock{name: "mock", callCount: &calls}
	svc := newTestScanService(prov, 1)

	_, err := svc.OnDate(context.Background(), "SFO", "JFK", "07/20/2025", QueryOptions{})
	require.Error(t, err)

	var ei ErrorInfo
	require.ErrorAs(t, err, &ei)
	require.Equal(t, KindInvalidDateFormat, ei.Kind)
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestRoundTripOnDates(t *testing.T) {
	prov := &ProviderMock{
		name:   "mock",
		offers: []providers.FlightOffer{pricedWithStops("$400", 0), pricedWithStops("$250", 1)},
	}
	svc := newTestScanService(prov, 1)

	offers, err := svc.RoundTripOnDates(context.Background(), "DEN", "LAX",
		"2025-08-01", "2025-08-08", QueryOptions{Stops: valToPtr(0)})
	require.NoError(t, err)
	require.Len(t, offers, 1)
	require.Equal(t, "$400", *offers[0].Price)

	queried := prov.queriedLegs()
	require.Len(t, queried, 1)
	require.Len(t, queried[0], 2)
	require.Equal(t, "2025-08-08", queried[0][1].Date)
}

func TestRoundTripOnDates_ProviderFailure(t *testing.T) {
	prov := &ProviderMock{name: "mock", errorOutMessage: valToPtr("no results")}
	svc := newTestScanService(prov, 1)

	_, err := svc.RoundTripOnDates(context.Background(), "DEN", "LAX",
		"2025-08-01", "2025-08-08", QueryOptions{})
	require.Error(t, err)

	var ei ErrorInfo
	require.ErrorAs(t, err, &ei)
	require.Equal(t, KindProviderFailure, ei.Kind)
	require.Equal(t, "no results", ei.Message)
	require.False(t, errors.Is(err, ErrInvalidRange))
}
