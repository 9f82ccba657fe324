package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/you/go-flightscan/internal/providers"
)

// QueryOptions carries the per-query knobs shared by every public path.
type QueryOptions struct {
	Adults       int
	SeatType     string
	SortCheapest bool
	Stops        *int
	Limit        *int
}

func (o QueryOptions) withDefaults() QueryOptions {
	if o.Adults <= 0 {
		o.Adults = 1
	}
	if o.SeatType == "" {
		o.SeatType = "economy"
	}
	return o
}

// ScanParams describes one range scan: every valid (depart, return) pair
// between StartDate and EndDate gets its own round-trip query.
type ScanParams struct {
	Origin      string
	Destination string
	StartDate   string // YYYY-MM-DD
	EndDate     string // YYYY-MM-DD
	MinStayDays *int
	MaxStayDays *int
	QueryOptions

	// Progress, when set, observes scan progress on a diagnostic channel.
	// It is invoked every Nth attempted pair and is not part of the report.
	Progress ProgressFunc
}

type ProgressFunc func(pair DatePair, checked, total int)

// ScanResult is the outcome for one pair: either an offer list (possibly
// empty) or a classified error, never both.
type ScanResult struct {
	Pair   DatePair
	Offers []providers.FlightOffer
	Err    *ErrorInfo
}

// ScanReport aggregates one result per attempted pair, in enumeration order,
// plus the deduplicated error messages encountered along the way.
type ScanReport struct {
	Results      []ScanResult
	UniqueErrors []string
}

type ScanService struct {
	provider        providers.FlightProvider
	providerTimeout time.Duration
	concurrency     int
	progressEvery   int
}

func NewScanService(p providers.FlightProvider, timeout time.Duration, concurrency, progressEvery int) *ScanService {
	if concurrency < 1 {
		concurrency = 1
	}
	if progressEvery < 1 {
		progressEvery = 10
	}
	return &ScanService{
		provider:        p,
		providerTimeout: timeout,
		concurrency:     concurrency,
		progressEvery:   progressEvery,
	}
}

// ScanRange attempts every enumerated pair exactly once. A failure on one
// pair never aborts the scan: it is recorded on that pair's result and the
// remaining pairs are still attempted. Only bad input (date format, range)
// fails the whole call.
func (s *ScanService) ScanRange(ctx context.Context, p ScanParams) (*ScanReport, error) {
	start, errStart := time.Parse(dateLayout, p.StartDate)
	end, errEnd := time.Parse(dateLayout, p.EndDate)
	if errStart != nil || errEnd != nil {
		return nil, ErrorInfo{Kind: KindInvalidDateFormat, Message: "Invalid date format. Use YYYY-MM-DD."}
	}

	pairs, err := EnumeratePairs(start, end, p.MinStayDays, p.MaxStayDays)
	if err != nil {
		return nil, ErrorInfo{Kind: KindInvalidRange, Message: err.Error()}
	}

	opts := p.QueryOptions.withDefaults()
	total := len(pairs)
	log.Printf("scan: checking %d valid date combinations %s->%s between %s and %s",
		total, p.Origin, p.Destination, p.StartDate, p.EndDate)

	results := make([]ScanResult, total)

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	var mu sync.Mutex
	checked := 0

	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			mu.Lock()
			checked++
			n := checked
			mu.Unlock()
			if n%s.progressEvery == 0 {
				s.reportProgress(p.Progress, pair, n, total)
			}

			offers, qerr := s.queryPair(ctx, p.Origin, p.Destination, pair, opts)
			// indexed write keeps enumeration order without a re-sort
			if qerr != nil {
				results[i] = ScanResult{Pair: pair, Err: qerr}
			} else {
				results[i] = ScanResult{Pair: pair, Offers: offers}
			}
			return nil
		})
	}
	_ = g.Wait()

	report := &ScanReport{Results: results}
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		msg := r.Err.Error()
		if !seen[msg] {
			seen[msg] = true
			report.UniqueErrors = append(report.UniqueErrors, msg)
		}
	}

	log.Printf("scan: range search complete (%d pairs, %d unique errors)", total, len(report.UniqueErrors))
	return report, nil
}

func (s *ScanService) reportProgress(fn ProgressFunc, pair DatePair, checked, total int) {
	if fn != nil {
		fn(pair, checked, total)
		return
	}
	log.Printf("scan progress: checking %s -> %s (%d/%d)", pair.DepartStr(), pair.ReturnStr(), checked, total)
}

// queryPair runs the provider query for a single round-trip pair and applies
// offer post-processing. Any failure, including a panic inside the provider,
// comes back as a classified ErrorInfo rather than propagating.
func (s *ScanService) queryPair(ctx context.Context, origin, destination string, pair DatePair, opts QueryOptions) (offers []providers.FlightOffer, errInfo *ErrorInfo) {
	defer func() {
		if r := recover(); r != nil {
			offers = nil
			errInfo = &ErrorInfo{Kind: KindUnclassified, Message: fmt.Sprint(r)}
		}
	}()

	legs := []providers.FlightLeg{
		{Date: pair.DepartStr(), FromAirport: origin, ToAirport: destination},
		{Date: pair.ReturnStr(), FromAirport: destination, ToAirport: origin},
	}

	qctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	raw, err := s.provider.Query(qctx, legs, providers.RoundTrip, opts.SeatType, opts.Adults)
	if err != nil {
		ei := classify(err)
		log.Printf("scan: error fetching flights for %s -> %s: %s", pair.DepartStr(), pair.ReturnStr(), ei.Error())
		return nil, &ei
	}
	return ProcessOffers(raw, opts.Stops, opts.SortCheapest, opts.Limit), nil
}
