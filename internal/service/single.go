package service

import (
	"context"
	"fmt"
	"time"

	"github.com/you/go-flightscan/internal/providers"
)

// OnDate fetches one-way offers for a single date. The returned error, when
// non-nil, is always an ErrorInfo.
func (s *ScanService) OnDate(ctx context.Context, origin, destination, date string, opts QueryOptions) ([]providers.FlightOffer, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrorInfo{
			Kind:    KindInvalidDateFormat,
			Message: fmt.Sprintf("Invalid date format: '%s'. Please use YYYY-MM-DD.", date),
		}
	}

	legs := []providers.FlightLeg{
		{Date: date, FromAirport: origin, ToAirport: destination},
	}
	return s.querySingle(ctx, legs, providers.OneWay, opts)
}

// RoundTripOnDates fetches round-trip offers for one fixed (departure,
// return) date pair. This is the one-pair special case of the range scan.
func (s *ScanService) RoundTripOnDates(ctx context.Context, origin, destination, departureDate, returnDate string, opts QueryOptions) ([]providers.FlightOffer, error) {
	_, errDep := time.Parse(dateLayout, departureDate)
	_, errRet := time.Parse(dateLayout, returnDate)
	if errDep != nil || errRet != nil {
		return nil, ErrorInfo{
			Kind:    KindInvalidDateFormat,
			Message: "Invalid date format provided. Use YYYY-MM-DD.",
		}
	}

	legs := []providers.FlightLeg{
		{Date: departureDate, FromAirport: origin, ToAirport: destination},
		{Date: returnDate, FromAirport: destination, ToAirport: origin},
	}
	return s.querySingle(ctx, legs, providers.RoundTrip, opts)
}

func (s *ScanService) querySingle(ctx context.Context, legs []providers.FlightLeg, trip providers.TripKind, opts QueryOptions) ([]providers.FlightOffer, error) {
	opts = opts.withDefaults()

	qctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	raw, err := s.provider.Query(qctx, legs, trip, opts.SeatType, opts.Adults)
	if err != nil {
		return nil, classify(err)
	}
	return ProcessOffers(raw, opts.Stops, opts.SortCheapest, opts.Limit), nil
}
