package providers

import (
	"context"
)

type TripKind string

const (
	OneWay    TripKind = "one-way"
	RoundTrip TripKind = "round-trip"
)

// FlightLeg is one directional segment of a query. Leg order matters:
// outbound before inbound for round trips.
type FlightLeg struct {
	Date        string `json:"date"` // YYYY-MM-DD
	FromAirport string `json:"from_airport"`
	ToAirport   string `json:"to_airport"`
}

// FlightOffer is one priced option returned by a provider. Every field is
// optional: the upstream source may omit any attribute and the rest of the
// pipeline must tolerate partial data.
type FlightOffer struct {
	IsBest           *bool   `json:"is_best"`
	CarrierName      *string `json:"name"`
	DepartureTime    *string `json:"departure"`
	ArrivalTime      *string `json:"arrival"`
	ArrivalDayOffset *string `json:"arrival_time_ahead"`
	Duration         *string `json:"duration"`
	StopCount        *int    `json:"stops"`
	Delay            *string `json:"delay"`
	Price            *string `json:"price"`
}

type FlightProvider interface {
	Name() string
	Query(ctx context.Context, legs []FlightLeg, trip TripKind, seat string, adults int) ([]FlightOffer, error)
}
