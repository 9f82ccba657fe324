package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/you/go-flightscan/internal/config"
)

// FareAPI talks to a hosted flight-pricing API that fronts the actual
// fare scraping. The service treats it as a black box: no retries here.
type FareAPI struct {
	host   string
	token  string
	client *http.Client
}

func NewFareAPI(cfg *config.Config) *FareAPI {
	return &FareAPI{
		host:   cfg.FareAPIHost,
		token:  cfg.FareAPIToken,
		client: http.DefaultClient,
	}
}

func (f *FareAPI) Name() string {
	return "fareapi"
}

type fareAPIRequest struct {
	Legs []struct {
		Date        string `json:"date"`
		FromAirport string `json:"from_airport"`
		ToAirport   string `json:"to_airport"`
	} `json:"legs"`
	Trip   string `json:"trip"`
	Seat   string `json:"seat"`
	Adults int    `json:"adults"`
}

type fareAPIOffer struct {
	IsBest           *bool   `json:"is_best"`
	Name             *string `json:"name"`
	Departure        *string `json:"departure"`
	Arrival          *string `json:"arrival"`
	ArrivalTimeAhead *string `json:"arrival_time_ahead"`
	Duration         *string `json:"duration"`
	Stops            *int    `json:"stops"`
	Delay            *string `json:"delay"`
	Price            *string `json:"price"`
}

type fareAPIResponse struct {
	Flights []fareAPIOffer `json:"flights"`
}

func (f *FareAPI) Query(ctx context.Context, legs []FlightLeg, trip TripKind, seat string, adults int) ([]FlightOffer, error) {
	if f.token == "" {
		return nil, errors.New("fareapi token missing")
	}

	reqBody := fareAPIRequest{
		Trip:   string(trip),
		Seat:   seat,
		Adults: adults,
	}
	for _, l := range legs {
		reqBody.Legs = append(reqBody.Legs, struct {
			Date        string `json:"date"`
			FromAirport string `json:"from_airport"`
			ToAirport   string `json:"to_airport"`
		}{Date: l.Date, FromAirport: l.FromAirport, ToAirport: l.ToAirport})
	}
	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.host+"/v1/flights/search", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("fareapi: rate limited: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fareapi: %s", resp.Status)
	}

	var pr fareAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("fareapi: decode response: %w", err)
	}

	out := make([]FlightOffer, 0, len(pr.Flights))
	for _, o := range pr.Flights {
		out = append(out, FlightOffer{
			IsBest:           o.IsBest,
			CarrierName:      o.Name,
			DepartureTime:    o.Departure,
			ArrivalTime:      o.Arrival,
			ArrivalDayOffset: o.ArrivalTimeAhead,
			Duration:         o.Duration,
			StopCount:        o.Stops,
			Delay:            o.Delay,
			Price:            o.Price,
		})
	}
	return out, nil
}
