package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/you/go-flightscan/internal/providers"
	"github.com/you/go-flightscan/internal/service"
)

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type onDateResponse struct {
	Flights []providers.FlightOffer `json:"flights"`
}

type roundTripResponse struct {
	RoundTripOptions []providers.FlightOffer `json:"round_trip_options"`
}

type pairOptions struct {
	DepartureDate string                  `json:"departure_date"`
	ReturnDate    string                  `json:"return_date"`
	Flights       []providers.FlightOffer `json:"flights"`
}

type rangeResponse struct {
	AllRoundTripOptions []pairOptions `json:"all_round_trip_options"`
	ErrorsEncountered   []string      `json:"errors_encountered"` // null when none
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var ei service.ErrorInfo
	if !errors.As(err, &ei) {
		ei = service.ErrorInfo{Kind: service.KindUnclassified, Message: err.Error()}
	}
	writeJSON(w, statusForKind(ei.Kind), errorResponse{Error: errorBody{Message: ei.Message, Type: ei.Kind}})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{Message: msg, Type: "ValueError"}})
}

func statusForKind(kind string) int {
	switch kind {
	case service.KindInvalidDateFormat, service.KindInvalidRange:
		return http.StatusBadRequest
	case service.KindProviderFailure, service.KindTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func optionalInt(q url.Values, key string) (*int, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &n, nil
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}

func queryOptionsFromQuery(q url.Values) (service.QueryOptions, error) {
	opts := service.QueryOptions{
		SeatType:     q.Get("seat_type"),
		SortCheapest: parseBool(q.Get("sort_cheapest")),
	}

	adults, err := optionalInt(q, "adults")
	if err != nil {
		return opts, err
	}
	if adults != nil {
		opts.Adults = *adults
	}

	if opts.Stops, err = optionalInt(q, "stops"); err != nil {
		return opts, err
	}

	limit, err := optionalInt(q, "limit")
	if err != nil {
		return opts, err
	}
	switch {
	case limit == nil:
		ten := 10
		opts.Limit = &ten
	case *limit < 0:
		// negative limit means unbounded
		opts.Limit = nil
	default:
		opts.Limit = limit
	}
	return opts, nil
}

func OnDateHandler(svc *service.ScanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		origin := strings.ToUpper(q.Get("origin"))
		dest := strings.ToUpper(q.Get("destination"))
		date := q.Get("date")
		if origin == "" || dest == "" || date == "" {
			writeBadRequest(w, "origin, destination and date are required")
			return
		}
		opts, err := queryOptionsFromQuery(q)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}

		offers, err := svc.OnDate(r.Context(), origin, dest, date, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		if len(offers) == 0 {
			writeJSON(w, http.StatusOK, messageResponse{
				Message: fmt.Sprintf("No flights found for %s -> %s on %s.", origin, dest, date),
			})
			return
		}
		writeJSON(w, http.StatusOK, onDateResponse{Flights: offers})
	}
}

func RoundTripHandler(svc *service.ScanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		origin := strings.ToUpper(q.Get("origin"))
		dest := strings.ToUpper(q.Get("destination"))
		depDate := q.Get("departure_date")
		retDate := q.Get("return_date")
		if origin == "" || dest == "" || depDate == "" || retDate == "" {
			writeBadRequest(w, "origin, destination, departure_date and return_date are required")
			return
		}
		opts, err := queryOptionsFromQuery(q)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}

		offers, err := svc.RoundTripOnDates(r.Context(), origin, dest, depDate, retDate, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		if len(offers) == 0 {
			writeJSON(w, http.StatusOK, messageResponse{
				Message: fmt.Sprintf("No round trip flights found for %s <-> %s from %s to %s.", origin, dest, depDate, retDate),
			})
			return
		}
		writeJSON(w, http.StatusOK, roundTripResponse{RoundTripOptions: offers})
	}
}

func scanParamsFromQuery(origin, dest string, q url.Values) (service.ScanParams, error) {
	params := service.ScanParams{
		Origin:      origin,
		Destination: dest,
		StartDate:   q.Get("start_date"),
		EndDate:     q.Get("end_date"),
	}
	if params.StartDate == "" || params.EndDate == "" {
		return params, errors.New("start_date and end_date are required")
	}

	var err error
	if params.MinStayDays, err = optionalInt(q, "min_stay_days"); err != nil {
		return params, err
	}
	if params.MaxStayDays, err = optionalInt(q, "max_stay_days"); err != nil {
		return params, err
	}
	params.QueryOptions, err = queryOptionsFromQuery(q)
	return params, err
}

// renderReport maps the scan report onto the wire document: one entry per
// attempted pair in enumeration order, errored pairs with an empty flight
// list, and the deduplicated error messages (null when there were none).
func renderReport(report *service.ScanReport) rangeResponse {
	out := rangeResponse{
		AllRoundTripOptions: make([]pairOptions, 0, len(report.Results)),
		ErrorsEncountered:   report.UniqueErrors,
	}
	for _, res := range report.Results {
		flights := res.Offers
		if flights == nil {
			flights = []providers.FlightOffer{}
		}
		out.AllRoundTripOptions = append(out.AllRoundTripOptions, pairOptions{
			DepartureDate: res.Pair.DepartStr(),
			ReturnDate:    res.Pair.ReturnStr(),
			Flights:       flights,
		})
	}
	return out
}

func RangeHandler(svc *service.ScanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		origin := strings.ToUpper(q.Get("origin"))
		dest := strings.ToUpper(q.Get("destination"))
		if origin == "" || dest == "" {
			writeBadRequest(w, "origin and destination are required")
			return
		}
		params, err := scanParamsFromQuery(origin, dest, q)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}

		report, err := svc.ScanRange(r.Context(), params)
		if err != nil {
			writeError(w, err)
			return
		}
		if len(report.Results) == 0 && len(report.UniqueErrors) == 0 {
			writeJSON(w, http.StatusOK, messageResponse{
				Message: fmt.Sprintf("No valid date combinations for %s -> %s between %s and %s.",
					origin, dest, params.StartDate, params.EndDate),
			})
			return
		}
		writeJSON(w, http.StatusOK, renderReport(report))
	}
}
