package service

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/you/go-flightscan/internal/providers"
)

// parsePrice extracts an integer amount from a display string like "$1,268".
// A missing or unparsable price sorts after every real one.
func parsePrice(price *string) int {
	if price == nil {
		return math.MaxInt
	}
	s := strings.TrimSpace(*price)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return math.MaxInt
	}
	return n
}

// ProcessOffers applies the per-query post-processing: exact stop-count
// filter (offers without stop data are dropped by the filter), optional
// cheapest-first ordering, then truncation. It never fails.
func ProcessOffers(offers []providers.FlightOffer, stops *int, sortCheapest bool, limit *int) []providers.FlightOffer {
	out := make([]providers.FlightOffer, 0, len(offers))
	for _, o := range offers {
		if stops != nil && (o.StopCount == nil || *o.StopCount != *stops) {
			continue
		}
		out = append(out, o)
	}

	if sortCheapest {
		// stable: ties keep their provider order so output is reproducible
		sort.SliceStable(out, func(i, j int) bool {
			return parsePrice(out[i].Price) < parsePrice(out[j].Price)
		})
	}

	if limit != nil && *limit >= 0 && len(out) > *limit {
		out = out[:*limit]
	}
	return out
}
