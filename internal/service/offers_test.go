package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/you/go-flightscan/internal/providers"
)

func priced(price string) providers.FlightOffer {
	return providers.FlightOffer{Price: valToPtr(price)}
}

func pricedWithStops(price string, stops int) providers.FlightOffer {
	return providers.FlightOffer{Price: valToPtr(price), StopCount: valToPtr(stops)}
}

func TestProcessOffers_SortCheapestWithLimit(t *testing.T) {
	in := []providers.FlightOffer{priced("$500"), priced("$200")}

	out := ProcessOffers(in, nil, true, valToPtr(1))
	require.Len(t, out, 1)
	require.Equal(t, "$200", *out[0].Price)
}

func TestProcessOffers_SortIsNonDecreasing(t *testing.T) {
	in := []providers.FlightOffer{
		priced("$1,268"), priced("$90"), priced("$450"), priced("$90"),
	}

	out := ProcessOffers(in, nil, true, nil)
	require.Len(t, out, 4)
	for i := 1; i < len(out); i++ {
		if parsePrice(out[i-1].Price) > parsePrice(out[i].Price) {
			t.Fatalf("prices out of order at %d: %s > %s", i, *out[i-1].Price, *out[i].Price)
		}
	}
}

func TestProcessOffers_UnparsablePriceSortsLast(t *testing.T) {
	in := []providers.FlightOffer{
		{Price: nil},
		priced("$300"),
		priced("not a price"),
		priced("$100"),
	}

	out := ProcessOffers(in, nil, true, nil)
	require.Len(t, out, 4)
	require.Equal(t, "$100", *out[0].Price)
	require.Equal(t, "$300", *out[1].Price)
	// the two unpriceable ones keep their relative order after all real prices
	require.Nil(t, out[2].Price)
	require.Equal(t, "not a price", *out[3].Price)
}

func TestProcessOffers_StableTies(t *testing.T) {
	a := pricedWithStops("$200", 0)
	b := pricedWithStops("$200", 1)
	c := pricedWithStops("$200", 2)

	out := ProcessOffers([]providers.FlightOffer{a, b, c}, nil, true, nil)
	require.Len(t, out, 3)
	require.Equal(t, 0, *out[0].StopCount)
	require.Equal(t, 1, *out[1].StopCount)
	require.Equal(t, 2, *out[2].StopCount)
}

func TestProcessOffers_StopsFilter(t *testing.T) {
	in := []providers.FlightOffer{
		pricedWithStops("$100", 0),
		pricedWithStops("$200", 1),
		priced("$300"), // no stop data: the filter drops it
		pricedWithStops("$400", 0),
	}

	out := ProcessOffers(in, valToPtr(0), false, nil)
	require.Len(t, out, 2)
	require.Equal(t, "$100", *out[0].Price)
	require.Equal(t, "$400", *out[1].Price)
}

func TestProcessOffers_NoLimitNoSort(t *testing.T) {
	in := []providers.FlightOffer{priced("$500"), priced("$200"), priced("$300")}

	out := ProcessOffers(in, nil, false, nil)
	require.Len(t, out, 3)
	// input order preserved when no sort requested
	require.Equal(t, "$500", *out[0].Price)
	require.Equal(t, "$200", *out[1].Price)
	require.Equal(t, "$300", *out[2].Price)
}

func TestProcessOffers_EmptyInput(t *testing.T) {
	out := ProcessOffers(nil, valToPtr(0), true, valToPtr(10))
	require.NotNil(t, out)
	require.Empty(t, out)
}
