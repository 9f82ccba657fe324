package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/you/go-flightscan/internal/providers"
)

// ProviderMock fails on the leg dates listed in failDates, otherwise returns
// its canned offers. It records every queried leg set for order assertions.
type ProviderMock struct {
	name            string
	offers          []providers.FlightOffer
	delay           time.Duration
	errorOutMessage *string
	failDates       map[string]string // depart date -> error message
	callCount       *int32

	mu      sync.Mutex
	queried [][]providers.FlightLeg
}

func (p *ProviderMock) Name() string {
	return p.name
}

func (p *ProviderMock) Query(ctx context.Context, legs []providers.FlightLeg, trip providers.TripKind, seat string, adults int) ([]providers.FlightOffer, error) {
	if p.callCount != nil {
		atomic.AddInt32(p.callCount, 1)
	}
	p.mu.Lock()
	p.queried = append(p.queried, legs)
	p.mu.Unlock()

	if p.errorOutMessage != nil {
		return nil, errors.New(*p.errorOutMessage)
	}
	if len(legs) > 0 {
		if msg, ok := p.failDates[legs[0].Date]; ok {
			return nil, errors.New(msg)
		}
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.offers, nil
}

func (p *ProviderMock) queriedLegs() [][]providers.FlightLeg {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]providers.FlightLeg, len(p.queried))
	copy(out, p.queried)
	return out
}
