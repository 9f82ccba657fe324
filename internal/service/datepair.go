package service

import (
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

var ErrInvalidRange = errors.New("start date cannot be after end date")

// DatePair is one (departure, return) combination under consideration for a
// round trip. Depart is never after Return.
type DatePair struct {
	Depart time.Time
	Return time.Time
}

func (p DatePair) StayDays() int {
	return int(p.Return.Sub(p.Depart).Hours() / 24)
}

func (p DatePair) DepartStr() string { return p.Depart.Format(dateLayout) }
func (p DatePair) ReturnStr() string { return p.Return.Format(dateLayout) }

// EnumeratePairs yields every (depart, return) pair with both dates inside
// [start, end], return on or after depart, and the stay length inside the
// optional [minStay, maxStay] bounds. Order is depart ascending, then return
// ascending; the scan report relies on this order.
func EnumeratePairs(start, end time.Time, minStay, maxStay *int) ([]DatePair, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	var pairs []DatePair
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		for r := d; !r.After(end); r = r.AddDate(0, 0, 1) {
			stay := int(r.Sub(d).Hours() / 24)
			if minStay != nil && stay < *minStay {
				continue
			}
			if maxStay != nil && stay > *maxStay {
				continue
			}
			pairs = append(pairs, DatePair{Depart: d, Return: r})
		}
	}
	return pairs, nil
}
