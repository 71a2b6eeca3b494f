package invitation

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrUnknownFilter = errors.New("unknown invitation filter")

type FilterKey string

const (
	FilterAll      FilterKey = "all"
	FilterUpcoming FilterKey = "upcoming"
	FilterPast     FilterKey = "past"
	FilterPending  FilterKey = "pending"
)

var FilterKeys = []FilterKey{FilterAll, FilterUpcoming, FilterPast, FilterPending}

func ParseFilterKey(s string) (FilterKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for _, key := range FilterKeys {
		if string(key) == s {
			return key, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownFilter, "%q", s)
}

// Matches tells whether inv belongs to the key's tab. Upcoming and past are keyed on the event date,
// pending on the RSVP status.
func Matches(key FilterKey, inv Invitation, now time.Time) bool {
	switch key {
	case FilterAll:
		return true
	case FilterUpcoming:
		return !inv.IsPast(now)
	case FilterPast:
		return inv.IsPast(now)
	case FilterPending:
		return inv.Status == StatusPending
	}
	return false
}

// Filter keeps the invitations of the key's tab, in input order.
func Filter(invs []Invitation, key FilterKey, now time.Time) []Invitation {
	out := make([]Invitation, 0, len(invs))
	for _, inv := range invs {
		if Matches(key, inv, now) {
			out = append(out, inv)
		}
	}
	return out
}

type Counts struct {
	All      int `json:"all"`
	Upcoming int `json:"upcoming"`
	Past     int `json:"past"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
}

func Count(invs []Invitation, now time.Time) Counts {
	c := Counts{All: len(invs)}
	for _, inv := range invs {
		if inv.IsPast(now) {
			c.Past++
		} else {
			c.Upcoming++
		}
		switch inv.Status {
		case StatusPending:
			c.Pending++
		case StatusAccepted:
			c.Accepted++
		case StatusDeclined:
			c.Declined++
		}
	}
	return c
}
