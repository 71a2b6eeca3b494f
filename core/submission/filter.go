package submission

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core/auth"
)

var ErrUnknownFilter = errors.New("unknown filter")

// FilterKey selects a tab of the review screens. `pending` is role scoped:
// admins wait on `submitted`, faculty on `admin_approved`.
type FilterKey string

const (
	FilterAll      FilterKey = "all"
	FilterPending  FilterKey = "pending"
	FilterApproved FilterKey = "approved"
	FilterRejected FilterKey = "rejected"
)

var FilterKeys = []FilterKey{FilterAll, FilterPending, FilterApproved, FilterRejected}

// ParseFilterKey validates a user supplied key; an empty key means FilterAll.
func ParseFilterKey(s string) (FilterKey, error) {
	key := FilterKey(strings.ToLower(strings.TrimSpace(s)))
	if key == "" {
		return FilterAll, nil
	}
	for _, k := range FilterKeys {
		if k == key {
			return key, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownFilter, "%q", s)
}

// tabStatuses lists, per role, the statuses shown in each tab (other than `all`).
var tabStatuses = map[auth.Role]map[FilterKey][]Status{
	auth.RoleAdmin: {
		FilterPending:  {StatusSubmitted},
		FilterApproved: {StatusAdminApproved, StatusApproved},
		FilterRejected: {StatusAdminRejected, StatusRejected},
	},
	auth.RoleFaculty: {
		FilterPending:  {StatusAdminApproved},
		FilterApproved: {StatusApproved},
		FilterRejected: {StatusRejected},
	},
}

// Matches reports whether a submission in the given status belongs to the key's tab for role.
func Matches(role auth.Role, key FilterKey, status Status) bool {
	if key == FilterAll {
		return true
	}
	for _, st := range tabStatuses[role][key] {
		if st == status {
			return true
		}
	}
	return false
}

// Tabs returns every tab a submission in the given status shows up in for role.
func Tabs(role auth.Role, status Status) []FilterKey {
	tabs := make([]FilterKey, 0, 2)
	for _, key := range FilterKeys {
		if Matches(role, key, status) {
			tabs = append(tabs, key)
		}
	}
	return tabs
}

// Filter keeps the submissions of the key's tab, in input order.
func Filter(subs []Submission, role auth.Role, key FilterKey) []Submission {
	filtered := make([]Submission, 0, len(subs))
	for _, s := range subs {
		if Matches(role, key, s.Status) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// Counts holds the number of submissions per tab and per mode.
type Counts struct {
	All            int `json:"all"`
	Pending        int `json:"pending"`
	Approved       int `json:"approved"`
	Rejected       int `json:"rejected"`
	PendingAdmin   int `json:"pending_admin"`
	PendingFaculty int `json:"pending_faculty"`
	FacultyDecided int `json:"faculty_decided"`
	Incubating     int `json:"incubating"`
}

func Count(subs []Submission, role auth.Role) Counts {
	c := Counts{All: len(subs)}
	for _, s := range subs {
		switch {
		case Matches(role, FilterPending, s.Status):
			c.Pending++
		case Matches(role, FilterApproved, s.Status):
			c.Approved++
		case Matches(role, FilterRejected, s.Status):
			c.Rejected++
		}
		switch ModeOf(s) {
		case ModePendingAdmin:
			c.PendingAdmin++
		case ModePendingFaculty:
			c.PendingFaculty++
		case ModeFacultyDecided:
			c.FacultyDecided++
		case ModeIncubating:
			c.Incubating++
		}
	}
	return c
}
