package invitation

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the RSVP status of an invitation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

// dateLayouts are the event date formats served by the portal, most common first.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "January 2, 2006", "Jan 2, 2006"}

// Invitation is a faculty member's invitation to an event.
type Invitation struct {
	ID        string    `json:"invitation_id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Location  string    `json:"location"`
	Price     string    `json:"price"`
	Status    Status    `json:"status"`
	InvitedAt time.Time `json:"invited_at"`
}

// EventTime parses the event date; ok is false when the date cannot be parsed.
func (inv Invitation) EventTime() (t time.Time, ok bool) {
	date := strings.TrimSpace(inv.Date)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, date, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsPast reports whether the event started before now. Undated events are never past.
func (inv Invitation) IsPast(now time.Time) bool {
	t, ok := inv.EventTime()
	return ok && t.Before(now)
}

// UnmarshalJSON also accepts the `id`, `event_date` and `venue` names used by older portal versions.
func (inv *Invitation) UnmarshalJSON(data []byte) error {
	type alias Invitation
	var raw struct {
		alias
		LegacyID  string `json:"id"`
		EventDate string `json:"event_date"`
		Venue     string `json:"venue"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*inv = Invitation(raw.alias)
	if inv.ID == "" {
		inv.ID = raw.LegacyID
	}
	if inv.Date == "" {
		inv.Date = raw.EventDate
	}
	if inv.Location == "" {
		inv.Location = raw.Venue
	}
	inv.Status = Status(strings.ToLower(strings.TrimSpace(string(inv.Status))))
	return nil
}
