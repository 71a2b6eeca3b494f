package invitation

import (
	"time"

	"github.com/trezcool/micportal/core/submission"
)

type View struct {
	Label   string           `json:"label"`
	Color   submission.Color `json:"color"`
	Actions []Action         `json:"actions"`
	Past    bool             `json:"is_past"`
	When    string           `json:"when"`
}

func (v View) Can(a Action) bool {
	for _, action := range v.Actions {
		if action == a {
			return true
		}
	}
	return false
}

// Project derives the presentation state of an invitation. Only pending invitations can be answered.
func Project(inv Invitation, now time.Time) View {
	v := View{Actions: []Action{}, Past: inv.IsPast(now), When: "Upcoming event"}
	if v.Past {
		v.When = "Past event"
	}

	switch inv.Status {
	case StatusPending:
		v.Label, v.Color = "Awaiting your RSVP", submission.ColorOrange
		v.Actions = []Action{ActionAccept, ActionDecline}
	case StatusAccepted:
		v.Label, v.Color = "You have accepted", submission.ColorGreen
	case StatusDeclined:
		v.Label, v.Color = "You have declined", submission.ColorRed
	default:
		v.Label, v.Color = string(inv.Status), submission.ColorGray
	}
	return v
}
