package invitation

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
)

var (
	ErrTerminal      = errors.New("invitation already answered")
	ErrUnknownAction = errors.New("unknown rsvp action")
)

// Action is an answer to an invitation.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
)

// ParseAction accepts both the verb and the resulting status ("accept" or "accepted").
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", string(StatusAccepted):
		return ActionAccept, nil
	case "decline", string(StatusDeclined):
		return ActionDecline, nil
	}
	return "", errors.Wrapf(ErrUnknownAction, "%q", s)
}

// Status is the status an invitation takes once answered with a.
func (a Action) Status() Status {
	if a == ActionAccept {
		return StatusAccepted
	}
	return StatusDeclined
}

// Respond applies an answer to a pending invitation. Answers are final: any other status is terminal.
func Respond(from Status, a Action) (Status, error) {
	if a != ActionAccept && a != ActionDecline {
		return from, errors.Wrapf(ErrUnknownAction, "%q", a)
	}
	if from != StatusPending {
		return from, errors.Wrapf(ErrTerminal, "cannot %s a %q invitation", a, from)
	}
	return a.Status(), nil
}

// RSVPRequest is the body posted to the portal.
type RSVPRequest struct {
	Status Status `json:"status" validate:"required,rsvp"`
}

func (r RSVPRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

var (
	rsvpTag  = "rsvp"
	rsvpText = "status must be one of: accepted, declined"
)

// InitValidators registers the rsvp validator; core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnumValidation(validate, translator, rsvpTag, rsvpText, string(StatusAccepted), string(StatusDeclined))
}
