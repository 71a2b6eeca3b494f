package invitation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/store"
)

var NowFunc = time.Now // mockable

// Portal is the part of the portal API serving the faculty invitations.
type Portal interface {
	Invitations(ctx context.Context) ([]Invitation, error)
	RSVP(ctx context.Context, id string, req RSVPRequest) error
}

type (
	Item struct {
		Invitation Invitation `json:"invitation"`
		View       View       `json:"view"`
	}

	Listing struct {
		State  store.State `json:"state"`
		Filter FilterKey   `json:"filter"`
		Counts Counts      `json:"counts"`
		Items  []Item      `json:"items"`
	}
)

// Service drives the invitations screen. Answers are only reflected once the portal confirmed them.
type Service struct {
	portal      Portal
	validate    *validator.Validate
	guard       *store.Guard
	logger      core.Logger
	invitations *store.Store[Invitation]
}

func NewService(portal Portal, validate *validator.Validate, guard *store.Guard, logger core.Logger) *Service {
	return &Service{
		portal:      portal,
		validate:    validate,
		guard:       guard,
		logger:      logger,
		invitations: store.New(portal.Invitations),
	}
}

func (svc *Service) Invitations() *store.Store[Invitation] { return svc.invitations }

func (svc *Service) Load(ctx context.Context) (store.Snapshot[Invitation], error) {
	snap, err := svc.invitations.Refresh(ctx)
	return snap, errors.Wrap(err, "loading invitations")
}

// List loads the invitations and keeps those of the key's tab, as of now.
func (svc *Service) List(ctx context.Context, key FilterKey, now time.Time) (Listing, error) {
	snap, err := svc.Load(ctx)
	listing := Listing{State: snap.State, Filter: key, Items: []Item{}}
	if err != nil {
		return listing, err
	}
	listing.Counts = Count(snap.Items, now)
	for _, inv := range Filter(snap.Items, key, now) {
		listing.Items = append(listing.Items, Item{Invitation: inv, View: Project(inv, now)})
	}
	return listing, nil
}

func (svc *Service) find(ctx context.Context, id string, reload bool) (Invitation, error) {
	if reload || !svc.invitations.Loaded() {
		if _, err := svc.Load(ctx); err != nil {
			return Invitation{}, err
		}
	}
	for _, inv := range svc.invitations.Snapshot().Items {
		if inv.ID == id {
			return inv, nil
		}
	}
	return Invitation{}, errors.Wrapf(core.ErrNotFound, "invitation %s", id)
}

// Respond answers a pending invitation and returns it as refetched.
// The status is reloaded and checked while holding the record.
func (svc *Service) Respond(ctx context.Context, id string, action Action) (Item, error) {
	var (
		current Invitation
		next    Status
	)
	err := svc.guard.Do("rsvp:"+id, func() error {
		var err error
		if current, err = svc.find(ctx, id, true); err != nil {
			return err
		}
		if next, err = Respond(current.Status, action); err != nil {
			return err
		}
		req := RSVPRequest{Status: next}
		if err = req.Validate(svc.validate); err != nil {
			return err
		}
		return errors.Wrap(svc.portal.RSVP(ctx, id, req), "posting rsvp")
	})
	if err != nil {
		return Item{}, err
	}
	svc.logger.Info(fmt.Sprintf("invitation %s: %s -> %s", id, current.Status, next))

	now := NowFunc()
	updated, err := svc.find(ctx, id, true)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			current.Status = next
			return Item{Invitation: current, View: Project(current, now)}, nil
		}
		return Item{}, err
	}
	return Item{Invitation: updated, View: Project(updated, now)}, nil
}
