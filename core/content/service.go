package content

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/store"
)

// Portal is the part of the portal API managing the site content.
type Portal interface {
	Contents(ctx context.Context) ([]Content, error)
	CreateContent(ctx context.Context, in Input) error
	UpdateContent(ctx context.Context, id string, in Input) error
	DeleteContent(ctx context.Context, id string) error
}

type (
	Item struct {
		Content   Content `json:"content"`
		TypeLabel string  `json:"type_label"`
	}

	Listing struct {
		State store.State `json:"state"`
		Tab   Tab         `json:"tab"`
		Items []Item      `json:"items"`
	}
)

type Service struct {
	portal   Portal
	validate *validator.Validate
	guard    *store.Guard
	contents *store.Store[Content]
}

func NewService(portal Portal, validate *validator.Validate, guard *store.Guard) *Service {
	return &Service{
		portal:   portal,
		validate: validate,
		guard:    guard,
		contents: store.New(portal.Contents),
	}
}

// List loads every content block and keeps those of the tab, ordered by their order index.
func (svc *Service) List(ctx context.Context, tab Tab) (Listing, error) {
	snap, err := svc.contents.Refresh(ctx)
	listing := Listing{State: snap.State, Tab: tab, Items: []Item{}}
	if err != nil {
		return listing, errors.Wrap(err, "loading contents")
	}
	for _, c := range snap.Items {
		if tab.Has(c.Type) {
			listing.Items = append(listing.Items, Item{Content: c, TypeLabel: c.Type.Label()})
		}
	}
	sort.SliceStable(listing.Items, func(i, j int) bool {
		return listing.Items[i].Content.OrderIndex < listing.Items[j].Content.OrderIndex
	})
	if len(listing.Items) == 0 && listing.State == store.StateReady {
		listing.State = store.StateEmpty
	}
	return listing, nil
}

// Create adds a content block and returns the refreshed tab it belongs to.
func (svc *Service) Create(ctx context.Context, in Input) (Listing, error) {
	in = in.Clean()
	if err := in.Validate(svc.validate); err != nil {
		return Listing{}, err
	}
	err := svc.guard.Do("content:new:"+string(in.Type)+":"+in.Title, func() error {
		return errors.Wrap(svc.portal.CreateContent(ctx, in), "creating content")
	})
	if err != nil {
		return Listing{}, err
	}
	return svc.List(ctx, TabOf(in.Type))
}

func (svc *Service) Update(ctx context.Context, id string, in Input) (Listing, error) {
	if core.CleanString(id) == "" {
		return Listing{}, errors.Wrap(core.ErrNotFound, "content without id")
	}
	in = in.Clean()
	if err := in.Validate(svc.validate); err != nil {
		return Listing{}, err
	}
	err := svc.guard.Do("content:"+id, func() error {
		return errors.Wrap(svc.portal.UpdateContent(ctx, id, in), "updating content")
	})
	if err != nil {
		return Listing{}, err
	}
	return svc.List(ctx, TabOf(in.Type))
}

// Delete removes a content block and returns the refreshed tab.
func (svc *Service) Delete(ctx context.Context, id string, tab Tab) (Listing, error) {
	err := svc.guard.Do("content:"+id, func() error {
		return errors.Wrap(svc.portal.DeleteContent(ctx, id), "deleting content")
	})
	if err != nil {
		return Listing{}, err
	}
	return svc.List(ctx, tab)
}
