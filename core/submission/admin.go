package submission

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/store"
)

// AdminPortal is the part of the portal API behind the admin pipeline and faculty screens.
type AdminPortal interface {
	Work(ctx context.Context) ([]WorkItem, error)
	UpdateWork(ctx context.Context, id string, upd WorkUpdate) error
	DeleteWork(ctx context.Context, id string) error
	Companies(ctx context.Context) ([]Company, error)
	AddCompany(ctx context.Context, c NewCompany) error
	DeleteCompany(ctx context.Context, id string) error

	FacultyMembers(ctx context.Context) ([]Faculty, error)
	CreateFaculty(ctx context.Context, nf NewFaculty) error
	UpdateFaculty(ctx context.Context, id string, uf UpdateFaculty) error
	DeleteFaculty(ctx context.Context, id string) error
}

// AdminService manages the incubation pipeline, the partner companies and the faculty accounts.
type AdminService struct {
	portal   AdminPortal
	validate *validator.Validate
	guard    *store.Guard

	work      *store.Store[WorkItem]
	companies *store.Store[Company]
	faculty   *store.Store[Faculty]
}

func NewAdminService(portal AdminPortal, validate *validator.Validate, guard *store.Guard) *AdminService {
	return &AdminService{
		portal:    portal,
		validate:  validate,
		guard:     guard,
		work:      store.New(portal.Work),
		companies: store.New(portal.Companies),
		faculty:   store.New(portal.FacultyMembers),
	}
}

func (svc *AdminService) Work(ctx context.Context) (store.Snapshot[WorkItem], error) {
	snap, err := svc.work.Refresh(ctx)
	return snap, errors.Wrap(err, "loading work items")
}

func (svc *AdminService) UpdateWork(ctx context.Context, id string, upd WorkUpdate) (store.Snapshot[WorkItem], error) {
	upd.Title = core.CleanString(upd.Title)
	upd.Description = core.CleanString(upd.Description)
	if upd.CompanyID != nil && core.CleanString(*upd.CompanyID) == "" {
		upd.CompanyID = nil
	}
	if err := upd.Validate(svc.validate); err != nil {
		return store.Snapshot[WorkItem]{}, err
	}
	err := svc.guard.Do("work:"+id, func() error {
		return errors.Wrap(svc.portal.UpdateWork(ctx, id, upd), "updating work item")
	})
	if err != nil {
		return store.Snapshot[WorkItem]{}, err
	}
	return svc.Work(ctx)
}

func (svc *AdminService) DeleteWork(ctx context.Context, id string) (store.Snapshot[WorkItem], error) {
	err := svc.guard.Do("work:"+id, func() error {
		return errors.Wrap(svc.portal.DeleteWork(ctx, id), "deleting work item")
	})
	if err != nil {
		return store.Snapshot[WorkItem]{}, err
	}
	return svc.Work(ctx)
}

func (svc *AdminService) Companies(ctx context.Context) (store.Snapshot[Company], error) {
	snap, err := svc.companies.Refresh(ctx)
	return snap, errors.Wrap(err, "loading companies")
}

func (svc *AdminService) AddCompany(ctx context.Context, c NewCompany) (store.Snapshot[Company], error) {
	c.Name = core.CleanString(c.Name)
	c.LogoURL = core.CleanString(c.LogoURL)
	if err := c.Validate(svc.validate); err != nil {
		return store.Snapshot[Company]{}, err
	}
	err := svc.guard.Do("company:new:"+c.Name, func() error {
		return errors.Wrap(svc.portal.AddCompany(ctx, c), "adding company")
	})
	if err != nil {
		return store.Snapshot[Company]{}, err
	}
	return svc.Companies(ctx)
}

// DeleteCompany removes a company; work items linked to it lose their company, so both lists are refetched.
func (svc *AdminService) DeleteCompany(ctx context.Context, id string) (store.Snapshot[Company], error) {
	err := svc.guard.Do("company:"+id, func() error {
		return errors.Wrap(svc.portal.DeleteCompany(ctx, id), "deleting company")
	})
	if err != nil {
		return store.Snapshot[Company]{}, err
	}
	if _, err = svc.Work(ctx); err != nil {
		return store.Snapshot[Company]{}, err
	}
	return svc.Companies(ctx)
}

func (svc *AdminService) Faculty(ctx context.Context) (store.Snapshot[Faculty], error) {
	snap, err := svc.faculty.Refresh(ctx)
	return snap, errors.Wrap(err, "loading faculty")
}

func (svc *AdminService) CreateFaculty(ctx context.Context, nf NewFaculty) (store.Snapshot[Faculty], error) {
	nf.Name = core.CleanString(nf.Name)
	nf.Email = core.CleanString(nf.Email, true)
	if err := nf.Validate(svc.validate); err != nil {
		return store.Snapshot[Faculty]{}, err
	}
	err := svc.guard.Do("faculty:new:"+nf.Email, func() error {
		return errors.Wrap(svc.portal.CreateFaculty(ctx, nf), "creating faculty")
	})
	if err != nil {
		return store.Snapshot[Faculty]{}, err
	}
	return svc.Faculty(ctx)
}

func (svc *AdminService) UpdateFaculty(ctx context.Context, id string, uf UpdateFaculty) (store.Snapshot[Faculty], error) {
	uf.Name = core.CleanString(uf.Name)
	uf.Email = core.CleanString(uf.Email, true)
	if err := uf.Validate(svc.validate); err != nil {
		return store.Snapshot[Faculty]{}, err
	}
	err := svc.guard.Do("faculty:"+id, func() error {
		return errors.Wrap(svc.portal.UpdateFaculty(ctx, id, uf), "updating faculty")
	})
	if err != nil {
		return store.Snapshot[Faculty]{}, err
	}
	return svc.Faculty(ctx)
}

func (svc *AdminService) DeleteFaculty(ctx context.Context, id string) (store.Snapshot[Faculty], error) {
	err := svc.guard.Do("faculty:"+id, func() error {
		return errors.Wrap(svc.portal.DeleteFaculty(ctx, id), "deleting faculty")
	})
	if err != nil {
		return store.Snapshot[Faculty]{}, err
	}
	return svc.Faculty(ctx)
}

// FindFaculty looks a faculty member up by id or email.
func (svc *AdminService) FindFaculty(ctx context.Context, idOrEmail string) (Faculty, error) {
	snap, err := svc.Faculty(ctx)
	if err != nil {
		return Faculty{}, err
	}
	key := core.CleanString(idOrEmail, true)
	for _, f := range snap.Items {
		if f.ID == idOrEmail || core.CleanString(f.Email, true) == key {
			return f, nil
		}
	}
	return Faculty{}, errors.Wrapf(core.ErrNotFound, "faculty %s", idOrEmail)
}
