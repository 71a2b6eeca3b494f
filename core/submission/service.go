package submission

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/auth"
	"github.com/trezcool/micportal/core/store"
)

var ErrActionNotAllowed = errors.New("action not available for this submission")

// ReviewPortal is the part of the portal API used by the review screens.
type ReviewPortal interface {
	AdminSubmissions(ctx context.Context) ([]Submission, error)
	AdminDecide(ctx context.Context, id string, req DecisionRequest) error
	AssignedFaculty(ctx context.Context, id string) ([]Assignment, error)
	AssignFaculty(ctx context.Context, id, facultyID string) error
	RemoveFaculty(ctx context.Context, id, facultyID string) error
	UpdateTags(ctx context.Context, id string, upd TagsUpdate) error

	FacultyReviews(ctx context.Context) ([]Submission, error)
	FacultyReview(ctx context.Context, id string) (Submission, error)
	FacultyDecide(ctx context.Context, id string, req DecisionRequest) error
	SubmitFeedback(ctx context.Context, fb FeedbackRequest) error
	FacultyProgress(ctx context.Context) ([]ProgressItem, error)
	FacultyPortfolio(ctx context.Context) ([]ProgressItem, error)
	FacultyCompanies(ctx context.Context) ([]Company, error)
	UpdateIncubation(ctx context.Context, id string, upd IncubationUpdate) error
	Profile(ctx context.Context) (Profile, error)
}

type (
	// Item is a submission along with its presentation state.
	Item struct {
		Submission Submission  `json:"submission"`
		View       View        `json:"view"`
		Tabs       []FilterKey `json:"tabs"`
	}

	// Listing is what a review screen shows for a filter key.
	Listing struct {
		State  store.State `json:"state"`
		Filter FilterKey   `json:"filter"`
		Counts Counts      `json:"counts"`
		Items  []Item      `json:"items"`
	}

	ProgressRow struct {
		ProgressItem
		StageLabel string `json:"stage_label"`
	}

	ProgressReport struct {
		State   store.State   `json:"state"`
		Items   []ProgressRow `json:"items"`
		Average int           `json:"average_progress"`
	}

	StageGroup struct {
		Stage Stage         `json:"stage"`
		Label string        `json:"label"`
		Items []ProgressRow `json:"items"`
	}

	Portfolio struct {
		Stages    []StageGroup `json:"stages"`
		Companies []Company    `json:"companies"`
	}
)

// Service drives the review screens of one logged in user.
// Writes are never applied locally: every successful write is followed by a refetch,
// and a failed write leaves the cached lists untouched.
type Service struct {
	portal   ReviewPortal
	role     auth.Role
	validate *validator.Validate
	guard    *store.Guard
	logger   core.Logger

	reviews  *store.Store[Submission]
	progress *store.Store[ProgressItem]
}

func NewService(
	portal ReviewPortal,
	role auth.Role,
	validate *validator.Validate,
	guard *store.Guard,
	logger core.Logger,
) *Service {
	svc := &Service{
		portal:   portal,
		role:     role,
		validate: validate,
		guard:    guard,
		logger:   logger,
	}
	svc.reviews = store.New(svc.fetchReviews)
	svc.progress = store.New(portal.FacultyProgress)
	return svc
}

func (svc *Service) Role() auth.Role { return svc.role }

// Reviews exposes the submissions store, for subscribers.
func (svc *Service) Reviews() *store.Store[Submission] { return svc.reviews }

func (svc *Service) fetchReviews(ctx context.Context) ([]Submission, error) {
	switch {
	case svc.role.IsAdmin():
		return svc.portal.AdminSubmissions(ctx)
	case svc.role.IsFaculty():
		return svc.portal.FacultyReviews(ctx)
	}
	return nil, errors.Wrapf(core.ErrForbidden, "role %q has no review screen", svc.role)
}

// Load refetches the submissions of the user's review screen.
func (svc *Service) Load(ctx context.Context) (store.Snapshot[Submission], error) {
	snap, err := svc.reviews.Refresh(ctx)
	return snap, errors.Wrap(err, "loading submissions")
}

// List loads the review screen and keeps the submissions of the key's tab.
func (svc *Service) List(ctx context.Context, key FilterKey) (Listing, error) {
	snap, err := svc.Load(ctx)
	listing := Listing{State: snap.State, Filter: key, Items: []Item{}}
	if err != nil {
		return listing, err
	}
	listing.Counts = Count(snap.Items, svc.role)
	for _, s := range Filter(snap.Items, svc.role, key) {
		listing.Items = append(listing.Items, svc.item(s))
	}
	return listing, nil
}

func (svc *Service) item(s Submission) Item {
	return Item{Submission: s, View: Project(s), Tabs: Tabs(svc.role, s.Status)}
}

// Get returns one submission with its presentation state.
func (svc *Service) Get(ctx context.Context, id string) (Item, error) {
	if svc.role.IsFaculty() {
		s, err := svc.portal.FacultyReview(ctx, id)
		if err != nil {
			return Item{}, errors.Wrap(err, "getting faculty review")
		}
		return svc.item(s), nil
	}
	s, err := svc.find(ctx, id, true)
	if err != nil {
		return Item{}, err
	}
	return svc.item(s), nil
}

// find looks id up in the cached list, loading it when needed (or always, when reload is set).
func (svc *Service) find(ctx context.Context, id string, reload bool) (Submission, error) {
	if reload || !svc.reviews.Loaded() {
		if _, err := svc.Load(ctx); err != nil {
			return Submission{}, err
		}
	}
	for _, s := range svc.reviews.Snapshot().Items {
		if s.ID == id {
			return s, nil
		}
	}
	return Submission{}, errors.Wrapf(core.ErrNotFound, "submission %s", id)
}

// Decide records the admin or faculty decision on a submission and returns it as refetched.
// The transition is checked against a fresh copy while holding the record.
func (svc *Service) Decide(ctx context.Context, id string, req DecisionRequest) (Item, error) {
	if err := req.Validate(svc.validate); err != nil {
		return Item{}, err
	}
	var (
		current Submission
		next    Status
	)
	err := svc.guard.Do("decision:"+id, func() error {
		var err error
		if current, err = svc.find(ctx, id, true); err != nil {
			return err
		}
		if next, err = Transition(svc.role, current.Status, req.Decision); err != nil {
			return err
		}
		if svc.role.IsAdmin() {
			return errors.Wrap(svc.portal.AdminDecide(ctx, id, req), "posting admin decision")
		}
		return errors.Wrap(svc.portal.FacultyDecide(ctx, id, req), "posting faculty decision")
	})
	if err != nil {
		return Item{}, err
	}
	svc.logger.Info(fmt.Sprintf("submission %s: %s -> %s", id, current.Status, next))

	updated, err := svc.find(ctx, id, true)
	if err != nil {
		// the faculty queue no longer lists decided submissions
		if errors.Cause(err) == core.ErrNotFound {
			current.Status = next
			return svc.item(current), nil
		}
		return Item{}, err
	}
	return svc.item(updated), nil
}

// requireAction loads the submission and checks its projection offers action.
func (svc *Service) requireAction(ctx context.Context, id string, action Action) error {
	if !svc.role.IsAdmin() {
		return errors.Wrapf(core.ErrForbidden, "%s is reserved to admins", action)
	}
	s, err := svc.find(ctx, id, false)
	if err != nil {
		return err
	}
	if !Project(s).Can(action) {
		return errors.Wrapf(ErrActionNotAllowed, "%s on a %q submission", action, s.Status)
	}
	return nil
}

func (svc *Service) AssignedFaculty(ctx context.Context, id string) ([]Assignment, error) {
	if !svc.role.IsAdmin() {
		return nil, errors.Wrap(core.ErrForbidden, "listing assigned faculty")
	}
	assignments, err := svc.portal.AssignedFaculty(ctx, id)
	return assignments, errors.Wrap(err, "listing assigned faculty")
}

func (svc *Service) AssignFaculty(ctx context.Context, id, facultyID string) ([]Assignment, error) {
	if err := svc.requireAction(ctx, id, ActionAssignFaculty); err != nil {
		return nil, err
	}
	if core.CleanString(facultyID) == "" {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "faculty_id", Error: "this field is required"})
	}
	err := svc.guard.Do("faculty:"+id, func() error {
		return errors.Wrap(svc.portal.AssignFaculty(ctx, id, facultyID), "assigning faculty")
	})
	if err != nil {
		return nil, err
	}
	return svc.afterAssignmentChange(ctx, id)
}

func (svc *Service) RemoveFaculty(ctx context.Context, id, facultyID string) ([]Assignment, error) {
	if err := svc.requireAction(ctx, id, ActionAssignFaculty); err != nil {
		return nil, err
	}
	err := svc.guard.Do("faculty:"+id, func() error {
		return errors.Wrap(svc.portal.RemoveFaculty(ctx, id, facultyID), "removing faculty")
	})
	if err != nil {
		return nil, err
	}
	return svc.afterAssignmentChange(ctx, id)
}

func (svc *Service) afterAssignmentChange(ctx context.Context, id string) ([]Assignment, error) {
	if _, err := svc.Load(ctx); err != nil {
		return nil, err
	}
	return svc.AssignedFaculty(ctx, id)
}

func (svc *Service) UpdateTags(ctx context.Context, id string, upd TagsUpdate) (Item, error) {
	if err := svc.requireAction(ctx, id, ActionEditTags); err != nil {
		return Item{}, err
	}
	upd = upd.Clean()
	err := svc.guard.Do("tags:"+id, func() error {
		return errors.Wrap(svc.portal.UpdateTags(ctx, id, upd), "updating tags")
	})
	if err != nil {
		return Item{}, err
	}
	updated, err := svc.find(ctx, id, true)
	if err != nil {
		return Item{}, err
	}
	return svc.item(updated), nil
}

// Feedback saves the faculty's overall feedback on a submission.
func (svc *Service) Feedback(ctx context.Context, id, text string) error {
	if !svc.role.IsFaculty() {
		return errors.Wrap(core.ErrForbidden, "feedback is reserved to faculty")
	}
	fb := FeedbackRequest{SubmissionID: id, OverallFeedback: core.CleanString(text)}
	if err := fb.Validate(svc.validate); err != nil {
		return err
	}
	return svc.guard.Do("feedback:"+id, func() error {
		return errors.Wrap(svc.portal.SubmitFeedback(ctx, fb), "saving feedback")
	})
}

// UpdateIncubation moves an incubated submission to any stage and sets its progress.
func (svc *Service) UpdateIncubation(ctx context.Context, id string, upd IncubationUpdate) (ProgressReport, error) {
	if !svc.role.IsFaculty() {
		return ProgressReport{}, errors.Wrap(core.ErrForbidden, "incubation updates are reserved to faculty")
	}
	upd.CompanyID = core.CleanString(upd.CompanyID)
	if err := upd.Validate(svc.validate); err != nil {
		return ProgressReport{}, err
	}
	err := svc.guard.Do("incubation:"+id, func() error {
		return errors.Wrap(svc.portal.UpdateIncubation(ctx, id, upd), "updating incubation")
	})
	if err != nil {
		return ProgressReport{}, err
	}
	return svc.Progress(ctx)
}

// Progress loads the submissions accepted by the faculty member.
func (svc *Service) Progress(ctx context.Context) (ProgressReport, error) {
	snap, err := svc.progress.Refresh(ctx)
	report := ProgressReport{State: snap.State, Items: progressRows(snap.Items)}
	if err != nil {
		return report, errors.Wrap(err, "loading progress")
	}
	if n := len(report.Items); n > 0 {
		var total int
		for _, row := range report.Items {
			total += row.ProgressPercent
		}
		report.Average = total / n
	}
	return report, nil
}

// Portfolio loads the incubation portfolio and the known companies concurrently.
func (svc *Service) Portfolio(ctx context.Context) (Portfolio, error) {
	var (
		items     []ProgressItem
		companies []Company
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = svc.portal.FacultyPortfolio(gctx)
		return errors.Wrap(err, "loading portfolio")
	})
	g.Go(func() (err error) {
		companies, err = svc.portal.FacultyCompanies(gctx)
		return errors.Wrap(err, "loading companies")
	})
	if err := g.Wait(); err != nil {
		return Portfolio{}, err
	}

	rows := progressRows(items)
	pf := Portfolio{Stages: make([]StageGroup, 0, len(Stages)), Companies: companies}
	for _, stage := range Stages {
		group := StageGroup{Stage: stage, Label: StageLabel(stage), Items: []ProgressRow{}}
		for _, row := range rows {
			if row.Stage == stage || (stage == StageUnderIncubation && !row.Stage.Known()) {
				group.Items = append(group.Items, row)
			}
		}
		pf.Stages = append(pf.Stages, group)
	}
	if pf.Companies == nil {
		pf.Companies = []Company{}
	}
	return pf, nil
}

func (svc *Service) Profile(ctx context.Context) (Profile, error) {
	p, err := svc.portal.Profile(ctx)
	return p, errors.Wrap(err, "loading profile")
}

// progressRows clamps progress values and adds the stage labels; an unset stage counts as under incubation.
func progressRows(items []ProgressItem) []ProgressRow {
	rows := make([]ProgressRow, 0, len(items))
	for _, it := range items {
		if it.Stage == StageUnset {
			it.Stage = StageUnderIncubation
		}
		it.ProgressPercent = core.ClampPercent(it.ProgressPercent)
		rows = append(rows, ProgressRow{ProgressItem: it, StageLabel: StageLabel(it.Stage)})
	}
	return rows
}
