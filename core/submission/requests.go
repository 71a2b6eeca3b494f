package submission

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/micportal/core"
)

type (
	DecisionRequest struct {
		Decision Decision `json:"decision" validate:"required,decision"`
		Reason   string   `json:"reason,omitempty"`
	}

	TagsUpdate struct {
		Domain string   `json:"domain"`
		Tags   []string `json:"tags"`
	}

	IncubationUpdate struct {
		Stage           Stage  `json:"stage" validate:"required,stage"`
		ProgressPercent int    `json:"progress_percent" validate:"min=0,max=100"`
		CompanyID       string `json:"company_id"`
	}

	WorkUpdate struct {
		Title           string  `json:"title" validate:"required,notblank"`
		Description     string  `json:"description"`
		Stage           Stage   `json:"stage" validate:"required,stage"`
		ProgressPercent int     `json:"progress_percent" validate:"min=0,max=100"`
		CompanyID       *string `json:"company_id"`
	}

	NewCompany struct {
		Name    string `json:"name" validate:"required,notblank"`
		LogoURL string `json:"logo_url,omitempty" validate:"omitempty,httpurl"`
	}

	NewFaculty struct {
		Name     string `json:"name" validate:"required,notblank"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	UpdateFaculty struct {
		Name     string `json:"name" validate:"required,notblank"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password,omitempty"`
	}

	FeedbackRequest struct {
		SubmissionID    string `json:"submission_id"`
		OverallFeedback string `json:"overall_feedback" validate:"required,notblank"`
	}
)

func (r DecisionRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

// Clean trims the domain and the tags, dropping blank and duplicate tags while keeping their order.
func (u TagsUpdate) Clean() TagsUpdate {
	seen := make(map[string]struct{}, len(u.Tags))
	tags := make([]string, 0, len(u.Tags))
	for _, tag := range core.CleanStrings(u.Tags) {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return TagsUpdate{Domain: core.CleanString(u.Domain), Tags: tags}
}

func (u IncubationUpdate) Validate(validate *validator.Validate) error {
	return validate.Struct(u)
}

func (u WorkUpdate) Validate(validate *validator.Validate) error {
	return validate.Struct(u)
}

func (c NewCompany) Validate(validate *validator.Validate) error {
	return validate.Struct(c)
}

func (nf NewFaculty) Validate(validate *validator.Validate) error {
	return validate.Struct(nf)
}

func (uf UpdateFaculty) Validate(validate *validator.Validate) error {
	return validate.Struct(uf)
}

func (f FeedbackRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(f)
}
