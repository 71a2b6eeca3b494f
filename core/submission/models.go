package submission

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the lifecycle status of a submission, as stored by the portal.
type Status string

const (
	StatusSubmitted        Status = "submitted"
	StatusAdminApproved    Status = "admin_approved"
	StatusAdminRejected    Status = "admin_rejected"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusNeedsImprovement Status = "needs_improvement"
)

var Statuses = []Status{
	StatusSubmitted,
	StatusAdminApproved,
	StatusAdminRejected,
	StatusApproved,
	StatusRejected,
	StatusNeedsImprovement,
}

func (s Status) Known() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Stage is the incubation stage of an approved submission.
type Stage string

const (
	StageUnset             Stage = ""
	StageUnderIncubation   Stage = "under_incubation"
	StageLookingForFunding Stage = "looking_for_funding"
	StageFoundCompany      Stage = "found_company"

	stageFundedLegacy = "funded"
)

var Stages = []Stage{StageUnderIncubation, StageLookingForFunding, StageFoundCompany}

// ParseStage normalizes a wire stage value; unknown values are kept verbatim.
func ParseStage(s string) Stage {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == stageFundedLegacy {
		return StageFoundCompany
	}
	return Stage(s)
}

func (s Stage) Known() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = StageUnset
		return nil
	}
	*s = ParseStage(*raw)
	return nil
}

type (
	// Submission is a student idea going through admin review, faculty review and incubation.
	Submission struct {
		ID              string    `json:"id"`
		Title           string    `json:"title"`
		Description     string    `json:"description"`
		Student         string    `json:"student,omitempty"`
		FilePath        string    `json:"file_path,omitempty"`
		Status          Status    `json:"status"`
		Domain          string    `json:"domain,omitempty"`
		Tags            []string  `json:"tags"`
		AssignedFaculty []string  `json:"assigned_faculty,omitempty"`
		Stage           Stage     `json:"stage,omitempty"`
		ProgressPercent int       `json:"progress_percent"`
		CompanyID       string    `json:"company_id,omitempty"`
		CompanyName     string    `json:"company_name,omitempty"`
		CompanyLogo     string    `json:"company_logo,omitempty"`
		SubmittedOn     time.Time `json:"submitted_on"`
	}

	Company struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		LogoURL string `json:"logo_url"`
	}

	Faculty struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		Department string `json:"department,omitempty"`
	}

	Assignment struct {
		ID           string    `json:"id"`
		SubmissionID string    `json:"submission_id"`
		FacultyID    string    `json:"faculty_id"`
		FacultyName  string    `json:"faculty_name"`
		AssignedAt   time.Time `json:"assigned_at"`
	}

	WorkItem struct {
		ID              string    `json:"id"`
		SubmissionID    string    `json:"submission_id"`
		Title           string    `json:"title"`
		Description     string    `json:"description"`
		Stage           Stage     `json:"stage"`
		ProgressPercent int       `json:"progress_percent"`
		CompanyID       string    `json:"company_id,omitempty"`
		CompanyName     string    `json:"company_name,omitempty"`
		CompanyLogo     string    `json:"company_logo,omitempty"`
		CreatedAt       time.Time `json:"created_at"`
		UpdatedAt       time.Time `json:"updated_at"`
	}

	// ProgressItem is a submission accepted by the logged in faculty member.
	ProgressItem struct {
		SubmissionID    string    `json:"submission_id"`
		Title           string    `json:"title"`
		Student         string    `json:"student"`
		AcceptedAt      time.Time `json:"accepted_at"`
		Stage           Stage     `json:"stage"`
		ProgressPercent int       `json:"progress_percent"`
		Domain          string    `json:"domain"`
	}

	Profile struct {
		UserID     string `json:"user_id"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		Department string `json:"department,omitempty"`
		Bio        string `json:"bio,omitempty"`
	}
)

// UnmarshalJSON accepts both the admin (`id`, `submitted_on`) and the faculty (`submission_id`, `created_at`)
// shapes of a submission, and nulls for optional strings.
func (s *Submission) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID              string    `json:"id"`
		SubmissionID    string    `json:"submission_id"`
		Title           string    `json:"title"`
		Description     string    `json:"description"`
		Student         string    `json:"student"`
		FilePath        *string   `json:"file_path"`
		Status          Status    `json:"status"`
		Domain          *string   `json:"domain"`
		Tags            []string  `json:"tags"`
		AssignedFaculty []string  `json:"assigned_faculty"`
		Stage           Stage     `json:"stage"`
		ProgressPercent int       `json:"progress_percent"`
		CompanyID       *string   `json:"company_id"`
		CompanyName     *string   `json:"company_name"`
		CompanyLogo     *string   `json:"company_logo"`
		SubmittedOn     time.Time `json:"submitted_on"`
		CreatedAt       time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Submission{
		ID:              raw.ID,
		Title:           raw.Title,
		Description:     raw.Description,
		Student:         raw.Student,
		FilePath:        deref(raw.FilePath),
		Status:          Status(strings.TrimSpace(string(raw.Status))),
		Domain:          deref(raw.Domain),
		Tags:            raw.Tags,
		AssignedFaculty: raw.AssignedFaculty,
		Stage:           raw.Stage,
		ProgressPercent: raw.ProgressPercent,
		CompanyID:       deref(raw.CompanyID),
		CompanyName:     deref(raw.CompanyName),
		CompanyLogo:     deref(raw.CompanyLogo),
		SubmittedOn:     raw.SubmittedOn,
	}
	if s.ID == "" {
		s.ID = raw.SubmissionID
	}
	if s.SubmittedOn.IsZero() {
		s.SubmittedOn = raw.CreatedAt
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return nil
}

func (c *Company) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string  `json:"id"`
		Name    string  `json:"name"`
		LogoURL *string `json:"logo_url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Company{ID: raw.ID, Name: raw.Name, LogoURL: deref(raw.LogoURL)}
	return nil
}

func (w *WorkItem) UnmarshalJSON(data []byte) error {
	type alias WorkItem
	var raw struct {
		alias
		CompanyID   *string `json:"company_id"`
		CompanyName *string `json:"company_name"`
		CompanyLogo *string `json:"company_logo"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*w = WorkItem(raw.alias)
	w.CompanyID = deref(raw.CompanyID)
	w.CompanyName = deref(raw.CompanyName)
	w.CompanyLogo = deref(raw.CompanyLogo)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
