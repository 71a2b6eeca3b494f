package submission

import (
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core/auth"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// AdminDecision is the admin screening axis of a submission.
type AdminDecision string

const (
	AdminPending  AdminDecision = "pending"
	AdminApproved AdminDecision = "approved"
	AdminRejected AdminDecision = "rejected"
)

// FacultyDecision is the faculty review axis of a submission, only meaningful once the admin approved it.
type FacultyDecision string

const (
	FacultyNone             FacultyDecision = "none"
	FacultyPending          FacultyDecision = "pending"
	FacultyApproved         FacultyDecision = "approved"
	FacultyRejected         FacultyDecision = "rejected"
	FacultyNeedsImprovement FacultyDecision = "needs_improvement"
)

// Mode is the single lifecycle mode a submission is in, derived from its status and stage.
type Mode string

const (
	ModePendingAdmin   Mode = "pending_admin"
	ModePendingFaculty Mode = "pending_faculty"
	ModeFacultyDecided Mode = "faculty_decided"
	ModeIncubating     Mode = "incubating"
	ModeUnknown        Mode = "unknown"
)

// Decisions splits a status into its two orthogonal axes. ok is false for unknown statuses.
func Decisions(status Status) (admin AdminDecision, faculty FacultyDecision, ok bool) {
	switch status {
	case StatusSubmitted:
		return AdminPending, FacultyNone, true
	case StatusAdminRejected:
		return AdminRejected, FacultyNone, true
	case StatusAdminApproved:
		return AdminApproved, FacultyPending, true
	case StatusApproved:
		return AdminApproved, FacultyApproved, true
	case StatusRejected:
		return AdminApproved, FacultyRejected, true
	case StatusNeedsImprovement:
		return AdminApproved, FacultyNeedsImprovement, true
	}
	return "", "", false
}

// ModeOf derives the lifecycle mode of s. Only the status and the stage are looked at.
// An admin rejection is final, so it lands in ModeFacultyDecided along with the faculty verdicts.
func ModeOf(s Submission) Mode {
	admin, faculty, ok := Decisions(s.Status)
	switch {
	case !ok:
		return ModeUnknown
	case admin == AdminPending:
		return ModePendingAdmin
	case faculty == FacultyPending:
		return ModePendingFaculty
	case faculty == FacultyApproved && s.Stage != StageUnset:
		return ModeIncubating
	}
	return ModeFacultyDecided
}

// Decision is the verdict sent to the portal: `approved` or `rejected` for admins,
// plus `needs_improvement` for faculty.
type Decision string

const (
	DecisionApproved         Decision = "approved"
	DecisionRejected         Decision = "rejected"
	DecisionNeedsImprovement Decision = "needs_improvement"
)

// DecisionScope tells which role may decide on a submission.
type DecisionScope string

const (
	ScopeNone    DecisionScope = ""
	ScopeAdmin   DecisionScope = "admin"
	ScopeFaculty DecisionScope = "faculty"
)

// ScopeOf returns who may decide on a submission in the given status.
func ScopeOf(status Status) DecisionScope {
	switch status {
	case StatusSubmitted:
		return ScopeAdmin
	case StatusAdminApproved:
		return ScopeFaculty
	}
	return ScopeNone
}

// Transition returns the status a submission moves to when role takes decision on it.
// Transitions only go forward:
//   admin:   submitted -> admin_approved | admin_rejected
//   faculty: admin_approved -> approved | rejected | needs_improvement
func Transition(role auth.Role, from Status, decision Decision) (Status, error) {
	switch {
	case role.IsAdmin() && from == StatusSubmitted:
		switch decision {
		case DecisionApproved:
			return StatusAdminApproved, nil
		case DecisionRejected:
			return StatusAdminRejected, nil
		}
	case role.IsFaculty() && from == StatusAdminApproved:
		switch decision {
		case DecisionApproved:
			return StatusApproved, nil
		case DecisionRejected:
			return StatusRejected, nil
		case DecisionNeedsImprovement:
			return StatusNeedsImprovement, nil
		}
	}
	return from, errors.Wrapf(ErrInvalidTransition, "%s cannot %s a %q submission", roleName(role), decision, from)
}

func roleName(role auth.Role) string {
	if role == "" {
		return "anonymous"
	}
	return string(role)
}
