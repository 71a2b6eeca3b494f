package submission

import "github.com/trezcool/micportal/core"

// Color is the badge color class of a status.
type Color string

const (
	ColorOrange Color = "orange"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorGray   Color = "gray"
	ColorBlue   Color = "blue"
)

// Action is something the user may do with a submission.
type Action string

const (
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionAssignFaculty  Action = "assign_faculty"
	ActionEditTags       Action = "edit_tags"
	ActionView           Action = "view"
	ActionUpdateProgress Action = "update_progress"
)

// View is the presentation state of a submission.
type View struct {
	Label          string        `json:"label"`
	Color          Color         `json:"color"`
	Mode           Mode          `json:"mode"`
	Pending        bool          `json:"is_pending"`
	FacultyPending bool          `json:"is_faculty_pending"`
	Actions        []Action      `json:"actions"`
	Scope          DecisionScope `json:"decision_scope,omitempty"`
	StageLabel     string        `json:"stage_label,omitempty"`
	Progress       int           `json:"progress_percent"`
}

func (v View) Can(action Action) bool {
	for _, a := range v.Actions {
		if a == action {
			return true
		}
	}
	return false
}

var stageLabels = map[Stage]string{
	StageUnderIncubation:   "Under Incubation",
	StageLookingForFunding: "Looking for Funding",
	StageFoundCompany:      "Funded Company",
}

var stageColors = map[Stage]Color{
	StageUnderIncubation:   ColorOrange,
	StageLookingForFunding: ColorBlue,
	StageFoundCompany:      ColorGreen,
}

// StageLabel returns the display label of a stage. Unknown stages are returned verbatim.
func StageLabel(stage Stage) string {
	if label, ok := stageLabels[stage]; ok {
		return label
	}
	return string(stage)
}

// Project maps a submission to its presentation state. It never fails: unknown statuses
// are shown verbatim in gray and can only be viewed.
func Project(s Submission) View {
	v := View{
		Mode:           ModeOf(s),
		Pending:        s.Status == StatusSubmitted,
		FacultyPending: s.Status == StatusAdminApproved,
		Scope:          ScopeOf(s.Status),
		StageLabel:     StageLabel(s.Stage),
		Progress:       core.ClampPercent(s.ProgressPercent),
	}

	switch s.Status {
	case StatusSubmitted:
		v.Label, v.Color = "Pending Review", ColorOrange
		v.Actions = []Action{ActionApprove, ActionReject, ActionAssignFaculty, ActionEditTags}
	case StatusAdminApproved:
		v.Label, v.Color = "Pending Faculty Review", ColorOrange
		v.Actions = []Action{ActionApprove, ActionReject, ActionAssignFaculty, ActionEditTags, ActionView}
	case StatusAdminRejected, StatusRejected:
		v.Label, v.Color = "Rejected", ColorRed
		v.Actions = []Action{ActionView}
	case StatusNeedsImprovement:
		v.Label, v.Color = "Needs Improvement", ColorBlue
		v.Actions = []Action{ActionView}
	case StatusApproved:
		v.Actions = []Action{ActionUpdateProgress, ActionView}
		switch s.Stage {
		case StageUnderIncubation, StageLookingForFunding, StageFoundCompany:
			v.Label, v.Color = stageLabels[s.Stage], stageColors[s.Stage]
		default:
			v.Label, v.Color = "Approved", ColorGreen
		}
	default:
		v.Label, v.Color = string(s.Status), ColorGray
		v.Actions = []Action{ActionView}
	}
	return v
}
