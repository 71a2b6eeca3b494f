package submission

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
		want View
	}{
		{
			name: "submitted",
			sub:  Submission{Status: StatusSubmitted},
			want: View{
				Label: "Pending Review", Color: ColorOrange, Mode: ModePendingAdmin, Pending: true,
				Actions: []Action{ActionApprove, ActionReject, ActionAssignFaculty, ActionEditTags},
				Scope:   ScopeAdmin,
			},
		},
		{
			name: "admin approved",
			sub:  Submission{Status: StatusAdminApproved},
			want: View{
				Label: "Pending Faculty Review", Color: ColorOrange, Mode: ModePendingFaculty, FacultyPending: true,
				Actions: []Action{ActionApprove, ActionReject, ActionAssignFaculty, ActionEditTags, ActionView},
				Scope:   ScopeFaculty,
			},
		},
		{
			name: "admin rejected",
			sub:  Submission{Status: StatusAdminRejected},
			want: View{Label: "Rejected", Color: ColorRed, Mode: ModeFacultyDecided, Actions: []Action{ActionView}},
		},
		{
			name: "faculty rejected",
			sub:  Submission{Status: StatusRejected},
			want: View{Label: "Rejected", Color: ColorRed, Mode: ModeFacultyDecided, Actions: []Action{ActionView}},
		},
		{
			name: "needs improvement",
			sub:  Submission{Status: StatusNeedsImprovement},
			want: View{Label: "Needs Improvement", Color: ColorBlue, Mode: ModeFacultyDecided, Actions: []Action{ActionView}},
		},
		{
			name: "approved without stage",
			sub:  Submission{Status: StatusApproved},
			want: View{Label: "Approved", Color: ColorGreen, Mode: ModeFacultyDecided, Actions: []Action{ActionUpdateProgress, ActionView}},
		},
		{
			name: "under incubation",
			sub:  Submission{Status: StatusApproved, Stage: StageUnderIncubation, ProgressPercent: 40},
			want: View{
				Label: "Under Incubation", Color: ColorOrange, Mode: ModeIncubating,
				Actions: []Action{ActionUpdateProgress, ActionView}, StageLabel: "Under Incubation", Progress: 40,
			},
		},
		{
			name: "looking for funding",
			sub:  Submission{Status: StatusApproved, Stage: StageLookingForFunding},
			want: View{
				Label: "Looking for Funding", Color: ColorBlue, Mode: ModeIncubating,
				Actions: []Action{ActionUpdateProgress, ActionView}, StageLabel: "Looking for Funding",
			},
		},
		{
			name: "found company, progress over 100",
			sub:  Submission{Status: StatusApproved, Stage: StageFoundCompany, ProgressPercent: 140},
			want: View{
				Label: "Funded Company", Color: ColorGreen, Mode: ModeIncubating,
				Actions: []Action{ActionUpdateProgress, ActionView}, StageLabel: "Funded Company", Progress: 100,
			},
		},
		{
			name: "unknown status",
			sub:  Submission{Status: "archived", ProgressPercent: -5},
			want: View{Label: "archived", Color: ColorGray, Mode: ModeUnknown, Actions: []Action{ActionView}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.sub)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Project() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProject_Idempotent(t *testing.T) {
	subs := []Submission{
		{Status: StatusSubmitted},
		{Status: StatusApproved, Stage: StageLookingForFunding, ProgressPercent: 250},
		{Status: "weird"},
	}
	for _, s := range subs {
		assert.True(t, cmp.Equal(Project(s), Project(s)))
	}
}

func TestProject_NoDecisionOnceDecided(t *testing.T) {
	for _, status := range []Status{StatusAdminRejected, StatusApproved, StatusRejected, StatusNeedsImprovement, "other"} {
		v := Project(Submission{Status: status})
		assert.False(t, v.Can(ActionApprove), status)
		assert.False(t, v.Can(ActionReject), status)
		assert.True(t, v.Can(ActionView), status)
	}
}

func TestStageLabel(t *testing.T) {
	assert.Equal(t, "Under Incubation", StageLabel(StageUnderIncubation))
	assert.Equal(t, "Funded Company", StageLabel(ParseStage("funded")))
	assert.Equal(t, "", StageLabel(StageUnset))
	assert.Equal(t, "pre_seed", StageLabel("pre_seed"))
}
