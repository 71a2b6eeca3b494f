package testutil

import (
	"time"

	"github.com/trezcool/micportal/core/auth"
	"github.com/trezcool/micportal/core/invitation"
	"github.com/trezcool/micportal/core/submission"
)

// Day is a fixed date of the fixtures, d days after Jan 1st 2025.
func Day(d int) time.Time {
	return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func CreateSubmission(b *Backend, id, title string, status submission.Status, submittedOn ...time.Time) submission.Submission {
	tstamp := Day(0)
	if len(submittedOn) > 0 {
		tstamp = submittedOn[0]
	}
	s := submission.Submission{
		ID:          id,
		Title:       title,
		Description: title + " description",
		Student:     "Student " + id,
		Status:      status,
		Tags:        []string{},
		SubmittedOn: tstamp,
	}
	b.Lock()
	defer b.Unlock()
	b.Submissions = append(b.Submissions, s)
	return s
}

// CreateAccount registers a user able to log in, and returns its bearer token.
func CreateAccount(b *Backend, token, name, email, pwd string, role auth.Role) auth.LoginResponse {
	resp := auth.LoginResponse{Token: token, ID: "usr-" + email, Name: name, Email: email, Role: role}
	b.Lock()
	defer b.Unlock()
	b.Accounts[email] = Account{Password: pwd, Login: resp}
	return resp
}

func CreateInvitation(b *Backend, id, title, date string, status invitation.Status) invitation.Invitation {
	inv := invitation.Invitation{
		ID:        id,
		Title:     title,
		Date:      date,
		Location:  "Innovation Centre",
		Price:     "Free",
		Status:    status,
		InvitedAt: Day(0),
	}
	b.Lock()
	defer b.Unlock()
	b.Invitations = append(b.Invitations, inv)
	return inv
}

// SeedReviewQueue fills the backend with one submission per lifecycle step.
func SeedReviewQueue(b *Backend) []submission.Submission {
	subs := []submission.Submission{
		CreateSubmission(b, "s1", "Campus drone delivery", submission.StatusSubmitted, Day(1)),
		CreateSubmission(b, "s2", "Smart irrigation", submission.StatusAdminApproved, Day(2)),
		CreateSubmission(b, "s3", "Paper straws", submission.StatusAdminRejected, Day(3)),
		CreateSubmission(b, "s4", "Lab scheduler", submission.StatusNeedsImprovement, Day(4)),
		CreateSubmission(b, "s5", "Solar kiosks", submission.StatusApproved, Day(5)),
	}
	b.Lock()
	defer b.Unlock()
	b.Submissions[4].Stage = submission.StageLookingForFunding
	b.Submissions[4].ProgressPercent = 60
	subs[4] = b.Submissions[4]
	return subs
}
