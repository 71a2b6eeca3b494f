package submission

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/mail"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/auth"
)

const (
	DigestTemplate   = "review_digest"
	DigestAttachment = "review-queue.csv"
)

var NowFunc = time.Now // mockable

type (
	DigestEntry struct {
		ID          string
		Title       string
		Student     string
		Label       string
		SubmittedOn string
	}

	// Digest summarizes the review queues, for the periodic review email.
	Digest struct {
		GeneratedAt time.Time
		Counts      Counts
		Oldest      []DigestEntry
	}
)

// BuildDigest counts the submissions per mode and lists, oldest first, up to limit
// submissions still waiting for an admin or faculty decision.
func BuildDigest(subs []Submission, role auth.Role, now time.Time, limit int) Digest {
	d := Digest{GeneratedAt: now, Counts: Count(subs, role)}

	waiting := make([]Submission, 0, len(subs))
	for _, s := range subs {
		if m := ModeOf(s); m == ModePendingAdmin || m == ModePendingFaculty {
			waiting = append(waiting, s)
		}
	}
	sort.SliceStable(waiting, func(i, j int) bool {
		return waiting[i].SubmittedOn.Before(waiting[j].SubmittedOn)
	})
	if limit > 0 && len(waiting) > limit {
		waiting = waiting[:limit]
	}
	for _, s := range waiting {
		d.Oldest = append(d.Oldest, DigestEntry{
			ID:          s.ID,
			Title:       s.Title,
			Student:     s.Student,
			Label:       Project(s).Label,
			SubmittedOn: s.SubmittedOn.Format("Jan 2, 2006"),
		})
	}
	return d
}

// Pending is the number of submissions waiting for a decision.
func (d Digest) Pending() int {
	return d.Counts.PendingAdmin + d.Counts.PendingFaculty
}

// Message builds the digest email. The listed submissions are attached as CSV.
func (d Digest) Message(to ...mail.Address) (*core.EmailMessage, error) {
	msg := &core.EmailMessage{
		To:           to,
		Subject:      fmt.Sprintf("Review digest: %d submission(s) waiting", d.Pending()),
		TemplateName: DigestTemplate,
		TemplateData: d,
	}
	if len(d.Oldest) == 0 {
		return msg, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "title", "student", "status", "submitted_on"})
	for _, e := range d.Oldest {
		_ = w.Write([]string{e.ID, e.Title, e.Student, e.Label, e.SubmittedOn})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "writing digest csv")
	}
	if err := msg.Attach(&buf, DigestAttachment, "text/csv"); err != nil {
		return nil, errors.Wrap(err, "attaching digest csv")
	}
	return msg, nil
}

// Digest loads the review queue and summarizes it.
func (svc *Service) Digest(ctx context.Context, limit int) (Digest, error) {
	snap, err := svc.Load(ctx)
	if err != nil {
		return Digest{}, err
	}
	return BuildDigest(snap.Items, svc.role, NowFunc(), limit), nil
}
