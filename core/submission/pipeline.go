package submission

import (
	"context"

	"github.com/pkg/errors"
)

// PipelinePortal serves the public incubation pipeline.
type PipelinePortal interface {
	IncubationPipeline(ctx context.Context) ([]Submission, error)
}

type (
	Partner struct {
		Name    string `json:"name"`
		LogoURL string `json:"logo_url,omitempty"`
	}

	PipelineStage struct {
		Stage    Stage        `json:"stage"`
		Label    string       `json:"label"`
		Projects []Submission `json:"projects"`
	}

	// Pipeline is the public view of the incubated projects.
	Pipeline struct {
		Total    int             `json:"total"`
		Featured *Submission     `json:"featured,omitempty"`
		Stages   []PipelineStage `json:"stages"`
		Partners []Partner       `json:"partners"`
	}
)

// LoadPipeline fetches the incubated projects and groups them by stage.
func LoadPipeline(ctx context.Context, portal PipelinePortal) (Pipeline, error) {
	subs, err := portal.IncubationPipeline(ctx)
	if err != nil {
		return Pipeline{}, errors.Wrap(err, "loading incubation pipeline")
	}
	return BuildPipeline(subs), nil
}

// BuildPipeline groups projects by stage; the first project is featured and each company
// is listed once as a partner, in order of appearance.
func BuildPipeline(subs []Submission) Pipeline {
	p := Pipeline{
		Total:    len(subs),
		Stages:   make([]PipelineStage, 0, len(Stages)),
		Partners: []Partner{},
	}
	if len(subs) > 0 {
		featured := subs[0]
		p.Featured = &featured
	}

	for _, stage := range Stages {
		ps := PipelineStage{Stage: stage, Label: StageLabel(stage), Projects: []Submission{}}
		for _, s := range subs {
			if s.Stage == stage {
				ps.Projects = append(ps.Projects, s)
			}
		}
		p.Stages = append(p.Stages, ps)
	}

	seen := make(map[string]struct{})
	for _, s := range subs {
		if s.CompanyName == "" {
			continue
		}
		if _, ok := seen[s.CompanyName]; ok {
			continue
		}
		seen[s.CompanyName] = struct{}{}
		p.Partners = append(p.Partners, Partner{Name: s.CompanyName, LogoURL: s.CompanyLogo})
	}
	return p
}
