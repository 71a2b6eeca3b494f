package submission

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelinePortalFunc func(ctx context.Context) ([]Submission, error)

func (f pipelinePortalFunc) IncubationPipeline(ctx context.Context) ([]Submission, error) {
	return f(ctx)
}

func TestBuildPipeline(t *testing.T) {
	subs := []Submission{
		{ID: "1", Stage: StageLookingForFunding, CompanyName: "Acme", CompanyLogo: "acme.png"},
		{ID: "2", Stage: StageUnderIncubation},
		{ID: "3", Stage: StageFoundCompany, CompanyName: "Acme"},
		{ID: "4", Stage: StageFoundCompany, CompanyName: "Globex"},
	}

	p := BuildPipeline(subs)
	assert.Equal(t, 4, p.Total)
	require.NotNil(t, p.Featured)
	assert.Equal(t, "1", p.Featured.ID)
	require.Len(t, p.Stages, 3)
	assert.Equal(t, "Under Incubation", p.Stages[0].Label)
	assert.Equal(t, []string{"2"}, ids(p.Stages[0].Projects))
	assert.Equal(t, []string{"1"}, ids(p.Stages[1].Projects))
	assert.Equal(t, []string{"3", "4"}, ids(p.Stages[2].Projects))
	assert.Equal(t, []Partner{{Name: "Acme", LogoURL: "acme.png"}, {Name: "Globex"}}, p.Partners)
}

func TestLoadPipeline(t *testing.T) {
	p, err := LoadPipeline(context.Background(), pipelinePortalFunc(func(context.Context) ([]Submission, error) {
		return nil, nil
	}))
	require.NoError(t, err)
	assert.Zero(t, p.Total)
	assert.Nil(t, p.Featured)
	assert.Empty(t, p.Partners)

	boom := errors.New("boom")
	_, err = LoadPipeline(context.Background(), pipelinePortalFunc(func(context.Context) ([]Submission, error) {
		return nil, boom
	}))
	assert.Equal(t, boom, errors.Cause(err))
}
