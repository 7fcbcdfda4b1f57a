package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFunnelStageValid(t *testing.T) {
	for _, s := range FunnelStages {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, FunnelStage("won").Valid())
	assert.False(t, FunnelStage("").Valid())
}

func TestFunnelStageCanMoveTo(t *testing.T) {
	cases := []struct {
		from, to FunnelStage
		ok       bool
	}{
		{StageNew, StageFirstContact, true},
		{StageNew, StageEnrolled, true},
		{StageProposal, StageNew, true},
		{StageQualified, StageLost, true},
		{StageEnrolled, StageLost, true},
		{StageEnrolled, StageProposal, false},
		{StageLost, StageNew, true},
		{StageLost, StageQualified, true},
		{StageLost, StageEnrolled, false},
		{StageNew, StageNew, false},
		{StageNew, FunnelStage("won"), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanMoveTo(c.to), "%s -> %s", c.from, c.to)
	}
}
