package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageWalkFirstMatchWins(t *testing.T) {
	var calls []int
	step := func(stage int, holds bool) StageStep {
		return StageStep{Stage: stage, Holds: func() bool {
			calls = append(calls, stage)
			return holds
		}}
	}
	w := StageWalk{step(3, false), step(2, true), step(1, true), step(0, true)}

	stage, ok := w.Resolve()
	assert.True(t, ok)
	assert.Equal(t, 2, stage)
	assert.Equal(t, []int{3, 2}, calls, "walk stops at the first match")
}

func TestStageWalkNoMatch(t *testing.T) {
	_, ok := StageWalk{}.Resolve()
	assert.False(t, ok)
}

func TestNewStageWalkOrderAndMissingKeys(t *testing.T) {
	stages := map[string]*StageCondition{
		"0": {Count: intp(0)},
		"2": {Count: intp(0)},
		"3": {Count: intp(9)},
		"7": {Count: intp(0)},
	}
	var seen []int
	w := NewStageWalk(stages, func(c StageCondition) bool { return *c.Count == 0 })
	for _, s := range w {
		seen = append(seen, s.Stage)
	}
	assert.Equal(t, []int{3, 2, 0}, seen)

	stage, ok := w.Resolve()
	assert.True(t, ok)
	assert.Equal(t, 2, stage)
}

func TestMatchMultipleConditions(t *testing.T) {
	st := tickState{
		applicable: []string{"R1", "R2", "R3"},
		ticked:     toSet([]string{"R1", "R3"}),
		count:      2,
	}
	cases := []struct {
		name string
		cond StageCondition
		want bool
	}{
		{"all not reached", StageCondition{All: boolp(true)}, false},
		{"all false flag", StageCondition{All: boolp(false)}, false},
		{"count reached", StageCondition{Count: intp(2)}, true},
		{"count missed", StageCondition{Count: intp(3)}, false},
		{"counts member", StageCondition{Counts: []int{0, 2}}, true},
		{"counts miss", StageCondition{Counts: []int{1, 3}}, false},
		{"less than", StageCondition{CountLessThan: intp(3)}, true},
		{"not less than", StageCondition{CountLessThan: intp(2)}, false},
		{"must ticked", StageCondition{Must: intp(3)}, true},
		{"must unticked", StageCondition{Must: intp(2)}, false},
		{"must overrides others", StageCondition{Must: intp(2), CountLessThan: intp(5)}, false},
		{"must and count", StageCondition{Must: intp(1), Count: intp(2)}, true},
		{"must but count short", StageCondition{Must: intp(1), Count: intp(3)}, false},
		{"empty", StageCondition{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, st.matchMultiple(tc.cond))
		})
	}
}
