package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fire-lib/fire-http/state"
)

type userID string

func TestSetGetHas(t *testing.T) {
	m := state.New()
	assert.False(t, state.Has[userID](m))

	state.Set[userID](m, "abc")
	got, ok := state.Get[userID](m)
	assert.True(t, ok)
	assert.Equal(t, userID("abc"), got)
}

func TestPlanDeclareWillExist(t *testing.T) {
	p := state.NewPlan()
	assert.False(t, state.WillExist[userID](p))
	state.Declare[userID](p)
	assert.True(t, state.WillExist[userID](p))
}
