package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fire-lib/fire-http/extractor"
	"github.com/fire-lib/fire-http/resources"
	"github.com/fire-lib/fire-http/router"
	"github.com/fire-lib/fire-http/state"
)

type db struct{ name string }

func TestResourceExtractorValidateFailsWhenMissing(t *testing.T) {
	var e extractor.ResourceExtractor[*db]
	res := resources.New()
	err := e.Validate(nil, state.NewPlan(), res)
	assert.Error(t, err)

	resources.Set(res, &db{name: "primary"})
	require.NoError(t, e.Validate(nil, state.NewPlan(), res))

	got, err := e.Extract(nil, nil, nil, nil, res)
	require.NoError(t, err)
	assert.Equal(t, "primary", got.name)
}

func TestPathParamExtractorValidatesDeclaration(t *testing.T) {
	e := extractor.PathParamExtractor{Name: "id"}
	assert.Error(t, e.Validate([]string{"other"}, nil, nil))
	assert.NoError(t, e.Validate([]string{"id"}, nil, nil))

	v, err := e.Extract(nil, nil, router.Params{"id": "42"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	_, err = e.Extract(nil, nil, router.Params{}, nil, nil)
	assert.Error(t, err)
}

func TestStateExtractorRequiresDeclaration(t *testing.T) {
	var e extractor.StateExtractor[string]
	plan := state.NewPlan()
	assert.Error(t, e.Validate(nil, plan, nil))

	state.Declare[string](plan)
	require.NoError(t, e.Validate(nil, plan, nil))

	st := state.New()
	state.Set(st, "hello")
	got, err := e.Extract(nil, nil, nil, st, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}
