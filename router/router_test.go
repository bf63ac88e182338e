package router_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fire-lib/fire-http/router"
)

func TestLiteralOutranksParam(t *testing.T) {
	r := router.New[string]()
	require.NoError(t, r.Insert(router.MustRoutePath("GET", "/users/{id}"), "by-id"))
	require.NoError(t, r.Insert(router.MustRoutePath("GET", "/users/me"), "me"))
	r.Build()

	v, params, ok := r.Lookup("GET", "/users/me")
	require.True(t, ok)
	assert.Equal(t, "me", v)
	assert.Empty(t, params)

	v, params, ok = r.Lookup("GET", "/users/42")
	require.True(t, ok)
	assert.Equal(t, "by-id", v)
	assert.Equal(t, "42", params.Get("id"))
}

func TestLookupBacktracksPastDeadEndLiteral(t *testing.T) {
	r := router.New[string]()
	require.NoError(t, r.Insert(router.MustRoutePath("GET", "/users/{id}"), "by-id"))
	require.NoError(t, r.Insert(router.MustRoutePath("GET", "/users/list/extra"), "list-extra"))
	r.Build()

	v, params, ok := r.Lookup("GET", "/users/list")
	require.True(t, ok)
	assert.Equal(t, "by-id", v)
	assert.Equal(t, "list", params.Get("id"))

	v, params, ok = r.Lookup("GET", "/users/list/extra")
	require.True(t, ok)
	assert.Equal(t, "list-extra", v)
	assert.Empty(t, params)
}

func TestCatchAllCapturesTail(t *testing.T) {
	r := router.New[string]()
	require.NoError(t, r.Insert(router.MustRoutePath("GET", "/static/{*path}"), "static"))
	r.Build()

	v, params, ok := r.Lookup("GET", "/static/css/app.css")
	require.True(t, ok)
	assert.Equal(t, "static", v)
	assert.Equal(t, "css/app.css", params.Get("path"))
}

func TestWildcardMethodFallback(t *testing.T) {
	r := router.New[string]()
	require.NoError(t, r.Insert(router.MustRoutePath("", "/ping"), "any-method"))
	r.Build()

	v, _, ok := r.Lookup("POST", "/ping")
	require.True(t, ok)
	assert.Equal(t, "any-method", v)
}

func TestDuplicateInsertFails(t *testing.T) {
	r := router.New[string]()
	require.NoError(t, r.Insert(router.MustRoutePath("GET", "/x"), "a"))
	err := r.Insert(router.MustRoutePath("GET", "/x"), "b")
	assert.Error(t, err)
}

func TestUnmatchedReturnsFalse(t *testing.T) {
	r := router.New[string]()
	require.NoError(t, r.Insert(router.MustRoutePath("GET", "/a"), "a"))
	r.Build()

	_, _, ok := r.Lookup("GET", "/b")
	assert.False(t, ok)
}

func TestCatchAllMustBeLastSegment(t *testing.T) {
	_, err := router.NewRoutePath("GET", "/{*rest}/more")
	assert.Error(t, err)
}

func TestEscapedBraces(t *testing.T) {
	r := router.New[string]()
	require.NoError(t, r.Insert(router.MustRoutePath("GET", "/{{id}}"), "literal"))
	r.Build()

	_, _, ok := r.Lookup("GET", "/{id}")
	assert.True(t, ok)
}
