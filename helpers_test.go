package normalizr_test

import (
	"context"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	normalizr "github.com/reoring/gonormalizr"
	"github.com/reoring/gonormalizr/dsl"
)

// userSchema declares a self-referential user with an age bound.
func userSchema() normalizr.Schema {
	user := dsl.Object("user").
		Field("id", dsl.String()).Required().
		Field("name", dsl.String()).
		Field("age", dsl.Number(dsl.Min(18))).
		Build()
	user.Set("friends", dsl.Array(user))
	return normalizr.NewSchema("user", user)
}

func opts() normalizr.Options {
	return normalizr.Options{Registry: normalizr.NewRegistry()}
}

func roundTrip(t *testing.T, data any, s normalizr.Schema, o normalizr.Options) (normalizr.NormalizedData, any) {
	t.Helper()
	ctx := context.Background()
	nd, err := normalizr.Normalize(ctx, data, s, o)
	require.NoError(t, err)
	out, err := normalizr.Denormalize(ctx, nd, s, o)
	require.NoError(t, err, "normalized: %s", spew.Sdump(nd))
	return nd, out
}

func requireNormErr(t *testing.T, err error, code string) *normalizr.NormalizationError {
	t.Helper()
	require.Error(t, err)
	ne, ok := normalizr.AsNormalizationError(err)
	require.True(t, ok, "want NormalizationError, got %T: %v", err, err)
	require.Equal(t, code, ne.Code, "issue: %s", spew.Sdump(ne.Issue))
	return ne
}

func requireDenormErr(t *testing.T, err error, code string) *normalizr.DenormalizationError {
	t.Helper()
	require.Error(t, err)
	de, ok := normalizr.AsDenormalizationError(err)
	require.True(t, ok, "want DenormalizationError, got %T: %v", err, err)
	require.Equal(t, code, de.Code, "issue: %s", spew.Sdump(de.Issue))
	return de
}
