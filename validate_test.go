package normalizr_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	normalizr "github.com/reoring/gonormalizr"
	"github.com/reoring/gonormalizr/dsl"
)

func TestDefaultValidator(t *testing.T) {
	ok := dsl.Object("ok").Field("id", dsl.String()).Build()
	deep := func(n int) normalizr.SchemaEntity {
		var e normalizr.SchemaEntity = dsl.String()
		for i := 0; i < n; i++ {
			e = dsl.Array(e)
		}
		return e
	}
	unnamedLoop := &normalizr.ObjectSchema{}
	unnamedLoop.Set("self", unnamedLoop)

	cases := []struct {
		name   string
		schema normalizr.Schema
		code   string
	}{
		{"empty", normalizr.Schema{}, normalizr.CodeEmptySchema},
		{"empty key", normalizr.Schema{{Key: "", Entity: ok}}, normalizr.CodeInvalidSchema},
		{"duplicate key", normalizr.NewSchema("a", ok).With("a", ok), normalizr.CodeInvalidSchema},
		{"unnamed root", normalizr.NewSchema("a", dsl.Object("").Build()), normalizr.CodeUnnamedEntity},
		{"nil entity", normalizr.NewSchema("a", nil), normalizr.CodeInvalidSchema},
		{"array without items", normalizr.NewSchema("a", &normalizr.ArraySchema{}), normalizr.CodeInvalidSchema},
		{"custom without name", normalizr.NewSchema("a", dsl.Custom("")), normalizr.CodeInvalidSchema},
		{"empty property", normalizr.NewSchema("a", dsl.Object("a").Field("", dsl.String()).Build()), normalizr.CodeInvalidSchema},
		{"duplicate property", normalizr.NewSchema("a", &normalizr.ObjectSchema{Name: "a", Properties: []normalizr.Property{
			{Name: "x", Schema: dsl.String()}, {Name: "x", Schema: dsl.Bool()},
		}}), normalizr.CodeInvalidSchema},
		{"undeclared required", normalizr.NewSchema("a", dsl.Object("a").Require("x").Build()), normalizr.CodeInvalidSchema},
		{"negative minLength", normalizr.NewSchema("a", dsl.String(dsl.MinLen(-1))), normalizr.CodeInvalidSchema},
		{"minLength > maxLength", normalizr.NewSchema("a", dsl.String(dsl.MinLen(3), dsl.MaxLen(2))), normalizr.CodeInvalidSchema},
		{"bad pattern", normalizr.NewSchema("a", dsl.String(dsl.Pattern("("))), normalizr.CodeInvalidSchema},
		{"minimum > maximum", normalizr.NewSchema("a", dsl.Number(dsl.Min(2), dsl.Max(1))), normalizr.CodeInvalidSchema},
		{"infinite bound", normalizr.NewSchema("a", dsl.Number(dsl.Max(math.Inf(1)))), normalizr.CodeInvalidSchema},
		{"too deep", normalizr.NewSchema("a", deep(40)), normalizr.CodeSchemaDepth},
		{"unnamed recursion", normalizr.NewSchema("a", dsl.Array(unnamedLoop)), normalizr.CodeInvalidSchema},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := normalizr.DefaultValidator{}.Validate(tc.schema)
			require.Error(t, err)
			sve, ok := normalizr.AsSchemaValidationError(err)
			require.True(t, ok, "got %T", err)
			assert.Equal(t, tc.code, sve.Code)
		})
	}
}

func TestDefaultValidator_Accepts(t *testing.T) {
	require.NoError(t, normalizr.DefaultValidator{}.Validate(userSchema()))
	require.NoError(t, normalizr.DefaultValidator{}.Validate(normalizr.NewSchema("tags", dsl.Array(dsl.String()))))
	require.NoError(t, normalizr.DefaultValidator{MaxDepth: 3}.Validate(normalizr.NewSchema("a", dsl.Array(dsl.Array(dsl.Number())))))
	require.Error(t, normalizr.DefaultValidator{MaxDepth: 2}.Validate(normalizr.NewSchema("a", dsl.Array(dsl.Array(dsl.Number())))))
}

func TestValidatorFunc_Injected(t *testing.T) {
	denied := errors.New("denied")
	o := opts()
	o.Validator = normalizr.ValidatorFunc(func(normalizr.Schema) error { return denied })
	_, err := normalizr.Normalize(context.Background(), map[string]any{"id": "1"}, userSchema(), o)
	ne := requireNormErr(t, err, normalizr.CodeInternal)
	assert.ErrorIs(t, ne, denied)
}
