package normalizr_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	normalizr "github.com/reoring/gonormalizr"
	"github.com/reoring/gonormalizr/dsl"
)

func TestJSONSchema_Flat(t *testing.T) {
	post := dsl.Object("post").
		Field("id", dsl.String()).Required().
		Field("title", dsl.String(dsl.MinLen(1))).
		Field("score", dsl.Number(dsl.Min(0))).
		Field("draft", dsl.Bool()).
		Field("at", dsl.Custom("date")).
		Build()
	js, err := post.JSONSchema()
	require.NoError(t, err)

	b, err := json.Marshal(js)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type":"object","title":"post",
		"properties":{
			"id":{"type":"string"},
			"title":{"type":"string","minLength":1},
			"score":{"type":"number","minimum":0},
			"draft":{"type":"boolean"},
			"at":{"description":"custom:date"}
		},
		"required":["id"]
	}`, string(b))
}

func TestJSONSchema_Recursive(t *testing.T) {
	s := userSchema()
	root, err := s.Root()
	require.NoError(t, err)
	js, err := root.Entity.JSONSchema()
	require.NoError(t, err)

	assert.Equal(t, "#/$defs/user", js.Ref)
	require.Contains(t, js.Defs, "user")
	friends := js.Defs["user"].Properties["friends"]
	require.NotNil(t, friends)
	assert.Equal(t, "array", friends.Type)
	require.Len(t, friends.Items.OneOf, 3)
	assert.Equal(t, "#/$defs/user", friends.Items.OneOf[0].Ref)
	assert.Equal(t, "string", friends.Items.OneOf[1].Type)
	assert.Equal(t, "integer", friends.Items.OneOf[2].Type)
}

func TestJSONSchema_SameNameDistinctObjects(t *testing.T) {
	a := dsl.Object("node").Field("id", dsl.String()).Build()
	a.Set("next", a)
	b := dsl.Object("node").Field("id", dsl.Number()).Build()
	b.Set("prev", b)
	root := dsl.Object("pair").Field("a", a).Field("b", b).Build()

	js, err := root.JSONSchema()
	require.NoError(t, err)
	require.Len(t, js.Defs, 2)
	assert.Equal(t, "#/$defs/node", js.Properties["a"].Ref)
	assert.Equal(t, "#/$defs/node_2", js.Properties["b"].Ref)
	assert.Equal(t, "string", js.Defs["node"].Properties["id"].Type)
	assert.Equal(t, "number", js.Defs["node_2"].Properties["id"].Type)
	assert.Equal(t, "#/$defs/node_2", js.Defs["node_2"].Properties["prev"].OneOf[0].Ref)
}

func TestJSONSchema_Errors(t *testing.T) {
	_, err := (&normalizr.ArraySchema{}).JSONSchema()
	require.Error(t, err)

	loop := &normalizr.ObjectSchema{}
	loop.Set("self", loop)
	_, err = loop.JSONSchema()
	require.Error(t, err)
}

func TestSchema_Lookup(t *testing.T) {
	s := userSchema().With("tag", dsl.Object("tag").Build())
	_, ok := s.Lookup("tag")
	assert.True(t, ok)
	_, ok = s.Lookup("nope")
	assert.False(t, ok)
	root, err := s.Root()
	require.NoError(t, err)
	assert.Equal(t, "user", root.Key)

	_, err = normalizr.Schema{}.Root()
	require.Error(t, err)
}
