package schemafile_test

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	normalizr "github.com/reoring/gonormalizr"
	"github.com/reoring/gonormalizr/schemafile"
)

const userDoc = `
user:
  type: object
  name: user
  required: [id]
  properties:
    id: {type: string}
    name: {type: string, minLength: 1, pattern: "^[A-Z]"}
    age: {type: number, minimum: 18, maximum: 130}
    active: {type: boolean}
    friends: {type: array, items: {$ref: user}}
    posts:
      type: array
      items: {$ref: post}
post:
  type: object
  name: post
  identity: slug
  properties:
    slug: {type: string}
    geo:
      type: object
      identity: "-"
      properties:
        lat: {type: number}
    created: {type: custom, name: date}
`

func TestParse_OrderAndRefs(t *testing.T) {
	s, err := schemafile.Parse([]byte(userDoc))
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.Equal(t, "user", s[0].Key)
	assert.Equal(t, "post", s[1].Key)

	user := s[0].Entity.(*normalizr.ObjectSchema)
	var names []string
	for _, p := range user.Properties {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"id", "name", "age", "active", "friends", "posts"}, names)
	assert.Equal(t, []string{"id"}, user.Required)

	friends, _ := user.Property("friends")
	assert.Same(t, user, friends.(*normalizr.ArraySchema).Items)

	posts, _ := user.Property("posts")
	post := s[1].Entity.(*normalizr.ObjectSchema)
	assert.Same(t, post, posts.(*normalizr.ArraySchema).Items)
	assert.Equal(t, "field:slug", post.Identity.Describe())

	geo, _ := post.Property("geo")
	assert.Equal(t, "none", geo.(*normalizr.ObjectSchema).Identity.Describe())

	created, _ := post.Property("created")
	assert.Equal(t, "date", created.(*normalizr.CustomSchema).Name)

	name, _ := user.Property("name")
	ns := name.(*normalizr.StringSchema)
	require.NotNil(t, ns.MinLength)
	assert.Equal(t, 1, *ns.MinLength)
	assert.Equal(t, "^[A-Z]", ns.Pattern)

	require.NoError(t, normalizr.DefaultValidator{}.Validate(s))
}

func TestParse_JSON(t *testing.T) {
	s, err := schemafile.Parse([]byte(`{"tag":{"type":"object","name":"tag","properties":{"id":{"type":"number"}}}}`))
	require.NoError(t, err)
	require.Len(t, s, 1)
	assert.Equal(t, "tag", s[0].Entity.(*normalizr.ObjectSchema).Name)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":       ``,
		"not mapping": `- a`,
		"unknown ref": "a: {type: array, items: {$ref: nope}}",
		"no type":     "a: {name: x}",
		"bad type":    "a: {type: date}",
		"no items":    "a: {type: array}",
		"ref+type":    "a: {type: object, name: a}\nb: {$ref: a, type: object}",
		"dup name":    "a: {type: object, name: x}\nb: {type: object, name: x}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := schemafile.Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	s, err := schemafile.Parse([]byte(userDoc))
	require.NoError(t, err)

	b, err := schemafile.Encode(s)
	require.NoError(t, err)
	assert.Contains(t, string(b), "$ref: user")
	assert.Contains(t, string(b), "identity: slug")

	back, err := schemafile.Parse(b)
	require.NoError(t, err)
	fpA, err := normalizr.Fingerprint(nil, s)
	require.NoError(t, err)
	fpB, err := normalizr.Fingerprint(nil, back)
	require.NoError(t, err)
	assert.Equal(t, fpA, fpB, "encoded document:\n%s", b)
}

func TestEncode_UnnamedCycle(t *testing.T) {
	o := &normalizr.ObjectSchema{}
	o.Set("self", o)
	_, err := schemafile.Encode(normalizr.NewSchema("x", o))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(userDoc), 0o600))
	s, err := schemafile.Load(path)
	require.NoError(t, err)
	assert.Len(t, s, 2)

	_, err = schemafile.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMetaSchema(t *testing.T) {
	b, err := json.Marshal(schemafile.MetaSchema())
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "object", m["type"])
	defs, ok := m["$defs"].(map[string]any)
	require.True(t, ok, "meta schema: %s", b)
	node, ok := defs["Node"].(map[string]any)
	require.True(t, ok)
	props := node["properties"].(map[string]any)
	assert.Contains(t, props, "identity")
	assert.Contains(t, props, "$ref")
}
