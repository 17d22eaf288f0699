package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

func mustDecode(t *testing.T, doc string) *Schema {
	t.Helper()
	s := &Schema{}
	require.NoError(t, yaml.Unmarshal([]byte(doc), s))
	return s
}

const nestedDoc = `
type: object
additionalProperties: false
properties:
  name:
    type: string
  details:
    type: object
    additionalProperties: false
    properties:
      color:
        type: string
  tags:
    type: array
    items:
      type: object
      additionalProperties: false
      properties:
        label:
          type: string
required:
  - name
`

func TestStripUnsupportedRemovesAtEveryDepth(t *testing.T) {
	original := mustDecode(t, nestedDoc)
	stripped := StripUnsupported(original)

	raw, err := json.Marshal(stripped)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "additionalProperties")

	// The caller's schema is untouched.
	assert.NotNil(t, original.AdditionalProperties)
	details, ok := original.Properties.Get("details")
	require.True(t, ok)
	assert.NotNil(t, details.AdditionalProperties)

	// Everything but the stripped key survives.
	assert.Equal(t, []string{"name"}, stripped.Required)
	tags, ok := stripped.Properties.Get("tags")
	require.True(t, ok)
	require.NotNil(t, tags.Items)
	assert.True(t, tags.Items.Properties.Has("label"))
}

func TestStripUnsupportedIsIdempotent(t *testing.T) {
	once := StripUnsupported(mustDecode(t, nestedDoc))
	twice := StripUnsupported(once)

	first, err := json.Marshal(once)
	require.NoError(t, err)
	second, err := json.Marshal(twice)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}

func TestStrictRequiredListsEveryPropertyInDeclarationOrder(t *testing.T) {
	s := mustDecode(t, `
type: object
properties:
  zebra:
    type: string
  apple:
    type: number
  mango:
    type: boolean
required:
  - apple
`)
	strict := StrictRequired(s)

	assert.Equal(t, []string{"zebra", "apple", "mango"}, strict.Required)
	// Original keeps its declared required list.
	assert.Equal(t, []string{"apple"}, s.Required)
}

func TestStrictRequiredWithoutProperties(t *testing.T) {
	s := &Schema{Type: "string"}
	strict := StrictRequired(s)
	assert.Empty(t, strict.Required)
}

func unionFixture(t *testing.T) []Tool {
	t.Helper()
	return []Tool{
		{
			Name:        "identify_animal",
			Description: "Identify an animal in the image",
			Schema: mustDecode(t, `
type: object
properties:
  species:
    type: string
  confidence:
    type: number
required:
  - species
`),
		},
		{
			Name:        "identify_plant",
			Description: "Identify a plant in the image",
			Schema: mustDecode(t, `
type: object
properties:
  species:
    type: number
  leaf_shape:
    type: string
required:
  - leaf_shape
`),
		},
	}
}

func TestUnionToolsBuildsDiscriminatedEnvelope(t *testing.T) {
	union, err := UnionTools(unionFixture(t))
	require.NoError(t, err)

	disc, ok := union.Properties.Get(Discriminator)
	require.True(t, ok)
	assert.Equal(t, []any{"identify_animal", "identify_plant"}, disc.Enum)

	assert.Contains(t, union.Required, Discriminator)
	assert.Contains(t, union.Required, "species")
	assert.Contains(t, union.Required, "leaf_shape")

	for _, name := range []string{"species", "confidence", "leaf_shape"} {
		assert.True(t, union.Properties.Has(name), "missing property %s", name)
	}
}

func TestUnionToolsFirstSeenDefinitionWins(t *testing.T) {
	union, err := UnionTools(unionFixture(t))
	require.NoError(t, err)

	species, ok := union.Properties.Get("species")
	require.True(t, ok)
	assert.Equal(t, "string", species.Type, "colliding property keeps the first tool's definition")
}

func TestUnionToolsRejectsEmptyList(t *testing.T) {
	_, err := UnionTools(nil)
	assert.Error(t, err)
}

func TestSchemaJSONPreservesDeclarationOrder(t *testing.T) {
	s := mustDecode(t, `
type: object
properties:
  second_first:
    type: string
  aardvark:
    type: string
  zzz:
    type: string
`)
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	text := string(raw)
	assert.Less(t, strings.Index(text, "second_first"), strings.Index(text, "aardvark"))
	assert.Less(t, strings.Index(text, "aardvark"), strings.Index(text, "zzz"))
}

func TestSchemaRoundTripKeepsUnknownKeywords(t *testing.T) {
	s := mustDecode(t, `
type: integer
minimum: 0
maximum: 2
`)
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"minimum":0`)
	assert.Contains(t, string(raw), `"maximum":2`)

	back := &Schema{}
	require.NoError(t, json.Unmarshal(raw, back))
	assert.Equal(t, "integer", back.Type)
	assert.Len(t, back.Extra, 2)
}
