package field_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"eventdate/internal/field"
)

func TestValueAccessors(t *testing.T) {
	v := field.String("Yes")
	s, ok := v.AsString()
	assert.True(t, ok)
	assert.Equal(t, "Yes", s)
	_, ok = v.AsBool()
	assert.False(t, ok)

	l := field.List("Yes", "All Day")
	items, ok := l.AsList()
	require.True(t, ok)
	assert.Equal(t, []string{"Yes", "All Day"}, items)
	items[0] = "mutated"
	again, _ := l.AsList()
	assert.Equal(t, "Yes", again[0], "AsList must return a copy")

	r := field.Record(map[string]string{field.FirstDate: "March 3, 2024"})
	first, ok := r.Get(field.FirstDate)
	assert.True(t, ok)
	assert.Equal(t, "March 3, 2024", first)
	_, ok = r.Get(field.LastDate)
	assert.False(t, ok)
	_, ok = field.String("x").Get(field.FirstDate)
	assert.False(t, ok)

	var zero field.Value
	assert.True(t, zero.IsNull())
	assert.Equal(t, field.KindNull, zero.Kind())
	assert.Equal(t, "null", zero.String())
}

func TestValueUnmarshalYAML(t *testing.T) {
	doc := `
flag_bool: true
flag_quoted: "true"
flag_number: 1
flag_list: [Yes, All Day]
nothing: ~
range:
  first_date: March 3, 2024
  last_date: March 7, 2024
  ignored: ~
`
	var got map[string]field.Value
	require.NoError(t, yaml.Unmarshal([]byte(doc), &got))

	assert.Equal(t, field.Bool(true), got["flag_bool"])
	assert.Equal(t, field.String("true"), got["flag_quoted"])
	assert.Equal(t, field.String("1"), got["flag_number"])
	assert.Equal(t, field.List("Yes", "All Day"), got["flag_list"])
	assert.True(t, got["nothing"].IsNull())

	rec, ok := got["range"].AsRecord()
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"first_date": "March 3, 2024",
		"last_date":  "March 7, 2024",
	}, rec)
}

func TestValueUnmarshalYAMLRejectsNesting(t *testing.T) {
	var got map[string]field.Value
	err := yaml.Unmarshal([]byte("bad: [[a, b]]\n"), &got)
	assert.Error(t, err)
}

func TestValueJSON(t *testing.T) {
	body := `{"a": true, "b": "Yes", "c": ["yes", 1], "d": null, "e": {"first_date": "June 1, 2024", "x": null}, "f": 2.5}`
	var got map[string]field.Value
	require.NoError(t, json.Unmarshal([]byte(body), &got))

	assert.Equal(t, field.Bool(true), got["a"])
	assert.Equal(t, field.String("Yes"), got["b"])
	assert.Equal(t, field.List("yes", "1"), got["c"])
	assert.True(t, got["d"].IsNull())
	assert.Equal(t, field.Record(map[string]string{"first_date": "June 1, 2024"}), got["e"])
	assert.Equal(t, field.String("2.5"), got["f"])

	out, err := json.Marshal(got["c"])
	require.NoError(t, err)
	assert.JSONEq(t, `["yes","1"]`, string(out))

	out, err = json.Marshal(field.Null())
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestValueJSONRejectsNesting(t *testing.T) {
	var v field.Value
	assert.Error(t, json.Unmarshal([]byte(`{"a": {"b": 1}}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`[["a"]]`), &v))
}
