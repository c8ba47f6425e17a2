// Package field models the loosely-typed values an external field store hands
// back for an event, and the stores that serve them.
package field

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindList
	KindBool
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindBool:
		return "bool"
	case KindRecord:
		return "record"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a tagged union over the shapes a field store may return:
// null, a string, a list of strings, a boolean, or a flat string record
// (used by group fields such as recurring_event). The zero Value is null.
type Value struct {
	kind Kind
	str  string
	list []string
	b    bool
	rec  map[string]string
}

func Null() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, str: s} }

func List(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Record(m map[string]string) Value {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindRecord, rec: cp}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) AsList() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	cp := make([]string, len(v.list))
	copy(cp, v.list)
	return cp, true
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsRecord() (map[string]string, bool) {
	if v.kind != KindRecord {
		return nil, false
	}
	cp := make(map[string]string, len(v.rec))
	for k, s := range v.rec {
		cp[k] = s
	}
	return cp, true
}

// Get returns a key of a record value. It reports false for missing keys
// and for values that are not records.
func (v Value) Get(key string) (string, bool) {
	if v.kind != KindRecord {
		return "", false
	}
	s, ok := v.rec[key]
	return s, ok
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindList:
		quoted := make([]string, len(v.list))
		for i, s := range v.list {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, " ") + "]"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindRecord:
		keys := make([]string, 0, len(v.rec))
		for k := range v.rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + strconv.Quote(v.rec[k])
		}
		return "{" + strings.Join(parts, " ") + "}"
	default:
		return "null"
	}
}

// UnmarshalYAML decodes scalars, sequences of scalars and flat mappings.
// Booleans keep their type; every other scalar is kept as its literal text.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			*v = Null()
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			*v = Bool(b)
		default:
			*v = String(node.Value)
		}
		return nil

	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("field: line %d: list items must be scalars", item.Line)
			}
			items = append(items, item.Value)
		}
		*v = List(items...)
		return nil

	case yaml.MappingNode:
		rec := make(map[string]string, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if val.Kind != yaml.ScalarNode {
				return fmt.Errorf("field: line %d: record value for %q must be a scalar", val.Line, key.Value)
			}
			// A null member counts as not set.
			if val.ShortTag() == "!!null" {
				continue
			}
			rec[key.Value] = val.Value
		}
		*v = Record(rec)
		return nil

	default:
		return fmt.Errorf("field: line %d: unsupported YAML node", node.Line)
	}
}

func (v Value) MarshalYAML() (interface{}, error) {
	return v.native(), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch x := raw.(type) {
	case nil:
		*v = Null()
	case bool:
		*v = Bool(x)
	case string:
		*v = String(x)
	case float64:
		*v = String(strconv.FormatFloat(x, 'f', -1, 64))
	case []any:
		items := make([]string, 0, len(x))
		for _, item := range x {
			s, err := jsonScalar(item)
			if err != nil {
				return err
			}
			items = append(items, s)
		}
		*v = List(items...)
	case map[string]any:
		rec := make(map[string]string, len(x))
		for k, item := range x {
			if item == nil {
				continue
			}
			s, err := jsonScalar(item)
			if err != nil {
				return fmt.Errorf("field: record member %q: %w", k, err)
			}
			rec[k] = s
		}
		*v = Record(rec)
	default:
		return fmt.Errorf("field: unsupported JSON value %T", raw)
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.native())
}

var errNotScalar = errors.New("nested values are not supported")

func jsonScalar(item any) (string, error) {
	switch s := item.(type) {
	case string:
		return s, nil
	case bool:
		return strconv.FormatBool(s), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	default:
		return "", errNotScalar
	}
}

func (v Value) native() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindList:
		return v.list
	case KindBool:
		return v.b
	case KindRecord:
		return v.rec
	default:
		return nil
	}
}
