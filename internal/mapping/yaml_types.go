package mapping

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"metadata-enricher/internal/common"
)

// StringOrArray is a list that can be written as a single string in YAML.
type StringOrArray []string

// --- StringOrArray YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
// Accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		if arr == nil {
			arr = []string{}
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for StringOrArray.
// Outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if v, ok := common.First(s); ok {
		return v
	}

	return ""
}

// IsEmpty returns true if the array is empty.
func (s StringOrArray) IsEmpty() bool {
	return common.IsEmpty(s)
}

// Contains returns true if the array contains the given string.
func (s StringOrArray) Contains(str string) bool {
	return slices.Contains(s, str)
}

// --- AliasDef YAML methods ---

const (
	arrowOneWay = "->"
	arrowBoth   = "<->"
)

// UnmarshalYAML implements custom YAML unmarshaling for AliasDef.
// Accepts:
//   - Arrow string: "SEN:NAME -> q" or "BOOK:isbn <-> isbn"
//   - Map: {source: a, target: b, bidirectional: true}
func (a *AliasDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		def, err := parseArrow(str)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}

		*a = def

		return nil

	case yaml.MappingNode:
		// plain alias type so the mapping is decoded without recursion
		type plain AliasDef

		var p plain

		err := node.Decode(&p)
		if err != nil {
			return err
		}

		*a = AliasDef(p)

		return nil

	default:
		return fmt.Errorf("expected alias string or map, got %v", node.Kind)
	}
}

// MarshalYAML renders the alias in arrow form.
func (a AliasDef) MarshalYAML() (any, error) {
	return a.String(), nil
}

// String returns the arrow form of the alias.
func (a AliasDef) String() string {
	arrow := arrowOneWay
	if a.Bidirectional {
		arrow = arrowBoth
	}

	return a.Source + " " + arrow + " " + a.Target
}

// parseArrow parses "a -> b" and "a <-> b". Attribute names may contain
// ':' and '/' but not the arrows themselves.
func parseArrow(s string) (AliasDef, error) {
	if src, dst, ok := strings.Cut(s, arrowBoth); ok {
		return arrowDef(s, src, dst, true)
	}

	if src, dst, ok := strings.Cut(s, arrowOneWay); ok {
		return arrowDef(s, src, dst, false)
	}

	return AliasDef{}, fmt.Errorf("alias %q: expected \"source -> target\" or \"source <-> target\"", s)
}

func arrowDef(s, src, dst string, bidir bool) (AliasDef, error) {
	src, dst = strings.TrimSpace(src), strings.TrimSpace(dst)
	if src == "" || dst == "" {
		return AliasDef{}, fmt.Errorf("alias %q: empty side", s)
	}

	return AliasDef{Source: src, Target: dst, Bidirectional: bidir}, nil
}
