package record

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind identifies the variant of a Value.
type Kind int

const (
	_ Kind = iota // zero value is reserved as the invalid kind

	KindString
	KindInt32
	KindFloat64
	KindFloat32
	KindBool
	KindBytes
	KindRecord
)

// kindNames maps accepted configuration spellings to kinds.
var kindNames = map[string]Kind{
	"string":  KindString,
	"int32":   KindInt32,
	"int":     KindInt32,
	"float64": KindFloat64,
	"double":  KindFloat64,
	"float32": KindFloat32,
	"float":   KindFloat32,
	"bool":    KindBool,
	"bytes":   KindBytes,
	"raw":     KindBytes,
	"record":  KindRecord,
}

// ParseKind resolves a kind from its configuration name (case-insensitive).
func ParseKind(name string) (Kind, error) {
	k, ok := kindNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown value kind %q", name)
	}

	return k, nil
}

// IsValid reports whether k is one of the defined kinds.
func (k Kind) IsValid() bool {
	return k >= KindString && k <= KindRecord
}

// IsFloat reports whether k is one of the floating point kinds.
func (k Kind) IsFloat() bool {
	return k == KindFloat64 || k == KindFloat32
}

// MarshalYAML renders the kind by name.
func (k Kind) MarshalYAML() (any, error) {
	return strings.ToLower(k.String()), nil
}

// UnmarshalYAML parses a kind from its name.
func (k *Kind) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}
