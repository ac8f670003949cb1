package errors

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error for reporting and propagation decisions.
type Kind int

const (
	// KindUnknown is reported for errors that were never classified.
	KindUnknown Kind = iota
	// KindConfiguration means the engine was not set up correctly.
	KindConfiguration
	// KindMapping means a field could not be mapped or converted.
	KindMapping
	// KindFetch means the remote lookup failed.
	KindFetch
	// KindParse means the remote response could not be interpreted.
	KindParse
	// KindPersist means the metadata store failed.
	KindPersist
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindMapping:
		return "mapping error"
	case KindFetch:
		return "fetch error"
	case KindParse:
		return "parse error"
	case KindPersist:
		return "persist error"
	default:
		return "unknown error"
	}
}

// Standard error variables for common conditions
var (
	// Configuration
	ErrNotConfigured    = errors.New("no alias mappings configured")
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// Mapping
	ErrBadValue              = errors.New("bad value")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrAliasConflict         = errors.New("alias conflicts with existing mapping")
	ErrAliasTableSealed      = errors.New("alias table is sealed")
	ErrNoParameters          = errors.New("no mapped service parameters")

	// Fetch
	ErrTimeout      = errors.New("request timed out")
	ErrHTTPStatus   = errors.New("unexpected HTTP status")
	ErrNoCandidates = errors.New("lookup returned no candidates")
	ErrUnsupported  = errors.New("unsupported content")

	// Parse
	ErrMalformedBody = errors.New("malformed response body")

	// Persist
	ErrEntityNotFound = errors.New("entity not found")
)

// ClassifiedError wraps an error with its kind
type ClassifiedError struct {
	Kind      Kind
	Err       error
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// KindOf returns the kind of the outermost classified error in the chain.
// Unclassified context deadline errors count as fetch errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}

	switch {
	case errors.Is(err, ErrNotConfigured), errors.Is(err, ErrMissingParameter), errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrAliasTableSealed):
		return KindConfiguration
	case errors.Is(err, ErrBadValue), errors.Is(err, ErrUnsupportedConversion), errors.Is(err, ErrAliasConflict),
		errors.Is(err, ErrNoParameters):
		return KindMapping
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrHTTPStatus), errors.Is(err, ErrNoCandidates),
		errors.Is(err, ErrUnsupported), errors.Is(err, context.DeadlineExceeded):
		return KindFetch
	case errors.Is(err, ErrMalformedBody):
		return KindParse
	case errors.Is(err, ErrEntityNotFound):
		return KindPersist
	}

	return KindUnknown
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return KindOf(err) == KindConfiguration }

// IsMapping reports whether err is a mapping error.
func IsMapping(err error) bool { return KindOf(err) == KindMapping }

// IsFetch reports whether err is a fetch error.
func IsFetch(err error) bool { return KindOf(err) == KindFetch }

// IsParse reports whether err is a parse error.
func IsParse(err error) bool { return KindOf(err) == KindParse }

// IsPersist reports whether err is a persist error.
func IsPersist(err error) bool { return KindOf(err) == KindPersist }

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

func wrapKind(kind Kind, err error, component, method, action string) error {
	if err == nil {
		return nil
	}

	return &ClassifiedError{
		Kind:      kind,
		Err:       Wrap(err, component, method, action),
		Component: component,
		Operation: method,
	}
}

// WrapConfiguration wraps an error as a configuration error with context.
func WrapConfiguration(err error, component, method, action string) error {
	return wrapKind(KindConfiguration, err, component, method, action)
}

// WrapMapping wraps an error as a mapping error with context.
func WrapMapping(err error, component, method, action string) error {
	return wrapKind(KindMapping, err, component, method, action)
}

// WrapFetch wraps an error as a fetch error with context.
func WrapFetch(err error, component, method, action string) error {
	return wrapKind(KindFetch, err, component, method, action)
}

// WrapParse wraps an error as a parse error with context.
func WrapParse(err error, component, method, action string) error {
	return wrapKind(KindParse, err, component, method, action)
}

// WrapPersist wraps an error as a persist error with context.
func WrapPersist(err error, component, method, action string) error {
	return wrapKind(KindPersist, err, component, method, action)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// New returns an error that formats as the given text.
func New(text string) error { return errors.New(text) }

// Join returns an error that wraps the given errors.
func Join(errs ...error) error { return errors.Join(errs...) }
