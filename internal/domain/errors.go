package domain

import "errors"

// Kind classifies an intentional, data-layer failure. The HTTP layer maps each
// kind to a status code without inspecting message text.
type Kind int

const (
	// KindInternal is the zero value and never produced on purpose.
	KindInternal Kind = iota
	// KindNotFound: a referenced resource does not exist.
	KindNotFound
	// KindInvalid: malformed identifiers or query parameters.
	KindInvalid
	// KindMissing: a required field was absent.
	KindMissing
	// KindConflict: the entry already exists.
	KindConflict
)

// String returns a short label, used for logs and error codes.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalid:
		return "invalid_query"
	case KindMissing:
		return "missing_parameter"
	case KindConflict:
		return "duplicate_entry"
	default:
		return "internal"
	}
}

// Error is a tagged failure carrying its kind and, for KindNotFound, the name
// of the missing resource (e.g. "article", "author").
type Error struct {
	Kind     Kind
	Resource string
	Err      error
}

// Error renders the client-facing message for the kind.
func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		if e.Resource == "" {
			return "not found"
		}
		return e.Resource + " not found"
	case KindInvalid:
		return "invalid query"
	case KindMissing:
		return "missing parameter"
	case KindConflict:
		return "entry already exists"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind and resource, so sentinels such
// as services.ErrArticleNotFound work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Resource == t.Resource
}

// NotFound returns a KindNotFound error for resource.
func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Resource: resource}
}

// Invalid returns a KindInvalid error wrapping cause (which may be nil).
func Invalid(cause error) error {
	return &Error{Kind: KindInvalid, Err: cause}
}

// Missing returns a KindMissing error wrapping cause (which may be nil).
func Missing(cause error) error {
	return &Error{Kind: KindMissing, Err: cause}
}

// Conflict returns a KindConflict error wrapping cause (which may be nil).
func Conflict(cause error) error {
	return &Error{Kind: KindConflict, Err: cause}
}

// ErrInvalidQuery is the shared malformed-input error.
var ErrInvalidQuery = &Error{Kind: KindInvalid}

// KindOf reports the kind of err, or KindInternal when err is not tagged.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
