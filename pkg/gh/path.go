package gh

import (
	"net/http"
	"strings"
)

// ResourcePath is an ordered, immutable list of URL path segments.
// The zero value is the empty (root) path.
type ResourcePath struct {
	segments []string
}

// NewResourcePath creates a path from the given segments.
func NewResourcePath(segments ...string) ResourcePath {
	return ResourcePath{}.Append(segments...)
}

// Append returns a new path with segments added after the existing ones.
// The receiver is never modified.
func (p ResourcePath) Append(segments ...string) ResourcePath {
	if len(segments) == 0 {
		return p
	}

	next := make([]string, 0, len(p.segments)+len(segments))
	next = append(next, p.segments...)
	next = append(next, segments...)

	return ResourcePath{segments: next}
}

// Segments returns a copy of the path segments.
func (p ResourcePath) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)

	return out
}

// Len returns the number of segments.
func (p ResourcePath) Len() int {
	return len(p.segments)
}

// IsEmpty reports whether the path has no segments.
func (p ResourcePath) IsEmpty() bool {
	return len(p.segments) == 0
}

// String returns the slash-joined path with a leading slash, e.g. "/repos/octo/hello-world".
func (p ResourcePath) String() string {
	return "/" + strings.Join(p.segments, "/")
}

// Verb is one of the closed set of terminal operations.
type Verb int

// Terminal verbs.
const (
	VerbRead Verb = iota + 1
	VerbCreate
	VerbReplace
	VerbPartialUpdate
	VerbDelete
	VerbDownload
)

var verbNames = map[string]Verb{
	"read":           VerbRead,
	"get":            VerbRead,
	"create":         VerbCreate,
	"post":           VerbCreate,
	"replace":        VerbReplace,
	"put":            VerbReplace,
	"partial_update": VerbPartialUpdate,
	"patch":          VerbPartialUpdate,
	"delete":         VerbDelete,
	"download":       VerbDownload,
}

// ParseVerb maps a verb name to a Verb. Any other name is an ordinary
// path segment and yields false.
func ParseVerb(name string) (Verb, bool) {
	verb, ok := verbNames[name]

	return verb, ok
}

// IsVerb reports whether name is a terminal verb name.
func IsVerb(name string) bool {
	_, ok := verbNames[name]

	return ok
}

// Method returns the HTTP method used for the verb.
func (v Verb) Method() string {
	switch v {
	case VerbRead, VerbDownload:
		return http.MethodGet
	case VerbCreate:
		return http.MethodPost
	case VerbReplace:
		return http.MethodPut
	case VerbPartialUpdate:
		return http.MethodPatch
	case VerbDelete:
		return http.MethodDelete
	default:
		return ""
	}
}

// String returns the canonical verb name.
func (v Verb) String() string {
	switch v {
	case VerbRead:
		return "read"
	case VerbCreate:
		return "create"
	case VerbReplace:
		return "replace"
	case VerbPartialUpdate:
		return "partial_update"
	case VerbDelete:
		return "delete"
	case VerbDownload:
		return "download"
	default:
		return "unknown"
	}
}
