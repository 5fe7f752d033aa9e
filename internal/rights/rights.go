// Package rights models legacy access categories, per-file rights and their
// inheritance rules, shared by all rights resolvers and source loaders.
package rights

import (
	"strings"
	"time"
)

// AccessCategory is the closed set of dataset-level access categories found
// in the legacy metadata.
type AccessCategory string

const (
	OpenAccess              AccessCategory = "OPEN_ACCESS"
	OpenAccessForRegistered AccessCategory = "OPEN_ACCESS_FOR_REGISTERED_USERS"
	RequestPermission       AccessCategory = "REQUEST_PERMISSION"
	NoAccess                AccessCategory = "NO_ACCESS"
	GroupAccess             AccessCategory = "GROUP_ACCESS"
)

// File-level accessibility/visibility tokens. The category-to-token mapping
// is many-to-fewer and therefore irreversible.
const (
	TokenAnonymous         = "ANONYMOUS"
	TokenKnown             = "KNOWN"
	TokenRestrictedRequest = "RESTRICTED_REQUEST"
	TokenNone              = "NONE"
)

// categoryTokens maps each access category to its coarse file-level token.
// GROUP_ACCESS and REQUEST_PERMISSION intentionally collapse to the same
// restricted token.
var categoryTokens = map[AccessCategory]string{
	OpenAccess:              TokenAnonymous,
	OpenAccessForRegistered: TokenKnown,
	RequestPermission:       TokenRestrictedRequest,
	GroupAccess:             TokenRestrictedRequest,
	NoAccess:                TokenNone,
}

// ParseCategory matches s against the category name set. The second return
// value reports whether s named a known category.
func ParseCategory(s string) (AccessCategory, bool) {
	c := AccessCategory(strings.TrimSpace(s))
	_, ok := categoryTokens[c]
	return c, ok
}

// now is indirected for tests exercising the embargo cutoff.
var now = time.Now

// FileRights holds the resolved access rights of one file. The zero value is
// fully empty and is filled entirely by ApplyDefaults.
type FileRights struct {
	AccessibleTo string
	VisibleTo    string
	EmbargoDate  *time.Time
}

// SetFileRights sets AccessibleTo from the category's mapped token and
// unconditionally sets VisibleTo to the open token. Visibility stays open
// regardless of the accessibility category.
func (r *FileRights) SetFileRights(category AccessCategory) {
	if t, ok := categoryTokens[category]; ok {
		r.AccessibleTo = t
	}
	r.VisibleTo = TokenAnonymous
}

// embargoLayouts lists the date encodings seen in legacy availability fields.
var embargoLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// SetEmbargoDate parses raw and stores the date only when it lies strictly in
// the future; past, empty or unparseable values leave the field unset.
// Surrounding quotes and whitespace are tolerated.
func (r *FileRights) SetEmbargoDate(raw string) {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"'`))
	if s == "" {
		return
	}
	for _, layout := range embargoLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.After(now()) {
			r.EmbargoDate = &t
		}
		return
	}
}

// ApplyDefaults merges dataset-level defaults into the file rights and
// returns the result. AccessibleTo and VisibleTo keep their current value
// when non-empty; EmbargoDate is always taken from the defaults, because
// embargo timing is dataset-wide even where per-file rights exist.
func (r FileRights) ApplyDefaults(defaults FileRights) FileRights {
	merged := r
	if merged.AccessibleTo == "" {
		merged.AccessibleTo = defaults.AccessibleTo
	}
	if merged.VisibleTo == "" {
		merged.VisibleTo = defaults.VisibleTo
	}
	merged.EmbargoDate = defaults.EmbargoDate
	return merged
}
