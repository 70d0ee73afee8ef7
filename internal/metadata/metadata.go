// SPDX-License-Identifier: MPL-2.0

// Package metadata reads and validates deposition metadata documents.
//
// Metadata files are TOML; string values may reference CLI-supplied
// variables as ${NAME}, which are substituted before validation. The
// package enforces the three fields Zenodo requires on every deposit:
// title, upload_type, and at least one creator.
package metadata

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// UploadTypes is Zenodo's fixed vocabulary for the upload_type field.
var UploadTypes = []string{
	"publication",
	"poster",
	"presentation",
	"dataset",
	"image",
	"video",
	"software",
	"lesson",
	"physicalobject",
	"other",
}

var (
	// ErrMetadataParse is the sentinel error wrapped by metadata ParseError.
	ErrMetadataParse = errors.New("metadata file is not valid TOML")
	// ErrMetadataInvalid is the sentinel error wrapped by InvalidMetadataError.
	ErrMetadataInvalid = errors.New("metadata is incomplete")
)

type (
	// ParseError is returned when a metadata file is not valid TOML.
	// It wraps ErrMetadataParse for errors.Is() compatibility.
	ParseError struct {
		Path  string
		Cause error
	}

	// InvalidMetadataError is returned when required metadata fields are
	// missing or blank. It wraps ErrMetadataInvalid for errors.Is()
	// compatibility.
	InvalidMetadataError struct {
		Missing []string
	}
)

// variableRef matches ${NAME} references in metadata string values.
var variableRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	return fmt.Sprintf("metadata file %s is not valid TOML: %v", e.Path, e.Cause)
}

// Unwrap returns the wrapped errors for errors.Is()/errors.As().
func (e *ParseError) Unwrap() []error { return []error{ErrMetadataParse, e.Cause} }

// Error implements the error interface for InvalidMetadataError.
func (e *InvalidMetadataError) Error() string {
	return fmt.Sprintf("metadata is incomplete: missing %s", strings.Join(e.Missing, ", "))
}

// Unwrap returns ErrMetadataInvalid for errors.Is() compatibility.
func (e *InvalidMetadataError) Unwrap() error { return ErrMetadataInvalid }

// IsUploadType reports whether s is a known Zenodo upload type.
func IsUploadType(s string) bool {
	return slices.Contains(UploadTypes, s)
}

// FromTOML reads a metadata document, substituting ${NAME} references in
// string values from vars. References to unknown variables are left
// intact so a typo shows up verbatim in the API's validation error
// instead of silently becoming an empty string.
func FromTOML(path string, vars map[string]string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata file: %w", err)
	}

	var md map[string]any
	if err := toml.Unmarshal(data, &md); err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}

	if len(vars) > 0 {
		md = expandValue(md, vars).(map[string]any)
	}
	return md, nil
}

// expandValue walks the decoded document and substitutes variable
// references in every string it finds, including inside nested tables
// and arrays.
func expandValue(v any, vars map[string]string) any {
	switch val := v.(type) {
	case string:
		return variableRef.ReplaceAllStringFunc(val, func(ref string) string {
			name := ref[2 : len(ref)-1]
			if repl, ok := vars[name]; ok {
				return repl
			}
			return ref
		})
	case map[string]any:
		for k, elem := range val {
			val[k] = expandValue(elem, vars)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = expandValue(elem, vars)
		}
		return val
	default:
		return v
	}
}

// Validate checks the fields Zenodo requires on every deposit: a
// non-blank title, a non-blank upload_type, and at least one creator.
func Validate(md map[string]any) error {
	var missing []string
	if stringField(md, "title") == "" {
		missing = append(missing, "title")
	}
	if stringField(md, "upload_type") == "" {
		missing = append(missing, "upload_type")
	}
	if creators, ok := md["creators"].([]any); !ok || len(creators) == 0 {
		missing = append(missing, "creators")
	}
	if len(missing) > 0 {
		return &InvalidMetadataError{Missing: missing}
	}
	return nil
}

// Overrides are metadata fields supplied as CLI flags. Non-zero fields
// replace the file's values; keywords are appended and de-duplicated
// instead.
type Overrides struct {
	Title       string
	Description string
	UploadType  string
	Keywords    []string
}

// Apply merges flag overrides into a metadata document in place and
// returns it. A nil document is allocated first so flags alone can build
// a minimal metadata set.
func (o Overrides) Apply(md map[string]any) map[string]any {
	if md == nil {
		md = make(map[string]any)
	}
	if o.Title != "" {
		md["title"] = o.Title
	}
	if o.Description != "" {
		md["description"] = o.Description
	}
	if o.UploadType != "" {
		md["upload_type"] = o.UploadType
	}
	if len(o.Keywords) > 0 {
		md["keywords"] = UnionKeywords(md["keywords"], o.Keywords)
	}
	return md
}

// UnionKeywords merges new keywords into an existing keyword list,
// preserving order and dropping duplicates. The existing value comes
// from a decoded document, so it may be nil, []any, or []string.
func UnionKeywords(existing any, added []string) []string {
	var out []string
	seen := make(map[string]bool)

	appendOne := func(kw string) {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[kw] {
			return
		}
		seen[kw] = true
		out = append(out, kw)
	}

	switch cur := existing.(type) {
	case []string:
		for _, kw := range cur {
			appendOne(kw)
		}
	case []any:
		for _, kw := range cur {
			if s, ok := kw.(string); ok {
				appendOne(s)
			}
		}
	}
	for _, kw := range added {
		appendOne(kw)
	}
	return out
}

// SplitKeywords splits repeatable -k flag values on commas and trims the
// parts, so "-k a,b -k c" yields three keywords.
func SplitKeywords(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

// stringField returns the named field as a trimmed string, or "" when
// absent or not a string.
func stringField(md map[string]any, key string) string {
	s, _ := md[key].(string)
	return strings.TrimSpace(s)
}
