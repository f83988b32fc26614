package formats

import (
	"fmt"
	"sort"
	"strings"
)

// Category groups format tags by the converter family that handles
// them. The values double as the category filter accepted by the
// formats listing endpoints.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
	CategoryData     Category = "data"
	CategoryUnknown  Category = "unknown"
)

// categories maps every known input format tag to its family.
// Centralizing this here avoids scattering format knowledge across the
// CLI, the HTTP handlers, and the web UI; all of them consult this
// table and nothing else.
var categories = map[string]Category{
	"png":  CategoryImage,
	"jpg":  CategoryImage,
	"jpeg": CategoryImage,
	"webp": CategoryImage,
	"bmp":  CategoryImage,
	"gif":  CategoryImage,
	"pdf":  CategoryDocument,
	"csv":  CategoryData,
	"json": CategoryData,
	"xlsx": CategoryData,
	"xls":  CategoryData,
}

// compatibility declares, for every supported input format, the set of
// legal output formats. An input tag missing from this table has an
// empty conversion menu, which is not an error.
var compatibility = map[string][]string{
	"png":  {"jpg", "jpeg", "webp", "bmp", "gif"},
	"jpg":  {"png", "webp", "bmp", "gif"},
	"jpeg": {"png", "webp", "bmp", "gif"},
	"webp": {"png", "jpg", "jpeg", "bmp", "gif"},
	"bmp":  {"png", "jpg", "jpeg", "webp", "gif"},
	"gif":  {"png", "jpg", "jpeg", "webp", "bmp"},
	"pdf":  {"txt", "png", "jpg"},
	"csv":  {"json", "xlsx"},
	"json": {"csv", "xlsx"},
	"xlsx": {"csv", "json"},
	"xls":  {"csv", "json"},
}

// Normalize lowercases a format tag and strips a leading dot so that
// file extensions and bare tags are interchangeable.
func Normalize(tag string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tag)), ".")
}

// CategoryOf returns the converter family for a format tag, or
// CategoryUnknown for tags outside the table.
func CategoryOf(tag string) Category {
	if c, ok := categories[Normalize(tag)]; ok {
		return c
	}
	return CategoryUnknown
}

// KnownInput reports whether the tag is a valid input format for any
// conversion.
func KnownInput(tag string) bool {
	_, ok := compatibility[Normalize(tag)]
	return ok
}

// SupportedOutputs returns the legal output formats for an input
// format. Unknown inputs yield an empty slice.
func SupportedOutputs(input string) []string {
	outs := compatibility[Normalize(input)]
	cp := make([]string, len(outs))
	copy(cp, outs)
	return cp
}

// Supported reports whether the (input, output) pair is registered.
func Supported(input, output string) bool {
	in := Normalize(input)
	out := Normalize(output)
	for _, o := range compatibility[in] {
		if o == out {
			return true
		}
	}
	return false
}

// Conversion describes one input format's entry in the registry
// listing.
type Conversion struct {
	Input    string   `json:"input"`
	Category Category `json:"category"`
	Outputs  []string `json:"outputs"`
}

// All returns the registry table, optionally filtered by category.
// The result is sorted by input tag so listings are stable.
func All(filter Category) []Conversion {
	list := make([]Conversion, 0, len(compatibility))
	for in, outs := range compatibility {
		cat := categories[in]
		if filter != "" && filter != cat {
			continue
		}
		cp := make([]string, len(outs))
		copy(cp, outs)
		list = append(list, Conversion{Input: in, Category: cat, Outputs: cp})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Input < list[j].Input })
	return list
}

// ValidationError reports a rejected conversion option. Field names the
// offending key so callers can surface it verbatim.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid option %q: %s", e.Field, e.Reason)
}

// UnsupportedConversionError reports an (input, output) pair that is
// not registered.
type UnsupportedConversionError struct {
	Input  string
	Output string
}

func (e *UnsupportedConversionError) Error() string {
	return fmt.Sprintf("unsupported conversion: %s to %s", e.Input, e.Output)
}

// Options holds normalized conversion parameters after validation.
// Zero values mean "not supplied" except Quality, which always carries
// its default for lossy encoders.
type Options struct {
	Quality   int     `json:"quality,omitempty"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
	Pretty    bool    `json:"pretty,omitempty"`
	PageStart int     `json:"pageStart,omitempty"`
	PageEnd   int     `json:"pageEnd,omitempty"`
}

// DefaultQuality matches the lossy-encoder default used across the
// image and document converters.
const DefaultQuality = 85

// ValidateOptions checks a raw options map against the registry for the
// given pair and returns the normalized Options. Unknown keys,
// out-of-range values, and width/height combined with scale are all
// rejected rather than silently reinterpreted.
func ValidateOptions(input, output string, raw map[string]any) (Options, error) {
	in := Normalize(input)
	out := Normalize(output)
	if !Supported(in, out) {
		return Options{}, &UnsupportedConversionError{Input: in, Output: out}
	}

	cat := categories[in]
	opts := Options{Quality: DefaultQuality}

	for key, val := range raw {
		switch key {
		case "quality":
			if cat != CategoryImage && cat != CategoryDocument {
				return Options{}, &ValidationError{Field: key, Reason: "not accepted for " + string(cat) + " conversions"}
			}
			q, err := intValue(val)
			if err != nil {
				return Options{}, &ValidationError{Field: key, Reason: err.Error()}
			}
			if q < 1 || q > 100 {
				return Options{}, &ValidationError{Field: key, Reason: "must be between 1 and 100"}
			}
			opts.Quality = q
		case "width":
			if cat != CategoryImage {
				return Options{}, &ValidationError{Field: key, Reason: "only accepted for image conversions"}
			}
			w, err := intValue(val)
			if err != nil {
				return Options{}, &ValidationError{Field: key, Reason: err.Error()}
			}
			if w <= 0 {
				return Options{}, &ValidationError{Field: key, Reason: "must be a positive integer"}
			}
			opts.Width = w
		case "height":
			if cat != CategoryImage {
				return Options{}, &ValidationError{Field: key, Reason: "only accepted for image conversions"}
			}
			h, err := intValue(val)
			if err != nil {
				return Options{}, &ValidationError{Field: key, Reason: err.Error()}
			}
			if h <= 0 {
				return Options{}, &ValidationError{Field: key, Reason: "must be a positive integer"}
			}
			opts.Height = h
		case "scale":
			if cat != CategoryImage {
				return Options{}, &ValidationError{Field: key, Reason: "only accepted for image conversions"}
			}
			s, err := floatValue(val)
			if err != nil {
				return Options{}, &ValidationError{Field: key, Reason: err.Error()}
			}
			if s <= 0 {
				return Options{}, &ValidationError{Field: key, Reason: "must be greater than zero"}
			}
			opts.Scale = s
		case "pretty":
			if cat != CategoryData {
				return Options{}, &ValidationError{Field: key, Reason: "only accepted for data conversions"}
			}
			b, ok := val.(bool)
			if !ok {
				return Options{}, &ValidationError{Field: key, Reason: "must be a boolean"}
			}
			opts.Pretty = b
		case "pageRange":
			if cat != CategoryDocument {
				return Options{}, &ValidationError{Field: key, Reason: "only accepted for document conversions"}
			}
			s, ok := val.(string)
			if !ok {
				return Options{}, &ValidationError{Field: key, Reason: "must be a string like \"1-5\""}
			}
			start, end, err := ParsePageRange(s)
			if err != nil {
				return Options{}, &ValidationError{Field: key, Reason: err.Error()}
			}
			opts.PageStart = start
			opts.PageEnd = end
		default:
			return Options{}, &ValidationError{Field: key, Reason: "unknown option"}
		}
	}

	// width/height and scale are mutually exclusive; reject the
	// conflict instead of picking a silent winner.
	if opts.Scale > 0 && (opts.Width > 0 || opts.Height > 0) {
		return Options{}, &ValidationError{Field: "scale", Reason: "cannot be combined with width or height"}
	}

	return opts, nil
}

// ParsePageRange parses a 1-based inclusive "start-end" page range. A
// bare "N" selects the single page N.
func ParsePageRange(s string) (start, end int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty page range")
	}
	parts := strings.SplitN(s, "-", 2)
	if _, err := fmt.Sscanf(parts[0], "%d", &start); err != nil {
		return 0, 0, fmt.Errorf("invalid page range %q", s)
	}
	end = start
	if len(parts) == 2 {
		if _, err := fmt.Sscanf(parts[1], "%d", &end); err != nil {
			return 0, 0, fmt.Errorf("invalid page range %q", s)
		}
	}
	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("invalid page range %q", s)
	}
	return start, end, nil
}

func intValue(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		// JSON numbers decode as float64; only accept integral values.
		if n != float64(int(n)) {
			return 0, fmt.Errorf("must be an integer")
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("must be an integer")
	}
}

func floatValue(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("must be a number")
	}
}
