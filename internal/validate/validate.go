// Package validate checks parsed places against the controlled vocabularies
// and structural rules of the format. Parsing itself never validates.
package validate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jwilliamsresearch/geon/internal/geon"
)

// Severity of an Issue.
type Severity string

// Severity levels.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single validation finding. Field is a path such as
// "CONTAINS[1].EXPERIENCE.pace".
type Issue struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Field    string   `json:"field" yaml:"field"`
	Message  string   `json:"message" yaml:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Field, i.Message)
}

// Result collects the issues found for one place tree.
type Result struct {
	Issues []Issue `json:"issues" yaml:"issues"`
}

// Valid reports whether no error level issue was found.
func (r *Result) Valid() bool {
	return len(r.bySeverity(SeverityError)) == 0
}

// Errors returns the error level issues.
func (r *Result) Errors() []Issue { return r.bySeverity(SeverityError) }

// Warnings returns the warning level issues.
func (r *Result) Warnings() []Issue { return r.bySeverity(SeverityWarning) }

// Err joins the error level issues, or returns nil for a valid place.
func (r *Result) Err() error {
	var errs []error
	for _, i := range r.Errors() {
		errs = append(errs, errors.New(i.Field+": "+i.Message))
	}
	return errors.Join(errs...)
}

func (r *Result) String() string {
	if len(r.Issues) == 0 {
		return "Valid (no issues)"
	}
	lines := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		lines[i] = issue.String()
	}
	return strings.Join(lines, "\n")
}

func (r *Result) bySeverity(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

func (r *Result) add(s Severity, field, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{Severity: s, Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks p and all its descendants.
func Validate(p *geon.Place) *Result {
	r := &Result{}
	validate(p, r)
	return r
}

func validate(p *geon.Place, r *Result) {
	checkRequired(p, r)
	checkType(p, r)
	checkLocation(p, r)
	checkBoundary(p, r)
	checkExperience(p, r)
	checkRecommended(p, r)

	for i, child := range p.Contains {
		if child == nil {
			continue
		}
		sub := Validate(child)
		for _, issue := range sub.Issues {
			issue.Field = fmt.Sprintf("CONTAINS[%d].%s", i, issue.Field)
			r.Issues = append(r.Issues, issue)
		}
	}
}

func checkRequired(p *geon.Place, r *Result) {
	if p.Name == "" {
		r.add(SeverityError, geon.KeyPlace, "Required field PLACE is missing or empty")
	}
	if p.Type == "" {
		r.add(SeverityError, geon.KeyType, "Required field TYPE is missing or empty")
	}
	if p.Location == nil {
		r.add(SeverityError, geon.KeyLocation, "Required field LOCATION is missing")
	}
}

func checkType(p *geon.Place, r *Result) {
	if p.Type != "" && !contains(PlaceTypes, p.Type) {
		r.add(SeverityWarning, geon.KeyType, "Type %q is not in the controlled vocabulary: %s",
			p.Type, strings.Join(sorted(PlaceTypes), ", "))
	}
}

func checkLocation(p *geon.Place, r *Result) {
	if p.Location == nil {
		return
	}
	if lat := p.Location.Lat; lat < -90 || lat > 90 {
		r.add(SeverityError, geon.KeyLocation, "Latitude %v is out of range [-90, 90]", lat)
	}
	if lon := p.Location.Lon; lon < -180 || lon > 180 {
		r.add(SeverityError, geon.KeyLocation, "Longitude %v is out of range [-180, 180]", lon)
	}
}

func checkBoundary(p *geon.Place, r *Result) {
	if len(p.Boundary) < 3 {
		return
	}
	if p.Boundary[0] != p.Boundary[len(p.Boundary)-1] {
		r.add(SeverityWarning, geon.KeyBoundary, "Boundary polygon is not closed (first and last coordinates differ)")
	}
}

func checkExperience(p *geon.Place, r *Result) {
	keys := make([]string, 0, len(p.Experience))
	for k := range p.Experience {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		scale, ok := ExperienceScales[key]
		if !ok {
			continue
		}
		base := baseValue(p.Experience[key])
		// compound values such as medium-high are accepted
		if strings.Contains(base, "-") {
			continue
		}
		if !contains(scale, base) {
			r.add(SeverityWarning, geon.KeyExperience+"."+key, "Value %q is not in the controlled vocabulary: %s",
				base, strings.Join(scale, ", "))
		}
	}
}

func checkRecommended(p *geon.Place, r *Result) {
	recommended := []struct {
		key   string
		empty bool
	}{
		{geon.KeyPurpose, len(p.Purpose) == 0},
		{geon.KeyExperience, len(p.Experience) == 0},
		{geon.KeyAdjacencies, len(p.Adjacencies) == 0},
		{geon.KeyConnectivity, len(p.Connectivity) == 0},
		{geon.KeySource, len(p.Source) == 0},
	}
	for _, f := range recommended {
		if f.empty {
			r.add(SeverityInfo, f.key, "Recommended field %s is empty", f.key)
		}
	}
}

// baseValue strips qualifiers: "moderate (daytime), busy" becomes "moderate".
func baseValue(v string) string {
	v, _, _ = strings.Cut(v, "(")
	v, _, _ = strings.Cut(v, ",")
	return strings.TrimSpace(v)
}

func sorted(list []string) []string {
	out := append([]string(nil), list...)
	sort.Strings(out)
	return out
}
