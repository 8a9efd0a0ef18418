// Package resume defines the resume record data model. Every section accepts
// two historical input shapes: a structured (object/array) form and a legacy
// delimited-text form. Decoding is tolerant; unrecognized values degrade to
// an absent section rather than failing.
package resume

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Shape tags which input variant a section was decoded from.
type Shape int

const (
	// ShapeNone means the section was absent or unrecognized.
	ShapeNone Shape = iota
	// ShapeStructured is the object/array form.
	ShapeStructured
	// ShapeLegacy is the older delimited-string form.
	ShapeLegacy
)

// Record is the root resume entity. Unknown top-level keys are ignored.
// The Has* flags record whether the experience/projects keys appeared at all;
// section types carry their own Present flag. Presence drives template
// population: absent sections leave their template region untouched.
type Record struct {
	PersonalInfo  PersonalInfo
	Education     Education
	Experience    []ExperienceEntry
	HasExperience bool
	Skills        Skills
	Projects      []ProjectEntry
	HasProjects   bool
}

// PersonalInfo holds identity and contact data in either shape. Present with
// Kind ShapeNone means the value appeared but was unrecognized; formatters
// degrade it to a placeholder.
type PersonalInfo struct {
	Present    bool
	Kind       Shape
	Structured PersonalDetails
	Legacy     string
}

// PersonalDetails is the structured personal_info form. All fields except
// Name are optional; an empty string means absent.
type PersonalDetails struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

// Education holds the education section in either shape.
type Education struct {
	Present bool
	Kind    Shape
	Entries []EducationEntry
	Legacy  string
}

// EducationEntry is one structured education record.
type EducationEntry struct {
	Institution string
	Location    string
	Degree      string
	Dates       string
	Details     []string
}

// ExperienceEntry is one work-experience record. Missing fields stay empty
// and render as empty segments.
type ExperienceEntry struct {
	Company  string
	Title    string
	Location string
	Dates    string
	Details  []string
}

// ProjectEntry is one project record. Name resolves from "name" falling back
// to "title"; Details resolve from "details" falling back to a singular
// "description".
type ProjectEntry struct {
	Name         string
	Technologies Technologies
	Details      []string
}

// Technologies is a list-or-string union. At most one of List and Text is
// populated.
type Technologies struct {
	List []string
	Text string
}

// Empty reports whether no technologies were provided.
func (t Technologies) Empty() bool {
	return len(t.List) == 0 && t.Text == ""
}

// Skills holds the skills section: either ordered categories (with one
// allowed level of subcategory nesting) or a flat legacy list of
// "Category: skill, skill" strings.
type Skills struct {
	Present    bool
	Kind       Shape
	Categories []SkillCategory
	Legacy     []string
}

// SkillCategory is one top-level skills category. Exactly one of Skills,
// Sub, or Text is populated: a flat skill list, one level of subcategories,
// or a scalar value.
type SkillCategory struct {
	Name   string
	Skills []string
	Sub    []SkillSubcategory
	Text   string
}

// SkillSubcategory is a nested category one level below a SkillCategory.
type SkillSubcategory struct {
	Name   string
	Skills []string
}

// ParseDocument decodes a raw JSON resume document into a Record. A
// "customized_resume" envelope is unwrapped when present, and a document
// missing its leading brace is repaired before decoding.
func ParseDocument(data []byte) (*Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty resume document")
	}
	if trimmed[0] != '{' {
		trimmed = append([]byte("{"), trimmed...)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse resume JSON: %w", err)
	}
	if inner, ok := envelope["customized_resume"]; ok {
		var rec Record
		if err := json.Unmarshal(inner, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse customized_resume: %w", err)
		}
		return &rec, nil
	}

	var rec Record
	if err := rec.decode(envelope); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UnmarshalJSON decodes a Record from its JSON object form, dispatching each
// known section on shape and ignoring unknown keys.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("resume record must be a JSON object: %w", err)
	}
	return r.decode(fields)
}

func (r *Record) decode(fields map[string]json.RawMessage) error {
	if raw, ok := fields["personal_info"]; ok {
		r.PersonalInfo = decodePersonalInfo(raw)
		r.PersonalInfo.Present = true
	}
	if raw, ok := fields["education"]; ok {
		r.Education = decodeEducation(raw)
		r.Education.Present = true
	}
	if raw, ok := fields["experience"]; ok {
		r.Experience = decodeExperience(raw)
		r.HasExperience = true
	}
	if raw, ok := fields["skills"]; ok {
		r.Skills = decodeSkills(raw)
		r.Skills.Present = true
	}
	if raw, ok := fields["projects"]; ok {
		r.Projects = decodeProjects(raw)
		r.HasProjects = true
	}
	return nil
}

func decodePersonalInfo(raw json.RawMessage) PersonalInfo {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		return PersonalInfo{
			Kind: ShapeStructured,
			Structured: PersonalDetails{
				Name:     asString(obj["name"]),
				Email:    asString(obj["email"]),
				Phone:    asString(obj["phone"]),
				LinkedIn: asString(obj["linkedin"]),
				GitHub:   asString(obj["github"]),
			},
		}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
		return PersonalInfo{Kind: ShapeLegacy, Legacy: s}
	}
	return PersonalInfo{}
}

func decodeEducation(raw json.RawMessage) Education {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		entries := make([]EducationEntry, 0, len(items))
		for _, item := range items {
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
				continue
			}
			entries = append(entries, EducationEntry{
				Institution: asString(obj["institution"]),
				Location:    asString(obj["location"]),
				Degree:      asString(obj["degree"]),
				Dates:       asString(obj["dates"]),
				Details:     asStringList(obj["details"]),
			})
		}
		return Education{Kind: ShapeStructured, Entries: entries}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
		return Education{Kind: ShapeLegacy, Legacy: s}
	}
	return Education{}
}

func decodeExperience(raw json.RawMessage) []ExperienceEntry {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	entries := make([]ExperienceEntry, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			continue
		}
		entries = append(entries, ExperienceEntry{
			Company:  asString(obj["company"]),
			Title:    asString(obj["title"]),
			Location: asString(obj["location"]),
			Dates:    asString(obj["dates"]),
			Details:  asStringList(obj["details"]),
		})
	}
	return entries
}

func decodeProjects(raw json.RawMessage) []ProjectEntry {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	entries := make([]ProjectEntry, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			continue
		}

		name := asString(obj["name"])
		if name == "" {
			name = asString(obj["title"])
		}

		// Some schema revisions used "technologies_used"; prefer it.
		techRaw, ok := obj["technologies_used"]
		if !ok {
			techRaw = obj["technologies"]
		}

		details := asStringList(obj["details"])
		if len(details) == 0 {
			// Singular description normalizes to a one-element list.
			if desc := asStringList(obj["description"]); len(desc) > 0 {
				details = desc
			} else if s := asString(obj["description"]); s != "" {
				details = []string{s}
			}
		}

		entries = append(entries, ProjectEntry{
			Name:         name,
			Technologies: decodeTechnologies(techRaw),
			Details:      details,
		})
	}
	return entries
}

func decodeTechnologies(raw json.RawMessage) Technologies {
	if len(raw) == 0 {
		return Technologies{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return Technologies{List: list}
	}
	return Technologies{Text: asString(raw)}
}

// decodeSkills decodes the skills union. The structured form is parsed with
// a token stream so that category order matches document order; encoding/json
// maps would lose it.
func decodeSkills(raw json.RawMessage) Skills {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Skills{}
	}

	switch trimmed[0] {
	case '{':
		cats, err := decodeOrderedCategories(trimmed)
		if err != nil {
			return Skills{}
		}
		return Skills{Kind: ShapeStructured, Categories: cats}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Skills{}
		}
		legacy := make([]string, 0, len(items))
		for _, item := range items {
			if s := asString(item); s != "" {
				legacy = append(legacy, s)
			}
		}
		return Skills{Kind: ShapeLegacy, Legacy: legacy}
	default:
		return Skills{}
	}
}

func decodeOrderedCategories(raw []byte) ([]SkillCategory, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // consume '{'
		return nil, err
	}

	var cats []SkillCategory
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		cats = append(cats, decodeCategory(name, value))
	}
	return cats, nil
}

func decodeCategory(name string, raw json.RawMessage) SkillCategory {
	trimmed := bytes.TrimSpace(raw)
	cat := SkillCategory{Name: name}
	if len(trimmed) == 0 {
		return cat
	}

	switch trimmed[0] {
	case '[':
		cat.Skills = asStringList(trimmed)
	case '{':
		// One nesting level only: subcategory values must be skill lists;
		// anything deeper or malformed is flattened to its display strings.
		subs, err := decodeOrderedSubcategories(trimmed)
		if err == nil {
			cat.Sub = subs
		}
	default:
		cat.Text = asString(trimmed)
	}
	return cat
}

func decodeOrderedSubcategories(raw []byte) ([]SkillSubcategory, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var subs []SkillSubcategory
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		subs = append(subs, SkillSubcategory{Name: name, Skills: asStringList(value)})
	}
	return subs, nil
}

// asString coerces a raw JSON value to its display string. null and absent
// values become "", scalars use their JSON text, and composites are ignored.
func asString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return ""
	}
	return fmt.Sprint(v)
}

// asStringList coerces a raw JSON array to a string slice, stringifying
// scalar elements and dropping nulls and composites.
func asStringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
