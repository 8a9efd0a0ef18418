package rendering

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/resume-typeset/internal/resume"
	"github.com/jonathan/resume-typeset/internal/texsafe"
)

const (
	// contactSep separates contact line entries.
	contactSep = ` $|$ `
	// lineBreak is a LaTeX forced line break between skills lines.
	lineBreak = " \\\\\n"
	// inlineTechThreshold is the maximum escaped length of a technology list
	// that still fits next to a project heading; longer lists move to a
	// leading bullet.
	inlineTechThreshold = 40
)

// specialSkillsCategory receives nested treatment without repeating its own
// label, since the section header already says it.
const specialSkillsCategory = "Technical Skills"

// FormatPersonalInfo builds the identity block. Absent or unrecognized input
// yields a fixed placeholder, never an error.
func FormatPersonalInfo(pi resume.PersonalInfo) string {
	switch pi.Kind {
	case resume.ShapeStructured:
		return formatStructuredContact(pi.Structured)
	case resume.ShapeLegacy:
		return formatLegacyContact(pi.Legacy)
	default:
		return identityBlock("Your Name", "phone $|$ email $|$ linkedin $|$ github")
	}
}

func formatStructuredContact(d resume.PersonalDetails) string {
	name := texsafe.Escape(d.Name)
	if name == "" {
		name = "Your Name"
	}

	// Field order is fixed: phone, email, linkedin, github.
	var items []string
	if d.Phone != "" {
		phone := texsafe.Escape(d.Phone)
		items = append(items, fmt.Sprintf(`\href{tel:%s}{%s}`, strings.ReplaceAll(phone, "-", ""), phone))
	}
	if d.Email != "" {
		email := texsafe.Escape(d.Email)
		items = append(items, fmt.Sprintf(`\href{mailto:%s}{\underline{%s}}`, email, email))
	}
	if d.LinkedIn != "" {
		linkedin := texsafe.Escape(d.LinkedIn)
		items = append(items, fmt.Sprintf(`\href{%s}{\underline{%s}}`, texsafe.EnsureProtocol(linkedin), linkedin))
	}
	if d.GitHub != "" {
		github := texsafe.Escape(d.GitHub)
		items = append(items, fmt.Sprintf(`\href{%s}{\underline{%s}}`, texsafe.EnsureProtocol(github), github))
	}

	return identityBlock(name, strings.Join(items, contactSep))
}

func formatLegacyContact(s string) string {
	parts := strings.Split(strings.TrimSpace(s), "|")

	// Only the first two whitespace-delimited tokens form the name; trailing
	// titles ("Jane Doe Senior Engineer") are dropped.
	nameTokens := strings.Fields(strings.TrimSpace(parts[0]))
	var name string
	if len(nameTokens) >= 2 {
		name = texsafe.Escape(strings.Join(nameTokens[:2], " "))
	} else {
		name = texsafe.Escape(strings.TrimSpace(parts[0]))
	}

	var items []string
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		escaped := texsafe.Escape(part)
		switch {
		case texsafe.IsEmail(part):
			items = append(items, fmt.Sprintf(`\href{mailto:%s}{\underline{%s}}`, escaped, escaped))
		case texsafe.IsLinkedIn(part):
			items = append(items, fmt.Sprintf(`\href{%s}{\underline{%s}}`, texsafe.EnsureProtocol(part), escaped))
		case texsafe.IsGitHub(part):
			items = append(items, fmt.Sprintf(`\href{%s}{\underline{%s}}`, texsafe.EnsureProtocol(part), escaped))
		case texsafe.IsPhone(part):
			items = append(items, fmt.Sprintf(`\href{tel:%s}{%s}`, texsafe.Digits(part), escaped))
		default:
			items = append(items, escaped)
		}
	}

	return identityBlock(name, strings.Join(items, contactSep))
}

func identityBlock(name, contact string) string {
	return "\\begin{center}\n" +
		fmt.Sprintf("\\textbf{\\Huge \\scshape %s} \\\\ \\vspace{1pt}\n", name) +
		fmt.Sprintf("\\small %s\n", contact) +
		"\\end{center}"
}

// FormatEducation builds the education section. The structured shape strips
// an institution's trailing duplicate of its location; the legacy shape runs
// the regex extractors and zips their results positionally.
func FormatEducation(ed resume.Education) string {
	var b strings.Builder
	b.WriteString("\\section{Education}\n\\resumeSubHeadingListStart\n")

	switch ed.Kind {
	case resume.ShapeStructured:
		for _, e := range ed.Entries {
			inst := e.Institution
			if inst != "" && e.Location != "" && strings.HasSuffix(inst, e.Location) {
				inst = strings.TrimSpace(strings.ReplaceAll(inst, e.Location, ""))
			}
			b.WriteString(subheading(texsafe.Escape(inst), texsafe.Escape(e.Location), texsafe.Escape(e.Degree), texsafe.Escape(e.Dates)))
			if len(e.Details) > 0 {
				b.WriteString("\\resumeItemListStart\n")
				for _, d := range e.Details {
					b.WriteString(resumeItem(d))
				}
				b.WriteString("\\resumeItemListEnd\n")
			}
		}
	case resume.ShapeLegacy:
		for _, e := range extractLegacyEducation(ed.Legacy) {
			b.WriteString(subheading(texsafe.Escape(e.Institution), texsafe.Escape(e.Location), texsafe.Escape(e.Degree), texsafe.Escape(e.Dates)))
		}
	}

	b.WriteString("\\resumeSubHeadingListEnd\n")
	return b.String()
}

var (
	eduSplitRe    = regexp.MustCompile(`(University|Institute|College|Aug \d{4})`)
	eduLocationRe = regexp.MustCompile(`[A-Za-z]+,\s*[A-Z]{2}|[A-Za-z]+,\s*[A-Za-z]+`)
	eduDegreeRe   = regexp.MustCompile(`(?:Master|Bachelor|PhD|Doctor)[^,\n]*(?:Science|Arts|Engineering|Computer)[^,\n]*`)
	eduDatesRe    = regexp.MustCompile(`Aug \d{4} – May \d{4}`)
)

// extractLegacyEducation parses the legacy delimited-text education shape.
// Four independent extractors run over the string and their results are
// zipped positionally; positions lacking both a degree and dates are dropped.
func extractLegacyEducation(s string) []resume.EducationEntry {
	parts := splitKeepingSeparators(eduSplitRe, s)

	var institutions []string
	for i, part := range parts {
		if part != "University" && part != "Institute" && part != "College" {
			continue
		}
		if i == 0 || i+1 >= len(parts) {
			continue
		}
		tail := parts[i+1]
		tail = strings.SplitN(tail, "Master", 2)[0]
		tail = strings.SplitN(tail, "Bachelor", 2)[0]
		institutions = append(institutions, strings.TrimSpace(parts[i-1]+part+strings.TrimRight(tail, " ")))
	}

	locations := eduLocationRe.FindAllString(s, -1)
	degrees := eduDegreeRe.FindAllString(s, -1)
	dates := eduDatesRe.FindAllString(s, -1)

	n := len(institutions)
	for _, m := range []int{len(locations), len(degrees), len(dates)} {
		if m > n {
			n = m
		}
	}

	var entries []resume.EducationEntry
	for i := 0; i < n; i++ {
		e := resume.EducationEntry{
			Institution: at(institutions, i),
			Location:    at(locations, i),
			Degree:      at(degrees, i),
			Dates:       at(dates, i),
		}
		if e.Institution != "" && (e.Degree != "" || e.Dates != "") {
			entries = append(entries, e)
		}
	}
	return entries
}

// splitKeepingSeparators splits s around matches of re, keeping each match as
// its own element between the surrounding text segments.
func splitKeepingSeparators(re *regexp.Regexp, s string) []string {
	var parts []string
	last := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		parts = append(parts, s[last:loc[0]], s[loc[0]:loc[1]])
		last = loc[1]
	}
	parts = append(parts, s[last:])
	return parts
}

func at(items []string, i int) string {
	if i < len(items) {
		return items[i]
	}
	return ""
}

// FormatExperience builds the experience section. Empty input still yields a
// structurally closed section so the surrounding markup stays valid.
func FormatExperience(entries []resume.ExperienceEntry) string {
	if len(entries) == 0 {
		return "\\section{Experience}\n\\resumeSubHeadingListStart\n\\resumeSubHeadingListEnd\n"
	}

	var b strings.Builder
	b.WriteString("\\section{Experience}\n\\resumeSubHeadingListStart\n")
	for _, job := range entries {
		b.WriteString(subheading(texsafe.Escape(job.Title), texsafe.Escape(job.Dates), texsafe.Escape(job.Company), texsafe.Escape(job.Location)))
		b.WriteString("\\resumeItemListStart\n")
		for _, d := range job.Details {
			b.WriteString(resumeItem(d))
		}
		b.WriteString("\\resumeItemListEnd\n")
	}
	b.WriteString("\\resumeSubHeadingListEnd\n")
	return b.String()
}

// FormatSkills builds the skills section. Structured categories render one
// bold label per line; a category holding subcategories renders each
// subcategory as its own bold line, one nesting level deep.
func FormatSkills(s resume.Skills) string {
	var b strings.Builder
	b.WriteString("\\section{Technical Skills}\n")
	b.WriteString("\\begin{itemize}[leftmargin=0pt, itemindent=0pt, labelwidth=0pt, labelsep=0pt, align=left, label={}]%\n")
	b.WriteString("\\small{\\item{\n")

	var formatted []string
	switch s.Kind {
	case resume.ShapeStructured:
		formatted = formatSkillCategories(s.Categories)
	case resume.ShapeLegacy:
		for _, skill := range s.Legacy {
			if idx := strings.Index(skill, ":"); idx >= 0 {
				category := strings.TrimSpace(skill[:idx])
				details := strings.TrimSpace(skill[idx+1:])
				formatted = append(formatted, fmt.Sprintf(`\textbf{%s}: %s`, texsafe.Escape(category), texsafe.Escape(details)))
			} else {
				formatted = append(formatted, texsafe.Escape(skill))
			}
		}
	}
	b.WriteString(strings.Join(formatted, lineBreak))

	b.WriteString("\n}}\n\\end{itemize}\n")
	return b.String()
}

func formatSkillCategories(cats []resume.SkillCategory) []string {
	var formatted []string

	// The specially named category comes first and drops its own label, to
	// avoid repeating the section header.
	for _, cat := range cats {
		if cat.Name != specialSkillsCategory {
			continue
		}
		if len(cat.Sub) > 0 {
			formatted = append(formatted, subcategoryLines(cat.Sub)...)
		} else if len(cat.Skills) > 0 {
			formatted = append(formatted, fmt.Sprintf(`\textbf{%s}: %s`, specialSkillsCategory, joinSkills(cat.Skills)))
		}
	}

	for _, cat := range cats {
		if cat.Name == specialSkillsCategory {
			continue
		}
		label := texsafe.Escape(cat.Name)
		switch {
		case len(cat.Sub) > 0:
			lines := subcategoryLines(cat.Sub)
			if len(lines) > 0 {
				formatted = append(formatted, fmt.Sprintf(`\textbf{%s}: `, label)+strings.Join(lines, lineBreak))
			}
		case len(cat.Skills) > 0:
			formatted = append(formatted, fmt.Sprintf(`\textbf{%s}: %s`, label, joinSkills(cat.Skills)))
		default:
			formatted = append(formatted, fmt.Sprintf(`\textbf{%s}: %s`, label, texsafe.Escape(cat.Text)))
		}
	}

	return formatted
}

func subcategoryLines(subs []resume.SkillSubcategory) []string {
	var lines []string
	for _, sub := range subs {
		if len(sub.Skills) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf(`\textbf{%s}: %s`, texsafe.Escape(sub.Name), joinSkills(sub.Skills)))
	}
	return lines
}

func joinSkills(skills []string) string {
	escaped := make([]string, len(skills))
	for i, skill := range skills {
		escaped[i] = texsafe.Escape(skill)
	}
	return strings.Join(escaped, ", ")
}

// FormatProjects builds the projects section. A short technology list rides
// on the heading line; a longer one becomes the first bullet so the heading
// does not overflow.
func FormatProjects(entries []resume.ProjectEntry) string {
	if len(entries) == 0 {
		return "\\section{Projects}\n\\resumeSubHeadingListStart\n\\resumeSubHeadingListEnd\n"
	}

	var b strings.Builder
	b.WriteString("\\section{Projects}\n\\resumeSubHeadingListStart\n")
	for _, p := range entries {
		name := texsafe.Escape(p.Name)
		tech := formatTechnologies(p.Technologies)

		switch {
		case tech != "" && len(tech) > inlineTechThreshold:
			b.WriteString(fmt.Sprintf("\\resumeProjectHeading\n{\\textbf{%s}}{}\n\\resumeItemListStart\n", name))
			b.WriteString(fmt.Sprintf("\\resumeItem{\\emph{Technologies:} %s}\n", tech))
		case tech != "":
			b.WriteString(fmt.Sprintf("\\resumeProjectHeading\n{\\textbf{%s} $|$ \\emph{%s}}{}\n\\resumeItemListStart\n", name, tech))
		default:
			b.WriteString(fmt.Sprintf("\\resumeProjectHeading\n{\\textbf{%s}}{}\n\\resumeItemListStart\n", name))
		}

		for _, d := range p.Details {
			b.WriteString(resumeItem(d))
		}
		b.WriteString("\\resumeItemListEnd\n")
	}
	b.WriteString("\\resumeSubHeadingListEnd\n")
	return b.String()
}

func formatTechnologies(t resume.Technologies) string {
	if len(t.List) > 0 {
		return joinSkills(t.List)
	}
	return texsafe.Escape(t.Text)
}

func subheading(first, second, third, fourth string) string {
	return fmt.Sprintf("\\resumeSubheading\n{%s}{%s}\n{%s}{%s}\n", first, second, third, fourth)
}

func resumeItem(text string) string {
	return fmt.Sprintf("\\resumeItem{%s}\n", texsafe.Escape(text))
}
