package rendering

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/resume-typeset/internal/resume"
)

// Region patterns locate the five mutable blocks inside an otherwise static
// template. Each spans non-greedily from its opening marker to its closing
// marker; a template missing a marker simply keeps that block as-is.
var (
	identityRegion   = regexp.MustCompile(`(?s)\\begin\{center\}\s*\\textbf\{\\Huge \\scshape.+?\\end\{center\}`)
	educationRegion  = regexp.MustCompile(`(?s)\\section\{Education\}\s*\\resumeSubHeadingListStart.*?\\resumeSubHeadingListEnd`)
	experienceRegion = regexp.MustCompile(`(?s)\\section\{Experience\}\s*\\resumeSubHeadingListStart.*?\\resumeSubHeadingListEnd`)
	projectsRegion   = regexp.MustCompile(`(?s)\\section\{Projects\}\s*\\resumeSubHeadingListStart.*?\\resumeSubHeadingListEnd`)
	skillsRegion     = regexp.MustCompile(`(?s)\\section\{Technical Skills\}\s*\\begin\{itemize\}.*?\\end\{itemize\}`)

	// orphanStart marks leftover sample subheadings that some template
	// revisions carry outside the recognized regions.
	orphanStart = regexp.MustCompile(`%-{3,}\s*\\resumeSubheading`)
)

// ReadTemplate reads a LaTeX template file from disk.
func ReadTemplate(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", path),
				Cause:   err,
			}
		}
		return "", &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", path),
			Cause:   err,
		}
	}
	return string(content), nil
}

// Populate replaces each recognized template region with the formatted output
// of the corresponding section of rec. Only sections present on the record
// are substituted; unmatched regions are skipped silently. Substitution is
// literal, so formatter output containing regexp replacement syntax passes
// through untouched. A record with no present sections returns the template
// unmodified.
func Populate(template string, rec *resume.Record) string {
	substitutions := []struct {
		present  bool
		region   *regexp.Regexp
		fragment string
	}{
		{rec.PersonalInfo.Present, identityRegion, FormatPersonalInfo(rec.PersonalInfo)},
		{rec.Education.Present, educationRegion, FormatEducation(rec.Education)},
		{rec.HasExperience, experienceRegion, FormatExperience(rec.Experience)},
		{rec.HasProjects, projectsRegion, FormatProjects(rec.Projects)},
		{rec.Skills.Present, skillsRegion, FormatSkills(rec.Skills)},
	}

	populated := template
	replaced := false
	for _, sub := range substitutions {
		if !sub.present {
			continue
		}
		fragment := sub.fragment
		if sub.region.MatchString(populated) {
			populated = sub.region.ReplaceAllStringFunc(populated, func(string) string {
				return fragment
			})
			replaced = true
		}
	}

	if replaced {
		populated = removeOrphanBlocks(populated)
	}
	return populated
}

// removeOrphanBlocks deletes leftover boilerplate: a comment rule followed by
// a stray subheading, up to the next \section or the end of the document.
// Such blocks are duplicated sample content baked into some template
// revisions; after region substitution they no longer belong to any section.
func removeOrphanBlocks(s string) string {
	for {
		loc := orphanStart.FindStringIndex(s)
		if loc == nil {
			return s
		}

		end := orphanEnd(s, loc[1])
		if end < 0 {
			return s
		}
		s = s[:loc[0]] + s[end:]
	}
}

// orphanEnd finds the earliest boundary at or after from where an orphan
// block must stop: the next \section, or the (whitespace-trimmed) position
// of \end{document}.
func orphanEnd(s string, from int) int {
	end := -1
	if idx := strings.Index(s[from:], `\section`); idx >= 0 {
		end = from + idx
	}
	if idx := strings.Index(s[from:], `\end{document}`); idx >= 0 {
		p := from + idx
		for p > from && unicode.IsSpace(rune(s[p-1])) {
			p--
		}
		if end < 0 || p < end {
			end = p
		}
	}
	return end
}
