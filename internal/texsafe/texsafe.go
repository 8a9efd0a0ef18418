// Package texsafe provides LaTeX-safe text escaping and heuristics for
// classifying contact strings (email, LinkedIn, GitHub, phone).
package texsafe

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// phoneMinDigits is the minimum number of digit characters for a string to be
// considered a phone number.
const phoneMinDigits = 7

var emailPattern = regexp.MustCompile(`@.*\.`)

// Escape escapes special LaTeX characters in text.
// Special characters: \ { } $ & % # ^ _ ~
// The single-pass scan guarantees that markers introduced for one character
// are never re-escaped by a later substitution.
func Escape(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, r := range text {
		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '{':
			result.WriteString(`\{`)
		case '}':
			result.WriteString(`\}`)
		case '$':
			result.WriteString(`\$`)
		case '&':
			result.WriteString(`\&`)
		case '%':
			result.WriteString(`\%`)
		case '#':
			result.WriteString(`\#`)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '_':
			result.WriteString(`\_`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// EscapeAny escapes an arbitrary value by coercing it to its display string
// first. A nil value escapes to the empty string, never to a literal "nil" or
// "null" token.
func EscapeAny(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return Escape(s)
	}
	return Escape(fmt.Sprint(v))
}

// IsEmail reports whether text is likely an email address: an '@' followed
// eventually by a '.'.
func IsEmail(text string) bool {
	return strings.Contains(text, "@") && emailPattern.MatchString(text)
}

// IsLinkedIn reports whether text is likely a LinkedIn profile reference.
func IsLinkedIn(text string) bool {
	return strings.Contains(strings.ToLower(text), "linkedin.com")
}

// IsGitHub reports whether text is likely a GitHub profile reference.
func IsGitHub(text string) bool {
	return strings.Contains(strings.ToLower(text), "github.com")
}

// IsPhone reports whether text is likely a phone number: at least seven digit
// characters anywhere in the string. The predicates are deliberately loose
// and may overlap; callers resolve precedence (email > LinkedIn > GitHub >
// phone > plain text).
func IsPhone(text string) bool {
	count := 0
	for _, r := range text {
		if unicode.IsDigit(r) {
			count++
		}
	}
	return count >= phoneMinDigits
}

// EnsureProtocol prefixes url with "https://" unless it already carries an
// http or https scheme. Idempotent; an empty url stays empty.
func EnsureProtocol(url string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://" + url
}

// Digits returns only the digit characters of s, for tel: link targets.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
