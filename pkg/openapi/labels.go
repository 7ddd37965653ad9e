package openapi

import (
	"regexp"
	"strings"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// humanize turns a property name into a label: "first_name" and "firstName"
// both become "First name".
func humanize(name string) string {
	var segments []string
	for _, word := range splitWordsPattern.Split(name, -1) {
		if word != "" {
			segments = append(segments, splitCamel(word))
		}
	}
	label := strings.ToLower(strings.Join(segments, " "))
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input[i-1], r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(prev byte, r rune) bool {
	p := rune(prev)
	return (isLower(p) && isUpper(r)) || (isLetter(p) && isDigit(r)) || (isDigit(p) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }
