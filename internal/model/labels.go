package model

import (
	"regexp"
	"strings"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s.]+`)

// DefaultLabeler turns a property key such as "resourcePath", "http_version"
// or "'type" into a title-cased label. A leading quote used to escape
// reserved words is dropped.
func DefaultLabeler(key string) string {
	key = strings.TrimPrefix(strings.TrimSpace(key), "'")
	if key == "" {
		return ""
	}

	var segments []string
	for _, word := range splitWordsPattern.Split(key, -1) {
		if word == "" {
			continue
		}
		for _, part := range strings.Fields(splitCamel(word)) {
			segments = append(segments, titleCase(part))
		}
	}
	return strings.Join(segments, " ")
}

func splitCamel(input string) string {
	runes := []rune(input)
	var out strings.Builder
	for i, r := range runes {
		if i > 0 && isBoundary(runes, i) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

// isBoundary splits "fooBar", "foo2", "HTTPServer" (before the "S") and
// "v2beta".
func isBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	switch {
	case isLower(prev) && isUpper(cur):
		return true
	case isLetter(prev) && isDigit(cur), isDigit(prev) && isLetter(cur):
		return true
	case isUpper(prev) && isUpper(cur) && i+1 < len(runes) && isLower(runes[i+1]):
		return true
	}
	return false
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

// titleCase keeps acronyms such as "HTTP" intact.
func titleCase(word string) string {
	if word == "" {
		return ""
	}
	if strings.ToUpper(word) == word {
		return word
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
