package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	docPolicyOnce sync.Once
	docPolicy     *bluemonday.Policy
)

// SanitizeDocumentation strips field documentation down to inline formatting,
// lists and links.
func SanitizeDocumentation(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(documentationSanitizer().Sanitize(trimmed))
}

func documentationSanitizer() *bluemonday.Policy {
	docPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements(
			"p", "br", "b", "strong", "i", "em", "code", "pre",
			"ul", "ol", "li", "span",
		)
		policy.AllowAttrs("href", "title").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		policy.AllowAttrs("class").OnElements("code", "span")

		docPolicy = policy
	})
	return docPolicy
}
