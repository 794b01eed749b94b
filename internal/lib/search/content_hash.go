package search

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// ContentHasher derives cache keys from prompts.
type ContentHasher struct {
	namespace string
}

// NewContentHasher creates a hasher whose keys are scoped to namespace,
// usually the provider kind and model, so switching models never reuses
// answers from another one.
func NewContentHasher(namespace string) *ContentHasher {
	return &ContentHasher{namespace: namespace}
}

// HashPrompt returns a hex SHA-256 of the normalized prompt.
func (h *ContentHasher) HashPrompt(prompt string) string {
	signature := fmt.Sprintf("%s|%s", h.namespace, h.normalizeText(prompt))
	hash := sha256.Sum256([]byte(signature))
	return fmt.Sprintf("%x", hash)
}

// normalizeText collapses whitespace. Case is kept: the prompt carries
// case-sensitive tokens and place names.
func (h *ContentHasher) normalizeText(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}
