package feed

import (
	"regexp"
	"strings"
)

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

func NormalizeHashtag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

// ExtractHashtags merges the tags written in content with explicit ones,
// lower-cased and without duplicates, preserving first-seen order.
func ExtractHashtags(content string, explicit []string) []string {
	var tags []string
	seen := make(map[string]struct{})

	add := func(raw string) {
		tag := NormalizeHashtag(raw)
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, match := range hashtagPattern.FindAllStringSubmatch(content, -1) {
		add(match[1])
	}

	for _, tag := range explicit {
		add(tag)
	}

	return tags
}
