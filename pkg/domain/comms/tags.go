package comms

import (
	"regexp"
	"strconv"
	"strings"
)

// tagKeywords is the keyword list tag detection matches against.
var tagKeywords = []string{"decision", "action", "risk", "blocker", "status", "escalation"}

// DetectTags returns the keywords present in the text, lowercased,
// substring-matched, each at most once.
func DetectTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, kw := range tagKeywords {
		if strings.Contains(lower, kw) {
			tags = append(tags, kw)
		}
	}
	return tags
}

// RefRule maps a textual prefix convention to a reference kind: a
// "#123" following the prefix (or bare) resolves to that kind.
type RefRule struct {
	Prefix string  `json:"prefix" yaml:"prefix"`
	Kind   RefKind `json:"kind" yaml:"kind"`
}

// DefaultRefRules is the stock prefix convention: "epic #n" and
// "milestone #n" name those kinds, anything else with "#n" is an issue.
func DefaultRefRules() []RefRule {
	return []RefRule{
		{Prefix: "epic", Kind: RefEpic},
		{Prefix: "milestone", Kind: RefMilestone},
	}
}

var refPattern = regexp.MustCompile(`(?i)(\w+)?\s*#(\d+)`)

// ExtractRefs finds "#<digits>" references in the text and classifies
// each by the word preceding it per the rules; unprefixed references
// are issues. Duplicates are collapsed.
func ExtractRefs(text string, rules []RefRule) []Ref {
	matches := refPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[Ref]bool)
	var refs []Ref
	for _, m := range matches {
		id, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		kind := RefIssue
		if word := strings.ToLower(m[1]); word != "" {
			for _, r := range rules {
				if word == r.Prefix {
					kind = r.Kind
					break
				}
			}
		}
		ref := Ref{Kind: kind, ID: id}
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}
