package assembler

import (
	"regexp"
	"sort"
	"strings"
)

// categoryKeywords is the supplemented category-tagging feature: it never
// drives a score component directly, but rides along on a FeatureBundle for
// the reason-string builder's category-pair clause. Lifted from the
// original match generator's CATEGORY_KEYWORDS table.
var categoryKeywords = map[string][]string{
	"health":        {"health", "wellness", "medical", "fitness", "natural", "traditional", "mental"},
	"business":      {"business", "entrepreneur", "startup", "consulting", "coaching", "marketing"},
	"finance":       {"finance", "financial", "money", "investment", "wealth", "accounting"},
	"personal_dev":  {"improvement", "success", "mindset", "motivation", "leadership", "growth"},
	"spirituality":  {"spiritual", "spirituality", "meditation", "mindfulness"},
	"relationships": {"relationship", "relationships", "dating", "marriage", "family"},
	"content":       {"podcast", "speaking", "author", "book", "content", "media", "video"},
	"tech":          {"technology", "software", "digital", "online", "internet", "website", "app"},
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"may": {}, "might": {}, "can": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {}, "me": {},
	"him": {}, "her": {}, "us": {}, "them": {}, "service": {}, "provider": {},
	"services": {}, "member": {}, "non": {}, "resource": {},
}

var wordPattern = regexp.MustCompile(`[a-z]{3,}`)

// Keywords lowercases text and returns its stop-word-stripped token set,
// the extraction the category tagger builds on. The Jaccard oracle uses its
// own, simpler extractor unless this one is passed to oracle.NewJaccard.
func Keywords(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopWords[w]; !stop {
			out[w] = struct{}{}
		}
	}
	return out
}

// categoriesFor tags a profile's business categories from its offers,
// needs, and free text, for the scorer's reason-string category-pair
// clause. It is diagnostic only — it never feeds Intent/Synergy scoring.
func categoriesFor(offers, needs []string, freeText ...string) map[string]struct{} {
	kw := make(map[string]struct{})
	for _, o := range offers {
		for w := range Keywords(o) {
			kw[w] = struct{}{}
		}
	}
	for _, n := range needs {
		for w := range Keywords(n) {
			kw[w] = struct{}{}
		}
	}
	for _, t := range freeText {
		for w := range Keywords(t) {
			kw[w] = struct{}{}
		}
	}

	cats := make(map[string]struct{})
	for cat, terms := range categoryKeywords {
		for _, t := range terms {
			if _, ok := kw[t]; ok {
				cats[cat] = struct{}{}
				break
			}
		}
	}
	return cats
}

// SharedCategory returns one category two bundles have in common, and
// whether any exists, for the reason string's cross-promotion clause. When
// more than one category overlaps, the alphabetically first is picked so the
// result is stable across runs — map iteration order isn't.
func SharedCategory(a, b FeatureBundle) (string, bool) {
	var shared []string
	for cat := range a.Categories {
		if _, ok := b.Categories[cat]; ok {
			shared = append(shared, cat)
		}
	}
	if len(shared) == 0 {
		return "", false
	}
	sort.Strings(shared)
	return shared[0], true
}
