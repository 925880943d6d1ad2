package routing

import (
	"regexp"
	"strings"
	"unicode"
)

// Feature keyword groups mirror the training-time extraction; changing them
// invalidates a trained classifier's feature ordering.
var (
	duplicateFeatureKeywords = []string{
		"duplicate", "copy", "copies", "same as", "identical",
		"exact", "versions of", "renamed",
	}
	relationshipFeatureKeywords = []string{
		"join", "connect", "link", "relate", "reference",
		"foreign key", "linked to", "upstream", "downstream",
	}
	metadataFeatureKeywords = []string{
		"rows", "large", "small", "size", "count", "most",
		"largest", "smallest", "columns", "schema",
	}
	discoveryFeatureKeywords = []string{
		"find", "which", "show", "search", "contain",
		"where", "list", "get",
	}

	digitPattern = regexp.MustCompile(`\d+`)
)

// ExtractFeatures computes the lexical, keyword, question-type, specificity
// and complexity features a trained route classifier consumes. Embedding
// dimensions are appended by the caller when an embedder is available; the
// classifier treats absent features as 0.
func ExtractFeatures(question string) map[string]float64 {
	features := make(map[string]float64, 24)
	lower := strings.ToLower(question)
	tokens := strings.Fields(lower)

	// Lexical
	features["query_length"] = float64(len(tokens))
	features["char_length"] = float64(len(question))
	features["avg_word_length"] = avgWordLength(tokens)
	features["has_question_mark"] = boolFeature(strings.Contains(question, "?"))

	// Keyword presence
	features["has_duplicate_kw"] = containsAnyFeature(lower, duplicateFeatureKeywords)
	features["has_relationship_kw"] = containsAnyFeature(lower, relationshipFeatureKeywords)
	features["has_metadata_kw"] = containsAnyFeature(lower, metadataFeatureKeywords)
	features["has_discovery_kw"] = containsAnyFeature(lower, discoveryFeatureKeywords)

	// Question type
	features["starts_with_which"] = boolFeature(strings.HasPrefix(lower, "which"))
	features["starts_with_what"] = boolFeature(strings.HasPrefix(lower, "what"))
	features["starts_with_where"] = boolFeature(strings.HasPrefix(lower, "where"))
	features["starts_with_show"] = boolFeature(strings.HasPrefix(lower, "show"))
	features["starts_with_find"] = boolFeature(strings.HasPrefix(lower, "find"))

	// Specificity
	features["mentions_table_name"] = boolFeature(mentionsUppercaseToken(question))
	features["contains_number"] = boolFeature(digitPattern.MatchString(question))
	features["has_comparison"] = boolFeature(strings.ContainsAny(question, "<>="))

	// Complexity
	features["num_commas"] = float64(strings.Count(question, ","))
	features["num_and"] = float64(strings.Count(lower, " and "))
	features["num_or"] = float64(strings.Count(lower, " or "))

	return features
}

func avgWordLength(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	total := 0
	for _, t := range tokens {
		total += len(t)
	}
	return float64(total) / float64(len(tokens))
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func containsAnyFeature(q string, keywords []string) float64 {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return 1
		}
	}
	return 0
}

// mentionsUppercaseToken reports whether any whitespace-separated token is
// entirely uppercase letters, the convention for table names in questions.
func mentionsUppercaseToken(question string) bool {
	for _, token := range strings.Fields(question) {
		token = strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(token) < 2 {
			continue
		}
		hasLetter := false
		allUpper := true
		for _, r := range token {
			if unicode.IsLetter(r) {
				hasLetter = true
				if !unicode.IsUpper(r) {
					allUpper = false
					break
				}
			}
		}
		if hasLetter && allUpper {
			return true
		}
	}
	return false
}
