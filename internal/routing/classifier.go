// Package routing classifies natural-language catalog questions into
// retrieval routes and turns classifier probabilities into execution plans.
package routing

import (
	"regexp"
	"strings"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

// rule pairs an intent with its predicate. Rules are evaluated in order and
// the first match wins, so precedence lives in the table, not control flow.
type rule struct {
	intent models.Intent
	match  func(q string) bool
}

// Classifier performs deterministic, case-insensitive intent classification.
// The zero value is not usable; construct with NewClassifier.
type Classifier struct {
	rules []rule
}

// NewClassifier builds the classifier with its fixed priority rules.
func NewClassifier() *Classifier {
	return &Classifier{rules: []rule{
		{models.IntentSensitivityQuery, anyKeyword(
			"sensitive", "sensitivity", "pii", "personal",
			"classified", "confidential", "private",
			"high sensitivity", "low sensitivity", "critical",
		)},
		{models.IntentCrossSource, anyPattern(
			`similar.{0,20}(?:across|between|snowflake|databricks)`,
			`(?:snowflake|databricks).{0,20}similar`,
			`cross.{0,10}(?:source|platform|system)`,
			`match.{0,20}(?:between|across)`,
			`databricks.{0,20}(?:like|similar to|match).{0,20}snowflake`,
			`snowflake.{0,20}(?:like|similar to|match).{0,20}databricks`,
			`similar_to`,
			`same data.{0,10}(?:across|in both)`,
			`why.{0,30}similar`,
			`explain.{0,30}match`,
		)},
		{models.IntentDatabricksDiscovery, anyKeyword(
			"databricks", "unity catalog", "workspace.sample_data",
			"sales_transactions", "customer_feedback",
			"federated table", "federated column",
		)},
		{models.IntentDuplicateDetection, anyKeyword(
			"duplicate", "duplicates", "exact cop", "same as",
			"versions of", "renamed", "copies", "copy of", "similar table",
		)},
		{models.IntentLineageQuery, anyKeyword(
			"derives from", "derived from", "derive from",
			"feeds into", "feed into", "upstream", "downstream",
			"lineage", "source of", "created from", "built from",
			"depends on", "dependency", "dependencies",
		)},
		{models.IntentRelationshipTraversal, anyPattern(
			`connect(?:s|ed)? to`,
			`referenced? by`, `references?\b`,
			`foreign key`, `\bfk\b`,
			`link(?:s|ed)? to`,
			`relate(?:s|d)? to`,
		)},
		{models.IntentMetadataFilter, metadataFilterMatch()},
	}}
}

// Classify returns the intent for a question, falling back to
// semantic_discovery when no rule matches.
func (c *Classifier) Classify(question string) models.Intent {
	q := strings.ToLower(question)
	for _, r := range c.rules {
		if r.match(q) {
			return r.intent
		}
	}
	return models.IntentSemanticDiscovery
}

func anyKeyword(keywords ...string) func(string) bool {
	return func(q string) bool {
		for _, kw := range keywords {
			if strings.Contains(q, kw) {
				return true
			}
		}
		return false
	}
}

func anyPattern(patterns ...string) func(string) bool {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return func(q string) bool {
		for _, re := range compiled {
			if re.MatchString(q) {
				return true
			}
		}
		return false
	}
}

func metadataFilterMatch() func(string) bool {
	patterns := anyPattern(
		`most rows`, `largest`, `biggest`,
		`smallest`, `fewest rows`, `least rows`,
		`more than \d+`, `greater than \d+`,
		`less than \d+`, `fewer than \d+`,
		`>\s*\d+k?\s*rows`, `<\s*\d+k?\s*rows`,
		`\d+k\+\s*rows`,
	)
	return func(q string) bool {
		if patterns(q) {
			return true
		}
		// Schema membership: "tables in OLIST_SALES schema"
		return (strings.Contains(q, "tables in") || strings.Contains(q, "tables are in")) &&
			strings.Contains(q, "schema")
	}
}
