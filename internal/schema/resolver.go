package schema

import (
	"regexp"

	"snowddl/pkg/models"
)

// StageTokens are the logical stage names, in execution order. Objects
// in later stages may depend on earlier ones.
var StageTokens = []string{"raw", "stage", "curated"}

// Resolver maps logical stage tokens to the actual schema names from
// configuration and rewrites schema-qualified identifiers in SQL text.
type Resolver struct {
	mapping  map[string]string
	patterns map[string]*regexp.Regexp
}

// NewResolver builds a Resolver from the configured schema mapping.
func NewResolver(schemas models.Schemas) *Resolver {
	r := &Resolver{
		mapping: map[string]string{
			"raw":     schemas.First,
			"stage":   schemas.Second,
			"curated": schemas.Third,
		},
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, token := range StageTokens {
		// Case-sensitive, word-boundary match of "<token>." as it
		// appears in schema-qualified identifiers.
		r.patterns[token] = regexp.MustCompile(`\b` + token + `\.`)
	}
	return r
}

// Rewrite replaces every word-boundary occurrence of "<token>." with the
// configured "<actual>." for each stage token. Pure text transform.
//
// Known approximation: occurrences inside string literals or comments
// are rewritten too. This matches the behavior the DDL convention
// relies on and is deliberately not "fixed" with a SQL parser.
func (r *Resolver) Rewrite(sql string) string {
	for _, token := range StageTokens {
		sql = r.patterns[token].ReplaceAllString(sql, r.mapping[token]+".")
	}
	return sql
}

// Actual returns the configured schema name for a stage token.
func (r *Resolver) Actual(token string) (string, bool) {
	name, ok := r.mapping[token]
	return name, ok
}

// Stages returns (token, actual) pairs in execution order.
func (r *Resolver) Stages() []Stage {
	stages := make([]Stage, 0, len(StageTokens))
	for _, token := range StageTokens {
		stages = append(stages, Stage{Token: token, Schema: r.mapping[token]})
	}
	return stages
}

// Stage pairs a logical token with its actual schema name.
type Stage struct {
	Token  string
	Schema string
}
