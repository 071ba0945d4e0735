// Package normalize canonicalizes transcript text so that superficial
// differences between model outputs do not count as word errors.
//
// The enabled pipeline lowercases, strips annotation spans and hesitation
// fillers, expands contractions, removes punctuation and diacritics,
// standardizes numeric forms to digits, and maps British spellings to their
// American equivalents. The pass is pure and idempotent: normalizing an
// already-normalized line yields the same line.
//
// The contraction, filler, and spelling tables are a versioned rule asset
// (rules.yaml, embedded) rather than hardcoded logic, because the rule table
// silently changes scores: two evaluations are only comparable when they ran
// the same ruleset version. An external asset with the same schema may be
// loaded in its place.
package normalize
