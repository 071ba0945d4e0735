// Package align computes minimum-edit-distance alignments between token
// sequences.
//
// Alignment operates on whole tokens, not characters: the unit of error is a
// word. The cost model is the classic Levenshtein one (substitution,
// deletion, insertion all cost 1; a match costs 0) and the backtrace resolves
// ties in a fixed order (match, then substitution, then deletion, then
// insertion) so the operation sequence for a given input pair is always the
// same.
package align
