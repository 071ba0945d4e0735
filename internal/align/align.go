package align

// OpKind classifies one step of a token alignment.
type OpKind int

const (
	// Match indicates the reference and hypothesis tokens are identical.
	Match OpKind = iota
	// Substitute indicates a hypothesis token replaced a reference token.
	Substitute
	// Delete indicates a reference token missing from the hypothesis.
	Delete
	// Insert indicates a hypothesis token absent from the reference.
	Insert
)

// String returns the short label used in diagnostics and reports.
func (k OpKind) String() string {
	switch k {
	case Match:
		return "match"
	case Substitute:
		return "sub"
	case Delete:
		return "del"
	case Insert:
		return "ins"
	default:
		return "unknown"
	}
}

// Counts aggregates the edit operations for one aligned pair.
type Counts struct {
	Substitutions   int
	Deletions       int
	Insertions      int
	ReferenceTokens int
}

// Errors returns the total number of edit operations.
func (c Counts) Errors() int {
	return c.Substitutions + c.Deletions + c.Insertions
}

// Add accumulates other into c. Addition is commutative, so partial counts
// may be merged in any order.
func (c *Counts) Add(other Counts) {
	c.Substitutions += other.Substitutions
	c.Deletions += other.Deletions
	c.Insertions += other.Insertions
	c.ReferenceTokens += other.ReferenceTokens
}

// Op records a single backtraced alignment step. Ref is empty for
// insertions and Hyp is empty for deletions.
type Op struct {
	Kind OpKind
	Ref  string
	Hyp  string
}

// Result couples operation counts with the ordered operation sequence.
// Ops runs left to right over the aligned pair.
type Result struct {
	Counts
	Ops []Op
}

// Tokens aligns hyp against ref and decomposes the minimum edit distance
// into substitution, deletion, and insertion counts.
//
// The cost table has len(ref)+1 rows and len(hyp)+1 columns; cell (i, j)
// holds the minimum number of token edits transforming the first i reference
// tokens into the first j hypothesis tokens. Row 0 and column 0 are the
// all-insertions and all-deletions base cases. The table is discarded once
// the backtrace completes.
func Tokens(ref, hyp []string) Result {
	dist := costTable(ref, hyp)

	res := Result{Counts: Counts{ReferenceTokens: len(ref)}}
	if len(ref) == 0 && len(hyp) == 0 {
		return res
	}

	ops := make([]Op, 0, max(len(ref), len(hyp)))
	i, j := len(ref), len(hyp)
	for i > 0 || j > 0 {
		switch {
		case i == 0:
			ops = append(ops, Op{Kind: Insert, Hyp: hyp[j-1]})
			j--
		case j == 0:
			ops = append(ops, Op{Kind: Delete, Ref: ref[i-1]})
			i--
		case ref[i-1] == hyp[j-1]:
			ops = append(ops, Op{Kind: Match, Ref: ref[i-1], Hyp: hyp[j-1]})
			i--
			j--
		case dist[i][j] == dist[i-1][j-1]+1:
			ops = append(ops, Op{Kind: Substitute, Ref: ref[i-1], Hyp: hyp[j-1]})
			i--
			j--
		case dist[i][j] == dist[i-1][j]+1:
			ops = append(ops, Op{Kind: Delete, Ref: ref[i-1]})
			i--
		default:
			ops = append(ops, Op{Kind: Insert, Hyp: hyp[j-1]})
			j--
		}
	}

	// The backtrace walks from the bottom-right corner, so ops are reversed.
	for left, right := 0, len(ops)-1; left < right; left, right = left+1, right-1 {
		ops[left], ops[right] = ops[right], ops[left]
	}

	for _, op := range ops {
		switch op.Kind {
		case Substitute:
			res.Substitutions++
		case Delete:
			res.Deletions++
		case Insert:
			res.Insertions++
		}
	}
	res.Ops = ops
	return res
}

// Distance returns the minimum token edit distance without a backtrace.
func Distance(ref, hyp []string) int {
	dist := costTable(ref, hyp)
	return dist[len(ref)][len(hyp)]
}

func costTable(ref, hyp []string) [][]int {
	dist := make([][]int, len(ref)+1)
	dist[0] = make([]int, len(hyp)+1)
	for j := 0; j <= len(hyp); j++ {
		dist[0][j] = j
	}
	for i := 1; i <= len(ref); i++ {
		dist[i] = make([]int, len(hyp)+1)
		dist[i][0] = i
		for j := 1; j <= len(hyp); j++ {
			sub := dist[i-1][j-1]
			if ref[i-1] != hyp[j-1] {
				sub++
			}
			del := dist[i-1][j] + 1
			ins := dist[i][j-1] + 1
			dist[i][j] = min(sub, del, ins)
		}
	}
	return dist
}
