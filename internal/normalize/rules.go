package normalize

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// RulesVersion is the rule schema this build understands. Assets declaring
// any other version are rejected rather than half-applied.
const RulesVersion = 1

// ErrRulesVersion indicates a rule asset written for a different schema.
var ErrRulesVersion = errors.New("unsupported rules version")

//go:embed rules.yaml
var embeddedRules []byte

// Replacement rewrites one whole word (or fixed phrase) to another.
// List order is significant: irregular forms such as "won't" must be
// expanded before the generic suffix rules would mangle them.
type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Ruleset is the data-driven half of the normalization pipeline: hesitation
// fillers, whole-word contraction expansions, and British-to-American
// spellings. Compiled rulesets are immutable and safe for concurrent use.
type Ruleset struct {
	Version      int               `yaml:"version"`
	Fillers      []string          `yaml:"fillers"`
	Contractions []Replacement     `yaml:"contractions"`
	Spellings    map[string]string `yaml:"spellings"`

	fillerRe     *regexp.Regexp
	contractions []compiledReplacement
}

type compiledReplacement struct {
	re *regexp.Regexp
	to string
}

var (
	embeddedOnce sync.Once
	embeddedSet  *Ruleset
)

// Embedded returns the ruleset compiled into the binary.
func Embedded() *Ruleset {
	embeddedOnce.Do(func() {
		rs, err := Parse(embeddedRules)
		if err != nil {
			panic(fmt.Sprintf("normalize: embedded rules.yaml: %v", err))
		}
		embeddedSet = rs
	})
	return embeddedSet
}

// Load reads and compiles a rule asset from disk.
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return rs, nil
}

// Parse decodes and compiles a rule asset.
func Parse(data []byte) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if err := rs.compile(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (rs *Ruleset) compile() error {
	if rs.Version != RulesVersion {
		return fmt.Errorf("%w: %d (want %d)", ErrRulesVersion, rs.Version, RulesVersion)
	}

	if len(rs.Fillers) > 0 {
		alts := make([]string, 0, len(rs.Fillers))
		for _, f := range rs.Fillers {
			f = strings.ToLower(strings.TrimSpace(f))
			if f == "" {
				return errors.New("rules: empty filler entry")
			}
			alts = append(alts, regexp.QuoteMeta(f))
		}
		re, err := regexp.Compile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
		if err != nil {
			return fmt.Errorf("rules: fillers: %w", err)
		}
		rs.fillerRe = re
	}

	rs.contractions = make([]compiledReplacement, 0, len(rs.Contractions))
	for _, r := range rs.Contractions {
		from := strings.ToLower(strings.TrimSpace(r.From))
		if from == "" {
			return errors.New("rules: contraction with empty from")
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(from) + `\b`)
		if err != nil {
			return fmt.Errorf("rules: contraction %q: %w", r.From, err)
		}
		rs.contractions = append(rs.contractions, compiledReplacement{re: re, to: strings.ToLower(r.To)})
	}

	// Spelling values that are themselves keys would rewrite twice and
	// break idempotence.
	spellings := make(map[string]string, len(rs.Spellings))
	for from, to := range rs.Spellings {
		from = strings.ToLower(strings.TrimSpace(from))
		to = strings.ToLower(strings.TrimSpace(to))
		if from == "" || to == "" {
			return errors.New("rules: empty spelling entry")
		}
		spellings[from] = to
	}
	for from, to := range spellings {
		if _, chained := spellings[to]; chained {
			return fmt.Errorf("rules: spelling %q maps to %q, which is itself rewritten", from, to)
		}
	}
	rs.Spellings = spellings
	return nil
}
