package identity

import "strings"

type Strategy string

const (
	StrategyExactIdentifier      Strategy = "exact-identifier"
	StrategyStripLeadingZero     Strategy = "strip-leading-zero"
	StrategyLastElevenDigits     Strategy = "last-11-digits"
	StrategyStripAllLeadingZeros Strategy = "strip-all-leading-zeros"
)

// Indexes map normalized (digits only) keys to worker ids. They are
// built once per ingestion run.
type Indexes struct {
	ByIdentifierNumber map[string]string
	ByTaxID            map[string]string
}

// Matcher is one step of the resolution chain.
type Matcher struct {
	Strategy Strategy
	Match    func(clean string, idx Indexes) (string, bool)
}

type Resolution struct {
	WorkerID string
	Strategy Strategy
	Resolved bool
}

type Resolver struct {
	indexes Indexes
	chain   []Matcher
}

// NewResolver builds a resolver over idx. Without explicit matchers the
// default chain is used.
func NewResolver(idx Indexes, matchers ...Matcher) *Resolver {
	if len(matchers) == 0 {
		matchers = DefaultChain()
	}
	return &Resolver{indexes: idx, chain: matchers}
}

// Resolve tries each matcher in order and stops at the first hit.
// An unresolved identifier is not an error.
func (r *Resolver) Resolve(raw string) Resolution {
	clean := DigitsOnly(raw)
	if clean == "" {
		return Resolution{}
	}
	for _, m := range r.chain {
		if id, ok := m.Match(clean, r.indexes); ok {
			return Resolution{WorkerID: id, Strategy: m.Strategy, Resolved: true}
		}
	}
	return Resolution{}
}

func DefaultChain() []Matcher {
	return []Matcher{
		{Strategy: StrategyExactIdentifier, Match: matchExactIdentifier},
		{Strategy: StrategyStripLeadingZero, Match: matchStripLeadingZero},
		{Strategy: StrategyLastElevenDigits, Match: matchLastEleven},
		{Strategy: StrategyStripAllLeadingZeros, Match: matchStripAllLeadingZeros},
	}
}

func matchExactIdentifier(clean string, idx Indexes) (string, bool) {
	return lookup(idx.ByIdentifierNumber, clean)
}

func matchStripLeadingZero(clean string, idx Indexes) (string, bool) {
	if !strings.HasPrefix(clean, "0") {
		return "", false
	}
	return lookup(idx.ByTaxID, clean[1:])
}

func matchLastEleven(clean string, idx Indexes) (string, bool) {
	if len(clean) < 11 {
		return "", false
	}
	return lookup(idx.ByTaxID, clean[len(clean)-11:])
}

func matchStripAllLeadingZeros(clean string, idx Indexes) (string, bool) {
	return lookup(idx.ByTaxID, strings.TrimLeft(clean, "0"))
}

func lookup(index map[string]string, key string) (string, bool) {
	if key == "" || index == nil {
		return "", false
	}
	id, ok := index[key]
	return id, ok
}

// DigitsOnly drops every non-digit character.
func DigitsOnly(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if value[i] >= '0' && value[i] <= '9' {
			b.WriteByte(value[i])
		}
	}
	return b.String()
}
