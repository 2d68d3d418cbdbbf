package identity

import "testing"

func testIndexes() Indexes {
	return BuildIndexes([]WorkerKeys{
		{WorkerID: "w-ident", IdentifierNumber: "1234-5", TaxID: "999.888.777-66"},
		{WorkerID: "w-tax", IdentifierNumber: "", TaxID: "123.456.789-01"},
		{WorkerID: "w-short", IdentifierNumber: "", TaxID: "4567"},
	})
}

func TestResolveChain(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		workerID string
		strategy Strategy
	}{
		{"zero padded identifier misses", "000000012345", "", ""},
		{"exact identifier digits", "12345", "w-ident", StrategyExactIdentifier},
		{"strip one zero", "012345678901", "w-tax", StrategyStripLeadingZero},
		{"last eleven", "9912345678901", "w-tax", StrategyLastElevenDigits},
		{"strip all zeros", "000000004567", "w-short", StrategyStripAllLeadingZeros},
		{"punctuation ignored", "123.456.789-01", "w-tax", StrategyLastElevenDigits},
		{"unknown", "000000000001", "", ""},
		{"empty", "   ", "", ""},
	}
	resolver := NewResolver(testIndexes())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := resolver.Resolve(tc.raw)
			if res.WorkerID != tc.workerID {
				t.Fatalf("expected worker %q, got %q", tc.workerID, res.WorkerID)
			}
			if res.Strategy != tc.strategy {
				t.Fatalf("expected strategy %q, got %q", tc.strategy, res.Strategy)
			}
			if res.Resolved != (tc.workerID != "") {
				t.Fatalf("unexpected resolved flag %v", res.Resolved)
			}
		})
	}
}

type instrumented struct {
	calls []Strategy
}

func (in *instrumented) wrap(chain []Matcher) []Matcher {
	out := make([]Matcher, len(chain))
	for i, m := range chain {
		m := m
		out[i] = Matcher{
			Strategy: m.Strategy,
			Match: func(clean string, idx Indexes) (string, bool) {
				in.calls = append(in.calls, m.Strategy)
				return m.Match(clean, idx)
			},
		}
	}
	return out
}

func TestResolveStopsAtFirstHit(t *testing.T) {
	idx := testIndexes()
	cases := []struct {
		raw  string
		want []Strategy
	}{
		{"12345", []Strategy{StrategyExactIdentifier}},
		{"012345678901", []Strategy{StrategyExactIdentifier, StrategyStripLeadingZero}},
		{"9912345678901", []Strategy{StrategyExactIdentifier, StrategyStripLeadingZero, StrategyLastElevenDigits}},
		{"000000004567", []Strategy{StrategyExactIdentifier, StrategyStripLeadingZero, StrategyLastElevenDigits, StrategyStripAllLeadingZeros}},
	}
	for _, tc := range cases {
		in := &instrumented{}
		res := NewResolver(idx, in.wrap(DefaultChain())...).Resolve(tc.raw)
		if !res.Resolved {
			t.Fatalf("expected %q to resolve", tc.raw)
		}
		if len(in.calls) != len(tc.want) {
			t.Fatalf("%q: expected calls %v, got %v", tc.raw, tc.want, in.calls)
		}
		for i := range tc.want {
			if in.calls[i] != tc.want[i] {
				t.Fatalf("%q: expected calls %v, got %v", tc.raw, tc.want, in.calls)
			}
		}
		if res.Strategy != tc.want[len(tc.want)-1] {
			t.Fatalf("%q: resolved by %s, expected %s", tc.raw, res.Strategy, tc.want[len(tc.want)-1])
		}
	}
}

func TestBuildIndexesFirstWins(t *testing.T) {
	idx := BuildIndexes([]WorkerKeys{
		{WorkerID: "a", IdentifierNumber: "0042"},
		{WorkerID: "b", IdentifierNumber: "00-42"},
	})
	if idx.ByIdentifierNumber["0042"] != "a" {
		t.Fatalf("expected first worker to keep the key, got %q", idx.ByIdentifierNumber["0042"])
	}
	if len(idx.ByTaxID) != 0 {
		t.Fatalf("expected empty tax index, got %v", idx.ByTaxID)
	}
}

func TestDigitsOnly(t *testing.T) {
	if got := DigitsOnly(" 12a3-4 "); got != "1234" {
		t.Fatalf("expected 1234, got %q", got)
	}
}
