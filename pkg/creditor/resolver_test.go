package creditor

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver([]Entry{
		{Key: "chase", Identity: Identity{
			Name: "Chase", Type: TypeBank, BaseConfidence: 0.9,
			Aliases: []string{"Chase Bank", "JPMorgan Chase"},
		}},
		{Key: "portfolio recovery associates", Identity: Identity{
			Name: "Portfolio Recovery Associates", Type: TypeCollectionAgency, BaseConfidence: 0.8,
			Aliases: []string{"PRA"},
		}},
		{Key: "wells fargo", Identity: Identity{
			Name: "Wells Fargo", Type: TypeBank, BaseConfidence: 0.9,
			Aliases: []string{"Wells Fargo Bank"},
		}},
	})
	require.NoError(t, err)
	return r
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CHASE BANK", "chase bank"},
		{"  Chase   Bank  ", "chase bank"},
		{"AT&T Mobility", "at&t mobility"},
		{"Macy's, Inc.", "macys inc"},
		{"- Navient -", "navient"},
		{"Route 66 Credit", "route 66 credit"},
		{"", ""},
		{" \t\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("chase", "chase"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", ""))
	assert.InDelta(t, 1-1.0/11, Similarity("wels fargo", "wells fargo"), 1e-9)
	assert.InDelta(t, 1-3.0/7, Similarity("kitten", "sitting"), 1e-9)
	assert.Equal(t, Similarity("chase", "chasse"), Similarity("chasse", "chase"))
}

func TestWordOverlap(t *testing.T) {
	assert.InDelta(t, 0.6, wordOverlap("portfolio recovery associates llc collections", "portfolio recovery associates"), 1e-9)
	assert.InDelta(t, 1.0, wordOverlap("recovery portfolio", "portfolio recovery"), 1e-9)
	assert.Equal(t, 0.0, wordOverlap("", "chase"))
	assert.Equal(t, 0.0, wordOverlap("zzqx", "chase"))
}

func TestStandardizeCreditorName(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name           string
		input          string
		wantName       string
		wantType       MatchType
		wantConfidence float64
	}{
		{"exact key", "CHASE", "Chase", MatchExact, 0.9},
		{"alias", "Chase Bank", "Chase", MatchAlias, 0.9 * 0.95},
		{"short alias", "pra", "Portfolio Recovery Associates", MatchAlias, 0.8 * 0.95},
		{"fuzzy key", "Wels Fargo", "Wells Fargo", MatchFuzzy, 0.9 * (1 - 1.0/11) * 0.8},
		{"fuzzy alias", "JP Morgan Chase", "Chase", MatchFuzzy, 0.9 * (1 - 1.0/15) * 0.75},
		{"partial", "Portfolio Recovery Associates LLC Collections", "Portfolio Recovery Associates", MatchPartial, 0.8 * 0.6 * 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := r.StandardizeCreditorName(tt.input)
			assert.Equal(t, tt.wantName, m.Creditor.Name)
			assert.Equal(t, tt.wantType, m.MatchType)
			assert.InDelta(t, tt.wantConfidence, m.Confidence, 1e-9)
			assert.Equal(t, tt.input, m.OriginalName)
		})
	}
}

func TestStandardizeNoMatch(t *testing.T) {
	r := newTestResolver(t)

	for _, input := range []string{"  Zzqx Holdings  ", "", "   ", "!!!"} {
		m := r.StandardizeCreditorName(input)
		assert.Equal(t, MatchExact, m.MatchType, input)
		assert.Equal(t, 0.1, m.Confidence, input)
		assert.Equal(t, input, m.Creditor.Name, input)
		assert.Equal(t, TypeOther, m.Creditor.Type, input)
		assert.Empty(t, m.Creditor.Aliases, input)
		assert.True(t, m.IsUnmatched(), input)
	}
}

func TestStandardizeNormalizationInvariance(t *testing.T) {
	r := newTestResolver(t)

	base := r.StandardizeCreditorName("CHASE BANK")
	for _, input := range []string{"chase bank", "  Chase   Bank  ", "Chase-Bank"} {
		m := r.StandardizeCreditorName(input)
		if input == "Chase-Bank" {
			// Hyphen is stripped rather than turned into a space.
			assert.NotEqual(t, MatchAlias, m.MatchType)
			continue
		}
		assert.Equal(t, base.MatchType, m.MatchType, input)
		assert.Equal(t, base.Creditor.Name, m.Creditor.Name, input)
		assert.Equal(t, base.Confidence, m.Confidence, input)
	}
}

func TestStandardizeIdempotent(t *testing.T) {
	r := newTestResolver(t)
	for _, input := range []string{"Chase", "Wels Fargo", "Portfolio Recovery Associates LLC Collections", "nobody"} {
		assert.Equal(t, r.StandardizeCreditorName(input), r.StandardizeCreditorName(input))
	}
}

func TestTierOrdering(t *testing.T) {
	r := newTestResolver(t)

	exact := r.StandardizeCreditorName("Portfolio Recovery Associates")
	alias := r.StandardizeCreditorName("PRA")
	fuzzy := r.StandardizeCreditorName("Portfolio Recovery Asociates")
	partial := r.StandardizeCreditorName("Portfolio Recovery Associates LLC Collections")

	require.Equal(t, MatchExact, exact.MatchType)
	require.Equal(t, MatchAlias, alias.MatchType)
	require.Equal(t, MatchFuzzy, fuzzy.MatchType)
	require.Equal(t, MatchPartial, partial.MatchType)

	assert.GreaterOrEqual(t, exact.Confidence, alias.Confidence)
	assert.GreaterOrEqual(t, alias.Confidence, fuzzy.Confidence)
	assert.GreaterOrEqual(t, fuzzy.Confidence, partial.Confidence)
}

func TestStandardizePartialTakesFirstQualifyingKey(t *testing.T) {
	r, err := NewResolver([]Entry{
		{Key: "alpha bank services", Identity: Identity{Name: "Alpha Bank Services", Type: TypeBank, BaseConfidence: 0.9}},
		{Key: "alpha bank", Identity: Identity{Name: "Alpha Bank", Type: TypeBank, BaseConfidence: 0.9}},
	})
	require.NoError(t, err)

	m := r.StandardizeCreditorName("bank alpha")
	require.Equal(t, MatchPartial, m.MatchType)
	assert.Equal(t, "Alpha Bank Services", m.Creditor.Name)
	assert.InDelta(t, 0.9*(2.0/3)*0.6, m.Confidence, 1e-9)
}

func TestResolutionDoesNotMutateRegistry(t *testing.T) {
	r := newTestResolver(t)

	m := r.StandardizeCreditorName("Chase")
	m.Creditor.Aliases[0] = "tampered"
	m.Creditor.Name = "tampered"

	info, ok := r.CreditorInfo("chase")
	require.True(t, ok)
	assert.Equal(t, "Chase", info.Name)
	assert.Equal(t, "Chase Bank", info.Aliases[0])
}

func TestFindPotentialMatches(t *testing.T) {
	r := newTestResolver(t)

	matches := r.FindPotentialMatches("Chase Bank", 5)
	require.NotEmpty(t, matches)
	assert.Equal(t, "Chase", matches[0].Creditor.Name)
	assert.Equal(t, MatchAlias, matches[0].MatchType)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Confidence, matches[i].Confidence)
	}

	t.Run("scores every entry independently", func(t *testing.T) {
		r2, err := NewResolver([]Entry{
			{Key: "acme bank", Identity: Identity{Name: "Acme Bank", Type: TypeBank, BaseConfidence: 0.9}},
			{Key: "acme banc", Identity: Identity{Name: "Acme Banc", Type: TypeBank, BaseConfidence: 0.9}},
			{Key: "zenith", Identity: Identity{Name: "Zenith", Type: TypeBank, BaseConfidence: 0.9}},
		})
		require.NoError(t, err)

		got := r2.FindPotentialMatches("acme bank", 0)
		require.Len(t, got, 2)
		assert.Equal(t, MatchExact, got[0].MatchType)
		assert.Equal(t, "Acme Bank", got[0].Creditor.Name)
		assert.Equal(t, MatchFuzzy, got[1].MatchType)
		assert.Equal(t, "Acme Banc", got[1].Creditor.Name)
		assert.InDelta(t, 0.9*(1-1.0/9)*0.8, got[1].Confidence, 1e-9)
	})

	t.Run("limit", func(t *testing.T) {
		assert.Len(t, r.FindPotentialMatches("Chase Bank", 1), 1)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, r.FindPotentialMatches("  ", 5))
	})
}

func TestAddCreditor(t *testing.T) {
	r := newTestResolver(t)

	t.Run("rejects empty key", func(t *testing.T) {
		err := r.AddCreditor(" ?? ", Identity{Name: "X", Type: TypeBank, BaseConfidence: 0.5})
		assert.ErrorIs(t, err, ErrEmptyKey)
	})

	t.Run("rejects invalid identity", func(t *testing.T) {
		assert.ErrorIs(t, r.AddCreditor("x", Identity{Type: TypeBank, BaseConfidence: 0.5}), ErrInvalidCreditor)
		assert.ErrorIs(t, r.AddCreditor("x", Identity{Name: "X", Type: "bogus", BaseConfidence: 0.5}), ErrInvalidCreditor)
		assert.ErrorIs(t, r.AddCreditor("x", Identity{Name: "X", Type: TypeBank, BaseConfidence: 1.5}), ErrInvalidCreditor)
	})

	t.Run("appends and resolves", func(t *testing.T) {
		before := r.Count()
		require.NoError(t, r.AddCreditor("Acme Lending", Identity{
			Name: "Acme Lending", Type: TypePersonalLoan, BaseConfidence: 0.7, Aliases: []string{"Acme"},
		}))
		assert.Equal(t, before+1, r.Count())

		m := r.StandardizeCreditorName("ACME")
		assert.Equal(t, MatchAlias, m.MatchType)
		assert.Equal(t, "Acme Lending", m.Creditor.Name)
	})

	t.Run("replaces existing key in place", func(t *testing.T) {
		before := r.Count()
		require.NoError(t, r.AddCreditor("chase", Identity{Name: "JPMorgan Chase", Type: TypeBank, BaseConfidence: 0.8}))
		assert.Equal(t, before, r.Count())
		info, ok := r.CreditorInfo("chase")
		require.True(t, ok)
		assert.Equal(t, "JPMorgan Chase", info.Name)
	})
}

func TestCreditorInfoAndByType(t *testing.T) {
	r := newTestResolver(t)

	info, ok := r.CreditorInfo("Wells Fargo")
	require.True(t, ok)
	assert.Equal(t, TypeBank, info.Type)

	_, ok = r.CreditorInfo("unknown lender")
	assert.False(t, ok)

	banks := r.CreditorsByType(TypeBank)
	require.Len(t, banks, 2)
	assert.Equal(t, "Chase", banks[0].Name)
	assert.Equal(t, "Wells Fargo", banks[1].Name)
	assert.Empty(t, r.CreditorsByType(TypeMedical))
}

func TestConcurrentResolveAndAdd(t *testing.T) {
	r := newTestResolver(t)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 200 {
				m := r.StandardizeCreditorName("Chase Bank")
				assert.Equal(t, "Chase", m.Creditor.Name)
				r.FindPotentialMatches("wells", 3)
			}
		}()
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("lender %d", i)
			assert.NoError(t, r.AddCreditor(key, Identity{Name: key, Type: TypeOther, BaseConfidence: 0.5}))
		}()
	}
	wg.Wait()

	assert.Equal(t, 3+8, r.Count())
}
