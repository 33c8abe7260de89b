package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/site"
)

func TestClassify(t *testing.T) {
	defaults := NewKeywordSet(nil, MatchSubstring)

	tests := []struct {
		name  string
		in    string
		hints []model.Hint
		want  model.ClassificationResult
	}{
		{
			name: "two tokens",
			in:   "Emmanuel Pacquiao",
			want: model.ClassificationResult{Kind: model.KindPersonal, FirstName: "Emmanuel", LastName: "Pacquiao"},
		},
		{
			name: "three tokens",
			in:   "Mary Ann Smith",
			want: model.ClassificationResult{Kind: model.KindPersonal, FirstName: "Mary", LastName: "Ann Smith"},
		},
		{
			name: "single token",
			in:   "Cher",
			want: model.ClassificationResult{Kind: model.KindPersonal, LastName: "Cher"},
		},
		{
			name: "keyword",
			in:   "ACME Corp",
			want: model.ClassificationResult{Kind: model.KindBusiness, Company: "ACME Corp", MatchedKeyword: "CORP"},
		},
		{
			name: "lower case keyword",
			in:   "Blue Sky holdings",
			want: model.ClassificationResult{Kind: model.KindBusiness, Company: "Blue Sky holdings", MatchedKeyword: "HOLDINGS"},
		},
		{
			name:  "tax form hint",
			in:    "Dallas Plumbing",
			hints: []model.Hint{model.HintBusinessTaxForm},
			want:  model.ClassificationResult{Kind: model.KindBusiness, Company: "Dallas Plumbing", MatchedKeyword: string(model.HintBusinessTaxForm)},
		},
		{
			name:  "empty with hint",
			in:    "  ",
			hints: []model.Hint{model.HintBusinessTaxForm},
			want:  model.ClassificationResult{Kind: model.KindPersonal},
		},
		{
			name: "whitespace collapsed",
			in:   "  John   Doe ",
			want: model.ClassificationResult{Kind: model.KindPersonal, FirstName: "John", LastName: "Doe"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in, tt.hints, defaults))
		})
	}
}

func TestClassify_TotalAndExclusive(t *testing.T) {
	inputs := []string{
		"", " ", "X", "John Doe", "ACME INC", "The Smith Family Partnership",
		"a b c d e", "12345", "LLC", "Vincent Price", "Ñandú Servicios",
	}
	modes := []MatchMode{MatchSubstring, MatchWord}
	for _, mode := range modes {
		ks := NewKeywordSet(nil, mode)
		for _, in := range inputs {
			for _, hints := range [][]model.Hint{nil, {model.HintBusinessTaxForm}} {
				got := Classify(in, hints, ks)
				hasCompany := got.Company != ""
				hasPerson := got.FirstName != "" || got.LastName != ""
				if len(in) == 0 || in == " " {
					assert.False(t, hasCompany || hasPerson, "input %q", in)
					assert.Equal(t, model.KindPersonal, got.Kind)
					continue
				}
				assert.True(t, hasCompany != hasPerson, "input %q mode %s", in, mode)
				assert.Equal(t, hasCompany, got.Kind == model.KindBusiness, "input %q", in)
			}
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	ks := NewKeywordSet(nil, MatchSubstring)
	first := Classify("Sunrise Services Group", nil, ks)
	for range 10 {
		assert.Equal(t, first, Classify("Sunrise Services Group", nil, ks))
	}
}

func TestKeywordSet_MatchModes(t *testing.T) {
	sub := NewKeywordSet(nil, MatchSubstring)
	word := NewKeywordSet(nil, MatchWord)

	kw, ok := sub.Match("Vincent Price")
	assert.True(t, ok)
	assert.Equal(t, "INC", kw)

	_, ok = word.Match("Vincent Price")
	assert.False(t, ok)

	kw, ok = word.Match("Acme, Inc.")
	assert.True(t, ok)
	assert.Equal(t, "INC", kw)

	_, ok = word.Match("")
	assert.False(t, ok)
}

func TestNewKeywordSet_Override(t *testing.T) {
	ks := NewKeywordSet([]string{" trust ", "TRUST", "", "bank"}, "")
	assert.Equal(t, []string{"TRUST", "BANK"}, ks.Words())
	assert.Equal(t, MatchSubstring, ks.Mode())

	got := Classify("First National Bank", nil, ks)
	assert.Equal(t, model.KindBusiness, got.Kind)

	// Defaults are replaced, not extended.
	got = Classify("ACME Corp", nil, ks)
	assert.Equal(t, model.KindPersonal, got.Kind)
}

func TestForSite(t *testing.T) {
	withOverride := site.Config{ID: "1", BusinessKeywords: []string{"TRUST"}}
	assert.Equal(t, []string{"TRUST"}, ForSite(withOverride, MatchWord).Words())

	plain := site.Config{ID: "2"}
	assert.Equal(t, DefaultKeywords, ForSite(plain, MatchWord).Words())
}

func TestParseMatchMode(t *testing.T) {
	m, err := ParseMatchMode("")
	require.NoError(t, err)
	assert.Equal(t, MatchSubstring, m)

	m, err = ParseMatchMode("WORD")
	require.NoError(t, err)
	assert.Equal(t, MatchWord, m)

	_, err = ParseMatchMode("fuzzy")
	require.Error(t, err)
}
