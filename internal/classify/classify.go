package classify

import (
	"strings"

	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/site"
)

// ForSite returns the keyword set for a site: its override list when it has
// one, otherwise the defaults.
func ForSite(p site.Policy, mode MatchMode) KeywordSet {
	return NewKeywordSet(p.Keywords(), mode)
}

// Classify resolves a normalized debtor name into a business or a person.
//
// A keyword match or a business tax form hint makes the debtor a Business
// with the whole name as Company. Otherwise the name is split on whitespace:
// the first token is FirstName and the remaining tokens form LastName. A
// single token becomes LastName alone. An empty name yields an empty
// Personal result.
func Classify(name string, hints []model.Hint, keywords KeywordSet) model.ClassificationResult {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return model.ClassificationResult{Kind: model.KindPersonal}
	}

	if kw, ok := keywords.Match(name); ok {
		return model.ClassificationResult{Kind: model.KindBusiness, Company: name, MatchedKeyword: kw}
	}
	for _, h := range hints {
		if h == model.HintBusinessTaxForm {
			return model.ClassificationResult{Kind: model.KindBusiness, Company: name, MatchedKeyword: string(h)}
		}
	}

	tokens := strings.Fields(name)
	if len(tokens) == 1 {
		return model.ClassificationResult{Kind: model.KindPersonal, LastName: tokens[0]}
	}
	return model.ClassificationResult{
		Kind:      model.KindPersonal,
		FirstName: tokens[0],
		LastName:  strings.Join(tokens[1:], " "),
	}
}
