// Package brands turns the static TOML brand definitions into runtime
// matchers used by the collector and looked up by the server.
package brands

import (
	"fmt"
	"regexp"
	"strings"

	"brandpulse/config"
)

type Brand struct {
	Id          string
	DisplayName string
	Query       []string
	include     []*regexp.Regexp
	exclude     []*regexp.Regexp
}

// compileTerm builds a case-insensitive word-boundary matcher for a single
// query term. A trailing * widens the last word to a prefix match; terms
// with spaces match as a phrase.
func compileTerm(term string) (*regexp.Regexp, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, fmt.Errorf("empty query term")
	}

	wildcard := strings.HasSuffix(term, "*")
	term = strings.TrimSuffix(term, "*")

	pattern := `(?i)\b` + regexp.QuoteMeta(term)
	if wildcard {
		pattern += `\w*`
	}
	pattern += `\b`

	return regexp.Compile(pattern)
}

func compileTerms(terms []string) ([]*regexp.Regexp, error) {
	var compiled []*regexp.Regexp
	for _, term := range terms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		matcher, err := compileTerm(term)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, matcher)
	}
	return compiled, nil
}

// Matches reports whether the text mentions the brand. Any include term
// matching is enough; any exclude term vetoes.
func (b *Brand) Matches(text string) bool {
	matched := false
	for _, matcher := range b.include {
		if matcher.MatchString(text) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	for _, matcher := range b.exclude {
		if matcher.MatchString(text) {
			return false
		}
	}
	return true
}

// InitializeBrands compiles every configured brand. Brand order from the
// config file is preserved so listings are stable.
func InitializeBrands(cfg *config.TomlConfig) ([]*Brand, error) {
	var brands []*Brand
	for _, brandCfg := range cfg.Brands {
		include, err := compileTerms(brandCfg.Query)
		if err != nil {
			return nil, fmt.Errorf("brand %s: %w", brandCfg.Id, err)
		}
		exclude, err := compileTerms(brandCfg.Exclude)
		if err != nil {
			return nil, fmt.Errorf("brand %s: %w", brandCfg.Id, err)
		}

		displayName := brandCfg.DisplayName
		if displayName == "" {
			displayName = brandCfg.Id
		}

		brands = append(brands, &Brand{
			Id:          brandCfg.Id,
			DisplayName: displayName,
			Query:       brandCfg.Query,
			include:     include,
			exclude:     exclude,
		})
	}
	return brands, nil
}

// ById indexes brands for request-time lookup.
func ById(brands []*Brand) map[string]*Brand {
	byId := make(map[string]*Brand, len(brands))
	for _, brand := range brands {
		byId[brand.Id] = brand
	}
	return byId
}
