package brands_test

import (
	"testing"

	"brandpulse/brands"
	"brandpulse/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initBrands(t *testing.T, cfg *config.TomlConfig) []*brands.Brand {
	t.Helper()
	compiled, err := brands.InitializeBrands(cfg)
	require.NoError(t, err)
	return compiled
}

func TestBrandMatches(t *testing.T) {
	compiled := initBrands(t, &config.TomlConfig{
		Brands: []config.TomlBrand{
			{
				Id:      "tesla",
				Query:   []string{"tesla", "model 3"},
				Exclude: []string{"nikola tesla"},
			},
		},
	})
	brand := compiled[0]

	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "simple mention", text: "just saw a Tesla downtown", want: true},
		{name: "case insensitive", text: "TESLA stock is up", want: true},
		{name: "phrase term", text: "thinking about a Model 3", want: true},
		{name: "no mention", text: "nice weather today", want: false},
		{name: "substring does not match", text: "teslaesque design", want: false},
		{name: "exclude vetoes", text: "reading about Nikola Tesla", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, brand.Matches(tt.text))
		})
	}
}

func TestBrandWildcard(t *testing.T) {
	compiled := initBrands(t, &config.TomlConfig{
		Brands: []config.TomlBrand{
			{Id: "starbucks", Query: []string{"starbuck*"}},
		},
	})

	assert.True(t, compiled[0].Matches("queueing at starbucks again"))
	assert.True(t, compiled[0].Matches("a starbuck opened nearby"))
	assert.False(t, compiled[0].Matches("star bucks"))
}

func TestInitializeBrandsDefaultsDisplayName(t *testing.T) {
	compiled := initBrands(t, &config.TomlConfig{
		Brands: []config.TomlBrand{
			{Id: "acme", Query: []string{"acme"}},
		},
	})

	assert.Equal(t, "acme", compiled[0].DisplayName)
}

func TestById(t *testing.T) {
	compiled := initBrands(t, &config.TomlConfig{
		Brands: []config.TomlBrand{
			{Id: "acme", Query: []string{"acme"}},
			{Id: "globex", Query: []string{"globex"}},
		},
	})

	byId := brands.ById(compiled)
	require.Len(t, byId, 2)
	assert.Equal(t, "globex", byId["globex"].Id)
}
