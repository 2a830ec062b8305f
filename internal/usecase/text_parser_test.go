package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "cancion del nino arbol", Normalize("Canción del Niño ARBOL"))
	assert.Equal(t, "que anade", Normalize("Qué AÑADE"))
	assert.Equal(t, len([]rune("Ñandú ágil")), len([]rune(Normalize("Ñandú ágil"))))
	assert.Equal(t, "", Normalize(""))
}

func TestParseScenarioTwoProducts(t *testing.T) {
	p := NewTextParser(testProducts())

	mentions := p.Parse("Quiero 2 zapatos y 1 camisa")
	require.Len(t, mentions, 2)
	assert.Equal(t, "Zapatos", mentions[0].Product.Name)
	assert.Equal(t, 2, mentions[0].Quantity)
	assert.Equal(t, "Camisa", mentions[1].Product.Name)
	assert.Equal(t, 1, mentions[1].Quantity)

	q, err := NewQuoteService(nil).Assemble(mentions, "+584121234567")
	require.NoError(t, err)
	assert.Equal(t, "117.48", q.Total.StringFixed(2))
}

func TestParseGreetingHasNoMentions(t *testing.T) {
	p := NewTextParser(testProducts())
	assert.Empty(t, p.Parse("Hola"))
}

func TestParseIsRepeatable(t *testing.T) {
	p := NewTextParser(testProducts())
	text := "quiero 3 pares de zapatos, una chaqueta jean y 2 camisas"
	first := p.Parse(text)
	second := p.Parse(text)
	assert.Equal(t, first, second)
	require.Len(t, first, 3)
}

func TestParseCompoundNameCountedOnce(t *testing.T) {
	p := NewTextParser(testProducts())
	mentions := p.Parse("quiero una chaqueta jean")
	require.Len(t, mentions, 1)
	assert.Equal(t, "Chaqueta Jean", mentions[0].Product.Name)
	assert.Equal(t, 1, mentions[0].Quantity)
}

func TestParseCompoundNameWithExtraSpaces(t *testing.T) {
	p := NewTextParser(testProducts())
	mentions := p.Parse("quiero 2  chaqueta \t jean")
	require.Len(t, mentions, 1)
	assert.Equal(t, "Chaqueta Jean", mentions[0].Product.Name)
	assert.Equal(t, 2, mentions[0].Quantity)
	assert.Equal(t, "chaqueta \t jean", mentions[0].MatchedText)
}

func TestParseMatchedTextKeepsOriginalSpelling(t *testing.T) {
	p := NewTextParser(testProducts())
	mentions := p.Parse("Quiero 2 ZAPATOS y 1 Camisa")
	require.Len(t, mentions, 2)
	assert.Equal(t, "ZAPATOS", mentions[0].MatchedText)
	assert.Equal(t, "Camisa", mentions[1].MatchedText)
	assert.Equal(t, "ZAPATOS", string([]rune("Quiero 2 ZAPATOS y 1 Camisa")[mentions[0].Start:mentions[0].End]))
}

func TestParseQuantityWordEqualsDigit(t *testing.T) {
	p := NewTextParser(testProducts())
	words := p.Parse("quiero dos zapatos")
	digits := p.Parse("quiero 2 zapatos")
	require.Len(t, words, 1)
	require.Len(t, digits, 1)
	assert.Equal(t, 2, words[0].Quantity)
	assert.Equal(t, digits[0].Quantity, words[0].Quantity)
	assert.Equal(t, digits[0].Product.Name, words[0].Product.Name)
}

func TestParsePluralAndAccents(t *testing.T) {
	p := NewTextParser(testProducts())
	mentions := p.Parse("Necesito 4 CAMISAS y tres gorras")
	require.Len(t, mentions, 2)
	assert.Equal(t, "Camisa", mentions[0].Product.Name)
	assert.Equal(t, 4, mentions[0].Quantity)
	assert.Equal(t, "Gorras", mentions[1].Product.Name)
	assert.Equal(t, 3, mentions[1].Quantity)
}

func TestParseRequiresWordBoundary(t *testing.T) {
	p := NewTextParser(testProducts())
	assert.Empty(t, p.Parse("busco una jeanette o camisetas"))
}

func TestParseQuantityDoesNotCrossMentions(t *testing.T) {
	p := NewTextParser(testProducts())
	mentions := p.Parse("5 zapatos camisa")
	require.Len(t, mentions, 2)
	assert.Equal(t, 5, mentions[0].Quantity)
	assert.Equal(t, 1, mentions[1].Quantity, "the 5 belongs to zapatos")
}

func TestParseOverlapPolicy(t *testing.T) {
	products := testProducts()[3:] // Jean, Chaqueta Jean

	longest := NewTextParser(products).Parse("una chaqueta jean")
	require.Len(t, longest, 1)
	assert.Equal(t, "Chaqueta Jean", longest[0].Product.Name)

	catalog := NewTextParser(products, WithOverlapPolicy(OverlapCatalogOrder)).Parse("una chaqueta jean")
	require.Len(t, catalog, 1)
	assert.Equal(t, "Jean", catalog[0].Product.Name)
}

func TestParseOverlapPolicyFromConfig(t *testing.T) {
	policy, err := ParseOverlapPolicy("catalog_order")
	require.NoError(t, err)
	assert.Equal(t, OverlapCatalogOrder, policy)

	policy, err = ParseOverlapPolicy("")
	require.NoError(t, err)
	assert.Equal(t, OverlapLongestFirst, policy)

	_, err = ParseOverlapPolicy("random")
	assert.Error(t, err)
}

func TestParseFuzzyDisabledByDefault(t *testing.T) {
	p := NewTextParser(testProducts())
	assert.Empty(t, p.Parse("quiero 2 sapatos"))
}

func TestParseFuzzyMatchesTypos(t *testing.T) {
	p := NewTextParser(testProducts(), WithFuzzyThreshold(70))

	mentions, confidence := p.ParseWithConfidence("quiero 2 sapatos y 1 camisa")
	require.Len(t, mentions, 2)
	assert.Equal(t, "Zapatos", mentions[0].Product.Name)
	assert.Equal(t, 2, mentions[0].Quantity)
	assert.Less(t, mentions[0].Confidence, 100)
	assert.GreaterOrEqual(t, mentions[0].Confidence, 70)
	assert.Equal(t, mentions[0].Confidence, confidence)
	assert.Equal(t, 100, mentions[1].Confidence)
}

func TestParseFuzzySkipsShortAndStopWords(t *testing.T) {
	p := NewTextParser(testProducts(), WithFuzzyThreshold(70))
	assert.Empty(t, p.Parse("quiero gana"))
}

func TestParseWithConfidenceEmpty(t *testing.T) {
	p := NewTextParser(testProducts())
	mentions, confidence := p.ParseWithConfidence("buenas tardes")
	assert.Empty(t, mentions)
	assert.Zero(t, confidence)
}

func TestCatalogIndexOrder(t *testing.T) {
	idx := BuildCatalogIndex(testProducts(), OverlapLongestFirst)
	aliases := idx.Aliases()
	require.NotEmpty(t, aliases)
	assert.Equal(t, "chaqueta de jean", aliases[0])
	for i := 1; i < len(aliases); i++ {
		assert.GreaterOrEqual(t, len([]rune(aliases[i-1])), len([]rune(aliases[i])))
	}
	// "camisa" appears once although it is both name and alias.
	count := 0
	for _, a := range aliases {
		if a == "camisa" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestParseEmptyCatalog(t *testing.T) {
	p := NewTextParser(nil)
	assert.Empty(t, p.Parse("quiero 2 zapatos"))
	assert.Empty(t, p.Products())
}
