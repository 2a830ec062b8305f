package usecase

import (
	"sort"
	"strings"
	"unicode"

	"github.com/yourusername/quote-bot/internal/domain/constants"
	"github.com/yourusername/quote-bot/internal/domain/entity"
)

const exactConfidence = 100

// Words the fuzzy pass never tries to match against the catalog.
var fuzzyStopWords = map[string]struct{}{
	"quiero": {}, "quisiera": {}, "necesito": {}, "dame": {}, "deme": {},
	"agrega": {}, "agregar": {}, "agregame": {}, "tambien": {}, "hola": {},
	"gracias": {}, "favor": {}, "para": {}, "como": {}, "cuanto": {},
	"cuesta": {}, "precio": {}, "tienen": {}, "tienes": {}, "mas": {},
	"otro": {}, "otra": {}, "otros": {}, "otras": {}, "solo": {},
	"deja": {}, "quita": {}, "elimina": {}, "borra": {}, "saca": {},
	"pedido": {}, "comprar": {}, "buenas": {}, "buenos": {}, "tardes": {},
	"noches": {}, "dias": {}, "porfa": {}, "entonces": {}, "pero": {},
}

// ParserOption configures a TextParser.
type ParserOption func(*TextParser)

// WithFuzzyThreshold enables the typo-tolerant second pass. 0 disables it.
func WithFuzzyThreshold(threshold int) ParserOption {
	return func(p *TextParser) {
		if threshold < 0 || threshold > 100 {
			threshold = 0
		}
		p.fuzzyThreshold = threshold
	}
}

// WithOverlapPolicy sets how competing aliases claim overlapping text.
func WithOverlapPolicy(policy OverlapPolicy) ParserOption {
	return func(p *TextParser) {
		p.policy = policy
	}
}

// TextParser erkin matndan mahsulot va miqdorlarni ajratadi.
// Safe for concurrent use: every call works on its own buffers.
type TextParser struct {
	index          *CatalogIndex
	policy         OverlapPolicy
	fuzzyThreshold int
}

// NewTextParser builds the index for products.
func NewTextParser(products []entity.Product, opts ...ParserOption) *TextParser {
	p := &TextParser{}
	for _, opt := range opts {
		opt(p)
	}
	p.index = BuildCatalogIndex(products, p.policy)
	return p
}

// Parse returns every mention in text order.
//
// Exact pass: aliases are tried in index order; each match must sit on word
// boundaries (an "s"/"es" plural suffix is accepted), gets its quantity from
// the text before it, and is then masked with spaces so no later alias can
// reuse it. Fuzzy pass (when enabled): runs after the exact pass over the
// words still unmasked and accepts the best single-word alias scoring at
// least the threshold.
func (p *TextParser) Parse(text string) []entity.ParsedMention {
	if p == nil || p.index.Len() == 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	original := []rune(text)
	norm := normalizeRunes(text)
	work := make([]rune, len(norm))
	copy(work, norm)
	claimed := make([]bool, len(norm))

	var mentions []entity.ParsedMention
	for _, e := range p.index.entries {
		from := 0
		for {
			start, end, ok := findAlias(work, claimed, e.alias, from)
			if !ok {
				break
			}
			mentions = append(mentions, entity.ParsedMention{
				Product:     e.product,
				Quantity:    resolveQuantity(work, claimed, start),
				MatchedText: string(original[start:end]),
				Start:       start,
				End:         end,
				Confidence:  exactConfidence,
			})
			mask(work, claimed, start, end)
			from = end
		}
	}

	if p.fuzzyThreshold > 0 {
		mentions = append(mentions, p.fuzzyPass(original, work, claimed)...)
	}

	sort.SliceStable(mentions, func(i, j int) bool { return mentions[i].Start < mentions[j].Start })
	return mentions
}

// ParseWithConfidence also reports the lowest confidence among the
// mentions: 100 when everything matched exactly, 0 when nothing matched.
func (p *TextParser) ParseWithConfidence(text string) ([]entity.ParsedMention, int) {
	mentions := p.Parse(text)
	if len(mentions) == 0 {
		return mentions, 0
	}
	lowest := exactConfidence
	for _, m := range mentions {
		if m.Confidence < lowest {
			lowest = m.Confidence
		}
	}
	return mentions, lowest
}

// Products returns the distinct products known to the parser.
func (p *TextParser) Products() []entity.Product {
	if p == nil || p.index == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []entity.Product
	for _, e := range p.index.entries {
		if _, ok := seen[e.product.Name]; ok {
			continue
		}
		seen[e.product.Name] = struct{}{}
		out = append(out, e.product)
	}
	return out
}

// findAlias finds alias in work at or after from, bounded by non-word runes.
// A space in the alias matches any run of unclaimed whitespace.
func findAlias(work []rune, claimed []bool, alias []rune, from int) (int, int, bool) {
	for i := from; i+len(alias) <= len(work); i++ {
		if i > 0 && isWordRune(work[i-1]) {
			continue
		}
		end, ok := matchAliasAt(work, claimed, alias, i)
		if !ok {
			continue
		}
		if end, ok = wordEnd(work, end); ok {
			return i, end, true
		}
	}
	return 0, 0, false
}

func matchAliasAt(work []rune, claimed []bool, alias []rune, at int) (int, bool) {
	j := at
	for k := 0; k < len(alias); k++ {
		if unicode.IsSpace(alias[k]) {
			if j >= len(work) || claimed[j] || !unicode.IsSpace(work[j]) {
				return 0, false
			}
			for j < len(work) && !claimed[j] && unicode.IsSpace(work[j]) {
				j++
			}
			for k+1 < len(alias) && unicode.IsSpace(alias[k+1]) {
				k++
			}
			continue
		}
		if j >= len(work) || work[j] != alias[k] {
			return 0, false
		}
		j++
	}
	return j, true
}

// wordEnd accepts a boundary at end, or after a plural "s" / "es".
func wordEnd(work []rune, end int) (int, bool) {
	boundary := func(at int) bool { return at >= len(work) || !isWordRune(work[at]) }
	switch {
	case boundary(end):
		return end, true
	case work[end] == 's' && boundary(end+1):
		return end + 1, true
	case work[end] == 'e' && end+1 < len(work) && work[end+1] == 's' && boundary(end+2):
		return end + 2, true
	}
	return 0, false
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mask(work []rune, claimed []bool, start, end int) {
	for i := start; i < end; i++ {
		work[i] = ' '
		claimed[i] = true
	}
}

func (p *TextParser) fuzzyPass(original, work []rune, claimed []bool) []entity.ParsedMention {
	var out []entity.ParsedMention
	for _, span := range wordSpans(work) {
		if span[1]-span[0] < constants.FuzzyMinTokenLength {
			continue
		}
		token := string(work[span[0]:span[1]])
		if _, stop := fuzzyStopWords[token]; stop {
			continue
		}
		if _, num := numberWords[token]; num {
			continue
		}
		if _, filler := quantityFillers[token]; filler {
			continue
		}

		best, bestScore := -1, 0
		for i, e := range p.index.entries {
			alias := string(e.alias)
			if strings.ContainsRune(alias, ' ') {
				continue
			}
			score := bestVariantScore(token, alias, p.fuzzyThreshold)
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 || bestScore < p.fuzzyThreshold {
			continue
		}

		out = append(out, entity.ParsedMention{
			Product:     p.index.entries[best].product,
			Quantity:    resolveQuantity(work, claimed, span[0]),
			MatchedText: string(original[span[0]:span[1]]),
			Start:       span[0],
			End:         span[1],
			Confidence:  bestScore,
		})
		mask(work, claimed, span[0], span[1])
	}
	return out
}

// bestVariantScore also compares the token without a plural suffix.
func bestVariantScore(token, alias string, threshold int) int {
	best := similarityScore(token, alias, threshold)
	for _, suffix := range []string{"es", "s"} {
		if strings.HasSuffix(token, suffix) && len(token)-len(suffix) >= constants.FuzzyMinTokenLength {
			if s := similarityScore(strings.TrimSuffix(token, suffix), alias, threshold); s > best {
				best = s
			}
		}
	}
	return best
}

// wordSpans returns [start, end) of every run of word runes.
func wordSpans(work []rune) [][2]int {
	var spans [][2]int
	start := -1
	for i, r := range work {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, [2]int{start, i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(work)})
	}
	return spans
}
