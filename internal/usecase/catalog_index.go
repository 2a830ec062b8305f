package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/quote-bot/internal/domain/entity"
)

// OverlapPolicy decides which alias claims a span first when two products
// could match the same text.
type OverlapPolicy int

const (
	// OverlapLongestFirst tries longer aliases first; equal lengths keep catalog order.
	OverlapLongestFirst OverlapPolicy = iota
	// OverlapCatalogOrder lets earlier catalog products claim text before later
	// ones; within one product longer aliases go first.
	OverlapCatalogOrder
)

// ParseOverlapPolicy maps a config value to a policy.
func ParseOverlapPolicy(raw string) (OverlapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "longest", "longest_first":
		return OverlapLongestFirst, nil
	case "catalog", "catalog_order":
		return OverlapCatalogOrder, nil
	default:
		return OverlapLongestFirst, fmt.Errorf("unknown overlap policy %q", raw)
	}
}

type indexEntry struct {
	alias   []rune
	product entity.Product
	order   int
}

// CatalogIndex normalized aliases in matching order.
type CatalogIndex struct {
	entries []indexEntry
	policy  OverlapPolicy
}

// BuildCatalogIndex indexes every product's name and aliases.
func BuildCatalogIndex(products []entity.Product, policy OverlapPolicy) *CatalogIndex {
	idx := &CatalogIndex{policy: policy}
	for order, p := range products {
		seen := make(map[string]struct{}, len(p.Aliases)+1)
		for _, raw := range append([]string{p.Name}, p.Aliases...) {
			alias := strings.TrimSpace(Normalize(raw))
			if alias == "" {
				continue
			}
			if _, dup := seen[alias]; dup {
				continue
			}
			seen[alias] = struct{}{}
			idx.entries = append(idx.entries, indexEntry{alias: []rune(alias), product: p, order: order})
		}
	}

	sort.SliceStable(idx.entries, func(i, j int) bool {
		a, b := idx.entries[i], idx.entries[j]
		if policy == OverlapCatalogOrder && a.order != b.order {
			return a.order < b.order
		}
		return len(a.alias) > len(b.alias)
	})
	return idx
}

// Len is the number of entries.
func (c *CatalogIndex) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Aliases lists normalized aliases in matching order.
func (c *CatalogIndex) Aliases() []string {
	out := make([]string, 0, c.Len())
	if c == nil {
		return out
	}
	for _, e := range c.entries {
		out = append(out, string(e.alias))
	}
	return out
}
