package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/quote-bot/internal/domain/entity"
)

const testPhone = "584121234567"

func newTestCartService(repo *stubSessionRepo, clock *fakeClock, metrics Metrics) *CartService {
	return NewCartService(repo, CartServiceConfig{Now: clock.Now, Metrics: metrics})
}

func item(name string, qty int, unit string) entity.CartItem {
	it := entity.CartItem{ProductName: name, UnitPrice: price(unit)}
	it.SetQuantity(qty)
	return it
}

func itemsByName(items []entity.CartItem) map[string]int {
	out := map[string]int{}
	for _, it := range items {
		out[it.ProductName] = it.Quantity
	}
	return out
}

func TestMergeAdditiveSumsQuantities(t *testing.T) {
	svc := newTestCartService(newStubSessionRepo(), newFakeClock(), nil)
	current := []entity.CartItem{item("Camisa", 2, "25.50")}
	mentions := NewTextParser(testProducts()).Parse("3 camisas")

	result := svc.Merge(current, mentions, false, "3 camisas")
	require.Len(t, result, 1)
	assert.Equal(t, 5, result[0].Quantity)
	assert.Equal(t, "127.50", result[0].Subtotal.StringFixed(2))
	assert.Equal(t, 2, current[0].Quantity, "current cart must not be modified")
}

func TestMergeStrongCommandNegation(t *testing.T) {
	svc := newTestCartService(newStubSessionRepo(), newFakeClock(), nil)
	text := "quita los zapatos, agrega 3 gorras"
	mentions := NewTextParser(testProducts()).Parse(text)
	require.True(t, svc.IsStrongCommand(text, mentions))

	current := []entity.CartItem{item("Zapatos", 2, "45.99"), item("Camisa", 1, "25.50")}

	result := svc.Merge(current, mentions, true, text)
	assert.Equal(t, map[string]int{"Gorras": 3}, itemsByName(result))
}

func TestMergeStrongReplace(t *testing.T) {
	svc := newTestCartService(newStubSessionRepo(), newFakeClock(), nil)
	text := "solo deja 2 camisas"
	mentions := NewTextParser(testProducts()).Parse(text)
	require.True(t, svc.IsStrongCommand(text, mentions))

	current := []entity.CartItem{item("Zapatos", 2, "45.99"), item("Camisa", 5, "25.50")}
	result := svc.Merge(current, mentions, true, text)
	assert.Equal(t, map[string]int{"Camisa": 2}, itemsByName(result))
}

func TestIsStrongCommand(t *testing.T) {
	svc := newTestCartService(newStubSessionRepo(), newFakeClock(), nil)
	assert.True(t, svc.IsStrongCommand("Elimina la camisa", nil))
	assert.True(t, svc.IsStrongCommand("quítale los zapatos", nil))
	assert.True(t, svc.IsStrongCommand("reemplaza la gorra", nil))
	assert.False(t, svc.IsStrongCommand("agrega 2 camisas", nil))
	assert.False(t, svc.IsStrongCommand("quiero 2 zapatos", nil))
}

func withBorrador() []entity.Product {
	return append(testProducts(), entity.Product{Name: "Borrador", Aliases: []string{"borrador"}, Price: price("1.50")})
}

func TestIsStrongCommandIgnoresProductNames(t *testing.T) {
	svc := newTestCartService(newStubSessionRepo(), newFakeClock(), nil)
	parser := NewTextParser(withBorrador())

	text := "quiero 3 borradores"
	assert.False(t, svc.IsStrongCommand(text, parser.Parse(text)))

	text = "borra el borrador"
	assert.True(t, svc.IsStrongCommand(text, parser.Parse(text)))
}

func TestApplyProductNamedLikeDeleteKeywordAdds(t *testing.T) {
	repo := newStubSessionRepo()
	svc := newTestCartService(repo, newFakeClock(), nil)
	parser := NewTextParser(withBorrador())
	ctx := context.Background()

	_, err := svc.Apply(ctx, testPhone, "quiero 2 camisas", parser.Parse("quiero 2 camisas"))
	require.NoError(t, err)

	update, err := svc.Apply(ctx, testPhone, "quiero 3 borradores", parser.Parse("quiero 3 borradores"))
	require.NoError(t, err)
	assert.False(t, update.Strong)
	assert.Equal(t, map[string]int{"Camisa": 2, "Borrador": 3}, itemsByName(update.Items))
}

func TestApplyCreatesAndAccumulates(t *testing.T) {
	repo := newStubSessionRepo()
	svc := newTestCartService(repo, newFakeClock(), nil)
	parser := NewTextParser(testProducts())
	ctx := context.Background()

	first, err := svc.Apply(ctx, testPhone, "quiero 2 camisas", parser.Parse("quiero 2 camisas"))
	require.NoError(t, err)
	assert.Equal(t, "51.00", first.Total())

	second, err := svc.Apply(ctx, testPhone, "y 3 camisas mas", parser.Parse("y 3 camisas mas"))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Camisa": 5}, itemsByName(second.Items))

	stored, _ := repo.Get(ctx, testPhone)
	require.NotNil(t, stored)
	assert.Equal(t, int64(2), stored.Version)
	assert.Equal(t, entity.StepShopping, stored.Step)
}

func TestApplyExpiredSessionStartsEmpty(t *testing.T) {
	repo := newStubSessionRepo()
	clock := newFakeClock()
	metrics := &countingMetrics{}
	svc := newTestCartService(repo, clock, metrics)

	old := entity.NewSession(testPhone)
	old.Items = []entity.CartItem{item("Zapatos", 2, "45.99")}
	old.UpdatedAt = clock.Now().Add(-31 * time.Minute)
	repo.put(old)

	parser := NewTextParser(testProducts())
	update, err := svc.Apply(context.Background(), testPhone, "1 camisa", parser.Parse("1 camisa"))
	require.NoError(t, err)
	assert.True(t, update.Expired)
	assert.Equal(t, map[string]int{"Camisa": 1}, itemsByName(update.Items))
	assert.Equal(t, 1, metrics.expired)
}

func TestApplySessionWithinTTLIsKept(t *testing.T) {
	repo := newStubSessionRepo()
	clock := newFakeClock()
	svc := newTestCartService(repo, clock, nil)

	cur := entity.NewSession(testPhone)
	cur.Items = []entity.CartItem{item("Zapatos", 2, "45.99")}
	cur.UpdatedAt = clock.Now().Add(-29 * time.Minute)
	repo.put(cur)

	parser := NewTextParser(testProducts())
	update, err := svc.Apply(context.Background(), testPhone, "1 camisa", parser.Parse("1 camisa"))
	require.NoError(t, err)
	assert.False(t, update.Expired)
	assert.Equal(t, map[string]int{"Zapatos": 2, "Camisa": 1}, itemsByName(update.Items))
}

func TestApplyEmptyResultDeletesSession(t *testing.T) {
	repo := newStubSessionRepo()
	clock := newFakeClock()
	svc := newTestCartService(repo, clock, nil)

	cur := entity.NewSession(testPhone)
	cur.Items = []entity.CartItem{item("Zapatos", 2, "45.99")}
	cur.UpdatedAt = clock.Now()
	repo.put(cur)

	text := "elimina los zapatos"
	update, err := svc.Apply(context.Background(), testPhone, text, NewTextParser(testProducts()).Parse(text))
	require.NoError(t, err)
	assert.True(t, update.Cleared)
	assert.Empty(t, update.Items)

	stored, _ := repo.Get(context.Background(), testPhone)
	assert.Nil(t, stored)
}

func TestApplyRetriesOnConflict(t *testing.T) {
	repo := newStubSessionRepo()
	repo.conflicts = 2
	svc := newTestCartService(repo, newFakeClock(), nil)

	text := "2 gorras"
	update, err := svc.Apply(context.Background(), testPhone, text, NewTextParser(testProducts()).Parse(text))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Gorras": 2}, itemsByName(update.Items))
	assert.Equal(t, 3, repo.upserts)
}

func TestApplyGivesUpAfterRetries(t *testing.T) {
	repo := newStubSessionRepo()
	repo.conflicts = 10
	svc := newTestCartService(repo, newFakeClock(), nil)

	text := "2 gorras"
	_, err := svc.Apply(context.Background(), testPhone, text, NewTextParser(testProducts()).Parse(text))
	assert.ErrorIs(t, err, entity.ErrSessionConflict)
}

func TestApplyConcurrentSamePhoneLosesNothing(t *testing.T) {
	repo := newStubSessionRepo()
	svc := newTestCartService(repo, newFakeClock(), nil)
	mentions := NewTextParser(testProducts()).Parse("1 camisa")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Apply(context.Background(), testPhone, "1 camisa", mentions)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, _ := repo.Get(context.Background(), testPhone)
	require.NotNil(t, stored)
	assert.Equal(t, map[string]int{"Camisa": 20}, itemsByName(stored.Items))
}

func TestClear(t *testing.T) {
	repo := newStubSessionRepo()
	svc := newTestCartService(repo, newFakeClock(), nil)

	deleted, err := svc.Clear(context.Background(), testPhone)
	require.NoError(t, err)
	assert.False(t, deleted)

	repo.put(entity.NewSession(testPhone))
	deleted, err = svc.Clear(context.Background(), testPhone)
	require.NoError(t, err)
	assert.True(t, deleted)
}
