package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/quote-bot/internal/domain/entity"
)

func TestMemoryProductRepositoryKeepsOrderAndUpserts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository(
		entity.Product{Name: "Zapatos", Aliases: []string{"zapato"}, Price: decimal.RequireFromString("45.99")},
		entity.Product{Name: "Camisa", Price: decimal.RequireFromString("25.50")},
	)

	require.NoError(t, repo.SaveMany(ctx, []entity.Product{
		{Name: "zapatos ", Aliases: []string{"calzado"}, Price: decimal.RequireFromString("50")},
		{Name: "Gorras", Price: decimal.RequireFromString("12")},
	}))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"calzado"}, all[0].Aliases)
	assert.Equal(t, "Camisa", all[1].Name)
	assert.Equal(t, "Gorras", all[2].Name)

	p, err := repo.GetByName(ctx, "CAMISA")
	require.NoError(t, err)
	assert.Equal(t, "25.5", p.Price.String())

	_, err = repo.GetByName(ctx, "sombrero")
	assert.ErrorIs(t, err, entity.ErrProductNotFound)
}

func TestMemorySessionRepositoryVersioning(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()

	got, err := repo.Get(ctx, "584121234567")
	require.NoError(t, err)
	assert.Nil(t, got)

	s := entity.NewSession("584121234567")
	s.Items = []entity.CartItem{{ProductName: "Camisa", Quantity: 1}}
	saved, err := repo.Upsert(ctx, s)
	require.NoError(t, err)
	assert.EqualValues(t, 1, saved.Version)

	_, err = repo.Upsert(ctx, s)
	assert.ErrorIs(t, err, entity.ErrSessionConflict, "stale version must be rejected")

	saved.Items[0].Quantity = 3
	again, err := repo.Upsert(ctx, saved)
	require.NoError(t, err)
	assert.EqualValues(t, 2, again.Version)

	stored, err := repo.Get(ctx, "584121234567")
	require.NoError(t, err)
	stored.Items[0].Quantity = 99
	fresh, _ := repo.Get(ctx, "584121234567")
	assert.Equal(t, 3, fresh.Items[0].Quantity, "Get returns a copy")

	deleted, err := repo.Delete(ctx, "584121234567")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.Delete(ctx, "584121234567")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemoryQuoteRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryQuoteRepository()

	q1, err := repo.Create(ctx, &entity.Quote{ClientPhone: "+584121234567", Status: entity.QuotePending})
	require.NoError(t, err)
	q2, err := repo.Create(ctx, &entity.Quote{ClientPhone: "+584121234567", Status: entity.QuotePending})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &entity.Quote{ClientPhone: "+584149999999", Status: entity.QuotePending})
	require.NoError(t, err)
	assert.EqualValues(t, 1, q1.ID)
	assert.EqualValues(t, 2, q2.ID)

	list, err := repo.ListByPhone(ctx, "+584121234567")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.EqualValues(t, 2, list[0].ID)

	require.NoError(t, repo.UpdateStatus(ctx, q1.ID, entity.QuoteApproved))
	got, err := repo.GetByID(ctx, q1.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteApproved, got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, 42, entity.QuoteApproved), entity.ErrQuoteNotFound)
	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, entity.ErrQuoteNotFound)
}

func TestMemoryCustomerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCustomerRepository()

	_, err := repo.GetByPhone(ctx, "+584121234567")
	assert.ErrorIs(t, err, entity.ErrCustomerNotFound)

	c, err := repo.GetOrCreate(ctx, "+584121234567", "Ana")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	same, err := repo.GetOrCreate(ctx, "+584121234567", "Otro")
	require.NoError(t, err)
	assert.Equal(t, c.ID, same.ID)
	assert.Equal(t, "Ana", same.FullName)

	require.NoError(t, repo.UpdateProfile(ctx, c.ID, entity.ClientData{DNI: "V12345678", Address: "Av. Bolivar 12"}))
	got, err := repo.GetByPhone(ctx, "+584121234567")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FullName, "empty name keeps the stored one")
	assert.True(t, got.HasCompleteData())

	assert.ErrorIs(t, repo.UpdateProfile(ctx, "nope", entity.ClientData{Name: "X"}), entity.ErrCustomerNotFound)

	_, err = repo.GetOrCreate(ctx, "abc", "")
	assert.Error(t, err, "invalid phone is rejected")
}
