package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
)

type postgresCustomerRepository struct {
	db *sql.DB
}

// NewPostgresCustomerRepository creates the customers table if needed.
func NewPostgresCustomerRepository(ctx context.Context, db *sql.DB) (repository.CustomerRepository, error) {
	schema := `
CREATE TABLE IF NOT EXISTS customers (
	id TEXT PRIMARY KEY,
	phone TEXT NOT NULL UNIQUE,
	full_name TEXT,
	dni TEXT,
	address TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create customers table: %w", err)
	}
	return &postgresCustomerRepository{db: db}, nil
}

func (p *postgresCustomerRepository) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	row := p.db.QueryRowContext(ctx, `
	SELECT id, phone, full_name, dni, address, created_at, updated_at
	FROM customers WHERE phone=$1`, phone)

	var (
		c                  entity.Customer
		name, dni, address sql.NullString
	)
	err := row.Scan(&c.ID, &c.Phone, &name, &dni, &address, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	c.FullName, c.DNI, c.Address = name.String, dni.String, address.String
	return &c, nil
}

func (p *postgresCustomerRepository) GetOrCreate(ctx context.Context, phone, fullName string) (*entity.Customer, error) {
	candidate := entity.Customer{ID: uuid.NewString(), Phone: phone, FullName: fullName}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	_, err := p.db.ExecContext(ctx, `
	INSERT INTO customers (id, phone, full_name)
	VALUES ($1,$2,$3)
	ON CONFLICT (phone) DO NOTHING`, candidate.ID, candidate.Phone, candidate.FullName)
	if err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return p.GetByPhone(ctx, phone)
}

// UpdateProfile empty fields keep the stored value.
func (p *postgresCustomerRepository) UpdateProfile(ctx context.Context, id string, data entity.ClientData) error {
	res, err := p.db.ExecContext(ctx, `
	UPDATE customers SET
		full_name=COALESCE(NULLIF($2,''), full_name),
		dni=COALESCE(NULLIF($3,''), dni),
		address=COALESCE(NULLIF($4,''), address),
		updated_at=NOW()
	WHERE id=$1`, id, data.Name, data.DNI, data.Address)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrCustomerNotFound
	}
	return nil
}
