package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
)

type postgresQuoteRepository struct {
	db *sql.DB
}

// NewPostgresQuoteRepository creates the quotes table if needed.
func NewPostgresQuoteRepository(ctx context.Context, db *sql.DB) (repository.QuoteRepository, error) {
	schema := `
CREATE TABLE IF NOT EXISTS quotes (
	id BIGSERIAL PRIMARY KEY,
	client_phone TEXT NOT NULL,
	customer_id TEXT,
	client_name TEXT,
	client_dni TEXT,
	client_address TEXT,
	items JSONB NOT NULL,
	total NUMERIC(12,2) NOT NULL,
	status TEXT NOT NULL,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create quotes table: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS quotes_client_phone_idx ON quotes (client_phone)`); err != nil {
		return nil, fmt.Errorf("create quotes index: %w", err)
	}
	return &postgresQuoteRepository{db: db}, nil
}

const quoteColumns = `id, client_phone, customer_id, client_name, client_dni, client_address, items, total, status, notes, created_at, updated_at`

func (p *postgresQuoteRepository) Create(ctx context.Context, quote *entity.Quote) (*entity.Quote, error) {
	items, err := json.Marshal(quote.Items)
	if err != nil {
		return nil, err
	}
	q := *quote
	err = p.db.QueryRowContext(ctx, `
	INSERT INTO quotes (client_phone, customer_id, client_name, client_dni, client_address, items, total, status, notes)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	RETURNING id, created_at, updated_at`,
		q.ClientPhone, q.CustomerID, q.ClientName, q.ClientDNI, q.ClientAddress, items, q.Total, string(q.Status), q.Notes,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert quote: %w", err)
	}
	return &q, nil
}

func (p *postgresQuoteRepository) GetByID(ctx context.Context, id int64) (*entity.Quote, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id=$1`, id)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrQuoteNotFound
	}
	return q, err
}

func (p *postgresQuoteRepository) ListByPhone(ctx context.Context, phone string) ([]entity.Quote, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE client_phone=$1 ORDER BY created_at DESC`, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []entity.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *q)
	}
	return res, rows.Err()
}

func (p *postgresQuoteRepository) UpdateStatus(ctx context.Context, id int64, status entity.QuoteStatus) error {
	res, err := p.db.ExecContext(ctx, `UPDATE quotes SET status=$1, updated_at=NOW() WHERE id=$2`, string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrQuoteNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*entity.Quote, error) {
	var (
		q                                     entity.Quote
		customerID, name, dni, address, notes sql.NullString
		items                                 []byte
		status                                string
	)
	err := row.Scan(&q.ID, &q.ClientPhone, &customerID, &name, &dni, &address, &items, &q.Total, &status, &notes, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &q.Items); err != nil {
		return nil, fmt.Errorf("quote %d items: %w", q.ID, err)
	}
	q.Status = entity.QuoteStatus(status)
	q.CustomerID = customerID.String
	q.ClientName = name.String
	q.ClientDNI = dni.String
	q.ClientAddress = address.String
	q.Notes = notes.String
	return &q, nil
}
