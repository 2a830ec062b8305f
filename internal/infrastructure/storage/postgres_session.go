package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
)

// postgresSessionRepository sessiyalar jadvali; version column guards writes
type postgresSessionRepository struct {
	db *sql.DB
}

// NewPostgresSessionRepository creates the table if needed.
func NewPostgresSessionRepository(ctx context.Context, db *sql.DB) (repository.SessionRepository, error) {
	schema := `
CREATE TABLE IF NOT EXISTS quote_sessions (
	phone TEXT PRIMARY KEY,
	items JSONB NOT NULL DEFAULT '[]',
	conversation_step TEXT NOT NULL DEFAULT 'shopping',
	client_data JSONB NOT NULL DEFAULT '{}',
	version BIGINT NOT NULL DEFAULT 1,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create quote_sessions table: %w", err)
	}
	return &postgresSessionRepository{db: db}, nil
}

func (p *postgresSessionRepository) Get(ctx context.Context, phone string) (*entity.Session, error) {
	row := p.db.QueryRowContext(ctx, `
	SELECT phone, items, conversation_step, client_data, version, updated_at
	FROM quote_sessions WHERE phone=$1`, phone)

	var (
		s          entity.Session
		items      []byte
		step       string
		clientData []byte
	)
	err := row.Scan(&s.Phone, &items, &step, &clientData, &s.Version, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.Step, err = entity.ParseStep(step); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &s.Items); err != nil {
		return nil, fmt.Errorf("session %s items: %w", phone, err)
	}
	if err := json.Unmarshal(clientData, &s.ClientData); err != nil {
		return nil, fmt.Errorf("session %s client_data: %w", phone, err)
	}
	return &s, nil
}

// Upsert inserts when the caller saw no row (Version 0), otherwise updates
// only if the stored version is still the one read.
func (p *postgresSessionRepository) Upsert(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	items, err := json.Marshal(session.Items)
	if err != nil {
		return nil, err
	}
	clientData, err := json.Marshal(session.ClientData)
	if err != nil {
		return nil, err
	}
	step := session.Step
	if step == "" {
		step = entity.StepShopping
	}
	updatedAt := session.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	var res sql.Result
	if session.Version == 0 {
		res, err = p.db.ExecContext(ctx, `
		INSERT INTO quote_sessions (phone, items, conversation_step, client_data, version, updated_at)
		VALUES ($1,$2,$3,$4,1,$5)
		ON CONFLICT (phone) DO NOTHING`,
			session.Phone, items, string(step), clientData, updatedAt)
	} else {
		res, err = p.db.ExecContext(ctx, `
		UPDATE quote_sessions
		SET items=$2, conversation_step=$3, client_data=$4, version=version+1, updated_at=$5
		WHERE phone=$1 AND version=$6`,
			session.Phone, items, string(step), clientData, updatedAt, session.Version)
	}
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, entity.ErrSessionConflict
	}

	saved := session.Clone()
	saved.Step = step
	saved.UpdatedAt = updatedAt
	saved.Version++
	return saved, nil
}

func (p *postgresSessionRepository) Delete(ctx context.Context, phone string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM quote_sessions WHERE phone=$1`, phone)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
