package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePostgresDSNInfo(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want postgresDSNInfo
		ok   bool
	}{
		{
			name: "url",
			dsn:  "postgres://bot:secret@db:6543/quotes?sslmode=require",
			want: postgresDSNInfo{User: "bot", Password: "secret", Host: "db", Port: "6543", DBName: "quotes", SSLMode: "require"},
			ok:   true,
		},
		{
			name: "url defaults",
			dsn:  "postgresql://bot@db/quotes",
			want: postgresDSNInfo{User: "bot", Host: "db", Port: "5432", DBName: "quotes", SSLMode: "disable"},
			ok:   true,
		},
		{
			name: "key value",
			dsn:  "host=localhost user=bot password='secret' dbname=quotes",
			want: postgresDSNInfo{User: "bot", Password: "secret", Host: "localhost", Port: "5432", DBName: "quotes", SSLMode: "disable"},
			ok:   true,
		},
		{name: "empty", dsn: "  ", ok: false},
		{name: "garbage", dsn: "nothing here", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parsePostgresDSNInfo(tt.dsn)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestBuildURL(t *testing.T) {
	info := postgresDSNInfo{User: "bot", Password: "p@ss", Host: "db", DBName: "quotes"}
	assert.Equal(t, "postgres://bot:p%40ss@db:5432/postgres?sslmode=disable", info.buildURL("postgres"))
}

func TestDatabaseErrorHelpers(t *testing.T) {
	assert.True(t, isDatabaseMissingError(errors.New(`pq: database "quotes" does not exist`)))
	assert.False(t, isDatabaseMissingError(errors.New("connection refused")))
	assert.False(t, isDatabaseMissingError(nil))
	assert.True(t, isDatabaseExistsError(errors.New(`pq: database "quotes" already exists`)))
	assert.Equal(t, `"we""ird"`, quoteIdentifier(`we"ird`))
}

func TestNewStoresFallsBackToMemory(t *testing.T) {
	stores := NewStores(context.Background(), Options{})
	defer stores.Close()

	assert.NotNil(t, stores.Products)
	assert.NotNil(t, stores.Sessions)
	assert.NotNil(t, stores.Quotes)
	assert.NotNil(t, stores.Customers)
	_, isMemory := stores.Sessions.(*memorySessionRepository)
	assert.True(t, isMemory)
}

func TestNewStoresUsesRedisForSessions(t *testing.T) {
	mr, _ := setupRedis(t)
	stores := NewStores(context.Background(), Options{RedisURL: "redis://" + mr.Addr()})
	defer stores.Close()

	_, isRedis := stores.Sessions.(*redisSessionRepository)
	assert.True(t, isRedis)
}
