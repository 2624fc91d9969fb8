package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leapstack-labs/aactmcp/pkg/adapter"
	"github.com/leapstack-labs/aactmcp/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   adapter.Config
		expected string
	}{
		{
			name: "basic connection",
			config: adapter.Config{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				Username: "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "aact public database",
			config: adapter.Config{
				Host:     "aact-db.ctti-clinicaltrials.org",
				Port:     5432,
				Database: "aact",
				Username: "analyst",
				Options:  map[string]string{"sslmode": "require"},
			},
			expected: "host=aact-db.ctti-clinicaltrials.org port=5432 dbname=aact sslmode=require user=analyst",
		},
		{
			name: "defaults",
			config: adapter.Config{
				Database: "mydb",
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable",
		},
		{
			name: "password with spaces and quotes",
			config: adapter.Config{
				Database: "aact",
				Username: "analyst",
				Password: `it's a secret`,
			},
			expected: `host=localhost port=5432 dbname=aact sslmode=disable user=analyst password='it\'s a secret'`,
		},
		{
			name: "extra options are sorted",
			config: adapter.Config{
				Database: "aact",
				Options: map[string]string{
					"sslmode":          "prefer",
					"connect_timeout":  "10",
					"application_name": "aactmcp",
				},
			},
			expected: "host=localhost port=5432 dbname=aact sslmode=prefer application_name=aactmcp connect_timeout=10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildPostgresDSN(tt.config))
		})
	}
}

func TestNew(t *testing.T) {
	adp := New(nil)

	assert.NotNil(t, adp, "New() should return non-nil adapter")
	assert.Nil(t, adp.DB, "DB should be nil before Connect")
	assert.False(t, adp.IsConnected(), "should not be connected initially")
	assert.Equal(t, "postgres", adp.DialectName())
	assert.Equal(t, "public", adp.Dialect().DefaultSchema)
}

func TestAdapter_QueryWithoutConnect(t *testing.T) {
	adp := New(nil)

	_, err := adp.Query(context.Background(), core.Statement{SQL: "SELECT 1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")
	assert.ErrorIs(t, err, core.ErrDataUnavailable)
}

func TestAdapter_ConnectErrorIsUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WillReturnError(&pgconn.ConnectError{Config: &pgconn.Config{}})

	adp := New(nil)
	adp.DB = db

	_, err = adp.Query(context.Background(), core.Statement{SQL: "SELECT 1"})
	require.Error(t, err)
	assert.Equal(t, core.KindDataUnavailable, core.KindOf(err))
}

func TestIsConnErr(t *testing.T) {
	assert.True(t, isConnErr(&pgconn.ConnectError{Config: &pgconn.Config{}}))
	assert.False(t, isConnErr(errors.New("ERROR: syntax error at or near \"FORM\" (SQLSTATE 42601)")))
}

func TestAdapter_Registry(t *testing.T) {
	assert.True(t, adapter.IsRegistered("postgres"), "postgres adapter should be registered")

	factory, ok := adapter.Get("postgres")
	require.True(t, ok, "should be able to get postgres factory")

	pg, ok := factory(nil).(*Adapter)
	require.True(t, ok, "factory should return *Adapter")
	assert.Equal(t, "postgres", pg.DialectName())
}

func TestAdapter_Close(t *testing.T) {
	adp := New(nil)
	assert.NoError(t, adp.Close())
}
