package postgres

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"wallet-service/config"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_EmbeddedSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS wallets").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	err = Migrate(context.Background(), mock, zerolog.Nop())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_OrderAndFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	fsys := fstest.MapFS{
		"migrations/002_second.sql": {Data: []byte("ALTER TABLE second")},
		"migrations/001_first.sql":  {Data: []byte("CREATE TABLE first")},
		"migrations/README.md":      {Data: []byte("ignored")},
	}

	mock.ExpectExec("CREATE TABLE first").WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec("ALTER TABLE second").WillReturnError(errors.New("syntax error"))

	err = migrate(context.Background(), mock, fsys, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_second.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_Begin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	transactor := NewTransactor(mock)

	tx, err := transactor.Begin(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tx)

	_, err = transactor.Begin(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("SELECT 1").WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec("SELECT 1").WillReturnError(errors.New("down"))

	hc := NewHealthCheck(mock)
	assert.Equal(t, "postgresql", hc.Name())
	assert.NoError(t, hc.Ping(context.Background()))
	assert.Error(t, hc.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPool_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "wallet",
		Password: "secret",
		DBName:   "wallets",
		SSLMode:  "disable",
		MaxConns: 2,
	}

	pool, err := NewPool(ctx, cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Contains(t, err.Error(), "pinging wallet store 127.0.0.1:1")
}

func TestNewPool_InvalidConfig(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", Port: 5432, SSLMode: "bogus"}

	_, err := NewPool(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing wallet store config")
}
