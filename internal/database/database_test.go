package database

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementsCoverEveryTable(t *testing.T) {
	stmts := Statements()
	require.Len(t, stmts, 8)
	for _, table := range []string{"profiles", "products", "product_images", "store_settings", "orders", "order_items", "notifications", "visitor_sessions"} {
		found := false
		for _, s := range stmts {
			if strings.Contains(s, "CREATE TABLE IF NOT EXISTS "+table+" ") {
				found = true
			}
		}
		assert.True(t, found, table)
	}
}

func TestEnsureSchemaExecutesAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range Statements() {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizeDSNEnablesParseTime(t *testing.T) {
	for _, dsn := range []string{
		"user:pass@tcp(127.0.0.1:3306)/hidaaya",
		"user:pass@tcp(127.0.0.1:3306)/hidaaya?parseTime=false&charset=utf8mb4",
		"user:pass@tcp(127.0.0.1:3306)/hidaaya?parseTime=true",
	} {
		out, err := NormalizeDSN(dsn)
		require.NoError(t, err, dsn)

		cfg, err := mysql.ParseDSN(out)
		require.NoError(t, err)
		assert.True(t, cfg.ParseTime, out)
		assert.Equal(t, "hidaaya", cfg.DBName)
		assert.Equal(t, "127.0.0.1:3306", cfg.Addr)
	}

	_, err := NormalizeDSN("user:pass@tcp(127.0.0.1:3306")
	assert.Error(t, err)
}
