package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRefresh(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)
	ctx := context.Background()

	sel := regexp.QuoteMeta(`FROM refresh_tokens WHERE token_hash = ? LIMIT 1`)
	cols := []string{"user_id", "expires_at", "revoked_at"}
	future := time.Now().UTC().Add(time.Hour)

	mock.ExpectQuery(sel).WithArgs("h1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(9, future, nil))
	uid, err := repo.ValidateRefresh(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), uid)

	// revoked tokens read the same as unknown ones
	mock.ExpectQuery(sel).WithArgs("h2").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(9, future, time.Now().UTC()))
	_, err = repo.ValidateRefresh(ctx, "h2")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// expired
	mock.ExpectQuery(sel).WithArgs("h3").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(9, time.Now().UTC().Add(-time.Minute), nil))
	_, err = repo.ValidateRefresh(ctx, "h3")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
