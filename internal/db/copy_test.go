package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "dedupe_keys", []string{"key"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"dedupe_keys"}, []string{"key", "site_id"}).WillReturnResult(2)

	rows := [][]any{{"12_100_SMITH", "12"}, {"10_200_ACME", "10"}}
	n, err := CopyFrom(context.Background(), mock, "dedupe_keys", []string{"key", "site_id"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"dedupe_keys"}, []string{"key"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "dedupe_keys", []string{"key"}, [][]any{{"k"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO dedupe_keys")
	assert.NoError(t, mock.ExpectationsWereMet())
}
