package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/notesauth/internal/common"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS reset_tokens (id INTEGER PRIMARY KEY, token TEXT UNIQUE, used INTEGER NOT NULL DEFAULT 0);`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM reset_tokens`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO reset_tokens(token) VALUES ('a')`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE reset_tokens SET used = 1 WHERE token = 'a'`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO reset_tokens(token) VALUES ('a')`)
		require.NoError(t, e)
		_, e = tx.ExecContext(ctx, `INSERT INTO reset_tokens(token) VALUES ('a')`)
		return e
	})
	require.Error(t, err, "duplicate token must fail")

	require.Equal(t, 0, countRows(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRows(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO reset_tokens(token) VALUES ('panic')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err, "begin should fail when DB is closed")
}

func TestWithTimeout_StalledCallBecomesStoreUnavailable(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestWithTimeout_PassesThroughResult(t *testing.T) {
	boom := errors.New("boom")
	require.NoError(t, WithTimeout(context.Background(), time.Second, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		require.True(t, ok, "deadline must be set")
		return nil
	}))
	require.Same(t, boom, WithTimeout(context.Background(), 0, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		require.False(t, ok, "zero timeout means no deadline")
		return boom
	}))
}
