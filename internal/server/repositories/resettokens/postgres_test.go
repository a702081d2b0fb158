package resettokens

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/notesauth/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+password_reset_tokens\s*\(token,\s*user_id,\s*expiry_date,\s*used\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*FALSE\)\s*RETURNING\s+id,\s*created_at\s*$`
	findQuery   = `(?s)^SELECT\s+id,\s*token,\s*user_id,\s*expiry_date,\s*used,\s*created_at\s+FROM\s+password_reset_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`
	markQuery   = `(?s)^UPDATE\s+password_reset_tokens\s+SET\s+used\s*=\s*TRUE\s+WHERE\s+token\s*=\s*\$1\s+AND\s+used\s*=\s*FALSE\s+AND\s+expiry_date\s*>\s*\$2\s+RETURNING\s+user_id\s*$`
)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	expiry := time.Now().Add(15 * time.Minute)
	created := time.Now()
	mock.ExpectQuery(insertQuery).
		WithArgs("tok123", "u1", expiry).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	got, err := repo.Create(context.Background(), "u1", "tok123", expiry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 7 || got.Used || got.UserID != "u1" || !got.ExpiryDate.Equal(expiry) {
		t.Fatalf("unexpected token: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs("tok123", "u1", sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "u1", "tok123", time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFind_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	expiry := time.Now().Add(10 * time.Minute)
	rows := sqlmock.NewRows([]string{"id", "token", "user_id", "expiry_date", "used", "created_at"}).
		AddRow(int64(1), "tok123", "u1", expiry, true, time.Now())
	mock.ExpectQuery(findQuery).WithArgs("tok123").WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u1" || !got.Used || !got.ExpiryDate.Equal(expiry) {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQuery).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFind_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQuery).WithArgs("tok").WillReturnError(errors.New("db err"))

	_, err := repo.Find(context.Background(), "tok")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestMarkUsed(t *testing.T) {
	now := time.Now()

	t.Run("consumed", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(markQuery).WithArgs("tok", now).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))

		userID, err := repo.MarkUsed(context.Background(), "tok", now)
		if err != nil || userID != "u1" {
			t.Fatalf("MarkUsed = %q, %v", userID, err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("no qualifying row", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(markQuery).WithArgs("tok", now).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

		_, err := repo.MarkUsed(context.Background(), "tok", now)
		if !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("want common.ErrorNotFound, got %v", err)
		}
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(markQuery).WillReturnError(errors.New("db err"))

		_, err := repo.MarkUsed(context.Background(), "tok", now)
		if err == nil || errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("expected db error, got %v", err)
		}
	})
}

func TestBulkDeletes(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		query string
		args  []driver.Value
		call  func(r *PostgresRepository) (int64, error)
	}{
		{
			name:  "expired",
			query: `^DELETE\s+FROM\s+password_reset_tokens\s+WHERE\s+expiry_date\s*<\s*\$1$`,
			args:  []driver.Value{now},
			call:  func(r *PostgresRepository) (int64, error) { return r.DeleteExpired(context.Background(), now) },
		},
		{
			name:  "used",
			query: `^DELETE\s+FROM\s+password_reset_tokens\s+WHERE\s+used\s*=\s*TRUE$`,
			call:  func(r *PostgresRepository) (int64, error) { return r.DeleteUsed(context.Background()) },
		},
		{
			name:  "expired or used",
			query: `^DELETE\s+FROM\s+password_reset_tokens\s+WHERE\s+expiry_date\s*<\s*\$1\s+OR\s+used\s*=\s*TRUE$`,
			args:  []driver.Value{now},
			call:  func(r *PostgresRepository) (int64, error) { return r.DeleteExpiredOrUsed(context.Background(), now) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			exp := mock.ExpectExec(tt.query)
			if len(tt.args) > 0 {
				exp = exp.WithArgs(tt.args...)
			}
			exp.WillReturnResult(sqlmock.NewResult(0, 3))

			n, err := tt.call(repo)
			if err != nil || n != 3 {
				t.Fatalf("got %d, %v", n, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestDeleteExpiredOrUsed_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+password_reset_tokens`).WillReturnError(errors.New("db err"))

	_, err := repo.DeleteExpiredOrUsed(context.Background(), time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCounts(t *testing.T) {
	now := time.Now()
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT\s+COUNT\(\*\)\s+FROM\s+password_reset_tokens\s+WHERE\s+expiry_date\s*<\s*\$1$`).
		WithArgs(now).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(`^SELECT\s+COUNT\(\*\)\s+FROM\s+password_reset_tokens\s+WHERE\s+used\s*=\s*TRUE$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(`^SELECT\s+COUNT\(\*\)\s+FROM\s+password_reset_tokens$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(10)))

	expired, err := repo.CountExpired(context.Background(), now)
	if err != nil || expired != 2 {
		t.Fatalf("CountExpired = %d, %v", expired, err)
	}
	used, err := repo.CountUsed(context.Background())
	if err != nil || used != 3 {
		t.Fatalf("CountUsed = %d, %v", used, err)
	}
	total, err := repo.CountTotal(context.Background())
	if err != nil || total != 10 {
		t.Fatalf("CountTotal = %d, %v", total, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
