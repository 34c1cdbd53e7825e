package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	redeemUpdateSQL = "UPDATE login_tokens SET consumed_at=? WHERE token=? AND consumed_at IS NULL AND expires_at > ?"
	redeemWinnerSQL = "SELECT user_id FROM login_tokens WHERE token=? AND consumed_at IS NOT NULL LIMIT 1"
	redeemPasswdSQL = "UPDATE users SET password_hash=? WHERE id=?"
	redeemLookupSQL = "SELECT id, user_id, expires_at, consumed_at FROM login_tokens WHERE token=? LIMIT 1"
	redeemDeleteSQL = "DELETE FROM login_tokens WHERE id=?"
	issueDeleteSQL  = "DELETE FROM login_tokens WHERE user_id=? AND consumed_at IS NULL"
	issueInsertSQL  = "INSERT INTO login_tokens (user_id, token, expires_at) VALUES (?,?,?)"
)

func newTokenRepoMock(t *testing.T) (*LoginTokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewLoginTokenRepo(db), mock
}

func TestRedeemWinnerUpdatesPassword(t *testing.T) {
	repo, mock := newTokenRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(redeemUpdateSQL).
		WithArgs(sqlmock.AnyArg(), "ABC123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The follow-up read matches on consumption, never on the stored
	// timestamp: DATETIME columns round to whole seconds, so an
	// equality predicate against the Go-side time would miss the row
	// the UPDATE just touched.
	mock.ExpectQuery(redeemWinnerSQL).
		WithArgs("ABC123").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(42))
	mock.ExpectExec(redeemPasswdSQL).
		WithArgs(sqlmock.AnyArg(), 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	uid, err := repo.Redeem(context.Background(), "ABC123", "new-pw", 4)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected user 42, got %d", uid)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRedeemExpiredDeletesRow(t *testing.T) {
	repo, mock := newTokenRepoMock(t)
	past := time.Now().UTC().Add(-time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec(redeemUpdateSQL).
		WithArgs(sqlmock.AnyArg(), "OLD999", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(redeemLookupSQL).
		WithArgs("OLD999").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "consumed_at"}).
			AddRow(7, 42, past, nil))
	mock.ExpectExec(redeemDeleteSQL).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repo.Redeem(context.Background(), "OLD999", "x", 4)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRedeemUnknownCode(t *testing.T) {
	repo, mock := newTokenRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(redeemUpdateSQL).
		WithArgs(sqlmock.AnyArg(), "NOSUCH", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(redeemLookupSQL).
		WithArgs("NOSUCH").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Redeem(context.Background(), "NOSUCH", "x", 4)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRedeemAlreadyConsumed(t *testing.T) {
	repo, mock := newTokenRepoMock(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(redeemUpdateSQL).
		WithArgs(sqlmock.AnyArg(), "USED42", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(redeemLookupSQL).
		WithArgs("USED42").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "consumed_at"}).
			AddRow(7, 42, now.Add(5*time.Minute), now.Add(-time.Minute)))
	mock.ExpectRollback()

	_, err := repo.Redeem(context.Background(), "USED42", "x", 4)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for a consumed code, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestIssueReplacesPriorCodes(t *testing.T) {
	repo, mock := newTokenRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(issueDeleteSQL).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(issueInsertSQL).
		WithArgs(7, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	code, err := repo.Issue(context.Background(), 7, 10*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(code) != codeLength {
		t.Fatalf("expected %d-char code, got %q", codeLength, code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
