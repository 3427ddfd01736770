package credits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func blockRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "amount", "created_at", "expires_at"})
}

func expectLock(mock sqlmock.Sqlmock, accountID string) {
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO credit_ledgers").
		WithArgs(accountID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT account_id FROM credit_ledgers").
		WithArgs(accountID).
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow(accountID))
}

func TestPGStoreDeductWritesDiff(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	expectLock(mock, "acct-1")
	mock.ExpectQuery("SELECT id, amount, created_at, expires_at FROM credit_blocks").
		WithArgs("acct-1").
		WillReturnRows(blockRows().
			AddRow(2, 10, t0, t0.Add(24*time.Hour)).
			AddRow(1, 10, t0, t0.Add(5*24*time.Hour)))
	mock.ExpectExec("DELETE FROM credit_blocks WHERE id").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE credit_blocks SET amount").
		WithArgs(8, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO credit_events").
		WithArgs("acct-1", EventDeduct, 12, 8, "", t0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE credit_ledgers").
		WithArgs("acct-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewPostgresService(NewPGStore(db))
	d, err := svc.ReserveAndDeduct(context.Background(), "acct-1", 12, t0)
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if d.Remaining != 8 || len(d.Blocks) != 1 || d.Blocks[0].ID != 1 {
		t.Fatalf("unexpected deduction %+v", d)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreInsufficientRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	expectLock(mock, "acct-1")
	mock.ExpectQuery("SELECT id, amount, created_at, expires_at FROM credit_blocks").
		WithArgs("acct-1").
		WillReturnRows(blockRows().AddRow(1, 2, t0, t0.Add(24*time.Hour)))
	mock.ExpectRollback()

	svc := NewPostgresService(NewPGStore(db))
	_, err = svc.ReserveAndDeduct(context.Background(), "acct-1", 3, t0)
	if !errors.Is(err, ErrInsufficientCredit) {
		t.Fatalf("expected insufficient credit, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreTopUpInsertsBlock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	expectLock(mock, "acct-1")
	mock.ExpectQuery("SELECT id, amount, created_at, expires_at FROM credit_blocks").
		WithArgs("acct-1").
		WillReturnRows(blockRows().AddRow(5, 3, t0.Add(-48*time.Hour), t0.Add(-time.Hour)))
	mock.ExpectExec("DELETE FROM credit_blocks WHERE id").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO credit_blocks").
		WithArgs("acct-1", 250, t0, t0.AddDate(0, 0, 365)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))
	mock.ExpectExec("INSERT INTO credit_events").
		WithArgs("acct-1", EventTopUp, 250, 250, "plan:pack250", t0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE credit_ledgers").
		WithArgs("acct-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewPostgresService(NewPGStore(db))
	bal, err := svc.Grant(context.Background(), "acct-1", PlanPack250, t0)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if bal.Total != 250 || len(bal.Blocks) != 1 || bal.Blocks[0].ID != 77 {
		t.Fatalf("unexpected balance %+v", bal)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStorePruneExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM credit_blocks WHERE amount = 0 OR expires_at").
		WithArgs(t0).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewPGStore(db).PruneExpired(context.Background(), t0)
	if err != nil || n != 4 {
		t.Fatalf("expected 4 pruned, got %d %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreAvailableReadsBlocks(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, amount, created_at, expires_at FROM credit_blocks").
		WithArgs("acct-1").
		WillReturnRows(blockRows().
			AddRow(1, 4, t0, t0.Add(-time.Minute)).
			AddRow(2, 6, t0, t0.Add(time.Hour)))

	bal, err := NewPostgresService(NewPGStore(db)).Available(context.Background(), "acct-1", t0)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if bal.Total != 6 || len(bal.Blocks) != 1 {
		t.Fatalf("unexpected balance %+v", bal)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
