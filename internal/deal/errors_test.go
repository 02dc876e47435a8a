package deal

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func TestClassifyStoreError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"scope deadline", fmt.Errorf("purchase commit: %w", context.DeadlineExceeded), ErrTransient},
		{"bad conn", driver.ErrBadConn, ErrTransient},
		{"invalid conn", mysql.ErrInvalidConn, ErrTransient},
		{"deadlock", &mysql.MySQLError{Number: 1213}, ErrTxConflict},
		{"dup entry", &mysql.MySQLError{Number: 1062}, ErrTxConflict},
		{"lock wait timeout", &mysql.MySQLError{Number: 1205}, ErrTransient},
		{"duplicated key", gorm.ErrDuplicatedKey, ErrTxConflict},
	}
	for _, tc := range cases {
		got := classifyStoreError(tc.in)
		if tc.want == nil {
			if got != nil {
				t.Fatalf("%s: expected nil, got %v", tc.name, got)
			}
			continue
		}
		if !errors.Is(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}

	// 未识别的错误原样透传，且不可重试
	other := errors.New("schema drift")
	if got := classifyStoreError(other); got != other {
		t.Fatalf("expected unknown error passed through, got %v", got)
	}
	if Retryable(other) {
		t.Fatalf("unknown error must not be retryable")
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(fmt.Errorf("round 1: %w", ErrTxConflict)) {
		t.Fatalf("expected wrapped conflict retryable")
	}
	if !Retryable(ErrTransient) {
		t.Fatalf("expected transient retryable")
	}
	if Retryable(ErrUnavailable) {
		t.Fatalf("business conflict must not be retryable")
	}
	if Retryable(ErrNotFound) {
		t.Fatalf("missing entity must not be retryable")
	}
}
