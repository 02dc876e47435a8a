package deal

import (
	"context"
	"errors"
	"testing"
	"time"
)

// runValidate 在一个只读事务里执行校验，方便断言错误分类。
func runValidate(t *testing.T, s *memStore, dealID, buyerID string) (*PurchaseContext, error) {
	t.Helper()
	var pc *PurchaseContext
	var vErr error
	err := s.WithTx(context.Background(), func(tx Tx) error {
		pc, vErr = Validate(tx, dealID, buyerID)
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	return pc, vErr
}

func TestValidateHappyPath(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()

	pc, err := runValidate(t, s, dealID, "buyer-1")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if pc.Deal.ID != dealID || pc.Car.ID != "car-1" || pc.Dealership.ID != "ds-1" || pc.Buyer.ID != "buyer-1" {
		t.Fatalf("unexpected purchase context: %+v", pc)
	}
}

func TestValidateMissingDeal(t *testing.T) {
	s := newMemStore()
	s.seed()

	_, err := runValidate(t, s, "deal-missing", "buyer-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidateCompletedDeal(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()
	d := s.deals[dealID]
	d.Completed = true
	now := time.Now()
	d.CompletedAt = &now
	s.deals[dealID] = d

	_, err := runValidate(t, s, dealID, "buyer-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for completed deal, got %v", err)
	}
}

func TestValidateCarCustodyMoved(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()
	c := s.cars["car-1"]
	c.DealershipID = "ds-other"
	s.cars["car-1"] = c

	_, err := runValidate(t, s, dealID, "buyer-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable when custody moved, got %v", err)
	}
}

func TestValidateMissingBuyer(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()

	_, err := runValidate(t, s, dealID, "buyer-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing buyer, got %v", err)
	}
}

// 校验是纯读操作：同一快照上重复执行结果一致，且不产生任何写入。
func TestValidateIdempotent(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()

	err := s.WithTx(context.Background(), func(tx Tx) error {
		first, err1 := Validate(tx, dealID, "buyer-1")
		second, err2 := Validate(tx, dealID, "buyer-1")
		if err1 != nil || err2 != nil {
			t.Fatalf("Validate: %v / %v", err1, err2)
		}
		if first.Deal.ID != second.Deal.ID || first.Car.ID != second.Car.ID {
			t.Fatalf("expected identical results on repeat validation")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if s.commits != 1 {
		t.Fatalf("expected single no-op commit, got %d", s.commits)
	}
	if len(s.sold) != 0 {
		t.Fatalf("validation must not write the ledger")
	}
}
