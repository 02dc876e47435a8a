package deal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CarTradeLink/CarTradeLink/internal/car"
	"github.com/CarTradeLink/CarTradeLink/internal/dealership"
	"github.com/CarTradeLink/CarTradeLink/internal/soldvehicle"
	"github.com/CarTradeLink/CarTradeLink/internal/user"
)

// memStore 内存版 Store：写入先暂存，fn 成功返回后一次性落盘，
// 失败则整体丢弃，模拟数据库事务的全有或全无语义。
// 互斥锁对整个事务生效，并发调用被串行化。
type memStore struct {
	mu sync.Mutex

	deals       map[string]Deal
	dealerships map[string]dealership.Dealership
	cars        map[string]car.Car
	users       map[string]user.User
	sold        map[string]soldvehicle.SoldVehicle // key: deal_id

	// 故障注入
	completeConflicts int   // CompleteDeal 前 N 次返回可重试冲突
	completeTransient int   // CompleteDeal 前 N 次返回瞬时错误
	scopeTimeouts     int   // WithTx 前 N 次以作用域超时收场
	failBeforeCommit  error // 非空：fn 成功后仍放弃提交并返回该错误

	commits int
}

func newMemStore() *memStore {
	return &memStore{
		deals:       map[string]Deal{},
		dealerships: map[string]dealership.Dealership{},
		cars:        map[string]car.Car{},
		users:       map[string]user.User{},
		sold:        map[string]soldvehicle.SoldVehicle{},
	}
}

// seed 构造一套可成交的标准数据：一家经销商、一辆在库车、一个买家和一条在售报价。
func (s *memStore) seed() (dealID string) {
	s.dealerships["ds-1"] = dealership.Dealership{ID: "ds-1", Name: "Sunrise Motors"}
	s.cars["car-1"] = car.Car{ID: "car-1", Name: "Aurora", Model: "GT", DealershipID: "ds-1"}
	s.users["buyer-1"] = user.User{ID: "buyer-1", Email: "buyer@example.com"}
	s.deals["deal-1"] = Deal{ID: "deal-1", CarID: "car-1", DealershipID: "ds-1", Price: 2500000, Discount: 100000}
	return "deal-1"
}

func (s *memStore) WithTx(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scopeTimeouts > 0 {
		s.scopeTimeouts--
		return classifyStoreError(fmt.Errorf("purchase commit: %w", context.DeadlineExceeded))
	}

	tx := &memTx{s: s, completed: map[string]time.Time{}, released: map[string]string{}}
	if err := fn(tx); err != nil {
		return err
	}
	if s.failBeforeCommit != nil {
		err := s.failBeforeCommit
		s.failBeforeCommit = nil
		return err
	}

	for _, sv := range tx.soldInserts {
		s.sold[sv.DealID] = sv
	}
	for id, at := range tx.completed {
		d := s.deals[id]
		d.Completed = true
		t := at
		d.CompletedAt = &t
		s.deals[id] = d
	}
	for carID := range tx.released {
		c := s.cars[carID]
		c.DealershipID = ""
		s.cars[carID] = c
	}
	s.commits++
	return nil
}

type memTx struct {
	s *memStore

	soldInserts []soldvehicle.SoldVehicle
	completed   map[string]time.Time
	released    map[string]string
}

func (t *memTx) DealByID(id string) (*Deal, error) {
	d, ok := t.s.deals[id]
	if !ok {
		return nil, fmt.Errorf("deal %s: %w", id, ErrNotFound)
	}
	cp := d
	return &cp, nil
}

func (t *memTx) DealershipByID(id string) (*dealership.Dealership, error) {
	ds, ok := t.s.dealerships[id]
	if !ok {
		return nil, fmt.Errorf("dealership %s: %w", id, ErrNotFound)
	}
	cp := ds
	return &cp, nil
}

func (t *memTx) CarByID(id string) (*car.Car, error) {
	c, ok := t.s.cars[id]
	if !ok {
		return nil, fmt.Errorf("car %s: %w", id, ErrNotFound)
	}
	cp := c
	return &cp, nil
}

func (t *memTx) UserByID(id string) (*user.User, error) {
	u, ok := t.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	cp := u
	return &cp, nil
}

func (t *memTx) InsertSoldVehicle(sv *soldvehicle.SoldVehicle) error {
	if _, dup := t.s.sold[sv.DealID]; dup {
		return fmt.Errorf("duplicate ledger entry for deal %s: %w", sv.DealID, ErrTxConflict)
	}
	t.soldInserts = append(t.soldInserts, *sv)
	return nil
}

func (t *memTx) CompleteDeal(dealID string, completedAt time.Time) error {
	if t.s.completeTransient > 0 {
		t.s.completeTransient--
		return fmt.Errorf("storage hiccup: %w", ErrTransient)
	}
	if t.s.completeConflicts > 0 {
		t.s.completeConflicts--
		return fmt.Errorf("concurrent close: %w", ErrTxConflict)
	}
	d, ok := t.s.deals[dealID]
	if !ok || d.Completed {
		return fmt.Errorf("deal %s already closed: %w", dealID, ErrTxConflict)
	}
	t.completed[dealID] = completedAt
	return nil
}

func (t *memTx) ReleaseCar(carID, dealershipID string) error {
	c, ok := t.s.cars[carID]
	if !ok || c.DealershipID != dealershipID {
		return fmt.Errorf("car %s custody changed: %w", carID, ErrTxConflict)
	}
	t.released[carID] = dealershipID
	return nil
}
