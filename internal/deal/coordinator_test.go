package deal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/CarTradeLink/CarTradeLink/internal/common/config"
	"github.com/CarTradeLink/CarTradeLink/internal/user"
)

func newTestCoordinator(s *memStore) *Coordinator {
	co := NewCoordinator(s, config.PurchaseConfig{MaxAttempts: 3, BackoffBaseMS: 1}, nil)
	co.sleep = func(time.Duration) {}
	return co
}

func TestPurchaseHappyPath(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()
	co := newTestCoordinator(s)

	res, err := co.Purchase(context.Background(), PurchaseInput{BuyerID: "buyer-1", DealID: dealID})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if res.Rounds != 1 {
		t.Fatalf("expected single round, got %d", res.Rounds)
	}
	if res.Price != 2400000 {
		t.Fatalf("expected discounted price 2400000, got %d", res.Price)
	}
	if res.Record.DealID != dealID || res.Record.BuyerID != "buyer-1" ||
		res.Record.CarID != "car-1" || res.Record.DealershipID != "ds-1" {
		t.Fatalf("unexpected ledger record: %+v", res.Record)
	}

	// 四项写入全部生效
	d := s.deals[dealID]
	if !d.Completed || d.CompletedAt == nil {
		t.Fatalf("expected deal closed, got %+v", d)
	}
	if got := s.cars["car-1"].DealershipID; got != "" {
		t.Fatalf("expected car released from custody, still held by %q", got)
	}
	sv, ok := s.sold[dealID]
	if !ok {
		t.Fatalf("expected ledger entry for deal")
	}
	if sv.SoldAt.IsZero() {
		t.Fatalf("expected sold_at set")
	}
}

func TestPurchaseInvalidInput(t *testing.T) {
	s := newMemStore()
	s.seed()
	co := newTestCoordinator(s)

	if _, err := co.Purchase(context.Background(), PurchaseInput{BuyerID: "", DealID: "deal-1"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty buyer, got %v", err)
	}
	if _, err := co.Purchase(context.Background(), PurchaseInput{BuyerID: "buyer-1", DealID: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty deal, got %v", err)
	}
	if s.commits != 0 {
		t.Fatalf("input validation must not touch the store")
	}
}

// 提交前注入故障：全部写入必须整体回滚，库存与台账保持原样。
func TestPurchaseAtomicRollback(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()
	s.failBeforeCommit = errors.New("disk on fire")
	co := newTestCoordinator(s)

	_, err := co.Purchase(context.Background(), PurchaseInput{BuyerID: "buyer-1", DealID: dealID})
	if err == nil {
		t.Fatalf("expected purchase to fail")
	}

	if s.deals[dealID].Completed {
		t.Fatalf("expected deal still open after rollback")
	}
	if s.cars["car-1"].DealershipID != "ds-1" {
		t.Fatalf("expected car custody unchanged after rollback")
	}
	if len(s.sold) != 0 {
		t.Fatalf("expected empty ledger after rollback")
	}
}

// 两个买家抢同一条报价：恰好一人成交，另一人收到不可购买。
func TestPurchaseConcurrentSingleWinner(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()
	co := newTestCoordinator(s)

	const buyers = 8
	for i := 0; i < buyers; i++ {
		id := buyerID(i)
		s.users[id] = user.User{ID: id, Email: id + "@example.com"}
	}

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = co.Purchase(context.Background(), PurchaseInput{BuyerID: buyerID(i), DealID: dealID})
		}(i)
	}
	wg.Wait()

	var wins, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrUnavailable):
			unavailable++
		default:
			t.Fatalf("unexpected error class: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if unavailable != buyers-1 {
		t.Fatalf("expected %d unavailable, got %d", buyers-1, unavailable)
	}

	// 台账恰好一条，且归属胜者
	if len(s.sold) != 1 {
		t.Fatalf("expected single ledger entry, got %d", len(s.sold))
	}
	if !s.deals[dealID].Completed {
		t.Fatalf("expected deal closed")
	}
}

func buyerID(i int) string {
	return "buyer-" + string(rune('a'+i))
}

// 冲突一次后下一轮成功。
func TestPurchaseRetryThenSucceed(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()
	s.completeConflicts = 1
	co := newTestCoordinator(s)

	res, err := co.Purchase(context.Background(), PurchaseInput{BuyerID: "buyer-1", DealID: dealID})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if res.Rounds != 2 {
		t.Fatalf("expected success on round 2, got %d", res.Rounds)
	}
	if !s.deals[dealID].Completed || len(s.sold) != 1 {
		t.Fatalf("expected committed state after retry")
	}
}

// 写冲突把重试额度耗尽：按不可购买返回，状态保持原样。
func TestPurchaseConflictExhausted(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()
	s.completeConflicts = 100
	co := newTestCoordinator(s)

	_, err := co.Purchase(context.Background(), PurchaseInput{BuyerID: "buyer-1", DealID: dealID})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable after conflict exhaustion, got %v", err)
	}
	if s.deals[dealID].Completed || len(s.sold) != 0 {
		t.Fatalf("expected no state change after exhaustion")
	}
}

// 瞬时故障耗尽重试：按瞬时错误返回，调用方可稍后再试。
func TestPurchaseTransientExhausted(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()
	s.completeTransient = 100
	co := newTestCoordinator(s)

	_, err := co.Purchase(context.Background(), PurchaseInput{BuyerID: "buyer-1", DealID: dealID})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient after transient exhaustion, got %v", err)
	}
}

// 作用域超时烧掉一轮后下一轮成功。
func TestPurchaseScopeTimeoutRetried(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()
	s.scopeTimeouts = 1
	co := newTestCoordinator(s)

	res, err := co.Purchase(context.Background(), PurchaseInput{BuyerID: "buyer-1", DealID: dealID})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if res.Rounds != 2 {
		t.Fatalf("expected success on round 2 after timeout, got %d", res.Rounds)
	}
	if !s.deals[dealID].Completed || len(s.sold) != 1 {
		t.Fatalf("expected committed state after retried timeout")
	}
}

// 作用域超时耗尽重试：按瞬时错误返回，状态保持原样。
func TestPurchaseScopeTimeoutExhausted(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()
	s.scopeTimeouts = 100
	co := newTestCoordinator(s)

	_, err := co.Purchase(context.Background(), PurchaseInput{BuyerID: "buyer-1", DealID: dealID})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient after timeout exhaustion, got %v", err)
	}
	if s.scopeTimeouts != 97 {
		t.Fatalf("expected all 3 rounds consumed, %d timeouts left", s.scopeTimeouts)
	}
	if s.deals[dealID].Completed || len(s.sold) != 0 {
		t.Fatalf("expected no state change after exhaustion")
	}
}

// 已成交的报价再次购买：直接不可购买，不消耗重试。
func TestPurchaseCompletedDealRejected(t *testing.T) {
	s := newMemStore()
	dealID := s.seed()
	co := newTestCoordinator(s)

	if _, err := co.Purchase(context.Background(), PurchaseInput{BuyerID: "buyer-1", DealID: dealID}); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	commits := s.commits

	_, err := co.Purchase(context.Background(), PurchaseInput{BuyerID: "buyer-1", DealID: dealID})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on repurchase, got %v", err)
	}
	if len(s.sold) != 1 {
		t.Fatalf("expected ledger unchanged")
	}
	if s.commits != commits {
		t.Fatalf("expected no further commits")
	}
}
