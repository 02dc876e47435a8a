package deal

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/CarTradeLink/CarTradeLink/internal/common/config"
	"github.com/CarTradeLink/CarTradeLink/internal/common/logger"
	"github.com/CarTradeLink/CarTradeLink/internal/soldvehicle"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
)

// Coordinator 执行购买用例：在单个数据库事务内完成校验与全部四项写入，
// 任何一步失败则整体回滚；可重试的冲突在上限内以新事务重来。
type Coordinator struct {
	store Store
	cfg   config.PurchaseConfig
	log   logger.Logger

	// now / sleep 可在测试中替换
	now   func() time.Time
	sleep func(time.Duration)
}

func NewCoordinator(store Store, cfg config.PurchaseConfig, log logger.Logger) *Coordinator {
	return &Coordinator{
		store: store,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// PurchaseInput 购买请求入参。
type PurchaseInput struct {
	BuyerID string
	DealID  string
}

// PurchaseResult 成交结果。
type PurchaseResult struct {
	Record *soldvehicle.SoldVehicle
	Deal   *Deal
	Price  int64 // 折后成交价（分）
	Rounds int   // 实际提交轮数
}

// Purchase 处理一次购买请求。
//
// 成功返回成交台账记录；失败时错误满足 errors.Is 下列之一：
// ErrInvalidInput / ErrNotFound / ErrUnavailable / ErrTransient。
// 重试耗尽后：写冲突按 ErrUnavailable 返回（报价大概率已被抢走），
// 瞬时故障按 ErrTransient 返回。
func (co *Coordinator) Purchase(ctx context.Context, in PurchaseInput) (*PurchaseResult, error) {
	if co == nil || co.store == nil {
		return nil, fmt.Errorf("coordinator not initialized")
	}
	in.BuyerID = strings.TrimSpace(in.BuyerID)
	in.DealID = strings.TrimSpace(in.DealID)
	if in.BuyerID == "" {
		return nil, fmt.Errorf("buyer_id required: %w", ErrInvalidInput)
	}
	if in.DealID == "" {
		return nil, fmt.Errorf("deal_id required: %w", ErrInvalidInput)
	}

	maxAttempts := co.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	attempt := NewAttempt(in.BuyerID, in.DealID, co.now())

	var lastErr error
	for round := 1; round <= maxAttempts; round++ {
		attempt.Round = round

		result, err := co.commitOnce(ctx, attempt, in)
		if err == nil {
			_ = attempt.Advance(AttemptCommitted, co.now())
			result.Rounds = round
			if co.log != nil {
				co.log.Infof("purchase committed deal=%s buyer=%s rounds=%d price=%d",
					in.DealID, in.BuyerID, round, result.Price)
			}
			return result, nil
		}

		if !Retryable(err) {
			_ = attempt.Advance(AttemptAborted, co.now())
			return nil, err
		}

		attempt.LastErr = err
		lastErr = err
		if round == maxAttempts {
			break
		}
		_ = attempt.Advance(AttemptRetrying, co.now())
		if co.log != nil {
			co.log.Warnf("purchase round %d conflicted deal=%s buyer=%s: %v, retrying",
				round, in.DealID, in.BuyerID, err)
		}
		co.sleep(co.backoff(round))
		_ = attempt.Advance(AttemptPending, co.now())

		select {
		case <-ctx.Done():
			_ = attempt.Advance(AttemptAborted, co.now())
			return nil, ctx.Err()
		default:
		}
	}

	_ = attempt.Advance(AttemptAborted, co.now())
	if co.log != nil {
		co.log.Errorf("purchase exhausted %d rounds deal=%s buyer=%s: %v",
			maxAttempts, in.DealID, in.BuyerID, lastErr)
	}
	if errors.Is(lastErr, ErrTransient) {
		return nil, fmt.Errorf("purchase failed after %d attempts: %w", maxAttempts, ErrTransient)
	}
	// 写冲突重试耗尽：报价几乎必然已被并发买家拿下
	return nil, fmt.Errorf("purchase failed after %d attempts: %w", maxAttempts, ErrUnavailable)
}

// commitOnce 在一个事务内走完 校验 -> 四项写入。
func (co *Coordinator) commitOnce(ctx context.Context, attempt *Attempt, in PurchaseInput) (*PurchaseResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "deal.purchase.commit")
	span.SetTag("deal.id", in.DealID)
	span.SetTag("purchase.round", attempt.Round)
	defer span.Finish()

	var result *PurchaseResult
	err := co.store.WithTx(ctx, func(tx Tx) error {
		pc, err := Validate(tx, in.DealID, in.BuyerID)
		if err != nil {
			return err
		}
		if err := attempt.Advance(AttemptValidated, co.now()); err != nil {
			return err
		}

		now := co.now().UTC()
		record := &soldvehicle.SoldVehicle{
			ID:           uuid.NewString(),
			DealID:       pc.Deal.ID,
			CarID:        pc.Car.ID,
			DealershipID: pc.Dealership.ID,
			BuyerID:      pc.Buyer.ID,
			SoldAt:       now,
		}

		if err := tx.InsertSoldVehicle(record); err != nil {
			return err
		}
		if err := tx.CompleteDeal(pc.Deal.ID, now); err != nil {
			return err
		}
		if err := tx.ReleaseCar(pc.Car.ID, pc.Dealership.ID); err != nil {
			return err
		}

		completed := *pc.Deal
		completed.Completed = true
		completed.CompletedAt = &now

		result = &PurchaseResult{
			Record: record,
			Deal:   &completed,
			Price:  pc.Deal.FinalPrice(),
		}
		return nil
	})
	if err != nil {
		span.SetTag("error", true)
		return nil, err
	}
	return result, nil
}

// backoff 第 round 轮失败后的退避时长，线性增长并带抖动，避免并发重试继续对撞。
func (co *Coordinator) backoff(round int) time.Duration {
	base := co.cfg.BackoffBaseMS
	if base <= 0 {
		base = 20
	}
	d := time.Duration(base*round) * time.Millisecond
	jitter := time.Duration(rand.Int63n(int64(base)+1)) * time.Millisecond
	return d + jitter
}
