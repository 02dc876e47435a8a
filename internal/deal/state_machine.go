package deal

import (
	"fmt"
	"time"
)

// AttemptStatus 一次购买请求的处理状态。
type AttemptStatus string

const (
	AttemptPending   AttemptStatus = "pending"   // 已受理，尚未校验
	AttemptValidated AttemptStatus = "validated" // 校验通过，准备提交
	AttemptRetrying  AttemptStatus = "retrying"  // 提交遇到可重试冲突，等待下一轮
	AttemptCommitted AttemptStatus = "committed" // 成交，终态
	AttemptAborted   AttemptStatus = "aborted"   // 失败放弃，终态
)

// AllowTransition 定义购买状态机的允许流转关系。
// retrying 回到 pending 重新走校验，保证每一轮都基于最新快照判定。
var AllowTransition = map[AttemptStatus][]AttemptStatus{
	AttemptPending:   {AttemptValidated, AttemptRetrying, AttemptAborted},
	AttemptValidated: {AttemptCommitted, AttemptRetrying, AttemptAborted},
	AttemptRetrying:  {AttemptPending, AttemptAborted},
	// 终态
	AttemptCommitted: {},
	AttemptAborted:   {},
}

// CanTransition 判断 from -> to 是否是允许的流转。
func CanTransition(from, to AttemptStatus) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Attempt 记录一次购买请求在协调器内的推进过程，用于日志与追踪。
type Attempt struct {
	BuyerID string
	DealID  string

	Status  AttemptStatus
	Round   int // 第几轮提交（从 1 开始）
	LastErr error

	StartedAt  time.Time
	FinishedAt *time.Time
}

func NewAttempt(buyerID, dealID string, now time.Time) *Attempt {
	return &Attempt{
		BuyerID:   buyerID,
		DealID:    dealID,
		Status:    AttemptPending,
		StartedAt: now,
	}
}

// Advance 按状态机规则推进状态，非法流转返回错误。
func (a *Attempt) Advance(to AttemptStatus, now time.Time) error {
	if a == nil {
		return fmt.Errorf("attempt is nil")
	}
	if !CanTransition(a.Status, to) {
		return fmt.Errorf("invalid purchase attempt transition: %s -> %s", a.Status, to)
	}
	a.Status = to
	if to == AttemptCommitted || to == AttemptAborted {
		if a.FinishedAt == nil {
			t := now
			a.FinishedAt = &t
		}
	}
	return nil
}

// Terminal 是否已到终态。
func (a *Attempt) Terminal() bool {
	return a != nil && (a.Status == AttemptCommitted || a.Status == AttemptAborted)
}
