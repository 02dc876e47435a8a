package deal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CarTradeLink/CarTradeLink/internal/car"
	"github.com/CarTradeLink/CarTradeLink/internal/dealership"
	"github.com/CarTradeLink/CarTradeLink/internal/soldvehicle"
	"github.com/CarTradeLink/CarTradeLink/internal/user"
	"gorm.io/gorm"
)

// GormStore 基于 MySQL 的 Store 实现。
// 事务使用 REPEATABLE READ：校验阶段的读来自一致快照，
// 写写竞争由条件更新的影响行数和 sold_vehicles.deal_id 唯一键兜底。
type GormStore struct {
	db            *gorm.DB
	commitTimeout time.Duration
}

func NewGormStore(db *gorm.DB, commitTimeout time.Duration) *GormStore {
	if commitTimeout <= 0 {
		commitTimeout = time.Second
	}
	return &GormStore{db: db, commitTimeout: commitTimeout}
}

func (s *GormStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, s.commitTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{tx: tx})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	return classifyStoreError(err)
}

type gormTx struct {
	tx *gorm.DB
}

func (t *gormTx) DealByID(id string) (*Deal, error) {
	var d Deal
	if err := t.tx.First(&d, "id = ?", id).Error; err != nil {
		return nil, classifyStoreError(err)
	}
	return &d, nil
}

func (t *gormTx) DealershipByID(id string) (*dealership.Dealership, error) {
	var ds dealership.Dealership
	if err := t.tx.First(&ds, "id = ?", id).Error; err != nil {
		return nil, classifyStoreError(err)
	}
	return &ds, nil
}

func (t *gormTx) CarByID(id string) (*car.Car, error) {
	var c car.Car
	if err := t.tx.First(&c, "id = ?", id).Error; err != nil {
		return nil, classifyStoreError(err)
	}
	return &c, nil
}

func (t *gormTx) UserByID(id string) (*user.User, error) {
	var u user.User
	if err := t.tx.First(&u, "id = ?", id).Error; err != nil {
		return nil, classifyStoreError(err)
	}
	return &u, nil
}

func (t *gormTx) InsertSoldVehicle(sv *soldvehicle.SoldVehicle) error {
	return classifyStoreError(t.tx.Create(sv).Error)
}

func (t *gormTx) CompleteDeal(dealID string, completedAt time.Time) error {
	res := t.tx.Model(&Deal{}).
		Where("id = ? AND completed = ?", dealID, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return classifyStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("deal %s already closed by concurrent transaction: %w", dealID, ErrTxConflict)
	}
	return nil
}

func (t *gormTx) ReleaseCar(carID, dealershipID string) error {
	res := t.tx.Model(&car.Car{}).
		Where("id = ? AND dealership_id = ?", carID, dealershipID).
		Update("dealership_id", "")
	if res.Error != nil {
		return classifyStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("car %s custody changed under concurrent transaction: %w", carID, ErrTxConflict)
	}
	return nil
}
