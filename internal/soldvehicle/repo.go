package soldvehicle

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repo 台账只读仓储。写入只发生在购车事务协调器的事务作用域内。
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

// ListByBuyer 买家名下的全部台账记录。
func (r *Repo) ListByBuyer(ctx context.Context, buyerID string) ([]SoldVehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var records []SoldVehicle
	if err := db.Where("buyer_id = ?", buyerID).Order("sold_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListByDealership 经销商的全部售出记录。
func (r *Repo) ListByDealership(ctx context.Context, dealershipID string) ([]SoldVehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var records []SoldVehicle
	if err := db.Where("dealership_id = ?", dealershipID).Order("sold_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
