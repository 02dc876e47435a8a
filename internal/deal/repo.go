package deal

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repo 报价数据访问层。购买路径的写入不走这里，统一收敛在事务 Store 内。
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, d *Deal) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo not initialized")
	}
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Deal, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	var d Deal
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByDealership 某经销商的全部报价，未成交的排前面。
func (r *Repo) ListByDealership(ctx context.Context, dealershipID string) ([]Deal, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	var out []Deal
	err := r.db.WithContext(ctx).
		Where("dealership_id = ?", dealershipID).
		Order("completed ASC, created_at DESC").
		Find(&out).Error
	return out, err
}

// ListOpenByCar 某辆车当前在售的报价。
func (r *Repo) ListOpenByCar(ctx context.Context, carID string) ([]Deal, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	var out []Deal
	err := r.db.WithContext(ctx).
		Where("car_id = ? AND completed = ?", carID, false).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
