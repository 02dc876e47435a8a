package dealership

import (
	"context"
	"fmt"

	"github.com/CarTradeLink/CarTradeLink/internal/car"
	"gorm.io/gorm"
)

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

func (r *Repo) Create(ctx context.Context, d *Dealership) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(d).Error
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (*Dealership, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var d Dealership
	if err := db.Where("email = ?", email).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Dealership, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var d Dealership
	if err := db.Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByCarID 当前库存中持有该车的经销商。
// custody 不变式保证最多一家，但保持列表返回以兼容目录查询语义。
func (r *Repo) ListByCarID(ctx context.Context, carID string) ([]Dealership, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	sub := db.Session(&gorm.Session{NewDB: true}).Model(&car.Car{}).Select("dealership_id").Where("id = ? AND dealership_id <> ''", carID)
	var dealerships []Dealership
	if err := db.Where("id IN (?)", sub).Find(&dealerships).Error; err != nil {
		return nil, err
	}
	return dealerships, nil
}
