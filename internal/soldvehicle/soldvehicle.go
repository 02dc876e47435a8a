package soldvehicle

import "time"

// SoldVehicle 是 sold_vehicles 表的 GORM 模型：每笔完成的交易恰好产生一条台账记录。
// DealID 上的唯一索引保证同一交易不可能产生第二条记录。
type SoldVehicle struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	DealID       string    `gorm:"uniqueIndex;size:36;not null" json:"deal_id"`
	CarID        string    `gorm:"index;size:36;not null" json:"car_id"`
	DealershipID string    `gorm:"index;size:36;not null" json:"dealership_id"`
	BuyerID      string    `gorm:"index;size:36;not null" json:"buyer_id"`
	SoldAt       time.Time `gorm:"not null" json:"sold_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
