package dealership

import "time"

// Dealership 是 dealerships 表的 GORM 模型。
// 库存（cars）、在售交易（deals）、售出台账（sold_vehicles）均为 id 关联：
// 分别通过 cars.dealership_id、deals.dealership_id、sold_vehicles.dealership_id 解析，
// 本表不持有任何集合字段。
type Dealership struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Location     string    `gorm:"size:128" json:"location"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	PasswordSalt string    `gorm:"size:64;not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
