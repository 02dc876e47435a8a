package deal

import "time"

// Deal 表示经销商挂出的一条在售报价：某辆车以某个价格（可带折扣）出售。
// Completed 置位后报价即终态，不会再参与任何购买。
type Deal struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	CarID        string `gorm:"index;size:36;not null" json:"car_id"`
	DealershipID string `gorm:"index;size:36;not null" json:"dealership_id"`

	Price       int64  `gorm:"not null" json:"price"`    // 单位：分
	Discount    int64  `json:"discount"`                 // 折扣金额（分），0 表示无折扣
	Description string `gorm:"size:512" json:"description"`

	Completed   bool       `gorm:"not null;default:0" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Deal) TableName() string { return "deals" }

// FinalPrice 折后成交价，不会小于 0。
func (d Deal) FinalPrice() int64 {
	p := d.Price - d.Discount
	if p < 0 {
		return 0
	}
	return p
}
