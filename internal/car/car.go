package car

import (
	"encoding/json"
	"time"
)

// Car 是 cars 表的 GORM 模型。
// DealershipID 表示当前库存归属（custody）：同一辆车任一时刻最多属于一家经销商；
// 售出后清空，车辆脱离库存。
type Car struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Type         string    `gorm:"size:32;not null" json:"type"` // suv / sedan / hatchback ...
	Name         string    `gorm:"size:64;not null" json:"name"`
	Model        string    `gorm:"size:64" json:"model"`
	DealershipID string    `gorm:"index;size:36" json:"dealership_id"`
	Info         string    `gorm:"type:text" json:"info"` // 自由属性（JSON 文本）
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// InStock 车辆是否仍在某家经销商库存中。
func (c Car) InStock() bool {
	return c.DealershipID != ""
}

// InfoMap 解析自由属性；内容非 JSON 时返回空 map。
func (c Car) InfoMap() map[string]interface{} {
	if c.Info == "" {
		return map[string]interface{}{}
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal([]byte(c.Info), &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}

// SetInfo 序列化自由属性。
func (c *Car) SetInfo(m map[string]interface{}) error {
	if len(m) == 0 {
		c.Info = ""
		return nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	c.Info = string(data)
	return nil
}
