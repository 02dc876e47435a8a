package deal

import (
	"errors"
	"fmt"

	"github.com/CarTradeLink/CarTradeLink/internal/car"
	"github.com/CarTradeLink/CarTradeLink/internal/dealership"
	"github.com/CarTradeLink/CarTradeLink/internal/user"
)

// PurchaseContext 校验通过后的事务内快照，提交阶段只依赖这里的数据。
type PurchaseContext struct {
	Deal       *Deal
	Dealership *dealership.Dealership
	Car        *car.Car
	Buyer      *user.User
}

// Validate 在事务快照上做购买资格校验，按固定顺序检查并在第一处失败即返回：
//  1. 报价存在
//  2. 报价未成交
//  3. 挂单经销商存在
//  4. 车辆存在
//  5. 车辆当前仍在该经销商名下
//  6. 买家存在
//
// 校验是纯读操作，对同一快照重复调用结果一致。
func Validate(tx Tx, dealID, buyerID string) (*PurchaseContext, error) {
	d, err := tx.DealByID(dealID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("deal %s: %w", dealID, ErrNotFound)
		}
		return nil, err
	}
	if d.Completed {
		return nil, fmt.Errorf("deal %s already completed: %w", dealID, ErrUnavailable)
	}

	ds, err := tx.DealershipByID(d.DealershipID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("dealership %s: %w", d.DealershipID, ErrNotFound)
		}
		return nil, err
	}

	c, err := tx.CarByID(d.CarID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("car %s: %w", d.CarID, ErrNotFound)
		}
		return nil, err
	}
	if c.DealershipID != d.DealershipID {
		return nil, fmt.Errorf("car %s not held by dealership %s: %w", d.CarID, d.DealershipID, ErrUnavailable)
	}

	b, err := tx.UserByID(buyerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("buyer %s: %w", buyerID, ErrNotFound)
		}
		return nil, err
	}

	return &PurchaseContext{Deal: d, Dealership: ds, Car: c, Buyer: b}, nil
}
