package deal

import (
	"context"
	"time"

	"github.com/CarTradeLink/CarTradeLink/internal/car"
	"github.com/CarTradeLink/CarTradeLink/internal/dealership"
	"github.com/CarTradeLink/CarTradeLink/internal/soldvehicle"
	"github.com/CarTradeLink/CarTradeLink/internal/user"
)

// Store 是交易协调器使用的事务入口。
// WithTx 在一个全有或全无的事务作用域内执行 fn：fn 返回 nil 则提交，
// 返回错误则回滚并把该错误透传给调用方。
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx 是事务作用域内可用的读写操作集合。
// 读操作在 REPEATABLE READ 下取快照；条件写通过影响行数暴露写写冲突。
type Tx interface {
	DealByID(id string) (*Deal, error)
	DealershipByID(id string) (*dealership.Dealership, error)
	CarByID(id string) (*car.Car, error)
	UserByID(id string) (*user.User, error)

	// InsertSoldVehicle 写入成交台账。deal_id 唯一键保证同一报价至多成交一次。
	InsertSoldVehicle(sv *soldvehicle.SoldVehicle) error

	// CompleteDeal 条件更新 completed=0 -> 1。
	// 没有命中任何行说明报价已被并发事务关闭，返回 ErrTxConflict。
	CompleteDeal(dealID string, completedAt time.Time) error

	// ReleaseCar 把车辆从该经销商名下摘除（dealership_id 清空）。
	// 条件带上原经销商 id，库存归属已变化时返回 ErrTxConflict。
	ReleaseCar(carID, dealershipID string) error
}
