package deal

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// 购买流程错误分类。调用方只需要区分四类结果：
// 参数错误、实体不存在、业务上不可购买、以及可重试的底层冲突/故障。
var (
	// ErrInvalidInput 入参缺失或非法（buyer_id / deal_id 为空等）。
	ErrInvalidInput = errors.New("invalid purchase input")

	// ErrNotFound 引用的实体（deal / car / dealership / buyer）不存在。
	ErrNotFound = errors.New("entity not found")

	// ErrUnavailable 业务冲突：报价已成交或车辆已不在该经销商名下。
	// 属于终态，重试没有意义。
	ErrUnavailable = errors.New("deal no longer available")

	// ErrTxConflict 事务级写冲突（死锁、条件更新失配、唯一键撞车），可重试。
	ErrTxConflict = errors.New("transaction conflict")

	// ErrTransient 瞬时性底层故障（锁等待超时、连接抖动），可重试。
	ErrTransient = errors.New("transient storage error")
)

// Retryable 判断错误是否值得在新事务中重试。
func Retryable(err error) bool {
	return errors.Is(err, ErrTxConflict) || errors.Is(err, ErrTransient)
}

// MySQL 错误码，见 https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	mysqlErrDupEntry        = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// classifyStoreError 把存储层错误折算到上面的分类。
// 未识别的错误原样返回，由调用方当作不可重试的内部错误处理。
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	// 事务作用域超时：本轮作废，计入重试额度
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTransient
	}
	// 连接级故障：换一条连接重来
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return ErrTransient
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrDeadlock:
			return ErrTxConflict
		case mysqlErrDupEntry:
			// sold_vehicles.deal_id 唯一键：另一事务已经卖出同一报价
			return ErrTxConflict
		case mysqlErrLockWaitTimeout:
			return ErrTransient
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrTxConflict
	}
	return err
}
