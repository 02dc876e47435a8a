package auth

import (
	"context"
	"errors"
)

// 账号边界的公共错误类型，供各角色的账号存储实现返回。
var (
	ErrAccountTaken   = errors.New("account already exists")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrMissingField   = errors.New("required field missing")
)

// RegisterInput 注册入参的并集：各角色取自己需要的字段，其余留空。
type RegisterInput struct {
	Email    string
	Name     string
	Location string
	Password string
}

// AccountStore 单一角色的账号存储：注册 + 凭据校验。
// 返回的 subject 为账号主键，作为 JWT subject 使用。
// 角色到 AccountStore 的映射在进程入口组装一次，业务层不再按角色分支。
type AccountStore interface {
	Register(ctx context.Context, in RegisterInput) (subject string, err error)
	Authenticate(ctx context.Context, identity, password string) (subject string, err error)
}
