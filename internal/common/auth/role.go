package auth

import (
	"fmt"
	"strings"
)

// Role 平台账号角色（封闭枚举，持久化/JWT 均为字符串）。
type Role string

const (
	RoleBuyer  Role = "user"       // 买家
	RoleDealer Role = "dealership" // 经销商
	RoleAdmin  Role = "admin"      // 管理员
)

// ParseRole 解析角色字符串；未知角色返回错误。
// 角色到账号存储（AccountStore）的映射在边界处解析一次，业务层不再按角色字符串分支。
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleDealer, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
