package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CarTradeLink/CarTradeLink/internal/common/auth"
	"github.com/CarTradeLink/CarTradeLink/internal/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// Register 注册管理员账号（auth.AccountStore 实现，Name 为登录名）。
func (s *Service) Register(ctx context.Context, in auth.RegisterInput) (string, error) {
	if s == nil || s.repo == nil {
		return "", fmt.Errorf("service not initialized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Password == "" {
		return "", fmt.Errorf("%w: admin name and password are required", auth.ErrMissingField)
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return "", auth.ErrAccountTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	salt, err := user.GenerateSaltHex()
	if err != nil {
		return "", err
	}
	hash, err := user.HashPassword(in.Password, salt)
	if err != nil {
		return "", err
	}

	a := &Admin{
		ID:           uuid.NewString(),
		Name:         name,
		PasswordHash: hash,
		PasswordSalt: salt,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return "", err
	}
	return a.ID, nil
}

// Authenticate 校验管理员凭据（auth.AccountStore 实现）。
func (s *Service) Authenticate(ctx context.Context, identity, password string) (string, error) {
	if s == nil || s.repo == nil {
		return "", fmt.Errorf("service not initialized")
	}
	name := strings.TrimSpace(identity)
	if name == "" || password == "" {
		return "", auth.ErrBadCredentials
	}

	a, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", auth.ErrBadCredentials
		}
		return "", err
	}
	if !user.VerifyPassword(password, a.PasswordSalt, a.PasswordHash) {
		return "", auth.ErrBadCredentials
	}
	return a.ID, nil
}

// ChangePassword 修改密码：先校验旧密码，再落新密码。
func (s *Service) ChangePassword(ctx context.Context, adminID, oldPassword, newPassword string) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("service not initialized")
	}
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: old and new password are required", auth.ErrMissingField)
	}

	a, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(oldPassword, a.PasswordSalt, a.PasswordHash) {
		return auth.ErrBadCredentials
	}

	salt, err := user.GenerateSaltHex()
	if err != nil {
		return err
	}
	hash, err := user.HashPassword(newPassword, salt)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, a.ID, hash, salt)
}
