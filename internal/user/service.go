package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CarTradeLink/CarTradeLink/internal/car"
	"github.com/CarTradeLink/CarTradeLink/internal/common/auth"
	"github.com/CarTradeLink/CarTradeLink/internal/soldvehicle"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service 封装买家领域用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	repo   *Repo
	cars   *car.Repo
	ledger *soldvehicle.Repo
}

func NewService(repo *Repo, cars *car.Repo, ledger *soldvehicle.Repo) *Service {
	return &Service{repo: repo, cars: cars, ledger: ledger}
}

// Register 注册买家账号（auth.AccountStore 实现）。
func (s *Service) Register(ctx context.Context, in auth.RegisterInput) (string, error) {
	if s == nil || s.repo == nil {
		return "", fmt.Errorf("service not initialized")
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" || strings.TrimSpace(in.Location) == "" {
		return "", fmt.Errorf("%w: email, password and location are required", auth.ErrMissingField)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return "", auth.ErrAccountTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return "", err
	}
	hash, err := HashPassword(in.Password, salt)
	if err != nil {
		return "", err
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Location:     strings.TrimSpace(in.Location),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

// Authenticate 校验买家凭据（auth.AccountStore 实现）。
func (s *Service) Authenticate(ctx context.Context, identity, password string) (string, error) {
	if s == nil || s.repo == nil {
		return "", fmt.Errorf("service not initialized")
	}
	email := strings.TrimSpace(strings.ToLower(identity))
	if email == "" || password == "" {
		return "", auth.ErrBadCredentials
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", auth.ErrBadCredentials
		}
		return "", err
	}
	if !VerifyPassword(password, u.PasswordSalt, u.PasswordHash) {
		return "", auth.ErrBadCredentials
	}
	return u.ID, nil
}

// OwnedVehicle 买家名下的一辆车：台账记录 + 车辆明细。
type OwnedVehicle struct {
	Vehicle soldvehicle.SoldVehicle `json:"vehicle"`
	Car     *car.Car                `json:"car,omitempty"`
}

// OwnedVehicles 买家名下全部车辆（经台账记录关联车辆明细）。
func (s *Service) OwnedVehicles(ctx context.Context, userID string) ([]OwnedVehicle, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	records, err := s.ledger.ListByBuyer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	carIDs := make([]string, 0, len(records))
	for _, rec := range records {
		carIDs = append(carIDs, rec.CarID)
	}
	cars, err := s.cars.ListByIDs(ctx, carIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*car.Car, len(cars))
	for i := range cars {
		byID[cars[i].ID] = &cars[i]
	}

	owned := make([]OwnedVehicle, 0, len(records))
	for _, rec := range records {
		owned = append(owned, OwnedVehicle{Vehicle: rec, Car: byID[rec.CarID]})
	}
	return owned, nil
}
