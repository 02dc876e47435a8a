package dealership

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CarTradeLink/CarTradeLink/internal/car"
	"github.com/CarTradeLink/CarTradeLink/internal/common/auth"
	"github.com/CarTradeLink/CarTradeLink/internal/soldvehicle"
	"github.com/CarTradeLink/CarTradeLink/internal/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service 封装经销商领域用例。
type Service struct {
	repo   *Repo
	cars   *car.Repo
	ledger *soldvehicle.Repo
	users  *user.Repo
}

func NewService(repo *Repo, cars *car.Repo, ledger *soldvehicle.Repo, users *user.Repo) *Service {
	return &Service{repo: repo, cars: cars, ledger: ledger, users: users}
}

// Register 注册经销商账号（auth.AccountStore 实现）。
func (s *Service) Register(ctx context.Context, in auth.RegisterInput) (string, error) {
	if s == nil || s.repo == nil {
		return "", fmt.Errorf("service not initialized")
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" {
		return "", fmt.Errorf("%w: email, name and password are required", auth.ErrMissingField)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
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

	d := &Dealership{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Location:     strings.TrimSpace(in.Location),
		PasswordHash: hash,
		PasswordSalt: salt,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return "", err
	}
	return d.ID, nil
}

// Authenticate 校验经销商凭据（auth.AccountStore 实现）。
func (s *Service) Authenticate(ctx context.Context, identity, password string) (string, error) {
	if s == nil || s.repo == nil {
		return "", fmt.Errorf("service not initialized")
	}
	email := strings.TrimSpace(strings.ToLower(identity))
	if email == "" || password == "" {
		return "", auth.ErrBadCredentials
	}

	d, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", auth.ErrBadCredentials
		}
		return "", err
	}
	if !user.VerifyPassword(password, d.PasswordSalt, d.PasswordHash) {
		return "", auth.ErrBadCredentials
	}
	return d.ID, nil
}

// AddCarInput 上架车辆入参。
type AddCarInput struct {
	Type  string
	Name  string
	Model string
	Info  map[string]interface{}
}

// AddCar 经销商上架新车：创建车辆并把 custody 指向该经销商。
func (s *Service) AddCar(ctx context.Context, dealershipID string, in AddCarInput) (*car.Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	dealershipID = strings.TrimSpace(dealershipID)
	if dealershipID == "" {
		return nil, fmt.Errorf("dealership id required")
	}
	if strings.TrimSpace(in.Type) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("car type and name are required")
	}

	if _, err := s.repo.FindByID(ctx, dealershipID); err != nil {
		return nil, err
	}

	c := &car.Car{
		ID:           uuid.NewString(),
		Type:         strings.TrimSpace(in.Type),
		Name:         strings.TrimSpace(in.Name),
		Model:        strings.TrimSpace(in.Model),
		DealershipID: dealershipID,
	}
	if err := c.SetInfo(in.Info); err != nil {
		return nil, fmt.Errorf("invalid car info: %w", err)
	}
	if err := s.cars.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCars 某家经销商当前库存。
func (s *Service) ListCars(ctx context.Context, dealershipID string) ([]car.Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if _, err := s.repo.FindByID(ctx, dealershipID); err != nil {
		return nil, err
	}
	return s.cars.ListByDealership(ctx, dealershipID)
}

// DealershipsForCar 当前持有该车的经销商。
func (s *Service) DealershipsForCar(ctx context.Context, carID string) ([]Dealership, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	carID = strings.TrimSpace(carID)
	if carID == "" {
		return nil, fmt.Errorf("car id required")
	}
	return s.repo.ListByCarID(ctx, carID)
}

// SoldRecord 售出台账记录 + 车辆明细 + 买家信息。
type SoldRecord struct {
	Vehicle soldvehicle.SoldVehicle `json:"vehicle"`
	Car     *car.Car                `json:"car,omitempty"`
	Owner   *user.User              `json:"owner,omitempty"`
}

// SoldVehicles 经销商的售出台账（附买家信息）。
func (s *Service) SoldVehicles(ctx context.Context, dealershipID string) ([]SoldRecord, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if _, err := s.repo.FindByID(ctx, dealershipID); err != nil {
		return nil, err
	}

	records, err := s.ledger.ListByDealership(ctx, dealershipID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	carIDs := make([]string, 0, len(records))
	buyerIDs := make([]string, 0, len(records))
	for _, rec := range records {
		carIDs = append(carIDs, rec.CarID)
		buyerIDs = append(buyerIDs, rec.BuyerID)
	}

	cars, err := s.cars.ListByIDs(ctx, carIDs)
	if err != nil {
		return nil, err
	}
	carByID := make(map[string]*car.Car, len(cars))
	for i := range cars {
		carByID[cars[i].ID] = &cars[i]
	}

	owners, err := s.users.ListByIDs(ctx, buyerIDs)
	if err != nil {
		return nil, err
	}
	ownerByID := make(map[string]*user.User, len(owners))
	for i := range owners {
		ownerByID[owners[i].ID] = &owners[i]
	}

	out := make([]SoldRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, SoldRecord{
			Vehicle: rec,
			Car:     carByID[rec.CarID],
			Owner:   ownerByID[rec.BuyerID],
		})
	}
	return out, nil
}
