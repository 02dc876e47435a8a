package deal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CarTradeLink/CarTradeLink/internal/car"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service 封装报价管理用例（挂单、查询）。购买走 Coordinator。
type Service struct {
	repo *Repo
	cars *car.Repo
}

func NewService(repo *Repo, cars *car.Repo) *Service {
	return &Service{repo: repo, cars: cars}
}

// AddDealInput 经销商挂出报价的入参。
type AddDealInput struct {
	DealershipID string
	CarID        string
	Price        int64
	Discount     int64
	Description  string
}

// AddDeal 经销商对自己名下的车辆挂出报价。
func (s *Service) AddDeal(ctx context.Context, in AddDealInput) (*Deal, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	in.DealershipID = strings.TrimSpace(in.DealershipID)
	in.CarID = strings.TrimSpace(in.CarID)
	if in.DealershipID == "" {
		return nil, fmt.Errorf("dealership_id required: %w", ErrInvalidInput)
	}
	if in.CarID == "" {
		return nil, fmt.Errorf("car_id required: %w", ErrInvalidInput)
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", ErrInvalidInput)
	}
	if in.Discount < 0 || in.Discount > in.Price {
		return nil, fmt.Errorf("discount out of range: %w", ErrInvalidInput)
	}

	c, err := s.cars.FindByID(ctx, in.CarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("car %s: %w", in.CarID, ErrNotFound)
		}
		return nil, err
	}
	if c.DealershipID != in.DealershipID {
		return nil, fmt.Errorf("car %s not held by dealership %s: %w", in.CarID, in.DealershipID, ErrUnavailable)
	}

	d := &Deal{
		ID:           uuid.NewString(),
		CarID:        in.CarID,
		DealershipID: in.DealershipID,
		Price:        in.Price,
		Discount:     in.Discount,
		Description:  strings.TrimSpace(in.Description),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDeal(ctx context.Context, id string) (*Deal, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required: %w", ErrInvalidInput)
	}
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("deal %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return d, nil
}

func (s *Service) DealsByDealership(ctx context.Context, dealershipID string) ([]Deal, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	dealershipID = strings.TrimSpace(dealershipID)
	if dealershipID == "" {
		return nil, fmt.Errorf("dealership_id required: %w", ErrInvalidInput)
	}
	return s.repo.ListByDealership(ctx, dealershipID)
}

func (s *Service) OpenDealsByCar(ctx context.Context, carID string) ([]Deal, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	carID = strings.TrimSpace(carID)
	if carID == "" {
		return nil, fmt.Errorf("car_id required: %w", ErrInvalidInput)
	}
	return s.repo.ListOpenByCar(ctx, carID)
}
