package repository

import (
	"context"
	"errors"
	"fmt"

	"storereviews/pkg/metrics"
	"storereviews/reviews-service/internal/app/reviews/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (_ *entity.User, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer func() { timer.Done(err) }()

	var user entity.User
	result := r.db.WithContext(ctx).First(&user, "user_id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", result.Error)
	}

	return &user, nil
}

type orderHistoryRepository struct {
	db *gorm.DB
}

func NewOrderHistoryRepository(db *gorm.DB) OrderHistoryRepository {
	return &orderHistoryRepository{db: db}
}

func (r *orderHistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (_ *entity.OrderHistory, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "order_histories")
	defer func() { timer.Done(err) }()

	var order entity.OrderHistory
	result := r.db.WithContext(ctx).First(&order, "order_history_id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderHistoryNotFound
		}
		return nil, fmt.Errorf("failed to get order history: %w", result.Error)
	}

	return &order, nil
}
