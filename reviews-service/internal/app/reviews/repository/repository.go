package repository

import (
	"context"

	"storereviews/reviews-service/internal/app/reviews/entity"

	"github.com/google/uuid"
)

// ReviewRepository определяет методы для работы с отзывами в PostgreSQL
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	ExistsActiveByOrderHistoryID(ctx context.Context, orderHistoryID uuid.UUID) (bool, error)
	Update(ctx context.Context, review *entity.Review) error
	ListByStoreID(ctx context.Context, storeID uuid.UUID, query entity.PageQuery) ([]entity.Review, int64, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, query entity.PageQuery) ([]entity.Review, int64, error)
	ActiveStatsByStoreID(ctx context.Context, storeID uuid.UUID) (*ReviewStats, error)
}

// ReviewStats - агрегат по активным отзывам магазина, считается в БД
type ReviewStats struct {
	Count int64
	Sum   int64
}

// UserRepository - чтение пользователей (таблица принадлежит Auth Service)
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

// OrderHistoryRepository - чтение завершенных заказов
type OrderHistoryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.OrderHistory, error)
}

// StoreRepository - чтение магазинов и запись агрегата рейтинга
type StoreRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Store, error)
	// GetByIDForUpdate блокирует строку магазина до конца транзакции
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Store, error)
	UpdateRating(ctx context.Context, store *entity.Store) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// TransactionalRepositories - репозитории, привязанные к одной транзакции
type TransactionalRepositories interface {
	Reviews() ReviewRepository
	Users() UserRepository
	OrderHistories() OrderHistoryRepository
	Stores() StoreRepository
}

// TransactionScope выполняет fn в транзакции: ошибка откатывает все изменения
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TokenBlacklist проверяет отозванные Auth Service токены
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}
