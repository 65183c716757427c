package repository

import (
	"context"
	"errors"
	"fmt"

	"storereviews/pkg/metrics"
	"storereviews/reviews-service/internal/app/reviews/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository создает репозиторий магазинов
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

// GetByID читает магазин без блокировки
func (r *storeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetByIDForUpdate читает магазин через SELECT ... FOR UPDATE.
// Вызывать только внутри транзакции, иначе блокировка снимается сразу.
func (r *storeRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *storeRepository) get(db *gorm.DB, id uuid.UUID) (_ *entity.Store, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "stores")
	defer func() { timer.Done(err) }()

	var store entity.Store
	result := db.First(&store, "store_id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", result.Error)
	}

	return &store, nil
}

// UpdateRating сохраняет сумму оценок, количество отзывов и выведенный из них рейтинг
func (r *storeRepository) UpdateRating(ctx context.Context, store *entity.Store) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "stores")
	defer func() { timer.Done(err) }()

	result := r.db.WithContext(ctx).Model(&entity.Store{}).
		Where("store_id = ?", store.ID).
		Updates(map[string]interface{}{
			"rating":       store.Rating,
			"rating_sum":   store.RatingSum,
			"review_count": store.ReviewCount,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update store rating: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrStoreNotFound
	}

	return nil
}

// ListIDs возвращает идентификаторы всех магазинов для сверки рейтингов
func (r *storeRepository) ListIDs(ctx context.Context) (_ []uuid.UUID, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "stores")
	defer func() { timer.Done(err) }()

	var ids []uuid.UUID
	result := r.db.WithContext(ctx).Model(&entity.Store{}).Order("store_id").Pluck("store_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list stores: %w", result.Error)
	}

	return ids, nil
}
