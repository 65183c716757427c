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

// Имена полей сортировки в API и соответствующие колонки
var reviewSortColumns = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"rating":     "rating",
	"reviewTime": "review_time",
}

const defaultSortField = "createdAt"

// sortColumn возвращает колонку для сортировки. Пустое поле - сортировка по умолчанию.
func sortColumn(field string) (string, error) {
	if field == "" {
		field = defaultSortField
	}
	column, ok := reviewSortColumns[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortField, field)
	}
	return column, nil
}

type reviewRepository struct {
	db *gorm.DB // GORM DB для работы с PostgreSQL
}

// NewReviewRepository создает новый репозиторий отзывов
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create сохраняет отзыв. Автор не пересохраняется.
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "reviews")
	defer func() { timer.Done(err) }()

	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(review)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrReviewAlreadyExists
		}
		return fmt.Errorf("failed to create review: %w", result.Error)
	}

	return nil
}

// GetByID получает отзыв вместе с автором. Удаленные отзывы тоже возвращаются.
func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (_ *entity.Review, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	defer func() { timer.Done(err) }()

	var review entity.Review
	result := r.db.WithContext(ctx).Preload("User").First(&review, "review_id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", result.Error)
	}

	return &review, nil
}

// ExistsActiveByOrderHistoryID проверяет, есть ли неудаленный отзыв на заказ
func (r *reviewRepository) ExistsActiveByOrderHistoryID(ctx context.Context, orderHistoryID uuid.UUID) (_ bool, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	defer func() { timer.Done(err) }()

	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("order_history_id = ? AND is_deleted = ?", orderHistoryID, false).
		Count(&count)

	if result.Error != nil {
		return false, fmt.Errorf("failed to check review existence: %w", result.Error)
	}

	return count > 0, nil
}

// Update сохраняет изменяемые поля отзыва
func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "reviews")
	defer func() { timer.Done(err) }()

	result := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("review_id = ?", review.ID).
		Updates(map[string]interface{}{
			"content":     review.Content,
			"rating":      review.Rating,
			"review_time": review.ReviewTime,
			"is_deleted":  review.IsDeleted,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update review: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// ListByStoreID возвращает страницу активных отзывов магазина и их общее число
func (r *reviewRepository) ListByStoreID(ctx context.Context, storeID uuid.UUID, query entity.PageQuery) ([]entity.Review, int64, error) {
	return r.listActive(ctx, "store_id", storeID, query)
}

// ListByUserID возвращает страницу активных отзывов пользователя и их общее число
func (r *reviewRepository) ListByUserID(ctx context.Context, userID uuid.UUID, query entity.PageQuery) ([]entity.Review, int64, error) {
	return r.listActive(ctx, "user_id", userID, query)
}

func (r *reviewRepository) listActive(ctx context.Context, ownerColumn string, ownerID uuid.UUID, query entity.PageQuery) (_ []entity.Review, _ int64, err error) {
	column, err := sortColumn(query.SortBy)
	if err != nil {
		return nil, 0, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	defer func() { timer.Done(err) }()

	active := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&entity.Review{}).
			Where(ownerColumn+" = ? AND is_deleted = ?", ownerID, false)
	}

	var total int64
	if err := active().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	reviews := make([]entity.Review, 0, query.Size)
	if total == 0 {
		return reviews, 0, nil
	}

	// review_id как второй ключ дает стабильный порядок между страницами
	result := active().
		Preload("User").
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: !query.IsAsc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "review_id"}}).
		Offset(query.Offset()).
		Limit(query.Size).
		Find(&reviews)

	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", result.Error)
	}

	return reviews, total, nil
}

// ActiveStatsByStoreID считает количество и сумму оценок активных отзывов магазина
func (r *reviewRepository) ActiveStatsByStoreID(ctx context.Context, storeID uuid.UUID) (_ *ReviewStats, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	defer func() { timer.Done(err) }()

	var stats ReviewStats
	result := r.db.WithContext(ctx).Model(&entity.Review{}).
		Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS sum").
		Where("store_id = ? AND is_deleted = ?", storeID, false).
		Scan(&stats)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to aggregate reviews: %w", result.Error)
	}

	return &stats, nil
}
