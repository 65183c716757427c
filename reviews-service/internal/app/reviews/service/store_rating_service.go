package service

import (
	"context"

	"storereviews/pkg/logger"
	"storereviews/pkg/metrics"
	"storereviews/reviews-service/internal/app/reviews/entity"
	"storereviews/reviews-service/internal/app/reviews/repository"

	"github.com/google/uuid"
)

// StoreRatingService ведет агрегированный рейтинг магазинов
type StoreRatingService struct {
	txScope   repository.TransactionScope
	storeRepo repository.StoreRepository
}

func NewStoreRatingService(txScope repository.TransactionScope, storeRepo repository.StoreRepository) *StoreRatingService {
	return &StoreRatingService{txScope: txScope, storeRepo: storeRepo}
}

// Recalculate применяет delta к рейтингу магазина.
// stores должен быть привязан к транзакции вызывающего: строка магазина
// блокируется до коммита, и ошибка здесь откатывает изменение отзыва.
func (s *StoreRatingService) Recalculate(ctx context.Context, stores repository.StoreRepository, storeID uuid.UUID, delta entity.RatingDelta) error {
	store, err := stores.GetByIDForUpdate(ctx, storeID)
	if err != nil {
		return translate(err, "failed to lock store")
	}

	store.ApplyRating(delta)

	if err := stores.UpdateRating(ctx, store); err != nil {
		return translate(err, "failed to update store rating")
	}

	logger.Ctx(ctx).Debug().
		Str("store_id", storeID.String()).
		Str("rating", store.Rating.String()).
		Int64("review_count", store.ReviewCount).
		Msg("Store rating recalculated")

	return nil
}

// GetStoreRating возвращает текущий агрегат магазина
func (s *StoreRatingService) GetStoreRating(ctx context.Context, storeID uuid.UUID) (*entity.StoreRatingResponse, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, translate(err, "failed to get store")
	}

	return &entity.StoreRatingResponse{
		StoreID:       store.ID,
		AverageRating: store.Rating,
		ReviewCount:   store.ReviewCount,
	}, nil
}

// ReconcileResult - итог одного прохода сверки
type ReconcileResult struct {
	Checked   int
	Corrected int
	Failed    int
}

// ReconcileAll пересчитывает агрегаты всех магазинов по таблице отзывов.
// Ошибка одного магазина не останавливает проход.
func (s *StoreRatingService) ReconcileAll(ctx context.Context) (*ReconcileResult, error) {
	storeIDs, err := s.storeRepo.ListIDs(ctx)
	if err != nil {
		return nil, translate(err, "failed to list stores")
	}

	result := &ReconcileResult{}
	for _, storeID := range storeIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Checked++
		corrected, err := s.ReconcileStore(ctx, storeID)
		switch {
		case err != nil:
			result.Failed++
			metrics.StoreRatingReconciled.WithLabelValues("failed").Inc()
			logger.Error().Err(err).Str("store_id", storeID.String()).Msg("Failed to reconcile store rating")
		case corrected:
			result.Corrected++
			metrics.StoreRatingReconciled.WithLabelValues("corrected").Inc()
		default:
			metrics.StoreRatingReconciled.WithLabelValues("unchanged").Inc()
		}
	}

	return result, nil
}

// ReconcileStore сверяет один магазин в отдельной транзакции.
// Возвращает true, если сохраненный агрегат пришлось исправить.
func (s *StoreRatingService) ReconcileStore(ctx context.Context, storeID uuid.UUID) (bool, error) {
	corrected := false

	err := s.txScope.Execute(ctx, func(repos repository.TransactionalRepositories) error {
		store, err := repos.Stores().GetByIDForUpdate(ctx, storeID)
		if err != nil {
			return translate(err, "failed to lock store")
		}

		stats, err := repos.Reviews().ActiveStatsByStoreID(ctx, storeID)
		if err != nil {
			return translate(err, "failed to aggregate reviews")
		}

		storedRating, storedSum, storedCount := store.Rating, store.RatingSum, store.ReviewCount
		store.SetAggregate(stats.Sum, stats.Count)
		if store.RatingSum == storedSum && store.ReviewCount == storedCount && store.Rating.Equal(storedRating) {
			return nil
		}

		logger.Warn().
			Str("store_id", storeID.String()).
			Str("stored_rating", storedRating.String()).
			Int64("stored_sum", storedSum).
			Int64("stored_count", storedCount).
			Int64("actual_sum", store.RatingSum).
			Int64("actual_count", store.ReviewCount).
			Msg("Store rating mismatch corrected")

		if err := repos.Stores().UpdateRating(ctx, store); err != nil {
			return translate(err, "failed to update store rating")
		}

		corrected = true
		return nil
	})

	return corrected, err
}

var _ StoreRatingServiceInterface = (*StoreRatingService)(nil)
