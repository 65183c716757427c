package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storereviews/pkg/logger"
	"storereviews/pkg/metrics"
	"storereviews/reviews-service/internal/app/reviews/entity"
	"storereviews/reviews-service/internal/app/reviews/infrastructure"
	"storereviews/reviews-service/internal/app/reviews/repository"

	"github.com/google/uuid"
)

const maxPageSize = 100

// ReviewService обрабатывает бизнес-логику отзывов.
// Каждая мутация выполняется в одной транзакции вместе с пересчетом рейтинга магазина,
// событие в Kafka отправляется после коммита.
type ReviewService struct {
	txScope       repository.TransactionScope
	reviewRepo    repository.ReviewRepository
	userRepo      repository.UserRepository
	storeRepo     repository.StoreRepository
	ratings       *StoreRatingService
	kafkaProducer infrastructure.MessagePublisher
	now           func() time.Time
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	txScope repository.TransactionScope,
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	ratings *StoreRatingService,
	kafkaProducer infrastructure.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		txScope:       txScope,
		reviewRepo:    reviewRepo,
		userRepo:      userRepo,
		storeRepo:     storeRepo,
		ratings:       ratings,
		kafkaProducer: kafkaProducer,
		now:           time.Now,
	}
}

// CreateReview создает отзыв на завершенный заказ.
// Оставить отзыв может только владелец заказа, и только один активный на заказ.
func (s *ReviewService) CreateReview(ctx context.Context, orderHistoryID, userID uuid.UUID, req *entity.CreateReviewRequest) (*entity.ReviewResponse, error) {
	var review *entity.Review

	err := s.txScope.Execute(ctx, func(repos repository.TransactionalRepositories) error {
		author, err := repos.Users().GetByID(ctx, userID)
		if err != nil {
			return translate(err, "failed to get user")
		}

		order, err := repos.OrderHistories().GetByID(ctx, orderHistoryID)
		if err != nil {
			return translate(err, "failed to get order")
		}

		// Владелец проверяется первым: чужой пользователь не узнает, есть ли у заказа отзыв
		if order.UserID != author.ID {
			return ErrForbidden
		}

		exists, err := repos.Reviews().ExistsActiveByOrderHistoryID(ctx, order.ID)
		if err != nil {
			return translate(err, "failed to check existing review")
		}
		if exists {
			return ErrReviewAlreadyExists
		}

		review, err = entity.NewReview(order, author, req.Fields(), s.now())
		if err != nil {
			return invalid(err)
		}

		// Уникальный индекс закрывает гонку между проверкой и вставкой
		if err := repos.Reviews().Create(ctx, review); err != nil {
			return translate(err, "failed to create review")
		}

		return s.ratings.Recalculate(ctx, repos.Stores(), review.StoreID, entity.CreatedDelta(review.Rating))
	})
	if err != nil {
		return nil, err
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsRating.Observe(float64(review.Rating.Int()))

	logger.Ctx(ctx).Info().
		Str("review_id", review.ID.String()).
		Str("store_id", review.StoreID.String()).
		Int("rating", review.Rating.Int()).
		Msg("Review created")

	s.publishReviewEvent(ctx, entity.EventReviewCreated, review, 0)

	resp := entity.NewReviewResponse(review)
	return &resp, nil
}

// UpdateReview заменяет текст, оценку и время отзыва. Изменять может только автор.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, userID uuid.UUID, req *entity.UpdateReviewRequest) (*entity.ReviewResponse, error) {
	var (
		review   *entity.Review
		previous entity.Rating
	)

	err := s.txScope.Execute(ctx, func(repos repository.TransactionalRepositories) error {
		var err error
		review, err = repos.Reviews().GetByID(ctx, reviewID)
		if err != nil {
			return translate(err, "failed to get review")
		}

		// Удаленный отзыв не редактируется, иначе его оценка вернулась бы в рейтинг
		if !review.IsActive() {
			return ErrReviewNotFound
		}

		if review.UserID != userID {
			return ErrForbidden
		}

		order, err := repos.OrderHistories().GetByID(ctx, review.OrderHistoryID)
		if err != nil {
			return translate(err, "failed to get order")
		}

		previous = review.Rating
		if err := review.Update(req.Fields(), order.CompletionTime, s.now()); err != nil {
			return invalid(err)
		}

		if err := repos.Reviews().Update(ctx, review); err != nil {
			return translate(err, "failed to update review")
		}

		return s.ratings.Recalculate(ctx, repos.Stores(), review.StoreID, entity.UpdatedDelta(previous, review.Rating))
	})
	if err != nil {
		return nil, err
	}

	metrics.ReviewsUpdated.Inc()
	metrics.ReviewsRating.Observe(float64(review.Rating.Int()))

	logger.Ctx(ctx).Info().
		Str("review_id", review.ID.String()).
		Int("previous_rating", previous.Int()).
		Int("rating", review.Rating.Int()).
		Msg("Review updated")

	s.publishReviewEvent(ctx, entity.EventReviewUpdated, review, previous)

	resp := entity.NewReviewResponse(review)
	return &resp, nil
}

// DeleteReview мягко удаляет отзыв. Удалить может автор, менеджер или мастер.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, userID uuid.UUID) error {
	var review *entity.Review

	err := s.txScope.Execute(ctx, func(repos repository.TransactionalRepositories) error {
		actor, err := repos.Users().GetByID(ctx, userID)
		if err != nil {
			return translate(err, "failed to get user")
		}

		review, err = repos.Reviews().GetByID(ctx, reviewID)
		if err != nil {
			return translate(err, "failed to get review")
		}

		// Повторное удаление не должно второй раз уменьшать счетчик магазина
		if !review.IsActive() {
			return ErrReviewNotFound
		}

		if review.UserID != actor.ID && !actor.IsPrivileged() {
			return ErrForbidden
		}

		review.SoftDelete()
		if err := repos.Reviews().Update(ctx, review); err != nil {
			return translate(err, "failed to delete review")
		}

		return s.ratings.Recalculate(ctx, repos.Stores(), review.StoreID, entity.DeletedDelta(review.Rating))
	})
	if err != nil {
		return err
	}

	metrics.ReviewsDeleted.Inc()

	logger.Ctx(ctx).Info().
		Str("review_id", review.ID.String()).
		Str("deleted_by", userID.String()).
		Msg("Review deleted")

	s.publishReviewEvent(ctx, entity.EventReviewDeleted, review, 0)

	return nil
}

// GetReview получает отзыв по ID, включая удаленные
func (s *ReviewService) GetReview(ctx context.Context, reviewID uuid.UUID) (*entity.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, translate(err, "failed to get review")
	}

	resp := entity.NewReviewResponse(review)
	return &resp, nil
}

// ListStoreReviews возвращает страницу активных отзывов магазина
func (s *ReviewService) ListStoreReviews(ctx context.Context, storeID uuid.UUID, query entity.PageQuery) (*entity.ReviewListResponse, error) {
	if err := validatePageQuery(query); err != nil {
		return nil, err
	}

	if _, err := s.storeRepo.GetByID(ctx, storeID); err != nil {
		return nil, translate(err, "failed to get store")
	}

	reviews, total, err := s.reviewRepo.ListByStoreID(ctx, storeID, query)
	if err != nil {
		return nil, translate(err, "failed to list store reviews")
	}

	resp := entity.NewReviewListResponse(reviews, total, query.Size)
	return &resp, nil
}

// ListUserReviews возвращает страницу активных отзывов пользователя
func (s *ReviewService) ListUserReviews(ctx context.Context, userID uuid.UUID, query entity.PageQuery) (*entity.ReviewListResponse, error) {
	if err := validatePageQuery(query); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, translate(err, "failed to get user")
	}

	reviews, total, err := s.reviewRepo.ListByUserID(ctx, userID, query)
	if err != nil {
		return nil, translate(err, "failed to list user reviews")
	}

	resp := entity.NewReviewListResponse(reviews, total, query.Size)
	return &resp, nil
}

func validatePageQuery(query entity.PageQuery) error {
	if query.Page < 0 {
		return invalid(fmt.Errorf("page must not be negative, got %d", query.Page))
	}
	if query.Size < 1 || query.Size > maxPageSize {
		return invalid(fmt.Errorf("size must be between 1 and %d, got %d", maxPageSize, query.Size))
	}
	return nil
}

// publishReviewEvent отправляет событие об отзыве в Kafka.
// Ошибка только логируется: изменение уже закоммичено.
func (s *ReviewService) publishReviewEvent(ctx context.Context, eventType string, review *entity.Review, previous entity.Rating) {
	event := entity.ReviewEvent{
		EventType:      eventType,
		ReviewID:       review.ID.String(),
		OrderHistoryID: review.OrderHistoryID.String(),
		StoreID:        review.StoreID.String(),
		UserID:         review.UserID.String(),
		Rating:         review.Rating.Int(),
		PreviousRating: previous.Int(),
		Timestamp:      s.now().UTC(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal review event")
		return
	}

	// Ключ = StoreID: события одного магазина идут в одну партицию по порядку
	if err := s.kafkaProducer.PublishMessage(ctx, event.StoreID, eventData); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("event_type", eventType).
			Str("review_id", event.ReviewID).
			Msg("Failed to publish review event")
	}
}

var _ ReviewServiceInterface = (*ReviewService)(nil)
