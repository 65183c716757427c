package service

import (
	"context"

	"storereviews/reviews-service/internal/app/reviews/entity"

	"github.com/google/uuid"
)

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, orderHistoryID, userID uuid.UUID, req *entity.CreateReviewRequest) (*entity.ReviewResponse, error)
	UpdateReview(ctx context.Context, reviewID, userID uuid.UUID, req *entity.UpdateReviewRequest) (*entity.ReviewResponse, error)
	DeleteReview(ctx context.Context, reviewID, userID uuid.UUID) error
	GetReview(ctx context.Context, reviewID uuid.UUID) (*entity.ReviewResponse, error)
	ListStoreReviews(ctx context.Context, storeID uuid.UUID, query entity.PageQuery) (*entity.ReviewListResponse, error)
	ListUserReviews(ctx context.Context, userID uuid.UUID, query entity.PageQuery) (*entity.ReviewListResponse, error)
}

type StoreRatingServiceInterface interface {
	GetStoreRating(ctx context.Context, storeID uuid.UUID) (*entity.StoreRatingResponse, error)
}
