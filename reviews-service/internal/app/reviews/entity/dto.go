package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateReviewRequest - запрос на создание отзыва, orderHistoryId приходит в пути
type CreateReviewRequest struct {
	Content    string     `json:"content" validate:"max=1000"`
	Rating     int        `json:"rating" validate:"required,min=1,max=5"`
	ReviewTime *time.Time `json:"reviewTime"`
}

func (r CreateReviewRequest) Fields() ReviewFields {
	return toFields(r.Content, r.Rating, r.ReviewTime)
}

// UpdateReviewRequest - запрос на обновление отзыва, поля заменяются целиком
type UpdateReviewRequest struct {
	Content    string     `json:"content" validate:"max=1000"`
	Rating     int        `json:"rating" validate:"required,min=1,max=5"`
	ReviewTime *time.Time `json:"reviewTime"`
}

func (r UpdateReviewRequest) Fields() ReviewFields {
	return toFields(r.Content, r.Rating, r.ReviewTime)
}

func toFields(content string, rating int, reviewTime *time.Time) ReviewFields {
	fields := ReviewFields{Content: content, Rating: rating}
	if reviewTime != nil {
		fields.ReviewTime = *reviewTime
	}
	return fields
}

// PageQuery - параметры постраничной выборки, page начинается с 0
type PageQuery struct {
	Page   int    `form:"page,default=0" validate:"min=0"`
	Size   int    `form:"size,default=10" validate:"min=1,max=100"`
	SortBy string `form:"sortBy,default=createdAt" validate:"oneof=createdAt updatedAt rating reviewTime"`
	IsAsc  bool   `form:"isAsc,default=false"`
}

func DefaultPageQuery() PageQuery {
	return PageQuery{Page: 0, Size: 10, SortBy: "createdAt"}
}

func (q PageQuery) Offset() int {
	return q.Page * q.Size
}

// ReviewResponse - проекция отзыва для клиента
type ReviewResponse struct {
	ReviewID       uuid.UUID `json:"reviewId"`
	OrderHistoryID uuid.UUID `json:"orderHistoryId"`
	UserID         uuid.UUID `json:"userId"`
	Nickname       string    `json:"nickname"`
	Content        string    `json:"content"`
	Rating         int       `json:"rating"`
	ReviewTime     time.Time `json:"reviewTime"`
}

func NewReviewResponse(review *Review) ReviewResponse {
	return ReviewResponse{
		ReviewID:       review.ID,
		OrderHistoryID: review.OrderHistoryID,
		UserID:         review.UserID,
		Nickname:       review.Nickname(),
		Content:        review.Content.String(),
		Rating:         review.Rating.Int(),
		ReviewTime:     review.ReviewTime,
	}
}

// ReviewListResponse - страница отзывов
type ReviewListResponse struct {
	Items         []ReviewResponse `json:"items"`
	TotalPages    int              `json:"totalPages"`
	TotalElements int64            `json:"totalElements"`
}

func NewReviewListResponse(reviews []Review, total int64, size int) ReviewListResponse {
	items := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, NewReviewResponse(&reviews[i]))
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return ReviewListResponse{
		Items:         items,
		TotalPages:    totalPages,
		TotalElements: total,
	}
}

// StoreRatingResponse - агрегированный рейтинг магазина
type StoreRatingResponse struct {
	StoreID       uuid.UUID       `json:"storeId"`
	AverageRating decimal.Decimal `json:"averageRating"`
	ReviewCount   int64           `json:"reviewCount"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
