package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"storereviews/pkg/logger"
	"storereviews/reviews-service/internal/app/reviews/entity"
	"storereviews/reviews-service/internal/app/reviews/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	ratingService service.StoreRatingServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewServiceInterface, ratingService service.StoreRatingServiceInterface) *ReviewHandler {
	v := validator.New()
	// В сообщениях об ошибках используем имена полей из JSON и query
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})

	return &ReviewHandler{
		reviewService: reviewService,
		ratingService: ratingService,
		validator:     v,
	}
}

// CreateReview POST /reviews/:order_history_id
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderHistoryID, ok := pathUUID(c, "order_history_id")
	if !ok {
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Bad Request", Message: formatValidationError(err)})
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), orderHistoryID, userID, &req)
	if err != nil {
		respondError(c, err, "Failed to create review")
		return
	}

	c.JSON(http.StatusCreated, review)
}

// UpdateReview PUT /reviews/:review_id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	reviewID, ok := pathUUID(c, "review_id")
	if !ok {
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Bad Request", Message: formatValidationError(err)})
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), reviewID, userID, &req)
	if err != nil {
		respondError(c, err, "Failed to update review")
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview DELETE /reviews/:review_id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	reviewID, ok := pathUUID(c, "review_id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), reviewID, userID); err != nil {
		respondError(c, err, "Failed to delete review")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Review deleted successfully",
	})
}

// GetReview GET /reviews/:review_id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	reviewID, ok := pathUUID(c, "review_id")
	if !ok {
		return
	}

	review, err := h.reviewService.GetReview(c.Request.Context(), reviewID)
	if err != nil {
		respondError(c, err, "Failed to get review")
		return
	}

	c.JSON(http.StatusOK, review)
}

// ListStoreReviews GET /reviews/stores/:store_id
func (h *ReviewHandler) ListStoreReviews(c *gin.Context) {
	storeID, ok := pathUUID(c, "store_id")
	if !ok {
		return
	}

	query, ok := h.pageQuery(c)
	if !ok {
		return
	}

	page, err := h.reviewService.ListStoreReviews(c.Request.Context(), storeID, query)
	if err != nil {
		respondError(c, err, "Failed to get store reviews")
		return
	}

	c.JSON(http.StatusOK, page)
}

// ListUserReviews GET /reviews/users/:user_id
func (h *ReviewHandler) ListUserReviews(c *gin.Context) {
	userID, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}

	query, ok := h.pageQuery(c)
	if !ok {
		return
	}

	page, err := h.reviewService.ListUserReviews(c.Request.Context(), userID, query)
	if err != nil {
		respondError(c, err, "Failed to get user reviews")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetStoreRating GET /reviews/stores/:store_id/rating
func (h *ReviewHandler) GetStoreRating(c *gin.Context) {
	storeID, ok := pathUUID(c, "store_id")
	if !ok {
		return
	}

	rating, err := h.ratingService.GetStoreRating(c.Request.Context(), storeID)
	if err != nil {
		respondError(c, err, "Failed to get store rating")
		return
	}

	c.JSON(http.StatusOK, rating)
}

func (h *ReviewHandler) pageQuery(c *gin.Context) (entity.PageQuery, bool) {
	query := entity.DefaultPageQuery()
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Bad Request", Message: "Invalid pagination parameters"})
		return query, false
	}

	if err := h.validator.Struct(query); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Bad Request", Message: formatValidationError(err)})
		return query, false
	}

	return query, true
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(ctxUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized", Message: "Unauthorized"})
		return uuid.Nil, false
	}

	userID, ok := value.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Internal Server Error", Message: "Invalid user ID"})
		return uuid.Nil, false
	}

	return userID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Bad Request", Message: "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// respondError переводит ошибки сервиса в HTTP статусы.
// Текст неожиданных ошибок наружу не отдается.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrStoreNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Not Found", Message: err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "Forbidden", Message: err.Error()})
	case errors.Is(err, service.ErrReviewAlreadyExists):
		c.JSON(http.StatusConflict, entity.ErrorResponse{Error: "Conflict", Message: err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Bad Request", Message: err.Error()})
	default:
		_ = c.Error(err)
		logger.Ctx(c.Request.Context()).Error().Err(err).Msg(fallback)
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Internal Server Error", Message: fallback})
	}
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "Validation failed"
	}

	fieldError := validationErrors[0]
	switch fieldError.Tag() {
	case "required":
		return fieldError.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fieldError.Field(), fieldError.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fieldError.Field(), fieldError.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fieldError.Field(), fieldError.Param())
	}
	return fieldError.Field() + " is " + fieldError.Tag()
}
