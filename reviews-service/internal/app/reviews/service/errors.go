package service

import (
	"errors"
	"fmt"

	"storereviews/reviews-service/internal/app/reviews/repository"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrReviewNotFound      = errors.New("review not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrStoreNotFound       = errors.New("store not found")
	ErrForbidden           = errors.New("access to review denied")
	ErrReviewAlreadyExists = errors.New("review for this order already exists")
	ErrValidation          = errors.New("validation failed")
)

// translate переводит ошибки репозитория в ошибки сервиса.
// Неизвестные ошибки оборачиваются с описанием шага.
func translate(err error, step string) error {
	switch {
	case errors.Is(err, repository.ErrReviewNotFound):
		return ErrReviewNotFound
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrOrderHistoryNotFound):
		return ErrOrderNotFound
	case errors.Is(err, repository.ErrStoreNotFound):
		return ErrStoreNotFound
	case errors.Is(err, repository.ErrReviewAlreadyExists):
		return ErrReviewAlreadyExists
	case errors.Is(err, repository.ErrInvalidSortField):
		return invalid(err)
	}
	return fmt.Errorf("%s: %w", step, err)
}

// invalid помечает ошибку проверки входных данных как ErrValidation
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
