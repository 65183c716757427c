package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrReviewNotFound       = errors.New("review not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrOrderHistoryNotFound = errors.New("order history not found")
	ErrStoreNotFound        = errors.New("store not found")
	ErrReviewAlreadyExists  = errors.New("active review for this order already exists")
	ErrInvalidSortField     = errors.New("invalid sort field")
)

// Код ошибки PostgreSQL для нарушения уникального ограничения
const pgUniqueViolation = "23505"

// isUniqueViolation распознает нарушение уникального индекса как от pgx, так и после TranslateError
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

const serviceName = "reviews-service"
