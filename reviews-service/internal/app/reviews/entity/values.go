package entity

import (
	"errors"
	"time"
	"unicode/utf8"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxContentLength = 1000

	// Допустимое расхождение часов клиента и сервера для reviewTime
	reviewTimeClockSkew = time.Minute
)

var (
	ErrInvalidRating              = errors.New("rating must be between 1 and 5")
	ErrContentTooLong             = errors.New("content must not exceed 1000 characters")
	ErrReviewTimeBeforeCompletion = errors.New("review time must not be before order completion time")
	ErrReviewTimeInFuture         = errors.New("review time must not be in the future")
)

// ReviewContent - текст отзыва. Пустой текст допустим, оценка обязательна.
type ReviewContent string

func NewReviewContent(value string) (ReviewContent, error) {
	if utf8.RuneCountInString(value) > MaxContentLength {
		return "", ErrContentTooLong
	}
	return ReviewContent(value), nil
}

func (c ReviewContent) String() string {
	return string(c)
}

// Rating - оценка от 1 до 5
type Rating int

func NewRating(value int) (Rating, error) {
	if value < MinRating || value > MaxRating {
		return 0, ErrInvalidRating
	}
	return Rating(value), nil
}

func (r Rating) Int() int {
	return int(r)
}

// Int64 - вклад оценки в сумму оценок магазина
func (r Rating) Int64() int64 {
	return int64(r)
}

// ReviewTime - момент написания отзыва.
// Не раньше завершения заказа и не позже текущего времени.
type ReviewTime struct {
	value time.Time
}

// NewReviewTime проверяет requested относительно времени завершения заказа.
// Нулевое requested означает "сейчас".
func NewReviewTime(requested, completion, now time.Time) (ReviewTime, error) {
	if requested.IsZero() {
		requested = now
	}
	if requested.Before(completion) {
		return ReviewTime{}, ErrReviewTimeBeforeCompletion
	}
	if requested.After(now.Add(reviewTimeClockSkew)) {
		return ReviewTime{}, ErrReviewTimeInFuture
	}
	return ReviewTime{value: requested.UTC()}, nil
}

func (t ReviewTime) Time() time.Time {
	return t.value
}
