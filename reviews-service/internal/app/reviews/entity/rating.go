package entity

import "github.com/shopspring/decimal"

// RatingScale - число знаков после запятой в среднем рейтинге магазина
const RatingScale = 4

// RatingDelta описывает изменение агрегата магазина одной мутацией отзыва
type RatingDelta struct {
	CountChange     int64
	OldContribution int64
	NewContribution int64
}

func CreatedDelta(rating Rating) RatingDelta {
	return RatingDelta{CountChange: 1, NewContribution: rating.Int64()}
}

func UpdatedDelta(previous, current Rating) RatingDelta {
	return RatingDelta{OldContribution: previous.Int64(), NewContribution: current.Int64()}
}

func DeletedDelta(rating Rating) RatingDelta {
	return RatingDelta{CountChange: -1, OldContribution: rating.Int64()}
}

// ApplyRating применяет delta к сумме и количеству оценок:
// sum - old + new, count + change. Средний рейтинг каждый раз считается заново
// из точной суммы, поэтому ошибка округления не накапливается.
// Если отзывов не осталось, агрегат сбрасывается в 0.
func (s *Store) ApplyRating(delta RatingDelta) {
	s.SetAggregate(
		s.RatingSum-delta.OldContribution+delta.NewContribution,
		s.ReviewCount+delta.CountChange,
	)
}

// SetAggregate выставляет сумму и количество оценок и выводит из них средний рейтинг,
// округленный до RatingScale знаков
func (s *Store) SetAggregate(sum, count int64) {
	if count <= 0 {
		s.RatingSum = 0
		s.ReviewCount = 0
		s.Rating = decimal.Zero
		return
	}

	s.RatingSum = sum
	s.ReviewCount = count
	s.Rating = decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), RatingScale)
}
