package service

import (
	"context"
	"errors"
	"testing"

	"storereviews/reviews-service/internal/app/reviews/entity"
	"storereviews/reviews-service/internal/app/reviews/repository"
	"storereviews/reviews-service/internal/app/reviews/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetStoreRating(t *testing.T) {
	scope := mocks.NewMockTransactionScope()
	service := NewStoreRatingService(scope, scope.StoreRepo)
	store := storeWith(17, 4)

	scope.StoreRepo.On("GetByID", mock.Anything, store.ID).Return(store, nil)
	scope.StoreRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, repository.ErrStoreNotFound)

	result, err := service.GetStoreRating(context.Background(), store.ID)
	require.NoError(t, err)
	assert.Equal(t, store.ID, result.StoreID)
	assert.Equal(t, "4.25", result.AverageRating.String())
	assert.Equal(t, int64(4), result.ReviewCount)

	_, err = service.GetStoreRating(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestReconcileStore(t *testing.T) {
	t.Run("drift is corrected", func(t *testing.T) {
		scope := mocks.NewMockTransactionScope()
		service := NewStoreRatingService(scope, scope.StoreRepo)
		store := storeWith(14, 3)

		scope.StoreRepo.On("GetByIDForUpdate", mock.Anything, store.ID).Return(store, nil)
		scope.ReviewRepo.On("ActiveStatsByStoreID", mock.Anything, store.ID).
			Return(&repository.ReviewStats{Count: 2, Sum: 9}, nil)
		scope.StoreRepo.On("UpdateRating", mock.Anything, storeMatches("4.5", 9, 2)).Return(nil)

		corrected, err := service.ReconcileStore(context.Background(), store.ID)

		require.NoError(t, err)
		assert.True(t, corrected)
		scope.AssertExpectations(t)
	})

	t.Run("consistent aggregate is left alone", func(t *testing.T) {
		scope := mocks.NewMockTransactionScope()
		service := NewStoreRatingService(scope, scope.StoreRepo)
		store := storeWith(14, 3)

		scope.StoreRepo.On("GetByIDForUpdate", mock.Anything, store.ID).Return(store, nil)
		scope.ReviewRepo.On("ActiveStatsByStoreID", mock.Anything, store.ID).
			Return(&repository.ReviewStats{Count: 3, Sum: 14}, nil)

		corrected, err := service.ReconcileStore(context.Background(), store.ID)

		require.NoError(t, err)
		assert.False(t, corrected)
		scope.StoreRepo.AssertNotCalled(t, "UpdateRating", mock.Anything, mock.Anything)
	})
}

func TestReconcileAll_ContinuesAfterFailure(t *testing.T) {
	scope := mocks.NewMockTransactionScope()
	service := NewStoreRatingService(scope, scope.StoreRepo)
	broken := uuid.New()
	healthy := storeWith(0, 0)

	scope.StoreRepo.On("ListIDs", mock.Anything).Return([]uuid.UUID{broken, healthy.ID}, nil)
	scope.StoreRepo.On("GetByIDForUpdate", mock.Anything, broken).Return(nil, errors.New("connection reset"))
	scope.StoreRepo.On("GetByIDForUpdate", mock.Anything, healthy.ID).Return(healthy, nil)
	scope.ReviewRepo.On("ActiveStatsByStoreID", mock.Anything, healthy.ID).
		Return(&repository.ReviewStats{Count: 1, Sum: 5}, nil)
	scope.StoreRepo.On("UpdateRating", mock.Anything, storeMatches("5", 5, 1)).Return(nil)

	result, err := service.ReconcileAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Corrected)
	assert.Equal(t, 1, result.Failed)
}

func TestReconcileAll_StopsOnCancelledContext(t *testing.T) {
	scope := mocks.NewMockTransactionScope()
	service := NewStoreRatingService(scope, scope.StoreRepo)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scope.StoreRepo.On("ListIDs", mock.Anything).Return([]uuid.UUID{uuid.New()}, nil)

	result, err := service.ReconcileAll(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Checked)
}

func TestRecalculate_StoreMissing(t *testing.T) {
	scope := mocks.NewMockTransactionScope()
	service := NewStoreRatingService(scope, scope.StoreRepo)

	scope.StoreRepo.On("GetByIDForUpdate", mock.Anything, mock.Anything).Return(nil, repository.ErrStoreNotFound)

	err := service.Recalculate(context.Background(), scope.StoreRepo, uuid.New(), entity.CreatedDelta(5))

	assert.ErrorIs(t, err, ErrStoreNotFound)
}
