package mocks

import (
	"context"

	"storereviews/reviews-service/internal/app/reviews/entity"
	"storereviews/reviews-service/internal/app/reviews/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockReviewRepository мок для ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewRepository) ExistsActiveByOrderHistoryID(ctx context.Context, orderHistoryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderHistoryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) ListByStoreID(ctx context.Context, storeID uuid.UUID, query entity.PageQuery) ([]entity.Review, int64, error) {
	args := m.Called(ctx, storeID, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) ListByUserID(ctx context.Context, userID uuid.UUID, query entity.PageQuery) ([]entity.Review, int64, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) ActiveStatsByStoreID(ctx context.Context, storeID uuid.UUID) (*repository.ReviewStats, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ReviewStats), args.Error(1)
}

// MockUserRepository мок для UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockOrderHistoryRepository мок для OrderHistoryRepository
type MockOrderHistoryRepository struct {
	mock.Mock
}

func (m *MockOrderHistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.OrderHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OrderHistory), args.Error(1)
}

// MockStoreRepository мок для StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Store), args.Error(1)
}

func (m *MockStoreRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Store), args.Error(1)
}

func (m *MockStoreRepository) UpdateRating(ctx context.Context, store *entity.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func (m *MockStoreRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockTransactionScope вызывает fn с мок-репозиториями без реальной транзакции
type MockTransactionScope struct {
	ReviewRepo       *MockReviewRepository
	UserRepo         *MockUserRepository
	OrderHistoryRepo *MockOrderHistoryRepository
	StoreRepo        *MockStoreRepository
}

func NewMockTransactionScope() *MockTransactionScope {
	return &MockTransactionScope{
		ReviewRepo:       new(MockReviewRepository),
		UserRepo:         new(MockUserRepository),
		OrderHistoryRepo: new(MockOrderHistoryRepository),
		StoreRepo:        new(MockStoreRepository),
	}
}

func (m *MockTransactionScope) Execute(ctx context.Context, fn func(repos repository.TransactionalRepositories) error) error {
	return fn(m)
}

func (m *MockTransactionScope) Reviews() repository.ReviewRepository {
	return m.ReviewRepo
}

func (m *MockTransactionScope) Users() repository.UserRepository {
	return m.UserRepo
}

func (m *MockTransactionScope) OrderHistories() repository.OrderHistoryRepository {
	return m.OrderHistoryRepo
}

func (m *MockTransactionScope) Stores() repository.StoreRepository {
	return m.StoreRepo
}

// AssertExpectations проверяет ожидания всех мок-репозиториев
func (m *MockTransactionScope) AssertExpectations(t mock.TestingT) {
	m.ReviewRepo.AssertExpectations(t)
	m.UserRepo.AssertExpectations(t)
	m.OrderHistoryRepo.AssertExpectations(t)
	m.StoreRepo.AssertExpectations(t)
}

// MockTokenBlacklist мок для TokenBlacklist
type MockTokenBlacklist struct {
	mock.Mock
}

func (m *MockTokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
