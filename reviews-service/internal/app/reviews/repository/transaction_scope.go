package repository

import (
	"context"

	"storereviews/pkg/metrics"

	"gorm.io/gorm"
)

// GormTransactionScope выполняет операции нескольких репозиториев в одной транзакции GORM
type GormTransactionScope struct {
	db *gorm.DB
}

func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute коммитит транзакцию, если fn вернула nil, иначе откатывает
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
	metrics.RecordTransaction(serviceName, err)
	return err
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Reviews() ReviewRepository {
	return NewReviewRepository(r.tx)
}

func (r *gormTransactionalRepositories) Users() UserRepository {
	return NewUserRepository(r.tx)
}

func (r *gormTransactionalRepositories) OrderHistories() OrderHistoryRepository {
	return NewOrderHistoryRepository(r.tx)
}

func (r *gormTransactionalRepositories) Stores() StoreRepository {
	return NewStoreRepository(r.tx)
}

var _ TransactionScope = (*GormTransactionScope)(nil)
var _ TransactionalRepositories = (*gormTransactionalRepositories)(nil)
