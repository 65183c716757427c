// Package sqlitetest поднимает in-memory SQLite со схемой сервиса отзывов для тестов
package sqlitetest

import (
	"testing"
	"time"

	"storereviews/reviews-service/internal/app/reviews/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Тот же частичный индекс, что и в миграции PostgreSQL
const activeReviewIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_reviews_order_history_active
	ON reviews(order_history_id) WHERE is_deleted = false`

// New открывает отдельную базу на каждый тест
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Одно соединение: у каждого соединения с :memory: своя база
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.OrderHistory{}, &entity.Store{}, &entity.Review{}))
	require.NoError(t, db.Exec(activeReviewIndex).Error)

	return db
}

func SeedUser(t testing.TB, db *gorm.DB, nickname string, role entity.UserRole) *entity.User {
	t.Helper()

	user := &entity.User{ID: uuid.New(), Nickname: nickname, Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func SeedStore(t testing.TB, db *gorm.DB, name string) *entity.Store {
	t.Helper()

	store := &entity.Store{ID: uuid.New(), Name: name, Rating: decimal.Zero}
	require.NoError(t, db.Create(store).Error)
	return store
}

func SeedOrder(t testing.TB, db *gorm.DB, user *entity.User, store *entity.Store, completedAt time.Time) *entity.OrderHistory {
	t.Helper()

	order := &entity.OrderHistory{ID: uuid.New(), UserID: user.ID, StoreID: store.ID, CompletionTime: completedAt.UTC()}
	require.NoError(t, db.Create(order).Error)
	return order
}

// ReloadStore перечитывает агрегат магазина из базы
func ReloadStore(t testing.TB, db *gorm.DB, id uuid.UUID) *entity.Store {
	t.Helper()

	var store entity.Store
	require.NoError(t, db.First(&store, "store_id = ?", id).Error)
	return &store
}
