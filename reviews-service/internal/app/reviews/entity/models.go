package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRole роль пользователя, выдается Auth Service и приходит в JWT (role_name)
type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleOwner    UserRole = "OWNER"
	RoleManager  UserRole = "MANAGER"
	RoleMaster   UserRole = "MASTER"
)

// User - пользователь. Сервис отзывов только читает эту таблицу.
type User struct {
	ID        uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Nickname  string    `gorm:"type:varchar(50);not null"`
	Role      UserRole  `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// IsPrivileged - менеджер или мастер могут удалять чужие отзывы
func (u *User) IsPrivileged() bool {
	return u.Role == RoleManager || u.Role == RoleMaster
}

// OrderHistory - завершенный заказ, к которому привязывается отзыв
type OrderHistory struct {
	ID             uuid.UUID `gorm:"column:order_history_id;type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;not null"`
	StoreID        uuid.UUID `gorm:"type:uuid;not null"`
	CompletionTime time.Time `gorm:"not null"`
}

func (OrderHistory) TableName() string {
	return "order_histories"
}

// Store - магазин с агрегированным рейтингом по активным отзывам.
// Источник истины - RatingSum и ReviewCount, Rating выводится из них.
type Store struct {
	ID          uuid.UUID       `gorm:"column:store_id;type:uuid;primaryKey"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Rating      decimal.Decimal `gorm:"type:numeric(6,4);not null;default:0"` // RatingSum / ReviewCount, только для отображения
	RatingSum   int64           `gorm:"not null;default:0"`
	ReviewCount int64           `gorm:"not null;default:0"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (Store) TableName() string {
	return "stores"
}

// Review - отзыв на заказ.
// OrderHistoryID, UserID и StoreID задаются один раз при создании.
type Review struct {
	ID             uuid.UUID     `gorm:"column:review_id;type:uuid;primaryKey"`
	OrderHistoryID uuid.UUID     `gorm:"type:uuid;not null"`
	UserID         uuid.UUID     `gorm:"type:uuid;not null;index"`
	StoreID        uuid.UUID     `gorm:"type:uuid;not null;index"`
	Content        ReviewContent `gorm:"type:varchar(1000);not null;default:''"`
	Rating         Rating        `gorm:"type:smallint;not null"`
	ReviewTime     time.Time     `gorm:"not null"`
	IsDeleted      bool          `gorm:"not null;default:false"`
	CreatedAt      time.Time     `gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime"`

	User *User `gorm:"foreignKey:UserID;references:ID"` // Автор, подгружается для nickname
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewFields - изменяемая часть отзыва из запросов на создание и обновление
type ReviewFields struct {
	Content    string
	Rating     int
	ReviewTime time.Time // нулевое значение - текущее время
}

// NewReview собирает отзыв по заказу. Магазин копируется из заказа и больше не меняется.
func NewReview(order *OrderHistory, author *User, fields ReviewFields, now time.Time) (*Review, error) {
	review := &Review{
		ID:             uuid.New(),
		OrderHistoryID: order.ID,
		UserID:         author.ID,
		StoreID:        order.StoreID,
		User:           author,
	}

	if err := review.apply(fields, order.CompletionTime, now); err != nil {
		return nil, err
	}

	return review, nil
}

// Update заменяет текст, оценку и время с теми же проверками, что и при создании
func (r *Review) Update(fields ReviewFields, completion time.Time, now time.Time) error {
	return r.apply(fields, completion, now)
}

func (r *Review) apply(fields ReviewFields, completion time.Time, now time.Time) error {
	content, err := NewReviewContent(fields.Content)
	if err != nil {
		return err
	}
	rating, err := NewRating(fields.Rating)
	if err != nil {
		return err
	}
	reviewTime, err := NewReviewTime(fields.ReviewTime, completion, now)
	if err != nil {
		return err
	}

	r.Content = content
	r.Rating = rating
	r.ReviewTime = reviewTime.Time()
	return nil
}

// SoftDelete помечает отзыв удаленным. Обратной операции нет.
func (r *Review) SoftDelete() {
	r.IsDeleted = true
}

func (r *Review) IsActive() bool {
	return !r.IsDeleted
}

// Nickname автора, если он подгружен
func (r *Review) Nickname() string {
	if r.User == nil {
		return ""
	}
	return r.User.Nickname
}

const (
	EventReviewCreated = "REVIEW_CREATED"
	EventReviewUpdated = "REVIEW_UPDATED"
	EventReviewDeleted = "REVIEW_DELETED"
)

// ReviewEvent - событие об изменении отзыва для Kafka
type ReviewEvent struct {
	EventType      string    `json:"event_type"`
	ReviewID       string    `json:"review_id"`
	OrderHistoryID string    `json:"order_history_id"`
	StoreID        string    `json:"store_id"`
	UserID         string    `json:"user_id"`
	Rating         int       `json:"rating"`
	PreviousRating int       `json:"previous_rating,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
