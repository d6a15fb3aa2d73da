// ABOUTME: Store interface and data types for bonte-server persistence
// ABOUTME: Defines users, lifestyle logs, chat messages and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateUser is returned when registering an email that is already taken
var ErrDuplicateUser = errors.New("user already exists")

// Role constants for User.Role
const (
	RoleUser    = "user"
	RoleTrainer = "trainer"
	RoleAdmin   = "admin"
)

// User is an account holder. Age/height/weight feed the AI briefing and may
// be zero when the user has not filled in their profile.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	Age          int
	HeightCm     float64
	WeightKg     float64
	CreatedAt    time.Time
}

// Trainer is the coaching profile attached to a trainer-role user account.
type Trainer struct {
	ID             string
	UserID         string
	Bio            string
	Specialization string
	IsActive       bool
	CreatedAt      time.Time
}

// NutritionGoal holds a user's current macro targets. One row per user.
type NutritionGoal struct {
	UserID    string
	Calories  int
	Protein   int
	Fat       int
	Carbs     int
	UpdatedAt time.Time
}

// NutritionLog is a single logged meal.
type NutritionLog struct {
	ID       string
	UserID   string
	Name     string
	MealType string // breakfast, lunch, dinner, snack
	Calories int
	Protein  int
	Fat      int
	Carbs    int
	EatenAt  time.Time
}

// ActivityLog is a single logged workout.
type ActivityLog struct {
	ID              string
	UserID          string
	ActivityType    string
	Intensity       string
	DurationMinutes int
	CompletedAt     time.Time
}

// SleepLog is a single logged sleep period.
type SleepLog struct {
	ID        string
	UserID    string
	StartTime time.Time
	EndTime   time.Time
	Quality   int // 1-10, 0 when not rated
}

// ChatMessage is one entry in a user's AI conversation. Seq is assigned by
// the store on append and defines the total order for the conversation;
// wall-clock SentAt is informational only. Failed rows are outbound messages
// whose AI turn never completed; they are excluded from history reads.
type ChatMessage struct {
	Seq      int64
	ID       string
	UserID   string
	Content  string
	FromUser bool
	Failed   bool
	SentAt   time.Time
}

// TrainerMessage is one entry in a user<->trainer conversation.
// FromUser is true for user->trainer, false for trainer->user.
type TrainerMessage struct {
	Seq       int64
	ID        string
	UserID    string
	TrainerID string
	Content   string
	FromUser  bool
	SentAt    time.Time
}

// RefreshToken is a durable login session token.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store defines the interface for bonte-server persistence
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUserProfile(ctx context.Context, user *User) error

	// Trainers
	CreateTrainer(ctx context.Context, trainer *Trainer) error
	GetTrainer(ctx context.Context, id string) (*Trainer, error)
	GetTrainerByUserID(ctx context.Context, userID string) (*Trainer, error)

	// Nutrition goals
	SetNutritionGoal(ctx context.Context, goal *NutritionGoal) error
	GetNutritionGoal(ctx context.Context, userID string) (*NutritionGoal, error)

	// Lifestyle logs (lists are most-recent-first)
	CreateNutritionLog(ctx context.Context, log *NutritionLog) error
	ListNutritionLogs(ctx context.Context, userID string) ([]*NutritionLog, error)
	CreateActivityLog(ctx context.Context, log *ActivityLog) error
	ListActivityLogs(ctx context.Context, userID string) ([]*ActivityLog, error)
	CreateSleepLog(ctx context.Context, log *SleepLog) error
	ListSleepLogs(ctx context.Context, userID string) ([]*SleepLog, error)

	// AI chat messages
	AppendChatMessage(ctx context.Context, msg *ChatMessage) error
	ListChatMessages(ctx context.Context, userID string) ([]*ChatMessage, error)
	CountChatMessages(ctx context.Context, userID string) (int, error)
	MarkChatMessageFailed(ctx context.Context, id string) error

	// Trainer messages
	SaveTrainerMessage(ctx context.Context, msg *TrainerMessage) error
	ListTrainerMessages(ctx context.Context, userID, trainerID string) ([]*TrainerMessage, error)
	ListUserChats(ctx context.Context, userID string) ([]string, error)
	ListTrainerChats(ctx context.Context, trainerID string) ([]string, error)

	// Refresh tokens
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)

	// Close releases any resources held by the store
	Close() error
}
