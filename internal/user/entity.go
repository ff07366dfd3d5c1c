package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/sechenov-plus/quiz-lambda/internal/auth"
)

type User struct {
	ID        uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string      `gorm:"type:text;uniqueIndex;not null" json:"email"`
	Name      string      `gorm:"type:text" json:"name"`
	Role      auth.Role   `gorm:"type:text;not null;default:'STUDENT'" json:"role"`
	Status    auth.Status `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
