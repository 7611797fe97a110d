package user

import (
	"context"
	"time"
)

// User is a directory entry. ManagerID links a branch user to the manager
// overseeing its branch; it is the single hierarchy foreign key the scope
// resolver consults.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	Role         string    `json:"role" gorm:"not null"`
	BranchCode   string    `json:"branch_code" gorm:"column:branch_code"`
	BranchName   string    `json:"branch_name" gorm:"column:branch_name"`
	ManagerID    *int64    `json:"manager_id,omitempty" gorm:"column:manager_id"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

type RepositoryAPI interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetAll(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, u *User) error
	BranchCodesForManager(ctx context.Context, managerID int64) ([]string, error)
}
