package postgres

import (
	"context"

	"github.com/frahmantamala/asset-management/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements user.RepositoryAPI using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*user.User, error) {
	var users []*user.User
	err := r.db.WithContext(ctx).Order("username ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// BranchCodesForManager returns the distinct branch codes of users whose
// manager_id points at the given manager.
func (r *UserRepository) BranchCodesForManager(ctx context.Context, managerID int64) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&user.User{}).
		Distinct("branch_code").
		Where("manager_id = ? AND branch_code <> ''", managerID).
		Pluck("branch_code", &codes).Error
	return codes, err
}
