package postgres

import (
	"context"

	"github.com/frahmantamala/asset-management/internal/rbac"
	"gorm.io/gorm"
)

// RoleRepository implements rbac.RepositoryAPI using GORM.
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) rbac.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*rbac.Role, error) {
	var role rbac.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) GetAll(ctx context.Context) ([]*rbac.Role, error) {
	var roles []*rbac.Role
	err := r.db.WithContext(ctx).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) Create(ctx context.Context, role *rbac.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *RoleRepository) Update(ctx context.Context, role *rbac.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}
