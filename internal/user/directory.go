package user

import (
	"context"

	"github.com/frahmantamala/asset-management/internal/auth"
)

// Directory adapts the user repository to auth.UserDirectory so the auth
// package never has to import this one.
type Directory struct {
	repo RepositoryAPI
}

func NewDirectory(repo RepositoryAPI) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) GetByUsername(ctx context.Context, username string) (*auth.DirectoryUser, error) {
	u, err := d.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return directoryUser(u), nil
}

func (d *Directory) GetByID(ctx context.Context, id int64) (*auth.DirectoryUser, error) {
	u, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return directoryUser(u), nil
}

func directoryUser(u *User) *auth.DirectoryUser {
	return &auth.DirectoryUser{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		BranchCode: u.BranchCode,
	}
}
