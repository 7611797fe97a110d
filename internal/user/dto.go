package user

import "errors"

type CreateUserDTO struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	BranchCode string `json:"branch_code"`
	BranchName string `json:"branch_name"`
	ManagerID  *int64 `json:"manager_id,omitempty"`
}

func (dto CreateUserDTO) Validate() error {
	if dto.Username == "" {
		return errors.New("username is required")
	}
	if dto.Role == "" {
		return errors.New("role is required")
	}
	return nil
}
