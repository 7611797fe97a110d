package auth

import "errors"

// LoginDTO carries only a username. The legacy system performs no credential
// check on login and hardening it is an explicit non-goal; the session token
// exists so later requests carry a verified identity rather than self-
// asserted query parameters.
type LoginDTO struct {
	Username string `json:"username"`
}

func (dto LoginDTO) Validate() error {
	if dto.Username == "" {
		return errors.New("username is required")
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (dto RefreshTokenDTO) Validate() error {
	if dto.RefreshToken == "" {
		return errors.New("refresh_token is required")
	}
	return nil
}

type LoginResponse struct {
	User   *User      `json:"user"`
	Tokens AuthTokens `json:"tokens"`
}
