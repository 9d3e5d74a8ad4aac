package ports

import "context"

type AuthService interface {
	Enabled() bool
	ValidateToken(ctx context.Context, token string) (bool, error)
}
