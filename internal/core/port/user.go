package port

import "context"

// UserRepository resolves users for the direct upload path
type UserRepository interface {
	FindIDByAPIKey(ctx context.Context, apiKey string) (string, error)
}
