package repository

import (
	"context"
	"net/url"

	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/pkg/binex"
)

// AuthRepository verifies credentials against the backend login task.
type AuthRepository struct {
	*RemoteRepository
}

// NewAuthRepository constructs the repository.
func NewAuthRepository(remote *RemoteRepository) *AuthRepository {
	return &AuthRepository{RemoteRepository: remote}
}

// Login posts the credentials and decodes the returned profile.
func (r *AuthRepository) Login(ctx context.Context, username, password string) (models.BackendUser, error) {
	raw, err := r.PostForm(ctx, binex.TaskLogin, url.Values{"username": {username}, "password": {password}})
	if err != nil {
		return models.BackendUser{}, err
	}
	return binex.DecodeObject[models.BackendUser](raw, "data", "user")
}
