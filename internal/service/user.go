package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridgames/tictactoe-llm-backend/internal/apperror"
	"github.com/gridgames/tictactoe-llm-backend/internal/entity"
)

type UserService interface {
	GetOrCreateByEmail(ctx context.Context, email string) (*entity.User, error)
}

type userRepo interface {
	Save(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

type userService struct {
	repo userRepo
}

func NewUserService(repo userRepo) UserService {
	return &userService{
		repo: repo,
	}
}

// GetOrCreateByEmail - returns the stored user for email, creating one on
// first login.
func (that *userService) GetOrCreateByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := that.repo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}

	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user = &entity.User{
		ID:    uuid.NewString(),
		Email: email,
	}

	if err = that.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return user, nil
}
