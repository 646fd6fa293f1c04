package usecase

import (
	"context"
	"errors"
	"strings"

	"audioshop/internal/apperr"
	"audioshop/internal/domain/model"
	repo "audioshop/internal/repository"

	"github.com/go-playground/validator/v10"
)

// validator.Validateはキャッシュを持つので使い回す
var validate = validator.New(validator.WithRequiredStructEnabled())

// 注文の持ち主としてのユーザー。認証は扱わない
type UserUsecase struct {
	users repo.UserRepository
}

func NewUserUsecase(users repo.UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

type CreateUserInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (u *UserUsecase) Create(ctx context.Context, in CreateUserInput) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return model.User{}, apperr.Validation("email is required")
	}
	if err := validate.Var(email, "email,max=255"); err != nil {
		return model.User{}, apperr.Validation("invalid email")
	}

	user := model.User{
		Email:     email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	err := u.users.Create(ctx, &user)
	if errors.Is(err, repo.ErrDuplicate) {
		return model.User{}, apperr.Conflict("email already registered")
	}
	if err != nil {
		return model.User{}, dbError(ctx, "user.create", err)
	}
	return user, nil
}

func (u *UserUsecase) GetByID(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, apperr.Validation("invalid user_id")
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return model.User{}, dbError(ctx, "user.get", err)
	}
	return user, nil
}
