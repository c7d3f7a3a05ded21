package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Profile returns the caller's stored profile, or an empty one when the
// user has never saved it.
func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return &model.User{ID: userID}, nil
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) SaveProfile(ctx context.Context, userID string, req model.ProfileRequest) (*model.User, error) {
	u := &model.User{
		ID:          userID,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		AvatarURL:   strings.TrimSpace(req.AvatarURL),
	}
	if u.DisplayName == "" {
		return nil, apperr.Validation("display_name is required")
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			return nil, apperr.Validation("email is not a valid email address")
		}
	}
	return s.users.Upsert(ctx, u)
}
