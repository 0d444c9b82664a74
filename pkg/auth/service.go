package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongAnswer        = errors.New("wrong security answer")
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Answer   string
}

type ProfileInput struct {
	Name     string
	Password string
	Phone    string
	Address  string
}

// Service owns account registration, login and profile maintenance.
type Service struct {
	users  UserStore
	tokens *TokenManager
}

func NewService(users UserStore, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	_, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hashed,
		Phone:    in.Phone,
		Address:  in.Address,
		Answer:   in.Answer,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}
	if !ComparePassword(password, user.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

// ForgotPassword resets the password when the stored security answer
// matches.
func (s *Service) ForgotPassword(ctx context.Context, email, answer, newPassword string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWrongAnswer
	}
	if err != nil {
		return fmt.Errorf("lookup email: %w", err)
	}
	if user.Answer != answer {
		return ErrWrongAnswer
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.users.UpdateByID(ctx, user.ID, bson.M{"password": hashed})
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// UpdateProfile changes only the fields the user filled in.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %q", userID)
	}

	fields := bson.M{}
	if in.Name != "" {
		fields["name"] = in.Name
	}
	if in.Phone != "" {
		fields["phone"] = in.Phone
	}
	if in.Address != "" {
		fields["address"] = in.Address
	}
	if in.Password != "" {
		hashed, err := HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["password"] = hashed
	}
	if len(fields) == 0 {
		return s.users.GetByID(ctx, id)
	}

	user, err := s.users.UpdateByID(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}
