package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	hashCost    int
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,account_email"`
	Password string `json:"password" validate:"required,password"`
}

// UpdateUserInput carries the fields to change; nil leaves a field as is.
type UpdateUserInput struct {
	Username *string `json:"username" validate:"omitempty,username"`
	Email    *string `json:"email" validate:"omitempty,account_email"`
	Password *string `json:"password" validate:"omitempty,password"`
}

type UpdateProfileInput struct {
	Bio   *string `json:"bio" validate:"omitempty,max=500"`
	Image *string `json:"image" validate:"omitempty,max=512"`
}

func NewUserService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository) *UserService {
	return &UserService{userRepo: userRepo, profileRepo: profileRepo, hashCost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, for tests and seeding.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

// Register creates the user and an empty profile.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Profile:  &models.Profile{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials. Unknown email and wrong password fail the same way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, models.NewValidationError("email and password are required")
	}
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, page models.PageRequest) (models.Result[models.User], error) {
	users, total, err := s.userRepo.List(ctx, page)
	if err != nil {
		return models.Result[models.User]{}, err
	}
	return result(users, total, page), nil
}

// UpdateUser changes the account of userID, which must be the principal.
func (s *UserService) UpdateUser(ctx context.Context, principal, userID uint, in UpdateUserInput) (*models.User, error) {
	if err := requireOwner(principal, userID, "update this user"); err != nil {
		return nil, err
	}
	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}
	if in.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &normalized
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the principal's own account and everything it owns.
func (s *UserService) DeleteUser(ctx context.Context, principal, userID uint) error {
	if err := requireOwner(principal, userID, "delete this user"); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}

func (s *UserService) GetProfile(ctx context.Context, profileID uint) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, profileID)
}

// UpdateProfile edits bio and image of a profile owned by the principal.
func (s *UserService) UpdateProfile(ctx context.Context, principal, profileID uint, in UpdateProfileInput) (*models.Profile, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(principal, profile.UserID, "update this profile"); err != nil {
		return nil, err
	}

	if in.Bio != nil {
		profile.Bio = validation.SanitizeText(*in.Bio)
	}
	if in.Image != nil {
		profile.Image = strings.TrimSpace(*in.Image)
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *UserService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}
