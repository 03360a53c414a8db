// Package user implements account registration, login and account lifecycle.
package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"market-api/internal/domain"
	userrepo "market-api/internal/repository/user"
	"golang.org/x/crypto/bcrypt"
)

type userRepo interface {
	Create(ctx context.Context, in userrepo.CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, in userrepo.UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type cartRepo interface {
	DeleteByUser(ctx context.Context, userID string) error
}

type wishlistRepo interface {
	DeleteByUser(ctx context.Context, userID string) error
}

type reviewRepo interface {
	DeleteByUser(ctx context.Context, userID string) error
}

type orderRepo interface {
	AnonymizeUser(ctx context.Context, userID string) error
}

type tokenIssuer interface {
	Issue(userID, role string) (string, time.Time, error)
}

type Service struct {
	userRepo     userRepo
	cartRepo     cartRepo
	wishlistRepo wishlistRepo
	reviewRepo   reviewRepo
	orderRepo    orderRepo
	tokens       tokenIssuer
	logger       *log.Logger
}

func New(users userRepo, carts cartRepo, wishlists wishlistRepo, reviews reviewRepo, orders orderRepo, tokens tokenIssuer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		userRepo:     users,
		cartRepo:     carts,
		wishlistRepo: wishlists,
		reviewRepo:   reviews,
		orderRepo:    orders,
		tokens:       tokens,
		logger:       logger,
	}
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Register creates an account and logs it in. Username and email must be
// unique; the reserved deleted-user name is refused.
func (s *Service) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case username == "":
		return nil, fmt.Errorf("%w: username required", domain.ErrInvalid)
	case username == domain.DeletedUserID:
		return nil, fmt.Errorf("%w: username is reserved", domain.ErrInvalid)
	case email == "" || !strings.Contains(email, "@"):
		return nil, fmt.Errorf("%w: valid email required", domain.ErrInvalid)
	case len(password) < 8:
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalid)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, userrepo.CreateUserInput{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("user: registered %s (%s)", created.Username, created.ID)
	return s.login(created)
}

// Login authenticates by username or email plus password.
func (s *Service) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	u, err := s.userRepo.GetByUsername(ctx, login)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = s.userRepo.GetByEmail(ctx, strings.ToLower(login))
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// same error as a bad password, no account enumeration
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.login(u)
}

func (s *Service) login(u *domain.User) (*AuthResult, error) {
	token, expires, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: expires}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfileInput mirrors the optional repository fields. Role is applied
// only when the caller is an admin.
type UpdateProfileInput struct {
	Username  *string
	Email     *string
	Role      *string
	AvatarURL *string
}

// Update edits a profile. Regular users can only edit themselves and cannot
// change roles.
func (s *Service) Update(ctx context.Context, callerID, callerRole, targetID string, in UpdateProfileInput) (*domain.User, error) {
	isAdmin := callerRole == domain.RoleAdmin
	if !isAdmin && callerID != targetID {
		return nil, domain.ErrForbidden
	}
	if in.Role != nil {
		if !isAdmin {
			return nil, domain.ErrForbidden
		}
		if *in.Role != domain.RoleUser && *in.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("%w: unknown role", domain.ErrInvalid)
		}
	}

	repoIn := userrepo.UpdateUserInput{Role: in.Role, AvatarURL: in.AvatarURL}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" || username == domain.DeletedUserID {
			return nil, fmt.Errorf("%w: invalid username", domain.ErrInvalid)
		}
		if taken, err := s.nameTaken(ctx, username, targetID); err != nil {
			return nil, err
		} else if taken {
			return nil, domain.ErrAlreadyExists
		}
		repoIn.Username = &username
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: valid email required", domain.ErrInvalid)
		}
		if taken, err := s.emailTaken(ctx, email, targetID); err != nil {
			return nil, err
		} else if taken {
			return nil, domain.ErrAlreadyExists
		}
		repoIn.Email = &email
	}

	return s.userRepo.Update(ctx, targetID, repoIn)
}

func (s *Service) nameTaken(ctx context.Context, username, selfID string) (bool, error) {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != selfID, nil
}

func (s *Service) emailTaken(ctx context.Context, email, selfID string) (bool, error) {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != selfID, nil
}

// Delete removes an account and its cart, wishlist and reviews. Orders are
// kept for bookkeeping, re-owned by the deleted-user sentinel. Admin
// accounts cannot be deleted through this path.
func (s *Service) Delete(ctx context.Context, id string) error {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == domain.RoleAdmin {
		return domain.ErrForbidden
	}

	if err := s.orderRepo.AnonymizeUser(ctx, id); err != nil {
		return fmt.Errorf("anonymize orders: %w", err)
	}
	if err := s.cartRepo.DeleteByUser(ctx, id); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	if err := s.wishlistRepo.DeleteByUser(ctx, id); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	if err := s.reviewRepo.DeleteByUser(ctx, id); err != nil {
		return fmt.Errorf("clear reviews: %w", err)
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("user: deleted %s, orders re-owned by %s", id, domain.DeletedUserID)
	return nil
}
