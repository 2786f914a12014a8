package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/devfolio-api/internal/domain/entity"
	repo "github.com/oksasatya/devfolio-api/internal/domain/repository"
	"github.com/oksasatya/devfolio-api/pkg/apperror"
	"github.com/oksasatya/devfolio-api/pkg/events"
	"github.com/oksasatya/devfolio-api/pkg/helpers"
)

const (
	MsgAllFieldsRequired   = "All fields are required"
	MsgLoginFieldsRequired = "Email and password are required"
	MsgEmailRegistered     = "Email already registered"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgTokenMissing        = "Token is missing"
	MsgTokenExpired        = "Token has expired"
	MsgTokenInvalid        = "Token is invalid"
	MsgUserNotFound        = "User not found"
	MsgPasswordTooLong     = "Password must be at most 72 bytes"
)

// TokenService issues and verifies session tokens.
type TokenService interface {
	Issue(userID string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// EventPublisher delivers account events to the message broker.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type AuthService struct {
	Users     repo.UserRepository
	Tokens    TokenService
	Publisher EventPublisher // optional
	Logger    *logrus.Logger
}

func NewAuthService(users repo.UserRepository, tokens TokenService, pub EventPublisher, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, Publisher: pub, Logger: logger}
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      entity.PublicUser
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// equalizeTiming burns one bcrypt comparison so that an unknown email costs
// about as much as a wrong password.
func equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = helpers.HashPassword("devfolio-timing-equalizer")
	})
	_ = helpers.CompareHashAndPassword(dummyHash, password)
}

// Signup registers a new user and returns its id.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return "", apperror.NewValidation(MsgAllFieldsRequired)
	}

	// The UNIQUE constraint on users.email still guards the window between
	// this check and the insert.
	existing, err := s.Users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return "", apperror.New(apperror.DuplicateEmail, MsgEmailRegistered, nil)
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		helpers.LogError(s.Logger, "signup lookup failed", err, nil)
		return "", apperror.NewInternal(err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperror.NewValidation(MsgPasswordTooLong)
		}
		return "", apperror.NewInternal(err)
	}

	u := &entity.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return "", apperror.New(apperror.DuplicateEmail, MsgEmailRegistered, err)
		}
		helpers.LogError(s.Logger, "create user failed", err, nil)
		return "", apperror.NewInternal(err)
	}

	s.publishRegistered(ctx, u)
	helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"user_id": u.ID})
	return u.ID, nil
}

func (s *AuthService) publishRegistered(ctx context.Context, u *entity.User) {
	if s.Publisher == nil {
		return
	}
	ev := events.NewUserRegistered(u.ID, u.Username, u.Email, time.Now())
	if err := s.Publisher.PublishJSON(ctx, ev); err != nil {
		helpers.LogError(s.Logger, "publish user.registered failed", err, logrus.Fields{"user_id": u.ID})
	}
}

// Authenticate validates email/password. Unknown email and wrong password
// produce the same error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			equalizeTiming(password)
			return nil, apperror.New(apperror.InvalidCredentials, MsgInvalidCredentials, nil)
		}
		helpers.LogError(s.Logger, "login lookup failed", err, nil)
		return nil, apperror.NewInternal(err)
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, apperror.New(apperror.InvalidCredentials, MsgInvalidCredentials, nil)
	}
	return u, nil
}

// Login authenticates and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.NewValidation(MsgLoginFieldsRequired)
	}
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		helpers.LogError(s.Logger, "issue token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, apperror.NewInternal(err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u.Public()}, nil
}

// ResolveUser verifies a bearer token and loads the user it names.
func (s *AuthService) ResolveUser(ctx context.Context, token string) (*entity.User, error) {
	uid, err := s.Tokens.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, helpers.ErrTokenMissing):
			return nil, apperror.New(apperror.TokenMissing, MsgTokenMissing, err)
		case errors.Is(err, helpers.ErrTokenExpired):
			return nil, apperror.New(apperror.TokenExpired, MsgTokenExpired, err)
		case errors.Is(err, helpers.ErrTokenInvalid):
			return nil, apperror.New(apperror.TokenInvalid, MsgTokenInvalid, err)
		default:
			return nil, apperror.NewInternal(err)
		}
	}
	u, err := s.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.New(apperror.Unauthorized, MsgUserNotFound, err)
		}
		helpers.LogError(s.Logger, "resolve user failed", err, logrus.Fields{"user_id": uid})
		return nil, apperror.NewInternal(err)
	}
	return u, nil
}
