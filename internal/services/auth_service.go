package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"commerce/internal/domain"
	"commerce/internal/repos"
)

type AuthService struct {
	Users  *repos.UserRepo
	Secret []byte
	TTL    time.Duration
}

func NewAuthService(users *repos.UserRepo, secret string, ttl time.Duration) *AuthService {
	return &AuthService{Users: users, Secret: []byte(secret), TTL: ttl}
}

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

func (s *AuthService) Register(in RegisterInput) (*domain.User, error) {
	if _, err := s.Users.ByUsername(in.Username); err == nil {
		return nil, domain.Conflictf("username already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, err := s.Users.ByEmail(in.Email); err == nil {
		return nil, domain.Conflictf("email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if len(in.Password) < 6 {
		return nil, domain.Validationf("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Hash:      string(hash),
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a signed bearer token.
func (s *AuthService) Login(username, password string) (string, *domain.User, error) {
	u, err := s.Users.ByUsername(username)
	if err != nil {
		return "", nil, domain.Unauthenticatedf("invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", nil, domain.Unauthenticatedf("invalid username or password")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"email":    u.Email,
		"iat":      now.Unix(),
		"exp":      now.Add(s.TTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Validate is the identity-verifier contract: given an Authorization header
// value it returns the caller's identity or rejects the credential.
func (s *AuthService) Validate(bearer string) (*domain.Identity, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(bearer, "Bearer "))
	if raw == "" {
		return nil, domain.Unauthenticatedf("missing bearer token")
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return nil, domain.Unauthenticatedf("invalid or expired token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.Unauthenticatedf("invalid token claims")
	}
	id, _ := claims["sub"].(string)
	if id == "" {
		return nil, domain.Unauthenticatedf("invalid token claims")
	}
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)
	return &domain.Identity{ID: id, Username: username, Email: email}, nil
}

func (s *AuthService) GetUser(id string) (*domain.User, error) {
	u, err := s.Users.ByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("user not found with id: %s", id)
	}
	return u, err
}
