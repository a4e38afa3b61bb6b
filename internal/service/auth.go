package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jcmexdev/bakeryspot/internal/domain/user"
	"github.com/jcmexdev/bakeryspot/internal/repository"
)

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike,
	// so a login probe cannot tell which one it hit.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInactiveUser is returned for deactivated accounts.
	ErrInactiveUser = errors.New("user is inactive")

	// ErrInvalidToken covers malformed, expired, and mis-signed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// AuthService authenticates users and issues the HS256 access tokens whose
// numeric subject identifies the caller to the rest of the system.
type AuthService struct {
	users  *repository.Users
	secret []byte
	expiry time.Duration
}

func NewAuthService(users *repository.Users, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Authenticate verifies an email/password pair.
func (s *AuthService) Authenticate(email, password string) (*user.User, error) {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrInactiveUser
	}
	return u, nil
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an access token for the user: numeric subject plus role.
func (s *AuthService) IssueToken(u *user.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns the identity it carries.
func (s *AuthService) ParseToken(tokenString string) (user.Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return user.Identity{}, ErrInvalidToken
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return user.Identity{}, ErrInvalidToken
	}
	return user.Identity{UserID: id, Role: user.Role(c.Role)}, nil
}

// HashPassword produces the bcrypt hash stored on user records.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// SeedUsers loads the development fixture accounts: one per role, password
// equal to the part before the @.
func SeedUsers(users *repository.Users) error {
	fixtures := []struct {
		email    string
		password string
		role     user.Role
	}{
		{"admin@bakeryspot.test", "admin", user.RoleAdmin},
		{"staff@bakeryspot.test", "staff", user.RoleStaff},
		{"customer@bakeryspot.test", "customer", user.RoleCustomer},
	}
	for _, f := range fixtures {
		hash, err := HashPassword(f.password)
		if err != nil {
			return err
		}
		if _, err := users.Save(&user.User{
			Email:          f.email,
			HashedPassword: hash,
			Role:           f.role,
			Active:         true,
		}); err != nil {
			return err
		}
	}
	return nil
}
