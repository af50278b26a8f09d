package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleTeacher = "teacher"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	refreshExpiry = 30 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginDisabled      = errors.New("passcode login is not configured")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingSecret      = errors.New("jwt secret is required")
)

// Claims are carried by every token the service signs
type Claims struct {
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type LoginInput struct {
	Subject  string `json:"subject"`
	Passcode string `json:"passcode"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

type Service struct {
	jwtSecret    []byte
	jwtExpiry    time.Duration
	passcodeHash []byte
	now          func() time.Time
}

// NewService creates a token service. passcodeHash is a bcrypt hash; when
// empty, Login is disabled and tokens can only be minted with IssueToken.
func NewService(jwtSecret []byte, jwtExpiry time.Duration, passcodeHash string) (*Service, error) {
	if len(jwtSecret) == 0 {
		return nil, ErrMissingSecret
	}
	return &Service{
		jwtSecret:    jwtSecret,
		jwtExpiry:    jwtExpiry,
		passcodeHash: []byte(passcodeHash),
		now:          time.Now,
	}, nil
}

// HashPasscode returns the bcrypt hash stored in TEACHER_PASSCODE_HASH
func HashPasscode(passcode string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash passcode: %w", err)
	}
	return string(hash), nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	if len(s.passcodeHash) == 0 {
		return nil, ErrLoginDisabled
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passcodeHash, []byte(input.Passcode)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.IssueToken(input.Subject)
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return s.IssueToken(claims.Subject)
}

// IssueToken mints an access and refresh token pair for subject
func (s *Service) IssueToken(subject string) (*TokenPair, error) {
	now := s.now()
	expires := now.Add(s.jwtExpiry)

	access, err := s.sign(subject, tokenTypeAccess, now, expires)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(subject, tokenTypeRefresh, now, now.Add(refreshExpiry))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expires.Unix(),
	}, nil
}

func (s *Service) ValidateToken(tokenString string) (*Teacher, error) {
	claims, err := s.parse(tokenString, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &Teacher{Subject: claims.Subject, Role: claims.Role}, nil
}

func (s *Service) sign(subject, tokenType string, issued, expires time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:      RoleTeacher,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	return token.SignedString(s.jwtSecret)
}

func (s *Service) parse(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
