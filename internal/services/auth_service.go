package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmailTaken reports a registration against an email that already has an
// account. Handlers branch on it with errors.Is.
var ErrEmailTaken = errors.New("email already registered")

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	customerRepo repositories.CustomerRepository
	jwtSecret    []byte
	tokenDurat   time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(customerRepo repositories.CustomerRepository, jwtSecret string) *AuthService {
	return &AuthService{
		customerRepo: customerRepo,
		jwtSecret:    []byte(jwtSecret),
		tokenDurat:   24 * time.Hour, // Token valid for 24 hours
	}
}

// RegisterCustomer registers a new customer, hashes their password, and
// saves them to the database.
func (s *AuthService) RegisterCustomer(ctx context.Context, customer *models.Customer) error {
	if existing, err := s.customerRepo.GetByEmail(ctx, customer.Email); err == nil && existing != nil {
		return fmt.Errorf("%s: %w", customer.Email, ErrEmailTaken)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(customer.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	customer.Password = string(hashedPassword)
	if customer.Role == "" {
		customer.Role = models.RoleCustomer
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return fmt.Errorf("failed to register customer: %w", err)
	}
	return nil
}

// LoginCustomer authenticates a customer and returns a JWT token if
// successful.
func (s *AuthService) LoginCustomer(ctx context.Context, email, password string) (string, error) {
	customer, err := s.customerRepo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the email exists
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": customer.ID,
		"name":    customer.Name,
		"role":    customer.Role,
		"exp":     time.Now().Add(s.tokenDurat).Unix(),
		"iat":     time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if
// valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
