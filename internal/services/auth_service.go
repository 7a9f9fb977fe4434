package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"foodtasker/internal/models"
	"foodtasker/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues access tokens and resolves them to a caller identity.
type AuthService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.TokenRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, tokenRepo repositories.TokenRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// IssuedToken is the result of a successful login.
type IssuedToken struct {
	Token   string
	Expires time.Time
}

func (s *AuthService) prepareUser(ctx context.Context, user *models.User) error {
	if existing, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil && existing != nil {
		return &ConflictError{Message: fmt.Sprintf("username '%s' already taken", user.Username)}
	}
	if existing, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return &ConflictError{Message: fmt.Sprintf("email '%s' already registered", user.Email)}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	return nil
}

func registerError(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return &ConflictError{Message: "username or email already registered"}
	}
	return &PersistenceError{Op: "register user", Err: err}
}

// RegisterCustomer registers a user that places orders.
func (s *AuthService) RegisterCustomer(ctx context.Context, user *models.User, customer *models.Customer) error {
	if err := s.prepareUser(ctx, user); err != nil {
		return err
	}
	if err := s.userRepo.CreateCustomer(ctx, user, customer); err != nil {
		return registerError(err)
	}
	return nil
}

// RegisterRestaurant registers a user that owns a restaurant.
func (s *AuthService) RegisterRestaurant(ctx context.Context, user *models.User, restaurant *models.Restaurant) error {
	if err := s.prepareUser(ctx, user); err != nil {
		return err
	}
	if err := s.userRepo.CreateRestaurant(ctx, user, restaurant); err != nil {
		return registerError(err)
	}
	return nil
}

// Login authenticates a user and issues an access token valid for the
// configured TTL.
func (s *AuthService) Login(ctx context.Context, username, password string) (*IssuedToken, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		// Do not reveal whether the username exists.
		return nil, &AuthError{Message: "invalid credentials"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, &AuthError{Message: "invalid credentials"}
	}

	now := time.Now().UTC()
	expires := now.Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Id:        uuid.NewString(),
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  now.Unix(),
		ExpiresAt: expires.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.tokenRepo.Create(ctx, &models.AccessToken{Token: tokenString, UserID: user.ID, Expires: expires}); err != nil {
		return nil, &PersistenceError{Op: "store access token", Err: err}
	}
	return &IssuedToken{Token: tokenString, Expires: expires}, nil
}

// ValidateToken checks the token signature, its expiry and that it is still
// on record, returning the owning user ID.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, &AuthError{Message: MsgAuthRequired}
	}

	claims := &jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return 0, &AuthError{Message: MsgAuthRequired, Err: err}
	}

	stored, err := s.tokenRepo.FindValid(ctx, tokenString, time.Now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, &AuthError{Message: MsgAuthRequired, Err: err}
		}
		return 0, fmt.Errorf("failed to validate token: %w", err)
	}
	if strconv.FormatUint(uint64(stored.UserID), 10) != claims.Subject {
		return 0, &AuthError{Message: MsgAuthRequired}
	}
	return stored.UserID, nil
}

// ResolveCustomer maps a token to the customer profile of its user.
func (s *AuthService) ResolveCustomer(ctx context.Context, tokenString string) (*models.Customer, error) {
	userID, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	customer, err := s.userRepo.GetCustomerByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &AuthError{Message: "user is not a customer", Err: err}
		}
		return nil, err
	}
	return customer, nil
}

// ResolveRestaurant maps a token to the restaurant profile of its user.
func (s *AuthService) ResolveRestaurant(ctx context.Context, tokenString string) (*models.Restaurant, error) {
	userID, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	restaurant, err := s.userRepo.GetRestaurantByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &AuthError{Message: "user is not a restaurant", Err: err}
		}
		return nil, err
	}
	return restaurant, nil
}
