package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	api_models "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models/api"
	auth_models "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models/auth"
	jwtservice "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/implementation/jwt"
	interfaces "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Repository/Interfaces"
)

var (
	// ErrMissingFields is returned when a required request field is empty.
	ErrMissingFields = errors.New("all fields are required")

	// ErrInvalidCredentials covers both unknown username and wrong password,
	// so a caller cannot probe which of the two failed.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AuthService aggregates credential and token operations
type AuthService struct {
	userRepo   interfaces.UserRepository
	jwtService *jwtservice.Service
	bcryptCost int
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo interfaces.UserRepository, jwtService *jwtservice.Service, bcryptCost int) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		bcryptCost: bcryptCost,
	}
}

// CreateUser registers a new user with a hashed password
func (s *AuthService) CreateUser(ctx context.Context, req api_models.CreateUserRequest) (*auth_models.User, error) {
	if req.Username == "" || req.Password == "" || req.DeviceID == "" {
		return nil, ErrMissingFields
	}

	// Fast path; the storage layer's unique index catches the race.
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err == nil && existing != nil {
		return nil, interfaces.ErrDuplicateUser
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := auth_models.NewUser("", req.Username, string(hashedPassword), req.DeviceID)
	return s.userRepo.Create(ctx, user)
}

// Login authenticates a user and returns a bearer token
func (s *AuthService) Login(ctx context.Context, req api_models.LoginRequest) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.jwtService.Generate(user.UserID, user.DeviceID)
}

// Refresh validates the presented token and issues a fresh one
func (s *AuthService) Refresh(tokenString string) (string, error) {
	return s.jwtService.Refresh(tokenString)
}

// ListUsers returns the public projection of all users
func (s *AuthService) ListUsers(ctx context.Context) ([]auth_models.UserSummary, error) {
	return s.userRepo.GetAll(ctx)
}
