package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

const minPasswordLength = 8

// UserService orchestrates validation, authorization and persistence for users.
type UserService struct {
	users       persistence.UserRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService constructs a user service with the provided dependencies.
func NewUserService(users persistence.UserRepository, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users persistence.UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser validates input, hashes the password and persists a new user
// for administrators.
func (s *UserService) CreateUser(ctx context.Context, principal Principal, input UserInput) (user persistence.User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateUserInput(input, true)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = CreatePasswordHash(input.Password, DefaultArgon2idParams)
	if err != nil {
		return
	}

	user = persistence.User{
		ID:           s.idGenerator(),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: hash,
		IsAdmin:      input.IsAdmin,
	}
	if err = s.users.CreateUser(ctx, user); err != nil {
		err = mapRepoError(err)
		user = persistence.User{}
		return
	}

	user, err = s.users.GetUser(ctx, user.ID)
	err = mapRepoError(err)
	return
}

// UpdateUser updates a user's profile. Users may update themselves;
// administrators may update anyone and toggle the admin flag.
func (s *UserService) UpdateUser(ctx context.Context, principal Principal, userID string, input UserInput) (user persistence.User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateUser",
		"principal_id", principal.UserID,
		"user_id", userID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user updated")
	}()

	if !principal.IsAdmin && principal.UserID != userID {
		err = ErrUnauthorized
		return
	}

	vErr := validateUserInput(input, input.Password != "")
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var existing persistence.User
	existing, err = s.users.GetUser(ctx, userID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	updated := existing
	updated.Email = strings.ToLower(strings.TrimSpace(input.Email))
	updated.DisplayName = strings.TrimSpace(input.DisplayName)
	if principal.IsAdmin {
		updated.IsAdmin = input.IsAdmin
	}
	if input.Password != "" {
		if updated.PasswordHash, err = CreatePasswordHash(input.Password, DefaultArgon2idParams); err != nil {
			return
		}
	}

	if err = s.users.UpdateUser(ctx, updated); err != nil {
		err = mapRepoError(err)
		return
	}

	user, err = s.users.GetUser(ctx, userID)
	err = mapRepoError(err)
	return
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (persistence.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	return user, mapRepoError(err)
}

// ListUsers lists all users.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]persistence.User, error) {
	users, err := s.users.ListUsers(ctx)
	return users, mapRepoError(err)
}

// DeleteUser removes a user for administrators.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteUser",
		"principal_id", principal.UserID,
		"user_id", userID,
	)
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "user deleted")
	return nil
}

// Authenticate verifies a user's credentials and returns the account. The
// same error is returned for an unknown email and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (persistence.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.User{}, ErrInvalidCredentials
		}
		return persistence.User{}, mapRepoError(err)
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return persistence.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func validateUserInput(input UserInput, requirePassword bool) *ValidationError {
	vErr := &ValidationError{}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email is not valid")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}
	if requirePassword && len(input.Password) < minPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	return vErr
}
