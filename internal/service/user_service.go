package service

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/observability"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// UserService owns every read and write of user records.
type UserService struct {
	users      repository.UserRepository
	hasher     *auth.Hasher
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// CreateUserInput describes a registration.
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"rol"`
}

func (in CreateUserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}

// UpdateUserInput holds the only fields an update may touch.
type UpdateUserInput struct {
	Name *string `json:"name"`
	Role *string `json:"rol"`
}

func (in UpdateUserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NilOrNotEmpty),
		validation.Field(&in.Role, validation.NilOrNotEmpty),
	)
}

// NewUserService constructs the service. A nil Tokens dependency is built
// from cfg.Auth.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		hasher:     auth.NewHasher(cfg.Auth.BcryptCost),
		tokens:     tokens,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// CreateUser registers a new active account and returns its public projection.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.PublicUser, error) {
	if err := input.Validate(); err != nil {
		return nil, validationError(apperrors.MsgFieldsRequired, err)
	}

	role := domain.RoleUser
	if input.Role != "" {
		parsed, err := domain.ParseRole(input.Role)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"rol": input.Role})
		}
		role = parsed
	}

	// Fast path only; the store's uniqueness guarantee is authoritative.
	_, err := s.users.FindOne(ctx, domain.UserFilter{Email: input.Email})
	switch {
	case err == nil:
		return nil, apperrors.NewConflict(apperrors.MsgEmailExists, nil)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		ID:           s.newID(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict(apperrors.MsgEmailExists, nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.UserCreated()
	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserCreated,
		UserID:  user.ID,
		Payload: events.UserCreatedPayload{Email: user.Email, Role: user.Role},
	})

	pub := user.Public(false)
	return &pub, nil
}

// LoginUser returns a signed session token. Every rejection is the same
// AuthFailed error.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", s.loginFailed(ctx, email)
	}

	user, err := s.users.FindOne(ctx, domain.UserFilter{Email: email})
	if errors.Is(err, repository.ErrNotFound) {
		return "", s.loginFailed(ctx, email)
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", s.loginFailed(ctx, email)
	}

	token, err := s.tokens.Issue(s.tokens.NewSession(user))
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return token, nil
}

// UpdateUser applies name and role changes to the target record.
func (s *UserService) UpdateUser(ctx context.Context, claims *domain.Claims, targetID string, input UpdateUserInput) (*domain.PublicUser, error) {
	filter, err := auth.Authorize(claims, auth.OpUpdate, targetID)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, validationError("invalid update", err)
	}

	var changes domain.UserChanges
	var fields []string
	if input.Name != nil {
		changes.Name = input.Name
		fields = append(fields, "name")
	}
	if input.Role != nil {
		role, err := domain.ParseRole(*input.Role)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"rol": *input.Role})
		}
		changes.Role = &role
		fields = append(fields, "rol")
	}

	user, err := s.users.Update(ctx, filter, changes)
	if err != nil {
		return nil, storeError(err)
	}

	if !changes.Empty() {
		s.metrics.UserOperation(auth.OpUpdate.String())
		s.publishEvent(ctx, events.Event{
			Type:    events.EventUserUpdated,
			UserID:  user.ID,
			Actor:   events.ActorFromClaims(claims),
			Payload: events.UserUpdatedPayload{Fields: fields},
		})
	}

	pub := user.Public(claims.IsSuperAdmin())
	return &pub, nil
}

// ActivateUser marks the target active.
func (s *UserService) ActivateUser(ctx context.Context, claims *domain.Claims, targetID string) error {
	return s.setActive(ctx, claims, auth.OpActivate, targetID, true)
}

// DeactivateUser marks the target inactive. Issued tokens stay valid until
// they expire.
func (s *UserService) DeactivateUser(ctx context.Context, claims *domain.Claims, targetID string) error {
	return s.setActive(ctx, claims, auth.OpDeactivate, targetID, false)
}

func (s *UserService) setActive(ctx context.Context, claims *domain.Claims, op auth.Operation, targetID string, active bool) error {
	filter, err := auth.Authorize(claims, op, targetID)
	if err != nil {
		return err
	}

	user, err := s.users.Update(ctx, filter, domain.UserChanges{Active: &active})
	if err != nil {
		return storeError(err)
	}

	eventType := events.EventUserDeactivated
	if active {
		eventType = events.EventUserActivated
	}
	s.metrics.UserOperation(op.String())
	s.publishEvent(ctx, events.Event{
		Type:   eventType,
		UserID: user.ID,
		Actor:  events.ActorFromClaims(claims),
	})
	return nil
}

// DeleteUser removes the target. Non-admin callers are rejected before the
// store is consulted.
func (s *UserService) DeleteUser(ctx context.Context, claims *domain.Claims, targetID string) error {
	filter, err := auth.Authorize(claims, auth.OpDelete, targetID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, filter); err != nil {
		return storeError(err)
	}

	s.metrics.UserOperation(auth.OpDelete.String())
	s.publishEvent(ctx, events.Event{
		Type:   events.EventUserDeleted,
		UserID: targetID,
		Actor:  events.ActorFromClaims(claims),
	})
	return nil
}

// ListUsers returns the records visible to the caller. An empty result is NotFound.
func (s *UserService) ListUsers(ctx context.Context, claims *domain.Claims) ([]domain.PublicUser, error) {
	filter, err := auth.Authorize(claims, auth.OpList, "")
	if err != nil {
		return nil, err
	}

	users, err := s.users.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if len(users) == 0 {
		return nil, apperrors.NewNotFound("users", nil)
	}

	withStatus := claims.IsSuperAdmin()
	out := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public(withStatus))
	}
	return out, nil
}

// GetUser returns one record visible to the caller.
func (s *UserService) GetUser(ctx context.Context, claims *domain.Claims, targetID string) (*domain.PublicUser, error) {
	filter, err := auth.Authorize(claims, auth.OpRead, targetID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindOne(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	pub := user.Public(claims.IsSuperAdmin())
	return &pub, nil
}

// Ping reports whether the backing store is reachable.
func (s *UserService) Ping(ctx context.Context) error {
	return s.users.Ping(ctx)
}

func (s *UserService) loginFailed(ctx context.Context, email string) error {
	s.metrics.LoginFailed()
	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserLoginFailed,
		Payload: events.LoginFailedPayload{Email: email},
	})
	return apperrors.NewAuthFailed()
}

func (s *UserService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func storeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("User", nil)
	}
	return apperrors.NewInternalError(err)
}

func validationError(message string, err error) error {
	details := map[string]any{}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for field, fieldErr := range fieldErrs {
			details[field] = fieldErr.Error()
		}
	}
	return apperrors.NewValidationError(message, details)
}
