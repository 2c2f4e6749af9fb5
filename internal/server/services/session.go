// Package services contains server-side business logic. This file implements
// SessionService: registration, login, and the per-request bearer check that
// transparently renews an expired access token from the stored refresh token.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// SessionState is the position of a single request in the bearer check.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateVerifying
	StateRenewing
	StateAdmitted
	StateRejected
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateVerifying:
		return "verifying"
	case StateRenewing:
		return "renewing"
	case StateAdmitted:
		return "admitted"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// AuthResult is the outcome of Authenticate. RenewedAccessToken is set only
// when the presented access token had expired and a new one was minted.
type AuthResult struct {
	Username           string
	RenewedAccessToken string
	State              SessionState
}

// LoginResult carries the access token and the caller's public profile.
type LoginResult struct {
	AccessToken string
	User        models.PublicUser
}

// RegisterInput is the data a new user supplies.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Column widths of the users table.
const (
	maxFirstNameLen = 15
	maxLastNameLen  = 30
	maxEmailLen     = 30
)

type SessionService struct {
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	codec             *auth.Codec
	hasher            auth.PasswordHasher
	log               logging.Logger
	metrics           metrics.Recorder
	maxHandleAttempts int
}

// NewSessionService constructs a SessionService. The codec and hasher are
// passed in so that tests can control the clock and bcrypt cost.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	codec *auth.Codec, hasher auth.PasswordHasher, log logging.Logger, rec metrics.Recorder) *SessionService {
	return &SessionService{
		db:                db,
		repomanager:       m,
		codec:             codec,
		hasher:            hasher,
		log:               log.With("module", "session"),
		metrics:           rec,
		maxHandleAttempts: cfg.MaxHandleAttempts,
	}
}

// Authenticate checks a bearer access token. A valid token admits its
// username. An expired one is renewed from the refresh token stored for the
// user it names; renewal never writes to the store. On rejection the
// returned result has State == StateRejected and err explains why.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*AuthResult, error) {
	res := &AuthResult{State: StateUnauthenticated}

	if token == "" {
		return s.reject(res, common.ErrTokenRequired)
	}

	res.State = StateVerifying
	claims, err := s.codec.VerifyAccess(token)
	if err == nil {
		return s.admit(res, claims.Username, ""), nil
	}
	if !errors.Is(err, common.ErrTokenExpired) {
		return s.reject(res, common.ErrInvalidToken)
	}

	res.State = StateRenewing
	stale, err := s.codec.DecodeUnsafe(token)
	if err != nil {
		return s.reject(res, common.ErrInvalidToken)
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, stale.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return s.reject(res, common.ErrNoRefreshToken)
		}
		s.log.Error(ctx, "renewal lookup failed", "username", stale.Username, "error", err)
		return s.reject(res, common.ErrorInternal)
	}
	if user.RefreshToken == "" {
		return s.reject(res, common.ErrNoRefreshToken)
	}

	username, access, err := s.renewAccess(ctx, user.RefreshToken)
	if err != nil {
		return s.reject(res, err)
	}

	s.log.Debug(ctx, "access token renewed", "username", username)
	return s.admit(res, username, access), nil
}

// Login checks credentials and returns a fresh access token. The stored
// refresh token is reused while it verifies and replaced otherwise.
func (s *SessionService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		s.metrics.RecordLogin("invalid_input")
		return nil, common.ErrValidation
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Info(ctx, "login rejected: unknown email", "email", email)
			s.metrics.RecordLogin("invalid_credentials")
			return nil, common.ErrInvalidCredentials
		}
		s.log.Error(ctx, "login lookup failed", "email", email, "error", err)
		s.metrics.RecordLogin("error")
		return nil, common.ErrorInternal
	}

	if !s.hasher.Matches(user.PasswordHash, password) {
		s.log.Info(ctx, "login rejected: wrong password", "email", email)
		s.metrics.RecordLogin("invalid_credentials")
		return nil, common.ErrInvalidCredentials
	}

	refresh := user.RefreshToken
	if refresh != "" {
		if _, err := s.codec.VerifyRefresh(refresh); err != nil {
			refresh = ""
		}
	}
	if refresh == "" {
		if refresh, err = s.codec.IssueRefresh(user.UserName); err != nil {
			s.log.Error(ctx, "refresh token signing failed", "error", err)
			s.metrics.RecordLogin("error")
			return nil, common.ErrorInternal
		}
		if err := repo.UpdateRefreshToken(ctx, user.Email, refresh); err != nil {
			s.log.Error(ctx, "refresh token store failed", "email", email, "error", err)
			s.metrics.RecordLogin("error")
			return nil, common.ErrorInternal
		}
	}

	access, err := s.codec.IssueAccess(user.UserName)
	if err != nil {
		s.log.Error(ctx, "access token signing failed", "error", err)
		s.metrics.RecordLogin("error")
		return nil, common.ErrorInternal
	}

	s.log.Info(ctx, "login", "username", user.UserName)
	s.metrics.RecordLogin("success")
	return &LoginResult{AccessToken: access, User: user.Public()}, nil
}

// Register creates a user with a generated handle and an initial refresh
// token. No tokens are returned to the caller.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) error {
	err := s.register(ctx, in)
	switch {
	case err == nil:
		s.metrics.RecordRegistration("success")
	case errors.Is(err, common.ErrValidation):
		s.metrics.RecordRegistration("invalid_input")
	case errors.Is(err, common.ErrorInternal):
		s.metrics.RecordRegistration("error")
	default:
		s.metrics.RecordRegistration("conflict")
	}
	return err
}

func (s *SessionService) register(ctx context.Context, in RegisterInput) error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)

	if in.Email == "" || in.Password == "" {
		return common.ErrValidation
	}
	if utf8.RuneCountInString(in.FirstName) > maxFirstNameLen ||
		utf8.RuneCountInString(in.LastName) > maxLastNameLen ||
		utf8.RuneCountInString(in.Email) > maxEmailLen {
		return common.ErrValidation
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, in.Email); err == nil {
		return common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		s.log.Error(ctx, "registration lookup failed", "email", in.Email, "error", err)
		return common.ErrorInternal
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return err
		}
		s.log.Error(ctx, "password hashing failed", "error", err)
		return common.ErrorInternal
	}

	handle, err := s.generateHandle(ctx, repo, in.FirstName, in.LastName)
	if err != nil {
		return err
	}

	refresh, err := s.codec.IssueRefresh(handle)
	if err != nil {
		s.log.Error(ctx, "refresh token signing failed", "error", err)
		return common.ErrorInternal
	}

	user := &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		UserName:     handle,
		Email:        in.Email,
		PasswordHash: hash,
		RefreshToken: refresh,
	}
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrEmailTaken) || errors.Is(err, common.ErrHandleTaken) {
			return err
		}
		s.log.Error(ctx, "user insert failed", "email", in.Email, "error", err)
		return common.ErrorInternal
	}

	s.log.Info(ctx, "user registered", "username", handle)
	return nil
}

// Refresh exchanges a stored refresh token for a new access token. The
// refresh token itself is not rotated.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", common.ErrTokenRequired
	}

	if _, err := s.repomanager.Users(s.db).GetByRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrRefreshTokenInvalid
		}
		s.log.Error(ctx, "refresh lookup failed", "error", err)
		return "", common.ErrorInternal
	}

	_, access, err := s.renewAccess(ctx, refreshToken)
	return access, err
}

// renewAccess verifies a refresh token and mints an access token for the
// username it carries.
func (s *SessionService) renewAccess(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return "", "", common.ErrRefreshTokenInvalid
	}

	access, err := s.codec.IssueAccess(claims.Username)
	if err != nil {
		s.log.Error(ctx, "access token signing failed", "error", err)
		return "", "", common.ErrorInternal
	}

	return claims.Username, access, nil
}

func (s *SessionService) admit(res *AuthResult, username, renewed string) *AuthResult {
	res.State = StateAdmitted
	res.Username = username
	res.RenewedAccessToken = renewed
	if renewed != "" {
		s.metrics.RecordSession("renewed")
	} else {
		s.metrics.RecordSession(StateAdmitted.String())
	}
	return res
}

func (s *SessionService) reject(res *AuthResult, err error) (*AuthResult, error) {
	res.State = StateRejected
	s.metrics.RecordSession(StateRejected.String())
	return res, err
}
