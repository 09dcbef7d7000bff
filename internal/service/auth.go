// Package service contains the application use-cases called by the
// presentation layer: authentication, party management, todos and to-buys.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/convert"
	pkgcrypto "github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/crypto"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/limiter"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/remote"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/session"
)

// AuthService defines account and session operations.
type AuthService interface {
	// Register creates a new account with secure password hashing.
	Register(ctx context.Context, username, password string) (userID string, err error)
	// LoginWithIP applies rate limiting, authenticates and opens a session.
	LoginWithIP(ctx context.Context, username, password, ip string) (model.User, error)
	// Logout closes the current session.
	Logout(ctx context.Context) error
	// UpdatePreferences overwrites the user's dietary fields;
	// errs.ErrNotFound when the user is missing.
	UpdatePreferences(ctx context.Context, userID string, p model.Preferences) error
}

type AuthServiceImpl struct {
	users      remote.UserDocs
	sess       *session.Manager
	lim        limiter.Limiter
	sessionTTL time.Duration
	log        *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users remote.UserDocs, sess *session.Manager, lim limiter.Limiter, sessionTTL time.Duration, log *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, sess: sess, lim: lim, sessionTTL: sessionTTL, log: log}
}

// Register creates an account with a per-user salt.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errors.New("empty username/password")
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return "", err
	}
	doc := &remote.UserDoc{
		Username: username,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth: salt,
	}
	if err := s.users.Create(ctx, doc); err != nil {
		return "", err
	}
	s.log.Info("user registered", zap.String("user_id", doc.ID), zap.String("username", username))
	return doc.ID, nil
}

// LoginWithIP authenticates with rate limiting by (username, ip) and signs
// the user in on success.
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (model.User, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.User{}, err
	}
	if !allowed {
		return model.User{}, errs.ErrRateLimited
	}

	doc, err := s.users.GetByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), doc.SaltAuth, doc.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.User{}, errs.ErrRateLimited
		}
		// Lookup errors are masked so usernames cannot be probed.
		return model.User{}, errs.ErrUnauthorized
	}

	// Best effort: a failed counter reset must not fail the login.
	_ = s.lim.Success(ctx, username, ipHash)

	u := convert.UserFromDoc(doc)
	err = s.sess.SignIn(session.Session{UserID: u.ID, Username: u.Username, Premium: u.Premium}, s.sessionTTL)
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("user signed in", zap.String("user_id", u.ID))
	return u, nil
}

// Logout closes the session; signing out while signed out is not an error.
func (s *AuthServiceImpl) Logout(_ context.Context) error {
	return s.sess.SignOut()
}

// UpdatePreferences overwrites dietary fields for an existing user.
func (s *AuthServiceImpl) UpdatePreferences(ctx context.Context, userID string, p model.Preferences) error {
	if userID == "" {
		return errors.New("empty user id")
	}
	return s.users.UpdatePreferences(ctx, userID, p.Vegetarian, p.Vegan, p.GlutenFree, p.Allergies)
}
