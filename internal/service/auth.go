package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
	"github.com/iliyamo/hotel-room-reservation/internal/utils"
)

// Token verification errors as seen by callers of the Authenticator.
var (
	ErrTokenMalformed    = apperr.New(apperr.KindAuth, "token_malformed", "token is malformed")
	ErrTokenBadSignature = apperr.New(apperr.KindAuth, "token_bad_signature", "token signature is invalid")
	ErrTokenExpired      = apperr.New(apperr.KindAuth, "token_expired", "token has expired")
	ErrTokenRevoked      = apperr.New(apperr.KindAuth, "token_revoked", "token has been revoked")
	ErrSubjectGone       = apperr.New(apperr.KindAuth, "token_subject_missing", "token user no longer exists")
)

// RegisterRequest is the input of Authenticator.Register.
type RegisterRequest struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
	Role        string
}

// Session is what a successful login hands back to the client.
type Session struct {
	User  model.User
	Token utils.Token
}

// Authenticator verifies credentials against the identity store and issues
// tokens. Verification itself is stateless; the optional denylist and the
// subject-exists check are layered on top.
type Authenticator struct {
	users        repository.Users
	codec        *utils.TokenCodec
	revoked      repository.Revocations
	bcryptCost   int
	allowAdmin   bool
	checkSubject bool
}

// AuthOption customizes an Authenticator.
type AuthOption func(*Authenticator)

// WithRevocations enables logout through a token denylist.
func WithRevocations(r repository.Revocations) AuthOption {
	return func(a *Authenticator) { a.revoked = r }
}

// WithAdminSignup lets registration grant ADMIN when requested.
func WithAdminSignup(allow bool) AuthOption {
	return func(a *Authenticator) { a.allowAdmin = allow }
}

// WithSubjectCheck makes Authenticate reject tokens of deleted users.
func WithSubjectCheck(on bool) AuthOption {
	return func(a *Authenticator) { a.checkSubject = on }
}

// NewAuthenticator hashes with bcryptCost and issues tokens through codec.
func NewAuthenticator(users repository.Users, codec *utils.TokenCodec, bcryptCost int, opts ...AuthOption) *Authenticator {
	a := &Authenticator{users: users, codec: codec, bcryptCost: bcryptCost}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Register creates a USER (or ADMIN, when allowed) account.
func (a *Authenticator) Register(ctx context.Context, req RegisterRequest) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, apperr.Validation("a valid email is required")
	}
	if req.Password == "" {
		return model.User{}, apperr.Validation("password is required")
	}
	role := model.NormalizeRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if role == model.RoleAdmin && !a.allowAdmin {
		role = model.RoleUser
	}
	hash, err := utils.HashPassword(req.Password, a.bcryptCost)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return model.User{}, apperr.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: hash,
		Role:         role,
	}
	if err := a.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, apperr.ErrEmailTaken
		}
		return model.User{}, storageErr(err)
	}
	logrus.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")
	return u, nil
}

// Login checks credentials and issues a token.
func (a *Authenticator) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, apperr.ErrBadCredentials
		}
		return Session{}, storageErr(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, apperr.ErrBadCredentials
	}
	tok, err := a.codec.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: tok}, nil
}

// Verify is the pure token check with errors mapped into the taxonomy.
func (a *Authenticator) Verify(raw string) (utils.Identity, error) {
	id, err := a.codec.Verify(raw)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, utils.ErrTokenExpired):
		return utils.Identity{}, ErrTokenExpired
	case errors.Is(err, utils.ErrTokenBadSignature):
		return utils.Identity{}, ErrTokenBadSignature
	}
	return utils.Identity{}, ErrTokenMalformed
}

// Authenticate verifies raw and applies the configured stateful checks.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (utils.Identity, error) {
	id, err := a.Verify(raw)
	if err != nil {
		return id, err
	}
	if a.revoked != nil && id.TokenID != "" {
		revoked, err := a.revoked.IsRevoked(ctx, id.TokenID)
		if err != nil {
			// fail open: signature and expiry were already checked
			logrus.WithError(err).Warn("revocation lookup failed")
		} else if revoked {
			return utils.Identity{}, ErrTokenRevoked
		}
	}
	if a.checkSubject {
		if _, err := a.users.GetByID(ctx, id.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return utils.Identity{}, ErrSubjectGone
			}
			return utils.Identity{}, storageErr(err)
		}
	}
	return id, nil
}

// Logout revokes the presented token until its natural expiry. Without a
// denylist configured it is a no-op.
func (a *Authenticator) Logout(ctx context.Context, id utils.Identity) error {
	if a.revoked == nil || id.TokenID == "" {
		return nil
	}
	if err := a.revoked.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return apperr.Dependency("could not revoke token", err)
	}
	return nil
}
