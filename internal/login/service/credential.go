package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/aussiebroadwan/headcount/internal/login/domain"
	"github.com/aussiebroadwan/headcount/internal/login/metrics"
	"github.com/aussiebroadwan/headcount/internal/login/store"
	"github.com/aussiebroadwan/headcount/pkg/cryptox"
	"github.com/aussiebroadwan/headcount/pkg/slogx"
)

// MaxPasswordLength bounds the plaintext accepted for hashing, in bytes.
const MaxPasswordLength = 1024

var (
	ErrNotFound           = errors.New("credential not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUnknownActor       = errors.New("acting credential does not exist")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmptyUpdate        = errors.New("update changes nothing")
)

// NewCredential is the input of CredentialService.Create.
type NewCredential struct {
	Username string
	Password string
	IsAdmin  bool
}

// CredentialPatch is the input of CredentialService.Update. Nil fields are
// left untouched.
type CredentialPatch struct {
	Username *string
	Password *string
	IsAdmin  *bool
}

// CredentialService validates input, hashes passwords and records who made
// each change. An actor id of 0 means the change has no acting credential
// (seeding, operator CLI).
type CredentialService struct {
	Store store.Store

	dummyOnce sync.Once
	dummyHash string
}

// Create hashes the password and inserts a new credential with created_by
// and updated_by set to actor.
func (s *CredentialService) Create(ctx context.Context, actor int64, in NewCredential) (domain.Credential, error) {
	l := slogx.FromContext(ctx)

	if err := ValidateUsername(in.Username); err != nil {
		return domain.Credential{}, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return domain.Credential{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return domain.Credential{}, err
	}

	c := domain.Credential{
		Username:     in.Username,
		IsAdmin:      in.IsAdmin,
		PasswordHash: hash,
		CreatedBy:    actorRef(actor),
		UpdatedBy:    actorRef(actor),
	}

	var created domain.Credential
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := checkActor(ctx, tx, actor); err != nil {
			return err
		}
		id, err := tx.Credentials().Create(ctx, c)
		if err != nil {
			return mapStoreError(err)
		}
		created, err = tx.Credentials().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Credential{}, err
	}

	metrics.CredentialWritesTotal.WithLabelValues("create").Inc()
	l.Info("credential created",
		slog.Int64("credential_id", created.ID),
		slog.String("username", created.Username),
		slog.Bool("is_admin", created.IsAdmin),
	)
	return created, nil
}

// Get returns the credential with id.
func (s *CredentialService) Get(ctx context.Context, id int64) (domain.Credential, error) {
	c, err := s.Store.Credentials().GetByID(ctx, id)
	if err != nil {
		return domain.Credential{}, mapStoreError(err)
	}
	return c, nil
}

// GetByUsername returns the credential named username.
func (s *CredentialService) GetByUsername(ctx context.Context, username string) (domain.Credential, error) {
	c, err := s.Store.Credentials().GetByUsername(ctx, username)
	if err != nil {
		return domain.Credential{}, mapStoreError(err)
	}
	return c, nil
}

// List returns credentials ordered by id, plus the total row count.
func (s *CredentialService) List(ctx context.Context, limit, offset int) ([]domain.Credential, int, error) {
	var (
		out   []domain.Credential
		total int
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if out, err = tx.Credentials().List(ctx, limit, offset); err != nil {
			return err
		}
		total, err = tx.Credentials().Count(ctx)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update applies patch to credential id with updated_by set to actor.
func (s *CredentialService) Update(ctx context.Context, actor, id int64, patch CredentialPatch) (domain.Credential, error) {
	l := slogx.FromContext(ctx)

	if patch.Username == nil && patch.Password == nil && patch.IsAdmin == nil {
		return domain.Credential{}, ErrEmptyUpdate
	}

	u := domain.CredentialUpdate{
		Username:  patch.Username,
		IsAdmin:   patch.IsAdmin,
		UpdatedBy: actorRef(actor),
	}
	if patch.Username != nil {
		if err := ValidateUsername(*patch.Username); err != nil {
			return domain.Credential{}, err
		}
	}
	if patch.Password != nil {
		if err := ValidatePassword(*patch.Password); err != nil {
			return domain.Credential{}, err
		}
		hash, err := cryptox.HashPassword(*patch.Password)
		if err != nil {
			l.Error("failed to hash password", slog.Any("error", err))
			return domain.Credential{}, err
		}
		u.PasswordHash = &hash
	}

	updated, err := s.apply(ctx, actor, id, u)
	if err != nil {
		return domain.Credential{}, err
	}

	op := "update"
	if patch.Password != nil {
		op = "password"
	}
	metrics.CredentialWritesTotal.WithLabelValues(op).Inc()
	l.Info("credential updated",
		slog.Int64("credential_id", id),
		slog.Int64("actor_id", actor),
		slog.Bool("username_changed", patch.Username != nil),
		slog.Bool("password_changed", patch.Password != nil),
		slog.Bool("admin_changed", patch.IsAdmin != nil),
	)
	return updated, nil
}

// ChangePassword replaces the password of credential id after checking the
// current one. The credential is recorded as its own updater.
func (s *CredentialService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.matches(ctx, current, c.PasswordHash) {
		return ErrInvalidCredentials
	}

	_, err = s.Update(ctx, id, id, CredentialPatch{Password: &next})
	return err
}

// Authenticate checks username and password. Unknown usernames and wrong
// passwords both yield ErrInvalidCredentials after comparable work. A row
// still holding a plaintext password is accepted once and rehashed.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (domain.Credential, error) {
	l := slogx.FromContext(ctx)

	c, err := s.Store.Credentials().GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return domain.Credential{}, err
		}
		_ = cryptox.VerifyPassword(password, s.dummy(ctx))
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return domain.Credential{}, ErrInvalidCredentials
	}

	if !s.matches(ctx, password, c.PasswordHash) {
		l.Info("login rejected", slog.Int64("credential_id", c.ID))
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return domain.Credential{}, ErrInvalidCredentials
	}

	if !cryptox.IsHash(c.PasswordHash) {
		if err := s.upgrade(ctx, &c, password); err != nil {
			l.Error("failed to rehash plaintext password",
				slog.Int64("credential_id", c.ID),
				slog.Any("error", err),
			)
			return domain.Credential{}, err
		}
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultUpgraded).Inc()
		return c, nil
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return c, nil
}

// matches compares password with a stored value. A NULL password never
// matches.
func (s *CredentialService) matches(ctx context.Context, password, stored string) bool {
	switch {
	case stored == "":
		_ = cryptox.VerifyPassword(password, s.dummy(ctx))
		return false
	case cryptox.IsHash(stored):
		err := cryptox.VerifyPassword(password, stored)
		if err != nil && !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Warn("stored password hash unusable", slog.Any("error", err))
		}
		return err == nil
	default:
		return cryptox.ComparePlaintext(password, stored)
	}
}

func (s *CredentialService) upgrade(ctx context.Context, c *domain.Credential, password string) error {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}
	self := c.ID
	if err := s.Store.Credentials().Update(ctx, c.ID, domain.CredentialUpdate{
		PasswordHash: &hash,
		UpdatedBy:    &self,
	}); err != nil {
		return err
	}

	metrics.CredentialWritesTotal.WithLabelValues("upgrade").Inc()
	slogx.FromContext(ctx).Info("plaintext password rehashed", slog.Int64("credential_id", c.ID))
	c.PasswordHash = hash
	c.UpdatedBy = &self
	return nil
}

func (s *CredentialService) apply(ctx context.Context, actor, id int64, u domain.CredentialUpdate) (domain.Credential, error) {
	var updated domain.Credential
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := checkActor(ctx, tx, actor); err != nil {
			return err
		}
		if err := tx.Credentials().Update(ctx, id, u); err != nil {
			return mapStoreError(err)
		}
		var err error
		updated, err = tx.Credentials().GetByID(ctx, id)
		return err
	})
	return updated, err
}

// dummy returns a hash to verify against when there is nothing real to
// compare, so a miss costs as much as a hit.
func (s *CredentialService) dummy(ctx context.Context) string {
	s.dummyOnce.Do(func() {
		h, err := cryptox.HashPassword("headcount-dummy-password")
		if err != nil {
			slogx.FromContext(ctx).Error("failed to build dummy hash", slog.Any("error", err))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// ValidateUsername enforces the login rules the schema leaves open.
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: required", ErrInvalidUsername)
	case strings.TrimSpace(username) != username:
		return fmt.Errorf("%w: leading or trailing whitespace", ErrInvalidUsername)
	case !utf8.ValidString(username):
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidUsername)
	case utf8.RuneCountInString(username) > domain.MaxUsernameLength:
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidUsername, domain.MaxUsernameLength)
	}
	return nil
}

// ValidatePassword checks a plaintext password before hashing.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return fmt.Errorf("%w: required", ErrInvalidPassword)
	case len(password) > MaxPasswordLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidPassword, MaxPasswordLength)
	}
	return nil
}

func checkActor(ctx context.Context, tx store.Tx, actor int64) error {
	if actor == 0 {
		return nil
	}
	ok, err := tx.Credentials().Exists(ctx, actor)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownActor
	}
	return nil
}

func actorRef(actor int64) *int64 {
	if actor == 0 {
		return nil
	}
	return &actor
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrUsernameTaken
	case errors.Is(err, store.ErrInvalidReference):
		return ErrUnknownActor
	}
	return err
}
