package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/headcount/internal/login/domain"
	"github.com/aussiebroadwan/headcount/internal/login/metrics"
	"github.com/aussiebroadwan/headcount/internal/login/store"
	"github.com/aussiebroadwan/headcount/pkg/cryptox"
	"github.com/aussiebroadwan/headcount/pkg/slogx"
)

var ErrSeedConflict = errors.New("seed rows collide with existing credentials")

// SeedService writes the fixed accounts of a fresh schema.
type SeedService struct {
	Store    store.Store
	Accounts []domain.SeedAccount
}

// Seed inserts every account with its fixed id in one transaction. It is not
// idempotent: if any id or username is already taken nothing is written and
// the error wraps both ErrSeedConflict and store.ErrAlreadyExists.
func (s *SeedService) Seed(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	rows, err := hashAccounts(s.Accounts)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, c := range rows {
			if err := tx.Credentials().Insert(ctx, c); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					return fmt.Errorf("%w: account %d (%s): %w", ErrSeedConflict, c.ID, c.Username, err)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		l.Warn("seed failed", slog.Any("error", err))
		return err
	}

	metrics.SeedRowsInsertedTotal.Add(float64(len(rows)))
	l.Info("seed accounts inserted", slog.Int("count", len(rows)))
	return nil
}

// EnsureSeed inserts the accounts whose id and username are both free and
// reports how many it wrote. Running it again is a no-op. When another
// process claims a slot between the check and the insert, the pass is
// retried once and the claimed row counts as present.
func (s *SeedService) EnsureSeed(ctx context.Context) (int, error) {
	l := slogx.FromContext(ctx)

	inserted, err := s.ensureSeed(ctx)
	if errors.Is(err, store.ErrAlreadyExists) {
		l.Info("seed raced with another writer, retrying", slog.Any("error", err))
		inserted, err = s.ensureSeed(ctx)
	}
	if err != nil {
		return 0, err
	}

	if inserted > 0 {
		metrics.SeedRowsInsertedTotal.Add(float64(inserted))
		l.Info("seed accounts inserted", slog.Int("count", inserted))
	}
	return inserted, nil
}

func (s *SeedService) ensureSeed(ctx context.Context) (int, error) {
	l := slogx.FromContext(ctx)

	inserted := 0
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, a := range s.Accounts {
			free, err := seedSlotFree(ctx, tx, a)
			if err != nil {
				return err
			}
			if !free {
				l.Debug("seed account present", slog.Int64("credential_id", a.ID), slog.String("username", a.Username))
				continue
			}

			c, err := hashAccount(a)
			if err != nil {
				return err
			}
			if err := tx.Credentials().Insert(ctx, c); err != nil {
				return fmt.Errorf("insert seed account %d: %w", a.ID, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// DefaultPasswordsInUse returns the usernames of seed accounts that still
// authenticate with their fixture password.
func (s *SeedService) DefaultPasswordsInUse(ctx context.Context) ([]string, error) {
	var names []string
	for _, a := range s.Accounts {
		c, err := s.Store.Credentials().GetByID(ctx, a.ID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load seed account %d: %w", a.ID, err)
		}
		if c.Username != a.Username {
			continue
		}
		if cryptox.VerifyPassword(a.Password, c.PasswordHash) == nil {
			names = append(names, a.Username)
		}
	}
	return names, nil
}

func seedSlotFree(ctx context.Context, tx store.Tx, a domain.SeedAccount) (bool, error) {
	exists, err := tx.Credentials().Exists(ctx, a.ID)
	if err != nil || exists {
		return false, err
	}
	_, err = tx.Credentials().GetByUsername(ctx, a.Username)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, store.ErrNotFound):
		return true, nil
	default:
		return false, err
	}
}

func hashAccounts(accounts []domain.SeedAccount) ([]domain.Credential, error) {
	out := make([]domain.Credential, 0, len(accounts))
	for _, a := range accounts {
		c, err := hashAccount(a)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func hashAccount(a domain.SeedAccount) (domain.Credential, error) {
	hash, err := cryptox.HashPassword(a.Password)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("hash seed password for %s: %w", a.Username, err)
	}
	return domain.Credential{
		ID:           a.ID,
		Username:     a.Username,
		IsAdmin:      a.IsAdmin,
		PasswordHash: hash,
	}, nil
}
