// Package seed loads the fixed accounts written at schema initialisation.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aussiebroadwan/headcount/internal/login/domain"
)

//go:embed seed.yaml
var defaultFixture []byte

var ErrInvalidFixture = errors.New("seed: invalid fixture")

type fixture struct {
	Accounts []domain.SeedAccount `yaml:"accounts"`
}

// Default returns the built-in accounts (Admin and User).
func Default() ([]domain.SeedAccount, error) {
	return Parse(defaultFixture)
}

// LoadFile reads a fixture from disk.
func LoadFile(path string) ([]domain.SeedAccount, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(b)
}

// Load returns the fixture at path, or the built-in one when path is empty.
func Load(path string) ([]domain.SeedAccount, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse decodes and validates a fixture. Ids must be positive and unique,
// usernames non-empty, unique and within the column width.
func Parse(b []byte) ([]domain.SeedAccount, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var f fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}

	ids := make(map[int64]bool, len(f.Accounts))
	names := make(map[string]bool, len(f.Accounts))
	for i, a := range f.Accounts {
		switch {
		case a.ID <= 0:
			return nil, fmt.Errorf("%w: account %d: id must be positive", ErrInvalidFixture, i)
		case ids[a.ID]:
			return nil, fmt.Errorf("%w: account %d: duplicate id %d", ErrInvalidFixture, i, a.ID)
		case strings.TrimSpace(a.Username) == "":
			return nil, fmt.Errorf("%w: account %d: username is required", ErrInvalidFixture, i)
		case len([]rune(a.Username)) > domain.MaxUsernameLength:
			return nil, fmt.Errorf("%w: account %d: username longer than %d", ErrInvalidFixture, i, domain.MaxUsernameLength)
		case names[a.Username]:
			return nil, fmt.Errorf("%w: account %d: duplicate username %q", ErrInvalidFixture, i, a.Username)
		case a.Password == "":
			return nil, fmt.Errorf("%w: account %d: password is required", ErrInvalidFixture, i)
		}
		ids[a.ID] = true
		names[a.Username] = true
	}

	return f.Accounts, nil
}
