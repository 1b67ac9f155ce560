package app

import (
	"crypto/ed25519"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/headcount/pkg/cryptox"
	"github.com/aussiebroadwan/headcount/pkg/jwtx"
)

// kidLength keeps key ids short in token headers.
const kidLength = 16

// Keys bundles the signing key with the public set the verifier and the
// JWKS endpoint read.
type Keys struct {
	Signer   *jwtx.EdDSASigner
	Set      *jwtx.KeySet
	Verifier *jwtx.EdDSAVerifier
}

// InitSigningKeys loads the Ed25519 signing key.
//
// With auth.signing_key_file unset a fresh key is generated on every start
// and tokens do not survive a restart. With it set the key is read from the
// file, which is created on first start.
func InitSigningKeys(cfg AuthConfig, logger *slog.Logger) (*Keys, error) {
	var key ed25519.PrivateKey

	if cfg.SigningKeyFile == "" {
		pem, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, err
		}
		if key, err = cryptox.ParseEd25519Key(pem); err != nil {
			return nil, err
		}
		logger.Warn("using an ephemeral signing key; tokens are invalidated on restart")
	} else {
		var (
			created bool
			err     error
		)
		key, created, err = cryptox.LoadOrCreateEd25519Key(cfg.SigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key: %w", err)
		}
		if created {
			logger.Info("generated signing key", "path", cfg.SigningKeyFile)
		}
	}

	kid := KeyID(key.Public().(ed25519.PublicKey))
	signer, err := jwtx.NewSignerEdDSA(kid, key)
	if err != nil {
		return nil, err
	}

	set := jwtx.NewKeySet()
	if err := set.AddSigner(signer); err != nil {
		return nil, err
	}

	logger.Info("signing key ready", "kid", kid, "alg", signer.Alg(), "issuer", cfg.Issuer)
	return &Keys{
		Signer:   signer,
		Set:      set,
		Verifier: jwtx.NewVerifierEdDSA(set, cfg.Issuer, cfg.Audience),
	}, nil
}

// KeyID derives a stable key id from the public key.
func KeyID(pub ed25519.PublicKey) string {
	return cryptox.Fingerprint(pub)[:kidLength]
}
