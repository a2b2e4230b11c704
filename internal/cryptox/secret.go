// Package cryptox implements expected-secret matching for the gate.
//
// An expected secret is configured either in plaintext or as an argon2id
// digest. Both forms answer the same question, "is the candidate exactly
// the configured secret", and both answer it in constant time.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passgate/internal/common"
	"golang.org/x/crypto/argon2"
)

const digestScheme = "argon2id"

var ErrMalformedDigest = errors.New("malformed secret digest")

// Secret is an expected secret a candidate can be checked against.
type Secret interface {
	Matches(candidate []byte) bool
}

// Plain is a plaintext expected secret compared byte for byte.
type Plain []byte

func (p Plain) Matches(candidate []byte) bool {
	if len(p) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(p, candidate) == 1
}

// Digest is an argon2id digest of the expected secret with its salt.
type Digest struct {
	Salt []byte
	Hash []byte
}

// DeriveKey stretches secret with salt using argon2id.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// NewDigest digests secret under a fresh random salt.
func NewDigest(secret []byte) Digest {
	salt := common.GenerateRandByteArray(16)
	return Digest{Salt: salt, Hash: DeriveKey(secret, salt)}
}

// ParseDigest reads the "argon2id$<salt>$<hash>" form (raw URL base64).
func ParseDigest(s string) (Digest, error) {
	parts := strings.Split(strings.TrimSpace(s), "$")
	if len(parts) != 3 || parts[0] != digestScheme {
		return Digest{}, ErrMalformedDigest
	}

	salt, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Digest{}, fmt.Errorf("%w: salt: %v", ErrMalformedDigest, err)
	}
	hash, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return Digest{}, fmt.Errorf("%w: hash: %v", ErrMalformedDigest, err)
	}
	if len(salt) == 0 || len(hash) == 0 {
		return Digest{}, ErrMalformedDigest
	}

	return Digest{Salt: salt, Hash: hash}, nil
}

func (d Digest) String() string {
	return digestScheme + "$" +
		base64.RawURLEncoding.EncodeToString(d.Salt) + "$" +
		base64.RawURLEncoding.EncodeToString(d.Hash)
}

func (d Digest) Matches(candidate []byte) bool {
	if len(d.Hash) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(DeriveKey(candidate, d.Salt), d.Hash) == 1
}

// SecretFromConfig picks the configured form of a secret. A digest wins
// over plaintext; nil means no secret is configured.
func SecretFromConfig(plain string, digest string) (Secret, error) {
	if strings.TrimSpace(digest) != "" {
		d, err := ParseDigest(digest)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	if plain != "" {
		return Plain(plain), nil
	}
	return nil, nil
}
