// Package auth hashes and verifies player passwords.
//
// Two schemes are understood: PBKDF2-SHA256 in the passlib modular-crypt form
// ($pbkdf2-sha256$rounds$salt$checksum) and bcrypt. Verification also repairs
// records that are not in the preferred form; see Verify.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gamesense/app/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// Scheme identifies a password hashing scheme.
type Scheme string

const (
	SchemePBKDF2 Scheme = "pbkdf2"
	SchemeBcrypt Scheme = "bcrypt"
	SchemeNone   Scheme = ""
)

const (
	pbkdf2Ident         = "$pbkdf2-sha256$"
	DefaultPBKDF2Rounds = 29000
	pbkdf2SaltLen       = 16
	pbkdf2KeyLen        = 32
)

var (
	ErrUnknownScheme = errors.New("unknown hash scheme")
	ErrMalformedHash = errors.New("malformed password hash")
)

// ab64 is passlib's "adapted base64": standard alphabet with '.' instead of
// '+', no padding.
var ab64 = base64.NewEncoding("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789./").WithPadding(base64.NoPadding)

// ParseScheme maps a config value to a Scheme.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "pbkdf2", "pbkdf2_sha256", "pbkdf2-sha256":
		return SchemePBKDF2, nil
	case "bcrypt":
		return SchemeBcrypt, nil
	default:
		return SchemeNone, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

// Hasher produces and checks password hashes, writing new ones with its
// preferred scheme.
type Hasher struct {
	Preferred    Scheme
	PBKDF2Rounds int
	BcryptCost   int
}

// NewHasher returns a Hasher for the preferred scheme with default costs.
func NewHasher(preferred Scheme) *Hasher {
	if preferred == SchemeNone {
		preferred = SchemePBKDF2
	}
	return &Hasher{
		Preferred:    preferred,
		PBKDF2Rounds: DefaultPBKDF2Rounds,
		BcryptCost:   bcrypt.DefaultCost,
	}
}

// Hash hashes password with the preferred scheme.
func (h *Hasher) Hash(password string) (string, error) {
	switch h.Preferred {
	case SchemeBcrypt:
		// bcrypt only looks at the first 72 bytes and newer x/crypto rejects
		// longer input, so longer passwords are pre-hashed.
		b, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.BcryptCost)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		salt := make([]byte, pbkdf2SaltLen)
		if _, err := rand.Read(salt); err != nil {
			return "", err
		}
		return encodePBKDF2(password, salt, h.PBKDF2Rounds), nil
	}
}

func bcryptInput(password string) []byte {
	if len(password) <= 72 {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func encodePBKDF2(password string, salt []byte, rounds int) string {
	key := pbkdf2.Key([]byte(password), salt, rounds, pbkdf2KeyLen, sha256.New)
	return fmt.Sprintf("%s%d$%s$%s", pbkdf2Ident, rounds, ab64.EncodeToString(salt), ab64.EncodeToString(key))
}

// Identify reports which scheme produced hash, or SchemeNone.
func Identify(hash string) Scheme {
	switch {
	case strings.HasPrefix(hash, pbkdf2Ident):
		return SchemePBKDF2
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return SchemeBcrypt
	default:
		return SchemeNone
	}
}

// Compare checks password against hash. It returns ErrMalformedHash when the
// hash cannot be parsed, and (false, nil) on a plain mismatch.
func Compare(password, hash string) (bool, error) {
	switch Identify(hash) {
	case SchemePBKDF2:
		return comparePBKDF2(password, hash)
	case SchemeBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
	default:
		return false, ErrMalformedHash
	}
}

func comparePBKDF2(password, hash string) (bool, error) {
	// "", "pbkdf2-sha256", rounds, salt, checksum
	parts := strings.Split(hash, "$")
	if len(parts) != 5 {
		return false, ErrMalformedHash
	}
	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds <= 0 {
		return false, ErrMalformedHash
	}
	salt, err := ab64.DecodeString(parts[3])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := ab64.DecodeString(parts[4])
	if err != nil || len(want) == 0 {
		return false, ErrMalformedHash
	}
	got := pbkdf2.Key([]byte(password), salt, rounds, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// Outcome is the result of Verify.
type Outcome int

const (
	// Rejected: the password does not match a verifiable credential.
	Rejected Outcome = iota
	// Verified: the stored hash matched and is already in the preferred form.
	Verified
	// Migrated: the hash matched but used another scheme; it was re-hashed.
	Migrated
	// Upgraded: a legacy plaintext password matched and was replaced by a hash.
	Upgraded
	// Repaired: the record had no usable credential; the supplied password was
	// accepted and hashed.
	Repaired
)

func (o Outcome) String() string {
	switch o {
	case Verified:
		return "verified"
	case Migrated:
		return "migrated"
	case Upgraded:
		return "upgraded"
	case Repaired:
		return "repaired"
	default:
		return "rejected"
	}
}

// Accepted reports whether the login should succeed.
func (o Outcome) Accepted() bool { return o != Rejected }

// Changed reports whether the account record was rewritten and needs saving.
func (o Outcome) Changed() bool { return o == Migrated || o == Upgraded || o == Repaired }

// Verify checks password against acc and normalises the record in place when
// the login is accepted:
//
//   - a recognised hash is compared; a match on a non-preferred scheme is
//     re-hashed with the preferred one;
//   - without a usable hash, a legacy plaintext password must match exactly and
//     is then replaced by a hash;
//   - a record with an unparseable hash, or no credential at all, accepts the
//     supplied password and stores its hash.
//
// Accepting unverifiable records is deliberate: it lets accounts damaged by
// earlier versions log in again instead of being locked out.
func (h *Hasher) Verify(password string, acc *domain.Account) (Outcome, error) {
	if acc.PasswordHash != "" {
		ok, err := Compare(password, acc.PasswordHash)
		switch {
		case err == nil && !ok:
			return Rejected, nil
		case err == nil && ok:
			if Identify(acc.PasswordHash) == h.Preferred && acc.Password == "" {
				return Verified, nil
			}
			return h.rehash(password, acc, Migrated)
		case !errors.Is(err, ErrMalformedHash):
			return Rejected, err
		}
		// malformed hash: fall through to the legacy/repair paths
	}

	if acc.Password != "" {
		if subtle.ConstantTimeCompare([]byte(acc.Password), []byte(password)) != 1 {
			return Rejected, nil
		}
		return h.rehash(password, acc, Upgraded)
	}

	return h.rehash(password, acc, Repaired)
}

func (h *Hasher) rehash(password string, acc *domain.Account, outcome Outcome) (Outcome, error) {
	hash, err := h.Hash(password)
	if err != nil {
		return Rejected, err
	}
	acc.PasswordHash = hash
	acc.Password = ""
	return outcome, nil
}
