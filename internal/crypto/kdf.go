package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/AlexZinkM/eth-wallet/internal/common"
	"github.com/AlexZinkM/eth-wallet/internal/model"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

const (
	KDFPBKDF2 = "pbkdf2"
	KDFScrypt = "scrypt"

	// DefaultRounds is the pbkdf2 iteration count and the scrypt N used
	// when Options leaves Rounds unset.
	DefaultRounds = 1 << 16

	prfHMACSHA256 = "hmac-sha256"
	scryptR       = 8
	scryptP       = 1
	dkLen         = 32
	saltLen       = 32

	// upper bounds accepted from a keystore document
	MaxScryptN = 1 << 20
	MaxPBKDF2C = 1 << 24
	maxScryptR = 8
	maxScryptP = 16
	maxDKLen   = 64
	maxSaltLen = 64
)

var ErrUnsupportedKDF = errors.New("unsupported key derivation function")

// Options selects the KDF used when sealing a new keystore
type Options struct {
	KDF    string
	Rounds int
}

func (o Options) withDefaults() Options {
	if o.KDF == "" {
		o.KDF = KDFPBKDF2
	}
	if o.Rounds <= 0 {
		o.Rounds = DefaultRounds
	}
	return o
}

// newKDFParams builds the parameter block for a fresh salt
func newKDFParams(opts Options, salt []byte) (model.KDFParams, error) {
	params := model.KDFParams{
		DKLen: dkLen,
		Salt:  common.EncodeHex(salt),
	}
	switch opts.KDF {
	case KDFPBKDF2:
		if opts.Rounds > MaxPBKDF2C {
			return model.KDFParams{}, fmt.Errorf("pbkdf2 rounds %d above %d", opts.Rounds, MaxPBKDF2C)
		}
		params.C = opts.Rounds
		params.PRF = prfHMACSHA256
	case KDFScrypt:
		if opts.Rounds > MaxScryptN {
			return model.KDFParams{}, fmt.Errorf("scrypt n %d above %d", opts.Rounds, MaxScryptN)
		}
		params.N = opts.Rounds
		params.R = scryptR
		params.P = scryptP
	default:
		return model.KDFParams{}, fmt.Errorf("%w: %s", ErrUnsupportedKDF, opts.KDF)
	}
	return params, nil
}

// DeriveKey turns a password into a symmetric key using the stored KDF parameters.
// password must be []byte for security (caller should zero it after use)
func DeriveKey(password []byte, kdf string, params model.KDFParams) ([]byte, error) {
	salt, err := common.DecodeHex(params.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	if params.DKLen < dkLen {
		return nil, fmt.Errorf("derived key length %d is too short", params.DKLen)
	}
	if params.DKLen > maxDKLen || len(salt) > maxSaltLen {
		return nil, ErrDecrypt
	}

	switch kdf {
	case KDFPBKDF2:
		if params.PRF != prfHMACSHA256 {
			return nil, fmt.Errorf("%w: prf %q", ErrUnsupportedKDF, params.PRF)
		}
		if params.C <= 0 {
			return nil, fmt.Errorf("invalid pbkdf2 iteration count %d", params.C)
		}
		if params.C > MaxPBKDF2C {
			return nil, ErrDecrypt
		}
		return pbkdf2.Key(password, salt, params.C, params.DKLen, sha256.New), nil
	case KDFScrypt:
		if params.N > MaxScryptN || params.R > maxScryptR || params.P > maxScryptP {
			return nil, ErrDecrypt
		}
		key, err := scrypt.Key(password, salt, params.N, params.R, params.P, params.DKLen)
		if err != nil {
			return nil, fmt.Errorf("failed to derive key: %w", err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKDF, kdf)
	}
}
