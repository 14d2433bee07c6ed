package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/AlexZinkM/eth-wallet/internal/common"
	"github.com/AlexZinkM/eth-wallet/internal/model"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

const (
	CipherAES128CTR = "aes-128-ctr"

	ivLen = aes.BlockSize
)

// Seal encrypts a raw secp256k1 private key under password and returns the keystore record.
// password must be []byte for security (caller should zero it after use)
func Seal(privateKey, password []byte, opts Options) (*model.KeystoreRecord, error) {
	opts = opts.withDefaults()

	// Generate salt and IV
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	iv := make([]byte, ivLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	params, err := newKDFParams(opts, salt)
	if err != nil {
		return nil, err
	}

	// Derive key from password
	derivedKey, err := DeriveKey(password, opts.KDF, params)
	if err != nil {
		return nil, err
	}
	defer clear(derivedKey)

	// Encrypt with the first half of the derived key
	ciphertext, err := aesCTRXOR(derivedKey[:16], privateKey, iv)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt private key: %w", err)
	}

	return &model.KeystoreRecord{
		CipherText: common.EncodeHex(ciphertext),
		IV:         common.EncodeHex(iv),
		MAC:        common.EncodeHex(computeMAC(derivedKey, ciphertext)),
		Cipher:     CipherAES128CTR,
		KDF:        opts.KDF,
		KDFParams:  params,
		ID:         uuid.New().String(),
	}, nil
}

// Reseal re-encrypts a keystore under a new password, keeping its id.
func Reseal(record *model.KeystoreRecord, oldPassword, newPassword []byte, opts Options) (*model.KeystoreRecord, error) {
	privateKey, err := Open(record, oldPassword)
	if err != nil {
		return nil, err
	}
	defer clear(privateKey)

	resealed, err := Seal(privateKey, newPassword, opts)
	if err != nil {
		return nil, err
	}
	resealed.ID = record.ID
	resealed.Handle = record.Handle
	resealed.Persist = record.Persist
	return resealed, nil
}

// computeMAC is keccak256(derivedKey[16:32] ++ ciphertext)
func computeMAC(derivedKey, ciphertext []byte) []byte {
	return ethcrypto.Keccak256(derivedKey[16:32], ciphertext)
}

func aesCTRXOR(key, inText, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	stream := cipher.NewCTR(block, iv)
	outText := make([]byte, len(inText))
	stream.XORKeyStream(outText, inText)
	return outText, nil
}
