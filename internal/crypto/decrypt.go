package crypto

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/AlexZinkM/eth-wallet/internal/common"
	"github.com/AlexZinkM/eth-wallet/internal/model"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrDecrypt covers a wrong password, a MAC mismatch and a corrupt ciphertext alike.
	ErrDecrypt = errors.New("could not decrypt key with given password")

	ErrUnsupportedCipher = errors.New("unsupported cipher")
)

// Open verifies the MAC and decrypts the private key held in record.
// password must be []byte for security (caller should zero it after use)
func Open(record *model.KeystoreRecord, password []byte) ([]byte, error) {
	if record.Cipher != CipherAES128CTR {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCipher, record.Cipher)
	}

	// Decode iv, ciphertext and mac
	iv, err := common.DecodeHex(record.IV)
	if err != nil || len(iv) != ivLen {
		return nil, ErrDecrypt
	}

	ciphertext, err := common.DecodeHex(record.CipherText)
	if err != nil {
		return nil, ErrDecrypt
	}

	mac, err := common.DecodeHex(record.MAC)
	if err != nil {
		return nil, ErrDecrypt
	}

	// Derive key from password
	derivedKey, err := DeriveKey(password, record.KDF, record.KDFParams)
	if err != nil {
		return nil, err
	}
	defer clear(derivedKey)

	// MAC check precedes decryption
	if subtle.ConstantTimeCompare(computeMAC(derivedKey, ciphertext), mac) != 1 {
		return nil, ErrDecrypt
	}

	plaintext, err := aesCTRXOR(derivedKey[:16], ciphertext, iv)
	if err != nil {
		return nil, ErrDecrypt
	}

	// Reject anything that is not a valid secp256k1 scalar
	if _, err := ethcrypto.ToECDSA(plaintext); err != nil {
		clear(plaintext)
		return nil, ErrDecrypt
	}

	return plaintext, nil
}

// RecordFromExported converts a version 3 keystore document into a keystore record
func RecordFromExported(key *model.ExportedKey) *model.KeystoreRecord {
	params := key.Crypto.KDFParams
	params.Salt = common.PrefixHex(params.Salt)
	return &model.KeystoreRecord{
		CipherText: common.PrefixHex(key.Crypto.CipherText),
		IV:         common.PrefixHex(key.Crypto.CipherParams.IV),
		MAC:        common.PrefixHex(key.Crypto.MAC),
		Cipher:     key.Crypto.Cipher,
		KDF:        key.Crypto.KDF,
		KDFParams:  params,
		ID:         key.ID,
	}
}

// ExportedFromRecord converts a keystore record into a version 3 keystore document
func ExportedFromRecord(record *model.KeystoreRecord, address string) *model.ExportedKey {
	params := record.KDFParams
	params.Salt = common.StripHex(params.Salt)
	return &model.ExportedKey{
		Address: common.StripHex(address),
		Crypto: model.CryptoJSON{
			Cipher:       record.Cipher,
			CipherText:   common.StripHex(record.CipherText),
			CipherParams: model.CipherParams{IV: common.StripHex(record.IV)},
			KDF:          record.KDF,
			KDFParams:    params,
			MAC:          common.StripHex(record.MAC),
		},
		ID:      record.ID,
		Version: 3,
	}
}
