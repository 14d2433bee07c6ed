package model

// KDFParams holds the parameters of either supported key-derivation function.
// pbkdf2 uses C and PRF, scrypt uses N, R and P.
type KDFParams struct {
	C     int    `json:"c,omitempty"`
	N     int    `json:"n,omitempty"`
	R     int    `json:"r,omitempty"`
	P     int    `json:"p,omitempty"`
	DKLen int    `json:"dklen"`
	PRF   string `json:"prf,omitempty"`
	Salt  string `json:"salt"`
}

// KeystoreRecord represents the encrypted keystore stored under a handle.
// Hex fields are 0x-prefixed.
type KeystoreRecord struct {
	Handle     string    `json:"handle,omitempty"`
	CipherText string    `json:"ciphertext"`
	IV         string    `json:"iv"`
	MAC        string    `json:"mac"`
	Cipher     string    `json:"cipher"`
	KDF        string    `json:"kdf"`
	KDFParams  KDFParams `json:"kdfparams"`
	ID         string    `json:"id"`
	Persist    bool      `json:"persist,omitempty"`
}

// CipherParams represents cipher parameters of an exported key
type CipherParams struct {
	IV string `json:"iv"`
}

// CryptoJSON represents the crypto section of an exported key
type CryptoJSON struct {
	Cipher       string       `json:"cipher"`
	CipherText   string       `json:"ciphertext"`
	CipherParams CipherParams `json:"cipherparams"`
	KDF          string       `json:"kdf"`
	KDFParams    KDFParams    `json:"kdfparams"`
	MAC          string       `json:"mac"`
}

// ExportedKey represents a version 3 keystore document (hex without 0x)
type ExportedKey struct {
	Address string     `json:"address"`
	Crypto  CryptoJSON `json:"crypto"`
	ID      string     `json:"id"`
	Version int        `json:"version"`
}

// PersistedSession is the session record kept in the persistent slot.
// It never contains the plaintext private key.
type PersistedSession struct {
	Handle   string         `json:"handle"`
	Address  string         `json:"address"`
	Keystore KeystoreRecord `json:"keystore"`
}
