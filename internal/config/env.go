package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/AlexZinkM/eth-wallet/internal/common"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
type Config struct {
	Port            string `envconfig:"PORT" default:"8080"`
	RPCURL          string `envconfig:"RPC_URL" default:"http://127.0.0.1:8545"`
	DBPath          string `envconfig:"DB_PATH" default:"./wallet-db"`
	ChainID         int64  `envconfig:"CHAIN_ID" default:"0"`
	KDF             string `envconfig:"KDF" default:"pbkdf2"`
	KDFRounds       int    `envconfig:"KDF_ROUNDS" default:"65536"`
	DefaultGas      uint64 `envconfig:"DEFAULT_GAS" default:"3135000"`
	MaxNonceRetries int    `envconfig:"MAX_NONCE_RETRIES" default:"64"`
	NonceErrorCode  int    `envconfig:"NONCE_ERROR_CODE" default:"-32603"`
	Freebie         string `envconfig:"FREEBIE" default:"2.5"` // ether
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	if c.KDF != "pbkdf2" && c.KDF != "scrypt" {
		return fmt.Errorf("KDF must be pbkdf2 or scrypt, got %q", c.KDF)
	}
	if c.KDFRounds <= 0 {
		return errors.New("KDF_ROUNDS must be positive")
	}
	if c.KDF == "scrypt" && c.KDFRounds > 1<<20 {
		return fmt.Errorf("KDF_ROUNDS %d is above the scrypt limit %d", c.KDFRounds, 1<<20)
	}
	if c.KDFRounds > 1<<24 {
		return fmt.Errorf("KDF_ROUNDS %d is above the limit %d", c.KDFRounds, 1<<24)
	}
	if c.ChainID < 0 {
		return errors.New("CHAIN_ID must not be negative")
	}
	if c.MaxNonceRetries < 0 {
		return errors.New("MAX_NONCE_RETRIES must not be negative")
	}
	if _, err := common.EtherToWei(c.Freebie); err != nil {
		return fmt.Errorf("invalid FREEBIE: %w", err)
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetRPCURL returns the node URL from configuration
func GetRPCURL() string {
	return Get().RPCURL
}

// GetDBPath returns the keystore database directory
func GetDBPath() string {
	return Get().DBPath
}

// GetChainID returns the chain id; 0 selects Homestead signing
func GetChainID() *big.Int {
	return big.NewInt(Get().ChainID)
}

// GetFreebieWei returns the amount sent to new accounts in wei
func GetFreebieWei() *big.Int {
	wei, err := common.EtherToWei(Get().Freebie)
	if err != nil {
		// checked by Validate
		return new(big.Int)
	}
	return wei
}

// ReadPassword prompts on stderr and reads a password from the terminal
// without echoing it. Caller must zero the returned slice after use.
func ReadPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the command interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	password := make([]byte, len(raw))
	copy(password, raw)
	clear(raw)
	return password, nil
}
