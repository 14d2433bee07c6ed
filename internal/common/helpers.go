package common

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

const (
	EtherDecimals = 18 // 1 ether = 10^18 wei
	GweiDecimals  = 9  // 1 gwei = 10^9 wei
)

// WeiToEther converts wei to an ether string without float precision loss
func WeiToEther(wei *big.Int) string {
	return formatWithDecimals(wei, EtherDecimals)
}

// EtherToWei converts an ether string to wei without float precision loss
func EtherToWei(ether string) (*big.Int, error) {
	return parseWithDecimals(ether, EtherDecimals)
}

// WeiToGwei converts wei to a gwei string without float precision loss
func WeiToGwei(wei *big.Int) string {
	return formatWithDecimals(wei, GweiDecimals)
}

// GweiToWei converts a gwei string to wei without float precision loss
func GweiToWei(gwei string) (*big.Int, error) {
	return parseWithDecimals(gwei, GweiDecimals)
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value *big.Int, decimals int) string {
	if value == nil {
		value = new(big.Int)
	}
	s := new(big.Int).Abs(value).String()

	// Pad with leading zeros if needed
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	out := s[:pos] + "." + s[pos:]
	if value.Sign() < 0 {
		out = "-" + out
	}
	return out
}

// parseWithDecimals converts decimal string to integer by removing decimal point
// Example: parseWithDecimals("0.024981836", 9) = 24981836
func parseWithDecimals(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty string")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid decimal format")
	}

	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}

	// Pad or truncate fractional part to exact decimals
	if len(frac) < decimals {
		frac += strings.Repeat("0", decimals-len(frac))
	} else if len(frac) > decimals {
		frac = frac[:decimals]
	}

	n, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return n, nil
}

// ParseBigInt parses a decimal or 0x-prefixed hex integer.
func ParseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty string")
	}
	base := 10
	if HasHexPrefix(s) {
		s = s[2:]
		base = 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

// ToBigInt normalizes the numeric shapes produced by JSON decoding and Go callers.
func ToBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case json.Number:
		return ParseBigInt(n.String())
	case string:
		return ParseBigInt(n)
	case float64:
		if n != float64(int64(n)) {
			return nil, fmt.Errorf("non-integer value %v", n)
		}
		return big.NewInt(int64(n)), nil
	default:
		return nil, fmt.Errorf("unsupported numeric type %T", v)
	}
}

// HasHexPrefix reports whether s starts with 0x or 0X
func HasHexPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// StripHex removes a leading 0x
func StripHex(s string) string {
	if HasHexPrefix(s) {
		return s[2:]
	}
	return s
}

// PrefixHex adds a leading 0x if missing
func PrefixHex(s string) string {
	if HasHexPrefix(s) {
		return s
	}
	return "0x" + s
}

// DecodeHex decodes hex with or without the 0x prefix
func DecodeHex(s string) ([]byte, error) {
	return hex.DecodeString(StripHex(s))
}

// EncodeHex encodes bytes as 0x-prefixed hex
func EncodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
