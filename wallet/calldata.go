package wallet

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	wcommon "github.com/AlexZinkM/eth-wallet/internal/common"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// parseABI parses a JSON contract ABI and looks up method
func parseABI(abiJSON []byte, method string) (*abi.ABI, abi.Method, error) {
	parsed, err := abi.JSON(bytes.NewReader(abiJSON))
	if err != nil {
		return nil, abi.Method{}, fmt.Errorf("failed to parse abi: %w", err)
	}
	m, ok := parsed.Methods[method]
	if !ok {
		return nil, abi.Method{}, fmt.Errorf("method %q not found in abi", method)
	}
	return &parsed, m, nil
}

// encodeCall packs method and params into call data. Params arrive loosely
// typed (JSON numbers, decimal or hex strings) and are converted to the Go
// types the abi encoder expects.
func encodeCall(abiJSON []byte, method string, params []any) ([]byte, error) {
	parsed, m, err := parseABI(abiJSON, method)
	if err != nil {
		return nil, err
	}
	if len(params) != len(m.Inputs) {
		return nil, fmt.Errorf("method %s takes %d params, got %d", method, len(m.Inputs), len(params))
	}
	args := make([]any, len(params))
	for i, input := range m.Inputs {
		args[i], err = convertArg(input.Type, params[i])
		if err != nil {
			return nil, fmt.Errorf("param %d (%s): %w", i, input.Name, err)
		}
	}
	return parsed.Pack(method, args...)
}

// decodeOutput unpacks the return data of method
func decodeOutput(abiJSON []byte, method string, out []byte) ([]any, error) {
	parsed, m, err := parseABI(abiJSON, method)
	if err != nil {
		return nil, err
	}
	if len(m.Outputs) == 0 {
		return nil, nil
	}
	return parsed.Unpack(method, out)
}

func convertArg(t abi.Type, v any) (any, error) {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		return convertInt(t, v)
	case abi.BoolTy:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(b)
		}
	case abi.StringTy:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case abi.AddressTy:
		switch a := v.(type) {
		case common.Address:
			return a, nil
		case string:
			if !common.IsHexAddress(a) {
				return nil, fmt.Errorf("invalid address %q", a)
			}
			return common.HexToAddress(a), nil
		}
	case abi.BytesTy:
		return toBytes(v)
	case abi.FixedBytesTy:
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("%d bytes do not fit bytes%d", len(b), t.Size)
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	case abi.SliceTy, abi.ArrayTy:
		items, ok := v.([]any)
		if !ok {
			break
		}
		var out reflect.Value
		if t.T == abi.ArrayTy {
			if len(items) != t.Size {
				return nil, fmt.Errorf("array needs %d elements, got %d", t.Size, len(items))
			}
			out = reflect.New(t.GetType()).Elem()
		} else {
			out = reflect.MakeSlice(t.GetType(), len(items), len(items))
		}
		for i, item := range items {
			c, err := convertArg(*t.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(reflect.ValueOf(c))
		}
		return out.Interface(), nil
	default:
		return v, nil
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
}

func convertInt(t abi.Type, v any) (any, error) {
	n, err := wcommon.ToBigInt(v)
	if err != nil {
		return nil, err
	}
	if t.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value for %s", t.String())
	}
	if t.T == abi.UintTy && n.BitLen() > t.Size {
		return nil, fmt.Errorf("%s overflows %s", n, t.String())
	}
	if t.T == abi.IntTy {
		// -2^(size-1) <= n < 2^(size-1)
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("%s overflows %s", n, t.String())
		}
	}

	rt := t.GetType()
	if rt == bigIntType {
		return n, nil
	}
	if t.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(rt).Interface(), nil
	}
	return reflect.ValueOf(n.Int64()).Convert(rt).Interface(), nil
}

func toBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return wcommon.DecodeHex(b)
	}
	return nil, fmt.Errorf("cannot use %T as bytes", v)
}
