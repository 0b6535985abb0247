package merkle

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// LeafEncoder hashes leaf values the way Solidity verifiers expect:
// keccak256(keccak256(abi.encode(values...))).
type LeafEncoder struct {
	arguments abi.Arguments
}

// NewLeafEncoder builds an encoder for the given ABI type names, e.g. ["address", "uint256"].
func NewLeafEncoder(leafEncoding []string) (*LeafEncoder, error) {
	if len(leafEncoding) == 0 {
		return nil, fmt.Errorf("leaf encoding %w", ErrEmpty)
	}

	arguments := make(abi.Arguments, 0, len(leafEncoding))
	for i, typeName := range leafEncoding {
		t, err := abi.NewType(typeName, "", nil)
		if err != nil {
			return nil, fmt.Errorf("leaf encoding type %d (%q): %w", i, typeName, err)
		}
		arguments = append(arguments, abi.Argument{Type: t})
	}

	return &LeafEncoder{arguments: arguments}, nil
}

// Arity returns the number of fields a leaf value must have.
func (le *LeafEncoder) Arity() int {
	return len(le.arguments)
}

// Encode ABI encodes a leaf value. Values are JSON decoded fields: strings, json.Number,
// bool and nested []any for array types.
func (le *LeafEncoder) Encode(value []any) ([]byte, error) {
	if len(value) != len(le.arguments) {
		return nil, fmt.Errorf("expected %d fields, got %d: %w", len(le.arguments), len(value), ErrSizeMismatch)
	}

	packArgs := make([]any, len(value))
	for i, field := range value {
		converted, err := toABIValue(le.arguments[i].Type, field)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		packArgs[i] = converted
	}

	return le.arguments.Pack(packArgs...)
}

// Hash computes the double keccak256 leaf hash of a value.
func (le *LeafEncoder) Hash(value []any) (common.Hash, error) {
	encoded, err := le.Encode(value)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(crypto.Keccak256(encoded)), nil
}

// toABIValue converts a JSON decoded field into the Go type go-ethereum's abi packer
// requires for t.
func toABIValue(t abi.Type, v any) (any, error) {
	switch t.T {
	case abi.AddressTy:
		s, ok := v.(string)
		if !ok || !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %v", v)
		}
		return common.HexToAddress(s), nil

	case abi.BoolTy:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("invalid bool %v", v)
		}
		return b, nil

	case abi.StringTy:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("invalid string %v", v)
		}
		return s, nil

	case abi.BytesTy:
		return decodeHexField(v)

	case abi.FixedBytesTy:
		b, err := decodeHexField(v)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	case abi.IntTy, abi.UintTy:
		return toABIInteger(t, v)

	case abi.SliceTy, abi.ArrayTy:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("invalid array %v", v)
		}
		if t.T == abi.ArrayTy && len(items) != t.Size {
			return nil, fmt.Errorf("expected %d array items, got %d", t.Size, len(items))
		}

		var out reflect.Value
		if t.T == abi.ArrayTy {
			out = reflect.New(t.GetType()).Elem()
		} else {
			out = reflect.MakeSlice(t.GetType(), len(items), len(items))
		}
		for i, item := range items {
			converted, err := toABIValue(*t.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out.Index(i).Set(reflect.ValueOf(converted))
		}
		return out.Interface(), nil

	default:
		return nil, fmt.Errorf("unsupported leaf encoding type %s", t.String())
	}
}

func toABIInteger(t abi.Type, v any) (any, error) {
	n, err := parseInteger(v)
	if err != nil {
		return nil, err
	}

	lo, hi := integerBounds(t.T == abi.UintTy, t.Size)
	if n.Cmp(lo) < 0 || n.Cmp(hi) > 0 {
		return nil, fmt.Errorf("integer %s out of range for %s", n.String(), t.String())
	}

	goType := t.GetType()
	if goType == bigIntType {
		return n, nil
	}
	if t.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(goType).Interface(), nil
	}
	return reflect.ValueOf(n.Int64()).Convert(goType).Interface(), nil
}

// parseInteger accepts JSON numbers, decimal strings and 0x-prefixed hex strings.
func parseInteger(v any) (*big.Int, error) {
	var s string
	switch val := v.(type) {
	case json.Number:
		s = val.String()
	case string:
		s = val
	default:
		return nil, fmt.Errorf("invalid integer %v", v)
	}

	// no octal, binary or digit separators; a leading zero is still decimal
	digits, base := s, 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits, base = s[2:], 16
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

func integerBounds(unsigned bool, size int) (*big.Int, *big.Int) {
	if unsigned {
		hi := new(big.Int).Lsh(big.NewInt(1), uint(size))
		return big.NewInt(0), hi.Sub(hi, big.NewInt(1))
	}
	hi := new(big.Int).Lsh(big.NewInt(1), uint(size-1))
	lo := new(big.Int).Neg(hi)
	return lo, hi.Sub(hi, big.NewInt(1))
}

func decodeHexField(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("invalid bytes %v", v)
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid bytes %q: %w", s, err)
	}
	return b, nil
}

// renderKey turns the first field of a value into the string compared during lookup.
func renderKey(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
