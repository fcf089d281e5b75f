package chain

import (
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// queryJSONDocument resolves a dot/bracket path (e.g. ".nestedObject.str", ".uintArray[1]") within a JSON document.
// An empty path, ".", or "$" selects the whole document.
// Returns the resolved value, or an error if the document is invalid or the path does not exist.
func queryJSONDocument(document string, path string) (gjson.Result, error) {
	if !gjson.Valid(document) {
		return gjson.Result{}, errors.New("invalid JSON document")
	}

	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return gjson.Parse(document), nil
	}

	result := gjson.Get(document, convertJSONPath(path))
	if !result.Exists() {
		return gjson.Result{}, errors.Errorf("path %q not found in JSON document", path)
	}
	return result, nil
}

// convertJSONPath rewrites bracketed array indexing ("arr[1]") into the dotted form the query library expects
// ("arr.1").
func convertJSONPath(path string) string {
	var builder strings.Builder
	for _, r := range path {
		switch r {
		case '[':
			builder.WriteRune('.')
		case ']':
			// dropped
		default:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// inferJSONType determines the canonical ABI type a JSON value's shape projects onto: booleans map to bool, whole
// numbers to uint256 (int256 when negative), strings to string unless they parse as an address or 32-byte hex
// value, arrays to dynamic arrays of their element type, and objects to tuples in field-declaration order.
// Returns the canonical ABI type string and, for tuples, the component definitions.
func inferJSONType(value gjson.Result) (string, []abi.ArgumentMarshaling, error) {
	switch value.Type {
	case gjson.True, gjson.False:
		return "bool", nil, nil
	case gjson.Number:
		// Inspect the raw literal rather than the parsed float so 256-bit integers survive.
		if strings.ContainsAny(value.Raw, ".eE") {
			return "", nil, errors.Errorf("cannot infer ABI type of non-integer number %v", value.Raw)
		}
		if strings.HasPrefix(value.Raw, "-") {
			return "int256", nil, nil
		}
		return "uint256", nil, nil
	case gjson.String:
		s := value.String()
		if strings.HasPrefix(s, "0x") {
			if len(s) == 42 {
				return "address", nil, nil
			}
			if len(s) == 66 {
				return "bytes32", nil, nil
			}
		}
		return "string", nil, nil
	case gjson.JSON:
		if value.IsArray() {
			elements := value.Array()
			if len(elements) == 0 {
				return "", nil, errors.New("cannot infer ABI type of an empty array")
			}
			elementType, elementComponents, err := inferJSONType(elements[0])
			if err != nil {
				return "", nil, err
			}
			return elementType + "[]", elementComponents, nil
		}
		if value.IsObject() {
			var components []abi.ArgumentMarshaling
			var inferErr error
			value.ForEach(func(key, fieldValue gjson.Result) bool {
				fieldType, fieldComponents, err := inferJSONType(fieldValue)
				if err != nil {
					inferErr = err
					return false
				}
				components = append(components, abi.ArgumentMarshaling{
					Name:       key.String(),
					Type:       fieldType,
					Components: fieldComponents,
				})
				return true
			})
			if inferErr != nil {
				return "", nil, inferErr
			}
			if len(components) == 0 {
				return "", nil, errors.New("cannot infer ABI type of an empty object")
			}
			return "tuple", components, nil
		}
	}
	return "", nil, errors.Errorf("cannot infer ABI type of JSON value %v", value.Raw)
}

// buildJSONValue constructs the Go value matching the provided ABI type from a JSON value. Composite values are
// assembled through reflection so they match the memory layout go-ethereum's ABI provider expects.
func buildJSONValue(value gjson.Result, inputType *abi.Type) (any, error) {
	switch inputType.T {
	case abi.BoolTy:
		return value.Bool(), nil
	case abi.UintTy, abi.IntTy:
		n, ok := new(big.Int).SetString(value.Raw, 10)
		if !ok {
			return nil, errors.Errorf("could not parse %v as an integer", value.Raw)
		}
		return n, nil
	case abi.AddressTy:
		return common.HexToAddress(value.String()), nil
	case abi.FixedBytesTy:
		return [32]byte(common.HexToHash(value.String())), nil
	case abi.StringTy:
		return value.String(), nil
	case abi.SliceTy:
		elements := value.Array()
		slice := reflect.MakeSlice(inputType.GetType(), len(elements), len(elements))
		for i := 0; i < len(elements); i++ {
			elementValue, err := buildJSONValue(elements[i], inputType.Elem)
			if err != nil {
				return nil, err
			}
			slice.Index(i).Set(reflect.ValueOf(elementValue))
		}
		return slice.Interface(), nil
	case abi.TupleTy:
		// Collect field values in declaration order, which matches the order the tuple type was inferred in.
		var fieldValues []gjson.Result
		value.ForEach(func(_, fieldValue gjson.Result) bool {
			fieldValues = append(fieldValues, fieldValue)
			return true
		})
		if len(fieldValues) != len(inputType.TupleElems) {
			return nil, errors.Errorf("object field count %v does not match tuple arity %v", len(fieldValues), len(inputType.TupleElems))
		}

		// Tuples are represented as structs by go-ethereum's ABI provider, so we create and populate one through
		// reflection.
		st := reflect.New(inputType.GetType()).Elem()
		for i := 0; i < len(inputType.TupleElems); i++ {
			fieldValue, err := buildJSONValue(fieldValues[i], inputType.TupleElems[i])
			if err != nil {
				return nil, err
			}
			st.Field(i).Set(reflect.ValueOf(fieldValue))
		}
		return st.Interface(), nil
	}
	return nil, errors.Errorf("unsupported ABI type %v for JSON encoding", inputType.String())
}

// encodeJSONValue ABI-encodes a JSON value using the canonical type inferred from its shape, so that callers can
// abi.decode the result into the matching Solidity type.
func encodeJSONValue(value gjson.Result) ([]byte, error) {
	typeString, components, err := inferJSONType(value)
	if err != nil {
		return nil, err
	}
	abiType, err := abi.NewType(typeString, "", components)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	goValue, err := buildJSONValue(value, &abiType)
	if err != nil {
		return nil, err
	}
	encoded, err := abi.Arguments{{Type: abiType}}.Pack(goValue)
	return encoded, errors.WithStack(err)
}
