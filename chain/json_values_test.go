package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// TestConvertJSONPath verifies bracketed indices are rewritten to the dotted query form.
func TestConvertJSONPath(t *testing.T) {
	assert.Equal(t, "a.b.c", convertJSONPath("a.b.c"))
	assert.Equal(t, "arr.1", convertJSONPath("arr[1]"))
	assert.Equal(t, "a.0.b.12", convertJSONPath("a[0].b[12]"))
}

// TestQueryJSONDocument verifies path resolution, whole-document selection, and failure modes.
func TestQueryJSONDocument(t *testing.T) {
	document := `{"a": {"b": [10, 20]}}`

	// Whole-document selectors
	for _, path := range []string{"", ".", "$"} {
		value, err := queryJSONDocument(document, path)
		require.NoError(t, err)
		assert.True(t, value.IsObject())
	}

	value, err := queryJSONDocument(document, ".a.b[1]")
	require.NoError(t, err)
	assert.EqualValues(t, 20, value.Int())

	_, err = queryJSONDocument(document, ".a.missing")
	assert.Error(t, err)

	_, err = queryJSONDocument("{broken", ".")
	assert.Error(t, err)
}

// TestInferJSONType verifies the canonical type each JSON shape projects onto.
func TestInferJSONType(t *testing.T) {
	tests := []struct {
		document     string
		expectedType string
	}{
		{"true", "bool"},
		{"7", "uint256"},
		{"-7", "int256"},
		{`"plain text"`, "string"},
		{`"0x7109709ECfa91a80626fF3989D68f67F5b1DD12D"`, "address"},
		{`"0x0000000000000000000000000000000000000000000000000000000000000001"`, "bytes32"},
		{`"0xabc"`, "string"},
		{"[1, 2]", "uint256[]"},
		{`{"k": 1}`, "tuple"},
	}
	for _, test := range tests {
		inferredType, _, err := inferJSONType(gjson.Parse(test.document))
		require.NoError(t, err, "document: %v", test.document)
		assert.Equal(t, test.expectedType, inferredType, "document: %v", test.document)
	}

	// Shapes with no canonical type are rejected.
	for _, document := range []string{"1.5", "1e3", "[]", "{}"} {
		_, _, err := inferJSONType(gjson.Parse(document))
		assert.Error(t, err, "document: %v", document)
	}
}

// TestEncodeJSONValueLargeNumbers verifies whole numbers beyond float64 precision survive encoding, since the raw
// literal rather than the parsed float is used.
func TestEncodeJSONValueLargeNumbers(t *testing.T) {
	value := gjson.Parse("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	encoded, err := encodeJSONValue(value)
	require.NoError(t, err)
	require.Len(t, encoded, 32)

	// The max uint256 value encodes as all ones.
	for _, b := range encoded {
		assert.EqualValues(t, 0xff, b)
	}
}

// TestEncodeJSONValueTuple verifies objects encode as tuples in field declaration order.
func TestEncodeJSONValueTuple(t *testing.T) {
	value := gjson.Parse(`{"amount": 5, "recipient": "0x7109709ECfa91a80626fF3989D68f67F5b1DD12D", "note": "hi"}`)
	encoded, err := encodeJSONValue(value)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)
}
