package cryptoutils

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeURLSafe(t *testing.T) {
	data := []byte{0xfb, 0xff, 0xbf, 0x3e, 0x00}

	std := base64.StdEncoding.EncodeToString(data)
	manual := strings.TrimRight(strings.NewReplacer("/", "_", "+", "-").Replace(std), "=")

	assert.Equal(t, manual, EncodeURLSafe(data))
	assert.NotContains(t, EncodeURLSafe(data), "=")
}

func TestU256LittleEndian(t *testing.T) {
	le, err := U256LittleEndian("258")
	require.NoError(t, err)
	require.Len(t, le, 32)
	assert.Equal(t, byte(0x02), le[0])
	assert.Equal(t, byte(0x01), le[1])
	for _, b := range le[2:] {
		assert.Equal(t, byte(0), b)
	}

	_, err = U256LittleEndian("not a number")
	assert.Error(t, err)
}

func TestNormalizeBlobID(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{
			name:     "zero",
			raw:      "0",
			expected: EncodeURLSafe(make([]byte, 32)),
		},
		{
			name:     "small decimal",
			raw:      "1",
			expected: "AQAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		},
		{
			name:     "already encoded",
			raw:      "M4hsZGQ1oCktdzegB6HnI6Mi28S2nqOPHxK-W7_4BUk",
			expected: "M4hsZGQ1oCktdzegB6HnI6Mi28S2nqOPHxK-W7_4BUk",
		},
		{
			name:     "mixed alphanumeric is not decimal",
			raw:      "12ab",
			expected: "12ab",
		},
		{
			name:     "overflow falls back to raw",
			raw:      "115792089237316195423570985008687907853269984665640564039457584007913129639936",
			expected: "115792089237316195423570985008687907853269984665640564039457584007913129639936",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBlobID(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeBlobID_DecimalIsDeterministicAndURLSafe(t *testing.T) {
	inputs := []string{
		"1",
		"255",
		"65535",
		"18446744073709551615",
		"54193935282538743012471736968195274311805732607695456513737461003055454549171",
		"115792089237316195423570985008687907853269984665640564039457584007913129639935",
	}

	for _, in := range inputs {
		first, err := NormalizeBlobID(in)
		require.NoError(t, err)
		second, err := NormalizeBlobID(in)
		require.NoError(t, err)

		assert.Equal(t, first, second, in)
		assert.NotContains(t, first, "/", in)
		assert.NotContains(t, first, "+", in)
		assert.NotContains(t, first, "=", in)
		assert.Len(t, first, 43, in)
	}
}
