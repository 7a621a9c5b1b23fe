// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lsd

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		wantErr string
	}{
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", ""},
		{"7567d83b7b8d80addcb281a71d54fc7b3364ffed", ""},
		{"0X7567d83b7b8d80addcb281a71d54fc7b3364ffed", ""},
		{"1x7567d83b7b8d80addcb281a71d54fc7b3364ffed", "invalid prefix"},
		{"0x7567d8", "invalid length"},
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffzz", "encoding/hex: invalid byte: U+007A 'z'"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			addr, err := ParseAddress(tt.in)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())
		})
	}
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("validator"))

	data, err := json.Marshal(&addr)
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)

	m := map[Address]int{addr: 1}
	data, err = json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), addr.String())
}

func TestAddressIsZero(t *testing.T) {
	assert.True(t, Address{}.IsZero())
	assert.False(t, BytesToAddress([]byte{1}).IsZero())
}

func TestWei(t *testing.T) {
	assert.Equal(t, "5000000000000000000", ToWei(5).String())
	assert.Equal(t, big.NewInt(5), FromWei(ToWei(5)))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 2}, Epoch(258).Bytes())
}
