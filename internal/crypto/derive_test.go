package crypto

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIdentity(t *testing.T) {
	id := DefaultIdentity()
	assert.Equal(t, common.HexToAddress(FactoryAddress), id.Factory)
	// keccak256(0x67363d3d37363d34f03d5260086018f3)
	assert.Equal(t,
		common.HexToHash("0x21c35dbe1b344a2488cf3321d6ce542f8e9f305544ff09e4993a62319a497c1f"),
		id.ProxyCodeHash)
}

func TestNewIdentityRejectsMalformedHex(t *testing.T) {
	_, err := NewIdentity("0x1234", ProxyBytecode)
	require.Error(t, err)

	_, err = NewIdentity(FactoryAddress, "0xzz")
	require.Error(t, err)

	_, err = NewIdentity(FactoryAddress, "0x123") // odd length
	require.Error(t, err)
}

func TestDeriveZeroSalt(t *testing.T) {
	d := NewDeriver(DefaultIdentity())

	var salt common.Hash
	assert.Equal(t,
		common.HexToAddress("0x702f059b2bfaa16d5ff61c528c98465bcf2d652e"),
		d.ProxyAddress(salt))
	assert.Equal(t,
		common.HexToAddress("0x9165aba9710f6c5945daf2aa002d653115723ec7"),
		d.Derive(salt))
}

func TestDeriveSaltedVector(t *testing.T) {
	d := NewDeriver(DefaultIdentity())

	creator := common.HexToAddress("0x00112233445566778899aabbccddeeff00112233")
	var material [SaltInputLen]byte
	copy(material[:], creator[:])
	for i := 0; i < NonceLen; i++ {
		material[common.AddressLength+i] = byte(i)
	}

	salt := d.HashSalt(material[:])
	assert.Equal(t,
		common.HexToHash("0xd8d5d5fd89bf503e83a84b7122dc56dadcb361ef2cd832f99de5c5332decaa9a"),
		salt)
	assert.Equal(t,
		common.HexToAddress("0x427b311df3306130b984fa15406828fd5fc2462e"),
		d.Derive(salt))
}

// The first hop is plain CREATE2; go-ethereum computes it independently.
func TestProxyAddressMatchesGethCreateAddress2(t *testing.T) {
	id := DefaultIdentity()
	d := NewDeriver(id)

	salts := []common.Hash{
		{},
		common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000000001"),
		common.HexToHash("0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"),
	}
	for _, salt := range salts {
		want := gethcrypto.CreateAddress2(id.Factory, salt, id.ProxyCodeHash[:])
		assert.Equal(t, want, d.ProxyAddress(salt), "salt %s", salt)
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	id := DefaultIdentity()
	salt := common.HexToHash("0xcafecafecafecafecafecafecafecafecafecafecafecafecafecafecafecafe")

	d := NewDeriver(id)
	first := d.Derive(salt)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, d.Derive(salt))
	}
	// a fresh Deriver carries no hidden state from previous calls
	require.Equal(t, first, NewDeriver(id).Derive(salt))
}

func TestDeriveInterleavedSalts(t *testing.T) {
	d := NewDeriver(DefaultIdentity())

	a := common.HexToHash("0x01")
	b := common.HexToHash("0x02")
	addrA := d.Derive(a)
	addrB := d.Derive(b)
	require.NotEqual(t, addrA, addrB)
	assert.Equal(t, addrA, d.Derive(a))
	assert.Equal(t, addrB, d.Derive(b))
}

func TestKeccak256(t *testing.T) {
	// keccak256("") is the canonical empty-input digest
	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		common.Bytes2Hex(Keccak256(nil)))
}

func TestHexToBytes(t *testing.T) {
	b, err := HexToBytes("0xff01")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x01}, b)

	b, err = HexToBytes("ff01")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x01}, b)

	_, err = HexToBytes("0xf")
	assert.Error(t, err)
}

func BenchmarkDerive(b *testing.B) {
	d := NewDeriver(DefaultIdentity())
	var salt common.Hash

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		salt[0] = byte(i)
		d.Derive(salt)
	}
}

func BenchmarkHashSaltAndDerive(b *testing.B) {
	d := NewDeriver(DefaultIdentity())
	var material [SaltInputLen]byte

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		material[SaltInputLen-1] = byte(i)
		d.Derive(d.HashSalt(material[:]))
	}
}
