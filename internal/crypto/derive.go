package crypto

import (
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

const (
	// CREATE3 factory the salts are mined for
	FactoryAddress = "0x93FEC2C00BfE902F733B57c5a6CeeD7CD1384AE1"

	// Minimal proxy deployed by the factory; the final contract is the
	// proxy's first CREATE (nonce 1)
	ProxyBytecode = "0x67363d3d37363d34f03d5260086018f3"

	// CREATE2 input layout: 0xff (1) + factory (20) + salt (32) + proxyCodeHash (32) = 85
	create2PrefixLen = 1 + common.AddressLength
	create2InputLen  = create2PrefixLen + common.HashLength + common.HashLength

	// RLP of [proxy, 1]: 0xd6 0x94 (2) + proxy (20) + 0x01 (1) = 23
	rlpInputLen = 2 + common.AddressLength + 1

	// NonceLen is the size of the random nonce drawn per attempt.
	NonceLen = 32

	// SaltInputLen is the size of the pre-hash salt material: creator (20) + nonce (32).
	SaltInputLen = common.AddressLength + NonceLen
)

// Identity pins the two constants of the deployment scheme: the factory that
// runs CREATE2 and the hash of the proxy initcode it deploys. Built once and
// passed by value; never mutated after construction.
type Identity struct {
	Factory       common.Address
	ProxyCodeHash common.Hash
}

// NewIdentity builds an Identity from hex inputs. Malformed hex is a
// configuration-time failure; derivation never sees invalid identities.
func NewIdentity(factoryHex, proxyBytecodeHex string) (Identity, error) {
	if !common.IsHexAddress(factoryHex) {
		return Identity{}, fmt.Errorf("invalid factory address %q", factoryHex)
	}
	code, err := HexToBytes(proxyBytecodeHex)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid proxy bytecode: %w", err)
	}
	return Identity{
		Factory:       common.HexToAddress(factoryHex),
		ProxyCodeHash: gethcrypto.Keccak256Hash(code),
	}, nil
}

// DefaultIdentity returns the built-in factory and proxy bytecode hash.
func DefaultIdentity() Identity {
	id, err := NewIdentity(FactoryAddress, ProxyBytecode)
	if err != nil {
		panic("built-in deployment identity: " + err.Error())
	}
	return id
}

// Deriver computes deployed addresses for candidate salts. It reuses a single
// keccak state and pre-primed input buffers so the hot loop allocates nothing;
// it is not safe for concurrent use — give each goroutine its own Deriver.
type Deriver struct {
	state      hash.Hash
	create2Buf [create2InputLen]byte
	rlpBuf     [rlpInputLen]byte
	sum        [common.HashLength]byte
}

// NewDeriver primes the constant regions of both input buffers from id.
func NewDeriver(id Identity) *Deriver {
	d := &Deriver{state: sha3.NewLegacyKeccak256()}
	d.create2Buf[0] = 0xff
	copy(d.create2Buf[1:], id.Factory[:])
	copy(d.create2Buf[create2PrefixLen+common.HashLength:], id.ProxyCodeHash[:])
	d.rlpBuf[0] = 0xd6
	d.rlpBuf[1] = 0x94
	d.rlpBuf[rlpInputLen-1] = 0x01
	return d
}

// HashSalt folds the creator into the nonce material exactly as the factory
// does on-chain: workingSalt = keccak256(creator || nonce). material must be
// the SaltInputLen-byte creator||nonce buffer.
func (d *Deriver) HashSalt(material []byte) common.Hash {
	d.keccakInto(material)
	return common.Hash(d.sum)
}

// Derive returns the address deployed for salt under the two-hop scheme:
// proxy = CREATE2(factory, salt, proxyCodeHash), deployed = CREATE(proxy, 1).
func (d *Deriver) Derive(salt common.Hash) common.Address {
	copy(d.create2Buf[create2PrefixLen:], salt[:])
	d.keccakInto(d.create2Buf[:])
	copy(d.rlpBuf[2:], d.sum[12:])
	d.keccakInto(d.rlpBuf[:])
	return common.Address(d.sum[12:])
}

// ProxyAddress returns only the first hop for salt: the CREATE2 address of the
// proxy itself.
func (d *Deriver) ProxyAddress(salt common.Hash) common.Address {
	copy(d.create2Buf[create2PrefixLen:], salt[:])
	d.keccakInto(d.create2Buf[:])
	return common.Address(d.sum[12:])
}

func (d *Deriver) keccakInto(in []byte) {
	d.state.Reset()
	d.state.Write(in)
	d.state.Sum(d.sum[:0])
}

// Keccak256 hashes data with legacy keccak. Convenience form for cold paths;
// the Deriver keeps its own reusable state for the hot loop.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(data)
	return h.Sum(nil)
}

// HexToBytes decodes a hex string with or without the 0x marker.
func HexToBytes(s string) ([]byte, error) {
	h := strings.TrimSpace(s)
	if len(h) >= 2 && (h[:2] == "0x" || h[:2] == "0X") {
		h = h[2:]
	}
	if len(h)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even length")
	}
	return hex.DecodeString(h)
}
