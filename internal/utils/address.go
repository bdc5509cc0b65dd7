package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/blake2b"
)

const (
	maxSS58Prefix = 16383
	// Prefixes below 64 take a single byte.
	simplePrefixLimit = 64
	ss58ChecksumLen   = 2
)

var (
	ss58Context = []byte("SS58PRE")
	// evmContext prefixes the address hashed into a substrate account id.
	evmContext = []byte("evm:")
)

// ParseAddress parses a hex address and rejects the zero address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, errors.New("zero address is not allowed")
	}
	return addr, nil
}

// EvmToAccountID maps an EVM address to the 32-byte substrate account that
// owns its native balance.
func EvmToAccountID(addr common.Address) [32]byte {
	return blake2b.Sum256(append(append([]byte{}, evmContext...), addr.Bytes()...))
}

// EvmToSS58 returns the SS58 encoding of the substrate account of addr
// under the network prefix.
func EvmToSS58(addr common.Address, prefix uint16) (string, error) {
	accountID := EvmToAccountID(addr)
	return EncodeSS58(accountID[:], prefix)
}

func ss58PrefixBytes(prefix uint16) ([]byte, error) {
	switch {
	case prefix < simplePrefixLimit:
		return []byte{byte(prefix)}, nil
	case prefix <= maxSS58Prefix:
		first := byte((prefix&0b0000_0000_1111_1100)>>2) | 0b0100_0000
		second := byte(prefix>>8) | byte((prefix&0b0000_0000_0000_0011)<<6)
		return []byte{first, second}, nil
	default:
		return nil, fmt.Errorf("ss58 prefix %d out of range", prefix)
	}
}

func ss58Checksum(data []byte) []byte {
	hash := blake2b.Sum512(append(append([]byte{}, ss58Context...), data...))
	return hash[:ss58ChecksumLen]
}

func EncodeSS58(accountID []byte, prefix uint16) (string, error) {
	if len(accountID) != 32 {
		return "", fmt.Errorf("account id must be 32 bytes, got %d", len(accountID))
	}
	prefixBytes, err := ss58PrefixBytes(prefix)
	if err != nil {
		return "", err
	}
	payload := append(prefixBytes, accountID...)
	return base58.Encode(append(payload, ss58Checksum(payload)...)), nil
}

// DecodeSS58 returns the account id and prefix of an SS58 address after
// verifying its checksum.
func DecodeSS58(address string) ([]byte, uint16, error) {
	raw := base58.Decode(strings.TrimSpace(address))
	if len(raw) < 1+32+ss58ChecksumLen {
		return nil, 0, errors.New("ss58 address too short")
	}
	prefixLen := 1
	prefix := uint16(raw[0])
	if raw[0] >= simplePrefixLimit {
		if raw[0] >= 128 {
			return nil, 0, errors.New("reserved ss58 prefix")
		}
		prefixLen = 2
		lower := (raw[0]&0b0011_1111)<<2 | raw[1]>>6
		upper := raw[1] & 0b0011_1111
		prefix = uint16(lower) | uint16(upper)<<8
	}
	if len(raw) != prefixLen+32+ss58ChecksumLen {
		return nil, 0, fmt.Errorf("unexpected ss58 length %d", len(raw))
	}
	body := raw[:prefixLen+32]
	checksum := raw[prefixLen+32:]
	expected := ss58Checksum(body)
	if checksum[0] != expected[0] || checksum[1] != expected[1] {
		return nil, 0, errors.New("invalid ss58 checksum")
	}
	return body[prefixLen:], prefix, nil
}
