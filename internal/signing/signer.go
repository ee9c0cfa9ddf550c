// Package signing produces the two kinds of signatures the exchange
// accepts: personal-message signatures for the auth handshake and EIP-712
// typed-data signatures for orders. Two signer variants exist: a plain
// externally-owned key, and a smart-account wallet whose on-exchange
// identity differs from the key that authorizes actions.
package signing

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/mselser95/predict-account/pkg/types"
)

// Signer abstracts the credential behind a trade. Both variants produce
// 0x-prefixed hex signatures regardless of underlying scheme.
type Signer interface {
	// Address is the identity presented to the exchange as order maker,
	// order signer, and auth signer.
	Address() string

	// ChallengeAddress is the address sent with the auth challenge
	// request. Empty for the smart-account flow, where the exchange
	// issues an address-less challenge.
	ChallengeAddress() string

	// SignatureType is the wire code for the signature scheme.
	SignatureType() int

	// SignMessage signs an auth challenge message.
	SignMessage(message string) (string, error)

	// SignTypedData signs an EIP-712 typed-data payload.
	SignTypedData(td apitypes.TypedData) (string, error)
}

// ParseKey parses a hex private key, tolerating a 0x prefix and
// surrounding whitespace.
func ParseKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimSpace(hexKey)
	hexKey = strings.TrimPrefix(hexKey, "0x")

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

// ForAccount builds the appropriate signer variant for a managed account.
func ForAccount(acct *types.Account) (Signer, error) {
	if acct.SmartAccount != "" {
		return NewSmartAccountSigner(acct.PrivateKey, acct.SmartAccount)
	}
	return NewEOASigner(acct.PrivateKey)
}

// signHash signs a 32-byte hash and returns a 0x-prefixed hex signature
// with the recovery id adjusted to the Ethereum convention (27/28).
func signHash(key *ecdsa.PrivateKey, hash []byte, op string) (string, error) {
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return "", &types.SigningError{Op: op, Err: err}
	}

	if sig[64] < 27 {
		sig[64] += 27
	}

	return hexutil.Encode(sig), nil
}

// signPersonal signs message under the EIP-191 personal-message scheme.
func signPersonal(key *ecdsa.PrivateKey, message string) (string, error) {
	hash := accounts.TextHash([]byte(message))
	return signHash(key, hash, "personal message")
}

// signTypedData hashes an EIP-712 payload and signs it. Encoding is
// deterministic: identical field values always produce identical hashes.
func signTypedData(key *ecdsa.PrivateKey, td apitypes.TypedData) (string, error) {
	domainSeparator, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return "", &types.SigningError{Op: "hash domain", Err: err}
	}

	typedDataHash, err := td.HashStruct(td.PrimaryType, td.Message)
	if err != nil {
		return "", &types.SigningError{Op: "hash message", Err: err}
	}

	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(typedDataHash)))
	hash := crypto.Keccak256Hash(rawData)

	return signHash(key, hash.Bytes(), "typed data")
}
