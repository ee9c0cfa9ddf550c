package signing

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/mselser95/predict-account/pkg/types"
)

// SmartAccountSigner signs on behalf of a smart-account wallet: the entity
// holding funds (the account address) differs from the operator key that
// authorizes actions. The exchange sees the smart account as the signer
// identity and validates the operator signature against it on chain.
type SmartAccountSigner struct {
	key     *ecdsa.PrivateKey
	account string
}

// NewSmartAccountSigner creates a smart-account signer from the operator's
// hex private key and the smart account (deposit) address.
func NewSmartAccountSigner(privateKeyHex, accountAddress string) (*SmartAccountSigner, error) {
	if !common.IsHexAddress(accountAddress) {
		return nil, fmt.Errorf("invalid smart account address %q", accountAddress)
	}

	key, err := ParseKey(privateKeyHex)
	if err != nil {
		return nil, err
	}

	return &SmartAccountSigner{
		key:     key,
		account: common.HexToAddress(accountAddress).Hex(),
	}, nil
}

// Address returns the smart account address presented to the exchange.
func (s *SmartAccountSigner) Address() string { return s.account }

// ChallengeAddress is empty: the smart-account flow requests an
// address-less challenge and presents the account in the token exchange.
func (s *SmartAccountSigner) ChallengeAddress() string { return "" }

// SignatureType returns the smart-account scheme code.
func (s *SmartAccountSigner) SignatureType() int { return types.SignatureTypeSmartAccount }

// SignMessage signs an auth challenge with the operator key.
func (s *SmartAccountSigner) SignMessage(message string) (string, error) {
	return signPersonal(s.key, message)
}

// SignTypedData signs an EIP-712 order payload with the operator key.
func (s *SmartAccountSigner) SignTypedData(td apitypes.TypedData) (string, error) {
	return signTypedData(s.key, td)
}
