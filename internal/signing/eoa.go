package signing

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/mselser95/predict-account/pkg/types"
)

// EOASigner signs with a plain externally-owned key. The key's own address
// is the exchange identity.
type EOASigner struct {
	key     *ecdsa.PrivateKey
	address string
}

// NewEOASigner creates an EOA signer from a hex private key.
func NewEOASigner(privateKeyHex string) (*EOASigner, error) {
	key, err := ParseKey(privateKeyHex)
	if err != nil {
		return nil, err
	}

	return &EOASigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}, nil
}

// Address returns the key's own address.
func (s *EOASigner) Address() string { return s.address }

// ChallengeAddress returns the address to request a challenge for.
func (s *EOASigner) ChallengeAddress() string { return s.address }

// SignatureType returns the EOA scheme code.
func (s *EOASigner) SignatureType() int { return types.SignatureTypeEOA }

// SignMessage signs an auth challenge under the personal-message scheme.
func (s *EOASigner) SignMessage(message string) (string, error) {
	return signPersonal(s.key, message)
}

// SignTypedData signs an EIP-712 order payload.
func (s *EOASigner) SignTypedData(td apitypes.TypedData) (string, error) {
	return signTypedData(s.key, td)
}
