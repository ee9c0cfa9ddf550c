package types

import "time"

// Account is a managed trading credential. PrivateKey is the signing key
// (hex, 0x-optional). SmartAccount, when set, is the deposit address of a
// smart-account wallet that differs from the key's own address; orders and
// auth then present the smart account as the signer identity.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	PrivateKey   string    `json:"-"`
	SmartAccount string    `json:"smart_account,omitempty"`
	APIKey       string    `json:"-"`
	ProxyURL     string    `json:"-"`
	Active       bool      `json:"active"`
	Tags         []string  `json:"tags"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SignerAddress is the identity presented to the exchange: the smart
// account when configured, otherwise the key's own address.
func (a *Account) SignerAddress() string {
	if a.SmartAccount != "" {
		return a.SmartAccount
	}
	return a.Address
}
