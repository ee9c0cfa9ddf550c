package signing

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/mselser95/predict-account/pkg/types"
)

// Throwaway key used across tests. Never funded.
const testKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

// Address derived from testKey.
const testAddress = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"

func TestNewEOASigner(t *testing.T) {
	s, err := NewEOASigner(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Address() != testAddress {
		t.Errorf("expected address %s, got %s", testAddress, s.Address())
	}

	if s.ChallengeAddress() != testAddress {
		t.Errorf("expected challenge address %s, got %s", testAddress, s.ChallengeAddress())
	}

	if s.SignatureType() != types.SignatureTypeEOA {
		t.Errorf("expected signature type %d, got %d", types.SignatureTypeEOA, s.SignatureType())
	}
}

func TestNewEOASigner_NoPrefix(t *testing.T) {
	s, err := NewEOASigner(strings.TrimPrefix(testKey, "0x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Address() != testAddress {
		t.Errorf("expected address %s, got %s", testAddress, s.Address())
	}
}

func TestNewEOASigner_BadKey(t *testing.T) {
	if _, err := NewEOASigner("not-a-key"); err == nil {
		t.Error("expected error for invalid key")
	}
}

func TestEOASigner_SignMessage(t *testing.T) {
	s, err := NewEOASigner(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sig, err := s.SignMessage("Sign this message to authenticate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(sig, "0x") {
		t.Errorf("expected 0x-prefixed signature, got %s", sig)
	}

	// 65 bytes hex encoded plus prefix.
	if len(sig) != 2+65*2 {
		t.Errorf("expected 132 chars, got %d", len(sig))
	}

	// Signing is deterministic for the same message.
	again, err := s.SignMessage("Sign this message to authenticate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != again {
		t.Error("expected deterministic signature for identical message")
	}
}

func TestSmartAccountSigner(t *testing.T) {
	account := "0x00000000000000000000000000000000DeaDBeef"

	s, err := NewSmartAccountSigner(testKey, account)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.EqualFold(s.Address(), account) {
		t.Errorf("expected smart account address %s, got %s", account, s.Address())
	}

	if s.ChallengeAddress() != "" {
		t.Errorf("expected empty challenge address, got %s", s.ChallengeAddress())
	}

	if s.SignatureType() != types.SignatureTypeSmartAccount {
		t.Errorf("expected signature type %d, got %d", types.SignatureTypeSmartAccount, s.SignatureType())
	}

	sig, err := s.SignMessage("challenge")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(sig, "0x") {
		t.Errorf("expected 0x-prefixed signature, got %s", sig)
	}
}

func TestSmartAccountSigner_BadAddress(t *testing.T) {
	if _, err := NewSmartAccountSigner(testKey, "nope"); err == nil {
		t.Error("expected error for invalid smart account address")
	}
}

func TestForAccount(t *testing.T) {
	eoa, err := ForAccount(&types.Account{PrivateKey: testKey})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := eoa.(*EOASigner); !ok {
		t.Errorf("expected EOASigner, got %T", eoa)
	}

	smart, err := ForAccount(&types.Account{
		PrivateKey:   testKey,
		SmartAccount: "0x00000000000000000000000000000000DeaDBeef",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := smart.(*SmartAccountSigner); !ok {
		t.Errorf("expected SmartAccountSigner, got %T", smart)
	}
}

func TestSignTypedData_Deterministic(t *testing.T) {
	s, err := NewEOASigner(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	td := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"Message": []apitypes.Type{
				{Name: "contents", Type: "string"},
			},
		},
		PrimaryType: "Message",
		Domain: apitypes.TypedDataDomain{
			Name:    "Test",
			Version: "1",
			ChainId: math.NewHexOrDecimal256(56),
		},
		Message: map[string]interface{}{
			"contents": "hello",
		},
	}

	first, err := s.SignTypedData(td)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := s.SignTypedData(td)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("expected identical signatures for identical typed data")
	}

	if !strings.HasPrefix(first, "0x") {
		t.Errorf("expected 0x-prefixed signature, got %s", first)
	}
}
