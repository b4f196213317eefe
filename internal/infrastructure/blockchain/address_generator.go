package blockchain

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

var readNonce = func(b []byte) error {
	_, err := rand.Read(b)
	return err
}

// AddressGenerator derives deposit addresses for new wallets.
// Custody of the matching keys lives outside this service.
type AddressGenerator struct {
	salt string
}

// NewAddressGenerator creates a generator. The salt namespaces addresses per deployment.
func NewAddressGenerator(salt string) *AddressGenerator {
	return &AddressGenerator{salt: salt}
}

// DepositAddress returns an EIP-55 checksummed address from keccak256(salt|user|currency|nonce)
func (g *AddressGenerator) DepositAddress(userID uuid.UUID, currency string) (string, error) {
	nonce := make([]byte, 16)
	if err := readNonce(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	seed := strings.Join([]string{g.salt, userID.String(), strings.ToUpper(currency)}, "|")
	hash := crypto.Keccak256([]byte(seed), nonce)
	return common.BytesToAddress(hash[12:]).Hex(), nil
}

// IsValidAddress reports whether s is a well-formed hex address
func IsValidAddress(s string) bool {
	return common.IsHexAddress(s)
}
