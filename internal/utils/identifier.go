package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// External identifier prefixes
const (
	ClientPrefix  = "CLT"
	CreditPrefix  = "CRD"
	SavingsPrefix = "SAV"
)

// GenerateIdentifier generates an external identifier with the given prefix
// followed by the requested number of random digits. Uniqueness is enforced
// by the caller against the store; the digit space makes collisions rare.
func GenerateIdentifier(prefix string, digits int) (string, error) {
	if digits < 1 {
		return "", fmt.Errorf("invalid identifier length: %d", digits)
	}

	var builder strings.Builder
	builder.WriteString(prefix)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		builder.WriteByte(byte(n.Int64()) + '0')
	}
	return builder.String(), nil
}

// GenerateReference generates an opaque reference for a payment or savings
// transaction record.
func GenerateReference() string {
	return uuid.NewString()
}
