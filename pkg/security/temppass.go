package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const tempPasswordPrefix = "Clave"

// GenerateTempPassword produces a short operator-readable secret: a fixed
// word plus four random digits. It is meant to be relayed verbally once and
// replaced on first login, so low entropy is intentional.
func GenerateTempPassword() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(fmt.Sprintf("security: rand failed: %v", err))
	}
	return fmt.Sprintf("%s%d", tempPasswordPrefix, 1000+n.Int64())
}
