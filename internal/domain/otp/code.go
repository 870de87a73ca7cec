package otp

import (
	"crypto/rand"
	"io"
	"math/big"
	"strings"
)

// randomCode draws a code of the given number of decimal digits. Every
// value in [0, 10^digits) is equally likely, so each digit is independent.
func randomCode(r io.Reader, digits int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(r, max)
	if err != nil {
		return "", err
	}
	s := n.String()
	return strings.Repeat("0", digits-len(s)) + s, nil
}
