package utils

import (
	"crypto/rand"
	"math/big"
)

// oneTimeCharset is the alphabet for one-time codes. Uppercase plus
// digits keeps codes easy to read back from an email on a phone.
const oneTimeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewOneTimeCode generates a random code of n characters drawn from
// oneTimeCharset using crypto/rand. It is used for the
// password-reset flow where the code travels out of band (email).
func NewOneTimeCode(n int) (string, error) {
	max := big.NewInt(int64(len(oneTimeCharset)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = oneTimeCharset[idx.Int64()]
	}
	return string(buf), nil
}
