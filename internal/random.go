package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
)

// NewOTP returns a uniformly random numeric code of exactly digits length
// with no leading zero, e.g. 1000..9999 for 4 digits.
func NewOTP(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", errors.New("invalid otp digits")
	}

	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}
	span := big.NewInt(9 * low)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(low+n.Int64(), 10), nil
}
