package redemption

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const codePrefix = "RDM"

// Crockford base32: no I, L, O, U, so codes survive being read aloud.
const codeAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const codeSuffixLen = 8

// NewCode builds a candidate redemption code from a type prefix, the
// second-resolution timestamp and a random suffix. Uniqueness is a
// verified contract, not a probabilistic one: the coordinator checks the
// candidate against the redemptions table before using it.
func NewCode(now time.Time) (string, error) {
	buf := make([]byte, codeSuffixLen)

	_, err := rand.Read(buf)
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}

	suffix := make([]byte, codeSuffixLen)
	for i, b := range buf {
		suffix[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}

	ts := strings.ToUpper(strconv.FormatInt(now.Unix(), 32))

	return fmt.Sprintf("%s-%s-%s", codePrefix, ts, string(suffix)), nil
}
