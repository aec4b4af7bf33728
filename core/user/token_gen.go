package user

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ripemd160"
)

var NowFunc = time.Now // mockable

// MakeAuthToken generates a provenance auth token for an external id: the hex
// SHA-1 digest of id + secret + unix timestamp. This is the stored wire format
// of User.Token; do not change it without migrating existing rows.
func MakeAuthToken(id, secret string) string {
	return makeAuthTokenAt(id, secret, NowFunc())
}

func makeAuthTokenAt(id, secret string, t time.Time) string {
	sum := sha1.Sum([]byte(id + secret + strconv.FormatInt(t.Unix(), 10)))
	return hex.EncodeToString(sum[:])
}

// MakePublicKey derives a short public user id from an auth token.
func MakePublicKey(token string) string {
	if len(token) > 12 {
		return token[:12]
	}
	return token
}

// MakeTestKey derives a TestUser invitation key: the hex RIPEMD-160 digest of
// email + timestamp, reduced to every third character (indexes 0, 3, 6, ...).
func MakeTestKey(email string) string {
	return makeTestKeyAt(email, NowFunc())
}

func makeTestKeyAt(email string, t time.Time) string {
	h := ripemd160.New()
	h.Write([]byte(email + strconv.FormatInt(t.Unix(), 10)))
	return everyThird(hex.EncodeToString(h.Sum(nil)))
}

func everyThird(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i += 3 {
		b.WriteByte(s[i])
	}
	return b.String()
}
