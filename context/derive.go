// Package context implements relational-context isolation and
// deterministic key derivation: each ContextId owns its own journal
// namespace, and DerivedKey(R, a, ℓ) is a PRF over a root key, an
// application id, and a context label.
package context

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/auranet/aura/ids"
)

// ErrDerivationFailed wraps an underlying HKDF read failure, which can
// only happen if more output is requested than HKDF-SHA256 can provide.
var ErrDerivationFailed = errors.New("context: key derivation failed")

// DerivedKey computes DerivedKey(root, appID, label) via HKDF-SHA256,
// with appID and label length-prefixed into the HKDF info parameter:
// distinct (appID, label) pairs can never collide by concatenation
// ambiguity.
func DerivedKey(root []byte, appID string, label string, length int) ([]byte, error) {
	info := encodeInfo(appID, label)
	r := hkdf.New(sha256.New, root, nil, info)
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, ErrDerivationFailed
	}
	return out, nil
}

func encodeInfo(appID, label string) []byte {
	buf := make([]byte, 0, len(appID)+len(label)+8)
	buf = appendLP(buf, []byte(appID))
	buf = appendLP(buf, []byte(label))
	return buf
}

func appendLP(buf []byte, b []byte) []byte {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(b)))
	buf = append(buf, length[:]...)
	return append(buf, b...)
}

// DerivedKeyFor is a convenience wrapper keying the derivation on a
// ContextId rather than a raw label string.
func DerivedKeyFor(root []byte, appID string, ctx ids.ContextId, length int) ([]byte, error) {
	return DerivedKey(root, appID, ctx.String(), length)
}
