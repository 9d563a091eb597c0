// Package authz implements the two complementary authorization modes
// combined by meet: a cached local capability lattice, and a
// cryptographically signed, attenuable Biscuit-style token chain.
//
// The delegation chain generalizes composable threshold/weight
// aggregation (as used for validator weights) to capability-lattice
// meet, verified here with ed25519 signatures over each link.
package authz

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/auranet/aura/cap"
)

var (
	ErrProvenanceMismatch = errors.New("authz: provenance mismatch")
	ErrExpiredToken       = errors.New("authz: expired token")
	ErrInsufficientScope  = errors.New("authz: insufficient scope")
	ErrDepthExceeded      = errors.New("authz: delegation depth exceeded")
)

// Block is a single attenuation block in a Biscuit-style delegation
// chain: it can only further constrain the capability it inherits.
type Block struct {
	Caveat    cap.Cap
	Signature []byte
	PublicKey ed25519.PublicKey
	// SignedOver is the canonical bytes this block's signature covers:
	// the caveat plus the previous block's signature, chaining the
	// blocks together.
	SignedOver []byte
}

// Token is a signed, attenuable capability delegation chain rooted at an
// authority's root key.
type Token struct {
	Root   ed25519.PublicKey
	Blocks []Block
	// DelegationDepth bounds the chain length via an explicit caveat.
	DelegationDepth int
}

// VerifySignatureChain checks every block's signature in order against
// the authority root key (the first block is signed by Root; every
// later block chains from the previous block's signature).
func VerifySignatureChain(t Token) error {
	if len(t.Blocks) == 0 {
		return nil
	}
	if t.DelegationDepth > 0 && len(t.Blocks) > t.DelegationDepth {
		return ErrDepthExceeded
	}
	signer := t.Root
	var prevSig []byte
	for i, b := range t.Blocks {
		if i > 0 && len(b.PublicKey) != 0 {
			// Intermediate blocks may carry their own key if the chain
			// delegates to a different signer; each link is verified
			// explicitly rather than folded into one aggregate check.
			signer = b.PublicKey
		}
		signedOver := append(append([]byte{}, prevSig...), encodeCap(b.Caveat)...)
		if !ed25519.Verify(signer, signedOver, b.Signature) {
			return fmt.Errorf("%w: block %d", ErrProvenanceMismatch, i)
		}
		prevSig = b.Signature
	}
	return nil
}

// capFromToken folds every block's caveat by meet, starting from Top:
// attenuation never widens.
func capFromToken(t Token) cap.Cap {
	c := cap.Top
	for _, b := range t.Blocks {
		c = cap.Meet(c, b.Caveat)
	}
	return c
}

// Attenuate appends a new constraint block to the token, signed by
// signer, whose private counterpart must correspond to a PublicKey
// already trusted by the preceding block (or Root, for the first
// block). The resulting token's capability is monotone non-increasing.
func Attenuate(t Token, constraint cap.Cap, signer ed25519.PrivateKey) Token {
	var prevSig []byte
	if len(t.Blocks) > 0 {
		prevSig = t.Blocks[len(t.Blocks)-1].Signature
	}
	signedOver := append(append([]byte{}, prevSig...), encodeCap(constraint)...)
	sig := ed25519.Sign(signer, signedOver)
	out := t
	out.Blocks = append(append([]Block{}, t.Blocks...), Block{
		Caveat:     constraint,
		Signature:  sig,
		PublicKey:  signer.Public().(ed25519.PublicKey),
		SignedOver: signedOver,
	})
	return out
}

func encodeCap(c cap.Cap) []byte {
	var buf []byte
	for _, p := range c.Permissions() {
		buf = append(buf, []byte(p.Verb+":"+p.Path+";")...)
	}
	return buf
}
