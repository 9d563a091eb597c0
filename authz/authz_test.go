package authz_test

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/auranet/aura/authz"
	"github.com/auranet/aura/cap"
)

func TestEvaluateAuthorizedOnMatchingScope(t *testing.T) {
	rootPub, rootPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	token := authz.Attenuate(authz.Token{DelegationDepth: 5}, cap.New(cap.Permission{Verb: "read", Path: "path/*"}), rootPriv)

	verdict := authz.Evaluate(token, cap.New(cap.Permission{Verb: "read", Path: "path/a"}), cap.Top, cap.Top, rootPub, time.Now().Add(time.Hour), time.Now())
	require.True(t, verdict.Authorized)
}

func TestEvaluateDeniedOnWiderPredicate(t *testing.T) {
	rootPub, rootPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	token := authz.Attenuate(authz.Token{DelegationDepth: 5}, cap.New(cap.Permission{Verb: "read", Path: "path/a"}), rootPriv)

	verdict := authz.Evaluate(token, cap.New(cap.Permission{Verb: "write", Path: "path/a"}), cap.Top, cap.Top, rootPub, time.Now().Add(time.Hour), time.Now())
	require.False(t, verdict.Authorized)
	require.ErrorIs(t, verdict.Denial.Err, authz.ErrInsufficientScope)
	require.Equal(t, "authorization failed", verdict.Denial.Reason)
}

func TestEvaluateDeniedOnExpiry(t *testing.T) {
	rootPub, rootPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	token := authz.Attenuate(authz.Token{}, cap.Top, rootPriv)

	verdict := authz.Evaluate(token, cap.Top, cap.Top, cap.Top, rootPub, time.Now().Add(-time.Hour), time.Now())
	require.False(t, verdict.Authorized)
	require.ErrorIs(t, verdict.Denial.Err, authz.ErrExpiredToken)
}

func TestEvaluateDeniedOnWrongRoot(t *testing.T) {
	_, rootPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	wrongPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	token := authz.Attenuate(authz.Token{}, cap.Top, rootPriv)

	verdict := authz.Evaluate(token, cap.Top, cap.Top, cap.Top, wrongPub, time.Now().Add(time.Hour), time.Now())
	require.False(t, verdict.Authorized)
	require.ErrorIs(t, verdict.Denial.Err, authz.ErrProvenanceMismatch)
}

func TestAttenuationMonotoneNonIncreasing(t *testing.T) {
	_, rootPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	broad := authz.Attenuate(authz.Token{}, cap.New(cap.Permission{Verb: "read", Path: "path/*"}), rootPriv)
	narrow := authz.Attenuate(broad, cap.New(cap.Permission{Verb: "read", Path: "path/a"}), rootPriv)

	require.NoError(t, authz.VerifySignatureChain(withRoot(broad, rootPriv)))
	require.NoError(t, authz.VerifySignatureChain(withRoot(narrow, rootPriv)))
}

func withRoot(t authz.Token, priv ed25519.PrivateKey) authz.Token {
	t.Root = priv.Public().(ed25519.PublicKey)
	return t
}

func TestDepthExceeded(t *testing.T) {
	_, rootPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	token := authz.Token{DelegationDepth: 1}
	token = authz.Attenuate(token, cap.Top, rootPriv)
	token = authz.Attenuate(token, cap.Top, rootPriv)
	token.Root = rootPriv.Public().(ed25519.PublicKey)

	err = authz.VerifySignatureChain(token)
	require.ErrorIs(t, err, authz.ErrDepthExceeded)
}

func TestCacheInvalidatesOnBump(t *testing.T) {
	c := authz.NewCache()
	c.Put("ctx", "pred", cap.Top)
	_, ok := c.Get("ctx", "pred")
	require.True(t, ok)

	c.Bump()
	_, ok = c.Get("ctx", "pred")
	require.False(t, ok)
}
