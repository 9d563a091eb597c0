package context_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auranet/aura/clock"
	auracontext "github.com/auranet/aura/context"
	"github.com/auranet/aura/fact"
	"github.com/auranet/aura/ids"
	"github.com/auranet/aura/journal"
)

func TestDerivedKeyFullInjectivity(t *testing.T) {
	root1 := []byte("root-one-aaaaaaaaaaaaaaaaaaaaaaa")
	root2 := []byte("root-two-aaaaaaaaaaaaaaaaaaaaaaa")

	k1, err := auracontext.DerivedKey(root1, "app", "label", 32)
	require.NoError(t, err)
	k2, err := auracontext.DerivedKey(root2, "app", "label", 32)
	require.NoError(t, err)
	require.NotEqual(t, k1, k2)

	k3, err := auracontext.DerivedKey(root1, "appX", "Ylabel", 32)
	require.NoError(t, err)
	k4, err := auracontext.DerivedKey(root1, "app", "label", 32)
	require.NoError(t, err)
	require.NotEqual(t, k3, k4)

	// Concatenation ambiguity ("ap"+"pXYlabel" vs "appX"+"Ylabel") must
	// not collide thanks to length-prefixed info encoding.
	k5, err := auracontext.DerivedKey(root1, "ap", "pXYlabel", 32)
	require.NoError(t, err)
	require.NotEqual(t, k3, k5)
}

func TestDerivedKeyDeterministic(t *testing.T) {
	root := []byte("root-aaaaaaaaaaaaaaaaaaaaaaaaaaa")
	k1, err := auracontext.DerivedKey(root, "app", "label", 32)
	require.NoError(t, err)
	k2, err := auracontext.DerivedKey(root, "app", "label", 32)
	require.NoError(t, err)
	require.Equal(t, k1, k2)
}

func TestIsolationJournalsAreNamespaceDistinct(t *testing.T) {
	ctxA := ids.NewContextId()
	ctxB := ids.NewContextId()
	isoA := auracontext.New(journal.OfContext(ctxA))
	isoB := auracontext.New(journal.OfContext(ctxB))

	require.False(t, isoA.Namespace().Equal(isoB.Namespace()))

	_, err := journal.Join(isoA.Journal(), isoB.Journal())
	require.ErrorIs(t, err, journal.ErrNamespaceMismatch)
}

func TestBridgeRequiresAuthorization(t *testing.T) {
	ctxA := ids.NewContextId()
	ctxB := ids.NewContextId()
	isoA := auracontext.New(journal.OfContext(ctxA))
	isoB := auracontext.New(journal.OfContext(ctxB))

	b := auracontext.Bridge{Src: ctxA, Tgt: ctxB, Authorized: false}
	err := b.Journal(isoA, isoB, fact.OrderTime{}, clock.TimeStamp{}, []byte("sig"))
	require.ErrorIs(t, err, auracontext.ErrBridgeUnauthorized)
	require.Equal(t, 0, isoA.Journal().Len())
	require.Equal(t, 0, isoB.Journal().Len())
}

func TestBridgeJournalsOnBothSidesWhenAuthorized(t *testing.T) {
	ctxA := ids.NewContextId()
	ctxB := ids.NewContextId()
	isoA := auracontext.New(journal.OfContext(ctxA))
	isoB := auracontext.New(journal.OfContext(ctxB))

	b := auracontext.Bridge{Src: ctxA, Tgt: ctxB, Authorized: true}
	err := b.Journal(isoA, isoB, fact.OrderTime{Epoch: 1, Seq: 1}, clock.TimeStamp{}, []byte("sig"))
	require.NoError(t, err)
	require.Equal(t, 1, isoA.Journal().Len())
	require.Equal(t, 1, isoB.Journal().Len())
}
