package journal_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auranet/aura/fact"
	"github.com/auranet/aura/ids"
	"github.com/auranet/aura/journal"
)

func mkAttestedFact(origin ids.AuthorityId, seq uint64, kind string) fact.Fact {
	return fact.Fact{
		Order:   fact.OrderTime{Epoch: 1, Origin: origin, Seq: seq},
		Content: fact.AttestedOp{OpKind: kind, AuthorID: origin, Payload: []byte(kind)},
	}
}

func TestJoinCommutativeAssociativeIdempotent(t *testing.T) {
	origin := ids.NewAuthorityId()
	ns := journal.OfAuthority(origin)

	a := journal.New(ns)
	require.NoError(t, a.AddFact(mkAttestedFact(origin, 1, "device-add")))
	b := journal.New(ns)
	require.NoError(t, b.AddFact(mkAttestedFact(origin, 2, "key-rotate")))
	c := journal.New(ns)
	require.NoError(t, c.AddFact(mkAttestedFact(origin, 3, "guardian-bind")))

	ab, err := journal.Join(a, b)
	require.NoError(t, err)
	ba, err := journal.Join(b, a)
	require.NoError(t, err)
	require.ElementsMatch(t, ab.Facts(), ba.Facts())

	left, err := journal.Join(ab, c)
	require.NoError(t, err)
	bc, err := journal.Join(b, c)
	require.NoError(t, err)
	right, err := journal.Join(a, bc)
	require.NoError(t, err)
	require.ElementsMatch(t, left.Facts(), right.Facts())

	idem, err := journal.Join(a, a)
	require.NoError(t, err)
	require.Len(t, idem.Facts(), 1)
}

func TestJoinRejectsMismatchedNamespace(t *testing.T) {
	a := journal.New(journal.OfAuthority(ids.NewAuthorityId()))
	b := journal.New(journal.OfAuthority(ids.NewAuthorityId()))
	_, err := journal.Join(a, b)
	require.ErrorIs(t, err, journal.ErrNamespaceMismatch)
}

func TestDuplicateFactAbsorbed(t *testing.T) {
	origin := ids.NewAuthorityId()
	j := journal.New(journal.OfAuthority(origin))
	f := mkAttestedFact(origin, 1, "device-add")
	require.NoError(t, j.AddFact(f))
	require.NoError(t, j.AddFact(f))
	require.Equal(t, 1, j.Len())
}

func TestReduceOrderIndependentOfInsertionOrder(t *testing.T) {
	origin := ids.NewAuthorityId()
	facts := []fact.Fact{
		mkAttestedFact(origin, 1, "device-add"),
		mkAttestedFact(origin, 2, "key-rotate"),
		mkAttestedFact(origin, 3, "key-rotate"),
	}

	perm1 := journal.New(journal.OfAuthority(origin))
	perm2 := journal.New(journal.OfAuthority(origin))

	order1 := append([]fact.Fact{}, facts...)
	order2 := append([]fact.Fact{}, facts...)
	rand.Shuffle(len(order2), func(i, k int) { order2[i], order2[k] = order2[k], order2[i] })

	for _, f := range order1 {
		require.NoError(t, perm1.AddFact(f))
	}
	for _, f := range order2 {
		require.NoError(t, perm2.AddFact(f))
	}

	s1 := journal.ReduceAuthority(perm1)
	s2 := journal.ReduceAuthority(perm2)
	require.Equal(t, s1.RotationEpoch, s2.RotationEpoch)
	require.Equal(t, s1.RootCommitment, s2.RootCommitment)
}

func TestEmptyJournalReducesToIdentity(t *testing.T) {
	j := journal.New(journal.OfAuthority(ids.NewAuthorityId()))
	s := journal.ReduceAuthority(j)
	require.Empty(t, s.Devices)
	require.Zero(t, s.RotationEpoch)
}

func TestReduceContextUnknownDomainTypeSkipped(t *testing.T) {
	ctxID := ids.NewContextId()
	ns := journal.OfContext(ctxID)
	j := journal.New(ns)
	origin := ids.NewAuthorityId()
	unknown := fact.TypeID{0xAA}
	require.NoError(t, j.AddFact(fact.Fact{
		Order:   fact.OrderTime{Epoch: 1, Origin: origin, Seq: 1},
		Content: fact.Relational{Context: ctxID, RelType: unknown, Payload: []byte("x")},
	}))

	reg := journal.NewRegistry()
	state, err := reg.ReduceContext(j)
	require.NoError(t, err)
	require.Empty(t, state.Bindings)
}

type fixedReducer struct {
	t   fact.TypeID
	key string
}

func (f fixedReducer) TypeID() fact.TypeID { return f.t }
func (f fixedReducer) Reduce(r fact.Relational) (string, journal.RelationalBinding, error) {
	return f.key, string(r.Payload), nil
}

func TestReduceContextFatalOnUnregisteredProtocolType(t *testing.T) {
	ctxID := ids.NewContextId()
	ns := journal.OfContext(ctxID)
	j := journal.New(ns)
	origin := ids.NewAuthorityId()
	protoType := fact.TypeID{0xBB}
	require.NoError(t, j.AddFact(fact.Fact{
		Order:   fact.OrderTime{Epoch: 1, Origin: origin, Seq: 1},
		Content: fact.Relational{Context: ctxID, RelType: protoType, Payload: []byte("x")},
	}))

	reg := journal.NewRegistry()
	reg.MarkProtocol(protoType)
	_, err := reg.ReduceContext(j)
	require.Error(t, err)
	var target journal.ErrUnregisteredProtocolType
	require.ErrorAs(t, err, &target)
}

func TestReduceContextCollisionTieBreak(t *testing.T) {
	ctxID := ids.NewContextId()
	ns := journal.OfContext(ctxID)
	j := journal.New(ns)
	origin := ids.NewAuthorityId()

	t1 := fact.TypeID{0x01}
	t2 := fact.TypeID{0x02}
	require.NoError(t, j.AddFact(fact.Fact{
		Order:   fact.OrderTime{Epoch: 1, Origin: origin, Seq: 1},
		Content: fact.Relational{Context: ctxID, RelType: t1, Payload: []byte("from-t1")},
	}))
	require.NoError(t, j.AddFact(fact.Fact{
		Order:   fact.OrderTime{Epoch: 1, Origin: origin, Seq: 2},
		Content: fact.Relational{Context: ctxID, RelType: t2, Payload: []byte("from-t2")},
	}))

	reg := journal.NewRegistry()
	reg.Register(fixedReducer{t: t1, key: "shared"})
	reg.Register(fixedReducer{t: t2, key: "shared"})

	_, err := reg.ReduceContext(j)
	require.Error(t, err)

	reg.WithKeyTieBreak(true)
	state, err := reg.ReduceContext(j)
	require.NoError(t, err)
	require.Equal(t, "from-t1", state.Bindings["shared"])
}
