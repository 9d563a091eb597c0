package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auranet/aura/clock"
	"github.com/auranet/aura/fact"
	"github.com/auranet/aura/ids"
	"github.com/auranet/aura/journal"
	"github.com/auranet/aura/storage"
)

func TestFileDBPutGetDelete(t *testing.T) {
	db := storage.NewFileDB(t.TempDir())

	_, err := db.Get("missing")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, db.Put("k", []byte("v")))
	got, err := db.Get("k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)

	has, err := db.Has("k")
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, db.Delete("k"))
	has, err = db.Has("k")
	require.NoError(t, err)
	require.False(t, has)
}

func TestFileDBBatchAppliesAllOps(t *testing.T) {
	db := storage.NewFileDB(t.TempDir())
	b := db.NewBatch()
	require.NoError(t, b.Put("a", []byte("1")))
	require.NoError(t, b.Put("b", []byte("2")))
	require.Equal(t, 2, b.Size())
	require.NoError(t, b.Write())

	got, err := db.Get("a")
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)
}

var factOrigin = ids.NewAuthorityId()

func authorityFact(seq uint64) fact.Fact {
	return fact.Fact{
		Order: fact.OrderTime{Epoch: 1, Origin: factOrigin, Seq: seq},
		Timestamp: clock.TimeStamp{Logical: seq, OrderClock: seq},
		Content: fact.AttestedOp{
			OpKind:   "device-add",
			AuthorID: ids.NewAuthorityId(),
			Payload:  []byte("payload"),
		},
	}
}

func TestJournalStoreAppendAndLoadRoundTrip(t *testing.T) {
	db := storage.NewFileDB(t.TempDir())
	store := storage.NewJournalStore(db)
	ns := journal.OfAuthority(ids.NewAuthorityId())

	f1 := authorityFact(1)
	f2 := authorityFact(2)
	require.NoError(t, store.AppendFact(ns, f1))
	require.NoError(t, store.AppendFact(ns, f2))

	loaded, err := store.Load(ns)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Len())

	facts := loaded.Facts()
	require.Equal(t, f1.Order, facts[0].Order)
	require.Equal(t, f2.Order, facts[1].Order)
}

func TestJournalStoreRoundTripReducesAfterReload(t *testing.T) {
	db := storage.NewFileDB(t.TempDir())
	store := storage.NewJournalStore(db)
	authority := ids.NewAuthorityId()
	ns := journal.OfAuthority(authority)

	rotate := fact.Fact{
		Order:     fact.OrderTime{Epoch: 1, Origin: authority, Seq: 1},
		Timestamp: clock.TimeStamp{Logical: 1},
		Content:   fact.AttestedOp{OpKind: "key-rotate", AuthorID: authority, Payload: []byte("p")},
	}
	require.NoError(t, store.AppendFact(ns, rotate))

	loaded, err := store.Load(ns)
	require.NoError(t, err)
	require.Equal(t, uint64(1), journal.ReduceAuthority(loaded).RotationEpoch)

	reloaded, err := store.Load(ns)
	require.NoError(t, err)
	require.Equal(t, uint64(1), journal.ReduceAuthority(reloaded).RotationEpoch)
}

func TestJournalStoreRoundTripPreservesRelationalReduction(t *testing.T) {
	db := storage.NewFileDB(t.TempDir())
	store := storage.NewJournalStore(db)
	ctxID := ids.NewContextId()
	ns := journal.OfContext(ctxID)

	relType := fact.TypeID{0x42}
	f := fact.Fact{
		Order:     fact.OrderTime{Epoch: 1, Origin: ids.NewAuthorityId(), Seq: 1},
		Timestamp: clock.TimeStamp{Logical: 1},
		Content:   fact.Relational{Context: ctxID, RelType: relType, Payload: []byte("value")},
	}
	require.NoError(t, store.AppendFact(ns, f))

	reloaded, err := store.Load(ns)
	require.NoError(t, err)

	reg := journal.NewRegistry()
	reg.Register(recordingReducer{t: relType})
	state, err := reg.ReduceContext(reloaded)
	require.NoError(t, err)
	require.Equal(t, "value", state.Bindings["recorded"])
}

type recordingReducer struct{ t fact.TypeID }

func (r recordingReducer) TypeID() fact.TypeID { return r.t }
func (r recordingReducer) Reduce(rel fact.Relational) (string, journal.RelationalBinding, error) {
	return "recorded", string(rel.Payload), nil
}

func TestMaybeSnapshotCompactsSegment(t *testing.T) {
	db := storage.NewFileDB(t.TempDir())
	store := storage.NewJournalStore(db)
	ns := journal.OfAuthority(ids.NewAuthorityId())

	f1 := authorityFact(1)
	f2 := authorityFact(2)
	require.NoError(t, store.AppendFact(ns, f1))
	require.NoError(t, store.AppendFact(ns, f2))

	loaded, err := store.Load(ns)
	require.NoError(t, err)

	took, err := store.MaybeSnapshot(ns, loaded, f2.Order, []byte("reduced-state"), 2, clock.TimeStamp{})
	require.NoError(t, err)
	require.True(t, took)

	reloaded, err := store.Load(ns)
	require.NoError(t, err)
	// The snapshot fact itself now accounts for the one entry; the
	// compacted segment contributes nothing further.
	require.Equal(t, 1, reloaded.Len())
}

func TestMaybeSnapshotSkipsBelowThreshold(t *testing.T) {
	db := storage.NewFileDB(t.TempDir())
	store := storage.NewJournalStore(db)
	ns := journal.OfAuthority(ids.NewAuthorityId())

	f1 := authorityFact(1)
	require.NoError(t, store.AppendFact(ns, f1))
	loaded, err := store.Load(ns)
	require.NoError(t, err)

	took, err := store.MaybeSnapshot(ns, loaded, f1.Order, []byte("x"), 5, clock.TimeStamp{})
	require.NoError(t, err)
	require.False(t, took)
}
