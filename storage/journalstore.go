package storage

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/auranet/aura/clock"
	"github.com/auranet/aura/fact"
	"github.com/auranet/aura/ids"
	"github.com/auranet/aura/journal"
)

// JournalStore persists one Journal per namespace as an ordered log
// segment plus a snapshot file. AppendFact is durable immediately;
// MaybeSnapshot compacts the segment once enough facts have
// accumulated since the last snapshot.
//
// Each on-disk record wraps a fact.FactEnvelope (the production
// wire-format codec) with the OrderTime and TimeStamp the wire envelope
// itself does not carry, so reduction order survives a reload.
type JournalStore struct {
	db    Database
	codec fact.Codec
}

// NewJournalStore wraps db with the production binary envelope codec.
func NewJournalStore(db Database) *JournalStore {
	return &JournalStore{db: db, codec: fact.BinaryCodec{}}
}

func segmentKey(ns journal.Namespace) string  { return ns.Key() + "/segment.log" }
func snapshotKey(ns journal.Namespace) string { return ns.Key() + "/snapshot.bin" }

// AppendFact durably appends f to ns's log segment.
func (s *JournalStore) AppendFact(ns journal.Namespace, f fact.Fact) error {
	record, err := s.encodeRecord(f)
	if err != nil {
		return err
	}

	existing, err := s.db.Get(segmentKey(ns))
	if err != nil && err != ErrNotFound {
		return err
	}
	return s.db.Put(segmentKey(ns), append(existing, record...))
}

// Load reconstructs ns's journal from its snapshot (if any) plus every
// fact appended to the segment since.
func (s *JournalStore) Load(ns journal.Namespace) (*journal.Journal, error) {
	j := journal.New(ns)

	if snap, err := s.db.Get(snapshotKey(ns)); err == nil {
		f, _, decodeErr := s.decodeRecord(snap)
		if decodeErr != nil {
			return nil, decodeErr
		}
		if err := j.AddFact(f); err != nil {
			return nil, err
		}
	} else if err != ErrNotFound {
		return nil, err
	}

	segment, err := s.db.Get(segmentKey(ns))
	if err != nil {
		if err == ErrNotFound {
			return j, nil
		}
		return nil, err
	}

	for len(segment) > 0 {
		f, rest, err := s.decodeRecord(segment)
		if err != nil {
			return nil, err
		}
		if err := j.AddFact(f); err != nil {
			return nil, err
		}
		segment = rest
	}
	return j, nil
}

// MaybeSnapshot writes a compacted snapshot of j if the number of facts
// accumulated since the namespace's last snapshot reaches threshold,
// then truncates the segment to empty (the snapshot now subsumes
// everything compacted).
func (s *JournalStore) MaybeSnapshot(ns journal.Namespace, j *journal.Journal, asOf fact.OrderTime, reduced []byte, threshold int, now clock.TimeStamp) (bool, error) {
	segment, err := s.db.Get(segmentKey(ns))
	if err != nil && err != ErrNotFound {
		return false, err
	}
	pending := 0
	for len(segment) > 0 {
		_, rest, err := s.decodeRecord(segment)
		if err != nil {
			return false, err
		}
		pending++
		segment = rest
	}
	if pending < threshold {
		return false, nil
	}

	snapFact := fact.Fact{
		Order:     asOf,
		Timestamp: now,
		Content: fact.Snapshot{
			AsOf:          asOf,
			ReducedState:  reduced,
			CompactedThru: uint64(j.Len()),
		},
	}
	record, err := s.encodeRecord(snapFact)
	if err != nil {
		return false, err
	}
	if err := s.db.Put(snapshotKey(ns), record); err != nil {
		return false, err
	}
	if err := s.db.Put(segmentKey(ns), nil); err != nil {
		return false, err
	}
	return true, nil
}

// encodeRecord wraps f's wire envelope with a length prefix and its
// OrderTime/TimeStamp, so multiple records concatenate into one segment
// file and still carry everything Load needs to reconstruct reduction
// order.
func (s *JournalStore) encodeRecord(f fact.Fact) ([]byte, error) {
	var contextID []byte
	if rel, ok := f.Content.(fact.Relational); ok {
		contextID = rel.Context.Bytes()
	}
	env := fact.FactEnvelope{
		SchemaVersion: fact.CurrentSchemaVersion,
		Type:          f.Content.TypeID(),
		ContextID:     contextID,
		Payload:       f.Content.Encode(),
	}
	envBytes, err := s.codec.Encode(env)
	if err != nil {
		return nil, fmt.Errorf("storage: encode fact: %w", err)
	}

	header := make([]byte, 8+16+8+8+8+8)
	binary.BigEndian.PutUint64(header[0:8], f.Order.Epoch)
	copy(header[8:24], f.Order.Origin.Bytes())
	binary.BigEndian.PutUint64(header[24:32], f.Order.Seq)
	binary.BigEndian.PutUint64(header[32:40], f.Timestamp.Logical)
	binary.BigEndian.PutUint64(header[40:48], f.Timestamp.OrderClock)
	binary.BigEndian.PutUint64(header[48:56], uint64(f.Timestamp.Wall.UnixNano()))

	var recordLen [4]byte
	binary.BigEndian.PutUint32(recordLen[:], uint32(len(header)+len(envBytes)))

	out := make([]byte, 0, 4+len(header)+len(envBytes))
	out = append(out, recordLen[:]...)
	out = append(out, header...)
	out = append(out, envBytes...)
	return out, nil
}

const recordHeaderSize = 8 + 16 + 8 + 8 + 8 + 8

// decodeRecord parses one length-prefixed record from the front of raw,
// returning the reconstructed Fact and the unconsumed remainder.
//
// The wire envelope's payload is handed to fact.DecodeContent, which
// reconstructs the concrete content kind (AttestedOp, Relational, ...)
// by type-id, so a fact that round-trips through a snapshot or segment
// reload still contributes to ReduceAuthority/ReduceContext exactly as
// it did before persistence. Only a type-id no registered content kind
// claims falls back to fact.Opaque, same as an unregistered domain fact
// does in memory.
func (s *JournalStore) decodeRecord(raw []byte) (fact.Fact, []byte, error) {
	if len(raw) < 4 {
		return fact.Fact{}, nil, fact.ErrMalformed
	}
	n := binary.BigEndian.Uint32(raw[:4])
	raw = raw[4:]
	if uint64(len(raw)) < uint64(n) {
		return fact.Fact{}, nil, fact.ErrMalformed
	}
	record := raw[:n]
	rest := raw[n:]

	if len(record) < recordHeaderSize {
		return fact.Fact{}, nil, fact.ErrMalformed
	}
	origin, err := ids.AuthorityIdFromBytes(record[8:24])
	if err != nil {
		return fact.Fact{}, nil, err
	}
	order := fact.OrderTime{
		Epoch:  binary.BigEndian.Uint64(record[0:8]),
		Origin: origin,
		Seq:    binary.BigEndian.Uint64(record[24:32]),
	}
	timestamp := clock.TimeStamp{
		Logical:    binary.BigEndian.Uint64(record[32:40]),
		OrderClock: binary.BigEndian.Uint64(record[40:48]),
		Wall:       time.Unix(0, int64(binary.BigEndian.Uint64(record[48:56]))).UTC(),
	}

	env, err := s.codec.Decode(record[recordHeaderSize:])
	if err != nil {
		return fact.Fact{}, nil, err
	}

	content, err := fact.DecodeContent(env.Type, env.Payload)
	if err != nil {
		return fact.Fact{}, nil, err
	}

	f := fact.Fact{
		Order:     order,
		Timestamp: timestamp,
		Content:   content,
	}
	return f, rest, nil
}
