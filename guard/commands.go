package guard

import "github.com/auranet/aura/ids"

// EffectCommand is the taxonomy of minimal primitives guards emit for
// the async EffectInterpreter to execute (package effect). Commands are
// data, never closures: that is what lets the same guard chain run
// unmodified in WASM, in deterministic simulation, and in production.
type EffectCommand interface {
	isEffectCommand()
}

// ChargeBudget decrements the (ctx, peer) flow budget by amount and
// returns a receipt.
type ChargeBudget struct {
	Context ids.ContextId
	Peer    ids.AuthorityId
	Amount  int64
}

// AppendJournal carries a fact to append to a namespace's journal.
type AppendJournal struct {
	Namespace NamespaceRef
	FactBytes []byte // canonical-encoded fact.Fact, opaque to the guard chain
}

// NamespaceRef is the guard-chain-visible reference to a journal
// namespace (avoids importing package journal from package guard, which
// would invert the intended dependency order between the two).
type NamespaceRef struct {
	IsContext bool
	Authority ids.AuthorityId
	Context   ids.ContextId
}

// RecordLeakage records the number of bits of information leaked by a
// send, for audit.
type RecordLeakage struct {
	Bits int
}

// StoreMetadata stores a key/value pair in the host's metadata store.
type StoreMetadata struct {
	Key   string
	Value []byte
}

// SendEnvelope is the last command in a successful chain: the actual
// network send.
type SendEnvelope struct {
	Context ids.ContextId
	Payload []byte
}

// GenerateNonce asks the interpreter for fresh randomness: the
// simulation interpreter draws it from its seeded stream, the production
// interpreter from crypto/rand (guards themselves never call an RNG
// directly).
type GenerateNonce struct {
	Purpose string
	Bytes   int
}

func (ChargeBudget) isEffectCommand()   {}
func (AppendJournal) isEffectCommand()  {}
func (RecordLeakage) isEffectCommand()  {}
func (StoreMetadata) isEffectCommand()  {}
func (SendEnvelope) isEffectCommand()   {}
func (GenerateNonce) isEffectCommand()  {}
