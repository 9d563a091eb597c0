package fact_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auranet/aura/fact"
	"github.com/auranet/aura/ids"
)

func TestOrderTimeTotalOrder(t *testing.T) {
	origin := ids.NewAuthorityId()
	a := fact.OrderTime{Epoch: 1, Origin: origin, Seq: 1}
	b := fact.OrderTime{Epoch: 1, Origin: origin, Seq: 2}
	require.True(t, a.Compare(b) < 0)
	require.True(t, b.Compare(a) > 0)
	require.Equal(t, 0, a.Compare(a))
}

func TestFactValidateRejectsNilContent(t *testing.T) {
	f := fact.Fact{}
	require.ErrorIs(t, f.Validate(), fact.ErrMalformed)
}

func TestEnvelopeRoundTripBinary(t *testing.T) {
	e := fact.FactEnvelope{
		SchemaVersion: fact.CurrentSchemaVersion,
		Type:          fact.TypeAttestedOp,
		ContextID:     nil,
		Payload:       []byte("hello"),
	}
	codec := fact.BinaryCodec{}
	raw, err := codec.Encode(e)
	require.NoError(t, err)

	decoded, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, e.SchemaVersion, decoded.SchemaVersion)
	require.Equal(t, e.Type, decoded.Type)
	require.Equal(t, e.Payload, decoded.Payload)
}

func TestEnvelopeRoundTripJSON(t *testing.T) {
	e := fact.FactEnvelope{
		SchemaVersion: fact.CurrentSchemaVersion,
		Type:          fact.TypeRelational,
		ContextID:     []byte{1, 2, 3},
		Payload:       []byte("world"),
	}
	codec := fact.DebugJSONCodec{}
	raw, err := codec.Encode(e)
	require.NoError(t, err)

	decoded, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, e, decoded)
}

func TestUnsupportedSchemaRejected(t *testing.T) {
	codec := fact.BinaryCodec{}
	_, err := codec.Encode(fact.FactEnvelope{SchemaVersion: 99})
	require.ErrorIs(t, err, fact.ErrUnsupportedSchema)
}

func TestAttestedOpEncodeDeterministic(t *testing.T) {
	op := fact.AttestedOp{OpKind: "rotate", AuthorID: ids.NewAuthorityId(), Payload: []byte("p")}
	require.Equal(t, op.Encode(), op.Encode())
}
