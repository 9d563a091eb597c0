// Envelope wire format: a schema-version-tagged Encode/Decode pair,
// production binary plus a debug JSON variant.
package fact

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// SchemaVersion is the wire schema version for FactEnvelope.
type SchemaVersion uint16

// CurrentSchemaVersion is the only version this build encodes.
const CurrentSchemaVersion SchemaVersion = 1

// FactEnvelope is the typed wire form of a Fact: (schema_version,
// type_id, context_id_or_null, payload_bytes).
type FactEnvelope struct {
	SchemaVersion SchemaVersion
	Type          TypeID
	ContextID     []byte // nil for authority-scoped facts
	Payload       []byte
}

// ErrUnsupportedSchema is returned when decoding an envelope whose
// schema version this build does not understand.
var ErrUnsupportedSchema = fmt.Errorf("fact: unsupported schema version")

// Codec encodes/decodes FactEnvelopes. Production format is
// length-prefixed binary; JSON is accepted only for debugging.
type Codec interface {
	Encode(FactEnvelope) ([]byte, error)
	Decode([]byte) (FactEnvelope, error)
}

// BinaryCodec is the production wire codec: a fixed, length-prefixed
// binary layout. No floating point, no reflection, fully deterministic.
type BinaryCodec struct{}

func (BinaryCodec) Encode(e FactEnvelope) ([]byte, error) {
	if e.SchemaVersion != CurrentSchemaVersion {
		return nil, ErrUnsupportedSchema
	}
	buf := make([]byte, 0, 2+16+4+len(e.ContextID)+4+len(e.Payload))
	var versionBuf [2]byte
	binary.BigEndian.PutUint16(versionBuf[:], uint16(e.SchemaVersion))
	buf = append(buf, versionBuf[:]...)
	buf = append(buf, e.Type[:]...)
	buf = appendLengthPrefixed(buf, e.ContextID)
	buf = appendLengthPrefixed(buf, e.Payload)
	return buf, nil
}

func (BinaryCodec) Decode(data []byte) (FactEnvelope, error) {
	if len(data) < 2+16 {
		return FactEnvelope{}, ErrMalformed
	}
	var e FactEnvelope
	e.SchemaVersion = SchemaVersion(binary.BigEndian.Uint16(data[:2]))
	if e.SchemaVersion != CurrentSchemaVersion {
		return FactEnvelope{}, ErrUnsupportedSchema
	}
	copy(e.Type[:], data[2:18])
	rest := data[18:]

	ctxID, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return FactEnvelope{}, err
	}
	if len(ctxID) > 0 {
		e.ContextID = ctxID
	}

	payload, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return FactEnvelope{}, err
	}
	if len(rest) != 0 {
		return FactEnvelope{}, ErrMalformed
	}
	e.Payload = payload
	return e, nil
}

func appendLengthPrefixed(buf, data []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, data...)
}

func readLengthPrefixed(data []byte) (chunk, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, ErrMalformed
	}
	n := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	if uint32(len(data)) < n {
		return nil, nil, ErrMalformed
	}
	return data[:n], data[n:], nil
}

// DebugJSONCodec is the JSON debug encoding. It is compiled into every
// build; nothing here restricts it to debug builds.
type DebugJSONCodec struct{}

func (DebugJSONCodec) Encode(e FactEnvelope) ([]byte, error) { return json.Marshal(e) }

func (DebugJSONCodec) Decode(data []byte) (FactEnvelope, error) {
	var e FactEnvelope
	if err := json.Unmarshal(data, &e); err != nil {
		return FactEnvelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return e, nil
}
