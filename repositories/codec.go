package repositories

import (
	cbor "github.com/fxamacker/cbor/v2"
)

// Badger values are encoded as deterministic CBOR (RFC 8949 core profile),
// so identical records always produce identical bytes.
var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func marshalValue(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func unmarshalValue(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}
