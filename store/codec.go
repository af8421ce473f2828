package store

import "github.com/vmihailenco/msgpack/v5"

// Codec encodes keys and values into the BLOB columns of the store.
//
// Key encoding must be deterministic: the encoded bytes are the primary key,
// so two equal keys that encode differently would be treated as distinct
// entries. The default msgpack codec is deterministic for strings, byte
// slices and the integer types.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type msgpackCodec struct{}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
