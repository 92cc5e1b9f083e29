package storage

import "encoding/json"

// Codec converts keys and values to and from the bytes a backend stores.
//
// Backends that sort on disk order entries by EncodeKey's output, so a codec
// must preserve the ordering of the keys it is used with.
type Codec[K, V any] interface {
	EncodeKey(K) ([]byte, error)
	DecodeKey([]byte) (K, error)
	EncodeValue(V) ([]byte, error)
	DecodeValue([]byte) (V, error)
}

var _ Codec[string, any] = JSONCodec[string, any]{}

// JSONCodec encodes keys and values with encoding/json. For string keys
// without characters that need escaping the byte order matches the string
// order.
type JSONCodec[K, V any] struct{}

func (JSONCodec[K, V]) EncodeKey(key K) ([]byte, error) {
	return json.Marshal(key)
}

func (JSONCodec[K, V]) DecodeKey(data []byte) (K, error) {
	var key K
	err := json.Unmarshal(data, &key)
	return key, err
}

func (JSONCodec[K, V]) EncodeValue(value V) ([]byte, error) {
	return json.Marshal(value)
}

func (JSONCodec[K, V]) DecodeValue(data []byte) (V, error) {
	var value V
	err := json.Unmarshal(data, &value)
	return value, err
}
