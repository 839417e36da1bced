package store

import (
	"encoding/binary"

	"github.com/vmihailenco/msgpack/v4"
)

// MakeKey returns <id>:<predicate>
func MakeKey(id []byte, predicate string) []byte {
	key := make([]byte, 0, len(id)+1+len(predicate))
	key = append(key, id...)
	key = append(key, ':')
	return append(key, predicate...)
}

// SeqKey prefix + big endian sequence so keys iterate in insertion order
func SeqKey(prefix string, seq uint64) []byte {
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], seq)
	return key
}

// EncodeStruct msgpack
func EncodeStruct(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

// DecodeStruct msgpack
func DecodeStruct(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}
