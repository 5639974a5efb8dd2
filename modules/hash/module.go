// Package hash provides the hashing built-ins.
package hash

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/vk/bootgraph/internal/registry"
	"github.com/vk/bootgraph/internal/val"
	"golang.org/x/crypto/blake2b"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Blake2b is blake2b(s): the hex BLAKE2b-256 digest of s.
func Blake2b(args []val.Value) (val.Value, error) {
	if err := registry.Arity("blake2b", args, 1); err != nil {
		return nil, err
	}
	s, err := registry.StringArg("blake2b", args, 0)
	if err != nil {
		return nil, err
	}
	sum := blake2b.Sum256([]byte(s))
	return val.NewStringVal(hex.EncodeToString(sum[:])), nil
}

// Blake2b64 is blake2b_64(s): the first eight digest bytes as a count.
func Blake2b64(args []val.Value) (val.Value, error) {
	if err := registry.Arity("blake2b_64", args, 1); err != nil {
		return nil, err
	}
	s, err := registry.StringArg("blake2b_64", args, 0)
	if err != nil {
		return nil, err
	}
	sum := blake2b.Sum256([]byte(s))
	return &val.CountVal{V: binary.LittleEndian.Uint64(sum[:8])}, nil
}

// Register registers the built-ins with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBiF("blake2b", Blake2b)
	r.RegisterBiF("blake2b_64", Blake2b64)
}
