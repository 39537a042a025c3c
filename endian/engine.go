// Package endian provides the byte-order engine used everywhere the truth
// store writes a fixed-width integer into a KV key: kvkey uses it for the
// big-endian sequence and tick suffixes (spec.md §6.1).
//
// This package extends Go's standard encoding/binary package by combining
// ByteOrder and AppendByteOrder interfaces into a unified EndianEngine
// interface, the same technique the teacher library uses to let callers
// append without an intermediate fixed-size buffer.
//
// The store never chooses little-endian for anything that is hashed or
// used as a KV key: spec.md §4.1 and §6.1 both require big-endian so that
// byte-lexicographic key order matches numeric order. GetLittleEndianEngine
// is kept only because EndianEngine is a general-purpose abstraction and
// tests exercise both engines to prove the codec does not silently depend
// on host byte order.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single interface for convenient byte order
// operations. binary.ByteOrder satisfies it both ways, so no adapter type
// is needed.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetBigEndianEngine returns the engine the store uses for every key
// suffix and canonical fixed-width field.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine, used only by
// tests asserting that the store's on-disk layout does not depend on it.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}
