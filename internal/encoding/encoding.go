// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package encoding provides the small set of length-prefixed and
// fixed-width integer encoding helpers the core needs outside of its
// fixed-width wire messages: primarily Configuration's variable-length,
// caller-supplied Context byte string.
package encoding

import (
	"encoding/binary"
	"errors"
)

// ErrTruncated is returned when decoding a length-prefixed vector runs off
// the end of the input.
var ErrTruncated = errors.New("encoding: truncated input")

// I2OSP encodes i as a big-endian integer of the given byte length.
func I2OSP(i, length int) []byte {
	out := make([]byte, length)

	switch length {
	case 1:
		out[0] = byte(i)
	case 2:
		binary.BigEndian.PutUint16(out, uint16(i))
	case 4:
		binary.BigEndian.PutUint32(out, uint32(i))
	default:
		v := uint64(i)
		for b := length - 1; b >= 0; b-- {
			out[b] = byte(v)
			v >>= 8
		}
	}

	return out
}

// OS2IP decodes a big-endian integer from b.
func OS2IP(b []byte) int {
	var v uint64
	for _, by := range b {
		v = v<<8 | uint64(by)
	}

	return int(v)
}

// Concatenate returns the concatenation of all given byte slices.
func Concatenate(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}

	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

// EncodeVector prefixes data with its own 2-byte big-endian length.
func EncodeVector(data []byte) []byte {
	return Concatenate(I2OSP(len(data), 2), data)
}

// DecodeVector reads a 2-byte length prefix followed by that many bytes from
// the front of b, and returns the remainder.
func DecodeVector(b []byte) (data, rest []byte, err error) {
	if len(b) < 2 {
		return nil, nil, ErrTruncated
	}

	l := OS2IP(b[:2])
	if len(b) < 2+l {
		return nil, nil, ErrTruncated
	}

	return b[2 : 2+l], b[2+l:], nil
}
