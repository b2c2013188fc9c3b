// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package ksf implements the core's pluggable "slow hash": a memory-hard
// key-stretching function applied to the OPRF output before it is used for
// key derivation, raising the cost of an offline dictionary attack against
// a compromised password file. Identifiers are typed over
// bytemare/ksf.Identifier (matching Configuration.KSF's field type), but
// the hardening itself is implemented directly against golang.org/x/crypto,
// since the retrieval pack never shows bytemare/ksf's own hardening entry
// point, only its identifier/Available() surface.
//
// The default, scrypt with N=2^15, r=8, p=1, and the no-op test seam are
// both taken directly from the Rust source this spec was distilled from
// (original_source/src/slow_hash.rs: DEFAULT_SCRYPT_LOG_N/R/P, NoOpHash).
package ksf

import (
	"fmt"

	bmksf "github.com/bytemare/ksf"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/scrypt"
)

const (
	// Scrypt is the default profile's slow hash. Picked from the high end of
	// the identifier's byte range to avoid colliding with bytemare/ksf's own
	// registered identifiers (Argon2id among them).
	Scrypt bmksf.Identifier = 253
	// Identity is a no-op slow hash (returns its input unchanged) used by
	// tests that need the OPRF's output without paying the hardening cost.
	Identity bmksf.Identifier = 254
)

const (
	scryptLogN = 15
	scryptR    = 8
	scryptP    = 1

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Supported reports whether id is a slow hash this module can run.
func Supported(id bmksf.Identifier) bool {
	switch id {
	case bmksf.Argon2id, Scrypt, Identity:
		return true
	default:
		return false
	}
}

// Harden stretches input (the OPRF output) to outputLen bytes using the
// slow hash selected by id.
func Harden(id bmksf.Identifier, input []byte, outputLen int) ([]byte, error) {
	switch id {
	case Identity:
		out := make([]byte, outputLen)
		copy(out, input)

		return out, nil
	case bmksf.Argon2id:
		return argon2.IDKey(input, nil, argonTime, argonMemory, argonThreads, uint32(outputLen)), nil
	case Scrypt, 0:
		n := 1 << scryptLogN

		out, err := scrypt.Key(input, nil, n, scryptR, scryptP, outputLen)
		if err != nil {
			return nil, fmt.Errorf("ksf: scrypt hardening failed: %w", err)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("ksf: unsupported identifier %d", id)
	}
}
