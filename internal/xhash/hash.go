// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package xhash wraps bytemare/hash's identifier type over the concrete
// stdlib hash implementations this module uses for the transcript and MAC
// hash, a fixed digest size per configured Hash (32 bytes for the default
// SHA-256 profile). Grounded on opaque.go's crypto.Hash-keyed Configuration
// fields and bytemare/hash.Hash's .Available()/.Get() usage in
// internal/oprf/oprf.go.
package xhash

import (
	"crypto"
	"crypto/sha256"
	"crypto/sha512"
	stdhash "hash"

	bmhash "github.com/bytemare/hash"
)

// Available reports whether h is one of the hash functions this module wires up.
func Available(h crypto.Hash) bool {
	switch h {
	case crypto.SHA256, crypto.SHA512:
		return bmhash.Hash(h).Available()
	default:
		return false
	}
}

// New returns a fresh stdlib hash.Hash for h. Callers must have checked
// Available(h) first.
func New(h crypto.Hash) stdhash.Hash {
	switch h {
	case crypto.SHA512:
		return sha512.New()
	default:
		return sha256.New()
	}
}

// Size returns the digest size, in bytes, of h.
func Size(h crypto.Hash) int {
	switch h {
	case crypto.SHA512:
		return sha512.Size
	default:
		return sha256.Size
	}
}
