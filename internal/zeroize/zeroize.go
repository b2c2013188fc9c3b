// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package zeroize overwrites secret byte buffers on every exit path of a
// transient protocol state. No zeroization crate appears anywhere in the
// retrieval pack; this mirrors the two Go idioms that do appear -
// avahowell-occlude/crypto.go's clear() and the double-ratchet example's
// wipe() in other_examples - rather than adding a new dependency for a
// three-line loop.
package zeroize

// Bytes overwrites b with zeroes in place. Safe to call on a nil or empty slice.
func Bytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// String overwrites buf, the byte copy of a string-held secret, with zeroes
// in place; callers that need to zeroize a password held as a string
// must have captured it into a []byte from the start (ClientRegistration
// and ClientLogin do exactly that) since Go strings are themselves immutable.
func String(buf []byte) {
	Bytes(buf)
}
