// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package kdf implements the core's HKDF-style Extract/Expand capability
// over golang.org/x/crypto/hkdf, grounded directly in
// avahowell-occlude/crypto.go's deriveHKDFKeys, which reads an HKDF stream
// to split one secret into independent keys the same way this package
// splits the OPRF output into enc_key/mac_key/export_key.
package kdf

import (
	"crypto"
	"fmt"
	stdhash "hash"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/keyforge/opaque/internal/xhash"
)

// EnvelopeInfo is the HKDF "info" string binding the envelope key schedule,
// matching the Rust source this spec was distilled from (STR_ENVU).
const EnvelopeInfo = "EnvU"

// EnvelopeKeys are the three 32-byte keys derived from the OPRF output.
type EnvelopeKeys struct {
	EncKey    [32]byte
	MacKey    [32]byte
	ExportKey [32]byte
}

func hashCtor(h crypto.Hash) func() stdhash.Hash {
	return func() stdhash.Hash { return xhash.New(h) }
}

// DeriveEnvelopeKeys runs HKDF-Extract(salt=nil, ikm=y) then
// HKDF-Expand(prk, "EnvU", 96) and splits the output into enc_key, mac_key,
// and export_key.
func DeriveEnvelopeKeys(h crypto.Hash, y []byte) (*EnvelopeKeys, error) {
	prk := Extract(h, nil, y)

	okm, err := Expand(h, prk, []byte(EnvelopeInfo), 96)
	if err != nil {
		return nil, err
	}

	keys := &EnvelopeKeys{}
	copy(keys.EncKey[:], okm[0:32])
	copy(keys.MacKey[:], okm[32:64])
	copy(keys.ExportKey[:], okm[64:96])

	return keys, nil
}

// Extract runs HKDF-Extract(salt, ikm) under hash h.
func Extract(h crypto.Hash, salt, ikm []byte) []byte {
	return hkdf.Extract(hashCtor(h), ikm, salt)
}

// Expand runs HKDF-Expand(prk, info, length) under hash h.
func Expand(h crypto.Hash, prk, info []byte, length int) ([]byte, error) {
	r := hkdf.Expand(hashCtor(h), prk, info)

	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("kdf: expand failed: %w", err)
	}

	return out, nil
}
