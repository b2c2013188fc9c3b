// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package envelope implements the core's RKR ("Robust Key-committing
// Random-nonce") ciphertext: an AEAD ciphertext of the
// client's static secret key, plus an independent HMAC over the nonce,
// ciphertext and associated data. The outer HMAC, keyed separately from the
// AEAD, is what makes the construction key-committing: it stops a server
// that controls both candidate keys from crafting a ciphertext that opens
// under either one (a substitution attack against AEAD schemes without
// their own key-commitment).
//
// Grounded in original_source/src/opaque.rs's rkr_encryption module (this
// spec's own name for the construction) and shaped, in Go, the way
// eagraf-opaque/internal/core.go seals its credential response: a fixed
// nonce-prefixed AEAD ciphertext, here with the key-committing tag
// appended rather than folded into transport framing.
package envelope

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"errors"
	"fmt"
	stdhash "hash"
	"io"

	"github.com/keyforge/opaque/internal/aead"
	"github.com/keyforge/opaque/internal/xhash"
)

// ErrDecryptionHmac is the internal failure signal for any authentication
// failure during Decrypt — a bad outer HMAC or a rejected AEAD open. It must
// never reach a caller directly: it is remapped to the unified
// InvalidLogin failure at the login boundary (see package opaque's
// toInvalidLogin).
var ErrDecryptionHmac = errors.New("envelope: decryption hmac mismatch")

// Ciphertext is the serialized RKR envelope: nonce || aead-ciphertext || mac.
type Ciphertext struct {
	Nonce      []byte
	AEADCipher []byte
	MAC        []byte
}

// Size returns the total serialized length of an envelope sealing a
// plaintext of length plaintextLen, under hash h (the MAC's output size).
// Constant for a given KeyPair type: no length oracle on the password.
func Size(plaintextLen int, h crypto.Hash) int {
	return aead.NonceLen + plaintextLen + aead.TagLen + xhash.Size(h)
}

// Encrypt seals plaintext under encKey, authenticating ad with the AEAD, and
// binds the whole ciphertext (including ad) under macKey with an
// independent outer HMAC.
func Encrypt(h crypto.Hash, encKey, macKey, plaintext, ad []byte, rng io.Reader) (*Ciphertext, error) {
	nonce := make([]byte, aead.NonceLen)
	if rng == nil {
		rng = rand.Reader
	}

	if _, err := io.ReadFull(rng, nonce); err != nil {
		return nil, fmt.Errorf("envelope: failed to read nonce: %w", err)
	}

	ct, err := aead.Seal(encKey, nonce, plaintext, ad)
	if err != nil {
		return nil, fmt.Errorf("envelope: seal failed: %w", err)
	}

	return &Ciphertext{
		Nonce:      nonce,
		AEADCipher: ct,
		MAC:        tag(h, macKey, nonce, ct, ad),
	}, nil
}

// Decrypt verifies the outer HMAC in constant time before ever invoking the
// AEAD - verify before open - and returns the sealed plaintext. Any
// failure - HMAC mismatch or AEAD rejection - returns the single, internal
// ErrDecryptionHmac so the two are indistinguishable to a caller. An HMAC
// mismatch returns before the AEAD open runs.
func Decrypt(h crypto.Hash, encKey, macKey []byte, env *Ciphertext, ad []byte) ([]byte, error) {
	expected := tag(h, macKey, env.Nonce, env.AEADCipher, ad)
	if !hmac.Equal(expected, env.MAC) {
		return nil, ErrDecryptionHmac
	}

	pt, err := aead.Open(encKey, env.Nonce, env.AEADCipher, ad)
	if err != nil {
		return nil, ErrDecryptionHmac
	}

	return pt, nil
}

func tag(h crypto.Hash, macKey []byte, parts ...[]byte) []byte {
	m := hmac.New(func() stdhash.Hash { return xhash.New(h) }, macKey)
	for _, p := range parts {
		m.Write(p)
	}

	return m.Sum(nil)
}

// Serialize returns the envelope's wire form: nonce || aead-ciphertext || mac.
func (c *Ciphertext) Serialize() []byte {
	out := make([]byte, 0, len(c.Nonce)+len(c.AEADCipher)+len(c.MAC))
	out = append(out, c.Nonce...)
	out = append(out, c.AEADCipher...)
	out = append(out, c.MAC...)

	return out
}

// Deserialize parses an envelope of exactly the given plaintext length
// from b, rejecting any other length.
func Deserialize(b []byte, plaintextLen int, h crypto.Hash) (*Ciphertext, error) {
	want := Size(plaintextLen, h)
	if len(b) != want {
		return nil, fmt.Errorf("envelope: expected %d bytes, got %d", want, len(b))
	}

	macLen := xhash.Size(h)
	ctLen := plaintextLen + aead.TagLen

	env := &Ciphertext{
		Nonce:      append([]byte(nil), b[:aead.NonceLen]...),
		AEADCipher: append([]byte(nil), b[aead.NonceLen:aead.NonceLen+ctLen]...),
		MAC:        append([]byte(nil), b[aead.NonceLen+ctLen:aead.NonceLen+ctLen+macLen]...),
	}

	return env, nil
}
