// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package aead implements the core's AEAD capability (a 32-byte key, a
// standard nonce, Seal/Open) over ChaCha20-Poly1305, the default profile's
// named AEAD. Grounded in the nonce||ciphertext framing
// eagraf-opaque/internal/core.go uses for its (AES-GCM) credential
// envelope, adapted to x/crypto's ChaCha20-Poly1305, which is already
// transitively required by this module's group library.
package aead

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the fixed AEAD key length.
const KeySize = chacha20poly1305.KeySize

// NonceLen is the fixed nonce length.
const NonceLen = chacha20poly1305.NonceSize

// TagLen is the fixed authentication tag overhead.
const TagLen = chacha20poly1305.Overhead

// ErrOpen is returned, without further detail, when Open fails to
// authenticate or decrypt. Never propagated to a caller that must not
// distinguish it from other login failures.
var ErrOpen = errors.New("aead: open failed")

// Seal encrypts plaintext under key, authenticating ad, and returns the
// ciphertext (plaintext length + TagLen bytes).
func Seal(key, nonce, plaintext, ad []byte) ([]byte, error) {
	c, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("aead: invalid key: %w", err)
	}

	return c.Seal(nil, nonce, plaintext, ad), nil
}

// Open decrypts ciphertext under key, verifying ad, and returns the
// plaintext. Any failure collapses to ErrOpen.
func Open(key, nonce, ciphertext, ad []byte) ([]byte, error) {
	c, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("aead: invalid key: %w", err)
	}

	pt, err := c.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, ErrOpen
	}

	return pt, nil
}
