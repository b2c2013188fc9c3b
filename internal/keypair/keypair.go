// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package keypair implements the core's KeyPair leaf: an asymmetric key
// pair for the AKE with public-key validation. Realized as a scalar/
// element pair in whichever group the AKE is configured with (see
// DESIGN.md OQ-1 for why this replaces a raw X25519 pair), grounded on
// the reference library's KeyGen.
package keypair

import (
	"fmt"

	"github.com/keyforge/opaque/internal/group"
)

// KeyPair is a private/public key pair for the AKE.
type KeyPair struct {
	Group     group.ID
	SecretKey *group.Scalar
	PublicKey *group.Element
}

// Generate draws a fresh, random key pair in g using rng.
func Generate(g group.ID, rng group.ReadFiller) (*KeyPair, error) {
	sk, err := g.RandomScalar(rng)
	if err != nil {
		return nil, fmt.Errorf("keypair: failed to generate secret key: %w", err)
	}

	return &KeyPair{Group: g, SecretKey: sk, PublicKey: g.Base().Multiply(sk)}, nil
}

// CheckPublicKey decodes and validates a serialized public key: it must
// decode to a canonical, subgroup element that is not the identity.
func CheckPublicKey(g group.ID, encoded []byte) (*group.Element, error) {
	el, err := g.DecodeElement(encoded)
	if err != nil {
		return nil, fmt.Errorf("keypair: invalid public key: %w", err)
	}

	return el, nil
}

// Zeroize wipes the secret scalar.
func (kp *KeyPair) Zeroize() {
	if kp == nil {
		return
	}

	kp.SecretKey.Zeroize()
}
