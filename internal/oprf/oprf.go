// SPDX-License-Identifier: MIT
//
// Copyright (C) 2021 Daniel Bourdrez. All Rights Reserved.
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package oprf implements the core's three-function Oblivious PRF: Blind
// masks the password before it ever leaves the client, Evaluate lets the
// server apply its key to the masked input without learning the password,
// and Finalize unmasks the result and hardens it with the configured slow
// hash. Rebuilt around this literal blind/evaluate/finalize contract
// instead of a stateful Client object, and cross-checked against
// avahowell-occlude/crypto.go's oprfA/oprfB, which implement the same
// three steps in a flatter, function-based style this rewrite follows.
package oprf

import (
	"crypto"
	"fmt"

	bmksf "github.com/bytemare/ksf"

	"github.com/keyforge/opaque/internal/group"
	"github.com/keyforge/opaque/internal/ksf"
	"github.com/keyforge/opaque/internal/xhash"
)

const dstHashToGroup = "OPAQUE-HashToGroup"

// Blind masks password (optionally peppered) with a fresh random scalar r,
// returning the blinded element to send to the server and r, which the
// client must retain (and zeroize) until Finalize.
func Blind(g group.ID, password, pepper []byte, rng group.ReadFiller) (blinded *group.Element, r *group.Scalar, err error) {
	r, err = g.RandomScalar(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("oprf: failed to draw blinding scalar: %w", err)
	}

	input := append(append([]byte{}, pepper...), password...)
	t := g.HashToGroup(input, []byte(dstHashToGroup))
	blinded = t.Multiply(r)

	return blinded, r, nil
}

// Evaluate applies the server's OPRF key to a client-blinded element. The
// caller must have already rejected non-subgroup or identity inputs via
// group.ID.DecodeElement when the message carrying blinded was deserialized.
func Evaluate(blinded *group.Element, key *group.Scalar) *group.Element {
	return blinded.Multiply(key)
}

// Finalize unblinds evaluated with r (recovering t^k = H'(pepper||password)^k)
// and hardens H(password || serialize(n)) with the configured slow hash,
// producing the fixed-length OPRF output y that the rest of the core derives
// key material from.
func Finalize(
	h crypto.Hash,
	slowHash bmksf.Identifier,
	password []byte,
	evaluated *group.Element,
	r *group.Scalar,
) ([]byte, error) {
	n := evaluated.Multiply(r.Invert())

	preimage := append(append([]byte{}, password...), n.Encode()...)
	digest := xhash.New(h)
	digest.Write(preimage)
	hashed := digest.Sum(nil)

	y, err := ksf.Harden(slowHash, hashed, xhash.Size(h))
	if err != nil {
		return nil, fmt.Errorf("oprf: finalize hardening failed: %w", err)
	}

	return y, nil
}