// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"errors"

	"github.com/keyforge/opaque/internal/ake"
	"github.com/keyforge/opaque/internal/envelope"
)

var (
	// ErrInternal signals a primitive failure (KDF, slow hash, RNG read):
	// fatal, and never a signal about the caller's input.
	ErrInternal = errors.New("opaque: internal error")

	// ErrSerialization is returned by a Deserialize* function on malformed
	// input: wrong length, a bad point, or a bad scalar. The caller may
	// retry with corrected bytes.
	ErrSerialization = errors.New("opaque: invalid serialized input")

	// ErrInvalidPublicKey is returned when KeyPair validation rejects a
	// value (identity or non-subgroup). Fatal to the current protocol run.
	ErrInvalidPublicKey = errors.New("opaque: invalid public key")

	// ErrInvalidConfiguration is returned when a Configuration names an
	// unsupported group, hash, or slow hash identifier.
	ErrInvalidConfiguration = errors.New("opaque: invalid configuration")

	// ErrInvalidLogin is the single, unified login failure: returned for a
	// tampered envelope, a forged AKE MAC, or any other login-side
	// authentication failure detectable only after the OPRF has been
	// evaluated. It deliberately carries no further detail so an attacker
	// cannot distinguish "wrong password" from "tampered envelope" from
	// "MAC forgery".
	ErrInvalidLogin = errors.New("opaque: invalid login")
)

// toInvalidLogin collapses the two internal, detailed authentication
// failures - envelope.ErrDecryptionHmac and ake.ErrKeyExchangeMac - into the
// single ErrInvalidLogin. Every other error (a malformed message, an
// internal primitive failure) passes through unchanged: only envelope/AKE
// verification failures are mapped here, and only at the client's login
// boundary, Client.LoginFinish. Server.LoginFinish returns ErrInvalidLogin
// directly when ake.Finalize rejects the client MAC.
func toInvalidLogin(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, envelope.ErrDecryptionHmac) || errors.Is(err, ake.ErrKeyExchangeMac) {
		return ErrInvalidLogin
	}

	return err
}
