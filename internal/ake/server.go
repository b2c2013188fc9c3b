// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ake

import (
	"crypto/hmac"
	"errors"
	"fmt"

	"github.com/keyforge/opaque/internal/group"
	"github.com/keyforge/opaque/message"
)

// ErrInvalidState is returned by DeserializeServerState on a malformed buffer.
var ErrInvalidState = errors.New("ake: invalid serialized state length")

// ServerState is the server's transient AKE state between GenerateKE2 and
// Finalize: it is single-use and must be zeroized once consumed.
type ServerState struct {
	SessionSecret []byte
	ClientMac     []byte
}

// GenerateKE2 produces the server's AKE response: a fresh ephemeral key
// share, the server MAC over the transcript so far, and (held internally)
// the client MAC the server expects back in KE3.
//
// l1 is the serialized LoginFirstMessage the server received; l2Component
// is serialize(evaluated) || serialize(envelope), the credential half of
// LoginSecondMessage.
func GenerateKE2(
	p Params,
	rng group.ReadFiller,
	l1, l2Component []byte,
	clientEphemeralPublic, clientStaticPublic *group.Element,
	serverStaticSecret *group.Scalar,
	opts *Options,
) (*ServerState, *message.KE2, error) {
	esk, epk, err := ephemeral(p, rng, opts)
	if err != nil {
		return nil, nil, err
	}

	nonce, err := drawNonce(rng, opts)
	if err != nil {
		return nil, nil, err
	}

	ikm := dh3(
		clientEphemeralPublic, esk,
		clientEphemeralPublic, serverStaticSecret,
		clientStaticPublic, esk,
	)

	th := transcriptHash(p, l1, l2Component, nonce, epk)
	sessionSecret, serverMac, expectedClientMac := keySchedule(p, ikm, th)

	ke2 := &message.KE2{ServerNonce: nonce, ServerKeyshare: epk, ServerMac: serverMac}
	state := &ServerState{SessionSecret: sessionSecret, ClientMac: expectedClientMac}

	return state, ke2, nil
}

// Finalize verifies the client MAC in ke3 against the expected MAC computed
// in GenerateKE2.
func Finalize(state *ServerState, ke3 *message.KE3) bool {
	return hmac.Equal(state.ClientMac, ke3.ClientMac)
}

// SerializeState returns state as clientMac || sessionSecret, both of fixed
// (hash output) length for the configured AKE hash.
func (s *ServerState) SerializeState() []byte {
	out := make([]byte, 0, len(s.ClientMac)+len(s.SessionSecret))
	out = append(out, s.ClientMac...)

	return append(out, s.SessionSecret...)
}

// DeserializeServerState parses a ServerState serialized with
// SerializeState, given the hash digest size macLen/sessionLen were
// produced with.
func DeserializeServerState(b []byte, macLen, sessionLen int) (*ServerState, error) {
	if len(b) != macLen+sessionLen {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidState, len(b), macLen+sessionLen)
	}

	return &ServerState{
		ClientMac:     append([]byte{}, b[:macLen]...),
		SessionSecret: append([]byte{}, b[macLen:]...),
	}, nil
}

// Zeroize wipes the server's transient secrets.
func (s *ServerState) Zeroize() {
	if s == nil {
		return
	}

	for _, b := range [][]byte{s.SessionSecret, s.ClientMac} {
		for i := range b {
			b[i] = 0
		}
	}
}
