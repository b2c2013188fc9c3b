// SPDX-License-Identifier: MIT
//
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
	"github.com/keyforge/opaque/internal/keypair"
	"github.com/keyforge/opaque/message"
)

// ErrKeyExchangeMac is the internal signal for a failed server MAC
// verification in GenerateKE3. It must be remapped to InvalidLogin at the
// login boundary, never surfaced directly.
var ErrKeyExchangeMac = errors.New("ake: invalid server mac")

// Options lets callers force deterministic ephemeral key material and
// nonces, the core's test seam for fixed-seed scenarios.
type Options struct {
	EphemeralSecret *group.Scalar
	Nonce           []byte
}

// ClientState is the client's transient AKE state between KE1 and KE3: it
// is single-use and must be zeroized once consumed.
type ClientState struct {
	EphemeralSecret *group.Scalar
	EphemeralPublic *group.Element
	Nonce           []byte
}

// Zeroize wipes the client's ephemeral secret.
func (s *ClientState) Zeroize() {
	if s == nil {
		return
	}

	s.EphemeralSecret.Zeroize()
}

// SerializeState returns state as ephemeral_secret || nonce, for the
// pause/resume scenario.
func (s *ClientState) SerializeState() []byte {
	out := append([]byte{}, s.EphemeralSecret.Encode()...)
	return append(out, s.Nonce...)
}

// DeserializeClientState parses a ClientState serialized with
// SerializeState, in group g.
func DeserializeClientState(g group.ID, b []byte) (*ClientState, error) {
	if len(b) != g.ScalarLength()+NonceLen {
		return nil, fmt.Errorf("ake: invalid client state length %d", len(b))
	}

	sk, err := g.DecodeScalar(b[:g.ScalarLength()])
	if err != nil {
		return nil, fmt.Errorf("ake: invalid client state secret: %w", err)
	}

	return &ClientState{
		EphemeralSecret: sk,
		EphemeralPublic: g.Base().Multiply(sk),
		Nonce:           append([]byte{}, b[g.ScalarLength():]...),
	}, nil
}

// GenerateKE1 produces the client's first AKE flight: a fresh ephemeral key
// share and nonce.
func GenerateKE1(p Params, rng group.ReadFiller, opts *Options) (*ClientState, *message.KE1, error) {
	esk, epk, err := ephemeral(p, rng, opts)
	if err != nil {
		return nil, nil, err
	}

	nonce, err := drawNonce(rng, opts)
	if err != nil {
		return nil, nil, err
	}

	state := &ClientState{EphemeralSecret: esk, EphemeralPublic: epk, Nonce: nonce}
	ke1 := &message.KE1{ClientNonce: nonce, ClientKeyshare: epk}

	return state, ke1, nil
}

// GenerateKE3 verifies the server's KE2 MAC against the transcript the
// client itself observed (l1, the message it sent, and l2, the credential
// response it received) and, only if that succeeds, computes the client's
// own MAC over the extended transcript plus the session secret.
//
// l1 is the serialized LoginFirstMessage the client sent; l2 is
// serialize(evaluated) || serialize(envelope), the credential half of
// the login response.
func GenerateKE3(
	p Params,
	state *ClientState,
	l1, l2 []byte,
	ke2 *message.KE2,
	serverStaticPublic *group.Element,
	clientStaticSecret *group.Scalar,
) (sessionSecret []byte, ke3 *message.KE3, err error) {
	ikm := dh3(
		ke2.ServerKeyshare, state.EphemeralSecret,
		serverStaticPublic, state.EphemeralSecret,
		ke2.ServerKeyshare, clientStaticSecret,
	)

	th := transcriptHash(p, l1, l2, ke2.ServerNonce, ke2.ServerKeyshare)
	sessionSecret, expectedServerMac, expectedClientMac := keySchedule(p, ikm, th)

	if !hmac.Equal(expectedServerMac, ke2.ServerMac) {
		return nil, nil, fmt.Errorf("ake: %w", ErrKeyExchangeMac)
	}

	return sessionSecret, &message.KE3{ClientMac: expectedClientMac}, nil
}

func ephemeral(p Params, rng group.ReadFiller, opts *Options) (*group.Scalar, *group.Element, error) {
	if opts != nil && opts.EphemeralSecret != nil {
		esk := opts.EphemeralSecret
		return esk, p.Group.Base().Multiply(esk), nil
	}

	kp, err := keypair.Generate(p.Group, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("ake: failed to generate ephemeral key share: %w", err)
	}

	return kp.SecretKey, kp.PublicKey, nil
}

func drawNonce(rng group.ReadFiller, opts *Options) ([]byte, error) {
	if opts != nil && len(opts.Nonce) != 0 {
		return opts.Nonce, nil
	}

	nonce := make([]byte, NonceLen)
	if _, err := rng.Read(nonce); err != nil {
		return nil, fmt.Errorf("ake: failed to draw nonce: %w", err)
	}

	return nonce, nil
}
