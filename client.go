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
	"fmt"
	"io"

	"github.com/keyforge/opaque/internal/ake"
	"github.com/keyforge/opaque/internal/encoding"
	"github.com/keyforge/opaque/internal/envelope"
	"github.com/keyforge/opaque/internal/group"
	"github.com/keyforge/opaque/internal/kdf"
	"github.com/keyforge/opaque/internal/keypair"
	"github.com/keyforge/opaque/internal/oprf"
	"github.com/keyforge/opaque/internal/zeroize"
	"github.com/keyforge/opaque/message"
)

// Client exposes the client-side Registration and Login driver operations
// for a fixed Configuration.
type Client struct {
	conf *Configuration
}

// NewClient returns a Client for the given Configuration, or the package
// default if conf is nil.
func NewClient(conf *Configuration) (*Client, error) {
	if conf == nil {
		conf = DefaultConfiguration()
	}

	if err := conf.verify(); err != nil {
		return nil, err
	}

	return &Client{conf: conf}, nil
}

func (c *Client) akeParams() ake.Params {
	return ake.Params{Group: c.conf.AKE, Hash: c.conf.Hash, Context: c.conf.Context}
}

// ClientRegistration is the transient client-side registration state
// between RegisterStart and RegisterFinish: a blinding scalar and a copy
// of the password. Single-use: RegisterFinish consumes and zeroizes it.
type ClientRegistration struct {
	blind    *group.Scalar
	password []byte
}

// Zeroize wipes the blinding scalar and password copy.
func (s *ClientRegistration) Zeroize() {
	if s == nil {
		return
	}

	s.blind.Zeroize()
	zeroize.Bytes(s.password)
}

// Serialize returns state as blind[ScalarLen] || password_bytes, for
// pause/resume.
func (s *ClientRegistration) Serialize() []byte {
	return append(s.blind.Encode(), s.password...)
}

// DeserializeClientRegistration parses a ClientRegistration serialized with
// Serialize, under conf's OPRF group.
func (c *Configuration) DeserializeClientRegistration(b []byte) (*ClientRegistration, error) {
	n := c.OPRF.ScalarLength()
	if len(b) < n {
		return nil, fmt.Errorf("%w: truncated client registration state", ErrSerialization)
	}

	r, err := c.OPRF.DecodeScalar(b[:n])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client registration blind: %v", ErrSerialization, err)
	}

	return &ClientRegistration{blind: r, password: append([]byte{}, b[n:]...)}, nil
}

// RegisterStart blinds password (with an optional pepper) and returns the
// first registration message plus the transient state to carry into
// RegisterFinish.
func (c *Client) RegisterStart(password, pepper []byte, rng io.Reader) (*ClientRegistration, *message.RegistrationRequest, error) {
	blinded, r, err := oprf.Blind(c.conf.OPRF, password, pepper, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	state := &ClientRegistration{blind: r, password: append([]byte{}, password...)}
	req := &message.RegistrationRequest{BlindedMessage: blinded}

	return state, req, nil
}

// RegisterFinish consumes state, completes the OPRF, generates the client's
// static AKE key pair, seals it in an RKR envelope bound to the server's
// static public key, and returns the third registration message plus the
// password-derived export key.
func (c *Client) RegisterFinish(
	state *ClientRegistration,
	resp *message.RegistrationResponse,
	serverPublicKey []byte,
	rng io.Reader,
) (*message.RegistrationRecord, []byte, error) {
	defer state.Zeroize()

	y, err := oprf.Finalize(c.conf.Hash, c.conf.KSF, state.password, resp.EvaluatedMessage, state.blind)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	keys, err := kdf.DeriveEnvelopeKeys(c.conf.Hash, y)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	kp, err := keypair.Generate(c.conf.AKE, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	env, err := envelope.Encrypt(c.conf.Hash, keys.EncKey[:], keys.MacKey[:], kp.SecretKey.Encode(), serverPublicKey, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	record := &message.RegistrationRecord{ClientPublicKey: kp.PublicKey, Envelope: env}

	return record, keys.ExportKey[:], nil
}

// ClientLogin is the transient client-side login state between LoginStart
// and LoginFinish: the blinding scalar, a copy of the password, and the
// AKE's own ephemeral state. Single-use: LoginFinish consumes and
// zeroizes it.
type ClientLogin struct {
	blind    *group.Scalar
	password []byte
	ake      *ake.ClientState
	l1       []byte
}

// Zeroize wipes the blinding scalar, password copy, and AKE ephemeral
// secret.
func (s *ClientLogin) Zeroize() {
	if s == nil {
		return
	}

	s.blind.Zeroize()
	zeroize.Bytes(s.password)
	s.ake.Zeroize()
}

// Serialize returns state as blind[ScalarLen] || ke1_state || l1_len[4] ||
// l1 || password_bytes, extended with the client's own first-message
// bytes so LoginFinish can recompute the AKE transcript after a
// pause/resume round-trip.
func (s *ClientLogin) Serialize() []byte {
	out := append([]byte{}, s.blind.Encode()...)
	out = append(out, s.ake.SerializeState()...)
	out = append(out, encoding.I2OSP(len(s.l1), 4)...)
	out = append(out, s.l1...)

	return append(out, s.password...)
}

// DeserializeClientLogin parses a ClientLogin serialized with Serialize,
// under this Configuration.
func (c *Configuration) DeserializeClientLogin(b []byte) (*ClientLogin, error) {
	n := c.OPRF.ScalarLength()
	if len(b) < n {
		return nil, fmt.Errorf("%w: truncated client login state", ErrSerialization)
	}

	r, err := c.OPRF.DecodeScalar(b[:n])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client login blind: %v", ErrSerialization, err)
	}

	rest := b[n:]
	akeStateLen := c.AKE.ScalarLength() + ake.NonceLen

	if len(rest) < akeStateLen+4 {
		return nil, fmt.Errorf("%w: truncated client login ake state", ErrSerialization)
	}

	akeState, err := ake.DeserializeClientState(c.AKE, rest[:akeStateLen])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	rest = rest[akeStateLen:]
	l1Len := encoding.OS2IP(rest[:4])
	rest = rest[4:]

	if len(rest) < l1Len {
		return nil, fmt.Errorf("%w: truncated client login l1", ErrSerialization)
	}

	return &ClientLogin{
		blind:    r,
		ake:      akeState,
		l1:       append([]byte{}, rest[:l1Len]...),
		password: append([]byte{}, rest[l1Len:]...),
	}, nil
}

// LoginStart blinds password and generates the client's AKE first flight,
// returning the first login message and the transient state to carry into
// LoginFinish.
func (c *Client) LoginStart(password, pepper []byte, rng io.Reader) (*ClientLogin, *message.LoginFirstMessage, error) {
	blinded, r, err := oprf.Blind(c.conf.OPRF, password, pepper, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	akeState, ke1, err := ake.GenerateKE1(c.akeParams(), rng, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	msg := &message.LoginFirstMessage{
		CredentialRequest: &message.CredentialRequest{BlindedMessage: blinded},
		KE1:               ke1,
	}

	state := &ClientLogin{
		blind:    r,
		password: append([]byte{}, password...),
		ake:      akeState,
		l1:       msg.Serialize(),
	}

	return state, msg, nil
}

// LoginFinish consumes state, recovers the client's static secret key from
// the envelope, verifies the server's AKE MAC, and returns the third login
// message, the shared session key, and the export key. Any failure -
// tampered envelope or forged AKE MAC - is collapsed into the single
// ErrInvalidLogin, so a caller can never tell the two apart.
func (c *Client) LoginFinish(
	state *ClientLogin,
	resp *message.LoginSecondMessage,
	serverPublicKey []byte,
	rng io.Reader,
) (*message.LoginThirdMessage, []byte, []byte, error) {
	defer state.Zeroize()

	serverPK, err := keypair.CheckPublicKey(c.conf.AKE, serverPublicKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	y, err := oprf.Finalize(c.conf.Hash, c.conf.KSF, state.password, resp.CredentialResponse.EvaluatedMessage, state.blind)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	keys, err := kdf.DeriveEnvelopeKeys(c.conf.Hash, y)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	skBytes, err := envelope.Decrypt(c.conf.Hash, keys.EncKey[:], keys.MacKey[:], resp.CredentialResponse.Envelope, serverPublicKey)
	if err != nil {
		return nil, nil, nil, toInvalidLogin(err)
	}

	clientStaticSecret, err := c.conf.AKE.DecodeScalar(skBytes)
	if err != nil {
		return nil, nil, nil, ErrInvalidLogin
	}

	l2 := append(append([]byte{}, resp.CredentialResponse.EvaluatedMessage.Encode()...), resp.CredentialResponse.Envelope.Serialize()...)

	sessionSecret, ke3, err := ake.GenerateKE3(c.akeParams(), state.ake, state.l1, l2, resp.KE2, serverPK, clientStaticSecret)
	if err != nil {
		return nil, nil, nil, toInvalidLogin(err)
	}

	return &message.LoginThirdMessage{KE3: ke3}, sessionSecret, keys.ExportKey[:], nil
}

