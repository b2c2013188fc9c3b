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
	"fmt"
	"io"

	"github.com/keyforge/opaque/internal/ake"
	"github.com/keyforge/opaque/internal/group"
	"github.com/keyforge/opaque/internal/keypair"
	"github.com/keyforge/opaque/internal/oprf"
	"github.com/keyforge/opaque/message"
)

// ErrNoServerKeyMaterial indicates the server's key material has not been
// set via SetKeyMaterial before a call that needs it.
var ErrNoServerKeyMaterial = errors.New("opaque: server key material not set: call SetKeyMaterial")

// ErrZeroServerSecretKey indicates SetKeyMaterial was given the zero scalar
// as a static secret key.
var ErrZeroServerSecretKey = errors.New("opaque: server secret key is zero")

// ErrServerNotComplete indicates LoginStart was called with a ClientRecord
// whose RegistrationRecord is absent: a pending, not a complete,
// registration.
var ErrServerNotComplete = fmt.Errorf("%w: registration is not complete", ErrInvalidLogin)

// Server exposes the server-side Registration and Login driver operations
// for a fixed Configuration.
type Server struct {
	conf           *Configuration
	identity       []byte
	secretKey      *group.Scalar
	publicKey      *group.Element
	publicKeyBytes []byte
}

// NewServer returns a Server for the given Configuration, or the package
// default if conf is nil.
func NewServer(conf *Configuration) (*Server, error) {
	if conf == nil {
		conf = DefaultConfiguration()
	}

	if err := conf.verify(); err != nil {
		return nil, err
	}

	return &Server{conf: conf}, nil
}

func (s *Server) akeParams() ake.Params {
	return ake.Params{Group: s.conf.AKE, Hash: s.conf.Hash, Context: s.conf.Context}
}

// SetKeyMaterial sets the server's long-term static AKE key pair and
// identity. identity defaults to publicKey's bytes when nil. These values
// must remain stable across the lifetime of every registered password
// file: the client's RegisterFinish binds publicKey as the envelope's
// associated data, and the client's LoginFinish decrypts the envelope under
// the same value.
func (s *Server) SetKeyMaterial(identity, secretKey, publicKey []byte) error {
	sk, err := s.conf.AKE.DecodeScalar(secretKey)
	if err != nil {
		return fmt.Errorf("%w: invalid server secret key: %v", ErrInvalidConfiguration, err)
	}

	if sk.IsZero() {
		return ErrZeroServerSecretKey
	}

	pk, err := keypair.CheckPublicKey(s.conf.AKE, publicKey)
	if err != nil {
		return fmt.Errorf("%w: invalid server public key: %v", ErrInvalidPublicKey, err)
	}

	if identity == nil {
		identity = append([]byte{}, publicKey...)
	}

	s.identity = identity
	s.secretKey = sk
	s.publicKey = pk
	s.publicKeyBytes = append([]byte{}, publicKey...)

	return nil
}

// PublicKey returns the server's static AKE public key, once SetKeyMaterial
// has been called.
func (s *Server) PublicKey() []byte { return s.publicKeyBytes }

// Identity returns the server's identity, as set (or defaulted) by
// SetKeyMaterial.
func (s *Server) Identity() []byte { return s.identity }

// ServerRegistration is the transient server-side registration state
// between RegisterStart and RegisterFinish: the pending OPRF key k. k is
// drawn fresh per user and never reused.
type ServerRegistration struct {
	key *group.Scalar
}

// Serialize returns state's pending form: oprf_key[ScalarLen].
func (s *ServerRegistration) Serialize() []byte {
	return s.key.Encode()
}

// DeserializeServerRegistration parses a ServerRegistration pending state
// serialized with Serialize, under conf's OPRF group.
func (c *Configuration) DeserializeServerRegistration(b []byte) (*ServerRegistration, error) {
	k, err := c.OPRF.DecodeScalar(b)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid server registration state: %v", ErrSerialization, err)
	}

	return &ServerRegistration{key: k}, nil
}

// RegisterStart draws a fresh OPRF key for this user, evaluates the
// client's blinded request with it, and returns the second registration
// message plus the pending state to carry into RegisterFinish.
func (s *Server) RegisterStart(req *message.RegistrationRequest, rng io.Reader) (*ServerRegistration, *message.RegistrationResponse, error) {
	k, err := s.conf.OPRF.RandomScalar(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to draw OPRF key: %v", ErrInternal, err)
	}

	evaluated := oprf.Evaluate(req.BlindedMessage, k)

	return &ServerRegistration{key: k}, &message.RegistrationResponse{EvaluatedMessage: evaluated}, nil
}

// RegisterFinish consumes state and the client's third registration
// message, validates the client's static public key (subgroup, non-
// identity), and returns the persistence-ready ClientRecord. No envelope
// verification happens here: trust is established at login, via envelope
// authentication under a password-derived MAC key the server cannot
// forge.
func (s *Server) RegisterFinish(
	state *ServerRegistration,
	record *message.RegistrationRecord,
	credentialIdentifier, clientIdentity []byte,
) (*ClientRecord, error) {
	if record.ClientPublicKey.IsIdentity() {
		return nil, ErrInvalidPublicKey
	}

	return &ClientRecord{
		RegistrationRecord:   record,
		CredentialIdentifier: credentialIdentifier,
		ClientIdentity:       clientIdentity,
		OPRFKey:              state.key.Encode(),
	}, nil
}

// ServerLogin is the transient server-side login state between LoginStart
// and LoginFinish: the AKE's own transient state.
type ServerLogin struct {
	ake *ake.ServerState
}

// Serialize returns state's serialized AKE state.
func (s *ServerLogin) Serialize() []byte {
	return s.ake.SerializeState()
}

// DeserializeServerLogin parses a ServerLogin serialized with Serialize,
// under this Configuration.
func (c *Configuration) DeserializeServerLogin(b []byte) (*ServerLogin, error) {
	state, err := ake.DeserializeServerState(b, c.hashSize(), c.hashSize())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	return &ServerLogin{ake: state}, nil
}

// LoginStart requires a complete ClientRecord (its OPRFKey, as persisted by
// RegisterFinish) and evaluates the client's blinded login request with it,
// generates the server's AKE response, and returns the second login
// message plus the transient state to carry into LoginFinish.
//
// Callers defending against client enumeration should call this with a
// Configuration.GetFakeRecord result when credentialIdentifier does not
// name a registered user, so that the wire shape and timing of the
// response are indistinguishable either way.
func (s *Server) LoginStart(
	record *ClientRecord,
	req *message.LoginFirstMessage,
	rng io.Reader,
) (*ServerLogin, *message.LoginSecondMessage, error) {
	if s.secretKey == nil {
		return nil, nil, ErrNoServerKeyMaterial
	}

	if record.RegistrationRecord == nil {
		return nil, nil, ErrServerNotComplete
	}

	k, err := s.conf.OPRF.DecodeScalar(record.OPRFKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid stored OPRF key: %v", ErrInternal, err)
	}

	evaluated := oprf.Evaluate(req.CredentialRequest.BlindedMessage, k)

	credResp := &message.CredentialResponse{EvaluatedMessage: evaluated, Envelope: record.Envelope}
	l2Component := append(append([]byte{}, evaluated.Encode()...), record.Envelope.Serialize()...)

	akeState, ke2, err := ake.GenerateKE2(
		s.akeParams(),
		rng,
		req.Serialize(),
		l2Component,
		req.KE1.ClientKeyshare,
		record.ClientPublicKey,
		s.secretKey,
		nil,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	msg := &message.LoginSecondMessage{CredentialResponse: credResp, KE2: ke2}

	return &ServerLogin{ake: akeState}, msg, nil
}

// LoginFinish consumes state and the client's third login message,
// verifies the AKE client MAC, and returns the shared session key. A
// failed verification is collapsed into ErrInvalidLogin.
func (s *Server) LoginFinish(state *ServerLogin, ke3 *message.KE3) ([]byte, error) {
	defer state.ake.Zeroize()

	if !ake.Finalize(state.ake, ke3) {
		return nil, ErrInvalidLogin
	}

	sessionSecret := append([]byte(nil), state.ake.SessionSecret...)

	return sessionSecret, nil
}
