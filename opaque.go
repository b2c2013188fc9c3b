// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package opaque implements the core of OPAQUE, an asymmetric
// password-authenticated key exchange (aPAKE): a client holding only a
// password and a server holding a per-user password file run a pair of
// three-message protocols, Registration and Login, and come away with a
// shared session key, without the server ever observing the password in
// any recoverable form.
package opaque

import (
	"crypto"
	"fmt"
	"io"

	bmksf "github.com/bytemare/ksf"

	"github.com/keyforge/opaque/internal/aead"
	"github.com/keyforge/opaque/internal/encoding"
	"github.com/keyforge/opaque/internal/envelope"
	"github.com/keyforge/opaque/internal/group"
	"github.com/keyforge/opaque/internal/ksf"
	"github.com/keyforge/opaque/internal/xhash"
	"github.com/keyforge/opaque/message"
)

// Group identifies the prime-order group instantiating both the OPRF and
// the AKE for a Configuration.
type Group = group.ID

const (
	// RistrettoSha512 is the default profile's group, Ristretto255.
	RistrettoSha512 = group.Ristretto255
	// P256Sha256 is the NIST P-256 group.
	P256Sha256 = group.P256
	// P384Sha384 is the NIST P-384 group.
	P384Sha384 = group.P384
	// P521Sha512 is the NIST P-521 group.
	P521Sha512 = group.P521
)

const confIDsLength = 4

var (
	errInvalidOPRFid = fmt.Errorf("%w: invalid OPRF group id", ErrInvalidConfiguration)
	errInvalidAKEid  = fmt.Errorf("%w: invalid AKE group id", ErrInvalidConfiguration)
	errInvalidHASHid = fmt.Errorf("%w: invalid hash id", ErrInvalidConfiguration)
	errInvalidKSFid  = fmt.Errorf("%w: invalid KSF id", ErrInvalidConfiguration)
)

// ErrConfigurationInvalidLength is returned by DeserializeConfiguration when
// the input is too short to hold a configuration.
var ErrConfigurationInvalidLength = fmt.Errorf("%w: truncated configuration", ErrSerialization)

// Configuration represents an OPAQUE configuration: the concrete primitives
// (group, AEAD, KDF, key pair, slow hash) the protocol is instantiated
// with. OPRF and AKE are recommended to be the same group (the default
// profile uses Ristretto255 for both); Hash is shared by the transcript
// hash, HKDF, and HMAC.
type Configuration struct {
	Context []byte
	Hash    crypto.Hash     `json:"hash"`
	KSF     bmksf.Identifier `json:"ksf"`
	OPRF    Group           `json:"oprf"`
	AKE     Group           `json:"ake"`
}

// DefaultConfiguration returns a configuration with strong, production
// parameters: Ristretto255 for both OPRF and AKE, SHA-256, and scrypt as
// the slow hash. Tests that need a fast, deterministic run should set KSF
// to ksf.Identity instead.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		OPRF:    group.Ristretto255,
		AKE:     group.Ristretto255,
		KSF:     ksf.Scrypt,
		Hash:    crypto.SHA256,
		Context: nil,
	}
}

// Client returns a newly instantiated Client from the Configuration.
func (c *Configuration) Client() (*Client, error) {
	return NewClient(c)
}

// Server returns a newly instantiated Server from the Configuration.
func (c *Configuration) Server() (*Server, error) {
	return NewServer(c)
}

// KeyGen returns a fresh private/public AKE key pair in the Configuration's
// AKE group, for the server's long-term static key.
func (c *Configuration) KeyGen(rng io.Reader) (secretKey, publicKey []byte, err error) {
	sk, err := c.AKE.RandomScalar(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to generate AKE key pair: %v", ErrInternal, err)
	}

	pk := c.AKE.Base().Multiply(sk)

	return sk.Encode(), pk.Encode(), nil
}

// hashSize returns the digest size, in bytes, of this Configuration's Hash.
func (c *Configuration) hashSize() int { return xhash.Size(c.Hash) }

// verify returns an error on the first non-compliant parameter, nil
// otherwise.
func (c *Configuration) verify() error {
	if !c.OPRF.Available() {
		return errInvalidOPRFid
	}

	if !c.AKE.Available() {
		return errInvalidAKEid
	}

	if !xhash.Available(c.Hash) {
		return errInvalidHASHid
	}

	if c.KSF != 0 && !ksf.Supported(c.KSF) {
		return errInvalidKSFid
	}

	return nil
}

// Deserializer returns a Deserializer bound to this Configuration's
// primitive sizes.
func (c *Configuration) Deserializer() (*Deserializer, error) {
	if err := c.verify(); err != nil {
		return nil, err
	}

	return &Deserializer{conf: c}, nil
}

// Serialize returns the byte encoding of the Configuration.
func (c *Configuration) Serialize() []byte {
	ids := []byte{byte(c.OPRF), byte(c.AKE), byte(c.KSF), byte(c.Hash)}
	return encoding.Concatenate(ids, encoding.EncodeVector(c.Context))
}

// DeserializeConfiguration decodes encoded into a Configuration.
func DeserializeConfiguration(encoded []byte) (*Configuration, error) {
	if len(encoded) < confIDsLength+2 {
		return nil, ErrConfigurationInvalidLength
	}

	ctx, _, err := encoding.DecodeVector(encoded[confIDsLength:])
	if err != nil {
		return nil, fmt.Errorf("%w: decoding configuration context: %v", ErrSerialization, err)
	}

	c := &Configuration{
		OPRF:    Group(encoded[0]),
		AKE:     Group(encoded[1]),
		KSF:     bmksf.Identifier(encoded[2]),
		Hash:    crypto.Hash(encoded[3]),
		Context: ctx,
	}

	if err := c.verify(); err != nil {
		return nil, err
	}

	return c, nil
}

// ClientRecord is the server-side storage record for one user: the
// credential identifier and identity the server indexes by, the OPRF key
// used during that user's registration, and the complete
// RegistrationRecord (client static public key, envelope) produced by
// that registration.
type ClientRecord struct {
	*message.RegistrationRecord
	CredentialIdentifier []byte
	ClientIdentity       []byte
	OPRFKey              []byte
}

// GetFakeRecord builds a ClientRecord indistinguishable, on the wire, from a
// genuine registered user, to let Server.LoginStart respond identically
// whether or not credentialIdentifier is actually registered - defending
// against client-enumeration timing/shape oracles.
func (c *Configuration) GetFakeRecord(credentialIdentifier []byte, rng io.Reader) (*ClientRecord, error) {
	if err := c.verify(); err != nil {
		return nil, err
	}

	pk, err := c.AKE.RandomScalar(rng)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate fake record key: %v", ErrInternal, err)
	}

	publicKey := c.AKE.Base().Multiply(pk)

	fakeOPRFKey, err := c.OPRF.RandomScalar(rng)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate fake OPRF key: %v", ErrInternal, err)
	}

	nonce := make([]byte, aead.NonceLen)
	if _, err := io.ReadFull(rng, nonce); err != nil {
		return nil, fmt.Errorf("%w: failed to generate fake record nonce: %v", ErrInternal, err)
	}

	keyLen := c.AKE.ScalarLength()
	ctLen := keyLen + aead.TagLen

	fakeCT := make([]byte, ctLen)
	if _, err := io.ReadFull(rng, fakeCT); err != nil {
		return nil, fmt.Errorf("%w: failed to generate fake record ciphertext: %v", ErrInternal, err)
	}

	fakeMAC := make([]byte, xhash.Size(c.Hash))
	if _, err := io.ReadFull(rng, fakeMAC); err != nil {
		return nil, fmt.Errorf("%w: failed to generate fake record mac: %v", ErrInternal, err)
	}

	record := &message.RegistrationRecord{
		ClientPublicKey: publicKey,
		Envelope: &envelope.Ciphertext{
			Nonce:      nonce,
			AEADCipher: fakeCT,
			MAC:        fakeMAC,
		},
	}

	return &ClientRecord{
		RegistrationRecord:   record,
		CredentialIdentifier: credentialIdentifier,
		ClientIdentity:       nil,
		OPRFKey:              fakeOPRFKey.Encode(),
	}, nil
}
