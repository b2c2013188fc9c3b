// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package message defines the six wire messages of the Registration and
// Login drivers plus the AKE's three embedded flights (KE1/KE2/KE3).
// Every message is a fixed-width concatenation of its fields so that no
// message length depends on a secret value.
//
// The credential response carries a sealed RKR envelope directly, rather
// than an XOR-masked one, so the server never holds anything it could use
// to forge a client's static key pair.
package message

import (
	"crypto"
	"fmt"

	"github.com/keyforge/opaque/internal/envelope"
	"github.com/keyforge/opaque/internal/group"
	"github.com/keyforge/opaque/internal/xhash"
)

// RegistrationRequest is the client's first registration message: the
// OPRF-blinded password.
type RegistrationRequest struct {
	BlindedMessage *group.Element
}

// Serialize returns α, ElemLen bytes.
func (m *RegistrationRequest) Serialize() []byte {
	return m.BlindedMessage.Encode()
}

// DeserializeRegistrationRequest parses a RegistrationRequest from b.
func DeserializeRegistrationRequest(g group.ID, b []byte) (*RegistrationRequest, error) {
	el, err := g.DecodeElement(b)
	if err != nil {
		return nil, fmt.Errorf("message: invalid registration request: %w", err)
	}

	return &RegistrationRequest{BlindedMessage: el}, nil
}

// RegistrationResponse is the server's response to a RegistrationRequest:
// the OPRF-evaluated element.
type RegistrationResponse struct {
	EvaluatedMessage *group.Element
}

// Serialize returns β, ElemLen bytes.
func (m *RegistrationResponse) Serialize() []byte {
	return m.EvaluatedMessage.Encode()
}

// DeserializeRegistrationResponse parses a RegistrationResponse from b.
func DeserializeRegistrationResponse(g group.ID, b []byte) (*RegistrationResponse, error) {
	el, err := g.DecodeElement(b)
	if err != nil {
		return nil, fmt.Errorf("message: invalid registration response: %w", err)
	}

	return &RegistrationResponse{EvaluatedMessage: el}, nil
}

// RegistrationRecord is the client's final registration message, and the
// persisted form of a complete server-side password file entry: the
// client's AKE public key and the envelope sealing its secret key.
type RegistrationRecord struct {
	ClientPublicKey *group.Element
	Envelope        *envelope.Ciphertext
}

// Serialize returns envelope || client_s_pk, envelope first.
func (m *RegistrationRecord) Serialize() []byte {
	out := m.Envelope.Serialize()
	return append(out, m.ClientPublicKey.Encode()...)
}

// DeserializeRegistrationRecord parses a RegistrationRecord from b. akeGroup
// is the group the client's static key pair lives in; h is the configured
// transcript/MAC hash, whose size fixes the envelope's MAC length.
func DeserializeRegistrationRecord(akeGroup group.ID, h crypto.Hash, b []byte) (*RegistrationRecord, error) {
	keyLen := akeGroup.ScalarLength()
	envSize := envelope.Size(keyLen, h)

	if len(b) != envSize+akeGroup.ElementLength() {
		return nil, fmt.Errorf("message: invalid registration record length %d", len(b))
	}

	env, err := envelope.Deserialize(b[:envSize], keyLen, h)
	if err != nil {
		return nil, fmt.Errorf("message: invalid registration record envelope: %w", err)
	}

	pk, err := akeGroup.DecodeElement(b[envSize:])
	if err != nil {
		return nil, fmt.Errorf("message: invalid registration record public key: %w", err)
	}

	return &RegistrationRecord{ClientPublicKey: pk, Envelope: env}, nil
}

// KE1 is the client's AKE ephemeral share, embedded in LoginFirstMessage.
type KE1 struct {
	ClientNonce    []byte
	ClientKeyshare *group.Element
}

// Serialize returns client_nonce || client_e_pk.
func (m *KE1) Serialize() []byte {
	out := append([]byte{}, m.ClientNonce...)
	return append(out, m.ClientKeyshare.Encode()...)
}

func deserializeKE1(akeGroup group.ID, nonceLen int, b []byte) (*KE1, error) {
	if len(b) != nonceLen+akeGroup.ElementLength() {
		return nil, fmt.Errorf("message: invalid KE1 length %d", len(b))
	}

	ks, err := akeGroup.DecodeElement(b[nonceLen:])
	if err != nil {
		return nil, fmt.Errorf("message: invalid KE1 keyshare: %w", err)
	}

	return &KE1{ClientNonce: append([]byte{}, b[:nonceLen]...), ClientKeyshare: ks}, nil
}

// KE2 is the server's AKE response, embedded in LoginSecondMessage.
type KE2 struct {
	ServerNonce    []byte
	ServerKeyshare *group.Element
	ServerMac      []byte
}

// Serialize returns server_nonce || server_e_pk || server_mac.
func (m *KE2) Serialize() []byte {
	out := append([]byte{}, m.ServerNonce...)
	out = append(out, m.ServerKeyshare.Encode()...)
	return append(out, m.ServerMac...)
}

func deserializeKE2(akeGroup group.ID, nonceLen, macLen int, b []byte) (*KE2, error) {
	want := nonceLen + akeGroup.ElementLength() + macLen
	if len(b) != want {
		return nil, fmt.Errorf("message: invalid KE2 length %d", len(b))
	}

	ks, err := akeGroup.DecodeElement(b[nonceLen : nonceLen+akeGroup.ElementLength()])
	if err != nil {
		return nil, fmt.Errorf("message: invalid KE2 keyshare: %w", err)
	}

	return &KE2{
		ServerNonce:    append([]byte{}, b[:nonceLen]...),
		ServerKeyshare: ks,
		ServerMac:      append([]byte{}, b[nonceLen+akeGroup.ElementLength():]...),
	}, nil
}

// KE3 is the client's final AKE message, embedded in LoginThirdMessage.
type KE3 struct {
	ClientMac []byte
}

// Serialize returns client_mac.
func (m *KE3) Serialize() []byte {
	return append([]byte{}, m.ClientMac...)
}

func deserializeKE3(macLen int, b []byte) (*KE3, error) {
	if len(b) != macLen {
		return nil, fmt.Errorf("message: invalid KE3 length %d", len(b))
	}

	return &KE3{ClientMac: append([]byte{}, b...)}, nil
}

// CredentialRequest carries the login OPRF blind, distinct in type from
// RegistrationRequest even though its wire shape is identical, so the two
// protocols can't be confused by type.
type CredentialRequest struct {
	BlindedMessage *group.Element
}

// Serialize returns α, ElemLen bytes.
func (m *CredentialRequest) Serialize() []byte {
	return m.BlindedMessage.Encode()
}

// CredentialResponse carries the login OPRF evaluation and the stored
// envelope: the server never decrypts it, only forwards it.
type CredentialResponse struct {
	EvaluatedMessage *group.Element
	Envelope         *envelope.Ciphertext
}

// Serialize returns β || envelope.
func (m *CredentialResponse) Serialize() []byte {
	out := m.EvaluatedMessage.Encode()
	return append(out, m.Envelope.Serialize()...)
}

// LoginFirstMessage is the client's first login message.
type LoginFirstMessage struct {
	CredentialRequest *CredentialRequest
	KE1               *KE1
}

// Serialize returns α || ke1_message.
func (m *LoginFirstMessage) Serialize() []byte {
	out := m.CredentialRequest.Serialize()
	return append(out, m.KE1.Serialize()...)
}

// DeserializeLoginFirstMessage parses a LoginFirstMessage. oprfGroup and
// akeGroup may differ, since the OPRF and the AKE are independently
// configured groups; nonceLen is the AKE's configured nonce length.
func DeserializeLoginFirstMessage(oprfGroup, akeGroup group.ID, nonceLen int, b []byte) (*LoginFirstMessage, error) {
	elemLen := oprfGroup.ElementLength()
	if len(b) < elemLen {
		return nil, fmt.Errorf("message: invalid login first message length %d", len(b))
	}

	blinded, err := oprfGroup.DecodeElement(b[:elemLen])
	if err != nil {
		return nil, fmt.Errorf("message: invalid login first message blind: %w", err)
	}

	ke1, err := deserializeKE1(akeGroup, nonceLen, b[elemLen:])
	if err != nil {
		return nil, err
	}

	return &LoginFirstMessage{CredentialRequest: &CredentialRequest{BlindedMessage: blinded}, KE1: ke1}, nil
}

// LoginSecondMessage is the server's response to a LoginFirstMessage.
type LoginSecondMessage struct {
	CredentialResponse *CredentialResponse
	KE2                *KE2
}

// Serialize returns β || envelope || ke2_message.
func (m *LoginSecondMessage) Serialize() []byte {
	out := m.CredentialResponse.Serialize()
	return append(out, m.KE2.Serialize()...)
}

// DeserializeLoginSecondMessage parses a LoginSecondMessage.
func DeserializeLoginSecondMessage(
	oprfGroup, akeGroup group.ID,
	h crypto.Hash,
	nonceLen int,
	b []byte,
) (*LoginSecondMessage, error) {
	elemLen := oprfGroup.ElementLength()
	keyLen := akeGroup.ScalarLength()
	envSize := envelope.Size(keyLen, h)

	if len(b) < elemLen+envSize {
		return nil, fmt.Errorf("message: invalid login second message length %d", len(b))
	}

	evaluated, err := oprfGroup.DecodeElement(b[:elemLen])
	if err != nil {
		return nil, fmt.Errorf("message: invalid login second message evaluation: %w", err)
	}

	env, err := envelope.Deserialize(b[elemLen:elemLen+envSize], keyLen, h)
	if err != nil {
		return nil, fmt.Errorf("message: invalid login second message envelope: %w", err)
	}

	ke2, err := deserializeKE2(akeGroup, nonceLen, xhash.Size(h), b[elemLen+envSize:])
	if err != nil {
		return nil, err
	}

	return &LoginSecondMessage{
		CredentialResponse: &CredentialResponse{EvaluatedMessage: evaluated, Envelope: env},
		KE2:                ke2,
	}, nil
}

// LoginThirdMessage is the client's final login message.
type LoginThirdMessage struct {
	KE3 *KE3
}

// Serialize returns ke3_message.
func (m *LoginThirdMessage) Serialize() []byte {
	return m.KE3.Serialize()
}

// DeserializeLoginThirdMessage parses a LoginThirdMessage.
func DeserializeLoginThirdMessage(h crypto.Hash, b []byte) (*LoginThirdMessage, error) {
	ke3, err := deserializeKE3(xhash.Size(h), b)
	if err != nil {
		return nil, err
	}

	return &LoginThirdMessage{KE3: ke3}, nil
}
