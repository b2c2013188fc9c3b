// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package message_test

import (
	"crypto"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keyforge/opaque/internal/ake"
	"github.com/keyforge/opaque/internal/envelope"
	"github.com/keyforge/opaque/internal/group"
	"github.com/keyforge/opaque/message"
)

const testNonceLen = ake.NonceLen

func randomElement(t *testing.T, g group.ID) *group.Element {
	t.Helper()

	s, err := g.RandomScalar(rand.Reader)
	require.NoError(t, err)

	return g.Base().Multiply(s)
}

func testEnvelope(t *testing.T, h crypto.Hash) *envelope.Ciphertext {
	t.Helper()

	encKey := make([]byte, 32)
	macKey := make([]byte, 32)
	_, _ = rand.Read(encKey)
	_, _ = rand.Read(macKey)

	env, err := envelope.Encrypt(h, encKey, macKey, make([]byte, group.Ristretto255.ScalarLength()), nil, rand.Reader)
	require.NoError(t, err)

	return env
}

func TestRegistrationRequestRoundTrip(t *testing.T) {
	g := group.Ristretto255
	m := &message.RegistrationRequest{BlindedMessage: randomElement(t, g)}

	got, err := message.DeserializeRegistrationRequest(g, m.Serialize())
	require.NoError(t, err)
	require.True(t, m.BlindedMessage.Equal(got.BlindedMessage))
}

func TestRegistrationRequestRejectsWrongLength(t *testing.T) {
	_, err := message.DeserializeRegistrationRequest(group.Ristretto255, make([]byte, 3))
	require.Error(t, err)
}

func TestRegistrationResponseRoundTrip(t *testing.T) {
	g := group.Ristretto255
	m := &message.RegistrationResponse{EvaluatedMessage: randomElement(t, g)}

	got, err := message.DeserializeRegistrationResponse(g, m.Serialize())
	require.NoError(t, err)
	require.True(t, m.EvaluatedMessage.Equal(got.EvaluatedMessage))
}

func TestRegistrationRecordRoundTrip(t *testing.T) {
	g := group.Ristretto255
	h := crypto.SHA256

	m := &message.RegistrationRecord{
		ClientPublicKey: randomElement(t, g),
		Envelope:        testEnvelope(t, h),
	}

	got, err := message.DeserializeRegistrationRecord(g, h, m.Serialize())
	require.NoError(t, err)
	require.True(t, m.ClientPublicKey.Equal(got.ClientPublicKey))
	require.Equal(t, m.Envelope.Serialize(), got.Envelope.Serialize())
}

func TestLoginFirstMessageRoundTrip(t *testing.T) {
	g := group.Ristretto255

	nonce := make([]byte, testNonceLen)
	_, _ = rand.Read(nonce)

	m := &message.LoginFirstMessage{
		CredentialRequest: &message.CredentialRequest{BlindedMessage: randomElement(t, g)},
		KE1:               &message.KE1{ClientNonce: nonce, ClientKeyshare: randomElement(t, g)},
	}

	got, err := message.DeserializeLoginFirstMessage(g, g, testNonceLen, m.Serialize())
	require.NoError(t, err)
	require.True(t, m.CredentialRequest.BlindedMessage.Equal(got.CredentialRequest.BlindedMessage))
	require.Equal(t, m.KE1.ClientNonce, got.KE1.ClientNonce)
	require.True(t, m.KE1.ClientKeyshare.Equal(got.KE1.ClientKeyshare))
}

func TestLoginSecondMessageRoundTrip(t *testing.T) {
	g := group.Ristretto255
	h := crypto.SHA256

	nonce := make([]byte, testNonceLen)
	_, _ = rand.Read(nonce)
	mac := make([]byte, 32)
	_, _ = rand.Read(mac)

	m := &message.LoginSecondMessage{
		CredentialResponse: &message.CredentialResponse{
			EvaluatedMessage: randomElement(t, g),
			Envelope:         testEnvelope(t, h),
		},
		KE2: &message.KE2{ServerNonce: nonce, ServerKeyshare: randomElement(t, g), ServerMac: mac},
	}

	got, err := message.DeserializeLoginSecondMessage(g, g, h, testNonceLen, m.Serialize())
	require.NoError(t, err)
	require.True(t, m.CredentialResponse.EvaluatedMessage.Equal(got.CredentialResponse.EvaluatedMessage))
	require.Equal(t, m.CredentialResponse.Envelope.Serialize(), got.CredentialResponse.Envelope.Serialize())
	require.Equal(t, m.KE2.ServerNonce, got.KE2.ServerNonce)
	require.True(t, m.KE2.ServerKeyshare.Equal(got.KE2.ServerKeyshare))
	require.Equal(t, m.KE2.ServerMac, got.KE2.ServerMac)
}

func TestLoginThirdMessageRoundTrip(t *testing.T) {
	h := crypto.SHA256

	mac := make([]byte, 32)
	_, _ = rand.Read(mac)

	m := &message.LoginThirdMessage{KE3: &message.KE3{ClientMac: mac}}

	got, err := message.DeserializeLoginThirdMessage(h, m.Serialize())
	require.NoError(t, err)
	require.Equal(t, m.KE3.ClientMac, got.KE3.ClientMac)
}

func TestLoginThirdMessageRejectsWrongLength(t *testing.T) {
	_, err := message.DeserializeLoginThirdMessage(crypto.SHA256, make([]byte, 5))
	require.Error(t, err)
}
