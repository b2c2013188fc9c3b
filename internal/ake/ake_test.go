// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ake_test

import (
	"crypto"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keyforge/opaque/internal/ake"
	"github.com/keyforge/opaque/internal/group"
	"github.com/keyforge/opaque/internal/keypair"
)

func params() ake.Params {
	return ake.Params{Group: group.Ristretto255, Hash: crypto.SHA256, Context: []byte("test context")}
}

// runHandshake drives a full KE1/KE2/KE3 exchange and returns both sides'
// derived session secrets plus the server's Finalize verdict.
func runHandshake(t *testing.T) (clientSecret, serverSecret []byte, finalized bool) {
	t.Helper()

	p := params()

	clientStaticKP, err := keypair.Generate(p.Group, rand.Reader)
	require.NoError(t, err)

	serverStaticKP, err := keypair.Generate(p.Group, rand.Reader)
	require.NoError(t, err)

	clientState, ke1, err := ake.GenerateKE1(p, rand.Reader, nil)
	require.NoError(t, err)

	l1 := ke1.Serialize()
	l2 := []byte("credential response bytes")

	serverState, ke2, err := ake.GenerateKE2(
		p, rand.Reader, l1, l2,
		ke1.ClientKeyshare, clientStaticKP.PublicKey, serverStaticKP.SecretKey, nil,
	)
	require.NoError(t, err)

	clientSecret, ke3, err := ake.GenerateKE3(
		p, clientState, l1, l2, ke2, serverStaticKP.PublicKey, clientStaticKP.SecretKey,
	)
	require.NoError(t, err)

	finalized = ake.Finalize(serverState, ke3)

	return clientSecret, serverState.SessionSecret, finalized
}

func TestHandshakeAgreesOnSessionSecret(t *testing.T) {
	clientSecret, serverSecret, finalized := runHandshake(t)

	require.True(t, finalized)
	require.Equal(t, serverSecret, clientSecret)
	require.NotEmpty(t, clientSecret)
}

func TestTamperedServerMacRejected(t *testing.T) {
	p := params()

	clientStaticKP, err := keypair.Generate(p.Group, rand.Reader)
	require.NoError(t, err)
	serverStaticKP, err := keypair.Generate(p.Group, rand.Reader)
	require.NoError(t, err)

	clientState, ke1, err := ake.GenerateKE1(p, rand.Reader, nil)
	require.NoError(t, err)

	l1 := ke1.Serialize()
	l2 := []byte("credential response bytes")

	_, ke2, err := ake.GenerateKE2(
		p, rand.Reader, l1, l2,
		ke1.ClientKeyshare, clientStaticKP.PublicKey, serverStaticKP.SecretKey, nil,
	)
	require.NoError(t, err)

	ke2.ServerMac[0] ^= 0xff

	_, _, err = ake.GenerateKE3(p, clientState, l1, l2, ke2, serverStaticKP.PublicKey, clientStaticKP.SecretKey)
	require.ErrorIs(t, err, ake.ErrKeyExchangeMac)
}

func TestTamperedClientMacRejected(t *testing.T) {
	p := params()

	clientStaticKP, err := keypair.Generate(p.Group, rand.Reader)
	require.NoError(t, err)
	serverStaticKP, err := keypair.Generate(p.Group, rand.Reader)
	require.NoError(t, err)

	clientState, ke1, err := ake.GenerateKE1(p, rand.Reader, nil)
	require.NoError(t, err)

	l1 := ke1.Serialize()
	l2 := []byte("credential response bytes")

	serverState, ke2, err := ake.GenerateKE2(
		p, rand.Reader, l1, l2,
		ke1.ClientKeyshare, clientStaticKP.PublicKey, serverStaticKP.SecretKey, nil,
	)
	require.NoError(t, err)

	_, ke3, err := ake.GenerateKE3(p, clientState, l1, l2, ke2, serverStaticKP.PublicKey, clientStaticKP.SecretKey)
	require.NoError(t, err)

	ke3.ClientMac[0] ^= 0xff

	require.False(t, ake.Finalize(serverState, ke3))
}

func TestClientStateSerializeDeserializeRoundTrip(t *testing.T) {
	p := params()

	state, _, err := ake.GenerateKE1(p, rand.Reader, nil)
	require.NoError(t, err)

	b := state.SerializeState()
	got, err := ake.DeserializeClientState(p.Group, b)
	require.NoError(t, err)

	require.Equal(t, state.EphemeralSecret.Encode(), got.EphemeralSecret.Encode())
	require.Equal(t, state.Nonce, got.Nonce)
	require.True(t, state.EphemeralPublic.Equal(got.EphemeralPublic))
}

func TestServerStateSerializeDeserializeRoundTrip(t *testing.T) {
	p := params()

	clientStaticKP, err := keypair.Generate(p.Group, rand.Reader)
	require.NoError(t, err)
	serverStaticKP, err := keypair.Generate(p.Group, rand.Reader)
	require.NoError(t, err)

	_, ke1, err := ake.GenerateKE1(p, rand.Reader, nil)
	require.NoError(t, err)

	l1 := ke1.Serialize()
	l2 := []byte("credential response bytes")

	serverState, _, err := ake.GenerateKE2(
		p, rand.Reader, l1, l2,
		ke1.ClientKeyshare, clientStaticKP.PublicKey, serverStaticKP.SecretKey, nil,
	)
	require.NoError(t, err)

	b := serverState.SerializeState()
	got, err := ake.DeserializeServerState(b, len(serverState.ClientMac), len(serverState.SessionSecret))
	require.NoError(t, err)

	require.Equal(t, serverState.ClientMac, got.ClientMac)
	require.Equal(t, serverState.SessionSecret, got.SessionSecret)
}
