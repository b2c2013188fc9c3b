// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package envelope_test

import (
	"crypto"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keyforge/opaque/internal/envelope"
)

func keys() (encKey, macKey []byte) {
	encKey = make([]byte, 32)
	macKey = make([]byte, 32)
	_, _ = rand.Read(encKey)
	_, _ = rand.Read(macKey)

	return encKey, macKey
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	encKey, macKey := keys()
	plaintext := []byte("a static secret key, 32 bytes!!!")
	ad := []byte("server static public key")

	env, err := envelope.Encrypt(crypto.SHA256, encKey, macKey, plaintext, ad, rand.Reader)
	require.NoError(t, err)

	got, err := envelope.Decrypt(crypto.SHA256, encKey, macKey, env, ad)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestDecryptRejectsTamperedMAC(t *testing.T) {
	encKey, macKey := keys()
	plaintext := []byte("a static secret key, 32 bytes!!!")
	ad := []byte("server static public key")

	env, err := envelope.Encrypt(crypto.SHA256, encKey, macKey, plaintext, ad, rand.Reader)
	require.NoError(t, err)

	env.MAC[0] ^= 0xff

	_, err = envelope.Decrypt(crypto.SHA256, encKey, macKey, env, ad)
	require.ErrorIs(t, err, envelope.ErrDecryptionHmac)
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	encKey, macKey := keys()
	plaintext := []byte("a static secret key, 32 bytes!!!")
	ad := []byte("server static public key")

	env, err := envelope.Encrypt(crypto.SHA256, encKey, macKey, plaintext, ad, rand.Reader)
	require.NoError(t, err)

	env.AEADCipher[0] ^= 0xff

	_, err = envelope.Decrypt(crypto.SHA256, encKey, macKey, env, ad)
	require.ErrorIs(t, err, envelope.ErrDecryptionHmac)
}

func TestDecryptRejectsWrongAssociatedData(t *testing.T) {
	encKey, macKey := keys()
	plaintext := []byte("a static secret key, 32 bytes!!!")

	env, err := envelope.Encrypt(crypto.SHA256, encKey, macKey, plaintext, []byte("server pk A"), rand.Reader)
	require.NoError(t, err)

	_, err = envelope.Decrypt(crypto.SHA256, encKey, macKey, env, []byte("server pk B"))
	require.ErrorIs(t, err, envelope.ErrDecryptionHmac)
}

// Size must depend only on plaintext length, never on the plaintext itself,
// so the ciphertext length never leaks anything about the password.
func TestSizeIsIndependentOfPlaintextContent(t *testing.T) {
	encKey, macKey := keys()

	short := []byte("short key")
	long := make([]byte, len(short))
	copy(long, short)
	long[0] = 'S'

	env1, err := envelope.Encrypt(crypto.SHA256, encKey, macKey, short, nil, rand.Reader)
	require.NoError(t, err)

	env2, err := envelope.Encrypt(crypto.SHA256, encKey, macKey, long, nil, rand.Reader)
	require.NoError(t, err)

	require.Equal(t, len(env1.Serialize()), len(env2.Serialize()))
	require.Equal(t, envelope.Size(len(short), crypto.SHA256), len(env1.Serialize()))
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	encKey, macKey := keys()
	plaintext := []byte("a static secret key, 32 bytes!!!")

	env, err := envelope.Encrypt(crypto.SHA256, encKey, macKey, plaintext, nil, rand.Reader)
	require.NoError(t, err)

	b := env.Serialize()
	got, err := envelope.Deserialize(b, len(plaintext), crypto.SHA256)
	require.NoError(t, err)
	require.Equal(t, env.Nonce, got.Nonce)
	require.Equal(t, env.AEADCipher, got.AEADCipher)
	require.Equal(t, env.MAC, got.MAC)
}

func TestDeserializeRejectsWrongLength(t *testing.T) {
	_, err := envelope.Deserialize(make([]byte, 3), 32, crypto.SHA256)
	require.Error(t, err)
}
