// SPDX-License-Identifier: MIT
//
// Copyright (C) 2021 Daniel Bourdrez. All Rights Reserved.
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package ake implements the core's AKE sub-protocol: a three-flight 3DH
// handshake producing a shared session secret bound to the transcript
// carried by the outer Login messages. Any AKE meeting the (KE1/KE2/KE3,
// states, shared_secret) contract is a valid substitute; this module
// keeps 3DH rather than inventing a new one.
//
// The transcript/key-schedule helpers (transcriptHash, deriveSecret,
// macKeys, keySchedule, dh3) are kept structurally close to the
// reference OPAQUE library this package grew out of, rewritten against
// this module's internal/group and internal/kdf packages and against the
// message package's RKR-sealing CredentialResponse instead of a
// masked-OPRF one.
package ake

import (
	"crypto"
	"crypto/hmac"
	stdhash "hash"

	"github.com/keyforge/opaque/internal/group"
	"github.com/keyforge/opaque/internal/kdf"
	"github.com/keyforge/opaque/internal/xhash"
)

// NonceLen is the fixed length of the AKE's nonces.
const NonceLen = 32

const (
	labelHandshake = "3DH Handshake Secret"
	labelSession   = "3DH Session Secret"
	labelMacServer = "3DH Server MAC"
	labelMacClient = "3DH Client MAC"
)

// Params configures an AKE run: the group the key pairs live in, the hash
// used for the transcript, HKDF, and MACs, and an application context byte
// string mixed into the transcript.
type Params struct {
	Group   group.ID
	Hash    crypto.Hash
	Context []byte
}

func newDigest(h crypto.Hash) stdhash.Hash { return xhash.New(h) }

func transcriptHash(p Params, l1, l2 []byte, peerNonce []byte, peerKeyshare *group.Element) []byte {
	d := newDigest(p.Hash)
	d.Write([]byte("OPAQUE3DH"))
	d.Write(p.Context)
	d.Write(l1)
	d.Write(l2)
	d.Write(peerNonce)
	d.Write(peerKeyshare.Encode())

	return d.Sum(nil)
}

func deriveSecret(p Params, prk []byte, label string, transcript []byte) []byte {
	out, _ := kdf.Expand(p.Hash, prk, []byte(label+string(transcript)), xhash.Size(p.Hash))
	return out
}

func macKeys(p Params, handshakeSecret []byte) (serverKey, clientKey []byte) {
	serverKey, _ = kdf.Expand(p.Hash, handshakeSecret, []byte(labelMacServer), xhash.Size(p.Hash))
	clientKey, _ = kdf.Expand(p.Hash, handshakeSecret, []byte(labelMacClient), xhash.Size(p.Hash))

	return serverKey, clientKey
}

func mac(p Params, key, data []byte) []byte {
	m := hmac.New(func() stdhash.Hash { return newDigest(p.Hash) }, key)
	m.Write(data)

	return m.Sum(nil)
}

// keySchedule runs the 3DH key schedule shared by both sides: derive
// handshake/session secrets from ikm and th, then the per-role MAC keys and
// the server's MAC over th. Returns the session secret, the server MAC to
// carry in KE2, and the client MAC the sender/verifier expects in KE3.
func keySchedule(p Params, ikm, th []byte) (sessionSecret, serverMac, expectedClientMac []byte) {
	prk := kdf.Extract(p.Hash, nil, ikm)
	handshakeSecret := deriveSecret(p, prk, labelHandshake, th)
	sessionSecret = deriveSecret(p, prk, labelSession, th)

	serverKey, clientKey := macKeys(p, handshakeSecret)
	serverMac = mac(p, serverKey, th)

	d := newDigest(p.Hash)
	d.Write(th)
	d.Write(serverMac)
	transcript3 := d.Sum(nil)

	expectedClientMac = mac(p, clientKey, transcript3)

	return sessionSecret, serverMac, expectedClientMac
}

// dh3 computes the three 3DH terms, returning their concatenated encoding
// e1^s1 || e2^s2 || e3^s3.
func dh3(e1 *group.Element, s1 *group.Scalar, e2 *group.Element, s2 *group.Scalar, e3 *group.Element, s3 *group.Scalar) []byte {
	t1 := e1.Multiply(s1).Encode()
	t2 := e2.Multiply(s2).Encode()
	t3 := e3.Multiply(s3).Encode()

	out := make([]byte, 0, len(t1)+len(t2)+len(t3))
	out = append(out, t1...)
	out = append(out, t2...)

	return append(out, t3...)
}
