// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package group_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keyforge/opaque/internal/group"
)

var groups = []group.ID{group.Ristretto255, group.P256, group.P384, group.P521}

func TestScalarEncodeDecodeRoundTrip(t *testing.T) {
	for _, g := range groups {
		s, err := g.RandomScalar(rand.Reader)
		require.NoError(t, err)

		decoded, err := g.DecodeScalar(s.Encode())
		require.NoError(t, err)
		require.Equal(t, s.Encode(), decoded.Encode())
	}
}

func TestElementEncodeDecodeRoundTrip(t *testing.T) {
	for _, g := range groups {
		s, err := g.RandomScalar(rand.Reader)
		require.NoError(t, err)

		el := g.Base().Multiply(s)
		decoded, err := g.DecodeElement(el.Encode())
		require.NoError(t, err)
		require.True(t, el.Equal(decoded))
	}
}

func TestDecodeElementRejectsIdentity(t *testing.T) {
	for _, g := range groups {
		identity := g.NewElement()
		_, err := g.DecodeElement(identity.Encode())
		require.ErrorIs(t, err, group.ErrIdentityElement)
	}
}

func TestDecodeScalarRejectsWrongLength(t *testing.T) {
	for _, g := range groups {
		_, err := g.DecodeScalar(make([]byte, g.ScalarLength()+1))
		require.ErrorIs(t, err, group.ErrInvalidScalar)
	}
}

func TestDecodeElementRejectsWrongLength(t *testing.T) {
	for _, g := range groups {
		_, err := g.DecodeElement(make([]byte, g.ElementLength()+1))
		require.ErrorIs(t, err, group.ErrInvalidElement)
	}
}

func TestInvertRoundTrip(t *testing.T) {
	g := group.Ristretto255

	s, err := g.RandomScalar(rand.Reader)
	require.NoError(t, err)

	prod := s.Invert().Invert()
	require.Equal(t, s.Encode(), prod.Encode())
}
