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

	"github.com/keyforge/opaque/internal/ake"
	"github.com/keyforge/opaque/message"
)

// Deserializer parses the six wire messages of the Registration and Login
// drivers under a fixed Configuration's group and hash sizes. Obtain one
// via Configuration.Deserializer.
type Deserializer struct {
	conf *Configuration
}

// RegistrationRequest parses a RegisterFirstMessage.
func (d *Deserializer) RegistrationRequest(b []byte) (*message.RegistrationRequest, error) {
	m, err := message.DeserializeRegistrationRequest(d.conf.OPRF, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	return m, nil
}

// RegistrationResponse parses a RegisterSecondMessage.
func (d *Deserializer) RegistrationResponse(b []byte) (*message.RegistrationResponse, error) {
	m, err := message.DeserializeRegistrationResponse(d.conf.OPRF, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	return m, nil
}

// RegistrationRecord parses a RegisterThirdMessage.
func (d *Deserializer) RegistrationRecord(b []byte) (*message.RegistrationRecord, error) {
	m, err := message.DeserializeRegistrationRecord(d.conf.AKE, d.conf.Hash, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	return m, nil
}

// LoginFirstMessage parses a LoginFirstMessage.
func (d *Deserializer) LoginFirstMessage(b []byte) (*message.LoginFirstMessage, error) {
	m, err := message.DeserializeLoginFirstMessage(d.conf.OPRF, d.conf.AKE, ake.NonceLen, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	return m, nil
}

// LoginSecondMessage parses a LoginSecondMessage.
func (d *Deserializer) LoginSecondMessage(b []byte) (*message.LoginSecondMessage, error) {
	m, err := message.DeserializeLoginSecondMessage(d.conf.OPRF, d.conf.AKE, d.conf.Hash, ake.NonceLen, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	return m, nil
}

// LoginThirdMessage parses a LoginThirdMessage.
func (d *Deserializer) LoginThirdMessage(b []byte) (*message.LoginThirdMessage, error) {
	m, err := message.DeserializeLoginThirdMessage(d.conf.Hash, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	return m, nil
}
