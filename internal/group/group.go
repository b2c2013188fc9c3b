// SPDX-License-Identifier: MIT
//
// Copyright (c) 2026 The Opaque Authors.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package group adapts github.com/bytemare/crypto/group's prime-order
// group arithmetic to the single Group/Scalar/Element capability
// contract the rest of this module depends on. Every other package
// reaches the underlying library only through this adapter, so a
// future change of group library touches one file.
package group

import (
	"errors"

	bmgroup "github.com/bytemare/crypto/group"
)

// ID identifies a supported prime-order group.
type ID byte

const (
	// Ristretto255 is the default profile's group for both the OPRF and the AKE.
	Ristretto255 ID = iota + 1
	// P256 is the NIST P-256 group.
	P256
	// P384 is the NIST P-384 group.
	P384
	// P521 is the NIST P-521 group.
	P521
)

// Available reports whether id is a group this module knows how to instantiate.
func (id ID) Available() bool {
	switch id {
	case Ristretto255, P256, P384, P521:
		return true
	default:
		return false
	}
}

func (id ID) native() bmgroup.Group {
	switch id {
	case P256:
		return bmgroup.P256Sha256
	case P384:
		return bmgroup.P384Sha384
	case P521:
		return bmgroup.P521Sha512
	default:
		return bmgroup.Ristretto255Sha512
	}
}

var (
	// ErrInvalidGroup is returned when an ID is not Available.
	ErrInvalidGroup = errors.New("group: unsupported group identifier")
	// ErrInvalidElement is returned when decoding bytes does not yield a valid subgroup element.
	ErrInvalidElement = errors.New("group: invalid or non-subgroup element")
	// ErrIdentityElement is returned when an element decodes to the group's identity.
	ErrIdentityElement = errors.New("group: element is the identity")
	// ErrInvalidScalar is returned when decoding bytes does not yield a valid scalar.
	ErrInvalidScalar = errors.New("group: invalid scalar encoding")
)

// Scalar wraps a group scalar, zeroizable and fixed-length per Group.
type Scalar struct {
	g ID
	s *bmgroup.Scalar
}

// Element wraps a group element (point), only ever subgroup-valid once constructed.
type Element struct {
	g ID
	e *bmgroup.Element
}

// ElementLength returns the fixed serialized length of an element in g.
func (id ID) ElementLength() int {
	return id.native().ElementLength()
}

// ScalarLength returns the fixed serialized length of a scalar in g.
func (id ID) ScalarLength() int {
	return id.native().ScalarLength()
}

// UniformBytesLength is the number of bytes read from an RNG to derive a
// uniform scalar or hash a password into the group (spec's UniformBytesLen).
const UniformBytesLength = 64

// NewScalar returns the zero scalar in g.
func (id ID) NewScalar() *Scalar {
	return &Scalar{g: id, s: id.native().NewScalar()}
}

// NewElement returns the identity element in g.
func (id ID) NewElement() *Element {
	return &Element{g: id, e: id.native().NewElement()}
}

// Base returns the group's base point.
func (id ID) Base() *Element {
	return &Element{g: id, e: id.native().Base()}
}

// RandomScalar draws UniformBytesLength bytes from rng and maps them to a
// uniformly distributed, non-zero scalar. rng is caller-owned, never a
// process-wide default, per the core's RNG-plumbing discipline.
func (id ID) RandomScalar(rng ReadFiller) (*Scalar, error) {
	buf := make([]byte, UniformBytesLength)

	for {
		if _, err := rng.Read(buf); err != nil {
			return nil, err
		}

		s := id.native().HashToScalar(buf, []byte(dstRandomScalar))
		if !s.IsZero() {
			return &Scalar{g: id, s: s}, nil
		}
	}
}

// HashToGroup maps input (already domain-separated by the caller, e.g.
// pepper||password) to a uniformly distributed group element: the core's
// hash_to_curve operation.
func (id ID) HashToGroup(input, dst []byte) *Element {
	return &Element{g: id, e: id.native().HashToGroup(input, dst)}
}

// HashToScalar maps arbitrary input, under domain-separation tag dst, to a
// uniformly distributed scalar.
func (id ID) HashToScalar(input, dst []byte) *Scalar {
	return &Scalar{g: id, s: id.native().HashToScalar(input, dst)}
}

// DecodeScalar decodes b into a scalar, rejecting anything but a canonical,
// fixed-length encoding.
func (id ID) DecodeScalar(b []byte) (*Scalar, error) {
	if len(b) != id.ScalarLength() {
		return nil, ErrInvalidScalar
	}

	s := id.native().NewScalar()
	if err := s.Decode(b); err != nil {
		return nil, ErrInvalidScalar
	}

	return &Scalar{g: id, s: s}, nil
}

// DecodeElement decodes b into an element, rejecting non-subgroup points and
// the identity (spec's from_element_slice contract).
func (id ID) DecodeElement(b []byte) (*Element, error) {
	if len(b) != id.ElementLength() {
		return nil, ErrInvalidElement
	}

	e := id.native().NewElement()
	if err := e.Decode(b); err != nil {
		return nil, ErrInvalidElement
	}

	el := &Element{g: id, e: e}
	if el.IsIdentity() {
		return nil, ErrIdentityElement
	}

	return el, nil
}

// Encode returns the scalar's fixed-length byte encoding.
func (s *Scalar) Encode() []byte { return s.s.Encode() }

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool { return s.s.IsZero() }

// Invert returns s^-1 mod order.
func (s *Scalar) Invert() *Scalar {
	return &Scalar{g: s.g, s: s.s.Copy().Invert()}
}

// Zeroize overwrites the scalar's internal representation with zeroes.
func (s *Scalar) Zeroize() {
	if s == nil || s.s == nil {
		return
	}

	s.s.Zero()
}

// Encode returns the element's fixed-length byte encoding.
func (e *Element) Encode() []byte { return e.e.Encode() }

// IsIdentity reports whether e is the group's identity element.
func (e *Element) IsIdentity() bool { return e.e.IsIdentity() }

// Multiply returns e*s.
func (e *Element) Multiply(s *Scalar) *Element {
	return &Element{g: e.g, e: e.e.Copy().Multiply(s.s)}
}

// Equal reports whether e and other encode the same element.
func (e *Element) Equal(other *Element) bool {
	return e.e.Equal(other.e) == 1
}

const dstRandomScalar = "OPAQUE-RandomScalar"

// ReadFiller is the minimal RNG contract the core threads through: fill b
// with random bytes, as io.Reader.Read already does. Declared locally so
// this package doesn't need to import io just for the one method it uses.
type ReadFiller interface {
	Read(b []byte) (n int, err error)
}
