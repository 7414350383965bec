// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the canonical binary encoding shared by every
// hashed or gossiped value in the node: transactions, block headers, blocks,
// and the peer-to-peer Message envelope. Every node in a cluster must agree
// byte-for-byte on this encoding, or block/transaction hashes will not
// match across peers.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

var littleEndian = binary.LittleEndian

// WriteElement writes the little-endian encoding of element to w. Supported
// concrete types are the fixed-width integers used throughout the header
// and transaction encodings plus raw byte arrays.
func WriteElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint8:
		_, err := w.Write([]byte{e})
		return err

	case uint32:
		var buf [4]byte
		littleEndian.PutUint32(buf[:], e)
		_, err := w.Write(buf[:])
		return err

	case uint64:
		var buf [8]byte
		littleEndian.PutUint64(buf[:], e)
		_, err := w.Write(buf[:])
		return err

	case []byte:
		_, err := w.Write(e)
		return err
	}
	return errors.Errorf("wire: unsupported type %T for WriteElement", element)
}

// ReadElement reads the next little-endian encoded value from r into the
// concrete type pointed to by element. A []byte element is filled exactly,
// mirroring WriteElement's raw byte array case.
func ReadElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *uint8:
		var buf [1]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = buf[0]
		return nil

	case *uint32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = littleEndian.Uint32(buf[:])
		return nil

	case *uint64:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = littleEndian.Uint64(buf[:])
		return nil

	case []byte:
		_, err := io.ReadFull(r, e)
		return err
	}
	return errors.Errorf("wire: unsupported type %T for ReadElement", element)
}

// WriteVarBytes writes a length-prefixed byte slice: a uint64 length
// followed by the raw bytes. It encodes the variable-length byte fields of
// the canonical encoding (signatures, public keys, Pong text); lists of
// elements are prefixed with WriteVarUint instead.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteElement(w, uint64(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return WriteElement(w, b)
}

// ReadVarBytes reads a length-prefixed byte slice written by WriteVarBytes.
// maxAllowed bounds the length to guard against a malformed/hostile prefix
// forcing an enormous allocation.
func ReadVarBytes(r io.Reader, maxAllowed uint64) ([]byte, error) {
	var length uint64
	if err := ReadElement(r, &length); err != nil {
		return nil, err
	}
	if length > maxAllowed {
		return nil, errors.Errorf("wire: varbytes length %d exceeds max allowed %d", length, maxAllowed)
	}
	if length == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteVarUint writes a length prefix for a slice of count homogeneous
// elements, e.g. the number of transactions in a block body or the number
// of hashes in a gossip message.
func WriteVarUint(w io.Writer, n uint64) error {
	return WriteElement(w, n)
}

// ReadVarUint reads a count written by WriteVarUint.
func ReadVarUint(r io.Reader) (uint64, error) {
	var n uint64
	err := ReadElement(r, &n)
	return n, err
}

// MaxMessagePayload bounds the length of a decoded Pong message's text; it
// does not bound the size of other gossip messages.
const MaxMessagePayload = 32 * 1024 * 1024
