// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldcode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Signature is the magic header for a compiled program file.
// Data with this prefix can be loaded with [*Program.UnmarshalBinary].
const Signature = "\x1bArc"

// FormatVersion is the version of the compiled program file format
// written by [*Program.MarshalBinary].
const FormatVersion byte = 1

// MarshalBinary encodes the program in the compiled program file format.
// All multi-byte values are little-endian.
func (p *Program) MarshalBinary() ([]byte, error) {
	if !p.Encoding.IsValid() {
		return nil, fmt.Errorf("dump program: unknown encoding %d", uint8(p.Encoding))
	}
	buf := make([]byte, 0, len(Signature)+2+2*binary.MaxVarintLen64+4*len(p.Code)+4*len(p.Constants))
	buf = append(buf, Signature...)
	buf = append(buf, FormatVersion, byte(p.Encoding))

	buf = binary.AppendUvarint(buf, uint64(len(p.Code)))
	for _, w := range p.Code {
		buf = binary.LittleEndian.AppendUint32(buf, w)
	}
	buf = binary.AppendUvarint(buf, uint64(len(p.Constants)))
	for _, k := range p.Constants {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(k))
	}
	return buf, nil
}

// UnmarshalBinary decodes a compiled program file into p.
// It does not call [Program.Validate].
func (p *Program) UnmarshalBinary(data []byte) error {
	r := &programReader{s: data}
	if !r.literal(Signature) {
		return errors.New("load program: not a compiled program")
	}
	if v, ok := r.readByte(); !ok {
		return fmt.Errorf("load program: %v", io.ErrUnexpectedEOF)
	} else if v != FormatVersion {
		return fmt.Errorf("load program: unsupported version %d", v)
	}
	enc, ok := r.readByte()
	if !ok {
		return fmt.Errorf("load program: %v", io.ErrUnexpectedEOF)
	}
	if !Encoding(enc).IsValid() {
		return fmt.Errorf("load program: unknown encoding %d", enc)
	}

	n, err := r.readCount(MaxInstructions)
	if err != nil {
		return fmt.Errorf("load program: instruction count: %v", err)
	}
	code := make([]uint32, n)
	for i := range code {
		code[i], ok = r.readUint32()
		if !ok {
			return fmt.Errorf("load program: instructions: %v", io.ErrUnexpectedEOF)
		}
	}

	n, err = r.readCount(Encoding(enc).ConstantCapacity())
	if err != nil {
		return fmt.Errorf("load program: constant count: %v", err)
	}
	constants := make([]float32, n)
	for i := range constants {
		bits, ok := r.readUint32()
		if !ok {
			return fmt.Errorf("load program: constants: %v", io.ErrUnexpectedEOF)
		}
		constants[i] = math.Float32frombits(bits)
	}
	if len(r.s) > 0 {
		return errors.New("load program: trailing data")
	}

	*p = Program{
		Encoding:  Encoding(enc),
		Code:      code,
		Constants: constants,
	}
	return nil
}

type programReader struct {
	s []byte
}

func (r *programReader) literal(prefix string) bool {
	if len(r.s) < len(prefix) || string(r.s[:len(prefix)]) != prefix {
		return false
	}
	r.s = r.s[len(prefix):]
	return true
}

func (r *programReader) readByte() (byte, bool) {
	if len(r.s) == 0 {
		return 0, false
	}
	b := r.s[0]
	r.s = r.s[1:]
	return b, true
}

func (r *programReader) readUint32() (uint32, bool) {
	if len(r.s) < 4 {
		return 0, false
	}
	x := binary.LittleEndian.Uint32(r.s)
	r.s = r.s[4:]
	return x, true
}

func (r *programReader) readCount(limit int) (int, error) {
	x, n := binary.Uvarint(r.s)
	switch {
	case n == 0:
		return 0, io.ErrUnexpectedEOF
	case n < 0:
		return 0, errors.New("integer overflow")
	case x > uint64(limit):
		return 0, fmt.Errorf("%d exceeds limit of %d", x, limit)
	}
	r.s = r.s[n:]
	return int(x), nil
}

// UploadBuffers returns the program laid out as the two flat buffers
// a data-parallel evaluator consumes:
// the instruction buffer holds [MaxInstructions] little-endian 32-bit words
// and the constant buffer holds the encoding's constant capacity
// of little-endian float32 values.
// Both are zero-padded.
// The constant buffer is also a valid array of four-component vectors,
// since four consecutive float32 values share each 16-byte slot.
func (p *Program) UploadBuffers() (code, constants []byte) {
	code = make([]byte, 4*MaxInstructions)
	for i, w := range p.Code[:min(len(p.Code), MaxInstructions)] {
		binary.LittleEndian.PutUint32(code[4*i:], w)
	}
	capacity := p.Encoding.ConstantCapacity()
	constants = make([]byte, 4*capacity)
	for i, k := range p.Constants[:min(len(p.Constants), capacity)] {
		binary.LittleEndian.PutUint32(constants[4*i:], math.Float32bits(k))
	}
	return code, constants
}
