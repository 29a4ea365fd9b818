// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package link

// Width is the fixed transfer width in bits. Every exchange moves exactly
// one byte, most significant bit first.
const Width = 8

// A ShiftRegister is a fixed width bit buffer serialized and deserialized
// through repeated shift operations. Index 0 holds the most significant bit.
// Both shift directions keep the width constant: bits shifted out are
// replaced by a low filler, bits shifted in push the oldest bit out.
type ShiftRegister struct {
	bits [Width]bool
}

// Load sets the register contents from v, MSB at index 0.
func (r *ShiftRegister) Load(v byte) {
	for i := range r.bits {
		r.bits[i] = v&(0x80>>i) != 0
	}
}

// Byte returns the register contents as a byte.
func (r *ShiftRegister) Byte() byte {
	var v byte
	for i, b := range r.bits {
		if b {
			v |= 0x80 >> i
		}
	}
	return v
}

// ShiftOut removes and returns the current MSB, shifting the register left
// and filling the vacated LSB with a low bit.
func (r *ShiftRegister) ShiftOut() bool {
	msb := r.bits[0]
	copy(r.bits[:Width-1], r.bits[1:])
	r.bits[Width-1] = false
	return msb
}

// ShiftIn shifts the register left, discarding the current MSB, and inserts
// v as the new LSB.
func (r *ShiftRegister) ShiftIn(v bool) {
	copy(r.bits[:Width-1], r.bits[1:])
	r.bits[Width-1] = v
}
