// This file is part of syntheticasm.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package image defines the on-disk and in-memory representation of an
// assembled program: a 3-byte header (an unconditional jump to main)
// followed by a code section of variable-width instructions.
package image

import (
	"os"

	"github.com/pkg/errors"
)

// HeaderSize is the number of bytes reserved at the start of every image
// for the unconditional jump to main.
const HeaderSize = 3

// Image is the full byte sequence of an assembled (or loaded) program:
// the 3-byte header followed by the code section. Offsets 0, 1, 2 are
// reserved for the header; all label values recorded by the assembler are
// absolute offsets into Image, already accounting for that reservation.
type Image []byte

// New allocates an Image with the header reserved (zeroed) and room for a
// code section of the given size.
func New(codeSize int) Image {
	return make(Image, HeaderSize+codeSize)
}

// PatchHeader writes the 3-byte jump-to-main header in place: opcode
// 0x0E (OP_JMP) followed by the big-endian 16-bit address of main. This
// reserve-then-patch approach is bit-identical to allocating a second
// buffer and copying, without the copy.
func (i Image) PatchHeader(mainAddr uint16) {
	i[0] = 0x0E
	i[1] = byte(mainAddr >> 8)
	i[2] = byte(mainAddr)
}

// Load reads an image from disk in full.
func Load(path string) (Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load image %q", path)
	}
	if len(b) < HeaderSize {
		return nil, errors.Errorf("image %q is too small to contain a header", path)
	}
	return Image(b), nil
}

// Save writes the image to disk, creating or truncating the target file.
func Save(path string, img Image) error {
	if err := os.WriteFile(path, img, 0o666); err != nil {
		return errors.Wrapf(err, "save image %q", path)
	}
	return nil
}

// MainAddr returns the jump target recorded in the image header.
func (i Image) MainAddr() uint16 {
	return uint16(i[1])<<8 | uint16(i[2])
}

// DecodeInlineString reads a NUL-terminated byte string starting at pos and
// returns it along with the offset of the byte just past the terminator.
// This mirrors the wire shape of printcs operands: the bytes immediately
// following the opcode, up to and including a 0x00 terminator.
func (i Image) DecodeInlineString(pos int) (s string, next int) {
	end := pos
	for end < len(i) && i[end] != 0 {
		end++
	}
	s = string(i[pos:end])
	if end < len(i) {
		end++ // consume the terminator
	}
	return s, end
}
