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

package asm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RaidTheWeb/syntheticasm/asm"
	"github.com/RaidTheWeb/syntheticasm/internal/image"
)

func assemble(t *testing.T, src string) image.Image {
	t.Helper()
	img, err := asm.Assemble("test", strings.NewReader(src))
	require.NoError(t, err)
	return img
}

func TestHeaderCorrectness(t *testing.T) {
	img := assemble(t, "main:\nhalt\n")
	require.Equal(t, byte(0x0E), img[0])
	require.Equal(t, byte(0x00), img[1])
	require.Equal(t, byte(0x03), img[2])
}

func TestLabelArithmetic(t *testing.T) {
	// A label defined at the very start of the code section records
	// offset 3, the size of the header.
	img, err := asm.Assemble("test", strings.NewReader("main:\nsetr r0, 1\nhalt\n"))
	require.NoError(t, err)
	require.Equal(t, uint16(3), img.MainAddr())
}

func TestBigEndianImmediate(t *testing.T) {
	img := assemble(t, "main:\nsetr r0, 0x1234\nhalt\n")
	code := img[3:]
	require.Equal(t, []byte{0x07, 0x00, 0x12, 0x34}, code[:4])
}

func TestMissingMainIsFatal(t *testing.T) {
	_, err := asm.Assemble("test", strings.NewReader("foo:\nhalt\n"))
	require.Error(t, err)
}

func TestDuplicateLabelIsFatal(t *testing.T) {
	_, err := asm.Assemble("test", strings.NewReader("main:\nhalt\nmain:\nhalt\n"))
	require.Error(t, err)
}

func TestUndefinedLabelIsFatal(t *testing.T) {
	_, err := asm.Assemble("test", strings.NewReader("main:\njmp nowhere\nhalt\n"))
	require.Error(t, err)
}

func TestForwardReference(t *testing.T) {
	// call sub before sub is defined: this is the shape of scenario S5,
	// and requires the assembler to resolve forward label references.
	img := assemble(t, "main:\ncall sub\nhalt\nsub:\nsetr r0, 0x42\nprintc r0\nret\n")
	// main is at offset 3; `call sub` (3 bytes) + `halt` (1 byte) = 4
	// bytes of code before sub, so sub begins at offset 7.
	code := img[3:]
	require.Equal(t, byte(0x1F), code[0]) // OP_CALL
	target := uint16(code[1])<<8 | uint16(code[2])
	require.Equal(t, uint16(7), target)
}

func TestPrintcsEncodesNulAsSpace(t *testing.T) {
	src := "main:\nprintcs \"a" + "\x00" + "b\"\nhalt\n"
	img := assemble(t, src)
	// printcs opcode, then 'a', 0x20 (substituted for the embedded NUL),
	// 'b', terminator.
	require.Equal(t, []byte{0x04, 'a', 0x20, 'b', 0x00}, img[3:8])
}

func TestUnterminatedStringIsFatal(t *testing.T) {
	_, err := asm.Assemble("test", strings.NewReader("main:\nprintcs \"unterminated\nhalt\n"))
	require.Error(t, err)
}

func TestArityMismatchIsFatal(t *testing.T) {
	_, err := asm.Assemble("test", strings.NewReader("main:\nsetr r0\nhalt\n"))
	require.Error(t, err)
}

func TestInvalidRegisterNameIsFatal(t *testing.T) {
	_, err := asm.Assemble("test", strings.NewReader("main:\nsetr zz, 1\nhalt\n"))
	require.Error(t, err)
}

func TestUnknownMnemonicIsFatal(t *testing.T) {
	_, err := asm.Assemble("test", strings.NewReader("main:\nbogus r0\nhalt\n"))
	require.Error(t, err)
}

func TestJzUsesSecondOperandAsTarget(t *testing.T) {
	// jz r0, zero  — the target is "zero", not "r0". The reference has a
	// bug where it looks up the first operand's symbol table entry; this
	// port always resolves the second (target) operand.
	img := assemble(t, "main:\njz r0, zero\nhalt\nzero:\nhalt\n")
	code := img[3:]
	// opcode, reg, hi(target), lo(target); target = offset of `zero` =
	// 3 (header) + 4 (jz) + 1 (halt) = 8
	require.Equal(t, byte(0x10), code[0])
	require.Equal(t, byte(0x00), code[1])
	target := uint16(code[2])<<8 | uint16(code[3])
	require.Equal(t, uint16(8), target)
}

func TestOpcodeRoundTrip(t *testing.T) {
	// A two-register instruction disassembles to a line that, without its
	// offset column, re-assembles to the same bytes; add r0, r1 is the case
	// checked here.
	img := assemble(t, "main:\nadd r0, r1\nhalt\n")
	_, line := img.Disassemble(3)
	require.Contains(t, line, "add")
	require.Contains(t, line, "r0")
	require.Contains(t, line, "r1")
	again := assemble(t, "main:\n"+strings.TrimSpace(line[4:])+"\nhalt\n")
	require.Equal(t, img[3:6], again[3:6])
}
