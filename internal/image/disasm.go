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

package image

import (
	"fmt"
	"strings"

	"github.com/RaidTheWeb/syntheticasm/internal/isa"
)

// Disassemble decodes the instruction at pc and returns the position of the
// next instruction together with its printed form, `HHHH   MNEMONIC  op1,
// op2`. Callers that want a full listing must loop using the returned next
// offset rather than advancing by a fixed stride, since instructions are
// variable-width; the reference implementation's line-by-line disassembly
// walker does not do this and misaligns on any multi-byte instruction.
func (i Image) Disassemble(pc int) (next int, line string) {
	if pc >= len(i) {
		return pc, ""
	}
	op := isa.Opcode(i[pc])
	var b strings.Builder
	fmt.Fprintf(&b, "%04x   ", pc)
	if !op.Valid() {
		fmt.Fprintf(&b, "db 0x%02x", i[pc])
		return pc + 1, b.String()
	}
	b.WriteString(op.String())
	cursor := pc + 1

	readReg := func() string {
		if cursor >= len(i) {
			b.WriteString(" ???")
			return ""
		}
		r, _ := isa.RegisterFromByte(i[cursor])
		cursor++
		name := r.String()
		if name == "" {
			name = fmt.Sprintf("0x%02x", i[cursor-1])
		}
		return name
	}
	readImm := func() uint16 {
		if cursor+1 >= len(i) {
			cursor = len(i)
			return 0
		}
		v := uint16(i[cursor])<<8 | uint16(i[cursor+1])
		cursor += 2
		return v
	}

	switch op.Shape() {
	case isa.ShapeNone:
		// no operands
	case isa.ShapeReg:
		fmt.Fprintf(&b, " %s", readReg())
	case isa.ShapeRegReg:
		r1 := readReg()
		r2 := readReg()
		fmt.Fprintf(&b, " %s, %s", r1, r2)
	case isa.ShapeRegImm:
		r := readReg()
		imm := readImm()
		fmt.Fprintf(&b, " %s, 0x%04x", r, imm)
	case isa.ShapeImm:
		imm := readImm()
		fmt.Fprintf(&b, " 0x%04x", imm)
	case isa.ShapeInlineStr:
		s, e := i.DecodeInlineString(cursor)
		cursor = e
		fmt.Fprintf(&b, " %q", s)
	}
	return cursor, b.String()
}

// DisassembleAll walks the full code section (skipping the 3-byte header)
// and returns one printed line per instruction, in offset order.
func (i Image) DisassembleAll() []string {
	var lines []string
	for pc := HeaderSize; pc < len(i); {
		next, line := i.Disassemble(pc)
		if line == "" {
			break
		}
		lines = append(lines, line)
		if next <= pc {
			break
		}
		pc = next
	}
	return lines
}
