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

// Package isa defines the opcode and register tables shared by the
// assembler and the VM. These are the wire-level identifiers: the encoder
// writes them, the interpreter dispatches on them, and the disassembler
// prints their mnemonic names back out.
package isa

// Opcode identifies one of the 38 instructions. The numeric value IS the
// wire encoding: the assembler emits it verbatim and the VM switches on it
// directly.
type Opcode byte

const (
	OpHalt    Opcode = 0x01
	OpMov     Opcode = 0x02
	OpPrintc  Opcode = 0x03
	OpPrintcs Opcode = 0x04
	OpPrinti  Opcode = 0x05
	OpPrinth  Opcode = 0x06
	OpSetr    Opcode = 0x07
	OpInc     Opcode = 0x08
	OpDec     Opcode = 0x09
	OpAdd     Opcode = 0x0A
	OpSub     Opcode = 0x0B
	OpMul     Opcode = 0x0C
	OpDiv     Opcode = 0x0D
	OpJmp     Opcode = 0x0E
	OpJnz     Opcode = 0x0F
	OpJz      Opcode = 0x10
	OpShl     Opcode = 0x11
	OpShr     Opcode = 0x12
	OpXor     Opcode = 0x13
	OpOr      Opcode = 0x14
	OpAnd     Opcode = 0x15
	OpPop     Opcode = 0x16
	OpPush    Opcode = 0x17
	OpPushr   Opcode = 0x18
	OpGetip   Opcode = 0x19
	OpPeek    Opcode = 0x1A
	OpMod     Opcode = 0x1B
	OpLt      Opcode = 0x1C
	OpGt      Opcode = 0x1D
	OpRet     Opcode = 0x1E
	OpCall    Opcode = 0x1F
	OpPrintis Opcode = 0x20
	OpAdds    Opcode = 0x21
	OpSubs    Opcode = 0x22
	OpMuls    Opcode = 0x23
	OpDivs    Opcode = 0x24
	OpLts     Opcode = 0x25
	OpGts     Opcode = 0x26
)

// OperandShape describes how many and what kind of operand bytes follow an
// opcode byte, which the lexer/encoder use for both emission and
// arity-checking.
type OperandShape int

const (
	ShapeNone       OperandShape = iota // no operands
	ShapeReg                            // one register byte
	ShapeRegReg                         // two register bytes
	ShapeRegImm                         // one register byte, one 16-bit immediate
	ShapeImm                            // one 16-bit immediate
	ShapeInlineStr                      // inline NUL-terminated byte string
)

// mnemonics is the authoritative opcode name table, indexed by Opcode so
// that the zero value (an invalid 0x00 opcode) maps to the empty string.
var mnemonics = [...]string{
	OpHalt:    "halt",
	OpMov:     "mov",
	OpPrintc:  "printc",
	OpPrintcs: "printcs",
	OpPrinti:  "printi",
	OpPrinth:  "printh",
	OpSetr:    "setr",
	OpInc:     "inc",
	OpDec:     "dec",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpDiv:     "div",
	OpJmp:     "jmp",
	OpJnz:     "jnz",
	OpJz:      "jz",
	OpShl:     "shl",
	OpShr:     "shr",
	OpXor:     "xor",
	OpOr:      "or",
	OpAnd:     "and",
	OpPop:     "pop",
	OpPush:    "push",
	OpPushr:   "pushr",
	OpGetip:   "getip",
	OpPeek:    "peek",
	OpMod:     "mod",
	OpLt:      "lt",
	OpGt:      "gt",
	OpRet:     "ret",
	OpCall:    "call",
	OpPrintis: "printis",
	OpAdds:    "adds",
	OpSubs:    "subs",
	OpMuls:    "muls",
	OpDivs:    "divs",
	OpLts:     "lts",
	OpGts:     "gts",
}

// shapes mirrors mnemonics, recording each opcode's operand layout.
var shapes = [...]OperandShape{
	OpHalt:    ShapeNone,
	OpMov:     ShapeRegReg,
	OpPrintc:  ShapeReg,
	OpPrintcs: ShapeInlineStr,
	OpPrinti:  ShapeReg,
	OpPrinth:  ShapeReg,
	OpSetr:    ShapeRegImm,
	OpInc:     ShapeReg,
	OpDec:     ShapeReg,
	OpAdd:     ShapeRegReg,
	OpSub:     ShapeRegReg,
	OpMul:     ShapeRegReg,
	OpDiv:     ShapeRegReg,
	OpJmp:     ShapeImm,
	OpJnz:     ShapeRegImm,
	OpJz:      ShapeRegImm,
	OpShl:     ShapeRegReg,
	OpShr:     ShapeRegReg,
	OpXor:     ShapeRegReg,
	OpOr:      ShapeRegReg,
	OpAnd:     ShapeRegReg,
	OpPop:     ShapeReg,
	OpPush:    ShapeImm,
	OpPushr:   ShapeReg,
	OpGetip:   ShapeReg,
	OpPeek:    ShapeReg,
	OpMod:     ShapeRegReg,
	OpLt:      ShapeRegReg,
	OpGt:      ShapeRegReg,
	OpRet:     ShapeNone,
	OpCall:    ShapeImm,
	OpPrintis: ShapeNone,
	OpAdds:    ShapeNone,
	OpSubs:    ShapeNone,
	OpMuls:    ShapeNone,
	OpDivs:    ShapeNone,
	OpLts:     ShapeNone,
	OpGts:     ShapeNone,
}

// mnemonicIndex maps mnemonic text back to its Opcode, built once at
// package init.
var mnemonicIndex = make(map[string]Opcode, len(mnemonics))

func init() {
	for op, name := range mnemonics {
		if name == "" {
			continue
		}
		mnemonicIndex[name] = Opcode(op)
	}
}

// String returns the assembly mnemonic for op, or "" if op is not a valid
// opcode.
func (op Opcode) String() string {
	if int(op) < len(mnemonics) {
		return mnemonics[op]
	}
	return ""
}

// Shape reports the operand layout for op.
func (op Opcode) Shape() OperandShape {
	if int(op) < len(shapes) {
		return shapes[op]
	}
	return ShapeNone
}

// Valid reports whether op is one of the 38 defined opcodes.
func (op Opcode) Valid() bool {
	return op >= OpHalt && op <= OpGts && op.String() != ""
}

// OpcodeFromMnemonic looks up a mnemonic's Opcode.
func OpcodeFromMnemonic(name string) (Opcode, bool) {
	op, ok := mnemonicIndex[name]
	return op, ok
}

// Register identifies one of the 15 general-purpose registers.
type Register byte

const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	AX
	BX
	CX
	DX
)

// NumRegisters is the size of the register file.
const NumRegisters = int(DX) + 1

var registerNames = [...]string{
	R0: "r0", R1: "r1", R2: "r2", R3: "r3", R4: "r4",
	R5: "r5", R6: "r6", R7: "r7", R8: "r8", R9: "r9",
	R10: "r10", AX: "ax", BX: "bx", CX: "cx", DX: "dx",
}

var registerIndex = make(map[string]Register, len(registerNames))

func init() {
	for r, name := range registerNames {
		registerIndex[name] = Register(r)
	}
}

// String returns the assembly register name, or "" if r is out of range.
func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return ""
}

// Valid reports whether r names one of the 15 registers, 0x00..0x0E.
func (r Register) Valid() bool {
	return int(r) < NumRegisters
}

// RegisterFromByte performs the total, checked conversion from a wire byte
// to a Register, the single gate through which every register operand in
// the assembler and VM must pass.
func RegisterFromByte(b byte) (Register, bool) {
	r := Register(b)
	return r, r.Valid()
}

// RegisterFromName looks up a register by its assembly token.
func RegisterFromName(name string) (Register, bool) {
	r, ok := registerIndex[name]
	return r, ok
}
