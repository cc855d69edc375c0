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

package asm

import (
	"regexp"
	"strconv"

	"github.com/pkg/errors"

	"github.com/RaidTheWeb/syntheticasm/internal/isa"
)

// identifierRe matches a bare label/identifier target: letters and
// underscores only, no digits — anything else is parsed as a numeric
// literal.
var identifierRe = regexp.MustCompile(`^[A-Za-z_]+$`)

// operandCount returns the number of comma-space-separated operand tokens
// a shape expects. printcs is special-cased by its caller: its single
// "operand" is the raw tail of the line, not a split token.
func operandCount(shape isa.OperandShape) int {
	switch shape {
	case isa.ShapeNone:
		return 0
	case isa.ShapeReg, isa.ShapeImm:
		return 1
	case isa.ShapeRegReg, isa.ShapeRegImm:
		return 2
	default:
		return 0
	}
}

func parseRegister(tok string) (isa.Register, error) {
	r, ok := isa.RegisterFromName(tok)
	if !ok {
		return 0, errors.Errorf("invalid register `%s`.", tok)
	}
	return r, nil
}

// parseImmediate parses a numeric literal with auto base detection: a
// "0x"/"0X" prefix selects base 16, a bare "0" prefix selects base 8,
// otherwise base 10. It uses strconv's base-0 parsing, which additionally
// accepts "0b"/"0o" prefixes and underscore digit separators.
func parseImmediate(tok string) (uint16, error) {
	v, err := strconv.ParseUint(tok, 0, 16)
	if err != nil {
		return 0, errors.Errorf("invalid numeric literal `%s`.", tok)
	}
	return uint16(v), nil
}

// resolveTarget resolves a jmp/call/jnz/jz target: a pure-alphabetic token
// is a label reference, anything else is a numeric literal. This applies
// uniformly to every target operand; unlike the reference's jz handler,
// there is no special case that reads the wrong token, since the operand
// that denotes the target is always used here.
func resolveTarget(tok string, symtab *symbolTable) (uint16, error) {
	if identifierRe.MatchString(tok) {
		off, ok := symtab.resolve(tok)
		if !ok {
			return 0, errors.Errorf("label `%s` does not exist.", tok)
		}
		return off, nil
	}
	return parseImmediate(tok)
}

// scanPrintcs scans the raw tail of a printcs line (everything after the
// mnemonic) for a double-quoted string literal, returning its decoded
// bytes. An embedded NUL byte is replaced with a space (0x20), matching
// the reference's behavior; running off the end of the line before a
// closing quote is a fatal unterminated-string error.
func scanPrintcs(tail string) ([]byte, error) {
	i := 0
	for i < len(tail) && tail[i] != '"' {
		i++
	}
	if i >= len(tail) {
		return nil, errors.Errorf("missing opening quote in printcs string.")
	}
	i++ // consume the opening quote
	var out []byte
	for {
		if i >= len(tail) {
			return nil, errors.Errorf("unterminated string.")
		}
		c := tail[i]
		if c == '"' {
			break
		}
		if c == 0x00 {
			out = append(out, 0x20)
		} else {
			out = append(out, c)
		}
		i++
	}
	return out, nil
}

// instrSize computes the encoded byte length of a lexed instruction line
// without resolving any label targets, so that label offsets can be
// computed in a first pass over the source before any forward reference
// needs to be resolved.
func instrSize(l line) (int, error) {
	op, ok := isa.OpcodeFromMnemonic(l.mnemonic)
	if !ok {
		return 0, errors.Errorf("%s: unknown mnemonic `%s`.", l.pos(), l.mnemonic)
	}
	shape := op.Shape()
	if shape == isa.ShapeInlineStr {
		str, err := scanPrintcs(l.tail)
		if err != nil {
			return 0, errors.Wrapf(err, l.pos())
		}
		return 1 + len(str) + 1, nil
	}
	want := operandCount(shape)
	if len(l.operands) != want {
		return 0, errors.Errorf("%s: `%s` expects %d operand(s), got %d.", l.pos(), l.mnemonic, want, len(l.operands))
	}
	switch shape {
	case isa.ShapeNone:
		return 1, nil
	case isa.ShapeReg:
		return 2, nil
	case isa.ShapeRegReg:
		return 3, nil
	case isa.ShapeRegImm:
		return 4, nil
	case isa.ShapeImm:
		return 3, nil
	default:
		return 1, nil
	}
}

// encodeInstr appends the fully resolved byte encoding of a lexed
// instruction line to buf, using the now-complete symbol table to resolve
// any label operands.
func encodeInstr(l line, symtab *symbolTable, buf *[]byte) error {
	op, _ := isa.OpcodeFromMnemonic(l.mnemonic)
	shape := op.Shape()

	emit := func(b ...byte) { *buf = append(*buf, b...) }
	emitImm := func(v uint16) { emit(byte(v>>8), byte(v)) }

	switch shape {
	case isa.ShapeNone:
		emit(byte(op))
	case isa.ShapeReg:
		r, err := parseRegister(l.operands[0])
		if err != nil {
			return errors.Wrapf(err, l.pos())
		}
		emit(byte(op), byte(r))
	case isa.ShapeRegReg:
		a, err := parseRegister(l.operands[0])
		if err != nil {
			return errors.Wrapf(err, l.pos())
		}
		b, err := parseRegister(l.operands[1])
		if err != nil {
			return errors.Wrapf(err, l.pos())
		}
		emit(byte(op), byte(a), byte(b))
	case isa.ShapeRegImm:
		r, err := parseRegister(l.operands[0])
		if err != nil {
			return errors.Wrapf(err, l.pos())
		}
		var imm uint16
		if op == isa.OpSetr {
			// setr's second operand is a plain numeric literal, never a
			// label reference (unlike jnz/jz, whose second operand is a
			// jump target).
			imm, err = parseImmediate(l.operands[1])
		} else {
			imm, err = resolveTarget(l.operands[1], symtab)
		}
		if err != nil {
			return errors.Wrapf(err, l.pos())
		}
		emit(byte(op), byte(r))
		emitImm(imm)
	case isa.ShapeImm:
		var imm uint16
		var err error
		if op == isa.OpPush {
			// push's operand is always a plain numeric literal, never a
			// label reference (unlike jmp/call, whose operand is a
			// code-offset target).
			imm, err = parseImmediate(l.operands[0])
		} else {
			imm, err = resolveTarget(l.operands[0], symtab)
		}
		if err != nil {
			return errors.Wrapf(err, l.pos())
		}
		emit(byte(op))
		emitImm(imm)
	case isa.ShapeInlineStr:
		str, err := scanPrintcs(l.tail)
		if err != nil {
			return errors.Wrapf(err, l.pos())
		}
		emit(byte(op))
		emit(str...)
		emit(0x00)
	}
	return nil
}
