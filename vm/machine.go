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

package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/RaidTheWeb/syntheticasm/internal/image"
	"github.com/RaidTheWeb/syntheticasm/internal/isa"
)

// Machine is one owned VM instance: a register file, a 256-word operand
// stack, an instruction pointer, and the loaded image. Unlike the
// reference, which keeps this state in module-level globals, every field
// here is owned by one *Machine value, threaded explicitly through the
// public API (New, Run).
type Machine struct {
	regs  [isa.NumRegisters]uint16
	stack [256]uint16
	sp    int
	ip    uint16

	img   image.Image
	out   io.Writer
	trace io.Writer

	insCount int64
}

// Option configures a Machine at construction time.
type Option func(*Machine) error

// Output redirects the VM's print* opcodes to w. Defaults to os.Stdout.
func Output(w io.Writer) Option {
	return func(m *Machine) error {
		m.out = w
		return nil
	}
}

// Trace enables a disassembly trace of every executed instruction,
// written to w before it runs.
func Trace(w io.Writer) Option {
	return func(m *Machine) error {
		m.trace = w
		return nil
	}
}

// New constructs a Machine over img, with its instruction pointer set to
// the image's header-encoded main address.
func New(img image.Image, opts ...Option) (*Machine, error) {
	m := &Machine{img: img, out: os.Stdout}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	m.ip = img.MainAddr()
	return m, nil
}

// InstructionCount returns the number of instructions that have completed
// across all Run calls on m. The halt that ends a run and an instruction
// that fails are not counted.
func (m *Machine) InstructionCount() int64 {
	return m.insCount
}

func (m *Machine) read8() byte {
	b := m.img[m.ip]
	m.ip++
	return b
}

func (m *Machine) read16() uint16 {
	hi := m.read8()
	lo := m.read8()
	return uint16(hi)<<8 | uint16(lo)
}

// push and pop manipulate the shared operand/call stack. Overflow
// (sp == len(stack)) and underflow (sp < 0) are plain out-of-bounds array
// accesses here rather than explicit checks: Run's top-level recover
// converts the resulting panic into a regular error, the same pattern the
// teacher repository uses for its own stack-bounds violations.
func (m *Machine) push(v uint16) {
	m.stack[m.sp] = v
	m.sp++
}

func (m *Machine) pop() uint16 {
	m.sp--
	return m.stack[m.sp]
}

func (m *Machine) register(b byte) (isa.Register, error) {
	r, ok := isa.RegisterFromByte(b)
	if !ok {
		return 0, errors.Errorf("invalid register `0x%02x`.", b)
	}
	return r, nil
}

// Run executes instructions from the current ip until halt. A halt exits
// with a nil error; any invalid-register, division/mod-by-zero, or
// negative-decrement condition returns a descriptive error instead of
// terminating the process directly — cmd/vm is responsible for turning
// that into exit code 1. Stack
// overflow/underflow and a truncated image (reading past the end of img)
// surface as recovered panics, wrapped with the ip and stack depth at the
// point of failure.
func (m *Machine) Run() (err error) {
	defer func() {
		if e := recover(); e != nil {
			switch e := e.(type) {
			case error:
				err = errors.Wrapf(e, "recovered error @ip=0x%04x, sp=%d", m.ip, m.sp)
			default:
				err = errors.Errorf("recovered error @ip=0x%04x, sp=%d: %v", m.ip, m.sp, e)
			}
		}
	}()

	for {
		if m.trace != nil {
			_, line := m.img.Disassemble(int(m.ip))
			fmt.Fprintln(m.trace, line)
		}
		op := isa.Opcode(m.read8())
		switch op {
		case isa.OpHalt:
			return nil

		case isa.OpMov:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			m.regs[d] = m.regs[s]

		case isa.OpPrintc:
			r, err := m.onereg()
			if err != nil {
				return err
			}
			fmt.Fprintf(m.out, "%c", byte(m.regs[r]))

		case isa.OpPrintcs:
			s, next := m.img.DecodeInlineString(int(m.ip))
			io.WriteString(m.out, s)
			m.ip = uint16(next)

		case isa.OpPrinti:
			r, err := m.onereg()
			if err != nil {
				return err
			}
			fmt.Fprintf(m.out, "%d", m.regs[r])

		case isa.OpPrinth:
			r, err := m.onereg()
			if err != nil {
				return err
			}
			fmt.Fprintf(m.out, "%04x", m.regs[r])

		case isa.OpSetr:
			d, err := m.onereg()
			if err != nil {
				return err
			}
			m.regs[d] = m.read16()

		case isa.OpInc:
			d, err := m.onereg()
			if err != nil {
				return err
			}
			m.regs[d]++

		case isa.OpDec:
			d, err := m.onereg()
			if err != nil {
				return err
			}
			if m.regs[d] == 0 {
				return errors.Errorf("attempted negative decrementation of register.")
			}
			m.regs[d]--

		case isa.OpAdd:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			m.regs[d] += m.regs[s]

		case isa.OpSub:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			if m.regs[d] <= m.regs[s] {
				return errors.Errorf("attempted negative decrementation of register.")
			}
			m.regs[d] -= m.regs[s]

		case isa.OpMul:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			m.regs[d] *= m.regs[s]

		case isa.OpDiv:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			if m.regs[d] == 0 || m.regs[s] == 0 {
				return errors.Errorf("attempted division by zero of register.")
			}
			m.regs[d] /= m.regs[s]

		case isa.OpJmp:
			m.ip = m.read16()

		case isa.OpJnz:
			r, err := m.onereg()
			if err != nil {
				return err
			}
			target := m.read16()
			if m.regs[r] != 0 {
				m.ip = target
			}

		case isa.OpJz:
			r, err := m.onereg()
			if err != nil {
				return err
			}
			target := m.read16()
			if m.regs[r] == 0 {
				m.ip = target
			}

		case isa.OpShl:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			m.regs[d] <<= m.regs[s]

		case isa.OpShr:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			m.regs[d] >>= m.regs[s]

		case isa.OpXor:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			m.regs[d] ^= m.regs[s]

		case isa.OpOr:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			m.regs[d] |= m.regs[s]

		case isa.OpAnd:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			m.regs[d] &= m.regs[s]

		case isa.OpPop:
			r, err := m.onereg()
			if err != nil {
				return err
			}
			m.regs[r] = m.pop()

		case isa.OpPush:
			m.push(m.read16())

		case isa.OpPushr:
			r, err := m.onereg()
			if err != nil {
				return err
			}
			m.push(m.regs[r])

		case isa.OpGetip:
			r, err := m.onereg()
			if err != nil {
				return err
			}
			m.regs[r] = m.ip

		case isa.OpPeek:
			// Destructive: see the package doc comment.
			r, err := m.onereg()
			if err != nil {
				return err
			}
			m.regs[r] = m.pop()

		case isa.OpMod:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			if m.regs[d] == 0 || m.regs[s] == 0 {
				return errors.Errorf("attempted division by zero of register.")
			}
			m.regs[d] %= m.regs[s]

		case isa.OpLt:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			m.regs[d] = boolToWord(m.regs[d] < m.regs[s])

		case isa.OpGt:
			d, s, err := m.tworeg()
			if err != nil {
				return err
			}
			m.regs[d] = boolToWord(m.regs[d] > m.regs[s])

		case isa.OpRet:
			m.ip = m.pop()

		case isa.OpCall:
			target := m.read16()
			m.push(m.ip)
			m.ip = target

		case isa.OpPrintis:
			fmt.Fprintf(m.out, "%d", m.pop())

		case isa.OpAdds:
			b, a := m.pop(), m.pop()
			m.push(a + b)

		case isa.OpSubs:
			b, a := m.pop(), m.pop()
			m.push(a - b)

		case isa.OpMuls:
			b, a := m.pop(), m.pop()
			m.push(a * b)

		case isa.OpDivs:
			b, a := m.pop(), m.pop()
			if b == 0 {
				return errors.Errorf("attempted division by zero of register.")
			}
			m.push(a / b)

		case isa.OpLts:
			b, a := m.pop(), m.pop()
			m.push(boolToWord(a < b))

		case isa.OpGts:
			b, a := m.pop(), m.pop()
			m.push(boolToWord(a > b))

		default:
			// An unknown opcode byte is a no-op; the fetch loop has
			// already advanced ip past it.
		}
		m.insCount++
	}
}

func (m *Machine) onereg() (isa.Register, error) {
	return m.register(m.read8())
}

func (m *Machine) tworeg() (isa.Register, isa.Register, error) {
	d, err := m.register(m.read8())
	if err != nil {
		return 0, 0, err
	}
	s, err := m.register(m.read8())
	if err != nil {
		return 0, 0, err
	}
	return d, s, nil
}

func boolToWord(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
