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

package vm_test

import (
	"bytes"
	"testing"

	"github.com/RaidTheWeb/syntheticasm/internal/image"
	"github.com/RaidTheWeb/syntheticasm/internal/isa"
	"github.com/RaidTheWeb/syntheticasm/vm"
)

// build assembles a minimal image whose main label sits right at the
// header boundary (offset 3) and whose code is exactly the given bytes.
func build(code ...byte) image.Image {
	img := image.New(len(code))
	copy(img[image.HeaderSize:], code)
	img.PatchHeader(image.HeaderSize)
	return img
}

func run(t *testing.T, img image.Image, opts ...vm.Option) string {
	t.Helper()
	var out bytes.Buffer
	m, err := vm.New(img, append([]vm.Option{vm.Output(&out)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func TestPrintc(t *testing.T) {
	img := build(byte(isa.OpSetr), byte(isa.R0), 0x00, 0x41, byte(isa.OpPrintc), byte(isa.R0), byte(isa.OpHalt))
	if got := run(t, img); got != "A" {
		t.Fatalf("got %q, want %q", got, "A")
	}
}

func TestStackDiscipline(t *testing.T) {
	// push a; push b; pop r2; pop r1 => r1 == a, r2 == b
	img := build(
		byte(isa.OpPush), 0x00, 0x0A, // push 10
		byte(isa.OpPush), 0x00, 0x14, // push 20
		byte(isa.OpPop), byte(isa.R2), // r2 = 20
		byte(isa.OpPop), byte(isa.R1), // r1 = 10
		byte(isa.OpPrinti), byte(isa.R1),
		byte(isa.OpPrinti), byte(isa.R2),
		byte(isa.OpHalt),
	)
	if got := run(t, img); got != "1020" {
		t.Fatalf("got %q, want %q", got, "1020")
	}
}

func TestInvalidRegisterIsFatal(t *testing.T) {
	img := build(byte(isa.OpPrintc), 0x0F, byte(isa.OpHalt))
	m, err := vm.New(img)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err == nil {
		t.Fatal("expected an error for register 0x0F")
	}
}

func TestSubStrictInequality(t *testing.T) {
	// regs equal => error, per the reference's strict-inequality bug,
	// preserved intentionally.
	img := build(
		byte(isa.OpSetr), byte(isa.R0), 0x00, 0x05,
		byte(isa.OpSetr), byte(isa.R1), 0x00, 0x05,
		byte(isa.OpSub), byte(isa.R0), byte(isa.R1),
		byte(isa.OpHalt),
	)
	m, err := vm.New(img)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err == nil {
		t.Fatal("expected sub with equal operands to fail")
	}
}

func TestDivByZero(t *testing.T) {
	img := build(
		byte(isa.OpSetr), byte(isa.R0), 0x00, 0x0A,
		byte(isa.OpSetr), byte(isa.R1), 0x00, 0x00,
		byte(isa.OpDiv), byte(isa.R0), byte(isa.R1),
		byte(isa.OpHalt),
	)
	m, err := vm.New(img)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err == nil {
		t.Fatal("expected division by zero to fail")
	}
}

func TestPeekIsDestructive(t *testing.T) {
	img := build(
		byte(isa.OpPush), 0x00, 0x07,
		byte(isa.OpPeek), byte(isa.R0),
		byte(isa.OpPeek), byte(isa.R1), // underflows: stack is now empty
		byte(isa.OpHalt),
	)
	m, err := vm.New(img)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err == nil {
		t.Fatal("expected a second peek on an empty stack to fail, proving peek is destructive")
	}
}

func TestCallReturnSymmetry(t *testing.T) {
	// main: call sub; printi r0; halt
	// sub:  setr r0, 0x002A; ret
	img := build(
		byte(isa.OpCall), 0x00, 0x09, // sub starts at 3+3+2+1 = 9
		byte(isa.OpPrinti), byte(isa.R0),
		byte(isa.OpHalt),
		byte(isa.OpSetr), byte(isa.R0), 0x00, 0x2A,
		byte(isa.OpRet),
	)
	if got := run(t, img); got != "42" {
		t.Fatalf("got %q, want %q", got, "42")
	}
}

func TestStackOpsPopAndPush(t *testing.T) {
	img := build(
		byte(isa.OpPush), 0x00, 0x07,
		byte(isa.OpPush), 0x00, 0x05,
		byte(isa.OpSubs),
		byte(isa.OpPrintis),
		byte(isa.OpHalt),
	)
	if got := run(t, img); got != "2" {
		t.Fatalf("got %q, want %q", got, "2")
	}
}
