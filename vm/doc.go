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

// Package vm interprets an image.Image produced by the asm package: a
// 15-register, stack-machine interpreter with a 256-word operand stack.
//
// Two opcodes have semantics the reference C implementation and its own
// documentation disagree on; this package picks one and documents it here
// rather than in scattered comments:
//
//   - sub d, s fails (as a negative-decrementation error) unless
//     regs[d] > regs[s], strictly. regs[d] == regs[s] is a failure, not a
//     zero result.
//   - peek r is destructive: it pops the stack into regs[r], exactly like
//     pop. It is not a non-destructive top-of-stack read, despite the name.
package vm
