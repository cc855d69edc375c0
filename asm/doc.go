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

// Package asm assembles syntheticasm source into an image.Image.
//
// Supported opcodes:
//	mnemonic	operands		description
//	halt		-			halt the VM
//	mov		d, s			regs[d] = regs[s]
//	printc		r			print regs[r] as a character
//	printcs		"..."			print an inline NUL-terminated string
//	printi		r			print regs[r] as a decimal integer
//	printh		r			print regs[r] as 4-digit hex
//	setr		r, imm			regs[r] = imm
//	inc		r			regs[r]++ (wraps)
//	dec		r			regs[r]-- (fails at 0)
//	add/sub/mul/div/shl/shr/xor/or/and/mod/lt/gt	d, s
//	jmp		target			ip = target
//	jnz/jz		r, target		conditional jump
//	push		imm			push an immediate
//	pushr		r			push regs[r]
//	pop		r			regs[r] = pop()
//	peek		r			regs[r] = pop() (destructive, see vm package docs)
//	getip		r			regs[r] = ip
//	call		target			push ip, ip = target
//	ret					ip = pop()
//	printis					pop and print a decimal integer
//	adds/subs/muls/divs			pop b, pop a, push a (op) b
//	lts/gts					pop b, pop a, push comparison result
//
// A line whose first non-blank character is ';' is a comment; a ';' after
// an instruction does not start a comment. The mnemonic is followed by a
// blank, and operands are separated by ", " (comma, then a single space). Labels are written `name:` at the
// start of a line and referenced by name elsewhere. The `%include <path>`
// directive splices another source file into the current assembly.
//
// A label named main is mandatory: its address becomes the image's
// 3-byte header, an unconditional jump executed before any other code.
package asm
