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
	"io"

	"github.com/pkg/errors"

	"github.com/RaidTheWeb/syntheticasm/internal/image"
)

// AssembleFile assembles the named source file (expanding any %include
// directives it contains) into an image.Image.
func AssembleFile(path string) (image.Image, error) {
	lines, err := expandSource(path, nil)
	if err != nil {
		return nil, err
	}
	return assembleLines(lines)
}

// Assemble assembles source read from r. name is used only in error
// messages to identify the source (e.g. a file name); a %include line is
// an error here, since only AssembleFile expands includes (opening each
// path as written, relative to the working directory).
func Assemble(name string, r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %q", name)
	}
	lines, err := lexAll(name, data)
	if err != nil {
		return nil, err
	}
	return assembleLines(lines)
}

// lexAll tokenizes an in-memory buffer line by line, without any
// %include expansion (see Assemble).
func lexAll(name string, data []byte) ([]line, error) {
	var out []line
	lineNo := 0
	start := 0
	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			if start == i && i == len(data) {
				break
			}
			lineNo++
			raw := string(data[start:i])
			l, err := lexLine(name, lineNo, raw)
			if err != nil {
				return nil, err
			}
			if l.kind == lineInstruction && l.mnemonic == "%include" {
				return nil, errors.Errorf("%s:%d: %%include is only supported when assembling from a file.", name, lineNo)
			}
			out = append(out, l)
			start = i + 1
		}
	}
	return out, nil
}

// assembleLines runs the two-pass assembly proper over an already
// include-expanded, lexed line stream.
//
// Pass 1 walks every line to compute each instruction's byte offset and
// populate the symbol table; instruction sizes are fully determined by
// their mnemonic and operand shape (plus, for printcs, the literal length
// of its string), so this does not require any label to already be
// resolved. Pass 2 re-walks the same lines and emits the final bytes,
// resolving every label reference — including a forward reference to a
// label defined later in the source, such as a call to a subroutine
// written below its call site — against the now-complete table built in
// pass 1. This differs from the reference assembler, which resolves
// labels as it encounters each instruction and therefore cannot support
// forward references; a two-pass design is necessary to assemble
// subroutine-call-before-definition source, which a faithful assembler
// must support.
func assembleLines(lines []line) (image.Image, error) {
	symtab := newSymbolTable()

	offset := uint16(image.HeaderSize)
	for _, l := range lines {
		switch l.kind {
		case lineLabel:
			if err := symtab.define(l.label, l.pos(), offset); err != nil {
				return nil, err
			}
		case lineInstruction:
			size, err := instrSize(l)
			if err != nil {
				return nil, err
			}
			offset += uint16(size)
		}
	}

	if _, ok := symtab.resolve("main"); !ok {
		return nil, errors.Errorf("main label does not exist.")
	}

	buf := make([]byte, image.HeaderSize, offset)
	for _, l := range lines {
		if l.kind != lineInstruction {
			continue
		}
		if err := encodeInstr(l, symtab, &buf); err != nil {
			return nil, err
		}
	}

	mainAddr, _ := symtab.resolve("main")
	img := image.Image(buf)
	img.PatchHeader(mainAddr)
	return img, nil
}

// AssembleToFile assembles src and writes the resulting image to dst.
func AssembleToFile(src, dst string) error {
	img, err := AssembleFile(src)
	if err != nil {
		return err
	}
	return image.Save(dst, img)
}
