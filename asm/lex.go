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
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// labelRe matches a label definition: one or more letters/underscores
// followed by a colon, at the start of a token.
var labelRe = regexp.MustCompile(`^[A-Za-z_]+:$`)

type lineKind int

const (
	lineEmpty lineKind = iota
	lineLabel
	lineInstruction
)

// line is one fully tokenized source line, after label/%include detection
// but before operand resolution (which needs the complete symbol table and
// so happens in a later pass).
type line struct {
	file    string
	lineNo  int
	kind    lineKind
	label   string   // set when kind == lineLabel
	mnemonic string  // set when kind == lineInstruction
	operands []string // set when kind == lineInstruction; raw operand tokens
	tail    string   // raw text after the mnemonic, for printcs
}

func (l line) pos() string {
	return fmt.Sprintf("%s:%d", l.file, l.lineNo)
}

// lexLine tokenizes a single raw source line: skip blank and ';' comment
// lines, detect a label or %include directive, otherwise split a mnemonic
// (ended by the first blank) from its ", "-separated operands.
func lexLine(file string, lineNo int, raw string) (line, error) {
	text := strings.TrimRight(raw, "\r\n")
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return line{file: file, lineNo: lineNo, kind: lineEmpty}, nil
	}
	if trimmed[0] == ';' {
		return line{file: file, lineNo: lineNo, kind: lineEmpty}, nil
	}

	tokens := strings.Split(trimmed, ", ")
	first := tokens[0]

	if labelRe.MatchString(first) {
		return line{
			file: file, lineNo: lineNo, kind: lineLabel,
			label: strings.TrimSuffix(first, ":"),
		}, nil
	}

	// The mnemonic ends at the first blank; the rest of the first token is
	// the first operand.
	operands := tokens[1:]
	if idx := strings.IndexAny(first, " \t"); idx >= 0 {
		operands = append([]string{strings.TrimSpace(first[idx:])}, tokens[1:]...)
		first = first[:idx]
	}

	if first == "%include" {
		if len(operands) < 1 {
			return line{}, errors.Errorf("%s:%d: %%include requires a path.", file, lineNo)
		}
		return line{
			file: file, lineNo: lineNo, kind: lineInstruction,
			mnemonic: "%include", operands: operands,
		}, nil
	}

	// tail is everything after the mnemonic in the untrimmed text, used by
	// printcs to scan its quoted literal byte-by-byte.
	tail := ""
	if idx := strings.Index(text, first); idx >= 0 {
		tail = text[idx+len(first):]
	}

	return line{
		file: file, lineNo: lineNo, kind: lineInstruction,
		mnemonic: first, operands: operands, tail: tail,
	}, nil
}

// expandSource flattens a source file (and any %include targets it names)
// into an ordered list of lexed lines. visited tracks the chain of files
// currently being expanded, so a self- or mutually-including source
// produces a diagnosable cycle error instead of unbounded recursion — the
// reference has no such protection.
func expandSource(path string, visited []string) ([]line, error) {
	for _, v := range visited {
		if v == path {
			chain := strings.Join(append(visited, path), " -> ")
			return nil, errors.Errorf("include cycle detected: %s", chain)
		}
	}
	visited = append(visited, path)

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", path)
	}
	defer f.Close()

	var out []line
	r := bufio.NewReader(f)
	lineNo := 0
	for {
		raw, err := r.ReadString('\n')
		if len(raw) > 0 {
			lineNo++
			l, lexErr := lexLine(path, lineNo, raw)
			if lexErr != nil {
				return nil, lexErr
			}
			if l.kind == lineInstruction && l.mnemonic == "%include" {
				target := l.operands[0]
				if _, statErr := os.Stat(target); statErr != nil {
					return nil, errors.Errorf("%s:%d: attempted to include a file `%s` that does not exist.", path, lineNo, target)
				}
				included, err := expandSource(target, visited)
				if err != nil {
					return nil, err
				}
				out = append(out, included...)
				continue
			}
			out = append(out, l)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "read %q", path)
		}
	}
	return out, nil
}
