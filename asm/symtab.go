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

import "github.com/pkg/errors"

// symbolTable maps label names to their resolved code offset. Lookup of an
// undefined label is a fatal error; so is redefining an existing label —
// the reference leaves redefinition as undefined behavior, but a faithful
// port treats it as an error.
type symbolTable struct {
	offsets map[string]uint16
	defined map[string]string // name -> "file:line" of first definition, for error messages
}

func newSymbolTable() *symbolTable {
	return &symbolTable{
		offsets: make(map[string]uint16),
		defined: make(map[string]string),
	}
}

func (s *symbolTable) define(name, where string, offset uint16) error {
	if prev, ok := s.defined[name]; ok {
		return errors.Errorf("label `%s` already defined at %s.", name, prev)
	}
	s.offsets[name] = offset
	s.defined[name] = where
	return nil
}

func (s *symbolTable) resolve(name string) (uint16, bool) {
	off, ok := s.offsets[name]
	return off, ok
}
