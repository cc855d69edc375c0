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

package image_test

import (
	"path/filepath"
	"testing"

	"github.com/RaidTheWeb/syntheticasm/internal/image"
)

func TestPatchHeader(t *testing.T) {
	img := image.New(4)
	img.PatchHeader(0x1234)
	if img[0] != 0x0E || img[1] != 0x12 || img[2] != 0x34 {
		t.Fatalf("unexpected header bytes: % x", img[:3])
	}
	if got := img.MainAddr(); got != 0x1234 {
		t.Fatalf("MainAddr() = 0x%04x, want 0x1234", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	img := image.New(2)
	img.PatchHeader(3)
	img[3] = 0x01 // halt

	dir := t.TempDir()
	path := filepath.Join(dir, "a.out")
	if err := image.Save(path, img); err != nil {
		t.Fatal(err)
	}
	got, err := image.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(img) {
		t.Fatalf("round-tripped image length = %d, want %d", len(got), len(img))
	}
	for i := range img {
		if got[i] != img[i] {
			t.Fatalf("byte %d = 0x%02x, want 0x%02x", i, got[i], img[i])
		}
	}

	if _, err := image.Load(filepath.Join(dir, "missing.out")); err == nil {
		t.Fatal("expected an error loading a missing file")
	}
}

func TestDecodeInlineString(t *testing.T) {
	img := image.Image{'H', 'i', '!', 0x00, 0xFF}
	s, next := img.DecodeInlineString(0)
	if s != "Hi!" {
		t.Fatalf("DecodeInlineString = %q, want %q", s, "Hi!")
	}
	if next != 4 {
		t.Fatalf("next = %d, want 4", next)
	}
}
