// Package glyphrange builds and validates glyph range lists.
//
// A range list is a flat []uint16 of inclusive [from, to] pairs followed by a
// single zero terminator, e.g. {0x20, 0x7E, 0x3000, 0x30FF, 0}. Codepoint 0
// cannot appear in a list and only the Basic Multilingual Plane is
// representable.
//
// Builder accumulates codepoints in a 64K bitset and emits the minimal
// ascending range list:
//
//	ranges := glyphrange.New().
//		WithRange(' ', '~').
//		WithString("…•").
//		WithLanguage(language.Japanese).
//		Build(true, true)
package glyphrange
