// Copyright 2018 The Go Authors. All rights reserved.
// Copyright 2020 Andrew Archibald. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "fmt"

// Pos is a line and column position in a source file, both counted
// from 1.
type Pos struct {
	Filename  string
	Line, Col int
}

// IsKnown returns whether the position refers to a line.
func (pos Pos) IsKnown() bool { return pos.Line > 0 }

func (pos Pos) String() string {
	name := pos.Filename
	if name == "" {
		name = "<input>"
	}
	if !pos.IsKnown() {
		return name
	}
	return fmt.Sprintf("%s:%d:%d", name, pos.Line, pos.Col)
}

// Error is a syntax error at a source position.
type Error struct {
	Pos Pos
	Msg string
}

func (err *Error) Error() string {
	return fmt.Sprintf("%v: %s", err.Pos, err.Msg)
}
