// label.go provides a thread safe way of generating unique names for LLVM
// basic blocks, lambda bodies and closure context structs. Lambda names
// must stay collision-free across however many modules are being compiled
// in parallel (-t), since every lifted lambda body ends up with external
// linkage in the final link.

package util

import (
	"fmt"
	"sync"
)

// ---------------------
// ----- Constants -----
// ---------------------

// Kinds of names the generator requests fresh instances of.
const (
	LabelLambda = iota // __lambda__<n>, a lifted lambda body's global name.
	LabelIfThen
	LabelIfElse
	LabelIfEnd
	LabelWhileHead
	LabelWhileBody
	LabelWhileEnd
	labelKindCount
)

// -------------------
// ----- Globals -----
// -------------------

var labelMx sync.Mutex

// labelIndices stores the numerical suffix for generated labels of each kind.
var labelIndices [labelKindCount]int

// labelPrefixes stores the string literal prefixes for labels of each kind.
var labelPrefixes = [labelKindCount]string{
	"__lambda__",
	"then",
	"else",
	"endif",
	"whilehead",
	"whilebody",
	"endwhile",
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewLabel returns a new, unique label of kind typ.
func NewLabel(typ int) string {
	if typ < 0 || typ >= labelKindCount {
		return "<label error>"
	}
	labelMx.Lock()
	defer labelMx.Unlock()
	s := fmt.Sprintf("%s%d", labelPrefixes[typ], labelIndices[typ])
	labelIndices[typ]++
	return s
}
