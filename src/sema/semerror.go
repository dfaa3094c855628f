package sema

import (
	"fmt"

	"github.com/hhramberg/l0c/src/util"
)

// errf builds a SemanticError from a format string, mirroring the
// frontend parser's errorf helper.
func errf(format string, args ...interface{}) error {
	return &util.SemanticError{Message: fmt.Sprintf(format, args...)}
}
