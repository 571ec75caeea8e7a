// Package prelude carries the source text compiled ahead of every
// user program.
package prelude

import _ "embed"

//go:embed builtins.v
var Source string
