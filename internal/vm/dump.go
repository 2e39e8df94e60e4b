package vm

import (
	"fmt"
	"io"

	"github.com/funvibe/hug/internal/prettyprinter"
)

// Dump writes the session state: the merged program tree and the
// identifier table.
func (vm *VM) Dump(w io.Writer) {
	fmt.Fprintf(w, "session %s\n", vm.id)
	fmt.Fprintf(w, "pointer %d, frames %d, initialized %d/%d\n",
		vm.pointer, len(vm.frames), vm.initialized, len(vm.tree.OnLoad))
	io.WriteString(w, prettyprinter.PrintTree(vm.tree))
	fmt.Fprintln(w, "identifiers:")
	for id, name := range vm.idents.Names() {
		fmt.Fprintf(w, "  %4d %s\n", id, name)
	}
}
