// target.go implements the optional -obj convenience path: emitting a
// native object file straight from the in-process LLVM target machine,
// instead of shelling out to llc. Uses the host's own default target
// triple since the driver has no cross-compilation flags.
package llvm

import (
	"errors"
	"os"

	"tinygo.org/x/go-llvm"
)

// EmitObject re-parses the textual module that the driver wrote to llPath
// from Generate's output and writes a native object file for the host's default target
// triple to objPath. Called only when the driver's -obj flag is set.
func EmitObject(llPath string, objPath string) error {
	llvm.InitializeNativeTarget()
	llvm.InitializeNativeAsmPrinter()

	ctx := llvm.NewContext()
	defer ctx.Dispose()

	buf, err := llvm.NewMemoryBufferFromFile(llPath)
	if err != nil {
		return err
	}
	module, err := ctx.ParseIR(buf)
	if err != nil {
		return err
	}
	defer module.Dispose()

	triple := llvm.DefaultTargetTriple()
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return err
	}

	tm := target.CreateTargetMachine(triple, "generic", "",
		llvm.CodeGenLevelNone, llvm.RelocDefault, llvm.CodeModelDefault)
	defer tm.Dispose()

	td := tm.CreateTargetData()
	defer td.Dispose()
	module.SetDataLayout(td.String())
	module.SetTarget(tm.Triple())

	outbuf, err := tm.EmitToMemoryBuffer(module, llvm.ObjectFile)
	if err != nil {
		return err
	}
	if outbuf.IsNil() {
		return errors.New("could not emit compiled code to memory")
	}

	return os.WriteFile(objPath, outbuf.Bytes(), 0644)
}
