// Package driver is the bottom half of the compiler: it runs the
// frontend pipeline, emits an object file per input via internal/ir,
// invokes the system linker, and manages the process-unique temporary
// directory those object files live in (§5 "Temp files", §6 "External
// interfaces").
package driver

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/compile"
	"github.com/shkhuz/aria/internal/diag"
	"github.com/shkhuz/aria/internal/ir"
)

// Exit codes (§6): "Exit code equals the number of errors emitted...
// a distinct non-zero exit code is used if the linker cannot be
// executed." The spec leaves the exact value unspecified beyond
// "distinct"; 2 is chosen because the frontend's own exit codes are
// error counts and a single-file typo produces 1 error far more often
// than 2.
const ExitLinkerUnavailable = 2

// exitLinkFailed is returned internally when `ld` runs but exits nonzero;
// it is reported differently from ExitLinkerUnavailable (ld not found
// at all) per §6's wording, which only carves out a distinct code for
// the latter.
const exitLinkFailed = 1

// Options configures one compiler invocation, equivalent to `aria
// <Inputs...> [-o <Output>]` (§6).
type Options struct {
	Inputs []string
	Output string // defaults to "a.out"
	Stderr io.Writer
}

// Run drives one whole compilation to completion and returns the
// process exit code §6 specifies.
func Run(opts Options) int {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	output := opts.Output
	if output == "" {
		output = "a.out"
	}

	eng := diag.New(stderr)
	files, err := compile.Files(opts.Inputs, eng)
	if err != nil {
		log.Printf("aria: %v", err)
		return 1
	}
	errs, _ := eng.Counts()
	eng.Summary()
	if eng.Errored() {
		return errs
	}

	tmpDir, err := os.MkdirTemp("", "aria-"+uuid.NewString())
	if err != nil {
		log.Printf("aria: creating temp object dir: %v", err)
		return 1
	}
	log.Printf("aria: using temp object dir %s", tmpDir)
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			log.Printf("aria: removing temp object dir %s: %v", tmpDir, rmErr)
		}
	}()

	objPaths, err := emitObjects(files, tmpDir)
	if err != nil {
		log.Printf("aria: %v", err)
		return 1
	}

	switch err := link(objPaths, output); {
	case err == nil:
		return 0
	case errors.Is(err, exec.ErrNotFound):
		log.Printf("aria: linker `ld` not found")
		return ExitLinkerUnavailable
	default:
		log.Printf("aria: aborting due to previous linker error")
		return exitLinkFailed
	}
}

// emitObjects runs the placeholder IR emitter over every checked file,
// writing each to its own file inside dir (§5: "each object file is
// written to this directory and then passed to the linker by path").
func emitObjects(files []*ast.File, dir string) ([]string, error) {
	var emitter ir.Emitter = ir.Placeholder{}
	paths := make([]string, 0, len(files))
	for i, f := range files {
		objPath := filepath.Join(dir, fmt.Sprintf("%d.o", i))
		out, err := os.Create(objPath)
		if err != nil {
			return nil, fmt.Errorf("creating object file for %s: %w", f.Src.Path, err)
		}
		emitErr := emitter.Emit(f, out)
		closeErr := out.Close()
		if emitErr != nil {
			return nil, fmt.Errorf("emitting %s: %w", f.Src.Path, emitErr)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("closing object file for %s: %w", f.Src.Path, closeErr)
		}
		paths = append(paths, objPath)
	}
	return paths, nil
}

func link(objPaths []string, output string) error {
	args := make([]string, 0, len(objPaths)+2)
	args = append(args, "-o", output)
	args = append(args, objPaths...)
	if rt := runtimeSupportObj(); rt != "" {
		args = append(args, rt)
	}
	cmd := exec.Command("ld", args...)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// runtimeSupportObj names the architecture-specific prebuilt object
// §6 says is bundled with the compiler and passed to `ld` alongside
// the frontend's own outputs. No such object is bundled by this
// repo (it is backend/runtime-specific content entirely out of this
// frontend's scope, §1); an empty return means the linker is invoked
// without one, which is honest about the gap rather than silently
// fabricating a stub.
func runtimeSupportObj() string { return "" }
