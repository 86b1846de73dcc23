package toolchain

import "native-launchers/go/pkg/platform"

// CompileRequest holds everything that shapes one compiler invocation.
type CompileRequest struct {
	// Compiler is used when Override is empty.
	Compiler Compiler
	// Override replaces the resolved compiler command verbatim.
	Override     []string
	CompilerArgs []string
	LinkerArgs   []string
	OutputName   string
	SourceFile   string
	Debug        bool
	Platform     platform.Profile
}

// BuildCompileArgs assembles the compiler argv. The order is fixed:
//
//	<compiler> <compiler args> -o <output> <source> [-DDEBUG] [-ldl] <linker args>
//
// Front-end flags must precede the source file and linker flags must follow
// it, or traditional Unix linkers fail to resolve symbols.
func BuildCompileArgs(req CompileRequest) []string {
	lead := req.Compiler.Command
	if len(req.Override) > 0 {
		lead = req.Override
	}
	args := make([]string, 0, len(lead)+len(req.CompilerArgs)+len(req.LinkerArgs)+5)
	args = append(args, lead...)
	args = append(args, req.CompilerArgs...)
	args = append(args, "-o", req.OutputName, req.SourceFile)
	if req.Debug {
		args = append(args, "-DDEBUG")
	}
	if req.Platform.IsUnix {
		// dlopen lives in libdl
		args = append(args, "-ldl")
	}
	return append(args, req.LinkerArgs...)
}

// HideConsoleArgs rewrites the PE subsystem of a console executable so that
// Windows does not allocate a console window when it starts.
func HideConsoleArgs(outputName string) []string {
	return []string{"EditBin.exe", "/Subsystem:windows", outputName}
}
