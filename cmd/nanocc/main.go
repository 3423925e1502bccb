package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/teris-io/cli"

	"github.com/nanocc/nanocc/pkg/asm"
	"github.com/nanocc/nanocc/pkg/asmdump"
	"github.com/nanocc/nanocc/pkg/ir"
	"github.com/nanocc/nanocc/pkg/lexer"
	"github.com/nanocc/nanocc/pkg/parser"
	"github.com/nanocc/nanocc/pkg/sema"
)

var Description = strings.ReplaceAll(`
nanocc compiles a single translation unit written in a small subset of C directly to
x86-64 AT&T-syntax assembly. It shells out to the system C preprocessor before lexing and, when
the output path does not end in .s and neither -S nor --no-assemble is given, to the system
assembler/linker after emitting its output.
`, "\n", " ")

var Nanocc = cli.New(Description).
	WithArg(cli.NewArg("input", "The source (.c) file to compile")).
	WithOption(cli.NewOption("S", "Emit assembly only, do not assemble or link").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("o", "Output path").WithType(cli.TypeString)).
	WithOption(cli.NewOption("no-assemble", "Skip the assemble+link step even without -S").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("dump-ir", "Print the generated IR to stderr before codegen").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("dump-asm", "Round-trip the emitted assembly through pkg/asmdump and print its function names").WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "ERROR: no input file provided, use --help\n")
		return 1
	}
	input := args[0]

	output := options["o"]
	if output == "" {
		output = strings.TrimSuffix(input, ".c") + ".s"
	}

	source, err := preprocess(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: preprocessing failed: %s\n", err)
		return 1
	}

	assembly, types, err := compile(source, options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}

	assemble := options["S"] == "" && options["no-assemble"] == "" && !strings.HasSuffix(output, ".s")
	asmPath := output
	if assemble {
		asmPath = output + ".s" // the linked binary goes to output itself
	}

	if err := os.WriteFile(asmPath, []byte(assembly), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: unable to write output file: %s\n", err)
		return 1
	}

	if options["dump-asm"] != "" {
		if err := dumpAssembly(assembly); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: --dump-asm: %s\n", err)
			return 1
		}
	}

	_ = types // types is read only by the emitter; kept here for symmetry with a future linker pass

	if assemble {
		if err := assembleAndLink(asmPath); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: assemble+link failed: %s\n", err)
			return 1
		}
	}

	return 0
}

// preprocess shells out to the system C preprocessor (spec.md section 6's "Preprocessor
// collaborator"), following tools/nanocc.cpp's invocation of "cc -E -P".
func preprocess(input string) (string, error) {
	cmd := exec.Command("cc", "-E", "-P", input)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("running cc -E -P: %w", err)
	}
	return string(out), nil
}

// compile runs the full nine-stage pipeline over preprocessed source text, returning the
// emitted assembly text and the type table built by semantic analysis.
func compile(source string, options map[string]string) (string, sema.TypeTable, error) {
	tokens, err := lexer.New(source).Lex()
	if err != nil {
		return "", nil, fmt.Errorf("lexing: %w", err)
	}

	p := parser.New(tokens)
	prog, err := p.Parse()
	if err != nil {
		return "", nil, fmt.Errorf("parsing: %w", err)
	}

	result, err := sema.Analyze(prog)
	if err != nil {
		return "", nil, fmt.Errorf("semantic analysis: %w", err)
	}

	irProgram := ir.New().Generate(result.Program)
	if options["dump-ir"] != "" {
		fmt.Fprint(os.Stderr, irProgram.String())
	}

	lowerer := asm.NewLowerer(irProgram)
	asmProgram, err := lowerer.Lower()
	if err != nil {
		return "", nil, fmt.Errorf("backend stage A: %w", err)
	}

	asmProgram, err = asm.Fixup(asmProgram)
	if err != nil {
		return "", nil, fmt.Errorf("backend stage B: %w", err)
	}

	emitter := asm.NewEmitter(result.Types)
	text, err := emitter.Emit(asmProgram)
	if err != nil {
		return "", nil, fmt.Errorf("emitting: %w", err)
	}

	return text, result.Types, nil
}

// dumpAssembly round-trips text through pkg/asmdump and prints the parsed listing's function
// names, a debug aid exercising the domain dependency goparsec is wired through.
func dumpAssembly(text string) error {
	reader := asmdump.NewReader(strings.NewReader(text))
	listing, err := reader.Read()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "functions: %s\n", strings.Join(listing.FunctionNames(), ", "))
	return nil
}

// assembleAndLink shells out to cc to assemble and link the emitted assembly into a runnable
// binary, mirroring the original implementation's CompilerPipeline test harness
// (spec.md section 6's "Assembler/linker collaborator").
func assembleAndLink(asmPath string) error {
	binPath := strings.TrimSuffix(asmPath, ".s")
	cmd := exec.Command("cc", asmPath, "-o", binPath)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func main() { os.Exit(Nanocc.Run(os.Args, os.Stdout)) }
