package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `nanoc - the NanoScript compiler

Usage:
    nanoc <command> [arguments]

Commands:
    build <file>    Compile a .nano file to an executable
    emit <file>     Compile a .nano file to LLVM IR (.ll)
    check <file>    Compile a .nano file without writing any output
    tokens <file>   Dump the token stream of a .nano file
    help            Show this help message

Build configs (-config):
    debug           O0  + DWARF debug info  [default]
    development     O2  + DWARF debug info
    shipping        O3 (whole program) + no debug info

Examples:
    nanoc build examples/answer.nano
    nanoc build -config=shipping -wasm -o answer.wasm answer.nano
    nanoc emit -o answer.ll answer.nano
    nanoc check answer.nano

Use "nanoc <command> -h" for more information about a command.
`)
}

type buildFlags struct {
	fs      *flag.FlagSet
	config  *string
	wasm    *bool
	output  *string
	verbose *bool
}

func newBuildFlags(name string) *buildFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &buildFlags{
		fs:      fs,
		config:  fs.String("config", "debug", "build config: debug, development, or shipping"),
		wasm:    fs.Bool("wasm", false, "target wasm32-wasi instead of the native host"),
		output:  fs.String("o", "", "output path"),
		verbose: fs.Bool("v", false, "show verbose compilation details"),
	}
}

// parseOne parses the flag set and returns the single required file argument
// together with the selected profile.
func (bf *buildFlags) parseOne(args []string) (string, Profile) {
	if err := bf.fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if bf.fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		bf.fs.Usage()
		os.Exit(1)
	}
	profile, err := ConfigProfile(*bf.config, *bf.wasm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return bf.fs.Arg(0), profile
}

func compileFile(filename string, profile Profile) (string, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", filename, err)
	}

	// Absolute paths in the debug info let lldb and wasmtime locate the
	// source file.
	abs, err := filepath.Abs(filename)
	if err != nil {
		abs = filename
	}

	mod, err := CompileNamed(string(source), filepath.Base(abs), filepath.Dir(abs), profile)
	if err != nil {
		return "", err
	}
	return mod.String(), nil
}

func defaultOutput(filename string, wasm bool) string {
	stem := strings.TrimSuffix(filepath.Base(filename), ".nano")
	if wasm {
		return stem + ".wasm"
	}
	return stem
}

func buildCommand(args []string) {
	bf := newBuildFlags("build")
	bf.fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: nanoc build [-config name] [-wasm] [-o output] [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Compile a .nano file to an executable\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		bf.fs.PrintDefaults()
	}
	filename, profile := bf.parseOne(args)

	output := *bf.output
	if output == "" {
		output = defaultOutput(filename, *bf.wasm)
	}

	if *bf.verbose {
		fmt.Fprintf(os.Stderr, "Compiling %s [%s]...\n", filename, profile)
	}

	irText, err := compileFile(filename, profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation failed: %v\n", err)
		os.Exit(1)
	}

	tempLL := output + ".tmp.ll"
	if err := os.WriteFile(tempLL, []byte(irText), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing IR file: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(tempLL)

	if err := linkArtifact(tempLL, output, profile, *bf.verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Link step failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Compiled '%s' -> '%s' [%s]\n", filename, output, profile)
}

// linkArtifact invokes the external clang driver on the emitted IR. The
// toolchain location can be overridden with NANOC_CLANG; the wasi sysroot
// comes from NANOC_WASI_SYSROOT.
func linkArtifact(llFile, output string, profile Profile, verbose bool) error {
	clang := os.Getenv("NANOC_CLANG")
	if clang == "" {
		var err error
		clang, err = exec.LookPath("clang")
		if err != nil {
			return fmt.Errorf("clang not found in PATH (set NANOC_CLANG to override)")
		}
	}

	var args []string
	if profile.Target == TargetWASI {
		args = append(args, "--target=wasm32-wasi")
		if sysroot := os.Getenv("NANOC_WASI_SYSROOT"); sysroot != "" {
			args = append(args, "--sysroot="+sysroot)
		}
		if profile.DebugInfo {
			args = append(args, "-g")
		}
	} else {
		if profile.DebugInfo {
			args = append(args, "-g")
		} else {
			args = append(args, "-O3")
		}
		// clang normalizes the triple and warns about the cosmetic mismatch.
		args = append(args, "-Wno-override-module")
	}
	args = append(args, llFile, "-o", output)

	if verbose {
		fmt.Fprintf(os.Stderr, "Linking: %s %s\n", clang, strings.Join(args, " "))
	}

	cmd := exec.Command(clang, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func emitCommand(args []string) {
	bf := newBuildFlags("emit")
	bf.fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: nanoc emit [-config name] [-wasm] [-o output.ll] [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Compile a .nano file to LLVM IR\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		bf.fs.PrintDefaults()
	}
	filename, profile := bf.parseOne(args)

	output := *bf.output
	if output == "" {
		output = strings.TrimSuffix(filepath.Base(filename), ".nano") + ".ll"
	}

	irText, err := compileFile(filename, profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation failed: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(output, []byte(irText), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		os.Exit(1)
	}

	if *bf.verbose {
		fmt.Fprintf(os.Stderr, "Wrote %d bytes of IR\n", len(irText))
	}
	fmt.Printf("Compiled '%s' -> '%s' [%s]\n", filename, output, profile)
}

func checkCommand(args []string) {
	bf := newBuildFlags("check")
	bf.fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: nanoc check [-config name] [-wasm] <file>\n")
		fmt.Fprintf(os.Stderr, "Compile a .nano file without writing any output\n")
	}
	filename, profile := bf.parseOne(args)

	if _, err := compileFile(filename, profile); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: OK\n", filename)
}

func tokensCommand(args []string) {
	fs := flag.NewFlagSet("tokens", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: nanoc tokens <file>\n")
		fmt.Fprintf(os.Stderr, "Dump the token stream of a .nano file\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	source, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}
	tokens, err := Tokenize(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	for _, tok := range tokens {
		fmt.Printf("%d:%d\t%s\t%q\n", tok.Line, tok.Col, tok.Type, tok.Literal)
	}
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		buildCommand(args)
	case "emit":
		emitCommand(args)
	case "check":
		checkCommand(args)
	case "tokens":
		tokensCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
