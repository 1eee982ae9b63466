package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/example/jscore/builtins"
	"github.com/example/jscore/config"
	"github.com/example/jscore/interpreter"
	"github.com/example/jscore/lexer"
	"github.com/example/jscore/parser"
	"github.com/example/jscore/runtime"
	"github.com/example/jscore/token"
)

const (
	historyFile = ".jsgo_history"
	promptMain  = "> "
	promptCont  = "... "
)

func main() {
	evalCode := flag.String("e", "", "evaluate inline JavaScript code")
	dumpAST := flag.Bool("ast", false, "dump the AST as JSON")
	module := flag.Bool("m", false, "evaluate the file as a module")
	strict := flag.Bool("strict", false, "evaluate scripts as strict mode code")
	configDir := flag.String("config", ".", "directory to start the jscore.toml search from")
	verbosity := flag.Int("v", 0, "log verbosity (-4 silent .. 2 debug); overrides the config file when non-zero")
	flag.Parse()

	cfg, err := config.FindAndLoad(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if *verbosity != 0 {
		cfg.Log.Verbosity = *verbosity
	}
	commonlog.Configure(cfg.Log.Verbosity, cfg.LogFile())
	log := commonlog.GetLogger("jscore.cli")

	var source, filename string
	switch {
	case *evalCode != "":
		source = *evalCode
		filename = "<eval>"
	case flag.NArg() > 0:
		filename = flag.Arg(0)
		data, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
	}

	if *dumpAST {
		if filename == "" {
			usage()
		}
		os.Exit(printAST(source, *module))
	}

	interp, host := newInterpreter(cfg, *strict)
	log.Debugf("realm %s ready", interp.Realm().ID)

	switch {
	case filename == "":
		os.Exit(repl(interp))
	case *module:
		os.Exit(runModule(interp, host, filename))
	default:
		os.Exit(runScript(interp, filename, source))
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: jsgo [options] [file.js]\n")
	fmt.Fprintf(os.Stderr, "       jsgo -e \"code\"\n")
	fmt.Fprintf(os.Stderr, "Without a file or -e, jsgo starts a REPL.\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

// newInterpreter builds an interpreter whose modules are read from the
// configured module root.
func newInterpreter(cfg *config.Config, strict bool) (*interpreter.Interpreter, *runtime.FileModuleHost) {
	fileHost := &runtime.FileModuleHost{Root: cfg.ModuleRootPath()}
	var host runtime.Host = fileHost
	if !cfg.Host.AllowEval {
		host = runtime.DenyDynamicCode{Host: fileHost}
	}
	interp := interpreter.NewWithOptions(interpreter.Options{
		Strict:          strict || cfg.Engine.Strict,
		MaxCallDepth:    cfg.Engine.MaxCallDepth,
		MaxJobsPerDrain: cfg.Engine.MaxJobsPerDrain,
		Host:            host,
	})
	fileHost.Compile = interp.CompileModule
	return interp, fileHost
}

func printAST(source string, module bool) int {
	p := parser.New(source)
	var program interface{}
	var errs []error
	if module {
		program, errs = p.ParseModule()
	} else {
		program, errs = p.ParseProgram()
	}
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		return 1
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(program); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding AST: %v\n", err)
		return 1
	}
	return 0
}

func runScript(interp *interpreter.Interpreter, filename, source string) int {
	result, err := interp.EvalScript(filename, source)
	if err == nil {
		err = interp.RunJobs()
	}
	if err != nil {
		reportError(err)
		return 1
	}
	if result != nil && !result.IsUndefined() {
		fmt.Println(builtins.Inspect(interp.Agent(), result))
	}
	return 0
}

func runModule(interp *interpreter.Interpreter, host *runtime.FileModuleHost, filename string) int {
	path, err := filepath.Abs(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	host.Root = filepath.Dir(path)
	if _, err := interp.ImportModule(path); err != nil {
		reportError(err)
		return 1
	}
	return 0
}

func reportError(err error) {
	var exc *runtime.Exception
	if errors.As(err, &exc) {
		fmt.Fprintf(os.Stderr, "Uncaught %s\n", exc.StackString())
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func repl(interp *interpreter.Interpreter) int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println("jscore REPL. Ctrl+D or .exit to quit.")
	for {
		code, ok := readStatement(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if trimmed == ".exit" {
			return 0
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		v, err := interp.Eval(code)
		if err != nil {
			reportError(err)
			continue
		}
		fmt.Println(builtins.Inspect(interp.Agent(), v))
	}
}

// readStatement reads lines until the input no longer has unclosed
// brackets. ok is false at end of input.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

// incomplete reports whether src opens more brackets than it closes.
func incomplete(src string) bool {
	l := lexer.New(src)
	depth := 0
	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.EOF:
			return depth > 0
		case token.Illegal:
			return false
		case token.LeftBrace, token.LeftParen, token.LeftBracket:
			depth++
		case token.RightBrace, token.RightParen, token.RightBracket:
			depth--
		}
	}
}
