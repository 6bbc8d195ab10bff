// Package enginetest is a scripted stand-in for the decompiler engine. Test
// binaries re-execute themselves with EnvEngine set and call Main.
package enginetest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/ilview/internal/adapters/decompiler"
)

// Environment switches read by Main.
const (
	// EnvEngine marks a process as the fake engine.
	EnvEngine = "ILVIEW_FAKE_ENGINE"
	// EnvMode selects a startup behavior.
	EnvMode = "ILVIEW_FAKE_ENGINE_MODE"
)

// Startup modes.
const (
	// ModeNoReady never reports ready.
	ModeNoReady = "noready"
	// ModeExit exits with status 3 before reporting ready.
	ModeExit = "exit"
	// ModeStubborn ignores stdin EOF, so it has to be killed.
	ModeStubborn = "stubborn"
)

// Symbols with scripted misbehavior when decompiled.
const (
	SymbolHang    = "M:Demo.T.Hang"
	SymbolGarbage = "M:Demo.T.Garbage"
	SymbolBadBody = "M:Demo.T.BadBody"
	SymbolCrash   = "M:Demo.T.Crash"
)

// Symbols of the sample assembly.
const (
	SymbolType = "T:Demo.T"
	SymbolM1   = "M:Demo.T.M1"
	SymbolM2   = "M:Demo.T.M2"
)

// MissingAssembly is the file name the engine refuses to load.
const MissingAssembly = "missing.dll"

// Enabled reports whether this process was started as the fake engine.
func Enabled() bool {
	return os.Getenv(EnvEngine) == "1"
}

// Env returns the environment entries that turn a re-executed test binary
// into the fake engine running mode.
func Env(mode string) []string {
	return []string{EnvEngine + "=1", EnvMode + "=" + mode}
}

// Main serves the protocol on stdin and stdout and exits.
func Main() {
	os.Exit(Serve(os.Stdin, os.Stdout, os.Getenv(EnvMode)))
}

// Serve runs the engine loop and returns the exit status.
func Serve(r io.Reader, w io.Writer, mode string) int {
	e := &engine{
		enc:    json.NewEncoder(w),
		loaded: make(map[string]bool),
	}

	switch mode {
	case ModeExit:
		fmt.Fprintln(os.Stderr, "fake engine: refusing to start")
		return 3
	case ModeNoReady:
	default:
		e.event(decompiler.EventReady, nil)
		e.event(decompiler.EventLog, decompiler.LogBody{Message: "fake engine ready"})
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var req decompiler.Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			fmt.Fprintf(os.Stderr, "fake engine: bad request: %v\n", err)
			continue
		}
		if code, exit := e.handle(w, &req); exit {
			return code
		}
	}

	if mode == ModeStubborn {
		time.Sleep(time.Hour)
	}
	return 0
}

type engine struct {
	enc    *json.Encoder
	loaded map[string]bool
}

func (e *engine) event(name string, body any) {
	msg := map[string]any{"type": decompiler.TypeEvent, "event": name}
	if body != nil {
		msg["body"] = body
	}
	_ = e.enc.Encode(msg)
}

func (e *engine) respond(req *decompiler.Request, body any) {
	_ = e.enc.Encode(map[string]any{
		"type":        decompiler.TypeResponse,
		"request_seq": req.Seq,
		"command":     req.Command,
		"success":     true,
		"body":        body,
	})
}

func (e *engine) reject(req *decompiler.Request, code, message string) {
	_ = e.enc.Encode(map[string]any{
		"type":        decompiler.TypeResponse,
		"request_seq": req.Seq,
		"command":     req.Command,
		"success":     false,
		"error":       decompiler.ResponseError{Code: code, Message: message},
	})
}

// handle answers one request. It reports an exit status when the script
// calls for the engine to die.
func (e *engine) handle(w io.Writer, req *decompiler.Request) (int, bool) {
	args := req.Arguments

	switch req.Command {
	case decompiler.CommandLoad:
		e.load(req)
		return 0, false
	case decompiler.CommandUnload:
		delete(e.loaded, args.AssemblyPath)
		e.respond(req, struct{}{})
		return 0, false
	}

	if !e.loaded[args.AssemblyPath] {
		e.reject(req, "assembly_not_loaded", "assembly is not loaded: "+args.AssemblyPath)
		return 0, false
	}

	switch req.Command {
	case decompiler.CommandEnumerate:
		members, ok := hierarchy[args.Symbol]
		if !ok && !isLeaf(args.Symbol) {
			e.reject(req, "unresolved_symbol", "unknown symbol: "+args.Symbol)
			return 0, false
		}
		if members == nil {
			members = []decompiler.Member{}
		}
		e.respond(req, decompiler.EnumerateBody{Members: members})
	case decompiler.CommandDecompile:
		switch args.Symbol {
		case SymbolHang:
			return 0, false
		case SymbolGarbage:
			fmt.Fprintln(w, "this is not a message")
			return 0, false
		case SymbolBadBody:
			e.respond(req, map[string]any{"code": 42})
			return 0, false
		case SymbolCrash:
			return 2, true
		}
		code, ok := render(args.AssemblyPath, args.Symbol, args.Language)
		if !ok {
			e.reject(req, "unresolved_symbol", "unknown symbol: "+args.Symbol)
			return 0, false
		}
		e.respond(req, decompiler.DecompileBody{Code: code})
	default:
		e.reject(req, "unknown_command", "unknown command: "+req.Command)
	}
	return 0, false
}

func (e *engine) load(req *decompiler.Request) {
	path := req.Arguments.AssemblyPath
	base := filepath.Base(path)

	if strings.EqualFold(base, MissingAssembly) {
		e.reject(req, "load_failed", "could not find file "+path)
		return
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext != ".dll" && ext != ".exe" {
		e.reject(req, "bad_image_format", "not a managed assembly: "+path)
		return
	}

	// Give callers a window in which a load is observably in flight.
	if strings.HasPrefix(base, "slow") {
		time.Sleep(100 * time.Millisecond)
	}

	e.loaded[path] = true
	e.respond(req, decompiler.LoadBody{
		Name:            strings.TrimSuffix(base, filepath.Ext(base)),
		Version:         "1.0.0.0",
		TargetFramework: ".NETStandard,Version=v2.0",
	})
}

// hierarchy is the member tree every loaded assembly reports.
var hierarchy = map[string][]decompiler.Member{
	"": {
		{Name: "T", Kind: "type", Symbol: SymbolType},
	},
	SymbolType: {
		{Name: "M1", Kind: "method", Symbol: SymbolM1},
		{Name: "M2", Kind: "method", Symbol: SymbolM2},
	},
}

func isLeaf(symbol string) bool {
	return symbol == SymbolM1 || symbol == SymbolM2
}

func render(assembly, symbol, language string) (string, bool) {
	il := language == "il"
	name := strings.TrimSuffix(filepath.Base(assembly), filepath.Ext(assembly))

	switch symbol {
	case "":
		if il {
			return fmt.Sprintf(".assembly %s\n{\n\t.ver 1:0:0:0\n}\n", name), true
		}
		return fmt.Sprintf("// %s, Version=1.0.0.0\n[assembly: TargetFramework(\".NETStandard,Version=v2.0\")]\n", name), true
	case SymbolType:
		if il {
			return ".class public auto ansi beforefieldinit Demo.T\n\textends [System.Runtime]System.Object\n{\n}\n", true
		}
		return "namespace Demo\n{\n\tpublic class T\n\t{\n\t\tpublic void M1() { }\n\n\t\tpublic int M2() => 42;\n\t}\n}\n", true
	case SymbolM1:
		if il {
			return ".method public hidebysig instance void M1 () cil managed\n{\n\tret\n}\n", true
		}
		return "public void M1()\n{\n}\n", true
	case SymbolM2:
		if il {
			return ".method public hidebysig instance int32 M2 () cil managed\n{\n\tldc.i4.s 42\n\tret\n}\n", true
		}
		return "public int M2()\n{\n\treturn 42;\n}\n", true
	default:
		return "", false
	}
}
