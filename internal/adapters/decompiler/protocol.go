package decompiler

import (
	"encoding/json"
)

// Message types.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeEvent    = "event"
)

// Events emitted by the engine.
const (
	EventReady = "ready"
	EventLog   = "log"
)

// Commands understood by the engine.
const (
	CommandLoad      = "load"
	CommandEnumerate = "enumerate"
	CommandDecompile = "decompile"
	CommandUnload    = "unload"
)

// Arguments are the command-specific request parameters.
type Arguments struct {
	AssemblyPath string `json:"assemblyPath,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
	Language     string `json:"language,omitempty"`
}

// Request is one line written to the engine's stdin.
type Request struct {
	Type      string    `json:"type"`
	Seq       int64     `json:"seq"`
	Command   string    `json:"command"`
	Arguments Arguments `json:"arguments"`
}

// ResponseError describes a failed command.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Message is one line read from the engine's stdout. Responses and events
// share the envelope; Body is decoded per command.
type Message struct {
	Type       string          `json:"type"`
	Event      string          `json:"event,omitempty"`
	RequestSeq int64           `json:"request_seq,omitempty"`
	Command    string          `json:"command,omitempty"`
	Success    bool            `json:"success,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
	Error      *ResponseError  `json:"error,omitempty"`
}

// LoadBody is the payload of a successful load.
type LoadBody struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	TargetFramework string `json:"targetFramework"`
}

// Member is one child reported by enumerate.
type Member struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Symbol string `json:"symbol"`
}

// EnumerateBody is the payload of a successful enumerate.
type EnumerateBody struct {
	Members []Member `json:"members"`
}

// DecompileBody is the payload of a successful decompile.
type DecompileBody struct {
	Code string `json:"code"`
}

// LogBody is the payload of a log event.
type LogBody struct {
	Message string `json:"message"`
}
