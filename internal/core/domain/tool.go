package domain

import "encoding/json"

// ToolName identifies a callable tool.
type ToolName string

// Registered tools.
const (
	ToolFind     ToolName = "find"
	ToolUpload   ToolName = "upload"
	ToolProcess  ToolName = "process"
	ToolStatus   ToolName = "status"
	ToolMetadata ToolName = "metadata"
	ToolSearch   ToolName = "search"
	ToolChunks   ToolName = "chunks"
	ToolTypes    ToolName = "types"
)

// AllTools returns every tool in presentation order.
func AllTools() []ToolName {
	return []ToolName{
		ToolFind, ToolUpload, ToolProcess, ToolStatus,
		ToolMetadata, ToolSearch, ToolChunks, ToolTypes,
	}
}

// IsValid returns true if the tool is recognised.
func (n ToolName) IsValid() bool {
	switch n {
	case ToolFind, ToolUpload, ToolProcess, ToolStatus,
		ToolMetadata, ToolSearch, ToolChunks, ToolTypes:
		return true
	default:
		return false
	}
}

// ArgType is the JSON type of a tool argument.
type ArgType string

// Argument types.
const (
	ArgString  ArgType = "string"
	ArgInteger ArgType = "integer"
	ArgBoolean ArgType = "boolean"
)

// ArgSpec declares one tool argument.
type ArgSpec struct {
	Name        string
	Type        ArgType
	Required    bool
	Description string
}

// ToolSpec declares a tool's name, purpose and arguments.
type ToolSpec struct {
	Name        ToolName
	Description string
	Args        []ArgSpec
}

// Arg returns the named argument spec.
func (s ToolSpec) Arg(name string) (ArgSpec, bool) {
	for _, a := range s.Args {
		if a.Name == name {
			return a, true
		}
	}
	return ArgSpec{}, false
}

// ToolCall is one request from the model loop.
// Name is kept as a plain string so unknown tools can be reported.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ResultStatus is the outcome of a tool call.
type ResultStatus string

// Tool call outcomes.
const (
	ToolStatusOK    ResultStatus = "ok"
	ToolStatusError ResultStatus = "error"
)

// ErrorKind is the typed category carried in an error ToolResult.
type ErrorKind string

// Error kinds surfaced to the model.
const (
	ErrorKindNotFound         ErrorKind = "not_found"
	ErrorKindExtraction       ErrorKind = "extraction_error"
	ErrorKindValidation       ErrorKind = "validation_error"
	ErrorKindIngestionFailure ErrorKind = "ingestion_failure"
	ErrorKindInternal         ErrorKind = "internal"
)

// ErrorDetail describes a failed tool call.
type ErrorDetail struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Resource  string    `json:"resource,omitempty"`
	Hint      string    `json:"hint,omitempty"`
	Retryable bool      `json:"retryable"`
}

// ToolResult is the response to a ToolCall.
type ToolResult struct {
	CallID  string       `json:"call_id"`
	Name    string       `json:"name"`
	Status  ResultStatus `json:"status"`
	Payload any          `json:"payload,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// IsError reports whether the call failed.
func (r ToolResult) IsError() bool {
	return r.Status == ToolStatusError
}

// Text renders the result for a transport: the payload as JSON on success,
// the error detail as JSON on failure.
func (r ToolResult) Text() string {
	var v any = r.Payload
	if r.IsError() {
		v = r.Error
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		data, _ = json.Marshal(ErrorDetail{Kind: ErrorKindInternal, Message: "encode result: " + err.Error()})
	}
	return string(data)
}
