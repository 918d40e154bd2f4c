package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
)

// ToolDeps are the services the tool handlers call into.
type ToolDeps struct {
	Documents driving.DocumentService

	// Watcher supplies the pending candidate count. Optional.
	Watcher driving.FolderWatcher

	Finder       *ProjectFinder
	Capabilities []domain.Capability

	// WorkDir resolves relative paths in find, upload and process.
	WorkDir string

	// Workspace, when set, replaces WorkDir with its current directory.
	Workspace driving.WorkspaceService

	// FileTimeout is applied to every file ingested by upload.
	FileTimeout time.Duration
}

// dir returns the directory relative tool paths resolve against.
func (d ToolDeps) dir() string {
	if d.Workspace != nil {
		return d.Workspace.Dir()
	}
	return d.WorkDir
}

// toolHandler runs a tool with arguments already checked against its spec.
type toolHandler func(ctx context.Context, args map[string]any) (any, error)

type registeredTool struct {
	spec   domain.ToolSpec
	handle toolHandler
}

// ToolRegistry maps tool names to their specs and typed handlers.
type ToolRegistry struct {
	tools    map[domain.ToolName]registeredTool
	order    []domain.ToolName
	validate *validator.Validate
}

type findInput struct {
	Filename string `json:"filename" validate:"required"`
	Start    string `json:"start"`
}

type uploadInput struct {
	Directory string `json:"directory" validate:"required"`
	Recursive bool   `json:"recursive"`
}

type processInput struct {
	File string `json:"file" validate:"required"`
}

type metadataInput struct {
	DocID string `json:"docId" validate:"required"`
}

type searchInput struct {
	Query string `json:"query" validate:"required"`
}

type chunksInput struct {
	DocID      string `json:"docId" validate:"required"`
	ChunkIndex *int   `json:"chunkIndex" validate:"omitempty,min=0"`
}

type noInput struct{}

// NewToolRegistry registers every tool against deps.
func NewToolRegistry(deps ToolDeps) *ToolRegistry {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	r := &ToolRegistry{
		tools:    make(map[domain.ToolName]registeredTool),
		validate: v,
	}

	register(r, domain.ToolSpec{
		Name:        domain.ToolFind,
		Description: "Find the nearest project folder containing a marker file, searching upward from a start directory.",
		Args: []domain.ArgSpec{
			{Name: "filename", Type: domain.ArgString, Required: true, Description: "marker file name, e.g. go.mod"},
			{Name: "start", Type: domain.ArgString, Description: "directory to start from; defaults to the working directory"},
		},
	}, func(_ context.Context, in findInput) (any, error) {
		if deps.Finder == nil {
			return nil, errors.New("project finder not configured")
		}
		start := deps.dir()
		if in.Start != "" {
			start = resolvePath(start, in.Start)
		}
		return deps.Finder.Find(in.Filename, start)
	})

	register(r, domain.ToolSpec{
		Name:        domain.ToolUpload,
		Description: "Ingest every supported file in a directory.",
		Args: []domain.ArgSpec{
			{Name: "directory", Type: domain.ArgString, Required: true, Description: "directory to ingest"},
			{Name: "recursive", Type: domain.ArgBoolean, Description: "descend into subdirectories"},
		},
	}, func(ctx context.Context, in uploadInput) (any, error) {
		report, err := deps.Documents.IngestDirectory(ctx, resolvePath(deps.dir(), in.Directory), driving.IngestOptions{
			Recursive:   in.Recursive,
			FileTimeout: deps.FileTimeout,
		})
		if err != nil {
			return nil, err
		}
		return report.View(), nil
	})

	register(r, domain.ToolSpec{
		Name:        domain.ToolProcess,
		Description: "Ingest a single file and return a summary of the new document.",
		Args: []domain.ArgSpec{
			{Name: "file", Type: domain.ArgString, Required: true, Description: "file to ingest"},
		},
	}, func(ctx context.Context, in processInput) (any, error) {
		doc, err := deps.Documents.Ingest(ctx, resolvePath(deps.dir(), in.File))
		if err != nil {
			return nil, err
		}
		return domain.SummaryOf(doc), nil
	})

	register(r, domain.ToolSpec{
		Name:        domain.ToolStatus,
		Description: "Report how many documents and chunks are loaded and how many discovered projects await confirmation.",
	}, func(ctx context.Context, _ noInput) (any, error) {
		stats, err := deps.Documents.Stats(ctx)
		if err != nil {
			return nil, err
		}
		if deps.Watcher != nil {
			stats.PendingCandidates = len(deps.Watcher.Pending())
		}
		return stats, nil
	})

	register(r, domain.ToolSpec{
		Name:        domain.ToolMetadata,
		Description: "Return the metadata of a loaded document.",
		Args: []domain.ArgSpec{
			{Name: "docId", Type: domain.ArgString, Required: true, Description: "document id"},
		},
	}, func(ctx context.Context, in metadataInput) (any, error) {
		return deps.Documents.GetMetadata(ctx, in.DocID)
	})

	register(r, domain.ToolSpec{
		Name:        domain.ToolSearch,
		Description: "Case-insensitive substring search over all chunks. Returns matching chunk indices per document id.",
		Args: []domain.ArgSpec{
			{Name: "query", Type: domain.ArgString, Required: true, Description: "text to look for"},
		},
	}, func(ctx context.Context, in searchInput) (any, error) {
		results, err := deps.Documents.Search(ctx, in.Query)
		if err != nil {
			return nil, err
		}
		return results.AsMap(), nil
	})

	register(r, domain.ToolSpec{
		Name:        domain.ToolChunks,
		Description: "Return the chunks of a document in order, or a single chunk when chunkIndex is given.",
		Args: []domain.ArgSpec{
			{Name: "docId", Type: domain.ArgString, Required: true, Description: "document id"},
			{Name: "chunkIndex", Type: domain.ArgInteger, Description: "0-based chunk index"},
		},
	}, func(ctx context.Context, in chunksInput) (any, error) {
		if in.ChunkIndex != nil {
			return deps.Documents.GetChunk(ctx, in.DocID, *in.ChunkIndex)
		}
		return deps.Documents.GetChunks(ctx, in.DocID)
	})

	register(r, domain.ToolSpec{
		Name:        domain.ToolTypes,
		Description: "List the supported file types and how each is processed.",
	}, func(_ context.Context, _ noInput) (any, error) {
		return deps.Capabilities, nil
	})

	return r
}

// register binds a typed handler to spec. Arguments are decoded into In
// and validated before fn runs.
func register[In any](r *ToolRegistry, spec domain.ToolSpec, fn func(context.Context, In) (any, error)) {
	r.tools[spec.Name] = registeredTool{
		spec: spec,
		handle: func(ctx context.Context, args map[string]any) (any, error) {
			var in In
			if err := decodeArgs(args, &in); err != nil {
				return nil, &domain.ValidationError{Tool: string(spec.Name), Reason: err.Error()}
			}
			if err := r.validate.Struct(in); err != nil {
				return nil, validationError(spec.Name, err)
			}
			return fn(ctx, in)
		},
	}
	r.order = append(r.order, spec.Name)
}

// Specs returns tool specs in registration order.
func (r *ToolRegistry) Specs() []domain.ToolSpec {
	specs := make([]domain.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].spec)
	}
	return specs
}

// lookup returns the registered tool.
func (r *ToolRegistry) lookup(name string) (registeredTool, bool) {
	t, ok := r.tools[domain.ToolName(name)]
	return t, ok
}

func decodeArgs(args map[string]any, out any) error {
	if len(args) == 0 {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

// checkArgs rejects unexpected arguments, missing required ones and values
// of the wrong JSON type.
func checkArgs(spec domain.ToolSpec, args map[string]any) error {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := spec.Arg(name); !ok {
			return &domain.ValidationError{Tool: string(spec.Name), Field: name, Reason: "unexpected argument"}
		}
	}

	for _, arg := range spec.Args {
		v, present := args[arg.Name]
		if !present || v == nil {
			if arg.Required {
				return &domain.ValidationError{Tool: string(spec.Name), Field: arg.Name, Reason: "is required"}
			}
			continue
		}
		if !hasType(v, arg.Type) {
			return &domain.ValidationError{
				Tool:   string(spec.Name),
				Field:  arg.Name,
				Reason: fmt.Sprintf("must be %s, got %T", arg.Type, v),
			}
		}
	}
	return nil
}

func hasType(v any, t domain.ArgType) bool {
	switch t {
	case domain.ArgString:
		_, ok := v.(string)
		return ok
	case domain.ArgBoolean:
		_, ok := v.(bool)
		return ok
	case domain.ArgInteger:
		switch n := v.(type) {
		case int, int32, int64:
			return true
		case float64:
			return !math.IsInf(n, 0) && n == math.Trunc(n)
		case json.Number:
			_, err := n.Int64()
			return err == nil
		}
	}
	return false
}

func validationError(tool domain.ToolName, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ValidationError{Tool: string(tool), Reason: err.Error()}
	}
	fe := fieldErrs[0]
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "must not be empty"
	case "min":
		reason = "must be at least " + fe.Param()
	default:
		reason = "failed " + fe.Tag() + " check"
	}
	return &domain.ValidationError{Tool: string(tool), Field: fe.Field(), Reason: reason}
}

// resolvePath expands a leading ~ and joins relative paths onto workDir.
func resolvePath(workDir, path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if path == "" || filepath.IsAbs(path) || workDir == "" {
		return path
	}
	return filepath.Join(workDir, path)
}
