package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dejo1307/viewbindmigrate/internal/classify"
	"github.com/dejo1307/viewbindmigrate/internal/config"
	"github.com/dejo1307/viewbindmigrate/internal/engine"
	"github.com/dejo1307/viewbindmigrate/internal/hierarchy"
	"github.com/dejo1307/viewbindmigrate/internal/migrate"
	"github.com/dejo1307/viewbindmigrate/internal/renderers/summary"
	"github.com/dejo1307/viewbindmigrate/internal/report"
)

// indexCacheSize is the number of repositories whose class index is kept.
const indexCacheSize = 8

// Server wraps the MCP server and connects it to the conversion engine.
type Server struct {
	mcp     *mcp.Server
	eng     *engine.Engine
	cfg     *config.Config
	indexes *hierarchy.Cache
}

// New creates a new MCP server wired to the given engine.
func New(eng *engine.Engine, cfg *config.Config) (*Server, error) {
	indexes, err := hierarchy.NewCache(indexCacheSize)
	if err != nil {
		return nil, err
	}
	s := &Server{
		eng:     eng,
		cfg:     cfg,
		indexes: indexes,
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "viewbindmigrate",
		Version: "0.1.0",
	}, nil)
	s.registerResources()
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	log.Println("[server] starting MCP server on stdio transport")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// registerResources adds MCP resources for the artifacts of the last run.
func (s *Server) registerResources() {
	resources := []struct {
		uri, name, desc, artifact, mime string
	}{
		{"migrate://report/summary", "Migration Summary", "Markdown overview of the last conversion run", summary.FileName, "text/markdown"},
		{"migrate://report/results", "Migration Results", "Per-file results of the last conversion run in JSONL format", engine.ResultsFile, "application/jsonl"},
		{"migrate://report/full", "Migration Report", "Complete report of the last conversion run", engine.ReportFile, "application/json"},
	}
	for _, r := range resources {
		s.mcp.AddResource(&mcp.Resource{
			URI:         r.uri,
			Name:        r.name,
			Description: r.desc,
			MIMEType:    r.mime,
		}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			content, err := s.eng.GetArtifact(r.artifact)
			if err != nil {
				return nil, fmt.Errorf("no report available: %w (run convert_repo first)", err)
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: req.Params.URI, Text: string(content), MIMEType: r.mime},
				},
			}, nil
		})
	}
}

// fileArgs are the arguments of the plan_file and convert_file tools.
type fileArgs struct {
	Path     string `json:"path" jsonschema:"required,Kotlin file to convert, absolute or relative to the repository"`
	RepoPath string `json:"repo_path,omitempty" jsonschema:"Repository root. Defaults to the configured repo path."`
	DryRun   bool   `json:"dry_run,omitempty" jsonschema:"Return the unified diff instead of writing the file (convert_file only)"`
}

// repoArgs are the arguments of the convert_repo tool.
type repoArgs struct {
	RepoPath string `json:"repo_path,omitempty" jsonschema:"Repository root. Defaults to the configured repo path."`
	DryRun   bool   `json:"dry_run,omitempty" jsonschema:"Record unified diffs instead of writing files"`
	Refresh  bool   `json:"refresh,omitempty" jsonschema:"Rebuild the class index instead of reusing the cached one"`
}

// queryResultsArgs are the arguments for the query_results tool.
type queryResultsArgs struct {
	Status     string `json:"status,omitempty" jsonschema:"Filter by status: converted, unhandled, unchanged, or failed"`
	Kind       string `json:"kind,omitempty" jsonschema:"Filter by class kind: activity, fragment, view, custom, or unhandled"`
	FilePrefix string `json:"file_prefix,omitempty" jsonschema:"Filter by file path prefix relative to the repository"`
	Warnings   bool   `json:"warnings,omitempty" jsonschema:"Only files that produced warnings"`
	Offset     int    `json:"offset,omitempty" jsonschema:"Number of results to skip"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 100, max 500)"`
}

// registerTools adds MCP tools for planning, converting and querying.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "plan_file",
		Description: "Compute the ViewBinding conversion of one Kotlin file without writing it. Returns the plan (classification, bindings, include relations, rewritten references, imports, messages) and the unified diff.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args fileArgs) (*mcp.CallToolResult, any, error) {
		return s.planFile(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "convert_file",
		Description: "Convert one Kotlin file from kotlinx synthetics to ViewBinding and write it back.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args fileArgs) (*mcp.CallToolResult, any, error) {
		return s.convertFile(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "convert_repo",
		Description: "Convert every Kotlin file of a repository that imports kotlinx synthetics, then write report.json, results.jsonl and summary.md. Use the migrate://report/summary resource to read the summary.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args repoArgs) (*mcp.CallToolResult, any, error) {
		return s.convertRepo(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_results",
		Description: "Query the per-file results of the last conversion run by status, class kind, path prefix or warnings. Returns matching results as JSON.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args queryResultsArgs) (*mcp.CallToolResult, any, error) {
		return s.queryResults(args), nil, nil
	})
}

func (s *Server) repoRoot(repoPath string) (string, error) {
	if repoPath == "" {
		repoPath = s.cfg.Repo
	}
	return filepath.Abs(repoPath)
}

// index returns the cached class index of a repository.
func (s *Server) index(ctx context.Context, root string) (*hierarchy.Index, error) {
	return s.indexes.Get(ctx, root, s.eng.HierarchyOptions())
}

func (s *Server) planFile(ctx context.Context, args fileArgs) *mcp.CallToolResult {
	if args.Path == "" {
		return errorResult("path is required")
	}
	root, err := s.repoRoot(args.RepoPath)
	if err != nil {
		return errorResult(fmt.Sprintf("invalid repo path: %v", err))
	}
	path := args.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return errorResult(fmt.Sprintf("reading %s: %v", args.Path, err))
	}
	idx, err := s.index(ctx, root)
	if err != nil {
		return errorResult(fmt.Sprintf("indexing classes: %v", err))
	}

	cfg := *s.cfg
	cfg.Repo = root
	plan, err := migrate.New(&cfg, idx, nil).Plan(path, src)
	if err != nil {
		return errorResult(fmt.Sprintf("planning %s failed: %v", args.Path, err))
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal plan: %v", err))
	}
	var sb strings.Builder
	sb.Write(data)
	if plan.Changed {
		diff, err := migrate.UnifiedDiff(args.Path, src, plan.Output)
		if err != nil {
			return errorResult(err.Error())
		}
		sb.WriteString("\n\n```diff\n" + diff + "```\n")
	}
	return textResult(sb.String())
}

func (s *Server) convertFile(ctx context.Context, args fileArgs) *mcp.CallToolResult {
	if args.Path == "" {
		return errorResult("path is required")
	}
	root, err := s.repoRoot(args.RepoPath)
	if err != nil {
		return errorResult(fmt.Sprintf("invalid repo path: %v", err))
	}
	idx, err := s.index(ctx, root)
	if err != nil {
		return errorResult(fmt.Sprintf("indexing classes: %v", err))
	}
	rep, err := s.eng.Run(ctx, root, engine.Options{DryRun: args.DryRun, Files: []string{args.Path}, Index: idx})
	if err != nil {
		return errorResult(fmt.Sprintf("conversion failed: %v", err))
	}
	res := rep.Results[0]
	if res.Status == report.StatusFailed {
		return errorResult(fmt.Sprintf("%s: %s", res.File, res.Error))
	}
	return textResult(describeResult(res))
}

func (s *Server) convertRepo(ctx context.Context, args repoArgs) *mcp.CallToolResult {
	root, err := s.repoRoot(args.RepoPath)
	if err != nil {
		return errorResult(fmt.Sprintf("invalid repo path: %v", err))
	}
	if args.Refresh {
		s.indexes.Invalidate(root)
	}
	idx, err := s.index(ctx, root)
	if err != nil {
		return errorResult(fmt.Sprintf("indexing classes: %v", err))
	}
	rep, err := s.eng.Run(ctx, root, engine.Options{DryRun: args.DryRun, Index: idx})
	if err != nil {
		return errorResult(fmt.Sprintf("conversion failed: %v", err))
	}

	// Write artifacts to disk
	if err := s.eng.WriteArtifacts(root); err != nil {
		log.Printf("[server] warning: failed to write artifacts: %v", err)
	}

	c := rep.Meta.Counts
	text := fmt.Sprintf(
		"Conversion finished.\n\n"+
			"- Repository: %s\n"+
			"- Candidate files: %d\n"+
			"- Converted: %d\n"+
			"- Imports only: %d\n"+
			"- Unchanged: %d\n"+
			"- Failed: %d\n"+
			"- Dry run: %v\n"+
			"- Duration: %s\n\n"+
			"Use the migrate://report/summary resource to read the summary.",
		rep.Meta.RepoPath,
		rep.Meta.Candidates,
		c[report.StatusConverted],
		c[report.StatusUnhandled],
		c[report.StatusUnchanged],
		c[report.StatusFailed],
		rep.Meta.DryRun,
		rep.Meta.Duration,
	)
	return textResult(text)
}

func (s *Server) queryResults(args queryResultsArgs) *mcp.CallToolResult {
	store := s.eng.Store()
	if store.Count() == 0 {
		return errorResult("No results available. Run convert_repo first.")
	}

	results, total := store.Query(report.QueryOpts{
		Status:     report.Status(args.Status),
		Kind:       classify.Kind(args.Kind),
		FilePrefix: args.FilePrefix,
		Warnings:   args.Warnings,
		Offset:     args.Offset,
		Limit:      args.Limit,
	})
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal results: %v", err))
	}
	text := string(data)
	if len(results) < total {
		text += fmt.Sprintf("\n\n... (showing %d of %d results, refine your query or use offset)", len(results), total)
	}
	return textResult(text)
}

// describeResult renders a single file result for a tool response.
func describeResult(res report.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", res.File, res.Status))
	if res.Kind != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", res.Kind))
	}
	sb.WriteString("\n")
	if len(res.Bindings) > 0 {
		sb.WriteString(fmt.Sprintf("- Bindings: %s\n", strings.Join(res.Bindings, ", ")))
	}
	if res.References > 0 {
		sb.WriteString(fmt.Sprintf("- References rewritten: %d\n", res.References))
	}
	for _, m := range res.Messages {
		sb.WriteString(fmt.Sprintf("- %s\n", m))
	}
	if res.Diff != "" {
		sb.WriteString("\n```diff\n" + res.Diff + "```\n")
	}
	return sb.String()
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
