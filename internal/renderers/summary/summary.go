// Package summary renders a run report as a markdown overview for the
// people reviewing a migration.
package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dejo1307/viewbindmigrate/internal/classify"
	"github.com/dejo1307/viewbindmigrate/internal/notify"
	"github.com/dejo1307/viewbindmigrate/internal/report"
)

// Renderer name and artifact file name.
const (
	Name     = "summary"
	FileName = "summary.md"
)

// Renderer produces summary.md.
type Renderer struct {
	maxChars int
}

// New creates a renderer that keeps the summary under maxChars bytes.
func New(maxChars int) *Renderer {
	if maxChars <= 0 {
		maxChars = 64000
	}
	return &Renderer{maxChars: maxChars}
}

func (r *Renderer) Name() string {
	return Name
}

type section struct {
	name    string
	content string
}

// Render produces the summary artifact. Sections are ordered by priority;
// the least important ones are dropped first when the budget is tight.
func (r *Renderer) Render(ctx context.Context, rep *report.Report) ([]report.Artifact, error) {
	sections := []section{
		{"Overview", renderOverview(rep)},
		{"Needs Attention", renderAttention(rep)},
		{"By Class Kind", renderKinds(rep)},
		{"Converted Files", renderFiles(rep, report.StatusConverted)},
		{"Imports Only", renderFiles(rep, report.StatusUnhandled)},
		{"Meta", renderMeta(rep)},
	}

	header := "# ViewBinding Migration\n\n"
	remaining := r.maxChars - len(header)

	var sb strings.Builder
	sb.WriteString(header)
	for i, sec := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sec.content == "" {
			continue
		}
		if len(sec.content) <= remaining {
			sb.WriteString(sec.content)
			remaining -= len(sec.content)
			continue
		}
		if remaining > 200 {
			cut := strings.LastIndexByte(sec.content[:remaining-100], '\n') + 1
			sb.WriteString(sec.content[:cut])
			sb.WriteString(fmt.Sprintf("\n---\n*[Truncated in: %s]*\n", sec.name))
			break
		}
		var omitted []string
		for _, s := range sections[i:] {
			if s.content != "" {
				omitted = append(omitted, s.name)
			}
		}
		sb.WriteString(fmt.Sprintf("\n---\n*[Omitted: %s]*\n", strings.Join(omitted, ", ")))
		break
	}

	return []report.Artifact{{
		Name:    FileName,
		Content: []byte(sb.String()),
		Type:    "text/markdown",
	}}, nil
}

var statusOrder = []report.Status{
	report.StatusConverted,
	report.StatusUnhandled,
	report.StatusUnchanged,
	report.StatusFailed,
}

func renderOverview(rep *report.Report) string {
	var sb strings.Builder
	sb.WriteString("## Overview\n\n")
	if len(rep.Results) == 0 {
		sb.WriteString("_No file uses kotlinx synthetics._\n\n")
		return sb.String()
	}
	counts := make(map[report.Status]int)
	warnings := 0
	for _, res := range rep.Results {
		counts[res.Status]++
		warnings += res.Warnings()
	}
	sb.WriteString("| Status | Files |\n")
	sb.WriteString("|--------|-------|\n")
	for _, s := range statusOrder {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", s, counts[s]))
	}
	sb.WriteString(fmt.Sprintf("\n%d files processed, %d warnings.", len(rep.Results), warnings))
	if rep.Meta.DryRun {
		sb.WriteString(" Dry run: no file was written.")
	}
	sb.WriteString("\n\n")
	return sb.String()
}

func renderAttention(rep *report.Report) string {
	var sb strings.Builder
	for _, res := range rep.Results {
		if res.Status == report.StatusFailed {
			sb.WriteString(fmt.Sprintf("- `%s`: **failed**: %s\n", res.File, res.Error))
		}
	}
	for _, res := range rep.Results {
		for _, m := range res.Messages {
			if m.Level == notify.Info {
				continue
			}
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", res.File, m.Text))
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return "## Needs Attention\n\n" + sb.String() + "\n"
}

func renderKinds(rep *report.Report) string {
	counts := make(map[string]int)
	for _, res := range rep.Results {
		if res.Kind == "" {
			continue
		}
		key := string(res.Kind)
		if res.Kind == classify.Custom {
			key += " (" + res.Handler + ")"
		}
		counts[key]++
	}
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("## By Class Kind\n\n")
	sb.WriteString("| Kind | Files |\n")
	sb.WriteString("|------|-------|\n")
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", k, counts[k]))
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderFiles(rep *report.Report, status report.Status) string {
	var rows []report.Result
	for _, res := range rep.Results {
		if res.Status == status {
			rows = append(rows, res)
		}
	}
	if len(rows) == 0 {
		return ""
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].File < rows[j].File })

	var sb strings.Builder
	if status == report.StatusConverted {
		sb.WriteString("## Converted Files\n\n")
		sb.WriteString("| File | Class | Bindings | References |\n")
		sb.WriteString("|------|-------|----------|------------|\n")
		for _, res := range rows {
			sb.WriteString(fmt.Sprintf("| `%s` | %s | %s | %d |\n",
				res.File, res.Kind, strings.Join(res.Bindings, ", "), res.References))
		}
	} else {
		sb.WriteString("## Imports Only\n\n")
		sb.WriteString("Classes that are not activities, fragments, views or handled cells. Only their synthetic imports were removed.\n\n")
		for _, res := range rows {
			sb.WriteString(fmt.Sprintf("- `%s`\n", res.File))
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderMeta(rep *report.Report) string {
	var sb strings.Builder
	sb.WriteString("## Meta\n\n")
	sb.WriteString(fmt.Sprintf("- Repository: `%s`\n", rep.Meta.RepoPath))
	sb.WriteString(fmt.Sprintf("- Generated: %s\n", rep.Meta.GeneratedAt))
	sb.WriteString(fmt.Sprintf("- Duration: %s\n", rep.Meta.Duration))
	sb.WriteString(fmt.Sprintf("- Candidate files: %d\n", rep.Meta.Candidates))
	if len(rep.Meta.Handlers) > 0 {
		sb.WriteString(fmt.Sprintf("- Handlers: %s\n", strings.Join(rep.Meta.Handlers, ", ")))
	}
	return sb.String()
}
