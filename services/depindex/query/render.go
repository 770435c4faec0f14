// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AleutianAI/depindex/services/depindex/record"
)

// Format selects the rendering of a query result.
type Format string

const (
	// FormatText renders labeled human-readable sections.
	FormatText Format = "text"

	// FormatStructured renders indented JSON.
	FormatStructured Format = "structured"

	// FormatDiagram renders a Mermaid flowchart fragment.
	FormatDiagram Format = "diagram"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatStructured, FormatDiagram:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// DefaultDiagramMaxNodes caps Mermaid output; huge fragments render as
// noise in every Mermaid client.
const DefaultDiagramMaxNodes = 50

// Renderable is a query result that knows its text and diagram forms.
// Structured form is the JSON encoding of the result itself.
type Renderable interface {
	renderText(sb *strings.Builder)
	renderDiagram(sb *strings.Builder, maxNodes int)
}

// Renderer turns query results into output strings.
type Renderer struct {
	// DiagramMaxNodes caps the node count of Mermaid fragments.
	// <= 0 uses DefaultDiagramMaxNodes.
	DiagramMaxNodes int
}

// Render renders the result in the requested format.
func (r *Renderer) Render(result Renderable, format Format) (string, error) {
	switch format {
	case FormatText:
		var sb strings.Builder
		result.renderText(&sb)
		return sb.String(), nil
	case FormatStructured:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode result: %w", err)
		}
		return string(data), nil
	case FormatDiagram:
		maxNodes := r.DiagramMaxNodes
		if maxNodes <= 0 {
			maxNodes = DefaultDiagramMaxNodes
		}
		var sb strings.Builder
		result.renderDiagram(&sb, maxNodes)
		return sb.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// --- DirectResult ---

func (d *DirectResult) renderText(sb *strings.Builder) {
	fmt.Fprintf(sb, "Direct dependencies of %s\n", d.File)
	writeSection(sb, "Imports", d.Imports)
	writeSection(sb, "Config files", d.ConfigFiles)
	writeSection(sb, "File reads", d.FileReads)
	writeSection(sb, "File writes", d.FileWrites)
}

func (d *DirectResult) renderDiagram(sb *strings.Builder, maxNodes int) {
	m := newMermaid(sb, record.ModuleName(d.File), maxNodes)
	for _, imp := range d.Imports {
		m.edge(record.ModuleName(d.File), imp)
	}
	m.finish()
}

// --- ReverseResult ---

func (d *ReverseResult) renderText(sb *strings.Builder) {
	fmt.Fprintf(sb, "Files referencing %s\n", d.File)
	writeSection(sb, "Referencers", d.Referencers)
}

func (d *ReverseResult) renderDiagram(sb *strings.Builder, maxNodes int) {
	m := newMermaid(sb, record.ModuleName(d.File), maxNodes)
	for _, ref := range d.Referencers {
		m.edge(record.ModuleName(ref), record.ModuleName(d.File))
	}
	m.finish()
}

// --- TransitiveResult ---

func (d *TransitiveResult) renderText(sb *strings.Builder) {
	fmt.Fprintf(sb, "Transitive dependencies of %s (max depth %d)\n", d.File, d.Depth)
	writeSection(sb, "Reachable", d.Modules)
}

func (d *TransitiveResult) renderDiagram(sb *strings.Builder, maxNodes int) {
	m := newMermaid(sb, record.ModuleName(d.File), maxNodes)
	for _, mod := range d.Modules {
		m.edge(record.ModuleName(d.File), mod)
	}
	m.finish()
}

// --- CyclesResult ---

func (d *CyclesResult) renderText(sb *strings.Builder) {
	fmt.Fprintf(sb, "Import cycles: %d\n", len(d.Cycles))
	for i, cycle := range d.Cycles {
		fmt.Fprintf(sb, "  %d. %s -> %s\n", i+1, strings.Join(cycle, " -> "), cycle[0])
	}
}

func (d *CyclesResult) renderDiagram(sb *strings.Builder, maxNodes int) {
	target := ""
	if len(d.Cycles) > 0 {
		target = d.Cycles[0][0]
	}
	m := newMermaid(sb, target, maxNodes)
	for _, cycle := range d.Cycles {
		for i, node := range cycle {
			m.edge(node, cycle[(i+1)%len(cycle)])
		}
	}
	m.finish()
}

// --- PathResult ---

func (d *PathResult) renderText(sb *strings.Builder) {
	fmt.Fprintf(sb, "Shortest path %s -> %s (%d hops)\n",
		d.Source, d.Target, len(d.Path)-1)
	fmt.Fprintf(sb, "  %s\n", strings.Join(d.Path, " -> "))
}

func (d *PathResult) renderDiagram(sb *strings.Builder, maxNodes int) {
	m := newMermaid(sb, record.ModuleName(d.Source), maxNodes)
	for i := 0; i+1 < len(d.Path); i++ {
		m.edge(d.Path[i], d.Path[i+1])
	}
	m.finish()
}

// --- StatsResult ---

func (d *StatsResult) renderText(sb *strings.Builder) {
	sb.WriteString("Dependency graph statistics\n")
	fmt.Fprintf(sb, "  Nodes:   %d (%d files, %d modules)\n",
		d.NodeCount, d.FileNodes, d.ModuleNodes)
	fmt.Fprintf(sb, "  Edges:   %d\n", d.EdgeCount)
	fmt.Fprintf(sb, "  Density: %.4f\n", d.Density)
	fmt.Fprintf(sb, "  Acyclic: %v\n", d.IsAcyclic)
}

func (d *StatsResult) renderDiagram(sb *strings.Builder, maxNodes int) {
	// No node-level structure to draw; emit a single summary node.
	m := newMermaid(sb, "graph", maxNodes)
	m.node(fmt.Sprintf("graph: %d nodes / %d edges", d.NodeCount, d.EdgeCount))
	m.finish()
}

// writeSection writes one labeled list section; empty lists still get
// their label with "(none)".
func writeSection(sb *strings.Builder, label string, items []string) {
	fmt.Fprintf(sb, "%s:\n", label)
	if len(items) == 0 {
		sb.WriteString("  (none)\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(sb, "  %s\n", item)
	}
}

// mermaid accumulates a flowchart fragment with a node cap and a
// distinctly styled target node.
type mermaid struct {
	sb       *strings.Builder
	target   string
	maxNodes int
	declared map[string]struct{}
	capped   bool
}

func newMermaid(sb *strings.Builder, target string, maxNodes int) *mermaid {
	sb.WriteString("flowchart LR\n")
	m := &mermaid{
		sb:       sb,
		target:   target,
		maxNodes: maxNodes,
		declared: make(map[string]struct{}),
	}
	if target != "" {
		m.declare(target)
	}
	return m
}

// declare emits a node declaration once, honoring the node cap.
func (m *mermaid) declare(id string) bool {
	if _, ok := m.declared[id]; ok {
		return true
	}
	if len(m.declared) >= m.maxNodes {
		m.capped = true
		return false
	}
	m.declared[id] = struct{}{}
	if id == m.target {
		fmt.Fprintf(m.sb, "    %s[\"%s\"]:::target\n",
			sanitizeMermaidID(id), escapeMermaidLabel(id))
	} else {
		fmt.Fprintf(m.sb, "    %s[\"%s\"]\n",
			sanitizeMermaidID(id), escapeMermaidLabel(id))
	}
	return true
}

// node declares a standalone node.
func (m *mermaid) node(id string) {
	m.declare(id)
}

// edge declares both endpoints and the arrow between them. Edges whose
// endpoints fall past the node cap are dropped.
func (m *mermaid) edge(from, to string) {
	if !m.declare(from) || !m.declare(to) {
		return
	}
	fmt.Fprintf(m.sb, "    %s --> %s\n",
		sanitizeMermaidID(from), sanitizeMermaidID(to))
}

// finish writes the target class definition and a truncation marker
// when the cap was hit.
func (m *mermaid) finish() {
	if m.capped {
		fmt.Fprintf(m.sb, "    truncated[\"... truncated at %d nodes\"]\n", m.maxNodes)
	}
	m.sb.WriteString("    classDef target fill:#ff6b6b,stroke:#333,stroke-width:2px,color:#fff\n")
}

// sanitizeMermaidID makes a node ID safe for Mermaid syntax.
func sanitizeMermaidID(s string) string {
	replacer := strings.NewReplacer(
		":", "_",
		"/", "_",
		".", "_",
		"-", "_",
		" ", "_",
		"(", "",
		")", "",
	)
	result := replacer.Replace(s)
	// Ensure starts with letter
	if len(result) > 0 && (result[0] >= '0' && result[0] <= '9') {
		result = "n" + result
	}
	return result
}

func escapeMermaidLabel(s string) string {
	replacer := strings.NewReplacer(
		"\"", "#quot;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(s)
}
