package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/persistence/snapshot"
)

func main() {
	var (
		dir         = flag.String("dir", "./data/workspaces", "snapshot directory")
		workspaceID = flag.String("workspace", "", "workspace id to export (empty lists available workspaces)")
		format      = flag.String("format", "markdown", "output format: markdown or json")
		out         = flag.String("o", "", "output file (default stdout)")
	)
	flag.Parse()

	logger := zap.NewNop()
	store, err := snapshot.NewFileStore(*dir, logger)
	if err != nil {
		log.Fatalf("open snapshot store: %v", err)
	}

	ctx := context.Background()

	if *workspaceID == "" {
		ids, err := store.ListIDs(ctx)
		if err != nil {
			log.Fatalf("list workspaces: %v", err)
		}
		if len(ids) == 0 {
			fmt.Println("no workspaces found")
			return
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return
	}

	snap, err := store.Read(ctx, *workspaceID)
	if err != nil {
		log.Fatalf("read workspace %s: %v", *workspaceID, err)
	}

	var rendered []byte
	switch *format {
	case "json":
		rendered, err = json.MarshalIndent(snap, "", "  ")
		if err != nil {
			log.Fatalf("encode workspace: %v", err)
		}
	case "markdown":
		rendered = []byte(renderMarkdown(snap))
	default:
		log.Fatalf("unknown format %q", *format)
	}

	if *out == "" {
		fmt.Println(string(rendered))
		return
	}
	if err := os.WriteFile(*out, rendered, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	fmt.Printf("exported workspace %s to %s\n", *workspaceID, *out)
}

// renderMarkdown flattens the workspace into a readable document: the
// instructions and knowledge documents first, then every card in
// lineage order with its messages.
func renderMarkdown(snap aggregates.WorkspaceSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", snap.Name)
	fmt.Fprintf(&b, "Exported %s. %d cards.\n\n", snap.UpdatedAt.Format("2006-01-02 15:04"), len(snap.Cards))

	if snap.Instructions != "" {
		b.WriteString("## Workspace instructions\n\n")
		b.WriteString(snap.Instructions)
		b.WriteString("\n\n")
	}

	for _, doc := range snap.Documents {
		fmt.Fprintf(&b, "## Document: %s\n\n%s\n\n", doc.Title, doc.Markdown)
	}

	for _, cs := range lineageOrder(snap.Cards) {
		fmt.Fprintf(&b, "## %s\n\n", cs.Title)
		if len(cs.ParentCardIDs) > 0 {
			fmt.Fprintf(&b, "Continues from: %s\n\n", strings.Join(cs.ParentCardIDs, ", "))
		}
		for _, msg := range cs.Messages {
			fmt.Fprintf(&b, "**%s:** %s\n\n", roleLabel(string(msg.Role)), msg.Text)
		}
	}

	return b.String()
}

func roleLabel(role string) string {
	if role == "" {
		return "Unknown"
	}
	return strings.ToUpper(role[:1]) + role[1:]
}

// lineageOrder sorts cards so every parent precedes its children and
// root cards come out in creation order
func lineageOrder(cards []entities.CardSnapshot) []entities.CardSnapshot {
	sorted := append([]entities.CardSnapshot(nil), cards...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	byID := make(map[string]int, len(sorted))
	for i, cs := range sorted {
		byID[cs.ID] = i
	}

	var out []entities.CardSnapshot
	emitted := make(map[string]bool, len(sorted))
	var emit func(cs entities.CardSnapshot)
	emit = func(cs entities.CardSnapshot) {
		if emitted[cs.ID] {
			return
		}
		for _, pid := range cs.ParentCardIDs {
			if idx, ok := byID[pid]; ok && !emitted[pid] {
				emit(sorted[idx])
			}
		}
		emitted[cs.ID] = true
		out = append(out, cs)
	}
	for _, cs := range sorted {
		emit(cs)
	}
	return out
}
