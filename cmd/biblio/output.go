package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/ersonp/biblio-core/internal/application/handlers"
	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/services"
)

var (
	removedColor = color.New(color.FgRed)
	addedColor   = color.New(color.FgGreen)
	fieldColor   = color.New(color.Bold)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printState(w io.Writer, state *entities.EntityState) {
	fmt.Fprintf(w, "BBID: %s\n", state.Entity.BBID)
	fmt.Fprintf(w, "  Kind: %s\n", state.Entity.Kind)
	fmt.Fprintf(w, "  Revision: %d (%s)\n", state.Revision.ID, state.Revision.CreatedAt.Format("2006-01-02 15:04:05"))

	if state.IsDeleted() {
		fmt.Fprintln(w, "  (deleted)")
		return
	}

	data := state.Data
	fmt.Fprintf(w, "  Name: %s\n", data.DisplayName())
	if data.Disambiguation != nil {
		fmt.Fprintf(w, "  Disambiguation: %s\n", data.Disambiguation.Comment)
	}
	for _, a := range data.Aliases {
		marker := ""
		if a.Default {
			marker = " (default)"
		}
		fmt.Fprintf(w, "  Alias %d: %s%s\n", a.ID, a.Name, marker)
	}
	for _, id := range data.Identifiers {
		fmt.Fprintf(w, "  Identifier %d: [%d] %s\n", id.ID, id.TypeID, id.Value)
	}
	if data.Data != nil {
		for _, f := range data.Data.Fields() {
			if f.Value != nil {
				fmt.Fprintf(w, "  %s: %s\n", f.Name, formatValue(f.Value))
			}
		}
	}
	if data.Annotation != nil {
		fmt.Fprintf(w, "  Annotation: %s\n", data.Annotation.Content)
	}
}

func printEntityList(w io.Writer, result *handlers.EntityListResult) {
	fmt.Fprintf(w, "Showing %d of %d entities:\n\n", len(result.Entities), result.Total)
	for _, e := range result.Entities {
		fmt.Fprintf(w, "%s  %-12s  %s\n", e.BBID, e.Kind, e.LastUpdated.Format("2006-01-02 15:04:05"))
	}
}

func printEditor(w io.Writer, e *entities.Editor) {
	fmt.Fprintf(w, "Editor %d: %s, %d revisions (%d applied)\n",
		e.ID, editorLabel(e), e.TotalRevisions, e.RevisionsApplied)
}

func printRevision(w io.Writer, rev *entities.Revision) {
	parent := "-"
	if rev.ParentID != nil {
		parent = fmt.Sprint(*rev.ParentID)
	}
	target := "deleted"
	if !rev.IsDeletion() {
		target = fmt.Sprintf("%s %s", rev.Target.Kind(), rev.Target.TargetID())
	} else if rev.Target != nil {
		target = fmt.Sprintf("%s %s (deleted)", rev.Target.Kind(), rev.Target.TargetID())
	}
	fmt.Fprintf(w, "Revision %d  parent %s  editor %d  %s\n",
		rev.ID, parent, rev.EditorID, rev.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  %s\n", target)
	if rev.Note != "" {
		fmt.Fprintf(w, "  Note: %s\n", rev.Note)
	}
}

// renderDelta prints the changed fields of a delta as a colored diff.
// Annotation and disambiguation edits are shown as inline text diffs.
func renderDelta(w io.Writer, delta entities.Delta) {
	changed := 0
	for _, f := range delta.Fields {
		if !f.Changed() {
			continue
		}
		changed++
		fieldColor.Fprintf(w, "%s:\n", f.Name)

		oldText, oldOK := textOf(f.Old)
		newText, newOK := textOf(f.New)
		if oldOK && newOK {
			fmt.Fprint(w, "  ")
			for _, span := range services.TextDiff(oldText, newText) {
				switch span.Op {
				case services.TextDelete:
					removedColor.Fprintf(w, "[-%s-]", span.Text)
				case services.TextInsert:
					addedColor.Fprintf(w, "{+%s+}", span.Text)
				default:
					fmt.Fprint(w, span.Text)
				}
			}
			fmt.Fprintln(w)
			continue
		}

		if !isEmpty(f.Old) {
			removedColor.Fprintf(w, "  - %s\n", formatValue(f.Old))
		}
		if !isEmpty(f.New) {
			addedColor.Fprintf(w, "  + %s\n", formatValue(f.New))
		}
	}
	if changed == 0 {
		fmt.Fprintln(w, "No changes.")
	}
}

// textOf extracts the text of annotation and disambiguation values. A
// missing side counts as empty text.
func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case *entities.Annotation:
		return t.Content, true
	case *entities.Disambiguation:
		return t.Comment, true
	case nil:
		return "", true
	default:
		return "", false
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s := formatValue(v)
	return s == "null" || s == "[]"
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(string(raw))
}

func printEntityState(state *entities.EntityState) error {
	if globalJSON {
		return printJSON(os.Stdout, state)
	}
	printState(os.Stdout, state)
	return nil
}
