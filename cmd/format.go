package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aieduca/biaslab/internal/progress"
)

var rule = strings.Repeat("─", 72)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUnlocked(w io.Writer, unlocked []progress.Achievement) {
	for _, a := range unlocked {
		fmt.Fprintf(w, "\n🏆 Conquista desbloqueada: %s\n   %s\n", a.Title(), a.Description)
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  • %s\n", it)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
