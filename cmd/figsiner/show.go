package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"figsiner/internal/render"
	"figsiner/internal/scene"
	"figsiner/internal/studio"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	kindStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	typeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
)

var showCmd = &cobra.Command{
	Use:   "show [frame-id]",
	Short: "Print the node tree of one frame, or of every frame",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ws := mustWorkspace(ctx)
		defer ws.Close()

		roots := ws.host.Page().Children()
		if len(args) == 1 {
			n := ws.host.Page().FindByID(args[0])
			if n == nil {
				log.Fatalf("Frame %s not found", args[0])
			}
			roots = []*scene.Node{n}
		}
		for _, root := range roots {
			fmt.Println(describeFrame(root))
		}
	},
}

// describeFrame renders a frame header and its indented node tree.
func describeFrame(root *scene.Node) string {
	header := root.Name
	if vp, sec, err := studio.LoadSection(root); err == nil {
		header = fmt.Sprintf("%s  %s", root.Name, dimStyle.Render(fmt.Sprintf("%s · %d items", vp, len(sec.Items))))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteByte('\n')
	writeTree(&b, root, 0)
	return b.String()
}

func writeTree(b *strings.Builder, n *scene.Node, depth int) {
	line := strings.Repeat("  ", depth) + kindStyle.Render(string(n.Kind)) + " " + nameStyle.Render(n.Name)
	if t := render.NodeType(n); t != "" {
		line += " " + typeStyle.Render(string(t))
	}
	if detail := nodeDetail(n); detail != "" {
		line += " " + dimStyle.Render(detail)
	}
	b.WriteString(line)
	b.WriteByte('\n')
	for _, c := range n.Children() {
		writeTree(b, c, depth+1)
	}
}

func nodeDetail(n *scene.Node) string {
	switch n.Kind {
	case scene.KindText:
		return fmt.Sprintf("%q %s %gpx", n.Characters, n.Font, n.FontSize)
	case scene.KindInstance:
		return "component " + n.ComponentKey
	default:
		if n.Width == 0 && n.Height == 0 {
			return ""
		}
		return fmt.Sprintf("%gx%g", n.Width, n.Height)
	}
}
