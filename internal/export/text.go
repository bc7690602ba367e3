package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/lu-zhengda/pytestmap/internal/treemap"
	"github.com/lu-zhengda/pytestmap/internal/utils"
)

const keyWidth = 40

// Text writes the breadcrumb and a table of the focus children.
func Text(w io.Writer, v View) error {
	n := v.Tree.Node(v.Focus)
	if n == nil {
		return fmt.Errorf("focus %d not in tree", v.Focus)
	}

	var sb strings.Builder
	if v.Title != "" {
		sb.WriteString(v.Title + "\n")
	}
	sb.WriteString(v.Breadcrumb + "\n")
	if len(n.Children) == 0 {
		sb.WriteString("No tests recorded.\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}
	sb.WriteString(strings.Repeat("-", keyWidth+36) + "\n")
	fmt.Fprintf(&sb, "  %s %10s %8s  %-8s %s\n", padRight("KEY", keyWidth), "DURATION", "SHARE", "OUTCOME", "ITEMS")
	for _, c := range n.Children {
		child := v.Tree.Nodes[c]
		fmt.Fprintf(&sb, "  %s %10s %7s%%  %-8s %d\n",
			padRight(truncateKey(displayKey(child.Key), keyWidth), keyWidth),
			utils.FormatDuration(child.Duration, v.Precision),
			utils.FormatSig(child.Prct*100, v.Precision),
			child.Outcome,
			leafCount(v.Tree, c),
		)
	}
	fmt.Fprintf(&sb, "\nTotal: %s\n", utils.FormatDuration(n.Duration, v.Precision))
	_, err := io.WriteString(w, sb.String())
	return err
}

// Tree writes the hierarchy below the focus, one node per line, indented
// by depth. maxDepth <= 0 means unlimited. Rollup leaves are not listed.
func Tree(w io.Writer, v View, maxDepth int) error {
	if v.Tree.Node(v.Focus) == nil {
		return fmt.Errorf("focus %d not in tree", v.Focus)
	}
	var sb strings.Builder
	sb.WriteString(v.Breadcrumb + "\n")
	writeTree(&sb, v, v.Focus, 0, maxDepth)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeTree(sb *strings.Builder, v View, id, depth, maxDepth int) {
	if maxDepth > 0 && depth >= maxDepth {
		return
	}
	for _, c := range v.Tree.Nodes[id].Children {
		child := &v.Tree.Nodes[c]
		if child.Leaf {
			continue
		}
		fmt.Fprintf(sb, "%s%s (%s) [%s]\n",
			strings.Repeat("  ", depth+1),
			displayKey(child.Key),
			treemap.Summary(child, v.Precision),
			child.Outcome,
		)
		writeTree(sb, v, c, depth+1, maxDepth)
	}
}

func leafCount(t *treemap.Tree, id int) int {
	n := &t.Nodes[id]
	if n.Leaf {
		return 1
	}
	var count int
	for _, c := range n.Children {
		count += leafCount(t, c)
	}
	return count
}

// displayKey shows rollup leaves and empty groups readably.
func displayKey(key string) string {
	if key == "" {
		return "(all)"
	}
	return key
}

func truncateKey(key string, maxLen int) string {
	if runewidth.StringWidth(key) <= maxLen {
		return key
	}
	return runewidth.TruncateLeft(key, runewidth.StringWidth(key)-maxLen+3, "...")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
