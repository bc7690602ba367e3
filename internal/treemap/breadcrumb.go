package treemap

import (
	"strings"

	"github.com/lu-zhengda/pytestmap/internal/utils"
)

// Breadcrumb renders the header label for id:
// "TOP (1.20s) / a.py (900ms - 75.0%) / test_x (...)".
func Breadcrumb(t *Tree, id int, precision int) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	if n.Parent == NoParent {
		return n.Key + " (" + utils.FormatDuration(n.Duration, precision) + ")"
	}
	var sb strings.Builder
	sb.WriteString(Breadcrumb(t, n.Parent, precision))
	sb.WriteString(" / ")
	sb.WriteString(Label(n, precision))
	return sb.String()
}

// Label renders "key (duration - pct%)" for a single node.
func Label(n *Node, precision int) string {
	return n.Key + " (" + Summary(n, precision) + ")"
}

// Summary renders "duration - pct%".
func Summary(n *Node, precision int) string {
	return utils.FormatDuration(n.Duration, precision) + " - " + utils.FormatSig(n.Prct*100, precision) + "%"
}
