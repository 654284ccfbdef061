package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/repomap/repomap/internal/types"
)

const (
	branchConnector     = "├── "
	lastBranchConnector = "└── "
	nestedChildPrefix   = "│   "
	lastChildPadding    = "    "
	directorySuffix     = "/"
)

// Render writes the connector-formatted tree for rootNode to writer.
// The root renders as "<name>/" with no connector; directories carry a
// trailing slash.
func Render(writer io.Writer, rootNode *types.TreeNode) {
	if rootNode == nil {
		return
	}
	fmt.Fprintf(writer, "%s%s\n", rootNode.Name, directorySuffix)
	renderChildren(writer, rootNode.Children, "")
}

// RenderString returns the rendered tree without a trailing newline.
func RenderString(rootNode *types.TreeNode) string {
	var builder strings.Builder
	Render(&builder, rootNode)
	return strings.TrimSuffix(builder.String(), "\n")
}

func renderChildren(writer io.Writer, nodes []*types.TreeNode, prefix string) {
	for index, node := range nodes {
		isLast := index == len(nodes)-1
		connector := branchConnector
		childPrefix := prefix + nestedChildPrefix
		if isLast {
			connector = lastBranchConnector
			childPrefix = prefix + lastChildPadding
		}
		if node.Type == types.NodeTypeDirectory {
			fmt.Fprintf(writer, "%s%s%s%s\n", prefix, connector, node.Name, directorySuffix)
			renderChildren(writer, node.Children, childPrefix)
		} else {
			fmt.Fprintf(writer, "%s%s%s\n", prefix, connector, node.Name)
		}
	}
}
