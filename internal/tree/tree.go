// Package tree builds and renders the directory tree for the repository map.
//
// Ordering is deterministic: at every level directories are listed first,
// then files, each group sorted alphabetically by name. Re-running the
// builder over an unchanged filesystem produces byte-identical output.
package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/repomap/repomap/internal/config"
	"github.com/repomap/repomap/internal/types"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorReadRootFormat is used when the root directory cannot be read.
	errorReadRootFormat = "reading root directory %s: %w"
	// warningSkipSubdirMessage is logged when a subdirectory cannot be read.
	warningSkipSubdirMessage = "skipping unreadable subdirectory"
)

// Builder walks a root directory and produces the node tree used for the
// repository map. A Builder retains no state across invocations.
type Builder struct {
	Settings config.Settings
	Logger   *zap.Logger
}

// Build generates the tree rooted at rootDirectoryPath. An unreadable root is
// fatal; an unreadable subdirectory is logged and skipped.
func (treeBuilder *Builder) Build(rootDirectoryPath string) (*types.TreeNode, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}

	rootNode := &types.TreeNode{
		Path:         absoluteRootPath,
		RelativePath: ".",
		Name:         filepath.Base(absoluteRootPath),
		Type:         types.NodeTypeDirectory,
	}

	children, buildError := treeBuilder.buildChildNodes(absoluteRootPath, absoluteRootPath, 1)
	if buildError != nil {
		return nil, fmt.Errorf(errorReadRootFormat, rootDirectoryPath, buildError)
	}
	rootNode.Children = children
	return rootNode, nil
}

// buildChildNodes recursively builds the child nodes of one directory,
// honoring the exclusion rules and the directories-before-files ordering.
func (treeBuilder *Builder) buildChildNodes(currentDirectoryPath string, rootDirectoryPath string, depth int) ([]*types.TreeNode, error) {
	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		return nil, readDirectoryError
	}

	var directoryNames []string
	var fileNames []string
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		if directoryEntry.IsDir() {
			if treeBuilder.Settings.ShouldExcludeDirectory(entryName) {
				treeBuilder.logDecision("excluded directory", filepath.Join(currentDirectoryPath, entryName))
				continue
			}
			directoryNames = append(directoryNames, entryName)
		} else {
			if treeBuilder.Settings.ShouldExcludeFile(entryName) {
				treeBuilder.logDecision("excluded file", filepath.Join(currentDirectoryPath, entryName))
				continue
			}
			fileNames = append(fileNames, entryName)
		}
	}
	sort.Strings(directoryNames)
	sort.Strings(fileNames)

	nodes := make([]*types.TreeNode, 0, len(directoryNames)+len(fileNames))
	for _, directoryName := range directoryNames {
		childPath := filepath.Join(currentDirectoryPath, directoryName)
		childNode := &types.TreeNode{
			Path:         childPath,
			RelativePath: relativeChildPath(childPath, rootDirectoryPath),
			Name:         directoryName,
			Type:         types.NodeTypeDirectory,
			Depth:        depth,
		}
		childNodes, buildError := treeBuilder.buildChildNodes(childPath, rootDirectoryPath, depth+1)
		if buildError != nil {
			if treeBuilder.Logger != nil {
				treeBuilder.Logger.Warn(warningSkipSubdirMessage,
					zap.String("path", childPath), zap.Error(buildError))
			}
			childNode.Children = nil
		} else {
			childNode.Children = childNodes
		}
		nodes = append(nodes, childNode)
	}
	for _, fileName := range fileNames {
		childPath := filepath.Join(currentDirectoryPath, fileName)
		treeBuilder.logDecision("included file", childPath)
		nodes = append(nodes, &types.TreeNode{
			Path:         childPath,
			RelativePath: relativeChildPath(childPath, rootDirectoryPath),
			Name:         fileName,
			Type:         types.NodeTypeFile,
			Depth:        depth,
		})
	}
	return nodes, nil
}

func (treeBuilder *Builder) logDecision(decision string, path string) {
	if treeBuilder.Logger != nil {
		treeBuilder.Logger.Debug(decision, zap.String("path", path))
	}
}

func relativeChildPath(childPath string, rootDirectoryPath string) string {
	relativePath, relativeError := filepath.Rel(rootDirectoryPath, childPath)
	if relativeError != nil {
		return childPath
	}
	return filepath.ToSlash(relativePath)
}

// Files returns every file node of the tree in rendering order.
func Files(rootNode *types.TreeNode) []*types.TreeNode {
	if rootNode == nil {
		return nil
	}
	var fileNodes []*types.TreeNode
	var collect func(node *types.TreeNode)
	collect = func(node *types.TreeNode) {
		for _, childNode := range node.Children {
			if childNode.Type == types.NodeTypeFile {
				fileNodes = append(fileNodes, childNode)
			} else {
				collect(childNode)
			}
		}
	}
	collect(rootNode)
	return fileNodes
}
