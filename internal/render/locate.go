package render

import (
	"figsiner/internal/scene"
	"figsiner/internal/section"
)

// Location is a drawn item together with its parent and position.
type Location struct {
	Parent *scene.Node
	Index  int
	Node   *scene.Node
}

// ContentFrame returns the content frame of a rendered section root.
func ContentFrame(root *scene.Node) *scene.Node {
	if root == nil {
		return nil
	}
	for _, c := range root.Children() {
		if c.Kind == scene.KindFrame && c.Name == ContentFrameName {
			return c
		}
	}
	return nil
}

// NodeType reports the document node type a drawn node was created for.
func NodeType(n *scene.Node) section.NodeType {
	return section.NodeType(n.PluginData(NodeTypeKey))
}

func isContainer(n *scene.Node) bool {
	return n.Kind == scene.KindFrame && NodeType(n) == section.NodeContainer
}

// Locate searches the children of parent depth-first, pre-order, for a node
// named id. It descends only into drawn containers, matching section.Locate
// on the document.
func Locate(parent *scene.Node, id string) (Location, bool) {
	for i, c := range parent.Children() {
		if c.Name == id {
			return Location{Parent: parent, Index: i, Node: c}, true
		}
		if isContainer(c) {
			if loc, ok := Locate(c, id); ok {
				return loc, true
			}
		}
	}
	return Location{}, false
}
