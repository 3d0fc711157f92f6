package section

// RootParentID addresses the section's top-level items in insertItem.
const RootParentID = "root"

// Location is where a node sits in the tree: the collection holding it and
// its index in that collection.
type Location struct {
	Siblings *[]*Node
	Index    int
	Node     *Node
}

// Locate finds the node with the given id by a depth-first, pre-order walk:
// siblings are scanned left to right and a container's children are searched
// before the container's next sibling. The first match wins.
func Locate(items *[]*Node, id string) (Location, bool) {
	for i, n := range *items {
		if n == nil {
			continue
		}
		if n.ID == id {
			return Location{Siblings: items, Index: i, Node: n}, true
		}
		if n.Type == NodeContainer {
			if loc, ok := Locate(&n.Children, id); ok {
				return loc, true
			}
		}
	}
	return Location{}, false
}

// Locate searches the section's items.
func (s *Section) Locate(id string) (Location, bool) {
	return Locate(&s.Items, id)
}

// ChildrenOf returns the child collection addressed by parentID: the
// top-level items for RootParentID, otherwise the children of the container
// with that id.
func (s *Section) ChildrenOf(parentID string) (*[]*Node, bool) {
	if parentID == RootParentID {
		return &s.Items, true
	}
	loc, ok := s.Locate(parentID)
	if !ok || !loc.Node.IsContainer() {
		return nil, false
	}
	return &loc.Node.Children, true
}

// Walk visits every node depth-first, pre-order, stopping early when fn
// returns false.
func Walk(items []*Node, fn func(n *Node, depth int) bool) {
	walk(items, 0, fn)
}

func walk(items []*Node, depth int, fn func(n *Node, depth int) bool) bool {
	for _, n := range items {
		if n == nil {
			continue
		}
		if !fn(n, depth) {
			return false
		}
		if n.Type == NodeContainer && !walk(n.Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// DuplicateIDs lists ids that occur more than once in the tree, in first
// occurrence order.
func (s *Section) DuplicateIDs() []string {
	seen := make(map[string]int)
	var dups []string
	Walk(s.Items, func(n *Node, _ int) bool {
		seen[n.ID]++
		if seen[n.ID] == 2 {
			dups = append(dups, n.ID)
		}
		return true
	})
	return dups
}
