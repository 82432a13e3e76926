package scene

// Labeled is any tree whose nodes carry a name. T is the node type itself,
// e.g. *Node.
type Labeled[T any] interface {
	NodeName() string
	ChildNodes() []T
}

// FindFirstByName returns the first node named name in the tree rooted at
// root, root included. The root is checked first, then its direct children,
// then each child's subtree in child order.
func FindFirstByName[T Labeled[T]](root T, name string) (T, bool) {
	if root.NodeName() == name {
		return root, true
	}
	children := root.ChildNodes()
	for _, c := range children {
		if c.NodeName() == name {
			return c, true
		}
	}
	for _, c := range children {
		if found, ok := FindFirstByName(c, name); ok {
			return found, true
		}
	}
	var zero T
	return zero, false
}

// FindAllByName returns every node named name in preorder (self before
// children). The result is empty, never nil, when nothing matches.
func FindAllByName[T Labeled[T]](root T, name string) []T {
	found := []T{}
	collect(root, name, &found)
	return found
}

func collect[T Labeled[T]](n T, name string, into *[]T) {
	if n.NodeName() == name {
		*into = append(*into, n)
	}
	for _, c := range n.ChildNodes() {
		collect(c, name, into)
	}
}
