package harden

import (
	"github.com/dop251/goja"
)

// Node is one object of the graph together with the path it was first
// discovered through.
type Node struct {
	Object *goja.Object
	Path   string
}

// Visitor is invoked once per distinct object reached by a walk.
type Visitor func(Node) error

// Walker traverses the object graph reachable from a root through own
// property values (string and symbol keys, enumerable or not), accessor
// functions and prototype links.
//
// The walk is depth-first and iterative. A node's edges are read after its
// visitor returns, so changes made by the visitor decide which edges are
// followed. Own keys are followed in Reflect.ownKeys order and the prototype
// last; callers must not rely on that order for correctness.
//
// Any failure to enumerate or inspect a node aborts the whole walk with a
// *TraversalError. A visitor error aborts the walk and is returned as is.
type Walker struct {
	prims *primitives
}

// NewWalker captures the reflective primitives of vm.
func NewWalker(vm *goja.Runtime) (*Walker, error) {
	prims, err := capturePrimitives(vm)
	if err != nil {
		return nil, err
	}
	return &Walker{prims: prims}, nil
}

// Walk visits root and everything reachable from it, and returns the number
// of nodes whose visitor completed.
func (w *Walker) Walk(root *goja.Object, visit Visitor) (int, error) {
	if root == nil {
		return 0, ErrNilRoot
	}

	visited := map[*goja.Object]struct{}{root: {}}
	stack := []Node{{Object: root}}
	count := 0

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := visit(node); err != nil {
			return count, err
		}
		count++

		edges, err := w.edges(node)
		if err != nil {
			return count, err
		}
		// Reverse push keeps the first edge on top of the stack.
		for i := len(edges) - 1; i >= 0; i-- {
			next := edges[i]
			if _, seen := visited[next.Object]; seen {
				continue
			}
			visited[next.Object] = struct{}{}
			stack = append(stack, next)
		}
	}

	return count, nil
}

func (w *Walker) edges(node Node) ([]Node, error) {
	keys, err := w.prims.keys(node.Object)
	if err != nil {
		return nil, &TraversalError{Path: node.Path, Op: "ownKeys", Err: err}
	}

	var out []Node
	for _, key := range keys {
		desc, ok, err := w.prims.descriptor(node.Object, key)
		if err != nil {
			return nil, &TraversalError{Path: node.Path, Op: "getOwnPropertyDescriptor", Key: w.prims.keyName(key), Err: err}
		}
		if !ok {
			continue
		}
		slots := desc.objects()
		if len(slots) == 0 {
			continue
		}
		_, symbol := key.(*goja.Symbol)
		path := childPath(node.Path, w.prims.keyName(key), symbol)
		for _, s := range slots {
			out = append(out, Node{Object: s.obj, Path: path + s.suffix})
		}
	}

	proto, err := w.prims.prototype(node.Object)
	if err != nil {
		return nil, &TraversalError{Path: node.Path, Op: "getPrototypeOf", Err: err}
	}
	if proto != nil {
		out = append(out, Node{Object: proto, Path: childPath(node.Path, "[[Prototype]]", false)})
	}

	return out, nil
}
