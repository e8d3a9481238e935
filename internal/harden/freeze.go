package harden

import "github.com/dop251/goja"

// freezer locks every node it visits: all own properties become
// non-configurable (data properties also non-writable), then the node is
// made non-extensible. Properties are locked first so nothing can be added
// between the two steps.
type freezer struct {
	prims *primitives

	frozen        int
	alreadyFrozen int
}

func (f *freezer) visit(node Node) error {
	done, err := f.prims.frozen(node.Object)
	if err != nil {
		return &FreezeError{Path: node.Path, Err: err}
	}
	if done {
		f.alreadyFrozen++
		return nil
	}

	keys, err := f.prims.keys(node.Object)
	if err != nil {
		return &TraversalError{Path: node.Path, Op: "ownKeys", Err: err}
	}
	for _, key := range keys {
		if err := f.lock(node, key); err != nil {
			return err
		}
	}

	ok, err := f.prims.stopExtensions(node.Object)
	if err == nil && !ok {
		err = errRefused
	}
	if err != nil {
		return &FreezeError{Path: node.Path, Err: err}
	}

	f.frozen++
	return nil
}

func (f *freezer) lock(node Node, key goja.Value) error {
	desc, ok, err := f.prims.descriptor(node.Object, key)
	if err != nil {
		return &TraversalError{Path: node.Path, Op: "getOwnPropertyDescriptor", Key: f.prims.keyName(key), Err: err}
	}
	if !ok || desc.Locked() {
		return nil
	}

	fields := map[string]goja.Value{"configurable": f.prims.vm.ToValue(false)}
	if desc.Kind == DataKind {
		fields["writable"] = f.prims.vm.ToValue(false)
	}

	ok, err = f.prims.define(node.Object, key, fields)
	if err == nil && !ok {
		err = errRefused
	}
	if err != nil {
		return &FreezeError{Path: node.Path, Key: f.prims.keyName(key), Err: err}
	}
	return nil
}
