package harden

import (
	"github.com/dop251/goja"
	"go.uber.org/multierr"
)

// Snapshot selects how the frozen value of a repaired property is obtained.
// None of them call the accessor being replaced.
type Snapshot int

const (
	// SnapshotPrototype stores the holder's own prototype.
	SnapshotPrototype Snapshot = iota
	// SnapshotEmptyString stores "", the value legacy RegExp statics hold
	// before any match has run in the realm.
	SnapshotEmptyString
	// SnapshotUndefined stores undefined.
	SnapshotUndefined
)

// Rule names an accessor property that must not survive hardening as an
// accessor.
type Rule struct {
	Name     string
	Snapshot Snapshot
}

// DefaultRules lists the accessors that reflect or leak realm-wide state.
var DefaultRules = []Rule{
	{Name: "__proto__", Snapshot: SnapshotPrototype},

	{Name: "input", Snapshot: SnapshotEmptyString},
	{Name: "$_", Snapshot: SnapshotEmptyString},
	{Name: "lastMatch", Snapshot: SnapshotEmptyString},
	{Name: "$&", Snapshot: SnapshotEmptyString},
	{Name: "lastParen", Snapshot: SnapshotEmptyString},
	{Name: "$+", Snapshot: SnapshotEmptyString},
	{Name: "leftContext", Snapshot: SnapshotEmptyString},
	{Name: "$`", Snapshot: SnapshotEmptyString},
	{Name: "rightContext", Snapshot: SnapshotEmptyString},
	{Name: "$'", Snapshot: SnapshotEmptyString},
	{Name: "$1", Snapshot: SnapshotEmptyString},
	{Name: "$2", Snapshot: SnapshotEmptyString},
	{Name: "$3", Snapshot: SnapshotEmptyString},
	{Name: "$4", Snapshot: SnapshotEmptyString},
	{Name: "$5", Snapshot: SnapshotEmptyString},
	{Name: "$6", Snapshot: SnapshotEmptyString},
	{Name: "$7", Snapshot: SnapshotEmptyString},
	{Name: "$8", Snapshot: SnapshotEmptyString},
	{Name: "$9", Snapshot: SnapshotEmptyString},
}

// repairer converts dangerous accessors into frozen data properties. It is
// best effort: a property it cannot convert is recorded and left in place.
type repairer struct {
	prims *primitives
	rules map[string]Rule

	repaired []string
	errs     error
}

func newRepairer(prims *primitives, rules []Rule) *repairer {
	byName := make(map[string]Rule, len(rules))
	for _, r := range rules {
		byName[r.Name] = r
	}
	return &repairer{prims: prims, rules: byName}
}

func (r *repairer) visit(node Node) error {
	keys, err := r.prims.keys(node.Object)
	if err != nil {
		return &TraversalError{Path: node.Path, Op: "ownKeys", Err: err}
	}

	for _, key := range keys {
		if _, ok := key.(*goja.Symbol); ok {
			continue
		}
		rule, ok := r.rules[key.String()]
		if !ok {
			continue
		}

		desc, ok, err := r.prims.descriptor(node.Object, key)
		if err != nil {
			return &TraversalError{Path: node.Path, Op: "getOwnPropertyDescriptor", Key: rule.Name, Err: err}
		}
		if !ok {
			continue
		}
		r.repairProperty(node, key, rule, desc)
	}
	return nil
}

func (r *repairer) repairProperty(node Node, key goja.Value, rule Rule, desc Descriptor) {
	switch desc.Kind {
	case DataKind:
		// Already a data property: nothing to convert.
		return
	case AccessorKind:
		if !desc.Configurable {
			r.fail(node, rule, ErrNonConfigurable)
			return
		}
	}

	value, err := r.snapshot(node, rule)
	if err != nil {
		r.fail(node, rule, err)
		return
	}

	vm := r.prims.vm
	ok, err := r.prims.define(node.Object, key, map[string]goja.Value{
		"value":        value,
		"writable":     vm.ToValue(false),
		"enumerable":   vm.ToValue(desc.Enumerable),
		"configurable": vm.ToValue(false),
	})
	switch {
	case err != nil:
		r.fail(node, rule, err)
	case !ok:
		r.fail(node, rule, errRefused)
	default:
		r.repaired = append(r.repaired, childPath(node.Path, rule.Name, false))
	}
}

func (r *repairer) snapshot(node Node, rule Rule) (goja.Value, error) {
	switch rule.Snapshot {
	case SnapshotPrototype:
		proto, err := r.prims.prototype(node.Object)
		if err != nil {
			return nil, err
		}
		if proto == nil {
			return goja.Null(), nil
		}
		return proto, nil
	case SnapshotEmptyString:
		return r.prims.vm.ToValue(""), nil
	default:
		return goja.Undefined(), nil
	}
}

func (r *repairer) fail(node Node, rule Rule, err error) {
	r.errs = multierr.Append(r.errs, &RepairError{Path: node.Path, Key: rule.Name, Err: err})
}
