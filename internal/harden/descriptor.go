package harden

import "github.com/dop251/goja"

// Kind tags a property descriptor as a data or an accessor property.
type Kind int

const (
	DataKind Kind = iota
	AccessorKind
)

func (k Kind) String() string {
	if k == AccessorKind {
		return "accessor"
	}
	return "data"
}

// Descriptor is the Go view of an own property descriptor. Value and Writable
// are meaningful for DataKind only, Get and Set for AccessorKind only.
type Descriptor struct {
	Kind         Kind
	Value        goja.Value
	Get          goja.Value
	Set          goja.Value
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// Locked reports whether the property already has its final frozen shape.
func (d Descriptor) Locked() bool {
	if d.Configurable {
		return false
	}
	return d.Kind == AccessorKind || !d.Writable
}

// objects returns the object-valued slots of the descriptor with the path
// suffix each one is reached through.
func (d Descriptor) objects() []slot {
	var out []slot
	switch d.Kind {
	case DataKind:
		if o, ok := d.Value.(*goja.Object); ok {
			out = append(out, slot{obj: o})
		}
	case AccessorKind:
		if o, ok := d.Get.(*goja.Object); ok {
			out = append(out, slot{obj: o, suffix: "<get>"})
		}
		if o, ok := d.Set.(*goja.Object); ok {
			out = append(out, slot{obj: o, suffix: "<set>"})
		}
	}
	return out
}

type slot struct {
	obj    *goja.Object
	suffix string
}
