package harden

import (
	"fmt"
	"strconv"

	"github.com/dop251/goja"
)

// primitives holds the realm's own reflective functions. They are captured
// once, before any untrusted code can replace them, and only ever inspect or
// define descriptors: no user getter is invoked through them.
type primitives struct {
	vm *goja.Runtime

	ownKeys                  goja.Callable
	getOwnPropertyDescriptor goja.Callable
	defineProperty           goja.Callable
	getPrototypeOf           goja.Callable
	isExtensible             goja.Callable
	preventExtensions        goja.Callable
	isFrozen                 goja.Callable
	toString                 goja.Callable
}

func capturePrimitives(vm *goja.Runtime) (*primitives, error) {
	if vm == nil {
		return nil, ErrNilRuntime
	}

	reflectNS, err := globalObject(vm, "Reflect")
	if err != nil {
		return nil, err
	}
	objectCtor, err := globalObject(vm, "Object")
	if err != nil {
		return nil, err
	}
	stringCtor, err := globalObject(vm, "String")
	if err != nil {
		return nil, err
	}

	p := &primitives{vm: vm}
	bindings := []struct {
		holder *goja.Object
		owner  string
		name   string
		dst    *goja.Callable
	}{
		{reflectNS, "Reflect", "ownKeys", &p.ownKeys},
		{reflectNS, "Reflect", "getOwnPropertyDescriptor", &p.getOwnPropertyDescriptor},
		{reflectNS, "Reflect", "defineProperty", &p.defineProperty},
		{reflectNS, "Reflect", "getPrototypeOf", &p.getPrototypeOf},
		{reflectNS, "Reflect", "isExtensible", &p.isExtensible},
		{reflectNS, "Reflect", "preventExtensions", &p.preventExtensions},
		{objectCtor, "Object", "isFrozen", &p.isFrozen},
	}
	for _, b := range bindings {
		fn, ok := goja.AssertFunction(b.holder.Get(b.name))
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingPrimitive, b.owner, b.name)
		}
		*b.dst = fn
	}

	fn, ok := goja.AssertFunction(stringCtor)
	if !ok {
		return nil, fmt.Errorf("%w: String", ErrMissingPrimitive)
	}
	p.toString = fn

	return p, nil
}

func globalObject(vm *goja.Runtime, name string) (*goja.Object, error) {
	obj, ok := vm.Get(name).(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPrimitive, name)
	}
	return obj, nil
}

// keys returns the own property keys of obj, strings first then symbols.
func (p *primitives) keys(obj *goja.Object) ([]goja.Value, error) {
	res, err := p.ownKeys(goja.Undefined(), obj)
	if err != nil {
		return nil, err
	}
	list, ok := res.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("ownKeys returned %s", res)
	}

	n := list.Get("length").ToInteger()
	keys := make([]goja.Value, 0, n)
	for i := int64(0); i < n; i++ {
		keys = append(keys, list.Get(strconv.FormatInt(i, 10)))
	}
	return keys, nil
}

// descriptor reads the own descriptor of key on obj. The bool is false when
// obj has no such own property.
func (p *primitives) descriptor(obj *goja.Object, key goja.Value) (Descriptor, bool, error) {
	res, err := p.getOwnPropertyDescriptor(goja.Undefined(), obj, key)
	if err != nil {
		return Descriptor{}, false, err
	}
	if res == nil || goja.IsUndefined(res) {
		return Descriptor{}, false, nil
	}
	raw, ok := res.(*goja.Object)
	if !ok {
		return Descriptor{}, false, fmt.Errorf("getOwnPropertyDescriptor returned %s", res)
	}

	// Fresh descriptor objects carry only own data fields.
	var d Descriptor
	for _, field := range raw.Keys() {
		v := raw.Get(field)
		switch field {
		case "value":
			d.Value = v
		case "writable":
			d.Writable = v.ToBoolean()
		case "get":
			d.Kind = AccessorKind
			d.Get = v
		case "set":
			d.Kind = AccessorKind
			d.Set = v
		case "enumerable":
			d.Enumerable = v.ToBoolean()
		case "configurable":
			d.Configurable = v.ToBoolean()
		}
	}
	return d, true, nil
}

// define applies a partial descriptor and reports whether obj accepted it.
func (p *primitives) define(obj *goja.Object, key goja.Value, fields map[string]goja.Value) (bool, error) {
	desc, err := p.descriptorObject(fields)
	if err != nil {
		return false, err
	}
	res, err := p.defineProperty(goja.Undefined(), obj, key, desc)
	if err != nil {
		return false, err
	}
	return res.ToBoolean(), nil
}

// descriptorObject builds a prototype-less descriptor so inherited get/set
// fields cannot be picked up by ToPropertyDescriptor.
func (p *primitives) descriptorObject(fields map[string]goja.Value) (*goja.Object, error) {
	desc := p.vm.NewObject()
	if err := desc.SetPrototype(nil); err != nil {
		return nil, err
	}
	for _, name := range []string{"value", "writable", "get", "set", "enumerable", "configurable"} {
		v, ok := fields[name]
		if !ok {
			continue
		}
		if err := desc.DefineDataProperty(name, v, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
			return nil, err
		}
	}
	return desc, nil
}

func (p *primitives) prototype(obj *goja.Object) (*goja.Object, error) {
	res, err := p.getPrototypeOf(goja.Undefined(), obj)
	if err != nil {
		return nil, err
	}
	proto, _ := res.(*goja.Object)
	return proto, nil
}

func (p *primitives) extensible(obj *goja.Object) (bool, error) {
	return p.predicate(p.isExtensible, obj)
}

func (p *primitives) frozen(obj *goja.Object) (bool, error) {
	return p.predicate(p.isFrozen, obj)
}

func (p *primitives) stopExtensions(obj *goja.Object) (bool, error) {
	return p.predicate(p.preventExtensions, obj)
}

func (p *primitives) predicate(fn goja.Callable, obj *goja.Object) (bool, error) {
	res, err := fn(goja.Undefined(), obj)
	if err != nil {
		return false, err
	}
	return res.ToBoolean(), nil
}

// keyName renders a property key for paths and error messages.
func (p *primitives) keyName(key goja.Value) string {
	if _, ok := key.(*goja.Symbol); !ok {
		return key.String()
	}
	if res, err := p.toString(goja.Undefined(), key); err == nil {
		return res.String()
	}
	return key.String()
}

// childPath joins a parent path and a property key name.
func childPath(parent, key string, symbol bool) string {
	if symbol {
		return parent + "[" + key + "]"
	}
	if parent == "" {
		return key
	}
	return parent + "." + key
}

