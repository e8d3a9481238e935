package harden

import (
	"fmt"
	"sort"

	"github.com/dop251/goja"
)

// Intrinsics maps stable identifiers to the realm's built-in objects.
type Intrinsics map[string]*goja.Object

// Names returns the identifiers in sorted order.
func (in Intrinsics) Names() []string {
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// globalIntrinsics are looked up on the global object. Constructors also
// contribute their prototype as <Name>Prototype. Names the engine does not
// provide are skipped.
var globalIntrinsics = []string{
	"Object", "Function", "Array", "String", "Number", "Boolean", "Symbol", "BigInt",
	"Date", "RegExp", "Promise", "Proxy", "Reflect", "JSON", "Math",
	"Error", "EvalError", "RangeError", "ReferenceError", "SyntaxError", "TypeError", "URIError",
	"AggregateError",
	"Map", "Set", "WeakMap", "WeakSet", "WeakRef", "FinalizationRegistry",
	"ArrayBuffer", "SharedArrayBuffer", "DataView", "Atomics",
	"Int8Array", "Uint8Array", "Uint8ClampedArray", "Int16Array", "Uint16Array",
	"Int32Array", "Uint32Array", "Float32Array", "Float64Array", "BigInt64Array", "BigUint64Array",
	"eval", "isFinite", "isNaN", "parseFloat", "parseInt",
	"decodeURI", "decodeURIComponent", "encodeURI", "encodeURIComponent", "escape", "unescape",
}

// collectScript evaluates to a function that gathers the intrinsics named
// in its argument plus those only reachable through instances. Syntax the
// engine may lack is compiled through Function so a failure only loses
// that entry.
const collectScript = `(function (global, names) {
	'use strict';
	var getProto = Object.getPrototypeOf;
	var describe = Object.getOwnPropertyDescriptor;
	var table = Object.create(null);
	var isObject = function (v) {
		return v !== null && (typeof v === 'object' || typeof v === 'function');
	};
	var compile = function (src) {
		return Function('return (' + src + ');')();
	};

	names.forEach(function (name) {
		var d = describe(global, name);
		if (!d || !isObject(d.value)) {
			return;
		}
		table[name] = d.value;
		var proto = describe(d.value, 'prototype');
		if (typeof d.value === 'function' && proto && isObject(proto.value)) {
			table[name + 'Prototype'] = proto.value;
		}
	});

	var hidden = {
		ThrowTypeError: function () {
			return (function () { 'use strict'; return describe(arguments, 'callee').get; })();
		},
		IteratorPrototype: function () { return getProto(getProto([][Symbol.iterator]())); },
		ArrayIteratorPrototype: function () { return getProto([][Symbol.iterator]()); },
		StringIteratorPrototype: function () { return getProto(''[Symbol.iterator]()); },
		MapIteratorPrototype: function () { return getProto(new Map()[Symbol.iterator]()); },
		SetIteratorPrototype: function () { return getProto(new Set()[Symbol.iterator]()); },
		RegExpStringIteratorPrototype: function () { return getProto(/a/[Symbol.matchAll]('a')); },
		Generator: function () { return getProto(compile('function* () {}')); },
		GeneratorFunction: function () { return getProto(compile('function* () {}')).constructor; },
		GeneratorPrototype: function () { return getProto(compile('function* () {}')).prototype; },
		AsyncFunction: function () { return getProto(compile('async function () {}')).constructor; },
		AsyncFunctionPrototype: function () { return getProto(compile('async function () {}')); },
		AsyncGenerator: function () { return getProto(compile('async function* () {}')); },
		AsyncGeneratorFunction: function () { return getProto(compile('async function* () {}')).constructor; },
		AsyncGeneratorPrototype: function () { return getProto(compile('async function* () {}')).prototype; },
		AsyncIteratorPrototype: function () {
			return getProto(getProto(compile('async function* () {}')).prototype);
		},
		TypedArray: function () { return getProto(Int8Array); },
		TypedArrayPrototype: function () { return getProto(Int8Array).prototype; }
	};
	Object.keys(hidden).forEach(function (name) {
		try {
			var v = hidden[name]();
			if (isObject(v)) {
				table[name] = v;
			}
		} catch (e) {
			// not provided by this engine
		}
	});

	return table;
})`

// Collect builds the intrinsics table of a fresh realm: well-known globals,
// their prototypes and the hidden intrinsics reachable only through
// instances. It evaluates trusted code in vm and must run before any
// untrusted code does.
func Collect(vm *goja.Runtime) (Intrinsics, error) {
	if vm == nil {
		return nil, ErrNilRuntime
	}

	fnVal, err := vm.RunString(collectScript)
	if err != nil {
		return nil, fmt.Errorf("harden: compile intrinsics collector: %w", err)
	}
	collect, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, fmt.Errorf("harden: intrinsics collector is not callable")
	}

	names := make([]interface{}, len(globalIntrinsics))
	for i, n := range globalIntrinsics {
		names[i] = n
	}
	res, err := collect(goja.Undefined(), vm.GlobalObject(), vm.NewArray(names...))
	if err != nil {
		return nil, fmt.Errorf("harden: collect intrinsics: %w", err)
	}
	table, ok := res.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("harden: intrinsics collector returned %s", res)
	}
	return FromObject(table)
}

// FromObject copies the own enumerable object-valued properties of a JS
// table object into an Intrinsics, with Object.assign semantics. The table
// object itself is left untouched.
func FromObject(table *goja.Object) (Intrinsics, error) {
	if table == nil {
		return nil, ErrNilRoot
	}
	out := make(Intrinsics)
	for _, name := range table.Keys() {
		if obj, ok := table.Get(name).(*goja.Object); ok {
			out[name] = obj
		}
	}
	return out, nil
}
