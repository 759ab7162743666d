package layouts

import "reflect"

// DefaultLayoutName is used when layouts are enabled but no name was given.
const DefaultLayoutName = "layout"

// LayoutDecision tells the Renderer whether to wrap a view and with which
// layout.
type LayoutDecision struct {
	Disabled bool
	Name     string
}

// Disabled renders the view without a layout.
func Disabled() LayoutDecision {
	return LayoutDecision{Disabled: true}
}

// Named wraps the view in the layout called name.
func Named(name string) LayoutDecision {
	return LayoutDecision{Name: name}
}

// ResolveLayout picks the layout for a render call.
//
// An explicit false in opts disables layouts, as does a false default when
// opts names no layout. Otherwise the first usable value among the option,
// the response local and the default wins; true or no value at all selects
// DefaultLayoutName.
func ResolveLayout(opts Options, local, def any) LayoutDecision {
	option := opts[LayoutKey]

	if isFalse(option) {
		return Disabled()
	}

	effective := option
	if !truthy(effective) {
		effective = def
	}
	if isFalse(effective) {
		return Disabled()
	}

	chosen := option
	if !truthy(chosen) {
		chosen = local
	}
	if !truthy(chosen) {
		chosen = def
	}

	if name, ok := chosen.(string); ok && name != "" {
		return Named(name)
	}

	return Named(DefaultLayoutName)
}

func isFalse(v any) bool {
	b, ok := v.(bool)
	return ok && !b
}

// truthy mirrors the loose truthiness layout settings are compared with:
// nil, false, empty strings and numeric zero are not set.
func truthy(v any) bool {
	if v == nil {
		return false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && f == f
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}

	return true
}
