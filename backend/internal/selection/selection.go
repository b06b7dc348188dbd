// Package selection turns a validated gqlparser operation into the plain
// selection shape the resolvers walk: fragments flattened, @skip/@include
// applied, arguments coerced, and fields sharing a response key merged.
package selection

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// Field is one requested field of an object
type Field struct {
	Name     string
	Alias    string
	Args     map[string]interface{}
	Children Set
}

// Key is the name the field's value is emitted under
func (f Field) Key() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// Arg returns the coerced argument value
func (f Field) Arg(name string) (interface{}, bool) {
	v, ok := f.Args[name]
	return v, ok
}

// Set is an ordered list of fields requested on one object
type Set []Field

// Has reports whether any field in the set is named name
func (s Set) Has(name string) bool {
	for _, f := range s {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Collect flattens selections made on an object of type typeName
func Collect(set ast.SelectionSet, typeName string, vars map[string]interface{}) Set {
	type group struct {
		first *ast.Field
		sets  []ast.SelectionSet
	}

	var order []string
	groups := make(map[string]*group)

	var walk func(ast.SelectionSet)
	walk = func(sels ast.SelectionSet) {
		for _, sel := range sels {
			switch s := sel.(type) {
			case *ast.Field:
				if !included(s.Directives, vars) {
					continue
				}
				key := s.Alias
				if key == "" {
					key = s.Name
				}
				g, ok := groups[key]
				if !ok {
					g = &group{first: s}
					groups[key] = g
					order = append(order, key)
				}
				if len(s.SelectionSet) > 0 {
					g.sets = append(g.sets, s.SelectionSet)
				}
			case *ast.InlineFragment:
				if included(s.Directives, vars) && matches(s.TypeCondition, typeName) {
					walk(s.SelectionSet)
				}
			case *ast.FragmentSpread:
				if s.Definition == nil || !included(s.Directives, vars) {
					continue
				}
				if matches(s.Definition.TypeCondition, typeName) {
					walk(s.Definition.SelectionSet)
				}
			}
		}
	}
	walk(set)

	out := make(Set, 0, len(order))
	for _, key := range order {
		g := groups[key]
		f := Field{
			Name:  g.first.Name,
			Alias: key,
			Args:  g.first.ArgumentMap(vars),
		}
		if len(g.sets) > 0 {
			childType := ""
			if g.first.Definition != nil && g.first.Definition.Type != nil {
				childType = g.first.Definition.Type.Name()
			}
			var merged ast.SelectionSet
			for _, s := range g.sets {
				merged = append(merged, s...)
			}
			f.Children = Collect(merged, childType, vars)
		}
		out = append(out, f)
	}
	return out
}

func matches(condition, typeName string) bool {
	return condition == "" || typeName == "" || condition == typeName
}

func included(dirs ast.DirectiveList, vars map[string]interface{}) bool {
	if d := dirs.ForName("skip"); d != nil {
		if skip, _ := d.ArgumentMap(vars)["if"].(bool); skip {
			return false
		}
	}
	if d := dirs.ForName("include"); d != nil {
		if include, ok := d.ArgumentMap(vars)["if"].(bool); ok && !include {
			return false
		}
	}
	return true
}
