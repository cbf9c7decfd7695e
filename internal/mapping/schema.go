package mapping

import (
	"fmt"
	"strings"

	"bidsmap/internal/classify"
)

// fromTree validates a decoded document into exactly one layout.
func fromTree(root *node) (Mapping, error) {
	switch root.kind {
	case nullNode:
		return &Nested{}, nil
	case mapNode:
	default:
		return nil, fmt.Errorf("document: expected a mapping of sections, got %s", root.kindName())
	}

	var layout Layout
	sections := make(map[classify.Section]*node, len(root.keys))
	for i, key := range root.keys {
		section := classify.Section(key)
		if !section.Valid() {
			return nil, fmt.Errorf("document: unknown section %q (want anat, func or fmap)", key)
		}
		child := root.children[i]
		var found Layout
		switch child.kind {
		case nullNode:
			continue
		case listNode:
			found = LayoutFlat
		case mapNode:
			found = LayoutNested
		default:
			return nil, fmt.Errorf("%s: expected a list or mapping, got %s", key, child.kindName())
		}
		if layout != "" && layout != found {
			return nil, fmt.Errorf("%s: mixes %s and %s layouts", key, layout, found)
		}
		layout = found
		sections[section] = child
	}

	if layout == LayoutFlat {
		return flatFromTree(sections)
	}
	return nestedFromTree(sections)
}

func flatFromTree(sections map[classify.Section]*node) (*Flat, error) {
	flat := &Flat{}
	for _, section := range classify.Sections {
		list, ok := sections[section]
		if !ok {
			continue
		}
		stems, err := stemList(list, string(section))
		if err != nil {
			return nil, err
		}
		switch section {
		case classify.SectionAnat:
			flat.Anat = stems
		case classify.SectionFunc:
			flat.Func = stems
		case classify.SectionFmap:
			flat.Fmap = stems
		}
	}
	return flat, nil
}

func nestedFromTree(sections map[classify.Section]*node) (*Nested, error) {
	nested := &Nested{}
	if anat, ok := sections[classify.SectionAnat]; ok {
		for i, label := range anat.keys {
			path := joinPath("anat", label)
			stems, err := stemList(anat.children[i], path)
			if err != nil {
				return nil, err
			}
			nested.Anat = append(nested.Anat, AnatGroup{Label: label, Stems: stems})
		}
	}
	if fn, ok := sections[classify.SectionFunc]; ok {
		for i, name := range fn.keys {
			task, err := taskFromTree(name, fn.children[i])
			if err != nil {
				return nil, err
			}
			nested.Func = append(nested.Func, task)
		}
	}
	if fmap, ok := sections[classify.SectionFmap]; ok {
		for i, typ := range fmap.keys {
			path := joinPath("fmap", typ)
			roles := fmap.children[i]
			if roles.kind != mapNode {
				return nil, fmt.Errorf("%s: expected a mapping of role to stem, got %s", path, roles.kindName())
			}
			group := FieldmapGroup{Type: typ}
			for j, role := range roles.keys {
				stem, err := stemScalar(roles.children[j], joinPath(path, role))
				if err != nil {
					return nil, err
				}
				group.Roles = append(group.Roles, FieldmapRole{Role: role, Stem: stem})
			}
			nested.Fmap = append(nested.Fmap, group)
		}
	}
	return nested, nil
}

func taskFromTree(name string, runs *node) (Task, error) {
	path := joinPath("func", name)
	if runs.kind != mapNode {
		return Task{}, fmt.Errorf("%s: expected a mapping of run labels, got %s", path, runs.kindName())
	}
	task := Task{Name: name}
	for i, label := range runs.keys {
		runPath := joinPath(path, label)
		entry := runs.children[i]
		if entry.kind != mapNode {
			return Task{}, fmt.Errorf("%s: expected a mapping with bold and optional sbref, got %s", runPath, entry.kindName())
		}
		run := Run{Label: label}
		for j, key := range entry.keys {
			stem, err := stemScalar(entry.children[j], joinPath(runPath, key))
			if err != nil {
				return Task{}, err
			}
			switch key {
			case KindBold:
				run.Bold = stem
			case KindSBRef:
				run.SBRef = stem
			default:
				return Task{}, fmt.Errorf("%s: unknown key %q (want bold or sbref)", runPath, key)
			}
		}
		if run.Bold == "" {
			return Task{}, fmt.Errorf("%s: bold is required", runPath)
		}
		task.Runs = append(task.Runs, run)
	}
	return task, nil
}

func stemList(n *node, path string) ([]string, error) {
	if n.kind != listNode {
		return nil, fmt.Errorf("%s: expected a list of stems, got %s", path, n.kindName())
	}
	stems := make([]string, 0, len(n.children))
	for i, child := range n.children {
		stem, err := stemScalar(child, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		stems = append(stems, stem)
	}
	return stems, nil
}

func stemScalar(n *node, path string) (string, error) {
	if n.kind != scalarNode {
		return "", fmt.Errorf("%s: expected a stem, got %s", path, n.kindName())
	}
	stem := strings.TrimSpace(n.value)
	if stem == "" {
		return "", fmt.Errorf("%s: empty stem", path)
	}
	return stem, nil
}

// toTree renders m in its declared order. Flat mappings always carry all
// three sections so an empty flat mapping keeps its layout.
func toTree(m Mapping) *node {
	root := newMap()
	switch v := m.(type) {
	case *Flat:
		for _, section := range classify.Sections {
			list := newList()
			for _, stem := range v.Section(section) {
				list.children = append(list.children, newScalar(stem))
			}
			root.set(string(section), list)
		}
	case *Nested:
		if len(v.Anat) > 0 {
			anat := newMap()
			for _, group := range v.Anat {
				list := newList()
				for _, stem := range group.Stems {
					list.children = append(list.children, newScalar(stem))
				}
				anat.set(group.Label, list)
			}
			root.set(string(classify.SectionAnat), anat)
		}
		if len(v.Func) > 0 {
			fn := newMap()
			for _, task := range v.Func {
				runs := newMap()
				for _, run := range task.Runs {
					entry := newMap()
					entry.set(KindBold, newScalar(run.Bold))
					if run.SBRef != "" {
						entry.set(KindSBRef, newScalar(run.SBRef))
					}
					runs.set(run.Label, entry)
				}
				fn.set(task.Name, runs)
			}
			root.set(string(classify.SectionFunc), fn)
		}
		if len(v.Fmap) > 0 {
			fmap := newMap()
			for _, group := range v.Fmap {
				roles := newMap()
				for _, role := range group.Roles {
					roles.set(role.Role, newScalar(role.Stem))
				}
				fmap.set(group.Type, roles)
			}
			root.set(string(classify.SectionFmap), fmap)
		}
	}
	return root
}
