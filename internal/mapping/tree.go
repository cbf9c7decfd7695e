package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

type nodeKind int

const (
	nullNode nodeKind = iota
	scalarNode
	listNode
	mapNode
)

// node is an order-preserving document tree shared by the YAML and JSON codecs.
type node struct {
	kind  nodeKind
	value string
	// keys are aligned with children for maps.
	keys     []string
	children []*node
}

func newMap() *node { return &node{kind: mapNode} }

func newList() *node { return &node{kind: listNode} }

func newScalar(value string) *node { return &node{kind: scalarNode, value: value} }

func (n *node) set(key string, child *node) {
	n.keys = append(n.keys, key)
	n.children = append(n.children, child)
}

func (n *node) kindName() string {
	switch n.kind {
	case scalarNode:
		return "scalar"
	case listNode:
		return "list"
	case mapNode:
		return "mapping"
	default:
		return "null"
	}
}

func duplicateKey(path, key string) error {
	return fmt.Errorf("%s: duplicate key %q", displayPath(path), key)
}

func displayPath(path string) string {
	if path == "" {
		return "document"
	}
	return path
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func decodeYAML(data []byte) (*node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return fromYAML(&doc, "")
}

func fromYAML(y *yaml.Node, path string) (*node, error) {
	switch y.Kind {
	case 0:
		return &node{kind: nullNode}, nil
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return &node{kind: nullNode}, nil
		}
		return fromYAML(y.Content[0], path)
	case yaml.AliasNode:
		if y.Alias == nil {
			return nil, fmt.Errorf("%s: dangling alias", displayPath(path))
		}
		return fromYAML(y.Alias, path)
	case yaml.ScalarNode:
		if y.Tag == "!!null" {
			return &node{kind: nullNode}, nil
		}
		return newScalar(y.Value), nil
	case yaml.SequenceNode:
		list := newList()
		for i, item := range y.Content {
			child, err := fromYAML(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			list.children = append(list.children, child)
		}
		return list, nil
	case yaml.MappingNode:
		m := newMap()
		seen := make(map[string]struct{}, len(y.Content)/2)
		for i := 0; i+1 < len(y.Content); i += 2 {
			keyNode := y.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%s: line %d: keys must be scalars", displayPath(path), keyNode.Line)
			}
			key := keyNode.Value
			if _, ok := seen[key]; ok {
				return nil, fmt.Errorf("line %d: %w", keyNode.Line, duplicateKey(path, key))
			}
			seen[key] = struct{}{}
			child, err := fromYAML(y.Content[i+1], joinPath(path, key))
			if err != nil {
				return nil, err
			}
			m.set(key, child)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%s: unsupported YAML node", displayPath(path))
	}
}

func encodeYAML(w io.Writer, n *node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(n)); err != nil {
		return err
	}
	return enc.Close()
}

func toYAML(n *node) *yaml.Node {
	switch n.kind {
	case mapNode:
		y := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for i, key := range n.keys {
			y.Content = append(y.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				toYAML(n.children[i]))
		}
		return y
	case listNode:
		y := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, child := range n.children {
			y.Content = append(y.Content, toYAML(child))
		}
		return y
	case scalarNode:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.value}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func decodeJSON(data []byte) (*node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return &node{kind: nullNode}, nil
	}
	if err != nil {
		return nil, err
	}
	root, err := fromJSON(dec, tok, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, errors.New("unexpected data after top-level value")
	}
	return root, nil
}

func fromJSON(dec *json.Decoder, tok json.Token, path string) (*node, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			m := newMap()
			seen := make(map[string]struct{})
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("%s: keys must be strings", displayPath(path))
				}
				if _, dup := seen[key]; dup {
					return nil, duplicateKey(path, key)
				}
				seen[key] = struct{}{}
				valueTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				child, err := fromJSON(dec, valueTok, joinPath(path, key))
				if err != nil {
					return nil, err
				}
				m.set(key, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			list := newList()
			for dec.More() {
				itemTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				child, err := fromJSON(dec, itemTok, fmt.Sprintf("%s[%d]", path, len(list.children)))
				if err != nil {
					return nil, err
				}
				list.children = append(list.children, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("%s: unexpected delimiter %q", displayPath(path), v)
		}
	case string:
		return newScalar(v), nil
	case json.Number:
		return newScalar(v.String()), nil
	case bool:
		return newScalar(strconv.FormatBool(v)), nil
	case nil:
		return &node{kind: nullNode}, nil
	default:
		return nil, fmt.Errorf("%s: unsupported JSON token %T", displayPath(path), tok)
	}
}

func encodeJSON(w io.Writer, n *node) error {
	var compact bytes.Buffer
	if err := writeJSON(&compact, n); err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return err
}

func writeJSON(buf *bytes.Buffer, n *node) error {
	switch n.kind {
	case mapNode:
		buf.WriteByte('{')
		for i, key := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encoded, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(encoded)
			buf.WriteByte(':')
			if err := writeJSON(buf, n.children[i]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case listNode:
		buf.WriteByte('[')
		for i, child := range n.children {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case scalarNode:
		encoded, err := json.Marshal(n.value)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	default:
		buf.WriteString("null")
	}
	return nil
}
