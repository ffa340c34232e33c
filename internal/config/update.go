package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// WriteDefault writes DefaultConfig to path. It refuses to overwrite an
// existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	data, err := Marshal(DefaultConfig())
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders cfg as YAML with durations in their string form.
func Marshal(cfg *Config) ([]byte, error) {
	// yaml.v3 would encode time.Duration as nanoseconds; go through a
	// node tree so durations read back as "500ms".
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	durations := map[string]string{
		"live.interval":         cfg.Live.Interval.String(),
		"live.system":           cfg.Live.System.String(),
		"live.processes":        cfg.Live.Processes.String(),
		"live.network":          cfg.Live.Network.String(),
		"network.check_timeout": cfg.Network.CheckTimeout.String(),
	}
	for key, value := range durations {
		if n := findPath(&node, strings.Split(key, ".")); n != nil {
			n.Kind = yaml.ScalarNode
			n.Tag = "!!str"
			n.Value = value
		}
	}

	return encode(&node)
}

// SetValue updates a single dotted key (e.g. "live.interval") in the config
// file at path, preserving comments and ordering. Missing sections and keys
// are created.
func SetValue(path, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	docNode := root.Content[0]
	if docNode.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	parts := strings.Split(key, ".")
	node := docNode
	for i, part := range parts {
		next := findMapValue(node, part)
		if next == nil {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			if i == len(parts)-1 {
				next = &yaml.Node{Kind: yaml.ScalarNode}
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: part},
				next)
		}
		if i < len(parts)-1 && next.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		node = next
	}

	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("'%s' is a section, not a value", key)
	}
	node.Tag = ""
	node.Value = value

	out, err := encode(&root)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func encode(node *yaml.Node) ([]byte, error) {
	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(node); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()
	return []byte(buf.String()), nil
}

// findPath walks a mapping node tree along parts.
func findPath(node *yaml.Node, parts []string) *yaml.Node {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for _, part := range parts {
		node = findMapValue(node, part)
		if node == nil {
			return nil
		}
	}
	return node
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}

	return nil
}
