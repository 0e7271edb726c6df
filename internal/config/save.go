package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/mirrorkit/internal/log"
)

// SaveEditorFeatures replaces editor.features in the config file. Comments
// and formatting elsewhere in the file are preserved by editing the yaml.Node
// tree instead of re-marshaling a Config.
func SaveEditorFeatures(configPath string, features []string) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{}}
	if len(features) == 0 {
		seq.Style = yaml.FlowStyle
	}
	for _, name := range features {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name})
	}
	if err := saveNode(configPath, []string{"editor", "features"}, seq); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Saved editor features", "path", configPath, "features", features)
	return nil
}

// SaveEditorValue sets a single scalar under editor, e.g. theme or keymap.
func SaveEditorValue(configPath, key, value string) error {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	return saveNode(configPath, []string{"editor", key}, node)
}

// saveNode sets the value at path, creating intermediate mappings, and
// writes the file atomically.
func saveNode(configPath string, path []string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	if err := setPath(doc.Content[0], path, value); err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// setPath walks mapping nodes along path and replaces (or appends) the final
// key's value.
func setPath(mapping *yaml.Node, path []string, value *yaml.Node) error {
	key := path[0]
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != key {
			continue
		}
		if len(path) == 1 {
			// Keep any comment attached to the old value.
			old := mapping.Content[i+1]
			value.LineComment = old.LineComment
			value.HeadComment = old.HeadComment
			mapping.Content[i+1] = value
			return nil
		}
		child := mapping.Content[i+1]
		if child.Kind == yaml.ScalarNode && (child.Tag == "!!null" || child.Value == "") {
			child.Kind = yaml.MappingNode
			child.Tag = "!!map"
			child.Value = ""
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("config key %s is not a mapping", key)
		}
		return setPath(child, path[1:], value)
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	if len(path) == 1 {
		mapping.Content = append(mapping.Content, keyNode, value)
		return nil
	}
	child := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	mapping.Content = append(mapping.Content, keyNode, child)
	return setPath(child, path[1:], value)
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".mirrorkit.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
