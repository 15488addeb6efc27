package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// historyYAML is the on-disk shape of the history section. The delay is
// written as a duration string so the file stays readable.
type historyYAML struct {
	DebounceDelay                   string `yaml:"debounce_delay"`
	SeedInitialSnapshot             bool   `yaml:"seed_initial_snapshot"`
	DebounceCapturesEditTimeContent bool   `yaml:"debounce_captures_edit_time_content"`
	DedupCheckpoints                bool   `yaml:"dedup_checkpoints"`
	CheckpointOnDeletion            bool   `yaml:"checkpoint_on_deletion"`
	CancelPendingOnCommand          bool   `yaml:"cancel_pending_on_command"`
	MaxDepth                        int    `yaml:"max_depth"`
}

// SaveHistory updates the history section in the config file.
// This preserves comments and formatting in other sections by using yaml.Node.
func SaveHistory(configPath string, h HistoryConfig) error {
	if err := ValidateHistory(h); err != nil {
		return err
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	historyNode, err := buildHistoryNode(h)
	if err != nil {
		return fmt.Errorf("building history node: %w", err)
	}

	if err := setTopLevelKey(&doc, "history", historyNode); err != nil {
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

func buildHistoryNode(h HistoryConfig) (*yaml.Node, error) {
	var node yaml.Node
	err := node.Encode(historyYAML{
		DebounceDelay:                   h.DebounceDelay.String(),
		SeedInitialSnapshot:             h.SeedInitialSnapshot,
		DebounceCapturesEditTimeContent: h.DebounceCapturesEditTimeContent,
		DedupCheckpoints:                h.DedupCheckpoints,
		CheckpointOnDeletion:            h.CheckpointOnDeletion,
		CancelPendingOnCommand:          h.CancelPendingOnCommand,
		MaxDepth:                        h.MaxDepth,
	})
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// setTopLevelKey replaces key in the document's root mapping, or appends it.
func setTopLevelKey(doc *yaml.Node, key string, value *yaml.Node) error {
	if doc.Kind == 0 {
		// Empty or new file - create document structure
		*doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: key},
						value,
					},
				},
			},
		}
		return nil
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return fmt.Errorf("config is not a YAML document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("config root must be a mapping")
	}

	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == key {
			// Keep any comment attached to the old section header
			value.HeadComment = root.Content[i+1].HeadComment
			root.Content[i+1] = value
			return nil
		}
	}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
	return nil
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".undopad.yaml.tmp.*")
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

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
