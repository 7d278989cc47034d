package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// InitConfig writes a default configuration file to the default config
// path and returns that path.
//
// Fails if the file already exists unless force is set. The generated
// file round-trips through Load unchanged.
func InitConfig(force bool) (string, error) {
	configPath := GetDefaultConfigPath()

	if _, err := os.Stat(configPath); err == nil && !force {
		return "", fmt.Errorf("config file already exists at %s (use force to overwrite)", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := generateDefaultYAML()
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

// generateDefaultYAML renders the default configuration as YAML with a
// header comment.
//
// Keys are emitted in viper's snake_case form so the file round-trips
// through Load; yaml struct marshaling would lowercase the Go field
// names instead.
func generateDefaultYAML() ([]byte, error) {
	var cfg Config
	ApplyDefaults(&cfg)

	doc := map[string]any{
		"logging": map[string]any{
			"level":  cfg.Logging.Level,
			"format": cfg.Logging.Format,
			"output": cfg.Logging.Output,
		},
		"server": map[string]any{
			"shutdown_timeout": cfg.Server.ShutdownTimeout.String(),
		},
		"identity": map[string]any{
			"uid":    cfg.Identity.UID,
			"gid":    cfg.Identity.GID,
			"groups": []uint32{},
		},
		"filesystem": map[string]any{
			"max_link_depth": cfg.Filesystem.MaxLinkDepth,
		},
		"metadata": map[string]any{
			"type": cfg.Metadata.Type,
			"badger": map[string]any{
				"path": cfg.Metadata.Badger["path"],
			},
		},
		"blob": map[string]any{
			"hot_max_bytes":  cfg.Blob.HotMaxBytes,
			"warm_max_bytes": cfg.Blob.WarmMaxBytes,
			"hot": map[string]any{
				"type": cfg.Blob.Hot.Type,
			},
		},
		"gc": map[string]any{
			"enabled":    cfg.GC.Enabled,
			"interval":   cfg.GC.Interval.String(),
			"batch_size": cfg.GC.BatchSize,
			"dry_run":    cfg.GC.DryRun,
		},
		"metrics": map[string]any{
			"enabled": cfg.Metrics.Enabled,
		},
	}

	body, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default config: %w", err)
	}

	header := "# fsx Configuration File\n" +
		"#\n" +
		"# Every value here can be overridden with FSX_* environment\n" +
		"# variables, e.g. FSX_LOGGING_LEVEL=DEBUG.\n\n"

	return append([]byte(header), body...), nil
}
