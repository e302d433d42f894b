package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fastrecycle-hq/salvage/pkg/rules"
)

// Config controls which files of a rules directory are read and how.
type Config struct {
	// Directory holds the rule documents.
	Directory string

	// BaseDocument is an optional file name loaded before every prefixed document.
	BaseDocument string

	// Prefix selects rule documents by file name, case-insensitively.
	Prefix string

	// Extensions lists the accepted file extensions.
	Extensions []string

	// ExclusionDocument is an optional file holding a list of excluded identifiers.
	ExclusionDocument string

	// MaxFileSize is the largest document accepted, in bytes.
	MaxFileSize int64
}

// DefaultConfig returns the conventional layout.
func DefaultConfig() *Config {
	return &Config{
		Directory:         "Data/SKSE/Plugins/FastRecycle",
		Prefix:            "mats_",
		Extensions:        []string{".json", ".yaml", ".yml"},
		ExclusionDocument: "ignore.json",
		MaxFileSize:       10 * 1024 * 1024,
	}
}

// Directory reads rule documents from one directory on every call.
type Directory struct {
	config *Config
	logger *slog.Logger
}

// NewDirectory creates a directory source. A nil config means DefaultConfig().
func NewDirectory(config *Config, logger *slog.Logger) *Directory {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		config: config,
		logger: logger.With("component", "rules.source"),
	}
}

// Files returns the rule document paths in load order: the base document,
// then every prefixed document sorted by name. The exclusion document is not
// included.
func (d *Directory) Files() ([]string, error) {
	info, err := os.Stat(d.config.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &rules.LoadError{Source: d.config.Directory, Message: "directory not found", Cause: err}
		}
		return nil, &rules.LoadError{Source: d.config.Directory, Message: "failed to access directory", Cause: err}
	}
	if !info.IsDir() {
		return nil, &rules.LoadError{Source: d.config.Directory, Message: "not a directory"}
	}

	entries, err := os.ReadDir(d.config.Directory)
	if err != nil {
		return nil, &rules.LoadError{Source: d.config.Directory, Message: "failed to list directory", Cause: err}
	}

	var files []string
	if d.config.BaseDocument != "" {
		files = append(files, filepath.Join(d.config.Directory, d.config.BaseDocument))
	}

	var prefixed []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.EqualFold(name, d.config.BaseDocument) || strings.EqualFold(name, d.config.ExclusionDocument) {
			continue
		}
		if !d.isRuleDocument(name) {
			continue
		}
		prefixed = append(prefixed, name)
	}
	sort.Strings(prefixed)

	for _, name := range prefixed {
		files = append(files, filepath.Join(d.config.Directory, name))
	}
	return files, nil
}

func (d *Directory) isRuleDocument(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, strings.ToLower(d.config.Prefix)) {
		return false
	}
	return hasExtension(lower, d.config.Extensions)
}

// LoadDocuments implements recycle.DocumentSource. Every document is read and
// decoded; any failure fails the whole call with the collected errors. A
// missing exclusion document means no exclusions.
func (d *Directory) LoadDocuments(ctx context.Context) ([]*rules.RuleDocument, error) {
	startTime := time.Now()

	files, err := d.Files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &rules.LoadError{Source: d.config.Directory, Message: "no rule documents found"}
	}

	d.logger.Debug("rule documents found", "directory", d.config.Directory, "files", files)

	var docs []*rules.RuleDocument
	errList := &rules.ErrorList{}

	for _, path := range files {
		data, err := d.readFile(path)
		if err != nil {
			errList.Add(err)
			continue
		}
		doc, err := rules.DecodeDocument(path, data)
		if err != nil {
			errList.Add(err)
			continue
		}
		docs = append(docs, doc)
	}

	if d.config.ExclusionDocument != "" {
		exclusions, err := d.loadExclusions()
		if err != nil {
			errList.Add(err)
		} else if exclusions != nil {
			docs = append(docs, exclusions)
		}
	}

	if err := errList.ToError(); err != nil {
		return nil, err
	}

	d.logger.Debug("rule documents loaded",
		"documents", len(docs),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	return docs, nil
}

func (d *Directory) loadExclusions() (*rules.RuleDocument, error) {
	path := filepath.Join(d.config.Directory, d.config.ExclusionDocument)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		d.logger.Error("Ignored keywords file does not exist. All items will be recycled.", "path", path)
		return nil, nil
	}
	data, err := d.readFile(path)
	if err != nil {
		return nil, err
	}
	return rules.DecodeExclusions(path, data)
}

// readFile applies the existence, regular-file and size checks before reading.
func (d *Directory) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &rules.LoadError{Source: path, Message: "file not found", Cause: err}
		}
		if os.IsPermission(err) {
			return nil, &rules.LoadError{Source: path, Message: "permission denied", Cause: err}
		}
		return nil, &rules.LoadError{Source: path, Message: "failed to access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &rules.LoadError{Source: path, Message: "not a regular file"}
	}
	if d.config.MaxFileSize > 0 && info.Size() > d.config.MaxFileSize {
		return nil, &rules.LoadError{
			Source:  path,
			Message: fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), d.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &rules.LoadError{Source: path, Message: "failed to read file", Cause: err}
	}
	return data, nil
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, valid := range extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}
