package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/ports"
)

const (
	configName     = "config"
	configType     = "toml"
	scriptsPathKey = "scripts.path"
	configDirName  = ".scriptpad"
	scriptsDirName = "scripts"
	manifestFile   = "scripts.toml"
)

// Repository reads the script catalog from a scripts directory and its
// optional scripts.toml manifest. Manifest entries carry shortcuts,
// descriptions and interpreter overrides; plain files in the directory
// are picked up as entries of their own.
type Repository struct {
	scriptsDir string
	mu         *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.ScriptRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultDir := filepath.Join(homeDir, configDirName, scriptsDirName)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDirName))
	cfg.SetDefault(scriptsPathKey, defaultDir)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	scriptsDir := cfg.GetString(scriptsPathKey)
	if scriptsDir == "" {
		return nil, errors.New("scripts path is empty")
	}
	scriptsDir, err = normalizeScriptsDir(scriptsDir)
	if err != nil {
		return nil, err
	}

	return &Repository{scriptsDir: scriptsDir, mu: lockForPath(scriptsDir)}, nil
}

func (r *Repository) GetByName(ctx context.Context, name string) (domain.Script, error) {
	scripts, err := r.List(ctx)
	if err != nil {
		return domain.Script{}, err
	}

	for _, script := range scripts {
		if script.Name == name {
			return script, nil
		}
	}

	return domain.Script{}, fmt.Errorf("%q: %w", name, domain.ErrScriptNotFound)
}

func (r *Repository) List(ctx context.Context) ([]domain.Script, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readManifest()
	if err != nil {
		return nil, err
	}

	scripts := make([]domain.Script, 0, len(file.Scripts))
	seen := make(map[string]struct{}, len(file.Scripts))
	for _, entry := range file.Scripts {
		script := r.fromSchema(entry)
		if err := script.Validate(); err != nil {
			return nil, fmt.Errorf("manifest entry: %w", err)
		}
		scripts = append(scripts, script)
		seen[filepath.Base(script.Path)] = struct{}{}
	}

	discovered, err := r.scanDir(seen)
	if err != nil {
		return nil, err
	}
	scripts = append(scripts, discovered...)

	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Name < scripts[j].Name })

	return scripts, nil
}

func (r *Repository) readManifest() (fileSchema, error) {
	data, err := os.ReadFile(filepath.Join(r.scriptsDir, manifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read scripts manifest: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode scripts manifest: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

// scanDir picks up script files that have no manifest entry. Hidden
// files and the manifest itself are skipped.
func (r *Repository) scanDir(seen map[string]struct{}) ([]domain.Script, error) {
	entries, err := os.ReadDir(r.scriptsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read scripts directory: %w", err)
	}

	var scripts []domain.Script
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == manifestFile || strings.HasPrefix(name, ".") {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		scripts = append(scripts, domain.Script{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(r.scriptsDir, name),
		})
	}

	return scripts, nil
}

func (r *Repository) fromSchema(entry scriptSchema) domain.Script {
	path := entry.Path
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(r.scriptsDir, path)
	}

	return domain.Script{
		Name:        entry.Name,
		Path:        path,
		Description: entry.Description,
		Shortcut:    entry.Shortcut,
		Interpreter: entry.Interpreter,
	}
}

func normalizeScriptsDir(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve scripts path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu

	return mu
}
