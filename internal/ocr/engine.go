// Package ocr turns label images into raw text through a pluggable engine.
package ocr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Engine recognizes the text printed in an encoded image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Config selects and tunes an engine.
type Config struct {
	Engine        string
	Languages     []string
	TesseractPath string
}

// Factory builds an engine from configuration.
type Factory func(Config) (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes an engine available to New under name. Registering the same
// name twice replaces the earlier factory.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = factory
}

// Available lists registered engine names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the engine named by cfg.Engine.
func New(cfg Config) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Engine))
	if name == "" {
		name = CommandEngineName
	}
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("ocr: unknown engine %q (available: %s)", cfg.Engine, strings.Join(Available(), ", "))
	}
	return factory(cfg)
}

func init() {
	Register(CommandEngineName, func(cfg Config) (Engine, error) {
		return NewCommand(cfg.TesseractPath, cfg.Languages), nil
	})
}
