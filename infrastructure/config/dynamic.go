package config

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	domaincfg "github.com/modryn-studio/ProjectLoom-sub000/domain/config"
)

// DomainRulesFile is the YAML shape of the hot-reloadable domain rules.
// Zero values mean "keep the current setting".
type DomainRulesFile struct {
	MaxMergeParents       int     `yaml:"maxMergeParents"`
	ComplexMergeThreshold int     `yaml:"complexMergeThreshold"`
	MaxMessagesPerCard    int     `yaml:"maxMessagesPerCard"`
	MaxTagsPerCard        int     `yaml:"maxTagsPerCard"`
	MaxTitleLength        int     `yaml:"maxTitleLength"`
	MaxCardsPerWorkspace  int     `yaml:"maxCardsPerWorkspace"`
	UndoDepth             int     `yaml:"undoDepth"`
	CardWidth             float64 `yaml:"cardWidth"`
	CardHeight            float64 `yaml:"cardHeight"`
	LayoutGapX            float64 `yaml:"layoutGapX"`
	LayoutGapY            float64 `yaml:"layoutGapY"`
}

// DynamicConfig serves the current domain rules and lets the watcher
// swap them at runtime. Readers get a stable pointer; a reload installs
// a fresh struct rather than mutating the one in use.
type DynamicConfig struct {
	mu        sync.RWMutex
	current   *domaincfg.DomainConfig
	listeners []func(*domaincfg.DomainConfig)
}

// NewDynamicConfig wraps an initial rule set
func NewDynamicConfig(initial *domaincfg.DomainConfig) *DynamicConfig {
	if initial == nil {
		initial = domaincfg.DefaultDomainConfig()
	}
	return &DynamicConfig{current: initial}
}

// Current returns the active domain rules
func (d *DynamicConfig) Current() *domaincfg.DomainConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

// OnChange registers a callback invoked after every successful reload
func (d *DynamicConfig) OnChange(fn func(*domaincfg.DomainConfig)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// LoadFile reads the YAML rules file and installs the merged result
func (d *DynamicConfig) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file DomainRulesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return err
	}

	d.mu.Lock()
	next := *d.current
	applyOverrides(&next, file)
	d.current = &next
	listeners := append(d.listeners[:0:0], d.listeners...)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(&next)
	}
	return nil
}

func applyOverrides(cfg *domaincfg.DomainConfig, file DomainRulesFile) {
	if file.MaxMergeParents > 0 {
		cfg.MaxMergeParents = file.MaxMergeParents
	}
	if file.ComplexMergeThreshold > 0 {
		cfg.ComplexMergeThreshold = file.ComplexMergeThreshold
	}
	if file.MaxMessagesPerCard > 0 {
		cfg.MaxMessagesPerCard = file.MaxMessagesPerCard
	}
	if file.MaxTagsPerCard > 0 {
		cfg.MaxTagsPerCard = file.MaxTagsPerCard
	}
	if file.MaxTitleLength > 0 {
		cfg.MaxTitleLength = file.MaxTitleLength
	}
	if file.MaxCardsPerWorkspace > 0 {
		cfg.MaxCardsPerWorkspace = file.MaxCardsPerWorkspace
	}
	if file.UndoDepth > 0 {
		cfg.UndoDepth = file.UndoDepth
	}
	if file.CardWidth > 0 {
		cfg.CardWidth = file.CardWidth
	}
	if file.CardHeight > 0 {
		cfg.CardHeight = file.CardHeight
	}
	if file.LayoutGapX > 0 {
		cfg.LayoutGapX = file.LayoutGapX
	}
	if file.LayoutGapY > 0 {
		cfg.LayoutGapY = file.LayoutGapY
	}
}
