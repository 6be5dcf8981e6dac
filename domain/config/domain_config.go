package config

// DomainConfig holds all configurable business rules and constraints
// for the conversation graph
type DomainConfig struct {
	// Merge constraints
	MaxMergeParents       int // hard ceiling, attempts beyond it are rejected
	ComplexMergeThreshold int // advisory warning threshold, does not block

	// Card constraints
	MaxMessagesPerCard   int
	MaxTagsPerCard       int
	MaxTitleLength       int
	MaxCardsPerWorkspace int

	// Undo/redo
	UndoDepth int

	// Layout geometry (fixed card dimensions, gaps between bounding boxes)
	CardWidth    float64
	CardHeight   float64
	LayoutGapX   float64
	LayoutGapY   float64
	LayoutJitter float64

	// Branch placement
	BranchSpawnRadius float64
}

// Provider hands out the rule set currently in force. Implementations
// may swap the underlying config at runtime, so callers read Current()
// per operation rather than caching the pointer.
type Provider interface {
	Current() *DomainConfig
}

// Static is a Provider whose config never changes. Useful in tests and
// anywhere hot reload is not wired.
type Static struct {
	Config *DomainConfig
}

func (s Static) Current() *DomainConfig {
	if s.Config == nil {
		return DefaultDomainConfig()
	}
	return s.Config
}

// StaticProvider wraps cfg in a fixed Provider. A nil cfg yields the
// defaults.
func StaticProvider(cfg *DomainConfig) Provider {
	return Static{Config: cfg}
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxMergeParents:       5,
		ComplexMergeThreshold: 3,

		MaxMessagesPerCard:   2000,
		MaxTagsPerCard:       20,
		MaxTitleLength:       200,
		MaxCardsPerWorkspace: 5000,

		UndoDepth: 100,

		CardWidth:    280,
		CardHeight:   180,
		LayoutGapX:   48,
		LayoutGapY:   64,
		LayoutJitter: 6,

		BranchSpawnRadius: 120,
	}
}
