package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/anime-shed/vegindex-go/internal/analyzer"
	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
)

// Collection names accepted by ForRequest.
const (
	CollectionAll        = "all"
	CollectionLinear     = "linear"
	CollectionNormalized = "normalized"
)

// SelectionStrategy decides which formulas an analysis computes
type SelectionStrategy interface {
	Formulas() []string
	GetStrategyName() string
}

// AllFormulasStrategy selects every registered formula
type AllFormulasStrategy struct{}

// NewAllFormulasStrategy creates a strategy selecting the whole registry
func NewAllFormulasStrategy() SelectionStrategy {
	return AllFormulasStrategy{}
}

// Formulas returns every registered name
func (AllFormulasStrategy) Formulas() []string { return rgbvi.Names() }

// GetStrategyName returns the strategy name
func (AllFormulasStrategy) GetStrategyName() string { return CollectionAll }

// LinearStrategy selects the linear-difference collection
type LinearStrategy struct{}

// NewLinearStrategy creates a new linear strategy
func NewLinearStrategy() SelectionStrategy {
	return LinearStrategy{}
}

// Formulas returns the linear collection
func (LinearStrategy) Formulas() []string { return rgbvi.LinearNames() }

// GetStrategyName returns the strategy name
func (LinearStrategy) GetStrategyName() string { return CollectionLinear }

// NormalizedStrategy selects the ratio and adaptive collection
type NormalizedStrategy struct{}

// NewNormalizedStrategy creates a new normalized strategy
func NewNormalizedStrategy() SelectionStrategy {
	return NormalizedStrategy{}
}

// Formulas returns the normalized collection
func (NormalizedStrategy) Formulas() []string { return rgbvi.NormalizedNames() }

// GetStrategyName returns the strategy name
func (NormalizedStrategy) GetStrategyName() string { return CollectionNormalized }

// CustomStrategy selects an explicit list of formulas
type CustomStrategy struct {
	names []string
}

// NewCustomStrategy validates names against the registry. Duplicates are
// dropped, keeping the first occurrence.
func NewCustomStrategy(names []string) (SelectionStrategy, error) {
	seen := make(map[string]bool, len(names))
	selected := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if _, ok := rgbvi.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %q", rgbvi.ErrUnknownFormula, raw)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		selected = append(selected, name)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: empty selection", rgbvi.ErrUnknownFormula)
	}
	return &CustomStrategy{names: selected}, nil
}

// Formulas returns the selected names in request order
func (s *CustomStrategy) Formulas() []string {
	return append([]string(nil), s.names...)
}

// GetStrategyName returns the strategy name
func (s *CustomStrategy) GetStrategyName() string {
	return "custom"
}

// ForRequest picks a strategy: explicit formulas win, then a named
// collection, then every formula.
func ForRequest(collection string, formulas []string) (SelectionStrategy, error) {
	if len(formulas) > 0 {
		return NewCustomStrategy(formulas)
	}
	switch strings.ToLower(strings.TrimSpace(collection)) {
	case "", CollectionAll:
		return NewAllFormulasStrategy(), nil
	case CollectionLinear:
		return NewLinearStrategy(), nil
	case CollectionNormalized:
		return NewNormalizedStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
}

// AnalysisContext manages the selection strategy
type AnalysisContext struct {
	analyzer analyzer.IndexAnalyzer
	strategy SelectionStrategy
}

// NewAnalysisContext creates a new analysis context
func NewAnalysisContext(a analyzer.IndexAnalyzer, strategy SelectionStrategy) *AnalysisContext {
	return &AnalysisContext{
		analyzer: a,
		strategy: strategy,
	}
}

// SetStrategy changes the selection strategy
func (c *AnalysisContext) SetStrategy(strategy SelectionStrategy) {
	c.strategy = strategy
}

// ExecuteAnalysis computes the strategy's formulas with options
func (c *AnalysisContext) ExecuteAnalysis(ctx context.Context, img *rgbvi.Image, options analyzer.AnalysisOptions) (*analyzer.IndexReport, error) {
	report, err := c.analyzer.Analyze(ctx, img, options.WithFormulas(c.strategy.Formulas()...))
	if err != nil {
		return nil, err
	}
	report.Selection = c.strategy.GetStrategyName()
	return report, nil
}

// GetCurrentStrategy returns the current strategy name
func (c *AnalysisContext) GetCurrentStrategy() string {
	return c.strategy.GetStrategyName()
}
