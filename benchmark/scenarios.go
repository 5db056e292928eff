package benchmark

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-pointscale/images"
)

// Scenario defines a specific test configuration
type Scenario struct {
	Name       string            `json:"name"`
	Engine     EngineType        `json:"engine"`
	Source     images.Resolution `json:"source"`
	Target     images.Resolution `json:"target"`
	Workers    int               `json:"workers"`
	Iterations int               `json:"iterations"`
	WarmupRuns int               `json:"warmup_runs"`
}

// Validate reports whether the scenario can run.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario has no name")
	}
	if !s.Engine.Valid() {
		return errors.Errorf("scenario %s: unknown engine %q", s.Name, s.Engine)
	}
	if s.Source.Pixels.Width <= 0 || s.Source.Pixels.Height <= 0 {
		return errors.Errorf("scenario %s: empty source %s", s.Name, s.Source)
	}
	if s.Target.Pixels.Width <= 0 || s.Target.Pixels.Height <= 0 {
		return errors.Errorf("scenario %s: empty target %s", s.Name, s.Target)
	}
	if s.Iterations <= 0 {
		return errors.Errorf("scenario %s: iterations must be positive", s.Name)
	}
	if s.WarmupRuns < 0 || s.Workers < 0 {
		return errors.Errorf("scenario %s: negative warmups or workers", s.Name)
	}
	return nil
}

// ScenarioBuilder helps build test scenarios with fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a new scenario builder
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:       name,
			Engine:     EnginePointscale,
			Iterations: 100,
			WarmupRuns: 10,
		},
	}
}

// WithEngine sets the engine type
func (sb *ScenarioBuilder) WithEngine(engine EngineType) *ScenarioBuilder {
	sb.scenario.Engine = engine
	return sb
}

// WithSource sets the source resolution
func (sb *ScenarioBuilder) WithSource(res images.Resolution) *ScenarioBuilder {
	sb.scenario.Source = res
	return sb
}

// WithTarget sets the target resolution
func (sb *ScenarioBuilder) WithTarget(res images.Resolution) *ScenarioBuilder {
	sb.scenario.Target = res
	return sb
}

// WithWorkers sets the resize parallelism (0 = GOMAXPROCS)
func (sb *ScenarioBuilder) WithWorkers(workers int) *ScenarioBuilder {
	sb.scenario.Workers = workers
	return sb
}

// WithIterations sets the number of test iterations
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of warmup runs
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured test scenario
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related test scenarios
type ScenarioSet struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scenarios   []Scenario `json:"scenarios"`
}

// PredefinedScenarios contains common benchmark scenario sets
type PredefinedScenarios struct{}

func preset(t images.ResolutionType) images.Resolution {
	res, _ := images.GetResolutionByType(t)
	return res
}

// GetQuickScenarios returns a smaller set for quick testing
func (ps *PredefinedScenarios) GetQuickScenarios() *ScenarioSet {
	pairs := [][2]images.ResolutionType{
		{images.ResolutionTex256, images.ResolutionTex1024},
		{images.ResolutionHD, images.ResolutionFHD},
		{images.ResolutionFHD, images.ResolutionNHD},
	}

	scenarios := make([]Scenario, 0, len(pairs))
	for _, p := range pairs {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("quick_%s_to_%s", p[0], p[1])).
			WithSource(preset(p[0])).
			WithTarget(preset(p[1])).
			WithIterations(20).
			WithWarmupRuns(2).
			Build())
	}

	return &ScenarioSet{
		Name:        "Quick Performance Test",
		Description: "Upscale and downscale with common configurations",
		Scenarios:   scenarios,
	}
}

// GetWorkerScalingScenarios resizes source to target with 1, 2, 4 ... maxWorkers workers.
func (ps *PredefinedScenarios) GetWorkerScalingScenarios(source, target images.Resolution, maxWorkers int) *ScenarioSet {
	scenarios := make([]Scenario, 0)
	for w := 1; w <= maxWorkers; w *= 2 {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("workers_%d", w)).
			WithSource(source).
			WithTarget(target).
			WithWorkers(w).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Worker Scaling - %s to %s", source, target),
		Description: "Compares parallel speedup across worker counts",
		Scenarios:   scenarios,
	}
}

// GetTextureScenarios doubles every texture preset, the classic pixel-art workflow.
func (ps *PredefinedScenarios) GetTextureScenarios() *ScenarioSet {
	scenarios := make([]Scenario, 0)
	for _, res := range images.GetAllResolutions() {
		if res.Kind != images.KindTexture || res.Name == images.ResolutionTex4096 {
			continue
		}
		target := images.Resolution{Pixels: images.ResolutionPixels{
			Width:  res.Pixels.Width * 2,
			Height: res.Pixels.Height * 2,
		}}
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("texture_%s_x2", res.Name)).
			WithSource(res).
			WithTarget(target).
			Build())
	}

	return &ScenarioSet{
		Name:        "Texture Doubling",
		Description: "Doubles each square texture preset",
		Scenarios:   scenarios,
	}
}

// GetEngineComparisonScenarios runs the same resize on every engine.
func (ps *PredefinedScenarios) GetEngineComparisonScenarios(source, target images.Resolution) *ScenarioSet {
	scenarios := make([]Scenario, 0, len(Engines()))
	for _, engine := range Engines() {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("engine_%s", engine)).
			WithEngine(engine).
			WithSource(source).
			WithTarget(target).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Engine Comparison - %s to %s", source, target),
		Description: "Compares pointscale against third-party nearest-neighbour resizers",
		Scenarios:   scenarios,
	}
}

// SaveScenarioSet saves a scenario set to a JSON file
func SaveScenarioSet(scenarioSet *ScenarioSet, filename string) error {
	data, err := json.MarshalIndent(scenarioSet, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal scenario set")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write scenario file")
	}

	return nil
}

// LoadScenarioSet loads a scenario set from a JSON file
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}

	var scenarioSet ScenarioSet
	if err := json.Unmarshal(data, &scenarioSet); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal scenario set")
	}

	return &scenarioSet, nil
}
