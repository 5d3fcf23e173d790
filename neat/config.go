package neat

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for the evolutionary run.
type Config struct {
	Neat         NeatConfig
	Genome       GenomeConfig
	Reproduction ReproductionConfig
	Stagnation   StagnationConfig
}

// NeatConfig holds population-level parameters.
type NeatConfig struct {
	PopSize              int     `ini:"pop_size"`
	FitnessThreshold     float64 `ini:"fitness_threshold"`
	NoFitnessTermination bool    `ini:"no_fitness_termination"`
	EvalWorkers          int     `ini:"eval_workers"` // 1 evaluates sequentially
	Seed                 int64   `ini:"seed"`         // 0 picks a time-based seed
}

// GenomeConfig holds the genome shape and the mutation probabilities.
type GenomeConfig struct {
	NumInputs         int      `ini:"num_inputs"`
	NumOutputs        int      `ini:"num_outputs"`
	ActivationDefault string   `ini:"activation_default"`           // activation of freshly created outputs
	ActivationOptions []string `ini:"activation_options" delim:" "` // pool for activation swaps

	ProbMutateActivation     float64 `ini:"prob_mutate_activation"`
	ProbMutateWeight         float64 `ini:"prob_mutate_weight"`
	MaxWeightChangeMagnitude float64 `ini:"max_weight_change_magnitude"`
	ProbToggleEnabled        float64 `ini:"prob_toggle_enabled"`
	ProbAddConnection        float64 `ini:"prob_add_connection"`
	ProbAddNode              float64 `ini:"prob_add_node"`
	ProbRemoveConnection     float64 `ini:"prob_remove_connection"` // applied during crossover
	ProbRemoveNode           float64 `ini:"prob_remove_node"`       // applied during crossover
	AddConnectionAttempts    int     `ini:"add_connection_attempts"`

	// Derived by Validate
	DefaultActivation Activation   `ini:"-"`
	Activations       []Activation `ini:"-"`
}

// ReproductionConfig holds parameters related to selection and reproduction.
type ReproductionConfig struct {
	Elitism          int     `ini:"elitism"`
	SurvivalFraction float64 `ini:"survival_fraction"`
	WinnerSwapProb   float64 `ini:"winner_swap_prob"`
}

// StagnationConfig holds parameters of the era schedule.
type StagnationConfig struct {
	EraLength       int      `ini:"era_length"`
	EventCycle      []string `ini:"event_cycle" delim:" "`
	CataclysmMetric string   `ini:"cataclysm_metric"`

	// Derived by Validate
	Events []Event `ini:"-"`
}

// DefaultConfig returns the configuration used when a key is absent from the file.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize:              1000,
			NoFitnessTermination: true,
			EvalWorkers:          1,
		},
		Genome: GenomeConfig{
			NumInputs:                12,
			NumOutputs:               4,
			ActivationDefault:        "sigmoid",
			ActivationOptions:        []string{"identity", "sigmoid", "relu", "leaky_relu", "tanh"},
			ProbMutateActivation:     0.05,
			ProbMutateWeight:         0.10,
			MaxWeightChangeMagnitude: 1.0,
			ProbToggleEnabled:        0.025,
			ProbAddConnection:        0.05,
			ProbAddNode:              0.05,
			ProbRemoveConnection:     0.01,
			ProbRemoveNode:           0.025,
			AddConnectionAttempts:    20,
		},
		Reproduction: ReproductionConfig{
			Elitism:          4,
			SurvivalFraction: 0.25,
			WinnerSwapProb:   0.2,
		},
		Stagnation: StagnationConfig{
			EraLength:       200,
			EventCycle:      []string{"none", "cataclysm", "resurrection"},
			CataclysmMetric: "score",
		},
	}
}

// LoadConfig loads configuration parameters from an INI file on top of DefaultConfig.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return configFromINI(cfg)
}

// LoadConfigBytes parses configuration from an in-memory INI document.
func LoadConfigBytes(data []byte) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return configFromINI(cfg)
}

func configFromINI(cfg *ini.File) (*Config, error) {
	config := DefaultConfig()

	// MapTo leaves fields untouched when their key is missing, so defaults survive.
	if err := cfg.Section("NEAT").MapTo(&config.Neat); err != nil {
		return nil, fmt.Errorf("failed to map [NEAT] section: %w", err)
	}
	if err := cfg.Section("DefaultGenome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultGenome] section: %w", err)
	}
	if err := cfg.Section("DefaultReproduction").MapTo(&config.Reproduction); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultReproduction] section: %w", err)
	}
	if err := cfg.Section("DefaultStagnation").MapTo(&config.Stagnation); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultStagnation] section: %w", err)
	}

	config.Genome.ActivationDefault = cleanIniString(config.Genome.ActivationDefault)
	config.Stagnation.CataclysmMetric = cleanIniString(config.Stagnation.CataclysmMetric)
	config.Genome.ActivationOptions = cleanIniList(config.Genome.ActivationOptions)
	config.Stagnation.EventCycle = cleanIniList(config.Stagnation.EventCycle)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks ranges and fills the derived fields.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return fmt.Errorf("config error: pop_size must be positive")
	}
	if c.Neat.EvalWorkers <= 0 {
		return fmt.Errorf("config error: eval_workers must be positive")
	}

	g := &c.Genome
	if g.NumInputs <= 0 {
		return fmt.Errorf("config error: num_inputs must be positive")
	}
	if g.NumOutputs <= 0 {
		return fmt.Errorf("config error: num_outputs must be positive")
	}
	probs := []struct {
		name string
		v    float64
	}{
		{"prob_mutate_activation", g.ProbMutateActivation},
		{"prob_mutate_weight", g.ProbMutateWeight},
		{"prob_toggle_enabled", g.ProbToggleEnabled},
		{"prob_add_connection", g.ProbAddConnection},
		{"prob_add_node", g.ProbAddNode},
		{"prob_remove_connection", g.ProbRemoveConnection},
		{"prob_remove_node", g.ProbRemoveNode},
		{"survival_fraction", c.Reproduction.SurvivalFraction},
		{"winner_swap_prob", c.Reproduction.WinnerSwapProb},
	}
	for _, p := range probs {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", p.name)
		}
	}
	if g.MaxWeightChangeMagnitude < 0 {
		return fmt.Errorf("config error: max_weight_change_magnitude cannot be negative")
	}
	if g.AddConnectionAttempts <= 0 {
		return fmt.Errorf("config error: add_connection_attempts must be positive")
	}

	def, err := GetActivation(g.ActivationDefault)
	if err != nil {
		return fmt.Errorf("config error: activation_default: %w", err)
	}
	g.DefaultActivation = def
	if len(g.ActivationOptions) == 0 {
		return fmt.Errorf("config error: activation_options must be specified")
	}
	g.Activations = g.Activations[:0]
	for _, name := range g.ActivationOptions {
		a, err := GetActivation(name)
		if err != nil {
			return fmt.Errorf("config error: activation_options: %w", err)
		}
		if !slices.Contains(g.Activations, a) {
			g.Activations = append(g.Activations, a)
		}
	}

	if c.Reproduction.Elitism < 0 {
		return fmt.Errorf("config error: elitism cannot be negative")
	}
	if c.Reproduction.Elitism > c.Neat.PopSize {
		return fmt.Errorf("config error: elitism (%d) exceeds pop_size (%d)", c.Reproduction.Elitism, c.Neat.PopSize)
	}

	s := &c.Stagnation
	if s.EraLength <= 0 {
		return fmt.Errorf("config error: era_length must be positive")
	}
	if len(s.EventCycle) == 0 {
		return fmt.Errorf("config error: event_cycle must list at least one event")
	}
	s.Events = s.Events[:0]
	for _, name := range s.EventCycle {
		ev, err := ParseEvent(name)
		if err != nil {
			return fmt.Errorf("config error: event_cycle: %w", err)
		}
		s.Events = append(s.Events, ev)
	}
	if !slices.Contains(MetricNames, s.CataclysmMetric) {
		return fmt.Errorf("config error: invalid cataclysm_metric '%s', must be one of %s",
			s.CataclysmMetric, strings.Join(MetricNames, ", "))
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// cleanIniList trims list elements and drops the empty ones.
func cleanIniList(items []string) []string {
	out := items[:0]
	for _, it := range items {
		if it = cleanIniString(it); it != "" {
			out = append(out, strings.ToLower(it))
		}
	}
	return out
}
