package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Planner    Planner `yaml:"planner"`
	Benchmarks Bench   `yaml:"benchmarks"`
	Suites     []Suite `yaml:"suites"`
	Results    Results `yaml:"results"`
	Docker     Docker  `yaml:"docker"`
}

// Planner describes the external solver binary. The harness treats it as a
// black box invoked with positional domain, problem and plan-output paths.
type Planner struct {
	Bin  string   `yaml:"bin"`
	Args []string `yaml:"args"`
}

type Bench struct {
	// Root of the benchmark tree, containing one directory per problem
	// set (e.g. HDDL-total, HDDL-partial) with per-suite subdirectories.
	Root string `yaml:"root"`
	// TotalSet and PartialSet name the problem-set directories under Root.
	TotalSet   string `yaml:"total_set"`
	PartialSet string `yaml:"partial_set"`
}

// Suite declares one registered suite. Domain and Problems may be left
// empty, in which case the registry discovers them under the benchmark
// tree the way the original harness did.
type Suite struct {
	Name        string   `yaml:"name"`
	Domain      string   `yaml:"domain"`
	Problems    []string `yaml:"problems"`
	MaxProblems int      `yaml:"max_problems"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

type Docker struct {
	Image string `yaml:"image"`
	// BenchMount is where the benchmark root is bind-mounted inside the
	// planner container.
	BenchMount string `yaml:"bench_mount"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Planner.Bin == "" && cfg.Docker.Image == "" {
		return fmt.Errorf("planner bin or docker image is required")
	}
	if len(cfg.Suites) == 0 {
		return fmt.Errorf("no suites defined")
	}
	for i := range cfg.Suites {
		s := &cfg.Suites[i]
		if s.Name == "" {
			return fmt.Errorf("suite %d: name is required", i)
		}
		if len(s.Problems) > 0 && s.Domain == "" {
			return fmt.Errorf("suite %q: domain is required with an explicit problem list", s.Name)
		}
		if s.MaxProblems < 0 {
			return fmt.Errorf("suite %q: max_problems must not be negative", s.Name)
		}
	}
	if cfg.Benchmarks.TotalSet == "" {
		cfg.Benchmarks.TotalSet = "HDDL-total"
	}
	if cfg.Benchmarks.PartialSet == "" {
		cfg.Benchmarks.PartialSet = "HDDL-partial"
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	if cfg.Docker.Image != "" && cfg.Docker.BenchMount == "" {
		cfg.Docker.BenchMount = "/benchmarks"
	}
	return nil
}
