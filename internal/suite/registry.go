package suite

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/signalnine/planbench/internal/config"
)

// ErrUnknownSuite is returned by Resolve for names not in the registry.
var ErrUnknownSuite = errors.New("unknown suite")

// PartialPrefix marks suites drawn from the partial-order problem set.
// A partial suite shares its domain semantics with the total-order suite
// of the same base name; only the instance list differs.
const PartialPrefix = "partial-"

type Instance struct {
	ID      string
	Problem string
}

type Suite struct {
	Name      string
	Domain    string
	Instances []Instance
}

// Registry is an immutable suite table built once at startup. It is
// passed by value into the harness; nothing mutates it after Load.
type Registry struct {
	names  []string
	suites map[string]Suite
}

// Load builds the registry from the configured suite table, discovering
// domain and problem files under the benchmark tree where the config
// leaves them implicit.
func Load(cfg *config.Config) (Registry, error) {
	reg := Registry{suites: make(map[string]Suite, len(cfg.Suites))}
	for _, sc := range cfg.Suites {
		s, err := buildSuite(cfg, sc)
		if err != nil {
			return Registry{}, fmt.Errorf("suite %q: %w", sc.Name, err)
		}
		if _, dup := reg.suites[s.Name]; dup {
			return Registry{}, fmt.Errorf("suite %q declared twice", s.Name)
		}
		reg.suites[s.Name] = s
		reg.names = append(reg.names, s.Name)
	}
	return reg, nil
}

// Resolve looks up a suite by name.
func (r Registry) Resolve(name string) (Suite, error) {
	s, ok := r.suites[name]
	if !ok {
		return Suite{}, fmt.Errorf("%w: %s", ErrUnknownSuite, name)
	}
	return s, nil
}

// Names lists registered suites in declaration order.
func (r Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

func buildSuite(cfg *config.Config, sc config.Suite) (Suite, error) {
	if len(sc.Problems) > 0 {
		return explicitSuite(sc)
	}
	return discoverSuite(cfg, sc)
}

func explicitSuite(sc config.Suite) (Suite, error) {
	s := Suite{Name: sc.Name, Domain: sc.Domain}
	for _, p := range sc.Problems {
		s.Instances = append(s.Instances, Instance{ID: instanceID(p), Problem: p})
	}
	return capInstances(s, sc.MaxProblems), nil
}

// discoverSuite mirrors the original benchmark layout: the suite lives at
// <root>/<set>/<base>, its domain is the first *.?ddl under domains/ and
// its instances are the sorted *.?ddl files under problems/.
func discoverSuite(cfg *config.Config, sc config.Suite) (Suite, error) {
	base := strings.TrimPrefix(sc.Name, PartialPrefix)
	set := cfg.Benchmarks.TotalSet
	if strings.HasPrefix(sc.Name, PartialPrefix) {
		set = cfg.Benchmarks.PartialSet
	}
	root := filepath.Join(cfg.Benchmarks.Root, set, base)

	domain := sc.Domain
	if domain == "" {
		d, err := firstDomain(filepath.Join(root, "domains"))
		if err != nil && strings.HasPrefix(sc.Name, PartialPrefix) {
			// Partial sets may carry no domain of their own; fall back
			// to the total set's.
			d, err = firstDomain(filepath.Join(cfg.Benchmarks.Root, cfg.Benchmarks.TotalSet, base, "domains"))
		}
		if err != nil {
			return Suite{}, err
		}
		domain = d
	}

	problems, err := filepath.Glob(filepath.Join(root, "problems", "*.?ddl"))
	if err != nil {
		return Suite{}, fmt.Errorf("listing problems: %w", err)
	}
	if len(problems) == 0 {
		return Suite{}, fmt.Errorf("no problem files under %s", filepath.Join(root, "problems"))
	}
	sort.Strings(problems)

	s := Suite{Name: sc.Name, Domain: domain}
	for _, p := range problems {
		s.Instances = append(s.Instances, Instance{ID: instanceID(p), Problem: p})
	}
	return capInstances(s, sc.MaxProblems), nil
}

func firstDomain(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.?ddl"))
	if err != nil {
		return "", fmt.Errorf("listing domains: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no domain file under %s", dir)
	}
	sort.Strings(matches)
	return matches[0], nil
}

func capInstances(s Suite, max int) Suite {
	if max > 0 && len(s.Instances) > max {
		s.Instances = s.Instances[:max]
	}
	return s
}

func instanceID(problem string) string {
	base := filepath.Base(problem)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
