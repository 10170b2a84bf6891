package sources

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/hoofy-research/internal/research"
)

// Capability is one thing the environment can be probed for. It is relevant
// to a question when any of its Topics appears among the question's words.
type Capability struct {
	Name     string
	Topics   []string
	Binaries []string
	EnvVars  []string
	// Files are marker paths relative to the project root.
	Files []string
}

// DefaultCapabilities covers the tooling most questions ask about.
var DefaultCapabilities = []Capability{
	{Name: "Docker", Topics: []string{"docker", "container", "containers", "compose", "podman"},
		Binaries: []string{"docker", "podman"}, Files: []string{"Dockerfile", "docker-compose.yml", "docker-compose.yaml", "compose.yaml"}},
	{Name: "Git", Topics: []string{"git", "commit", "branch", "branches"},
		Binaries: []string{"git"}, Files: []string{".git"}},
	{Name: "Go", Topics: []string{"go", "golang", "gopath"},
		Binaries: []string{"go"}, EnvVars: []string{"GOPATH", "GOROOT"}, Files: []string{"go.mod"}},
	{Name: "Node.js", Topics: []string{"node", "nodejs", "npm", "yarn", "pnpm", "javascript", "typescript"},
		Binaries: []string{"node", "npm"}, Files: []string{"package.json"}},
	{Name: "Python", Topics: []string{"python", "pip", "poetry", "virtualenv", "venv"},
		Binaries: []string{"python3", "python"}, EnvVars: []string{"VIRTUAL_ENV"}, Files: []string{"pyproject.toml", "requirements.txt"}},
	{Name: "Rust", Topics: []string{"rust", "cargo", "rustc"},
		Binaries: []string{"cargo", "rustc"}, Files: []string{"Cargo.toml"}},
	{Name: "PostgreSQL", Topics: []string{"postgres", "postgresql", "psql", "database"},
		Binaries: []string{"psql", "postgres"}, EnvVars: []string{"DATABASE_URL", "PGHOST"}},
	{Name: "MySQL", Topics: []string{"mysql", "mariadb"},
		Binaries: []string{"mysql"}, EnvVars: []string{"MYSQL_HOST"}},
	{Name: "Redis", Topics: []string{"redis", "cache"},
		Binaries: []string{"redis-server", "redis-cli"}, EnvVars: []string{"REDIS_URL"}},
	{Name: "Kubernetes", Topics: []string{"kubernetes", "k8s", "kubectl", "helm", "cluster"},
		Binaries: []string{"kubectl", "helm"}, EnvVars: []string{"KUBECONFIG"}},
	{Name: "Make", Topics: []string{"make", "makefile"},
		Binaries: []string{"make"}, Files: []string{"Makefile"}},
	{Name: "AWS", Topics: []string{"aws", "s3", "lambda", "ec2"},
		Binaries: []string{"aws"}, EnvVars: []string{"AWS_PROFILE", "AWS_REGION"}},
}

// EnvironmentOptions configures an Environment provider. The function fields
// default to exec.LookPath, os.Getenv and os.Stat.
type EnvironmentOptions struct {
	Root         string
	Capabilities []Capability
	LookPath     func(file string) (string, error)
	Getenv       func(key string) string
	Stat         func(name string) (os.FileInfo, error)
}

const (
	envCeiling = 0.9
	// envNegative is the confidence of "checked and not there": a real
	// answer to availability questions, but weak evidence otherwise.
	envNegative = 0.25
)

// Environment answers questions by probing the local machine.
type Environment struct {
	root     string
	caps     []Capability
	lookPath func(string) (string, error)
	getenv   func(string) string
	stat     func(string) (os.FileInfo, error)
}

// NewEnvironment creates an environment provider.
func NewEnvironment(opts EnvironmentOptions) *Environment {
	e := &Environment{
		root:     opts.Root,
		caps:     opts.Capabilities,
		lookPath: opts.LookPath,
		getenv:   opts.Getenv,
		stat:     opts.Stat,
	}
	if e.caps == nil {
		e.caps = DefaultCapabilities
	}
	if e.lookPath == nil {
		e.lookPath = exec.LookPath
	}
	if e.getenv == nil {
		e.getenv = os.Getenv
	}
	if e.stat == nil {
		e.stat = os.Stat
	}
	return e
}

// Kind implements research.Provider.
func (e *Environment) Kind() research.SourceKind { return research.SourceEnvironment }

// Probe checks the capabilities the question is about.
func (e *Environment) Probe(ctx context.Context, question string) (*research.SourceResult, error) {
	words := tokens(question)
	var relevant []Capability
	for _, c := range e.caps {
		for _, t := range c.Topics {
			if words[t] {
				relevant = append(relevant, c)
				break
			}
		}
	}
	if len(relevant) == 0 {
		return nil, nil
	}

	probes := make([]research.CapabilityProbe, 0, len(relevant))
	found := 0
	for _, c := range relevant {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := e.check(c)
		if p.Found {
			found++
		}
		probes = append(probes, p)
	}

	confidence := envNegative
	if found > 0 {
		confidence = 0.35 + 0.5*float64(found)/float64(len(relevant))
	}

	return &research.SourceResult{
		Kind:       research.SourceEnvironment,
		Confidence: clampConfidence(confidence, envCeiling),
		Summary:    envSummary(probes),
		Payload:    research.EnvironmentPayload{Capabilities: probes},
	}, nil
}

// check runs every probe of one capability. Environment variable values are
// never reported, only whether they are set.
func (e *Environment) check(c Capability) research.CapabilityProbe {
	var evidence, checked []string
	for _, bin := range c.Binaries {
		checked = append(checked, bin)
		if path, err := e.lookPath(bin); err == nil {
			evidence = append(evidence, fmt.Sprintf("%s at %s", bin, path))
		}
	}
	for _, v := range c.EnvVars {
		checked = append(checked, "$"+v)
		if e.getenv(v) != "" {
			evidence = append(evidence, fmt.Sprintf("$%s is set", v))
		}
	}
	if e.root != "" {
		for _, f := range c.Files {
			checked = append(checked, f)
			if _, err := e.stat(filepath.Join(e.root, f)); err == nil {
				evidence = append(evidence, f+" present")
			}
		}
	}

	if len(evidence) > 0 {
		return research.CapabilityProbe{Capability: c.Name, Found: true, Detail: strings.Join(evidence, "; ")}
	}
	return research.CapabilityProbe{Capability: c.Name, Detail: "checked " + strings.Join(checked, ", ")}
}

func envSummary(probes []research.CapabilityProbe) string {
	parts := make([]string, len(probes))
	for i, p := range probes {
		state := "not detected"
		if p.Found {
			state = "available"
		}
		parts[i] = fmt.Sprintf("%s: %s (%s).", p.Capability, state, p.Detail)
	}
	return "Local environment: " + strings.Join(parts, " ")
}
