package domain

import "runtime"

const (
	// DefaultBaseline is the reference every workspace is created from.
	DefaultBaseline = "main"
)

// DefaultBuildCommand is the command run inside every workspace.
func DefaultBuildCommand() []string {
	return []string{"bun", "run", "build"}
}

// Config holds everything a batch needs to know about its surroundings.
type Config struct {
	// Baseline is the git reference workspaces are created from.
	Baseline string
	// BuildCommand is executed with the workspace as working directory.
	BuildCommand []string
	// Concurrency bounds the number of tasks running at once. Zero means unbounded.
	Concurrency int
	// Environment is added to the inherited environment of the build command.
	Environment map[string]string
	Layout      Layout
}

// DefaultConfig returns the configuration used when no config file is present.
func DefaultConfig(baseDir string) *Config {
	return &Config{
		Baseline:     DefaultBaseline,
		BuildCommand: DefaultBuildCommand(),
		Concurrency:  runtime.NumCPU(),
		Layout:       DefaultLayout(baseDir),
	}
}

// Validate checks the invariants a batch relies on.
func (c *Config) Validate() error {
	if c.Baseline == "" {
		return ErrEmptyBaseline
	}
	if len(c.BuildCommand) == 0 || c.BuildCommand[0] == "" {
		return ErrEmptyBuildCommand
	}
	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	return c.Layout.Validate()
}
