package config

// CurrentVersion is the only schema version the loader understands.
const CurrentVersion = "1"

// Harvestfile represents the structure of the harvest.yaml configuration file.
// Omitted fields keep their defaults.
type Harvestfile struct {
	Version     string            `yaml:"version"`
	Baseline    string            `yaml:"baseline"`
	Build       []string          `yaml:"build"`
	Concurrency *int              `yaml:"concurrency"`
	Environment map[string]string `yaml:"environment"`
	Paths       PathsDTO          `yaml:"paths"`
}

// PathsDTO overrides the on-disk layout.
// Directories are relative to the base directory; inputDest and artifact are
// relative to the workspace.
type PathsDTO struct {
	Inputs     string `yaml:"inputs"`
	Outputs    string `yaml:"outputs"`
	Workspaces string `yaml:"workspaces"`
	InputDest  string `yaml:"inputDest"`
	Artifact   string `yaml:"artifact"`
}
