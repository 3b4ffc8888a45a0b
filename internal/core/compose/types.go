package compose

// =============================================================================
// Compose File Types
// =============================================================================

// File is the subset of the compose format the export writes.
type File struct {
	Name     string              `yaml:"name,omitempty"`
	Services map[string]*Service `yaml:"services"`
	Volumes  map[string]*Volume  `yaml:"volumes,omitempty"`
}

// Service is one compose service.
type Service struct {
	Image       string            `yaml:"image,omitempty"`
	Build       *Build            `yaml:"build,omitempty"`
	Ports       []string          `yaml:"ports,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	EnvFile     []string          `yaml:"env_file,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	DependsOn   []string          `yaml:"depends_on,omitempty"`
	Restart     string            `yaml:"restart,omitempty"`
}

// Build is the build section of a service.
type Build struct {
	Context    string `yaml:"context"`
	Dockerfile string `yaml:"dockerfile,omitempty"`
}

// Volume is a named volume. It renders as an empty mapping.
type Volume struct {
	Driver string `yaml:"driver,omitempty"`
}

// Options controls the export.
type Options struct {
	BaseDomain string
	EnableTLS  bool
	Port       int
}
