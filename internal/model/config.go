package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete claimflow configuration.
type Config struct {
	Paths        PathsConfig        `yaml:"paths" json:"paths"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" json:"concurrency"`
	Cache        CacheConfig        `yaml:"cache" json:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" json:"rate_limiting"`
	Linker       LinkerConfig       `yaml:"linker" json:"linker"`
	Detection    DetectionConfig    `yaml:"detection" json:"detection"`
	Tools        ToolsConfig        `yaml:"tools" json:"tools"`
	Output       OutputConfig       `yaml:"output" json:"output"`
}

// PathsConfig declares the directory layout shared by all stages.
type PathsConfig struct {
	RunsDir      string `yaml:"runs_dir" json:"runs_dir"`
	ResourcesDir string `yaml:"resources_dir" json:"resources_dir"`
}

// ConcurrencyConfig controls worker counts for parallel stages.
type ConcurrencyConfig struct {
	IngestWorkers int `yaml:"ingest_workers" json:"ingest_workers"`
	LinkWorkers   int `yaml:"link_workers" json:"link_workers"`
}

// CacheConfig controls the Qnode query cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// RateLimitingConfig bounds requests to the Qnode candidate service.
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" json:"burst_size"`
}

// LinkerConfig configures Wikidata linking.
type LinkerConfig struct {
	Endpoint     string        `yaml:"endpoint" json:"endpoint"`
	K            int           `yaml:"k" json:"k"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// DetectionConfig configures the claim-detection stage.
type DetectionConfig struct {
	Domain     string `yaml:"domain" json:"domain"` // "covid" or "general"
	TopicsFile string `yaml:"topics_file" json:"topics_file"`
	MaxTokens  int    `yaml:"max_tokens" json:"max_tokens"`
}

// ToolConfig is one external tool invocation template.
type ToolConfig struct {
	Command  string        `yaml:"command" json:"command"`
	CondaEnv string        `yaml:"conda_env" json:"conda_env"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// ToolsConfig declares the external tools the pipeline may invoke.
type ToolsConfig struct {
	CondaPath  string     `yaml:"conda_path" json:"conda_path"`
	CUDADevice string     `yaml:"cuda_device" json:"cuda_device"`
	AMRParser  ToolConfig `yaml:"amr_parser" json:"amr_parser"`
	SRL        ToolConfig `yaml:"srl" json:"srl"`
	Tagger     ToolConfig `yaml:"tagger" json:"tagger"`
}

// OutputConfig controls CLI output behavior.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
	JSON    bool `yaml:"json" json:"json"` // machine-readable run logs
}

// DefaultConfig returns the built-in defaults. Flags, env, and the config file
// override these in the usual viper order.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".claimflow")

	return &Config{
		Paths: PathsConfig{
			RunsDir:      filepath.Join(base, "runs"),
			ResourcesDir: filepath.Join(base, "resources"),
		},
		Concurrency: ConcurrencyConfig{
			IngestWorkers: 4,
			LinkWorkers:   4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Linker: LinkerConfig{
			Endpoint:     "https://kgtk.isi.edu/api",
			K:            1,
			Timeout:      30 * time.Second,
			MaxBodyBytes: 2_000_000,
		},
		Detection: DetectionConfig{
			Domain:    "general",
			MaxTokens: 50,
		},
		Tools: ToolsConfig{
			CondaPath:  os.Getenv("CONDA_PATH"),
			CUDADevice: "cpu",
			AMRParser: ToolConfig{
				Command:  "python -m transition_amr_parser.parse --in-tokenized-sentences {input} --out-amr {output} --checkpoint {model}",
				CondaEnv: "transition-amr-parser",
				Timeout:  2 * time.Hour,
			},
			SRL: ToolConfig{
				Command:  "python -m cdse_covid.semantic_extraction.run_srl --input {input} --output {output}",
				CondaEnv: "cdse-covid",
				Timeout:  time.Hour,
			},
			Tagger: ToolConfig{
				Command:  "python -m cdse_covid.pegasus_pipeline.run_tagger --input {input} --output {output}",
				CondaEnv: "cdse-covid",
				Timeout:  time.Hour,
			},
		},
		Output: OutputConfig{},
	}
}
