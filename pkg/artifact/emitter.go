package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Emitter renders and writes deployment artifacts.
type Emitter struct {
	now func() time.Time
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithClock fixes the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Emitter) { e.now = now }
}

// New creates an Emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render produces all three artifacts from the inputs.
func (e *Emitter) Render(in Inputs) ([]Artifact, error) {
	if in.DestinationURI == "" {
		return nil, fmt.Errorf("destination URI is required")
	}
	if in.Database == "" {
		return nil, fmt.Errorf("database name is required")
	}

	ts := in.GeneratedAt
	if ts.IsZero() {
		ts = e.now().UTC()
	}
	stamp := ts.UTC().Format(time.RFC3339)

	composeContent, err := renderCompose(stamp, in)
	if err != nil {
		return nil, fmt.Errorf("render orchestration descriptor: %w", err)
	}

	return []Artifact{
		{Path: EnvFilePath, Kind: KindEnvFile, Content: renderEnvFile(stamp, in)},
		{Path: DbConfigModulePath, Kind: KindDbConfigModule, Content: renderDbConfigModule(stamp)},
		{Path: OrchestrationDescriptorPath, Kind: KindOrchestrationDescriptor, Content: composeContent},
	}, nil
}

// Write writes artifacts under dir, creating parent directories as
// needed. Each file is fully overwritten; a re-run replaces, never
// patches.
func (e *Emitter) Write(dir string, artifacts []Artifact) error {
	for _, a := range artifacts {
		path := filepath.Join(dir, a.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create artifact directory for %s: %w", a.Path, err)
		}
		if err := os.WriteFile(path, a.Content, 0o644); err != nil {
			return fmt.Errorf("write artifact %s: %w", a.Path, err)
		}
	}
	return nil
}

func renderEnvFile(stamp string, in Inputs) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Generated by atlasmigrate on %s\n", stamp)
	b.WriteString("# Review placeholder secrets before deploying.\n\n")

	fmt.Fprintf(&b, "MONGODB_URI=%s\n", in.DestinationURI)
	fmt.Fprintf(&b, "MONGODB_DATABASE=%s\n", in.Database)
	fmt.Fprintf(&b, "NODE_ENV=%s\n", in.NodeEnv)
	fmt.Fprintf(&b, "PORT=%d\n\n", in.Port)

	fmt.Fprintf(&b, "MAX_UPLOAD_SIZE=%s\n", in.MaxUploadSize)
	fmt.Fprintf(&b, "RATE_LIMIT_WINDOW_MS=%d\n", in.RateLimitWindowMS)
	fmt.Fprintf(&b, "RATE_LIMIT_MAX=%d\n", in.RateLimitMax)
	fmt.Fprintf(&b, "CORS_ORIGIN=%s\n\n", in.CORSOrigin)

	fmt.Fprintf(&b, "API_KEY=%s\n", PlaceholderAPIKey)
	fmt.Fprintf(&b, "JWT_SECRET=%s\n", PlaceholderJWTSecret)

	return []byte(b.String())
}

func renderDbConfigModule(stamp string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "// Generated by atlasmigrate on %s\n", stamp)
	b.WriteString(`const { MongoClient } = require('mongodb');

const options = {
`)
	fmt.Fprintf(&b, "  maxPoolSize: %d,\n", DbPoolSize)
	fmt.Fprintf(&b, "  serverSelectionTimeoutMS: %d,\n", DbServerSelectionTimeoutMS)
	fmt.Fprintf(&b, "  socketTimeoutMS: %d,\n", DbSocketTimeoutMS)
	b.WriteString(`};

let client;

async function connect() {
  if (client) {
    return client.db(process.env.MONGODB_DATABASE);
  }
  client = new MongoClient(process.env.MONGODB_URI, options);
  await client.connect();
  return client.db(process.env.MONGODB_DATABASE);
}

module.exports = { connect };
`)
	return []byte(b.String())
}

type composeService struct {
	Build       string   `yaml:"build"`
	Restart     string   `yaml:"restart"`
	Ports       []string `yaml:"ports"`
	EnvFile     []string `yaml:"env_file"`
	Environment []string `yaml:"environment"`
}

type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

func renderCompose(stamp string, in Inputs) ([]byte, error) {
	doc := composeFile{
		Services: map[string]composeService{
			"app": {
				Build:   ".",
				Restart: "unless-stopped",
				Ports:   []string{fmt.Sprintf("%d:%d", in.Port, in.Port)},
				EnvFile: []string{EnvFilePath},
				Environment: []string{
					"MONGODB_URI=${MONGODB_URI}",
					"MONGODB_DATABASE=${MONGODB_DATABASE}",
				},
			},
		},
	}

	body, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Generated by atlasmigrate on %s\n", stamp)
	b.WriteString("# The local mongodb service was removed: data now lives in the managed cluster.\n")
	b.Write(body)
	return []byte(b.String()), nil
}
