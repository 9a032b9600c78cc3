// Package artifact renders the deployment configuration files produced
// after a successful migration: an environment file, a database
// connection module stub, and a container orchestration descriptor.
//
// Rendering is deterministic given identical inputs, except for a
// generated-at timestamp line. Secrets other than the destination URI
// are emitted as literal non-functional placeholders the operator must
// replace; the emitter never generates or retrieves real secrets.
package artifact

import "time"

// Kind identifies an artifact type.
type Kind string

const (
	// KindEnvFile is the key=value environment file.
	KindEnvFile Kind = "env-file"

	// KindDbConfigModule is the database connection module stub.
	KindDbConfigModule Kind = "db-config-module"

	// KindOrchestrationDescriptor is the container service definition.
	KindOrchestrationDescriptor Kind = "orchestration-descriptor"
)

// Relative output paths per artifact kind.
const (
	EnvFilePath                 = ".env.production"
	DbConfigModulePath          = "config/database.js"
	OrchestrationDescriptorPath = "docker-compose.yml"
)

// Placeholder secret values emitted into the env file. These are
// deliberately non-functional; the operator must replace them.
const (
	PlaceholderAPIKey    = "replace-with-your-api-key"
	PlaceholderJWTSecret = "replace-with-your-jwt-secret"
)

// Connection defaults rendered into the database config module.
const (
	DbPoolSize                 = 10
	DbServerSelectionTimeoutMS = 5000
	DbSocketTimeoutMS          = 45000
)

// Artifact is one rendered configuration file.
//
// Artifacts are created only after a completed migration (or on
// explicit request) and are written by full replacement, never patched.
type Artifact struct {
	// Path is the output path relative to the artifacts directory.
	Path string

	// Kind identifies the artifact type.
	Kind Kind

	// Content is the full file content.
	Content []byte
}

// Inputs are the values rendered into the artifacts.
type Inputs struct {
	// DestinationURI is the migrated-to connection string.
	DestinationURI string

	// Database is the migrated database name.
	Database string

	// Port is the application listen port.
	Port int

	// NodeEnv is the runtime environment name.
	NodeEnv string

	// MaxUploadSize is the request body cap (e.g., "50mb").
	MaxUploadSize string

	// RateLimitWindowMS is the rate-limit window in milliseconds.
	RateLimitWindowMS int

	// RateLimitMax is the request cap per window.
	RateLimitMax int

	// CORSOrigin is the allowed CORS origin.
	CORSOrigin string

	// GeneratedAt stamps each artifact header. Zero means time.Now.
	GeneratedAt time.Time
}
