// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import "errors"

// Config holds configuration for a vector index.
// The presence of a Remote section with an API key toggles backend selection
// toward the remote variant; the choice is made once at construction.
type Config struct {
	// Dimension is the fixed vector dimensionality. Upserts with a different
	// dimension are rejected.
	Dimension int

	// Path is the directory for local snapshot storage. Empty means the
	// local variant keeps snapshots in memory only (useful for tests).
	Path string

	// Remote configures the managed remote backend. Nil means local only.
	Remote *RemoteConfig
}

// RemoteConfig holds connection parameters for the managed Pinecone backend.
type RemoteConfig struct {
	// APIKey authenticates against the service. Empty disables the remote
	// variant even when the rest of the section is populated.
	APIKey string

	// IndexName is the managed index name. Created lazily if absent,
	// matching the configured dimension.
	IndexName string

	// Namespace scopes records within the index. Optional.
	Namespace string

	// Cloud and Region place the serverless index. Defaults: "aws",
	// "us-east-1".
	Cloud  string
	Region string

	// Required makes a remote initialization failure fatal instead of
	// falling back to the local variant at construction.
	Required bool
}

// HasRemote reports whether remote credentials are configured.
func (c *Config) HasRemote() bool {
	return c.Remote != nil && c.Remote.APIKey != ""
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Dimension <= 0 {
		return errors.New("index config: Dimension must be positive")
	}
	if c.Remote != nil && c.Remote.APIKey != "" && c.Remote.IndexName == "" {
		return errors.New("index config: Remote.IndexName is required with an API key")
	}
	if c.Remote != nil && c.Remote.APIKey == "" && c.Remote.Required {
		return errors.New("index config: Remote.Required set without an API key")
	}
	return nil
}

// Normalized returns a copy of the remote section with defaults applied.
func (r *RemoteConfig) Normalized() RemoteConfig {
	out := *r
	if out.Cloud == "" {
		out.Cloud = "aws"
	}
	if out.Region == "" {
		out.Region = "us-east-1"
	}
	return out
}
