// Package dispatch discovers the command verbs packaged with an
// installation. Verbs are YAML manifests under the vdm.d directory of the
// install root; the execution model behind a verb belongs to the service,
// not to this package.
package dispatch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	vdmerrors "github.com/voltgrid/vdm/internal/errors"
)

// VerbDirName is the directory under the install root holding verb
// manifests.
const VerbDirName = "vdm.d"

// Verb describes one command verb available to the management service.
type Verb struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Endpoint is the API path the service dispatches this verb to.
	Endpoint string `yaml:"endpoint,omitempty"`
}

// Registry holds the verbs discovered under one install root.
type Registry struct {
	verbs map[string]Verb
}

// Load scans <installRoot>/vdm.d for verb manifests. A missing directory
// yields an empty registry; an unreadable or malformed manifest is a load
// failure.
func Load(installRoot string) (*Registry, error) {
	reg := &Registry{verbs: make(map[string]Verb)}

	dir := filepath.Join(installRoot, VerbDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, vdmerrors.VerbManifestInvalid(dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		path := filepath.Join(dir, name)
		verb, err := loadManifest(path)
		if err != nil {
			return nil, err
		}
		if _, exists := reg.verbs[verb.Name]; exists {
			return nil, vdmerrors.VerbManifestInvalid(path, nil).
				WithContext("verb", verb.Name).
				WithContext("reason", "duplicate verb name")
		}
		reg.verbs[verb.Name] = verb
	}
	return reg, nil
}

func loadManifest(path string) (Verb, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Verb{}, vdmerrors.VerbManifestInvalid(path, err)
	}
	var verb Verb
	if err := yaml.Unmarshal(data, &verb); err != nil {
		return Verb{}, vdmerrors.VerbManifestInvalid(path, err)
	}
	if verb.Name == "" {
		return Verb{}, vdmerrors.VerbManifestInvalid(path, nil).
			WithContext("reason", "manifest has no verb name")
	}
	return verb, nil
}

// Lookup resolves a verb by name.
func (r *Registry) Lookup(name string) (Verb, bool) {
	verb, ok := r.verbs[name]
	return verb, ok
}

// Names returns the registered verb names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.verbs))
	for name := range r.verbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered verbs.
func (r *Registry) Len() int {
	return len(r.verbs)
}
