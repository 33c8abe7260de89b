package site

import (
	"errors"
	"io/fs"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Registry is the immutable set of site configs for a run.
type Registry struct {
	byID  map[string]Config
	order []string
}

// NewRegistry validates configs and indexes them by id.
func NewRegistry(configs []Config) (*Registry, error) {
	r := &Registry{byID: make(map[string]Config, len(configs))}
	for _, c := range configs {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byID[c.ID]; dup {
			return nil, &ConfigError{SiteID: c.ID, Reason: "duplicate site id"}
		}
		r.byID[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	return r, nil
}

type sitesFile struct {
	Sites []Config `yaml:"sites"`
}

// Load reads a YAML site table from path. A missing file falls back to the
// built-in defaults.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Warn("site: config file not found, using defaults", zap.String("path", path))
		return NewRegistry(Defaults())
	}
	if err != nil {
		return nil, eris.Wrapf(err, "site: read %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML site table. Both a top-level list and a
// {sites: [...]} document are accepted.
func Parse(data []byte) (*Registry, error) {
	var doc sitesFile
	if err := yaml.Unmarshal(data, &doc); err != nil || doc.Sites == nil {
		var list []Config
		if lerr := yaml.Unmarshal(data, &list); lerr != nil {
			if err == nil {
				err = lerr
			}
			return nil, eris.Wrap(err, "site: parse yaml")
		}
		doc.Sites = list
	}
	if len(doc.Sites) == 0 {
		return nil, &ConfigError{Reason: "no sites defined"}
	}
	return NewRegistry(doc.Sites)
}

// Get returns the config for id or a ConfigError.
func (r *Registry) Get(id string) (Config, error) {
	c, ok := r.byID[id]
	if !ok {
		return Config{}, &ConfigError{SiteID: id, Reason: "unknown site id"}
	}
	return c, nil
}

// Resolve looks up every id before any work starts. An empty list resolves to
// all enabled sites in file order. Requesting a disabled site by id is a
// ConfigError.
func (r *Registry) Resolve(ids []string) ([]Config, error) {
	if len(ids) == 0 {
		return r.Enabled(), nil
	}
	out := make([]Config, 0, len(ids))
	for _, id := range ids {
		c, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		if c.Disabled {
			return nil, &ConfigError{SiteID: id, Reason: "site is disabled"}
		}
		out = append(out, c)
	}
	return out, nil
}

// Enabled returns the sites not marked disabled, in definition order.
func (r *Registry) Enabled() []Config {
	var out []Config
	for _, id := range r.order {
		if c := r.byID[id]; !c.Disabled {
			out = append(out, c)
		}
	}
	return out
}

// All returns every site in definition order.
func (r *Registry) All() []Config {
	out := make([]Config, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
