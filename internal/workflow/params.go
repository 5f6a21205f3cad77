// Package workflow loads pipeline parameter files: TOML tables of stage
// settings whose string values may reference other parameters as %name%.
package workflow

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

var refPattern = regexp.MustCompile(`%([A-Za-z0-9_.-]+)%`)

// Params is a resolved parameter set. Nested tables flatten to dotted keys
// ("paths.runs_dir").
type Params struct {
	values map[string]string
}

// LoadParams reads and resolves a TOML parameter file.
func LoadParams(path string) (*Params, error) {
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, errors.Wrapf(err, "decode parameter file %s", path)
	}
	return resolve(flatten("", raw))
}

// ParseParams resolves a TOML parameter document from a string.
func ParseParams(doc string) (*Params, error) {
	var raw map[string]interface{}
	if _, err := toml.Decode(doc, &raw); err != nil {
		return nil, errors.Wrap(err, "decode parameters")
	}
	return resolve(flatten("", raw))
}

func flatten(prefix string, raw map[string]interface{}) map[string]string {
	flat := make(map[string]string)
	for key, value := range raw {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]interface{}:
			for k, s := range flatten(full, v) {
				flat[k] = s
			}
		case string:
			flat[full] = v
		case bool:
			flat[full] = strconv.FormatBool(v)
		case int64:
			flat[full] = strconv.FormatInt(v, 10)
		case float64:
			flat[full] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			flat[full] = fmt.Sprintf("%v", v)
		}
	}
	return flat
}

// resolve expands %name% references. A reference to an undefined parameter or
// a reference cycle is an error.
func resolve(flat map[string]string) (*Params, error) {
	resolved := make(map[string]string, len(flat))

	var expand func(key string, trail []string) (string, error)
	expand = func(key string, trail []string) (string, error) {
		if value, done := resolved[key]; done {
			return value, nil
		}
		for _, seen := range trail {
			if seen == key {
				return "", errors.Newf("parameter cycle: %s", strings.Join(append(trail, key), " -> "))
			}
		}
		raw, ok := flat[key]
		if !ok {
			// Unknown names fall back to the environment.
			if env, found := os.LookupEnv(key); found {
				resolved[key] = env
				return env, nil
			}
			return "", errors.Newf("undefined parameter %q referenced by %q", key, trail[len(trail)-1])
		}

		var expandErr error
		value := refPattern.ReplaceAllStringFunc(raw, func(match string) string {
			if expandErr != nil {
				return match
			}
			name := match[1 : len(match)-1]
			inner, err := expand(name, append(trail, key))
			if err != nil {
				expandErr = err
				return match
			}
			return inner
		})
		if expandErr != nil {
			return "", expandErr
		}
		resolved[key] = value
		return value, nil
	}

	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := expand(key, nil); err != nil {
			return nil, err
		}
	}
	return &Params{values: resolved}, nil
}

// Get returns a parameter value.
func (p *Params) Get(key string) (string, bool) {
	value, ok := p.values[key]
	return value, ok
}

// GetDefault returns a parameter value, or fallback when absent.
func (p *Params) GetDefault(key, fallback string) string {
	if value, ok := p.values[key]; ok {
		return value
	}
	return fallback
}

// Require returns a parameter value or an error naming the missing key.
func (p *Params) Require(key string) (string, error) {
	value, ok := p.values[key]
	if !ok {
		return "", errors.Newf("required parameter %q not set", key)
	}
	return value, nil
}

// Bool interprets a parameter as a boolean, defaulting to fallback.
func (p *Params) Bool(key string, fallback bool) bool {
	value, ok := p.values[key]
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// Keys returns all parameter keys, sorted.
func (p *Params) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for key := range p.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
