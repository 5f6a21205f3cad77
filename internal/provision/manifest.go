// Package provision fetches the pipeline's external resources (qnode tables,
// parser checkpoints, topic lists, aligner archives) and checks the host
// environment the external stages need.
package provision

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// Resource is one downloadable entry of the provisioning manifest.
type Resource struct {
	// Name is the path of the resource under the resources directory.
	Name string `json:"name"`
	// URL is a go-getter source string (http, git, s3, file, with archive
	// unpacking suffixes).
	URL string `json:"url"`
	// SHA256 of the fetched file; empty skips verification. Unpacked
	// directory resources cannot carry a checksum.
	SHA256 string `json:"sha256,omitempty"`
	// Dir marks resources that unpack to a directory.
	Dir bool `json:"dir,omitempty"`
}

// Manifest lists every resource a full pipeline install needs.
type Manifest struct {
	Resources []Resource `json:"resources"`
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrapf(err, "unmarshal manifest %s", path)
	}
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (m *Manifest) validate() error {
	seen := make(map[string]bool, len(m.Resources))
	for i, res := range m.Resources {
		if res.Name == "" || res.URL == "" {
			return errors.Newf("manifest resource %d is missing a name or url", i)
		}
		if seen[res.Name] {
			return errors.Newf("manifest resource %q declared twice", res.Name)
		}
		if res.Dir && res.SHA256 != "" {
			return errors.Newf("manifest resource %q: directory resources cannot carry a checksum", res.Name)
		}
		seen[res.Name] = true
	}
	return nil
}

// fileSHA256 hashes a file's contents.
func fileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
