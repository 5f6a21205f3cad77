package provision

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	getter "github.com/hashicorp/go-getter"
	"go.uber.org/zap"
)

// Installer fetches manifest resources into the resources directory.
type Installer struct {
	resourcesDir string
	log          *zap.SugaredLogger
}

// NewInstaller creates an installer rooted at resourcesDir.
func NewInstaller(resourcesDir string, log *zap.SugaredLogger) *Installer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Installer{resourcesDir: resourcesDir, log: log}
}

// Install fetches every manifest resource, skipping entries already present
// and valid. The first failure aborts the install.
func (i *Installer) Install(ctx context.Context, manifest *Manifest) error {
	if err := os.MkdirAll(i.resourcesDir, 0755); err != nil {
		return errors.Wrap(err, "create resources dir")
	}

	for _, res := range manifest.Resources {
		present, err := i.present(res)
		if err != nil {
			return err
		}
		if present {
			i.log.Infow("resource present, skipping", "resource", res.Name)
			continue
		}
		if err := i.fetch(ctx, res); err != nil {
			return errors.Wrapf(err, "fetch resource %q from %s", res.Name, res.URL)
		}
		i.log.Infow("resource installed", "resource", res.Name)
	}
	return nil
}

// present reports whether a resource exists and, when it carries a checksum,
// still matches it.
func (i *Installer) present(res Resource) (bool, error) {
	dest := filepath.Join(i.resourcesDir, res.Name)
	info, err := os.Stat(dest)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "stat resource %q", res.Name)
	}
	if res.Dir {
		return info.IsDir(), nil
	}
	if res.SHA256 == "" {
		return true, nil
	}
	sum, err := fileSHA256(dest)
	if err != nil {
		return false, errors.Wrapf(err, "hash resource %q", res.Name)
	}
	if sum != res.SHA256 {
		i.log.Warnw("resource checksum mismatch, refetching",
			"resource", res.Name, "expected", res.SHA256, "actual", sum)
		return false, nil
	}
	return true, nil
}

func (i *Installer) fetch(ctx context.Context, res Resource) error {
	dest := filepath.Join(i.resourcesDir, res.Name)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	mode := getter.ClientModeFile
	if res.Dir {
		mode = getter.ClientModeDir
	}
	src := res.URL
	if res.SHA256 != "" {
		src += "?checksum=sha256:" + res.SHA256
	}

	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dest,
		Mode: mode,
	}
	return client.Get()
}
