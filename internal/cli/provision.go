package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimflow/internal/provision"
)

var (
	installManifest  string
	installResources string
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Fetch qnode tables, checkpoints, and other pipeline resources",
	Long: `Install downloads every resource named in the provisioning manifest into
the resources directory. Resources already present with a matching
checksum are skipped.

Example:
  claimflow install --manifest resources.json
  claimflow install --manifest resources.json --resources ~/.claimflow/resources`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		dir := cfg.Paths.ResourcesDir
		if installResources != "" {
			dir = installResources
		}

		manifest, err := provision.LoadManifest(installManifest)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "⚙️  Installing %d resources into %s\n", len(manifest.Resources), dir)
		if err := provision.NewInstaller(dir, log).Install(cmd.Context(), manifest); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Resources installed\n")
		return nil
	},
}

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the host environment for the external tools",
	Long: `Doctor reports whether the external tools the pipeline shells out to are
available: conda and the tool environments, the Java 8 runtime, and CUDA
when a GPU device is configured.

Failed checks are reported but not fatal; stages that do not need the
missing tool still run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		checks := provision.NewDoctor(cfg.Tools).Checks(cmd.Context())
		failed := 0
		for _, check := range checks {
			mark := "✓"
			if !check.OK {
				mark = "✗"
				failed++
			}
			fmt.Printf("%s %-40s %s\n", mark, check.Name, check.Detail)
		}
		if failed > 0 {
			fmt.Printf("\n%d of %d checks failed; external stages that need them will not run\n", failed, len(checks))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(doctorCmd)

	installCmd.Flags().StringVar(&installManifest, "manifest", "", "provisioning manifest file")
	installCmd.Flags().StringVar(&installResources, "resources", "", "resources directory (default: configured resources dir)")
	_ = installCmd.MarkFlagRequired("manifest")
}
