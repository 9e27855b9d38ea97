// package main implements a command-line utility for registering a native
// messaging host with Chrome or Firefox.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
)

import (
	"github.com/p00ya/voce-host/internal/config"
	"github.com/p00ya/voce-host/internal/logging"
	"github.com/p00ya/voce-host/internal/nativemsg/install"
)

const (
	exitSuccess      = 0
	exitInvalidUsage = 1
	exitFailure      = 2
)

var errInvalidUsage = errors.New("invalid usage")

var exampleUsage = strings.TrimSpace(`
  install-host -o chrome-extension://abcdefghijklmnopabcdefghijklmnop/ org.voce.host ./classify-host
  install-host --browser firefox -o voce@example.org org.voce.host ./classify-host
  install-host --system --config /etc/voce/config.toml org.voce.host /opt/voce/classify-host
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

type options struct {
	system  bool
	browser string
	desc    string
	callers []string
	cfgPath string
	dir     string
}

func newRootCommand() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:   "install-host [flags] NAME BINARY",
		Short: "Register a native messaging host with a browser",
		Long: "Writes the host manifest for NAME, pointing at BINARY, where the browser\n" +
			"looks for it.  Allowed callers default to allowed_callers from the host\n" +
			"configuration.",
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("%w: expected 2 arguments, got %d", errInvalidUsage, len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0], args[1])
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errInvalidUsage, err)
	})

	root.Flags().BoolVar(&opts.system, "system", false, "install system-wide (instead of for current user)")
	root.Flags().StringVar(&opts.browser, "browser", "chrome", "browser to register with: chrome or firefox")
	root.Flags().StringVarP(&opts.desc, "description", "d", "", "host description")
	root.Flags().StringArrayVarP(&opts.callers, "origin", "o", nil,
		"allowed caller: a chrome-extension:// origin or a Firefox add-on ID.  Repeat flag for multiple callers")
	root.Flags().StringVar(&opts.cfgPath, "config", "", "host config file used for default callers")
	root.Flags().StringVar(&opts.dir, "manifest-dir", "", "directory for the manifest file on Windows (default: next to BINARY)")
	return root
}

func run(cmd *cobra.Command, opts options, name, binary string) error {
	log := logging.Fallback()

	browser, err := install.ParseBrowser(opts.browser)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidUsage, err)
	}

	switch fi, err := os.Stat(binary); {
	case err != nil:
		log.Warn().Err(err).Msg("accessing binary")
	case runtime.GOOS != "windows" && fi.Mode()&0100 == 0:
		log.Warn().Str("binary", binary).Msg("binary is not executable")
	}
	absPath, err := filepath.Abs(binary)
	if err != nil {
		return fmt.Errorf("resolving absolute path to %s: %w", binary, err)
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	callers := opts.callers
	if !changed["origin"] {
		cfg, err := config.Load(opts.cfgPath)
		if err != nil {
			return err
		}
		callers = cfg.AllowedCallers
	}

	m := install.NewManifest(name, opts.desc, absPath, callers)
	path, err := install.Install(m, install.Target{
		Browser: browser,
		System:  opts.system,
		Dir:     opts.dir,
	})
	if errors.Is(err, install.ErrInvalidManifest) {
		return fmt.Errorf("%w: %v", errInvalidUsage, err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %v manifest for %s to %s\n", browser, name, path)
	return nil
}

func main() {
	root := newRootCommand()
	err := root.Execute()
	switch {
	case err == nil:
		os.Exit(exitSuccess)
	case errors.Is(err, errInvalidUsage):
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		root.Usage()
		os.Exit(exitInvalidUsage)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitFailure)
	}
}
