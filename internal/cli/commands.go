package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/arthur-debert/binscript/internal/version"
	"github.com/arthur-debert/binscript/pkg/host"
	"github.com/arthur-debert/binscript/pkg/logging"
	"github.com/arthur-debert/binscript/pkg/render"
	"github.com/arthur-debert/binscript/pkg/templates"
	"github.com/arthur-debert/binscript/pkg/ui/styles"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultConfig = "buildout.cfg"

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	verbosity  int
	configPath string
	overrides  []string
	dryRun     bool
}

func (g *globalFlags) options(parts []string) host.Options {
	return host.Options{
		ConfigPath: g.configPath,
		Overrides:  g.overrides,
		Parts:      parts,
		DryRun:     g.dryRun,
	}
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "binscript",
		Short: "Generate executable scripts from templates",
		Long: `binscript renders script templates against a buildout configuration and
writes them, executable, to the bin directory. Each part names a template;
%(key)s placeholders are filled from the [buildout] section and the part's
own options.`,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyEnv(cmd, flags); err != nil {
				return err
			}
			logging.SetupLogger(flags.verbosity)
			log.Debug().Str("command", cmd.Name()).Str("config", flags.configPath).Msg("Command started")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&flags.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	pf.StringVarP(&flags.configPath, "config", "c", defaultConfig, "Buildout configuration file (.cfg, .toml, .yaml); defaults to $BINSCRIPT_CONFIG")
	pf.StringArrayVar(&flags.overrides, "set", nil, "Override an option, as section:option=value (repeatable)")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "Render without writing any file")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newHookCmd(flags, host.HookInstall))
	rootCmd.AddCommand(newHookCmd(flags, host.HookUpdate))
	rootCmd.AddCommand(newRenderCmd(flags))
	rootCmd.AddCommand(newContextCmd(flags))
	rootCmd.AddCommand(newTemplatesCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "binscript version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, "Built:  %s\n", version.Date)
			}
		},
	}
}

func newHookCmd(flags *globalFlags, hook host.Hook) *cobra.Command {
	short := "Generate the scripts for the given parts"
	if hook == host.HookUpdate {
		short = "Regenerate the scripts for the given parts"
	}
	return &cobra.Command{
		Use:   string(hook) + " [parts...]",
		Short: short,
		Long: `Render each part's template and write it to the bin directory with execute
permissions. Without arguments every part listed in buildout:parts whose
recipe is binscript (or unset) is processed.`,
		Example: fmt.Sprintf(`  # All binscript parts in ./buildout.cfg
  binscript %[1]s

  # One part, with an option overridden
  binscript %[1]s runner --set runner:target=start`, hook),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().
				Str("config", flags.configPath).
				Strs("parts", args).
				Bool("dry_run", flags.dryRun).
				Msgf("Running %s", hook)

			result, err := host.Run(hook, flags.options(args))
			if result != nil {
				printResult(cmd.OutOrStdout(), result)
			}
			if err != nil {
				return fmt.Errorf("failed to %s: %w", hook, err)
			}
			return nil
		},
	}
}

func printResult(out io.Writer, result *host.Result) {
	if result.DryRun {
		fmt.Fprintln(out, styles.Render("DryRunBanner", "DRY RUN MODE - No changes were made"))
	}
	for _, part := range result.Parts {
		if part.Skipped {
			fmt.Fprintln(out, styles.Render("Muted", fmt.Sprintf("- %s (skipped: %s)", part.Part, part.Reason)))
			continue
		}
		for _, p := range part.Paths {
			fmt.Fprintf(out, "%s %s %s\n", styles.Render("Success", "✓"),
				styles.Render("PartName", part.Part), styles.Render("FilePath", p))
		}
	}
}

func newRenderCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "render <part>",
		Short: "Print a part's rendered script without writing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, text, err := host.Render(flags.options(nil), args[0])
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", args[0], err)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func newContextCmd(flags *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "context <part>",
		Short: "Print the values a part's placeholders resolve against",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := host.Context(flags.options(nil), args[0])
			if err != nil {
				return fmt.Errorf("failed to build context for %s: %w", args[0], err)
			}
			data, err := encodeContext(ctx, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "toml", "Output format: toml, yaml or json")
	return cmd
}

func encodeContext(ctx render.Context, format string) ([]byte, error) {
	m := map[string]string(ctx)
	switch format {
	case "toml":
		return toml.Marshal(m)
	case "yaml":
		return yaml.Marshal(m)
	case "json":
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want toml, yaml or json)", format)
	}
}

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the bundled templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := templates.List(templates.Bundled())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), styles.Render("Indent", name))
			}
			return nil
		},
	}
}
