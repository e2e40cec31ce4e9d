package cli

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

const envPrefix = "BINSCRIPT_"

// envSettings are the persistent flag defaults that can come from the
// environment: BINSCRIPT_CONFIG and BINSCRIPT_VERBOSE.
type envSettings struct {
	Config  string `koanf:"config"`
	Verbose int    `koanf:"verbose"`
}

func loadEnv() (envSettings, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return envSettings{}, fmt.Errorf("failed to load env vars: %w", err)
	}

	var s envSettings
	if err := k.Unmarshal("", &s); err != nil {
		return envSettings{}, fmt.Errorf("invalid %s environment: %w", strings.TrimSuffix(envPrefix, "_"), err)
	}
	return s, nil
}

// applyEnv fills flags that were not given on the command line from the
// environment. Explicit flags always win.
func applyEnv(cmd *cobra.Command, flags *globalFlags) error {
	s, err := loadEnv()
	if err != nil {
		return err
	}
	if s.Config != "" && !cmd.Flags().Changed("config") {
		flags.configPath = s.Config
	}
	if s.Verbose > 0 && !cmd.Flags().Changed("verbose") {
		flags.verbosity = s.Verbose
	}
	return nil
}
