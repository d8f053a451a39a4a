package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crimson-sun/vitigate/internal/config"

	// Register upstream sources.
	_ "github.com/crimson-sun/vitigate/internal/upstream/httpclient"
	_ "github.com/crimson-sun/vitigate/internal/upstream/localdir"
)

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	var cfgFile string

	root := &cobra.Command{
		Use:   "vitigate",
		Short: "HTTP gateway for Embrapa viticulture datasets",
		Long: `vitigate serves the Embrapa vitivinicultura CSV downloads as JSON.
Each (action, type) pair maps to one upstream file that is fetched and parsed
on every request.`,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("upstream-dir") {
				v.Set("upstream.source", "dir")
			}
			if cfgFile == "" {
				return nil
			}
			return config.ReadFile(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, v)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (YAML, TOML or JSON)")
	flags.Bool("debug", false, "development logging; accepts the insecure default secret")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("upstream-dir", "", "serve CSV files from a local directory instead of Embrapa")
	bindFlag(v, "server.debug", root, "debug")
	bindFlag(v, "log.level", root, "log-level")
	bindFlag(v, "upstream.dir", root, "upstream-dir")

	root.AddCommand(newServeCmd(v), newFetchCmd(v), newTaxonomyCmd())
	return root
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(name))
}
