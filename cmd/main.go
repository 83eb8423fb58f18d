package main

import (
	"particle-telemetry/internal/telemetry"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/syncromatics/go-kit/v2/log"
)

var (
	rootCmd = cobra.Command{
		Use:           "particle-telemetry",
		Short:         "sample a particle sensor and ship readings to a collector on a wall-clock schedule",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			settings := &telemetry.Settings{}
			err := viper.Unmarshal(settings)
			if err != nil {
				return errors.Wrap(err, "failed to parse settings")
			}
			log.Info("using settings",
				"settings", settings)

			return telemetry.Execute(settings)
		},
	}
)

func init() {
	telemetry.ConfigureFlags(rootCmd.Flags())

	viper.SetEnvPrefix("TELEMETRY")
	replacer := strings.NewReplacer("-", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()
	viper.BindPFlags(rootCmd.Flags())
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal("failed to terminate cleanly",
			"err", err)
	}
}
