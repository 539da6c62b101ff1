package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the active college catalog as json",
	Run: func(_ *cobra.Command, _ []string) {
		logger, config := bootstrap(true)
		defer logger.Sync()

		cat, err := loadCatalog(config, logger)
		if err != nil {
			logger.Fatal("loading catalog", zap.Error(err))
		}
		if err := printJSON(cat.Entries()); err != nil {
			logger.Fatal("printing catalog", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
