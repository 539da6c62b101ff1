package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/college-counselor/internal/profile"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank colleges for a profile given in a json or yaml file",
	Run: func(cmd *cobra.Command, _ []string) {
		recommend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("profile", "p", "", "json or yaml file with the student profile")
	recommendCmd.Flags().IntP("max", "n", 0, "maximum number of recommendations (default and cap is 6)")
	recommendCmd.MarkFlagRequired("profile")
}

func recommend(cmd *cobra.Command) {
	logger, config := bootstrap(true)
	defer logger.Sync()

	path, _ := cmd.Flags().GetString("profile")
	limit, _ := cmd.Flags().GetInt("max")

	p, err := readProfile(path)
	if err != nil {
		logger.Fatal("reading the profile", zap.String("file", path), zap.Error(err))
	}

	cat, err := loadCatalog(config, logger)
	if err != nil {
		logger.Fatal("loading catalog", zap.Error(err))
	}
	ranker, err := newRanker(config, logger)
	if err != nil {
		logger.Fatal("configuring ranking", zap.Error(err))
	}

	if err := printJSON(ranker.RankN(p, cat, limit)); err != nil {
		logger.Fatal("printing recommendations", zap.Error(err))
	}
}

// readProfile decodes a profile file. JSON is valid YAML, so one decoder covers both formats.
func readProfile(path string) (*profile.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p := profile.New()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
