package cmd

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/college-counselor/internal/conversation"
	"github.com/spigell/college-counselor/internal/session"
	"github.com/spigell/college-counselor/internal/storage"
)

const (
	app       = "college-counselor"
	envPrefix = "COUNSELOR"
)

type Config struct {
	Counselor   string         `mapstructure:"counselor"`
	CatalogFile string         `mapstructure:"catalog-file"`
	Oracle      *OracleConfig  `mapstructure:"oracle"`
	Gemini      *GeminiConfig  `mapstructure:"gemini"`
	Storage     *StorageConfig `mapstructure:"storage"`
	Session     session.Config `mapstructure:"session"`
	Server      *ServerConfig  `mapstructure:"server"`
	Ranking     *RankingConfig `mapstructure:"ranking"`
}

type OracleConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type GeminiConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type StorageConfig struct {
	storage.Config `mapstructure:",squash"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	AllowOrigins  []string      `mapstructure:"allow-origins"`
	SweepInterval time.Duration `mapstructure:"sweep-interval"`
}

type RankingConfig struct {
	DisabledBonuses []string `mapstructure:"disabled-bonuses"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "college-counselor is a conversational college admissions counselor for Indian students",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is college-counselor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("catalog-file", "", "yaml file with colleges replacing the built-in catalog")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("catalog-file", rootCmd.PersistentFlags().Lookup("catalog-file"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("counselor", conversation.DefaultCounselor)
	v.SetDefault("catalog-file", "")

	v.SetDefault("oracle.timeout", 30*time.Second)

	v.SetDefault("gemini.enabled", true)
	v.SetDefault("gemini.api-key", "")
	v.SetDefault("gemini.api-key-file", "")
	v.SetDefault("gemini.model", "")
	v.SetDefault("gemini.max-retries", 3)
	v.SetDefault("gemini.max-log-length", 2000)

	v.SetDefault("storage.driver", storage.DriverFile)
	v.SetDefault("storage.dir", "student_profiles")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.timeout", 5*time.Second)
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", app+":")
	v.SetDefault("storage.redis.ttl", 30*24*time.Hour)

	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("session.max-sessions", 10000)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allow-origins", []string{})
	v.SetDefault("server.sweep-interval", time.Minute)

	v.SetDefault("ranking.disabled-bonuses", []string{})
}

func initConfig() {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("gemini.api-key", envPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("gemini.api-key-file", envPrefix+"_GEMINI_API_KEY_FILE", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// An explicitly requested config must parse.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Oracle == nil {
		config.Oracle = &OracleConfig{}
	}
	if config.Gemini == nil {
		config.Gemini = &GeminiConfig{}
	}
	if config.Storage == nil {
		config.Storage = &StorageConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Ranking == nil {
		config.Ranking = &RankingConfig{}
	}

	return config, nil
}
