package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/aura"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/resume"
)

const (
	app       = "aura"
	envPrefix = "AURA"
)

type Config struct {
	BaseURL            string        `mapstructure:"base-url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	UserAgent          string        `mapstructure:"user-agent"`
	Token              string        `mapstructure:"token" json:"-"`
	TokenFile          string        `mapstructure:"token-file"`
	OutputDir          string        `mapstructure:"output-dir"`
	MaxResumeSize      int64         `mapstructure:"max-resume-size"`
	Resume             string        `mapstructure:"resume"`
	JobDescriptionFile string        `mapstructure:"job-description-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "aura is a terminal client for screening a resume against a job description and running the follow-up interview",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Keys without a default must be bound explicitly or Unmarshal never sees their variables.
var envKeys = []string{"token", "token-file", "user-agent", "resume", "job-description-file"}

func init() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for _, key := range envKeys {
		env := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("base-url", aura.DefaultBaseURL)
	viper.SetDefault("timeout", aura.DefaultTimeout)
	viper.SetDefault("output-dir", ".")
	viper.SetDefault("max-resume-size", resume.DefaultMaxSize)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is aura.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	// .env is a convenience for local runs; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every key has a default or comes from flags and environment, so only an explicit
	// config file is mandatory. A broken one is still fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
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

	return config, nil
}
