package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"sinacrawler/pkg/config"
	"sinacrawler/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage sinacrawler configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (SINACRAWLER_*, plus REDIS_HOST)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.sinacrawler.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

The Redis password is masked.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the effective configuration for invalid values and
check that the output and checkpoint directories can be created.`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# sinacrawler configuration file
#
# Environment variables prefixed with SINACRAWLER_ override these values,
# for example SINACRAWLER_REDIS_ADDR or SINACRAWLER_OUTPUT_DIR.

# Feed API
sina:
  base_url: "https://m.weibo.cn"
  timeout: 30s
  # One user agent is picked at random per request.
  # Omit to use the built-in pool.
  # user_agents:
  #   - "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) ..."

# Checkpoint store
checkpoint:
  # redis, file or memory
  backend: "redis"
  # Prefix of checkpoint keys (<platform>:<uid>:his) and export file names
  platform: "sina"
  redis_addr: "localhost:6379"
  redis_password: ""
  redis_db: 3
  # Used by the file backend. Defaults to ~/.local/share/sinacrawler/checkpoints
  file_directory: ""

# Exports
output:
  directory: "."

# Retries for transient request failures
retry:
  enabled: true
  max_attempts: 3
  base_delay: 1s
  max_delay: 30s

# Logging configuration
logging:
  # debug, info, warn, error
  level: "info"
  # Optional log file; console logs always go to stderr
  file: ""

# Prometheus metrics
metrics:
  # e.g. ":9090"; empty disables the listener
  addr: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".sinacrawler.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Point checkpoint.redis_addr at your Redis, or set backend to \"file\"")
	fmt.Println("2. Run 'sinacrawler config validate' to check the configuration")
	fmt.Println("3. Start crawling with 'sinacrawler crawl <uid>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	displayCfg := *cfg
	if displayCfg.Checkpoint.RedisPassword != "" {
		displayCfg.Checkpoint.RedisPassword = "***"
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (SINACRAWLER_*, REDIS_HOST)")
	fmt.Println("3. .env files")
	if configFile != "" {
		fmt.Printf("4. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("4. Configuration file: (searched default locations)")
	}
	fmt.Println("5. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var problems []string
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create output directory: %v", err))
	}
	if cfg.Checkpoint.Backend == config.BackendFile && cfg.Checkpoint.FileDirectory != "" {
		if err := os.MkdirAll(cfg.Checkpoint.FileDirectory, 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create checkpoint directory: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		os.Exit(1)
	}

	if cfg.Checkpoint.Backend == config.BackendMemory {
		ui.PrintWarning("Checkpoint backend is memory: checkpoints are lost when the process exits")
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Checkpoint store: %s\n", cfg.Checkpoint.Backend)
	if cfg.Checkpoint.Backend == config.BackendRedis {
		fmt.Printf("  Redis: %s (db %d)\n", cfg.Checkpoint.RedisAddr, cfg.Checkpoint.RedisDB)
	}
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  Max attempts: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
