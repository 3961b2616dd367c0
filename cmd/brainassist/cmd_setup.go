package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/brainassist/internal/config"
	"github.com/user/brainassist/internal/modes"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("BrainAssist Setup")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		cfg.LLM.Provider = choose(scanner, "LLM provider", cfg.LLM.Provider, []string{"gemini", "openai"})
		cfg.LLM.APIKey = prompt(scanner, "API key", cfg.LLM.APIKey)
		if cfg.LLM.Provider == "openai" {
			cfg.LLM.BaseURL = prompt(scanner, "OpenAI-compatible base URL", cfg.LLM.BaseURL)
			cfg.LLM.Model = prompt(scanner, "Model name (used for every mode)", cfg.LLM.Model)
		}

		cfg.Storage.Backend = choose(scanner, "Storage backend", cfg.Storage.Backend, []string{"file", "redis"})
		if cfg.Storage.Backend == "redis" {
			cfg.Storage.RedisAddr = prompt(scanner, "Redis address", cfg.Storage.RedisAddr)
		}

		cfg.Chat.DefaultMode = choose(scanner, "Default chat mode", cfg.Chat.DefaultMode, modes.Names())
		cfg.HTTP.Listen = prompt(scanner, "HTTP listen address", cfg.HTTP.Listen)

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}

// choose re-asks until the answer is one of options.
func choose(scanner *bufio.Scanner, label, defaultVal string, options []string) string {
	label = fmt.Sprintf("%s (%s)", label, strings.Join(options, "/"))
	for {
		v := prompt(scanner, label, defaultVal)
		for _, o := range options {
			if strings.EqualFold(v, o) {
				return o
			}
		}
		if v == defaultVal {
			// stdin closed on an invalid default
			return v
		}
		fmt.Printf("  %q is not one of %s\n", v, strings.Join(options, ", "))
	}
}
