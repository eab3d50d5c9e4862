package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/alnah/go-formalize/internal/config"
	"github.com/alnah/go-formalize/internal/template"
	"github.com/alnah/go-formalize/internal/translate"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-formalize/config.
Settings can also be overridden via environment variables.

Supported settings:
  provider       Translation provider: gemini, openai, deepseek (env: FORMALIZE_PROVIDER)
  model          Model name for the provider (env: FORMALIZE_MODEL)
  examples-path  Example corpus file (env: FORMALIZE_EXAMPLES)
  listen-addr    Address for "formalize serve" (env: FORMALIZE_ADDR)
  prompt-file    YAML prompt template override (env: FORMALIZE_PROMPT_FILE)`,
		Example: `  formalize config set provider deepseek
  formalize config set examples-path ~/formalize/examples.db
  formalize config get provider
  formalize config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Provider names are validated, paths have ~ expanded, and a prompt file must
parse as a template.`,
		Example: `  formalize config set provider openai
  formalize config set prompt-file ~/prompts/formal.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			return runConfigSet(env, key, value)
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  formalize config get provider`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable overrides.`,
		Example: `  formalize config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if err := config.ValidKey(key); err != nil {
		return err
	}

	// Key-specific validation.
	switch key {
	case config.KeyProvider:
		p, err := translate.ParseProvider(value)
		if err != nil {
			return fmt.Errorf("invalid provider: %w", err)
		}
		value = string(p)
	case config.KeyExamplesPath:
		value = config.ExpandPath(value)
	case config.KeyPromptFile:
		value = config.ExpandPath(value)
		if _, err := os.Stat(value); err != nil {
			return fmt.Errorf("invalid prompt-file: %w", err)
		}
		if _, err := template.Load(value); err != nil {
			return fmt.Errorf("invalid prompt-file: %w", err)
		}
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	value, err := config.Get(key)
	if err != nil {
		return err
	}

	// Check environment variable fallback.
	if value == "" {
		value = env.Getenv(config.EnvVar(key))
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}

	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	// Add environment variable values for completeness.
	for _, key := range config.Keys() {
		if _, ok := data[key]; ok {
			continue
		}
		if envVal := env.Getenv(config.EnvVar(key)); envVal != "" {
			data[key] = envVal + " (from env)"
		}
	}

	if len(data) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys() {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(env.Stdout, "%s=%s\n", key, data[key])
	}

	return nil
}
