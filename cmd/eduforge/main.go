// Command eduforge runs the lesson-generation pipeline against a content
// file and publishes the resulting portal. The process exits zero when at
// least one lesson certifies.
package main

import (
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/eduforge/eduforge"
	"github.com/eduforge/eduforge/capability"
	"github.com/eduforge/eduforge/capability/anthropic"
	"github.com/eduforge/eduforge/capability/openai"
	"github.com/eduforge/eduforge/config"
	"github.com/eduforge/eduforge/core"
	"github.com/eduforge/eduforge/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "eduforge",
		Short:         "Generate interactive lesson portals from educational text",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		inputPath  string
		outputDir  string
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze a content file and publish a lesson portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			level := logging.LogLevelInfo
			if verbose {
				level = logging.LogLevelDebug
			}
			logger := logging.NewLogger(&logging.LoggerConfig{Level: level, Format: "text", Output: os.Stderr})

			cap, err := buildCapability(cfg)
			if err != nil {
				return err
			}

			input, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer input.Close()

			forge := eduforge.New(cap, func(o *eduforge.Options) {
				o.Config = cfg
				o.Logger = logger
			})

			manifest, err := forge.Generate(cmd.Context(), input, outputDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s, portal written to %s\n", manifest.Summary(), outputDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the content file (required)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "lessons", "output directory for the portal")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "optional YAML config file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func buildCapability(cfg config.Config) (core.Capability, error) {
	switch cfg.Provider {
	case "openai":
		return openai.New(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
		}), nil
	case "mock":
		return capability.NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
