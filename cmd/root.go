// Package cmd contains the didparse command line interface.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/vc"
	"github.com/pilacorp/go-did-sdk/credential/vp"
	"github.com/pilacorp/go-did-sdk/did"
)

var stdOutWriter io.Writer = os.Stdout

func createRootCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:          "didparse",
		Short:        "Parse, validate and normalize DID documents, Verifiable Credentials and Verifiable Presentations",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cfg.Load(cmd.Flags())
		},
	}
}

func createDocumentCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "did [file...]",
		Short: "Parse DID documents and print them normalized. Reads stdin when no file is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []did.DocumentOpt
			if cfg.Strict {
				opts = append(opts, did.WithSchemaValidation())
			}
			return runBatch(cmd, cfg, args, func(data []byte) (jsonvalue.Value, error) {
				doc, err := did.ParseDocument(data, opts...)
				if err != nil {
					return jsonvalue.Value{}, err
				}
				return doc.ToValue(), nil
			})
		},
	}
}

func createCredentialCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "vc [file...]",
		Short: "Parse Verifiable Credentials and print them normalized. Reads stdin when no file is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := credentialOptions(cfg)
			if err != nil {
				return err
			}
			return runBatch(cmd, cfg, args, func(data []byte) (jsonvalue.Value, error) {
				c, err := vc.ParseCredential(data, opts...)
				if err != nil {
					return jsonvalue.Value{}, err
				}
				return c.ToValue(), nil
			})
		},
	}
}

func createPresentationCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "vp [file...]",
		Short: "Parse Verifiable Presentations and print them normalized. Reads stdin when no file is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			credentialOpts, err := credentialOptions(cfg)
			if err != nil {
				return err
			}
			opts := []vp.PresentationOpt{vp.WithCredentialOptions(credentialOpts...)}
			if cfg.Strict {
				opts = append(opts, vp.WithStrictTypes())
			}
			return runBatch(cmd, cfg, args, func(data []byte) (jsonvalue.Value, error) {
				p, err := vp.ParsePresentation(data, opts...)
				if err != nil {
					return jsonvalue.Value{}, err
				}
				return p.ToValue(), nil
			})
		},
	}
}

func createPrintConfigCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Prints the current config",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("Current config settings:")
			cmd.Println(cfg.PrintConfig())
		},
	}
}

func credentialOptions(cfg *Config) ([]vc.CredentialOpt, error) {
	var opts []vc.CredentialOpt
	if cfg.Strict {
		opts = append(opts, vc.WithStrictTypes())
	}
	if cfg.Schema != "" {
		schema, err := os.ReadFile(cfg.Schema)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema: %w", err)
		}
		opts = append(opts, vc.WithSchemaValidation(schema))
	}
	return opts, nil
}

// CreateCommand creates the command with all subcommands to run the CLI.
func CreateCommand() *cobra.Command {
	cfg := NewConfig()
	command := createRootCommand(cfg)
	command.SetOut(stdOutWriter)
	command.PersistentFlags().AddFlagSet(FlagSet())
	command.AddCommand(
		createDocumentCommand(cfg),
		createCredentialCommand(cfg),
		createPresentationCommand(cfg),
		createKeyCommand(cfg),
		createPrintConfigCommand(cfg),
	)
	return command
}

// Execute runs the CLI with the process arguments.
func Execute() {
	if err := CreateCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
