package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/llmjson/core/parse"
	"github.com/leofalp/llmjson/core/validate"
	"github.com/leofalp/llmjson/internal/utils"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "llmjson",
		Short:         "Recover structured JSON from LLM output",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newExtractCmd(),
		newRepairCmd(),
		newValidateCmd(),
		newChatCmd(),
	)
	return root
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Print the JSON found in model output",
		Long:  "Runs the extraction cascade over the file (or stdin) and prints the candidate and the strategy that found it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			candidate, ok := parse.Extract(text)
			if !ok {
				return fmt.Errorf("no JSON found: %q", parse.Preview(text))
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "strategy: %s\n", candidate.Strategy)
			fmt.Fprintln(cmd.OutOrStdout(), candidate.Text)
			return nil
		},
	}
}

func newRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair [file]",
		Short: "Apply the JSON repair passes and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			repaired := parse.Repair(text)
			fmt.Fprintln(cmd.OutOrStdout(), repaired)
			if !parse.LooksLikeJSON(repaired) {
				return fmt.Errorf("repaired text is still not a JSON object or array")
			}
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	var required []string

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Extract JSON and check that an object carries the given keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			candidate, ok := parse.Extract(text)
			if !ok {
				return fmt.Errorf("no JSON found: %q", parse.Preview(text))
			}

			outcome := validate.Validate(candidate.Text, requiredKeys(required))
			if !outcome.Valid {
				for _, v := range outcome.Violations {
					fmt.Fprintln(cmd.OutOrStdout(), v.String())
				}
				return fmt.Errorf("%d violation(s)", len(outcome.Violations))
			}

			fmt.Fprintln(cmd.OutOrStdout(), utils.JSONToString(outcome.Value, true))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&required, "require", nil, "top-level keys that must be present (comma separated)")
	return cmd
}

// requiredKeys checks that a JSON object has every key in keys.
func requiredKeys(keys []string) validate.Schema[map[string]any] {
	return validate.Func(func(value map[string]any) []validate.FieldViolation {
		var violations []validate.FieldViolation
		for _, key := range keys {
			if _, ok := value[key]; !ok {
				violations = append(violations, validate.FieldViolation{Path: key, Message: "is required"})
			}
		}
		return violations
	})
}

// readInput returns the content of args[0], or of stdin when no file is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
