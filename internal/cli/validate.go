package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/catalog"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                      `json:"valid"`
	Missions int                       `json:"missions"`
	Errors   []catalog.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [missions-dir]",
		Short: "Validate a mission catalog",
		Long: `Validate mission YAML files against the catalog schema and check
cross references (objectives, scenarios, mini-games, unique ids).

Without a directory the built-in catalog is checked.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(rootOpts, dir, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	var (
		cat *catalog.Catalog
		err error
	)
	if dir == "" {
		formatter.VerboseLog("Validating built-in catalog")
		cat, err = catalog.Default()
	} else {
		formatter.VerboseLog("Validating missions in %s", dir)
		cat, err = catalog.LoadDir(dir)
	}

	var verrs catalog.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return outputValidationErrors(formatter, verrs)
	case errors.Is(err, fs.ErrNotExist):
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("%s not found", dir), err)
	case err != nil:
		return formatter.Fail(ExitCommandError, ErrCodeCatalog, "failed to load catalog", err)
	case cat.Len() == 0:
		return formatter.Fail(ExitCommandError, ErrCodeCatalog, fmt.Sprintf("no mission files found in %s", dir), nil)
	}

	return outputValidateSuccess(formatter, cat.Len())
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, missions int) error {
	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Missions: missions})
	}

	fmt.Fprintf(formatter.Writer, "✓ Catalog valid (%d missions)\n", missions)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []catalog.ValidationError) error {
	if formatter.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s line %d\n", err.Field, err.Line)
		} else {
			fmt.Fprintln(formatter.Writer, err.Field)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
