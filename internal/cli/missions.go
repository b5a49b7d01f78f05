package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/catalog"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

// MissionsOptions holds flags for the missions command.
type MissionsOptions struct {
	*RootOptions
	Role       string
	Difficulty string
}

// MissionSummary is one row of the mission listing.
type MissionSummary struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Role       model.Role       `json:"role"`
	Difficulty model.Difficulty `json:"difficulty"`
	Objectives int              `json:"objectives"`
	Scenarios  int              `json:"scenarios"`
}

// NewMissionsCommand creates the missions command.
func NewMissionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MissionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "missions",
		Short: "List catalog missions",
		Long: `List the missions of the catalog in catalog order.

The catalog is the built-in one unless EHJ_CATALOG_DIR points at a
directory of mission files.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMissions(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Role, "role", "", "only missions for this role (red|blue)")
	cmd.Flags().StringVar(&opts.Difficulty, "difficulty", "", "only missions of this difficulty (beginner|intermediate|advanced)")

	return cmd
}

func runMissions(opts *MissionsOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	role := model.Role(opts.Role)
	if opts.Role != "" && !role.Valid() {
		return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid role %q: must be red or blue", opts.Role), nil)
	}
	difficulty := model.Difficulty(opts.Difficulty)
	if opts.Difficulty != "" && !difficulty.Valid() {
		return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid difficulty %q", opts.Difficulty), nil)
	}

	cfg, err := opts.Config()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeCatalog, "failed to load catalog", err)
	}

	summaries := listMissions(cat, role, difficulty)
	if f.JSON() {
		return f.Success(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(f.Writer, "No missions match.")
		return nil
	}

	tw := f.Table()
	fmt.Fprintln(tw, "ID\tTITLE\tROLE\tDIFFICULTY\tOBJECTIVES\tSCENARIOS")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n", s.ID, s.Title, s.Role, s.Difficulty, s.Objectives, s.Scenarios)
	}
	return tw.Flush()
}

func listMissions(cat *catalog.Catalog, role model.Role, difficulty model.Difficulty) []MissionSummary {
	templates := cat.Missions()
	if role != "" {
		templates = cat.ByRole(role)
	}

	summaries := []MissionSummary{}
	for _, t := range templates {
		if difficulty != "" && t.Difficulty != difficulty {
			continue
		}
		summaries = append(summaries, MissionSummary{
			ID:         t.ID,
			Title:      t.Title,
			Role:       t.Role,
			Difficulty: t.Difficulty,
			Objectives: len(t.Objectives),
			Scenarios:  len(t.Scenarios),
		})
	}
	return summaries
}
