package cmd

import (
	"fmt"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/spf13/cobra"
)

// reposCmd lists the repositories with ingested activity.
var reposCmd = &cobra.Command{
	Use:   "repos <org>",
	Short: "List repositories with ingested activity for an organization.",
	Long: `List every repository the activity store has seen for the organization,
across releases, pull requests, and issues.

Examples:
  # List repositories for an organization
  dora repos acme`,
	Args:    cobra.ExactArgs(1),
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		cfg.Org = args[0]
		repos, err := storeManager.GetActivityStore().ListRepositories(rootCtx, cfg.Org)
		if err != nil {
			contract.LogFatal("Cannot list repositories", err)
		}
		if len(repos) == 0 {
			fmt.Printf("No activity found for %s\n", cfg.Org)
			return
		}
		for _, repo := range repos {
			fmt.Println(repo)
		}
	},
}
