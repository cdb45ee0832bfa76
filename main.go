package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lifund/temigrate/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		logrusLogger.Fatalf("temigrate: %v", err)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "temigrate",
		Short: "CSV migration toolkit for the Temelio grants platform",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), granteesCmd(), orgsCmd(), grantsCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the migration HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return GetMainEngine().Run(":" + cfg.Port)
		},
	}
}

func granteesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grantees",
		Short: "Grantee organization migrations",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create grantees from an Affinity export and write their ids back",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, func(file string, dryRun bool) (*store.MigrationRun, error) {
				return granteesService.CreateFromCSV(file, dryRun)
			})
		},
	}
	addRunFlags(create)

	update := &cobra.Command{
		Use:   "update",
		Short: "Push custom fields and the foundation POC onto created grantees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, func(file string, dryRun bool) (*store.MigrationRun, error) {
				return granteesService.UpdateFromCSV(file, dryRun)
			})
		},
	}
	addRunFlags(update)

	cmd.AddCommand(create, update)
	return cmd
}

func orgsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orgs",
		Short: "Non-grantee organization migrations",
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import the organizations Temelio doesn't hold yet, in batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			batchSize, _ := cmd.Flags().GetInt("batch-size")
			run, err := granteesService.ImportExtras(file, batchSize, dryRun)
			if err != nil {
				return err
			}
			printRun(run)
			if run.Failed > 0 && run.Succeeded == 0 {
				return fmt.Errorf("every row failed, see run %s", run.ID)
			}
			return nil
		},
	}
	addRunFlags(importCmd)
	importCmd.Flags().Int("batch-size", 100, "organizations per batch")

	cmd.AddCommand(importCmd)
	return cmd
}

func grantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grants",
		Short: "Historical grant migrations",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create grant proposals and payments from an opportunity export",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, func(file string, dryRun bool) (*store.MigrationRun, error) {
				return grantsService.CreateFromCSV(file, dryRun)
			})
		},
	}
	addRunFlags(create)

	updateStages := &cobra.Command{
		Use:   "update-stages",
		Short: "Move existing grants onto the pipeline stage their row names",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, func(file string, dryRun bool) (*store.MigrationRun, error) {
				return grantsService.UpdateStagesFromCSV(file, dryRun)
			})
		},
	}
	addRunFlags(updateStages)

	cmd.AddCommand(create, updateStages)
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "path to the csv export")
	cmd.Flags().Bool("dry-run", false, "log what would happen without calling temelio")
	cmd.MarkFlagRequired("file")
}

func runMigration(cmd *cobra.Command, run func(string, bool) (*store.MigrationRun, error)) error {
	file, _ := cmd.Flags().GetString("file")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	migrationRun, err := run(file, dryRun)
	if err != nil {
		return err
	}
	printRun(migrationRun)
	if migrationRun.Failed > 0 && migrationRun.Succeeded == 0 {
		return fmt.Errorf("every row failed, see run %s", migrationRun.ID)
	}
	return nil
}

func printRun(run *store.MigrationRun) {
	fmt.Fprintf(os.Stdout, "run %s (%s): %d succeeded, %d failed\n",
		run.ID, run.Kind, run.Succeeded, run.Failed)
}
