package cmd

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"snowddl/internal/config"
	"snowddl/internal/ui"
	"snowddl/pkg/models"
)

var setupOutput string

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Generate config.ini interactively",
	Run:   runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().StringVarP(&setupOutput, "output", "o", "config.ini", "where to write the configuration")
}

func runSetup(cmd *cobra.Command, args []string) {
	fmt.Println("Setting up snowddl...")
	fmt.Println()

	if _, err := os.Stat(setupOutput); err == nil {
		overwrite, err := ui.Confirm(fmt.Sprintf("%s already exists. Overwrite it?", setupOutput), false)
		if err != nil || !overwrite {
			fmt.Println("Setup cancelled.")
			return
		}
	}

	cfg := &models.Config{}

	fmt.Println("Snowflake connection")
	fmt.Println("--------------------")

	connectionQs := []*survey.Question{
		{
			Name: "account",
			Prompt: &survey.Input{
				Message: "Snowflake account (e.g., xy12345.us-east-1):",
			},
			Validate: survey.Required,
		},
		{
			Name: "user",
			Prompt: &survey.Input{
				Message: "User:",
			},
			Validate: survey.Required,
		},
		{
			Name: "warehouse",
			Prompt: &survey.Input{
				Message: "Warehouse:",
				Default: "COMPUTE_WH",
			},
			Validate: survey.Required,
		},
		{
			Name: "database",
			Prompt: &survey.Input{
				Message: "Database:",
			},
			Validate: survey.Required,
		},
		{
			Name: "role",
			Prompt: &survey.Input{
				Message: "Role:",
				Default: "SYSADMIN",
			},
			Validate: survey.Required,
		},
		{
			Name: "region",
			Prompt: &survey.Input{
				Message: "Region (optional):",
			},
		},
	}

	if err := survey.Ask(connectionQs, &cfg.Connection); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	password, err := ui.Password("Password:", "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Connection.Password = password

	fmt.Println()
	fmt.Println("Client and DDL layout")
	fmt.Println("---------------------")

	layoutQs := []*survey.Question{
		{
			Name:     "path",
			Prompt:   &survey.Input{Message: "Path to the snowsql binary:", Default: "snowsql"},
			Validate: survey.Required,
		},
	}
	if err := survey.Ask(layoutQs, &cfg.Client); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	schemaQs := []*survey.Question{
		{
			Name:     "first",
			Prompt:   &survey.Input{Message: "Schema for raw.* files:"},
			Validate: survey.Required,
		},
		{
			Name:     "second",
			Prompt:   &survey.Input{Message: "Schema for stage.* files:"},
			Validate: survey.Required,
		},
		{
			Name:     "third",
			Prompt:   &survey.Input{Message: "Schema for curated.* files:"},
			Validate: survey.Required,
		},
	}
	if err := survey.Ask(schemaQs, &cfg.Schemas); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ddlRoot, err := ui.Input("Root directory of the DDL files:", "ddl", "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	cfg.DDL.Root = ddlRoot

	targetSchema, err := ui.Input("Target schema for the drop command (optional):", "", "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Drop.TargetSchema = targetSchema

	// Offer the OS keyring so the secret can stay out of the file.
	useKeyring, err := ui.Confirm("Store the password in the OS keyring instead of config.ini?", true)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if useKeyring {
		if err := config.StorePassword(cfg, password); err != nil {
			ui.ShowWarning(fmt.Sprintf("keyring unavailable, writing the password to the file instead: %v", err))
			useKeyring = false
		}
	}

	if err := config.WriteFile(cfg, setupOutput, !useKeyring); err != nil {
		ui.ShowError(err)
		os.Exit(1)
	}

	ui.ShowSuccess(fmt.Sprintf("Configuration written to %s", setupOutput))
	fmt.Println("Run 'snowddl check' to verify connectivity.")
}
