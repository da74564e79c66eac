// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"visaverse-copilot/pkg/registry"

	"github.com/spf13/cobra"
)

const defaultRegistryPath = "pkg/registry/activities.json"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var path string

	root := &cobra.Command{
		Use:           "registry-updater",
		Short:         "Maintain the activity registry the roadmap workers read their schemas from",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&path, "path", defaultRegistryPath, "path to the registry file")

	root.AddCommand(newAddCmd(&path), newUpdateCmd(&path), newValidateCmd(&path))
	return root
}

func newAddCmd(path *string) *cobra.Command {
	var a registry.Activity

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if errors.Is(err, fs.ErrNotExist) {
				reg = &registry.ActivityRegistry{Version: "1.0.0"}
			} else if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}

			a.InputSchema = map[string]interface{}{}
			a.OutputSchema = map[string]interface{}{}
			if err := reg.Add(a); err != nil {
				return err
			}
			if err := registry.Save(reg, *path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", a.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&a.ID, "id", "", "activity ID (e.g. generate-roadmap)")
	cmd.Flags().StringVar(&a.DisplayName, "displayName", "", "display name")
	cmd.Flags().StringVar(&a.Description, "description", "", "description")
	cmd.Flags().StringVar(&a.Category, "category", "roadmap", "category")
	cmd.Flags().StringVar(&a.TaskType, "taskType", "", "zeebe task type")
	cmd.Flags().StringVar(&a.Version, "version", "1.0.0", "version")
	cmd.Flags().StringVar(&a.ImplementationStatus, "status", registry.StatusPlanned, "implementation status (planned, in-progress, completed, verified)")
	cmd.Flags().StringVar(&a.Timeout, "timeout", "10s", "job timeout")
	for _, f := range []string{"id", "displayName", "taskType"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newUpdateCmd(path *string) *cobra.Command {
	var id, field, value string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update one field of an activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Update(id, field, value); err != nil {
				return err
			}
			if err := registry.Save(reg, *path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "activity ID to update")
	cmd.Flags().StringVar(&field, "field", "", "field to update (status, version, timeout, retries, ...)")
	cmd.Flags().StringVar(&value, "value", "", "new value")
	for _, f := range []string{"id", "field", "value"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newValidateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed (%d activities).\n", len(reg.Activities))
			return nil
		},
	}
}
