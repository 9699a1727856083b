package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/BBQAnChang/SBHomework/pkg/types"
	"github.com/BBQAnChang/SBHomework/pkg/usermanager"
)

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var params types.UserCreationParams

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a single user through the rate-limited queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withManager(cmd, func(ctx context.Context, m *usermanager.UserManager) error {
				user, err := m.CreateUser(ctx, params)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), opts.output, user)
			})
		},
	}

	cmd.Flags().StringVar(&params.UserID, "id", "", "User id")
	cmd.Flags().StringVar(&params.Nickname, "nickname", "", "Nickname")
	cmd.Flags().StringVar(&params.ProfileURL, "profile-url", "", "Profile image URL")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("nickname")

	return cmd
}

func newBulkCreateCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "bulk-create",
		Short: "Create the users listed in a YAML or JSON file",
		Long: `Create the users listed in a YAML or JSON file. The file holds a list of
entries with user_id, nickname and profile_url. Entries past the configured
max_create_count are reported as failed without being sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := readUserFile(file)
			if err != nil {
				return err
			}

			return opts.withManager(cmd, func(ctx context.Context, m *usermanager.UserManager) error {
				created, err := m.CreateUsers(ctx, params)

				var bulkErr *usermanager.BulkCreateError
				if errors.As(err, &bulkErr) {
					if werr := writeOutput(cmd.OutOrStdout(), opts.output, bulkResult{Created: created, Failed: bulkErr.Failed}); werr != nil {
						return werr
					}
					return err
				}
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), opts.output, bulkResult{Created: created})
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File listing the users to create")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var nickname, profileURL string

	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Update the nickname or profile URL of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := types.UserUpdateParams{UserID: args[0]}
			if cmd.Flags().Changed("nickname") {
				params.Nickname = &nickname
			}
			if cmd.Flags().Changed("profile-url") {
				params.ProfileURL = &profileURL
			}
			if params.Nickname == nil && params.ProfileURL == nil {
				return fmt.Errorf("nothing to update: set --nickname or --profile-url")
			}

			return opts.withManager(cmd, func(ctx context.Context, m *usermanager.UserManager) error {
				user, err := m.UpdateUser(ctx, params)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), opts.output, user)
			})
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "New nickname")
	cmd.Flags().StringVar(&profileURL, "profile-url", "", "New profile image URL")

	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <user-id>",
		Short: "Get a user, from the cache when present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, m *usermanager.UserManager) error {
				user, err := m.GetUser(ctx, args[0])
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), opts.output, user)
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var nickname string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users with an exact nickname",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withManager(cmd, func(ctx context.Context, m *usermanager.UserManager) error {
				users, err := m.GetUsers(ctx, nickname)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), opts.output, users)
			})
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "Nickname to match")
	_ = cmd.MarkFlagRequired("nickname")

	return cmd
}

// bulkResult is printed by bulk-create
type bulkResult struct {
	Created []types.User `json:"created" yaml:"created"`
	Failed  []types.User `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// readUserFile loads creation params from a YAML file; JSON is valid YAML
func readUserFile(path string) ([]types.UserCreationParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var params []types.UserCreationParams
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return params, nil
}
