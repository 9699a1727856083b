// Package app wires the usermanager commands.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BBQAnChang/SBHomework/pkg/config"
	"github.com/BBQAnChang/SBHomework/pkg/logger"
	"github.com/BBQAnChang/SBHomework/pkg/usermanager"
)

// rootOptions holds the flags shared by every command
type rootOptions struct {
	configPath string
	appID      string
	apiToken   string
	output     string

	cfg *config.AppConfig
}

// NewRootCmd builds the usermanager command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:               "usermanager",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Manage Sendbird users with a local cache",
		Long: `usermanager creates, updates and looks up Sendbird users, caching every
record it sees. Creation is rate limited; bulk creation accepts a bounded
number of users per call.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to configuration file (defaults to appconfig/$APP_ENV.yaml)")
	flags.StringVar(&opts.appID, "app-id", "", "Sendbird application id (overrides config)")
	flags.StringVar(&opts.apiToken, "api-token", "", "Sendbird API token (overrides config)")
	flags.StringVarP(&opts.output, "output", "o", outputYAML, "Output format: yaml or json")

	rootCmd.AddCommand(
		newCreateCmd(opts),
		newBulkCreateCmd(opts),
		newUpdateCmd(opts),
		newGetCmd(opts),
		newListCmd(opts),
		newServeCmd(opts),
	)

	return rootCmd
}

func (o *rootOptions) load() error {
	var (
		cfg *config.AppConfig
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadConfig(o.configPath)
	} else {
		cfg, err = config.GetConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if o.appID != "" {
		cfg.Sendbird.ApplicationID = o.appID
	}
	if o.apiToken != "" {
		cfg.Sendbird.APIToken = o.apiToken
	}

	if err := logger.Init(cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := validateOutput(o.output); err != nil {
		return err
	}

	o.cfg = cfg
	return nil
}

// newManager builds a user manager from config and initializes it with the
// configured application credentials
func (o *rootOptions) newManager(ctx context.Context) (*usermanager.UserManager, error) {
	manager, err := usermanager.NewFromConfig(ctx, o.cfg)
	if err != nil {
		return nil, err
	}

	if err := manager.InitApplication(ctx, o.cfg.Sendbird.ApplicationID, o.cfg.Sendbird.APIToken); err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	logger.Logger(ctx).WithFields(logrus.Fields{
		"application_id": o.cfg.Sendbird.ApplicationID,
		"cache_driver":   o.cfg.Cache.Driver,
	}).Debug("user manager ready")
	return manager, nil
}

// withManager runs fn with an initialized manager and closes it afterwards
func (o *rootOptions) withManager(cmd *cobra.Command, fn func(ctx context.Context, m *usermanager.UserManager) error) error {
	ctx := cmd.Context()
	manager, err := o.newManager(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := manager.Close(); err != nil {
			logger.Logger(ctx).WithError(err).Warn("failed to close user manager")
		}
	}()

	return fn(ctx, manager)
}
