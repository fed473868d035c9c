package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/timmy/uthos/internal/config"
	"github.com/timmy/uthos/internal/logger"
	"github.com/timmy/uthos/objectstorage"
)

// app is the state shared by every subcommand.
type app struct {
	cfgFile string
	output  string
	flags   struct {
		endpoint  string
		token     string
		accessKey string
		secretKey string
		dc        string
		timeout   time.Duration
		logLevel  string
	}

	cfg *config.Config
	log *logger.Logger
	out io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "uthos",
		Short:         "Manage Utho object storage",
		Long:          `uthos manages buckets, access keys and objects on Utho object storage.`,
		Version:       objectstorage.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: config.yaml in ./configs, . or ~/.uthos)")
	pf.StringVar(&a.flags.endpoint, "endpoint", "", "API endpoint (default "+objectstorage.DefaultEndpoint+")")
	pf.StringVar(&a.flags.token, "token", "", "API token, sent as a bearer token")
	pf.StringVar(&a.flags.accessKey, "access-key", "", "access key, used with --secret-key when no token is set")
	pf.StringVar(&a.flags.secretKey, "secret-key", "", "secret key")
	pf.StringVar(&a.flags.dc, "dc", "", "data center slug (default innoida)")
	pf.DurationVar(&a.flags.timeout, "timeout", 0, "per request timeout (default 30s)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVarP(&a.output, "output", "o", "table", "output format: table or json")

	root.AddCommand(
		newBucketCmd(a),
		newKeyCmd(a),
		newPolicyCmd(a),
		newPermissionCmd(a),
		newDirCmd(a),
		newFileCmd(a),
		newDevServerCmd(a),
	)

	return root
}

// init loads configuration and applies flag overrides.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Client.Endpoint = a.flags.endpoint
	}
	if flags.Changed("token") {
		cfg.Client.Token = a.flags.token
	}
	if flags.Changed("access-key") {
		cfg.Client.AccessKey = a.flags.accessKey
	}
	if flags.Changed("secret-key") {
		cfg.Client.SecretKey = a.flags.secretKey
	}
	if flags.Changed("dc") {
		cfg.Client.DC = a.flags.dc
	}
	if flags.Changed("timeout") {
		cfg.Client.Timeout = a.flags.timeout
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.output != "table" && a.output != "json" {
		return fmt.Errorf("unknown output format %q", a.output)
	}

	// Logs go to stderr so command output stays parseable.
	opts := cfg.Log.LoggerOptions("uthos")
	if opts.File == "" {
		opts.Output = cmd.ErrOrStderr()
	}
	a.log = logger.New(opts).WithField(logger.FieldComponent, "cli")
	logger.SetDefaultLogger(a.log)
	a.cfg = cfg
	return nil
}

// client builds an API client from the resolved configuration.
func (a *app) client() (*objectstorage.Client, error) {
	return objectstorage.New(a.cfg.Client.ObjectStorage(a.log.FieldLogger()))
}

// dc returns the data center to act on.
func (a *app) dc() string {
	return a.cfg.Client.DC
}

// reportError prints a command failure once, with the request id when the
// API returned one.
func reportError(w io.Writer, err error) {
	var apiErr *objectstorage.Error
	if errors.As(err, &apiErr) && apiErr.RequestID != "" {
		fmt.Fprintf(w, "Error: %v (request id %s)\n", err, apiErr.RequestID)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
