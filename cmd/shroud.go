package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/shroud/internal/audit"
	"github.com/PolarWolf314/shroud/internal/configs"
	kerrors "github.com/PolarWolf314/shroud/internal/errors"
	logger "github.com/PolarWolf314/shroud/internal/logging"
	"github.com/PolarWolf314/shroud/internal/workflows"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose    bool
	debug      bool
	configPath string
	Logger     logger.Logger

	// fileConfig is the merged configuration before relative paths are
	// resolved, as init writes it back out.
	fileConfig configs.Config

	// env is shared by every subcommand once the root pre-run has loaded
	// the configuration.
	env workflows.Environment

	RootCmd = &cobra.Command{
		Use:   "shroud",
		Short: "Shroud - keep a program's profile encrypted while it is not running.",
		Long: `Shroud encrypts a directory of profile files with a hybrid RSA and AES
scheme and decrypts it only while the program that uses it is running.

Each file is encrypted under its own random AES key, which is wrapped with
your RSA public key. The private key is stored encrypted under your
passphrase, so locking never needs the passphrase and unlocking always does.

Configuration is read from shroud.toml (searched for from the working
directory upwards), then SHROUD_* environment variables, then flags.

Examples:
  # Create a key pair protected by a passphrase
  shroud keygen

  # Decrypt the profile, run the program and encrypt it again afterwards
  shroud run

  # Decrypt and encrypt the profile by hand
  shroud unlock
  shroud lock`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupEnvironment,
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: nearest "+configs.FileName+")")
	configs.RegisterFlags(RootCmd.PersistentFlags())

	RootCmd.AddCommand(keygenCmd)
	RootCmd.AddCommand(unlockCmd)
	RootCmd.AddCommand(lockCmd)
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(encryptCmd)
	RootCmd.AddCommand(decryptCmd)
	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(logCmd)
}

// setupEnvironment loads the layered configuration and builds the
// environment the workflows run in.
func setupEnvironment(cmd *cobra.Command, args []string) error {
	Logger = logger.Logger{
		Verbose: verbose,
		Debug:   debug,
	}
	Logger.Debugf("Initializing shroud with verbose=%t, debug=%t", verbose, debug)

	fs := afero.NewOsFs()
	wd, err := os.Getwd()
	if err != nil {
		return Logger.ErrorfAndReturn("failed to get working directory: %w", err)
	}

	path, err := configs.ResolveFile(fs, configPath, wd)
	if errors.Is(err, kerrors.ErrFileNotFound) && cmd == initCmd {
		// init creates the file it was pointed at.
		path, err = "", nil
	}
	if err != nil {
		return Logger.ErrorfAndReturn("failed to find config file: %w", err)
	}
	if path != "" {
		Logger.Infof("Using config file %s", path)
	} else {
		Logger.Debugf("No %s found, using defaults", configs.FileName)
	}

	cfg, err := configs.LoadSources(configs.Sources(fs, path, cmd.Flags())...)
	if err != nil {
		return Logger.ErrorfAndReturn("failed to load configuration: %w", err)
	}
	fileConfig = cfg

	// Relative paths are relative to the config file, so the portable
	// directory can be run from anywhere beneath it.
	base := wd
	if path != "" {
		base = filepath.Dir(path)
	}
	cfg = cfg.ResolvePaths(base)
	Logger.Debugf("Key path: %s, encrypted dir: %s, plain dir: %s", cfg.KeyPath, cfg.EncryptedDir, cfg.PlainDir)

	env = workflows.Environment{
		Fs:     fs,
		Config: cfg,
		Logger: Logger,
		Audit:  audit.NewTrail(cfg.AuditPath()),
	}
	return nil
}

// ExitError carries the exit code for a failure that has already been
// reported to the user.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// reported marks a handled failure so main exits non-zero without printing
// it a second time.
var reported = &ExitError{Code: 1}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := RootCmd.Execute()
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}

// Helper functions for testing

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables and flags to their default
// values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	configPath = ""
	fileConfig = configs.Config{}
	env = workflows.Environment{}
	resetKeygenCommandState()
	resetPassphraseState()
	resetInitCommandState()
	resetLogCommandState()
	resetRunCommandState()
	resetCobraFlagState(RootCmd)
}

// resetCobraFlagState restores every flag of cmd and its subcommands to its
// default and clears Changed, so one test's flags do not leak into the next.
func resetCobraFlagState(cmd *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		_ = flag.Value.Set(flag.DefValue)
		flag.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetCobraFlagState(sub)
	}
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
