package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tesujimath/zbackup/internal/backup"
	"github.com/tesujimath/zbackup/internal/config"
	"github.com/tesujimath/zbackup/internal/notify"
	"github.com/tesujimath/zbackup/internal/policy"
	"github.com/tesujimath/zbackup/internal/tools"
	"github.com/tesujimath/zbackup/internal/ui"
	"github.com/tesujimath/zbackup/internal/zfs"
)

var (
	flagConfig            string
	flagDryRun            bool
	flagVerbose           bool
	flagPrefix            string
	flagTimeFormat        string
	flagDeleteTiers       string
	flagEmail             string
	flagReplicateMatch    string
	flagLogFile           string
	flagZsnapOptions      string
	flagZreplicateOptions string

	// Populated by setup once flags and config are reconciled.
	replicateMatch policy.ReplicateMatch
	smtpAddr       string
	warnLog        *log.Logger
	traceLog       *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "zbackup [flags] <tier>",
	Short: "Property-driven ZFS backup",
	Long: `zbackup snapshots and replicates ZFS filesystems according to policy
declared as user properties on the filesystems themselves.

Running a tier (e.g. "zbackup daily") scans every pool for filesystems
carrying that tier's properties, takes and reaps snapshots, and
replicates where the properties say so.`,
	Args:              cobra.ExactArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		if err := r.Backup(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("%s %s backup complete\n", ui.RenderPass("✓"), ui.RenderAccent(args[0]))
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default zbackup.toml in /etc/zbackup or .)")
	pf.BoolVarP(&flagDryRun, "dry-run", "n", false, "log every tool invocation without executing it")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "be verbose")
	pf.StringVarP(&flagPrefix, "prefix", "p", "auto-", "prefix to prepend to tier in snapshot names")
	pf.StringVarP(&flagTimeFormat, "timeformat", "t", "", "postfix time format to append to snapshot names")
	pf.StringVarP(&flagDeleteTiers, "delete-tiers", "d", "", "comma-separated snapshot tiers to delete before replicating")
	pf.StringVarP(&flagEmail, "email-on-failure", "e", "", "email recipient on failure")
	pf.StringVar(&flagReplicateMatch, "replicate-match", "", `when the replicate property triggers replication: "tier" or "any"`)
	pf.StringVar(&flagLogFile, "log-file", "", "append the run log to this file, with rotation")
	pf.StringVar(&flagZsnapOptions, "zsnap-options", "", "extra options passed to zsnap")
	pf.StringVar(&flagZreplicateOptions, "zreplicate-options", "", "extra options passed to zreplicate")
}

// setup loads the config file and reconciles it with the flags: any flag
// the user did not set on the command line takes its value from config.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("prefix") {
		flagPrefix = cfg.Prefix
	}
	if !flags.Changed("timeformat") {
		flagTimeFormat = cfg.TimeFormat
	}
	if !flags.Changed("delete-tiers") {
		flagDeleteTiers = strings.Join(cfg.DeleteTiers, ",")
	}
	if !flags.Changed("email-on-failure") {
		flagEmail = cfg.EmailOnFailure
	}
	if !flags.Changed("replicate-match") {
		flagReplicateMatch = cfg.ReplicateMatch
	}
	if !flags.Changed("log-file") {
		flagLogFile = cfg.LogFile
	}
	if !flags.Changed("zsnap-options") {
		flagZsnapOptions = cfg.ZsnapOptions
	}
	if !flags.Changed("zreplicate-options") {
		flagZreplicateOptions = cfg.ZreplicateOptions
	}
	smtpAddr = cfg.SMTPAddr

	replicateMatch, err = policy.ParseReplicateMatch(flagReplicateMatch)
	if err != nil {
		return err
	}

	warnLog, traceLog = buildLoggers(flagVerbose, flagDryRun, flagLogFile)
	return nil
}

// buildLoggers returns the warning log (always on stderr) and the trace
// log, which reaches stderr only when verbose. Dry-run forces the trace
// onto stderr too: its whole point is showing what would have run. Both
// logs also feed the rotated log file when one is configured.
func buildLoggers(verbose, dryRun bool, logFile string) (*log.Logger, *log.Logger) {
	verbose = verbose || dryRun
	var file io.Writer
	if logFile != "" {
		file = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     90, // days
		}
	}

	warnW := io.Writer(os.Stderr)
	traceW := io.Writer(io.Discard)
	if verbose {
		traceW = os.Stderr
	}
	if file != nil {
		warnW = io.MultiWriter(warnW, file)
		if verbose {
			traceW = io.MultiWriter(os.Stderr, file)
		} else {
			traceW = file
		}
	}
	return log.New(warnW, "zbackup: ", 0), log.New(traceW, "", 0)
}

// newRunner wires the store and tool adapters into an orchestrator.
func newRunner() (*backup.Runner, error) {
	store, err := zfs.NewCommandStore(traceLog, flagDryRun)
	if err != nil {
		return nil, err
	}
	execRunner := tools.NewRunner(traceLog, flagDryRun)
	snap := &tools.Zsnap{
		Runner:     execRunner,
		Prefix:     flagPrefix,
		TimeFormat: flagTimeFormat,
		Verbose:    flagVerbose,
		Extra:      strings.Fields(flagZsnapOptions),
	}
	repl := &tools.Zreplicate{
		Runner:  execRunner,
		Verbose: flagVerbose,
		Extra:   strings.Fields(flagZreplicateOptions),
	}

	r := backup.NewRunner(store, snap, repl, warnLog, traceLog)
	r.ReplicateMatch = replicateMatch
	if flagDeleteTiers != "" {
		r.DeleteTiers = strings.Split(flagDeleteTiers, ",")
	}
	return r, nil
}

// Execute runs the CLI. On failure it reports the error, sends the
// failure email when one is configured, and exits non-zero. Usage errors
// never reach the email path: the recipient is only known once flag
// parsing and setup have succeeded.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		message := fmt.Sprintf("zbackup failed: %v", err)
		fmt.Fprintln(os.Stderr, ui.RenderFail(message))
		if flagEmail != "" && warnLog != nil {
			mailer := &notify.Mailer{Addr: smtpAddr}
			if mailErr := mailer.SendFailure(flagEmail, message); mailErr != nil {
				warnLog.Printf("%v", mailErr)
			}
		}
		os.Exit(1)
	}
}
