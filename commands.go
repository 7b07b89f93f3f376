package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// app carries what every command shares once flags and config are parsed.
type app struct {
	cfgPath string
	cfg     *Config
	flags   Config // flag values, copied over cfg only where set
	log     *slog.Logger
	metrics *metrics

	progress    bool
	progressOut io.Writer

	cpuprofile string
	memprofile string
	cpuFile    *os.File
}

// applyFlags copies every flag the user actually set over the loaded
// config, so flags win over the file and the file wins over defaults.
func (a *app) applyFlags(fs *pflag.FlagSet) {
	c, f := a.cfg, &a.flags
	fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "max-len":
			c.Input.MaxTextLen = f.Input.MaxTextLen
		case "normalize":
			c.Input.Normalize = f.Input.Normalize
		case "period":
			c.Search.Period = f.Search.Period
		case "max-period":
			c.Search.MaxPeriod = f.Search.MaxPeriod
		case "threshold":
			c.Search.IoCThreshold = f.Search.IoCThreshold
		case "multiplier":
			c.Search.IoCMultiplier = f.Search.IoCMultiplier
		case "stagnation":
			c.Search.StagnationLimit = f.Search.StagnationLimit
		case "coefficient":
			c.Search.BudgetCoefficient = f.Search.BudgetCoefficient
		case "last-slice":
			c.Search.InitFromLastSlice = f.Search.InitFromLastSlice
		case "workers":
			c.Search.Workers = f.Search.Workers
		case "seed":
			c.Search.Seed = f.Search.Seed
		case "max-runtime":
			c.Search.MaxRuntime = f.Search.MaxRuntime
		case "monograms":
			c.Tables.Monograms = f.Tables.Monograms
		case "tetragrams":
			c.Tables.Tetragrams = f.Tables.Tetragrams
		case "format":
			c.Output.Format = f.Output.Format
		case "topn":
			c.Output.TopN = f.Output.TopN
		case "show-key":
			c.Output.Key = f.Output.Key
		case "log-level":
			c.Log.Level = f.Log.Level
		case "log-json":
			c.Log.JSON = f.Log.JSON
		case "metrics-addr":
			c.Metrics.Addr = f.Metrics.Addr
		}
	})
}

func (a *app) setup(cmd *cobra.Command) error {
	path := a.cfgPath
	if path == "" {
		path = DefaultConfigPath
	}

	cfg, err := LoadOrDefault(path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.applyFlags(cmd.Flags())

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.log = newLogger(cmd.ErrOrStderr(), a.cfg.Log)
	a.metrics = newMetrics()
	if a.progress {
		a.progressOut = cmd.ErrOrStderr()
	}
	return a.startProfiling()
}

func addSearchFlags(fs *pflag.FlagSet, f *Config) {
	def := Default()
	fs.IntVar(&f.Input.MaxTextLen, "max-len", def.Input.MaxTextLen, "Maximum ciphertext length in letters")
	fs.BoolVar(&f.Input.Normalize, "normalize", false, "Upper-case input and drop non-letters instead of rejecting it")
	fs.IntVar(&f.Search.Period, "period", 0, "Use this period instead of detecting it")
	fs.IntVar(&f.Search.MaxPeriod, "max-period", def.Search.MaxPeriod, "Largest period to try")
	fs.Float64Var(&f.Search.IoCThreshold, "threshold", def.Search.IoCThreshold, "Averaged IoC a period must exceed")
	fs.Float64Var(&f.Search.IoCMultiplier, "multiplier", def.Search.IoCMultiplier, "Jump over the previous period's IoC a period must exceed")
	fs.StringVar(&f.Tables.Monograms, "monograms", "", "Monogram count file (default built-in English)")
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "slippery",
		Short: "Ciphertext-only attack on periodic polyalphabetic substitution ciphers",
		Long: `slippery detects the period of a Vigenère-family cipher with general
substitution alphabets and recovers the alphabets by hill climbing on
tetragram fitness, using nothing but the ciphertext.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.stopProfiling()
		},
	}

	def := Default()
	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgPath, "config", "c", "", "Config file (default "+DefaultConfigPath+" if present)")
	pf.StringVar(&a.flags.Log.Level, "log-level", def.Log.Level, "Log level: debug, info, warn or error")
	pf.BoolVar(&a.flags.Log.JSON, "log-json", false, "Log as JSON")
	pf.StringVar(&a.cpuprofile, "cpuprofile", "", "Write cpu profile to 'file'")
	pf.StringVar(&a.memprofile, "memprofile", "", "Write memory profile to 'file'")

	root.AddCommand(
		newSolveCmd(a),
		newPeriodCmd(a),
		newEncryptCmd(a),
		newDecryptCmd(a),
		newTablesCmd(a),
		newConfigCmd(a),
	)
	return root
}

func newSolveCmd(a *app) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "solve [CIPHERTEXT FILE]",
		Short: "Recover the period and key alphabets of each ciphertext",
		Long: `Read ciphertexts, one per line, from CIPHERTEXT FILE, --text or stdin
and print the best plaintext, key alphabets and fitness for each.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(text, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if a.cfg.Metrics.Addr != "" {
				a.metrics.serve(ctx, a.cfg.Metrics.Addr, a.log)
			}
			return a.solveAll(ctx, in, cmd.OutOrStdout())
		},
	}

	def := Default()
	fs := cmd.Flags()
	addSearchFlags(fs, &a.flags)
	fs.StringVarP(&text, "text", "t", "", "Ciphertext to solve instead of reading input")
	fs.IntVar(&a.flags.Search.StagnationLimit, "stagnation", def.Search.StagnationLimit, "Rejected swaps in a row that end a column's climb")
	fs.Int64Var(&a.flags.Search.BudgetCoefficient, "coefficient", def.Search.BudgetCoefficient, "Search budget is coefficient * period^2 / length non-improving keys")
	fs.BoolVar(&a.flags.Search.InitFromLastSlice, "last-slice", false, "Seed every initial key column from the last period slice")
	fs.IntVarP(&a.flags.Search.Workers, "workers", "p", def.Search.Workers, "Number of independent climbers to run")
	fs.Int64Var(&a.flags.Search.Seed, "seed", 0, "Random seed (0 seeds from the clock)")
	fs.DurationVarP(&a.flags.Search.MaxRuntime, "max-runtime", "r", 0, "Stop each search after this long and report the best so far. Ex: 30s or 1m")
	fs.StringVar(&a.flags.Tables.Tetragrams, "tetragrams", "", "Tetragram count file (default trained from the built-in corpus)")
	fs.StringVarP(&a.flags.Output.Format, "format", "f", def.Output.Format, "Output format: text, json or yaml")
	fs.IntVar(&a.flags.Output.TopN, "topn", def.Output.TopN, "Report the top N distinct solutions")
	fs.BoolVar(&a.flags.Output.Key, "show-key", def.Output.Key, "Print the key alphabets in text output")
	fs.StringVar(&a.flags.Metrics.Addr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	fs.BoolVar(&a.progress, "progress", isTerminal(os.Stderr), "Show a progress spinner on stderr")
	return cmd
}

func newPeriodCmd(a *app) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "period [CIPHERTEXT FILE]",
		Short: "Show the IoC of each candidate period and the period detected",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(text, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()

			out := cmd.OutOrStdout()
			return eachLine(in, a.cfg.Input.MaxTextLen, func(lno int, line []byte) error {
				ct, err := newCiphertext(line, a.cfg.Input.MaxTextLen, a.cfg.Input.Normalize)
				if err != nil {
					a.log.Error("skipping ciphertext", "line", lno, "error", err)
					return nil
				}
				if ct == nil {
					return nil
				}

				pr, err := detectPeriod(ct, a.cfg.Search)
				for i, ioc := range pr.ioc {
					fmt.Fprintf(out, "%4d %8.4f\n", i+1, ioc)
				}
				if err != nil {
					a.log.Error("no period", "line", lno, "error", err)
					return nil
				}
				fmt.Fprintf(out, "period: %d\n", pr.period)
				return nil
			})
		},
	}

	addSearchFlags(cmd.Flags(), &a.flags)
	cmd.Flags().StringVarP(&text, "text", "t", "", "Ciphertext to examine instead of reading input")
	return cmd
}

func newEncryptCmd(a *app) *cobra.Command {
	var keyText, text string

	cmd := &cobra.Command{
		Use:   "encrypt [PLAINTEXT FILE]",
		Short: "Encrypt plaintext lines with a key, or with a random key of --period columns",
		Long: `Encrypt each line of input. Letters are upper-cased and everything else
is dropped. With --period instead of --key a random key is generated and
written to stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := encryptionKey(keyText, a.cfg.Search.Period, a.cfg.Search.Seed)
			if err != nil {
				return err
			}
			if keyText == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "key:", k)
			}

			in, err := openInput(text, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()

			out := cmd.OutOrStdout()
			return eachLine(in, a.cfg.Input.MaxTextLen, func(lno int, line []byte) error {
				pt := normalize(line)
				if len(pt) == 0 {
					return nil
				}
				ct, err := encrypt(pt, k)
				if err != nil {
					return fmt.Errorf("line %d: %w", lno, err)
				}
				_, err = fmt.Fprintf(out, "%s\n", ct)
				return err
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&keyText, "key", "k", "", "Key alphabets, comma separated")
	fs.StringVarP(&text, "text", "t", "", "Plaintext to encrypt instead of reading input")
	fs.IntVar(&a.flags.Search.Period, "period", 0, "Generate a random key with this many columns")
	fs.Int64Var(&a.flags.Search.Seed, "seed", 0, "Seed for the random key (0 seeds from the clock)")
	return cmd
}

func encryptionKey(keyText string, period int, seed int64) (key, error) {
	if keyText != "" {
		return parseKey([]byte(keyText))
	}
	if period < 1 {
		return nil, fmt.Errorf("%w: need --key or --period", ErrInvalidKey)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	k := make(key, period)
	for i := range k {
		k[i].randomize(rng)
	}
	return k, nil
}

func newDecryptCmd(a *app) *cobra.Command {
	var keyText, text string

	cmd := &cobra.Command{
		Use:   "decrypt --key KEY [CIPHERTEXT FILE]",
		Short: "Decrypt ciphertext lines with known key alphabets and score them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKey([]byte(keyText))
			if err != nil {
				return err
			}
			tab, err := loadTables(a.cfg.Tables.Monograms, a.cfg.Tables.Tetragrams, a.log)
			if err != nil {
				return err
			}

			in, err := openInput(text, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()

			out := cmd.OutOrStdout()
			return eachLine(in, a.cfg.Input.MaxTextLen, func(lno int, line []byte) error {
				ct, err := newCiphertext(line, a.cfg.Input.MaxTextLen, a.cfg.Input.Normalize)
				if err != nil {
					return fmt.Errorf("line %d: %w", lno, err)
				}
				if ct == nil {
					return nil
				}

				pt := make([]byte, len(ct))
				if err := decrypt(pt, ct, k); err != nil {
					return fmt.Errorf("line %d: %w", lno, err)
				}
				fmt.Fprintf(out, "%s\n", pt)
				if fit, err := tab.fitness(pt); err == nil {
					fmt.Fprintf(out, "fitness: %8.4f\n", fit)
				}
				return nil
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&keyText, "key", "k", "", "Key alphabets, comma separated")
	fs.StringVarP(&text, "text", "t", "", "Ciphertext to decrypt instead of reading input")
	fs.BoolVar(&a.flags.Input.Normalize, "normalize", false, "Upper-case input and drop non-letters instead of rejecting it")
	fs.StringVar(&a.flags.Tables.Tetragrams, "tetragrams", "", "Tetragram count file (default trained from the built-in corpus)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newTablesCmd(a *app) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the monogram ranking and the most likely tetragrams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, err := loadTables(a.cfg.Tables.Monograms, a.cfg.Tables.Tetragrams, a.log)
			if err != nil {
				return err
			}
			tab.dispFreqs(cmd.OutOrStdout(), top)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&top, "top", "n", 20, "Number of tetragrams to list")
	fs.StringVar(&a.flags.Tables.Monograms, "monograms", "", "Monogram count file (default built-in English)")
	fs.StringVar(&a.flags.Tables.Tetragrams, "tetragrams", "", "Tetragram count file (default trained from the built-in corpus)")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	var initPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration, or write the defaults with --init",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initPath != "" {
				if _, err := os.Stat(initPath); err == nil {
					return fmt.Errorf("%s already exists", initPath)
				}
				if err := Default().Save(initPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Config initialized at: %s\n", initPath)
				return nil
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	cmd.Flags().StringVar(&initPath, "init", "", "Write the default config to this path")
	return cmd
}

// run executes the root command with the given arguments and streams;
// it is what tests drive.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
