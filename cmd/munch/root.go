package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/dshills/automata-go/automata/emit"
	"github.com/dshills/automata-go/automata/lex"
	"github.com/dshills/automata-go/automata/store"
)

type flags struct {
	config     string
	store      string
	dsn        string
	pushback   string
	maxTokens  int
	log        bool
	json       bool
	metrics    bool
	runID      string
	checkpoint string
	resume     string
	noColor    bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "munch [file]",
		Short:         "munch - maximal munch tokenizer built on composable automata",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if f.noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			in := cmd.InOrStdin()
			if len(args) == 1 {
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				in = file
			}
			return tokenize(cmd.Context(), cfg, f, in, out, errOut)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	f.register(root)

	root.AddCommand(newRulesCmd(out))
	root.AddCommand(newHistoryCmd(f, out))
	return root
}

// register binds f to root: config and store flags are persistent so the
// history subcommand shares them.
func (f *flags) register(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "", "YAML configuration file")
	pf.StringVar(&f.store, "store", "", "token journal: memory, sqlite or mysql")
	pf.StringVar(&f.dsn, "dsn", "", "sqlite path or MySQL DSN")
	pf.BoolVar(&f.noColor, "no-color", false, "disable coloured output")

	fl := root.Flags()
	fl.StringVar(&f.pushback, "pushback", "", "pushback policy: full or narrow")
	fl.IntVar(&f.maxTokens, "max-tokens", 0, "stop after this many tokens (0 = unlimited)")
	fl.BoolVar(&f.log, "log", false, "log tokenizer events to stderr")
	fl.BoolVar(&f.json, "json", false, "log events as JSON lines")
	fl.BoolVar(&f.metrics, "metrics", false, "print Prometheus metrics to stderr after the run")
	fl.StringVar(&f.runID, "run-id", "", "run identifier (default: random UUID)")
	fl.StringVar(&f.checkpoint, "checkpoint", "", "save a checkpoint with this ID after the run")
	fl.StringVar(&f.resume, "resume", "", "resume from this checkpoint ID; the input must be replayed from the start")
}

func newRulesCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the built-in rules in priority order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printRules(out, builtinRules())
		},
	}
}

func newHistoryCmd(f *flags, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "history <run-id>",
		Short: "Print every journaled token of a run, skipped ones included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			if cfg.Store == "memory" {
				return errors.New("history needs a persistent store (--store sqlite or mysql)")
			}
			st, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			records, err := st.LoadRun(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load run %s: %w", args[0], err)
			}
			printJournal(out, args[0], records)
			return nil
		},
	}
}

// resolveConfig layers flags over the config file.
func resolveConfig(cmd *cobra.Command, f *flags) (Config, error) {
	cfg, err := LoadConfig(f.config)
	if err != nil {
		return Config{}, err
	}

	changed := cmd.Flags().Changed
	if changed("store") {
		cfg.Store = f.store
	}
	if changed("dsn") {
		cfg.DSN = f.dsn
	}
	if changed("pushback") {
		cfg.Pushback = f.pushback
	}
	if changed("max-tokens") {
		cfg.MaxTokens = f.maxTokens
	}
	if changed("log") {
		cfg.Log.Enabled = f.log
	}
	if changed("json") {
		cfg.Log.JSON = f.json
		cfg.Log.Enabled = cfg.Log.Enabled || f.json
	}
	if changed("metrics") {
		cfg.Metrics = f.metrics
	}
	if cfg.Store == "mysql" && !changed("dsn") {
		if dsn := os.Getenv(dsnEnv); dsn != "" {
			cfg.DSN = dsn
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.Store == "memory" && (f.checkpoint != "" || f.resume != "") {
		return Config{}, errors.New("--checkpoint and --resume need a persistent store (--store sqlite or mysql)")
	}
	return cfg, nil
}

func openStore(cfg Config) (store.Store[rune], func() error, error) {
	switch cfg.Store {
	case "sqlite":
		st, err := store.NewSQLiteStore[rune](cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case "mysql":
		st, err := store.NewMySQLStore[rune](cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return store.NewMemStore[rune](), func() error { return nil }, nil
	}
}

func tokenize(ctx context.Context, cfg Config, f *flags, in io.Reader, out, errOut io.Writer) error {
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var emitter emit.Emitter = emit.NewNullEmitter()
	if cfg.Log.Enabled {
		emitter = emit.NewLogEmitter(errOut, cfg.Log.JSON)
	}

	registry := prometheus.NewRegistry()
	var metrics *lex.Metrics
	if cfg.Metrics {
		metrics = lex.NewMetrics(registry)
	}

	policy, err := lex.ParsePushbackPolicy(cfg.Pushback)
	if err != nil {
		return err
	}

	runID := f.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	tok, err := lex.NewTokenizer[rune](
		lex.WithStore[rune](st),
		lex.WithEmitter(emitter),
		lex.WithMetrics(metrics),
		lex.WithPushbackPolicy(policy),
		lex.WithMaxTokens(cfg.MaxTokens),
		lex.WithSkip(cfg.Skip...),
		lex.WithRunID(runID),
	)
	if err != nil {
		return err
	}
	for _, r := range builtinRules() {
		if err := tok.Add(r.name, r.machine); err != nil {
			return err
		}
	}

	src := lex.FromReader(in)
	var tokens []lex.Token[rune]
	if f.resume != "" {
		tokens, err = tok.ResumeFromCheckpoint(ctx, f.resume, runID, src)
	} else {
		tokens, err = tok.Run(ctx, runID, src)
	}
	printTokens(out, tokens)
	if err == nil {
		err = src.Err()
	}
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}

	if f.checkpoint != "" {
		if err := tok.SaveCheckpoint(ctx, runID, f.checkpoint); err != nil {
			return err
		}
		fmt.Fprintln(errOut, dimStyle.Sprintf("checkpoint %s saved for run %s", f.checkpoint, runID))
	}

	if cfg.Metrics {
		return writeMetrics(errOut, registry)
	}
	return nil
}

func writeMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
