package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/HershLalwani/qstaq/circuit"
	"github.com/HershLalwani/qstaq/superstaq"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// rawJSON keeps device payloads as JSON so they can be printed without a
// device-specific library.
func rawJSON(raw []byte) (any, error) {
	return jsoniter.RawMessage(append([]byte(nil), raw...)), nil
}

// loadConfig merges the config file with command line flags. Flags win.
func loadConfig(c *cli.Context) (superstaq.Config, error) {
	var cfg superstaq.Config
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = superstaq.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if v := c.String("api-key"); v != "" {
		cfg.APIKey = v
	}
	if v := c.String("remote-host"); v != "" {
		cfg.RemoteHost = v
	}
	return cfg, nil
}

func newProvider(c *cli.Context, logger *zap.Logger) (*superstaq.Provider, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return superstaq.NewProvider(
		superstaq.WithConfig(cfg),
		superstaq.WithLogger(logger),
		superstaq.WithModule(superstaq.ModuleQtrl, rawJSON),
		superstaq.WithModule(superstaq.ModulePulser, rawJSON),
	)
}

// withProvider wraps a command action with logger and provider construction.
func withProvider(action func(*cli.Context, *superstaq.Provider) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		logger, err := createLogger(c.Bool("debug"), c.String("log-file"))
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
		p, err := newProvider(c, logger)
		if err != nil {
			return err
		}
		return action(c, p)
	}
}

func readCircuits(paths []string) ([]*circuit.Circuit, error) {
	if len(paths) == 0 {
		return nil, errors.New("no QASM files given")
	}
	out := make([]*circuit.Circuit, 0, len(paths))
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read circuit")
		}
		c, err := circuit.ParseQASM(string(src))
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
		c.Name = path
		out = append(out, c)
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode output")
	}
	_, err = w.Write(pretty.Pretty(raw))
	return err
}

func targetOrDefault(c *cli.Context, p *superstaq.Provider) (string, error) {
	if t := c.String("target"); t != "" {
		return t, nil
	}
	if t := p.Config().DefaultTarget; t != "" {
		return t, nil
	}
	return "", errors.New("no target: pass --target or set defaultTarget in the config file")
}

var backendsCommand = &cli.Command{
	Name:  "backends",
	Usage: "list backends that can compile and run circuits",
	Action: withProvider(func(c *cli.Context, p *superstaq.Provider) error {
		backends, err := p.Backends(c.Context)
		if err != nil {
			return err
		}
		for _, b := range backends {
			fmt.Fprintln(c.App.Writer, b.Name())
		}
		return nil
	}),
}

var balanceCommand = &cli.Command{
	Name:  "balance",
	Usage: "show the account balance",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "raw", Usage: "print the plain number"},
	},
	Action: withProvider(func(c *cli.Context, p *superstaq.Provider) error {
		if c.Bool("raw") {
			b, err := p.Balance(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, b)
			return nil
		}
		s, err := p.FormattedBalance(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, s)
		return nil
	}),
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "run QASM circuits and print their counts",
	ArgsUsage: "FILE.qasm...",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "backend name"},
		&cli.IntFlag{Name: "shots", Aliases: []string{"s"}, Value: 1000},
		&cli.BoolFlag{Name: "no-wait", Usage: "print the job id and exit"},
		&cli.BoolFlag{Name: "json", Usage: "print counts as JSON"},
	},
	Action: withProvider(func(c *cli.Context, p *superstaq.Provider) error {
		circuits, err := readCircuits(c.Args().Slice())
		if err != nil {
			return err
		}
		target, err := targetOrDefault(c, p)
		if err != nil {
			return err
		}
		job, err := p.GetBackend(target).Run(c.Context, circuits, superstaq.RunOptions{Shots: c.Int("shots")})
		if err != nil {
			return err
		}
		if c.Bool("no-wait") {
			fmt.Fprintln(c.App.Writer, job.ID())
			return nil
		}
		res, err := job.Result(c.Context)
		if err != nil {
			return err
		}
		if c.Bool("json") {
			all := make([]map[string]int, len(res.Experiments))
			for i, e := range res.Experiments {
				all[i] = e.Counts
			}
			return printJSON(c.App.Writer, map[string]any{"job_id": res.JobID, "counts": all})
		}
		for i, e := range res.Experiments {
			name := fmt.Sprintf("experiment %d", i)
			if i < len(circuits) {
				name = circuits[i].Name
			}
			fmt.Fprintf(c.App.Writer, "%s (%d shots)\n", name, e.Shots)
			fmt.Fprint(c.App.Writer, formatCounts(e.Counts))
		}
		return nil
	}),
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %s: %d\n", k, counts[k])
	}
	return sb.String()
}

var statusCommand = &cli.Command{
	Name:      "status",
	Usage:     "show the status of a job",
	ArgsUsage: "JOB_ID",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "backend the job ran on"},
	},
	Action: withProvider(func(c *cli.Context, p *superstaq.Provider) error {
		id := c.Args().First()
		if id == "" {
			return errors.New("missing job id")
		}
		st, err := superstaq.NewJob(p.GetBackend(c.String("target")), id).Status(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, st)
		return nil
	}),
}

var compileCommand = &cli.Command{
	Name:      "compile",
	Usage:     "compile QASM circuits for a device family",
	ArgsUsage: "FILE.qasm...",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "family",
			Aliases:  []string{"f"},
			Usage:    "aqt, aqt-eca, ibmq, qscout, cq or neutral-atom",
			Required: true,
		},
		&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "device target (family default if empty)"},
		&cli.IntFlag{Name: "num-eca", Value: 1, Usage: "equivalent circuits to generate (aqt-eca)"},
		&cli.Int64Flag{Name: "seed", Usage: "randomizer seed (aqt-eca)"},
		&cli.BoolFlag{Name: "json", Usage: "print the whole compiler output as JSON"},
	},
	Action: withProvider(func(c *cli.Context, p *superstaq.Provider) error {
		circuits, err := readCircuits(c.Args().Slice())
		if err != nil {
			return err
		}
		target := c.String("target")

		var out *superstaq.CompilerOutput
		switch family := c.String("family"); family {
		case "aqt":
			out, err = p.AQTCompileBatch(c.Context, circuits, target)
		case "aqt-eca":
			var seed *int64
			if c.IsSet("seed") {
				s := c.Int64("seed")
				seed = &s
			}
			out, err = p.AQTCompileECA(c.Context, circuits[0], c.Int("num-eca"), seed, target)
		case "ibmq":
			out, err = p.IBMQCompileBatch(c.Context, circuits, target)
		case "qscout":
			out, err = p.QSCOUTCompileBatch(c.Context, circuits, target)
		case "cq":
			out, err = p.CQCompileBatch(c.Context, circuits, target)
		case "neutral-atom":
			pulses, err := p.NeutralAtomCompileBatch(c.Context, circuits, target)
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, map[string]any{"pulses": pulses})
		default:
			return errors.Errorf("unknown compiler family %q", family)
		}
		if err != nil {
			return err
		}
		return printCompilerOutput(c.App.Writer, out, c.Bool("json"))
	}),
}

func printCompilerOutput(w io.Writer, out *superstaq.CompilerOutput, asJSON bool) error {
	qasm := make([]string, len(out.Circuits))
	for i, c := range out.Circuits {
		qasm[i] = c.ToQASM()
	}
	if asJSON {
		doc := map[string]any{"circuits": qasm}
		if out.JaqalPrograms != nil {
			doc["jaqal_programs"] = out.JaqalPrograms
		}
		if out.PulseSequences != nil {
			doc["pulse_sequences"] = out.PulseSequences
		}
		if out.PulseLists != nil {
			doc["pulse_lists"] = out.PulseLists
		}
		if out.Seq != nil {
			doc["seq"] = out.Seq
		}
		return printJSON(w, doc)
	}
	for i, src := range qasm {
		if len(qasm) > 1 {
			fmt.Fprintf(w, "// circuit %d\n", i)
		}
		fmt.Fprint(w, src)
		if i < len(out.JaqalPrograms) {
			fmt.Fprintf(w, "\n// jaqal\n%s\n", out.JaqalPrograms[i])
		}
	}
	return nil
}

var ibmqTokenCommand = &cli.Command{
	Name:      "ibmq-token",
	Usage:     "store an IBM Quantum token with the account",
	ArgsUsage: "TOKEN",
	Action: withProvider(func(c *cli.Context, p *superstaq.Provider) error {
		token := c.Args().First()
		if token == "" {
			return errors.New("missing token")
		}
		reply, err := p.IBMQSetToken(c.Context, token)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, reply)
		return nil
	}),
}

var aqtConfigsCommand = &cli.Command{
	Name:  "aqt-configs",
	Usage: "manage the AQT pulse and variable configuration",
	Subcommands: []*cli.Command{
		{
			Name:      "get",
			Usage:     "download the configuration into two YAML files",
			ArgsUsage: "PULSES.yaml VARIABLES.yaml",
			Action: withProvider(func(c *cli.Context, p *superstaq.Provider) error {
				if c.NArg() != 2 {
					return errors.New("expected pulses and variables file paths")
				}
				cfgs, err := p.AQTGetConfigs(c.Context)
				if err != nil {
					return err
				}
				if err := os.WriteFile(c.Args().Get(0), []byte(cfgs.Pulses), 0o644); err != nil {
					return errors.Wrap(err, "write pulses")
				}
				return errors.Wrap(os.WriteFile(c.Args().Get(1), []byte(cfgs.Variables), 0o644), "write variables")
			}),
		},
		{
			Name:      "upload",
			Usage:     "upload the configuration from two YAML files",
			ArgsUsage: "PULSES.yaml VARIABLES.yaml",
			Action: withProvider(func(c *cli.Context, p *superstaq.Provider) error {
				if c.NArg() != 2 {
					return errors.New("expected pulses and variables file paths")
				}
				pulses, err := os.ReadFile(c.Args().Get(0))
				if err != nil {
					return errors.Wrap(err, "read pulses")
				}
				variables, err := os.ReadFile(c.Args().Get(1))
				if err != nil {
					return errors.Wrap(err, "read variables")
				}
				reply, err := p.AQTUploadConfigs(c.Context, pulses, variables)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, reply)
				return nil
			}),
		},
	},
}

var editCommand = &cli.Command{
	Name:      "edit",
	Usage:     "open the interactive circuit editor",
	ArgsUsage: "[FILE.qasm]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "backend used by ^R"},
		&cli.IntFlag{Name: "shots", Aliases: []string{"s"}, Value: 1000},
	},
	Action: func(c *cli.Context) error {
		logger := zap.NewNop()
		if path := c.String("log-file"); path != "" {
			var err error
			if logger, err = createLogger(c.Bool("debug"), path); err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
		}

		path := c.Args().First()
		qasm := defaultQASM
		if path != "" {
			src, err := os.ReadFile(path)
			switch {
			case err == nil:
				qasm = string(src)
			case !os.IsNotExist(err):
				return errors.Wrap(err, "read circuit")
			}
		}

		// Running is optional in the editor; a missing key only disables ^R.
		var backend *superstaq.Backend
		if p, err := newProvider(c, logger); err == nil {
			if target, err := targetOrDefault(c, p); err == nil {
				backend = p.GetBackend(target)
			}
		} else {
			logger.Info("editor running offline", zap.Error(err))
		}

		m := newModel(c.Context, path, qasm, backend, c.Int("shots"), logger)
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(c.Context)).Run()
		return errors.Wrap(err, "editor")
	},
}
