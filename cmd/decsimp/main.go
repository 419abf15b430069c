// Command decsimp simplifies decimal IR trees.
//
// Usage:
//
//	decsimp [-config file] [-trace] [-verify] [-last-run] [-bisect n] [-state] [-eval] [-set sym=value]... file
//
// The file holds statements in the textual tree notation, or - for stdin.
// The simplified block is printed to stdout.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andrewarchi/decsimp/eval"
	"github.com/andrewarchi/decsimp/internal/config"
	"github.com/andrewarchi/decsimp/ir"
	"github.com/andrewarchi/decsimp/ir/optimize"
	"github.com/andrewarchi/decsimp/syntax"
)

// bindings collects -set flags.
type bindings map[string]decimal.Decimal

func (b bindings) String() string {
	var parts []string
	for sym, d := range b {
		parts = append(parts, sym+"="+d.String())
	}
	return strings.Join(parts, ",")
}

func (b bindings) Set(s string) error {
	sym, value, ok := strings.Cut(s, "=")
	if !ok || sym == "" {
		return errors.Errorf("binding %q is not sym=value", s)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return errors.Wrapf(err, "binding %s", sym)
	}
	b[sym] = d
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("decsimp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "YAML or TOML settings file")
		trace      = fs.Bool("trace", false, "log every transformation")
		verify     = fs.Bool("verify", false, "verify the block before and after simplifying")
		lastRun    = fs.Bool("last-run", false, "simplify as the final run")
		bisect     = fs.Int("bisect", -1, "commit only the transformations numbered below `n`")
		state      = fs.Bool("state", false, "print sign state")
		evaluate   = fs.Bool("eval", false, "evaluate the block before and after simplifying")
		set        = bindings{}
	)
	fs.Var(set, "set", "bind `sym=value` for -eval")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: decsimp [flags] file")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "trace":
			cfg.Trace = *trace
		case "verify":
			cfg.Verify = *verify
		case "last-run":
			cfg.LastRun = *lastRun
		case "bisect":
			cfg.BisectLimit = *bisect
		}
	})

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer log.Sync()

	b, err := parse(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if cfg.Verify {
		if err := ir.Verify(b); err != nil {
			log.Error("invalid input block", zap.Error(err))
			return 1
		}
	}

	mem := eval.NewMemory()
	for sym, d := range set {
		mem.Set(sym, d)
	}
	var before *eval.Memory
	if *evaluate {
		before = mem.Clone()
		if err := eval.New(before).Run(b); err != nil {
			log.Error("evaluate input block", zap.Error(err))
			return 1
		}
	}

	s := optimize.New(
		optimize.WithCapabilities(cfg.Capabilities()),
		optimize.WithGate(optimize.BisectGate{Limit: cfg.BisectLimit}),
		optimize.WithLogger(log.Named("simplify")),
	)
	changed := s.SimplifyBlock(b)
	log.Info("simplified", zap.Bool("changed", changed), zap.Int("transformations", s.Seq()))

	if cfg.Verify {
		if err := ir.Verify(b); err != nil {
			log.Error("invalid simplified block", zap.Error(err))
			return 1
		}
	}
	f := ir.NewFormatter()
	f.State = *state
	fmt.Fprint(stdout, f.FormatBlock(b))

	if *evaluate {
		after := mem.Clone()
		if err := eval.New(after).Run(b); err != nil {
			log.Error("evaluate simplified block", zap.Error(err))
			return 1
		}
		if !compareMemory(before, after, stderr) {
			return 1
		}
	}
	return 0
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if cfg.Trace {
		level = zap.DebugLevel
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func parse(filename string, stdin io.Reader) (*ir.Block, error) {
	if filename == "-" {
		return syntax.Parse("<stdin>", stdin)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return syntax.Parse(filename, f)
}

// compareMemory reports the symbols whose values differ between two
// evaluations and returns whether they all agree.
func compareMemory(before, after *eval.Memory, w io.Writer) bool {
	syms := before.Symbols()
	seen := make(map[string]bool, len(syms))
	for _, sym := range syms {
		seen[sym] = true
	}
	for _, sym := range after.Symbols() {
		if !seen[sym] {
			syms = append(syms, sym)
		}
	}
	ok := true
	for _, sym := range syms {
		x, errx := before.Number(sym)
		y, erry := after.Number(sym)
		switch {
		case errx != nil || erry != nil:
			fmt.Fprintf(w, "%s: before %v, after %v\n", sym, valueOrError(x, errx), valueOrError(y, erry))
			ok = false
		case !x.Equal(y):
			fmt.Fprintf(w, "%s: before %v, after %v\n", sym, x, y)
			ok = false
		}
	}
	return ok
}

func valueOrError(d decimal.Decimal, err error) string {
	if err != nil {
		return err.Error()
	}
	return d.String()
}
