package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/adrg/xdg"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Hanaasagi/labgrade/cmd"
	"github.com/Hanaasagi/labgrade/internal/config"
	"github.com/Hanaasagi/labgrade/internal/input"
	"github.com/Hanaasagi/labgrade/internal/logger"
	"github.com/Hanaasagi/labgrade/internal/report"
	"github.com/Hanaasagi/labgrade/pkg/clipboard"
	"github.com/Hanaasagi/labgrade/pkg/ctcae"
	"github.com/Hanaasagi/labgrade/pkg/megaoak"
)

const (
	appName     = "labgrade"
	defaultSize = 4096
)

var (
	Version     = "0.1.0"
	CommitSha   = "unknown"
	FullVersion = Version + "-" + CommitSha
)

var appDir = filepath.Join(xdg.StateHome, appName)

// AppConfig holds the flags of the grading command
type AppConfig struct {
	inputFile        string
	configPath       string
	sex              string
	format           string
	target           string
	refs             RefFlags
	baselineAbnormal bool
	copy             bool
	showVersion      bool
}

// RefFlags are the reference overrides given on the command line
type RefFlags struct {
	ulnAST float64
	ulnALT float64
	llnK   float64
	llnHb  float64
}

// refFlagKeys maps override flags to reference keys.
var refFlagKeys = []struct {
	flag string
	key  string
}{
	{"uln-ast", ctcae.RefULNAST},
	{"uln-alt", ctcae.RefULNALT},
	{"lln-k", ctcae.RefLLNK},
	{"lln-hb", ctcae.RefLLNHb},
}

func (r *RefFlags) value(flag string) float64 {
	switch flag {
	case "uln-ast":
		return r.ulnAST
	case "uln-alt":
		return r.ulnALT
	case "lln-k":
		return r.llnK
	default:
		return r.llnHb
	}
}

// overrides collects the reference flags the user actually set.
func (c *AppConfig) overrides(changed func(string) bool) (ctcae.Overrides, error) {
	sex, ok := ctcae.ParseSex(c.sex)
	if !ok {
		return ctcae.Overrides{}, fmt.Errorf("invalid --sex %q (want M or F)", c.sex)
	}

	o := ctcae.Overrides{Sex: sex, BaselineAbnormal: c.baselineAbnormal}
	for _, rf := range refFlagKeys {
		if !changed(rf.flag) {
			continue
		}
		if o.Refs == nil {
			o.Refs = make(map[string]float64)
		}
		v := c.refs.value(rf.flag)
		if v <= 0 {
			slog.Warn("Ignoring non-positive reference override", "flag", rf.flag, "value", v)
		}
		o.Refs[rf.key] = v
	}
	return o, nil
}

// loadGrader resolves the config document and builds a grader from it.
func loadGrader(configPath string) (*config.Document, *ctcae.Grader, error) {
	doc, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := doc.Config()
	if err != nil {
		return nil, nil, err
	}

	g, err := ctcae.NewGrader(cfg, ctcae.WithParser(megaoak.NewParser(doc.ParserOptions()...)))
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("Loaded grading config", "source", doc.Source, "labs", len(cfg.Labs))
	return doc, g, nil
}

// outputFormat picks the explicit format, or a table on a terminal and TSV
// when piped.
func outputFormat(explicit string, isTerminal bool) (report.Format, error) {
	if explicit != "" {
		return report.ParseFormat(explicit)
	}
	if isTerminal {
		return report.FormatTable, nil
	}
	return report.FormatTSV, nil
}

// writeOutput writes output to target file or stdout with buffering
func writeOutput(stdout io.Writer, target string, content []byte) error {
	if target == "" {
		_, err := stdout.Write(content)
		return err
	}

	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating target file: %w", err)
	}
	defer file.Close() // nolint: errcheck

	writer := bufio.NewWriterSize(file, defaultSize)
	if _, err := writer.Write(content); err != nil {
		return fmt.Errorf("writing to target file: %w", err)
	}
	return writer.Flush()
}

// copyFindings puts the TSV export on the clipboard
func copyFindings(findings []ctcae.Finding, opts report.Options) error {
	var buf bytes.Buffer
	if err := report.WriteTSV(&buf, findings, opts); err != nil {
		return err
	}
	if err := clipboard.New().Copy(buf.String()); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	slog.Info("Copied findings to clipboard", "count", len(findings))
	return nil
}

// runApp runs the grading command
func runApp(c *cobra.Command, app *AppConfig) error {
	stdout := c.OutOrStdout()

	if app.showVersion {
		fmt.Fprintf(stdout, "%s version: %s\n", appName, FullVersion)
		return nil
	}

	o, err := app.overrides(c.Flags().Changed)
	if err != nil {
		return err
	}

	doc, grader, err := loadGrader(app.configPath)
	if err != nil {
		return err
	}

	text, err := input.ReadFile(app.inputFile, input.DefaultMaxBytes)
	if err != nil {
		return err
	}

	findings := grader.Grade(text, o)
	slog.Info("Graded report", "findings", len(findings), "sex", o.Sex)

	isTerminal := app.target == "" && isTerminalWriter(stdout)
	format, err := outputFormat(app.format, isTerminal)
	if err != nil {
		return err
	}

	opts := report.Options{Color: isTerminal, Header: doc.Report.Header}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, findings, opts); err != nil {
		return err
	}
	if err := writeOutput(stdout, app.target, buf.Bytes()); err != nil {
		return err
	}

	if app.copy {
		opts.Color = false
		return copyFindings(findings, opts)
	}
	return nil
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newRootCommand() *cobra.Command {
	app := &AppConfig{}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Grade lab report values with CTCAE criteria",
		Long: color.New(color.FgHiMagenta).Sprintf(
			"Grade Hb, AST, ALT and K from a pasted lab report using CTCAE criteria. %s",
			color.New(color.FgBlue).Sprintf("(%s)", FullVersion),
		),
		Example: "  labgrade -i report.txt --sex M\n" +
			"  pbpaste | labgrade --uln-ast 35 -f tsv --copy\n" +
			"  labgrade serve --port 18080",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runApp(c, app)
		},
	}

	rootCmd.Flags().StringVarP(&app.inputFile, "input-file", "i", "", "Read the report from file instead of stdin")
	rootCmd.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Grading config file (default: "+config.DefaultPath()+")")
	rootCmd.Flags().StringVarP(&app.sex, "sex", "s", "F", "Sex used for the Hb reference (M or F)")
	rootCmd.Flags().Float64Var(&app.refs.ulnAST, "uln-ast", 0, "Override the AST upper limit of normal (U/L)")
	rootCmd.Flags().Float64Var(&app.refs.ulnALT, "uln-alt", 0, "Override the ALT upper limit of normal (U/L)")
	rootCmd.Flags().Float64Var(&app.refs.llnK, "lln-k", 0, "Override the K lower limit of normal (mmol/L)")
	rootCmd.Flags().Float64Var(&app.refs.llnHb, "lln-hb", 0, "Override the Hb lower limit of normal for the selected sex (g/dL)")
	rootCmd.Flags().BoolVar(&app.baselineAbnormal, "baseline-abnormal", false, "Baseline was abnormal; ULN-based grades are marked approximate")
	rootCmd.Flags().StringVarP(&app.format, "format", "f", "", "Output format: table, tsv or json (default: table on a terminal, tsv otherwise)")
	rootCmd.Flags().BoolVar(&app.copy, "copy", false, "Copy the TSV export to the clipboard")
	rootCmd.Flags().StringVarP(&app.target, "target", "t", "", "Write the output to the specified path")
	rootCmd.Flags().BoolVarP(&app.showVersion, "version", "v", false, "Print version and exit")

	rootCmd.AddCommand(newServeCommand(app), newConfigCommand(app))
	cmd.Setup(rootCmd)

	return rootCmd
}

func initLogging() io.Closer {
	path := logger.DefaultPath(appName)
	closer, err := logger.InitLogger(path, os.Getenv(logger.EnvLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		return nil
	}

	crashFilePath := filepath.Join(appDir, "crash")
	if f, err := os.Create(crashFilePath); err == nil {
		_ = debug.SetCrashOutput(f, debug.CrashOptions{})
	}
	return closer
}

func main() {
	closer := initLogging()

	err := newRootCommand().Execute()
	if err != nil {
		slog.Error("Error executing command", "error", err)
	}
	if closer != nil {
		closer.Close() // nolint: errcheck
	}
	if err != nil {
		os.Exit(1)
	}
}
