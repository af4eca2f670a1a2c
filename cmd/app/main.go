package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"scopecore/internal/util"
	"strings"
	"time"
)

const ConfigEnv = "SCOPECORE_CONFIG"

var (
	// Version is stamped at build time with -ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configPath string
	debugAST   bool
	timeout    time.Duration
	record     bool
	// program selection
	example string
	list    bool
	all     bool
	recent  int
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configPath, "config", "", "Path to a TOML configuration file (default $"+ConfigEnv+")")
	// evaluator config
	flag.StringVar(&example, "example", "", "Run the named lesson from the built-in catalogue")
	flag.BoolVar(&list, "list", false, "List the built-in lessons and exit")
	flag.BoolVar(&all, "all", false, "Run every built-in lesson concurrently")
	flag.DurationVar(&timeout, "timeout", 0, "Abandon an evaluation that has not finished after this long (0 waits forever)")
	flag.BoolVar(&debugAST, "debug-ast", false, "Write the program tree as a JSON file next to the input")
	// history
	flag.BoolVar(&record, "history", false, "Record runs in the history database")
	flag.IntVar(&recent, "recent", 0, "Print the N most recent recorded runs and exit")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Creates a new Logger that uses a JSONHandler to write to the log writer
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	if f, ok := logWriter.(*os.File); ok && f != os.Stderr {
		defer f.Close()
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter, loggerOptions)))

	a := &app{
		config: config,
		opts: options{
			example: example,
			list:    list,
			all:     all,
			recent:  recent,
		},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	os.Exit(a.run(flag.Args()))
}

// loadConfiguration reads the TOML file, then lets explicitly set flags win.
func loadConfiguration() (util.Configuration, error) {
	path := configPath
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	config, err := util.LoadConfiguration(path)
	if err != nil {
		return config, err
	}
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	if path != "" {
		config.RootPath = filepath.Dir(path)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		case "timeout":
			config.Timeout = timeout
		case "debug-ast":
			config.DebugAST = debugAST
		case "history":
			config.History.Enabled = record
		}
	})
	return config, config.Validate()
}

func configureLogWriter(logFile string) io.Writer {
	if logFile == "" {
		return os.Stderr
	}
	// Create parent directories if they don't exist
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	logWriter, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("scopecore version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: scopecore [options] [program.json|program.yaml]

Options:
  -config <path>     TOML configuration file. Default is $%s.
  -example <name>    Run one lesson from the built-in catalogue.
  -list              List the built-in lessons.
  -all               Run every lesson concurrently and report each outcome.
  -timeout <dur>     Give up on an evaluation after this long, e.g. 2s. Default waits forever.
  -debug-ast         Write the program tree as <input>.ast.json.
  -history           Record each run in the history database.
  -recent <n>        Print the n most recent recorded runs.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error, none. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
Evaluates program trees with lexical scopes, shadowing, mutability checks
and labeled loop control. Emitted lines go to stdout followed by the final
value. A diagnostic goes to stderr and exits with status 1; a timed out
evaluation exits with status 2.

Examples:
  scopecore -list                       Show the lesson catalogue
  scopecore -example nested-loop-break  Run one lesson
  scopecore -all -history               Run every lesson and record the results
  scopecore -timeout 1s program.yaml    Evaluate a program tree from a file

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, ConfigEnv, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// none
		return slog.LevelError + 4
	}
}
