package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/lox/blackjack/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every command
type Globals struct {
	Config string `short:"c" default:"blackjack.hcl" env:"BLACKJACK_CONFIG" help:"Path to HCL configuration file"`
	Debug  bool   `help:"Enable debug logging"`

	out io.Writer
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Play    PlayCmd          `cmd:"" default:"1" help:"Play at a local table in the terminal"`
	Serve   ServeCmd         `cmd:"" help:"Serve the table to websocket clients"`
	State   StateCmd         `cmd:"" help:"Inspect or clear saved bankrolls and stats"`
}

func main() {
	// A .env file is optional
	_ = godotenv.Load()

	cli := CLI{Globals: Globals{out: os.Stdout}}
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Blackjack for one or two players against the dealer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

func (g *Globals) loadConfig() (*config.Config, error) {
	return config.Load(g.Config)
}

func (g *Globals) stdout() io.Writer {
	if g.out == nil {
		return os.Stdout
	}
	return g.out
}

// newLogger writes to w at the configured level; --debug wins over the file
func (g *Globals) newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	if g.Debug {
		lvl = log.DebugLevel
	}
	logger.SetLevel(lvl)
	return logger
}
