package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogfreeze/cmd/blogfreeze/commands"
	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
)

func main() {
	cli := &commands.CLI{}
	parser, err := newParser(cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(&commands.Global{}, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}

func newParser(cli *commands.CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{kong.ConfigureHelp(kong.HelpOptions{Compact: true})}, options...)
	return commands.NewParser(cli, options...)
}
