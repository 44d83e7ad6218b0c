package main

import (
	"github.com/alecthomas/kong"

	"github.com/technomancy/scpaste/cmd/scpaste/commands"
	apperrors "github.com/technomancy/scpaste/internal/errors"
	"github.com/technomancy/scpaste/internal/version"
)

func main() {
	var cli commands.CLI
	kctx := kong.Parse(&cli,
		kong.Name("scpaste"),
		kong.Description("Publish text as a highlighted paste on your own server."),
		kong.Vars{"version": version.Version},
	)

	err := kctx.Run(&commands.Global{})
	apperrors.NewCLIErrorAdapter(cli.Verbose, nil).HandleError(err)
}
