package main

import (
	"context"

	"github.com/alecthomas/kong"

	"dealtracker/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug        bool                     `help:"Enable debug logging."`
		Config       string                   `help:"Path to a YAML config file." type:"path" env:"DEALTRACKER_CONFIG"`
		Version      kong.VersionFlag         `help:"Print the version and exit."`
		Serve        commands.ServeCmd        `cmd:"" help:"Run the HTTP API server."`
		Migrate      commands.MigrateCmd      `cmd:"" help:"Apply pending database migrations."`
		CheckAdmin   commands.CheckAdminCmd   `cmd:"" name:"check-admin" help:"Show a user's role and how to make them an admin."`
		PurgeInvites commands.PurgeInvitesCmd `cmd:"" name:"purge-invites" help:"Delete unaccepted invites that expired past the retention period."`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("dealtracker"),
		kong.Description("Multi-tenant sales pipeline tracker."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, Config: cli.Config})
	cmd.FatalIfErrorf(err)
}
