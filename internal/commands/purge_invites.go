package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"dealtracker/internal/logger"
	"dealtracker/internal/repositories"
	"dealtracker/pkg/database"
)

// PurgeInvitesCmd deletes unaccepted invites that expired longer ago than the retention period.
type PurgeInvitesCmd struct {
	Retention time.Duration `help:"keep expired invites this long, overrides the config file" default:"0s"`
	DryRun    bool          `help:"print the cutoff without deleting anything"`
}

type invitePurger interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

func (c *PurgeInvitesCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := log.WithContext(context.Background())

	cfg, err := loadConfig(ctx, globals)
	if err != nil {
		return err
	}
	retention := cfg.Invites.Retention
	if c.Retention > 0 {
		retention = c.Retention
	}
	cutoff := time.Now().Add(-retention)
	if c.DryRun {
		fmt.Fprintf(os.Stdout, "Would delete unaccepted invites that expired before %s\n", cutoff.Format(time.RFC3339))
		return nil
	}

	pool, err := database.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		return err
	}
	defer pool.Close()

	return purgeInvites(ctx, os.Stdout, repositories.NewInviteRepo(pool), cutoff)
}

func purgeInvites(ctx context.Context, out io.Writer, invites invitePurger, cutoff time.Time) error {
	n, err := invites.DeleteExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge expired invites: %w", err)
	}
	fmt.Fprintf(out, "Deleted %d expired invite(s) that expired before %s\n", n, cutoff.Format(time.RFC3339))
	return nil
}
