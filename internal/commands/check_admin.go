package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"dealtracker/internal/common"
	"dealtracker/internal/logger"
	"dealtracker/internal/models"
	"dealtracker/internal/repositories"
	"dealtracker/internal/services"
	"dealtracker/pkg/database"
)

// CheckAdminCmd reports a user's role and how to grant admin when they lack it.
type CheckAdminCmd struct {
	Email string `help:"email of the user to check" required:""`
}

func (c *CheckAdminCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := log.WithContext(context.Background())

	cfg, err := loadConfig(ctx, globals)
	if err != nil {
		return err
	}
	pool, err := database.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		return err
	}
	defer pool.Close()

	profiles := services.NewProfileService(repositories.NewProfileRepo(pool), repositories.NewMembershipRepo(pool))
	return checkAdmin(ctx, os.Stdout, profiles, c.Email)
}

func checkAdmin(ctx context.Context, out io.Writer, profiles services.ProfileService, email string) error {
	profile, err := profiles.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		fmt.Fprintf(out, "No profile found for %s. The user needs to sign up first.\n", email)
		return nil
	}
	if err != nil {
		return err
	}

	name := "(not set)"
	if profile.FullName != nil && *profile.FullName != "" {
		name = *profile.FullName
	}
	fmt.Fprintf(out, "Email:     %s\nName:      %s\nRole:      %s\nProfile:   %s\n", profile.Email, name, profile.Role, profile.ID)

	if profile.Role == models.UserRoleAdmin {
		fmt.Fprintln(out, "This user is an admin.")
		return nil
	}
	fmt.Fprintf(out, "This user is not an admin. To grant admin, run:\n\n  UPDATE profiles SET role = 'admin' WHERE id = '%s';\n", profile.ID)
	return nil
}
