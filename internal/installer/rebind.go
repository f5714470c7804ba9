package installer

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// HashPassword produces a password hash WordPress accepts. PHP's
// crypt emits the $2y$ bcrypt variant identifier, so the Go prefix is
// rewritten to match.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return strings.Replace(string(hash), "$2a$", "$2y$", 1), nil
}

// ChangeURL points an imported site at its local URL. Both URL
// options must land for the site to resolve, so failures propagate.
func (i *Installer) ChangeURL(ctx context.Context, prefix string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, option := range []string{"home", "siteurl"} {
		g.Go(func() error {
			return i.admin.UpdateOption(gctx, i.site.Name, prefix, option, i.site.URL)
		})
	}
	return g.Wait()
}

// ChangeAdminInfo rebinds an imported site's first user to the local
// admin identity and resets the notification address. A dump with no
// users degrades to updating the notification address only.
func (i *Installer) ChangeAdminInfo(ctx context.Context, prefix string) error {
	userID, found, err := i.admin.FirstUserID(ctx, i.site.Name, prefix)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return i.admin.UpdateOption(gctx, i.site.Name, prefix, "admin_email", i.inputs.AdminEmail)
	})
	if found {
		hash, hashErr := HashPassword(i.inputs.AdminPassword)
		if hashErr != nil {
			return hashErr
		}
		updates := map[string]string{
			"user_pass":  hash,
			"user_login": i.inputs.AdminUser,
			"user_email": i.inputs.AdminEmail,
		}
		for column, value := range updates {
			g.Go(func() error {
				return i.admin.UpdateUserColumn(gctx, i.site.Name, prefix, userID, column, value)
			})
		}
	} else {
		i.logger.Warn("no users found in imported database, admin identity not rebound")
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Imported content carries stale permalink and object caches.
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error { return i.wpSoft(gctx, "rewrite flush --hard") })
	g.Go(func() error { return i.wpSoft(gctx, "cache flush") })
	return g.Wait()
}
