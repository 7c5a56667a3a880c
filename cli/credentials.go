// ABOUTME: Platform credential CLI commands
// ABOUTME: Store, list and remove the access tokens used to publish
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
	"golang.org/x/term"
)

// CredentialsSetCommand stores the token for a platform. Without --token the
// token is read from the terminal without echo.
func CredentialsSetCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("credentials set", flag.ExitOnError)
	token := fs.String("token", "", "Access token")
	account := fs.String("account", "", "Account, page or user id on the platform")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("platform is required (one of: %s)", strings.Join(models.AllPlatforms, ", "))
	}
	platform := strings.ToLower(fs.Arg(0))
	if err := models.ValidatePlatform(platform); err != nil {
		return err
	}

	if *token == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("--token is required when stdin is not a terminal")
		}
		fmt.Printf("%s access token: ", platform)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		*token = strings.TrimSpace(string(raw))
	}

	cred := &models.PlatformCredential{
		Platform:    platform,
		AccessToken: *token,
		AccountID:   *account,
	}
	if err := db.SaveCredential(database, cred); err != nil {
		return err
	}

	fmt.Printf("✓ %s connected\n", platform)
	return nil
}

// CredentialsListCommand shows which platforms are connected.
func CredentialsListCommand(database *sql.DB, args []string) error {
	creds, err := db.ListCredentials(database)
	if err != nil {
		return fmt.Errorf("failed to list credentials: %w", err)
	}

	byPlatform := make(map[string]models.PlatformCredential, len(creds))
	for _, c := range creds {
		byPlatform[c.Platform] = c
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PLATFORM\tSTATUS\tACCOUNT\tTOKEN\tUPDATED")
	_, _ = fmt.Fprintln(w, "--------\t------\t-------\t-----\t-------")
	for _, name := range models.AllPlatforms {
		c, ok := byPlatform[name]
		if !ok {
			_, _ = fmt.Fprintf(w, "%s\t○ not connected\t-\t-\t-\n", name)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t● connected\t%s\t%s\t%s\n",
			name, orDash(c.AccountID), maskToken(c.AccessToken), c.UpdatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

// CredentialsRemoveCommand disconnects a platform.
func CredentialsRemoveCommand(database *sql.DB, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("platform is required")
	}
	platform := strings.ToLower(args[0])
	if err := models.ValidatePlatform(platform); err != nil {
		return err
	}

	if err := db.DeleteCredential(database, platform); err != nil {
		return fmt.Errorf("failed to remove credential: %w", err)
	}

	fmt.Printf("✓ %s disconnected\n", platform)
	return nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("•", len(token))
	}
	return token[:4] + "…" + token[len(token)-4:]
}
