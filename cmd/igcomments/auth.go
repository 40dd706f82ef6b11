package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"igcomments/pkg/auth"
	"igcomments/pkg/config"
	"igcomments/pkg/instagram"
	"igcomments/pkg/logger"
	"igcomments/pkg/ui"
)

// authCmd groups credential and session management
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage credentials and the stored session",
	Long: `Manage the Instagram account credentials and the persisted session bundle.

Credentials are stored in the system keychain when one is available, and in
an encrypted file otherwise. The session bundle holds the four cookies a
logged-in session consists of.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Long: `Perform the signed login handshake and persist the resulting session
bundle. The account credentials are stored too, so an expired session can be
refreshed later without prompting.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runAuthLogin()
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored session and credential state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runAuthStatus()
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session and credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runAuthLogout()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

// loadAuthEnvironment builds the config, session store and credential
// manager the auth subcommands share.
func loadAuthEnvironment() (*config.Config, *auth.FileStore, *auth.Manager) {
	cfg, err := config.Load(configFile, map[string]interface{}{"log-level": logLevel})
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	logger.Initialize(&cfg.Logging)

	sessionPath, err := cfg.SessionFilePath()
	if err != nil {
		ui.PrintError("Failed to resolve session file", err.Error())
		os.Exit(1)
	}

	creds, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	return cfg, auth.NewFileStore(sessionPath), creds
}

func runAuthLogin() {
	cfg, store, creds := loadAuthEnvironment()

	if nonInteractive {
		ui.PrintError("auth login needs an interactive terminal")
		os.Exit(1)
	}

	account, err := promptAccount()
	if err != nil {
		ui.PrintError("Failed to read credentials", err.Error())
		os.Exit(1)
	}

	authenticator := instagram.NewAuthenticator(cfg, logger.GetLogger())
	bundle, err := authenticator.Login(account.Username, account.Password)
	if err != nil {
		ui.PrintError("Login failed", err.Error())
		os.Exit(1)
	}

	if err := store.Save(bundle); err != nil {
		ui.PrintError("Failed to store session", err.Error())
		os.Exit(1)
	}
	if err := creds.Store(account); err != nil {
		ui.PrintWarning("Session stored, but credentials could not be saved", err.Error())
	}

	ui.PrintSuccess(fmt.Sprintf("Logged in as %s (user id %s)",
		account.Username, bundle.Cookies.UserID))
	ui.PrintInfo("Session valid until",
		time.Unix(bundle.OverallExpiry, 0).Format(time.RFC1123))
}

func runAuthStatus() {
	_, store, creds := loadAuthEnvironment()

	bundle, err := store.Load()
	if err != nil {
		ui.PrintError("Failed to read session", err.Error())
		os.Exit(1)
	}

	switch {
	case bundle == nil:
		ui.PrintWarning("No stored session")
	case bundle.IsValid():
		ui.PrintSuccess("Session is valid")
		ui.PrintInfo("User id", bundle.Cookies.UserID)
		ui.PrintInfo("Issued", time.Unix(bundle.IssuedAt, 0).Format(time.RFC1123))
		ui.PrintInfo("Expires", time.Unix(bundle.OverallExpiry, 0).Format(time.RFC1123))
	default:
		ui.PrintWarning("Stored session is expired or incomplete")
		ui.PrintInfo("Expired", time.Unix(bundle.OverallExpiry, 0).Format(time.RFC1123))
	}

	if account, err := creds.Retrieve(); err == nil {
		ui.PrintInfo("Stored account", account.Username)
	} else if errors.Is(err, auth.ErrCredentialsNotFound) {
		ui.PrintWarning("No stored account credentials")
	} else {
		ui.PrintError("Failed to read credentials", err.Error())
	}
}

func runAuthLogout() {
	_, store, creds := loadAuthEnvironment()

	if err := store.Delete(); err != nil {
		ui.PrintError("Failed to remove session", err.Error())
		os.Exit(1)
	}

	if err := creds.Delete(); err != nil && !errors.Is(err, auth.ErrCredentialsNotFound) {
		ui.PrintWarning("Session removed, but credentials could not be deleted", err.Error())
	}

	ui.PrintSuccess("Logged out")
}
