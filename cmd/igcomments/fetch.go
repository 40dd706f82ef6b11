package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"igcomments/pkg/auth"
	"igcomments/pkg/checkpoint"
	"igcomments/pkg/comments"
	"igcomments/pkg/config"
	errs "igcomments/pkg/errors"
	"igcomments/pkg/instagram"
	"igcomments/pkg/logger"
	"igcomments/pkg/ratelimit"
	"igcomments/pkg/storage"
	"igcomments/pkg/ui"
)

var (
	// Fetch command flags
	rate         float64
	outputDir    string
	sessionFile  string
	maxRetries   int
	resumeFetch  bool
	forceRestart bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [post-url]",
	Short: "Fetch every comment from a post or reel",
	Long: `Fetch all comments from an Instagram post or reel, page by page, and
write them as text and JSON files.

The post URL can be passed as an argument or entered at the prompt. A valid
session is required; when none is stored, the command logs in first using
stored or prompted account credentials.`,
	Example: `  # Fetch by URL
  igcomments fetch https://www.instagram.com/reel/ABC123xyz/

  # Slow down to one request every two seconds
  igcomments fetch https://www.instagram.com/p/ABC123xyz/ --rate 0.5

  # Resume an interrupted fetch
  igcomments fetch https://www.instagram.com/reel/ABC123xyz/ --resume

  # Ignore an existing checkpoint and start over
  igcomments fetch https://www.instagram.com/reel/ABC123xyz/ --force-restart`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runFetch(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().Float64VarP(&rate, "rate", "r", 0, "requests per second (0 uses the configured default)")
	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "base directory for output files")
	fetchCmd.Flags().StringVar(&sessionFile, "session-file", "", "path to the session bundle file")
	fetchCmd.Flags().IntVar(&maxRetries, "max-retries", 3, "attempts per page before giving up")
	fetchCmd.Flags().BoolVar(&resumeFetch, "resume", false, "resume from last checkpoint")
	fetchCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "ignore an existing checkpoint and start over")
}

func runFetch(cmd *cobra.Command, args []string) {
	flags := make(map[string]interface{})
	if rate > 0 {
		flags["rate"] = rate
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if sessionFile != "" {
		flags["session-file"] = sessionFile
	}
	if cmd.Flags().Changed("max-retries") {
		flags["max-retries"] = maxRetries
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("igcomments starting")

	shortcode := resolveShortcode(args)
	ui.PrintInfo("Target post", shortcode)

	if !cmd.Flags().Changed("rate") && !nonInteractive && !quiet {
		rps, err := ui.PromptFloat("Requests per second", cfg.RateLimit.RequestsPerSecond)
		if err == nil && rps > 0 {
			cfg.RateLimit.RequestsPerSecond = rps
		}
	}

	sessionPath, err := cfg.SessionFilePath()
	if err != nil {
		ui.PrintError("Failed to resolve session file", err.Error())
		os.Exit(1)
	}
	store := auth.NewFileStore(sessionPath)

	authenticator := instagram.NewAuthenticator(cfg, logger.GetLogger())
	creds, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if err := ensureSession(store, authenticator, creds); err != nil {
		ui.PrintError("Login failed", err.Error())
		os.Exit(1)
	}

	mgr, err := checkpoint.NewManager(shortcode)
	if err != nil {
		ui.PrintError("Failed to set up checkpointing", err.Error())
		os.Exit(1)
	}

	resume := resumeFetch && !forceRestart
	if !resume && !forceRestart && mgr.Exists() && !nonInteractive {
		answer, err := ui.Confirm("A checkpoint from an earlier fetch exists. Resume it?")
		if err == nil && answer {
			resume = true
		}
	}

	fetcher := comments.NewFetcher(
		instagram.NewClient(instagram.BaseURL, cfg.RateLimit.RequestTimeout, logger.GetLogger()),
		store,
		&cliReauthenticator{
			authenticator: authenticator,
			store:         store,
			creds:         creds,
		},
		ratelimit.NewInterval(cfg.RateLimit.RequestsPerSecond),
		cfg,
		logger.GetLogger(),
		comments.WithProgress(ui.NewProgressDisplay(shortcode, !quiet)),
		comments.WithCheckpoints(mgr, resume),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	records, err := fetcher.FetchAll(ctx, shortcode)
	if err != nil {
		logger.WithError(err).WithField("shortcode", shortcode).Error("fetch failed")
		if errors.Is(err, context.Canceled) {
			ui.PrintWarning("Interrupted. Progress was checkpointed; rerun with --resume to continue.")
		} else {
			ui.PrintError("Fetch failed", err.Error())
		}
		os.Exit(1)
	}

	writer, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		ui.PrintError("Failed to prepare output directory", err.Error())
		os.Exit(1)
	}

	txtPath, jsonPath, err := writer.WriteOutputs(storage.BaseName(time.Now()), records)
	if err != nil {
		ui.PrintError("Failed to write output files", err.Error())
		os.Exit(1)
	}

	logger.WithFields(map[string]interface{}{
		"shortcode": shortcode,
		"comments":  len(records),
	}).Info("fetch completed")

	ui.PrintSuccess(fmt.Sprintf("Fetched %d comments", len(records)))
	ui.PrintInfo("Text output", txtPath)
	ui.PrintInfo("JSON output", jsonPath)
}

// resolveShortcode extracts the post shortcode from the argument or prompt
func resolveShortcode(args []string) string {
	var postURL string
	if len(args) == 1 {
		postURL = strings.TrimSpace(args[0])
	} else {
		if nonInteractive {
			ui.PrintError("No post URL given and prompting is disabled")
			os.Exit(1)
		}
		line, err := ui.PromptLine("Post or reel URL: ")
		if err != nil {
			ui.PrintError("Failed to read URL", err.Error())
			os.Exit(1)
		}
		postURL = line
	}

	shortcode := instagram.ExtractShortcode(postURL)
	if shortcode == "" {
		ui.PrintError("Not a recognizable post URL", postURL)
		os.Exit(1)
	}
	return shortcode
}

// ensureSession makes sure a usable bundle is stored, logging in when needed
func ensureSession(store *auth.FileStore, authenticator *instagram.Authenticator, creds *auth.Manager) error {
	bundle, err := store.Load()
	if err != nil {
		return err
	}
	if bundle != nil && bundle.IsValid() {
		logger.WithField("user_id", bundle.Cookies.UserID).Debug("reusing stored session")
		return nil
	}

	if bundle != nil {
		ui.PrintWarning("Stored session expired, logging in again")
	}

	account, err := loadOrPromptAccount(creds)
	if err != nil {
		return err
	}

	fresh, err := authenticator.Login(account.Username, account.Password)
	if err != nil {
		return err
	}
	return store.Save(fresh)
}

// loadOrPromptAccount fetches stored account credentials, falling back to an
// interactive prompt. The prompted account is stored for later re-logins.
func loadOrPromptAccount(creds *auth.Manager) (*auth.Account, error) {
	account, err := creds.Retrieve()
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, auth.ErrCredentialsNotFound) {
		return nil, err
	}
	if nonInteractive {
		return nil, errs.New(errs.ErrorTypeAuthLoss,
			"no stored credentials; run 'igcomments auth login' or set IGCOMMENTS_USERNAME and IGCOMMENTS_PASSWORD")
	}

	account, err = promptAccount()
	if err != nil {
		return nil, err
	}

	if err := creds.Store(account); err != nil {
		logger.WithError(err).Warn("could not store credentials for later re-logins")
	}
	return account, nil
}

// promptAccount reads a username and password interactively
func promptAccount() (*auth.Account, error) {
	username, err := ui.PromptLine("Instagram username: ")
	if err != nil {
		return nil, err
	}
	if username == "" {
		return nil, fmt.Errorf("username must not be empty")
	}

	password, err := ui.PromptPassword("Password: ")
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("password must not be empty")
	}

	return &auth.Account{Username: username, Password: password}, nil
}

// cliReauthenticator restores the session mid-run by re-running the login
// handshake with stored account credentials.
type cliReauthenticator struct {
	authenticator *instagram.Authenticator
	store         *auth.FileStore
	creds         *auth.Manager
}

func (r *cliReauthenticator) Reauthenticate() (*auth.Bundle, error) {
	account, err := loadOrPromptAccount(r.creds)
	if err != nil {
		return nil, err
	}

	bundle, err := r.authenticator.Login(account.Username, account.Password)
	if err != nil {
		return nil, err
	}

	if err := r.store.Save(bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}
