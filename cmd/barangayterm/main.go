// barangayterm browses one console screen in the terminal. It talks to
// the records API directly, with the same debounce, paging and filter
// tabs as the web console.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dalemusser/barangayhub/internal/app/features/catalog"
	"github.com/dalemusser/barangayhub/internal/app/system/apiclient"
	"github.com/dalemusser/barangayhub/internal/app/system/auth"
	"github.com/dalemusser/barangayhub/internal/app/system/listquery"
	"github.com/dalemusser/barangayhub/internal/app/term"
	"github.com/dalemusser/barangayhub/internal/domain/models"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		screenName   string
		apiURL       string
		token        string
		clientID     string
		clientSecret string
		tokenURL     string
		staffID      string
		role         string
		filter       string
		pageSize     int
		debounce     time.Duration
		poll         time.Duration
		timeout      time.Duration
		logOutput    string
		list         bool
	)

	flagSet := pflag.NewFlagSet("barangayterm", pflag.ContinueOnError)
	flagSet.StringVarP(&screenName, "screen", "s", "residents", "screen to open")
	flagSet.StringVar(&apiURL, "api-url", os.Getenv("BARANGAYHUB_API_BASE_URL"), "records API base URL")
	flagSet.StringVar(&token, "token", os.Getenv("BARANGAYHUB_API_TOKEN"), "static bearer token")
	flagSet.StringVar(&clientID, "client-id", os.Getenv("BARANGAYHUB_API_CLIENT_ID"), "OAuth2 client id")
	flagSet.StringVar(&clientSecret, "client-secret", os.Getenv("BARANGAYHUB_API_CLIENT_SECRET"), "OAuth2 client secret")
	flagSet.StringVar(&tokenURL, "token-url", os.Getenv("BARANGAYHUB_API_TOKEN_URL"), "OAuth2 token endpoint")
	flagSet.StringVar(&staffID, "staff-id", os.Getenv("USER"), "your staff id (scopes the Mine tab)")
	flagSet.StringVar(&role, "role", auth.RoleAdmin, "your staff role")
	flagSet.StringVar(&filter, "filter", "", "filter tab to open on")
	flagSet.IntVar(&pageSize, "page-size", 0, "records per page (default: screen's own)")
	flagSet.DurationVar(&debounce, "debounce", 0, "search debounce (default: screen's own)")
	flagSet.DurationVar(&poll, "poll", 0, "re-fetch interval (default: screen's own)")
	flagSet.DurationVar(&timeout, "timeout", 15*time.Second, "per-request timeout")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON logs to this file")
	flagSet.BoolVar(&list, "list", false, "list the screens available to --role and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	logger, err := newLogger(logOutput)
	if err != nil {
		return err
	}
	defer logger.Sync()

	user := &auth.SessionUser{ID: staffID, Name: staffID, Role: role}

	if list {
		for _, e := range catalog.New(catalog.Deps{}).Entries(user) {
			fmt.Printf("%-20s %s\n", e.Meta.Name, e.Meta.Title)
		}
		return nil
	}

	if apiURL == "" {
		return errors.New("--api-url (or BARANGAYHUB_API_BASE_URL) is required")
	}
	client, err := apiclient.New(apiclient.Config{
		BaseURL:      apiURL,
		Token:        token,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Timeout:      timeout,
		UserAgent:    "barangayterm",
	}, logger)
	if err != nil {
		return err
	}

	cat := catalog.New(catalog.Deps{
		Client: client,
		Logger: logger,
		Overrides: catalog.Overrides{
			Debounce:     debounce,
			PollInterval: poll,
		},
	})
	if e, ok := cat.Lookup(screenName); ok && filter != "" && !e.HasTab(listquery.FilterKey(filter)) {
		return fmt.Errorf("screen %s has no %q filter", screenName, filter)
	}
	prefs := &models.ScreenPrefs{PageSize: pageSize, Filter: filter}
	s, err := cat.Builder(screenName, user, prefs)()
	if err != nil {
		return fmt.Errorf("open %s: %w", screenName, err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Start(ctx); err != nil {
		return err
	}
	return term.Run(ctx, s)
}

// newLogger writes to path, or nowhere: the TUI owns the terminal.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `barangayterm: browse barangay records in the terminal.

Usage:
  barangayterm [flags]

Examples:
  # Residents, using the API URL from the environment
  barangayterm --screen residents

  # Consultations assigned to you
  barangayterm --screen consultations --role health_worker --staff-id bhw-014 --filter mine

  # What can a waste officer open?
  barangayterm --list --role waste_officer

Keys: / search, enter search now, tab filters, ←/→ pages, s sort, r refresh, q quit.

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
