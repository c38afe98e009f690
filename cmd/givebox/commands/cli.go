package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/mscno/givebox"
	"github.com/mscno/givebox/pkg/api"
	"github.com/mscno/givebox/pkg/identity"
)

// Options are the global flags shared by every command.
type Options struct {
	APIURL     string        `name:"api-url" help:"Base URL of the donations API" env:"GIVEBOX_API_URL" default:"${default_api_url}"`
	Store      string        `help:"Identity backend (file, keyring, memory)" env:"GIVEBOX_STORE" enum:"file,keyring,memory" default:"file"`
	StateFile  string        `name:"state-file" help:"Identity file used by the file backend" env:"GIVEBOX_STATE_FILE" type:"path"`
	Timeout    time.Duration `help:"Timeout for every API request, 0 disables it" env:"GIVEBOX_TIMEOUT" default:"30s"`
	MaxRPS     float64       `name:"max-rps" help:"Client-side request rate limit, 0 disables it" env:"GIVEBOX_MAX_RPS" default:"0"`
	LoginDelay time.Duration `name:"login-delay" help:"How long the login confirmation stays visible" env:"GIVEBOX_LOGIN_DELAY" default:"0s"`
	Debug      bool          `help:"Enable debug logging"`
}

type cliCtx struct {
	context.Context
	Logger  *slog.Logger
	Options Options
	In      io.Reader
	Out     io.Writer
}

type cli struct {
	Options `embed:""`

	Shell   ShellCmd         `cmd:"" default:"1" help:"Interactive session (default)"`
	Login   LoginCmd         `cmd:"" help:"Log in with an e-mailed one-time passcode"`
	Logout  LogoutCmd        `cmd:"" help:"Forget the stored identity"`
	Whoami  WhoamiCmd        `cmd:"" help:"Show the logged-in e-mail"`
	Ngos    NgosCmd          `cmd:"" help:"List NGOs and the donor count"`
	Needs   NeedsCmd         `cmd:"" help:"Show the requirement catalog of an NGO"`
	Donate  DonateCmd        `cmd:"" help:"Donate, give away or resell items to an NGO"`
	Version kong.VersionFlag `help:"Show version"`
}

func Execute(version string) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	var cli cli
	kctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.Name("givebox"),
		kong.Description("givebox connects donors with the needs of NGOs"),
		kong.Vars{"version": version, "default_api_url": api.DefaultBaseURL},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := kctx.Run(&cliCtx{
		Context: ctx,
		Logger:  newLogger(os.Stderr, cli.Debug),
		Options: cli.Options,
		In:      os.Stdin,
		Out:     os.Stdout,
	})
	kctx.FatalIfErrorf(err)
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// defaultStateFile places the identity file in the user's config directory.
func defaultStateFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "givebox", "session.db"), nil
}

// openController wires the API client and identity store from the global
// flags. The returned close func releases the store.
func (c *cliCtx) openController(r givebox.Renderer) (*givebox.Controller, func(), error) {
	opts := c.Options
	client, err := api.NewAPIClient(api.ClientConfig{
		BaseURL:   opts.APIURL,
		Timeout:   opts.Timeout,
		RateLimit: opts.MaxRPS,
		Logger:    c.Logger,
	})
	if err != nil {
		return nil, nil, err
	}

	path := opts.StateFile
	if path == "" && (opts.Store == "" || opts.Store == identity.BackendFile) {
		if path, err = defaultStateFile(); err != nil {
			return nil, nil, err
		}
	}
	store, err := identity.Open(opts.Store, path)
	if err != nil {
		return nil, nil, err
	}

	if r == nil {
		r = debugRenderer(c.Logger)
	}
	ctrl, err := givebox.New(givebox.Config{
		Client:     client,
		Identity:   store,
		Renderer:   r,
		Logger:     c.Logger,
		LoginDelay: opts.LoginDelay,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	closer := func() {
		ctrl.Close()
		if err := store.Close(); err != nil {
			c.Logger.Error("failed to close identity store", "error", err)
		}
	}
	return ctrl, closer, nil
}

func (c *cliCtx) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}
