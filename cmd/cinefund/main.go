// Command cinefund is a terminal front-end for the CineFund crowdfunding
// services.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"cinefund/internal/adapters/api"
	"cinefund/internal/adapters/persistence/repositories"
	"cinefund/internal/config"
	"cinefund/internal/core/services"
	"cinefund/internal/core/session"
	"cinefund/internal/logger"

	"go.uber.org/zap"
)

const usage = `Usage: cinefund [flags] <command> [args]

Commands:
  login [-password P] <username|email>
  register -first F -last L -username U -email E [-role R] [-password P]
  logout
  whoami
  movies [-filter STATUS]
  movie <id>
  invest <movie-id> <amount>
  confirm <transaction-id>
  cancel [-reason R] <transaction-id>
  investments
  returns [-notes N] <movie-id> <revenue>
  bulk <movie-id>=<revenue>...
  summary
  investors

Flags:
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds the wired components of one invocation
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg     *config.Config
	log     *zap.Logger
	kv      repositories.KeyValueRepository
	client  *api.Client
	session *session.Store
	auth    *services.AuthService
	movies  *services.MovieService
	invest  *services.InvestmentService
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cinefund", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "YAML config file (default $CINEFUND_CONFIG)")
	sessionPath := fs.String("session", "", "session file for the bolt driver")
	directURL := fs.String("direct", "", "user service base URL")
	gatewayURL := fs.String("gateway", "", "API gateway base URL")
	verbose := fs.Bool("v", false, "log every request")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if *sessionPath != "" {
		cfg.Session.Path = *sessionPath
	}
	if *directURL != "" {
		cfg.API.DirectURL = *directURL
	}
	if *gatewayURL != "" {
		cfg.API.GatewayURL = *gatewayURL
	}

	log, err := logger.New(cfg.AppMode, *verbose)
	if err != nil {
		return err
	}
	if !*verbose {
		log = log.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.close()
	c.stdin, c.stdout, c.stderr = stdin, stdout, stderr

	if _, err := c.auth.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	return cmd(ctx, c, fs.Args()[1:])
}

// open wires the session store, the API client and the controllers
func open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*cli, error) {
	kv, err := openSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	client, err := api.New(ctx, api.Config{
		DirectURL:  cfg.API.DirectURL,
		GatewayURL: cfg.API.GatewayURL,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
		Tokens:     kv,
		Logger:     log.Named("api"),
	})
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	sess := session.New(client, kv)
	movies := services.NewMovieService(client, sess, log)
	auth := services.NewAuthService(client, sess, log)
	auth.Subscribe(movies)

	return &cli{
		cfg:     cfg,
		log:     log,
		kv:      kv,
		client:  client,
		session: sess,
		auth:    auth,
		movies:  movies,
		invest:  services.NewInvestmentService(client, sess, movies, log),
	}, nil
}

func openSessionStore(cfg *config.Config) (repositories.KeyValueRepository, error) {
	switch cfg.Session.Driver {
	case config.SessionDriverMemory:
		return repositories.NewMemoryRepository(), nil
	case config.SessionDriverSQL:
		db, err := config.ConnectDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return repositories.NewGormRepository(db), nil
	default:
		return repositories.NewBoltRepository(cfg.Session.Path)
	}
}

func (c *cli) close() {
	if err := c.kv.Close(); err != nil {
		c.log.Warn("failed to close session store", zap.Error(err))
	}
}
