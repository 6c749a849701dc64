package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"cinefund/internal/core/domain"
	"cinefund/internal/core/services"

	"golang.org/x/term"
)

type command func(ctx context.Context, c *cli, args []string) error

var commands = map[string]command{
	"login":       login,
	"register":    register,
	"logout":      logout,
	"whoami":      whoami,
	"movies":      listMovies,
	"movie":       showMovie,
	"invest":      invest,
	"confirm":     confirm,
	"cancel":      cancel,
	"investments": investments,
	"returns":     returns,
	"bulk":        bulkReturns,
	"summary":     summary,
	"investors":   investors,
}

// failure renders a controller error behind an action prefix
type failure struct {
	action string
	err    error
}

func (f *failure) Error() string { return f.action + " failed: " + services.UserMessage(f.err) }
func (f *failure) Unwrap() error { return f.err }

func failed(action string, err error) error {
	return &failure{action: action, err: err}
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c *cli) readPassword() (string, error) {
	fmt.Fprint(c.stdout, "Password: ")
	defer fmt.Fprintln(c.stdout)

	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(c.stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// parseAmount maps unparsable input to NaN so the controllers reject it
func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", kind, s)
	}
	return id, nil
}

// ============================================================
// Session
// ============================================================

func login(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("login")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: login [-password P] <username|email>")
	}

	pass := *password
	if pass == "" {
		var err error
		if pass, err = c.readPassword(); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	user, err := c.auth.Login(ctx, fs.Arg(0), pass)
	if err != nil {
		return failed("Login", err)
	}
	fmt.Fprintf(c.stdout, "Welcome back, %s!\n", user.FirstName)
	return nil
}

func register(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("register")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email")
	role := fs.String("role", string(domain.RoleInvestor), "INVESTOR or PRODUCER")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		return errors.New("usage: register -first F -last L -username U -email E [-role R] [-password P]")
	}

	pass := *password
	if pass == "" {
		var err error
		if pass, err = c.readPassword(); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	user, err := c.auth.Register(ctx, domain.RegisterRequest{
		FirstName: *first,
		LastName:  *last,
		Username:  *username,
		Email:     *email,
		Password:  pass,
		Role:      domain.Role(strings.ToUpper(*role)),
	})
	if err != nil {
		return failed("Registration", err)
	}
	fmt.Fprintf(c.stdout, "Welcome to CineFund, %s!\n", user.FirstName)
	return nil
}

func logout(ctx context.Context, c *cli, _ []string) error {
	if err := c.auth.Logout(ctx); err != nil {
		return failed("Logout", err)
	}
	fmt.Fprintln(c.stdout, services.MsgLoggedOut)
	return nil
}

func whoami(ctx context.Context, c *cli, _ []string) error {
	if c.auth.State() != services.Authenticated {
		fmt.Fprintln(c.stdout, "Not logged in.")
		return nil
	}
	d, err := c.session.Display(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s (%s) id=%s\n", d.UserName, d.Role, d.UserID)
	if claims, err := c.session.TokenClaims(); err == nil && claims.ExpiresAt != nil {
		fmt.Fprintf(c.stdout, "token expires %s\n", claims.ExpiresAt.Time.Format(time.RFC3339))
	}
	return nil
}

// ============================================================
// Movies
// ============================================================

func listMovies(_ context.Context, c *cli, args []string) error {
	fs := c.flags("movies")
	filter := fs.String("filter", services.FilterAll, "status filter, e.g. FUNDING")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Restore already loaded the listing
	if len(c.movies.Listing()) == 0 {
		fmt.Fprintln(c.stdout, c.movies.Message())
		return nil
	}
	list := c.movies.Filter(*filter)
	if len(list) == 0 {
		fmt.Fprintln(c.stdout, services.MsgNoMatch)
		return nil
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tGENRE\tSTATUS\tBUDGET\tRAISED\tPROGRESS")
	for _, m := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%.2f\t%.1f%%\n",
			m.ID, m.Title, m.Genre, m.Status.Label(), m.Budget, m.RaisedAmount, m.FundingProgress())
	}
	return tw.Flush()
}

func showMovie(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: movie <id>")
	}
	id, err := parseID("movie id", args[0])
	if err != nil {
		return err
	}
	m, err := c.movies.Details(ctx, id)
	if err != nil {
		return failed("Loading movie", err)
	}

	fmt.Fprintf(c.stdout, "%s\n", m.Title)
	if m.Description != "" {
		fmt.Fprintf(c.stdout, "  %s\n", m.Description)
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  Status\t%s\n", m.Status.Label())
	fmt.Fprintf(tw, "  Genre\t%s\n", m.Genre)
	fmt.Fprintf(tw, "  Director\t%s\n", m.DirectorName)
	fmt.Fprintf(tw, "  Producer\t%s\n", m.ProducerName)
	fmt.Fprintf(tw, "  Budget\t%.2f\n", m.Budget)
	fmt.Fprintf(tw, "  Raised\t%.2f (%.1f%%)\n", m.RaisedAmount, m.FundingProgress())
	if m.ExpectedReturnPercentage != nil {
		fmt.Fprintf(tw, "  Expected return\t%.1f%%\n", *m.ExpectedReturnPercentage)
	}
	if m.ReleaseDate != "" {
		fmt.Fprintf(tw, "  Release\t%s\n", m.ReleaseDate)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	user, err := c.session.CurrentUser(ctx)
	if err == nil && services.CanInvest(*m, user) {
		fmt.Fprintf(c.stdout, "Open for investment: cinefund invest %d <amount>\n", m.ID)
	}
	return nil
}

// ============================================================
// Investments
// ============================================================

func invest(ctx context.Context, c *cli, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: invest <movie-id> <amount>")
	}
	id, err := parseID("movie id", args[0])
	if err != nil {
		return err
	}
	movie, err := c.movies.Details(ctx, id)
	if err != nil {
		return failed("Investment", err)
	}
	if movie.Status != domain.MovieFunding {
		return failed("Investment", domain.ErrMovieNotFunding)
	}

	inv, err := c.invest.Invest(ctx, *movie, parseAmount(args[1]))
	if err != nil {
		return failed("Investment", err)
	}
	fmt.Fprintf(c.stdout, "Investment successful! Transaction ID: %s\n", inv.TransactionID)
	return nil
}

func confirm(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: confirm <transaction-id>")
	}
	inv, err := c.invest.Confirm(ctx, args[0])
	if err != nil {
		return failed("Confirmation", err)
	}
	fmt.Fprintf(c.stdout, "Investment %s is %s.\n", inv.TransactionID, inv.Status)
	return nil
}

func cancel(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("cancel")
	reason := fs.String("reason", "", "cancellation reason")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: cancel [-reason R] <transaction-id>")
	}
	if err := c.invest.Cancel(ctx, fs.Arg(0), *reason); err != nil {
		return failed("Cancellation", err)
	}
	fmt.Fprintf(c.stdout, "Investment %s cancelled.\n", fs.Arg(0))
	return nil
}

func investments(ctx context.Context, c *cli, _ []string) error {
	list, err := c.invest.MyInvestments(ctx)
	if err != nil {
		return failed("Loading investments", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(c.stdout, "No investments yet.")
		return nil
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRANSACTION\tMOVIE\tAMOUNT\tSTATUS\tEXPECTED\tPAID")
	for _, inv := range list {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%.2f\t%.2f\n",
			inv.TransactionID, inv.MovieTitle, inv.Amount, inv.Status, inv.ExpectedReturn, inv.ActualReturnAmount)
	}
	return tw.Flush()
}

// ============================================================
// Producer scope
// ============================================================

func returns(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("returns")
	notes := fs.String("notes", "", "notes stored with the payout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: returns [-notes N] <movie-id> <revenue>")
	}
	id, err := parseID("movie id", fs.Arg(0))
	if err != nil {
		return err
	}
	revenue := parseAmount(fs.Arg(1))

	user, err := c.session.CurrentUser(ctx)
	if err != nil {
		return err
	}

	var res *domain.ProducerReturnResult
	if user != nil && user.Role == domain.RoleAdmin {
		res, err = c.invest.ProcessReturns(ctx, id, revenue)
	} else {
		res, err = c.invest.ProducerReturns(ctx, id, revenue, *notes)
	}
	if err != nil {
		return failed("Processing returns", err)
	}
	fmt.Fprintf(c.stdout, "Returns of %.2f paid to %d investments of movie %d.\n",
		res.TotalRevenue, res.InvestmentsProcessed, res.MovieID)
	return nil
}

func bulkReturns(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: bulk <movie-id>=<revenue>...")
	}
	revenues := make(map[int64]float64, len(args))
	for _, arg := range args {
		movie, revenue, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid pair %q, want <movie-id>=<revenue>", arg)
		}
		id, err := parseID("movie id", movie)
		if err != nil {
			return err
		}
		revenues[id] = parseAmount(revenue)
	}

	res, err := c.invest.BulkReturns(ctx, revenues)
	if err != nil {
		return failed("Processing returns", err)
	}
	for _, m := range res.MoviesProcessed {
		fmt.Fprintf(c.stdout, "%s: %.2f over %d investments\n", m.MovieTitle, m.Revenue, m.InvestmentsProcessed)
	}
	fmt.Fprintf(c.stdout, "Processed %d movies, %.2f in total.\n", res.TotalMovies, res.TotalRevenueProcessed)
	return nil
}

func summary(ctx context.Context, c *cli, _ []string) error {
	s, err := c.invest.ReturnSummary(ctx)
	if err != nil {
		return failed("Loading summary", err)
	}

	fmt.Fprintf(c.stdout, "Investments: %d (%.2f)\n", s.TotalInvestments, s.TotalInvestmentAmount)
	fmt.Fprintf(c.stdout, "Returns paid: %d (%.2f)\n", s.PaidReturns, s.TotalReturnsPaid)
	fmt.Fprintf(c.stdout, "Returns unpaid: %d (%.2f expected)\n", s.UnpaidReturns, s.PendingReturns)
	if len(s.Movies) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MOVIE\tINVESTMENTS\tINVESTED\tPAID")
	for _, m := range s.Movies {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\n", m.MovieTitle, m.InvestmentCount, m.TotalInvested, m.TotalReturnsPaid)
	}
	return tw.Flush()
}

func investors(ctx context.Context, c *cli, _ []string) error {
	list, err := c.invest.Investors(ctx)
	if err != nil {
		return failed("Loading investors", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(c.stdout, "No investors yet.")
		return nil
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].TotalInvested > list[j].TotalInvested })

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INVESTOR\tINVESTMENTS\tTOTAL")
	for _, inv := range list {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\n", inv.UserName, inv.InvestmentCount, inv.TotalInvested)
	}
	return tw.Flush()
}
