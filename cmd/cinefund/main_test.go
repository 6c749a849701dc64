package main

import (
	"bytes"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"cinefund/internal/adapters/http/middleware"
	"cinefund/internal/adapters/http/routes"
	"cinefund/internal/config"
	"cinefund/internal/core/services"
	"cinefund/internal/sandbox"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// startSandbox serves one seeded store on a direct and a gateway listener
func startSandbox(t *testing.T) (direct, gateway string) {
	t.Helper()
	store := sandbox.NewStore(sandbox.WithHashCost(bcrypt.MinCost))
	require.NoError(t, store.Seed())

	cfg := &config.Config{AppMode: "dev", JWT: config.JWTConfig{Secret: "e2e-secret", AccessTokenMins: 5}}

	serve := func(backend string) string {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler, DisableStartupMessage: true})
		routes.Setup(app, store, cfg, routes.Options{Backend: backend})
		go func() { _ = app.Listener(ln) }()
		t.Cleanup(func() { _ = app.Shutdown() })
		return "http://" + ln.Addr().String()
	}
	return serve("direct"), serve("gateway")
}

type harness struct {
	t    *testing.T
	base []string
}

func newHarness(t *testing.T) *harness {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("SESSION_DRIVER", "bolt")
	direct, gateway := startSandbox(t)
	path := filepath.Join(t.TempDir(), "session.db")
	return &harness{
		t:    t,
		base: []string{"-session", path, "-direct", direct, "-gateway", gateway},
	}
}

// run executes one invocation and returns stdout and the error
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	err := run(append(append([]string{}, h.base...), args...), strings.NewReader(stdin), stdout, stderr)
	return stdout.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, out)
	return out
}

func transactionID(t *testing.T, out string) string {
	t.Helper()
	const marker = "Transaction ID: "
	i := strings.Index(out, marker)
	require.GreaterOrEqual(t, i, 0, out)
	return strings.TrimSpace(out[i+len(marker):])
}

func TestRun_MissingCommand(t *testing.T) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	err := run(nil, strings.NewReader(""), stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing command")
	assert.Contains(t, stderr.String(), "Usage:")
}

func TestRun_UnknownCommand(t *testing.T) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	err := run([]string{"fly"}, strings.NewReader(""), stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "fly"`)
}

func TestRun_InvestorFlow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("movies")
	assert.Equal(t, services.MsgLoginToBrowse+"\n", out)

	out = h.mustRun("login", "-password", sandbox.SeedPassword, "investor")
	assert.Equal(t, "Welcome back, Ivan!\n", out)

	out = h.mustRun("whoami")
	assert.Contains(t, out, "Ivan Novak (INVESTOR) id=2")

	out = h.mustRun("movies")
	assert.Contains(t, out, "The Last Reel")
	assert.Contains(t, out, "IN PRODUCTION")

	out = h.mustRun("movies", "-filter", "released")
	assert.Contains(t, out, "Paper Lanterns")
	assert.NotContains(t, out, "Orbit of Ash")

	out = h.mustRun("movies", "-filter", "CANCELLED")
	assert.Equal(t, services.MsgNoMatch+"\n", out)

	out = h.mustRun("movie", "1")
	assert.Contains(t, out, "The Last Reel")
	assert.Contains(t, out, "Open for investment")

	_, err := h.run("", "invest", "1", "abc")
	require.Error(t, err)
	assert.Equal(t, "Investment failed: "+services.MsgInvalidAmount, err.Error())

	_, err = h.run("", "invest", "3", "100")
	require.Error(t, err)
	assert.Equal(t, "Investment failed: This movie is not open for funding.", err.Error())

	out = h.mustRun("invest", "1", "250")
	assert.Contains(t, out, "Investment successful! Transaction ID: TXN_")
	tx := transactionID(t, out)

	out = h.mustRun("investments")
	assert.Contains(t, out, tx)
	assert.Contains(t, out, "PENDING")

	out = h.mustRun("confirm", tx)
	assert.Contains(t, out, "CONFIRMED")

	_, err = h.run("", "cancel", "-reason", "changed my mind", tx)
	require.Error(t, err)
	assert.Equal(t, "Cancellation failed: Cannot cancel a confirmed investment", err.Error())

	_, err = h.run("", "summary")
	require.Error(t, err)
	assert.Equal(t, "Loading summary failed: Your role is not allowed to perform this action.", err.Error())

	out = h.mustRun("logout")
	assert.Equal(t, services.MsgLoggedOut+"\n", out)

	out = h.mustRun("whoami")
	assert.Equal(t, "Not logged in.\n", out)
}

func TestRun_LoginPromptsForPassword(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(sandbox.SeedPassword+"\n", "login", "investor@cinefund.local")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Welcome back, Ivan!")
}

func TestRun_LoginRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "login", "-password", "wrong-password", "investor")
	require.Error(t, err)
	assert.Equal(t, "Login failed: Invalid credentials", err.Error())
}

func TestRun_Register(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("register", "-first", "Nia", "-last", "Cole", "-username", "nia", "-email", "nia@example.com", "-password", "secret1")
	assert.Equal(t, "Welcome to CineFund, Nia!\n", out)

	_, err := h.run("", "register", "-first", "Nia", "-username", "nia", "-email", "other@example.com", "-password", "secret1")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Registration failed: "), err.Error())
}

func TestRun_ProducerReturns(t *testing.T) {
	h := newHarness(t)

	h.mustRun("login", "-password", sandbox.SeedPassword, "investor")
	tx := transactionID(t, h.mustRun("invest", "1", "400"))
	h.mustRun("confirm", tx)

	h.mustRun("login", "-password", sandbox.SeedPassword, "producer")

	out := h.mustRun("investors")
	assert.Contains(t, out, "Ivan Novak")

	out = h.mustRun("returns", "-notes", "opening weekend", "1", "1000")
	assert.Equal(t, "Returns of 1000.00 paid to 1 investments of movie 1.\n", out)

	out = h.mustRun("summary")
	assert.Contains(t, out, "Returns paid: 1 (1000.00)")
	assert.Contains(t, out, "The Last Reel")

	_, err := h.run("", "returns", "1", "-5")
	require.Error(t, err)
	assert.Equal(t, "Processing returns failed: "+services.MsgInvalidRevenue, err.Error())
}

func TestRun_UnreachableServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	t.Setenv("APP_MODE", "dev")
	url := "http://" + addr
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	err = run([]string{
		"-session", filepath.Join(t.TempDir(), "session.db"), "-direct", url, "-gateway", url,
		"login", "-password", "x", "investor",
	}, strings.NewReader(""), stdout, stderr)
	require.Error(t, err)
	assert.Equal(t, "Login failed: Cannot connect to server. Please ensure the API Gateway is running on "+addr+".", err.Error())
}
