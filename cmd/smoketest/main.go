package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/myrjola/habitapp/internal/e2etest"
	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/logging"
	"github.com/myrjola/habitapp/internal/testhelpers"
)

const smokeTimeout = 10 * time.Second

func TestAuth(ctx context.Context, client *e2etest.Client) error {
	var err error
	if _, err = client.Register(ctx); err != nil {
		return errors.Wrap(err, "register user")
	}
	if _, err = client.Logout(ctx); err != nil {
		return errors.Wrap(err, "logout user")
	}
	if _, err = client.Login(ctx); err != nil {
		return errors.Wrap(err, "login user")
	}
	return nil
}

// TestTracking logs a meal for today, checks that the progress page renders and removes the smoke test user.
func TestTracking(ctx context.Context, client *e2etest.Client) error {
	doc, err := client.GetDoc(ctx, "/")
	if err != nil {
		return errors.Wrap(err, "get home")
	}
	trackPath, ok := doc.Find("nav a[href^='/track/']").Attr("href")
	if !ok {
		return errors.New("track link not found")
	}
	if doc, err = client.GetDoc(ctx, trackPath); err != nil {
		return errors.Wrap(err, "get track page", slog.String("path", trackPath))
	}
	action, ok := doc.Find("#variable-meals form").First().Attr("action")
	if !ok {
		return errors.New("variable meal toggle not found")
	}
	if doc, err = client.SubmitForm(ctx, doc, action, nil); err != nil {
		return errors.Wrap(err, "toggle variable meal", slog.String("action", action))
	}
	if doc.Find("#variable-meals button[aria-pressed=true]").Length() != 1 {
		return errors.New("toggled meal is not marked as eaten")
	}
	if doc, err = client.GetDoc(ctx, "/progress"); err != nil {
		return errors.Wrap(err, "get progress")
	}
	if doc.Find("#score tr[data-metric]").Length() == 0 {
		return errors.New("compound score is missing")
	}
	if doc, err = client.GetDoc(ctx, "/preferences"); err != nil {
		return errors.Wrap(err, "get preferences")
	}
	if _, err = client.SubmitForm(ctx, doc, "/preferences/delete-user", nil); err != nil {
		return errors.Wrap(err, "delete user")
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *e2etest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
		hostname = "localhost"
	}

	if client, err = e2etest.NewClient(url, hostname, url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", errors.SlogError(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(ctx, smokeTimeout)
	defer cancel()
	if err = TestAuth(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing auth", errors.SlogError(err))
		os.Exit(1) //nolint:gocritic // the deferred cancel does not matter on exit.
	}
	if err = TestTracking(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing tracking", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
}
