package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/habitapp/internal/e2etest"
	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
	"github.com/myrjola/habitapp/internal/logging"
	"github.com/myrjola/habitapp/internal/testhelpers"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	maxConcurrentRegistrations = 10
	userRegistrationTimeout    = 30 * time.Second
	historyTimeout             = 5 * time.Minute
	scenarioTimeout            = 30 * time.Second
	cheatMealChance            = 0.15
	successRateThreshold       = 95.0
	percentageMultiplier       = 100
)

type options struct {
	users       int
	days        int
	concurrency int
}

// user is a registered client with its own session.
type user struct {
	client *e2etest.Client
	index  int
}

func setupUsers(ctx context.Context, url, hostname string, numUsers int, logger *slog.Logger) ([]*user, error) {
	ctx, cancel := context.WithTimeout(ctx, userRegistrationTimeout)
	defer cancel()

	users := make([]*user, numUsers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRegistrations)
	for i := range users {
		g.Go(func() error {
			client, err := e2etest.NewClient(url, hostname, url)
			if err != nil {
				return errors.Wrap(err, "create client", slog.Int("user_index", i))
			}
			if _, err = client.Register(gctx); err != nil {
				return errors.Wrap(err, "register user", slog.Int("user_index", i))
			}
			users[i] = &user{client: client, index: i}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "registered users", slog.Int("num_users", len(users)))
	return users, nil
}

// trackDay logs a meal and a workout for date. Some days get a cheat meal to break the streaks.
func trackDay(ctx context.Context, client *e2etest.Client, date time.Time) error {
	dateKey := habits.Key(date)
	doc, err := client.GetDoc(ctx, "/track/"+dateKey)
	if err != nil {
		return errors.Wrap(err, "get track page", slog.String("date", dateKey))
	}

	var actions []string
	doc.Find("#variable-meals form").Each(func(_ int, form *goquery.Selection) {
		if form.Find("button[disabled]").Length() > 0 {
			return
		}
		if action, ok := form.Attr("action"); ok {
			actions = append(actions, action)
		}
	})
	if len(actions) > 0 {
		action := actions[rand.IntN(len(actions))] //nolint:gosec // load pattern, not security.
		if doc, err = client.SubmitForm(ctx, doc, action, nil); err != nil {
			return errors.Wrap(err, "toggle variable meal", slog.String("action", action))
		}
	}

	if date.Weekday() != time.Saturday && date.Weekday() != time.Sunday {
		action := fmt.Sprintf("/track/%s/fitness/%s/toggle", dateKey, habits.ActivityWeightlifting)
		if doc, err = client.SubmitForm(ctx, doc, action, nil); err != nil {
			return errors.Wrap(err, "toggle weightlifting", slog.String("date", dateKey))
		}
	}

	if rand.Float64() < cheatMealChance { //nolint:gosec // load pattern, not security.
		action := fmt.Sprintf("/track/%s/cheat-meals", dateKey)
		if _, err = client.SubmitForm(ctx, doc, action, map[string]string{"Name": "Pizza", "Emoji": "🍕"}); err != nil {
			return errors.Wrap(err, "add cheat meal", slog.String("date", dateKey))
		}
	}
	return nil
}

// generateHistory fills the last opts.days days for every user so that the progress pages have data to crunch.
func generateHistory(ctx context.Context, users []*user, opts options, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, historyTimeout)
	defer cancel()

	today := habits.Day(time.Now().UTC())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for _, u := range users {
		g.Go(func() error {
			for offset := opts.days; offset > 0; offset-- {
				if err := trackDay(gctx, u.client, today.AddDate(0, 0, -offset)); err != nil {
					return errors.Wrap(err, "generate history", slog.Int("user_index", u.index))
				}
			}
			logger.LogAttrs(gctx, slog.LevelDebug, "generated history", slog.Int("user_index", u.index))
			return nil
		})
	}
	return g.Wait()
}

// scenario is what a user typically does in a day: check today, log it and look at the progress views.
func scenario(ctx context.Context, u *user) error {
	today := habits.Day(time.Now().UTC())
	if err := trackDay(ctx, u.client, today); err != nil {
		return err
	}
	for _, path := range []string{
		"/",
		"/progress?range=month",
		"/progress?range=year",
		"/basketball/stats",
		"/groceries",
		"/deep-work/" + habits.Key(today) + "/stats?range=month",
	} {
		if _, err := u.client.GetDoc(ctx, path); err != nil {
			return errors.Wrap(err, "get page", slog.String("path", path))
		}
	}
	return nil
}

func runLoadTest(ctx context.Context, users []*user, opts options, logger *slog.Logger) error {
	var successCount, failureCount atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for _, u := range users {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(gctx, scenarioTimeout)
			defer cancel()
			if err := scenario(scenarioCtx, u); err != nil {
				failureCount.Add(1)
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "scenario failed",
					slog.Int("user_index", u.index), errors.SlogError(err))
				return nil
			}
			successCount.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "run scenarios")
	}

	successRate := float64(successCount.Load()) / float64(len(users)) * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "load test completed",
		slog.Int64("successful", successCount.Load()),
		slog.Int64("failed", failureCount.Load()),
		slog.Float64("success_rate", successRate))
	if successRate < successRateThreshold {
		return errors.New(fmt.Sprintf("success rate %.1f%% below threshold", successRate))
	}
	return nil
}

func run(ctx context.Context, hostname string, opts options, logger *slog.Logger) error {
	start := time.Now()
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
		hostname = "localhost"
	}

	client, err := e2etest.NewClient(url, hostname, url)
	if err != nil {
		return errors.Wrap(err, "create client")
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "server not ready in time")
	}

	users, err := setupUsers(ctx, url, hostname, opts.users, logger)
	if err != nil {
		return errors.Wrap(err, "set up users")
	}

	historyStart := time.Now()
	if err = generateHistory(ctx, users, opts, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "history generation failed, continuing with load test",
			errors.SlogError(err))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "history generation completed",
		slog.Duration("duration", time.Since(historyStart)), slog.Int("days_per_user", opts.days))

	loadStart := time.Now()
	if err = runLoadTest(ctx, users, opts, logger); err != nil {
		return errors.Wrap(err, "load test")
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)),
		slog.Duration("load_test_duration", time.Since(loadStart)))
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	opts := options{users: 0, days: 0, concurrency: 0}

	cmd := &cobra.Command{ //nolint:exhaustruct // defaults are fine for the rest.
		Use:          "stresstest <hostname>",
		Short:        "Register users, generate tracking history and load the progress pages concurrently",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.users < 1 || opts.days < 0 || opts.concurrency < 1 {
				return errors.New("users and concurrency must be positive and days non-negative")
			}
			return run(cmd.Context(), args[0], opts, logger)
		},
	}
	cmd.Flags().IntVar(&opts.users, "users", 10, "number of users to register")                    //nolint:mnd // default
	cmd.Flags().IntVar(&opts.days, "days", 90, "days of tracking history per user")                //nolint:mnd // default
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 20, "maximum concurrent user operations") //nolint:mnd // default

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logger.LogAttrs(context.Background(), slog.LevelError, "stress test failed", errors.SlogError(err))
		os.Exit(1)
	}
}
