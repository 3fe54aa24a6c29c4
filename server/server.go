package server

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"perch/analytics"
	"perch/config"
	"perch/session"
	"perch/twitter"
)

type ServerConfig struct {

	// OAuth app credentials and the callback registered with the provider
	OAuth *twitter.OAuthConfig

	// Frontend origin allowed by CORS and targeted by the OAuth redirects
	FrontendURL string

	// Tuning knobs for the fetch/rank/aggregate pipeline
	Tuning *config.Config

	// Where the per-browser session secrets live
	Sessions session.Store

	// Builds a provider client for a request's access token
	ClientFor func(accessToken string) *twitter.Client

	// Builds the inter-page pause for a timeline walk
	Delay func() backoff.BackOff
}

// Returns a fiber.App instance to be used as the HTTP backend for the
// dashboard frontend.
func Server(cfg *ServerConfig) *fiber.App {

	if cfg.Tuning == nil {
		cfg.Tuning = config.Default()
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewCookieStore(false)
	}
	if cfg.ClientFor == nil {
		cfg.ClientFor = func(accessToken string) *twitter.Client {
			return twitter.NewClient(accessToken)
		}
	}
	if cfg.Delay == nil {
		pause := cfg.Tuning.PageDelay()
		cfg.Delay = func() backoff.BackOff {
			return backoff.NewConstantBackOff(pause)
		}
	}

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		stop := time.Now()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	// The dashboard frontend lives on another origin and sends cookies
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowHeaders:     "Content-Type",
		AllowCredentials: true,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Step 1: redirect the browser to the provider with a PKCE challenge
	app.Get("/auth/twitter", func(c *fiber.Ctx) error {
		if cfg.OAuth == nil {
			log.Error("OAuth client credentials not configured")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "authentication is not configured",
			})
		}

		url, state, verifier := cfg.OAuth.AuthLink()

		// The state and verifier must survive until the callback, nowhere else
		cfg.Sessions.Set(c, session.StateCookie, state, session.FlowTTL)
		cfg.Sessions.Set(c, session.VerifierCookie, verifier, session.FlowTTL)

		return c.Redirect(url, fiber.StatusFound)
	})

	// Step 2: exchange the authorization code for an access token
	app.Get("/auth/twitter/callback", func(c *fiber.Ctx) error {
		failure := cfg.FrontendURL + "/?error=auth_failed"

		code := c.Query("code")
		state := c.Query("state")
		storedState := cfg.Sessions.Get(c, session.StateCookie)
		verifier := cfg.Sessions.Get(c, session.VerifierCookie)

		// Single-use secrets, drop them regardless of outcome
		cfg.Sessions.Clear(c, session.StateCookie)
		cfg.Sessions.Clear(c, session.VerifierCookie)

		if code == "" || verifier == "" || state == "" || state != storedState {
			log.Warn("OAuth callback with missing code or mismatched state")
			return c.Redirect(failure, fiber.StatusFound)
		}

		token, err := cfg.OAuth.Exchange(c.Context(), code, verifier)
		if err != nil {
			// Never expose provider internals to the browser
			log.WithFields(log.Fields{
				"error": err,
			}).Error("OAuth code exchange failed")
			return c.Redirect(failure, fiber.StatusFound)
		}

		cfg.Sessions.Set(c, session.TokenCookie, token, 0)
		return c.Redirect(cfg.FrontendURL, fiber.StatusFound)
	})

	// Everything under /api requires the access token cookie
	api := app.Group("/api", func(c *fiber.Ctx) error {
		token := cfg.Sessions.Get(c, session.TokenCookie)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		c.Locals("client", cfg.ClientFor(token))
		return c.Next()
	})

	api.Get("/analytics-data", func(c *fiber.Ctx) error {
		user, err := clientFrom(c).Me(c.Context())
		if err != nil {
			return apiError(c, err, "failed to fetch user data")
		}

		return c.JSON(fiber.Map{
			"user": fiber.Map{"data": user},
		})
	})

	api.Get("/top-tweets", func(c *fiber.Ctx) error {
		userID := c.Query("userId")
		if userID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "userId is required",
			})
		}

		metric := c.Query("metric", analytics.MetricLikes)
		count, err := strconv.Atoi(c.Query("count", strconv.Itoa(analytics.DefaultLimit)))
		if err != nil || count < 1 {
			count = analytics.DefaultLimit
		}

		windowDays := cfg.Tuning.Windows.TopPostsDays
		posts, err := clientFrom(c).Timeline(c.Context(), userID, twitter.FetchOptions{
			StartTime: time.Now().AddDate(0, 0, -windowDays),
			MaxPages:  cfg.Tuning.Fetch.TopPostsPages,
			PageSize:  cfg.Tuning.Fetch.PageSize,
			Delay:     cfg.Delay(),
		})
		if err != nil {
			return apiError(c, err, "failed to fetch tweets")
		}

		top := analytics.Rank(posts, metric, windowDays, count)

		log.WithFields(log.Fields{
			"userId": userID,
			"metric": metric,
			"count":  len(top),
		}).Info("Ranked top tweets")

		return c.JSON(fiber.Map{"tweets": top})
	})

	api.Get("/historical-engagement", func(c *fiber.Ctx) error {
		userID := c.Query("userId")
		if userID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "userId is required",
			})
		}

		start := time.Now().AddDate(0, 0, -cfg.Tuning.Windows.HistoryDays)
		if raw := c.Query("startDate"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "startDate must be formatted YYYY-MM-DD",
				})
			}
			start = parsed
		}

		posts, err := clientFrom(c).Timeline(c.Context(), userID, twitter.FetchOptions{
			StartTime: start,
			MaxPages:  cfg.Tuning.Fetch.HistoryPages,
			PageSize:  cfg.Tuning.Fetch.PageSize,
			Delay:     cfg.Delay(),
		})
		if err != nil {
			return apiError(c, err, "failed to fetch tweet history")
		}

		series := analytics.AggregateMonthly(posts)

		log.WithFields(log.Fields{
			"userId": userID,
			"posts":  len(posts),
			"months": len(series),
		}).Info("Aggregated historical engagement")

		return c.JSON(fiber.Map{
			"engagement": series,
			"score":      analytics.PerformanceScore(series),
		})
	})

	api.Post("/tweet", func(c *fiber.Ctx) error {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		text := strings.TrimSpace(body.Text)
		if text == "" || utf8.RuneCountInString(text) > 280 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "tweet text must be between 1 and 280 characters",
			})
		}

		tweet, err := clientFrom(c).PostTweet(c.Context(), text)
		if err != nil {
			return apiError(c, err, "failed to post tweet")
		}

		log.WithFields(log.Fields{
			"id": tweet.ID,
		}).Info("Published tweet")

		return c.JSON(fiber.Map{
			"success": true,
			"tweet":   tweet,
		})
	})

	return app
}

func clientFrom(c *fiber.Ctx) *twitter.Client {
	return c.Locals("client").(*twitter.Client)
}

// apiError maps tagged provider errors onto the HTTP statuses the dashboard
// understands. Anything untagged is a 500 with a best-effort detail string.
func apiError(c *fiber.Ctx, err error, message string) error {
	status := fiber.StatusInternalServerError
	switch {
	case twitter.IsUnauthorized(err):
		status = fiber.StatusUnauthorized
	case twitter.IsForbidden(err):
		status = fiber.StatusForbidden
	case twitter.IsRateLimited(err):
		status = fiber.StatusTooManyRequests
	}

	log.WithFields(log.Fields{
		"status": status,
		"error":  err,
	}).Error(message)

	return c.Status(status).JSON(fiber.Map{
		"error":   message,
		"details": err.Error(),
	})
}
