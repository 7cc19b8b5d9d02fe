package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sjsage522/listingwatch/config"
	"sjsage522/listingwatch/helpers"
	"sjsage522/listingwatch/internal"
	"sjsage522/listingwatch/internal/crawler"
	"sjsage522/listingwatch/internal/filter"
	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/logger"
	"sjsage522/listingwatch/services/cache"
	"sjsage522/listingwatch/services/metrics"
	"sjsage522/listingwatch/services/publisher"
	"sjsage522/listingwatch/services/report"
	"sjsage522/listingwatch/services/worker"
)

const expressionHelp = `Filter expressions are comma separated conditions that must all hold:
  attribute<NUMBER   integer value lower than NUMBER
  attribute>NUMBER   integer value greater than NUMBER
  attribute~REGEX    value contains a match of REGEX
  attribute!~REGEX   value contains no match of REGEX
Example: "name~(?i)laptop,price<3000,discount-percentage>20"`

// emailOptions are shared by the commands able to mail their results
type emailOptions struct {
	to      string
	subject string
}

func (o *emailOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.to, "send-email", "e", "", "Send results to `EMAIL`")
	cmd.Flags().StringVar(&o.subject, "email-subject", "", "Use `SUBJECT` as email subject")
}

func (a *app) emagCmd() *cobra.Command {
	var (
		categoryID int
		expression string
		silent     bool
		publish    bool
		mail       emailOptions
	)

	cmd := &cobra.Command{
		Use:   "emag",
		Short: "List eMAG resigilate and lichidari products matching a filter",
		Long:  "List eMAG resigilate and lichidari products matching a filter.\n\n" + expressionHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			expr, err := filter.Parse(expression)
			if err != nil {
				return err
			}

			if categoryID == 0 && mail.to == "" {
				fmt.Fprintln(a.errOut, "Getting all categories will take a while...")
				fmt.Fprintln(a.errOut, "Hope your patience will get a hefty reward!")
			}

			services := initializeServices(cmd.Context(), a.cfg, publish)
			defer services.Cleanup()

			var (
				records  []listing.Record
				crawlErr error
			)
			for _, c := range crawler.CreateCrawlers(a.cfg, categoryID, services.Cache, nil) {
				sectionRecords, err := c.FetchRecords()
				if err != nil {
					logger.LogError("emag", err, "Failed to crawl %s", c.GetName())
					if crawlErr == nil {
						crawlErr = err
					}
				}
				records = append(records, sectionRecords...)
			}

			// nothing was read, an empty report would look like a search without results
			if crawlErr != nil && len(records) == 0 {
				return crawlErr
			}

			matched, err := filter.Filter(records, expr)
			if err != nil {
				return err
			}

			if silent && len(matched) == 0 {
				if crawlErr != nil {
					return crawlErr
				}
				return &exitError{code: exitUsage}
			}

			if publish && services.Publisher != nil {
				if _, err := publisher.PublishRecords(services.Publisher, "emag", "emag", matched); err != nil {
					logger.LogError("emag", err, "Failed to publish matches")
				}
			}

			var reporter report.Reporter = report.NewTextReporter(a.out, report.Products)
			if mail.to != "" {
				email := report.NewEmailReporter(a.cfg.Mail, mail.to, report.Products)
				email.Subject = mail.subject
				email.CategoryID = categoryID
				email.Expression = expression
				reporter = email
			}
			if err := reporter.Report("emag", matched); err != nil {
				return err
			}
			// the sections that were read are reported, the failed ones still fail the run
			return crawlErr
		},
	}

	cmd.Flags().IntVarP(&categoryID, "category-id", "c", 0, "Products category `ID` to get, all categories when omitted")
	cmd.Flags().StringVarP(&expression, "filter", "f", "", "Filter products based on `EXPRESSION`")
	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Do not output or email anything if no results were found")
	cmd.Flags().BoolVar(&publish, "publish", false, "Also publish matches to the Redis stream")
	mail.register(cmd)

	return cmd
}

func (a *app) reviewsCmd() *cobra.Command {
	var (
		language   string
		release    string
		expression string
		mail       emailOptions
	)

	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Report Ubuntu translation templates with suggestions waiting for review",
		Long: `Report Ubuntu translation templates with suggestions waiting for review.
The result is printed as an RSS feed, or mailed when --send-email is given.

Review records carry the attributes name, link, count, last-editor and date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			expr, err := filter.Parse(expression)
			if err != nil {
				return err
			}

			services := initializeServices(cmd.Context(), a.cfg, false)
			defer services.Cleanup()

			c := crawler.NewReviewsCrawler(a.cfg.TranslationsURL, release, language, a.cfg.ReviewBatchSize, services.Cache, a.cfg.BlockTime)
			records, err := c.FetchRecords()
			if err != nil {
				return err
			}

			matched, err := filter.Filter(records, expr)
			if err != nil {
				return err
			}

			var reporter report.Reporter = report.NewRSSReporter(a.out, release, language, c.IndexURL())
			if mail.to != "" {
				email := report.NewEmailReporter(a.cfg.Mail, mail.to, report.Reviews)
				email.Subject = mail.subject
				reporter = email
			}
			return reporter.Report(c.GetName(), matched)
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Language `LC` for which to get the reviews")
	cmd.Flags().StringVarP(&release, "release", "r", "", "Ubuntu `RELEASE` name, e.g. lucid or natty")
	cmd.Flags().StringVarP(&expression, "filter", "f", "", "Filter templates based on `EXPRESSION`")
	mail.register(cmd)
	_ = cmd.MarkFlagRequired("language")
	_ = cmd.MarkFlagRequired("release")

	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var (
		categoryID int
		expression string
		once       bool
		mail       emailOptions
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Periodically crawl eMAG and report new matching products",
		Long: `Periodically crawl eMAG and report new matching products.

Matches are published to the Redis stream, printed, and optionally mailed.
A product is reported once per SEEN_TTL_SECONDS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			expr, err := filter.Parse(expression)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			services := initializeServices(ctx, a.cfg, true)
			defer services.Cleanup()

			m := metrics.NewMetrics()
			if a.cfg.MetricsAddr != "" {
				go func() {
					if err := m.Serve(ctx, a.cfg.MetricsAddr); err != nil {
						logger.LogError("metrics", err, "Metrics endpoint stopped")
					}
				}()
			}

			reporters := report.Multi{report.NewTextReporter(a.out, report.Products)}
			if mail.to != "" {
				email := report.NewEmailReporter(a.cfg.Mail, mail.to, report.Products)
				email.Subject = mail.subject
				email.CategoryID = categoryID
				email.Expression = expression
				reporters = append(reporters, email)
			}

			deps := internal.Dependencies{
				Reporter: reporters,
				Metrics:  m,
			}
			if services.Cache != nil {
				deps.Seen = cache.NewSeenStore(services.Cache, a.cfg.SeenTTL)
			}
			if services.Publisher != nil {
				deps.Publisher = services.Publisher
			}

			crawlers := crawler.CreateCrawlers(a.cfg, categoryID, services.Cache, m)

			logger.Default.Info().
				Str("environment", a.cfg.Environment).
				Dur("crawl_interval", a.cfg.CrawlInterval).
				Int("crawler_count", len(crawlers)).
				Msg("Starting listing worker")

			w := worker.NewWorker(ctx, crawlers, expr, deps, helpers.NewLoggerWith(logger.ForWorker()), a.cfg.CrawlInterval)
			w.SetVerbose(!a.cfg.IsProduction() || logger.IsDebugEnabled())

			if once {
				w.RunOnce()
				return nil
			}
			w.Start()

			logger.Default.Info().Msg("Shutting down gracefully...")
			return nil
		},
	}

	cmd.Flags().IntVarP(&categoryID, "category-id", "c", 0, "Products category `ID` to watch, all categories when omitted")
	cmd.Flags().StringVarP(&expression, "filter", "f", "", "Report products matching `EXPRESSION`")
	cmd.Flags().BoolVar(&once, "once", false, "Crawl a single time and exit")
	mail.register(cmd)

	return cmd
}

// Services holds all the initialized services. Unreachable services are
// left nil and the commands run without them.
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices connects to memcache and, when asked, to Redis
func initializeServices(ctx context.Context, cfg *config.Config, withPublisher bool) *Services {
	services := &Services{}

	// Initialize cache service
	cacheService, err := cache.Reachable(cache.NewMemcacheService(cfg.MemcacheAddr))
	if err != nil {
		logger.ForCache().Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache unavailable, running without cache")
	} else {
		services.Cache = cacheService
		logger.LogInfo("cache", "Connected to Memcache at %s", cfg.MemcacheAddr)
	}

	if !withPublisher {
		return services
	}

	// Initialize publisher
	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	if err := redisPublisher.Ping(); err != nil {
		logger.ForPublisher().Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, matches will not be published")
		redisPublisher.Close()
		return services
	}
	services.Publisher = redisPublisher

	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	return services
}
