package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"sinacrawler/pkg/checkpoint"
	"sinacrawler/pkg/export"
	"sinacrawler/pkg/logger"
	"sinacrawler/pkg/metrics"
	"sinacrawler/pkg/sina"
	"sinacrawler/pkg/storage"
	"sinacrawler/pkg/textclean"
)

// Platform prefixes checkpoint keys and output file names
const Platform = "sina"

// Fetcher returns the body of a successful GET
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Reason explains why a run ended without error
type Reason string

const (
	// ReasonNoContainer means the profile has no timeline tab; nothing was crawled
	ReasonNoContainer Reason = "no_container"
	// ReasonFeedExhausted means a page came back empty
	ReasonFeedExhausted Reason = "feed_exhausted"
	// ReasonCaughtUp means the run reached posts older than the stop date
	ReasonCaughtUp Reason = "caught_up"
)

// Result summarizes a finished run
type Result struct {
	RunID          string
	UID            string
	ContainerID    string
	Reason         Reason
	PagesFetched   int
	RecordsWritten int
	Skipped        int
	Checkpoint     checkpoint.Checkpoint
	CSVFile        string
	JSONFile       string
}

// Options configures a Crawler. Zero values fall back to defaults.
type Options struct {
	Platform  string
	OutputDir string
	Endpoints sina.Endpoints
	Cleaner   Cleaner
	Metrics   *metrics.Metrics
	Logger    logger.Logger
	Now       func() time.Time
	NewRunID  func() string

	// OnPage, when set, is called after each non-empty page is logged
	OnPage func(page, records, skipped int)
}

// Crawler runs the pagination controller for one account at a time
type Crawler struct {
	fetcher     Fetcher
	checkpoints *checkpoint.Repository
	opts        Options
	logger      logger.Logger
}

// New creates a Crawler
func New(fetcher Fetcher, checkpoints *checkpoint.Repository, opts Options) *Crawler {
	if opts.Platform == "" {
		opts.Platform = Platform
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Endpoints == (sina.Endpoints{}) {
		opts.Endpoints = sina.NewEndpoints("")
	}
	if opts.Cleaner == nil {
		opts.Cleaner = textclean.New()
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewRunID == nil {
		opts.NewRunID = func() string { return uuid.NewString() }
	}

	return &Crawler{
		fetcher:     fetcher,
		checkpoints: checkpoints,
		opts:        opts,
		logger:      opts.Logger,
	}
}

// Run crawls uid until the feed is exhausted or the run catches up with the
// stored checkpoint. On error the run log is discarded and no export is written;
// checkpoints persisted by earlier pages stay in place.
func (c *Crawler) Run(ctx context.Context, uid string, continueMode bool) (*Result, error) {
	runID := c.opts.NewRunID()
	log := c.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"uid":    uid,
	})

	result, err := c.run(ctx, log, runID, uid, continueMode)
	if err != nil {
		c.opts.Metrics.ObserveRun("aborted")
		log.WithError(err).Error("crawl aborted")
		return nil, err
	}

	c.opts.Metrics.ObserveRun(string(result.Reason))
	log.InfoWithFields("crawl finished", map[string]interface{}{
		"reason":  string(result.Reason),
		"pages":   result.PagesFetched,
		"records": result.RecordsWritten,
	})
	return result, nil
}

func (c *Crawler) run(ctx context.Context, log logger.Logger, runID, uid string, continueMode bool) (*Result, error) {
	result := &Result{RunID: runID, UID: uid}

	log.DebugWithFields("resolving feed container", map[string]interface{}{
		"state": StateFetchingContainerID.String(),
	})
	containerID, found, err := c.resolveContainer(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Warn("no timeline container for account; nothing to crawl")
		result.Reason = ReasonNoContainer
		return result, nil
	}
	result.ContainerID = containerID

	cp, err := c.checkpoints.Load(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	session := NewSession(runID, uid, containerID, continueMode, cp)
	log.InfoWithFields("crawl started", map[string]interface{}{
		"container_id":  containerID,
		"continue_mode": continueMode,
		"start_page":    session.CurrentPage + 1,
		"stop_date":     session.StopDate,
		"live_updates":  session.LiveCheckpointUpdates,
	})

	runLog, err := storage.OpenRunLog(c.opts.OutputDir, c.opts.Platform, uid, runID)
	if err != nil {
		return nil, err
	}
	finalized := false
	defer func() {
		if !finalized {
			if err := runLog.Discard(); err != nil {
				log.WithError(err).Warn("failed to discard run log")
			}
		}
	}()

	for session.State != StateStopped {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		session = session.NextPage()
		page, err := c.fetchPage(ctx, containerID, session.CurrentPage)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", session.CurrentPage, err)
		}

		if len(page.Data.Cards) == 0 {
			session = session.Stop()
			result.Reason = ReasonFeedExhausted
			break
		}

		records, summary, skipped := Extract(page.Data.Cards, c.opts.Cleaner, c.opts.Now())
		for _, record := range records {
			if err := runLog.Append(record); err != nil {
				return nil, err
			}
		}
		result.PagesFetched++
		result.RecordsWritten += len(records)
		result.Skipped += skipped
		c.opts.Metrics.ObservePage(len(records), skipped)
		logger.LogPage(log, session.CurrentPage, len(records), skipped, summary.Oldest, summary.Newest)
		if c.opts.OnPage != nil {
			c.opts.OnPage(session.CurrentPage, len(records), skipped)
		}

		var decision Decision
		session, decision = Decide(session, summary)

		if decision.Persist {
			err := c.checkpoints.Save(ctx, uid, session.Checkpoint)
			c.opts.Metrics.ObserveCheckpointWrite(err)
			if err != nil {
				return nil, err
			}
		}

		if decision.Stop {
			session = session.Stop()
			result.Reason = ReasonCaughtUp
		}
	}

	if err := runLog.Close(); err != nil {
		return nil, err
	}
	files, err := export.Finalize(runLog.Path(), c.opts.OutputDir, c.opts.Platform, uid, c.opts.Now())
	if err != nil {
		// Keep the log: the checkpoint has already moved past these records
		finalized = true
		return nil, fmt.Errorf("failed to export run (records kept in %s): %w", runLog.Path(), err)
	}
	finalized = true
	if err := runLog.Discard(); err != nil {
		log.WithError(err).Warn("failed to remove run log")
	}

	result.Checkpoint = session.Checkpoint
	result.CSVFile = files.CSV
	result.JSONFile = files.JSON
	return result, nil
}

func (c *Crawler) resolveContainer(ctx context.Context, uid string) (string, bool, error) {
	body, err := c.fetcher.Fetch(ctx, c.opts.Endpoints.IndexURL(uid))
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch profile index: %w", err)
	}
	return sina.ParseContainerID(body)
}

func (c *Crawler) fetchPage(ctx context.Context, containerID string, page int) (*sina.PageResponse, error) {
	body, err := c.fetcher.Fetch(ctx, c.opts.Endpoints.PageURL(containerID, page))
	if err != nil {
		return nil, err
	}
	return sina.ParsePage(body)
}
