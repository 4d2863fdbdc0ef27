package downloader

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	errs "tgmedia/pkg/errors"
	"tgmedia/pkg/ledger"
	"tgmedia/pkg/logger"
	"tgmedia/pkg/media"
	"tgmedia/pkg/models"
	"tgmedia/pkg/naming"
	"tgmedia/pkg/retry"
	"tgmedia/pkg/storage"
)

// DefaultFlushEvery is the number of ledger additions between flushes
const DefaultFlushEvery = 25

// Fetcher streams the media bytes of a message into w. A server-requested
// pause is reported as an errors.RateLimited error.
type Fetcher interface {
	FetchMedia(ctx context.Context, msg media.Message, w io.Writer) error
}

// Outcome is the terminal state of one message in a pass
type Outcome int

const (
	Downloaded Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Downloaded:
		return "downloaded"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Progress receives pass events. Advance is called exactly once per message.
type Progress interface {
	Begin(total int)
	Advance(msg media.Message, outcome Outcome, err error)
	Waiting(msg media.Message, wait time.Duration)
	Finish(summary Summary)
}

// Failure records a message that could not be downloaded
type Failure struct {
	MessageID int
	Err       error
}

// Summary reports the result of a pass
type Summary struct {
	Completed      int
	Skipped        int
	Failed         int
	Bytes          int64
	RateLimitWaits int
	Elapsed        time.Duration
	Failures       []Failure
}

// Options configure an Orchestrator
type Options struct {
	// FlushEvery persists the ledger after this many additions. Zero
	// persists only at the end of the pass.
	FlushEvery       int
	DefaultExtension string
	// Sleep waits out rate limits. Defaults to retry.Wait.
	Sleep    func(ctx context.Context, d time.Duration) error
	Now      func() time.Time
	Logger   logger.Logger
	Progress Progress
}

// Orchestrator downloads a list of messages into a chat folder exactly once
type Orchestrator struct {
	fetcher Fetcher
	opts    Options
}

// New creates an Orchestrator. Zero-valued options get defaults.
func New(fetcher Fetcher, opts Options) *Orchestrator {
	if opts.FlushEvery < 0 {
		opts.FlushEvery = 0
	}
	if opts.DefaultExtension == "" {
		opts.DefaultExtension = ".bin"
	}
	if opts.Sleep == nil {
		opts.Sleep = retry.Wait
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	return &Orchestrator{fetcher: fetcher, opts: opts}
}

// pass holds the state of one Run
type pass struct {
	*Orchestrator
	chat    models.Chat
	files   *storage.Manager
	store   *ledger.Store
	ledger  *ledger.Ledger
	paths   map[string]int
	pending int
	summary Summary
}

// Run processes msgs in order, strictly one at a time. The ledger is
// persisted before Run returns, including when ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, chat models.Chat, msgs []media.Message, chatRoot string) (Summary, error) {
	start := o.opts.Now()

	files, err := storage.NewManager(chatRoot)
	if err != nil {
		return Summary{}, errs.Wrap(errs.ErrorTypeStorage, "prepare chat folder", err)
	}

	p := &pass{
		Orchestrator: o,
		chat:         chat,
		files:        files,
		store:        ledger.NewStore(chatRoot, o.opts.Logger),
		paths:        make(map[string]int),
	}
	p.ledger = p.store.Load()
	p.ledger.SetChat(chat)

	o.opts.Logger.InfoWithFields("Download pass started", map[string]interface{}{
		"chat":        chat.DisplayName(),
		"messages":    len(msgs),
		"already":     p.ledger.Len(),
		"chat_root":   chatRoot,
		"flush_every": o.opts.FlushEvery,
	})
	o.opts.Progress.Begin(len(msgs))

	var runErr error
	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		outcome, fetchErr, abort := p.process(ctx, msg)
		if abort != nil {
			runErr = abort
			break
		}
		p.record(msg, outcome, fetchErr)
	}

	if err := p.store.Save(p.ledger); err != nil {
		saveErr := errs.Wrap(errs.ErrorTypeStorage, "persist ledger", err)
		if runErr == nil {
			runErr = saveErr
		} else {
			o.opts.Logger.WithError(err).Error("Failed to persist ledger")
		}
	}

	p.summary.Elapsed = o.opts.Now().Sub(start)
	o.opts.Progress.Finish(p.summary)
	o.opts.Logger.InfoWithFields("Download pass finished", map[string]interface{}{
		"chat":       chat.DisplayName(),
		"downloaded": p.summary.Completed,
		"skipped":    p.summary.Skipped,
		"failed":     p.summary.Failed,
		"bytes":      p.summary.Bytes,
		"elapsed":    p.summary.Elapsed,
	})
	return p.summary, runErr
}

// process resolves one message. abort is set only when the pass must end.
func (p *pass) process(ctx context.Context, msg media.Message) (outcome Outcome, fetchErr error, abort error) {
	if p.ledger.Contains(msg.ID) {
		return Skipped, nil, nil
	}

	dir := p.files.Root()
	if msg.InAlbum() {
		groupDir, err := p.files.GroupDir(msg.GroupID)
		if err != nil {
			return Failed, err, nil
		}
		dir = groupDir
	}

	path := filepath.Join(dir, naming.FileName(msg, p.opts.DefaultExtension))
	if prev, seen := p.paths[path]; seen && prev != msg.ID {
		p.opts.Logger.WarnWithFields("Two messages resolve to the same file", map[string]interface{}{
			"path":        path,
			"first_id":    prev,
			"second_id":   msg.ID,
			"resolved_as": Skipped.String(),
		})
	} else {
		p.paths[path] = msg.ID
	}

	if p.files.Exists(path) {
		p.add(msg.ID)
		return Skipped, nil, nil
	}

	for {
		n, err := p.files.WriteFile(path, func(w io.Writer) error {
			return p.fetcher.FetchMedia(ctx, msg, w)
		})
		if err == nil {
			p.summary.Bytes += n
			p.add(msg.ID)
			return Downloaded, nil, nil
		}

		if wait, ok := errs.RetryAfter(err); ok {
			p.summary.RateLimitWaits++
			p.opts.Progress.Waiting(msg, wait)
			logger.LogRateLimit(p.opts.Logger, fmt.Sprintf("fetch message %d", msg.ID), wait)
			if sleepErr := p.opts.Sleep(ctx, wait); sleepErr != nil {
				return Failed, nil, sleepErr
			}
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return Failed, nil, ctxErr
		}
		return Failed, err, nil
	}
}

// record advances progress for a message that reached a terminal state
func (p *pass) record(msg media.Message, outcome Outcome, err error) {
	switch outcome {
	case Downloaded:
		p.summary.Completed++
	case Skipped:
		p.summary.Skipped++
	case Failed:
		p.summary.Failed++
		p.summary.Failures = append(p.summary.Failures, Failure{MessageID: msg.ID, Err: err})
	}
	logger.LogDownload(p.opts.Logger, p.chat.DisplayName(), msg.ID, media.Classify(msg.Attachment).String(), outcome.String(), err)
	p.opts.Progress.Advance(msg, outcome, err)
}

// add records id in the ledger and flushes every FlushEvery additions
func (p *pass) add(id int) {
	if !p.ledger.Add(id) {
		return
	}
	p.pending++
	if p.opts.FlushEvery > 0 && p.pending >= p.opts.FlushEvery {
		if err := p.store.Save(p.ledger); err != nil {
			p.opts.Logger.WithError(err).Warn("Failed to flush ledger, will retry at end of pass")
			return
		}
		p.pending = 0
	}
}

type nopProgress struct{}

func (nopProgress) Begin(int)                             {}
func (nopProgress) Advance(media.Message, Outcome, error) {}
func (nopProgress) Waiting(media.Message, time.Duration)  {}
func (nopProgress) Finish(Summary)                        {}
