package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"restyle/internal/domain"
	"restyle/internal/infra"
	"restyle/internal/session"
)

// Classifier decides whether a prompt is a scene redesign or a product
// search request.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (domain.Classification, error)
}

// ImageEditor renders an edited scene. product is nil for plain redesigns.
type ImageEditor interface {
	EditImage(ctx context.Context, base domain.ImageObject, product *domain.ImageObject, instruction string) (domain.ImageObject, error)
}

// ProductSearcher looks shoppable listings up for a query.
type ProductSearcher interface {
	Search(ctx context.Context, query string) ([]domain.ProductListing, error)
}

// ImageFetcher retrieves a remote image into an ImageObject.
type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (domain.ImageObject, error)
}

// Options wires the service. Store, Classifier, Editor, Searcher and Fetcher
// are required; Events and Logger default to a fresh broker and a discard
// logger.
type Options struct {
	Store      *session.Store
	Events     *session.Broker
	Classifier Classifier
	Editor     ImageEditor
	Searcher   ProductSearcher
	Fetcher    ImageFetcher
	Logger     *infra.Logger
}

// Service runs the try-on flows. Every long action claims its session via
// the store before touching providers, so at most one action mutates a
// session at a time; competing calls fail fast with ErrActionInFlight.
type Service struct {
	store      *session.Store
	events     *session.Broker
	classifier Classifier
	editor     ImageEditor
	searcher   ProductSearcher
	fetcher    ImageFetcher
	log        *infra.Logger
}

func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("studio: store is required")
	}
	if opts.Classifier == nil {
		return nil, errors.New("studio: classifier is required")
	}
	if opts.Editor == nil {
		return nil, errors.New("studio: image editor is required")
	}
	if opts.Searcher == nil {
		return nil, errors.New("studio: product searcher is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("studio: image fetcher is required")
	}
	events := opts.Events
	if events == nil {
		events = session.NewBroker()
	}
	logger := opts.Logger
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	return &Service{
		store:      opts.Store,
		events:     events,
		classifier: opts.Classifier,
		editor:     opts.Editor,
		searcher:   opts.Searcher,
		fetcher:    opts.Fetcher,
		log:        logger,
	}, nil
}

// Events exposes the progress broker for websocket handlers.
func (s *Service) Events() *session.Broker {
	return s.events
}

// SessionCount reports how many sessions are currently live.
func (s *Service) SessionCount() int {
	return s.store.Len()
}

// CreateSession opens a new session for the given locale.
func (s *Service) CreateSession(locale string) (*domain.Session, error) {
	return s.store.Create(locale)
}

// Session returns a snapshot of the session.
func (s *Service) Session(id string) (*domain.Session, error) {
	return s.store.Snapshot(id)
}

// DeleteSession drops the session and closes its event subscribers.
func (s *Service) DeleteSession(id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.events.DropSession(id)
	return nil
}

// ResetSession clears the session back to its empty state.
func (s *Service) ResetSession(id string) (*domain.Session, error) {
	return s.store.Update(id, func(sess *domain.Session) error {
		sess.Reset()
		return nil
	})
}

// SetImage replaces the session's working photo with an already-decoded
// image, as on multipart upload.
func (s *Service) SetImage(id string, img domain.ImageObject) (*domain.Session, error) {
	if img.IsZero() {
		return nil, fmt.Errorf("%w: empty image", domain.ErrImageUnreadable)
	}
	return s.store.Update(id, func(sess *domain.Session) error {
		sess.ReplaceImage(img)
		return nil
	})
}

// SetImageFromURL fetches a remote photo and makes it the session's working
// image. Used for both user-supplied URLs and catalog examples.
func (s *Service) SetImageFromURL(ctx context.Context, id, rawURL string) (*domain.Session, error) {
	claimed, err := s.begin(id, domain.StageIngesting, domain.MsgStageIngesting)
	if err != nil {
		return nil, err
	}
	img, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return s.fail(id, claimed.Locale, err, nil)
	}
	return s.finish(id, claimed.Locale, func(sess *domain.Session) {
		sess.ReplaceImage(img)
	})
}

// SelectHistory moves the active image to an earlier history entry.
func (s *Service) SelectHistory(id string, index int) (*domain.Session, error) {
	return s.store.Update(id, func(sess *domain.Session) error {
		return sess.SelectImage(index)
	})
}

// SubmitPrompt runs the main flow: classify the prompt, then either redesign
// the active image or search for a product and render it into the scene. The
// prompt is recorded on the session whether or not the action succeeds.
func (s *Service) SubmitPrompt(ctx context.Context, id, prompt string) (*domain.Session, error) {
	prompt = strings.TrimSpace(prompt)

	claimed, err := s.begin(id, domain.StageThinking, domain.MsgStageThinking)
	if err != nil {
		return nil, err
	}
	base, ok := claimed.ActiveImage()
	if !ok {
		s.release(id)
		return nil, domain.ErrNoActiveImage
	}

	keepPrompt := func(sess *domain.Session) { sess.Prompt = prompt }

	cls, err := s.classifier.Classify(ctx, prompt)
	if err != nil {
		return s.fail(id, claimed.Locale, err, keepPrompt)
	}

	if cls.Intent == domain.IntentSearchAndApply {
		return s.searchAndApply(ctx, id, claimed.Locale, base, prompt, cls)
	}

	s.progress(id, claimed.Locale, domain.StageRendering, domain.MsgStageRendering)
	edited, err := s.editor.EditImage(ctx, base, nil, BuildRedesignInstruction(prompt))
	if err != nil {
		return s.fail(id, claimed.Locale, err, keepPrompt)
	}
	return s.finish(id, claimed.Locale, func(sess *domain.Session) {
		sess.Prompt = prompt
		sess.AppendImage(edited)
	})
}

// ApplyProduct renders one of the stored search results into the active
// image.
func (s *Service) ApplyProduct(ctx context.Context, id string, index int) (*domain.Session, error) {
	claimed, err := s.begin(id, domain.StageFetching, domain.MsgStageFetching)
	if err != nil {
		return nil, err
	}
	base, ok := claimed.ActiveImage()
	if !ok {
		s.release(id)
		return nil, domain.ErrNoActiveImage
	}
	if index < 0 || index >= len(claimed.Results) {
		s.release(id)
		return nil, domain.ErrInvalidIndex
	}
	listing := claimed.Results[index]

	product, err := s.fetcher.Fetch(ctx, listing.ImageURL)
	if err != nil {
		return s.fail(id, claimed.Locale, err, nil)
	}

	s.progress(id, claimed.Locale, domain.StageRendering, domain.MsgStageRendering)
	edited, err := s.editor.EditImage(ctx, base, &product, BuildApplyInstruction(listing, claimed.Prompt))
	if err != nil {
		return s.fail(id, claimed.Locale, err, nil)
	}
	return s.finish(id, claimed.Locale, func(sess *domain.Session) {
		sess.AppendImage(edited)
	})
}

func (s *Service) searchAndApply(ctx context.Context, id, locale string, base domain.ImageObject, prompt string, cls domain.Classification) (*domain.Session, error) {
	keepPrompt := func(sess *domain.Session) { sess.Prompt = prompt }

	s.progress(id, locale, domain.StageSearching, domain.MsgStageSearching)
	listings, err := s.searcher.Search(ctx, cls.Query(prompt))
	if err != nil {
		return s.fail(id, locale, err, keepPrompt)
	}

	keep := func(sess *domain.Session) {
		sess.Prompt = prompt
		sess.Results = listings
	}
	if len(listings) == 0 {
		return s.fail(id, locale, domain.ErrNoProducts, keep)
	}
	first := listings[0]

	s.progress(id, locale, domain.StageFetching, domain.MsgStageFetching)
	product, err := s.fetcher.Fetch(ctx, first.ImageURL)
	if err != nil {
		return s.fail(id, locale, err, keep)
	}

	s.progress(id, locale, domain.StageRendering, domain.MsgStageRendering)
	edited, err := s.editor.EditImage(ctx, base, &product, BuildApplyInstruction(first, prompt))
	if err != nil {
		return s.fail(id, locale, err, keep)
	}
	return s.finish(id, locale, func(sess *domain.Session) {
		keep(sess)
		sess.AppendImage(edited)
	})
}

// begin claims the session, then stamps and broadcasts the first stage
// banner. The message is localized from the claimed session's locale.
func (s *Service) begin(id string, stage domain.Stage, key string) (*domain.Session, error) {
	claimed, err := s.store.Begin(id, stage, "")
	if err != nil {
		return nil, err
	}
	msg := domain.Localize(claimed.Locale, key)
	_ = s.store.Progress(id, stage, msg)
	s.events.Publish(session.Event{SessionID: id, Stage: stage, Message: msg})
	claimed.StatusMessage = msg
	return claimed, nil
}

func (s *Service) progress(id, locale string, stage domain.Stage, key string) {
	msg := domain.Localize(locale, key)
	_ = s.store.Progress(id, stage, msg)
	s.events.Publish(session.Event{SessionID: id, Stage: stage, Message: msg})
}

// release gives the claim back without recording an outcome, for requests
// rejected before any provider call.
func (s *Service) release(id string) {
	_, _ = s.store.Finish(id, func(sess *domain.Session) {
		sess.StatusMessage = ""
	})
}

func (s *Service) fail(id, locale string, cause error, apply func(*domain.Session)) (*domain.Session, error) {
	msg := domain.Localize(locale, domain.MessageKeyForError(cause))
	snap, err := s.store.Finish(id, func(sess *domain.Session) {
		if apply != nil {
			apply(sess)
		}
		sess.StatusMessage = ""
		sess.LastError = msg
	})
	if err != nil {
		return nil, cause
	}
	s.events.Publish(session.Event{SessionID: id, Error: msg, Done: true})
	s.log.Warn().Err(cause).Str("session_id", id).Msg("studio: action failed")
	return snap, cause
}

func (s *Service) finish(id, locale string, apply func(*domain.Session)) (*domain.Session, error) {
	msg := domain.Localize(locale, domain.MsgDone)
	snap, err := s.store.Finish(id, func(sess *domain.Session) {
		if apply != nil {
			apply(sess)
		}
		sess.StatusMessage = msg
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(session.Event{SessionID: id, Message: msg, Done: true})
	return snap, nil
}
