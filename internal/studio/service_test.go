package studio

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"restyle/internal/domain"
	"restyle/internal/session"
)

type fakeClassifier struct {
	cls       domain.Classification
	err       error
	calls     int
	gotPrompt string
}

func (f *fakeClassifier) Classify(_ context.Context, prompt string) (domain.Classification, error) {
	f.calls++
	f.gotPrompt = prompt
	if f.err != nil {
		return domain.Classification{}, f.err
	}
	return f.cls, nil
}

type fakeEditor struct {
	img            domain.ImageObject
	err            error
	calls          int
	gotBase        domain.ImageObject
	gotProduct     *domain.ImageObject
	gotInstruction string
	entered        chan struct{}
	block          chan struct{}
}

func (f *fakeEditor) EditImage(_ context.Context, base domain.ImageObject, product *domain.ImageObject, instruction string) (domain.ImageObject, error) {
	f.calls++
	f.gotBase = base
	f.gotProduct = product
	f.gotInstruction = instruction
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return domain.ImageObject{}, f.err
	}
	return f.img, nil
}

type fakeSearcher struct {
	listings []domain.ProductListing
	err      error
	calls    int
	gotQuery string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]domain.ProductListing, error) {
	f.calls++
	f.gotQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.listings, nil
}

type fakeFetcher struct {
	img    domain.ImageObject
	err    error
	calls  int
	gotURL string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (domain.ImageObject, error) {
	f.calls++
	f.gotURL = rawURL
	if f.err != nil {
		return domain.ImageObject{}, f.err
	}
	return f.img, nil
}

var (
	roomImage    = domain.NewImage([]byte("room-bytes"), "image/png")
	productImage = domain.NewImage([]byte("product-bytes"), "image/jpeg")
	editedImage  = domain.NewImage([]byte("edited-bytes"), "image/png")
)

type testRig struct {
	svc        *Service
	store      *session.Store
	classifier *fakeClassifier
	editor     *fakeEditor
	searcher   *fakeSearcher
	fetcher    *fakeFetcher
}

func newRig(t *testing.T) *testRig {
	t.Helper()
	rig := &testRig{
		store:      session.NewStore(time.Minute, 8),
		classifier: &fakeClassifier{cls: domain.Classification{Intent: domain.IntentRedesignImage}},
		editor:     &fakeEditor{img: editedImage},
		searcher:   &fakeSearcher{},
		fetcher:    &fakeFetcher{img: productImage},
	}
	svc, err := NewService(Options{
		Store:      rig.store,
		Classifier: rig.classifier,
		Editor:     rig.editor,
		Searcher:   rig.searcher,
		Fetcher:    rig.fetcher,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	rig.svc = svc
	return rig
}

func (r *testRig) newSessionWithImage(t *testing.T) string {
	t.Helper()
	sess, err := r.svc.CreateSession("en")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := r.svc.SetImage(sess.ID, roomImage); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	return sess.ID
}

func drainEvents(ch <-chan session.Event) []session.Event {
	var out []session.Event
	for {
		select {
		case evt := <-ch:
			out = append(out, evt)
		default:
			return out
		}
	}
}

func TestSubmitPromptRedesign(t *testing.T) {
	rig := newRig(t)
	id := rig.newSessionWithImage(t)

	events, cancel := rig.svc.Events().Subscribe(id)
	defer cancel()

	sess, err := rig.svc.SubmitPrompt(context.Background(), id, "  make it moodier  ")
	if err != nil {
		t.Fatalf("SubmitPrompt: %v", err)
	}

	if rig.classifier.gotPrompt != "make it moodier" {
		t.Fatalf("classifier got %q", rig.classifier.gotPrompt)
	}
	if rig.searcher.calls != 0 {
		t.Fatalf("search called %d times for a redesign", rig.searcher.calls)
	}
	if rig.editor.calls != 1 {
		t.Fatalf("editor calls = %d, want 1", rig.editor.calls)
	}
	if rig.editor.gotProduct != nil {
		t.Fatal("redesign must not pass a product image")
	}
	if rig.editor.gotBase.Base64 != roomImage.Base64 {
		t.Fatal("editor did not receive the active image")
	}
	if !strings.Contains(rig.editor.gotInstruction, "make it moodier") {
		t.Fatalf("instruction %q misses the prompt", rig.editor.gotInstruction)
	}

	if sess.Prompt != "make it moodier" {
		t.Fatalf("Prompt = %q", sess.Prompt)
	}
	if len(sess.History) != 2 || sess.ActiveIndex != 1 {
		t.Fatalf("history = %d active = %d, want 2/1", len(sess.History), sess.ActiveIndex)
	}
	if sess.History[1].Base64 != editedImage.Base64 {
		t.Fatal("history tail is not the edited image")
	}
	if sess.Status != domain.SessionIdle || sess.LastError != "" {
		t.Fatalf("status = %q lastError = %q", sess.Status, sess.LastError)
	}

	got := drainEvents(events)
	wantStages := []domain.Stage{domain.StageThinking, domain.StageRendering, ""}
	if len(got) != len(wantStages) {
		t.Fatalf("events = %d, want %d (%+v)", len(got), len(wantStages), got)
	}
	for i, stage := range wantStages {
		if got[i].Stage != stage {
			t.Fatalf("event %d stage = %q, want %q", i, got[i].Stage, stage)
		}
	}
	if !got[len(got)-1].Done {
		t.Fatal("final event not marked done")
	}
}

func TestSubmitPromptSearchAndApply(t *testing.T) {
	rig := newRig(t)
	rig.classifier.cls = domain.Classification{Intent: domain.IntentSearchAndApply, SearchQuery: "blue velvet sofa"}
	rig.searcher.listings = []domain.ProductListing{
		{Title: "Velvet Sofa", ImageURL: "https://shop.example.com/sofa.jpg", Price: "$799"},
		{Title: "Another Sofa", ImageURL: "https://shop.example.com/other.jpg"},
	}
	id := rig.newSessionWithImage(t)

	sess, err := rig.svc.SubmitPrompt(context.Background(), id, "add a blue velvet sofa")
	if err != nil {
		t.Fatalf("SubmitPrompt: %v", err)
	}

	if rig.searcher.gotQuery != "blue velvet sofa" {
		t.Fatalf("search query = %q", rig.searcher.gotQuery)
	}
	if rig.fetcher.gotURL != "https://shop.example.com/sofa.jpg" {
		t.Fatalf("fetched %q, want first listing", rig.fetcher.gotURL)
	}
	if rig.editor.gotProduct == nil || rig.editor.gotProduct.Base64 != productImage.Base64 {
		t.Fatal("editor did not receive the fetched product image")
	}
	if !strings.Contains(rig.editor.gotInstruction, "Velvet Sofa") {
		t.Fatalf("instruction %q misses the listing title", rig.editor.gotInstruction)
	}

	if len(sess.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(sess.Results))
	}
	if len(sess.History) != 2 || sess.ActiveIndex != 1 {
		t.Fatalf("history = %d active = %d, want 2/1", len(sess.History), sess.ActiveIndex)
	}
}

func TestSubmitPromptSearchQueryFallsBackToPrompt(t *testing.T) {
	rig := newRig(t)
	rig.classifier.cls = domain.Classification{Intent: domain.IntentSearchAndApply}
	rig.searcher.listings = []domain.ProductListing{{Title: "Lamp", ImageURL: "https://shop.example.com/lamp.jpg"}}
	id := rig.newSessionWithImage(t)

	if _, err := rig.svc.SubmitPrompt(context.Background(), id, "find me a brass floor lamp"); err != nil {
		t.Fatalf("SubmitPrompt: %v", err)
	}
	if rig.searcher.gotQuery != "find me a brass floor lamp" {
		t.Fatalf("search query = %q, want the raw prompt", rig.searcher.gotQuery)
	}
}

func TestSubmitPromptNoProducts(t *testing.T) {
	rig := newRig(t)
	rig.classifier.cls = domain.Classification{Intent: domain.IntentSearchAndApply, SearchQuery: "unicorn chair"}
	rig.searcher.listings = nil
	id := rig.newSessionWithImage(t)

	sess, err := rig.svc.SubmitPrompt(context.Background(), id, "find a unicorn chair")
	if !errors.Is(err, domain.ErrNoProducts) {
		t.Fatalf("err = %v, want ErrNoProducts", err)
	}
	if rig.fetcher.calls != 0 || rig.editor.calls != 0 {
		t.Fatalf("fetch/edit called (%d/%d) after empty search", rig.fetcher.calls, rig.editor.calls)
	}
	if sess.Status != domain.SessionIdle {
		t.Fatalf("status = %q, want idle", sess.Status)
	}
	if sess.LastError == "" {
		t.Fatal("expected LastError banner")
	}
	if sess.Prompt != "find a unicorn chair" {
		t.Fatalf("Prompt = %q, want recorded prompt", sess.Prompt)
	}
	if len(sess.History) != 1 {
		t.Fatalf("history grew on failure: %d", len(sess.History))
	}
}

func TestSubmitPromptKeepsHistoryWhenEditorFails(t *testing.T) {
	rig := newRig(t)
	rig.editor.err = domain.ErrNoImageReturned
	id := rig.newSessionWithImage(t)

	events, cancel := rig.svc.Events().Subscribe(id)
	defer cancel()

	sess, err := rig.svc.SubmitPrompt(context.Background(), id, "make it moodier")
	if !errors.Is(err, domain.ErrNoImageReturned) {
		t.Fatalf("err = %v, want ErrNoImageReturned", err)
	}
	if len(sess.History) != 1 || sess.ActiveIndex != 0 {
		t.Fatalf("history = %d active = %d, want untouched 1/0", len(sess.History), sess.ActiveIndex)
	}
	if sess.History[0].Base64 != roomImage.Base64 {
		t.Fatal("active image changed on failure")
	}
	if sess.Status != domain.SessionIdle || sess.LastError == "" {
		t.Fatalf("status = %q lastError = %q", sess.Status, sess.LastError)
	}

	got := drainEvents(events)
	if len(got) == 0 {
		t.Fatal("no events published")
	}
	last := got[len(got)-1]
	if !last.Done || last.Error == "" {
		t.Fatalf("final event = %+v, want done error event", last)
	}
}

func TestSubmitPromptKeepsResultsWhenProductFetchFails(t *testing.T) {
	rig := newRig(t)
	rig.classifier.cls = domain.Classification{Intent: domain.IntentSearchAndApply, SearchQuery: "sofa"}
	rig.searcher.listings = []domain.ProductListing{{Title: "Sofa", ImageURL: "https://shop.example.com/sofa.jpg"}}
	rig.fetcher.err = domain.ErrFetchFailed
	id := rig.newSessionWithImage(t)

	sess, err := rig.svc.SubmitPrompt(context.Background(), id, "add a sofa")
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("err = %v, want ErrFetchFailed", err)
	}
	if rig.editor.calls != 0 {
		t.Fatal("editor called after failed product fetch")
	}
	if len(sess.Results) != 1 {
		t.Fatalf("results = %d, want search results kept", len(sess.Results))
	}
	if sess.LastError == "" {
		t.Fatal("expected LastError banner")
	}
}

func TestSubmitPromptClassifierFailure(t *testing.T) {
	rig := newRig(t)
	rig.classifier.err = domain.ErrClassifyUnavailable
	id := rig.newSessionWithImage(t)

	sess, err := rig.svc.SubmitPrompt(context.Background(), id, "make it cozy")
	if !errors.Is(err, domain.ErrClassifyUnavailable) {
		t.Fatalf("err = %v, want ErrClassifyUnavailable", err)
	}
	if rig.editor.calls != 0 || rig.searcher.calls != 0 {
		t.Fatal("providers called after classification failure")
	}
	if sess.Status != domain.SessionIdle || sess.LastError == "" {
		t.Fatalf("status = %q lastError = %q", sess.Status, sess.LastError)
	}
}

func TestSubmitPromptRequiresActiveImage(t *testing.T) {
	rig := newRig(t)
	sess, err := rig.svc.CreateSession("en")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if _, err := rig.svc.SubmitPrompt(context.Background(), sess.ID, "make it cozy"); !errors.Is(err, domain.ErrNoActiveImage) {
		t.Fatalf("err = %v, want ErrNoActiveImage", err)
	}
	if rig.classifier.calls != 0 {
		t.Fatal("classifier called without an active image")
	}

	snap, err := rig.svc.Session(sess.ID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if snap.Status != domain.SessionIdle {
		t.Fatalf("status = %q, want idle after reject", snap.Status)
	}
	if snap.LastError != "" {
		t.Fatalf("LastError = %q, want empty after validation reject", snap.LastError)
	}
}

func TestSubmitPromptRejectsConcurrentAction(t *testing.T) {
	rig := newRig(t)
	rig.editor.entered = make(chan struct{})
	rig.editor.block = make(chan struct{})
	id := rig.newSessionWithImage(t)

	entered := rig.editor.entered
	done := make(chan error, 1)
	go func() {
		_, err := rig.svc.SubmitPrompt(context.Background(), id, "make it cozy")
		done <- err
	}()

	<-entered
	if _, err := rig.svc.SubmitPrompt(context.Background(), id, "another change"); !errors.Is(err, domain.ErrActionInFlight) {
		t.Fatalf("concurrent SubmitPrompt err = %v, want ErrActionInFlight", err)
	}
	if _, err := rig.svc.ResetSession(id); !errors.Is(err, domain.ErrActionInFlight) {
		t.Fatalf("Reset during action err = %v, want ErrActionInFlight", err)
	}

	close(rig.editor.block)
	if err := <-done; err != nil {
		t.Fatalf("first SubmitPrompt: %v", err)
	}

	if _, err := rig.svc.SubmitPrompt(context.Background(), id, "another change"); err != nil {
		t.Fatalf("SubmitPrompt after release: %v", err)
	}
}

func TestApplyProduct(t *testing.T) {
	rig := newRig(t)
	rig.classifier.cls = domain.Classification{Intent: domain.IntentSearchAndApply, SearchQuery: "armchair"}
	rig.searcher.listings = []domain.ProductListing{
		{Title: "First Chair", ImageURL: "https://shop.example.com/1.jpg"},
		{Title: "Second Chair", ImageURL: "https://shop.example.com/2.jpg"},
	}
	id := rig.newSessionWithImage(t)

	if _, err := rig.svc.SubmitPrompt(context.Background(), id, "add an armchair"); err != nil {
		t.Fatalf("SubmitPrompt: %v", err)
	}

	sess, err := rig.svc.ApplyProduct(context.Background(), id, 1)
	if err != nil {
		t.Fatalf("ApplyProduct: %v", err)
	}
	if rig.fetcher.gotURL != "https://shop.example.com/2.jpg" {
		t.Fatalf("fetched %q, want second listing", rig.fetcher.gotURL)
	}
	if !strings.Contains(rig.editor.gotInstruction, "Second Chair") {
		t.Fatalf("instruction %q misses the chosen listing", rig.editor.gotInstruction)
	}
	if len(sess.History) != 3 || sess.ActiveIndex != 2 {
		t.Fatalf("history = %d active = %d, want 3/2", len(sess.History), sess.ActiveIndex)
	}
	if len(sess.Results) != 2 {
		t.Fatalf("results = %d, want kept", len(sess.Results))
	}
}

func TestApplyProductBadIndex(t *testing.T) {
	rig := newRig(t)
	id := rig.newSessionWithImage(t)

	if _, err := rig.svc.ApplyProduct(context.Background(), id, 0); !errors.Is(err, domain.ErrInvalidIndex) {
		t.Fatalf("err = %v, want ErrInvalidIndex", err)
	}

	snap, err := rig.svc.Session(id)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if snap.Status != domain.SessionIdle {
		t.Fatalf("status = %q, want idle after reject", snap.Status)
	}
}

func TestSetImageFromURL(t *testing.T) {
	rig := newRig(t)
	id := rig.newSessionWithImage(t)

	if _, err := rig.svc.SubmitPrompt(context.Background(), id, "make it cozy"); err != nil {
		t.Fatalf("SubmitPrompt: %v", err)
	}

	sess, err := rig.svc.SetImageFromURL(context.Background(), id, "https://photos.example.com/room.jpg")
	if err != nil {
		t.Fatalf("SetImageFromURL: %v", err)
	}
	if rig.fetcher.gotURL != "https://photos.example.com/room.jpg" {
		t.Fatalf("fetched %q", rig.fetcher.gotURL)
	}
	if len(sess.History) != 1 || sess.ActiveIndex != 0 {
		t.Fatalf("history = %d active = %d, want fresh 1/0", len(sess.History), sess.ActiveIndex)
	}
	if sess.History[0].Base64 != productImage.Base64 {
		t.Fatal("history head is not the fetched image")
	}
	if sess.Prompt != "make it cozy" {
		t.Fatalf("Prompt = %q, want kept across image replacement", sess.Prompt)
	}
}

func TestResetClearsSession(t *testing.T) {
	rig := newRig(t)
	id := rig.newSessionWithImage(t)

	if _, err := rig.svc.SubmitPrompt(context.Background(), id, "make it cozy"); err != nil {
		t.Fatalf("SubmitPrompt: %v", err)
	}

	sess, err := rig.svc.ResetSession(id)
	if err != nil {
		t.Fatalf("ResetSession: %v", err)
	}
	if sess.Prompt != "" || len(sess.History) != 0 || sess.ActiveIndex != -1 || len(sess.Results) != 0 {
		t.Fatalf("session not cleared: %+v", sess)
	}
}

func TestDeleteSessionClosesSubscribers(t *testing.T) {
	rig := newRig(t)
	id := rig.newSessionWithImage(t)

	events, cancel := rig.svc.Events().Subscribe(id)
	defer cancel()

	if err := rig.svc.DeleteSession(id); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, open := <-events; open {
		t.Fatal("expected subscriber channel closed on delete")
	}
	if _, err := rig.svc.Session(id); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSelectHistory(t *testing.T) {
	rig := newRig(t)
	id := rig.newSessionWithImage(t)

	if _, err := rig.svc.SubmitPrompt(context.Background(), id, "make it cozy"); err != nil {
		t.Fatalf("SubmitPrompt: %v", err)
	}

	sess, err := rig.svc.SelectHistory(id, 0)
	if err != nil {
		t.Fatalf("SelectHistory: %v", err)
	}
	if sess.ActiveIndex != 0 || len(sess.History) != 2 {
		t.Fatalf("active = %d history = %d, want 0/2", sess.ActiveIndex, len(sess.History))
	}

	if _, err := rig.svc.SelectHistory(id, 5); !errors.Is(err, domain.ErrInvalidIndex) {
		t.Fatalf("err = %v, want ErrInvalidIndex", err)
	}
}
