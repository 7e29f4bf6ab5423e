package conversations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-intel/internal/engine"
	"resume-intel/internal/engine/enginetest"
	"resume-intel/internal/resumes"
	"resume-intel/internal/shared/apperr"
)

type fixture struct {
	svc      *Service
	repo     *MemoryRepo
	resumes  *resumes.Service
	fake     *enginetest.Fake
	resumeID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := enginetest.New()
	f := &fixture{repo: NewMemoryRepo(), fake: fake}
	f.resumes = &resumes.Service{Repo: resumes.NewMemoryRepo(), Engine: fake}
	clock := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	f.svc = &Service{
		Repo:    f.repo,
		Resumes: f.resumes,
		Engine:  fake,
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		},
	}
	res, err := f.resumes.IngestText(context.Background(), "user-1", "Ada Lovelace\nGo, PostgreSQL", "ada.txt")
	if err != nil {
		t.Fatalf("IngestText: %v", err)
	}
	f.resumeID = res.ID
	return f
}

func TestSendStartsConversation(t *testing.T) {
	f := newFixture(t)
	var gotSnapshot engine.ResumeSnapshot
	f.fake.ChatFn = func(_ context.Context, snap engine.ResumeSnapshot, msg string, history []engine.ChatMessage) (engine.ChatReply, error) {
		gotSnapshot = snap
		if history == nil {
			t.Fatalf("history must never be nil")
		}
		return engine.ChatReply{Reply: "reply to " + msg}, nil
	}

	msg := strings.Repeat("x", 51)
	res, err := f.svc.Send(context.Background(), SendInput{UserID: "user-1", ResumeID: f.resumeID, Message: msg})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.ConversationID == "" || res.Reply != "reply to "+msg {
		t.Fatalf("unexpected result %+v", res)
	}
	if gotSnapshot.RawText == "" || gotSnapshot.ParsedData.Name == "" {
		t.Fatalf("chat snapshot must carry raw text and parsed data, got %+v", gotSnapshot)
	}

	conv, err := f.repo.GetByID(context.Background(), "user-1", res.ConversationID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if conv.Title != strings.Repeat("x", 50)+"..." {
		t.Fatalf("unexpected title %q", conv.Title)
	}
	if len(conv.Messages) != 2 || len(res.History) != 2 {
		t.Fatalf("expected one stored turn, got %d", len(conv.Messages))
	}
}

func TestSendAppendsTurnInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Send(ctx, SendInput{UserID: "user-1", ResumeID: f.resumeID, Message: "first"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	before, _ := f.repo.GetByID(ctx, "user-1", first.ConversationID)

	second, err := f.svc.Send(ctx, SendInput{
		UserID:         "user-1",
		ResumeID:       f.resumeID,
		Message:        "second",
		ConversationID: first.ConversationID,
		History:        []engine.ChatMessage{{Role: "user", Content: "first"}},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Fatalf("expected same conversation")
	}

	conv, err := f.repo.GetByID(ctx, "user-1", first.ConversationID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	n := len(conv.Messages)
	if n != 4 {
		t.Fatalf("expected 4 messages, got %d", n)
	}
	last, prev := conv.Messages[n-1], conv.Messages[n-2]
	if prev.Role != RoleUser || prev.Content != "second" || last.Role != RoleAssistant || last.Content != second.Reply {
		t.Fatalf("unexpected tail %+v %+v", prev, last)
	}
	if !conv.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("expected updatedAt to advance")
	}
	if conv.Title != "first" {
		t.Fatalf("title must not change on append, got %q", conv.Title)
	}
	if len(second.History) != 4 {
		t.Fatalf("expected stored history in result, got %d", len(second.History))
	}
}

func TestSendValidatesBeforeEngine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Send(ctx, SendInput{UserID: "user-1", Message: "hi"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.Send(ctx, SendInput{UserID: "user-1", ResumeID: f.resumeID, Message: "  "}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.Send(ctx, SendInput{UserID: "user-1", ResumeID: f.resumeID, Message: "hi", ConversationID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected conversation not found, got %v", err)
	}
	if n := f.fake.Calls(engine.OpChat); n != 0 {
		t.Fatalf("engine must not be called, got %d", n)
	}
}

func TestSendEngineFailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.svc.Send(ctx, SendInput{UserID: "user-1", ResumeID: f.resumeID, Message: "first"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	f.fake.ChatFn = func(context.Context, engine.ResumeSnapshot, string, []engine.ChatMessage) (engine.ChatReply, error) {
		return engine.ChatReply{}, engine.Rejected(engine.OpChat, 422, "message too long")
	}

	_, err = f.svc.Send(ctx, SendInput{UserID: "user-1", ResumeID: f.resumeID, Message: "second", ConversationID: first.ConversationID})
	if !errors.Is(err, apperr.ErrEngineRejected) {
		t.Fatalf("expected engine rejected, got %v", err)
	}
	conv, _ := f.repo.GetByID(ctx, "user-1", first.ConversationID)
	if len(conv.Messages) != 2 {
		t.Fatalf("failed turn must not be stored, got %d messages", len(conv.Messages))
	}
}

func TestSendRejectsConversationOfOtherResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, err := f.resumes.IngestText(ctx, "user-1", "Second resume", "other.txt")
	if err != nil {
		t.Fatalf("IngestText: %v", err)
	}
	first, err := f.svc.Send(ctx, SendInput{UserID: "user-1", ResumeID: f.resumeID, Message: "first"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	_, err = f.svc.Send(ctx, SendInput{UserID: "user-1", ResumeID: other.ID, Message: "x", ConversationID: first.ConversationID})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.svc.Send(ctx, SendInput{UserID: "user-1", ResumeID: f.resumeID, Message: "seed"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Send(ctx, SendInput{
				UserID:         "user-1",
				ResumeID:       f.resumeID,
				Message:        fmt.Sprintf("msg-%d", i),
				ConversationID: first.ConversationID,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	conv, err := f.repo.GetByID(ctx, "user-1", first.ConversationID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(conv.Messages) != 2+2*workers {
		t.Fatalf("expected %d messages, got %d", 2+2*workers, len(conv.Messages))
	}
	seen := make(map[string]bool)
	for i := 0; i < len(conv.Messages); i += 2 {
		u, a := conv.Messages[i], conv.Messages[i+1]
		if u.Role != RoleUser || a.Role != RoleAssistant || a.Content != "echo: "+u.Content {
			t.Fatalf("turn at %d is not a contiguous pair: %+v %+v", i, u, a)
		}
		if seen[u.Content] {
			t.Fatalf("duplicate message %q", u.Content)
		}
		seen[u.Content] = true
	}
}

func TestConversationOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.svc.Send(ctx, SendInput{UserID: "user-1", ResumeID: f.resumeID, Message: "mine"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if _, err := f.svc.Get(ctx, "user-2", first.ConversationID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := f.svc.Delete(ctx, "user-2", first.ConversationID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.svc.Send(ctx, SendInput{UserID: "user-2", ResumeID: f.resumeID, Message: "hi"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected resume not found, got %v", err)
	}
	list, err := f.svc.List(ctx, "user-2", 20, 0)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v %v", list, err)
	}
}

func TestListAndGetIncludeResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older, err := f.svc.Send(ctx, SendInput{UserID: "user-1", ResumeID: f.resumeID, Message: "older"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	newer, err := f.svc.Send(ctx, SendInput{UserID: "user-1", ResumeID: f.resumeID, Message: "newer"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := f.svc.Send(ctx, SendInput{UserID: "user-1", ResumeID: f.resumeID, Message: "again", ConversationID: older.ConversationID}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	list, err := f.svc.List(ctx, "user-1", 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != older.ConversationID || list[1].ID != newer.ConversationID {
		t.Fatalf("expected most recently active first, got %+v", list)
	}
	if list[0].MessageCount != 4 || list[0].ResumeFileName != "ada.txt" {
		t.Fatalf("unexpected summary %+v", list[0])
	}

	d, err := f.svc.Get(ctx, "user-1", older.ConversationID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Resume == nil || d.Resume.FileName != "ada.txt" {
		t.Fatalf("expected resume on detail, got %+v", d.Resume)
	}

	if err := f.resumes.Delete(ctx, "user-1", f.resumeID); err != nil {
		t.Fatalf("Delete resume: %v", err)
	}
	d, err = f.svc.Get(ctx, "user-1", older.ConversationID)
	if err != nil {
		t.Fatalf("Get after resume delete: %v", err)
	}
	if d.Resume != nil {
		t.Fatalf("expected no resume after delete")
	}
}
