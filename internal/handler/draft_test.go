package handler

import (
	"net/http"
	"testing"
)

func TestDraftHandlers_Workflow(t *testing.T) {
	env := setupTestEnv(t)

	point := DraftPointHandler(env.draft, env.logger)

	rr := do(t, point, http.MethodPost, "/api/draft/point", `[10,10]`)
	expectStatus(t, rr, http.StatusConflict)

	rr = do(t, StartDraftHandler(env.draft, env.stream, env.logger), http.MethodPost, "/api/draft/start", "")
	expectStatus(t, rr, http.StatusOK)
	if !env.stream.paused {
		t.Error("starting a draft should pause the stream")
	}

	for _, p := range []string{`[10,10]`, `[100,10]`, `[55,80]`, `[1,1]`} {
		expectStatus(t, do(t, point, http.MethodPost, "/api/draft/point", p), http.StatusOK)
	}

	rr = do(t, UndoDraftPointHandler(env.draft, env.logger), http.MethodPost, "/api/draft/undo", "")
	expectStatus(t, rr, http.StatusOK)
	if len(env.draft.Points()) != 3 {
		t.Fatalf("expected 3 points after undo, got %d", len(env.draft.Points()))
	}

	rr = do(t, FinishDraftHandler(env.draft, env.store, env.logger), http.MethodPost, "/api/draft/finish", "")
	expectStatus(t, rr, http.StatusCreated)
	if env.store.Len() != 1 {
		t.Fatalf("expected 1 zone, got %d", env.store.Len())
	}
	if !env.draft.Active() {
		t.Error("drawing mode should stay on after finishing a zone")
	}

	rr = do(t, CancelDraftHandler(env.draft, env.stream), http.MethodPost, "/api/draft/cancel", "")
	expectStatus(t, rr, http.StatusNoContent)
	if env.draft.Active() || env.stream.paused {
		t.Error("cancel should leave drawing mode and resume the stream")
	}
}

func TestDraftHandlers_Errors(t *testing.T) {
	env := setupTestEnv(t)
	env.draft.Start()

	rr := do(t, UndoDraftPointHandler(env.draft, env.logger), http.MethodPost, "/api/draft/undo", "")
	expectStatus(t, rr, http.StatusConflict)

	rr = do(t, DraftPointHandler(env.draft, env.logger), http.MethodPost, "/api/draft/point", `[1]`)
	expectStatus(t, rr, http.StatusBadRequest)

	rr = do(t, DraftPointHandler(env.draft, env.logger), http.MethodPost, "/api/draft/point", `[5,5]`)
	expectStatus(t, rr, http.StatusOK)

	rr = do(t, FinishDraftHandler(env.draft, env.store, env.logger), http.MethodPost, "/api/draft/finish", "")
	expectStatus(t, rr, http.StatusBadRequest)
	if env.store.Len() != 0 || len(env.draft.Points()) != 1 {
		t.Error("a rejected draft should keep its points and add no zone")
	}

	rr = do(t, StartDraftHandler(env.draft, env.stream, env.logger), http.MethodGet, "/api/draft/start", "")
	expectStatus(t, rr, http.StatusMethodNotAllowed)
}
