package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dominion/internal/app/activity"
	"dominion/internal/app/auth"
	"dominion/internal/app/ports"
	"dominion/internal/app/turn"
	"dominion/internal/domain/campaign"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

func TestWriteError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrMissingGMKey, consts.StatusBadRequest, "missing_gm_key"},
		{auth.ErrInvalidCredentials, consts.StatusUnauthorized, "invalid_gm_credentials"},
		{auth.ErrGMDisabled, consts.StatusForbidden, "gm_disabled"},
		{activity.ErrActivityNotFound, consts.StatusNotFound, "activity_not_found"},
		{activity.ErrTerritoryRequired, consts.StatusBadRequest, "territory_required"},
		{campaign.ErrNotOwner, consts.StatusConflict, "not_owner"},
		{campaign.ErrTerritoryScorched, consts.StatusConflict, "territory_scorched"},
		{campaign.ErrTierNotAllowed, consts.StatusBadRequest, "tier_not_allowed"},
		{turn.ErrAdvanceInProgress, consts.StatusConflict, "advance_in_progress"},
		{fmt.Errorf("load faction: %w", ports.ErrNotFound), consts.StatusNotFound, "not_found"},
		{fmt.Errorf("save faction: %w", ports.ErrConflict), consts.StatusConflict, "conflict"},
		{activity.ErrInvalidRequest, consts.StatusBadRequest, "bad_request"},
		{errors.New("connection reset"), consts.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			ctx := &app.RequestContext{}
			writeError(ctx, tc.err)
			if got := ctx.Response.StatusCode(); got != tc.status {
				t.Fatalf("status mismatch: got=%d want=%d", got, tc.status)
			}
			if got := errorCode(t, ctx); got != tc.code {
				t.Fatalf("error code mismatch: got=%q want=%q", got, tc.code)
			}
		})
	}
}

func TestWriteError_InternalHidesCause(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, errors.New("pq: password authentication failed"))

	errObj, _ := decodeBody(t, ctx)["error"].(map[string]any)
	if got, want := errObj["message"], "temporary failure, try again"; got != want {
		t.Fatalf("message mismatch: got=%v want=%v", got, want)
	}
}

func TestLedgerCommit_OK(t *testing.T) {
	env := newTestEnv(t)
	env.seedFaction("f1", campaign.Ledger{campaign.Economy: 10})

	ctx := newRequest(`{"delta":{"economy":-4,"culture":2},"reason":"market day"}`, idParam("f1"))
	env.h.ledgerCommit(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d (%s)", got, want, ctx.Response.Body())
	}
	body := decodeBody(t, ctx)
	if body["committed"] != true {
		t.Fatalf("expected committed=true, got %v", body)
	}
	f := env.faction(t, "f1")
	if f.Ledger[campaign.Economy] != 6 || f.Ledger[campaign.Culture] != 2 {
		t.Fatalf("unexpected ledger: %+v", f.Ledger)
	}
}

func TestLedgerCommit_UnderflowLeavesLedger(t *testing.T) {
	env := newTestEnv(t)
	env.seedFaction("f1", campaign.Ledger{campaign.Economy: 1})

	ctx := newRequest(`{"delta":{"economy":-4}}`, idParam("f1"))
	env.h.ledgerCommit(context.Background(), ctx)

	body := decodeBody(t, ctx)
	if body["ok"] != false || body["committed"] != false {
		t.Fatalf("expected rejected commit, got %v", body)
	}
	if got := env.faction(t, "f1").Ledger[campaign.Economy]; got != 1 {
		t.Fatalf("expected economy untouched, got %d", got)
	}
}

func TestLedgerPreview_UnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	env.seedFaction("f1", campaign.Ledger{})

	ctx := newRequest(`{"delta":{"gold":1}}`, idParam("f1"))
	env.h.ledgerPreview(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestLedgerTransfer_MovesResources(t *testing.T) {
	env := newTestEnv(t)
	env.seedFaction("f1", campaign.Ledger{campaign.Diplomacy: 5})
	env.seedFaction("f2", campaign.Ledger{})

	ctx := newRequest(`{"from_faction_id":"f1","to_faction_id":"f2","category":"diplomacy","amount":3}`)
	env.h.ledgerTransfer(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d (%s)", got, want, ctx.Response.Body())
	}
	if got := env.faction(t, "f2").Ledger[campaign.Diplomacy]; got != 3 {
		t.Fatalf("expected recipient diplomacy 3, got %d", got)
	}
}

func TestActivity_InsufficientResourcesDetails(t *testing.T) {
	env := newTestEnv(t)
	env.seedFaction("f1", campaign.Ledger{campaign.Diplomacy: 1})

	ctx := newRequest(`{"faction_id":"f1","activity":"envoy","idempotency_key":"k1"}`)
	env.h.activity(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusConflict; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	errObj, _ := decodeBody(t, ctx)["error"].(map[string]any)
	if got, want := errObj["code"], "insufficient_resources"; got != want {
		t.Fatalf("error code mismatch: got=%v want=%v", got, want)
	}
	details, _ := errObj["details"].(map[string]any)
	underflow, _ := details["underflow"].(map[string]any)
	if _, ok := underflow["diplomacy"]; !ok {
		t.Fatalf("expected diplomacy underflow in %v", details)
	}
}

func TestActivity_QueuesEffects(t *testing.T) {
	env := newTestEnv(t)
	env.seedFaction("f1", campaign.Ledger{campaign.Diplomacy: 4})

	ctx := newRequest(`{"faction_id":"f1","activity":"envoy","idempotency_key":"k1"}`)
	env.h.activity(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d (%s)", got, want, ctx.Response.Body())
	}
	f := env.faction(t, "f1")
	if f.Ledger[campaign.Diplomacy] != 2 {
		t.Fatalf("expected cost paid, got %+v", f.Ledger)
	}
	if f.Pending == nil || f.Pending.Victory.Unity != 1 {
		t.Fatalf("expected queued unity, got %+v", f.Pending)
	}
}

func TestActivityCatalog_Lists(t *testing.T) {
	env := newTestEnv(t)
	ctx := newRequest("")
	env.h.activityCatalog(context.Background(), ctx)

	list, _ := decodeBody(t, ctx)["activities"].([]any)
	if len(list) != 9 {
		t.Fatalf("expected 9 activities, got %d", len(list))
	}
}

func TestAdvanceTurn_GlobalRequiresGMKey(t *testing.T) {
	env := newTestEnv(t)
	env.seedFaction("f1", campaign.Ledger{})

	ctx := newRequest(`{"scope":"global"}`)
	env.h.advanceTurn(context.Background(), ctx)
	if got := errorCode(t, ctx); got != "missing_gm_key" {
		t.Fatalf("expected missing_gm_key, got %q", got)
	}

	ctx = newRequest(`{"scope":"global"}`)
	ctx.Request.Header.Set(gmKeyHeader, "wrong")
	env.h.advanceTurn(context.Background(), ctx)
	if got, want := ctx.Response.StatusCode(), consts.StatusUnauthorized; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}

	ctx = newRequest(`{"scope":"global"}`)
	ctx.Request.Header.Set(gmKeyHeader, testGMKey)
	env.h.advanceTurn(context.Background(), ctx)
	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d (%s)", got, want, ctx.Response.Body())
	}
	if got, want := decodeBody(t, ctx)["turn"], float64(1); got != want {
		t.Fatalf("turn mismatch: got=%v want=%v", got, want)
	}
}

func TestAdvanceTurn_ImplicitGlobalScopeRequiresGMKey(t *testing.T) {
	env := newTestEnv(t)
	env.seedFaction("f1", campaign.Ledger{})

	for _, body := range []string{"", `{}`, `{"scope":""}`, `{"faction_id":"  "}`} {
		ctx := newRequest(body)
		env.h.advanceTurn(context.Background(), ctx)
		if got := errorCode(t, ctx); got != "missing_gm_key" {
			t.Fatalf("body %q: expected missing_gm_key, got %q", body, got)
		}
	}
	if got := env.faction(t, "f1").Turn; got != 0 {
		t.Fatalf("unauthorized request advanced the faction to turn %d", got)
	}

	ctx := newRequest(`{"faction_id":"f1"}`)
	env.h.advanceTurn(context.Background(), ctx)
	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d (%s)", got, want, ctx.Response.Body())
	}
	if got, want := decodeBody(t, ctx)["scope"], "faction"; got != want {
		t.Fatalf("scope mismatch: got=%v want=%v", got, want)
	}
}

func TestFaction_NotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := newRequest("", idParam("missing"))
	env.h.faction(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestKPI_NotConfigured(t *testing.T) {
	h := Handler{}
	ctx := &app.RequestContext{}
	h.kpi(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestKPI_ReportsActivities(t *testing.T) {
	env := newTestEnv(t)
	env.seedFaction("f1", campaign.Ledger{campaign.Diplomacy: 4})
	env.h.activity(context.Background(), newRequest(`{"faction_id":"f1","activity":"envoy","idempotency_key":"k1"}`))

	ctx := newRequest("")
	env.h.kpi(context.Background(), ctx)
	if got, want := decodeBody(t, ctx)["activity_success"], float64(1); got != want {
		t.Fatalf("activity_success mismatch: got=%v want=%v", got, want)
	}
}
