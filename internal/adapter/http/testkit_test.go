package httpadapter

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dominion/internal/adapter/metrics/inmemory"
	"dominion/internal/adapter/repo/memory"
	"dominion/internal/app/activity"
	"dominion/internal/app/auth"
	"dominion/internal/app/ledger"
	"dominion/internal/app/outcome"
	"dominion/internal/app/pending"
	"dominion/internal/app/status"
	"dominion/internal/app/turn"
	"dominion/internal/domain/campaign"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/route/param"
)

const testGMKey = "gm-secret"

type testEnv struct {
	h     Handler
	store *memory.Store
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxManager(store)
	factions := memory.NewFactionRepo(store)
	territories := memory.NewTerritoryRepo(store)
	now := func() time.Time { return time.Unix(1700000000, 0).UTC() }
	recorder := inmemory.NewRecorder()

	catalog := activity.DefaultCatalog()
	catalog.Freeze()
	ledgerUC := ledger.UseCase{TxManager: tx, Factions: factions, Now: now}
	pendingSvc := pending.Service{TxManager: tx, Factions: factions, Territories: territories, Now: now}

	resolver, err := outcome.NewResolver(outcome.Resolver{TxManager: tx, Factions: factions, Territories: territories, Now: now})
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	cycle, err := turn.NewCycle(turn.Config{
		TxManager:   tx,
		Factions:    factions,
		Territories: territories,
		Clock:       memory.NewTurnClockRepo(store),
		Catalog:     catalog,
		Metrics:     recorder,
		Now:         now,
	})
	if err != nil {
		t.Fatalf("new cycle: %v", err)
	}
	verify, err := auth.NewVerifyUseCase(testGMKey)
	if err != nil {
		t.Fatalf("new verify: %v", err)
	}

	return testEnv{
		store: store,
		h: Handler{
			LedgerUC: ledgerUC,
			ActivityUC: activity.UseCase{
				TxManager:    tx,
				Factions:     factions,
				Territories:  territories,
				ActivityRepo: memory.NewActivityExecutionRepo(store),
				Ledger:       ledgerUC,
				Pending:      pendingSvc,
				Catalog:      catalog,
				Metrics:      recorder,
				Now:          now,
			},
			OutcomeUC: resolver,
			Turns:     cycle,
			StatusUC:  status.UseCase{Pending: pendingSvc, Territories: territories},
			AuthUC:    verify,
			KPI:       recorder,
		},
	}
}

func (e testEnv) seedFaction(id string, l campaign.Ledger) {
	f := campaign.NewFaction(id, id)
	f.Ledger = l
	e.store.SeedFaction(f)
}

func (e testEnv) faction(t *testing.T, id string) campaign.Faction {
	t.Helper()
	f, err := memory.NewFactionRepo(e.store).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load faction %s: %v", id, err)
	}
	return f
}

func newRequest(body string, params ...param.Param) *app.RequestContext {
	ctx := &app.RequestContext{}
	if body != "" {
		ctx.Request.SetBody([]byte(body))
	}
	ctx.Params = param.Params(params)
	return ctx
}

func idParam(id string) param.Param {
	return param.Param{Key: "id", Value: id}
}

func decodeBody(t *testing.T, ctx *app.RequestContext) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v (%s)", err, string(ctx.Response.Body()))
	}
	return body
}

func errorCode(t *testing.T, ctx *app.RequestContext) string {
	t.Helper()
	errObj, _ := decodeBody(t, ctx)["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}
