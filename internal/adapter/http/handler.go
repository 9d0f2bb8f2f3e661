package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"dominion/internal/app/activity"
	"dominion/internal/app/auth"
	"dominion/internal/app/ledger"
	"dominion/internal/app/outcome"
	"dominion/internal/app/ports"
	"dominion/internal/app/status"
	"dominion/internal/app/turn"
	"dominion/internal/domain/campaign"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const gmKeyHeader = "X-GM-Key"

type Handler struct {
	LedgerUC   ledger.UseCase
	ActivityUC activity.UseCase
	OutcomeUC  outcome.Resolver
	Turns      *turn.Cycle
	StatusUC   status.UseCase
	AuthUC     auth.VerifyUseCase
	KPI        kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(CORSMiddleware())

	api := s.Group("/api")
	api.GET("/factions/:id", h.faction)
	api.GET("/factions/:id/log", h.factionLog)
	api.POST("/factions/:id/ledger/preview", h.ledgerPreview)
	api.POST("/factions/:id/ledger/commit", h.ledgerCommit)
	api.POST("/ledger/transfer", h.ledgerTransfer)
	api.GET("/territories/:id", h.territory)
	api.GET("/activities", h.activityCatalog)
	api.POST("/activities", h.activity)
	api.GET("/outcomes", h.outcomeRules)
	api.POST("/outcomes", h.outcome)
	api.POST("/turns/advance", h.advanceTurn)

	s.GET("/ops/kpi", h.kpi)
}

type ledgerRequest struct {
	Delta  campaign.LedgerDelta `json:"delta"`
	Reason string               `json:"reason,omitempty"`
}

type transferRequest struct {
	FromFactionID string `json:"from_faction_id"`
	ToFactionID   string `json:"to_faction_id"`
	Category      string `json:"category"`
	Amount        int    `json:"amount"`
	Reason        string `json:"reason,omitempty"`
}

func (h Handler) faction(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Faction(c, status.FactionRequest{FactionID: ctx.Param("id")})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) factionLog(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	resp, err := h.StatusUC.Log(c, status.LogRequest{FactionID: ctx.Param("id"), Limit: limit})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) territory(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Territory(c, ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) ledgerPreview(c context.Context, ctx *app.RequestContext) {
	var body ledgerRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.LedgerUC.Preview(c, ctx.Param("id"), body.Delta)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) ledgerCommit(c context.Context, ctx *app.RequestContext) {
	var body ledgerRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.LedgerUC.Commit(c, ledger.CommitRequest{
		FactionID: ctx.Param("id"),
		Delta:     body.Delta,
		Reason:    body.Reason,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) ledgerTransfer(c context.Context, ctx *app.RequestContext) {
	var body transferRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	category, ok := campaign.ParseCategory(body.Category)
	if !ok {
		writeErrorBody(ctx, consts.StatusBadRequest, "unknown_category", "unknown resource category")
		return
	}
	resp, err := h.LedgerUC.Transfer(c, ledger.TransferRequest{
		FromID:   body.FromFactionID,
		ToID:     body.ToFactionID,
		Category: category,
		Amount:   body.Amount,
		Reason:   body.Reason,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) activityCatalog(_ context.Context, ctx *app.RequestContext) {
	if h.ActivityUC.Catalog == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "activity catalog not configured")
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"activities": h.ActivityUC.Catalog.Entries()})
}

func (h Handler) activity(c context.Context, ctx *app.RequestContext) {
	var body activity.Request
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ActivityUC.Execute(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) outcomeRules(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]any{"outcomes": h.OutcomeUC.Rules()})
}

func (h Handler) outcome(c context.Context, ctx *app.RequestContext) {
	var body outcome.Request
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.OutcomeUC.Apply(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) advanceTurn(c context.Context, ctx *app.RequestContext) {
	if h.Turns == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "turn cycle not configured")
		return
	}
	var body turn.Request
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	body = body.Normalize()
	if body.Scope == turn.ScopeGlobal {
		if err := h.requireGM(c, ctx); err != nil {
			writeError(ctx, err)
			return
		}
	}
	resp, err := h.Turns.Advance(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

var ErrMissingGMKey = errors.New("missing x-gm-key header")

func (h Handler) requireGM(c context.Context, ctx *app.RequestContext) error {
	key := strings.TrimSpace(string(ctx.GetHeader(gmKeyHeader)))
	if key == "" {
		return ErrMissingGMKey
	}
	return h.AuthUC.Execute(c, auth.VerifyRequest{GMKey: key})
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ErrMissingGMKey):
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_gm_key", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_gm_credentials", err.Error())
	case errors.Is(err, auth.ErrGMDisabled):
		writeErrorBody(ctx, consts.StatusForbidden, "gm_disabled", err.Error())
	case errors.Is(err, activity.ErrInsufficientResources):
		writeInsufficientResources(ctx, err)
	case errors.Is(err, activity.ErrActivityNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "activity_not_found", err.Error())
	case errors.Is(err, activity.ErrTerritoryRequired):
		writeErrorBody(ctx, consts.StatusBadRequest, "territory_required", err.Error())
	case errors.Is(err, activity.ErrInvalidParams):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_activity_params", err.Error())
	case errors.Is(err, campaign.ErrFactionArchived):
		writeErrorBody(ctx, consts.StatusConflict, "faction_archived", err.Error())
	case errors.Is(err, campaign.ErrUnknownOutcome):
		writeErrorBody(ctx, consts.StatusBadRequest, "unknown_outcome", err.Error())
	case errors.Is(err, campaign.ErrTierNotAllowed):
		writeErrorBody(ctx, consts.StatusBadRequest, "tier_not_allowed", err.Error())
	case errors.Is(err, campaign.ErrNotOwner):
		writeErrorBody(ctx, consts.StatusConflict, "not_owner", err.Error())
	case errors.Is(err, campaign.ErrTerritoryScorched):
		writeErrorBody(ctx, consts.StatusConflict, "territory_scorched", err.Error())
	case errors.Is(err, turn.ErrAdvanceInProgress):
		writeErrorBody(ctx, consts.StatusConflict, "advance_in_progress", err.Error())
	case errors.Is(err, turn.ErrReentrantAdvance):
		writeErrorBody(ctx, consts.StatusConflict, "reentrant_advance", err.Error())
	case errors.Is(err, turn.ErrCatalogNotFrozen):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "catalog_not_frozen", err.Error())
	case errors.Is(err, ledger.ErrInvalidRequest),
		errors.Is(err, activity.ErrInvalidRequest),
		errors.Is(err, outcome.ErrInvalidRequest),
		errors.Is(err, turn.ErrInvalidRequest),
		errors.Is(err, status.ErrInvalidRequest),
		errors.Is(err, auth.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", "concurrent update, retry")
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "temporary failure, try again")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeInsufficientResources(ctx *app.RequestContext, err error) {
	details := map[string]any{}
	var insufficient *activity.InsufficientResourcesError
	if errors.As(err, &insufficient) && insufficient != nil {
		details["activity"] = insufficient.ActivityKey
		details["underflow"] = insufficient.Underflow
	}
	ctx.JSON(consts.StatusConflict, map[string]any{
		"error": map[string]any{
			"code":    "insufficient_resources",
			"message": err.Error(),
			"details": details,
		},
	})
}
