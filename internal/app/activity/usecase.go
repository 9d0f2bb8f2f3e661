package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dominion/internal/app/ledger"
	"dominion/internal/app/pending"
	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"

	"github.com/rs/zerolog"
)

type UseCase struct {
	TxManager    ports.TxManager
	Factions     ports.FactionRepository
	Territories  ports.TerritoryRepository
	ActivityRepo ports.ActivityExecutionRepository
	Ledger       ledger.UseCase
	Pending      pending.Service
	Catalog      *Catalog
	Metrics      ports.ActivityMetrics
	Notifier     ports.Notifier
	Logger       zerolog.Logger
	Now          func() time.Time
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now().UTC()
	}
	return u.Now().UTC()
}

// Execute pays the activity's cost and queues its effects. A repeated
// idempotency key replays the recorded response without paying again.
func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.FactionID = strings.TrimSpace(req.FactionID)
	req.ActivityKey = strings.TrimSpace(req.ActivityKey)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if req.FactionID == "" || req.ActivityKey == "" || u.Catalog == nil {
		return Response{}, ErrInvalidRequest
	}

	var out Response
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		replay, ok, err := u.replayIdempotent(txCtx, req)
		if err != nil {
			return err
		}
		if ok {
			out = replay
			return nil
		}

		ac, err := u.buildContext(txCtx, req)
		if err != nil {
			return err
		}
		if err := ac.View.Spec.Handler.Precheck(txCtx, u, &ac); err != nil {
			return err
		}
		if err := ac.View.Spec.Handler.Plan(txCtx, u, &ac); err != nil {
			return err
		}
		if err := u.spend(txCtx, &ac); err != nil {
			return err
		}
		for _, q := range ac.Plan.Effects {
			if err := u.Pending.Queue(txCtx, q.Target, q.Effects); err != nil {
				return err
			}
		}
		resp, err := u.appendActivityLog(txCtx, &ac)
		if err != nil {
			return err
		}
		if err := u.saveExecution(txCtx, req, resp); err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		u.recordError(err)
		return Response{}, err
	}
	if !out.Replayed {
		if u.Metrics != nil {
			u.Metrics.RecordActivity(out.ActivityKey)
		}
		if u.Notifier != nil {
			entries := []campaign.LogEntry{out.Entry}
			if out.Payment != nil {
				entries = []campaign.LogEntry{*out.Payment, out.Entry}
			}
			u.Notifier.Publish(ctx, entries)
		}
	}
	return out, nil
}

func (u UseCase) replayIdempotent(ctx context.Context, req Request) (Response, bool, error) {
	if req.IdempotencyKey == "" || u.ActivityRepo == nil {
		return Response{}, false, nil
	}
	rec, err := u.ActivityRepo.GetByIdempotencyKey(ctx, req.FactionID, req.IdempotencyKey)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return Response{}, false, nil
		}
		return Response{}, false, err
	}
	if rec.ActivityKey != req.ActivityKey {
		return Response{}, false, fmt.Errorf("%w: idempotency key reused for %s", ErrInvalidRequest, rec.ActivityKey)
	}
	var resp Response
	if err := json.Unmarshal(rec.Response, &resp); err != nil {
		return Response{}, false, fmt.Errorf("decode recorded activity response: %w", err)
	}
	resp.Replayed = true
	return resp, true, nil
}

func (u UseCase) buildContext(ctx context.Context, req Request) (ActivityContext, error) {
	spec, ok := u.Catalog.Lookup(req.ActivityKey)
	if !ok {
		return ActivityContext{}, ErrActivityNotFound
	}
	faction, err := u.Factions.GetByID(ctx, req.FactionID)
	if err != nil {
		return ActivityContext{}, err
	}
	if faction.Archived {
		return ActivityContext{}, campaign.ErrFactionArchived
	}
	ac := ActivityContext{
		In:   ActivityInput{Req: req, Params: req.Params},
		View: ActivityView{Spec: spec, Faction: faction},
		Plan: ActivityPlan{Cost: spec.Cost},
	}
	if spec.TargetTerritory {
		if strings.TrimSpace(req.TerritoryID) == "" {
			return ActivityContext{}, ErrTerritoryRequired
		}
		t, err := u.Territories.GetByID(ctx, req.TerritoryID)
		if err != nil {
			return ActivityContext{}, err
		}
		ac.View.Territory = &t
	}
	return ac, nil
}

func (u UseCase) spend(ctx context.Context, ac *ActivityContext) error {
	if ac.Plan.Cost.IsZero() {
		return nil
	}
	res, err := u.Ledger.CommitInTx(ctx, ledger.CommitRequest{
		FactionID: ac.View.Faction.ID,
		Delta:     campaign.Cost(ac.Plan.Cost),
		Reason:    "paid for " + ac.View.Spec.Label,
	})
	if err != nil {
		return err
	}
	if !res.OK {
		return &InsufficientResourcesError{ActivityKey: ac.View.Spec.Key, Underflow: res.Underflow}
	}
	ac.Plan.Payment = res.Entry
	return nil
}

func (u UseCase) appendActivityLog(ctx context.Context, ac *ActivityContext) (Response, error) {
	f, err := u.Factions.GetByID(ctx, ac.View.Faction.ID)
	if err != nil {
		return Response{}, err
	}
	now := u.now()
	entry := campaign.NewLogEntry(campaign.LogActivity, now, ac.Plan.Description, map[string]any{
		"activity": ac.View.Spec.Key,
		"cost":     ac.Plan.Cost,
		"effects":  ac.Plan.Effects,
	})
	entry.FactionID = f.ID
	if ac.View.Territory != nil {
		entry.TerritoryID = ac.View.Territory.ID
	}
	expected := f.Version
	f.AppendLog(entry)
	f.Version++
	f.UpdatedAt = now
	if err := u.Factions.SaveWithVersion(ctx, f, expected); err != nil {
		return Response{}, fmt.Errorf("save faction %s: %w", f.ID, err)
	}
	return Response{
		ActivityKey: ac.View.Spec.Key,
		FactionID:   f.ID,
		Description: ac.Plan.Description,
		Paid:        ac.Plan.Cost,
		Payment:     ac.Plan.Payment,
		Queued:      ac.Plan.Effects,
		Entry:       entry,
	}, nil
}

func (u UseCase) saveExecution(ctx context.Context, req Request, resp Response) error {
	if req.IdempotencyKey == "" || u.ActivityRepo == nil {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return u.ActivityRepo.SaveExecution(ctx, ports.ActivityExecutionRecord{
		FactionID:      req.FactionID,
		IdempotencyKey: req.IdempotencyKey,
		ActivityKey:    req.ActivityKey,
		Response:       raw,
		AppliedAt:      u.now(),
	})
}

func (u UseCase) recordError(err error) {
	if u.Metrics == nil {
		return
	}
	var insufficient *InsufficientResourcesError
	switch {
	case errors.Is(err, ports.ErrConflict):
		u.Metrics.RecordConflict()
	case errors.As(err, &insufficient):
		u.Metrics.RecordRejected("insufficient_resources")
	case errors.Is(err, ErrActivityNotFound):
		u.Metrics.RecordRejected("activity_not_found")
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidParams), errors.Is(err, ErrTerritoryRequired),
		errors.Is(err, campaign.ErrNotOwner), errors.Is(err, campaign.ErrTerritoryScorched), errors.Is(err, campaign.ErrFactionArchived),
		errors.Is(err, ports.ErrNotFound):
		u.Metrics.RecordRejected("precondition_failed")
	default:
		u.Metrics.RecordFailure()
		u.Logger.Error().Err(err).Msg("activity execution failed")
	}
}
