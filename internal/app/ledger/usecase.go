package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"

	"github.com/rs/zerolog"
)

var ErrInvalidRequest = errors.New("invalid ledger request")

type UseCase struct {
	TxManager ports.TxManager
	Factions  ports.FactionRepository
	Notifier  ports.Notifier
	Logger    zerolog.Logger
	Now       func() time.Time
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now().UTC()
	}
	return u.Now().UTC()
}

func (u UseCase) Preview(ctx context.Context, factionID string, delta campaign.LedgerDelta) (campaign.LedgerPreview, error) {
	if strings.TrimSpace(factionID) == "" {
		return campaign.LedgerPreview{}, ErrInvalidRequest
	}
	f, err := u.Factions.GetByID(ctx, factionID)
	if err != nil {
		return campaign.LedgerPreview{}, err
	}
	return campaign.PreviewLedger(f.Ledger, delta), nil
}

// Commit writes delta all-or-nothing. Underflow is reported through
// Result.OK, not as an error; errors are reserved for missing factions and
// persistence failures, which leave the stored ledger untouched.
func (u UseCase) Commit(ctx context.Context, req CommitRequest) (Result, error) {
	if strings.TrimSpace(req.FactionID) == "" {
		return Result{}, ErrInvalidRequest
	}
	var out Result
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		res, err := u.commitInTx(txCtx, req, campaign.LogLedgerCommit)
		out = res
		return err
	})
	if err != nil {
		return Result{}, err
	}
	u.publish(ctx, out.Entry)
	return out, nil
}

// CommitInTx is Commit for callers already inside RunInTx. It does not
// notify; the caller publishes Result.Entry once its transaction commits.
func (u UseCase) CommitInTx(ctx context.Context, req CommitRequest) (Result, error) {
	return u.commitInTx(ctx, req, campaign.LogLedgerCommit)
}

func (u UseCase) commitInTx(ctx context.Context, req CommitRequest, logType campaign.LogType) (Result, error) {
	f, err := u.Factions.GetByID(ctx, req.FactionID)
	if err != nil {
		return Result{}, err
	}
	if f.Archived {
		return Result{}, campaign.ErrFactionArchived
	}
	preview := campaign.PreviewLedger(f.Ledger, req.Delta)
	out := Result{LedgerPreview: preview}
	if !preview.OK {
		u.Logger.Debug().Str("faction_id", f.ID).Interface("underflow", preview.Underflow).Msg("ledger commit rejected")
		return out, nil
	}

	now := u.now()
	message := req.Reason
	if message == "" {
		message = "ledger commit"
	}
	entry := campaign.NewLogEntry(logType, now, message, map[string]any{
		"delta": req.Delta,
		"after": preview.After,
	})
	entry.FactionID = f.ID

	expected := f.Version
	f.Ledger = preview.After
	f.AppendLog(entry)
	f.Version++
	f.UpdatedAt = now
	if err := u.Factions.SaveWithVersion(ctx, f, expected); err != nil {
		return Result{}, fmt.Errorf("save faction %s: %w", f.ID, err)
	}
	out.Committed = true
	out.Entry = &entry
	return out, nil
}

// Transfer moves amount of one category between factions. The credit only
// happens after a successful debit, inside the same transaction.
func (u UseCase) Transfer(ctx context.Context, req TransferRequest) (TransferResult, error) {
	if strings.TrimSpace(req.FromID) == "" || strings.TrimSpace(req.ToID) == "" || req.FromID == req.ToID || !req.Category.Valid() {
		return TransferResult{}, ErrInvalidRequest
	}
	amount := req.Amount
	if amount < 0 {
		amount = 0
	}
	out := TransferResult{Amount: amount}
	if amount == 0 {
		out.OK = true
		return out, nil
	}

	reason := req.Reason
	if reason == "" {
		reason = fmt.Sprintf("transfer %d %s", amount, req.Category)
	}
	var debit, credit campaign.LedgerDelta
	debit[req.Category] = -amount
	credit[req.Category] = amount

	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := u.Factions.GetByID(txCtx, req.ToID); err != nil {
			return err
		}
		d, err := u.commitInTx(txCtx, CommitRequest{FactionID: req.FromID, Delta: debit, Reason: reason + " to " + req.ToID}, campaign.LogLedgerTransfer)
		if err != nil {
			return err
		}
		out.Debit = d
		if !d.OK {
			return nil
		}
		c, err := u.commitInTx(txCtx, CommitRequest{FactionID: req.ToID, Delta: credit, Reason: reason + " from " + req.FromID}, campaign.LogLedgerTransfer)
		if err != nil {
			return err
		}
		out.Credit = c
		out.OK = c.OK
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}
	u.publish(ctx, out.Debit.Entry)
	u.publish(ctx, out.Credit.Entry)
	return out, nil
}

func (u UseCase) publish(ctx context.Context, entry *campaign.LogEntry) {
	if entry == nil || u.Notifier == nil {
		return
	}
	u.Notifier.Publish(ctx, []campaign.LogEntry{*entry})
}
