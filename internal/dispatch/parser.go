// Package dispatch is the venue's NATS shell: it pulls operation requests
// from JetStream, parses and applies them against the engine one at a time,
// and publishes an event per applied operation.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"swapvenue/internal/asset"
	"swapvenue/internal/engine"
)

// ErrBadRequest marks a request that could not be parsed at all, as opposed
// to a well-formed operation the engine rejected.
var ErrBadRequest = errors.New("bad request")

// Subject layout. The operation name is the last token of the subject:
// venue.ops.swap, venue.ops.mint, and so on.
const (
	OpSubjectPrefix    = "venue.ops."
	OpSubjectWildcard  = "venue.ops.>"
	EventSubjectPrefix = "venue.events."
)

// OpFromSubject extracts the operation name from a request subject.
func OpFromSubject(subject string) string {
	if !strings.HasPrefix(subject, OpSubjectPrefix) {
		return ""
	}
	return subject[len(OpSubjectPrefix):]
}

// opRequest is the wire format shared by all operation requests. Field names
// use snake_case to match upstream producers; each operation reads only the
// fields it needs.
type opRequest struct {
	Account    string                  `json:"account"`
	FromAsset  string                  `json:"from_asset,omitempty"`
	ToAsset    string                  `json:"to_asset,omitempty"`
	Asset      string                  `json:"asset,omitempty"`
	Amount     int64                   `json:"amount,omitempty"`
	AmountA    int64                   `json:"amount_a,omitempty"`
	AmountB    int64                   `json:"amount_b,omitempty"`
	Shares     int64                   `json:"shares,omitempty"`
	Target     string                  `json:"target,omitempty"`
	Atomic     bool                    `json:"atomic,omitempty"`
	Operations []engine.BatchOperation `json:"operations,omitempty"`
}

// Apply parses one operation request and runs it against the engine. The
// returned error distinguishes nothing; callers treat any error as a
// rejected request (malformed requests do not become redeliverable).
func Apply(ctx context.Context, eng *engine.Engine, op string, data []byte) error {
	var req opRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("%w: parse %s request: %v", ErrBadRequest, op, err)
	}
	account, err := uuid.Parse(req.Account)
	if err != nil {
		return fmt.Errorf("%w: parse account: %v", ErrBadRequest, err)
	}

	switch op {
	case engine.OpMint:
		a, err := asset.Parse(req.Asset)
		if err != nil {
			return err
		}
		return eng.Mint(ctx, account, a, req.Amount)

	case engine.OpSwap:
		from, to, err := parsePair(req.FromAsset, req.ToAsset)
		if err != nil {
			return err
		}
		_, err = eng.Swap(ctx, account, from, to, req.Amount)
		return err

	case engine.OpTransfer:
		from, to, err := parsePair(req.FromAsset, req.ToAsset)
		if err != nil {
			return err
		}
		return eng.Transfer(ctx, account, from, to, req.Amount)

	case engine.OpAddLiquidity:
		_, err := eng.AddLiquidity(ctx, account, req.AmountA, req.AmountB)
		return err

	case engine.OpRemoveLiquidity:
		_, _, err := eng.RemoveLiquidity(ctx, account, req.Shares)
		return err

	case engine.OpBatch:
		_, err := eng.ExecuteBatch(ctx, req.Operations, req.Atomic)
		return err

	case engine.OpInitialize:
		return eng.Initialize(ctx, account)

	case engine.OpPause:
		return eng.Pause(ctx, account)

	case engine.OpResume:
		return eng.Resume(ctx, account)

	case engine.OpSetAdmin:
		target, err := uuid.Parse(req.Target)
		if err != nil {
			return fmt.Errorf("parse target: %w", err)
		}
		return eng.SetAdmin(ctx, account, target)

	case engine.OpMigrateSchema:
		return eng.MigrateSchema(ctx, account)

	default:
		return fmt.Errorf("%w: unknown operation %q", ErrBadRequest, op)
	}
}

func parsePair(fromSymbol, toSymbol string) (asset.Asset, asset.Asset, error) {
	from, err := asset.Parse(fromSymbol)
	if err != nil {
		return asset.Asset{}, asset.Asset{}, fmt.Errorf("parse from_asset: %w", err)
	}
	to, err := asset.Parse(toSymbol)
	if err != nil {
		return asset.Asset{}, asset.Asset{}, fmt.Errorf("parse to_asset: %w", err)
	}
	return from, to, nil
}
