package effect

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/auranet/aura/guard"
	"github.com/auranet/aura/ids"
	"github.com/auranet/aura/logging"
	"github.com/auranet/aura/metrics"
)

// BudgetStore charges and refunds flow budget.
type BudgetStore interface {
	Charge(ctx context.Context, context_ ids.ContextId, peer ids.AuthorityId, amount int64) (receipt string, err error)
	Refund(ctx context.Context, receipt string) error
}

// JournalStore appends fact bytes to a namespace.
type JournalStore interface {
	Append(ctx context.Context, ns guard.NamespaceRef, factBytes []byte) error
}

// LeakageRecorder records bits-leaked for audit.
type LeakageRecorder interface {
	Record(ctx context.Context, bits int) error
}

// MetadataStore stores host-side key/value metadata.
type MetadataStore interface {
	Store(ctx context.Context, key string, value []byte) error
}

// Transport sends an envelope payload on a context's channel.
type Transport interface {
	Send(ctx context.Context, context_ ids.ContextId, payload []byte) error
}

// ProductionInterpreter executes commands against real storage, network,
// and RNG services. It may cache within a single ExecuteBatch call but
// must not block on hot paths beyond what its injected services do.
type ProductionInterpreter struct {
	Budgets  BudgetStore
	Journals JournalStore
	Leakage  LeakageRecorder
	Metadata MetadataStore
	Net      Transport
	Log      logging.Logger
	Metrics  *metrics.Metrics
}

// NewProductionInterpreter wires the five host services (budgets,
// journals, leakage, metadata, transport), a logger and metrics into an
// Interpreter.
func NewProductionInterpreter(budgets BudgetStore, journals JournalStore, leakage LeakageRecorder, md MetadataStore, net Transport, log logging.Logger, m *metrics.Metrics) *ProductionInterpreter {
	return &ProductionInterpreter{Budgets: budgets, Journals: journals, Leakage: leakage, Metadata: md, Net: net, Log: log, Metrics: m}
}

func (p *ProductionInterpreter) Execute(ctx context.Context, cmd guard.EffectCommand) (EffectResult, error) {
	switch c := cmd.(type) {
	case guard.ChargeBudget:
		receipt, err := p.Budgets.Charge(ctx, c.Context, c.Peer, c.Amount)
		if err != nil {
			return EffectResult{Command: cmd, Err: err}, err
		}
		if p.Metrics != nil {
			p.Metrics.BudgetCharged.Add(float64(c.Amount))
		}
		return EffectResult{Command: cmd, Receipt: receipt}, nil

	case guard.AppendJournal:
		if err := p.Journals.Append(ctx, c.Namespace, c.FactBytes); err != nil {
			return EffectResult{Command: cmd, Err: err}, err
		}
		return EffectResult{Command: cmd}, nil

	case guard.RecordLeakage:
		if err := p.Leakage.Record(ctx, c.Bits); err != nil {
			return EffectResult{Command: cmd, Err: err}, err
		}
		return EffectResult{Command: cmd}, nil

	case guard.StoreMetadata:
		if err := p.Metadata.Store(ctx, c.Key, c.Value); err != nil {
			return EffectResult{Command: cmd, Err: err}, err
		}
		return EffectResult{Command: cmd}, nil

	case guard.SendEnvelope:
		if err := p.Net.Send(ctx, c.Context, c.Payload); err != nil {
			return EffectResult{Command: cmd, Err: err}, err
		}
		return EffectResult{Command: cmd}, nil

	case guard.GenerateNonce:
		buf := make([]byte, c.Bytes)
		if _, err := rand.Read(buf); err != nil {
			return EffectResult{Command: cmd, Err: err}, err
		}
		return EffectResult{Command: cmd, Receipt: buf}, nil

	default:
		err := fmt.Errorf("effect: unknown command type %T", cmd)
		return EffectResult{Command: cmd, Err: err}, err
	}
}

func (p *ProductionInterpreter) ExecuteBatch(ctx context.Context, cmds []guard.EffectCommand) ([]EffectResult, error) {
	results := make([]EffectResult, 0, len(cmds))
	var chargeReceipts []string

	for _, cmd := range cmds {
		res, err := p.Execute(ctx, cmd)
		results = append(results, res)
		if err != nil {
			p.rollback(ctx, chargeReceipts)
			if p.Log != nil {
				p.Log.Error("effect: batch failed, rolled back")
			}
			return results, ErrBatchFailed
		}
		if charge, ok := cmd.(guard.ChargeBudget); ok {
			_ = charge
			if receipt, ok := res.Receipt.(string); ok {
				chargeReceipts = append(chargeReceipts, receipt)
			}
		}
	}
	return results, nil
}

func (p *ProductionInterpreter) rollback(ctx context.Context, receipts []string) {
	for _, r := range receipts {
		_ = p.Budgets.Refund(ctx, r)
	}
}
