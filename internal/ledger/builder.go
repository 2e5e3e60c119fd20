package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/hostledger/internal/fx"
	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/internal/storage"
)

// Parties indexes the entities taking part in a group, together with the
// hosts whose books they sit on.
type Parties map[string]*models.Entity

// LoadParties fetches the listed entities and their hosts.
func LoadParties(ctx context.Context, r storage.Reader, ids ...string) (Parties, error) {
	p := make(Parties, len(ids))
	for _, id := range ids {
		if err := p.load(ctx, r, id); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p Parties) load(ctx context.Context, r storage.Reader, id string) error {
	if _, ok := p[id]; ok {
		return nil
	}
	entity, err := r.GetEntity(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load entity %s: %w", id, err)
	}
	p[id] = entity
	if entity.IsHosted() && entity.HostID != entity.ID {
		return p.load(ctx, r, entity.HostID)
	}
	return nil
}

// HostCurrency returns the settlement currency of the books e sits on.
// Unhosted entities keep their own currency.
func (p Parties) HostCurrency(e *models.Entity) string {
	if host, ok := p[e.HostID]; ok {
		return host.Currency
	}
	return e.Currency
}

// Leg is one money movement to be recorded as a pair.
type Leg struct {
	Kind     models.Kind
	From, To string

	Amount   int64
	Currency string

	// Status is set on debt kinds.
	Status models.SettlementStatus

	// ProcessorFee is the processor's cut in the receiver's host currency.
	// It is carried by the credit side and reduces the receiver's net.
	ProcessorFee int64
}

// Builder assembles a group, converting every side into its owner's host
// and account currencies at a fixed date.
type Builder struct {
	conv     *fx.Converter
	parties  Parties
	asOf     time.Time
	template models.Entry
	group    *models.Group
}

// NewBuilder starts a group. Fields set on template (order, description,
// refund linkage, creation time) are copied onto every entry; a GroupID is
// generated when the template has none.
func NewBuilder(conv *fx.Converter, parties Parties, asOf time.Time, template models.Entry) *Builder {
	if template.GroupID == "" {
		template.GroupID = uuid.NewString()
	}
	return &Builder{
		conv:     conv,
		parties:  parties,
		asOf:     asOf,
		template: template,
		group:    &models.Group{ID: template.GroupID},
	}
}

// Add records a leg. Zero amounts are skipped and return an empty pair.
func (b *Builder) Add(ctx context.Context, leg Leg) (models.Pair, error) {
	if leg.Amount == 0 {
		return models.Pair{}, nil
	}
	if leg.Amount < 0 || leg.ProcessorFee < 0 {
		return models.Pair{}, fmt.Errorf("%w: negative %s amount", models.ErrInvalidFeeConfiguration, leg.Kind)
	}
	from, ok := b.parties[leg.From]
	if !ok {
		return models.Pair{}, fmt.Errorf("%w: %s", models.ErrEntityNotFound, leg.From)
	}
	to, ok := b.parties[leg.To]
	if !ok {
		return models.Pair{}, fmt.Errorf("%w: %s", models.ErrEntityNotFound, leg.To)
	}

	credit, err := b.side(ctx, leg, to, models.Credit)
	if err != nil {
		return models.Pair{}, err
	}
	debit, err := b.side(ctx, leg, from, models.Debit)
	if err != nil {
		return models.Pair{}, err
	}
	return b.Append(models.Pair{Credit: credit, Debit: debit}), nil
}

// Append adds an already built pair, stamping it with the group ID.
func (b *Builder) Append(p models.Pair) models.Pair {
	p.Credit.GroupID = b.group.ID
	p.Debit.GroupID = b.group.ID
	b.group.Pairs = append(b.group.Pairs, p)
	return p
}

// Entry returns a copy of the template for hand-built entries.
func (b *Builder) Entry() models.Entry {
	return b.template
}

// Group returns the group built so far.
func (b *Builder) Group() *models.Group {
	return b.group
}

func (b *Builder) side(ctx context.Context, leg Leg, owner *models.Entity, dir models.Direction) (*models.Entry, error) {
	hostCurrency := b.parties.HostCurrency(owner)

	inHost, err := b.conv.Convert(ctx, leg.Amount, leg.Currency, hostCurrency, b.asOf)
	if err != nil {
		return nil, err
	}
	net, err := b.conv.Convert(ctx, leg.Amount, leg.Currency, owner.Currency, b.asOf)
	if err != nil {
		return nil, err
	}

	entry := b.template
	entry.Kind = leg.Kind
	entry.Direction = dir
	entry.Amount = leg.Amount
	entry.Currency = leg.Currency
	entry.AmountInHostCurrency = inHost
	entry.HostCurrency = hostCurrency
	entry.AccountCurrency = owner.Currency
	entry.FromEntityID = leg.From
	entry.ToEntityID = leg.To
	entry.HostEntityID = owner.HostID
	entry.SettlementStatus = leg.Status

	if dir == models.Credit && leg.ProcessorFee > 0 {
		fee, err := b.conv.Convert(ctx, leg.ProcessorFee, hostCurrency, owner.Currency, b.asOf)
		if err != nil {
			return nil, err
		}
		entry.PaymentProcessorFeeInHostCurrency = leg.ProcessorFee
		net -= fee
	}
	entry.NetAmountInAccountCurrency = net
	return &entry, nil
}
