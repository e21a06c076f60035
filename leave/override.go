/*
override.go - Balance snapshots, manual overrides, recomputation

PURPOSE:
  BalanceManager is the single writer of VacationBalance snapshots. It
  recomputes automatic balances from the Calculator, lets an authorized
  actor replace a computed balance with a manual value plus justification,
  and restores automatic computation later.

PROVENANCE INVARIANT:
  A balance for a (person, year) is either fully manual or fully automatic,
  never a mix. A manual override keeps the last automatic accrued/used
  figures as advisory history; restoring automatic mode clears the manual
  fields and forces a fresh computation.

SERIALIZATION:
  Recompute and override for the same (person, year) are serialized by a
  keyed mutex so a restore-then-recompute cannot race a concurrent manual
  override. Different pairs run concurrently.

SEE ALSO:
  - accrual.go: the pure computation this manager persists
*/
package leave

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// BalanceManager owns VacationBalance snapshots.
type BalanceManager struct {
	Balances BalanceStore
	Requests RequestStore
	People   PersonStore
	Calc     *Calculator

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (bm *BalanceManager) lockFor(personID string, year int) *sync.Mutex {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.locks == nil {
		bm.locks = make(map[string]*sync.Mutex)
	}
	k := personID + "/" + strconv.Itoa(year)
	l, ok := bm.locks[k]
	if !ok {
		l = &sync.Mutex{}
		bm.locks[k] = l
	}
	return l
}

// Recompute refreshes the automatic balance for person/year and persists
// it. When the stored balance is manual it is left untouched and returned
// as is: manual provenance wins until explicitly restored.
func (bm *BalanceManager) Recompute(ctx context.Context, personID string, year int, asOf LocalDate) (*VacationBalance, error) {
	l := bm.lockFor(personID, year)
	l.Lock()
	defer l.Unlock()
	return bm.recomputeLocked(ctx, personID, year, asOf)
}

func (bm *BalanceManager) recomputeLocked(ctx context.Context, personID string, year int, asOf LocalDate) (*VacationBalance, error) {
	stored, err := bm.Balances.GetBalance(ctx, personID, year)
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.IsManual {
		return stored, nil
	}

	person, err := bm.People.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	history, err := bm.Requests.ListRequestsByPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	b, err := bm.Calc.ComputeBalance(*person, year, history, asOf)
	if err != nil {
		return nil, err
	}
	if err := bm.Balances.SaveBalance(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// SetManualBalance replaces the computed balance with a manual value.
// The justification is mandatory; the automatic accrued/used figures are
// carried over as advisory history.
//
// actorID must be resolved by the caller; passing an empty actor is a
// programming error.
func (bm *BalanceManager) SetManualBalance(ctx context.Context, personID string, year int, balanceDays decimal.Decimal, justification, actorID string) (*VacationBalance, error) {
	if actorID == "" {
		panic("leave: SetManualBalance called without a resolved actor identity")
	}
	if strings.TrimSpace(justification) == "" {
		return nil, ErrJustificationRequired
	}

	l := bm.lockFor(personID, year)
	l.Lock()
	defer l.Unlock()

	// Start from the latest automatic figures so they survive as history.
	base, err := bm.Balances.GetBalance(ctx, personID, year)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = &VacationBalance{PersonID: personID, Year: year}
		if person, err := bm.People.GetPerson(ctx, personID); err == nil && person.ContractStart != nil {
			base.ContractAnniversary = RealizeAnniversary(*person.ContractStart, year)
		}
	}

	b := *base
	b.BalanceDays = balanceDays
	b.IsManual = true
	b.ManualJustification = justification
	if err := bm.Balances.SaveBalance(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// RestoreAutomatic clears the manual fields and recomputes. Idempotent when
// the balance is already automatic.
func (bm *BalanceManager) RestoreAutomatic(ctx context.Context, personID string, year int, asOf LocalDate) (*VacationBalance, error) {
	l := bm.lockFor(personID, year)
	l.Lock()
	defer l.Unlock()

	stored, err := bm.Balances.GetBalance(ctx, personID, year)
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.IsManual {
		cleared := *stored
		cleared.IsManual = false
		cleared.ManualJustification = ""
		if err := bm.Balances.SaveBalance(ctx, &cleared); err != nil {
			return nil, err
		}
	}
	return bm.recomputeLocked(ctx, personID, year, asOf)
}

// Get returns the stored snapshot, computing one on first read.
func (bm *BalanceManager) Get(ctx context.Context, personID string, year int, asOf LocalDate) (*VacationBalance, error) {
	stored, err := bm.Balances.GetBalance(ctx, personID, year)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return stored, nil
	}
	return bm.Recompute(ctx, personID, year, asOf)
}
