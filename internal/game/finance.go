package game

import (
	"fmt"
	"time"

	"estates/internal/estate"
	"estates/internal/store"
)

// applyTaxes charges the quarterly property tax once the cycle is due. The
// charge is all-or-nothing; an unaffordable bill is retried next round.
func (s *Service) applyTaxes(w *store.World, owned []*estate.Property, now time.Time) (paid int64, skipped bool) {
	st := &w.State
	if st.CurrentRound-st.LastTaxRound < RoundsPerTaxCycle || len(owned) == 0 {
		return 0, false
	}
	var total int64
	for _, p := range owned {
		total += estate.ScaleMicros(p.ValueMicros(), st.PropertyTaxRate/4)
	}
	if st.BalanceMicros < total {
		s.log.Warn("insufficient funds for property tax, skipped", "due", estate.MicrosToUnits(total), "balance", estate.MicrosToUnits(st.BalanceMicros))
		return 0, true
	}
	st.BalanceMicros -= total
	st.LastTaxRound = st.CurrentRound
	w.Stats.TaxesPaidMicros += total
	w.Record(estate.TxTax, nil, -total, fmt.Sprintf("Quarterly property tax on %d properties", len(owned)), now)
	s.log.Info("property taxes paid", "amount", estate.MicrosToUnits(total))
	return total, false
}

// applyMaintenance charges six months of upkeep when due. When the player
// cannot pay, the first two owned properties lose a safety tier instead and
// the cycle stays due.
func (s *Service) applyMaintenance(w *store.World, owned []*estate.Property, now time.Time) (paid int64, missed bool) {
	st := &w.State
	if st.CurrentRound-st.LastMaintenanceRound < RoundsPerMaintenance || len(owned) == 0 {
		return 0, false
	}
	var total int64
	for _, p := range owned {
		total += p.MaintenanceMicros * RoundsPerMaintenance
	}
	if st.BalanceMicros < total {
		s.log.Warn("insufficient funds for maintenance, properties deteriorate", "due", estate.MicrosToUnits(total))
		for _, p := range owned[:min(2, len(owned))] {
			p.Safety = p.Safety.Degrade()
		}
		return 0, true
	}
	st.BalanceMicros -= total
	st.LastMaintenanceRound = st.CurrentRound
	w.Stats.MaintenancePaidMicros += total
	w.Record(estate.TxMaintenance, nil, -total, fmt.Sprintf("Maintenance for %d properties", len(owned)), now)
	s.log.Info("maintenance paid", "amount", estate.MicrosToUnits(total))
	return total, false
}

// applyLoans makes each active loan's scheduled payment, or inflates the
// principal by the penalty factor when the payment cannot be covered.
func (s *Service) applyLoans(w *store.World, now time.Time) (paid int64, penalized int) {
	for _, l := range w.ActiveLoans() {
		if w.State.BalanceMicros < l.MonthlyPaymentMicros {
			l.PrincipalMicros = estate.ScaleMicros(l.PrincipalMicros, LoanPenaltyFactor)
			penalized++
			s.log.Warn("missed loan payment, penalty applied", "loan_id", l.ID, "principal", estate.MicrosToUnits(l.PrincipalMicros))
			continue
		}
		w.State.BalanceMicros -= l.MonthlyPaymentMicros
		l.TotalPaidMicros += l.MonthlyPaymentMicros
		l.MonthsRemaining--
		paid += l.MonthlyPaymentMicros
		w.Record(estate.TxLoanPayment, nil, -l.MonthlyPaymentMicros, "Loan payment: "+l.Purpose, now)
		if l.MonthsRemaining <= 0 {
			l.MonthsRemaining = 0
			l.Active = false
			s.log.Info("loan paid off", "loan_id", l.ID, "total_paid", estate.MicrosToUnits(l.TotalPaidMicros))
		}
	}
	return paid, penalized
}

// appreciate grows the market value of every owned property by its per-round
// rate.
func appreciate(owned []*estate.Property, now time.Time) {
	for _, p := range owned {
		rate := estate.AppreciationRate[p.Type] * estate.SafetyAppreciationMultiplier[p.Safety]
		old := p.ValueMicros()
		p.MarketValueMicros = estate.ScaleMicros(old, 1+rate)
		p.AppreciationMicros += p.MarketValueMicros - old
		if !p.PurchasedAt.IsZero() {
			p.YearsOwned = int(now.Sub(p.PurchasedAt).Hours() / 24 / 365)
		}
	}
}

// recomputeNetWorth sets net worth to cash plus holdings minus debt and moves
// the high watermark. It reads the snapshot only, so calling it twice yields
// the same value.
func recomputeNetWorth(w *store.World) int64 {
	var holdings, debt int64
	for _, p := range w.OwnedProperties() {
		holdings += p.ValueMicros()
	}
	for _, l := range w.ActiveLoans() {
		debt += l.PrincipalMicros
	}
	nw := w.State.BalanceMicros + holdings - debt
	w.State.NetWorthMicros = nw
	w.Stats.NetWorthMicros = nw
	if nw > w.Stats.HighestBalanceMicros {
		w.Stats.HighestBalanceMicros = nw
	}
	return nw
}
