package game

import (
	"fmt"
	"time"

	"estates/internal/store"
)

// evaluateOutcome flips the won and lost flags the first time their
// conditions hold. Both are terminal and pause the game.
func (s *Service) evaluateOutcome(w *store.World, now time.Time) {
	st := &w.State
	if !st.Won && st.NetWorthMicros >= VictoryNetWorthMicros {
		st.Won = true
		st.EndedAt = &now
		st.Message = fmt.Sprintf("Congratulations! You became a millionaire in %d rounds!", st.CurrentRound)
		st.Paused = true
		s.log.Info("victory", "round", st.CurrentRound, "net_worth", st.NetWorthMicros)
	}

	if st.Lost {
		return
	}
	distressed := st.NetWorthMicros < BankruptNetWorthMicros || (st.BalanceMicros < 0 && st.CurrentRound > BankruptAfterRound)
	holdings := w.Stats.PropertiesBought - w.Stats.PropertiesSold
	if distressed && holdings == 0 && st.BalanceMicros < BankruptBalanceMicros {
		st.Lost = true
		st.Paused = true
		// A won game keeps its end time and message.
		if !st.Won {
			st.EndedAt = &now
			st.Message = fmt.Sprintf("Bankruptcy! Game Over at round %d.", st.CurrentRound)
		}
		s.log.Warn("bankruptcy", "round", st.CurrentRound, "balance", st.BalanceMicros)
	}
}
