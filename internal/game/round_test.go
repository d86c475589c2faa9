package game

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
)

// scriptedRound returns a round whose next deal draws cards in order. For a
// single player the deal order is P1, dealer, P1, dealer; dealer hits follow
// the player's draws.
func scriptedRound(t *testing.T, cards string, opts ...RoundOption) *Round {
	t.Helper()
	shoe := deck.NewShoe(randutil.New(99))
	shoe.Stack(mustCards(cards)...)
	ids := 0
	opts = append([]RoundOption{
		WithShoe(shoe),
		WithRoundIDs(func() string { ids++; return fmt.Sprintf("round-%d", ids) }),
	}, opts...)
	return NewRound(nil, opts...)
}

func TestRoundStartsInBetting(t *testing.T) {
	t.Parallel()
	r := NewRound(randutil.New(1))

	s := r.Snapshot()
	assert.Equal(t, Betting, s.Phase)
	assert.Equal(t, 1, s.PlayerCount)
	assert.Equal(t, "Place your bet to begin.", s.Status)
	require.Len(t, s.Players, 1)
	assert.Equal(t, DefaultStartingBankroll, s.Players[0].Bankroll)
	assert.Empty(t, s.Players[0].Hands)
	assert.Empty(t, s.Dealer.Cards)
	assert.Equal(t, deck.ShoeSize, s.ShoeRemaining)
}

func TestRoundStandDealerHitsOnce(t *testing.T) {
	t.Parallel()
	// Player [T,7] = 17, dealer [6,T] = 16 hits a 4 to 20
	r := scriptedRound(t, "Th 6c 7d Ts 4h")

	require.NoError(t, r.PlaceBet(0, 50))
	assert.Equal(t, 450, r.Snapshot().Players[0].Bankroll)
	assert.Equal(t, 50, r.Pot())

	require.NoError(t, r.Deal())
	s := r.Snapshot()
	assert.Equal(t, PlayerTurn, s.Phase)
	assert.Equal(t, "round-1", s.RoundID)
	assert.Equal(t, mustCards("Th7d"), s.Players[0].Hands[0].Cards)
	assert.Equal(t, 17, s.Players[0].Hands[0].Value)
	assert.Equal(t, mustCards("6cTs"), s.Dealer.Cards)
	assert.True(t, s.Dealer.HoleHidden)
	assert.Zero(t, s.Dealer.Value)
	assert.Equal(t, 10, s.Dealer.Showing)
	assert.Equal(t, "Player 1's turn — Hit or Stand.", s.Status)

	require.NoError(t, r.Stand())
	s = r.Snapshot()
	assert.Equal(t, Settlement, s.Phase)
	assert.False(t, s.Dealer.HoleHidden)
	assert.Equal(t, mustCards("6cTs4h"), s.Dealer.Cards)
	assert.Equal(t, 20, s.Dealer.Value)

	require.Len(t, s.Results, 1)
	assert.Equal(t, Lose, s.Results[0].Outcome)
	assert.Equal(t, 450, s.Players[0].Bankroll)
	assert.Zero(t, s.Players[0].Bet)
	assert.Zero(t, s.Pot)
	assert.Equal(t, statistics.Stats{Losses: 1}, s.Players[0].Stats)
	assert.Equal(t, "Round over. Dealer: 20. Results: P1: 17 — Loss", s.Status)
}

func TestRoundDealerBustPaysDouble(t *testing.T) {
	t.Parallel()
	r := scriptedRound(t, "Th 6c 7d Ts 9h")

	require.NoError(t, r.PlaceBet(0, 50))
	require.NoError(t, r.Deal())
	require.NoError(t, r.Stand())

	s := r.Snapshot()
	assert.Equal(t, DealerBust, s.Results[0].Outcome)
	assert.Equal(t, 550, s.Players[0].Bankroll)
	assert.Equal(t, statistics.Stats{Wins: 1}, s.Players[0].Stats)
	assert.Equal(t, "Round over. Dealer: 25. Results: P1: 17 — Dealer busted — Win", s.Status)
}

func TestRoundHitToBustSettlesAsLoss(t *testing.T) {
	t.Parallel()
	// Dealer still plays out after every player busts
	r := scriptedRound(t, "Th 6c 5d Ts Kh 2c")

	require.NoError(t, r.PlaceBet(0, 20))
	require.NoError(t, r.Deal())
	require.NoError(t, r.Hit())

	s := r.Snapshot()
	assert.Equal(t, Settlement, s.Phase)
	assert.Equal(t, 25, s.Players[0].Hands[0].Value)
	assert.True(t, s.Players[0].Hands[0].Bust)
	assert.Equal(t, 18, s.Dealer.Value)
	assert.Equal(t, Bust, s.Results[0].Outcome)
	assert.Equal(t, 480, s.Players[0].Bankroll)
	assert.Contains(t, s.Status, "P1: 25 — Busted")
}

func TestRoundHitWithoutBustKeepsTurn(t *testing.T) {
	t.Parallel()
	r := scriptedRound(t, "5h 6c 4d Ts 3h")

	require.NoError(t, r.PlaceBet(0, 20))
	require.NoError(t, r.Deal())
	require.NoError(t, r.Hit())

	assert.Equal(t, PlayerTurn, r.Phase())
	assert.Equal(t, "Player 1 — Score: 12.", r.Status())
}

func TestRoundSplitEights(t *testing.T) {
	t.Parallel()
	// P1 [8h,8d] vs dealer [9c,9s] = 18. First slot hits K then Q and busts,
	// the split slot hits T and stands on 18.
	r := scriptedRound(t, "8h 9c 8d 9s Kh Qd Th")

	require.NoError(t, r.PlaceBet(0, 50))
	require.NoError(t, r.Deal())
	require.NoError(t, r.Split())

	s := r.Snapshot()
	assert.Equal(t, 400, s.Players[0].Bankroll, "split debits one more stake")
	assert.Equal(t, 100, s.Players[0].Bet)
	require.Len(t, s.Players[0].Hands, 2)
	assert.Equal(t, mustCards("8h"), s.Players[0].Hands[0].Cards)
	assert.Equal(t, mustCards("8d"), s.Players[0].Hands[1].Cards)
	assert.Equal(t, 50, s.Players[0].Hands[0].Bet)
	assert.Equal(t, 50, s.Players[0].Hands[1].Bet)
	assert.Equal(t, SlotPrimary, s.ActiveSlot)

	require.NoError(t, r.Hit())
	assert.Equal(t, PlayingPrimary, r.Snapshot().Players[0].State)
	require.NoError(t, r.Hit())

	s = r.Snapshot()
	assert.Equal(t, PlayerTurn, s.Phase)
	assert.Equal(t, PlayingSplit, s.Players[0].State)
	assert.Equal(t, SlotSplit, s.ActiveSlot)
	assert.Equal(t, "Player 1 busted! Player 1's split hand — Hit or Stand.", s.Status)

	require.NoError(t, r.Hit())
	require.NoError(t, r.Stand())

	s = r.Snapshot()
	assert.Equal(t, Settlement, s.Phase)
	require.Len(t, s.Results, 2)
	assert.Equal(t, SlotPrimary, s.Results[0].Slot)
	assert.Equal(t, Bust, s.Results[0].Outcome)
	assert.Equal(t, -50, s.Results[0].Net())
	assert.Equal(t, SlotSplit, s.Results[1].Slot)
	assert.Equal(t, Push, s.Results[1].Outcome)
	assert.Zero(t, s.Results[1].Net())

	assert.Equal(t, 450, s.Players[0].Bankroll)
	assert.Equal(t, statistics.Stats{Losses: 1, Ties: 1}, s.Players[0].Stats)
	assert.Equal(t, "Round over. Dealer: 18. Results: P1: 28 — Busted / 18 — Tie", s.Status)
}

func TestRoundSplitRejections(t *testing.T) {
	t.Parallel()

	t.Run("not a pair", func(t *testing.T) {
		r := scriptedRound(t, "8h 9c 7d 9s")
		require.NoError(t, r.PlaceBet(0, 50))
		require.NoError(t, r.Deal())
		before := r.Snapshot()

		err := r.Split()
		assert.ErrorIs(t, err, ErrIllegalAction)
		after := r.Snapshot()
		assert.Equal(t, before.Players, after.Players)
		assert.Equal(t, "Split needs two cards of the same rank.", after.Status)
	})

	t.Run("short bankroll", func(t *testing.T) {
		r := scriptedRound(t, "8h 9c 8d 9s", WithBankrolls(80))
		require.NoError(t, r.PlaceBet(0, 50))
		require.NoError(t, r.Deal())

		assert.ErrorIs(t, r.Split(), ErrIllegalAction)
		s := r.Snapshot()
		assert.Equal(t, 30, s.Players[0].Bankroll)
		assert.Len(t, s.Players[0].Hands, 1)
		assert.Equal(t, "Not enough bankroll to split.", s.Status)
	})

	t.Run("no re-split", func(t *testing.T) {
		r := scriptedRound(t, "8h 9c 8d 9s 8c")
		require.NoError(t, r.PlaceBet(0, 50))
		require.NoError(t, r.Deal())
		require.NoError(t, r.Split())
		require.NoError(t, r.Hit())

		assert.ErrorIs(t, r.Split(), ErrIllegalAction)
		assert.Equal(t, 400, r.Snapshot().Players[0].Bankroll)
	})
}

func TestRoundDouble(t *testing.T) {
	t.Parallel()
	// [5,6] doubles into a T for 21 against dealer 17
	r := scriptedRound(t, "5h Tc 6d 7s Th")

	require.NoError(t, r.PlaceBet(0, 50))
	require.NoError(t, r.Deal())
	require.NoError(t, r.Double())

	s := r.Snapshot()
	assert.Equal(t, Settlement, s.Phase)
	assert.Equal(t, 21, s.Results[0].Score)
	assert.Equal(t, 100, s.Results[0].Bet)
	assert.Equal(t, Win, s.Results[0].Outcome)
	assert.Equal(t, 600, s.Players[0].Bankroll)
	assert.Equal(t, statistics.Stats{Wins: 1}, s.Players[0].Stats)
}

func TestRoundDoubleEndsTurnWithoutBust(t *testing.T) {
	t.Parallel()
	// P1 [2,7]=9 doubles into a 4 and stops on 13; play passes to P2
	r := scriptedRound(t, "2h Tc 3d 7s Kh Ts 4h", WithPlayerCount(2))
	require.NoError(t, r.PlaceBet(0, 50))
	require.NoError(t, r.Deal())
	require.NoError(t, r.Double())

	s := r.Snapshot()
	assert.Equal(t, PlayerTurn, s.Phase)
	assert.Equal(t, 1, s.ActivePlayer)
	assert.Equal(t, Finished, s.Players[0].State)
	assert.Equal(t, 13, s.Players[0].Hands[0].Value)
	assert.Equal(t, 100, s.Players[0].Bet)
	assert.Equal(t, 400, s.Players[0].Bankroll)
}

func TestRoundDoubleRejections(t *testing.T) {
	t.Parallel()

	t.Run("three cards", func(t *testing.T) {
		r := scriptedRound(t, "5h Tc 3d 7s 2h")
		require.NoError(t, r.PlaceBet(0, 50))
		require.NoError(t, r.Deal())
		require.NoError(t, r.Hit())

		assert.ErrorIs(t, r.Double(), ErrIllegalAction)
		s := r.Snapshot()
		assert.Equal(t, 450, s.Players[0].Bankroll)
		assert.Equal(t, 50, s.Players[0].Bet)
		assert.Equal(t, PlayerTurn, s.Phase)
	})

	t.Run("short bankroll", func(t *testing.T) {
		r := scriptedRound(t, "5h Tc 6d 7s", WithBankrolls(50))
		require.NoError(t, r.PlaceBet(0, 50))
		require.NoError(t, r.Deal())

		assert.ErrorIs(t, r.Double(), ErrIllegalAction)
		s := r.Snapshot()
		assert.Zero(t, s.Players[0].Bankroll)
		assert.Equal(t, 50, s.Players[0].Bet)
		assert.Equal(t, "Not enough bankroll to double.", s.Status)
	})

	t.Run("after split", func(t *testing.T) {
		r := scriptedRound(t, "8h 9c 8d 9s 3c")
		require.NoError(t, r.PlaceBet(0, 50))
		require.NoError(t, r.Deal())
		require.NoError(t, r.Split())
		require.NoError(t, r.Hit())

		assert.ErrorIs(t, r.Double(), ErrIllegalAction)
		assert.Equal(t, 400, r.Snapshot().Players[0].Bankroll)
	})
}

func TestRoundActionsOutsidePlayerTurn(t *testing.T) {
	t.Parallel()
	r := NewRound(randutil.New(3))

	for name, action := range map[string]func() error{
		"hit":    r.Hit,
		"stand":  r.Stand,
		"double": r.Double,
		"split":  r.Split,
	} {
		err := action()
		assert.ErrorIs(t, err, ErrIllegalAction, name)
		assert.Equal(t, Betting, r.Phase(), name)
	}
}

func TestRoundBetting(t *testing.T) {
	t.Parallel()

	t.Run("deal without bet", func(t *testing.T) {
		r := NewRound(randutil.New(3))
		assert.ErrorIs(t, r.Deal(), ErrNoBetPlaced)
		assert.Equal(t, "Place a bet first.", r.Status())
		assert.Equal(t, Betting, r.Phase())
	})

	t.Run("bet over bankroll", func(t *testing.T) {
		r := NewRound(randutil.New(3))
		assert.ErrorIs(t, r.PlaceBet(0, 501), ErrInvalidBet)
		assert.Equal(t, "You don't have enough for that bet.", r.Status())
		assert.Equal(t, 500, r.Snapshot().Players[0].Bankroll)
	})

	t.Run("bets accumulate", func(t *testing.T) {
		r := NewRound(randutil.New(3))
		require.NoError(t, r.PlaceBet(0, 25))
		require.NoError(t, r.PlaceBet(0, 10))
		s := r.Snapshot()
		assert.Equal(t, 35, s.Players[0].Bet)
		assert.Equal(t, 465, s.Players[0].Bankroll)
		assert.Equal(t, "Player 1 bet $35. Click Deal when ready.", s.Status)
	})

	t.Run("bet during play", func(t *testing.T) {
		r := scriptedRound(t, "5h Tc 6d 7s")
		require.NoError(t, r.PlaceBet(0, 25))
		require.NoError(t, r.Deal())
		assert.ErrorIs(t, r.PlaceBet(0, 25), ErrInvalidBet)
		assert.Equal(t, 25, r.Snapshot().Players[0].Bet)
	})

	t.Run("unseated player", func(t *testing.T) {
		r := NewRound(randutil.New(3))
		assert.ErrorIs(t, r.PlaceBet(1, 25), ErrInvalidBet)
	})
}

func TestRoundTwoPlayers(t *testing.T) {
	t.Parallel()
	// Deal order P1, P2, dealer, P1, P2, dealer: P1 [T,8]=18, P2 [9,9]=18,
	// dealer [6,T]=16 hits a 2 to 18
	r := scriptedRound(t, "Th 9h 6c 8d 9d Ts 2s", WithPlayerCount(2))

	require.NoError(t, r.AdvanceToNextPlayer())
	assert.Equal(t, 1, r.Bettor())
	assert.Equal(t, "Player 2, place your bet.", r.Status())
	assert.ErrorIs(t, r.PlaceBet(0, 50), ErrInvalidBet, "only the designated bettor may bet")
	require.NoError(t, r.PlaceBet(1, 25))
	require.NoError(t, r.AdvanceToNextPlayer())
	require.NoError(t, r.PlaceBet(0, 50))
	assert.Equal(t, 75, r.Pot())

	require.NoError(t, r.Deal())
	s := r.Snapshot()
	assert.Equal(t, mustCards("Th8d"), s.Players[0].Hands[0].Cards)
	assert.Equal(t, mustCards("9h9d"), s.Players[1].Hands[0].Cards)
	assert.Equal(t, mustCards("6cTs"), s.Dealer.Cards)
	assert.Equal(t, 0, s.ActivePlayer)

	assert.ErrorIs(t, r.AdvanceToNextPlayer(), ErrIllegalAction, "bettor switch is closed during play")

	require.NoError(t, r.Stand())
	s = r.Snapshot()
	assert.Equal(t, PlayerTurn, s.Phase)
	assert.Equal(t, 1, s.ActivePlayer)
	assert.True(t, s.Players[0].TurnDone)
	assert.Equal(t, "Player 1 stands on 18. Player 2's turn — Hit or Stand.", s.Status)

	require.NoError(t, r.Stand())
	s = r.Snapshot()
	assert.Equal(t, Settlement, s.Phase)
	assert.Equal(t, 18, s.Dealer.Value)
	require.Len(t, s.Results, 2)
	assert.Equal(t, Push, s.Results[0].Outcome)
	assert.Equal(t, Push, s.Results[1].Outcome)
	assert.Equal(t, 500, s.Players[0].Bankroll)
	assert.Equal(t, 500, s.Players[1].Bankroll)
	assert.Equal(t, "Round over. Dealer: 18. Results: P1: 18 — Tie | P2: 18 — Tie", s.Status)
}

func TestRoundSingleSeatCannotAdvance(t *testing.T) {
	t.Parallel()
	r := NewRound(randutil.New(3))
	assert.ErrorIs(t, r.AdvanceToNextPlayer(), ErrIllegalAction)
	assert.Zero(t, r.Bettor())
}

func TestRoundResetAfterSettlementKeepsBankrollAndStats(t *testing.T) {
	t.Parallel()
	r := scriptedRound(t, "Th 6c 7d Ts 9h")
	require.NoError(t, r.PlaceBet(0, 50))
	require.NoError(t, r.Deal())
	require.NoError(t, r.Stand())

	require.NoError(t, r.Reset())
	s := r.Snapshot()
	assert.Equal(t, Betting, s.Phase)
	assert.Empty(t, s.Players[0].Hands)
	assert.Zero(t, s.Players[0].Bet)
	assert.Empty(t, s.Dealer.Cards)
	assert.Empty(t, s.Results)
	assert.Equal(t, 550, s.Players[0].Bankroll)
	assert.Equal(t, statistics.Stats{Wins: 1}, s.Players[0].Stats)
	assert.Equal(t, "Place your bet to begin.", s.Status)
}

func TestRoundResetMidRoundForfeitsStakes(t *testing.T) {
	t.Parallel()
	bus := newRecordingBus()
	r := scriptedRound(t, "8h 9c 8d 9s", WithEventBus(bus))
	require.NoError(t, r.PlaceBet(0, 50))
	require.NoError(t, r.Deal())
	require.NoError(t, r.Split())
	assert.Equal(t, 400, r.Snapshot().Players[0].Bankroll)

	require.NoError(t, r.Reset())
	s := r.Snapshot()
	assert.Equal(t, Betting, s.Phase)
	assert.Equal(t, 400, s.Players[0].Bankroll, "stakes seen against the upcard are lost")
	assert.Zero(t, s.Pot)
	assert.Equal(t, statistics.Stats{}, s.Players[0].Stats)

	reset, ok := bus.events[len(bus.events)-1].(RoundResetEvent)
	require.True(t, ok)
	assert.Equal(t, 100, reset.Forfeited)
	assert.Zero(t, reset.Refunded)
}

func TestRoundResetBeforeDealRefundsBets(t *testing.T) {
	t.Parallel()
	bus := newRecordingBus()
	r := scriptedRound(t, "Th 6c 7d Ts 9h", WithPlayerCount(2), WithEventBus(bus))
	require.NoError(t, r.PlaceBet(0, 50))
	require.NoError(t, r.AdvanceToNextPlayer())
	require.NoError(t, r.PlaceBet(1, 20))

	require.NoError(t, r.Reset())
	s := r.Snapshot()
	assert.Equal(t, 500, s.Players[0].Bankroll)
	assert.Equal(t, 500, s.Players[1].Bankroll)
	assert.Zero(t, s.Bettor)

	reset, ok := bus.events[len(bus.events)-1].(RoundResetEvent)
	require.True(t, ok)
	assert.Equal(t, 70, reset.Refunded)
	assert.Zero(t, reset.Forfeited)
}

func TestRoundBetAfterSettlementClearsTable(t *testing.T) {
	t.Parallel()
	r := scriptedRound(t, "Th 6c 7d Ts 9h")
	require.NoError(t, r.PlaceBet(0, 50))
	require.NoError(t, r.Deal())
	require.NoError(t, r.Stand())

	require.NoError(t, r.PlaceBet(0, 10))
	s := r.Snapshot()
	assert.Equal(t, Betting, s.Phase)
	assert.Empty(t, s.Players[0].Hands)
	assert.Empty(t, s.Results)
	assert.Equal(t, 10, s.Pot)
	assert.Equal(t, 540, s.Players[0].Bankroll)
}

func TestRoundSetPlayerCount(t *testing.T) {
	t.Parallel()
	r := NewRound(randutil.New(3))
	require.NoError(t, r.PlaceBet(0, 40))

	require.NoError(t, r.SetPlayerCount(2))
	s := r.Snapshot()
	assert.Equal(t, 2, s.PlayerCount)
	assert.Len(t, s.Players, 2)
	assert.Zero(t, s.Pot, "changing players resets the round")
	assert.Equal(t, 500, s.Players[0].Bankroll)

	assert.ErrorIs(t, r.SetPlayerCount(3), ErrIllegalAction)
	assert.ErrorIs(t, r.SetPlayerCount(0), ErrIllegalAction)
	assert.Equal(t, 2, r.PlayerCount())

	require.NoError(t, r.PlaceBet(0, 40))
	require.NoError(t, r.Deal())
	assert.ErrorIs(t, r.SetPlayerCount(1), ErrIllegalAction)
	assert.Equal(t, 2, r.PlayerCount())
}

func TestRoundZeroBetSeatIsDealtIn(t *testing.T) {
	t.Parallel()
	// P2 never bets but still plays its hand and settles with no stake
	r := scriptedRound(t, "Th 9h 6c 8d 9d Ts 2s", WithPlayerCount(2))
	require.NoError(t, r.PlaceBet(0, 50))
	require.NoError(t, r.Deal())
	require.NoError(t, r.Stand())
	require.NoError(t, r.Stand())

	s := r.Snapshot()
	require.Len(t, s.Results, 2)
	assert.Zero(t, s.Results[1].Bet)
	assert.Equal(t, 500, s.Players[1].Bankroll)
	assert.Equal(t, statistics.Stats{Ties: 1}, s.Players[1].Stats)
}

func TestRoundSavedState(t *testing.T) {
	t.Parallel()
	r := scriptedRound(t, "Th 6c 7d Ts 9h", WithPlayerCount(2))
	require.NoError(t, r.PlaceBet(0, 50))

	// A bet waiting for the deal is saved back into the bankroll
	saved := r.Saved()
	assert.Equal(t, 2, saved.PlayerCount)
	assert.Equal(t, 500, saved.Players[0].Bankroll)

	// Once dealt, the stake is not recoverable by saving mid-hand
	require.NoError(t, r.Deal())
	saved = r.Saved()
	assert.Equal(t, 450, saved.Players[0].Bankroll)
	assert.Equal(t, 500, saved.Players[1].Bankroll)
	require.NoError(t, saved.Validate())

	saved.Players[0].Bankroll = 275
	saved.Players[0].Stats = statistics.Stats{Wins: 4, Losses: 2}
	restored := NewRound(randutil.New(5), WithSavedState(saved))
	s := restored.Snapshot()
	assert.Equal(t, Betting, s.Phase)
	assert.Equal(t, 2, s.PlayerCount)
	assert.Equal(t, 275, s.Players[0].Bankroll)
	assert.Equal(t, statistics.Stats{Wins: 4, Losses: 2}, s.Players[0].Stats)
	assert.Empty(t, s.Players[0].Hands)
	assert.Zero(t, s.Pot)
}

func TestRoundIgnoresInvalidSave(t *testing.T) {
	t.Parallel()
	saved := SavedState{PlayerCount: 3, Players: []SavedPlayer{{Bankroll: 10}}}
	r := NewRound(randutil.New(5), WithSavedState(saved))
	assert.Equal(t, 1, r.PlayerCount())
	assert.Equal(t, DefaultStartingBankroll, r.Snapshot().Players[0].Bankroll)
}

func TestRoundMaskedSnapshotHidesHoleCard(t *testing.T) {
	t.Parallel()
	r := scriptedRound(t, "Th 6c 7d Ts 4h")
	require.NoError(t, r.PlaceBet(0, 50))
	require.NoError(t, r.Deal())

	masked := r.Snapshot().Masked()
	assert.Equal(t, deck.Card{}, masked.Dealer.Cards[0])
	assert.Equal(t, mustCards("Ts")[0], masked.Dealer.Cards[1])
	assert.Equal(t, mustCards("6c")[0], r.Snapshot().Dealer.Cards[0], "masking must not touch the round")

	require.NoError(t, r.Stand())
	revealed := r.Snapshot()
	assert.Equal(t, revealed, revealed.Masked())
}

func TestSnapshotJSONUsesNames(t *testing.T) {
	t.Parallel()
	r := scriptedRound(t, "8h 6c 8d Ts")
	require.NoError(t, r.PlaceBet(0, 50))
	require.NoError(t, r.Deal())
	require.NoError(t, r.Split())

	raw, err := json.Marshal(r.Snapshot().Masked())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"phase":"player_turn"`)
	assert.Contains(t, string(raw), `"state":"playing_primary"`)
	assert.Contains(t, string(raw), `"slot":"split"`)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, PlayerTurn, decoded.Phase)
	assert.Equal(t, SlotSplit, decoded.Players[0].Hands[1].Slot)
	assert.Equal(t, r.Snapshot().Masked(), decoded)

	var phase Phase
	assert.Error(t, phase.UnmarshalText([]byte("shuffling")))
}

func TestRoundSeededPlayIsDeterministic(t *testing.T) {
	t.Parallel()
	play := func() Snapshot {
		r := NewRound(randutil.New(2024), WithRoundIDs(func() string { return "fixed" }))
		for range 5 {
			require.NoError(t, r.PlaceBet(0, 10))
			require.NoError(t, r.Deal())
			for r.Phase() == PlayerTurn {
				if r.Snapshot().Players[0].Hands[0].Value < 15 {
					require.NoError(t, r.Hit())
				} else {
					require.NoError(t, r.Stand())
				}
			}
		}
		return r.Snapshot()
	}
	assert.Equal(t, play(), play())
}

// shortShoe runs dry after size cards, so a single round can exhaust it
type shortShoe struct {
	*deck.Shoe
	size int
}

func newShortShoe(size int, fills ...string) *shortShoe {
	shoe := deck.NewShoe(randutil.New(21))
	for _, fill := range fills {
		shoe.Stack(mustCards(fill)...)
	}
	return &shortShoe{Shoe: shoe, size: size}
}

func (s *shortShoe) Draw() deck.Draw {
	if s.Drawn() < s.size {
		return s.Shoe.Draw()
	}
	s.Fresh()
	d := s.Shoe.Draw()
	d.Reshuffled = true
	return d
}

func (s *shortShoe) Remaining() int {
	return max(s.size-s.Drawn(), 0)
}

func TestRoundReshufflesWhenShoeRunsOut(t *testing.T) {
	t.Parallel()

	t.Run("dealer draw", func(t *testing.T) {
		t.Parallel()
		bus := newRecordingBus()
		r := NewRound(nil, WithShoe(newShortShoe(4, "Th 6c 7d Ts", "9h")), WithEventBus(bus))
		require.NoError(t, r.PlaceBet(0, 50))
		require.NoError(t, r.Deal())
		require.NoError(t, r.Stand())

		s := r.Snapshot()
		assert.Equal(t, Settlement, s.Phase)
		assert.Equal(t, 550, s.Players[0].Bankroll)
		assert.True(t, strings.HasPrefix(s.Status, "Reshuffling deck... Round over. Dealer: 25."), s.Status)

		reshuffle := -1
		for i, e := range bus.events {
			if rs, ok := e.(ReshuffleEvent); ok {
				reshuffle = i
				assert.Equal(t, 3, rs.Fills, "initial fill, deal, then the reshuffle")
			}
		}
		require.NotEqual(t, -1, reshuffle, "no reshuffle event published")
		drawn, ok := bus.events[reshuffle+1].(CardDealtEvent)
		require.True(t, ok)
		assert.True(t, drawn.ToDealer())
		assert.True(t, drawn.Reshuffled)
		assert.Equal(t, mustCards("9h")[0], drawn.Card)

		require.NoError(t, r.Reset())
		assert.Equal(t, "Place your bet to begin.", r.Status())
	})

	t.Run("player hit", func(t *testing.T) {
		t.Parallel()
		r := NewRound(nil, WithShoe(newShortShoe(4, "Th 6c 7d Ts", "2h")))
		require.NoError(t, r.PlaceBet(0, 50))
		require.NoError(t, r.Deal())
		require.NoError(t, r.Hit())

		s := r.Snapshot()
		assert.Equal(t, PlayerTurn, s.Phase)
		assert.Equal(t, "Reshuffling deck... Player 1 — Score: 19.", s.Status)
		assert.Equal(t, 3, s.ShoeRemaining)

		require.NoError(t, r.Stand())
		assert.False(t, strings.HasPrefix(r.Status(), "Reshuffling"), "note only covers the operation that reshuffled")
	})
}
