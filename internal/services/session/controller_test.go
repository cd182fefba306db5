package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quickchess/internal/dependencies/mocks"
	enginechess "github.com/mcoot/quickchess/internal/engine/chess"
	"github.com/mcoot/quickchess/internal/model"
	"github.com/mcoot/quickchess/internal/storage/memory"
	"github.com/mcoot/quickchess/internal/testutil"
)

const (
	alice = model.PlayerID("11111111111111111111")
	bob   = model.PlayerID("22222222222222222222")
	carol = model.PlayerID("33333333333333333333")
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(enginechess.New(), s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) createGame() *Session {
	s.random.QueueString("GAME0000000000000001")
	sess, err := s.controller.GetOrCreate(s.ctx, alice, bob, model.ColorWhite)
	s.Require().NoError(err)
	return sess
}

// playFoolsMate drives the session to checkmate (black wins)
func (s *ControllerSuite) playFoolsMate() *MoveOutcome {
	for _, m := range []struct {
		player model.PlayerID
		uci    string
	}{
		{alice, "f2f3"},
		{bob, "e7e5"},
		{alice, "g2g4"},
	} {
		outcome, err := s.controller.SubmitMove(s.ctx, m.player, m.uci)
		s.Require().NoError(err)
		s.Require().True(outcome.Accepted)
		s.Require().Equal(model.ResultInProgress, outcome.Result)
	}

	outcome, err := s.controller.SubmitMove(s.ctx, bob, "d8h4")
	s.Require().NoError(err)
	return outcome
}

func (s *ControllerSuite) TestGetOrCreateAssignsColors() {
	sess := s.createGame()

	game := sess.Game()
	s.Equal(model.GameID("GAME0000000000000001"), game.ID)
	s.Equal(alice, game.White)
	s.Equal(bob, game.Black)
	s.Equal(model.ResultInProgress, game.Result)
	s.NotEmpty(game.FEN)
}

func (s *ControllerSuite) TestGetOrCreateRequesterAsBlack() {
	s.random.QueueString("GAME0000000000000001")
	sess, err := s.controller.GetOrCreate(s.ctx, alice, bob, model.ColorBlack)
	s.Require().NoError(err)

	game := sess.Game()
	s.Equal(bob, game.White)
	s.Equal(alice, game.Black)
}

func (s *ControllerSuite) TestGetOrCreateIsIdempotent() {
	sess := s.createGame()

	again, err := s.controller.GetOrCreate(s.ctx, alice, bob, model.ColorWhite)
	s.Require().NoError(err)
	s.Same(sess, again)
}

func (s *ControllerSuite) TestBothSidesRaceIntoSameSession() {
	sess := s.createGame()

	// The opponent's perspective of the same pairing
	fromBob, err := s.controller.GetOrCreate(s.ctx, bob, alice, model.ColorBlack)
	s.Require().NoError(err)
	s.Same(sess, fromBob)
}

func (s *ControllerSuite) TestOpponentAlreadyInAnotherGame() {
	s.createGame()

	_, err := s.controller.GetOrCreate(s.ctx, carol, alice, model.ColorWhite)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestSessionForUnknownPlayer() {
	s.Nil(s.controller.SessionFor(carol))
}

func (s *ControllerSuite) TestSubmitMoveWithoutSession() {
	_, err := s.controller.SubmitMove(s.ctx, alice, "e2e4")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestIllegalMoveRejectedWithoutStateChange() {
	sess := s.createGame()
	before := sess.Game()

	outcome, err := s.controller.SubmitMove(s.ctx, alice, "e2e5")
	s.Require().NoError(err)
	s.False(outcome.Accepted)
	s.Equal(before.FEN, outcome.FEN)
	s.Equal(before.FEN, sess.Game().FEN)
}

func (s *ControllerSuite) TestOutOfTurnMoveRejected() {
	sess := s.createGame()
	before := sess.Game()

	// Black may not open the game
	outcome, err := s.controller.SubmitMove(s.ctx, bob, "e7e5")
	s.Require().NoError(err)
	s.False(outcome.Accepted)
	s.Equal(before.FEN, sess.Game().FEN)
}

func (s *ControllerSuite) TestAcceptedMoveUpdatesEncodings() {
	sess := s.createGame()

	outcome, err := s.controller.SubmitMove(s.ctx, alice, "e2e4")
	s.Require().NoError(err)
	s.True(outcome.Accepted)
	s.Contains(outcome.FEN, " b ")
	s.Contains(outcome.PGN, "e4")
	s.Equal(outcome.FEN, sess.Game().FEN)
}

func (s *ControllerSuite) TestCheckmateFinalizesSession() {
	s.createGame()

	outcome := s.playFoolsMate()
	s.True(outcome.Accepted)
	s.Equal(model.ResultCheckmate, outcome.Result)

	// The session left the live maps...
	s.Nil(s.controller.SessionFor(alice))
	s.Nil(s.controller.SessionFor(bob))

	// ...and landed in the archive with its terminal result
	archived, err := s.controller.ArchivedGame(s.ctx, "GAME0000000000000001")
	s.Require().NoError(err)
	s.Equal(model.ResultCheckmate, archived.Result)
}

func (s *ControllerSuite) TestTerminalStateIsAbsorbing() {
	sess := s.createGame()
	s.playFoolsMate()

	// Submissions against the finished session reject, regardless of
	// which side asks
	outcome := sess.submitMove(alice, "a2a3")
	s.False(outcome.Accepted)
	s.Equal(model.ResultCheckmate, outcome.Result)
}

func (s *ControllerSuite) TestPlayersCanStartANewGameAfterFinishing() {
	s.createGame()
	s.playFoolsMate()

	s.random.QueueString("GAME0000000000000002")
	sess, err := s.controller.GetOrCreate(s.ctx, alice, bob, model.ColorBlack)
	s.Require().NoError(err)
	s.Equal(model.GameID("GAME0000000000000002"), sess.Game().ID)
}

func (s *ControllerSuite) TestDisconnectAbortsActiveSession() {
	s.createGame()

	game := s.controller.Disconnect(s.ctx, alice)
	s.Require().NotNil(game)
	s.Equal(model.ResultAborted, game.Result)
	s.Equal(bob, game.Opponent(alice))

	s.Nil(s.controller.SessionFor(alice))
	s.Nil(s.controller.SessionFor(bob))

	archived, err := s.controller.ArchivedGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(model.ResultAborted, archived.Result)
}

func (s *ControllerSuite) TestDisconnectWithoutSessionIsNoop() {
	s.Nil(s.controller.Disconnect(s.ctx, alice))
}

func (s *ControllerSuite) TestDisconnectAfterFinishIsNoop() {
	s.createGame()
	s.playFoolsMate()

	s.Nil(s.controller.Disconnect(s.ctx, alice))
}
