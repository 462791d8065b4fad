package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/seabattle/game/board"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadyInRoom  = errors.New("already in a room")
	ErrNotParticipant = errors.New("not a participant of this room")
	ErrWrongPhase     = errors.New("command not allowed in current phase")
	ErrOutOfTurn      = errors.New("not your turn")
	ErrAlreadyReady   = errors.New("board already submitted")
)

// PlayerID identifies a participant. It is the identity of the connection
// that created or joined the room.
type PlayerID string

// Phase is a stage of the match lifecycle.
type Phase string

const (
	PhaseAwaitingOpponent Phase = "awaiting_opponent"
	PhaseSetup            Phase = "setup"
	PhaseBattle           Phase = "battle"
	PhaseFinished         Phase = "finished"
)

// ValidPhase reports whether p names a lifecycle phase.
func ValidPhase(p Phase) bool {
	switch p {
	case PhaseAwaitingOpponent, PhaseSetup, PhaseBattle, PhaseFinished:
		return true
	}
	return false
}

// Seat holds one participant and the board they submitted.
type Seat struct {
	ID    PlayerID
	Board *board.Board
	Ready bool
}

// Session is the authoritative state of one match. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	Code           string
	CreatedAt      time.Time
	LastActivityAt time.Time

	// seats[0] is the creator, seats[1] the joiner.
	seats [2]*Seat
	turn  PlayerID
	phase Phase
}

// ShotOutcome describes a resolved shot.
type ShotOutcome struct {
	Shooter  PlayerID
	Victim   PlayerID
	Target   board.Coord
	Hit      bool
	NextTurn PlayerID
	Sunk     board.SunkResult
	GameOver bool
	Winner   PlayerID
}

// NewSession creates a room with its creator seated. The creator holds the
// first turn once battle starts.
func NewSession(code string, creator PlayerID, now time.Time) *Session {
	return &Session{
		Code:           code,
		CreatedAt:      now,
		LastActivityAt: now,
		seats:          [2]*Seat{{ID: creator}},
		turn:           creator,
		phase:          PhaseAwaitingOpponent,
	}
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Turn returns the participant allowed to shoot. It is only meaningful
// during battle.
func (s *Session) Turn() PlayerID {
	return s.turn
}

// Players returns the seated participants, creator first.
func (s *Session) Players() []PlayerID {
	out := make([]PlayerID, 0, 2)
	for _, seat := range s.seats {
		if seat != nil {
			out = append(out, seat.ID)
		}
	}
	return out
}

// IsParticipant reports whether id holds a seat.
func (s *Session) IsParticipant(id PlayerID) bool {
	return s.seat(id) != nil
}

// Opponent returns the other participant. ok is false when id is not
// seated or nobody has joined yet.
func (s *Session) Opponent(id PlayerID) (PlayerID, bool) {
	switch {
	case s.seats[0] != nil && s.seats[0].ID == id && s.seats[1] != nil:
		return s.seats[1].ID, true
	case s.seats[1] != nil && s.seats[1].ID == id:
		return s.seats[0].ID, true
	}
	return "", false
}

func (s *Session) seat(id PlayerID) *Seat {
	for _, seat := range s.seats {
		if seat != nil && seat.ID == id {
			return seat
		}
	}
	return nil
}

// Join seats the second participant and moves the room to setup.
func (s *Session) Join(id PlayerID, now time.Time) error {
	if s.IsParticipant(id) {
		return ErrAlreadyInRoom
	}
	if s.phase != PhaseAwaitingOpponent {
		return ErrRoomFull
	}
	s.seats[1] = &Seat{ID: id}
	s.phase = PhaseSetup
	s.LastActivityAt = now
	return nil
}

// CanSubmit reports whether id may submit a fleet now, without looking at
// the fleet itself.
func (s *Session) CanSubmit(id PlayerID) error {
	seat := s.seat(id)
	switch {
	case seat == nil:
		return ErrNotParticipant
	case s.phase != PhaseSetup:
		return ErrWrongPhase
	case seat.Ready:
		return ErrAlreadyReady
	}
	return nil
}

// SubmitBoard stores a participant's fleet after validating it. started is
// true when this submission completed setup and battle began.
func (s *Session) SubmitBoard(id PlayerID, b board.Board, now time.Time) (started bool, err error) {
	if err := s.CanSubmit(id); err != nil {
		return false, err
	}
	seat := s.seat(id)
	if err := board.ValidateFleet(&b); err != nil {
		return false, err
	}

	seat.Board = &b
	seat.Ready = true
	s.LastActivityAt = now

	if s.seats[0].Ready && s.seats[1].Ready {
		s.phase = PhaseBattle
		return true, nil
	}
	return false, nil
}

// Shoot resolves a shot by id against the opponent's board. A hit keeps the
// turn, a miss passes it. Sinking the last ship finishes the match.
func (s *Session) Shoot(id PlayerID, x, y int, now time.Time) (*ShotOutcome, error) {
	if s.phase != PhaseBattle {
		return nil, ErrWrongPhase
	}
	if !s.IsParticipant(id) {
		return nil, ErrNotParticipant
	}
	if s.turn != id {
		return nil, ErrOutOfTurn
	}
	victim, _ := s.Opponent(id)
	target := s.seat(victim).Board

	hit, err := board.ResolveShot(target, x, y)
	if err != nil {
		return nil, fmt.Errorf("shot at (%d,%d): %w", x, y, err)
	}

	out := &ShotOutcome{
		Shooter: id,
		Victim:  victim,
		Target:  board.Coord{X: x, Y: y},
		Hit:     hit,
	}
	if hit {
		out.Sunk = board.DetectSunk(target, out.Target)
		board.ApplySunk(target, out.Sunk)
	} else {
		s.turn = victim
	}
	out.NextTurn = s.turn
	s.LastActivityAt = now

	if target.Remaining() == 0 {
		s.phase = PhaseFinished
		out.GameOver = true
		out.Winner = id
	}
	return out, nil
}

// Leave ends the match because id left or disconnected. The opponent, if
// any, is returned as winner.
func (s *Session) Leave(id PlayerID, now time.Time) (winner PlayerID, hasWinner bool, err error) {
	if !s.IsParticipant(id) {
		return "", false, ErrNotParticipant
	}
	if s.phase == PhaseFinished {
		return "", false, ErrWrongPhase
	}
	winner, hasWinner = s.Opponent(id)
	s.phase = PhaseFinished
	s.LastActivityAt = now
	return winner, hasWinner, nil
}

// Expire finishes the match without a winner.
func (s *Session) Expire(now time.Time) {
	s.phase = PhaseFinished
	s.LastActivityAt = now
}

// PlayerSnapshot is the public view of one seat.
type PlayerSnapshot struct {
	ID        PlayerID `json:"id"`
	Creator   bool     `json:"creator"`
	Ready     bool     `json:"ready"`
	Remaining int      `json:"remaining_ship_cells"`
	Board     [][]int  `json:"board,omitempty"`
}

// Snapshot is a read-only view of a session that never reveals untouched
// ship cells.
type Snapshot struct {
	Code           string           `json:"room_code"`
	Phase          Phase            `json:"phase"`
	Turn           PlayerID         `json:"turn,omitempty"`
	Players        []PlayerSnapshot `json:"players"`
	CreatedAt      time.Time        `json:"created_at"`
	LastActivityAt time.Time        `json:"last_activity_at"`
}

// Snapshot captures the session state. When withBoards is set, each
// submitted board is included in masked form.
func (s *Session) Snapshot(withBoards bool) Snapshot {
	snap := Snapshot{
		Code:           s.Code,
		Phase:          s.phase,
		Players:        make([]PlayerSnapshot, 0, 2),
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
	}
	if s.phase == PhaseBattle {
		snap.Turn = s.turn
	}
	for i, seat := range s.seats {
		if seat == nil {
			continue
		}
		ps := PlayerSnapshot{ID: seat.ID, Creator: i == 0, Ready: seat.Ready}
		if seat.Board != nil {
			ps.Remaining = seat.Board.Remaining()
			if withBoards {
				masked := seat.Board.Masked()
				ps.Board = masked.Rows()
			}
		}
		snap.Players = append(snap.Players, ps)
	}
	return snap
}
