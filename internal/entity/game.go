package entity

type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

// BoardSize - number of cells on the board, indexed 0..8 in row-major order.
const BoardSize = 9

type Board [BoardSize]Mark

// WinCombos - the eight winning triples: three rows, three columns and two diagonals.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type OutcomeKind int

const (
	InProgress OutcomeKind = iota
	Win
	Draw
)

// Outcome - derived result of a board, never stored.
type Outcome struct {
	Kind   OutcomeKind
	Winner Mark
	Line   [3]int
}

func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that Mark) String() string {
	return string(that)
}

func IsValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Outcome - evaluates the winning triples first, then checks for a full board.
func (that *Board) Outcome() Outcome {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Outcome{Kind: Win, Winner: a, Line: combo}
		}
	}

	if that.IsFull() {
		return Outcome{Kind: Draw}
	}

	return Outcome{Kind: InProgress}
}
