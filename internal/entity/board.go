package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

type Mark string

const (
	MarkO Mark = "O"
	MarkX Mark = "X"

	EmptyCell Mark = ""
)

const BoardSize = 9

const rowSeparator = "-----------"

type Outcome int

const (
	InProgress Outcome = iota
	Draw
	Win
)

func (that Outcome) String() string {
	switch that {
	case Draw:
		return "draw"
	case Win:
		return "win"
	default:
		return "in_progress"
	}
}

// WinCombos lists the eight lines in detection order: rows, columns, diagonals.
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

// Board is a 3x3 grid. The zero value is an empty board.
type Board [BoardSize]Mark

// Set places mark at cell. A cell is never overwritten.
func (that *Board) Set(cell int, mark Mark) error {
	if cell < 0 || cell >= len(that) {
		return fmt.Errorf("%w: cell %d", apperror.ErrOutOfRange, cell)
	}

	if that[cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrPositionOccupied, cell)
	}

	that[cell] = mark

	return nil
}

// Evaluate reports the game result. The returned mark is only set for Win.
func (that *Board) Evaluate() (Outcome, Mark) {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Win, a
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range that {
		if cell == EmptyCell {
			return InProgress, EmptyCell
		}
	}

	return Draw, EmptyCell
}

// Moves returns the number of occupied cells.
func (that *Board) Moves() int {
	moves := 0
	for _, cell := range that {
		if cell != EmptyCell {
			moves++
		}
	}

	return moves
}

// Render returns the five text lines of the board: three rows split by separators.
func (that *Board) Render() []string {
	return []string{
		that.renderRow(0),
		rowSeparator,
		that.renderRow(3),
		rowSeparator,
		that.renderRow(6),
	}
}

func (that *Board) renderRow(start int) string {
	return fmt.Sprintf(" %s | %s | %s ", that.cell(start), that.cell(start+1), that.cell(start+2))
}

func (that *Board) cell(i int) string {
	if that[i] == EmptyCell {
		return " "
	}

	return string(that[i])
}
