package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

const (
	VerbCreate = "CREATE"
	VerbList   = "LIST"
	VerbJoin   = "JOIN"
	VerbMove   = "MOVE"
)

// Command is one client line split into its verb and arguments.
type Command struct {
	Verb string
	Args []string
}

// Parse splits a client line on whitespace. Verbs are case-sensitive.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, apperror.ErrInvalidCommand
	}

	return Command{Verb: fields[0], Args: fields[1:]}, nil
}

// IsVerb reports whether word is one of the recognized command verbs.
func IsVerb(word string) bool {
	switch word {
	case VerbCreate, VerbList, VerbJoin, VerbMove:
		return true
	default:
		return false
	}
}

// ParseName validates the registration line. A name is a single token that is not a verb.
func ParseName(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) != 1 || IsVerb(fields[0]) {
		return "", apperror.ErrNameRequired
	}

	return fields[0], nil
}

// ParseCell converts a MOVE argument to a board index.
func ParseCell(arg string) (int, error) {
	cell, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidMove, arg)
	}

	if cell < 0 || cell > 8 {
		return 0, fmt.Errorf("%w: %d", apperror.ErrInvalidMove, cell)
	}

	return cell, nil
}
