package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Errors returned by ParseInput, wrapped in an *InputError.
var (
	ErrInvalidCharacters = errors.New("only numbers and commas are allowed")
	ErrInvalidNumber     = errors.New("not a valid number")
	ErrCellBelowOne      = errors.New("cell numbers must be at least 1")
	ErrCellsOutOfRange   = errors.New("cell numbers exceed display size")
)

// InputError describes rejected user input.
type InputError struct {
	Err   error
	Value string // offending item for ErrInvalidNumber
	Cells []int  // offending numbers for ErrCellsOutOfRange
	Max   int
}

func (e *InputError) Error() string {
	switch {
	case errors.Is(e.Err, ErrInvalidNumber):
		return fmt.Sprintf("%q is %v", e.Value, e.Err)
	case errors.Is(e.Err, ErrCellsOutOfRange):
		return fmt.Sprintf("cell numbers %s exceed display size (%d cells)", CellList(e.Cells), e.Max)
	}
	return e.Err.Error()
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// ParseInput validates the ignored cells typed by a user for a display of
// maxCells cells. maxCells of 0 disables the range check. An empty input
// clears the list.
func ParseInput(text string, maxCells int) (CellList, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return CellList{}, nil
	}
	if strings.ContainsFunc(text, isDisallowed) {
		return nil, &InputError{Err: ErrInvalidCharacters}
	}

	var cells, outOfRange []int
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, &InputError{Err: ErrInvalidNumber, Value: part}
		}
		if n < 1 {
			return nil, &InputError{Err: ErrCellBelowOne}
		}
		if maxCells > 0 && n > maxCells {
			outOfRange = append(outOfRange, n)
			continue
		}
		cells = append(cells, n)
	}
	if len(outOfRange) > 0 {
		return nil, &InputError{Err: ErrCellsOutOfRange, Cells: outOfRange, Max: maxCells}
	}
	return NewCellList(cells...), nil
}

func isDisallowed(r rune) bool {
	return !(r >= '0' && r <= '9') && r != ',' && r != ' '
}
