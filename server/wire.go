package server

import (
	"fmt"

	"abalone/game"
)

// stateResponse is the wire form of the running game.
type stateResponse struct {
	Board       [][]int8 `json:"board"`
	BlackToMove bool     `json:"black_to_move"`
	Turn        int      `json:"turn"`
	Ended       bool     `json:"ended"`
	Outcome     string   `json:"outcome"`
	BlackLoss   int      `json:"black_loss"`
	WhiteLoss   int      `json:"white_loss"`
}

type coordDTO struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type movePayload struct {
	Board [][]int8 `json:"board"`
}

type moveResponse struct {
	State   stateResponse `json:"state"`
	Reply   [][]int8      `json:"reply,omitempty"`
	Changed []coordDTO    `json:"changed,omitempty"`
}

type newGamePayload struct {
	Board [][]int8 `json:"board,omitempty"`
}

type assistPayload struct {
	Coords []coordDTO `json:"coords"`
}

type assistMove struct {
	DR    int      `json:"dr"`
	DC    int      `json:"dc"`
	Board [][]int8 `json:"board"`
}

type assistResponse struct {
	Moves []assistMove `json:"moves"`
}

func boardToRows(board game.Board) [][]int8 {
	rows := make([][]int8, game.Size)
	for r := 0; r < game.Size; r++ {
		rows[r] = make([]int8, game.Size)
		copy(rows[r], board[r][:])
	}
	return rows
}

func rowsToBoard(rows [][]int8) (game.Board, error) {
	var board game.Board
	if len(rows) != game.Size {
		return board, fmt.Errorf("expected %d rows, got %d", game.Size, len(rows))
	}
	for r, row := range rows {
		if len(row) != game.Size {
			return board, fmt.Errorf("row %d: expected %d cells, got %d", r, game.Size, len(row))
		}
		copy(board[r][:], row)
	}
	return board, nil
}

func coordsToDTO(coords []game.Coord) []coordDTO {
	dtos := make([]coordDTO, len(coords))
	for i, coord := range coords {
		dtos[i] = coordDTO{Row: coord.Row, Col: coord.Col}
	}
	return dtos
}

func coordsFromDTO(dtos []coordDTO) []game.Coord {
	coords := make([]game.Coord, len(dtos))
	for i, dto := range dtos {
		coords[i] = game.Coord{Row: dto.Row, Col: dto.Col}
	}
	return coords
}
