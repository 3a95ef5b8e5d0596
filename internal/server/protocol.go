package server

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/gridkit/internal/grid"
	"github.com/lawnchairsociety/gridkit/internal/mapstore"
	"github.com/lawnchairsociety/gridkit/internal/pathfind"
	"github.com/lawnchairsociety/gridkit/internal/wfc"
)

// Error kinds reported to clients.
const (
	KindValidation    = "validation"
	KindContradiction = "contradiction"
	KindAuth          = "auth"
	KindNotFound      = "not_found"
	KindInternal      = "internal"
)

// Request is a single JSON query from a tooling client.
type Request struct {
	Op string `json:"op"`

	// auth
	Token string `json:"token,omitempty"`

	// path
	Grid  [][]int `json:"grid,omitempty"`
	Start *Coord  `json:"start,omitempty"`
	Goal  *Coord  `json:"goal,omitempty"`

	// generate
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Patterns  int       `json:"patterns,omitempty"`
	Adjacency [][]int   `json:"adjacency,omitempty"`
	Weights   []float64 `json:"weights,omitempty"`
	Wave      []uint8   `json:"wave,omitempty"`
	Seed      int64     `json:"seed,omitempty"`
	Save      bool      `json:"save,omitempty"`
	Name      string    `json:"name,omitempty"`

	// get_map / list_maps
	ID    string `json:"id,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// Coord mirrors grid.Point in the wire format.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Response is the reply to a single Request.
type Response struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`

	// path
	Path []Coord `json:"path,omitempty"`

	// generate / get_map
	Cells    []uint8 `json:"cells,omitempty"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Seed     int64   `json:"seed,omitempty"`
	Attempts int     `json:"attempts,omitempty"`
	MapID    string  `json:"map_id,omitempty"`

	// list_maps
	Maps []MapSummary `json:"maps,omitempty"`
}

// MapSummary describes a stored map without its cells.
type MapSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	NumPatterns int    `json:"num_patterns"`
	Seed        int64  `json:"seed"`
}

// handle dispatches a request to the matching kernel or store call.
func (s *Server) handle(req *Request) *Response {
	switch req.Op {
	case "path":
		return s.handlePath(req)
	case "generate":
		return s.handleGenerate(req)
	case "get_map":
		return s.handleGetMap(req)
	case "list_maps":
		return s.handleListMaps(req)
	default:
		return errorResponse(KindValidation, fmt.Sprintf("unknown op %q", req.Op))
	}
}

func (s *Server) handlePath(req *Request) *Response {
	if req.Start == nil || req.Goal == nil {
		return errorResponse(KindValidation, "path request requires start and goal")
	}
	if cells := gridCells(req.Grid); cells > s.config.Limits.MaxGridCells {
		return errorResponse(KindValidation,
			fmt.Sprintf("grid has %d cells, limit is %d", cells, s.config.Limits.MaxGridCells))
	}

	costs, err := grid.NewCostGrid(req.Grid)
	if err != nil {
		return errorResponse(KindValidation, err.Error())
	}

	path, err := pathfind.FindPath(costs,
		grid.Point{X: req.Start.X, Y: req.Start.Y},
		grid.Point{X: req.Goal.X, Y: req.Goal.Y})
	if err != nil {
		return errorResponse(KindValidation, err.Error())
	}

	coords := make([]Coord, len(path))
	for i, p := range path {
		coords[i] = Coord{X: p.X, Y: p.Y}
	}
	return &Response{OK: true, Path: coords}
}

func (s *Server) handleGenerate(req *Request) *Response {
	if req.Width*req.Height > s.config.Limits.MaxGridCells {
		return errorResponse(KindValidation,
			fmt.Sprintf("grid has %d cells, limit is %d", req.Width*req.Height, s.config.Limits.MaxGridCells))
	}

	rules := wfc.AdjacencyRules{}
	for pattern, neighbors := range req.Adjacency {
		rules[pattern] = neighbors
	}
	table, err := wfc.NewPropagationTable(req.Patterns, rules)
	if err != nil {
		return errorResponse(KindValidation, err.Error())
	}

	cfg := wfc.DefaultGenerateConfig(req.Width, req.Height, req.Seed)
	cfg.NumPatterns = req.Patterns
	cfg.Table = table
	cfg.Weights = req.Weights
	cfg.InitialWave = req.Wave
	cfg.MaxRetries = s.config.Limits.MaxGenerateRetries

	result, err := wfc.NewGenerator(cfg).Generate()
	if err != nil {
		if errors.Is(err, wfc.ErrContradiction) {
			return errorResponse(KindContradiction, err.Error())
		}
		return errorResponse(KindValidation, err.Error())
	}

	resp := &Response{
		OK:       true,
		Cells:    result.Cells,
		Width:    result.Width,
		Height:   result.Height,
		Seed:     result.Seed,
		Attempts: result.Attempts,
	}

	if req.Save && s.store != nil {
		stored := &mapstore.StoredMap{
			Name:        req.Name,
			Width:       result.Width,
			Height:      result.Height,
			NumPatterns: req.Patterns,
			Seed:        result.Seed,
			Cells:       result.Cells,
		}
		if err := s.store.SaveMap(stored); err != nil {
			return errorResponse(KindInternal, err.Error())
		}
		resp.MapID = stored.ID
	}

	return resp
}

func (s *Server) handleGetMap(req *Request) *Response {
	if s.store == nil {
		return errorResponse(KindInternal, "no map store configured")
	}
	m, err := s.store.GetMap(req.ID)
	if err != nil {
		if errors.Is(err, mapstore.ErrNotFound) {
			return errorResponse(KindNotFound, err.Error())
		}
		return errorResponse(KindInternal, err.Error())
	}
	return &Response{
		OK:     true,
		MapID:  m.ID,
		Cells:  m.Cells,
		Width:  m.Width,
		Height: m.Height,
		Seed:   m.Seed,
	}
}

func (s *Server) handleListMaps(req *Request) *Response {
	if s.store == nil {
		return errorResponse(KindInternal, "no map store configured")
	}
	maps, err := s.store.ListMaps(req.Limit)
	if err != nil {
		return errorResponse(KindInternal, err.Error())
	}

	summaries := make([]MapSummary, len(maps))
	for i, m := range maps {
		summaries[i] = MapSummary{
			ID:          m.ID,
			Name:        m.Name,
			Width:       m.Width,
			Height:      m.Height,
			NumPatterns: m.NumPatterns,
			Seed:        m.Seed,
		}
	}
	return &Response{OK: true, Maps: summaries}
}

func errorResponse(kind, msg string) *Response {
	return &Response{Error: msg, ErrorKind: kind}
}

func gridCells(rows [][]int) int {
	if len(rows) == 0 {
		return 0
	}
	return len(rows) * len(rows[0])
}
