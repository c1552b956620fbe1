package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ironsheep/circularity-mcp/internal/config"
	"github.com/ironsheep/circularity-mcp/internal/estimate"
	"github.com/ironsheep/circularity-mcp/internal/imaging"
	"github.com/ironsheep/circularity-mcp/internal/mask"
	"github.com/ironsheep/circularity-mcp/internal/paint"
)

// Version is reported in the initialize response.
const Version = "0.2.0"

// Server handles MCP protocol communication
type Server struct {
	cfg *config.Config
	log zerolog.Logger

	cache *imaging.ImageCache
	masks *mask.Store

	paintMu  sync.Mutex
	painters map[string]*paint.Painter

	rngMu sync.Mutex
	rng   *rand.Rand
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server. A nil cfg selects config.DefaultConfig.
func New(cfg *config.Config, log zerolog.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		cfg:      cfg,
		log:      log,
		cache:    imaging.NewImageCache(),
		masks:    mask.NewStore(),
		painters: make(map[string]*paint.Painter),
		rng:      estimate.NewRand(cfg.Seed),
	}
}

// Run serves requests from stdin and writes responses to stdout.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes one response
// per line to w until r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn().Err(err).Msg("failed to parse request")
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				s.log.Error().Err(err).Msg("failed to encode response")
			}
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error().Err(err).Msg("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.log.Debug().Str("method", req.Method).Interface("id", req.ID).Msg("request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "circularity-mcp",
				"version": Version,
			},
		},
	}
}

// random returns a generator for one tool call. A non-zero seed gives a
// private reproducible generator; otherwise the shared one is used under
// lock by the returned release function.
func (s *Server) random(seed uint64) (*rand.Rand, func()) {
	if seed != 0 {
		return estimate.NewRand(seed), func() {}
	}
	s.rngMu.Lock()
	return s.rng, s.rngMu.Unlock
}

// painter returns the painter for path, creating it on first use or when
// the superpixel settings change.
func (s *Server) painter(path string, segments int, compactness float64) (*paint.Painter, error) {
	if segments <= 0 {
		segments = s.cfg.Superpixels
	}
	if compactness <= 0 {
		compactness = s.cfg.Compactness
	}

	s.paintMu.Lock()
	defer s.paintMu.Unlock()
	if p, ok := s.painters[path]; ok && p.Segments() == segments && p.Compactness() == compactness {
		return p, nil
	}

	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	p, err := paint.New(img, segments, compactness)
	if err != nil {
		return nil, err
	}
	s.painters[path] = p
	s.log.Info().
		Str("path", path).
		Int("regions", p.Regions().Count).
		Msg("superpixels computed")
	return p, nil
}
