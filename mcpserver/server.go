// Package mcpserver lets AI agents edit designs through MCP tools. Tools act
// on the active session, chosen with open_design.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"canva-clone/core"
	"canva-clone/design"
	"canva-clone/session"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

var errNoActiveDesign = errors.New("no design open (use open_design first)")

type Server struct {
	mcp   *server.MCPServer
	m     *session.Manager
	owner string

	mu       sync.Mutex
	activeID string
}

// New creates the MCP server. Sessions it opens belong to owner.
func New(m *session.Manager, owner string) *Server {
	s := &Server{m: m, owner: owner}
	s.mcp = server.NewMCPServer(
		"canva-clone",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerSessionTools()
	s.registerElementTools()
	s.registerCanvasTools()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	logrus.Info("Starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

func (s *Server) active() (*session.Session, error) {
	s.mu.Lock()
	id := s.activeID
	s.mu.Unlock()
	if id == "" {
		return nil, errNoActiveDesign
	}
	return s.m.Get(s.owner, id)
}

func (s *Server) setActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// mutate runs fn on the active session and returns the new snapshot.
func (s *Server) mutate(fn func(*design.Store) error) (*mcp.CallToolResult, error) {
	sess, err := s.active()
	if err != nil {
		return nil, err
	}
	snap, err := sess.Do(fn)
	if err != nil {
		return nil, err
	}
	return jsonResult(snap)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func getString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func requireString(args map[string]any, key string) (string, error) {
	v := getString(args, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func getBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// decodeJSONArg unmarshals an optional JSON-encoded argument into target.
func decodeJSONArg(args map[string]any, key string, target any) error {
	raw := getString(args, key)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	return nil
}

func (s *Server) registerSessionTools() {
	s.mcp.AddTool(mcp.NewTool("open_design",
		mcp.WithDescription("Open a design for editing. With key, the stored design is loaded; otherwise a new design is created. The opened design becomes the target of all other tools."),
		mcp.WithString("key", mcp.Description("Storage key of a saved design (optional)")),
		mcp.WithString("name", mcp.Description("Name of a new design (optional)")),
		mcp.WithNumber("width", mcp.Description("Canvas width of a new design (optional, default 800)")),
		mcp.WithNumber("height", mcp.Description("Canvas height of a new design (optional, default 600)")),
	), s.handleOpenDesign)

	s.mcp.AddTool(mcp.NewTool("get_design",
		mcp.WithDescription("Return the open design: canvas, elements, selection and undo state"),
	), s.handleGetDesign)

	s.mcp.AddTool(mcp.NewTool("save_design",
		mcp.WithDescription("Save the open design and record it in the recent designs list"),
	), s.handleSaveDesign)

	s.mcp.AddTool(mcp.NewTool("load_design",
		mcp.WithDescription("Replace the open design with a stored one"),
		mcp.WithString("key", mcp.Description("Storage key (optional, defaults to the current design)")),
	), s.handleLoadDesign)

	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last element change"),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone element change"),
	), s.handleRedo)
}

func (s *Server) handleOpenDesign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, err := s.m.Open(ctx, s.owner, session.OpenRequest{
		Key:    getString(args, "key"),
		Name:   getString(args, "name"),
		Width:  getFloat(args, "width", 0),
		Height: getFloat(args, "height", 0),
	})
	if err != nil {
		return nil, err
	}
	s.setActive(sess.ID())
	return jsonResult(map[string]any{"session": sess.Info(), "snapshot": sess.Snapshot()})
}

func (s *Server) handleGetDesign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.active()
	if err != nil {
		return nil, err
	}
	return jsonResult(sess.Snapshot())
}

func (s *Server) handleSaveDesign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.active()
	if err != nil {
		return nil, err
	}
	summary, err := sess.Save(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"key": sess.Info().Key, "recent": summary})
}

func (s *Server) handleLoadDesign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.active()
	if err != nil {
		return nil, err
	}
	snap, err := sess.Load(ctx, getString(req.GetArguments(), "key"))
	if err != nil {
		return nil, err
	}
	return jsonResult(snap)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.mutate(func(st *design.Store) error {
		st.Undo()
		return nil
	})
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.mutate(func(st *design.Store) error {
		st.Redo()
		return nil
	})
}

func (s *Server) registerCanvasTools() {
	s.mcp.AddTool(mcp.NewTool("set_background",
		mcp.WithDescription("Set the canvas background colour"),
		mcp.WithString("color", mcp.Description("Colour, e.g. #ffffff"), mcp.Required()),
	), s.handleSetBackground)

	s.mcp.AddTool(mcp.NewTool("set_canvas_size",
		mcp.WithDescription("Resize the canvas"),
		mcp.WithNumber("width", mcp.Description("Width"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("Height"), mcp.Required()),
	), s.handleSetCanvasSize)

	s.mcp.AddTool(mcp.NewTool("clear_design",
		mcp.WithDescription("Remove every element and forget the undo history"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClearDesign)
}

func boolPtr(b bool) *bool { return &b }

func (s *Server) handleSetBackground(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	color, err := requireString(req.GetArguments(), "color")
	if err != nil {
		return nil, err
	}
	return s.mutate(func(st *design.Store) error {
		st.SetBackground(color)
		return nil
	})
}

func (s *Server) handleSetCanvasSize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(func(st *design.Store) error {
		d := st.Design()
		st.SetCanvasSize(getFloat(args, "width", d.Width), getFloat(args, "height", d.Height))
		return nil
	})
}

func (s *Server) handleClearDesign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.mutate(func(st *design.Store) error {
		st.Clear()
		return nil
	})
}

// elementRef returns the elementId argument and checks that the element
// exists in st.
func elementRef(st *design.Store, args map[string]any) (string, error) {
	id, err := requireString(args, "elementId")
	if err != nil {
		return "", err
	}
	if _, ok := st.Element(id); !ok {
		return "", fmt.Errorf("element %s: %w", id, core.ErrNotFound)
	}
	return id, nil
}
