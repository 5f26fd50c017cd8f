package mcpserver

import (
	"context"
	"fmt"

	"canva-clone/core"
	"canva-clone/design"

	"github.com/mark3labs/mcp-go/mcp"
)

type elementSummary struct {
	ID     string    `json:"id"`
	Type   core.Kind `json:"type"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	ZIndex int       `json:"zIndex"`
	Label  string    `json:"label,omitempty"`
}

func summarize(el core.Element) elementSummary {
	sum := elementSummary{
		ID: el.ID, Type: el.Kind,
		X: el.X, Y: el.Y, Width: el.Width, Height: el.Height,
		ZIndex: el.ZIndex,
	}
	switch {
	case el.Text != nil:
		sum.Label = el.Text.Content
	case el.Shape != nil:
		sum.Label = string(el.Shape.ShapeType)
	case el.Image != nil:
		sum.Label = el.Image.Source
	}
	return sum
}

func (s *Server) registerElementTools() {
	s.mcp.AddTool(mcp.NewTool("list_elements",
		mcp.WithDescription("List the elements of the open design with their ids, types, positions and stacking order"),
	), s.handleListElements)

	s.mcp.AddTool(mcp.NewTool("add_element",
		mcp.WithDescription("Add a text, shape or image element. The new element is selected and placed on top."),
		mcp.WithString("type", mcp.Description("Element type: text, shape, image"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("X position")),
		mcp.WithNumber("y", mcp.Description("Y position")),
		mcp.WithNumber("width", mcp.Description("Width (minimum 10)")),
		mcp.WithNumber("height", mcp.Description("Height (minimum 10)")),
		mcp.WithNumber("rotation", mcp.Description("Rotation in degrees")),
		mcp.WithString("propsJSON", mcp.Description(`Type-specific properties as JSON (optional). text: {"content","fontFamily","fontSize","color","bold","italic","underline","textAlign"}; shape: {"shapeType","fill","stroke","strokeWidth","borderRadius","opacity"}; image: {"source","opacity"}`)),
	), s.handleAddElement)

	s.mcp.AddTool(mcp.NewTool("update_element",
		mcp.WithDescription("Update an element. Only the given properties change."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("patchJSON", mcp.Description(`JSON patch, e.g. {"x":10,"shape":{"fill":"#ff0000"}}`), mcp.Required()),
	), s.handleUpdateElement)

	s.mcp.AddTool(mcp.NewTool("delete_element",
		mcp.WithDescription("Remove an element"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteElement)

	s.mcp.AddTool(mcp.NewTool("move_element",
		mcp.WithDescription("Move an element by an offset"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("dx", mcp.Description("Horizontal offset"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Vertical offset"), mcp.Required()),
	), s.handleMoveElement)

	s.mcp.AddTool(mcp.NewTool("resize_element",
		mcp.WithDescription("Resize an element, either to an explicit size or by dragging one of its eight handles"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("New width (without handle)")),
		mcp.WithNumber("height", mcp.Description("New height (without handle)")),
		mcp.WithString("handle", mcp.Description("Handle: top-left, top, top-right, right, bottom-right, bottom, bottom-left, left (optional)")),
		mcp.WithNumber("dx", mcp.Description("Handle drag offset X")),
		mcp.WithNumber("dy", mcp.Description("Handle drag offset Y")),
	), s.handleResizeElement)

	s.mcp.AddTool(mcp.NewTool("select_element",
		mcp.WithDescription("Select an element. With multi the element is toggled in or out of the selection."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithBoolean("multi", mcp.Description("Toggle instead of replacing the selection")),
	), s.handleSelectElement)

	s.mcp.AddTool(mcp.NewTool("bring_to_front",
		mcp.WithDescription("Move an element above all others"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
	), s.handleBringToFront)

	s.mcp.AddTool(mcp.NewTool("send_to_back",
		mcp.WithDescription("Move an element below all others"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
	), s.handleSendToBack)

	s.mcp.AddTool(mcp.NewTool("duplicate_element",
		mcp.WithDescription("Copy an element, offset by 20 on both axes"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
	), s.handleDuplicateElement)
}

func (s *Server) handleListElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.active()
	if err != nil {
		return nil, err
	}
	snap := sess.Snapshot()
	out := make([]elementSummary, 0, len(snap.Elements))
	for _, el := range snap.Elements {
		out = append(out, summarize(el))
	}
	return jsonResult(out)
}

func (s *Server) handleAddElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind, err := requireString(args, "type")
	if err != nil {
		return nil, err
	}
	in := core.ElementInput{
		Kind:     core.Kind(kind),
		X:        getFloat(args, "x", 0),
		Y:        getFloat(args, "y", 0),
		Width:    getFloat(args, "width", 100),
		Height:   getFloat(args, "height", 100),
		Rotation: getFloat(args, "rotation", 0),
	}
	switch in.Kind {
	case core.KindText:
		if getString(args, "propsJSON") != "" {
			props := core.DefaultTextProps()
			in.Text = &props
			err = decodeJSONArg(args, "propsJSON", in.Text)
		}
	case core.KindShape:
		if getString(args, "propsJSON") != "" {
			props := core.DefaultShapeProps()
			in.Shape = &props
			err = decodeJSONArg(args, "propsJSON", in.Shape)
		}
	case core.KindImage:
		in.Image = &core.ImageProps{Opacity: 1}
		err = decodeJSONArg(args, "propsJSON", in.Image)
	}
	if err != nil {
		return nil, err
	}

	var id string
	res, err := s.mutate(func(st *design.Store) error {
		var err error
		id, err = st.Add(in)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Content = append([]mcp.Content{mcp.TextContent{Type: "text", Text: fmt.Sprintf("Added element %s", id)}}, res.Content...)
	return res, nil
}

func (s *Server) handleUpdateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var p core.Patch
	if err := decodeJSONArg(args, "patchJSON", &p); err != nil {
		return nil, err
	}
	return s.mutate(func(st *design.Store) error {
		id, err := elementRef(st, args)
		if err != nil {
			return err
		}
		return st.Update(id, p)
	})
}

func (s *Server) handleDeleteElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(func(st *design.Store) error {
		id, err := elementRef(st, args)
		if err != nil {
			return err
		}
		st.Delete(id)
		return nil
	})
}

func (s *Server) handleMoveElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(func(st *design.Store) error {
		id, err := elementRef(st, args)
		if err != nil {
			return err
		}
		st.Move(id, getFloat(args, "dx", 0), getFloat(args, "dy", 0))
		return nil
	})
}

func (s *Server) handleResizeElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(func(st *design.Store) error {
		id, err := elementRef(st, args)
		if err != nil {
			return err
		}
		if h := getString(args, "handle"); h != "" {
			return st.ResizeByHandle(id, design.Handle(h), getFloat(args, "dx", 0), getFloat(args, "dy", 0))
		}
		el, _ := st.Element(id)
		st.Resize(id, getFloat(args, "width", el.Width), getFloat(args, "height", el.Height))
		return nil
	})
}

func (s *Server) handleSelectElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(func(st *design.Store) error {
		id, err := elementRef(st, args)
		if err != nil {
			return err
		}
		st.Select(id, getBool(args, "multi"))
		return nil
	})
}

func (s *Server) handleBringToFront(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(func(st *design.Store) error {
		id, err := elementRef(st, args)
		if err != nil {
			return err
		}
		st.BringToFront(id)
		return nil
	})
}

func (s *Server) handleSendToBack(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(func(st *design.Store) error {
		id, err := elementRef(st, args)
		if err != nil {
			return err
		}
		st.SendToBack(id)
		return nil
	})
}

func (s *Server) handleDuplicateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(func(st *design.Store) error {
		id, err := elementRef(st, args)
		if err != nil {
			return err
		}
		st.Duplicate(id)
		return nil
	})
}
