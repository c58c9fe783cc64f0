package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/image-patches-mcp/internal/features"
	"github.com/ironsheep/image-patches-mcp/internal/imaging"
	"github.com/ironsheep/image-patches-mcp/internal/ocr"
	"github.com/ironsheep/image-patches-mcp/internal/patch"
)

// maxPatches caps the number of patches a single call may plan.
const maxPatches = 4096

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "patch_extract").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(context.Background(), params.Name, params.Arguments)
	if err != nil {
		if s.cfg.Debug {
			log.Printf("Tool %s failed: %v", params.Name, err)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Plans the patch placement and, for extraction, runs it
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_evict":
		return s.handleImageEvict(args)

	// Patch Operations
	case "patch_plan":
		return s.handlePatchPlan(args)
	case "patch_extract":
		return s.handlePatchExtract(ctx, args)
	case "patch_overlay":
		return s.handlePatchOverlay(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.cache.Info(a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.cache.Dimensions(a.Path)
}

// EvictResult reports what image_evict dropped from the cache.
type EvictResult struct {
	Evicted int `json:"evicted"`
	Cached  int `json:"cached"`
}

type imageEvictArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageEvict(args json.RawMessage) (interface{}, error) {
	var a imageEvictArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}

	res := &EvictResult{}
	if a.Path == "" {
		res.Evicted = s.cache.Clear()
	} else if s.cache.Evict(a.Path) {
		res.Evicted = 1
	}
	res.Cached = s.cache.Len()
	return res, nil
}

// === Patch Placement ===

// Rect is a rectangle in image coordinates; X2 and Y2 are exclusive.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func toRect(r image.Rectangle) Rect {
	return Rect{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

func (r Rect) rectangle() image.Rectangle {
	return image.Rectangle{Min: image.Pt(r.X1, r.Y1), Max: image.Pt(r.X2, r.Y2)}
}

type placementArgs struct {
	Path    string  `json:"path"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Method  string  `json:"method"`
	Count   int     `json:"count"`
	Columns int     `json:"columns"`
	Rows    int     `json:"rows"`
	Mask    *Rect   `json:"mask"`
	Shrink  float64 `json:"shrink"`
	Seed    *uint64 `json:"seed"`
	Origins []struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"origins"`
}

// plan resolves the placement described by a against an image.
func (s *Server) plan(a *placementArgs, bounds image.Rectangle) (*patch.Plan, error) {
	size := image.Pt(a.Width, a.Height)

	var mask image.Rectangle
	if a.Mask != nil {
		mask = a.Mask.rectangle()
		if mask == (image.Rectangle{}) {
			return nil, fmt.Errorf("%w: empty mask", patch.ErrInvalidMaskRegion)
		}
	}
	if a.Mask != nil && a.Shrink != 0 {
		return nil, errors.New("mask and shrink cannot be combined")
	}

	var (
		p   *patch.Plan
		err error
	)
	switch a.Method {
	case "", "uniform", "random":
		method := patch.Uniform
		if a.Method == "random" {
			method = patch.Random
		}
		if a.Count > maxPatches {
			return nil, fmt.Errorf("%w: %d exceeds the limit of %d", patch.ErrInvalidCount, a.Count, maxPatches)
		}
		if a.Shrink != 0 {
			p, err = patch.PlanShrunk(s.rng(a.Seed), bounds, size, a.Count, method, a.Shrink)
		} else {
			p, err = patch.PlanSampled(s.rng(a.Seed), bounds, size, a.Count, method, mask)
		}
	case "grid":
		if a.Shrink != 0 {
			if mask, err = patch.MaskRegion(bounds, a.Shrink); err != nil {
				return nil, err
			}
		}
		if int64(a.Columns)*int64(a.Rows) > maxPatches {
			return nil, fmt.Errorf("%w: %dx%d grid exceeds the limit of %d", patch.ErrInvalidCount, a.Columns, a.Rows, maxPatches)
		}
		p, err = patch.PlanGrid(bounds, size, patch.Grid{Columns: a.Columns, Rows: a.Rows}, mask)
	case "origins":
		if len(a.Origins) == 0 {
			return nil, fmt.Errorf("%w: no origins given", patch.ErrInvalidCount)
		}
		if len(a.Origins) > maxPatches {
			return nil, fmt.Errorf("%w: %d exceeds the limit of %d", patch.ErrInvalidCount, len(a.Origins), maxPatches)
		}
		origins := make([]image.Point, len(a.Origins))
		for i, o := range a.Origins {
			origins[i] = image.Pt(o.X, o.Y)
		}
		p, err = patch.PlanAt(bounds, size, origins)
	default:
		return nil, fmt.Errorf("%w: %q", patch.ErrUnknownMethod, a.Method)
	}
	if err != nil {
		return nil, err
	}

	if len(p.Origins) > maxPatches {
		return nil, fmt.Errorf("%w: plan has %d patches, limit is %d", patch.ErrInvalidCount, len(p.Origins), maxPatches)
	}
	return p, nil
}

// rng returns the generator for random placement. A per-call seed wins
// over the configured one; with neither, sampling is unseeded.
func (s *Server) rng(seed *uint64) *rand.Rand {
	switch {
	case seed != nil:
		return rand.New(rand.NewPCG(*seed, *seed))
	case s.cfg.Seeded:
		return rand.New(rand.NewPCG(s.cfg.Seed, s.cfg.Seed))
	default:
		return nil
	}
}

// loadPlan loads the image named in a and plans its patches.
func (s *Server) loadPlan(a *placementArgs) (imaging.Source, *patch.Plan, error) {
	src, err := s.cache.Source(a.Path)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.plan(a, src.Image().Bounds())
	if err != nil {
		return nil, nil, err
	}
	return src, p, nil
}

// PlanResult describes a patch placement.
type PlanResult struct {
	PatchWidth  int         `json:"patch_width"`
	PatchHeight int         `json:"patch_height"`
	Region      Rect        `json:"region"`
	Grid        *patch.Grid `json:"grid,omitempty"`
	Count       int         `json:"count"`
	Rects       []Rect      `json:"rects"`
}

func (s *Server) handlePatchPlan(args json.RawMessage) (interface{}, error) {
	var a placementArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, p, err := s.loadPlan(&a)
	if err != nil {
		return nil, err
	}

	res := &PlanResult{
		PatchWidth:  p.Size.X,
		PatchHeight: p.Size.Y,
		Region:      toRect(p.Region),
		Grid:        gridOf(p.Grid),
		Count:       len(p.Origins),
		Rects:       make([]Rect, 0, len(p.Origins)),
	}
	for _, r := range p.Rects() {
		res.Rects = append(res.Rects, toRect(r))
	}
	return res, nil
}

func gridOf(g patch.Grid) *patch.Grid {
	if g == (patch.Grid{}) {
		return nil
	}
	return &g
}

// === Patch Extraction ===

type patchExtractArgs struct {
	placementArgs
	Payload       string  `json:"payload"`
	Format        string  `json:"format"`
	Normalize     string  `json:"normalize"`
	ColorCount    int     `json:"color_count"`
	LowThreshold  int     `json:"low_threshold"`
	HighThreshold int     `json:"high_threshold"`
	Language      string  `json:"language"`
	MinConfidence float64 `json:"min_confidence"`
}

// ExtractedPatch is one patch of an extraction result.
type ExtractedPatch struct {
	Rect Rect        `json:"rect"`
	Data interface{} `json:"data"`
}

// PatchFailure describes a patch that was skipped.
type PatchFailure struct {
	Index int    `json:"index"`
	Rect  Rect   `json:"rect"`
	Error string `json:"error"`
}

// ExtractResult is the output of patch_extract.
type ExtractResult struct {
	Payload  string           `json:"payload"`
	Region   Rect             `json:"region"`
	Grid     *patch.Grid      `json:"grid,omitempty"`
	Count    int              `json:"count"`
	Patches  []ExtractedPatch `json:"patches"`
	Failures []PatchFailure   `json:"failures,omitempty"`
}

// TensorData is the tensor payload of one patch.
type TensorData struct {
	Shape  [3]int    `json:"shape"`
	Values []float32 `json:"values"`
}

// LuminanceData is the luminance payload of one patch.
type LuminanceData struct {
	Mean float64     `json:"mean"`
	Rows [][]float64 `json:"rows"`
}

func (s *Server) handlePatchExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a patchExtractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Payload == "" {
		a.Payload = "png"
	}
	format, err := imaging.ParsePixelFormat(a.Format)
	if err != nil {
		return nil, err
	}

	src, p, err := s.loadPlan(&a.placementArgs)
	if err != nil {
		return nil, err
	}
	opts := []patch.Option{patch.WithFormat(format), patch.WithWorkers(s.cfg.Workers)}

	switch a.Payload {
	case "png":
		ex := patch.New[*features.Encoded](features.PNG{}, opts...)
		return extract(ctx, ex, src, p, a.Payload, func(e *features.Encoded, _ image.Rectangle) interface{} {
			return e
		})

	case "tensor":
		var t features.Tensor
		switch a.Normalize {
		case "", "imagenet":
			t = features.NewImageNetTensor()
		case "none":
			t = features.Tensor{Std: [3]float32{1, 1, 1}}
		default:
			return nil, fmt.Errorf("unknown normalization: %s", a.Normalize)
		}
		ex := patch.New[[]float32](t, opts...)
		return extract(ctx, ex, src, p, a.Payload, func(v []float32, r image.Rectangle) interface{} {
			return &TensorData{Shape: [3]int{3, r.Dy(), r.Dx()}, Values: v}
		})

	case "luminance":
		ex := patch.New[*mat.Dense](features.Luminance{}, opts...)
		return extract(ctx, ex, src, p, a.Payload, func(m *mat.Dense, _ image.Rectangle) interface{} {
			rows, cols := m.Dims()
			data := &LuminanceData{
				Mean: mat.Sum(m) / float64(rows*cols),
				Rows: make([][]float64, rows),
			}
			for i := range data.Rows {
				data.Rows[i] = mat.Row(nil, i, m)
			}
			return data
		})

	case "color":
		ex := patch.New[*features.ColorStats](features.ColorSummary{Count: a.ColorCount}, opts...)
		return extract(ctx, ex, src, p, a.Payload, func(c *features.ColorStats, _ image.Rectangle) interface{} {
			return c
		})

	case "edges":
		conv := features.Edges{Low: a.LowThreshold, High: a.HighThreshold}
		ex := patch.New[*features.EdgeMap](conv, opts...)
		return extract(ctx, ex, src, p, a.Payload, func(e *features.EdgeMap, _ image.Rectangle) interface{} {
			return e
		})

	case "ocr":
		conv := ocr.Converter{Language: a.Language, MinConfidence: a.MinConfidence}
		ex := patch.New[*ocr.Text](conv, opts...)
		return extract(ctx, ex, src, p, a.Payload, func(t *ocr.Text, r image.Rectangle) interface{} {
			t.Offset(r.Min)
			return t
		})

	default:
		return nil, fmt.Errorf("unknown payload: %s", a.Payload)
	}
}

// extract runs a plan through ex and renders each payload for JSON.
func extract[P any](ctx context.Context, ex *patch.Extractor[P], src imaging.Source, p *patch.Plan, payload string, render func(P, image.Rectangle) interface{}) (*ExtractResult, error) {
	res, err := ex.Run(ctx, src, p)
	if err != nil {
		return nil, err
	}

	out := &ExtractResult{
		Payload: payload,
		Region:  toRect(res.Region),
		Grid:    gridOf(res.Grid),
		Count:   len(res.Patches),
		Patches: make([]ExtractedPatch, len(res.Patches)),
	}
	for i, data := range res.Patches {
		out.Patches[i] = ExtractedPatch{
			Rect: toRect(res.Rects[i]),
			Data: render(data, res.Rects[i]),
		}
	}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, PatchFailure{
			Index: f.Index,
			Rect:  toRect(f.Rect),
			Error: f.Err.Error(),
		})
	}
	return out, nil
}

// === Patch Overlay ===

type patchOverlayArgs struct {
	placementArgs
	ShowIndex *bool  `json:"show_index"`
	Color     string `json:"color"`
}

func (s *Server) handlePatchOverlay(args json.RawMessage) (interface{}, error) {
	var a patchOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	showIndex := true
	if a.ShowIndex != nil {
		showIndex = *a.ShowIndex
	}

	src, p, err := s.loadPlan(&a.placementArgs)
	if err != nil {
		return nil, err
	}
	img := src.Image()

	// Only outline the region when it is narrower than the image
	region := p.Region
	if region == img.Bounds() {
		region = image.Rectangle{}
	}
	return imaging.PatchOverlay(img, region, p.Rects(), showIndex, a.Color)
}
