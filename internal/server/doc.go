// Package server implements the MCP (Model Context Protocol) server for image
// patch sampling.
//
// This package provides a JSON-RPC 2.0 server that exposes patch placement and
// extraction through the MCP protocol, so that MCP clients can cut fixed-size
// patches out of images and receive them as PNGs, tensors or per-patch
// features.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_evict: Drop one or all images from the cache
//
// Patch Operations:
//   - patch_plan: Resolve patch rectangles without reading pixels
//   - patch_extract: Extract patches and convert each one to a payload
//     (png, tensor, luminance, color, edges or ocr)
//   - patch_overlay: Draw the planned patches over the image
//
// All patch tools share the placement arguments: patch width and height, a
// method (uniform, random, grid or origins), and an optional mask rectangle
// or centered shrink factor restricting where patches may be placed.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, so planning and then
// extracting from the same file decodes it once. A file that changes on disk
// is decoded again; image_evict frees cached images explicitly.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Individual patches that cannot be extracted do not fail the call; they are
// listed under "failures" next to the patches that succeeded.
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	cfg, err := server.ConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(cfg).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
