// Package pkg provides the core libraries for Polarcoaster trace animation.
//
// # Overview
//
// Polarcoaster turns a query evaluation trace (a pre-order list of depths,
// one per query or rule event) into a proof tree, lays the tree out on a
// grid and runs a cart along rails in depth-first order, retracing each
// branch on the way back up. The pkg directory is organized into four areas:
//
//  1. Engine: [trace], [tree], [layout], [track], [cart] and [scene]
//  2. Rendering: [render] and its sink and nodelink subpackages
//  3. Orchestration: [pipeline] (load → build → render) and [config]
//  4. Infrastructure: [cache], [session], [observability] and [errors]
//
// # Architecture
//
// The typical data flow:
//
//	trace.json / trace.yaml
//	         ↓
//	    [trace] package (decode and validate events)
//	         ↓
//	    [tree] package (parents, edges and the cart walk)
//	         ↓
//	    [layout] + [track] packages (grid positions and rails)
//	         ↓
//	    [scene] package (frames for any cart state)
//	         ↓
//	    SVG/PNG/PDF/JSON/DOT output, terminal player or HTTP sessions
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/polarcoaster/pkg/render/sink"
//	    "github.com/matzehuels/polarcoaster/pkg/scene"
//	    "github.com/matzehuels/polarcoaster/pkg/trace"
//	)
//
//	tr, _ := trace.ImportFile("trace.json")
//	sc, _ := scene.Build(tr, scene.DefaultOptions())
//
//	a := sc.Animator()
//	st := a.Advance(a.Start(), 3*time.Second)
//	svg := sink.RenderSVG(sc.Export(), sink.WithCart(st), sink.WithText())
//
// Or run the whole pipeline with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Execute(ctx, "trace.json", pipeline.Options{
//	    Formats:  []string{"svg", "json"},
//	    ShowCart: true,
//	    At:       3 * time.Second,
//	})
//
// [trace]: github.com/matzehuels/polarcoaster/pkg/trace
// [tree]: github.com/matzehuels/polarcoaster/pkg/tree
// [layout]: github.com/matzehuels/polarcoaster/pkg/layout
// [track]: github.com/matzehuels/polarcoaster/pkg/track
// [cart]: github.com/matzehuels/polarcoaster/pkg/cart
// [scene]: github.com/matzehuels/polarcoaster/pkg/scene
// [render]: github.com/matzehuels/polarcoaster/pkg/render
// [pipeline]: github.com/matzehuels/polarcoaster/pkg/pipeline
// [config]: github.com/matzehuels/polarcoaster/pkg/config
// [cache]: github.com/matzehuels/polarcoaster/pkg/cache
// [session]: github.com/matzehuels/polarcoaster/pkg/session
// [observability]: github.com/matzehuels/polarcoaster/pkg/observability
// [errors]: github.com/matzehuels/polarcoaster/pkg/errors
package pkg
