//go:build js && wasm

package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/inamate/overlay3d/internal/camera"
	"github.com/inamate/overlay3d/internal/config"
	"github.com/inamate/overlay3d/internal/controls"
	"github.com/inamate/overlay3d/internal/document"
	"github.com/inamate/overlay3d/internal/drag"
	"github.com/inamate/overlay3d/internal/engine"
	"github.com/inamate/overlay3d/internal/export"
	"github.com/inamate/overlay3d/internal/model"
	"github.com/inamate/overlay3d/internal/state"
)

var (
	eng  *engine.Engine
	cfg  *config.Config
	base document.Document
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	base = document.Default(cfg)
	cam, err := base.NewCamera()
	if err != nil {
		slog.Error("build camera", "error", err)
		os.Exit(1)
	}
	strategy, err := base.DragStrategy()
	if err != nil {
		slog.Error("build drag strategy", "error", err)
		os.Exit(1)
	}
	eng = engine.NewEngine(engine.Options{
		Store:    state.NewStore(base.StateTransform(), base.AnimationClock()),
		Camera:   cam,
		Strategy: strategy,
	})

	// Create the engine API object
	overlayEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	overlayEngine.Set("loadModel", js.FuncOf(loadModel))
	overlayEngine.Set("useBox", js.FuncOf(useBox))
	overlayEngine.Set("setSurface", js.FuncOf(setSurface))
	overlayEngine.Set("setContainerSize", js.FuncOf(setContainerSize))
	overlayEngine.Set("setViewport", js.FuncOf(setViewport))
	overlayEngine.Set("setCameraMode", js.FuncOf(setCameraMode))
	overlayEngine.Set("setDragMode", js.FuncOf(setDragMode))
	overlayEngine.Set("setVideoTime", js.FuncOf(setVideoTime))
	overlayEngine.Set("setPosition", js.FuncOf(setPosition))
	overlayEngine.Set("setRotationDegrees", js.FuncOf(setRotationDegrees))
	overlayEngine.Set("setScale", js.FuncOf(setScale))
	overlayEngine.Set("setSpeed", js.FuncOf(setSpeed))
	overlayEngine.Set("setStartTime", js.FuncOf(setStartTime))
	overlayEngine.Set("toggleAnimation", js.FuncOf(toggleAnimation))
	overlayEngine.Set("pointerDown", js.FuncOf(pointerDown))
	overlayEngine.Set("pointerMove", js.FuncOf(pointerMove))
	overlayEngine.Set("pointerUp", js.FuncOf(pointerUp))
	overlayEngine.Set("lostPointerCapture", js.FuncOf(lostPointerCapture))
	overlayEngine.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← engine) ---
	overlayEngine.Set("render", js.FuncOf(render))
	overlayEngine.Set("hitTest", js.FuncOf(hitTest))
	overlayEngine.Set("getCorners", js.FuncOf(getCorners))
	overlayEngine.Set("getBoundingBox", js.FuncOf(getBoundingBox))
	overlayEngine.Set("getRect", js.FuncOf(getRect))
	overlayEngine.Set("takeDirtyRect", js.FuncOf(takeDirtyRect))
	overlayEngine.Set("getClockState", js.FuncOf(getClockState))
	overlayEngine.Set("getTransform", js.FuncOf(getTransform))
	overlayEngine.Set("getDragState", js.FuncOf(getDragState))
	overlayEngine.Set("exportBoundingBox", js.FuncOf(exportBoundingBox))

	// Register on global scope
	js.Global().Set("overlayEngine", overlayEngine)

	// Signal that WASM is ready
	js.Global().Set("overlayWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// elementCapturer captures pointers on a DOM element.
type elementCapturer struct {
	el js.Value
}

func (c elementCapturer) SetPointerCapture(id int) error {
	return c.call("setPointerCapture", id)
}

func (c elementCapturer) ReleasePointerCapture(id int) error {
	return c.call("releasePointerCapture", id)
}

// call converts a thrown JS exception into an error.
func (c elementCapturer) call(method string, id int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s(%d): %v", method, id, r)
		}
	}()
	c.el.Call(method, id)
	return nil
}

func pointerFromEvent(ev js.Value) drag.Pointer {
	return drag.Pointer{
		ID:        ev.Get("pointerId").Int(),
		ClientX:   ev.Get("clientX").Float(),
		ClientY:   ev.Get("clientY").Float(),
		MovementX: ev.Get("movementX").Float(),
		MovementY: ev.Get("movementY").Float(),
	}
}

func floatArg(args []js.Value, i int) (float64, bool) {
	if len(args) <= i || args[i].Type() != js.TypeNumber {
		return 0, false
	}
	return args[i].Float(), true
}

// --- Command Handlers ---

func loadModel(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult(fmt.Errorf("missing model bytes"))
	}
	data := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(data, args[0])

	name := "model.glb"
	if len(args) > 1 && args[1].Type() == js.TypeString {
		name = args[1].String()
	}
	m, err := model.Decode(bytes.NewReader(data), name, model.Options{
		MaxBytes: cfg.MaxModelBytes,
		Recenter: base.Model.Recenter,
	})
	if err != nil {
		slog.Error("load model", "name", name, "error", err)
		return errorResult(err)
	}
	eng.SetModel(m)
	return js.ValueOf(map[string]interface{}{"ok": true, "id": m.ID, "clips": len(m.Clips)})
}

func useBox(this js.Value, args []js.Value) interface{} {
	size, ok := floatArg(args, 0)
	if !ok || size <= 0 {
		size = 1
	}
	eng.SetModel(model.Box(size))
	return okResult()
}

func setSurface(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].IsNull() || args[0].IsUndefined() {
		eng.SetCapturer(nil)
		return nil
	}
	eng.SetCapturer(elementCapturer{el: args[0]})
	return nil
}

func setContainerSize(this js.Value, args []js.Value) interface{} {
	w, okW := floatArg(args, 0)
	h, okH := floatArg(args, 1)
	if !okW || !okH {
		return nil
	}
	eng.SetContainerSize(w, h)
	return nil
}

func setViewport(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return nil
	}
	eng.SetViewport(drag.Viewport{
		Left:   args[0].Float(),
		Top:    args[1].Float(),
		Width:  args[2].Float(),
		Height: args[3].Float(),
	})
	return nil
}

func setCameraMode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	mode, err := camera.ParseMode(args[0].String())
	if err != nil {
		return errorResult(err)
	}
	eng.Camera().SetMode(mode)
	return okResult()
}

func setDragMode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	mode, err := drag.ParseMode(args[0].String())
	if err != nil {
		return errorResult(err)
	}
	eng.SetDragMode(mode, base.Drag.Sensitivity)
	return okResult()
}

func setVideoTime(this js.Value, args []js.Value) interface{} {
	t, ok := floatArg(args, 0)
	if !ok {
		return nil
	}
	if err := eng.SetVideoTime(t); err != nil {
		return errorResult(err)
	}
	return nil
}

func setPosition(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	axis, err := controls.ParseAxis(args[0].String())
	if err != nil {
		return errorResult(err)
	}
	if err := controls.SetPositionAxis(eng.Store(), axis, args[1].Float()); err != nil {
		return errorResult(err)
	}
	return nil
}

func setRotationDegrees(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	axis, err := controls.ParseAxis(args[0].String())
	if err != nil {
		return errorResult(err)
	}
	if err := controls.SetRotationAxisDegrees(eng.Store(), axis, args[1].Float()); err != nil {
		return errorResult(err)
	}
	return nil
}

func setScale(this js.Value, args []js.Value) interface{} {
	v, ok := floatArg(args, 0)
	if !ok {
		return nil
	}
	if err := controls.SetScale(eng.Store(), v); err != nil {
		return errorResult(err)
	}
	return nil
}

func setSpeed(this js.Value, args []js.Value) interface{} {
	v, ok := floatArg(args, 0)
	if !ok {
		return nil
	}
	if err := controls.SetSpeed(eng.Store(), v); err != nil {
		return errorResult(err)
	}
	return nil
}

func setStartTime(this js.Value, args []js.Value) interface{} {
	v, ok := floatArg(args, 0)
	if !ok {
		return nil
	}
	if err := controls.SetStartTime(eng.Store(), v); err != nil {
		return errorResult(err)
	}
	return nil
}

func toggleAnimation(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(controls.ToggleAnimation(eng.Store()))
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	started, err := eng.PointerDown(pointerFromEvent(args[0]))
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(started)
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	moved, err := eng.PointerMove(pointerFromEvent(args[0]))
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(moved)
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.PointerUp(pointerFromEvent(args[0]))
	return nil
}

func lostPointerCapture(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.PointerCaptureLost(args[0].Get("pointerId").Int())
	return nil
}

func tick(this js.Value, args []js.Value) interface{} {
	dt, _ := floatArg(args, 0)
	return js.ValueOf(eng.Tick(dt))
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	x := args[0].Float()
	y := args[1].Float()
	return js.ValueOf(eng.HitTest(x, y))
}

func getCorners(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetCorners())
}

func getBoundingBox(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetBoundingBox())
}

func getRect(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetRect())
}

// takeDirtyRect returns the canvas region to clear before drawing the
// current commands.
func takeDirtyRect(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(engine.RectToJSON(eng.TakeDirtyRect()))
}

func getClockState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetClockState())
}

func getTransform(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetTransform())
}

func getDragState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDragState())
}

// exportBoundingBox returns the boundingBox.json contents for the frontend
// to offer as a download.
func exportBoundingBox(this js.Value, args []js.Value) interface{} {
	format := base.Export.Format
	if len(args) > 0 && args[0].Type() == js.TypeString {
		format = args[0].String()
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return errorResult(err)
	}
	data, err := eng.Export(f)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(map[string]interface{}{
		"fileName": export.DefaultFileName,
		"data":     string(data),
	})
}
