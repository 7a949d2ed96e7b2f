package main

import (
	"fmt"
	"log"

	"github.com/go-gl/glfw/v3.3/glfw"

	"datatex/internal/config"
)

// inputState tracks which demo toggles are active.
type inputState struct {
	xrayed      bool
	highlighted bool
	selected    bool
	edges       bool
	hidden      bool
	culled      bool
}

// setupInput wires keyboard toggles that exercise the per-object state
// updates against the finalized layers.
func setupInput(window *glfw.Window, v *viewerLoop) {
	var st inputState
	n := v.gridSize

	// forEachBand applies fn to every object in grid rows [lo, hi)
	forEachBand := func(lo, hi int, fn func(id string) error) {
		for ix := lo; ix < hi && ix < n; ix++ {
			for iz := 0; iz < n; iz++ {
				if err := fn(fmt.Sprintf("box-%d-%d", ix, iz)); err != nil {
					log.Printf("input: %v", err)
					return
				}
			}
		}
	}

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape, glfw.KeyQ:
			w.SetShouldClose(true)

		case glfw.KeySpace:
			v.orbiting = !v.orbiting

		case glfw.KeyO:
			config.SetShowOverlay(!config.GetShowOverlay())

		case glfw.KeyX:
			st.xrayed = !st.xrayed
			forEachBand(n/3, 2*n/3, func(id string) error {
				return v.model.SetXRayed(id, st.xrayed)
			})

		case glfw.KeyH:
			st.highlighted = !st.highlighted
			forEachBand(0, n/4, func(id string) error {
				return v.model.SetHighlighted(id, st.highlighted)
			})

		case glfw.KeyT:
			st.selected = !st.selected
			forEachBand(3*n/4, n, func(id string) error {
				return v.model.SetSelected(id, st.selected)
			})

		case glfw.KeyE:
			st.edges = !st.edges
			forEachBand(0, n, func(id string) error {
				return v.model.SetEdges(id, st.edges)
			})

		case glfw.KeyV:
			st.hidden = !st.hidden
			forEachBand(n/2, n/2+1, func(id string) error {
				return v.model.SetVisible(id, !st.hidden)
			})

		case glfw.KeyC:
			st.culled = !st.culled
			if err := v.model.CullAll(st.culled); err != nil {
				log.Printf("input: %v", err)
			}

		case glfw.KeyUp:
			v.radius *= 0.9

		case glfw.KeyDown:
			v.radius *= 1.1
		}
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		v.radius *= 1 - yoff*0.1
		if v.radius < 2 {
			v.radius = 2
		}
	})
}
