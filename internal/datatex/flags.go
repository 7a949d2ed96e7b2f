package datatex

// PortionFlags is the packed per-object state word maintained by callers and
// handed to every flag mutator.
type PortionFlags uint16

const (
	FlagVisible PortionFlags = 1 << iota
	FlagCulled
	FlagPickable
	FlagClippable
	FlagEdges
	FlagXRayed
	FlagHighlighted
	FlagSelected
)

// RenderPass selects one draw purpose. The value is written into the
// per-object attribute texture and compared against a uniform in every
// generated shader, so visibility logic is precomputed on write rather than
// recomputed per fragment.
type RenderPass uint8

const (
	PassNotRendered RenderPass = iota
	PassColorOpaque
	PassColorTransparent
	PassSilhouetteHighlighted
	PassSilhouetteSelected
	PassSilhouetteXRayed
	PassEdgesColorOpaque
	PassEdgesColorTransparent
	PassEdgesHighlighted
	PassEdgesSelected
	PassEdgesXRayed
	PassPick
)

// PassBytes derives the four render-pass selector bytes (color, silhouette,
// edges, pick) from an object's flags and transparency. Pure function; the
// result is the single source of truth the shaders branch on.
func PassBytes(f PortionFlags, transparent bool) [4]byte {
	visible := f&FlagVisible != 0
	culled := f&FlagCulled != 0
	xrayed := f&FlagXRayed != 0
	highlighted := f&FlagHighlighted != 0
	selected := f&FlagSelected != 0
	edges := f&FlagEdges != 0
	pickable := f&FlagPickable != 0

	var colorPass RenderPass
	switch {
	case !visible || culled || xrayed:
		colorPass = PassNotRendered
	case transparent:
		colorPass = PassColorTransparent
	default:
		colorPass = PassColorOpaque
	}

	// Selected wins over highlighted wins over xrayed.
	var silhouettePass RenderPass
	switch {
	case !visible || culled:
		silhouettePass = PassNotRendered
	case selected:
		silhouettePass = PassSilhouetteSelected
	case highlighted:
		silhouettePass = PassSilhouetteHighlighted
	case xrayed:
		silhouettePass = PassSilhouetteXRayed
	default:
		silhouettePass = PassNotRendered
	}

	var edgesPass RenderPass
	switch {
	case !visible || culled:
		edgesPass = PassNotRendered
	case selected:
		edgesPass = PassEdgesSelected
	case highlighted:
		edgesPass = PassEdgesHighlighted
	case xrayed:
		edgesPass = PassEdgesXRayed
	case edges && transparent:
		edgesPass = PassEdgesColorTransparent
	case edges:
		edgesPass = PassEdgesColorOpaque
	default:
		edgesPass = PassNotRendered
	}

	var pickPass RenderPass
	if visible && pickable {
		pickPass = PassPick
	} else {
		pickPass = PassNotRendered
	}

	return [4]byte{byte(colorPass), byte(silhouettePass), byte(edgesPass), byte(pickPass)}
}
