package datatex

// Draw entry points, one per render pass. Each is a cheap no-op when its
// aggregate counter makes the pass vacuous, so fully hidden layers cost no
// GPU submission. The actual draw is delegated to the LayerRenderers
// implementation; layers without renderers are headless.

func (l *Layer) draw(frame *FrameContext, prog ProgramKind, pass RenderPass) {
	if !l.finalized || l.renderers == nil {
		return
	}
	l.renderers.DrawLayer(frame, l, prog, pass)
}

// allHidden gates every non-pick pass.
func (l *Layer) allHidden() bool {
	return l.numVisible == 0 || l.numCulled == len(l.portions)
}

// DrawColorOpaque renders the opaque color pass.
func (l *Layer) DrawColorOpaque(frame *FrameContext) {
	if l.allHidden() || l.numTransparent == len(l.portions) || l.numXRayed == len(l.portions) {
		return
	}
	l.draw(frame, ProgColor, PassColorOpaque)
}

// DrawColorTransparent renders the transparent color pass.
func (l *Layer) DrawColorTransparent(frame *FrameContext) {
	if l.allHidden() || l.numTransparent == 0 {
		return
	}
	l.draw(frame, ProgColor, PassColorTransparent)
}

// DrawDepth renders opaque geometry into the depth buffer.
func (l *Layer) DrawDepth(frame *FrameContext) {
	if l.allHidden() || l.numTransparent == len(l.portions) {
		return
	}
	l.draw(frame, ProgDepth, PassColorOpaque)
}

// DrawSilhouetteXRayed renders the xray silhouette pass.
func (l *Layer) DrawSilhouetteXRayed(frame *FrameContext) {
	if l.allHidden() || l.numXRayed == 0 {
		return
	}
	l.draw(frame, ProgSilhouette, PassSilhouetteXRayed)
}

// DrawSilhouetteHighlighted renders the highlight silhouette pass.
func (l *Layer) DrawSilhouetteHighlighted(frame *FrameContext) {
	if l.allHidden() || l.numHighlighted == 0 {
		return
	}
	l.draw(frame, ProgSilhouette, PassSilhouetteHighlighted)
}

// DrawSilhouetteSelected renders the selection silhouette pass.
func (l *Layer) DrawSilhouetteSelected(frame *FrameContext) {
	if l.allHidden() || l.numSelected == 0 {
		return
	}
	l.draw(frame, ProgSilhouette, PassSilhouetteSelected)
}

// DrawEdgesColorOpaque renders opaque per-object-color edges.
func (l *Layer) DrawEdgesColorOpaque(frame *FrameContext) {
	if l.allHidden() || l.numEdgesOn == 0 {
		return
	}
	l.draw(frame, ProgEdgesColor, PassEdgesColorOpaque)
}

// DrawEdgesColorTransparent renders transparent per-object-color edges.
func (l *Layer) DrawEdgesColorTransparent(frame *FrameContext) {
	if l.allHidden() || l.numEdgesOn == 0 || l.numTransparent == 0 {
		return
	}
	l.draw(frame, ProgEdgesColor, PassEdgesColorTransparent)
}

// DrawEdgesXRayed renders uniform-color edges of xrayed objects.
func (l *Layer) DrawEdgesXRayed(frame *FrameContext) {
	if l.allHidden() || l.numXRayed == 0 {
		return
	}
	l.draw(frame, ProgEdgesUniform, PassEdgesXRayed)
}

// DrawEdgesHighlighted renders uniform-color edges of highlighted objects.
func (l *Layer) DrawEdgesHighlighted(frame *FrameContext) {
	if l.allHidden() || l.numHighlighted == 0 {
		return
	}
	l.draw(frame, ProgEdgesUniform, PassEdgesHighlighted)
}

// DrawEdgesSelected renders uniform-color edges of selected objects.
func (l *Layer) DrawEdgesSelected(frame *FrameContext) {
	if l.allHidden() || l.numSelected == 0 {
		return
	}
	l.draw(frame, ProgEdgesUniform, PassEdgesSelected)
}

// DrawOcclusion renders occlusion-query geometry.
func (l *Layer) DrawOcclusion(frame *FrameContext) {
	if l.allHidden() {
		return
	}
	l.draw(frame, ProgOcclusion, PassColorOpaque)
}

// DrawPickMesh renders pick colors for GPU picking.
func (l *Layer) DrawPickMesh(frame *FrameContext) {
	if l.allHidden() || l.numPickable == 0 {
		return
	}
	l.draw(frame, ProgPickMesh, PassPick)
}

// DrawPickDepths renders encoded view-space depth for pick refinement.
func (l *Layer) DrawPickDepths(frame *FrameContext) {
	if l.allHidden() || l.numPickable == 0 {
		return
	}
	l.draw(frame, ProgPickDepth, PassPick)
}

// DrawSnapInit renders the snap seed pass.
func (l *Layer) DrawSnapInit(frame *FrameContext) {
	if l.allHidden() || l.numPickable == 0 {
		return
	}
	l.draw(frame, ProgSnapInit, PassPick)
}

// DrawSnapDepths renders vertex/edge snap depths.
func (l *Layer) DrawSnapDepths(frame *FrameContext) {
	if l.allHidden() || l.numPickable == 0 {
		return
	}
	l.draw(frame, ProgSnap, PassPick)
}
