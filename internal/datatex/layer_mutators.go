package datatex

import (
	"github.com/go-gl/mathgl/mgl32"

	"datatex/internal/config"
	"datatex/internal/profiling"
)

// Per-object mutators. Each one writes the full multi-byte record region
// into the CPU mirror before any upload is considered, keeps the aggregate
// gating counters in sync, and routes the GPU upload through the
// immediate-or-deferred policy. Mutators are transition notifications: call
// them when the flag actually changes, with the object's complete new flags
// word.

// noteWrite applies the upload policy for one mirror region that has just
// been written: per-texel upload while the per-frame update count is under
// the threshold, otherwise the texture is marked dirty and uploaded whole
// at the next flush. N small driver calls cost more than one bulk upload
// once N passes the threshold.
func (l *Layer) noteWrite(tex *DataTexture, x, y, w, h int, dirty *bool) {
	if l.deferredActive {
		*dirty = true
		return
	}
	l.numUpdatesInFrame++
	if l.numUpdatesInFrame > config.GetDeferredFlagsThreshold() {
		logger().Debug("deferred flag mode escalated", "updates", l.numUpdatesInFrame)
		l.deferredActive = true
		*dirty = true
		return
	}
	tex.WriteSub(x, y, w, h)
}

// BeginDeferredFlags opens an explicit bulk-update transaction: every
// mutator until CommitDeferredFlags writes only the CPU mirror. Use around
// operations touching many objects, e.g. frustum culling sweeps.
func (l *Layer) BeginDeferredFlags() error {
	if !l.finalized {
		return ErrNotFinalized
	}
	l.deferredActive = true
	return nil
}

// CommitDeferredFlags uploads every dirty texture once and returns to
// immediate mode.
func (l *Layer) CommitDeferredFlags() error {
	if !l.finalized {
		return ErrNotFinalized
	}
	if !l.deferredActive {
		return nil
	}
	defer profiling.Track("layer.CommitDeferredFlags")()
	if l.attrsDirty {
		l.state.ObjectAttrs.WriteAll()
		l.attrsDirty = false
	}
	if l.matricesDirty {
		l.state.ObjectMatrices.WriteAll()
		l.matricesDirty = false
	}
	if l.offsetsDirty {
		l.state.ObjectOffsets.WriteAll()
		l.offsetsDirty = false
	}
	l.deferredActive = false
	return nil
}

// Flush is the frame-start hook: it commits any deferred writes so they are
// visible to the GPU before this frame's draw calls, and resets the
// per-frame update counter.
func (l *Layer) Flush() error {
	if err := l.CommitDeferredFlags(); err != nil {
		return err
	}
	l.numUpdatesInFrame = 0
	return nil
}

// setFlags recomputes the four render-pass selector bytes and the clip byte
// for every sub-portion of a portion and schedules their upload.
func (l *Layer) setFlags(p *portion, flags PortionFlags, transparent bool) {
	pass := PassBytes(flags, transparent)
	clip := byte(0)
	if flags&FlagClippable != 0 {
		clip = 1
	}
	tex := l.state.ObjectAttrs
	for _, sub := range p.subPortionIDs {
		rec := tex.Mirror()[sub*recordBytes:]
		copy(rec[recPassOff:recPassOff+4], pass[:])
		rec[recClipOff] = clip
		x, y := recordTexelOrigin(sub)
		// pass texel and clip texel are adjacent
		l.noteWrite(tex, x+2, y, 2, 1, &l.attrsDirty)
	}
}

func (l *Layer) applyFlags(id PortionID, flags PortionFlags, transparent bool, counter *int, bit PortionFlags) error {
	p, err := l.portionFor(id)
	if err != nil {
		return err
	}
	if counter != nil {
		if flags&bit != 0 {
			*counter++
		} else {
			*counter--
		}
	}
	l.setFlags(p, flags, transparent)
	return nil
}

// SetVisible updates an object's visibility.
func (l *Layer) SetVisible(id PortionID, flags PortionFlags, transparent bool) error {
	return l.applyFlags(id, flags, transparent, &l.numVisible, FlagVisible)
}

// SetHighlighted updates an object's highlight state.
func (l *Layer) SetHighlighted(id PortionID, flags PortionFlags, transparent bool) error {
	return l.applyFlags(id, flags, transparent, &l.numHighlighted, FlagHighlighted)
}

// SetXRayed updates an object's xray state.
func (l *Layer) SetXRayed(id PortionID, flags PortionFlags, transparent bool) error {
	return l.applyFlags(id, flags, transparent, &l.numXRayed, FlagXRayed)
}

// SetSelected updates an object's selection state.
func (l *Layer) SetSelected(id PortionID, flags PortionFlags, transparent bool) error {
	return l.applyFlags(id, flags, transparent, &l.numSelected, FlagSelected)
}

// SetEdges updates an object's edge-emphasis state.
func (l *Layer) SetEdges(id PortionID, flags PortionFlags, transparent bool) error {
	return l.applyFlags(id, flags, transparent, &l.numEdgesOn, FlagEdges)
}

// SetClippable updates whether section planes apply to an object.
func (l *Layer) SetClippable(id PortionID, flags PortionFlags) error {
	return l.applyFlags(id, flags, false, &l.numClippable, FlagClippable)
}

// SetCulled updates an object's cull state.
func (l *Layer) SetCulled(id PortionID, flags PortionFlags, transparent bool) error {
	return l.applyFlags(id, flags, transparent, &l.numCulled, FlagCulled)
}

// SetPickable updates whether an object participates in picking.
func (l *Layer) SetPickable(id PortionID, flags PortionFlags, transparent bool) error {
	return l.applyFlags(id, flags, transparent, &l.numPickable, FlagPickable)
}

// SetTransparent moves an object between the opaque and transparent color
// passes.
func (l *Layer) SetTransparent(id PortionID, flags PortionFlags, transparent bool) error {
	p, err := l.portionFor(id)
	if err != nil {
		return err
	}
	if transparent {
		l.numTransparent++
	} else {
		l.numTransparent--
	}
	l.setFlags(p, flags, transparent)
	return nil
}

// SetColor rewrites an object's quantized RGBA color.
func (l *Layer) SetColor(id PortionID, color [4]uint8) error {
	p, err := l.portionFor(id)
	if err != nil {
		return err
	}
	tex := l.state.ObjectAttrs
	for _, sub := range p.subPortionIDs {
		rec := tex.Mirror()[sub*recordBytes:]
		copy(rec[recColorOff:recColorOff+4], color[:])
		x, y := recordTexelOrigin(sub)
		l.noteWrite(tex, x, y, 1, 1, &l.attrsDirty)
	}
	return nil
}

// SetOffset rewrites an object's world-space offset vector.
func (l *Layer) SetOffset(id PortionID, offset mgl32.Vec3) error {
	p, err := l.portionFor(id)
	if err != nil {
		return err
	}
	tex := l.state.ObjectOffsets
	for _, sub := range p.subPortionIDs {
		writeFloats(tex.Mirror(), sub*3, offset[:])
		l.noteWrite(tex, sub%matrixTexWidth, sub/matrixTexWidth, 1, 1, &l.offsetsDirty)
	}
	return nil
}

// SetMatrix rewrites an object's instancing matrix.
func (l *Layer) SetMatrix(id PortionID, m mgl32.Mat4) error {
	p, err := l.portionFor(id)
	if err != nil {
		return err
	}
	tex := l.state.ObjectMatrices
	for _, sub := range p.subPortionIDs {
		writeFloats(tex.Mirror(), sub*16, m[:])
		texel := sub * 4
		l.noteWrite(tex, texel%matrixTexWidth, texel/matrixTexWidth, 4, 1, &l.matricesDirty)
	}
	return nil
}
