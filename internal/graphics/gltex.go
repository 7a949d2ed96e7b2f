package graphics

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"datatex/internal/datatex"
)

// GLTexWriter implements datatex.TexWriter on the current OpenGL context.
// Data textures are point-sampled, unfiltered, mip-less storage.
type GLTexWriter struct{}

// NewGLTexWriter returns a writer bound to the current GL context.
func NewGLTexWriter() *GLTexWriter { return &GLTexWriter{} }

func glFormat(f datatex.TexFormat) (internalFormat int32, format, xtype uint32, err error) {
	switch f {
	case datatex.FormatRGBA8UI:
		return gl.RGBA8UI, gl.RGBA_INTEGER, gl.UNSIGNED_BYTE, nil
	case datatex.FormatRGB8UI:
		return gl.RGB8UI, gl.RGB_INTEGER, gl.UNSIGNED_BYTE, nil
	case datatex.FormatRGB16UI:
		return gl.RGB16UI, gl.RGB_INTEGER, gl.UNSIGNED_SHORT, nil
	case datatex.FormatRGB32UI:
		return gl.RGB32UI, gl.RGB_INTEGER, gl.UNSIGNED_INT, nil
	case datatex.FormatRG8UI:
		return gl.RG8UI, gl.RG_INTEGER, gl.UNSIGNED_BYTE, nil
	case datatex.FormatRG16UI:
		return gl.RG16UI, gl.RG_INTEGER, gl.UNSIGNED_SHORT, nil
	case datatex.FormatRG32UI:
		return gl.RG32UI, gl.RG_INTEGER, gl.UNSIGNED_INT, nil
	case datatex.FormatR16UI:
		return gl.R16UI, gl.RED_INTEGER, gl.UNSIGNED_SHORT, nil
	case datatex.FormatRGB32F:
		return gl.RGB32F, gl.RGB, gl.FLOAT, nil
	case datatex.FormatRGBA32F:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT, nil
	}
	return 0, 0, 0, fmt.Errorf("unsupported data texture format %d", f)
}

// Create2D implements datatex.TexWriter
func (w *GLTexWriter) Create2D(width, height int, f datatex.TexFormat, data []byte) (uint32, error) {
	internalFormat, format, xtype, err := glFormat(f)
	if err != nil {
		return 0, err
	}

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		internalFormat,
		int32(width),
		int32(height),
		0,
		format,
		xtype,
		gl.Ptr(data),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture, nil
}

// WriteSub2D implements datatex.TexWriter
func (w *GLTexWriter) WriteSub2D(handle uint32, f datatex.TexFormat, x, y, width, height int, data []byte) {
	_, format, xtype, err := glFormat(f)
	if err != nil {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, handle)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(
		gl.TEXTURE_2D,
		0,
		int32(x),
		int32(y),
		int32(width),
		int32(height),
		format,
		xtype,
		gl.Ptr(data),
	)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Delete implements datatex.TexWriter
func (w *GLTexWriter) Delete(handle uint32) {
	gl.DeleteTextures(1, &handle)
}
