package libvisio

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/tiff"
)

// Foreign-object type codes from chunk 0x98's header.
const (
	foreignTypeImage    uint16 = 1
	foreignTypeMetafile uint16 = 4
)

// Foreign-object format codes, only meaningful when type is
// foreignTypeImage.
const (
	foreignFormatBMP  uint32 = 0
	foreignFormatJPEG uint32 = 1
	foreignFormatGIF  uint32 = 2
	foreignFormatTIFF uint32 = 3
	foreignFormatPNG  uint32 = 4
)

// foreignHeader is the parsed form of chunk 0x98: the type/format pair
// that chunk 0x0c's raw bytes need to be interpreted.
type foreignHeader struct {
	Type   uint16
	Format uint32
}

// parseForeignHeader reads chunk 0x98's body. The type and format
// fields sit behind fixed padding runs whose contents the format never
// assigns any meaning to.
func parseForeignHeader(r *byteReader) (foreignHeader, error) {
	var h foreignHeader
	if err := r.skip(0x24); err != nil {
		return h, err
	}
	t, err := r.readU16()
	if err != nil {
		return h, err
	}
	h.Type = t
	if err := r.skip(0xb); err != nil {
		return h, err
	}
	f, err := r.readU32()
	if err != nil {
		return h, err
	}
	h.Format = f
	return h, nil
}

// synthesizeBMPHeader prepends the 14-byte BITMAPFILEHEADER that VSD's
// embedded device-independent bitmaps omit: only the DIB body
// (BITMAPINFOHEADER onward) is stored in the stream. The pixel data
// offset (0x36) assumes the de-facto-universal 40-byte
// BITMAPINFOHEADER with no colour table.
func synthesizeBMPHeader(dib []byte) []byte {
	out := make([]byte, 14+len(dib))
	out[0], out[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(out[2:6], uint32(len(dib)+14))
	// bytes 6:10 (reserved) stay zero
	binary.LittleEndian.PutUint32(out[10:14], 0x36)
	copy(out[14:], dib)
	return out
}

// imageMimeType maps a foreignFormat code to its MIME type, for
// foreignTypeImage data.
func imageMimeType(format uint32) string {
	switch format {
	case foreignFormatBMP:
		return "image/bmp"
	case foreignFormatJPEG:
		return "image/jpeg"
	case foreignFormatGIF:
		return "image/gif"
	case foreignFormatTIFF:
		return "image/tiff"
	case foreignFormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// metafileMimeType classifies a type-4 (metafile) blob as EMF or WMF by
// sniffing the enhanced-metafile signature at its documented fixed
// offset. Anything too short to hold the signature is treated as WMF,
// the older and structurally looser of the two.
func metafileMimeType(data []byte) string {
	const sigOffset = 0x28
	if len(data) >= sigOffset+4 &&
		data[sigOffset] == 0x20 && data[sigOffset+1] == 0x45 &&
		data[sigOffset+2] == 0x4d && data[sigOffset+3] == 0x46 {
		return "image/emf"
	}
	return "image/wmf"
}

// decodeForeignBlob turns chunk 0x0c's raw bytes into the bytes a
// Painter should receive plus their MIME type, given the type/format
// recorded by the preceding 0x98 chunk. Returns ok=false for foreign
// data types this reader does not draw (anything but image/metafile).
//
// TIFF/GIF/JPEG are decoded and re-encoded as PNG so every raster
// painter downstream (SVGPainter's data: URI, PDFPainter's Image
// XObject) can treat "image" as a single normalized format instead of
// special-casing each VSD-internal one. A failed decode falls back to
// the raw bytes under their original MIME type rather than dropping
// the object, consistent with this reader's overall leniency policy.
func decodeForeignBlob(hdr foreignHeader, raw []byte) (data []byte, mime string, ok bool) {
	switch hdr.Type {
	case foreignTypeImage:
		switch hdr.Format {
		case foreignFormatBMP:
			return synthesizeBMPHeader(raw), imageMimeType(hdr.Format), true
		case foreignFormatTIFF, foreignFormatGIF, foreignFormatJPEG:
			if png, ok := normalizeToPNG(hdr.Format, raw); ok {
				return png, "image/png", true
			}
			return raw, imageMimeType(hdr.Format), true
		default:
			return raw, imageMimeType(hdr.Format), true
		}
	case foreignTypeMetafile:
		return raw, metafileMimeType(raw), true
	default:
		return nil, "", false
	}
}

// normalizeToPNG decodes a TIFF/GIF/JPEG blob and re-encodes it as PNG.
func normalizeToPNG(format uint32, raw []byte) ([]byte, bool) {
	var img image.Image
	var err error
	switch format {
	case foreignFormatTIFF:
		img, err = tiff.Decode(bytes.NewReader(raw))
	case foreignFormatGIF:
		img, err = gif.Decode(bytes.NewReader(raw))
	case foreignFormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(raw))
	default:
		return nil, false
	}
	if err != nil {
		debugf("normalizing foreign image to PNG failed", "format", format, "error", err)
		return nil, false
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		debugf("encoding normalized foreign image as PNG failed", "format", format, "error", err)
		return nil, false
	}
	return buf.Bytes(), true
}

// foreignObjectProps computes the placement rectangle for a decoded
// foreign object, in scaled page coordinates. The object's Y position
// is measured from the page's bottom edge, so it is flipped against
// pageHeight the same way path coordinates are.
func foreignObjectProps(xf XForm, pageHeight, scale float64, mime string) GraphicObjectProperties {
	return GraphicObjectProperties{
		X:        scale * (xf.PinX - xf.PinLocX),
		Y:        scale * (pageHeight - xf.PinY + xf.PinLocY - xf.Height),
		Width:    scale * xf.Width,
		Height:   scale * xf.Height,
		MimeType: mime,
	}
}
