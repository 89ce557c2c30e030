package libvisio

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
)

// decodeUncompressedBMP decodes the common case this format actually
// produces: a synthesized 14-byte file header (see
// synthesizeBMPHeader) over a 40-byte BITMAPINFOHEADER DIB, 24 or 32
// bits per pixel, no compression. Anything else is reported as an
// error rather than guessed at; golang.org/x/image and the stdlib
// image package both stop short of a general BMP decoder, so this
// reader carries the minimal slice it actually needs.
func decodeUncompressedBMP(data []byte) (image.Image, error) {
	if len(data) < 14+40 {
		return nil, errors.New("bmp: too short for file+info header")
	}
	if data[0] != 'B' || data[1] != 'M' {
		return nil, errors.New("bmp: missing BM signature")
	}
	pixelOffset := binary.LittleEndian.Uint32(data[10:14])
	infoHeaderSize := binary.LittleEndian.Uint32(data[14:18])
	if infoHeaderSize < 40 {
		return nil, errors.New("bmp: unsupported DIB header size")
	}

	width := int(int32(binary.LittleEndian.Uint32(data[18:22])))
	height := int(int32(binary.LittleEndian.Uint32(data[22:26])))
	bpp := binary.LittleEndian.Uint16(data[28:30])
	compression := binary.LittleEndian.Uint32(data[30:34])
	if compression != 0 {
		return nil, errors.New("bmp: compressed DIBs are not supported")
	}
	if bpp != 24 && bpp != 32 {
		return nil, errors.New("bmp: only 24/32 bpp uncompressed DIBs are supported")
	}

	topDown := height < 0
	if topDown {
		height = -height
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("bmp: invalid dimensions")
	}

	bytesPerPixel := int(bpp / 8)
	rowSize := ((width*bytesPerPixel + 3) / 4) * 4
	need := int(pixelOffset) + rowSize*height
	if len(data) < need {
		return nil, errors.New("bmp: pixel data truncated")
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for row := 0; row < height; row++ {
		srcRow := row
		if !topDown {
			srcRow = height - 1 - row
		}
		rowStart := int(pixelOffset) + srcRow*rowSize
		for col := 0; col < width; col++ {
			off := rowStart + col*bytesPerPixel
			b, g, r := data[off], data[off+1], data[off+2]
			a := byte(255)
			img.SetRGBA(col, row, color.RGBA{R: r, G: g, B: b, A: a})
		}
	}
	return img, nil
}
