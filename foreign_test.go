package libvisio

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"
)

func TestSynthesizeBMPHeader(t *testing.T) {
	dib := make([]byte, 40+12) // BITMAPINFOHEADER + a few pixel bytes
	out := synthesizeBMPHeader(dib)

	if len(out) != 14+len(dib) {
		t.Fatalf("len = %d, want %d", len(out), 14+len(dib))
	}
	if out[0] != 'B' || out[1] != 'M' {
		t.Errorf("missing BM signature: %v", out[:2])
	}
	if size := binary.LittleEndian.Uint32(out[2:6]); size != uint32(len(dib)+14) {
		t.Errorf("file size field = %d, want %d", size, len(dib)+14)
	}
	if off := binary.LittleEndian.Uint32(out[10:14]); off != 0x36 {
		t.Errorf("pixel data offset = %#x, want 0x36", off)
	}
	if !bytes.Equal(out[14:], dib) {
		t.Errorf("DIB body not preserved verbatim")
	}
}

func TestImageMimeType(t *testing.T) {
	cases := map[uint32]string{
		foreignFormatBMP:  "image/bmp",
		foreignFormatJPEG: "image/jpeg",
		foreignFormatGIF:  "image/gif",
		foreignFormatTIFF: "image/tiff",
		foreignFormatPNG:  "image/png",
		99:                "application/octet-stream",
	}
	for format, want := range cases {
		if got := imageMimeType(format); got != want {
			t.Errorf("imageMimeType(%d) = %q, want %q", format, got, want)
		}
	}
}

func TestMetafileMimeTypeSniffsEMFSignature(t *testing.T) {
	data := make([]byte, 0x28+4)
	data[0x28], data[0x29], data[0x2A], data[0x2B] = 0x20, 0x45, 0x4d, 0x46
	if got := metafileMimeType(data); got != "image/emf" {
		t.Errorf("metafileMimeType = %q, want image/emf", got)
	}
}

func TestMetafileMimeTypeFallsBackToWMF(t *testing.T) {
	if got := metafileMimeType([]byte{0, 1, 2}); got != "image/wmf" {
		t.Errorf("metafileMimeType on short/unsigned data = %q, want image/wmf", got)
	}
	data := make([]byte, 0x28+4) // all zero, no EMF signature
	if got := metafileMimeType(data); got != "image/wmf" {
		t.Errorf("metafileMimeType = %q, want image/wmf", got)
	}
}

func TestDecodeForeignBlobSynthesizesBMPHeaderOnlyForBMP(t *testing.T) {
	hdr := foreignHeader{Type: foreignTypeImage, Format: foreignFormatBMP}
	dib := make([]byte, 40)
	data, mime, ok := decodeForeignBlob(hdr, dib)
	if !ok || mime != "image/bmp" {
		t.Fatalf("decodeForeignBlob = ok=%v mime=%q", ok, mime)
	}
	if len(data) != len(dib)+14 {
		t.Errorf("BMP data len = %d, want synthesized header added (%d)", len(data), len(dib)+14)
	}

	pngHdr := foreignHeader{Type: foreignTypeImage, Format: foreignFormatPNG}
	raw := []byte{1, 2, 3}
	data, mime, ok = decodeForeignBlob(pngHdr, raw)
	if !ok || mime != "image/png" || !bytes.Equal(data, raw) {
		t.Errorf("PNG blob should pass through unmodified, got %v %q %v", data, mime, ok)
	}
}

func TestDecodeForeignBlobRejectsUnknownType(t *testing.T) {
	hdr := foreignHeader{Type: 0xff}
	_, _, ok := decodeForeignBlob(hdr, []byte{1})
	if ok {
		t.Errorf("decodeForeignBlob should reject an unrecognized foreign type")
	}
}

func TestDecodeForeignBlobNormalizesGIFToPNG(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.White, color.Black})
	img.Set(0, 0, color.Black)
	var raw bytes.Buffer
	if err := gif.Encode(&raw, img, nil); err != nil {
		t.Fatalf("gif.Encode: %v", err)
	}

	hdr := foreignHeader{Type: foreignTypeImage, Format: foreignFormatGIF}
	data, mime, ok := decodeForeignBlob(hdr, raw.Bytes())
	if !ok || mime != "image/png" {
		t.Fatalf("decodeForeignBlob = ok=%v mime=%q, want image/png", ok, mime)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("normalized data does not decode as PNG: %v", err)
	}
}

func TestDecodeForeignBlobFallsBackOnUndecodableImage(t *testing.T) {
	hdr := foreignHeader{Type: foreignTypeImage, Format: foreignFormatJPEG}
	garbage := []byte{0, 1, 2, 3, 4}
	data, mime, ok := decodeForeignBlob(hdr, garbage)
	if !ok || mime != "image/jpeg" {
		t.Fatalf("decodeForeignBlob = ok=%v mime=%q, want image/jpeg fallback", ok, mime)
	}
	if !bytes.Equal(data, garbage) {
		t.Errorf("fallback should return the raw bytes unchanged")
	}
}
