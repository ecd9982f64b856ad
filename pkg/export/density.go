package export

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"math"

	"github.com/matzehuels/printframe/pkg/errors"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

const (
	ihdrLength = 13
	physLength = 9
	// unitMetre is the pHYs unit specifier for pixels per metre.
	unitMetre = 1
	// metresPerInch converts dots per inch into pixels per metre.
	metresPerInch = 0.0254
)

// Density is the content of a pHYs chunk.
type Density struct {
	PPMX, PPMY uint32
	Unit       byte
}

// DPI returns the horizontal density in dots per inch, rounded to the
// nearest integer. It is zero when the unit is not the metre.
func (d Density) DPI() int {
	if d.Unit != unitMetre {
		return 0
	}
	return int(math.Round(float64(d.PPMX) * metresPerInch))
}

// PPM converts dots per inch into pixels per metre.
func PPM(dpi int) uint32 {
	return uint32(math.Round(float64(dpi) / metresPerInch))
}

type chunk struct {
	typ        string
	start, end int // whole chunk including length, type and CRC
	data       []byte
}

// chunks walks the chunk headers of a PNG stream up to and including IEND.
func chunks(png []byte) ([]chunk, error) {
	if !bytes.HasPrefix(png, pngSignature) {
		return nil, errors.New(errors.ErrCodeContainerLayout, "not a PNG stream")
	}
	var out []chunk
	off := len(pngSignature)
	for off < len(png) {
		if len(png)-off < 12 {
			return nil, errors.New(errors.ErrCodeContainerLayout, "truncated chunk header at offset %d", off)
		}
		n := int(binary.BigEndian.Uint32(png[off:]))
		end := off + 12 + n
		if n < 0 || end > len(png) || end < off {
			return nil, errors.New(errors.ErrCodeContainerLayout, "chunk at offset %d overruns the stream", off)
		}
		c := chunk{
			typ:   string(png[off+4 : off+8]),
			start: off,
			end:   end,
			data:  png[off+8 : off+8+n],
		}
		out = append(out, c)
		off = end
		if c.typ == "IEND" {
			break
		}
	}
	if len(out) == 0 || out[0].typ != "IHDR" {
		return nil, errors.New(errors.ErrCodeContainerLayout, "first chunk is not IHDR")
	}
	if len(out[0].data) != ihdrLength {
		return nil, errors.New(errors.ErrCodeContainerLayout, "IHDR length %d, want %d", len(out[0].data), ihdrLength)
	}
	return out, nil
}

// appendChunk writes a complete chunk with its CRC-32 over type and data.
func appendChunk(dst []byte, typ string, data []byte) []byte {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(data)))
	copy(hdr[4:], typ)
	dst = append(dst, hdr[:]...)
	dst = append(dst, data...)
	crc := crc32.NewIEEE()
	crc.Write(hdr[4:])
	crc.Write(data)
	return binary.BigEndian.AppendUint32(dst, crc.Sum32())
}

// InjectDensity returns a copy of png carrying a pHYs chunk for dpi right
// after IHDR. An existing pHYs chunk is replaced. The input is not modified.
func InjectDensity(png []byte, dpi int) ([]byte, error) {
	if dpi <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dpi must be positive, got %d", dpi)
	}
	cs, err := chunks(png)
	if err != nil {
		return nil, err
	}

	ppm := PPM(dpi)
	var phys [physLength]byte
	binary.BigEndian.PutUint32(phys[0:], ppm)
	binary.BigEndian.PutUint32(phys[4:], ppm)
	phys[8] = unitMetre

	out := make([]byte, 0, len(png)+12+physLength)
	out = append(out, pngSignature...)
	for i, c := range cs {
		if c.typ == "pHYs" {
			continue
		}
		out = append(out, png[c.start:c.end]...)
		if i == 0 {
			out = appendChunk(out, "pHYs", phys[:])
		}
	}
	return out, nil
}

// ReadDensity returns the pHYs chunk of png. ok is false when there is none.
// A pHYs chunk with a bad length or CRC is a CONTAINER_LAYOUT error.
func ReadDensity(png []byte) (d Density, ok bool, err error) {
	cs, err := chunks(png)
	if err != nil {
		return Density{}, false, err
	}
	for _, c := range cs {
		if c.typ != "pHYs" {
			continue
		}
		if len(c.data) != physLength {
			return Density{}, false, errors.New(errors.ErrCodeContainerLayout, "pHYs length %d, want %d", len(c.data), physLength)
		}
		want := binary.BigEndian.Uint32(png[c.end-4:])
		if got := crc32.ChecksumIEEE(png[c.start+4 : c.end-4]); got != want {
			return Density{}, false, errors.New(errors.ErrCodeContainerLayout, "pHYs CRC %08x, want %08x", got, want)
		}
		return Density{
			PPMX: binary.BigEndian.Uint32(c.data[0:]),
			PPMY: binary.BigEndian.Uint32(c.data[4:]),
			Unit: c.data[8],
		}, true, nil
	}
	return Density{}, false, nil
}
