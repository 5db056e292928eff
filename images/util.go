package images

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math"
)

// ComputeChecksum generates a deterministic checksum over a raster's
// dimensions and channel bits. Two rasters share a checksum only if they are
// bit-for-bit identical.
//
// Arguments:
// - r: The raster to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for rasters without pixels.
//
// Example:
//
// ```go
//
//	checksum := ComputeChecksum(out)
//	fmt.Printf("Output checksum: %s\n", checksum)
//
// ```
func ComputeChecksum(r *Raster) string {
	if r.Empty() {
		return "empty"
	}

	hash := md5.New()
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(r.Width))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(r.Height))
	hash.Write(buf)

	for _, c := range r.Pix {
		binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(c.R))
		binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(c.G))
		binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(c.B))
		binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(c.A))
		hash.Write(buf)
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}
