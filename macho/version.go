package macho

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version is a packed xxxx.yy.zz triple as stored in version-min commands.
type Version struct {
	Major uint16
	Minor uint8
	Patch uint8
}

func Pack(major uint16, minor uint8, patch uint8) uint32 {
	return uint32(major)<<16 | uint32(minor)<<8 | uint32(patch)
}

func Unpack(v uint32) Version {
	return Version{
		Major: uint16(v >> 16),
		Minor: uint8(v >> 8),
		Patch: uint8(v),
	}
}

func (v Version) Packed() uint32 {
	return Pack(v.Major, v.Minor, v.Patch)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

var versionPattern = regexp.MustCompile(`^([0-9]+)\.([0-9]+)\.([0-9]+)$`)

// ParseVersion accepts exactly "<digits>.<digits>.<digits>" where every
// component fits its packed field.
func ParseVersion(text string) (Version, error) {
	m := versionPattern.FindStringSubmatch(text)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q is not of the form X.Y.Z", ErrorInvalidVersion, text)
	}

	var parts [3]uint64
	for i, bits := range []int{16, 8, 8} {
		value, err := strconv.ParseUint(m[i+1], 10, bits)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q component %d exceeds %d bits", ErrorInvalidVersion, text, i+1, bits)
		}
		parts[i] = value
	}

	return Version{
		Major: uint16(parts[0]),
		Minor: uint8(parts[1]),
		Patch: uint8(parts[2]),
	}, nil
}
