package macho

type Region interface {
	GetLength() int
	Access(write bool, addr int, buf []byte) (int, error)
	GetParent() (Region, int)
	GetName() string
}

type regionBuffer struct {
	name string
	data []byte
}

// RegionFromBytes exposes a byte slice as a root region. Writes go directly
// into data, no copy is made.
func RegionFromBytes(name string, data []byte) Region {
	return regionBuffer{
		name: name,
		data: data,
	}
}

func (b regionBuffer) GetName() string {
	return b.name
}

func (b regionBuffer) GetLength() int {
	return len(b.data)
}

func (b regionBuffer) GetParent() (Region, int) {
	return nil, 0
}

func (b regionBuffer) Access(write bool, addr int, buf []byte) (int, error) {
	if addr < 0 || addr > len(b.data) {
		return 0, nil
	}

	if write {
		return copy(b.data[addr:], buf), nil
	}
	return copy(buf, b.data[addr:]), nil
}

type regionPartial struct {
	parent Region
	offset int
	length int
	name   string
}

func regionWrapPartial(name string, parent Region, offset int, length int) Region {
	return regionPartial{
		parent: parent,
		offset: offset,
		length: length,
		name:   name,
	}
}

func (h regionPartial) GetName() string {
	return h.name
}

func (h regionPartial) GetLength() int {
	return h.length
}

func (h regionPartial) GetParent() (Region, int) {
	return h.parent, h.offset
}

func (h regionPartial) Access(write bool, addr int, buf []byte) (int, error) {
	if len(buf)+addr > h.length {
		if addr > h.length {
			return 0, nil
		}
		buf = buf[:h.length-addr]
	}

	return h.parent.Access(write, h.offset+addr, buf)
}

// RecursiveGetParentAddress translates offset within region to an offset
// within its outermost parent.
func RecursiveGetParentAddress(region Region, offset int) (Region, int) {
	for {
		var parentOffset int
		prevRegion := region
		region, parentOffset = region.GetParent()

		offset += parentOffset

		if region == nil {
			return prevRegion, offset
		}
	}
}
