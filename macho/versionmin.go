package macho

import "fmt"

// VersionMinSize is the total size of a version-min load command: the
// common prefix followed by the packed version and sdk words.
const VersionMinSize = LoadCommandHeaderSize + 8

type VersionMin struct {
	Version Version
	SDK     Version
}

func (v VersionMin) String() string {
	return fmt.Sprintf("version %s sdk %s", v.Version, v.SDK)
}

// ReadVersionMin decodes the payload of the version-min command at offset.
func ReadVersionMin(c *Cursor, offset int) (VersionMin, error) {
	var result VersionMin

	if err := c.Seek(offset + LoadCommandHeaderSize); err != nil {
		return result, err
	}

	version, err := c.ReadUint32()
	if err != nil {
		return result, err
	}
	sdk, err := c.ReadUint32()
	if err != nil {
		return result, err
	}

	result.Version = Unpack(version)
	result.SDK = Unpack(sdk)
	return result, nil
}

// WriteVersionMin overwrites exactly the 8 payload bytes of the command at
// offset. Nothing is written unless both words fit.
func WriteVersionMin(c *Cursor, offset int, v VersionMin) error {
	if err := c.Seek(offset + LoadCommandHeaderSize); err != nil {
		return err
	}
	if c.Remaining() < VersionMinSize-LoadCommandHeaderSize {
		return fmt.Errorf("%w: payload at %#x does not fit in %s", ErrorOutOfRange, c.Offset(), c.region.GetName())
	}

	if err := c.WriteUint32(v.Version.Packed()); err != nil {
		return err
	}
	return c.WriteUint32(v.SDK.Packed())
}
