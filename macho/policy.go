package macho

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// VersionPolicy restricts which versions may be written. The packed format
// itself allows any triple, this only reflects which deployment targets
// make sense for the target platform.
type VersionPolicy struct {
	Major    uint16
	MinMinor uint8
	MaxMinor uint8
}

// DefaultVersionPolicy accepts macOS 10.6 up to 10.20.
var DefaultVersionPolicy = VersionPolicy{
	Major:    10,
	MinMinor: 6,
	MaxMinor: 20,
}

func (p VersionPolicy) String() string {
	return fmt.Sprintf("%d.[%d-%d].x", p.Major, p.MinMinor, p.MaxMinor)
}

func (p VersionPolicy) Check(v Version) error {
	if v.Major != p.Major {
		return fmt.Errorf("%w: %s: major must be %d", ErrorInvalidVersion, v, p.Major)
	}
	if v.Minor < p.MinMinor || v.Minor > p.MaxMinor {
		return fmt.Errorf("%w: %s: minor must be within %d-%d", ErrorInvalidVersion, v, p.MinMinor, p.MaxMinor)
	}
	return nil
}

// Parse combines ParseVersion with Check.
func (p VersionPolicy) Parse(text string) (Version, error) {
	v, err := ParseVersion(text)
	if err != nil {
		return v, err
	}
	return v, p.Check(v)
}

type policyFile struct {
	Major *uint16 `yaml:"major"`
	Minor struct {
		Min *uint8 `yaml:"min"`
		Max *uint8 `yaml:"max"`
	} `yaml:"minor"`
}

// LoadPolicy reads a YAML policy document. Fields that are absent keep the
// value from base.
func LoadPolicy(r io.Reader, base VersionPolicy) (VersionPolicy, error) {
	var f policyFile

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return base, fmt.Errorf("failed to parse policy: %w", err)
	}

	p := base
	if f.Major != nil {
		p.Major = *f.Major
	}
	if f.Minor.Min != nil {
		p.MinMinor = *f.Minor.Min
	}
	if f.Minor.Max != nil {
		p.MaxMinor = *f.Minor.Max
	}

	if p.MinMinor > p.MaxMinor {
		return base, fmt.Errorf("invalid policy: minor range %d-%d is empty", p.MinMinor, p.MaxMinor)
	}
	return p, nil
}
