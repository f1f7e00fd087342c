package slots

import "fmt"

// Checks selects whether a strict collection verifies key ownership.
type Checks uint8

const (
	// ChecksDefault follows the build: on, unless built with the
	// slots_nochecks tag.
	ChecksDefault Checks = iota

	// ChecksOn always verifies that strict keys belong to the collection.
	ChecksOn

	// ChecksOff skips owner verification. A foreign key then addresses
	// whatever lives at its index, like an unrestricted index would.
	ChecksOff
)

// RuntimeChecksDefault reports the compiled-in default used by
// [ChecksDefault].
func RuntimeChecksDefault() bool {
	return runtimeChecksDefault
}

func (c Checks) enabled() bool {
	switch c {
	case ChecksOn:
		return true
	case ChecksOff:
		return false
	default:
		return runtimeChecksDefault
	}
}

func (c Checks) String() string {
	switch c {
	case ChecksOn:
		return "on"
	case ChecksOff:
		return "off"
	default:
		return "default"
	}
}

// Options configure a collection.
type Options struct {
	// Registry issues the collection's instance id. Nil means
	// [DefaultRegistry].
	Registry *Registry

	// Checks controls strict-mode owner verification. Relaxed collections
	// always verify; unrestricted ones never can.
	Checks Checks
}

func (o Options) registry() *Registry {
	if o.Registry == nil {
		return DefaultRegistry()
	}

	return o.Registry
}

// ownerCheck decides whether a key minted by keyOwner may access a
// collection with id owner.
type ownerCheck interface {
	verify(keyOwner, owner InstanceID) error
}

type verifyOwner struct{}

func (verifyOwner) verify(keyOwner, owner InstanceID) error {
	if keyOwner != owner {
		return fmt.Errorf("key minted by %s used with %s: %w", keyOwner, owner, ErrForeignKey)
	}

	return nil
}

type skipOwner struct{}

func (skipOwner) verify(InstanceID, InstanceID) error { return nil }

func (c Checks) ownerCheck() ownerCheck {
	if c.enabled() {
		return verifyOwner{}
	}

	return skipOwner{}
}
