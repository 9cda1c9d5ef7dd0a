package types

import "strings"

// PackID identifies one pack release: Vendor.Name.Version (spec §3.6).
type PackID string

// CommonID is a PackID with the version dropped: Vendor.Name.
type CommonID string

// AggregateID is the selection unit of spec §3.3:
// Cvendor::Cclass[&Cbundle]:Cgroup[:Csub].
type AggregateID string

// UniqueID is an AggregateID plus version, condition and owning pack:
// full ID + "(condition)[packId]".
type UniqueID string

// ApiID is the unversioned API identifier of spec §3.3:
// ::Cclass:Cgroup(API)[@Capiversion].
type ApiID string

// CommonIDOf drops the trailing ".version" segment of a PackID, used by
// the global model's latest_packages index (spec §4.5) and the package
// filter's latest_packs knob (spec §3.8).
func CommonIDOf(id PackID) CommonID {
	s := string(id)
	parts := strings.Split(s, ".")
	if len(parts) < 3 {
		return CommonID(s)
	}
	return CommonID(strings.Join(parts[:len(parts)-1], "."))
}

// BuildPackID assembles a PackID from its components, spec §3.6's invariant
// `p.id == p.vendor + "." + p.name + "." + p.version`.
func BuildPackID(vendor, name, version string) PackID {
	if version == "" {
		return PackID(vendor + "." + name)
	}
	return PackID(vendor + "." + name + "." + version)
}

// BuildAggregateID assembles the selection-unit id of spec §3.3.
func BuildAggregateID(vendor, class, bundle, group, sub string) AggregateID {
	var b strings.Builder
	b.WriteString(vendor)
	b.WriteString("::")
	b.WriteString(class)
	if bundle != "" {
		b.WriteByte('&')
		b.WriteString(bundle)
	}
	b.WriteByte(':')
	b.WriteString(group)
	if sub != "" {
		b.WriteByte(':')
		b.WriteString(sub)
	}
	return AggregateID(b.String())
}

// BuildApiID assembles the unversioned API identifier of spec §3.3.
func BuildApiID(class, group, apiVersion string) ApiID {
	id := "::" + class + ":" + group + "(API)"
	if apiVersion != "" {
		id += "@" + apiVersion
	}
	return ApiID(id)
}
