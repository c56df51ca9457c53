package core

import (
	"fmt"

	"neurocore/pkg/domain"
)

// DeviceRegistry is the lookup capability the resolver needs from the
// container's device collection.
type DeviceRegistry interface {
	Device(name string) (domain.Device, bool)
	PutDevice(domain.Device)
	DeviceCount() int
	// FirstDevice returns the earliest registered device; callers must
	// check DeviceCount first.
	FirstDevice() domain.Device
}

// GroupRegistry is the lookup capability for electrode groups.
type GroupRegistry interface {
	Group(name string) (domain.ElectrodeGroup, bool)
	PutGroup(domain.ElectrodeGroup)
}

// IcephysElectrodeRegistry is the lookup capability for intracellular
// electrodes.
type IcephysElectrodeRegistry interface {
	IcephysElectrode(name string) (domain.IcephysElectrode, bool)
	PutIcephysElectrode(domain.IcephysElectrode)
}

// Resolver deduplicates named entities against what already exists in the
// target container: same name means reuse, never a duplicate and never an
// overwrite. Callers wanting different descriptions must use different
// names.
type Resolver struct {
	devices    DeviceRegistry
	groups     GroupRegistry
	electrodes IcephysElectrodeRegistry
}

// NewResolver constructs a resolver over the given registries. The group and
// electrode registries may be nil when the corresponding path is unused.
func NewResolver(devices DeviceRegistry, groups GroupRegistry, electrodes IcephysElectrodeRegistry) *Resolver {
	return &Resolver{devices: devices, groups: groups, electrodes: electrodes}
}

// ResolveDevice returns the existing device with the requested name or
// registers the request as a new device. A collision with differing
// attributes keeps the existing device and records a warning.
func (r *Resolver) ResolveDevice(req domain.Device, res *domain.Result) domain.Device {
	if req.Name == "" {
		req.Name = domain.DefaultDeviceName
	}
	if req.Description == "" {
		req.Description = domain.DefaultDescription
	}
	existing, ok := r.devices.Device(req.Name)
	if !ok {
		r.devices.PutDevice(req)
		return req
	}
	if existing.Description != req.Description || existing.Manufacturer != req.Manufacturer {
		res.Warn(domain.Warning{
			Code:    domain.WarnIdentityConflict,
			Entity:  domain.KindDevice,
			Name:    req.Name,
			Message: fmt.Sprintf("device %q already exists with different attributes; keeping the existing record", req.Name),
		})
	}
	return existing
}

// EnsureDevice guarantees the container holds a device with the given name,
// auto-creating one (name only) with a warning when absent. An empty name
// falls back to DefaultAnyDevice.
func (r *Resolver) EnsureDevice(name string, dependent domain.EntityKind, res *domain.Result) domain.Device {
	if name == "" {
		return r.DefaultAnyDevice(dependent, res)
	}
	if existing, ok := r.devices.Device(name); ok {
		return existing
	}
	created := domain.Device{Name: name}
	r.devices.PutDevice(created)
	res.Warn(domain.Warning{
		Code:    domain.WarnAutoLinkedDevice,
		Entity:  domain.KindDevice,
		Name:    name,
		Message: fmt.Sprintf("device %q not found when linking %s; automatically generating", name, dependent),
	})
	return created
}

// DefaultAnyDevice returns any existing device, synthesizing the default
// device with a warning when the container has none. Used when a dependent
// entity names no device at all.
func (r *Resolver) DefaultAnyDevice(dependent domain.EntityKind, res *domain.Result) domain.Device {
	if r.devices.DeviceCount() == 0 {
		dev := domain.DefaultDevice()
		r.devices.PutDevice(dev)
		res.Warn(domain.Warning{
			Code:    domain.WarnDefaultDevice,
			Entity:  domain.KindDevice,
			Name:    dev.Name,
			Message: fmt.Sprintf("no devices found when adding %s; creating a default device", dependent),
		})
		return dev
	}
	return r.devices.FirstDevice()
}

// ResolveGroup returns the existing group with the requested name or
// registers a new one, ensuring its device link resolves first.
func (r *Resolver) ResolveGroup(req domain.ElectrodeGroup, res *domain.Result) domain.ElectrodeGroup {
	if req.Description == "" {
		req.Description = domain.DefaultDescription
	}
	existing, ok := r.groups.Group(req.Name)
	if ok {
		if existing.Description != req.Description || existing.Location != req.Location || (req.DeviceName != "" && existing.DeviceName != req.DeviceName) {
			res.Warn(domain.Warning{
				Code:    domain.WarnIdentityConflict,
				Entity:  domain.KindElectrodeGroup,
				Name:    req.Name,
				Message: fmt.Sprintf("electrode group %q already exists with different attributes; keeping the existing record", req.Name),
			})
		}
		return existing
	}
	dev := r.EnsureDevice(req.DeviceName, domain.KindElectrodeGroup, res)
	req.DeviceName = dev.Name
	r.groups.PutGroup(req)
	return req
}

// EnsureGroup guarantees the container holds a group with the given name,
// reusing an existing one silently. A missing group is registered with
// placeholder attributes; channels referencing a group by name do not
// describe it.
func (r *Resolver) EnsureGroup(name string, res *domain.Result) domain.ElectrodeGroup {
	if existing, ok := r.groups.Group(name); ok {
		return existing
	}
	return r.ResolveGroup(domain.ElectrodeGroup{Name: name, Location: "unknown"}, res)
}

// ResolveIcephysElectrode returns the existing intracellular electrode with
// the requested name or registers a new one linked to a resolved device.
func (r *Resolver) ResolveIcephysElectrode(req domain.IcephysElectrode, res *domain.Result) domain.IcephysElectrode {
	if req.Description == "" {
		req.Description = domain.DefaultDescription
	}
	existing, ok := r.electrodes.IcephysElectrode(req.Name)
	if ok {
		if existing.Description != req.Description || (req.DeviceName != "" && existing.DeviceName != req.DeviceName) {
			res.Warn(domain.Warning{
				Code:    domain.WarnIdentityConflict,
				Entity:  domain.KindIcephysElectrode,
				Name:    req.Name,
				Message: fmt.Sprintf("icephys electrode %q already exists with different attributes; keeping the existing record", req.Name),
			})
		}
		return existing
	}
	dev := r.EnsureDevice(req.DeviceName, domain.KindIcephysElectrode, res)
	req.DeviceName = dev.Name
	r.electrodes.PutIcephysElectrode(req)
	return req
}
