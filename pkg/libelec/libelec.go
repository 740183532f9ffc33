//go:build libelec

package libelec

import (
	"fmt"
)

// System owns one loaded network. It is safe for concurrent use; native
// calls are serialized by the handle lifecycle.
type System struct {
	sys  *ElecSys
	name string
	life lifecycle
}

// Open loads a network description file.
func Open(filename string) (*System, error) {
	sys := New(filename)
	if sys == nil {
		return nil, fmt.Errorf("libelec: cannot load network %s", filename)
	}
	return &System{sys: sys, name: filename}, nil
}

// State reports where the handle is in its lifecycle.
func (s *System) State() State {
	return s.life.current()
}

// CanStart reports whether the network passed libelec's consistency checks.
func (s *System) CanStart() (bool, error) {
	var ok bool
	err := s.life.use("query", func() error {
		ok = SysCanStart(s.sys)
		return nil
	})
	return ok, err
}

// Start launches the simulation worker.
func (s *System) Start() error {
	return s.life.start(func() error {
		if !SysStart(s.sys) {
			return fmt.Errorf("libelec: %s failed to start", s.name)
		}
		return nil
	})
}

// Stop halts the simulation worker.
func (s *System) Stop() error {
	return s.life.stop(func() error {
		SysStop(s.sys)
		return nil
	})
}

// Destroy frees the native system. Only a stopped system can be destroyed.
func (s *System) Destroy() error {
	return s.life.destroy(func() error {
		Destroy(s.sys)
		s.sys = nil
		return nil
	})
}

func (s *System) SetTimeFactor(factor float64) error {
	return s.life.use("set time factor on", func() error {
		SysSetTimeFactor(s.sys, factor)
		return nil
	})
}

// Find looks a component up by its name in the network file.
func (s *System) Find(name string) (*Component, error) {
	var comp *ElecComp
	if err := s.life.use("find in", func() error {
		comp = CompFind(s.sys, name)
		return nil
	}); err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, fmt.Errorf("libelec: component %q not found in %s", name, s.name)
	}
	return &Component{sys: s, comp: comp}, nil
}

// Component is a borrowed reference into a System. It becomes unusable
// once the System is destroyed.
type Component struct {
	sys  *System
	comp *ElecComp
}

func (c *Component) Name() (string, error) {
	var name string
	err := c.sys.life.use("read", func() error {
		name = CompGetName(c.comp)
		return nil
	})
	return name, err
}

func (c *Component) Type() (ElecCompType, error) {
	var typ ElecCompType
	err := c.sys.life.use("read", func() error {
		typ = CompGetType(c.comp)
		return nil
	})
	return typ, err
}

// OutVolts returns the voltage at the component's output.
func (c *Component) OutVolts() (float64, error) {
	return c.read(CompGetOutVolts)
}

func (c *Component) InVolts() (float64, error) {
	return c.read(CompGetInVolts)
}

func (c *Component) OutAmps() (float64, error) {
	return c.read(CompGetOutAmps)
}

func (c *Component) read(fn func(*ElecComp) float64) (float64, error) {
	var v float64
	err := c.sys.life.use("read", func() error {
		v = fn(c.comp)
		return nil
	})
	return v, err
}
