/*
Copyright © 2026 the CO2CH4 authors.
This file is part of CO2CH4.

CO2CH4 is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

CO2CH4 is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with CO2CH4.  If not, see <http://www.gnu.org/licenses/>.
*/

package co2ch4

import (
	"fmt"
	"math"

	"github.com/spatialmodel/co2ch4/property"
)

// Phase is the physical state of a stream.
type Phase int

// Stream phases.
const (
	Vapour Phase = iota
	Liquid
	Mixed
	Adsorbed
)

func (p Phase) String() string {
	switch p {
	case Vapour:
		return "vapour"
	case Liquid:
		return "liquid"
	case Mixed:
		return "mixed"
	case Adsorbed:
		return "adsorbed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// PortDir is the direction of a port.
type PortDir int

// Port directions.
const (
	Inlet PortDir = iota
	Outlet
)

// Port is a unit connection point carrying the variables of one stream:
// total flow F [kmol/s], mole fractions X, temperature T [K] and
// pressure P [kPa].
type Port struct {
	Name  string
	Unit  *Unit
	Dir   PortDir
	Phase Phase

	// Optional ports may be left unconnected.
	Optional bool

	// Nominal is the composition reported when the flow is zero.
	Nominal property.Composition

	F    VarID
	X    [property.NumComponents]VarID
	T, P VarID

	peer    *Port
	recycle bool
}

// FullName returns the unit-qualified port name.
func (p *Port) FullName() string { return p.Unit.Name + "." + p.Name }

// Flows returns the component flows through p.
func (p *Port) Flows(v *Values) property.Flows {
	var n property.Flows
	F := v.At(p.F)
	for i, x := range p.X {
		n[i] = F * v.At(x)
	}
	return n
}

// Composition returns the mole fractions at p.
func (p *Port) Composition(v *Values) property.Composition {
	var x property.Composition
	for i, id := range p.X {
		x[i] = v.At(id)
	}
	return x
}

// Peer returns the port p is connected to, or nil.
func (p *Port) Peer() *Port { return p.peer }

// Stream is the solved state of a connection between two ports.
type Stream struct {
	From, To string
	F        float64
	X        property.Composition
	T, P     float64
	Phase    Phase
	Recycle  bool
}

// newPort adds the variables of a port to the model.
func (m *Model) newPort(u *Unit, name string, dir PortDir, phase Phase, nominal property.Composition) *Port {
	p := &Port{Name: name, Unit: u, Dir: dir, Phase: phase, Nominal: nominal}
	prefix := u.Name + "." + name + "."
	p.F = m.AddState(prefix+"F", "kmol/s")
	for _, c := range property.Components() {
		p.X[c] = m.AddState(prefix+"x_"+c.String(), "")
	}
	p.T = m.AddState(prefix+"T", "K")
	p.P = m.AddState(prefix+"P", "kPa")
	m.ports = append(m.ports, p)
	if dir == Inlet {
		u.Inlets = append(u.Inlets, p)
	} else {
		u.Outlets = append(u.Outlets, p)
	}
	return p
}

// defineOutlet defines the variables of outlet p from component flows,
// temperature and pressure expressions.
func (m *Model) defineOutlet(p *Port, flows func(v *Values) property.Flows, T, P Expr) {
	m.Define(p.F, func(v *Values) float64 { return flows(v).Total() })
	for _, c := range property.Components() {
		c := c
		m.Define(p.X[c], func(v *Values) float64 {
			return flows(v).Composition(p.Nominal)[c]
		})
	}
	m.Define(p.T, T)
	m.Define(p.P, P)
}

// Connect binds the variables of inlet dst to those of outlet src.
func (m *Model) Connect(src, dst *Port) error {
	return m.connect(src, dst, false)
}

// ConnectRecycle connects src to dst as a declared recycle. The stream is
// converged by successive substitution.
func (m *Model) ConnectRecycle(src, dst *Port) error {
	return m.connect(src, dst, true)
}

func (m *Model) connect(src, dst *Port, recycle bool) error {
	switch {
	case src == nil || dst == nil:
		return &BuildError{Reason: "connecting a nil port"}
	case src.Dir != Outlet:
		return &BuildError{Unit: src.Unit.Name, Port: src.Name, Reason: "is not an outlet"}
	case dst.Dir != Inlet:
		return &BuildError{Unit: dst.Unit.Name, Port: dst.Name, Reason: "is not an inlet"}
	case src.peer != nil:
		return &BuildError{Unit: src.Unit.Name, Port: src.Name, Reason: "already connected to " + src.peer.FullName()}
	case dst.peer != nil:
		return &BuildError{Unit: dst.Unit.Name, Port: dst.Name, Reason: "already connected to " + dst.peer.FullName()}
	}
	src.peer, dst.peer = dst, src
	src.recycle, dst.recycle = recycle, recycle
	m.Bind(dst.F, src.F)
	for i := range dst.X {
		m.Bind(dst.X[i], src.X[i])
	}
	m.Bind(dst.T, src.T)
	m.Bind(dst.P, src.P)
	if recycle {
		m.tears[dst.F] = true
		for _, x := range dst.X {
			m.tears[x] = true
		}
		m.tears[dst.T] = true
		m.tears[dst.P] = true
	}
	return nil
}

// Split divides the stream from outlet in into one outlet per fraction
// variable. Each outlet keeps the inlet composition, temperature and
// pressure. The fractions are constrained to sum to one.
func (m *Model) Split(name string, in *Port, fractions []VarID) ([]*Port, error) {
	if len(fractions) == 0 {
		return nil, &BuildError{Unit: name, Reason: "split with no outlets"}
	}
	u := m.newUnit(name, SplitterUnit, "", NoVar)
	inlet := m.newPort(u, "in", Inlet, in.Phase, in.Nominal)
	if err := m.Connect(in, inlet); err != nil {
		return nil, err
	}
	outs := make([]*Port, len(fractions))
	for k, f := range fractions {
		f := f
		p := m.newPort(u, fmt.Sprintf("out%d", k), Outlet, in.Phase, in.Nominal)
		m.Define(p.F, func(v *Values) float64 { return v.At(f) * v.At(inlet.F) })
		for i := range p.X {
			m.Bind(p.X[i], inlet.X[i])
		}
		m.Bind(p.T, inlet.T)
		m.Bind(p.P, inlet.P)
		outs[k] = p
	}
	m.AddEquality(name+".fractions", 1, func(v *Values) float64 {
		s := -1.0
		for _, f := range fractions {
			s += v.At(f)
		}
		return s
	})
	return outs, nil
}

// Mix combines the streams from outlets ins into a single outlet. Flow
// and component flows add, temperature is the flow-weighted mean and
// pressure is the lowest inlet pressure.
func (m *Model) Mix(name string, ins ...*Port) (*Port, error) {
	if len(ins) == 0 {
		return nil, &BuildError{Unit: name, Reason: "mix with no inlets"}
	}
	u, out := m.newMixer(name, ins[0].Phase, ins[0].Nominal, len(ins))
	for i, in := range ins {
		if in.Phase != ins[0].Phase {
			out.Phase = Mixed
		}
		if err := m.Connect(in, u.Inlets[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// newMixer adds a mixer with n unconnected inlets.
func (m *Model) newMixer(name string, phase Phase, nominal property.Composition, n int) (*Unit, *Port) {
	u := m.newUnit(name, MixerUnit, "", NoVar)
	for i := 0; i < n; i++ {
		m.newPort(u, fmt.Sprintf("in%d", i), Inlet, phase, nominal)
	}
	out := m.newPort(u, "out", Outlet, phase, nominal)
	m.defineOutlet(out, func(v *Values) property.Flows {
		var n property.Flows
		for _, in := range u.Inlets {
			f := in.Flows(v)
			for c := range n {
				n[c] += f[c]
			}
		}
		return n
	}, func(v *Values) float64 {
		var F, FT, T float64
		for _, in := range u.Inlets {
			f := v.At(in.F)
			F += f
			FT += f * v.At(in.T)
			T += v.At(in.T)
		}
		if F <= 0 {
			return T / float64(len(u.Inlets))
		}
		return FT / F
	}, func(v *Values) float64 {
		P := math.Inf(1)
		for _, in := range u.Inlets {
			P = math.Min(P, v.At(in.P))
		}
		return P
	})
	return u, out
}

// streams returns the solved state of every connection.
func (m *Model) streams(v *Values) []Stream {
	var o []Stream
	for _, p := range m.ports {
		if p.Dir != Outlet || p.peer == nil {
			continue
		}
		o = append(o, Stream{
			From:    p.FullName(),
			To:      p.peer.FullName(),
			F:       v.At(p.F),
			X:       p.Composition(v),
			T:       v.At(p.T),
			P:       v.At(p.P),
			Phase:   p.Phase,
			Recycle: p.recycle,
		})
	}
	return o
}
