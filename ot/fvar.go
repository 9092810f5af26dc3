package ot

// FVarTable is the font variations table. It defines the variation axes of
// a variable font and its named instances.
type FVarTable struct {
	tableBase
	MajorVersion    uint16
	MinorVersion    uint16
	AxesArrayOffset uint16
	AxisCount       uint16
	AxisSize        uint16
	InstanceCount   uint16
	InstanceSize    uint16
	Axes            *Lazy[[]VariationAxis]
	Instances       *Lazy[[]NamedInstance]
}

// VariationAxis is a design axis, e.g. 'wght'.
type VariationAxis struct {
	Tag          Tag
	MinValue     float64
	DefaultValue float64
	MaxValue     float64
	Flags        uint16 // 0x0001: hidden axis
	AxisNameID   uint16
}

// NamedInstance is a named position in the design space.
type NamedInstance struct {
	SubfamilyNameID  uint16
	Flags            uint16
	Coordinates      []float64 // one per axis
	PostScriptNameID Option[uint16]
}

func decodeFVar(p *Parser, ctx *tableContext) (Table, error) {
	t := &FVarTable{}
	t.tableBase = newTableBase(p, t)
	t.MajorVersion = p.Uint16()
	t.MinorVersion = p.Uint16()
	t.AxesArrayOffset = p.Offset16()
	p.Skip(1, 16) // reserved
	t.AxisCount = p.Uint16()
	t.AxisSize = p.Uint16()
	t.InstanceCount = p.Uint16()
	t.InstanceSize = p.Uint16()
	if err := p.Err(); err != nil {
		return nil, err
	}
	axisCount := int(t.AxisCount)
	t.Axes = NewLazy(func() ([]VariationAxis, error) {
		axes := make([]VariationAxis, axisCount)
		for i := range axes {
			q := t.at(int(t.AxesArrayOffset) + i*int(t.AxisSize))
			axes[i] = VariationAxis{
				Tag:          q.Tag(),
				MinValue:     q.Fixed(),
				DefaultValue: q.Fixed(),
				MaxValue:     q.Fixed(),
				Flags:        q.Uint16(),
				AxisNameID:   q.Uint16(),
			}
			if err := q.Err(); err != nil {
				return nil, err
			}
		}
		return axes, nil
	})
	instancesStart := int(t.AxesArrayOffset) + axisCount*int(t.AxisSize)
	t.Instances = NewLazy(func() ([]NamedInstance, error) {
		instances := make([]NamedInstance, t.InstanceCount)
		for i := range instances {
			q := t.at(instancesStart + i*int(t.InstanceSize))
			inst := &instances[i]
			inst.SubfamilyNameID = q.Uint16()
			inst.Flags = q.Uint16()
			inst.Coordinates = readArray(q, axisCount, 4, (*Parser).Fixed)
			if int(t.InstanceSize) >= 6+4*axisCount {
				inst.PostScriptNameID = Some(q.Uint16())
			}
			if err := q.Err(); err != nil {
				return nil, err
			}
		}
		return instances, nil
	})
	return t, nil
}

// SupportedAxes returns the tags of all variation axes.
func (t *FVarTable) SupportedAxes() []Tag {
	axes, err := t.Axes.Get()
	if err != nil {
		return nil
	}
	tags := make([]Tag, len(axes))
	for i, a := range axes {
		tags[i] = a.Tag
	}
	return tags
}

// Axis returns the variation axis with the given tag.
func (t *FVarTable) Axis(tag Tag) (VariationAxis, bool) {
	axes, err := t.Axes.Get()
	if err != nil {
		return VariationAxis{}, false
	}
	for _, a := range axes {
		if a.Tag == tag {
			return a, true
		}
	}
	return VariationAxis{}, false
}
