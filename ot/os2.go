package ot

// OS2Table contains the metrics and classification data required by Windows,
// for versions 0 to 5 of table 'OS/2'. Fields introduced by later versions
// are set only if the table's version has them.
type OS2Table struct {
	tableBase
	Version            uint16
	XAvgCharWidth      int16
	WeightClass        uint16
	WidthClass         uint16
	FsType             uint16
	SubscriptXSize     int16
	SubscriptYSize     int16
	SubscriptXOffset   int16
	SubscriptYOffset   int16
	SuperscriptXSize   int16
	SuperscriptYSize   int16
	SuperscriptXOffset int16
	SuperscriptYOffset int16
	StrikeoutSize      int16
	StrikeoutPosition  int16
	FamilyClass        int16
	Panose             []uint8
	UnicodeRange       [4][]bool
	VendID             Tag
	FsSelection        uint16
	FirstCharIndex     uint16
	LastCharIndex      uint16
	TypoAscender       int16
	TypoDescender      int16
	TypoLineGap        int16
	WinAscent          uint16
	WinDescent         uint16
	CodePageRange      Option[[2][]bool] // version ≥ 1
	XHeight            Option[int16]     // version ≥ 2
	CapHeight          Option[int16]
	DefaultChar        Option[uint16]
	BreakChar          Option[uint16]
	MaxContext         Option[uint16]
	LowerOpticalPtSize Option[uint16] // version 5
	UpperOpticalPtSize Option[uint16]
}

func decodeOS2(p *Parser, ctx *tableContext) (Table, error) {
	t := &OS2Table{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint16()
	t.XAvgCharWidth = p.Int16()
	t.WeightClass = p.Uint16()
	t.WidthClass = p.Uint16()
	t.FsType = p.Uint16()
	t.SubscriptXSize = p.Int16()
	t.SubscriptYSize = p.Int16()
	t.SubscriptXOffset = p.Int16()
	t.SubscriptYOffset = p.Int16()
	t.SuperscriptXSize = p.Int16()
	t.SuperscriptYSize = p.Int16()
	t.SuperscriptXOffset = p.Int16()
	t.SuperscriptYOffset = p.Int16()
	t.StrikeoutSize = p.Int16()
	t.StrikeoutPosition = p.Int16()
	t.FamilyClass = p.Int16()
	t.Panose = p.Uint8s(10)
	for i := range t.UnicodeRange {
		t.UnicodeRange[i] = p.Flags(32)
	}
	t.VendID = p.Tag()
	t.FsSelection = p.Uint16()
	t.FirstCharIndex = p.Uint16()
	t.LastCharIndex = p.Uint16()
	t.TypoAscender = p.Int16()
	t.TypoDescender = p.Int16()
	t.TypoLineGap = p.Int16()
	t.WinAscent = p.Uint16()
	t.WinDescent = p.Uint16()
	if t.Version >= 1 {
		t.CodePageRange = Some([2][]bool{p.Flags(32), p.Flags(32)})
	}
	if t.Version >= 2 {
		t.XHeight = Some(p.Int16())
		t.CapHeight = Some(p.Int16())
		t.DefaultChar = Some(p.Uint16())
		t.BreakChar = Some(p.Uint16())
		t.MaxContext = Some(p.Uint16())
	}
	if t.Version >= 5 {
		t.LowerOpticalPtSize = Some(p.Uint16())
		t.UpperOpticalPtSize = Some(p.Uint16())
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	if t.Version > 5 {
		t.warn("unknown OS/2 table version, fields beyond version 5 are ignored")
		return t, nil
	}
	return t, p.VerifyLength()
}
