package optimize

// Capabilities are the code generator queries and options consulted by
// the rules that move operations between decimal domains.
type Capabilities struct {
	// FastPackedDFP reports fast conversions between packed and DFP, so
	// cleaning and integer conversions are done in DFP.
	FastPackedDFP bool
	// ZonedDFP reports direct conversions between zoned and DFP.
	ZonedDFP bool
	// SignThroughBCDLeftShift propagates sign state through packed left
	// shifts.
	SignThroughBCDLeftShift bool
	// DisableZonedToDFPReduction keeps zoned conversions going through
	// packed even when ZonedDFP is set.
	DisableZonedToDFPReduction bool
	// KeepBCDWidening keeps widening operands and cleans of arithmetic.
	KeepBCDWidening bool
	// LastRun marks the final simplification of a method, when a left
	// shift of a right shift may become a clear.
	LastRun bool
}

func (c Capabilities) zonedDFP() bool {
	return c.ZonedDFP && !c.DisableZonedToDFPReduction
}
