package optimize

import "go.uber.org/zap"

// Gate decides whether a transformation may be committed. seq numbers
// the transformations offered in one Simplifier from 1 and desc describes
// the transformation.
type Gate interface {
	Allow(seq int, desc string) bool
}

// AllowAll commits every transformation.
type AllowAll struct{}

// Allow implements Gate.
func (AllowAll) Allow(seq int, desc string) bool { return true }

// BisectGate commits the transformations numbered below Limit, for
// bisecting a miscompile down to a single transformation. A negative
// limit commits everything.
type BisectGate struct {
	Limit int
}

// Allow implements Gate.
func (g BisectGate) Allow(seq int, desc string) bool {
	return g.Limit < 0 || seq < g.Limit
}

// TraceGate logs every decision of an underlying gate. A nil Gate
// commits everything.
type TraceGate struct {
	Gate   Gate
	Logger *zap.Logger
}

// Allow implements Gate.
func (g TraceGate) Allow(seq int, desc string) bool {
	ok := g.Gate == nil || g.Gate.Allow(seq, desc)
	if g.Logger != nil {
		g.Logger.Info("transformation",
			zap.Int("seq", seq),
			zap.String("desc", desc),
			zap.Bool("allowed", ok))
	}
	return ok
}

// needsDescription returns whether a gate reads the description, so it
// must be formatted.
func needsDescription(g Gate) bool {
	switch g.(type) {
	case AllowAll, *AllowAll, BisectGate, *BisectGate:
		return false
	}
	return true
}
