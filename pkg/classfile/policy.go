package classfile

// StackPolicy tells a bytecode writer how much of the stack metadata it has
// to recompute after patching a method.
type StackPolicy int

const (
	// ComputeMaxs recomputes max stack and max locals only. Formats older
	// than 50.0 carry no stack map frames.
	ComputeMaxs StackPolicy = iota + 1
	// ComputeFrames recomputes full stack map frames, required from 50.0.
	ComputeFrames
)

// FramesSince is the first major version whose verifier uses stack map
// frames.
const FramesSince uint16 = 50

func (p StackPolicy) String() string {
	switch p {
	case ComputeMaxs:
		return "compute-maxs"
	case ComputeFrames:
		return "compute-frames"
	default:
		return "unknown"
	}
}

// PolicyFor picks the stack policy for an artifact of version v.
func PolicyFor(v Version) StackPolicy {
	if v.Major >= FramesSince {
		return ComputeFrames
	}
	return ComputeMaxs
}
