package lox

// Config carries the debug knobs of a virtual machine.  The fields
// are read on the fly, so flipping one on a live VM takes effect at
// the next run (TraceExecution is read once when execution starts),
// compilation or allocation.
type Config struct {
	// TraceExecution dumps the value stack and the disassembled
	// instruction before each dispatch.
	TraceExecution bool

	// PrintCode disassembles every function as its compilation
	// finishes.
	PrintCode bool

	// StressGC collects on every allocation instead of waiting for
	// the heap threshold.  Slow, but it surfaces rooting mistakes at
	// the exact allocation that would hide them.
	StressGC bool

	// LogGC writes one line per allocation, mark, sweep and
	// collection cycle to the error stream.
	LogGC bool

	// HeapGrowFactor scales the next collection threshold after each
	// cycle: nextGC = bytesAllocated * HeapGrowFactor.
	HeapGrowFactor int
}

// NewConfig returns a configuration with every knob off and the
// default heap growth.
func NewConfig() *Config {
	return &Config{HeapGrowFactor: 2}
}
