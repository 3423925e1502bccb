package sema

// TypeTag distinguishes the two entries a name can have in the process-wide TypeTable
// (spec.md section 3): a plain Int variable, or a Func with its declared arity and whether a
// definition (as opposed to just a prototype) has been seen.
type TypeTag int

const (
	TagInt TypeTag = iota
	TagFunc
)

// TypeEntry is one TypeTable value. ParamCount and Defined are meaningful only when
// Tag == TagFunc.
type TypeEntry struct {
	Tag        TypeTag
	ParamCount int
	Defined    bool
}

// TypeTable maps a unique name (post identifier-resolution) to its TypeEntry. It is created by
// the type checker and survives, read-only, into the emitter (spec.md section 3), which uses it
// to tag calls to undefined (external) functions for PLT linkage.
type TypeTable map[string]TypeEntry
