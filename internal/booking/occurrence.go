package booking

// OriginKind tells anchors apart from generated instances.
type OriginKind int

const (
	// OriginAnchor is the master's own date, carrying the master's id.
	OriginAnchor OriginKind = iota
	// OriginDerived is a generated date of a recurring series.
	OriginDerived
)

func (k OriginKind) String() string {
	if k == OriginDerived {
		return "derived"
	}
	return "anchor"
}

// Origin records where an occurrence came from. The zero value is an anchor.
type Origin struct {
	kind     OriginKind
	masterID string
}

// AnchorOrigin marks an occurrence that is the master itself.
func AnchorOrigin() Origin {
	return Origin{kind: OriginAnchor}
}

// DerivedFrom marks an occurrence generated from the given master.
func DerivedFrom(masterID string) Origin {
	return Origin{kind: OriginDerived, masterID: masterID}
}

func (o Origin) Kind() OriginKind { return o.kind }

// Derived returns the back-reference for generated occurrences.
func (o Origin) Derived() (string, bool) {
	if o.kind != OriginDerived {
		return "", false
	}
	return o.masterID, true
}

// Occurrence is a concrete dated instance produced by expansion. It is never
// stored and never mutated on its own.
type Occurrence struct {
	Reservation
	Origin Origin
}

// MasterID resolves the occurrence to the record that owns it.
func (o Occurrence) MasterID() string {
	if id, ok := o.Origin.Derived(); ok {
		return id
	}
	return o.ID
}

// AsOccurrence wraps a master as its own anchor occurrence.
func AsOccurrence(r Reservation) Occurrence {
	return Occurrence{Reservation: r, Origin: AnchorOrigin()}
}
