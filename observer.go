package bml

// MutationType distinguishes mutation records.
type MutationType uint8

const (
	MutationAttributes MutationType = iota // an attribute was set or removed
	MutationChildList                      // children were added or removed
)

// MutationRecord describes one change to the element tree. Attribute records
// carry the old value only; readers take the current value from Target.
type MutationRecord struct {
	Type     MutationType
	Target   *Element
	Name     string
	OldValue Attr
	Added    []*Element
	Removed  []*Element
}

// MutationObserver queues records for changes inside an observed subtree,
// including the root itself. Records are kept in the order they happened
// and handed out by TakeRecords.
type MutationObserver struct {
	doc     *Document
	root    *Element
	records []MutationRecord
}

// NewMutationObserver creates an observer that is not yet observing.
func (d *Document) NewMutationObserver() *MutationObserver {
	return &MutationObserver{doc: d}
}

// Observe starts observing root's subtree. Observing again replaces the
// root.
func (o *MutationObserver) Observe(root *Element) {
	if o.root == nil {
		o.doc.observers = append(o.doc.observers, o)
	}
	o.root = root
}

// TakeRecords returns and clears the queued records.
func (o *MutationObserver) TakeRecords() []MutationRecord {
	recs := o.records
	o.records = nil
	return recs
}

// Pending returns the number of queued records.
func (o *MutationObserver) Pending() int {
	return len(o.records)
}

// Disconnect stops observing and drops queued records.
func (o *MutationObserver) Disconnect() {
	if o.root == nil {
		return
	}
	for i, other := range o.doc.observers {
		if other == o {
			o.doc.observers = append(o.doc.observers[:i], o.doc.observers[i+1:]...)
			break
		}
	}
	o.root = nil
	o.records = nil
}

func (o *MutationObserver) enqueue(rec MutationRecord) {
	if o.root == nil || !o.root.Contains(rec.Target) {
		return
	}
	o.records = append(o.records, rec)
}
