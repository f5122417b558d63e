package crud

// Entity is a backend record. Clone must return a copy sharing no mutable state with the receiver.
type Entity[T any] interface {
	GetID() int64
	Clone() T
}

// Draft is the in-progress copy of a record held by a Form.
// It is either New (not yet persisted) or Existing (bound to a backend id).
type Draft[T Entity[T]] struct {
	id       int64
	existing bool
	Fields   T
}

// New returns a draft of a record that does not exist on the backend yet.
func New[T Entity[T]](fields T) Draft[T] {
	return Draft[T]{Fields: fields}
}

// Existing returns a draft bound to the backend record `id`.
func Existing[T Entity[T]](id int64, fields T) Draft[T] {
	return Draft[T]{id: id, existing: true, Fields: fields}
}

// ID returns the backend id of the draft and whether it is Existing.
func (d Draft[T]) ID() (int64, bool) {
	return d.id, d.existing
}

func (d Draft[T]) IsNew() bool { return !d.existing }

func (d Draft[T]) clone() Draft[T] {
	d.Fields = d.Fields.Clone()
	return d
}
