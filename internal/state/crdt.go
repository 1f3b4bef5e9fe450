package state

import (
	"fmt"
	"sort"
)

// register is a last-writer-wins value.
type register struct {
	value []byte
	stamp Stamp
}

func (r *register) set(v []byte, s Stamp) bool {
	if !s.After(r.stamp) {
		return false
	}
	r.value, r.stamp = v, s
	return true
}

// object is an entry of a map: its liveness and every field are separate
// registers, so concurrent writes to different fields never conflict.
type object struct {
	alive  bool
	life   Stamp
	fields map[string]*register
}

func (o *object) snapshot() Fields {
	f := make(Fields, len(o.fields))
	for k, r := range o.fields {
		f[k] = r.value
	}
	return f
}

// element is a list entry. Entries are ordered by the stamp of their
// insertion; deleted entries stay as tombstones so late or repeated
// operations resolve the same way everywhere.
type element struct {
	id     string
	pos    Stamp
	placed bool
	alive  bool
	life   Stamp
}

type list struct {
	order []*element
	index map[string]*element
}

func (l *list) ensure(id string) *element {
	if e, ok := l.index[id]; ok {
		return e
	}
	e := &element{id: id}
	l.index[id] = e
	return e
}

func (l *list) place(e *element, pos Stamp) {
	e.pos, e.placed = pos, true
	i := sort.Search(len(l.order), func(i int) bool { return l.order[i].pos.After(pos) })
	l.order = append(l.order, nil)
	copy(l.order[i+1:], l.order[i:])
	l.order[i] = e
}

// Document is the merged state of one room: root registers, maps of
// objects and ordered lists. It is not safe for concurrent use; Room guards
// it.
type Document struct {
	roots map[string]*register
	maps  map[string]map[string]*object
	lists map[string]*list
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		roots: make(map[string]*register),
		maps:  make(map[string]map[string]*object),
		lists: make(map[string]*list),
	}
}

func (d *Document) objects(name string) map[string]*object {
	m, ok := d.maps[name]
	if !ok {
		m = make(map[string]*object)
		d.maps[name] = m
	}
	return m
}

func (d *Document) list(name string) *list {
	l, ok := d.lists[name]
	if !ok {
		l = &list{index: make(map[string]*element)}
		d.lists[name] = l
	}
	return l
}

func (d *Document) object(target, key string) *object {
	m := d.objects(target)
	o, ok := m[key]
	if !ok {
		o = &object{fields: make(map[string]*register)}
		m[key] = o
	}
	return o
}

// Apply merges op into the document and reports whether anything changed.
// Applying the same op twice is a no-op.
func (d *Document) Apply(op Op) (bool, error) {
	switch op.Kind {
	case OpSetRoot:
		r, ok := d.roots[op.Target]
		if !ok {
			r = &register{}
			d.roots[op.Target] = r
		}
		return r.set(op.Value, op.Stamp), nil

	case OpPutObject, OpSetFields:
		o := d.object(op.Target, op.Key)
		changed := false
		if op.Kind == OpPutObject && op.Stamp.After(o.life) {
			o.alive, o.life = true, op.Stamp
			changed = true
		}
		for k, v := range op.Fields {
			r, ok := o.fields[k]
			if !ok {
				r = &register{}
				o.fields[k] = r
			}
			if r.set(v, op.Stamp) {
				changed = true
			}
		}
		return changed, nil

	case OpDeleteObject:
		o := d.object(op.Target, op.Key)
		if !op.Stamp.After(o.life) {
			return false, nil
		}
		was := o.alive
		o.alive, o.life = false, op.Stamp
		return was, nil

	case OpListInsert:
		if op.Pos == nil {
			return false, fmt.Errorf("insert %s into %s: missing position", op.Key, op.Target)
		}
		l := d.list(op.Target)
		e := l.ensure(op.Key)
		changed := false
		if !e.placed {
			l.place(e, *op.Pos)
		}
		if op.Stamp.After(e.life) {
			changed = !e.alive
			e.alive, e.life = true, op.Stamp
		}
		return changed, nil

	case OpListDelete:
		e := d.list(op.Target).ensure(op.Key)
		if !op.Stamp.After(e.life) {
			return false, nil
		}
		was := e.alive
		e.alive, e.life = false, op.Stamp
		return was, nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownOp, op.Kind)
}

// Invert returns the ops that undo op against the current state. It must
// be called before op is applied. The returned ops carry no stamps.
func (d *Document) Invert(op Op) []Op {
	switch op.Kind {
	case OpSetRoot:
		prev := []byte(null)
		if r, ok := d.roots[op.Target]; ok {
			prev = r.value
		}
		return []Op{{Kind: OpSetRoot, Target: op.Target, Value: prev}}

	case OpPutObject:
		o, ok := d.maps[op.Target][op.Key]
		if !ok || !o.alive {
			return []Op{{Kind: OpDeleteObject, Target: op.Target, Key: op.Key}}
		}
		return []Op{{Kind: OpSetFields, Target: op.Target, Key: op.Key, Fields: o.previous(op.Fields)}}

	case OpSetFields:
		o, ok := d.maps[op.Target][op.Key]
		if !ok {
			return nil
		}
		return []Op{{Kind: OpSetFields, Target: op.Target, Key: op.Key, Fields: o.previous(op.Fields)}}

	case OpDeleteObject:
		o, ok := d.maps[op.Target][op.Key]
		if !ok || !o.alive {
			return nil
		}
		return []Op{{Kind: OpPutObject, Target: op.Target, Key: op.Key, Fields: o.snapshot()}}

	case OpListInsert:
		e, ok := d.lists[op.Target].lookup(op.Key)
		if ok && e.alive {
			return nil
		}
		return []Op{{Kind: OpListDelete, Target: op.Target, Key: op.Key}}

	case OpListDelete:
		e, ok := d.lists[op.Target].lookup(op.Key)
		if !ok || !e.alive {
			return nil
		}
		pos := e.pos
		return []Op{{Kind: OpListInsert, Target: op.Target, Key: op.Key, Pos: &pos}}
	}
	return nil
}

func (o *object) previous(fields Fields) Fields {
	prev := make(Fields, len(fields))
	for k := range fields {
		if r, ok := o.fields[k]; ok {
			prev[k] = r.value
		} else {
			prev[k] = null
		}
	}
	return prev
}

func (l *list) lookup(id string) (*element, bool) {
	if l == nil {
		return nil, false
	}
	e, ok := l.index[id]
	return e, ok
}

// Root returns the value of a root register, nil when unset.
func (d *Document) Root(key string) []byte {
	if r, ok := d.roots[key]; ok {
		return r.value
	}
	return nil
}

// Object returns a live object's fields.
func (d *Document) Object(target, key string) (Fields, bool) {
	o, ok := d.maps[target][key]
	if !ok || !o.alive {
		return nil, false
	}
	return o.snapshot(), true
}

// Has reports whether a live object exists.
func (d *Document) Has(target, key string) bool {
	o, ok := d.maps[target][key]
	return ok && o.alive
}

// Keys returns the ids of the live objects of a map, sorted.
func (d *Document) Keys(target string) []string {
	var keys []string
	for k, o := range d.maps[target] {
		if o.alive {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// List returns the live ids of a list in order.
func (d *Document) List(target string) []string {
	l, ok := d.lists[target]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(l.order))
	for _, e := range l.order {
		if e.alive {
			ids = append(ids, e.id)
		}
	}
	return ids
}

// InList reports whether id is a live element of the list.
func (d *Document) InList(target, id string) bool {
	e, ok := d.lists[target].lookup(id)
	return ok && e.alive
}

// Ops returns the whole document as stamped ops, tombstones included.
// Applying them to any replica merges this state into it.
func (d *Document) Ops() []Op {
	var ops []Op

	roots := make([]string, 0, len(d.roots))
	for k := range d.roots {
		roots = append(roots, k)
	}
	sort.Strings(roots)
	for _, k := range roots {
		r := d.roots[k]
		ops = append(ops, Op{Kind: OpSetRoot, Target: k, Value: r.value, Stamp: r.stamp})
	}

	for _, target := range sortedKeys(d.maps) {
		m := d.maps[target]
		for _, key := range sortedKeys(m) {
			o := m[key]
			if !o.life.IsZero() {
				kind := OpDeleteObject
				if o.alive {
					kind = OpPutObject
				}
				ops = append(ops, Op{Kind: kind, Target: target, Key: key, Stamp: o.life})
			}
			for _, field := range sortedKeys(o.fields) {
				r := o.fields[field]
				ops = append(ops, Op{
					Kind:   OpSetFields,
					Target: target,
					Key:    key,
					Fields: Fields{field: r.value},
					Stamp:  r.stamp,
				})
			}
		}
	}

	for _, target := range sortedKeys(d.lists) {
		l := d.lists[target]
		for _, e := range l.order {
			pos := e.pos
			if e.alive {
				ops = append(ops, Op{Kind: OpListInsert, Target: target, Key: e.id, Pos: &pos, Stamp: e.life})
				continue
			}
			ops = append(ops,
				Op{Kind: OpListInsert, Target: target, Key: e.id, Pos: &pos, Stamp: e.pos},
				Op{Kind: OpListDelete, Target: target, Key: e.id, Stamp: e.life})
		}
		for _, id := range sortedKeys(l.index) {
			if e := l.index[id]; !e.placed && !e.life.IsZero() {
				ops = append(ops, Op{Kind: OpListDelete, Target: target, Key: id, Stamp: e.life})
			}
		}
	}
	return ops
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
