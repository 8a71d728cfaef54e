package value

// Object is an ordered mapping from string keys to values. Keys are unique
// and iteration follows insertion order.
//
// An Object is built with Set and then treated as immutable.
type Object struct {
	keys   []string
	values map[string]Value
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) value()     {}

// NewObject returns an empty object with room for capacity keys.
func NewObject(capacity int) *Object {
	return &Object{
		keys:   make([]string, 0, capacity),
		values: make(map[string]Value, capacity),
	}
}

// Set stores v under key. Replacing an existing key keeps its position.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = OrNull(v)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Field returns the value under key, or Null when absent.
func (o *Object) Field(key string) Value {
	if v, ok := o.Get(key); ok {
		return v
	}
	return Null
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Range calls fn for every key in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// Clone returns a shallow copy of o.
func (o *Object) Clone() *Object {
	c := NewObject(o.Len())
	o.Range(func(k string, v Value) bool {
		c.Set(k, v)
		return true
	})
	return c
}

// ObjectOf builds an object from alternating key/value arguments.
// It panics when a key is not a string.
func ObjectOf(kv ...any) *Object {
	o := NewObject(len(kv) / 2)
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1].(Value))
	}
	return o
}

// ConvertObjectToArray turns {"k": v, ...} into [{"key": "k", "value": v}, ...].
func ConvertObjectToArray(o *Object) Array {
	out := make(Array, 0, o.Len())
	o.Range(func(k string, v Value) bool {
		pair := NewObject(2)
		pair.Set("key", Text(k))
		pair.Set("value", v)
		out = append(out, pair)
		return true
	})
	return out
}
