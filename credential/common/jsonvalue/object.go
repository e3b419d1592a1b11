package jsonvalue

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is a JSON object that keeps its members in insertion order.
// Setting an existing key replaces the value in place.
type Object struct {
	members []Member
	index   map[string]int
}

func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	i, ok := o.index[key]
	if !ok {
		return Value{}, false
	}
	return o.members[i].Value, true
}

func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// GetString returns the member as a string, if it is one.
func (o *Object) GetString(key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (o *Object) Set(key string, v Value) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.members[i].Value = v
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: v})
}

func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	i, ok := o.index[key]
	if !ok {
		return
	}
	o.members = append(o.members[:i], o.members[i+1:]...)
	delete(o.index, key)
	for j := i; j < len(o.members); j++ {
		o.index[o.members[j].Key] = j
	}
}

func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	if o == nil {
		return keys
	}
	for _, m := range o.members {
		keys = append(keys, m.Key)
	}
	return keys
}

// Members returns the members in order. The returned slice is a copy.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	out := make([]Member, len(o.members))
	copy(out, o.members)
	return out
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	out := NewObject()
	if o == nil {
		return out
	}
	out.members = make([]Member, 0, len(o.members))
	for _, m := range o.members {
		out.Set(m.Key, m.Value.Clone())
	}
	return out
}

// Without returns a deep copy of o lacking the given keys.
func (o *Object) Without(keys ...string) *Object {
	skip := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		skip[k] = struct{}{}
	}
	out := NewObject()
	if o == nil {
		return out
	}
	for _, m := range o.members {
		if _, ok := skip[m.Key]; ok {
			continue
		}
		out.Set(m.Key, m.Value.Clone())
	}
	return out
}

// Map converts o to a map[string]interface{} as encoding/json would decode it.
func (o *Object) Map() map[string]interface{} {
	out := make(map[string]interface{}, o.Len())
	if o == nil {
		return out
	}
	for _, m := range o.members {
		out[m.Key] = m.Value.Interface()
	}
	return out
}
