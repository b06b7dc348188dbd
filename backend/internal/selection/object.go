package selection

import (
	"bytes"
	"encoding/json"
)

// Entry is one key of an Object
type Entry struct {
	Key   string
	Value interface{}
}

// Object is a response object that keeps its keys in selection order
// when encoded
type Object []Entry

// Set appends key, or replaces its value when already present
func (o *Object) Set(key string, value interface{}) {
	for i := range *o {
		if (*o)[i].Key == key {
			(*o)[i].Value = value
			return
		}
	}
	*o = append(*o, Entry{Key: key, Value: value})
}

// Get returns the value stored under key
func (o Object) Get(key string) (interface{}, bool) {
	for _, e := range o {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys lists the keys in order
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, e := range o {
		keys[i] = e.Key
	}
	return keys
}

// MarshalJSON encodes the object with its keys in order
func (o Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
