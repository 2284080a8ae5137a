package http

// Header is an insertion-ordered set of response headers. Setting an existing
// name replaces its value in place.
type Header struct {
	fields []headerField
}

type headerField struct {
	Name  string
	Value string
}

func (h *Header) Set(name, value string) {
	for i := range h.fields {
		if h.fields[i].Name == name {
			h.fields[i].Value = value
			return
		}
	}
	h.fields = append(h.fields, headerField{Name: name, Value: value})
}

func (h *Header) Get(name string) (string, bool) {
	for _, field := range h.fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

func (h *Header) Del(name string) {
	for i := range h.fields {
		if h.fields[i].Name == name {
			h.fields = append(h.fields[:i], h.fields[i+1:]...)
			return
		}
	}
}

func (h *Header) Len() int {
	return len(h.fields)
}

// Each visits the headers in insertion order.
func (h *Header) Each(fn func(name, value string)) {
	for _, field := range h.fields {
		fn(field.Name, field.Value)
	}
}
