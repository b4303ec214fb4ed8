package beacon

import (
	"strconv"
	"strings"
)

// recordBuilder accumulates key=value pairs for one record and joins them
// with '&', percent-encoding every value as it is appended.
type recordBuilder struct {
	b strings.Builder
}

func newRecordBuilder() *recordBuilder {
	return &recordBuilder{}
}

func (r *recordBuilder) add(key, value string) *recordBuilder {
	if r.b.Len() > 0 {
		r.b.WriteByte('&')
	}
	r.b.WriteString(key)
	r.b.WriteByte('=')
	r.b.WriteString(percentEncode(value))
	return r
}

func (r *recordBuilder) addInt(key string, value int64) *recordBuilder {
	return r.add(key, strconv.FormatInt(value, 10))
}

func (r *recordBuilder) addEventType(t EventType) *recordBuilder {
	return r.addInt("et", int64(t))
}

func (r *recordBuilder) String() string { return r.b.String() }
