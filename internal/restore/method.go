package restore

import "fmt"

// Method selects the restore strategy for a site.
type Method uint8

const (
	// MethodAI1 imports an All-in-One WP Migration archive into a
	// freshly provisioned site.
	MethodAI1 Method = iota
	// MethodDuplicator stages a Duplicator Pro package; the package
	// installer finishes in the browser.
	MethodDuplicator
	// MethodWPContent replaces wp-content on a fresh site and imports
	// a separate database dump.
	MethodWPContent
	// MethodWP copies a full site tree and imports the dump found
	// inside it.
	MethodWP
)

var methodNames = map[Method]string{
	MethodAI1:        "ai1",
	MethodDuplicator: "dup",
	MethodWPContent:  "wpcontent",
	MethodWP:         "wp",
}

// ParseMethod maps a method tag to its Method value.
func ParseMethod(tag string) (Method, error) {
	for method, name := range methodNames {
		if name == tag {
			return method, nil
		}
	}
	return 0, fmt.Errorf("unknown restore method %q (want ai1, dup, wpcontent or wp)", tag)
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", m)
}

// NeedsDatabaseDump reports whether the method requires a database
// dump path in addition to the source path.
func (m Method) NeedsDatabaseDump() bool {
	return m == MethodWPContent
}
