package blackboard

import "strings"

const (
	// Separator delimits namespaces within a key.
	Separator = "/"
	// PathSeparator delimits a key from the nested path inside its value.
	PathSeparator = "."
)

// AbsoluteName resolves key against namespace.
//
//	"/"     + "foo"      = "/foo"
//	"/"     + "/foo"     = "/foo"
//	"/foo"  + "bar"      = "/foo/bar"
//	"/foo/" + "bar"      = "/foo/bar"
//	"/foo"  + "/bar"     = "/bar"
//	"/foo"  + "foo/bar"  = "/foo/foo/bar"
//
// Keys that are already absolute are returned unchanged, without checking
// they are embedded in namespace. See [RelativeName] for the checked inverse.
func AbsoluteName(namespace, key string) string {
	if strings.HasPrefix(key, Separator) {
		return key
	}
	if !strings.HasSuffix(namespace, Separator) {
		namespace += Separator
	}
	return namespace + strings.Trim(key, Separator)
}

// RelativeName returns key relative to namespace. Relative keys are returned
// unchanged; absolute keys outside namespace fail with [ErrNotInNamespace].
func RelativeName(namespace, key string) (string, error) {
	if !strings.HasPrefix(key, Separator) {
		return key, nil
	}
	if !strings.HasSuffix(namespace, Separator) {
		namespace += Separator
	}
	if rel, ok := strings.CutPrefix(key, namespace); ok {
		return rel, nil
	}
	return "", &KeyError{Key: key, Err: ErrNotInNamespace}
}

// SplitVariable splits a variable name into its key and nested path, e.g.
// "/foo/bar.woohoo.x" into "/foo/bar" and "woohoo.x". The path is empty for a
// plain key.
func SplitVariable(name string) (key, path string) {
	key, path, _ = strings.Cut(name, PathSeparator)
	return key, path
}

// KeyOf returns the key part of a variable name.
func KeyOf(name string) string {
	key, _ := SplitVariable(name)
	return key
}

func normaliseNamespace(namespace string) string {
	namespace = strings.TrimSpace(namespace)
	if !strings.HasPrefix(namespace, Separator) {
		namespace = Separator + namespace
	}
	if len(namespace) > 1 {
		namespace = strings.TrimSuffix(namespace, Separator)
	}
	return namespace
}
