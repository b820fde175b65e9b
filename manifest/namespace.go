package manifest

import "fmt"

// reservedNamespaces lists host namespaces a pack must not claim.
var reservedNamespaces = map[string]bool{
	"minecraft": true,
	"brigadier": true,
}

// ValidateNamespace checks that ns is a legal pack namespace: non-empty,
// lowercase letters, digits, underscore, hyphen or dot, and not a namespace
// the host reserves for itself.
func ValidateNamespace(ns string) error {
	if ns == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	for _, r := range ns {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return fmt.Errorf("namespace %q: invalid character %q (allowed: a-z 0-9 _ - .)", ns, r)
		}
	}
	if reservedNamespaces[ns] {
		return fmt.Errorf("namespace %q is reserved by the host", ns)
	}
	return nil
}
